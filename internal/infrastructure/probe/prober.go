package probe

import (
	"context"
	"strconv"
	"time"

	"lanmesh/internal/core/domain"
	"lanmesh/pkg/cache"
	"lanmesh/pkg/tracing"

	"go.uber.org/zap"
)

// Prober shells out to arp, ping and speedtest-cli to enumerate devices
// and approximate network quality. Every invocation is bounded by the
// configured timeout; a failed or missing tool yields null metric fields.
// Bandwidth results are shared across callers through a keyed TTL cache
// with single-flight de-duplication.
type Prober struct {
	runner Runner
	cache  *cache.Cache

	timeout    time.Duration
	pingTarget string
	pingCount  int

	logger *zap.SugaredLogger
}

type Config struct {
	Timeout    time.Duration
	CacheTTL   time.Duration
	PingTarget string
	PingCount  int
}

func NewProber(runner Runner, cfg Config, logger *zap.SugaredLogger) *Prober {
	return &Prober{
		runner:     runner,
		cache:      cache.New(cfg.CacheTTL),
		timeout:    cfg.Timeout,
		pingTarget: cfg.PingTarget,
		pingCount:  cfg.PingCount,
		logger:     logger,
	}
}

// Scan enumerates devices from the ARP table.
func (p *Prober) Scan(ctx context.Context) ([]domain.Device, error) {
	ctx, span := tracing.TraceProbe(ctx, "arp", "local")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.Run(ctx, "arp", "-a")
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	devices := ParseArp(out)
	p.logger.Infow("arp scan completed", "devices", len(devices))
	return devices, nil
}

// Measure returns bandwidth metrics for a target, reusing the cached
// result within the TTL window. Concurrent callers for the same target
// share one probe.
func (p *Prober) Measure(ctx context.Context, target string) domain.Metrics {
	value, err := p.cache.GetOrFetch(ctx, target, func(ctx context.Context) (interface{}, error) {
		return p.measure(ctx, target), nil
	})
	if err != nil {
		return domain.Metrics{}
	}
	metrics, ok := value.(domain.Metrics)
	if !ok {
		return domain.Metrics{}
	}
	return metrics
}

// MeasureFresh bypasses the cache, re-invokes the tools and stores the
// new result for subsequent cached reads.
func (p *Prober) MeasureFresh(ctx context.Context, target string) domain.Metrics {
	metrics := p.measure(ctx, target)
	p.cache.Set(target, metrics)
	return metrics
}

// measure runs speedtest-cli and ping once each. The two tools fail
// independently; a failure leaves its fields nil and never aborts the
// other measurement.
func (p *Prober) measure(ctx context.Context, target string) domain.Metrics {
	var metrics domain.Metrics

	func() {
		ctx, span := tracing.TraceProbe(ctx, "speedtest", target)
		defer span.End()

		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		out, err := p.runner.Run(ctx, "speedtest-cli", "--simple")
		if err != nil {
			tracing.RecordError(ctx, err)
			p.logger.Warnw("speedtest probe failed", "target", target, "error", err)
			return
		}
		metrics.Latency, metrics.DownloadSpeed, metrics.UploadSpeed = ParseSpeedtest(out)
		metrics.Throughput = metrics.DownloadSpeed
	}()

	func() {
		ctx, span := tracing.TraceProbe(ctx, "ping", p.pingTarget)
		defer span.End()

		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		out, err := p.runner.Run(ctx, "ping", "-c", strconv.Itoa(p.pingCount), p.pingTarget)
		if err != nil {
			tracing.RecordError(ctx, err)
			p.logger.Warnw("ping probe failed", "target", p.pingTarget, "error", err)
			return
		}
		metrics.PacketLoss = ParsePacketLoss(out)
	}()

	return metrics
}

// Stop releases the cache cleanup goroutine.
func (p *Prober) Stop() {
	p.cache.Stop()
}
