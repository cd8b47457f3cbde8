package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.MetricsRecorder.
type PrometheusCollector struct {
	devicesTotal     prometheus.Gauge
	onlineUsersTotal prometheus.Gauge
	connectionsTotal prometheus.Gauge

	scansTotal         prometheus.Counter
	scanDevicesFound   prometheus.Histogram
	probeFailuresTotal *prometheus.CounterVec
	admissionsTotal    *prometheus.CounterVec
	broadcastsTotal    *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		devicesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lanmesh_devices_total",
			Help: "Number of devices in the registry",
		}),

		onlineUsersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lanmesh_online_users_total",
			Help: "Number of users currently online",
		}),

		connectionsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lanmesh_connections_total",
			Help: "Number of active connections in the registry",
		}),

		scansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lanmesh_scans_total",
			Help: "Total number of network scans performed",
		}),

		scanDevicesFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lanmesh_scan_devices_found",
			Help:    "Devices found per scan",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),

		probeFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanmesh_probe_failures_total",
			Help: "Probe invocations that failed or timed out",
		}, []string{"tool"}),

		admissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanmesh_admissions_total",
			Help: "Connection admission decisions by type and outcome",
		}, []string{"type", "outcome"}),

		broadcastsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanmesh_broadcasts_total",
			Help: "Push-channel broadcasts by event kind",
		}, []string{"kind"}),
	}
}

func (p *PrometheusCollector) RecordScan(devicesFound int) {
	p.scansTotal.Inc()
	p.scanDevicesFound.Observe(float64(devicesFound))
}

func (p *PrometheusCollector) RecordProbeFailure(tool string) {
	p.probeFailuresTotal.WithLabelValues(tool).Inc()
}

func (p *PrometheusCollector) RecordAdmission(connType string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	p.admissionsTotal.WithLabelValues(connType, outcome).Inc()
}

func (p *PrometheusCollector) RecordBroadcast(kind string) {
	p.broadcastsTotal.WithLabelValues(kind).Inc()
}

func (p *PrometheusCollector) SetCollectionSizes(devices, onlineUsers, connections int) {
	p.devicesTotal.Set(float64(devices))
	p.onlineUsersTotal.Set(float64(onlineUsers))
	p.connectionsTotal.Set(float64(connections))
}
