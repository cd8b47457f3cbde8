package domain

// Metrics holds probe measurements for one entity. A nil field means the
// probe failed or the tool was unavailable; nil is reported to clients as
// JSON null and is never coerced to zero except inside Average.
type Metrics struct {
	UploadSpeed   *float64 `json:"uploadSpeed"`
	DownloadSpeed *float64 `json:"downloadSpeed"`
	Latency       *float64 `json:"latency"`
	PacketLoss    *float64 `json:"packetLoss"`
	Throughput    *float64 `json:"throughput"`
}

// Float returns a pointer to v, for building Metrics literals.
func Float(v float64) *float64 { return &v }

// Average combines the two sides of a quality test field by field. A nil
// side counts as zero here, so a fully failed probe drags the combined
// value toward zero instead of propagating null. That precision loss is
// part of the contract.
func Average(source, target Metrics) Metrics {
	avg := func(a, b *float64) *float64 {
		var av, bv float64
		if a != nil {
			av = *a
		}
		if b != nil {
			bv = *b
		}
		v := (av + bv) / 2
		return &v
	}
	return Metrics{
		UploadSpeed:   avg(source.UploadSpeed, target.UploadSpeed),
		DownloadSpeed: avg(source.DownloadSpeed, target.DownloadSpeed),
		Latency:       avg(source.Latency, target.Latency),
		PacketLoss:    avg(source.PacketLoss, target.PacketLoss),
		Throughput:    avg(source.Throughput, target.Throughput),
	}
}
