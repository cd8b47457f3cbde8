package ports

// MetricsRecorder receives operational events for the monitoring backend.
type MetricsRecorder interface {
	RecordScan(devicesFound int)
	RecordProbeFailure(tool string)
	RecordAdmission(connType string, allowed bool)
	RecordBroadcast(kind string)
	SetCollectionSizes(devices, onlineUsers, connections int)
}

// NopMetricsRecorder discards all events. Used in tests and when
// monitoring is disabled.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) RecordScan(int) {}

func (NopMetricsRecorder) RecordProbeFailure(string) {}

func (NopMetricsRecorder) RecordAdmission(string, bool) {}

func (NopMetricsRecorder) RecordBroadcast(string) {}

func (NopMetricsRecorder) SetCollectionSizes(int, int, int) {}
