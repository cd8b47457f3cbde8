package domain

// User is an ad-hoc identity created by a push-channel session registering
// a display name. Users are never deleted individually; they flip between
// online and offline and are purged wholesale on global reset.
type User struct {
	ID             UserID   `json:"id"`
	Name           string   `json:"name"`
	Status         Status   `json:"status"`
	ClientIP       string   `json:"clientIP,omitempty"`
	NetworkMetrics *Metrics `json:"networkMetrics,omitempty"`
}
