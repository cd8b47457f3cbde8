package domain

import "time"

type ConnectionType string

const (
	ConnectionP2P ConnectionType = "P2P"
	ConnectionLAN ConnectionType = "LAN"
	ConnectionWAN ConnectionType = "WAN"
)

type ConnectionStatus string

const ConnectionActive ConnectionStatus = "active"

// Connection links two entities (users or devices). Source/target order
// carries no meaning for admission purposes.
type Connection struct {
	ID          ConnectionID     `json:"id"`
	SourceID    string           `json:"sourceId"`
	TargetID    string           `json:"targetId"`
	Type        ConnectionType   `json:"type"`
	Status      ConnectionStatus `json:"status"`
	Established time.Time        `json:"established"`
	LastTest    *TestResult      `json:"lastTest,omitempty"`
}

// Links reports whether the connection joins the given unordered pair.
func (c Connection) Links(a, b string) bool {
	return (c.SourceID == a && c.TargetID == b) || (c.SourceID == b && c.TargetID == a)
}

// Involves reports whether the given entity is one of the endpoints.
func (c Connection) Involves(id string) bool {
	return c.SourceID == id || c.TargetID == id
}

// TestResult is the outcome of a connection quality test.
type TestResult struct {
	Metrics
	Timestamp time.Time `json:"timestamp"`
}
