package ports

import (
	"context"

	"lanmesh/internal/core/domain"
)

// Probe obtains best-effort network measurements from external OS tools.
// A failed or missing tool yields null metric fields, never an error that
// should fail the enclosing request.
type Probe interface {
	// Scan enumerates devices on the local network.
	Scan(ctx context.Context) ([]domain.Device, error)

	// Measure returns metrics for a target, served from the shared
	// bandwidth cache within its TTL window.
	Measure(ctx context.Context, target string) domain.Metrics

	// MeasureFresh bypasses the cache and re-invokes the tools.
	MeasureFresh(ctx context.Context, target string) domain.Metrics
}

// Broadcaster fans registry deltas out to every connected session. Each
// publish carries the full current collection, not a diff; no ordering is
// guaranteed between the three kinds.
type Broadcaster interface {
	PublishDevices(devices []domain.Device)
	PublishUsers(users []domain.User)
	PublishConnections(connections []domain.Connection)
}

// NetworkService orchestrates registry, probe and broadcast for the HTTP
// and push-channel handlers.
type NetworkService interface {
	Scan(ctx context.Context) ([]domain.Device, error)
	Devices() []domain.Device
	Users() []domain.User
	Connections() []domain.Connection
	UsersWithMetrics(ctx context.Context) []domain.User

	DeviceMetrics(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error)
	DeviceBandwidth(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error)
	DeviceSpeedtest(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error)

	Connect(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error)
	RemoveConnection(id domain.ConnectionID) error
	TestConnection(ctx context.Context, id domain.ConnectionID) (domain.TestResult, error)

	RegisterUser(sessionID domain.SessionID, userID domain.UserID, name, clientIP string) (domain.User, error)
	DetachSession(sessionID domain.SessionID)
}
