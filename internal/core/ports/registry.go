package ports

import "lanmesh/internal/core/domain"

// Registry owns the three core collections and their identity, merge and
// admission rules. Every mutation is atomic; every read returns a
// point-in-time ordered-by-insertion copy. Implementations must never
// expose a partially mutated collection.
type Registry interface {
	// UpsertDevice merges the candidate into an existing device matched by
	// id, then by non-sentinel ip, then by non-sentinel mac, or inserts it
	// as new. Returns the stored record.
	UpsertDevice(candidate domain.Device) domain.Device

	// UpsertUser merges the candidate into an existing user matched by id
	// (and, when merge-by-name is enabled, by exact name regardless of
	// status), marking it online. New users get a generated id when the
	// candidate has none.
	UpsertUser(candidate domain.User) domain.User

	// RemoveUserSession marks the user offline, drops the session's
	// synthetic device entry, and performs a global reset when no user
	// remains online. Reports whether a reset happened.
	RemoveUserSession(id domain.UserID) (user domain.User, reset bool, err error)

	// Connect runs admission for the proposed connection and inserts it on
	// approval, atomically with respect to all other mutations.
	Connect(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error)

	RemoveConnection(id domain.ConnectionID) error

	// SetLastTest attaches a quality test result to a connection.
	SetLastTest(id domain.ConnectionID, result domain.TestResult) (domain.Connection, error)

	GetDevice(id domain.DeviceID) (domain.Device, error)
	GetUser(id domain.UserID) (domain.User, error)
	GetConnection(id domain.ConnectionID) (domain.Connection, error)

	Devices() []domain.Device
	Users() []domain.User
	Connections() []domain.Connection

	// Reset clears all three collections.
	Reset()
}
