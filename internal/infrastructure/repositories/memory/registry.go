package memory

import (
	"sync"
	"time"

	"lanmesh/internal/core/admission"
	"lanmesh/internal/core/domain"

	"github.com/google/uuid"
)

// Registry is the in-memory implementation of ports.Registry: one mutex,
// three insertion-ordered collections. Admission runs under the write
// lock, so two racing connection requests for the same pair serialize and
// the loser is denied as a duplicate.
type Registry struct {
	mu sync.RWMutex

	devices []domain.Device
	users   []domain.User
	conns   []domain.Connection

	mergeUsersByName bool
}

// Options controls registry behavior that the source material is
// inconsistent about.
type Options struct {
	// MergeUsersByName treats a session presenting the name of any known
	// user as that user reconnecting. Collapses distinct people with
	// identical display names.
	MergeUsersByName bool
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		mergeUsersByName: opts.MergeUsersByName,
	}
}

func newDeviceID() domain.DeviceID {
	return domain.DeviceID("device-" + uuid.NewString())
}

func newUserID() domain.UserID {
	return domain.UserID("user-" + uuid.NewString())
}

func newConnectionID() domain.ConnectionID {
	return domain.ConnectionID("conn-" + uuid.NewString())
}

func usable(value string) bool {
	return value != "" && value != domain.UnknownValue
}

// UpsertDevice merges by id, then by non-sentinel ip, then by non-sentinel
// mac; otherwise inserts the candidate as a new device.
func (r *Registry) UpsertDevice(candidate domain.Device) domain.Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.findDeviceLocked(candidate); idx >= 0 {
		r.mergeDeviceLocked(idx, candidate)
		return r.devices[idx]
	}

	if candidate.ID == "" {
		candidate.ID = newDeviceID()
	}
	if candidate.Status == "" {
		candidate.Status = domain.StatusOnline
	}
	if candidate.Type == "" {
		candidate.Type = domain.DeviceTypeOther
	}
	r.devices = append(r.devices, candidate)
	return candidate
}

func (r *Registry) findDeviceLocked(candidate domain.Device) int {
	if candidate.ID != "" {
		for i, dev := range r.devices {
			if dev.ID == candidate.ID {
				return i
			}
		}
	}
	if usable(candidate.IP) {
		for i, dev := range r.devices {
			if dev.IP == candidate.IP {
				return i
			}
		}
	}
	if usable(candidate.MAC) {
		for i, dev := range r.devices {
			if dev.MAC == candidate.MAC {
				return i
			}
		}
	}
	return -1
}

// mergeDeviceLocked applies candidate fields over the existing record. The
// earliest-inserted id survives, a generic name never overwrites a
// specific one, and the website-user flag is sticky once set.
func (r *Registry) mergeDeviceLocked(idx int, candidate domain.Device) {
	existing := &r.devices[idx]

	existing.Name = domain.BetterName(existing.Name, candidate.Name)
	if usable(candidate.IP) {
		existing.IP = candidate.IP
	}
	if usable(candidate.MAC) {
		existing.MAC = candidate.MAC
	}
	if candidate.Type != "" {
		existing.Type = candidate.Type
	}
	if candidate.Status != "" {
		existing.Status = candidate.Status
	}
	existing.IsEthernet = existing.IsEthernet || candidate.IsEthernet
	existing.IsWebsiteUser = existing.IsWebsiteUser || candidate.IsWebsiteUser
}

// UpsertUser matches by id, then (when enabled) by exact name among all
// known users regardless of status, and marks the record online. A miss
// inserts a new user with a generated id.
func (r *Registry) UpsertUser(candidate domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	if candidate.ID != "" {
		for i, u := range r.users {
			if u.ID == candidate.ID {
				idx = i
				break
			}
		}
	}
	if idx < 0 && r.mergeUsersByName && candidate.Name != "" {
		for i, u := range r.users {
			if u.Name == candidate.Name {
				idx = i
				break
			}
		}
	}

	if idx >= 0 {
		existing := &r.users[idx]
		existing.Status = domain.StatusOnline
		existing.Name = domain.BetterName(existing.Name, candidate.Name)
		if candidate.ClientIP != "" {
			existing.ClientIP = candidate.ClientIP
		}
		return *existing
	}

	if candidate.ID == "" {
		candidate.ID = newUserID()
	}
	if candidate.Name == "" {
		candidate.Name = "Web User " + uuid.NewString()[:8]
	}
	candidate.Status = domain.StatusOnline
	r.users = append(r.users, candidate)
	return candidate
}

// RemoveUserSession flips the user offline, drops its synthetic session
// device, and wipes everything when no user remains online.
func (r *Registry) RemoveUserSession(id domain.UserID) (domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, u := range r.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.User{}, false, domain.ErrUserNotFound
	}

	r.users[idx].Status = domain.StatusOffline
	user := r.users[idx]

	r.removeDeviceLocked(domain.SessionDeviceID(id))

	for _, u := range r.users {
		if u.Status == domain.StatusOnline {
			return user, false, nil
		}
	}

	// No state worth keeping once the room is empty.
	r.resetLocked()
	return user, true, nil
}

func (r *Registry) removeDeviceLocked(id domain.DeviceID) {
	for i, dev := range r.devices {
		if dev.ID == id {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return
		}
	}
}

// Connect validates that both endpoints exist, runs admission against the
// current state, and inserts the approved connection. All under the write
// lock so the whole operation is all-or-nothing.
func (r *Registry) Connect(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.entityExistsLocked(sourceID) || !r.entityExistsLocked(targetID) {
		return domain.Connection{}, domain.ErrEntityNotFound
	}

	view := admission.View{
		Devices:     r.devices,
		Users:       r.users,
		Connections: r.conns,
	}
	if err := admission.CanConnect(sourceID, targetID, connType, view); err != nil {
		return domain.Connection{}, err
	}

	conn := domain.Connection{
		ID:          newConnectionID(),
		SourceID:    sourceID,
		TargetID:    targetID,
		Type:        connType,
		Status:      domain.ConnectionActive,
		Established: time.Now(),
	}
	r.conns = append(r.conns, conn)
	return conn, nil
}

func (r *Registry) entityExistsLocked(id string) bool {
	for _, dev := range r.devices {
		if string(dev.ID) == id {
			return true
		}
	}
	for _, u := range r.users {
		if string(u.ID) == id {
			return true
		}
	}
	return false
}

func (r *Registry) RemoveConnection(id domain.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, conn := range r.conns {
		if conn.ID == id {
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			return nil
		}
	}
	return domain.ErrConnectionNotFound
}

func (r *Registry) SetLastTest(id domain.ConnectionID, result domain.TestResult) (domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.conns {
		if r.conns[i].ID == id {
			r.conns[i].LastTest = &result
			return r.conns[i], nil
		}
	}
	return domain.Connection{}, domain.ErrConnectionNotFound
}

func (r *Registry) GetDevice(id domain.DeviceID) (domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dev := range r.devices {
		if dev.ID == id {
			return dev, nil
		}
	}
	return domain.Device{}, domain.ErrDeviceNotFound
}

func (r *Registry) GetUser(id domain.UserID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *Registry) GetConnection(id domain.ConnectionID) (domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conn := range r.conns {
		if conn.ID == id {
			return conn, nil
		}
	}
	return domain.Connection{}, domain.ErrConnectionNotFound
}

func (r *Registry) Devices() []domain.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

func (r *Registry) Users() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *Registry) Connections() []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Connection, len(r.conns))
	copy(out, r.conns)
	return out
}

func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Registry) resetLocked() {
	r.devices = nil
	r.users = nil
	r.conns = nil
}
