package services

import (
	"context"
	"time"

	"lanmesh/internal/core/admission"
	"lanmesh/internal/core/domain"
	"lanmesh/internal/core/ports"
	apperrors "lanmesh/pkg/errors"

	"go.uber.org/zap"
)

// NetworkService orchestrates discovery, admission, quality tests and
// session lifecycle over the registry, and fans every mutation out to the
// push channel as a full collection snapshot.
type NetworkService struct {
	registry ports.Registry
	probe    ports.Probe
	sessions *SessionTracker
	recorder ports.MetricsRecorder

	broadcaster ports.Broadcaster

	logger *zap.SugaredLogger
}

func NewNetworkService(
	registry ports.Registry,
	probe ports.Probe,
	sessions *SessionTracker,
	recorder ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) *NetworkService {
	return &NetworkService{
		registry: registry,
		probe:    probe,
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
	}
}

// SetBroadcaster wires the push gateway in after construction; the hub
// needs the service and the service needs the hub.
func (s *NetworkService) SetBroadcaster(b ports.Broadcaster) {
	s.broadcaster = b
}

// Scan runs discovery, merges the results into the registry and
// broadcasts the device collection. Returns the merged records for the
// devices this scan found.
func (s *NetworkService) Scan(ctx context.Context) ([]domain.Device, error) {
	found, err := s.probe.Scan(ctx)
	if err != nil {
		s.recorder.RecordProbeFailure("arp")
		return nil, apperrors.WrapError(err, apperrors.ErrCodeInternal, "scan failed", 500)
	}

	merged := make([]domain.Device, 0, len(found))
	for _, dev := range found {
		merged = append(merged, s.registry.UpsertDevice(dev))
	}

	s.recorder.RecordScan(len(found))
	s.publishDevices()
	s.updateGauges()

	s.logger.Infow("scan merged into registry", "found", len(found))
	return merged, nil
}

func (s *NetworkService) Devices() []domain.Device         { return s.registry.Devices() }
func (s *NetworkService) Users() []domain.User             { return s.registry.Users() }
func (s *NetworkService) Connections() []domain.Connection { return s.registry.Connections() }

// UsersWithMetrics annotates the user snapshot with live metrics,
// best-effort: a failed probe leaves the fields null.
func (s *NetworkService) UsersWithMetrics(ctx context.Context) []domain.User {
	users := s.registry.Users()
	for i := range users {
		metrics := s.probe.Measure(ctx, string(users[i].ID))
		users[i].NetworkMetrics = &metrics
	}
	return users
}

// DeviceMetrics returns cached probe metrics for a single device.
func (s *NetworkService) DeviceMetrics(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	if _, err := s.registry.GetDevice(deviceID); err != nil {
		return domain.Metrics{}, apperrors.NewNotFoundError("device")
	}
	return s.probe.Measure(ctx, string(deviceID)), nil
}

// DeviceBandwidth returns the shared cached bandwidth measurement for a
// device.
func (s *NetworkService) DeviceBandwidth(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	return s.DeviceMetrics(ctx, deviceID)
}

// DeviceSpeedtest forces a fresh measurement, bypassing the cache.
func (s *NetworkService) DeviceSpeedtest(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	if _, err := s.registry.GetDevice(deviceID); err != nil {
		return domain.Metrics{}, apperrors.NewNotFoundError("device")
	}
	return s.probe.MeasureFresh(ctx, string(deviceID)), nil
}

// Connect submits a proposed connection to the admission engine and
// broadcasts the connection collection on approval.
func (s *NetworkService) Connect(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error) {
	conn, err := s.registry.Connect(sourceID, targetID, connType)
	if err != nil {
		if err == domain.ErrEntityNotFound {
			return domain.Connection{}, apperrors.NewNotFoundError("entity")
		}
		if admission.IsDenied(err) {
			s.recorder.RecordAdmission(string(connType), false)
			s.logger.Infow("connection denied",
				"source", sourceID, "target", targetID, "type", connType, "reason", err.Error())
			return domain.Connection{}, apperrors.NewAdmissionDeniedError(err.Error())
		}
		return domain.Connection{}, apperrors.WrapError(err, apperrors.ErrCodeInternal, "connect failed", 500)
	}

	s.recorder.RecordAdmission(string(connType), true)
	s.publishConnections()
	s.updateGauges()

	s.logger.Infow("connection established",
		"id", conn.ID, "source", sourceID, "target", targetID, "type", connType)
	return conn, nil
}

func (s *NetworkService) RemoveConnection(id domain.ConnectionID) error {
	if err := s.registry.RemoveConnection(id); err != nil {
		return apperrors.NewNotFoundError("connection")
	}

	s.publishConnections()
	s.updateGauges()
	return nil
}

// TestConnection probes both endpoints independently and stores the
// averaged result as the connection's last test. A failed side counts as
// zero in the average.
func (s *NetworkService) TestConnection(ctx context.Context, id domain.ConnectionID) (domain.TestResult, error) {
	conn, err := s.registry.GetConnection(id)
	if err != nil {
		return domain.TestResult{}, apperrors.NewNotFoundError("connection")
	}

	sourceMetrics := s.probe.Measure(ctx, conn.SourceID)
	targetMetrics := s.probe.Measure(ctx, conn.TargetID)

	result := domain.TestResult{
		Metrics:   domain.Average(sourceMetrics, targetMetrics),
		Timestamp: time.Now(),
	}

	if _, err := s.registry.SetLastTest(id, result); err != nil {
		return domain.TestResult{}, apperrors.NewNotFoundError("connection")
	}

	s.publishConnections()
	return result, nil
}

// RegisterUser handles a push-channel registration: resolves the user
// identity, binds the session, and anchors it in the device set with a
// synthetic entry that merges into a scanned device sharing the client
// IP when one exists.
func (s *NetworkService) RegisterUser(sessionID domain.SessionID, userID domain.UserID, name, clientIP string) (domain.User, error) {
	user := s.registry.UpsertUser(domain.User{
		ID:       userID,
		Name:     name,
		ClientIP: clientIP,
	})

	s.sessions.Attach(sessionID, user.ID)

	ip := clientIP
	if ip == "" {
		ip = domain.UnknownValue
	}
	s.registry.UpsertDevice(domain.Device{
		ID:            domain.SessionDeviceID(user.ID),
		Name:          user.Name,
		IP:            ip,
		MAC:           domain.UnknownValue,
		Type:          domain.DeviceTypeComputer,
		Status:        domain.StatusOnline,
		IsWebsiteUser: true,
	})

	s.publishUsers()
	s.publishDevices()
	s.updateGauges()

	s.logger.Infow("user registered", "user_id", user.ID, "name", user.Name, "session_id", sessionID)
	return user, nil
}

// DetachSession tears down a disconnected session: the user goes offline,
// its synthetic device is dropped, and when no user remains online the
// whole registry resets. All three collections are rebroadcast either way.
func (s *NetworkService) DetachSession(sessionID domain.SessionID) {
	if userID, ok := s.sessions.Detach(sessionID); ok {
		user, reset, err := s.registry.RemoveUserSession(userID)
		if err != nil {
			s.logger.Warnw("detach for unknown user", "user_id", userID, "error", err)
		} else if reset {
			s.sessions.Clear()
			s.logger.Infow("all users disconnected, registry cleared")
		} else {
			s.logger.Infow("user went offline", "user_id", user.ID)
		}
	}

	s.publishUsers()
	s.publishConnections()
	s.publishDevices()
	s.updateGauges()
}

func (s *NetworkService) publishDevices() {
	if s.broadcaster != nil {
		s.broadcaster.PublishDevices(s.registry.Devices())
	}
}

func (s *NetworkService) publishUsers() {
	if s.broadcaster != nil {
		s.broadcaster.PublishUsers(s.registry.Users())
	}
}

func (s *NetworkService) publishConnections() {
	if s.broadcaster != nil {
		s.broadcaster.PublishConnections(s.registry.Connections())
	}
}

func (s *NetworkService) updateGauges() {
	online := 0
	for _, u := range s.registry.Users() {
		if u.Status == domain.StatusOnline {
			online++
		}
	}
	s.recorder.SetCollectionSizes(len(s.registry.Devices()), online, len(s.registry.Connections()))
}
