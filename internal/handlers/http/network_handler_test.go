package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lanmesh/internal/core/domain"
	apperrors "lanmesh/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService implements ports.NetworkService with overridable behavior
// per test.
type stubService struct {
	scanFn    func(ctx context.Context) ([]domain.Device, error)
	devices   []domain.Device
	users     []domain.User
	conns     []domain.Connection
	metricsFn func(deviceID domain.DeviceID) (domain.Metrics, error)
	connectFn func(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error)
	removeFn  func(id domain.ConnectionID) error
	testFn    func(id domain.ConnectionID) (domain.TestResult, error)
}

func (s *stubService) Scan(ctx context.Context) ([]domain.Device, error) {
	if s.scanFn != nil {
		return s.scanFn(ctx)
	}
	return s.devices, nil
}

func (s *stubService) Devices() []domain.Device         { return s.devices }
func (s *stubService) Users() []domain.User             { return s.users }
func (s *stubService) Connections() []domain.Connection { return s.conns }

func (s *stubService) UsersWithMetrics(context.Context) []domain.User { return s.users }

func (s *stubService) DeviceMetrics(_ context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	if s.metricsFn != nil {
		return s.metricsFn(deviceID)
	}
	return domain.Metrics{}, nil
}

func (s *stubService) DeviceBandwidth(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	return s.DeviceMetrics(ctx, deviceID)
}

func (s *stubService) DeviceSpeedtest(ctx context.Context, deviceID domain.DeviceID) (domain.Metrics, error) {
	return s.DeviceMetrics(ctx, deviceID)
}

func (s *stubService) Connect(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error) {
	if s.connectFn != nil {
		return s.connectFn(sourceID, targetID, connType)
	}
	return domain.Connection{}, nil
}

func (s *stubService) RemoveConnection(id domain.ConnectionID) error {
	if s.removeFn != nil {
		return s.removeFn(id)
	}
	return nil
}

func (s *stubService) TestConnection(_ context.Context, id domain.ConnectionID) (domain.TestResult, error) {
	if s.testFn != nil {
		return s.testFn(id)
	}
	return domain.TestResult{}, nil
}

func (s *stubService) RegisterUser(domain.SessionID, domain.UserID, string, string) (domain.User, error) {
	return domain.User{}, nil
}

func (s *stubService) DetachSession(domain.SessionID) {}

func newTestRouter(service *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewNetworkHandler(service).SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScanEndpoint(t *testing.T) {
	service := &stubService{devices: []domain.Device{
		{ID: "dev-1", Name: "router", IP: "192.168.1.1", Type: domain.DeviceTypeRouter},
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/scan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var devices []domain.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "router", devices[0].Name)
}

func TestScanEndpoint_Failure(t *testing.T) {
	service := &stubService{scanFn: func(context.Context) ([]domain.Device, error) {
		return nil, apperrors.NewInternalError("scan failed")
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/scan", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListDevicesEndpoint(t *testing.T) {
	service := &stubService{devices: []domain.Device{{ID: "dev-1", Name: "host"}}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodGet, "/api/devices", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var devices []domain.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	assert.Len(t, devices, 1)
}

func TestListUsersEndpoint(t *testing.T) {
	metrics := domain.Metrics{DownloadSpeed: domain.Float(42)}
	service := &stubService{users: []domain.User{
		{ID: "user-1", Name: "Alice", Status: domain.StatusOnline, NetworkMetrics: &metrics},
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.NotNil(t, users[0].NetworkMetrics)
	assert.Equal(t, 42.0, *users[0].NetworkMetrics.DownloadSpeed)
}

func TestDeviceMetricsEndpoint_NullFieldsSerializeAsNull(t *testing.T) {
	service := &stubService{metricsFn: func(domain.DeviceID) (domain.Metrics, error) {
		return domain.Metrics{DownloadSpeed: domain.Float(100)}, nil
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodGet, "/api/devices/dev-1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 100.0, payload["downloadSpeed"])

	// A failed probe field is null on the wire, not zero.
	value, present := payload["uploadSpeed"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestDeviceMetricsEndpoint_NotFound(t *testing.T) {
	service := &stubService{metricsFn: func(domain.DeviceID) (domain.Metrics, error) {
		return domain.Metrics{}, apperrors.NewNotFoundError("device")
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodGet, "/api/devices/missing/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "device not found", payload["error"])
}

func TestConnectEndpoint(t *testing.T) {
	service := &stubService{connectFn: func(sourceID, targetID string, connType domain.ConnectionType) (domain.Connection, error) {
		return domain.Connection{
			ID:          "conn-1",
			SourceID:    sourceID,
			TargetID:    targetID,
			Type:        connType,
			Status:      domain.ConnectionActive,
			Established: time.Now(),
		}, nil
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/connect", map[string]string{
		"userId":         "user-1",
		"sourceId":       "dev-1",
		"connectionType": "LAN",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var conn domain.Connection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conn))
	assert.Equal(t, "dev-1", conn.SourceID)
	assert.Equal(t, "user-1", conn.TargetID)
	assert.Equal(t, domain.ConnectionLAN, conn.Type)
}

func TestConnectEndpoint_MissingFields(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := doRequest(router, http.MethodPost, "/api/connect", map[string]string{
		"userId": "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectEndpoint_AdmissionDenied(t *testing.T) {
	service := &stubService{connectFn: func(string, string, domain.ConnectionType) (domain.Connection, error) {
		return domain.Connection{}, apperrors.NewAdmissionDeniedError("P2P connections are limited to 2 users only")
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/connect", map[string]string{
		"userId":         "user-1",
		"sourceId":       "dev-1",
		"connectionType": "P2P",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "P2P connections are limited to 2 users only", payload["error"])
}

func TestRemoveConnectionEndpoint(t *testing.T) {
	var removed domain.ConnectionID
	service := &stubService{removeFn: func(id domain.ConnectionID) error {
		removed = id
		return nil
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodDelete, "/api/connections/conn-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ConnectionID("conn-1"), removed)

	var payload map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload["success"])
}

func TestRemoveConnectionEndpoint_NotFound(t *testing.T) {
	service := &stubService{removeFn: func(domain.ConnectionID) error {
		return apperrors.NewNotFoundError("connection")
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodDelete, "/api/connections/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTestConnectionEndpoint(t *testing.T) {
	service := &stubService{testFn: func(domain.ConnectionID) (domain.TestResult, error) {
		return domain.TestResult{
			Metrics:   domain.Metrics{DownloadSpeed: domain.Float(50), PacketLoss: domain.Float(2.5)},
			Timestamp: time.Now(),
		}, nil
	}}
	router := newTestRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/connections/conn-1/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.TestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Metrics.DownloadSpeed)
	assert.Equal(t, 50.0, *result.Metrics.DownloadSpeed)
	assert.Equal(t, 2.5, *result.Metrics.PacketLoss)
}
