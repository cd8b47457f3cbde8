package push

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"lanmesh/internal/core/domain"
	"lanmesh/internal/core/ports"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // demo server, any origin may connect
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub is the broadcast gateway and push-channel endpoint: one persistent
// websocket per session, full collection snapshots on every mutation, all
// three collections delivered at attach time.
type Hub struct {
	service  ports.NetworkService
	recorder ports.MetricsRecorder

	sessions map[domain.SessionID]*session
	mu       sync.RWMutex

	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

// session serializes writes to one websocket connection.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *session) writeJSON(timeout time.Duration, v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(timeout))
	return s.conn.WriteJSON(v)
}

type Config struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
}

// Message is the wire envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a server-to-client push.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type RegisterUserPayload struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func NewHub(service ports.NetworkService, recorder ports.MetricsRecorder, cfg Config, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		service:      service,
		recorder:     recorder,
		sessions:     make(map[domain.SessionID]*session),
		pingInterval: cfg.PingInterval,
		pongTimeout:  cfg.PongTimeout,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
	}
}

// HandleWebSocket upgrades the request and runs the session loop until
// the client goes away. Disconnect drives session teardown in the
// service, which may trigger a global registry reset.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := domain.SessionID(uuid.NewString())
	sess := &session{conn: conn}

	h.mu.Lock()
	h.sessions[sessionID] = sess
	h.mu.Unlock()

	clientIP := requestClientIP(r)
	h.logger.Infow("client connected", "session_id", sessionID, "client_ip", clientIP)

	// Current state goes out before anything else so a new tab renders
	// immediately.
	h.sendSnapshot(sess)

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(h.pingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan Message, 10)
	errorChan := make(chan error, 1)

	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
			messageChan <- msg
		}
	}()

	for {
		select {
		case msg := <-messageChan:
			if err := h.handleMessage(sessionID, sess, clientIP, msg); err != nil {
				h.logger.Infow("error handling message", "session_id", sessionID, "type", msg.Type, "error", err)
				h.sendError(sess, err.Error())
			}

		case <-pingTicker.C:
			sess.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			sess.writeMu.Unlock()
			if err != nil {
				h.logger.Infow("error sending ping", "session_id", sessionID, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Infow("error reading message", "session_id", sessionID, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()

	h.service.DetachSession(sessionID)
	h.logger.Infow("client disconnected", "session_id", sessionID)
}

func (h *Hub) handleMessage(sessionID domain.SessionID, sess *session, clientIP string, msg Message) error {
	switch msg.Type {
	case "register-user":
		var payload RegisterUserPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}

		user, err := h.service.RegisterUser(sessionID, domain.UserID(payload.ID), payload.Name, clientIP)
		if err != nil {
			return err
		}

		return sess.writeJSON(h.writeTimeout, Event{Type: "user-registered", Payload: user})

	default:
		h.logger.Debugw("ignoring unknown message type", "session_id", sessionID, "type", msg.Type)
		return nil
	}
}

// sendSnapshot delivers all three collections to one session.
func (h *Hub) sendSnapshot(sess *session) {
	sess.writeJSON(h.writeTimeout, Event{Type: "device-update", Payload: h.service.Devices()})
	sess.writeJSON(h.writeTimeout, Event{Type: "user-update", Payload: h.service.Users()})
	sess.writeJSON(h.writeTimeout, Event{Type: "connection-update", Payload: h.service.Connections()})
}

func (h *Hub) sendError(sess *session, message string) {
	sess.writeJSON(h.writeTimeout, Event{Type: "error", Payload: map[string]string{"message": message}})
}

// broadcast fans an event out to every connected session. A failed write
// only logs; the dead session cleans itself up via its read loop.
func (h *Hub) broadcast(event Event) {
	h.mu.RLock()
	targets := make(map[domain.SessionID]*session, len(h.sessions))
	for id, sess := range h.sessions {
		targets[id] = sess
	}
	h.mu.RUnlock()

	for id, sess := range targets {
		if err := sess.writeJSON(h.writeTimeout, event); err != nil {
			h.logger.Infow("broadcast write failed", "session_id", id, "type", event.Type, "error", err)
		}
	}
	h.recorder.RecordBroadcast(event.Type)
}

// PublishDevices implements ports.Broadcaster.
func (h *Hub) PublishDevices(devices []domain.Device) {
	h.broadcast(Event{Type: "device-update", Payload: devices})
}

// PublishUsers implements ports.Broadcaster.
func (h *Hub) PublishUsers(users []domain.User) {
	h.broadcast(Event{Type: "user-update", Payload: users})
}

// PublishConnections implements ports.Broadcaster.
func (h *Hub) PublishConnections(connections []domain.Connection) {
	h.broadcast(Event{Type: "connection-update", Payload: connections})
}

// SessionCount returns the number of attached sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func requestClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := net.ParseIP(xff); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
