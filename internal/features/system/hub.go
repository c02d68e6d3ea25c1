package system

import (
	"encoding/json"
	"sync"
	"time"

	"crm-reports/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is the envelope pushed to websocket clients.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	tenant string
}

// Hub fans report lifecycle events out to websocket clients, keyed by
// tenant so organizations never see each other's events. It satisfies
// the report service's EventPublisher seam.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Publish sends an event to every client of the tenant. A client whose
// buffer is full misses the event; the keepalive deadlines drop it if
// it stays stuck.
func (h *Hub) Publish(tenantID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload, At: time.Now()})
	if err != nil {
		h.logger.Warn("event not serializable", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		if cl.tenant != tenantID {
			continue
		}
		select {
		case cl.send <- data:
		default:
		}
	}
}

// ClientCount reports connected clients, optionally for one tenant.
func (h *Hub) ClientCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if tenantID == "" {
		return len(h.clients)
	}
	n := 0
	for cl := range h.clients {
		if cl.tenant == tenantID {
			n++
		}
	}
	return n
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("websocket client connected", zap.String("tenant", cl.tenant))
}

// unregister closes the send channel under the write lock. Publish
// sends under the read lock, so a send and the close can never overlap.
func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

// HandleConnection runs for the lifetime of one websocket connection.
// The auth middleware has already attached claims, so the tenant comes
// from the upgraded request's locals.
func (h *Hub) HandleConnection(c *websocket.Conn) {
	cl := &client{conn: c, send: make(chan []byte, sendBuffer), tenant: tenantFromConn(c)}
	h.register(cl)

	go h.writePump(cl)
	h.readPump(cl)
	h.unregister(cl)
}

// readPump discards inbound frames; the stream is push-only. Reading
// still has to happen for pong frames and close handshakes to be
// processed.
func (h *Hub) readPump(cl *client) {
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func tenantFromConn(c *websocket.Conn) string {
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		return claims.TenantID
	}
	return ""
}
