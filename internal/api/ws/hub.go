package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
	"github.com/GriffinCanCode/hookify/backend/internal/shared/utils"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware guards the HTTP surface
	},
}

// client is one open connection. send is closed by the hub only.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans controller snapshots out to every connected client and feeds
// client edits, selections and events back into the workspace.
type Hub struct {
	store   *workspace.Store
	preview *preview.Controller
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu          sync.RWMutex
	clients     map[string]*client
	closed      bool
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewHub creates a hub and subscribes it to ctrl
func NewHub(store *workspace.Store, ctrl *preview.Controller, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Hub{
		store:   store,
		preview: ctrl,
		logger:  logger.Named("ws"),
		clients: make(map[string]*client),
	}
	h.unsubscribe = ctrl.Subscribe(h.broadcast)
	return h
}

// WithMetrics records connections and messages
func (h *Hub) WithMetrics(m *monitoring.Metrics) *Hub {
	h.metrics = m
	return h
}

// Clients returns the number of open connections
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection upgrades the request and serves the connection until
// the client goes away or the hub is closed
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !h.register(cl) {
		conn.Close()
		return
	}
	defer h.unregister(cl)

	h.wg.Add(1)
	go h.writePump(cl)

	h.send(cl, Outbound{
		Type:      TypeSystem,
		ClientID:  cl.id,
		Message:   "Connected to Hookify",
		Timestamp: time.Now().Unix(),
	})
	if snap := h.preview.Snapshot(); snap.Seq > 0 {
		h.send(cl, snapshotMessage(snap))
	}

	h.readPump(c.Request.Context(), cl)
}

func (h *Hub) register(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl.id] = cl
	h.wg.Add(1)
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Debug("Client connected", zap.String("client_id", cl.id))
	return true
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; ok {
		delete(h.clients, cl.id)
		close(cl.send)
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
	}
	h.mu.Unlock()

	h.logger.Debug("Client disconnected", zap.String("client_id", cl.id))
	h.wg.Done()
}

func (h *Hub) readPump(ctx context.Context, cl *client) {
	cl.conn.SetReadLimit(utils.MaxMessageSize)
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("client_id", cl.id), zap.Error(err))
			}
			return
		}

		var msg Inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.send(cl, errorMessage(CodeInvalid, "malformed message"))
			continue
		}
		h.recordMessage("in", msg.Type)
		h.handle(ctx, cl, msg)
	}
}

func (h *Hub) writePump(cl *client) {
	defer h.wg.Done()
	defer cl.conn.Close()

	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("WebSocket write error", zap.String("client_id", cl.id), zap.Error(err))
			// unblock readPump, then drain until it unregisters
			cl.conn.Close()
			for range cl.send {
			}
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) handle(ctx context.Context, cl *client, msg Inbound) {
	switch msg.Type {
	case TypeUpdate:
		h.handleUpdate(cl, msg)
	case TypeSelect:
		t, err := topic.Parse(msg.Topic)
		if err != nil {
			h.send(cl, errorMessage(CodeUnknownTopic, err.Error()))
			return
		}
		if err := h.store.SetActive(t); err != nil {
			h.send(cl, errorMessage(CodeInvalid, err.Error()))
		}
	case TypeDispatch:
		h.handleDispatch(ctx, cl, msg)
	case TypePing:
		h.send(cl, Outbound{Type: TypePong, Timestamp: time.Now().Unix()})
	default:
		h.send(cl, errorMessage(CodeInvalid, "unknown message type"))
	}
}

// handleUpdate applies an edit. The resulting snapshot, if the topic is
// active, reaches every client through the controller subscription.
func (h *Hub) handleUpdate(cl *client, msg Inbound) {
	t, err := topic.Parse(msg.Topic)
	if err != nil {
		h.send(cl, errorMessage(CodeUnknownTopic, err.Error()))
		return
	}
	kind, err := workspace.ParseFileKind(msg.File)
	if err != nil {
		h.send(cl, errorMessage(CodeInvalid, err.Error()))
		return
	}
	if msg.Content == nil {
		h.send(cl, errorMessage(CodeInvalid, "content is required"))
		return
	}
	if err := h.store.Update(t, kind, *msg.Content); err != nil {
		h.send(cl, errorMessage(CodeInvalid, err.Error()))
	}
}

func (h *Hub) handleDispatch(ctx context.Context, cl *client, msg Inbound) {
	if err := utils.ValidateEvent(msg.NodeID, msg.Event, msg.Value); err != nil {
		h.send(cl, errorMessage(CodeInvalid, err.Error()))
		return
	}

	_, err := h.preview.Dispatch(ctx, msg.NodeID, react.Event{
		Type:    msg.Event,
		Value:   msg.Value,
		Checked: msg.Checked,
	})

	var he *react.HandlerError
	switch {
	case err == nil:
	case errors.Is(err, react.ErrNodeNotFound):
		h.send(cl, errorMessage(CodeNodeNotFound, "node not found: "+msg.NodeID))
	case errors.Is(err, pipeline.ErrNoSession):
		h.send(cl, errorMessage(CodeNoSession, err.Error()))
	case errors.As(err, &he) && h.preview.Snapshot().Outcome.Kind == pipeline.Rendered:
		h.send(cl, errorMessage(CodeHandler, he.Msg))
	}
	// any other failure already went out as a failed snapshot
}

// broadcast runs inside the controller and must not block
func (h *Hub) broadcast(snap preview.Snapshot) {
	data, err := sonic.Marshal(snapshotMessage(snap))
	if err != nil {
		h.logger.Error("Failed to encode snapshot", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cl := range h.clients {
		h.enqueue(cl, data, TypeSnapshot)
	}
}

func (h *Hub) send(cl *client, msg Outbound) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[cl.id]; ok {
		h.enqueue(cl, data, msg.Type)
	}
}

// enqueue drops the message when the client is not keeping up; callers
// hold mu
func (h *Hub) enqueue(cl *client, data []byte, msgType string) {
	select {
	case cl.send <- data:
		h.recordMessage("out", msgType)
	default:
		h.logger.Warn("Dropping message for slow client",
			zap.String("client_id", cl.id),
			zap.String("type", msgType))
	}
}

func (h *Hub) recordMessage(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

// Close stops broadcasting, disconnects every client and waits for their
// goroutines to finish
func (h *Hub) Close() {
	h.unsubscribe()

	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, cl := range h.clients {
		conns = append(conns, cl.conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	h.wg.Wait()
}
