package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fixture struct {
	url     string
	hub     *Hub
	store   *workspace.Store
	metrics *monitoring.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := workspace.New(templates.MustBuiltin(), nil, nil)
	ctrl := preview.NewController(store, pipeline.NewBoundary(pipeline.New(pipeline.DefaultConfig(), nil)), nil)
	ctrl.Start(context.Background())

	metrics := monitoring.NewMetrics()
	hub := NewHub(store, ctrl, nil).WithMetrics(metrics)

	r := gin.New()
	r.GET("/stream", hub.HandleConnection)
	srv := httptest.NewServer(r)

	t.Cleanup(srv.Close)
	t.Cleanup(ctrl.Stop)
	t.Cleanup(hub.Close)

	return &fixture{
		url:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream",
		hub:     hub,
		store:   store,
		metrics: metrics,
	}
}

// connect dials and consumes the greeting and initial snapshot
func (f *fixture) connect(t *testing.T) (*websocket.Conn, preview.Snapshot) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := read(t, conn)
	require.Equal(t, TypeSystem, hello.Type)
	assert.NotEmpty(t, hello.ClientID)

	first := read(t, conn)
	require.Equal(t, TypeSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	return conn, *first.Snapshot
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Outbound
	require.NoError(t, json.Unmarshal(data, &msg), string(data))
	return msg
}

func write(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func TestConnectReceivesCurrentSnapshot(t *testing.T) {
	f := setup(t)
	_, snap := f.connect(t)

	assert.Equal(t, topic.UseState, snap.Topic)
	assert.Equal(t, pipeline.Rendered, snap.Outcome.Kind)
	assert.Contains(t, snap.Outcome.HTML, "Count: 0")
	assert.Equal(t, 1, f.hub.Clients())
	assert.Equal(t, int64(1), f.metrics.Snapshot().ActiveConnections)
}

func TestPing(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	write(t, conn, `{"type":"ping"}`)
	assert.Equal(t, TypePong, read(t, conn).Type)
}

func TestUpdateBroadcastsToEveryClient(t *testing.T) {
	f := setup(t)
	a, _ := f.connect(t)
	b, _ := f.connect(t)

	write(t, a, `{"type":"update","topic":"useState","file":"js","content":"const Example = () => <p>hi</p>;"}`)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		require.Equal(t, TypeSnapshot, msg.Type)
		assert.Equal(t, preview.TriggerEdit, msg.Snapshot.Trigger)
		assert.Equal(t, "<p>hi</p>", msg.Snapshot.Outcome.HTML)
	}

	files, err := f.store.Get(topic.UseState)
	require.NoError(t, err)
	assert.Equal(t, "const Example = () => <p>hi</p>;", files.Script)
}

func TestUpdateFailureIsASnapshot(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	write(t, conn, `{"type":"update","topic":"useState","file":"js","content":"const Example = () => <div>;"}`)
	msg := read(t, conn)
	require.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, pipeline.Failed, msg.Snapshot.Outcome.Kind)
	assert.NotEmpty(t, msg.Snapshot.Outcome.Diagnostic)
}

func TestSelect(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	write(t, conn, `{"type":"select","topic":"useRef"}`)
	msg := read(t, conn)
	require.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, topic.UseRef, msg.Snapshot.Topic)
	assert.Equal(t, preview.TriggerSelect, msg.Snapshot.Trigger)
	assert.Equal(t, topic.UseRef, f.store.Active())

	write(t, conn, `{"type":"select","topic":"useNothing"}`)
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, CodeUnknownTopic, msg.Code)
}

func TestDispatch(t *testing.T) {
	f := setup(t)
	conn, snap := f.connect(t)
	buttons := snap.Outcome.Tree.Query("button")
	require.Len(t, buttons, 2)

	write(t, conn, `{"type":"dispatch","node_id":"`+buttons[0].ID+`","event":"click"}`)
	msg := read(t, conn)
	require.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, preview.TriggerDispatch, msg.Snapshot.Trigger)
	assert.Contains(t, msg.Snapshot.Outcome.HTML, "Count: 1")

	write(t, conn, `{"type":"dispatch","node_id":"n999","event":"click"}`)
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, CodeNodeNotFound, msg.Code)
}

func TestDispatchHandlerError(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	write(t, conn, `{"type":"update","topic":"useState","file":"js","content":"const Example = () => <button onClick={() => { throw new Error('nope'); }}>x</button>;"}`)
	msg := read(t, conn)
	require.Equal(t, pipeline.Rendered, msg.Snapshot.Outcome.Kind, msg.Snapshot.Outcome.Diagnostic)
	id := msg.Snapshot.Outcome.Tree.Query("button")[0].ID

	write(t, conn, `{"type":"dispatch","node_id":"`+id+`","event":"click"}`)

	// the refreshed snapshot goes out first, then the error to the sender
	msg = read(t, conn)
	require.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, pipeline.Rendered, msg.Snapshot.Outcome.Kind)
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, CodeHandler, msg.Code)
	assert.Contains(t, msg.Message, "nope")
}

func TestInvalidMessages(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	tests := []struct {
		name string
		msg  string
		code string
	}{
		{"malformed", `{"type":`, CodeInvalid},
		{"unknown type", `{"type":"shout"}`, CodeInvalid},
		{"missing content", `{"type":"update","topic":"useState","file":"js"}`, CodeInvalid},
		{"unknown file", `{"type":"update","topic":"useState","file":"html","content":""}`, CodeInvalid},
		{"unknown topic", `{"type":"update","topic":"nope","file":"js","content":""}`, CodeUnknownTopic},
		{"bad event", `{"type":"dispatch","node_id":"n1","event":"On Click"}`, CodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			write(t, conn, tt.msg)
			msg := read(t, conn)
			assert.Equal(t, TypeError, msg.Type)
			assert.Equal(t, tt.code, msg.Code)
		})
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	f := setup(t)
	conn, _ := f.connect(t)

	f.hub.Close()
	assert.Equal(t, 0, f.hub.Clients())
	assert.Equal(t, int64(0), f.metrics.Snapshot().ActiveConnections)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// connections after Close are refused
	late, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	defer late.Close()
	require.NoError(t, late.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}
