package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/kv"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/shared/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	store  *workspace.Store
	ctrl   *preview.Controller
}

func setup(t *testing.T) *fixture {
	t.Helper()
	prefs := workspace.NewPreferences(kv.NewMemory(), nil)
	store := workspace.New(templates.MustBuiltin(), prefs, nil)
	ctrl := preview.NewController(store, pipeline.NewBoundary(pipeline.New(pipeline.DefaultConfig(), nil)), nil)
	ctrl.Start(context.Background())
	t.Cleanup(ctrl.Stop)

	h := NewHandlers(store, ctrl, prefs, monitoring.NewMetrics())
	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/topics", h.ListTopics)
	r.GET("/topics/:topic", h.GetTopic)
	r.PUT("/topics/:topic/files/:kind", h.UpdateFile)
	r.GET("/workspace/active", h.GetActive)
	r.PUT("/workspace/active", h.SetActive)
	r.GET("/preview", h.Preview)
	r.GET("/preview/document", h.Document)
	r.POST("/preview/events", h.DispatchEvent)

	return &fixture{router: r, store: store, ctrl: ctrl}
}

func (f *fixture) do(method, path, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func outcomeOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	snap, ok := body["snapshot"].(map[string]any)
	if !ok {
		snap = body
	}
	out, ok := snap["outcome"].(map[string]any)
	require.True(t, ok, "body has no outcome: %v", body)
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])

	w = f.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, string(topic.UseState), body["active_topic"])
	assert.Equal(t, "rendered", body["preview"].(map[string]any)["outcome"])
	assert.Equal(t, "closed", body["preferences"].(map[string]any)["breaker"])
}

func TestListTopics(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/topics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	topics := body["topics"].([]any)
	assert.Len(t, topics, len(topic.All()))
	assert.Equal(t, string(topic.UseState), body["active"])
}

func TestGetTopic(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/topics/useRef", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["active"])
	files := body["files"].(map[string]any)
	assert.NotEmpty(t, files["script"])
	digest := body["digest"]
	assert.Len(t, digest, 64)

	require.NoError(t, f.store.Update(topic.UseRef, workspace.Stylesheet, "p {}"))
	w = f.do(http.MethodGet, "/topics/useRef", "", "")
	assert.NotEqual(t, digest, decode(t, w)["digest"])

	w = f.do(http.MethodGet, "/topics/useSteak", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestUpdateFile(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPut, "/topics/useState/files/js", "application/json",
		`{"content": "const Example = () => <p>json</p>;"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := outcomeOf(t, decode(t, w))
	assert.Equal(t, "rendered", out["kind"])
	assert.Equal(t, "<p>json</p>", out["html"])

	// raw text body
	w = f.do(http.MethodPut, "/topics/useState/files/js", "text/plain", "const Example = () => <div>;")
	require.Equal(t, http.StatusOK, w.Code)
	out = outcomeOf(t, decode(t, w))
	assert.Equal(t, "failed", out["kind"])
	assert.NotEmpty(t, out["diagnostic"])

	w = f.do(http.MethodPut, "/topics/useState/files/css", "text/plain", "p { color: red; }")
	require.Equal(t, http.StatusOK, w.Code)
	files, err := f.store.Get(topic.UseState)
	require.NoError(t, err)
	assert.Equal(t, "p { color: red; }", files.Stylesheet)
}

func TestUpdateFileErrors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
	}{
		{"unknown topic", "/topics/useNothing/files/js", "text/plain", "x", http.StatusNotFound},
		{"unknown kind", "/topics/useState/files/html", "text/plain", "x", http.StatusNotFound},
		{"bad json", "/topics/useState/files/js", "application/json", "{", http.StatusBadRequest},
		{"missing content", "/topics/useState/files/js", "application/json", "{}", http.StatusBadRequest},
		{"nul byte", "/topics/useState/files/js", "text/plain", "a\x00b", http.StatusBadRequest},
		{"too large", "/topics/useState/files/js", "text/plain", strings.Repeat("a", utils.MaxSourceSize+2048), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPut, tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestActiveTopic(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/workspace/active", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(topic.UseState), decode(t, w)["topic"])

	w = f.do(http.MethodPut, "/workspace/active", "application/json", `{"topic": "usecontext"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, string(topic.UseContext), body["topic"])
	assert.Equal(t, string(topic.UseContext), outcomeOf(t, body)["topic"])
	assert.Equal(t, topic.UseContext, f.store.Active())

	w = f.do(http.MethodPut, "/workspace/active", "application/json", `{"topic": "nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPut, "/workspace/active", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/preview", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "start", body["trigger"])
	out := outcomeOf(t, body)
	assert.Equal(t, "rendered", out["kind"])
	assert.NotContains(t, out, "Stage")
}

func TestDocumentETag(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodGet, "/preview/document", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("#preview button").Length())
	assert.Contains(t, doc.Find("style").Text(), ".counter")

	w = f.do(http.MethodGet, "/preview/document", "", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	require.NoError(t, f.store.Update(topic.UseState, workspace.Stylesheet, "p {}"))
	w = f.do(http.MethodGet, "/preview/document", "", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, tag, w.Header().Get("ETag"))
}

func TestDispatchEvent(t *testing.T) {
	f := setup(t)
	buttons := f.ctrl.Snapshot().Outcome.Tree.Query("button")
	require.Len(t, buttons, 2)

	w := f.do(http.MethodPost, "/preview/events", "application/json",
		`{"node_id": "`+buttons[0].ID+`", "event": "click"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "dispatch", body["trigger"])
	assert.Contains(t, outcomeOf(t, body)["html"], "Count: 1")

	w = f.do(http.MethodPost, "/preview/events", "application/json", `{"node_id": "n999", "event": "click"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/preview/events", "application/json", `{"node_id": "n1", "event": "Click!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/preview/events", "application/json", `{"event": "click"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchHandlerError(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Update(topic.UseState, workspace.Script, `
const Example = () => {
  const [n, setN] = useState(0);
  return <button onClick={() => { setN(n + 1); throw new Error("boom"); }}>{n}</button>;
};`))
	id := f.ctrl.Snapshot().Outcome.Tree.Query("button")[0].ID

	w := f.do(http.MethodPost, "/preview/events", "application/json", `{"node_id": "`+id+`", "event": "click"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Contains(t, body["error"], "boom")
	out := outcomeOf(t, body)
	assert.Equal(t, "rendered", out["kind"])
	assert.Contains(t, out["html"], ">1<")
}

func TestDispatchRenderFailure(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Update(topic.UseState, workspace.Script, `
const Example = () => {
  const [broken, setBroken] = useState(false);
  if (broken) { throw new Error("render exploded"); }
  return <button onClick={() => setBroken(true)}>break</button>;
};`))
	id := f.ctrl.Snapshot().Outcome.Tree.Query("button")[0].ID

	w := f.do(http.MethodPost, "/preview/events", "application/json", `{"node_id": "`+id+`", "event": "click"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := outcomeOf(t, decode(t, w))
	assert.Equal(t, "failed", out["kind"])
	assert.Contains(t, out["diagnostic"], "render exploded")

	// the failed run has no live session left
	w = f.do(http.MethodPost, "/preview/events", "application/json", `{"node_id": "`+id+`", "event": "click"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
