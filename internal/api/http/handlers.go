package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
	"github.com/GriffinCanCode/hookify/backend/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	store   *workspace.Store
	preview *preview.Controller
	prefs   *workspace.Preferences
	metrics *monitoring.Metrics
	hasher  *utils.Hasher
}

// NewHandlers creates a new handler set. prefs and metrics may be nil.
func NewHandlers(
	store *workspace.Store,
	ctrl *preview.Controller,
	prefs *workspace.Preferences,
	metrics *monitoring.Metrics,
) *Handlers {
	return &Handlers{
		store:   store,
		preview: ctrl,
		prefs:   prefs,
		metrics: metrics,
		hasher:  utils.DefaultHasher(),
	}
}

// Root handles the status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Hookify",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	snap := h.preview.Snapshot()
	body := gin.H{
		"status":       "healthy",
		"active_topic": h.store.Active(),
		"preview": gin.H{
			"seq":     snap.Seq,
			"topic":   snap.Topic,
			"outcome": snap.Outcome.Kind,
		},
	}
	if h.prefs != nil {
		body["preferences"] = gin.H{"breaker": h.prefs.Breaker().State().String()}
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListTopics lists every topic in display order
func (h *Handlers) ListTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"topics": topic.Infos(),
		"active": h.store.Active(),
	})
}

// GetTopic returns the stored script and stylesheet of a topic with a
// digest clients compare to skip reloading unchanged files
func (h *Handlers) GetTopic(c *gin.Context) {
	t, ok := h.topicParam(c)
	if !ok {
		return
	}
	files, err := h.store.Get(t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"topic":  t.Info(),
		"files":  files,
		"digest": h.hasher.HashFields(string(t), files.Script, files.Stylesheet),
		"active": h.store.Active() == t,
	})
}

// updateRequest is the JSON form of a file update
type updateRequest struct {
	Content *string `json:"content"`
}

// UpdateFile is the HTTP face of the workspace's single update entry point.
// The body is either {"content": "..."} or the raw text.
func (h *Handlers) UpdateFile(c *gin.Context) {
	t, ok := h.topicParam(c)
	if !ok {
		return
	}
	kind, err := workspace.ParseFileKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	content, err := readContent(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Update(t, kind, content); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"topic":    t,
		"file":     kind,
		"active":   h.store.Active() == t,
		"snapshot": h.preview.Snapshot(),
	})
}

// GetActive returns the active topic
func (h *Handlers) GetActive(c *gin.Context) {
	active := h.store.Active()
	c.JSON(http.StatusOK, gin.H{"topic": active, "info": active.Info()})
}

type activeRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// SetActive switches the active topic and returns the fresh snapshot
func (h *Handlers) SetActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := topic.Parse(req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.SetActive(t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": t, "snapshot": h.preview.Snapshot()})
}

// Preview returns the latest snapshot
func (h *Handlers) Preview(c *gin.Context) {
	c.JSON(http.StatusOK, h.preview.Snapshot())
}

// Document serves the preview page with an ETag over its bytes
func (h *Handlers) Document(c *gin.Context) {
	body := []byte(h.preview.Document())
	tag := h.hasher.ETag(body)

	c.Header("ETag", tag)
	c.Header("Cache-Control", "no-cache")
	if utils.MatchETag(c.GetHeader("If-None-Match"), tag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

type eventRequest struct {
	NodeID  string  `json:"node_id" binding:"required"`
	Event   string  `json:"event" binding:"required"`
	Value   *string `json:"value"`
	Checked *bool   `json:"checked"`
}

// DispatchEvent delivers an event to a rendered node
func (h *Handlers) DispatchEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateEvent(req.NodeID, req.Event, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.preview.Dispatch(c.Request.Context(), req.NodeID, react.Event{
		Type:    req.Event,
		Value:   req.Value,
		Checked: req.Checked,
	})

	var he *react.HandlerError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, snap)
	case errors.As(err, &he) && snap.Outcome.Kind == pipeline.Rendered:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": he.Msg, "snapshot": snap})
	case errors.Is(err, react.ErrNodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found: " + req.NodeID})
	case errors.Is(err, pipeline.ErrNoSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		// the run failed; the snapshot carries the diagnostic
		c.JSON(http.StatusOK, snap)
	}
}

// topicParam parses :topic, answering 404 when it names no topic
func (h *Handlers) topicParam(c *gin.Context) (topic.Topic, bool) {
	t, err := topic.Parse(c.Param("topic"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return t, true
}

// readContent reads an update body, JSON or raw text
func readContent(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(utils.MaxSourceSize)+1024)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", errBadRequest{err}
		}
		if req.Content == nil {
			return "", errBadRequest{errors.New("content is required")}
		}
		return *req.Content, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", errBadRequest{err}
	}
	return string(data), nil
}
