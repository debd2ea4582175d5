package preview

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	store *workspace.Store
	ctrl  *Controller
	seen  []Snapshot
}

func start(t *testing.T) *fixture {
	t.Helper()
	store := workspace.New(templates.MustBuiltin(), nil, nil)
	ctrl := NewController(store, pipeline.NewBoundary(pipeline.New(pipeline.DefaultConfig(), nil)), nil)

	f := &fixture{store: store, ctrl: ctrl}
	ctrl.Subscribe(func(s Snapshot) { f.seen = append(f.seen, s) })
	ctrl.Start(context.Background())
	t.Cleanup(ctrl.Stop)
	return f
}

func TestStartRendersActiveTopic(t *testing.T) {
	f := start(t)

	require.Len(t, f.seen, 1)
	snap := f.ctrl.Snapshot()
	assert.Equal(t, TriggerStart, snap.Trigger)
	assert.Equal(t, topic.UseState, snap.Topic)
	assert.Equal(t, pipeline.Rendered, snap.Outcome.Kind, snap.Outcome.Diagnostic)
	assert.Contains(t, snap.Stylesheet, ".counter")
}

func TestEditOfActiveTopicReruns(t *testing.T) {
	f := start(t)

	require.NoError(t, f.store.Update(topic.UseState, workspace.Script, "const Example = () => <p>edited</p>;"))
	require.Len(t, f.seen, 2, "the run completes before Update returns")
	assert.Equal(t, TriggerEdit, f.seen[1].Trigger)
	assert.Equal(t, "<p>edited</p>", f.seen[1].Outcome.HTML)

	// stylesheet-only edits run the pipeline again too
	require.NoError(t, f.store.Update(topic.UseState, workspace.Stylesheet, "p { color: red; }"))
	require.Len(t, f.seen, 3)
	assert.Equal(t, "p { color: red; }", f.seen[2].Stylesheet)
	assert.NotEqual(t, f.seen[1].Outcome.RunID, f.seen[2].Outcome.RunID)
}

func TestEditOfInactiveTopicIsIgnored(t *testing.T) {
	f := start(t)

	require.NoError(t, f.store.Update(topic.UseRef, workspace.Script, "const Example = () => <div>;"))
	assert.Len(t, f.seen, 1)
	assert.Equal(t, pipeline.Rendered, f.ctrl.Snapshot().Outcome.Kind)
}

func TestRejectedEditPublishesNothing(t *testing.T) {
	f := start(t)
	before := f.ctrl.Snapshot()

	require.Error(t, f.store.Update(topic.UseState, workspace.Script, "const a = 1;\x00"))
	require.Error(t, f.store.Update(topic.UseState, workspace.Script, "\xff\xfe"))
	assert.Len(t, f.seen, 1)
	assert.Equal(t, before.Seq, f.ctrl.Snapshot().Seq)
	assert.Equal(t, pipeline.Rendered, f.ctrl.Snapshot().Outcome.Kind)

	files, err := f.store.Get(topic.UseState)
	require.NoError(t, err)
	assert.NotContains(t, files.Script, "\x00")
}

func TestTopicSwitch(t *testing.T) {
	f := start(t)

	require.NoError(t, f.store.Update(topic.UseRef, workspace.Script, "const Example = () => <div>;"))
	require.NoError(t, f.store.SetActive(topic.UseRef))

	snap := f.ctrl.Snapshot()
	assert.Equal(t, TriggerSelect, snap.Trigger)
	assert.Equal(t, topic.UseRef, snap.Topic)
	assert.Equal(t, pipeline.Failed, snap.Outcome.Kind)
	assert.Contains(t, snap.Outcome.Diagnostic, "Unterminated JSX contents")

	// switching away from a failure always starts fresh
	require.NoError(t, f.store.SetActive(topic.UseContext))
	snap = f.ctrl.Snapshot()
	assert.Equal(t, pipeline.Rendered, snap.Outcome.Kind, snap.Outcome.Diagnostic)
	assert.Empty(t, snap.Outcome.Diagnostic)
}

func TestDispatchPublishes(t *testing.T) {
	f := start(t)
	buttons := f.ctrl.Snapshot().Outcome.Tree.Query("button")
	require.Len(t, buttons, 2)

	snap, err := f.ctrl.Dispatch(context.Background(), buttons[0].ID, react.Event{Type: "click"})
	require.NoError(t, err)
	assert.Equal(t, TriggerDispatch, snap.Trigger)
	assert.Equal(t, "Count: 1", snap.Outcome.Tree.Query("h2")[0].TextContent())
	assert.Len(t, f.seen, 2)

	_, err = f.ctrl.Dispatch(context.Background(), "missing", react.Event{Type: "click"})
	assert.ErrorIs(t, err, react.ErrNodeNotFound)
	assert.Len(t, f.seen, 2)

	// state does not survive an edit
	tpl, _ := templates.MustBuiltin().Get(topic.UseState)
	require.NoError(t, f.store.Update(topic.UseState, workspace.Script, tpl.Script))
	assert.Equal(t, "Count: 0", f.ctrl.Snapshot().Outcome.Tree.Query("h2")[0].TextContent())
}

func TestRapidEditsRunInOrder(t *testing.T) {
	f := start(t)
	tpl, _ := templates.MustBuiltin().Get(topic.UseState)
	ctx := context.Background()

	runs := map[string]bool{f.seen[0].Outcome.RunID: true}
	var edits []Snapshot
	for i := 0; i < 5; i++ {
		require.NoError(t, f.store.Update(topic.UseState, workspace.Script, tpl.Script))
		snap := f.ctrl.Snapshot()
		require.Equal(t, TriggerEdit, snap.Trigger)
		require.Equal(t, pipeline.Rendered, snap.Outcome.Kind, snap.Outcome.Diagnostic)
		assert.Equal(t, "Count: 0", snap.Outcome.Tree.Query("h2")[0].TextContent(), "edit %d starts fresh", i)
		edits = append(edits, snap)

		buttons := snap.Outcome.Tree.Query("button")
		require.NotEmpty(t, buttons)
		clicked, err := f.ctrl.Dispatch(ctx, buttons[0].ID, react.Event{Type: "click"})
		require.NoError(t, err)
		assert.Equal(t, "Count: 1", clicked.Outcome.Tree.Query("h2")[0].TextContent())
	}

	require.Len(t, edits, 5)
	require.Len(t, f.seen, 11)
	for i, snap := range edits {
		assert.False(t, runs[snap.Outcome.RunID], "run id reused by edit %d", i)
		runs[snap.Outcome.RunID] = true
		if i > 0 {
			assert.Equal(t, edits[i-1].Seq+2, snap.Seq)
		}
	}
	for i := 1; i < len(f.seen); i++ {
		assert.Equal(t, f.seen[i-1].Seq+1, f.seen[i].Seq)
	}
}

func TestUnsubscribe(t *testing.T) {
	f := start(t)
	count := 0
	stop := f.ctrl.Subscribe(func(Snapshot) { count++ })
	f.ctrl.Refresh(TriggerRefresh)
	stop()
	f.ctrl.Refresh(TriggerRefresh)
	assert.Equal(t, 1, count)
	assert.Len(t, f.seen, 3)
}

func TestDocument(t *testing.T) {
	f := start(t)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.ctrl.Document()))
	require.NoError(t, err)
	assert.Contains(t, doc.Find("style").Text(), ".counter")
	assert.Equal(t, "Count: 0", doc.Find("#preview h2").Text())
	assert.True(t, doc.Find("#preview").HasClass("preview-rendered"))

	require.NoError(t, f.store.Update(topic.UseState, workspace.Script, "const Example = () => <div>;"))
	root, err := htmlquery.Parse(strings.NewReader(f.ctrl.Document()))
	require.NoError(t, err)
	pre := htmlquery.FindOne(root, `//div[@id="preview"]/pre[@class="preview-error"]`)
	require.NotNil(t, pre)
	assert.Contains(t, htmlquery.InnerText(pre), "Unterminated JSX contents")
	assert.Nil(t, htmlquery.FindOne(root, "//h2"), "no stale output after a failure")
}

func TestPanel(t *testing.T) {
	empty := Panel(pipeline.Outcome{Topic: topic.UseContext, Kind: pipeline.Empty})
	assert.Contains(t, empty, "preview-empty")
	assert.Contains(t, empty, "<code>App</code>")

	failed := Panel(pipeline.Outcome{Kind: pipeline.Failed, Diagnostic: "x < y"})
	assert.Contains(t, failed, "x &lt; y")

	assert.Contains(t, Panel(pipeline.Outcome{}), "preview-idle")
}

func TestRenderEscapesStyleCloser(t *testing.T) {
	doc := Render("p{}</STYLE><script>alert(1)</script>", pipeline.Outcome{Topic: topic.UseState, Kind: pipeline.Empty})
	assert.Contains(t, doc, `p{}<\/STYLE><script>`)
	assert.Equal(t, 1, strings.Count(strings.ToLower(doc), "</style>"))
}
