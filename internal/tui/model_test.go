package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/render"
	"github.com/rpggio/tracespace/internal/testserver"
	"github.com/rpggio/tracespace/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournal struct {
	mu         sync.Mutex
	entries    []refresh.Entry
	remembered map[string][]byte
	recordErr  error
}

func (j *fakeJournal) Record(_ context.Context, entry *refresh.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.recordErr != nil {
		return j.recordErr
	}
	j.entries = append(j.entries, *entry)
	return nil
}

func (j *fakeJournal) Remember(_ context.Context, endpoint string, body []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.remembered == nil {
		j.remembered = map[string][]byte{}
	}
	j.remembered[endpoint] = body
	return nil
}

type countingRefresher struct{ n int }

func (r *countingRefresher) Trigger() { r.n++ }

const testEndpoint = "http://localhost:5000/api/latest"

type harness struct {
	model     *Model
	term      *render.Terminal
	store     *viewer.Store
	journal   *fakeJournal
	refresher *countingRefresher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	term := render.NewTerminal()
	v := viewer.New(term, viewer.Options{Rand: rand.New(rand.NewPCG(7, 7))}, nil)
	h := &harness{
		term:      term,
		store:     &viewer.Store{},
		journal:   &fakeJournal{},
		refresher: &countingRefresher{},
	}
	h.model = New(v, term, Options{
		Journal:   h.journal,
		Refresher: h.refresher,
		Publisher: h.store,
	})
	h.send(tea.WindowSizeMsg{Width: 81, Height: 25 + PanelRows})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

func result(t *testing.T, seq uint64, raw []byte) ResultMsg {
	t.Helper()
	snap, err := snapshot.Decode(raw)
	require.NoError(t, err)
	return ResultMsg{
		Seq:       seq,
		RequestID: fmt.Sprintf("req-%d", seq),
		Endpoint:  testEndpoint,
		Snapshot:  snap,
		Raw:       raw,
		StartedAt: time.Now(),
		Duration:  12 * time.Millisecond,
	}
}

func centredPost() []byte {
	return []byte(`{
		"timestamp": "2025-01-15T10:30:00",
		"subcomponents": [{
			"id": "bluesky_0", "size": 2, "color": {"r": 1, "g": 0.4, "b": 0.4},
			"position": {"x": 0, "y": 0, "z": 0}, "velocity": 0.2,
			"text": "hello field",
			"metadata": {"source": "bluesky", "author": "ana", "engagement": 10, "likes": 7, "reposts": 2, "replies": 1}
		}],
		"components": [],
		"stats": {"total_organisms": 1, "total_engagement": 10}
	}`)
}

func TestModel_WindowSizeReservesPanelRows(t *testing.T) {
	h := newHarness(t)

	vp := h.model.viewer.Viewport()
	assert.Equal(t, 81, vp.Width)
	assert.Equal(t, 25, vp.Height)
	assert.Equal(t, CellRatio, vp.CellRatio)
	assert.Equal(t, vp, h.term.Viewport())
}

func TestModel_AppliesAndJournalsResult(t *testing.T) {
	h := newHarness(t)
	raw := testserver.SnapshotJSON(10, 1, true)

	cmd := h.send(result(t, 1, raw))
	require.NotNil(t, cmd)

	st := h.store.Load()
	assert.Equal(t, infopanel.StateActive, st.Status.State)
	assert.Equal(t, uint64(1), st.LastApplied)
	assert.Len(t, st.Organisms, 12)
	assert.Equal(t, "5,500", st.Panel.EngagementText())

	msg := cmd()
	require.IsType(t, journaledMsg{}, msg)
	require.NoError(t, msg.(journaledMsg).err)
	require.Len(t, h.journal.entries, 1)
	entry := h.journal.entries[0]
	assert.Equal(t, refresh.OutcomeApplied, entry.Outcome)
	assert.Equal(t, 12, entry.OrganismCount)
	assert.Equal(t, int64(12), entry.DurationMS)
	assert.Equal(t, raw, h.journal.remembered[testEndpoint])
}

func TestModel_StaleResultIsJournaledNotApplied(t *testing.T) {
	h := newHarness(t)

	h.send(result(t, 2, testserver.SnapshotJSON(3, 0, false)))
	cmd := h.send(result(t, 1, testserver.SnapshotJSON(5, 0, false)))
	require.NotNil(t, cmd)
	cmd()

	st := h.store.Load()
	assert.Equal(t, uint64(2), st.LastApplied)
	assert.Len(t, st.Organisms, 3)
	require.Len(t, h.journal.entries, 1)
	assert.Equal(t, refresh.OutcomeStale, h.journal.entries[0].Outcome)
	assert.Empty(t, h.journal.remembered)
}

func TestModel_FailureKeepsScene(t *testing.T) {
	h := newHarness(t)
	h.send(result(t, 1, testserver.SnapshotJSON(4, 1, false)))

	cmd := h.send(ResultMsg{
		Seq:      2,
		Endpoint: testEndpoint,
		Err:      &snapshot.FetchError{Endpoint: testEndpoint, StatusCode: 500},
	})
	require.NotNil(t, cmd)
	cmd()

	st := h.store.Load()
	assert.Equal(t, infopanel.StateError, st.Status.State)
	assert.Len(t, st.Organisms, 5)
	assert.Contains(t, h.model.View(), "● ERROR")
	require.Len(t, h.journal.entries, 1)
	assert.Equal(t, refresh.OutcomeFetchError, h.journal.entries[0].Outcome)
	assert.NotEmpty(t, h.journal.entries[0].Error)
}

func TestModel_WarmStartIsNotJournaled(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(result(t, 0, testserver.SnapshotJSON(2, 0, false)))
	assert.Nil(t, cmd)
	assert.Len(t, h.store.Load().Organisms, 2)
}

func TestModel_JournalErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.journal.recordErr = errors.New("database is locked")

	cmd := h.send(result(t, 1, testserver.SnapshotJSON(1, 0, false)))
	require.NotNil(t, cmd)
	msg := cmd().(journaledMsg)
	require.Error(t, msg.err)
	assert.Empty(t, h.journal.remembered)

	assert.Nil(t, h.send(msg))
}

func TestModel_HoverAndLeave(t *testing.T) {
	h := newHarness(t)
	h.send(result(t, 1, centredPost()))

	h.send(tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	st := h.store.Load()
	require.NotNil(t, st.Hover)
	assert.Equal(t, "ana", st.Hover.Author)

	h.send(frameMsg(time.Now()))
	cell, ok := h.term.At(43, 13)
	require.True(t, ok)
	assert.Equal(t, 'b', cell.Text, "tooltip starts with the source")

	h.send(tea.MouseMsg{X: 40, Y: 26, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Nil(t, h.store.Load().Hover)

	h.send(tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	require.NotNil(t, h.store.Load().Hover)
	h.send(tea.BlurMsg{})
	assert.Nil(t, h.store.Load().Hover)
}

func TestModel_WheelZooms(t *testing.T) {
	h := newHarness(t)
	cam := h.model.viewer.Camera()
	require.InDelta(t, 30, cam.Distance(), 1e-9)

	h.send(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.InDelta(t, 28, cam.Distance(), 1e-9)

	h.send(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	h.send(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.InDelta(t, 32, cam.Distance(), 1e-9)
	assert.InDelta(t, 32, h.store.Load().CameraDistance, 1e-9)
}

func TestModel_DragPansAndSuspendsOrbit(t *testing.T) {
	h := newHarness(t)
	cam := h.model.viewer.Camera()

	h.send(tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, h.store.Load().Dragging)

	h.send(tea.MouseMsg{X: 41, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.InDelta(t, 0.4, cam.Position.X, 1e-9)

	before := cam.Position
	h.send(frameMsg(time.Now()))
	assert.Equal(t, before, cam.Position, "orbit is suspended while dragging")

	h.send(tea.MouseMsg{X: 41, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, h.store.Load().Dragging)

	h.send(frameMsg(time.Now()))
	assert.NotEqual(t, before, cam.Position)
}

func TestModel_PressOutsideSceneDoesNotDrag(t *testing.T) {
	h := newHarness(t)

	h.send(tea.MouseMsg{X: 40, Y: 26, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, h.model.Controller().Dragging())
}

func TestModel_FrameSchedulesNext(t *testing.T) {
	h := newHarness(t)
	require.NotNil(t, h.model.Init())

	cmd := h.send(frameMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.Equal(t, uint64(1), h.model.Animator().Tick())
	assert.Equal(t, uint64(1), h.term.Frames())
}

func TestModel_Keys(t *testing.T) {
	h := newHarness(t)

	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}))
	assert.Equal(t, 1, h.refresher.n)

	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cmd = h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ViewShowsPanel(t *testing.T) {
	h := newHarness(t)
	view := h.model.View()
	assert.Contains(t, view, "○ LOADING")

	h.send(result(t, 1, testserver.SnapshotJSON(10, 1, true)))
	view = h.model.View()
	assert.Contains(t, view, "● LIVE")
	assert.Contains(t, view, "5,500")
	assert.Contains(t, view, "quit")
	assert.Len(t, strings.Split(view, "\n"), 25+PanelRows)
}
