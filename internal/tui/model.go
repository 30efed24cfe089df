// Package tui hosts the viewer in a Bubble Tea program. All scene mutation
// happens inside Update.
package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rpggio/tracespace/internal/animate"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/interact"
	"github.com/rpggio/tracespace/internal/loader"
	"github.com/rpggio/tracespace/internal/render"
	"github.com/rpggio/tracespace/internal/scene"
	"github.com/rpggio/tracespace/internal/viewer"
)

const (
	// PanelRows is the number of terminal rows below the scene.
	PanelRows = 2

	// CellRatio is the height/width ratio of a terminal cell.
	CellRatio = 2.0

	// DefaultFrameInterval is 30 frames per second.
	DefaultFrameInterval = time.Second / 30

	defaultWidth  = 80
	defaultHeight = 24

	journalTimeout = 5 * time.Second
)

// ResultMsg delivers a fetch result to the program.
type ResultMsg loader.Result

type frameMsg time.Time

type journaledMsg struct {
	seq uint64
	err error
}

// Journal records refresh attempts and keeps the last good document.
type Journal interface {
	Record(ctx context.Context, entry *refresh.Entry) error
	Remember(ctx context.Context, endpoint string, body []byte) error
}

// Refresher requests an immediate fetch.
type Refresher interface {
	Trigger()
}

// Publisher receives a state copy after every update.
type Publisher interface {
	Publish(st *viewer.State)
}

// Options configures a Model.
type Options struct {
	FrameInterval time.Duration
	RotationSpeed float64
	Journal       Journal
	Refresher     Refresher
	Publisher     Publisher
	Logger        *slog.Logger
}

// Model is the Bubble Tea model driving the viewer.
type Model struct {
	viewer     *viewer.Viewer
	term       *render.Terminal
	controller *interact.Controller
	animator   *animate.Animator
	help       help.Model

	opts   Options
	logger *slog.Logger

	width, height int
}

// New creates a model around v, which must draw through term. The viewer
// is initialized with a default size if it has not been already.
func New(v *viewer.Viewer, term *render.Terminal, opts Options) *Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Model{
		viewer: v,
		term:   term,
		help:   help.New(),
		opts:   opts,
		logger: logger,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.controller = interact.New(v)
	m.animator = animate.New(v, m.controller, animate.Options{RotationSpeed: opts.RotationSpeed})
	if !v.Initialized() {
		v.Initialize(m.sceneViewport())
	}
	m.publish()
	return m
}

// Controller exposes the interaction controller.
func (m *Model) Controller() *interact.Controller { return m.controller }

// Animator exposes the frame integrator.
func (m *Model) Animator() *animate.Animator { return m.animator }

func (m *Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m *Model) frameTick() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.viewer.Resize(m.sceneViewport())
		m.controller.ClearHover()

	case frameMsg:
		m.animator.Frame(time.Time(msg))
		m.overlayTooltip()
		cmd = m.frameTick()

	case ResultMsg:
		res := loader.Result(msg)
		outcome := m.viewer.Apply(res)
		cmd = m.journal(res, outcome)

	case journaledMsg:
		if msg.err != nil {
			m.logger.Warn("journaling refresh failed", "seq", msg.seq, "error", msg.err)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if m.opts.Refresher != nil {
				m.opts.Refresher.Trigger()
			}
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.BlurMsg:
		m.controller.ClearHover()
	}

	m.publish()
	return m, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	vp := m.viewer.Viewport()
	inside := msg.X >= 0 && msg.Y >= 0 && msg.X < vp.Width && msg.Y < vp.Height

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.controller.Wheel(interact.WheelNotch)
		case tea.MouseButtonWheelUp:
			m.controller.Wheel(-interact.WheelNotch)
		case tea.MouseButtonLeft:
			if inside {
				m.controller.PointerDown(msg.X, msg.Y)
			}
		}
	case tea.MouseActionRelease:
		m.controller.PointerUp(msg.X, msg.Y)
	case tea.MouseActionMotion:
		if !inside && !m.controller.Dragging() {
			m.controller.ClearHover()
			return
		}
		m.controller.PointerMove(msg.X, msg.Y)
	}
}

func (m *Model) overlayTooltip() {
	lines, ok := m.controller.Tooltip()
	if !ok {
		return
	}
	x, y := m.controller.Pointer()
	m.term.Overlay(x, y, lines)
}

func (m *Model) journal(res loader.Result, outcome refresh.Outcome) tea.Cmd {
	// Warm starts replay the cache and are not fetch attempts.
	if m.opts.Journal == nil || res.Seq == 0 {
		return nil
	}
	entry := &refresh.Entry{
		ID:            res.RequestID,
		Seq:           res.Seq,
		Endpoint:      res.Endpoint,
		Outcome:       outcome,
		OrganismCount: res.Snapshot.OrganismCount(),
		DurationMS:    res.Duration.Milliseconds(),
		CreatedAt:     res.StartedAt,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	var raw []byte
	if outcome == refresh.OutcomeApplied {
		raw = res.Raw
	}

	journal := m.opts.Journal
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		err := journal.Record(ctx, entry)
		if err == nil && len(raw) > 0 {
			err = journal.Remember(ctx, entry.Endpoint, raw)
		}
		return journaledMsg{seq: entry.Seq, err: err}
	}
}

func (m *Model) publish() {
	if m.opts.Publisher == nil {
		return
	}
	st := m.viewer.State()
	st.Dragging = m.controller.Dragging()
	if o, ok := m.controller.Hovered(); ok {
		info := viewer.Describe(o)
		st.Hover = &info
	}
	m.opts.Publisher.Publish(st)
}

func (m *Model) sceneViewport() scene.Viewport {
	return scene.Viewport{
		Width:     max(m.width, 1),
		Height:    max(m.height-PanelRows, 1),
		CellRatio: CellRatio,
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.term.String())
	b.WriteByte('\n')
	b.WriteString(m.panelView())
	b.WriteByte('\n')
	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) helpView() string {
	s := m.help.Styles
	sep := s.ShortSeparator.Render(m.help.ShortSeparator)
	mouse := s.ShortKey.Render("drag") + " " + s.ShortDesc.Render("pan") + sep +
		s.ShortKey.Render("wheel") + " " + s.ShortDesc.Render("zoom") + sep
	return mouse + m.help.ShortHelpView(keys.ShortHelp())
}

func (m *Model) panelView() string {
	status := m.viewer.Status()
	panel := m.viewer.Panel()

	parts := []string{
		statusStyle(status.State).Render(status.Label()),
		labelStyle.Render("Organisms ") + valueStyle.Render(panel.OrganismsText()),
		labelStyle.Render("Engagement ") + valueStyle.Render(panel.EngagementText()),
		labelStyle.Render("Updated ") + valueStyle.Render(panel.UpdatedText()),
	}
	if status.Message != "" {
		parts = append(parts, errorStyle.Render(status.Message))
	}
	line := strings.Join(parts, panelStyle.Render("  "))
	return panelStyle.MaxWidth(m.width).Render(line)
}
