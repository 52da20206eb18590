package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/structure"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	chromeRows      = 4
	minCols         = 20
	minRows         = 8
	historyCapacity = 600
	topJoints       = 5
)

type TickMsg time.Time

// Model drives a physics manager at the tick rate and draws the structure.
type Model struct {
	name    string
	initial structure.Document
	s       *structure.Structure

	physics *physics.Manager
	joints  *joint.Engine
	size    *physics.CanvasSize
	dt      float64
	fps     int

	canvas   *Canvas
	view     Viewport
	smoothed *springField

	current     map[structure.NodeID]joint.Joint
	peakHistory []float64
	slackCount  int

	running  bool
	overlay  bool
	showHelp bool
	err      error
}

// NewModel starts m on s. The structure's starting state is kept so that
// reset can rebuild it after Stop has written positions back. When size is
// the manager's canvas, terminal resizes reshape the world and move the
// ground; with nil only the view is refitted.
func NewModel(name string, s *structure.Structure, m *physics.Manager, j *joint.Engine, size *physics.CanvasSize, dt float64, fps int) (*Model, error) {
	if fps <= 0 {
		fps = 30
	}
	if err := m.Start(s); err != nil {
		return nil, err
	}

	canvas := NewCanvas(width, height)
	w, h := m.Config().Canvas()
	return &Model{
		name:        name,
		initial:     structure.Encode(s),
		s:           s,
		physics:     m,
		joints:      j,
		size:        size,
		dt:          dt,
		fps:         fps,
		canvas:      canvas,
		view:        Fit(canvas, w, h),
		smoothed:    newSpringField(fps, 6.0, 0.8),
		peakHistory: make([]float64, 0, historyCapacity),
		running:     true,
		overlay:     true,
	}, nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.physics.Stop(m.s)
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "s":
			if !m.running {
				m.step()
			}
		case "j":
			m.overlay = !m.overlay
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			// one render frame covers 1/fps of simulated time
			steps := max(int(1.0/float64(m.fps)/m.dt+0.5), 1)
			for i := 0; i < steps; i++ {
				m.step()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.physics.Advance(m.dt)
	m.current = m.physics.Joints(m.s, m.joints)

	_, peak := joint.Peak(m.current)
	m.peakHistory = append(m.peakHistory, peak)
	if len(m.peakHistory) > historyCapacity {
		m.peakHistory = m.peakHistory[1:]
	}

	for id, j := range m.current {
		m.smoothed.step(id, j.PeakTorque())
	}
	m.slackCount = m.physics.Stats().Slack
}

// resize gives the drawing area what the panel leaves of the terminal. The
// world keeps its height and takes the new aspect ratio.
func (m *Model) resize(cols, rows int) {
	m.canvas = NewCanvas(max(cols-panelWidth, minCols), max(rows-chromeRows, minRows))
	w, h := m.physics.Config().Canvas()
	if m.size != nil {
		dw, dh := m.canvas.Dots()
		w = h * float64(dw) / float64(dh)
		m.size.Resize(w, h)
		m.physics.UpdateGroundPosition()
	}
	m.view = Fit(m.canvas, w, h)
}

// reset rebuilds the structure from its starting state and restarts physics.
func (m *Model) reset() {
	m.physics.Stop(m.s)
	s, err := m.initial.Build()
	if err != nil {
		m.err = err
		return
	}
	m.s = s
	m.current = nil
	m.peakHistory = m.peakHistory[:0]
	m.smoothed.reset()
	m.err = m.physics.Start(s)
}

func (m *Model) draw() {
	sc := Scene{
		Structure:  m.s,
		Positions:  m.physics.Position,
		Weights:    m.physics.WeightPosition,
		States:     m.physics.SegmentStates(),
		NodeRadius: m.physics.Config().NodeRadius,
	}
	_, h := m.physics.Config().Canvas()
	sc.GroundY = h - m.physics.Config().GroundHeight
	if m.overlay {
		sc.Torque = m.smoothed.value
	}
	Draw(m.canvas, m.view, sc)
}

func (m *Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(lipgloss.NewStyle().Foreground(CurrentTheme.Structure).Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(CurrentTheme.Accent).Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.peakHistory) > 1 {
		chart := asciigraph.Plot(m.peakHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("peak torque"))
		s.WriteString(chart + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.physics.Elapsed())) + "\n")
	s.WriteString(labelStyle.Render("Slack") + valueStyle.Render(fmt.Sprintf("%d / %d", m.slackCount, len(m.s.Segments()))) + "\n")
	s.WriteString(labelStyle.Render("Segments") + valueStyle.Render(fmt.Sprintf("%d", len(m.s.Segments()))) + "\n")
	s.WriteString(labelStyle.Render("Weights") + valueStyle.Render(fmt.Sprintf("%d", len(m.s.Weights()))) + "\n")

	s.WriteString("\n" + Separator(36) + "\nJOINTS\n")
	ranked := rankJoints(m.current, m.smoothed)
	if len(ranked) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	for i, id := range ranked {
		if i == topJoints {
			break
		}
		v := m.smoothed.value(id)
		s.WriteString(fmt.Sprintf("  n%-4d %s %.2f\n", id, LoadBar(v, 12), v))
	}

	if m.err != nil {
		s.WriteString("\n" + StatusPaused.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause S:Step R:Reset Q:Quit\nJ:Joints T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space  pause / resume
  S      single step while paused
  R      rebuild the structure and restart
  J      toggle joint torque rings
  T      cycle themes
  Q      quit
` + "\n" + main
	}
	return main
}

// rankJoints orders joint nodes by smoothed torque, highest first.
func rankJoints(joints map[structure.NodeID]joint.Joint, f *springField) []structure.NodeID {
	ids := joint.SortedNodes(joints)
	for i := 1; i < len(ids); i++ {
		for k := i; k > 0 && f.value(ids[k]) > f.value(ids[k-1]); k-- {
			ids[k], ids[k-1] = ids[k-1], ids[k]
		}
	}
	return ids
}

// Run blocks until the user quits, then stops physics.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	m.physics.Stop(m.s)
	return err
}
