package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/wavelink/internal/control"
	"github.com/san-kum/wavelink/internal/metrics"
	"github.com/san-kum/wavelink/internal/session"
)

const (
	defaultWidth    = 80
	historyCapacity = 600
	impedanceStep   = 1.25
)

type TickMsg time.Time

// Options tune the live view.
type Options struct {
	// Hz is the control rate; each frame runs as many ticks as fit.
	Hz float64
	// FPS is the redraw rate.
	FPS int
	// ForceStep is the manual force change per key press, in newtons.
	ForceStep float64
	Theme     string
}

func DefaultOptions() Options {
	return Options{Hz: 100, FPS: 30, ForceStep: 0.5, Theme: ThemeCyberpunk.Name}
}

// Model steps a live session and draws both peers, the link and a graph of
// the two device positions. The session must not be stepped elsewhere
// while the model runs.
type Model struct {
	sess   *session.Session
	manual *control.Manual
	opts   Options
	dt     float64

	// Frames drawn and ticks run while running. Each frame catches the
	// tick count up to frames*Hz/FPS.
	frames, ticks int

	theme  Theme
	styles styles

	running    bool
	frame      session.Frame
	localHist  []float64
	remoteHist []float64
	energy     *metrics.ChannelEnergy
	width      int
	showHelp   bool
	err        error
}

// NewModel enables the session and prepares the view. The local operator
// responds to the arrow keys when it is a *control.Manual.
func NewModel(sess *session.Session, opts Options) (Model, error) {
	def := DefaultOptions()
	if !(opts.Hz > 0) {
		opts.Hz = def.Hz
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.ForceStep <= 0 {
		opts.ForceStep = def.ForceStep
	}
	if err := sess.Enable(); err != nil {
		return Model{}, err
	}

	manual, _ := sess.Local().Axis.Operator().(*control.Manual)
	theme := GetTheme(opts.Theme)
	m := Model{
		sess:       sess,
		manual:     manual,
		opts:       opts,
		dt:         1 / opts.Hz,
		theme:      theme,
		styles:     newStyles(theme),
		running:    true,
		frame:      sess.Frame(),
		localHist:  make([]float64, 0, historyCapacity),
		remoteHist: make([]float64, 0, historyCapacity),
		energy: metrics.NewChannelEnergy(session.LinkUp,
			metrics.Port{In: session.LocalWaveIn, Out: session.LocalWaveOut},
			metrics.Port{In: session.RemoteWaveIn, Out: session.RemoteWaveOut}),
		width: defaultWidth,
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles key presses and advances the session on every frame.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "d":
		if err := m.sess.SetLinkDown(m.sess.Pipe().Up()); err != nil {
			m.err = err
		}
	case "left", "h":
		if m.manual != nil {
			m.manual.Nudge(-m.opts.ForceStep)
		}
	case "right", "l":
		if m.manual != nil {
			m.manual.Nudge(m.opts.ForceStep)
		}
	case "0":
		if m.manual != nil {
			m.manual.SetForce(0)
		}
	case "+", "=":
		m.sess.SetImpedance(m.impedance() * impedanceStep)
	case "-", "_":
		m.sess.SetImpedance(m.impedance() / impedanceStep)
	case "]":
		m.setDelay(m.sess.Pipe().Delay() + 1)
	case "[":
		m.setDelay(m.sess.Pipe().Delay() - 1)
	case "t":
		m.theme = m.theme.next()
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	m.frame = m.sess.Frame()
	return m, nil
}

func (m *Model) setDelay(n int) {
	if n < 0 {
		return
	}
	if err := m.sess.SetDelay(n); err != nil {
		m.err = err
	}
}

func (m Model) impedance() float64 {
	return m.sess.Local().Controller.Params().Impedance
}

// ticksDue is the number of control ticks the next frame has to run.
func (m Model) ticksDue() int {
	target := int(math.Round(float64(m.frames+1) * m.opts.Hz / float64(m.opts.FPS)))
	return max(0, target-m.ticks)
}

// step runs one frame's worth of control ticks. A failed tick pauses the
// view and keeps the error on screen.
func (m *Model) step() {
	n := m.ticksDue()
	m.frames++
	for i := 0; i < n; i++ {
		if err := m.sess.Tick(m.dt); err != nil {
			m.err = err
			m.running = false
			break
		}
		m.ticks++
		m.energy.Observe(m.sess.Row(), nil, m.sess.Time())
	}
	m.frame = m.sess.Frame()
	m.localHist = push(m.localHist, m.frame.Row[session.LocalPos])
	m.remoteHist = push(m.remoteHist, m.frame.Row[session.RemotePos])
}

func push(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	status := s.running.Render("● RUNNING")
	if !m.running {
		status = s.paused.Render("❚❚ PAUSED")
	}
	link := s.up.Render("LINK UP")
	if !m.frame.LinkUp {
		link = s.down.Render("LINK DOWN")
	}
	b.WriteString(fmt.Sprintf(" %s  %s  %s  t=%.2fs\n\n", s.title.Render("WAVELINK"), status, link, m.frame.Time))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.peerPanel(m.frame.Local, session.LocalPos, s.local),
		m.linkPanel(),
		m.peerPanel(m.frame.Remote, session.RemotePos, s.remote),
	))
	b.WriteString("\n")

	if len(m.localHist) > 1 {
		graph := asciigraph.PlotMany([][]float64{m.localHist, m.remoteHist},
			asciigraph.Height(10),
			asciigraph.Width(max(20, m.width-12)),
			asciigraph.Precision(3),
			asciigraph.SeriesColors(m.theme.LocalGraph, m.theme.RemoteGraph),
			asciigraph.Caption("device position (m): local / remote"),
		)
		b.WriteString(graph + "\n")
	}

	if m.err != nil {
		b.WriteString("\n " + s.err.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help())
	return b.String()
}

func (m Model) peerPanel(p session.PeerFrame, col int, style lipgloss.Style) string {
	s := m.styles
	row := func(label, value string) string {
		return s.label.Render(label) + s.value.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(s.title.Render(strings.ToUpper(p.Name)) + "  " + s.value.Render(p.Mode) + "\n")
	b.WriteString(row("position", fmt.Sprintf("%+.4f m", m.frame.Row[col])))
	b.WriteString(row("operator", fmt.Sprintf("%+.3f N", p.OperatorForce)))
	b.WriteString(row("momentum", fmt.Sprintf("%+.4f", p.Momentum)))
	b.WriteString(row("setpoint", fmt.Sprintf("%+.3f", p.Setpoint)))
	b.WriteString(CenterBar(p.Setpoint, 26))
	return style.Render(b.String())
}

func (m Model) linkPanel() string {
	s := m.styles
	row := func(label, value string) string {
		return s.label.Render(label) + s.value.Render(value) + "\n"
	}
	sent, delivered := m.sess.Pipe().Stats()

	var b strings.Builder
	b.WriteString(s.title.Render("LINK") + "\n")
	b.WriteString(row("delay", fmt.Sprintf("%d ticks", m.frame.Delay)))
	b.WriteString(row("latency", fmt.Sprintf("%.0f ms", float64(m.frame.Delay+1)*m.dt*1000)))
	b.WriteString(row("impedance", fmt.Sprintf("%.3f", m.frame.Local.Impedance)))
	b.WriteString(row("energy", fmt.Sprintf("%.5f J", m.energy.Value())))
	b.WriteString(row("frames", fmt.Sprintf("%d/%d", delivered, sent)))
	b.WriteString(Sparkline(m.localHist, 26))
	return s.panel.Render(b.String())
}

func (m Model) help() string {
	s := m.styles
	keys := [][2]string{
		{"space", "pause"}, {"d", "drop/restore"}, {"+/-", "impedance"},
		{"[/]", "delay"}, {"q", "quit"}, {"?", "more"},
	}
	if m.manual != nil {
		keys = append(keys, [2]string{"←/→", "push"})
	}
	if m.showHelp {
		keys = append(keys, [2]string{"t", "theme"})
		if m.manual != nil {
			keys = append(keys, [2]string{"0", "release"})
		}
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = s.key.Render(k[0]) + " " + s.hint.Render(k[1])
	}
	return " " + strings.Join(parts, "  ")
}

// Run blocks until the user quits, then disables the session.
func Run(sess *session.Session, opts Options) error {
	m, err := NewModel(sess, opts)
	if err != nil {
		return err
	}
	defer sess.Disable()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
