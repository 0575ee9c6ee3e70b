package viz

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/wavelink/internal/axis"
	"github.com/san-kum/wavelink/internal/control"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/integrators"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/wave"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newPeer(t *testing.T, name string, op dynamo.Controller) *session.Peer {
	t.Helper()
	ax, err := axis.New(axis.DefaultConfig(), nil, nil, integrators.NewRK4(), integrators.NewRK4(), op)
	if err != nil {
		t.Fatal(err)
	}
	p, err := session.NewPeer(name, 1, wave.DefaultParams(), ax, quiet)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newModel(t *testing.T, local dynamo.Controller) Model {
	t.Helper()
	s, err := session.New(newPeer(t, "local", local), newPeer(t, "remote", nil), 2, session.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(s, Options{Hz: 100, FPS: 10})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModelEnablesSession(t *testing.T) {
	m := newModel(t, nil)
	if m.sess.Local().Controller.Mode() != wave.Enabled || m.sess.Remote().Controller.Mode() != wave.Enabled {
		t.Error("both peers should be enabled")
	}
	if m.manual != nil {
		t.Error("no manual operator expected")
	}
	if n := m.ticksDue(); n != 10 {
		t.Errorf("ticks per frame = %d, want 10", n)
	}
}

func TestFractionalFrameRateKeepsPace(t *testing.T) {
	s, err := session.New(newPeer(t, "local", nil), newPeer(t, "remote", nil), 2, session.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(s, Options{Hz: 100, FPS: 30})
	if err != nil {
		t.Fatal(err)
	}

	var perFrame []int
	for i := 0; i < 30; i++ {
		before := m.ticks
		m = send(m, TickMsg(time.Now()))
		perFrame = append(perFrame, m.ticks-before)
	}
	if m.ticks != 100 {
		t.Errorf("ticks after 30 frames = %d, want 100", m.ticks)
	}
	if math.Abs(m.sess.Time()-1) > 1e-9 {
		t.Errorf("t = %f after one second of frames, want 1", m.sess.Time())
	}
	if perFrame[0] != 3 || perFrame[1] != 4 || perFrame[2] != 3 {
		t.Errorf("ticks per frame = %v, want 3,4,3,...", perFrame[:3])
	}
}

func TestTickAdvancesSession(t *testing.T) {
	m := newModel(t, nil)
	m = send(m, TickMsg(time.Now()))

	if math.Abs(m.sess.Time()-0.1) > 1e-9 {
		t.Errorf("t = %f after one frame, want 0.1", m.sess.Time())
	}
	if len(m.localHist) != 1 || len(m.remoteHist) != 1 {
		t.Errorf("history = %d/%d, want 1/1", len(m.localHist), len(m.remoteHist))
	}

	m = send(m, key(" "))
	m = send(m, TickMsg(time.Now()))
	if math.Abs(m.sess.Time()-0.1) > 1e-9 {
		t.Errorf("paused view advanced to t = %f", m.sess.Time())
	}
}

func TestDropAndRestore(t *testing.T) {
	m := newModel(t, nil)

	m = send(m, key("d"))
	if m.frame.LinkUp {
		t.Fatal("link should be down")
	}
	if m.sess.Local().Controller.Mode() != wave.Disabled {
		t.Error("drop should disable the controllers")
	}
	if !strings.Contains(m.View(), "LINK DOWN") {
		t.Error("view does not show the dropped link")
	}

	m = send(m, key("d"))
	if !m.frame.LinkUp || m.sess.Local().Controller.Mode() != wave.Enabled {
		t.Error("restore should bring the link and controllers back")
	}
}

func TestImpedanceKeys(t *testing.T) {
	m := newModel(t, nil)
	b := m.impedance()

	m = send(m, key("+"))
	if got := m.sess.Remote().Controller.Params().Impedance; math.Abs(got-b*impedanceStep) > 1e-12 {
		t.Errorf("remote impedance = %f, want %f", got, b*impedanceStep)
	}
	m = send(m, key("-"))
	m = send(m, key("-"))
	if got := m.impedance(); math.Abs(got-b/impedanceStep) > 1e-12 {
		t.Errorf("impedance = %f, want %f", got, b/impedanceStep)
	}
}

func TestDelayKeys(t *testing.T) {
	m := newModel(t, nil)
	m = send(m, key("]"))
	if d := m.sess.Pipe().Delay(); d != 3 {
		t.Errorf("delay = %d, want 3", d)
	}
	for i := 0; i < 5; i++ {
		m = send(m, key("["))
	}
	if d := m.sess.Pipe().Delay(); d != 0 {
		t.Errorf("delay = %d, want 0", d)
	}
	if m.err != nil {
		t.Errorf("unexpected error %v", m.err)
	}
}

func TestManualPush(t *testing.T) {
	manual := control.NewManual(2)
	m := newModel(t, manual)
	if m.manual != manual {
		t.Fatal("manual operator not detected")
	}

	m = send(m, key("right"))
	m = send(m, key("right"))
	if manual.Force != 1 {
		t.Errorf("force = %f, want 1", manual.Force)
	}
	for i := 0; i < 10; i++ {
		m = send(m, key("right"))
	}
	if manual.Force != 2 {
		t.Errorf("force = %f, want limit 2", manual.Force)
	}

	for i := 0; i < 20; i++ {
		m = send(m, TickMsg(time.Now()))
	}
	if m.frame.Row[session.RemotePos] <= 0 {
		t.Errorf("remote position = %f, want pushed forward", m.frame.Row[session.RemotePos])
	}

	m = send(m, key("0"))
	if manual.Force != 0 {
		t.Errorf("force = %f after release", manual.Force)
	}
	if m.energy.Min() < -1e-9 {
		t.Errorf("link generated energy: min %g", m.energy.Min())
	}
}

func TestViewAndQuit(t *testing.T) {
	m := newModel(t, nil)
	m = send(m, TickMsg(time.Now()))
	m = send(m, TickMsg(time.Now()))

	v := m.View()
	for _, want := range []string{"WAVELINK", "LOCAL", "REMOTE", "LINK UP", "delay"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(m, key("t"))
	if m.theme.Name == ThemeCyberpunk.Name {
		t.Error("theme did not change")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestPushCapsHistory(t *testing.T) {
	var h []float64
	for i := 0; i < historyCapacity+10; i++ {
		h = push(h, float64(i))
	}
	if len(h) != historyCapacity {
		t.Fatalf("len = %d", len(h))
	}
	if h[0] != 10 || h[len(h)-1] != float64(historyCapacity+9) {
		t.Errorf("window = [%f..%f]", h[0], h[len(h)-1])
	}
}

func TestCenterBar(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "··│··"},
		{1, "··│██"},
		{-0.5, "·█│··"},
		{-3, "██│··"},
		{math.NaN(), "··│··"},
	}
	for _, tt := range tests {
		if got := CenterBar(tt.v, 5); got != tt.want {
			t.Errorf("CenterBar(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("ramp = %q", got)
	}
	if got := []rune(Sparkline([]float64{5, 0, 7}, 2)); len(got) != 2 || got[0] != '▁' || got[1] != '█' {
		t.Errorf("tail = %q", string(got))
	}
}
