package link

import (
	"sync"
	"testing"

	"github.com/san-kum/wavelink/internal/wave"
)

var waveKey = Key{Entity: 1, Axis: wave.AxisZ, Signal: wave.Wave}

func TestStoreDefaultsToZero(t *testing.T) {
	s := NewStore()
	if v := s.RemoteValue(1, wave.AxisZ, wave.Wave); v != 0 {
		t.Errorf("expected 0 before any delivery, got %f", v)
	}
	if s.Received(waveKey) {
		t.Error("nothing was delivered yet")
	}

	s.Deliver(waveKey, 0)
	if !s.Received(waveKey) {
		t.Error("a delivered zero must count as received")
	}
}

func TestStoreImplementsChannel(t *testing.T) {
	var ch wave.Channel = NewStore()
	ch.SetLocalValue(1, wave.AxisZ, wave.Wave, 2.5)
	if got := ch.(*Store).Local(waveKey); got != 2.5 {
		t.Errorf("Local = %f, want 2.5", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Deliver(waveKey, v)
			}
		}(float64(i))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.RemoteValue(1, wave.AxisZ, wave.Wave)
			}
		}()
	}
	wg.Wait()
}

func TestPipeDelay(t *testing.T) {
	tests := []struct {
		delay int
	}{
		{0}, {1}, {5},
	}

	for _, tt := range tests {
		a, b := NewStore(), NewStore()
		p, err := NewPipe(a, b, tt.delay)
		if err != nil {
			t.Fatal(err)
		}

		a.SetLocalValue(1, wave.AxisZ, wave.Wave, 1.0)
		p.Tick()
		a.SetLocalValue(1, wave.AxisZ, wave.Wave, 0.0)

		for i := 0; i < tt.delay; i++ {
			if b.Received(waveKey) {
				t.Fatalf("delay %d: delivered after %d ticks", tt.delay, i)
			}
			p.Tick()
		}
		if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 1.0 {
			t.Errorf("delay %d: got %f, want 1.0", tt.delay, got)
		}

		p.Tick()
		if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 0 {
			t.Errorf("delay %d: next frame should carry 0, got %f", tt.delay, got)
		}
	}
}

func TestPipeBothDirections(t *testing.T) {
	a, b := NewStore(), NewStore()
	p, _ := NewPipe(a, b, 2)

	a.SetLocalValue(1, wave.AxisZ, wave.Wave, 3)
	b.SetLocalValue(1, wave.AxisZ, wave.Wave, -3)
	for i := 0; i < 3; i++ {
		p.Tick()
	}

	if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 3 {
		t.Errorf("a->b = %f", got)
	}
	if got := a.RemoteValue(1, wave.AxisZ, wave.Wave); got != -3 {
		t.Errorf("b->a = %f", got)
	}
	sent, delivered := p.Stats()
	if sent != 3 || delivered != 1 {
		t.Errorf("stats = %d/%d, want 3/1", sent, delivered)
	}
}

func TestPipeDown(t *testing.T) {
	a, b := NewStore(), NewStore()
	p, _ := NewPipe(a, b, 3)

	a.SetLocalValue(1, wave.AxisZ, wave.Wave, 2)
	for i := 0; i < 5; i++ {
		p.Tick()
	}
	if b.RemoteValue(1, wave.AxisZ, wave.Wave) != 2 {
		t.Fatal("expected delivery before link loss")
	}

	p.SetDown(true)
	if p.Up() {
		t.Error("pipe should report down")
	}
	if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 0 {
		t.Errorf("remote value after loss = %f, want 0", got)
	}
	if p.InFlight() != 0 {
		t.Errorf("in flight after loss = %d", p.InFlight())
	}

	p.Tick()
	if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 0 {
		t.Errorf("down pipe delivered %f", got)
	}

	p.SetDown(false)
	for i := 0; i < 4; i++ {
		p.Tick()
	}
	if got := b.RemoteValue(1, wave.AxisZ, wave.Wave); got != 2 {
		t.Errorf("after restore = %f, want 2", got)
	}
}

func TestNewPipeValidation(t *testing.T) {
	if _, err := NewPipe(nil, NewStore(), 1); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := NewPipe(NewStore(), NewStore(), -1); err == nil {
		t.Error("expected error for negative delay")
	}
	p, _ := NewPipe(NewStore(), NewStore(), 1)
	if err := p.SetDelay(-2); err == nil {
		t.Error("expected error for negative delay")
	}
}
