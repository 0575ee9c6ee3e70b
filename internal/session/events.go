package session

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/wavelink/internal/dynamo"
)

var ErrEvent = errors.New("session: invalid event")

type EventKind string

const (
	// EventDrop takes the link down and disables both controllers.
	EventDrop EventKind = "drop"
	// EventRestore brings the link back and re-enables both controllers,
	// which captures new origins.
	EventRestore EventKind = "restore"
	// EventDelay changes the one-way link delay.
	EventDelay EventKind = "delay"
)

// Event is applied before the first tick starting at or after At.
type Event struct {
	At    float64   `yaml:"at" json:"at"`
	Kind  EventKind `yaml:"kind" json:"kind"`
	Delay int       `yaml:"delay,omitempty" json:"delay,omitempty"`
}

func (e Event) Validate() error {
	if e.At < 0 || math.IsNaN(e.At) {
		return fmt.Errorf("event at %v: %w", e.At, ErrEvent)
	}
	switch e.Kind {
	case EventDrop, EventRestore:
	case EventDelay:
		if e.Delay < 0 {
			return fmt.Errorf("delay %d: %w", e.Delay, ErrEvent)
		}
	default:
		return fmt.Errorf("kind %q: %w", e.Kind, ErrEvent)
	}
	return nil
}

// Config is the timing of one run plus its scheduled link events.
type Config struct {
	dynamo.Config
	Events []Event
}

func DefaultConfig() Config {
	return Config{Config: dynamo.DefaultConfig()}
}

func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	for _, e := range c.Events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// schedule returns the events sorted by time, keeping the given order for
// events at the same instant.
func (c Config) schedule() []Event {
	events := append([]Event(nil), c.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })
	return events
}
