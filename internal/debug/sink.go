// Package debug implements the trap side of the emulator: a pluggable sink
// that is consulted whenever execution reaches hardware that is detected but
// not modeled, plus the interactive console used during development.
package debug

import "fmt"

// Command is the operator's answer to a trap.
type Command int

const (
	// Continue resumes normal execution.
	Continue Command = iota
	// Step resumes for a single instruction and traps again before the next.
	Step
)

func (c Command) String() string {
	switch c {
	case Continue:
		return "continue"
	case Step:
		return "step"
	default:
		return "unknown"
	}
}

// Event describes why execution was paused.
type Event struct {
	Label   string
	Address uint32
}

func (e Event) String() string {
	return fmt.Sprintf("%s at $%06x", e.Label, e.Address)
}

// Sink receives trap events. Trap may block for as long as it likes; the
// caller must not hold any device lock while calling it.
type Sink interface {
	Trap(Event) Command
}

// Attacher is implemented by sinks that need to inspect machine state.
type Attacher interface {
	Attach(Target)
}

// NopSink never pauses and always continues.
type NopSink struct{}

func (NopSink) Trap(Event) Command { return Continue }

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) Command

func (f SinkFunc) Trap(ev Event) Command { return f(ev) }
