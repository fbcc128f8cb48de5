package macemu

import (
	"errors"
	"testing"

	"github.com/brand7n/macemu/internal/bus"
)

func TestTraceCallbackReceivesSnapshot(t *testing.T) {
	m, core := newTestMachine(t, Config{})
	core.program = func(c *fakeCore) {
		c.regs.A[1] = 1
	}

	var traces []TraceInfo
	m.SetTracer(func(info TraceInfo) {
		traces = append(traces, info)
	})

	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace entry, got %d", len(traces))
	}

	got := traces[0]
	if got.PC != ROMBase+8 {
		t.Fatalf("trace PC = 0x%x, want 0x%x", got.PC, ROMBase+8)
	}
	if got.Cycles != 4 {
		t.Fatalf("trace cycles = %d, want 4", got.Cycles)
	}
	if got.Registers.A[1] != 1 {
		t.Fatalf("trace A1 = %d, want 1", got.Registers.A[1])
	}
}

func TestExecuteBreakpointTraps(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestMachine(t, Config{Sink: sink})

	var events []BreakpointEvent
	m.AddBreakpoint(Breakpoint{
		Address:   ROMBase + 10,
		OnExecute: true,
		Halt:      true,
		Callback: func(ev BreakpointEvent) error {
			events = append(events, ev)
			return nil
		},
	})

	for i := 0; i < 3; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if len(events) != 1 || events[0].Type != BreakpointExecute || events[0].Address != ROMBase+10 {
		t.Fatalf("callback events = %+v", events)
	}
	if len(sink.events) != 1 || sink.events[0].Label != LabelBreakpoint || sink.events[0].Address != ROMBase+10 {
		t.Fatalf("traps = %v, want one breakpoint at %06x", sink.events, ROMBase+10)
	}
}

func TestBreakpointCallbackErrorStopsStep(t *testing.T) {
	m, core := newTestMachine(t, Config{})
	stop := errors.New("stop")
	m.AddBreakpoint(Breakpoint{
		Address:   ROMBase + 8,
		OnExecute: true,
		Callback:  func(BreakpointEvent) error { return stop },
	})

	if _, err := m.Step(); !errors.Is(err, stop) {
		t.Fatalf("Step: got %v, want callback error", err)
	}
	if core.steps != 0 {
		t.Fatalf("instruction executed despite callback error")
	}
}

func TestWatchpointCallbackWithoutHaltAllowsAccess(t *testing.T) {
	sink := &recordingSink{}
	m, core := newTestMachine(t, Config{Sink: sink})
	m.Bus().Write8(viaRA, 0x00) // map RAM at zero
	target := uint32(0x3000)
	core.program = func(c *fakeCore) {
		c.bus.Write(Byte, target, 0xaa)
	}

	var got []BreakpointEvent
	m.AddBreakpoint(Breakpoint{
		Address: target,
		OnWrite: true,
		Callback: func(ev BreakpointEvent) error {
			got = append(got, ev)
			return nil
		},
	})

	if _, err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(got) != 1 || got[0].Type != BreakpointWrite || got[0].Address != target {
		t.Fatalf("callback events = %+v", got)
	}
	if len(sink.events) != 0 {
		t.Fatalf("watchpoint without halt trapped: %v", sink.events)
	}
	if v := m.Bus().Read(Byte, target); v != 0xaa {
		t.Fatalf("write was not performed: got 0x%x", v)
	}
}

func TestWatchpointHaltTraps(t *testing.T) {
	sink := &recordingSink{}
	m, core := newTestMachine(t, Config{Sink: sink})
	core.program = func(c *fakeCore) {
		c.bus.Read(Word, 0x2ffe)
	}
	m.AddBreakpoint(Breakpoint{Address: 0x2fff, OnRead: true, Halt: true})

	if _, err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(sink.events) != 1 || sink.events[0].Label != bus.LabelWatch || sink.events[0].Address != 0x2fff {
		t.Fatalf("traps = %v, want one watchpoint at 2fff", sink.events)
	}
}

func TestBreakpointTypeString(t *testing.T) {
	tests := map[BreakpointType]string{
		BreakpointExecute: "execute",
		BreakpointRead:    "read",
		BreakpointWrite:   "write",
		BreakpointType(9): "unknown",
	}
	for bt, want := range tests {
		if got := bt.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(bt), got, want)
		}
	}
}

func TestReplacedWatchpointStopsFiring(t *testing.T) {
	sink := &recordingSink{}
	m, core := newTestMachine(t, Config{Sink: sink})
	core.program = func(c *fakeCore) {
		c.bus.Read(Byte, 0x400100)
	}
	m.AddBreakpoint(Breakpoint{Address: 0x400100, OnRead: true, Halt: true})
	m.AddBreakpoint(Breakpoint{Address: 0x400100, OnExecute: true, Halt: true})

	if _, err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(sink.events) != 0 {
		t.Fatalf("read of an execute-only breakpoint trapped: %v", sink.events)
	}
}
