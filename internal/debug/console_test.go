package debug

import (
	"bytes"
	"strings"
	"testing"
)

type fakeTarget struct {
	regs [SSP + 1]uint32
	mem  map[uint32]uint8
}

func (f *fakeTarget) ReadRegister(r Register) uint32 { return f.regs[r] }
func (f *fakeTarget) Disassemble(uint32) string      { return "NOP" }
func (f *fakeTarget) Peek(address uint32) uint8      { return f.mem[address] }

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"s", Step},
		{"step\n", Step},
		{"  S  ", Step},
		{"", Continue},
		{"\n", Continue},
		{"c", Continue},
		{"steps", Continue},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.line), func(t *testing.T) {
			if got := ParseCommand(tt.line); got != tt.want {
				t.Fatalf("ParseCommand(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestConsoleTrap(t *testing.T) {
	in := strings.NewReader("s\n\n")
	var out bytes.Buffer
	c := NewConsole(in, &out, nil)

	target := &fakeTarget{mem: map[uint32]uint8{0x900000: 0xab}}
	target.regs[PC] = 0x400123
	target.regs[D3] = 0xcafef00d
	c.Attach(target)

	if got := c.Trap(Event{Label: "SCC read", Address: 0x900000}); got != Step {
		t.Fatalf("first trap = %v, want step", got)
	}
	if got := c.Trap(Event{Label: "single-step", Address: 0x400123}); got != Continue {
		t.Fatalf("second trap = %v, want continue", got)
	}

	report := out.String()
	for _, want := range []string{"SCC read", "$900000", "400123", "NOP", "D3 cafef00d", " ab"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestConsoleEOFContinues(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, nil)

	if got := c.Trap(Event{Label: "ROM write", Address: 0x400000}); got != Continue {
		t.Fatalf("trap at EOF = %v, want continue", got)
	}
	if !strings.Contains(out.String(), "no CPU attached") {
		t.Fatalf("unattached console should say so:\n%s", out.String())
	}
}

func TestConsoleUnterminatedLine(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("step"), &out, nil)

	if got := c.Trap(Event{Label: "breakpoint"}); got != Step {
		t.Fatalf("trap = %v, want step", got)
	}
}

func TestMemoryDump(t *testing.T) {
	target := &fakeTarget{mem: map[uint32]uint8{0x10: 0x01, 0x11: 0xff}}

	if got, want := MemoryDump(target, 0x10, 3), "$000010: 01 ff 00"; got != want {
		t.Fatalf("MemoryDump = %q, want %q", got, want)
	}
}

func TestSinkAdapters(t *testing.T) {
	var seen Event
	var s Sink = SinkFunc(func(ev Event) Command {
		seen = ev
		return Step
	})

	ev := Event{Label: "watchpoint", Address: 0x1a700}
	if s.Trap(ev) != Step || seen != ev {
		t.Fatalf("SinkFunc did not forward the event")
	}
	if (NopSink{}).Trap(ev) != Continue {
		t.Fatalf("NopSink should continue")
	}
	if got, want := ev.String(), "watchpoint at $01a700"; got != want {
		t.Fatalf("Event.String = %q, want %q", got, want)
	}
}
