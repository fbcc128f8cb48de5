package macemu

import "testing"

func TestInterruptRespectsMask(t *testing.T) {
	ic := NewInterruptController()
	if err := ic.Set(SourceVIA, true); err != nil {
		t.Fatalf("Set: %v", err)
	}

	tests := []struct {
		name    string
		sr      uint16
		level   uint8
		pending bool
	}{
		{"reset mask", 0x2700, 0, false},
		{"mask 1", 0x2100, 0, false},
		{"mask 0", 0x2000, 1, true},
		{"user mode", 0x0000, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ic.Pending(tt.sr)
			if ok != tt.pending || level != tt.level {
				t.Fatalf("Pending(%04x) = (%d, %v), want (%d, %v)", tt.sr, level, ok, tt.level, tt.pending)
			}
		})
	}
}

func TestInterruptHighestSourceWins(t *testing.T) {
	ic := NewInterruptController()
	ic.Set(SourceVIA, true)
	ic.Set(SourceSCC, true)

	if got := ic.Level(); got != 2 {
		t.Fatalf("level = %d, want 2", got)
	}

	ic.Set(SourceSCC, false)
	if got := ic.Level(); got != 1 {
		t.Fatalf("level after SCC release = %d, want 1", got)
	}

	ic.Set(SourceVIA, false)
	if _, ok := ic.Pending(0x2000); ok {
		t.Fatalf("released lines still pending")
	}
}

func TestInterruptLevelStaysAsserted(t *testing.T) {
	ic := NewInterruptController()
	ic.Set(SourceVIA, true)

	for i := 0; i < 3; i++ {
		if _, ok := ic.Pending(0x2000); !ok {
			t.Fatalf("poll %d: asserted line not pending", i)
		}
	}
}

func TestInterruptInvalidSource(t *testing.T) {
	ic := NewInterruptController()
	if err := ic.Set(InterruptSource(42), true); err == nil {
		t.Fatalf("expected error for invalid source")
	}
}
