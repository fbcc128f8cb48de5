// Package iwm is a register level shell of the floppy controller. No drive
// is attached: sense lines read as if no disk were inserted.
package iwm

import (
	"log/slog"
	"sync"
)

// State line indices, decoded from address bits 9-12 like the VIA. Indices
// below RegMotorOff are the stepper phase lines.
const (
	RegMotorOff = 8
	RegQ7L      = 14
)

// Values read back from the hard wired sense lines.
const (
	SenseData   uint8 = 0xff
	SenseStatus uint8 = 0xe0
)

// IWM is safe for concurrent use.
type IWM struct {
	crit sync.Mutex
	regs [16]uint8
	log  *slog.Logger
}

func New(log *slog.Logger) *IWM {
	if log == nil {
		log = slog.Default()
	}
	return &IWM{log: log}
}

func register(address uint32) int {
	return int((address >> 9) & 0xf)
}

// Read returns the stored register, except for the two sense lines which
// are never affected by writes.
func (w *IWM) Read(address uint32) uint8 {
	w.crit.Lock()
	defer w.crit.Unlock()

	switch r := register(address); r {
	case RegMotorOff:
		return SenseData
	case RegQ7L:
		return SenseStatus
	default:
		return w.regs[r]
	}
}

// Write stores unconditionally.
func (w *IWM) Write(address uint32, value uint8) {
	w.crit.Lock()
	defer w.crit.Unlock()

	r := register(address)
	if r < RegMotorOff {
		w.log.Debug("iwm: unhandled write to phase line", "register", r, "value", value)
	}
	w.regs[r] = value
}

// Reset clears the register file.
func (w *IWM) Reset() {
	w.crit.Lock()
	defer w.crit.Unlock()
	w.regs = [16]uint8{}
}
