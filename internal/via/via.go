// Package via models the 6522 versatile interface adapter as wired in the
// Macintosh: two parallel ports, the shift register used by the keyboard and
// interrupt aggregation. The two interval timers are not modeled.
package via

import (
	"log/slog"
	"sync"
	"time"
)

// Register indices, decoded from address bits 9-12.
const (
	RegB    = 0
	RegA    = 1
	RegDDRB = 2
	RegDDRA = 3
	RegSR   = 10
	RegACR  = 11
	RegIFR  = 13
	RegIER  = 14
	RegAAlt = 15
)

// Interrupt sources in IFR/IER.
const (
	IRQLine1 uint8 = 0x01
	IRQLine2 uint8 = 0x02
	IRQShift uint8 = 0x04

	irqAny  uint8 = 0x80
	irqMask uint8 = 0x7f
)

// Shift register modes selected by ACR bits 2-4.
const (
	acrShiftMask  = 0x1c
	shiftOut      = 0x1c
	shiftReset    = 0x18
	shiftInExtClk = 0x0c
)

// PortAOverlay is the port A output bit that keeps ROM mapped at zero.
const PortAOverlay uint8 = 0x10

// Handlers receives the VIA's outputs and supplies its inputs. Methods are
// called with the VIA lock held and must not call back into the VIA.
type Handlers interface {
	PortAChanged(value uint8)
	PortBChanged(value uint8)
	PortAInput() uint8
	PortBInput() uint8
	ShiftOut(value uint8)
	SetIRQ(asserted bool)
}

// NopHandlers implements Handlers with no-ops. Embed it to override only the
// callbacks of interest.
type NopHandlers struct{}

func (NopHandlers) PortAChanged(uint8) {}
func (NopHandlers) PortBChanged(uint8) {}
func (NopHandlers) PortAInput() uint8  { return 0 }
func (NopHandlers) PortBInput() uint8  { return 0 }
func (NopHandlers) ShiftOut(uint8)     {}
func (NopHandlers) SetIRQ(bool)        {}

// VIA is the chip model. All methods are safe for concurrent use.
type VIA struct {
	crit sync.Mutex

	regs      [16]uint8
	irqEnable uint8
	irqActive uint8
	irqStatus bool

	shiftPending    uint8
	shiftHasPending bool

	h   Handlers
	log *slog.Logger
}

// New constructs a VIA in its power-on state. A nil h is replaced with
// NopHandlers.
func New(h Handlers, log *slog.Logger) *VIA {
	if h == nil {
		h = NopHandlers{}
	}
	if log == nil {
		log = slog.Default()
	}
	v := &VIA{h: h, log: log}
	v.reset()
	return v
}

// Reset returns the chip to its power-on state. Port handlers are not
// notified; an asserted interrupt line is released through SetIRQ.
func (v *VIA) Reset() {
	v.crit.Lock()
	defer v.crit.Unlock()
	v.reset()
	v.assessIRQ()
}

func (v *VIA) reset() {
	v.regs = [16]uint8{}
	v.regs[RegA] = PortAOverlay
	v.irqEnable = 0
	v.irqActive = 0
	v.shiftPending = 0
	v.shiftHasPending = false
}

func register(address uint32) int {
	return int((address >> 9) & 0xf)
}

// Write stores a register. Port writes notify the handler only when the
// value changes; the shift register and the interrupt registers have their
// own protocols.
func (v *VIA) Write(address uint32, value uint8) {
	v.crit.Lock()
	defer v.crit.Unlock()

	r := register(address)
	switch r {
	case RegA, RegAAlt:
		if v.regs[RegA] != value {
			v.h.PortAChanged(value)
		}
		v.regs[RegA] = value
	case RegB:
		if v.regs[RegB] != value {
			v.h.PortBChanged(value)
		}
		v.regs[RegB] = value
	case RegSR:
		v.writeShift(value)
	case RegIER:
		if value&irqAny != 0 {
			v.irqEnable |= value & irqMask
		} else {
			v.irqEnable &^= value & irqMask
		}
	case RegIFR:
		acked := value & v.irqActive
		v.irqActive &^= acked
		if acked&IRQShift != 0 {
			v.shiftDone()
		}
	default:
		v.regs[r] = value
	}
	v.assessIRQ()
}

func (v *VIA) writeShift(value uint8) {
	switch v.regs[RegACR] & acrShiftMask {
	case shiftOut:
		if v.shiftHasPending {
			v.log.Warn("via: shift register written while a byte is pending",
				"pending", v.shiftPending, "value", value)
		}
		v.shiftPending = value
		v.shiftHasPending = true
		v.irqActive |= IRQShift
	case shiftReset:
		v.regs[RegSR] = 0
	}
}

// shiftDone releases the pending byte once the CPU acknowledges the shift
// interrupt.
func (v *VIA) shiftDone() {
	if !v.shiftHasPending {
		return
	}
	value := v.shiftPending
	v.shiftPending = 0
	v.shiftHasPending = false
	v.h.ShiftOut(value)
}

// Read returns a register. Port reads merge driven output bits with the
// live input for undriven bits.
func (v *VIA) Read(address uint32) uint8 {
	v.crit.Lock()
	defer v.crit.Unlock()

	var value uint8
	switch r := register(address); r {
	case RegA, RegAAlt:
		ddr := v.regs[RegDDRA]
		value = ddr&v.regs[RegA] | ^ddr&v.h.PortAInput()
	case RegB:
		ddr := v.regs[RegDDRB]
		value = ddr&v.regs[RegB] | ^ddr&v.h.PortBInput()
	case RegSR:
		v.irqActive &^= IRQShift
		value = v.regs[RegSR]
	case RegIER:
		value = irqAny | v.irqEnable
	case RegIFR:
		value = v.readIFR()
	default:
		value = v.regs[r]
	}
	v.assessIRQ()
	return value
}

func (v *VIA) readIFR() uint8 {
	if v.irqEnable&v.irqActive&irqMask != 0 {
		return v.irqActive | irqAny
	}
	return v.irqActive
}

// assessIRQ recomputes the interrupt line and reports edges only.
func (v *VIA) assessIRQ() {
	irq := v.irqEnable&v.irqActive&irqMask != 0
	if irq != v.irqStatus {
		v.irqStatus = irq
		v.h.SetIRQ(irq)
	}
}

// NotifyEdge latches the interrupt source of control line 1 or 2.
func (v *VIA) NotifyEdge(line int) {
	v.crit.Lock()
	defer v.crit.Unlock()

	switch line {
	case 1:
		v.irqActive |= IRQLine1
	case 2:
		v.irqActive |= IRQLine2
	default:
		v.log.Debug("via: edge on unknown control line", "line", line)
	}
	v.assessIRQ()
}

// ReceiveShiftByte injects a byte clocked in from outside. It is accepted
// only when the shift register is set to shift in under external clock.
func (v *VIA) ReceiveShiftByte(value uint8) bool {
	v.crit.Lock()
	defer v.crit.Unlock()

	if v.regs[RegACR]&acrShiftMask != shiftInExtClk {
		return false
	}
	v.regs[RegSR] = value
	v.irqActive |= IRQShift
	v.assessIRQ()
	return true
}

// Tick advances the timers. Timers are not modeled.
func (v *VIA) Tick(time.Duration) {}

// IRQ reports the level last signalled to the handler.
func (v *VIA) IRQ() bool {
	v.crit.Lock()
	defer v.crit.Unlock()
	return v.irqStatus
}

// PortA returns the stored port A output register without side effects.
func (v *VIA) PortA() uint8 {
	v.crit.Lock()
	defer v.crit.Unlock()
	return v.regs[RegA]
}
