package macemu

import (
	"fmt"

	m68k "github.com/user-none/go-chip-m68k"

	"github.com/brand7n/macemu/internal/bus"
)

type (
	// Registers represents the programmer visible registers of the 68000 CPU.
	Registers struct {
		D   [8]uint32
		A   [8]uint32
		PC  uint32
		SR  uint16
		USP uint32
		SSP uint32
		IR  uint16 // instruction register
	}

	// Core is the instruction interpreter. It is driven one instruction at a
	// time and sees memory only through a CoreBus.
	Core interface {
		Reset()
		// Step executes one instruction and returns the cycles it took.
		Step() int
		Registers() Registers
		// RequestInterrupt asks for an auto-vectored interrupt at level 1-7.
		RequestInterrupt(level uint8)
		Halted() bool
	}

	// CoreBus is the memory-access ABI a core is built on. Accesses never
	// fail.
	CoreBus interface {
		Read(s bus.Size, address uint32) uint32
		Write(s bus.Size, address uint32, value uint32)
		Reset()
	}

	// NewCoreFunc builds a core on a bus. The core is expected to perform its
	// reset sequence, fetching the initial SSP and PC through the bus.
	NewCoreFunc func(CoreBus) Core
)

func (regs *Registers) String() string {
	result := fmt.Sprintf("SR %04x PC %08x USP %08x SSP %08x SP %08x\n", regs.SR, regs.PC, regs.USP, regs.SSP, regs.A[7])
	for i := range regs.D {
		result += fmt.Sprintf("D%d %08x ", i, regs.D[i])
	}
	result += "\n"
	for i := range regs.A {
		result += fmt.Sprintf("A%d %08x ", i, regs.A[i])
	}
	result += "\n"

	return result
}

// NewM68KCore is the default core, backed by go-chip-m68k.
func NewM68KCore(b CoreBus) Core {
	return &m68kCore{cpu: m68k.New(m68kBus{b})}
}

type m68kCore struct {
	cpu *m68k.CPU
}

func (c *m68kCore) Reset() {
	c.cpu.Reset()
}

func (c *m68kCore) Step() int {
	return c.cpu.Step()
}

func (c *m68kCore) Registers() Registers {
	r := c.cpu.Registers()
	return Registers{
		D:   r.D,
		A:   r.A,
		PC:  r.PC,
		SR:  r.SR,
		USP: r.USP,
		SSP: r.SSP,
		IR:  r.IR,
	}
}

func (c *m68kCore) RequestInterrupt(level uint8) {
	c.cpu.RequestInterrupt(level, nil)
}

func (c *m68kCore) Halted() bool {
	return c.cpu.Halted()
}

// m68kBus adapts a CoreBus to the bus interface go-chip-m68k expects.
type m68kBus struct {
	b CoreBus
}

func (mb m68kBus) Read(op m68k.Size, address uint32) uint32 {
	return mb.b.Read(busSize(op), address)
}

func (mb m68kBus) Write(op m68k.Size, address uint32, value uint32) {
	mb.b.Write(busSize(op), address, value)
}

func (mb m68kBus) Reset() {
	mb.b.Reset()
}

func busSize(op m68k.Size) bus.Size {
	switch op {
	case m68k.Long:
		return bus.Long
	case m68k.Word:
		return bus.Word
	default:
		return bus.Byte
	}
}
