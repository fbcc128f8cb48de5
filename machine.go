package macemu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brand7n/macemu/internal/bus"
	"github.com/brand7n/macemu/internal/debug"
	"github.com/brand7n/macemu/internal/iwm"
	"github.com/brand7n/macemu/internal/via"
	"github.com/brand7n/macemu/internal/video"
)

const (
	// ClockHz is the 68000 clock of the original machine.
	ClockHz = 7833600
	// DefaultCyclesPerFrame is the CPU budget between two vertical blanks.
	DefaultCyclesPerFrame = ClockHz / video.FrameRate

	// VIA control lines
	lineOneSecond = 1
	lineVBlank    = 2

	portAMainScreen = 0x40
	portBMouseUp    = 0x08
)

var ErrHalted = errors.New("cpu halted")

// Config tunes a Machine. Zero values select the defaults.
type Config struct {
	RAMSize        uint32
	CyclesPerFrame int
	// Sink receives traps. A Sink that is also a debug.Attacher is attached
	// to the machine before the core is reset.
	Sink    debug.Sink
	Logger  *slog.Logger
	NewCore NewCoreFunc
}

// Machine wires a core, the bus and the peripherals together. Step,
// RunFrame and the accessors are meant to be driven from one goroutine.
type Machine struct {
	cfg Config
	log *slog.Logger

	space *bus.AddressSpace
	bus   *bus.Bus
	via   *via.VIA
	iwm   *iwm.IWM
	core  Core
	irq   *InterruptController
	kbd   *Keyboard

	breakpoints map[uint32]Breakpoint
	tracer      TraceCallback

	mainScreen atomic.Bool
	mouseDown  atomic.Bool

	cycles uint64
	frames uint64
}

// New validates rom, builds the machine and resets the core, which fetches
// the initial SSP and PC from ROM through the overlay.
func New(rom []byte, cfg Config) (*Machine, error) {
	if err := ValidateROM(rom); err != nil {
		return nil, err
	}
	if cfg.RAMSize == 0 {
		cfg.RAMSize = bus.DefaultRAMSize
	}
	if cfg.RAMSize < video.AltOffset || cfg.RAMSize > bus.ROMBase {
		return nil, fmt.Errorf("%w: %d bytes", ErrRAMSize, cfg.RAMSize)
	}
	if cfg.CyclesPerFrame <= 0 {
		cfg.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if cfg.Sink == nil {
		cfg.Sink = debug.NopSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewCore == nil {
		cfg.NewCore = NewM68KCore
	}

	m := &Machine{
		cfg: cfg,
		log: cfg.Logger,
		irq: NewInterruptController(),
		kbd: NewKeyboard(cfg.Logger),
	}
	m.mainScreen.Store(true)
	m.space = bus.NewAddressSpace(rom, cfg.RAMSize, m.log)
	m.via = via.New(viaHandlers{m}, m.log)
	m.iwm = iwm.New(m.log)
	m.bus = bus.New(m.space, m.via, m.iwm, cfg.Sink, m.log)
	m.bus.OnWatch(m.accessBreakpoint)

	if a, ok := cfg.Sink.(debug.Attacher); ok {
		a.Attach(m)
	}

	m.core = cfg.NewCore(m.bus)
	regs := m.core.Registers()
	m.log.Info("machine: reset", "ssp", fmt.Sprintf("$%08x", regs.A[7]), "pc", fmt.Sprintf("$%08x", regs.PC),
		"ram", cfg.RAMSize)
	return m, nil
}

// Reset pulses the reset line and restarts the core. RAM and the overlay
// state survive.
func (m *Machine) Reset() {
	m.bus.Reset()
	m.core.Reset()
	m.cycles = 0
}

// Step executes one instruction and returns the cycles it took. Before the
// instruction, execute breakpoints and single-step mode may trap to the
// sink, and an unmasked interrupt is requested from the core.
func (m *Machine) Step() (int, error) {
	if m.core.Halted() {
		return 0, ErrHalted
	}

	regs := m.core.Registers()
	pc := regs.PC & bus.AddressMask

	halted, err := m.checkExecuteBreakpoint(pc)
	if err != nil {
		return 0, err
	}
	if !halted && m.bus.SingleStepArmed() {
		m.bus.Trap(LabelSingleStep, pc)
	}

	if level, ok := m.irq.Pending(regs.SR); ok {
		m.core.RequestInterrupt(level)
	}

	n := m.core.Step()
	m.cycles += uint64(n)
	m.sendTrace(pc, n)

	if m.core.Halted() {
		return n, ErrHalted
	}
	return n, nil
}

// RunFrame runs one frame's worth of cycles, then signals vertical blank
// and, once per FrameRate frames, the one-second tick.
func (m *Machine) RunFrame() error {
	m.deliverKeyboard()

	for budget := m.cfg.CyclesPerFrame; budget > 0; {
		n, err := m.Step()
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("execution stalled at %06x: cycles not advancing", m.core.Registers().PC)
		}
		budget -= n
	}

	m.via.Tick(time.Second / video.FrameRate)
	m.frames++
	m.via.NotifyEdge(lineVBlank)
	if m.frames%video.FrameRate == 0 {
		m.via.NotifyEdge(lineOneSecond)
	}
	return nil
}

// deliverKeyboard clocks a pending keyboard reply into the VIA. A reply the
// VIA refuses is retried on the next frame.
func (m *Machine) deliverKeyboard() {
	reply, ok := m.kbd.Reply()
	if !ok {
		return
	}
	if m.via.ReceiveShiftByte(reply) {
		m.kbd.Delivered()
	}
}

// Framebuffer returns the live screen page selected by VIA port A.
func (m *Machine) Framebuffer() []byte {
	base := video.Base(m.space.RAMLen(), !m.mainScreen.Load())
	return m.space.RAM()[base : base+video.Size]
}

func (m *Machine) KeyDown(code uint8) { m.kbd.KeyDown(code) }
func (m *Machine) KeyUp(code uint8)   { m.kbd.KeyUp(code) }

func (m *Machine) SetMouseButton(down bool) {
	m.mouseDown.Store(down)
}

// Registers returns a snapshot of the core's registers.
func (m *Machine) Registers() Registers {
	return m.core.Registers()
}

// Bus exposes the memory-access ABI.
func (m *Machine) Bus() *bus.Bus {
	return m.bus
}

// Overlay reports whether ROM still shadows low memory.
func (m *Machine) Overlay() bool {
	return m.space.Overlay()
}

// Cycles returns the number of cycles executed since the last reset.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// ReadRegister implements debug.Target.
func (m *Machine) ReadRegister(r debug.Register) uint32 {
	if m.core == nil {
		return 0
	}
	regs := m.core.Registers()
	switch {
	case r >= debug.D0 && r <= debug.D7:
		return regs.D[r-debug.D0]
	case r >= debug.A0 && r <= debug.A7:
		return regs.A[r-debug.A0]
	case r == debug.PC:
		return regs.PC
	case r == debug.SR:
		return uint32(regs.SR)
	case r == debug.USP:
		return regs.USP
	case r == debug.SSP:
		return regs.SSP
	default:
		return 0
	}
}

// Disassemble implements debug.Target.
func (m *Machine) Disassemble(address uint32) string {
	return debug.Disassemble(m.bus.Peek, address)
}

// Peek implements debug.Target.
func (m *Machine) Peek(address uint32) uint8 {
	return m.bus.Peek(address)
}

// viaHandlers connects the VIA's ports and interrupt output to the rest of
// the board.
type viaHandlers struct {
	m *Machine
}

func (h viaHandlers) PortAChanged(value uint8) {
	h.m.mainScreen.Store(value&portAMainScreen != 0)
	if value&via.PortAOverlay == 0 {
		h.m.space.Remap()
	}
}

func (h viaHandlers) PortBChanged(value uint8) {
	h.m.log.Debug("via: port B changed", "value", value)
}

func (h viaHandlers) PortAInput() uint8 {
	return 0
}

func (h viaHandlers) PortBInput() uint8 {
	if h.m.mouseDown.Load() {
		return 0
	}
	return portBMouseUp
}

func (h viaHandlers) ShiftOut(value uint8) {
	h.m.kbd.Command(value)
}

func (h viaHandlers) SetIRQ(asserted bool) {
	if err := h.m.irq.Set(SourceVIA, asserted); err != nil {
		h.m.log.Error("via: interrupt", "error", err)
	}
}
