package macemu

import "github.com/brand7n/macemu/internal/bus"

type (
	BreakpointType int

	TraceInfo struct {
		PC        uint32
		SR        uint16
		Cycles    int
		Registers Registers
	}

	// TraceCallback observes every retired instruction.
	TraceCallback func(TraceInfo)

	// Breakpoint fires on execution of, or access to, Address. Callback runs
	// first; Halt then hands control to the debug sink.
	Breakpoint struct {
		Address   uint32
		OnExecute bool
		OnRead    bool
		OnWrite   bool
		Halt      bool
		Callback  func(BreakpointEvent) error
	}

	BreakpointEvent struct {
		Type      BreakpointType
		Address   uint32
		Registers Registers
	}
)

const (
	BreakpointExecute BreakpointType = iota
	BreakpointRead
	BreakpointWrite
)

// Trap labels raised by the stepping loop.
const (
	LabelBreakpoint = "breakpoint"
	LabelSingleStep = "single-step"
)

func (bt BreakpointType) String() string {
	switch bt {
	case BreakpointExecute:
		return "execute"
	case BreakpointRead:
		return "read"
	case BreakpointWrite:
		return "write"
	default:
		return "unknown"
	}
}

// AddBreakpoint installs bp, replacing any breakpoint at the same address.
// Breakpoints must be added before the machine runs.
func (m *Machine) AddBreakpoint(bp Breakpoint) {
	bp.Address &= bus.AddressMask
	if m.breakpoints == nil {
		m.breakpoints = make(map[uint32]Breakpoint)
	}
	m.breakpoints[bp.Address] = bp

	var access bus.Access
	if bp.OnRead {
		access |= bus.AccessRead
	}
	if bp.OnWrite {
		access |= bus.AccessWrite
	}
	m.bus.Watch(bp.Address, access)
}

// SetTracer installs cb, or removes the tracer when cb is nil.
func (m *Machine) SetTracer(cb TraceCallback) {
	m.tracer = cb
}

func (m *Machine) handleBreakpoint(bp Breakpoint, kind BreakpointType, address uint32) error {
	event := BreakpointEvent{Type: kind, Address: address, Registers: m.core.Registers()}
	if bp.Callback != nil {
		if err := bp.Callback(event); err != nil {
			return err
		}
	}

	if bp.Halt {
		label := LabelBreakpoint
		if kind != BreakpointExecute {
			label = bus.LabelWatch
		}
		m.bus.Trap(label, address)
	}
	return nil
}

func (m *Machine) checkExecuteBreakpoint(pc uint32) (bool, error) {
	if m.breakpoints == nil {
		return false, nil
	}

	bp, ok := m.breakpoints[pc]
	if !ok || !bp.OnExecute {
		return false, nil
	}
	return bp.Halt, m.handleBreakpoint(bp, BreakpointExecute, pc)
}

// accessBreakpoint runs from inside a bus access, which cannot fail, so
// callback errors are only logged.
func (m *Machine) accessBreakpoint(address uint32, access bus.Access) {
	bp, ok := m.breakpoints[address]
	if !ok {
		return
	}

	kind := BreakpointRead
	if access == bus.AccessWrite {
		kind = BreakpointWrite
	}
	if err := m.handleBreakpoint(bp, kind, address); err != nil {
		m.log.Warn("breakpoint callback failed", "address", address, "type", kind, "error", err)
	}
}

func (m *Machine) sendTrace(pc uint32, cycles int) {
	if m.tracer == nil {
		return
	}

	regs := m.core.Registers()
	m.tracer(TraceInfo{PC: pc, SR: regs.SR, Cycles: cycles, Registers: regs})
}
