// Package bus implements the address decoder that sits between the CPU core
// and the machine's memory and peripherals.
package bus

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/brand7n/macemu/internal/debug"
)

// AddressMask limits addresses to the 68000's 24 bit external bus.
const AddressMask = 0xffffff

const (
	iwmBase = 0xdfe1ff
	iwmSize = 0x2000

	sccMask      = 0xf00000
	sccReadBase  = 0x900000
	sccWriteBase = 0xb00000

	viaMask = 0xe80000

	unmappedValue = 0xff
)

// Device is a byte wide memory-mapped peripheral. Devices decode their own
// register index from the address and must be safe for concurrent use.
type Device interface {
	Read(address uint32) uint8
	Write(address uint32, value uint8)
	Reset()
}

// Region classifies an address by the decoder window that claims it.
type Region int

const (
	RegionUnmapped Region = iota
	RegionIWM
	RegionSCCRead
	RegionSCCWrite
	RegionVIA
	RegionROMOverlay
	RegionROM
	RegionRAM
	RegionRAMOverlay
)

func (r Region) String() string {
	switch r {
	case RegionIWM:
		return "iwm"
	case RegionSCCRead:
		return "scc-read"
	case RegionSCCWrite:
		return "scc-write"
	case RegionVIA:
		return "via"
	case RegionROMOverlay:
		return "rom-overlay"
	case RegionROM:
		return "rom"
	case RegionRAM:
		return "ram"
	case RegionRAMOverlay:
		return "ram-overlay"
	default:
		return "unmapped"
	}
}

// Access selects the direction a watchpoint fires on.
type Access int

const (
	AccessRead Access = 1 << iota
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "read/write"
	}
}

// WatchFunc observes an access to a watched address before it is performed.
type WatchFunc func(address uint32, access Access)

// Trap labels reported to the debug sink.
const (
	LabelSCCRead  = "SCC read"
	LabelSCCWrite = "SCC write"
	LabelROMWrite = "ROM write"
	LabelWatch    = "watchpoint"
)

// Bus routes every CPU access to ROM, RAM or one of the devices. No access
// ever fails: unmapped and unimplemented addresses degrade to a sentinel
// value and a log line, the way the real bus does.
type Bus struct {
	space *AddressSpace
	via   Device
	iwm   Device
	sink  debug.Sink
	log   *slog.Logger

	singleStep atomic.Bool

	// watches must be configured before execution starts
	watches map[uint32]Access
	onWatch WatchFunc
}

// New assembles a bus. A nil sink never traps.
func New(space *AddressSpace, via, iwm Device, sink debug.Sink, log *slog.Logger) *Bus {
	if sink == nil {
		sink = debug.NopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		space: space,
		via:   via,
		iwm:   iwm,
		sink:  sink,
		log:   log,
	}
}

// Region decodes an address. The order of the tests is significant: the
// first matching window wins.
func (b *Bus) Region(address uint32) Region {
	address &= AddressMask
	switch {
	case address >= iwmBase && address < iwmBase+iwmSize:
		return RegionIWM
	case address&sccMask == sccReadBase:
		return RegionSCCRead
	case address&sccMask == sccWriteBase:
		return RegionSCCWrite
	case address&viaMask == viaMask:
		return RegionVIA
	case b.space.Overlay() && b.space.inROM(address):
		return RegionROMOverlay
	case address >= ROMBase && b.space.inROM(address-ROMBase):
		return RegionROM
	case b.space.inRAM(address):
		return RegionRAM
	case b.space.Overlay() && address >= RAMOverlayBase && b.space.inRAM(address-RAMOverlayBase):
		return RegionRAMOverlay
	default:
		return RegionUnmapped
	}
}

// Read8 performs a single byte read.
func (b *Bus) Read8(address uint32) uint8 {
	address &= AddressMask
	if b.watches != nil {
		b.checkWatch(address, AccessRead)
	}

	switch region := b.Region(address); region {
	case RegionIWM:
		return b.iwm.Read(address)
	case RegionVIA:
		return b.via.Read(address)
	case RegionSCCRead, RegionSCCWrite:
		b.log.Debug("bus: scc read trapped", "address", hex(address), "window", region)
		b.Trap(sccLabel(region), address)
		return unmappedValue
	case RegionROMOverlay:
		return b.space.readROM(address)
	case RegionROM:
		return b.space.readROM(address - ROMBase)
	case RegionRAM:
		return b.space.readRAM(address)
	case RegionRAMOverlay:
		return b.space.readRAM(address - RAMOverlayBase)
	default:
		b.log.Debug("bus: read from unmapped address", "address", hex(address))
		return unmappedValue
	}
}

// Write8 performs a single byte write.
func (b *Bus) Write8(address uint32, value uint8) {
	address &= AddressMask
	if b.watches != nil {
		b.checkWatch(address, AccessWrite)
	}

	switch region := b.Region(address); region {
	case RegionIWM:
		b.iwm.Write(address, value)
	case RegionVIA:
		b.via.Write(address, value)
	case RegionSCCRead, RegionSCCWrite:
		b.log.Debug("bus: scc write trapped", "address", hex(address), "value", hex(uint32(value)), "window", region)
		b.Trap(sccLabel(region), address)
	case RegionROMOverlay, RegionROM:
		b.log.Warn("bus: write to ROM dropped", "address", hex(address), "value", hex(uint32(value)))
		b.Trap(LabelROMWrite, address)
	case RegionRAM:
		b.space.writeRAM(address, value)
	case RegionRAMOverlay:
		b.space.writeRAM(address-RAMOverlayBase, value)
	default:
		b.log.Debug("bus: write to unmapped address dropped", "address", hex(address), "value", hex(uint32(value)))
	}
}

// Read16 reads two bytes, most significant first. Each byte is decoded on
// its own, so a word may straddle two regions.
func (b *Bus) Read16(address uint32) uint16 {
	return uint16(b.Read8(address))<<8 | uint16(b.Read8(address+1))
}

// Read32 reads two words, most significant first.
func (b *Bus) Read32(address uint32) uint32 {
	return uint32(b.Read16(address))<<16 | uint32(b.Read16(address+2))
}

// Write16 writes two bytes, most significant first.
func (b *Bus) Write16(address uint32, value uint16) {
	b.Write8(address, uint8(value>>8))
	b.Write8(address+1, uint8(value))
}

// Write32 writes two words, most significant first.
func (b *Bus) Write32(address uint32, value uint32) {
	b.Write16(address, uint16(value>>16))
	b.Write16(address+2, uint16(value))
}

// Read dispatches a sized read. Unknown sizes read as a byte.
func (b *Bus) Read(s Size, address uint32) uint32 {
	switch s {
	case Long:
		return b.Read32(address)
	case Word:
		return uint32(b.Read16(address))
	default:
		return uint32(b.Read8(address))
	}
}

// Write dispatches a sized write.
func (b *Bus) Write(s Size, address uint32, value uint32) {
	value &= s.mask()
	switch s {
	case Long:
		b.Write32(address, value)
	case Word:
		b.Write16(address, uint16(value))
	default:
		b.Write8(address, uint8(value))
	}
}

// Peek reads ROM or RAM without side effects. Devices, trapped windows and
// unmapped addresses read as all ones.
func (b *Bus) Peek(address uint32) uint8 {
	address &= AddressMask
	switch b.Region(address) {
	case RegionROMOverlay:
		return b.space.readROM(address)
	case RegionROM:
		return b.space.readROM(address - ROMBase)
	case RegionRAM:
		return b.space.readRAM(address)
	case RegionRAMOverlay:
		return b.space.readRAM(address - RAMOverlayBase)
	default:
		return unmappedValue
	}
}

// Reset models the RESET line: devices return to their power-on state. The
// overlay is not restored.
func (b *Bus) Reset() {
	b.log.Debug("bus: reset")
	b.via.Reset()
	b.iwm.Reset()
}

// Trap hands control to the debug sink. It returns false when the operator
// asked for a single step (which arms single-step mode) and true for a full
// continue (which disarms it).
func (b *Bus) Trap(label string, address uint32) bool {
	cmd := b.sink.Trap(debug.Event{Label: label, Address: address})
	step := cmd == debug.Step
	b.singleStep.Store(step)
	return !step
}

// SingleStepArmed reports whether the stepping loop must trap before the
// next instruction.
func (b *Bus) SingleStepArmed() bool {
	return b.singleStep.Load()
}

// ArmSingleStep forces single-step mode, e.g. to pause on the first
// instruction after bring-up.
func (b *Bus) ArmSingleStep() {
	b.singleStep.Store(true)
}

// Watch traps before any access of the given kind to address, replacing
// the previous watch there. An empty access removes it.
func (b *Bus) Watch(address uint32, access Access) {
	address &= AddressMask
	if access == 0 {
		delete(b.watches, address)
		return
	}
	if b.watches == nil {
		b.watches = make(map[uint32]Access)
	}
	b.watches[address] = access
}

// OnWatch replaces the default watchpoint action, a trap to the sink, with fn.
func (b *Bus) OnWatch(fn WatchFunc) {
	b.onWatch = fn
}

func (b *Bus) checkWatch(address uint32, access Access) {
	if b.watches[address]&access == 0 {
		return
	}
	if b.onWatch != nil {
		b.onWatch(address, access)
		return
	}
	b.Trap(LabelWatch, address)
}

func sccLabel(r Region) string {
	if r == RegionSCCWrite {
		return LabelSCCWrite
	}
	return LabelSCCRead
}

type hex uint32

func (h hex) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("$%06x", uint32(h)))
}
