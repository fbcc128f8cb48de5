package bus

import (
	"log/slog"
	"sync/atomic"
)

const (
	// ROMSize is the size of the boot ROM image.
	ROMSize = 64 * 1024
	// DefaultRAMSize is the RAM fitted to the 128K machine.
	DefaultRAMSize = 128 * 1024

	// ROMBase is the fixed high alias at which ROM is always visible.
	ROMBase = 0x400000
	// RAMOverlayBase is where RAM stays reachable while ROM overlays address zero.
	RAMOverlayBase = 0x600000
)

// AddressSpace owns the ROM and RAM backing stores and the overlay flag
// that maps ROM at address zero until the machine remaps it.
type AddressSpace struct {
	rom     []byte
	ram     []byte
	overlay atomic.Bool
	log     *slog.Logger
}

// NewAddressSpace copies rom and allocates zeroed RAM. The overlay starts
// active.
func NewAddressSpace(rom []byte, ramSize uint32, log *slog.Logger) *AddressSpace {
	if log == nil {
		log = slog.Default()
	}
	as := &AddressSpace{
		rom: append([]byte(nil), rom...),
		ram: make([]byte, ramSize),
		log: log,
	}
	as.overlay.Store(true)
	return as
}

// Overlay reports whether ROM is currently visible at address zero.
func (as *AddressSpace) Overlay() bool {
	return as.overlay.Load()
}

// Remap clears the overlay. It is one-way: once RAM is visible at address
// zero the overlay cannot be restored.
func (as *AddressSpace) Remap() {
	if as.overlay.CompareAndSwap(true, false) {
		as.log.Info("memory: ROM overlay removed, RAM mapped at zero")
	}
}

// RAM exposes the RAM backing store. Callers must not retain it across
// goroutines that do not drive emulation.
func (as *AddressSpace) RAM() []byte {
	return as.ram
}

// ROMLen returns the size of the loaded ROM image.
func (as *AddressSpace) ROMLen() uint32 {
	return uint32(len(as.rom))
}

// RAMLen returns the size of RAM.
func (as *AddressSpace) RAMLen() uint32 {
	return uint32(len(as.ram))
}

func (as *AddressSpace) inROM(offset uint32) bool {
	return offset < uint32(len(as.rom))
}

func (as *AddressSpace) inRAM(offset uint32) bool {
	return offset < uint32(len(as.ram))
}

func (as *AddressSpace) readROM(offset uint32) uint8 {
	return as.rom[offset]
}

func (as *AddressSpace) readRAM(offset uint32) uint8 {
	return as.ram[offset]
}

func (as *AddressSpace) writeRAM(offset uint32, value uint8) {
	as.ram[offset] = value
}
