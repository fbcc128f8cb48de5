package macemu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/brand7n/macemu/internal/bus"
)

var (
	ErrROMSize     = errors.New("unexpected ROM size")
	ErrResetVector = errors.New("invalid reset vector")
	ErrRAMSize     = errors.New("unsupported RAM size")
)

// LoadROM reads and validates a ROM image.
func LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}
	if err := ValidateROM(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ValidateROM checks the image size and that the reset vector holds a
// plausible initial PC.
func ValidateROM(rom []byte) error {
	if len(rom) != bus.ROMSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrROMSize, len(rom), bus.ROMSize)
	}
	pc := binary.BigEndian.Uint32(rom[4:8])
	if pc == 0 || pc&1 != 0 {
		return fmt.Errorf("%w: initial PC $%08x", ErrResetVector, pc)
	}
	return nil
}

// BuildROM lays out a ROM image: the initial SSP, a reset PC pointing just
// past the vectors in the ROM's home window, then code. The rest is zero.
func BuildROM(code []byte, ssp uint32) ([]byte, error) {
	const entry = 8
	if len(code) > bus.ROMSize-entry {
		return nil, fmt.Errorf("%w: %d bytes of code do not fit", ErrROMSize, len(code))
	}

	rom := make([]byte, bus.ROMSize)
	binary.BigEndian.PutUint32(rom[0:4], ssp)
	binary.BigEndian.PutUint32(rom[4:8], bus.ROMBase+entry)
	copy(rom[entry:], code)
	return rom, nil
}
