package debug

import (
	"fmt"

	"github.com/jenska/m68kdasm"
)

// maxInstructionLen is the longest 68000 instruction in bytes.
const maxInstructionLen = 10

// Disassemble decodes the instruction at address, fetching bytes through
// peek. Words the disassembler rejects are shown as data.
func Disassemble(peek func(uint32) uint8, address uint32) string {
	code := make([]byte, maxInstructionLen)
	for i := range code {
		code[i] = peek(address + uint32(i))
	}

	inst, err := m68kdasm.Decode(code, address)
	if err != nil {
		return fmt.Sprintf("DC.W $%02X%02X", code[0], code[1])
	}
	return inst.String()
}
