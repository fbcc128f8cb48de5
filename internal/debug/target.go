package debug

// Register identifies a programmer visible 68000 register.
type Register int

const (
	D0 Register = iota
	D1
	D2
	D3
	D4
	D5
	D6
	D7
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	PC
	SR
	USP
	SSP
)

var registerNames = [...]string{
	"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7",
	"A0", "A1", "A2", "A3", "A4", "A5", "A6", "A7",
	"PC", "SR", "USP", "SSP",
}

func (r Register) String() string {
	if r < 0 || int(r) >= len(registerNames) {
		return "??"
	}
	return registerNames[r]
}

// Target is the CPU-state query a sink uses for diagnostics. None of its
// methods may have side effects on the emulated hardware.
type Target interface {
	ReadRegister(Register) uint32
	Disassemble(address uint32) string
	Peek(address uint32) uint8
}
