package bus

// Size is the width of a bus transaction in bytes.
type Size uint32

const (
	Byte Size = 1
	Word Size = 2
	Long Size = 4
)

func (s Size) mask() uint32 {
	switch s {
	case Byte:
		return 0xff
	case Word:
		return 0xffff
	default:
		return 0xffffffff
	}
}

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Long:
		return "long"
	default:
		return "unknown"
	}
}
