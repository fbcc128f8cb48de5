package macemu

import (
	"fmt"
	"sync"
)

const srInterruptMask = 0x0700

// InterruptSource is a device wired to the CPU's priority inputs.
type InterruptSource int

const (
	SourceVIA InterruptSource = iota
	SourceSCC
	SourceNMI // programmer's switch

	numSources
)

// Levels the Macintosh glue logic encodes on IPL0-2 for each source.
var sourceLevels = [numSources]uint8{
	SourceVIA: 1,
	SourceSCC: 2,
	SourceNMI: 4,
}

func (s InterruptSource) String() string {
	switch s {
	case SourceVIA:
		return "via"
	case SourceSCC:
		return "scc"
	case SourceNMI:
		return "nmi"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// InterruptController tracks which sources hold their interrupt line
// asserted. Lines are level sensitive: a request stays pending until the
// device releases it.
type InterruptController struct {
	crit     sync.Mutex
	asserted [numSources]bool
	maxLevel uint8
}

func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

// Set asserts or releases the line of src.
func (ic *InterruptController) Set(src InterruptSource, asserted bool) error {
	if src < 0 || src >= numSources {
		return fmt.Errorf("invalid interrupt source %d", int(src))
	}

	ic.crit.Lock()
	defer ic.crit.Unlock()

	ic.asserted[src] = asserted

	// Recalculate maxLevel
	ic.maxLevel = 0
	for s, on := range ic.asserted {
		if on && sourceLevels[s] > ic.maxLevel {
			ic.maxLevel = sourceLevels[s]
		}
	}
	return nil
}

// Level returns the priority presented to the CPU, 0 when idle.
func (ic *InterruptController) Level() uint8 {
	ic.crit.Lock()
	defer ic.crit.Unlock()
	return ic.maxLevel
}

// Pending reports the level to deliver given the CPU status register. Level
// 7 is not maskable.
func (ic *InterruptController) Pending(sr uint16) (uint8, bool) {
	interruptMask := uint8((sr & srInterruptMask) >> 8)
	level := ic.Level()
	if level == 0 {
		return 0, false
	}
	if level <= interruptMask && level != 7 {
		return 0, false
	}
	return level, true
}
