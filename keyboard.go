package macemu

import (
	"log/slog"
	"sync"
)

// Commands the ROM sends to the keyboard over the VIA shift register.
const (
	kbdInquiry = 0x10
	kbdInstant = 0x14
	kbdModel   = 0x16
	kbdTest    = 0x36
)

// Keyboard replies.
const (
	kbdNull    = 0x7b
	kbdTestACK = 0x7d
	kbdModelID = 0x0b

	kbdKeyUp = 0x80
)

// Keyboard models the external keyboard's side of the serial protocol. The
// host sends one command byte, the keyboard answers with one reply byte.
type Keyboard struct {
	crit sync.Mutex

	transitions []uint8
	reply       uint8
	hasReply    bool

	log *slog.Logger
}

func NewKeyboard(log *slog.Logger) *Keyboard {
	if log == nil {
		log = slog.Default()
	}
	return &Keyboard{log: log}
}

// KeyDown queues a key press. code is the 7 bit raw key code.
func (k *Keyboard) KeyDown(code uint8) {
	k.queue(code<<1 | 1)
}

// KeyUp queues a key release.
func (k *Keyboard) KeyUp(code uint8) {
	k.queue(code<<1 | 1 | kbdKeyUp)
}

func (k *Keyboard) queue(transition uint8) {
	k.crit.Lock()
	defer k.crit.Unlock()
	k.transitions = append(k.transitions, transition)
}

// Command handles a byte shifted out by the host.
func (k *Keyboard) Command(cmd uint8) {
	k.crit.Lock()
	defer k.crit.Unlock()

	switch cmd {
	case kbdInquiry, kbdInstant:
		k.setReply(k.nextTransition())
	case kbdModel:
		k.setReply(kbdModelID)
	case kbdTest:
		k.setReply(kbdTestACK)
	default:
		k.log.Debug("keyboard: unknown command", "command", cmd)
	}
}

func (k *Keyboard) nextTransition() uint8 {
	if len(k.transitions) == 0 {
		return kbdNull
	}
	t := k.transitions[0]
	k.transitions = k.transitions[1:]
	return t
}

func (k *Keyboard) setReply(v uint8) {
	if k.hasReply {
		k.log.Debug("keyboard: reply overwritten", "old", k.reply, "new", v)
	}
	k.reply = v
	k.hasReply = true
}

// Reply returns the byte waiting to be clocked back to the host.
func (k *Keyboard) Reply() (uint8, bool) {
	k.crit.Lock()
	defer k.crit.Unlock()
	return k.reply, k.hasReply
}

// Delivered drops the pending reply once the host has taken it.
func (k *Keyboard) Delivered() {
	k.crit.Lock()
	defer k.crit.Unlock()
	k.hasReply = false
}
