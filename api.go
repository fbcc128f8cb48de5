package macemu

import (
	"io"
	"log/slog"

	"github.com/brand7n/macemu/internal/bus"
	"github.com/brand7n/macemu/internal/debug"
)

const (
	Byte = bus.Byte
	Word = bus.Word
	Long = bus.Long

	ROMSize        = bus.ROMSize
	ROMBase        = bus.ROMBase
	DefaultRAMSize = bus.DefaultRAMSize

	Continue = debug.Continue
	StepOne  = debug.Step
)

type (
	Size    = bus.Size
	Bus     = bus.Bus
	Region  = bus.Region
	Sink    = debug.Sink
	Event   = debug.Event
	Command = debug.Command
	Target  = debug.Target

	SinkFunc = debug.SinkFunc
	NopSink  = debug.NopSink
	Console  = debug.Console
)

// NewConsole returns the interactive debug sink.
func NewConsole(in io.Reader, out io.Writer, log *slog.Logger) *Console {
	return debug.NewConsole(in, out, log)
}
