package debug

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const prompt = "[s]tep or <enter> to continue> "

const peekLen = 16

// Console is the interactive sink. On every trap it prints the machine
// state and blocks until the operator enters a line. There is no timeout.
type Console struct {
	crit   sync.Mutex
	target Target

	in    io.Reader
	lines *bufio.Reader
	out   io.Writer

	styles styles
	log    *slog.Logger
}

// NewConsole reads commands from in and writes reports to out. When in is a
// terminal it is switched to raw mode for line editing while a trap waits.
func NewConsole(in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		in:     in,
		lines:  bufio.NewReader(in),
		out:    out,
		styles: newStyles(),
		log:    log,
	}
}

// Attach sets the CPU state the console reports on.
func (c *Console) Attach(t Target) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.target = t
}

// Trap reports ev and waits for a command. Unreadable input resumes
// execution so that a closed stdin cannot wedge the emulator.
func (c *Console) Trap(ev Event) Command {
	c.crit.Lock()
	defer c.crit.Unlock()

	c.report(ev)

	line, err := c.readLine()
	if err != nil {
		c.log.Warn("debug: cannot read operator input, continuing", "error", err)
		return Continue
	}
	return ParseCommand(line)
}

// ParseCommand maps an input line to a command. Only "s" and "step" single
// step; everything else, including an empty line, continues.
func ParseCommand(line string) Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "step":
		return Step
	default:
		return Continue
	}
}

func (c *Console) report(ev Event) {
	fmt.Fprintf(c.out, "%s %s\n", c.styles.trap.Render(" "+ev.Label+" "),
		c.styles.address.Render(fmt.Sprintf("at $%06x", ev.Address)))

	if c.target == nil {
		fmt.Fprintln(c.out, "no CPU attached")
		return
	}

	pc := c.target.ReadRegister(PC)
	fmt.Fprintf(c.out, "%s  %s\n", c.styles.address.Render(fmt.Sprintf("$%06x", pc)),
		c.styles.instruction.Render(c.target.Disassemble(pc)))
	fmt.Fprint(c.out, c.styles.cpu.Render(RegisterDump(c.target)))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.mem.Render(MemoryDump(c.target, ev.Address, peekLen)))
}

func (c *Console) readLine() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return c.readTerminal(f)
	}

	fmt.Fprint(c.out, c.styles.prompt.Render(prompt))
	line, err := c.lines.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (c *Console) readTerminal(f *os.File) (string, error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("error making raw terminal: %w", err)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, c.out}, prompt)
	return t.ReadLine()
}

// RegisterDump formats all registers of t.
func RegisterDump(t Target) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SR %04x PC %08x USP %08x SSP %08x SP %08x\n",
		t.ReadRegister(SR), t.ReadRegister(PC), t.ReadRegister(USP), t.ReadRegister(SSP), t.ReadRegister(A7))
	for r := D0; r <= D7; r++ {
		fmt.Fprintf(&sb, "%s %08x ", r, t.ReadRegister(r))
	}
	sb.WriteString("\n")
	for r := A0; r <= A7; r++ {
		fmt.Fprintf(&sb, "%s %08x ", r, t.ReadRegister(r))
	}
	return sb.String()
}

// MemoryDump formats n bytes from address as a single hex line.
func MemoryDump(t Target, address uint32, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%06x:", address)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, " %02x", t.Peek(address+uint32(i)))
	}
	return sb.String()
}
