// Command macemu boots a 64K Macintosh ROM image.
//
//	macemu [-debug] [-step] [-break $400010] [-watch $efe1fe] path/to/mac.rom
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/brand7n/macemu"
	"github.com/brand7n/macemu/internal/display"
)

type addressList []uint32

func (l *addressList) String() string {
	parts := make([]string, len(*l))
	for i, a := range *l {
		parts[i] = fmt.Sprintf("$%06x", a)
	}
	return strings.Join(parts, ",")
}

func (l *addressList) Set(s string) error {
	for _, field := range strings.Split(s, ",") {
		a, err := parseAddress(field)
		if err != nil {
			return err
		}
		*l = append(*l, a)
	}
	return nil
}

// parseAddress accepts $ffff, 0xffff or plain hex.
func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

func main() {
	var breaks, watches addressList
	romPath := flag.String("rom", "", "ROM image (may also be given as the first argument)")
	ramKiB := flag.Uint("ram", macemu.DefaultRAMSize/1024, "RAM size in KiB (128 or 512)")
	debugConsole := flag.Bool("debug", false, "stop at traps and prompt on the terminal")
	step := flag.Bool("step", false, "single-step from the first instruction (implies -debug)")
	scale := flag.Int("scale", 1, "window scale factor")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Var(&breaks, "break", "execute breakpoint address, may be repeated")
	flag.Var(&watches, "watch", "read/write watchpoint address, may be repeated")
	flag.Parse()

	if *romPath == "" && flag.NArg() > 0 {
		*romPath = flag.Arg(0)
	}
	if *romPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] path/to/mac.rom\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Setup our logging level - default to warnings or higher
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	if *verbose || os.Getenv("DEBUG") != "" {
		lvl.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))

	rom, err := macemu.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg := macemu.Config{
		RAMSize: uint32(*ramKiB) * 1024,
		Logger:  logger,
	}
	if *debugConsole || *step || len(breaks) > 0 || len(watches) > 0 {
		cfg.Sink = macemu.NewConsole(os.Stdin, os.Stdout, logger)
	}

	m, err := macemu.New(rom, cfg)
	if err != nil {
		log.Fatalf("failed to create machine: %v", err)
	}
	for _, a := range breaks {
		m.AddBreakpoint(macemu.Breakpoint{Address: a, OnExecute: true, Halt: true})
	}
	for _, a := range watches {
		m.AddBreakpoint(macemu.Breakpoint{Address: a, OnRead: true, OnWrite: true, Halt: true})
	}
	if *step {
		m.Bus().ArmSingleStep()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := display.New(m, *scale, logger).Run(ctx); err != nil {
		log.Fatalf("emulation stopped: %v", err)
	}
}
