// Command mkrom assembles a 68000 source file into a ROM image the emulator
// can boot. The image starts with the initial SSP and a reset PC pointing at
// the first assembled instruction.
//
//	mkrom -o boot.rom testdata/boot.s
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	asm "github.com/jenska/m68kasm"

	"github.com/brand7n/macemu"
)

const defaultStack = 0x1a700

func main() {
	out := flag.String("o", "boot.rom", "output ROM image")
	ssp := flag.Uint("ssp", defaultStack, "initial supervisor stack pointer")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] source.s\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	program, err := asm.AssembleFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to assemble %s: %v", flag.Arg(0), err)
	}

	rom, err := macemu.BuildROM(program, uint32(*ssp))
	if err != nil {
		log.Fatalf("failed to build ROM: %v", err)
	}

	if err := os.WriteFile(*out, rom, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
	fmt.Printf("Wrote %s: %d bytes of code, reset PC $%06x\n", *out, len(program), macemu.ROMBase+8)
}
