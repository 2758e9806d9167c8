// Command gintendo runs an iNES ROM file through the emulator.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/bdwalton/gintendo/console"
	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")
	scale   = flag.Int("scale", 2, "Window scale factor.")
	trace   = flag.Bool("trace", false, "Log one line per executed instruction to stdout.")
)

func main() {
	flag.Parse()

	rom, err := nesrom.New(*romFile)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		log.Fatalf("Couldn't Get() mapper: %v", err)
	}

	gintendo := console.New(m)
	if *trace {
		gintendo.TraceTo(os.Stdout)
	}
	w, h := gintendo.Resolution()
	ebiten.SetWindowSize(w*(*scale), h*(*scale))

	if err := ebiten.RunGame(gintendo); err != nil {
		log.Fatal(err)
	}
}
