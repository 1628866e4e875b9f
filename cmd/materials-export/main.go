package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-room/material"
)

func main() {
	output := flag.String("output", "materials.json", "Output JSON path")
	list := flag.Bool("list", false, "Print the registry instead of writing a file")
	flag.Parse()

	registry := material.Default()

	if *list {
		for _, name := range registry.Names() {
			p := registry.Get(name)
			fmt.Printf("%-10s %-16s absorption @ 1kHz = %.2f, diffusion = %.2f\n",
				name, p.Name, p.Absorption[3], p.Diffusion)
		}
		return
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			die("failed to create output directory: %v", err)
		}
	}
	if err := registry.ExportJSON(*output); err != nil {
		die("export failed: %v", err)
	}
	fmt.Printf("Material database exported to %s (%d materials)\n", *output, len(registry.Names()))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "materials-export: "+format+"\n", args...)
	os.Exit(1)
}
