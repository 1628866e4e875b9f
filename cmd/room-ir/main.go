package main

import (
	"flag"
	"fmt"
	"os"

	measureir "github.com/cwbudde/algo-dsp/measure/ir"

	"github.com/cwbudde/algo-room/internal/wavio"
	"github.com/cwbudde/algo-room/preset"
	"github.com/cwbudde/algo-room/room"
)

func main() {
	scenePath := flag.String("scene", "assets/scenes/default.json", "Scene preset JSON path")
	outputPath := flag.String("output", "out/room-ir.wav", "Output IR WAV path")
	duration := flag.Float64("duration", 0, "IR duration override in seconds (0 keeps the scene value)")
	perBand := flag.Bool("per-band", false, "Force per-band filterbank synthesis")
	analyze := flag.Bool("analyze", true, "Print RT60/EDT/C80/D50 metrics")
	flag.Parse()

	scene, err := preset.LoadJSON(*scenePath)
	if err != nil {
		die("failed to load scene: %v", err)
	}

	cfg := scene.Config
	if *duration > 0 {
		cfg.IRDurationS = *duration
	}
	if *perBand {
		cfg.PerBand = true
	}

	sim, err := room.NewSimulator(scene.Mesh, cfg)
	if err != nil {
		die("failed to build simulator: %v", err)
	}

	records := sim.TracePaths(scene.Source, scene.Listener)
	ir := sim.ImpulseResponse(scene.Source, scene.Listener)

	if err := wavio.WriteMono(*outputPath, ir, cfg.SampleRate); err != nil {
		die("wav write error: %v", err)
	}

	direct := 0
	for _, r := range records {
		if r.Order == 0 {
			direct++
		}
	}
	fmt.Printf("Wrote %s\n", *outputPath)
	fmt.Printf("Triangles: %d, Paths: %d (%d direct, %d reflected)\n",
		len(sim.Mesh()), len(records), direct, len(records)-direct)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n",
		cfg.SampleRate, cfg.IRDurationS, len(ir))

	if *analyze {
		analyzer := measureir.NewAnalyzer(float64(cfg.SampleRate))
		metrics, err := analyzer.Analyze(wavio.ToFloat64(ir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "room-ir: analysis failed: %v\n", err)
			return
		}
		fmt.Printf("RT60: %.3f s, EDT: %.3f s, C80: %.1f dB, D50: %.3f\n",
			metrics.RT60, metrics.EDT, metrics.C80, metrics.D50)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "room-ir: "+format+"\n", args...)
	os.Exit(1)
}
