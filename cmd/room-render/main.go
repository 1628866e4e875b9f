package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-room/fx"
	"github.com/cwbudde/algo-room/geom"
	"github.com/cwbudde/algo-room/internal/wavio"
	"github.com/cwbudde/algo-room/preset"
	"github.com/cwbudde/algo-room/room"
)

func main() {
	scenePath := flag.String("scene", "assets/scenes/default.json", "Scene preset JSON path")
	inputPath := flag.String("input", "", "Dry input WAV path (required)")
	outputPath := flag.String("output", "out/rendered.wav", "Wet output WAV path")
	sourceFlag := flag.String("source", "", "Source position override as x,y,z")
	listenerFlag := flag.String("listener", "", "Listener position override as x,y,z")
	maxReflections := flag.Int("max-reflections", -1, "Reflection order limit override (-1 keeps the scene value)")
	fxLowpass := flag.Float64("fx-lowpass", 0, "IR lowpass cutoff in Hz (0 disables)")
	fxHighpass := flag.Float64("fx-highpass", 0, "IR highpass cutoff in Hz (0 disables)")
	fxDelayMS := flag.Float64("fx-delay", 0, "IR echo delay in ms (0 disables)")
	fxFeedback := flag.Float64("fx-feedback", 0.3, "Echo tap level for -fx-delay")
	flag.Parse()

	if *inputPath == "" {
		die("input WAV path is required")
	}

	scene, err := preset.LoadJSON(*scenePath)
	if err != nil {
		die("failed to load scene: %v", err)
	}

	source := scene.Source
	if *sourceFlag != "" {
		source, err = parseVec(*sourceFlag)
		if err != nil {
			die("bad -source: %v", err)
		}
	}
	listener := scene.Listener
	if *listenerFlag != "" {
		listener, err = parseVec(*listenerFlag)
		if err != nil {
			die("bad -listener: %v", err)
		}
	}

	cfg := scene.Config
	chain := fx.NewChain()
	if *fxLowpass > 0 {
		chain.Add(fx.Lowpass(float32(*fxLowpass), cfg.SampleRate))
	}
	if *fxHighpass > 0 {
		chain.Add(fx.Highpass(float32(*fxHighpass), cfg.SampleRate))
	}
	if *fxDelayMS > 0 {
		chain.Add(fx.Delay(float32(*fxDelayMS), cfg.SampleRate, float32(*fxFeedback)))
	}
	if chain.Len() > 0 {
		cfg.FX = chain
	}

	sim, err := room.NewSimulator(scene.Mesh, cfg)
	if err != nil {
		die("failed to build simulator: %v", err)
	}
	if *maxReflections >= 0 {
		if err := sim.SetMaxReflections(*maxReflections); err != nil {
			die("failed to set reflection limit: %v", err)
		}
	}

	dry, inRate, err := wavio.ReadMono(*inputPath)
	if err != nil {
		die("failed to read input: %v", err)
	}
	dry, err = wavio.ResampleIfNeeded(dry, inRate, cfg.SampleRate)
	if err != nil {
		die("failed to resample input: %v", err)
	}

	wet := sim.Simulate(source, wavio.ToFloat32(dry), listener)
	if err := wavio.WriteMono(*outputPath, wet, cfg.SampleRate); err != nil {
		die("wav write error: %v", err)
	}

	peak, rms := stats(wet)
	fmt.Printf("Wrote %s\n", *outputPath)
	fmt.Printf("Triangles: %d, SampleRate: %d Hz\n", len(sim.Mesh()), cfg.SampleRate)
	fmt.Printf("Input: %d samples, Output: %d samples (%.3f s)\n",
		len(dry), len(wet), float64(len(wet))/float64(cfg.SampleRate))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func parseVec(s string) (geom.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Vector3{}, fmt.Errorf("need x,y,z, got %q", s)
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return geom.Vector3{}, fmt.Errorf("bad component %q", p)
		}
		c[i] = v
	}
	return geom.NewVector3(float32(c[0]), float32(c[1]), float32(c[2])), nil
}

func stats(samples []float32) (peak float64, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		if a := math.Abs(v); a > peak {
			peak = a
		}
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "room-render: "+format+"\n", args...)
	os.Exit(1)
}
