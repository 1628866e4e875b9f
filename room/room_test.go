package room

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-room/fx"
	"github.com/cwbudde/algo-room/geom"
	"github.com/cwbudde/algo-room/trace"
)

// floorScene is a rectangular floor in the z=0 plane, x in [-5,5],
// y in [-3,3], with source and listener hovering above it.
func floorScene() ([]geom.Triangle, geom.Vector3, geom.Vector3) {
	mesh := []geom.Triangle{
		geom.NewTriangle(
			geom.NewVector3(-5, -3, 0),
			geom.NewVector3(5, -3, 0),
			geom.NewVector3(5, 3, 0),
			"concrete",
		),
		geom.NewTriangle(
			geom.NewVector3(-5, -3, 0),
			geom.NewVector3(5, 3, 0),
			geom.NewVector3(-5, 3, 0),
			"concrete",
		),
	}
	return mesh, geom.NewVector3(0, 0, 1.5), geom.NewVector3(3, 2, 1.5)
}

func TestSimulateEndToEnd(t *testing.T) {
	mesh, source, listener := floorScene()
	sim, err := NewSimulator(mesh, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	records := sim.TracePaths(source, listener)
	if len(records) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(records))
	}
	if records[0].Order != 0 || records[0].TriangleIndex != trace.DirectPath {
		t.Fatalf("first path is not direct: %+v", records[0])
	}

	ir := sim.ImpulseResponse(source, listener)
	if len(ir) != 88200 {
		t.Fatalf("IR length %d, want 88200", len(ir))
	}

	// One non-zero region per arrival: direct plus two floor reflections.
	regions := 0
	inRegion := false
	for _, v := range ir {
		if v != 0 && !inRegion {
			regions++
			inRegion = true
		} else if v == 0 {
			inRegion = false
		}
	}
	if regions < 3 {
		t.Fatalf("IR has %d non-zero regions, want at least 3", regions)
	}

	// One second of a 440 Hz sine.
	input := make([]float32, 44100)
	for i := range input {
		input[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
	}
	out := sim.Simulate(source, input, listener)
	if len(out) != 44100+88200-1 {
		t.Fatalf("output length %d, want %d", len(out), 44100+88200-1)
	}

	var peak float32
	for _, v := range out {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}
	if math.Abs(float64(peak-NormalizePeak)) > 1e-4 {
		t.Fatalf("output peak %f, want %f", peak, NormalizePeak)
	}
}

func TestSimulateSilentInputStaysSilent(t *testing.T) {
	mesh, source, listener := floorScene()
	sim, err := NewSimulator(mesh, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	out := sim.Simulate(source, make([]float32, 1000), listener)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d is %f, expected silence", i, v)
		}
	}
}

func TestSimulatorOwnsMeshCopy(t *testing.T) {
	mesh, source, listener := floorScene()
	sim, err := NewSimulator(mesh, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	before := sim.TracePaths(source, listener)
	mesh[0].Material = "carpet"
	mesh[1].Material = "carpet"
	after := sim.TracePaths(source, listener)

	if len(before) != len(after) {
		t.Fatalf("path count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Attenuation != after[i].Attenuation {
			t.Fatalf("caller mutation leaked into simulator at path %d", i)
		}
	}
}

func TestSetMaxReflections(t *testing.T) {
	mesh, source, listener := floorScene()
	sim, err := NewSimulator(mesh, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := sim.SetMaxReflections(0); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetMaxReflections(-1); err == nil {
		t.Fatal("expected error for negative reflection limit")
	}
	// The failed call must leave the simulator working.
	if got := sim.TracePaths(source, listener); len(got) != 3 {
		t.Fatalf("paths after failed update: %d, want 3", len(got))
	}
}

func TestNewSimulatorRejectsLowSampleRate(t *testing.T) {
	mesh, _, _ := floorScene()
	cfg := DefaultConfig()
	cfg.SampleRate = 4000
	if _, err := NewSimulator(mesh, cfg); err == nil {
		t.Fatal("expected error for 4 kHz sample rate")
	}
}

func TestSimulatorAppliesFXChain(t *testing.T) {
	mesh, source, listener := floorScene()

	cfg := DefaultConfig()
	plain, err := NewSimulator(mesh, cfg)
	if err != nil {
		t.Fatal(err)
	}

	chain := fx.NewChain()
	chain.Add(func(a []float32) []float32 {
		out := make([]float32, len(a))
		for i, v := range a {
			out[i] = v * 0.5
		}
		return out
	})
	cfg.FX = chain
	withFX, err := NewSimulator(mesh, cfg)
	if err != nil {
		t.Fatal(err)
	}

	base := plain.ImpulseResponse(source, listener)
	scaled := withFX.ImpulseResponse(source, listener)
	for i := range base {
		if math.Abs(float64(scaled[i]-0.5*base[i])) > 1e-6 {
			t.Fatalf("sample %d: got %f, want %f", i, scaled[i], 0.5*base[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	buf := []float32{0.1, -0.45, 0.3}
	normalize(buf, 0.9)
	if math.Abs(float64(buf[1]+0.9)) > 1e-6 {
		t.Fatalf("peak sample %f, want -0.9", buf[1])
	}
	if math.Abs(float64(buf[0]-0.2)) > 1e-6 {
		t.Fatalf("sample 0 %f, want 0.2", buf[0])
	}

	silent := make([]float32, 8)
	normalize(silent, 0.9)
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("silent buffer scaled at %d: %f", i, v)
		}
	}
}
