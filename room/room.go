// Package room orchestrates the acoustic simulation pipeline: path tracing,
// impulse response synthesis and convolution.
package room

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-room/fx"
	"github.com/cwbudde/algo-room/geom"
	"github.com/cwbudde/algo-room/irsynth"
	"github.com/cwbudde/algo-room/material"
	"github.com/cwbudde/algo-room/trace"
)

// NormalizePeak is the target peak absolute amplitude of simulation output.
const NormalizePeak = 0.9

// Config collects the simulation parameters.
type Config struct {
	SampleRate     int
	Medium         material.Medium
	MaxReflections int
	MaxDistance    float32
	IRDurationS    float64
	PerBand        bool

	// Registry resolves triangle material names; nil uses the shared
	// default registry.
	Registry *material.Registry

	// FX is applied to the impulse response before convolution when set.
	FX *fx.Chain
}

func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		Medium:         material.Air(),
		MaxReflections: 10,
		MaxDistance:    100.0,
		IRDurationS:    2.0,
	}
}

func (c *Config) traceConfig() trace.Config {
	return trace.Config{
		Medium:         c.Medium,
		MaxReflections: c.MaxReflections,
		MaxDistance:    c.MaxDistance,
	}
}

func (c *Config) synthConfig() irsynth.Config {
	return irsynth.Config{
		SampleRate:   c.SampleRate,
		DurationS:    c.IRDurationS,
		SpeedOfSound: float64(c.Medium.Speed),
		PerBand:      c.PerBand,
	}
}

// Simulator runs the full pipeline for one mesh and sample rate. It owns a
// copy of the mesh; callers may reuse or mutate their slice afterwards.
// A Simulator is not safe for concurrent use, but distinct instances are
// independent.
type Simulator struct {
	mesh   []geom.Triangle
	cfg    Config
	tracer *trace.Tracer
	synth  *irsynth.Synthesizer
}

func NewSimulator(mesh []geom.Triangle, cfg Config) (*Simulator, error) {
	if cfg.SampleRate < 8000 {
		return nil, fmt.Errorf("sample rate too low: %d", cfg.SampleRate)
	}
	owned := make([]geom.Triangle, len(mesh))
	copy(owned, mesh)

	tracer, err := trace.NewTracer(owned, cfg.Registry, cfg.traceConfig())
	if err != nil {
		return nil, err
	}
	synth, err := irsynth.New(cfg.synthConfig())
	if err != nil {
		return nil, err
	}
	return &Simulator{mesh: owned, cfg: cfg, tracer: tracer, synth: synth}, nil
}

func (s *Simulator) SampleRate() int {
	return s.cfg.SampleRate
}

// Mesh returns the simulator's own mesh copy.
func (s *Simulator) Mesh() []geom.Triangle {
	return s.mesh
}

// SetMaxReflections rebuilds the path tracer with a new reflection-order
// limit. The mesh copy and sample rate are unaffected.
func (s *Simulator) SetMaxReflections(max int) error {
	cfg := s.cfg
	cfg.MaxReflections = max
	tracer, err := trace.NewTracer(s.mesh, cfg.Registry, cfg.traceConfig())
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.tracer = tracer
	return nil
}

// TracePaths exposes the raw path records for the current mesh.
func (s *Simulator) TracePaths(source, listener geom.Vector3) []trace.PathRecord {
	return s.tracer.TracePaths(source, listener)
}

// ImpulseResponse traces and synthesizes the room impulse response between
// source and listener, with the configured FX chain applied.
func (s *Simulator) ImpulseResponse(source, listener geom.Vector3) []float32 {
	ir := s.synth.Generate(s.tracer.TracePaths(source, listener))
	if s.cfg.FX != nil && s.cfg.FX.Len() > 0 {
		ir = s.cfg.FX.Process(ir)
	}
	return ir
}

// Simulate renders input as heard at listener when emitted at source: trace,
// synthesize the IR, convolve and normalize the peak to 0.9. All-zero
// output is returned unscaled.
func (s *Simulator) Simulate(source geom.Vector3, input []float32, listener geom.Vector3) []float32 {
	ir := s.ImpulseResponse(source, listener)
	out := Convolve(input, ir)
	normalize(out, NormalizePeak)
	return out
}

func normalize(out []float32, peak float32) {
	var maxAbs float32
	for _, v := range out {
		if a := float32(math.Abs(float64(v))); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs <= 0 {
		return
	}
	scale := peak / maxAbs
	for i := range out {
		out[i] *= scale
	}
}
