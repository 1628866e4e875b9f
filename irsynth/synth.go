// Package irsynth converts traced path records into a sampled room impulse
// response.
package irsynth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-room/dsp"
	"github.com/cwbudde/algo-room/material"
	"github.com/cwbudde/algo-room/trace"
)

// pulseLen is the length of the decaying pulse placed per arrival, in
// samples (shorter when the buffer ends first).
const pulseLen = 64

// pulseTau is the pulse decay time constant in seconds.
const pulseTau = 0.01

// Config controls impulse response synthesis.
type Config struct {
	SampleRate   int
	DurationS    float64
	SpeedOfSound float64 // m/s

	// PerBand enables the octave-band filterbank: one IR per band using that
	// band's attenuation, bandpass filtered and summed. When false (the
	// reference behavior) each path's six band gains collapse to their mean
	// before synthesis.
	PerBand bool
}

func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		DurationS:    2.0,
		SpeedOfSound: 343.0,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.SpeedOfSound <= 0 {
		return fmt.Errorf("speed of sound must be > 0")
	}
	return nil
}

// Synthesizer renders impulse responses at a fixed sample rate.
type Synthesizer struct {
	cfg      Config
	envelope [pulseLen]float32
}

func New(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Synthesizer{cfg: cfg}
	// The pulse envelope depends only on the sample rate.
	tau := float64(cfg.SampleRate) * pulseTau
	for i := range s.envelope {
		s.envelope[i] = float32(math.Exp(-float64(i) / tau))
	}
	return s, nil
}

func (s *Synthesizer) SampleRate() int {
	return s.cfg.SampleRate
}

// Generate synthesizes the impulse response for the given path records over
// the configured duration. Paths arriving after the buffer end contribute
// nothing. The result is not normalized.
func (s *Synthesizer) Generate(records []trace.PathRecord) []float32 {
	n := int(s.cfg.DurationS * float64(s.cfg.SampleRate))
	if n < 1 {
		n = 1
	}
	if s.cfg.PerBand {
		return s.generatePerBand(records, n)
	}

	ir := make([]float32, n)
	for _, rec := range records {
		delay := s.delaySamples(rec.Length)
		if delay >= n {
			continue
		}
		var sum float32
		for _, a := range rec.Attenuation {
			sum += a
		}
		amp := sum / material.NumBands
		s.addPulse(ir, delay, amp)
	}
	return ir
}

// generatePerBand builds one IR per octave band and recombines them through
// the band filters. Two cascaded biquad passes stand in for the original
// fourth-order sections.
func (s *Synthesizer) generatePerBand(records []trace.PathRecord, n int) []float32 {
	rate := float32(s.cfg.SampleRate)
	out := make([]float32, n)
	band := make([]float32, n)

	for i, f := range material.BandFrequencies {
		for j := range band {
			band[j] = 0
		}
		for _, rec := range records {
			delay := s.delaySamples(rec.Length)
			if delay >= n {
				continue
			}
			s.addPulse(band, delay, rec.Attenuation[i])
		}

		for pass := 0; pass < 2; pass++ {
			var bq *dsp.Biquad
			switch {
			case i == 0:
				bq = dsp.NewLowpass(float32(f)*1.5, rate, 0.7071)
			case i == material.NumBands-1:
				bq = dsp.NewHighpass(float32(f)*0.67, rate, 0.7071)
			default:
				bq = dsp.NewBandpass(float32(f)*0.67, float32(f)*1.5, rate)
			}
			bq.ProcessBuffer(band)
		}

		for j, v := range band {
			out[j] += v
		}
	}
	return out
}

func (s *Synthesizer) delaySamples(pathLength float32) int {
	delaySec := float64(pathLength) / s.cfg.SpeedOfSound
	return int(delaySec * float64(s.cfg.SampleRate))
}

// addPulse adds a decaying pulse into ir starting at delay, truncated at the
// buffer end. Overlapping pulses sum.
func (s *Synthesizer) addPulse(ir []float32, delay int, amp float32) {
	count := pulseLen
	if rest := len(ir) - delay; rest < count {
		count = rest
	}
	for i := 0; i < count; i++ {
		ir[delay+i] += amp * s.envelope[i]
	}
}
