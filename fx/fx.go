// Package fx provides an effect chain applied to impulse responses before
// convolution.
package fx

import (
	"math"

	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-room/dsp"
)

// Processor transforms an audio buffer and returns the result. Processors
// must not modify their input.
type Processor func([]float32) []float32

// Chain applies processors in registration order.
type Chain struct {
	processors []Processor
}

func NewChain() *Chain {
	return &Chain{}
}

// Add appends a processor to the chain.
func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
}

// Clear removes all processors.
func (c *Chain) Clear() {
	c.processors = c.processors[:0]
}

// Len returns the number of registered processors.
func (c *Chain) Len() int {
	return len(c.processors)
}

// Process runs audio through the chain. The input buffer is left untouched.
func (c *Chain) Process(audio []float32) []float32 {
	out := make([]float32, len(audio))
	copy(out, audio)
	for _, p := range c.processors {
		out = p(out)
	}
	return out
}

// Lowpass returns a 2nd-order lowpass processor. Filter state is fresh on
// every invocation so repeated Process calls start clean.
func Lowpass(cutoff float32, sampleRate int) Processor {
	return func(audio []float32) []float32 {
		out := make([]float32, len(audio))
		bq := dsp.NewLowpass(cutoff, float32(sampleRate), 0.7071)
		for i, v := range audio {
			out[i] = bq.Process(v)
		}
		return out
	}
}

// Highpass returns a 2nd-order highpass processor.
func Highpass(cutoff float32, sampleRate int) Processor {
	return func(audio []float32) []float32 {
		out := make([]float32, len(audio))
		bq := dsp.NewHighpass(cutoff, float32(sampleRate), 0.7071)
		for i, v := range audio {
			out[i] = bq.Process(v)
		}
		return out
	}
}

// Delay returns a single-tap echo: the dry signal plus a copy delayed by
// delayMS scaled by feedback.
func Delay(delayMS float32, sampleRate int, feedback float32) Processor {
	return func(audio []float32) []float32 {
		out := make([]float32, len(audio))
		copy(out, audio)
		delay := int(delayMS * float32(sampleRate) / 1000)
		if delay <= 0 || delay >= len(audio) {
			return out
		}
		for i := delay; i < len(audio); i++ {
			out[i] += audio[i-delay] * feedback
		}
		return out
	}
}

// Chorus returns a modulated-delay chorus. The wet tap rides a sine LFO
// around a center delay of depth seconds.
func Chorus(rateHz, depth float32, sampleRate int) Processor {
	return func(audio []float32) []float32 {
		out := make([]float32, len(audio))
		center := float64(depth) * float64(sampleRate)
		size := int(2*center) + 4
		dl := dsp.NewDelayLine(size)
		w := 2 * math.Pi * float64(rateHz) / float64(sampleRate)
		for i, v := range audio {
			dl.Write(dsp.FlushDenormals(v))
			d := center * (1 + math.Sin(w*float64(i)))
			out[i] = 0.7*v + 0.3*dl.ReadFractional(float32(d))
		}
		return out
	}
}

// SoftClip returns a tanh-shaped saturator with the given input drive,
// normalized so the output stays within ±1.
func SoftClip(drive float32) Processor {
	return func(audio []float32) []float32 {
		out := make([]float32, len(audio))
		for i, v := range audio {
			out[i] = fastTanh(drive * v)
		}
		return out
	}
}

func fastTanh(x float32) float32 {
	if x > 5 {
		return 1
	}
	if x < -5 {
		return -1
	}
	e := approx.FastExp(2 * x)
	return (e - 1) / (e + 1)
}
