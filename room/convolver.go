package room

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	algofft "github.com/cwbudde/algo-fft"
)

// Direct computes the time-domain convolution of signal with ir. The result
// has len(signal)+len(ir)-1 samples. This is the reference behavior the FFT
// path must match within rounding.
func Direct(signal, ir []float32) []float32 {
	if len(signal) == 0 || len(ir) == 0 {
		return nil
	}
	out := make([]float32, len(signal)+len(ir)-1)
	for i, s := range signal {
		for j, h := range ir {
			out[i+j] += s * h
		}
	}
	return out
}

// fftThreshold is the product of input lengths below which the direct form
// is cheaper than setting up FFT plans.
const fftThreshold = 1 << 14

// Convolve returns the full convolution of signal with ir, using FFT
// convolution for anything beyond trivially small inputs.
func Convolve(signal, ir []float32) []float32 {
	if len(signal) == 0 || len(ir) == 0 {
		return nil
	}
	if len(signal)*len(ir) <= fftThreshold {
		return Direct(signal, ir)
	}
	out := make([]float32, len(signal)+len(ir)-1)
	if err := algofft.ConvolveReal(out, signal, ir); err != nil {
		return Direct(signal, ir)
	}
	return out
}

// StreamConvolver convolves audio against a fixed impulse response in
// fixed-size blocks using partitioned overlap-add, for callers feeding audio
// incrementally instead of all at once.
type StreamConvolver struct {
	partSize int
	ola      *dspconv.StreamingOverlapAddT[float32, complex64]
	out      []float32
}

// NewStreamConvolver prepares a streaming convolver for ir with the given
// block size.
func NewStreamConvolver(ir []float32, partSize int) (*StreamConvolver, error) {
	if len(ir) == 0 {
		return nil, fmt.Errorf("empty impulse response")
	}
	if partSize < 1 {
		return nil, fmt.Errorf("part size must be >= 1: %d", partSize)
	}
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, partSize)
	if err != nil {
		return nil, err
	}
	return &StreamConvolver{
		partSize: partSize,
		ola:      ola,
		out:      make([]float32, partSize),
	}, nil
}

// PartSize returns the processing block size.
func (c *StreamConvolver) PartSize() int {
	return c.partSize
}

// ProcessBlock convolves one block of at most PartSize samples and returns
// the corresponding output samples. Shorter blocks are zero-padded; the
// convolution tail keeps flowing into subsequent calls.
func (c *StreamConvolver) ProcessBlock(block []float32) ([]float32, error) {
	if len(block) > c.partSize {
		return nil, fmt.Errorf("block length %d exceeds part size %d", len(block), c.partSize)
	}
	in := block
	if len(block) < c.partSize {
		padded := make([]float32, c.partSize)
		copy(padded, block)
		in = padded
	}
	if err := c.ola.ProcessBlockTo(c.out, in); err != nil {
		return nil, err
	}
	return c.out[:len(block)], nil
}

// Reset clears overlap history.
func (c *StreamConvolver) Reset() {
	c.ola.Reset()
}
