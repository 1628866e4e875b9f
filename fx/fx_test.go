package fx

import (
	"math"
	"testing"
)

func TestChainOrderAndCopy(t *testing.T) {
	chain := NewChain()
	chain.Add(func(a []float32) []float32 {
		out := make([]float32, len(a))
		for i, v := range a {
			out[i] = v + 1
		}
		return out
	})
	chain.Add(func(a []float32) []float32 {
		out := make([]float32, len(a))
		for i, v := range a {
			out[i] = v * 2
		}
		return out
	})

	in := []float32{1, 2, 3}
	out := chain.Process(in)

	// (x+1)*2, not x*2+1
	want := []float32{4, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d: got %f, want %f", i, out[i], want[i])
		}
	}
	if in[0] != 1 || in[1] != 2 || in[2] != 3 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestChainClearAndLen(t *testing.T) {
	chain := NewChain()
	if chain.Len() != 0 {
		t.Fatalf("empty chain Len=%d", chain.Len())
	}
	chain.Add(SoftClip(1))
	chain.Add(Lowpass(1000, 44100))
	if chain.Len() != 2 {
		t.Fatalf("Len=%d, want 2", chain.Len())
	}
	chain.Clear()
	if chain.Len() != 0 {
		t.Fatalf("Len after Clear=%d", chain.Len())
	}

	in := []float32{0.5, -0.5}
	out := chain.Process(in)
	if out[0] != 0.5 || out[1] != -0.5 {
		t.Fatalf("empty chain altered signal: %v", out)
	}
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	const sr = 44100
	const n = 4096
	lp := Lowpass(500, sr)

	rms := func(freq float64) float64 {
		in := make([]float32, n)
		for i := range in {
			in[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sr))
		}
		out := lp(in)
		var sum float64
		for _, v := range out[n/2:] { // skip the transient
			sum += float64(v) * float64(v)
		}
		return math.Sqrt(sum / (n / 2))
	}

	low := rms(100)
	high := rms(8000)
	if high > low/4 {
		t.Fatalf("8 kHz not attenuated: rms %f vs %f at 100 Hz", high, low)
	}
}

func TestHighpassAttenuatesLowFrequency(t *testing.T) {
	const sr = 44100
	const n = 4096
	hp := Highpass(2000, sr)

	rms := func(freq float64) float64 {
		in := make([]float32, n)
		for i := range in {
			in[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sr))
		}
		out := hp(in)
		var sum float64
		for _, v := range out[n/2:] {
			sum += float64(v) * float64(v)
		}
		return math.Sqrt(sum / (n / 2))
	}

	high := rms(8000)
	low := rms(100)
	if low > high/4 {
		t.Fatalf("100 Hz not attenuated: rms %f vs %f at 8 kHz", low, high)
	}
}

func TestFilterStateIsFreshPerInvocation(t *testing.T) {
	lp := Lowpass(1000, 44100)
	in := make([]float32, 256)
	in[0] = 1
	a := lp(in)
	b := lp(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between invocations: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestDelayAddsScaledEcho(t *testing.T) {
	const sr = 1000
	d := Delay(10, sr, 0.5) // 10 samples at 1 kHz

	in := make([]float32, 32)
	in[0] = 1
	out := d(in)

	if out[0] != 1 {
		t.Fatalf("dry sample: %f", out[0])
	}
	if out[10] != 0.5 {
		t.Fatalf("echo sample: %f, want 0.5", out[10])
	}
	for i := 1; i < 10; i++ {
		if out[i] != 0 {
			t.Fatalf("unexpected signal at %d: %f", i, out[i])
		}
	}
}

func TestDelayLongerThanBufferIsIdentity(t *testing.T) {
	d := Delay(1000, 44100, 0.5)
	in := []float32{1, 0, 0, 0}
	out := d(in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d changed: %f", i, out[i])
		}
	}
}

func TestChorusKeepsSignalBounded(t *testing.T) {
	c := Chorus(1.5, 0.005, 44100)
	in := make([]float32, 2048)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
	}
	out := c(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d", len(out))
	}
	var energy float64
	for i, v := range out {
		if math.Abs(float64(v)) > 1.01 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
		energy += float64(v) * float64(v)
	}
	if energy == 0 {
		t.Fatal("chorus silenced the signal")
	}
}

func TestSoftClip(t *testing.T) {
	sc := SoftClip(1)
	out := sc([]float32{0, 0.1, 3, -3, 100, -100})

	if out[0] != 0 {
		t.Fatalf("zero in, %f out", out[0])
	}
	// Small signals pass nearly linearly.
	if math.Abs(float64(out[1])-math.Tanh(0.1)) > 0.01 {
		t.Fatalf("small signal: %f, want ~%f", out[1], math.Tanh(0.1))
	}
	for i, v := range out {
		if v > 1 || v < -1 {
			t.Fatalf("sample %d outside [-1,1]: %f", i, v)
		}
	}
	if out[4] != 1 || out[5] != -1 {
		t.Fatalf("hard limits: %f %f", out[4], out[5])
	}
}

func TestSoftClipDriveIncreasesSaturation(t *testing.T) {
	gentle := SoftClip(1)([]float32{0.5})[0]
	hard := SoftClip(10)([]float32{0.5})[0]
	if hard <= gentle {
		t.Fatalf("drive 10 (%f) should saturate harder than drive 1 (%f)", hard, gentle)
	}
}
