// Package material holds acoustic material and medium profiles keyed by name.
package material

import (
	"sort"
	"sync"
)

// NumBands is the number of octave bands carried per profile.
const NumBands = 6

// BandFrequencies lists the octave-band center frequencies in Hz, aligned
// with every 6-entry coefficient array in this module.
var BandFrequencies = [NumBands]float64{125, 250, 500, 1000, 2000, 4000}

// Profile describes the acoustic behavior of one surface material. The two
// coefficient arrays are ordered by BandFrequencies. Values are taken as-is;
// out-of-range coefficients propagate into the attenuation math unchecked.
type Profile struct {
	Name       string
	Absorption [NumBands]float32 // fraction of energy absorbed per band
	Reflection [NumBands]float32 // fraction of energy reflected per band
	Diffusion  float32           // 0 = specular, 1 = diffuse
	Density    float32           // kg/m³
	Speed      float32           // speed of sound in the material, m/s
	Impedance  float32           // Rayl
}

// DefaultName is the fallback material resolved for unknown names.
const DefaultName = "concrete"

// Registry maps material names to profiles. Lookups of unknown names resolve
// to the concrete profile rather than failing. A Registry is safe for
// concurrent reads once populated.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns a registry pre-populated with the built-in materials.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(builtins))}
	for name, p := range builtins {
		r.profiles[name] = p
	}
	return r
}

// Register adds or replaces a profile under its lowercase name.
func (r *Registry) Register(p Profile) {
	r.profiles[keyOf(p.Name)] = p
}

// Get resolves a material by name, falling back to concrete for unknown
// names.
func (r *Registry) Get(name string) Profile {
	if p, ok := r.profiles[keyOf(name)]; ok {
		return p
	}
	return r.profiles[DefaultName]
}

// Names returns the registered material names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func keyOf(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared process-wide registry. It is built exactly once
// and must be treated as read-only by callers that share it.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

var builtins = map[string]Profile{
	// Woods
	"oak": {
		Name:       "Oak Wood",
		Absorption: [NumBands]float32{0.15, 0.15, 0.10, 0.10, 0.10, 0.10},
		Reflection: [NumBands]float32{0.85, 0.85, 0.90, 0.90, 0.90, 0.90},
		Diffusion:  0.3,
		Density:    750,
		Speed:      3850,
		Impedance:  2.89e6,
	},
	"pine": {
		Name:       "Pine Wood",
		Absorption: [NumBands]float32{0.10, 0.10, 0.08, 0.08, 0.08, 0.08},
		Reflection: [NumBands]float32{0.90, 0.90, 0.92, 0.92, 0.92, 0.92},
		Diffusion:  0.25,
		Density:    550,
		Speed:      3320,
		Impedance:  1.83e6,
	},
	"maple": {
		Name:       "Maple Wood",
		Absorption: [NumBands]float32{0.12, 0.12, 0.09, 0.09, 0.09, 0.09},
		Reflection: [NumBands]float32{0.88, 0.88, 0.91, 0.91, 0.91, 0.91},
		Diffusion:  0.28,
		Density:    705,
		Speed:      4110,
		Impedance:  2.90e6,
	},

	// Metals
	"steel": {
		Name:       "Steel",
		Absorption: [NumBands]float32{0.05, 0.05, 0.05, 0.05, 0.05, 0.05},
		Reflection: [NumBands]float32{0.95, 0.95, 0.95, 0.95, 0.95, 0.95},
		Diffusion:  0.1,
		Density:    7850,
		Speed:      5960,
		Impedance:  4.68e7,
	},
	"aluminum": {
		Name:       "Aluminum",
		Absorption: [NumBands]float32{0.05, 0.05, 0.05, 0.05, 0.05, 0.05},
		Reflection: [NumBands]float32{0.95, 0.95, 0.95, 0.95, 0.95, 0.95},
		Diffusion:  0.08,
		Density:    2700,
		Speed:      6420,
		Impedance:  1.73e7,
	},
	"copper": {
		Name:       "Copper",
		Absorption: [NumBands]float32{0.04, 0.04, 0.04, 0.04, 0.04, 0.04},
		Reflection: [NumBands]float32{0.96, 0.96, 0.96, 0.96, 0.96, 0.96},
		Diffusion:  0.12,
		Density:    8960,
		Speed:      4760,
		Impedance:  4.26e7,
	},

	// Building materials
	"concrete": {
		Name:       "Concrete",
		Absorption: [NumBands]float32{0.01, 0.01, 0.02, 0.02, 0.03, 0.04},
		Reflection: [NumBands]float32{0.99, 0.99, 0.98, 0.98, 0.97, 0.96},
		Diffusion:  0.15,
		Density:    2400,
		Speed:      3200,
		Impedance:  7.68e6,
	},
	"brick": {
		Name:       "Brick",
		Absorption: [NumBands]float32{0.03, 0.03, 0.03, 0.04, 0.05, 0.07},
		Reflection: [NumBands]float32{0.97, 0.97, 0.97, 0.96, 0.95, 0.93},
		Diffusion:  0.4,
		Density:    1920,
		Speed:      3650,
		Impedance:  7.01e6,
	},
	"plaster": {
		Name:       "Plaster",
		Absorption: [NumBands]float32{0.02, 0.02, 0.03, 0.04, 0.05, 0.05},
		Reflection: [NumBands]float32{0.98, 0.98, 0.97, 0.96, 0.95, 0.95},
		Diffusion:  0.2,
		Density:    1200,
		Speed:      2000,
		Impedance:  2.40e6,
	},
	"glass": {
		Name:       "Glass",
		Absorption: [NumBands]float32{0.18, 0.06, 0.04, 0.03, 0.02, 0.02},
		Reflection: [NumBands]float32{0.82, 0.94, 0.96, 0.97, 0.98, 0.98},
		Diffusion:  0.05,
		Density:    2500,
		Speed:      5640,
		Impedance:  1.41e7,
	},

	// Soft materials
	"carpet": {
		Name:       "Carpet",
		Absorption: [NumBands]float32{0.08, 0.24, 0.57, 0.69, 0.71, 0.73},
		Reflection: [NumBands]float32{0.92, 0.76, 0.43, 0.31, 0.29, 0.27},
		Diffusion:  0.8,
		Density:    200,
		Speed:      100,
		Impedance:  2.00e4,
	},
	"curtain": {
		Name:       "Curtain (Heavy)",
		Absorption: [NumBands]float32{0.14, 0.35, 0.55, 0.72, 0.70, 0.65},
		Reflection: [NumBands]float32{0.86, 0.65, 0.45, 0.28, 0.30, 0.35},
		Diffusion:  0.9,
		Density:    300,
		Speed:      80,
		Impedance:  2.40e4,
	},
}
