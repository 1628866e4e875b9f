package material

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileEntry is the JSON schema for one material, matching the materials.json
// layout written by ExportJSON.
type fileEntry struct {
	Name       string    `json:"name"`
	Absorption []float32 `json:"absorption_coeff"`
	Reflection []float32 `json:"reflection_coeff"`
	Diffusion  float32   `json:"diffusion_coeff"`
	Density    float32   `json:"density"`
	Speed      float32   `json:"speed_of_sound"`
	Impedance  float32   `json:"impedance"`
}

// ExportJSON writes every registered material to path as a JSON object keyed
// by material name.
func (r *Registry) ExportJSON(path string) error {
	out := make(map[string]fileEntry, len(r.profiles))
	for key, p := range r.profiles {
		out[key] = fileEntry{
			Name:       p.Name,
			Absorption: p.Absorption[:],
			Reflection: p.Reflection[:],
			Diffusion:  p.Diffusion,
			Density:    p.Density,
			Speed:      p.Speed,
			Impedance:  p.Impedance,
		}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// LoadJSON reads a materials JSON file and registers every entry on top of
// the registry's existing contents.
func (r *Registry) LoadJSON(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var in map[string]fileEntry
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("materials %s: %w", path, err)
	}

	for key, e := range in {
		if len(e.Absorption) != NumBands || len(e.Reflection) != NumBands {
			return fmt.Errorf("materials %s: %q needs %d absorption and reflection coefficients",
				path, key, NumBands)
		}
		p := Profile{
			Name:      e.Name,
			Diffusion: e.Diffusion,
			Density:   e.Density,
			Speed:     e.Speed,
			Impedance: e.Impedance,
		}
		if p.Name == "" {
			p.Name = key
		}
		copy(p.Absorption[:], e.Absorption)
		copy(p.Reflection[:], e.Reflection)
		r.profiles[keyOf(key)] = p
	}
	return nil
}
