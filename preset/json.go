// Package preset loads room scene descriptions from JSON files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-room/geom"
	"github.com/cwbudde/algo-room/material"
	"github.com/cwbudde/algo-room/room"
)

// File is the JSON schema for scene presets. Pointer fields are optional
// overrides on top of the room defaults.
type File struct {
	Mesh           MeshSpec                   `json:"mesh"`
	Medium         string                     `json:"medium"`
	Materials      map[string]MaterialSetting `json:"materials"`
	MaterialsFile  string                     `json:"materials_file"`
	Source         *[3]float32                `json:"source"`
	Listener       *[3]float32                `json:"listener"`
	SampleRate     *int                       `json:"sample_rate"`
	MaxReflections *int                       `json:"max_reflections"`
	MaxDistance    *float32                   `json:"max_distance"`
	IRDurationS    *float64                   `json:"ir_duration_seconds"`
	PerBand        *bool                      `json:"per_band_ir"`
}

// MeshSpec selects the room geometry: either an OBJ file or a box room.
// Exactly one of OBJPath and Box must be set.
type MeshSpec struct {
	OBJPath  string      `json:"obj_path,omitempty"`
	Box      *[3]float32 `json:"box,omitempty"`
	Material string      `json:"material"`
}

// MaterialSetting is a partial material override entry.
type MaterialSetting struct {
	Absorption []float32 `json:"absorption_coeff,omitempty"`
	Reflection []float32 `json:"reflection_coeff,omitempty"`
	Diffusion  *float32  `json:"diffusion_coeff,omitempty"`
	Density    *float32  `json:"density,omitempty"`
	Speed      *float32  `json:"speed_of_sound,omitempty"`
	Impedance  *float32  `json:"impedance,omitempty"`
}

// Scene is a fully resolved simulation setup.
type Scene struct {
	Mesh     []geom.Triangle
	Source   geom.Vector3
	Listener geom.Vector3
	Config   room.Config
}

// LoadJSON loads a scene preset and resolves it against the room defaults.
// Relative mesh and material file paths are resolved against the preset's
// directory.
func LoadJSON(path string) (*Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return Resolve(&f, filepath.Dir(path))
}

// Resolve turns a parsed preset file into a Scene. baseDir anchors relative
// file references.
func Resolve(f *File, baseDir string) (*Scene, error) {
	if f == nil {
		return nil, fmt.Errorf("nil preset file")
	}

	cfg := room.DefaultConfig()
	if f.Medium != "" {
		cfg.Medium = material.GetMedium(f.Medium)
	}
	if f.SampleRate != nil {
		if *f.SampleRate < 8000 {
			return nil, fmt.Errorf("sample_rate too low: %d", *f.SampleRate)
		}
		cfg.SampleRate = *f.SampleRate
	}
	if f.MaxReflections != nil {
		if *f.MaxReflections < 0 {
			return nil, fmt.Errorf("max_reflections must be >= 0")
		}
		cfg.MaxReflections = *f.MaxReflections
	}
	if f.MaxDistance != nil {
		if *f.MaxDistance <= 0 {
			return nil, fmt.Errorf("max_distance must be > 0")
		}
		cfg.MaxDistance = *f.MaxDistance
	}
	if f.IRDurationS != nil {
		if *f.IRDurationS <= 0 {
			return nil, fmt.Errorf("ir_duration_seconds must be > 0")
		}
		cfg.IRDurationS = *f.IRDurationS
	}
	if f.PerBand != nil {
		cfg.PerBand = *f.PerBand
	}

	registry := material.NewRegistry()
	if f.MaterialsFile != "" {
		if err := registry.LoadJSON(resolvePath(baseDir, f.MaterialsFile)); err != nil {
			return nil, err
		}
	}
	for name, setting := range f.Materials {
		p := registry.Get(name)
		p.Name = name
		if err := applyMaterial(&p, name, setting); err != nil {
			return nil, err
		}
		registry.Register(p)
	}
	cfg.Registry = registry

	mesh, err := resolveMesh(f.Mesh, baseDir)
	if err != nil {
		return nil, err
	}

	scene := &Scene{Mesh: mesh, Config: cfg}
	if f.Source != nil {
		scene.Source = geom.NewVector3(f.Source[0], f.Source[1], f.Source[2])
	}
	if f.Listener != nil {
		scene.Listener = geom.NewVector3(f.Listener[0], f.Listener[1], f.Listener[2])
	}
	return scene, nil
}

func resolveMesh(spec MeshSpec, baseDir string) ([]geom.Triangle, error) {
	mat := spec.Material
	if mat == "" {
		mat = material.DefaultName
	}
	switch {
	case spec.OBJPath != "" && spec.Box != nil:
		return nil, fmt.Errorf("mesh: obj_path and box are mutually exclusive")
	case spec.OBJPath != "":
		return geom.LoadOBJ(resolvePath(baseDir, spec.OBJPath), mat)
	case spec.Box != nil:
		size := geom.NewVector3(spec.Box[0], spec.Box[1], spec.Box[2])
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, fmt.Errorf("mesh: box dimensions must be > 0")
		}
		return geom.Box(size, mat), nil
	default:
		return nil, fmt.Errorf("mesh: one of obj_path or box is required")
	}
}

func applyMaterial(p *material.Profile, name string, s MaterialSetting) error {
	if s.Absorption != nil {
		if len(s.Absorption) != material.NumBands {
			return fmt.Errorf("material %q: absorption_coeff needs %d entries", name, material.NumBands)
		}
		copy(p.Absorption[:], s.Absorption)
	}
	if s.Reflection != nil {
		if len(s.Reflection) != material.NumBands {
			return fmt.Errorf("material %q: reflection_coeff needs %d entries", name, material.NumBands)
		}
		copy(p.Reflection[:], s.Reflection)
	}
	if s.Diffusion != nil {
		p.Diffusion = *s.Diffusion
	}
	if s.Density != nil {
		p.Density = *s.Density
	}
	if s.Speed != nil {
		p.Speed = *s.Speed
	}
	if s.Impedance != nil {
		p.Impedance = *s.Impedance
	}
	return nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}
