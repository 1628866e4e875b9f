package material

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExportLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.json")

	src := NewRegistry()
	src.Register(Profile{
		Name:       "Acoustic Foam",
		Absorption: [NumBands]float32{0.3, 0.5, 0.8, 0.9, 0.95, 0.95},
		Reflection: [NumBands]float32{0.7, 0.5, 0.2, 0.1, 0.05, 0.05},
		Diffusion:  0.6,
		Density:    30,
		Speed:      200,
		Impedance:  6000,
	})
	if err := src.ExportJSON(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := NewRegistry()
	if err := dst.LoadJSON(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := dst.Get("acoustic foam")
	if got.Name != "Acoustic Foam" {
		t.Fatalf("name: got %q", got.Name)
	}
	if got.Absorption[2] != 0.8 || got.Reflection[5] != 0.05 || got.Diffusion != 0.6 {
		t.Fatalf("coefficients lost in round trip: %+v", got)
	}
}

func TestLoadJSONFillsMissingDisplayName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.json")
	content := `{
  "felt": {
    "absorption_coeff": [0.1, 0.2, 0.3, 0.4, 0.5, 0.6],
    "reflection_coeff": [0.9, 0.8, 0.7, 0.6, 0.5, 0.4],
    "diffusion_coeff": 0.7
  }
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadJSON(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := r.Get("felt"); got.Name != "felt" {
		t.Fatalf("expected key as display name, got %q", got.Name)
	}
}

func TestLoadJSONRejectsWrongBandCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.json")
	content := `{
  "broken": {
    "name": "Broken",
    "absorption_coeff": [0.1, 0.2],
    "reflection_coeff": [0.9, 0.8]
  }
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewRegistry().LoadJSON(path); err == nil {
		t.Fatal("expected error for wrong band count")
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	if err := NewRegistry().LoadJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
