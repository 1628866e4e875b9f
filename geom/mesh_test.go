package geom

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestBoxMesh(t *testing.T) {
	mesh := Box(NewVector3(4, 6, 3), "brick")
	if len(mesh) != 12 {
		t.Fatalf("expected 12 triangles, got %d", len(mesh))
	}

	var area float64
	for i, tri := range mesh {
		if tri.Material != "brick" {
			t.Fatalf("triangle %d material %q, want brick", i, tri.Material)
		}
		area += float64(tri.Area())
		for _, v := range [3]Vector3{tri.V0, tri.V1, tri.V2} {
			if math.Abs(float64(v.X)) > 2 || math.Abs(float64(v.Y)) > 3 || math.Abs(float64(v.Z)) > 1.5 {
				t.Fatalf("triangle %d vertex %+v outside half extents", i, v)
			}
		}
	}

	// Surface area of a 4x6x3 box.
	want := 2.0 * (4*6 + 4*3 + 6*3)
	if math.Abs(area-want) > 1e-3 {
		t.Fatalf("surface area %f, want %f", area, want)
	}
}

func TestLoadOBJ(t *testing.T) {
	content := `# comment
v 0 0 0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
v 1.0 1.0 0.0
f 1 2 3
f 2/1 4/2/3 -1
`
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := LoadOBJ(path, "plaster")
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(mesh))
	}
	if mesh[0].V1 != (Vector3{1, 0, 0}) {
		t.Fatalf("first face second vertex: got %+v", mesh[0].V1)
	}
	// The negative index -1 refers to the last vertex.
	if mesh[1].V2 != (Vector3{1, 1, 0}) {
		t.Fatalf("negative index resolution: got %+v", mesh[1].V2)
	}
	if mesh[0].Material != "plaster" || mesh[1].Material != "plaster" {
		t.Fatalf("materials: %q %q", mesh[0].Material, mesh[1].Material)
	}
}

func TestLoadOBJErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"face index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"bad coordinate", "v 0 zero 0\n"},
		{"short vertex record", "v 1 2\n"},
		{"bad face index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a b c\n"},
	}
	dir := t.TempDir()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.obj")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOBJ(path, "concrete"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "nope.obj"), "concrete"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
