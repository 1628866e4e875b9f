// Package trace enumerates acoustic propagation paths between a source and
// a listener against a triangle mesh.
//
// The model is deliberately first-order: the direct line-of-sight path plus
// one single-bounce path per triangle, with the bounce point approximated by
// the triangle centroid. Higher reflection orders, diffraction and scattering
// are outside the model.
package trace

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-room/geom"
	"github.com/cwbudde/algo-room/material"
)

// DirectPath is the TriangleIndex sentinel for the direct path record.
const DirectPath = -1

// PathRecord describes one propagation path from source to listener.
type PathRecord struct {
	// Length is the total path length in meters.
	Length float32
	// Point is the reflection point; for the direct path it is the source
	// position itself.
	Point geom.Vector3
	// Order is the number of surface bounces: 0 direct, 1 single bounce.
	Order int
	// Attenuation holds one linear gain per octave band.
	Attenuation [material.NumBands]float32
	// TriangleIndex is the index of the reflecting triangle in the traced
	// mesh, or DirectPath. It is a lookup relation only; the mesh owns the
	// triangle.
	TriangleIndex int
}

// Config controls path tracing.
type Config struct {
	Medium material.Medium
	// MaxReflections bounds the reflection order. Values above 1 are
	// accepted but the tracer never produces paths beyond first order.
	MaxReflections int
	// MaxDistance drops paths whose total length exceeds it, in meters.
	MaxDistance float32
}

func DefaultConfig() Config {
	return Config{
		Medium:         material.Air(),
		MaxReflections: 10,
		MaxDistance:    100.0,
	}
}

func (c *Config) Validate() error {
	if c.Medium.Speed <= 0 {
		return fmt.Errorf("medium speed of sound must be > 0: %f", c.Medium.Speed)
	}
	if c.MaxReflections < 0 {
		return fmt.Errorf("max reflections must be >= 0: %d", c.MaxReflections)
	}
	if c.MaxDistance <= 0 {
		return fmt.Errorf("max distance must be > 0: %f", c.MaxDistance)
	}
	return nil
}

// Tracer traces paths against a fixed mesh. Materials are resolved through
// the injected registry; a nil registry falls back to the shared default.
type Tracer struct {
	mesh     []geom.Triangle
	registry *material.Registry
	cfg      Config
}

func NewTracer(mesh []geom.Triangle, registry *material.Registry, cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = material.Default()
	}
	return &Tracer{mesh: mesh, registry: registry, cfg: cfg}, nil
}

// Mesh returns the traced mesh. PathRecord.TriangleIndex indexes into it.
func (t *Tracer) Mesh() []geom.Triangle {
	return t.mesh
}

// TracePaths returns the direct path followed by one first-order record per
// triangle in mesh order. Each record is independently dropped when its total
// length exceeds MaxDistance; the result is not sorted by distance.
func (t *Tracer) TracePaths(source, listener geom.Vector3) []PathRecord {
	records := make([]PathRecord, 0, len(t.mesh)+1)

	directDist := listener.Sub(source).Length()
	if directDist <= t.cfg.MaxDistance {
		records = append(records, PathRecord{
			Length:        directDist,
			Point:         source,
			Order:         0,
			Attenuation:   t.attenuation(directDist, onesBase),
			TriangleIndex: DirectPath,
		})
	}

	for i, tri := range t.mesh {
		point := reflectionPoint(source, listener, tri)
		length := point.Sub(source).Length() + listener.Sub(point).Length()
		if length > t.cfg.MaxDistance {
			continue
		}
		mat := t.registry.Get(tri.Material)
		records = append(records, PathRecord{
			Length:        length,
			Point:         point,
			Order:         1,
			Attenuation:   t.attenuation(length, mat.Reflection),
			TriangleIndex: i,
		})
	}

	return records
}

var onesBase = [material.NumBands]float32{1, 1, 1, 1, 1, 1}

// reflectionPoint approximates the bounce point on tri. The centroid stands
// in for the true image-source intersection; this keeps tracing O(1) per
// triangle and is part of the model's contract.
func reflectionPoint(source, listener geom.Vector3, tri geom.Triangle) geom.Vector3 {
	return tri.Center()
}

// attenuation combines inverse-distance spreading with per-band air
// absorption on top of the base coefficients. Distance is clamped to 0.1 m
// so near-coincident points do not blow up the gain.
func (t *Tracer) attenuation(distance float32, base [material.NumBands]float32) [material.NumBands]float32 {
	d := float64(distance)
	distAtten := 1.0 / math.Max(d, 0.1)
	coeff := float64(t.cfg.Medium.Attenuation)

	var out [material.NumBands]float32
	for i, f := range material.BandFrequencies {
		airAtten := math.Exp(-coeff * d * f / 1000.0)
		out[i] = base[i] * float32(distAtten*airAtten)
	}
	return out
}
