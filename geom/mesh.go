package geom

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Box builds an axis-aligned box room of the given outer dimensions centered
// on the origin, two triangles per face, all carrying the same material.
func Box(size Vector3, material string) []Triangle {
	x, y, z := size.X/2, size.Y/2, size.Z/2

	v := [8]Vector3{
		{-x, -y, -z}, {x, -y, -z},
		{x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z},
		{x, y, z}, {-x, y, z},
	}

	return []Triangle{
		// Front
		NewTriangle(v[0], v[1], v[2], material), NewTriangle(v[0], v[2], v[3], material),
		// Back
		NewTriangle(v[4], v[6], v[5], material), NewTriangle(v[4], v[7], v[6], material),
		// Left
		NewTriangle(v[0], v[3], v[7], material), NewTriangle(v[0], v[7], v[4], material),
		// Right
		NewTriangle(v[1], v[5], v[6], material), NewTriangle(v[1], v[6], v[2], material),
		// Top
		NewTriangle(v[3], v[2], v[6], material), NewTriangle(v[3], v[6], v[7], material),
		// Bottom
		NewTriangle(v[0], v[4], v[5], material), NewTriangle(v[0], v[5], v[1], material),
	}
}

// LoadOBJ reads triangulated geometry from a Wavefront OBJ file. Only "v"
// and "f" records are interpreted; faces must be triangles and may use the
// "index/texcoord/normal" form, of which only the vertex index is used.
// Every face is assigned defaultMaterial.
func LoadOBJ(path string, defaultMaterial string) ([]Triangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vertices []Vector3
	var triangles []Triangle

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj %s:%d: vertex needs 3 coordinates", path, line)
			}
			var c [3]float64
			for i := 0; i < 3; i++ {
				c[i], err = strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("obj %s:%d: bad coordinate %q", path, line, fields[i+1])
				}
			}
			vertices = append(vertices, Vector3{float32(c[0]), float32(c[1]), float32(c[2])})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj %s:%d: face needs 3 indices", path, line)
			}
			var idx [3]int
			for i := 0; i < 3; i++ {
				ref := strings.SplitN(fields[i+1], "/", 2)[0]
				n, err := strconv.Atoi(ref)
				if err != nil {
					return nil, fmt.Errorf("obj %s:%d: bad face index %q", path, line, fields[i+1])
				}
				if n < 0 {
					n = len(vertices) + 1 + n
				}
				if n < 1 || n > len(vertices) {
					return nil, fmt.Errorf("obj %s:%d: face index %d out of range", path, line, n)
				}
				idx[i] = n - 1
			}
			triangles = append(triangles, NewTriangle(
				vertices[idx[0]], vertices[idx[1]], vertices[idx[2]], defaultMaterial))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return triangles, nil
}
