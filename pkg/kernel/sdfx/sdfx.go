// Package sdfx renders sketch regions as preview meshes using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/region"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// ErrZeroHeight is returned when a region is meshed with a non-positive
// slab height.
var ErrZeroHeight = errors.New("sdfx: slab height must be positive")

// Mesher turns regions into slabs and meshes them with marching cubes.
type Mesher struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int
}

// New returns a Mesher with the default resolution.
func New() *Mesher {
	return &Mesher{Cells: defaultMeshCells}
}

// Slab extrudes the region SDF by height. The slab sits on the region's
// plane: z runs from 0 to height rather than sdfx's centered extrusion.
func (m *Mesher) Slab(r region.Region, height float64) (sdf.SDF3, error) {
	if height <= 0 {
		return nil, ErrZeroHeight
	}
	s2, err := r.SDF()
	if err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	s3 := sdf.Extrude3D(s2, height)
	return sdf.Transform3D(s3, sdf.Translate3d(v3.Vec{Z: height / 2})), nil
}

// RegionMesh meshes the slab of r.
func (m *Mesher) RegionMesh(r region.Region, height float64) (*kernel.Mesh, error) {
	s, err := m.Slab(r, height)
	if err != nil {
		return nil, err
	}
	return ToMesh(s, m.cells()), nil
}

func (m *Mesher) cells() int {
	if m.Cells <= 0 {
		return defaultMeshCells
	}
	return m.Cells
}

// ToMesh converts an SDF to a flat triangle mesh using marching cubes.
func ToMesh(s sdf.SDF3, cells int) *kernel.Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
}
