// Package tessellate produces preview meshes for sketch regions using a
// region mesher. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/region"
)

// DefaultHeight is the slab height used for parts that do not set one.
const DefaultHeight = 1.0

// Mesher meshes a region as a slab of the given height.
type Mesher interface {
	RegionMesh(r region.Region, height float64) (*kernel.Mesh, error)
}

// Part is one region to render.
type Part struct {
	Name   string
	Region region.Region
	Height float64
}

// Tessellate meshes each part in order. The mesher is the only thing that
// does geometry work; parts are never modified.
func Tessellate(parts []Part, m Mesher) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(parts))
	for i, p := range parts {
		h := p.Height
		if h <= 0 {
			h = DefaultHeight
		}
		mesh, err := m.RegionMesh(p.Region, h)
		if err != nil {
			return nil, fmt.Errorf("tessellate: meshing part %s: %w", partName(p, i), err)
		}
		mesh.PartName = partName(p, i)
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Regions meshes regions as parts named region-1, region-2, ...
func Regions(rs []region.Region, height float64, m Mesher) ([]*kernel.Mesh, error) {
	parts := make([]Part, len(rs))
	for i, r := range rs {
		parts[i] = Part{Region: r, Height: height}
	}
	return Tessellate(parts, m)
}

// partName prefers the part's Name and falls back to its position.
func partName(p Part, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("region-%d", i+1)
}
