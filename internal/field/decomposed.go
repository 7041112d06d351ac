package field

import (
	"fmt"

	"github.com/banshee-data/emfield/internal/units"
)

// DecomposedGrid is one rank's local slice of a larger domain. The transport
// that exchanges halo layers between ranks is an external collaborator; this
// type only provides the exact local/global index conversion and the halo
// index windows that transport relies on.
type DecomposedGrid struct {
	Grid

	// Offset is the global index of the local origin (0, 0, 0).
	Offset Index
	// GlobalSize is the full domain extent in cells.
	GlobalSize Index
	// HaloDepth is the number of boundary cells exchanged per side.
	HaloDepth int
}

// NewDecomposedGrid wraps a freshly allocated local grid with its placement
// inside the global domain.
func NewDecomposedGrid(name string, local, global, offset Index, dx, dy, dz, dt float64, haloDepth int) (*DecomposedGrid, error) {
	for a := units.X; a <= units.Z; a++ {
		if offset[a] < 0 || offset[a]+local[a] > global[a] {
			return nil, fmt.Errorf("grid %q: local slice [%d, %d) exceeds global extent %d on %s",
				name, offset[a], offset[a]+local[a], global[a], a)
		}
	}
	if haloDepth < 0 {
		return nil, fmt.Errorf("grid %q: halo depth must be non-negative, got %d", name, haloDepth)
	}
	g, err := NewGrid(name, local[0], local[1], local[2], dx, dy, dz, dt)
	if err != nil {
		return nil, err
	}
	return &DecomposedGrid{Grid: *g, Offset: offset, GlobalSize: global, HaloDepth: haloDepth}, nil
}

// GlobalToLocal converts a global index to this rank's local index space.
// The conversion is exact: LocalToGlobal(GlobalToLocal(p)) == p.
func (d *DecomposedGrid) GlobalToLocal(p Index) Index {
	return Index{p[0] - d.Offset[0], p[1] - d.Offset[1], p[2] - d.Offset[2]}
}

// LocalToGlobal converts a local index to the global index space.
func (d *DecomposedGrid) LocalToGlobal(p Index) Index {
	return Index{p[0] + d.Offset[0], p[1] + d.Offset[1], p[2] + d.Offset[2]}
}

// HasNeighbour reports whether another rank's slice adjoins this one on the
// given side of the given axis.
func (d *DecomposedGrid) HasNeighbour(axis units.Axis, upper bool) bool {
	if upper {
		return d.Offset[axis]+d.Size()[axis] < d.GlobalSize[axis]
	}
	return d.Offset[axis] > 0
}

// HaloWindow returns the local index window [lo, hi) whose values this rank
// sends to (outgoing=true) or receives from (outgoing=false) the neighbour on
// the given side of the given axis. The transport collaborator iterates these
// windows; the grid itself never performs the exchange.
func (d *DecomposedGrid) HaloWindow(axis units.Axis, upper, outgoing bool) (lo, hi Index) {
	size := d.Size()
	lo = Index{0, 0, 0}
	hi = Index{size[0] + 1, size[1] + 1, size[2] + 1}

	depth := d.HaloDepth
	if depth == 0 {
		depth = 1
	}
	if upper {
		if outgoing {
			lo[axis] = size[axis] - 2*depth + 1
			hi[axis] = size[axis] - depth + 1
		} else {
			lo[axis] = size[axis] - depth + 1
		}
	} else {
		if outgoing {
			lo[axis] = depth
			hi[axis] = 2 * depth
		} else {
			hi[axis] = depth
		}
	}
	return lo, hi
}
