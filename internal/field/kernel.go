package field

import "sync"

// Kernel is the elementary field-update primitive consumed by the solver. It
// mutates one grid's field arrays in place given the grid's coefficient
// tables and material IDs. Implementations must be deterministic; the
// coupling engine treats them as correct.
type Kernel interface {
	UpdateElectric(g *Grid)
	UpdateMagnetic(g *Grid)
}

// CurlKernel is the standard Yee leapfrog update. Workers > 1 splits the
// outer i loop across goroutines; each slab touches disjoint output nodes so
// no locking is needed. The worker count is supplied explicitly at
// construction rather than read from process-wide state.
type CurlKernel struct {
	Workers int
}

// NewCurlKernel returns a kernel using the given worker count (minimum 1).
func NewCurlKernel(workers int) *CurlKernel {
	if workers < 1 {
		workers = 1
	}
	return &CurlKernel{Workers: workers}
}

// forEachI runs fn for every i in [lo, hi), split across Workers goroutines.
func (ck *CurlKernel) forEachI(lo, hi int, fn func(i int)) {
	n := hi - lo
	if ck.Workers <= 1 || n < 2*ck.Workers {
		for i := lo; i < hi; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (n + ck.Workers - 1) / ck.Workers
	for start := lo; start < hi; start += chunk {
		end := start + chunk
		if end > hi {
			end = hi
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// UpdateElectric advances the three electric components by one step.
func (ck *CurlKernel) UpdateElectric(g *Grid) {
	sy := g.Nz + 1
	sx := (g.Ny + 1) * sy
	nodes := g.nodes()

	// Ex = c0*Ex + cy*dHz/dy - cz*dHy/dz
	ck.forEachI(0, g.Nx, func(i int) {
		for j := 1; j < g.Ny; j++ {
			for k := 1; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsE[g.ID[int(CompEx)*nodes+n]]
				g.Ex[n] = c[0]*g.Ex[n] +
					c[2]*(g.Hz[n]-g.Hz[n-sy]) -
					c[3]*(g.Hy[n]-g.Hy[n-1])
			}
		}
	})

	// Ey = c0*Ey + cz*dHx/dz - cx*dHz/dx
	ck.forEachI(1, g.Nx, func(i int) {
		for j := 0; j < g.Ny; j++ {
			for k := 1; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsE[g.ID[int(CompEy)*nodes+n]]
				g.Ey[n] = c[0]*g.Ey[n] +
					c[3]*(g.Hx[n]-g.Hx[n-1]) -
					c[1]*(g.Hz[n]-g.Hz[n-sx])
			}
		}
	})

	// Ez = c0*Ez + cx*dHy/dx - cy*dHx/dy
	ck.forEachI(1, g.Nx, func(i int) {
		for j := 1; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsE[g.ID[int(CompEz)*nodes+n]]
				g.Ez[n] = c[0]*g.Ez[n] +
					c[1]*(g.Hy[n]-g.Hy[n-sx]) -
					c[2]*(g.Hx[n]-g.Hx[n-sy])
			}
		}
	})
}

// UpdateMagnetic advances the three magnetic components by one step.
func (ck *CurlKernel) UpdateMagnetic(g *Grid) {
	sy := g.Nz + 1
	sx := (g.Ny + 1) * sy
	nodes := g.nodes()

	// Hx = c0*Hx - cy*dEz/dy + cz*dEy/dz
	ck.forEachI(1, g.Nx, func(i int) {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsH[g.ID[int(CompHx)*nodes+n]]
				g.Hx[n] = c[0]*g.Hx[n] -
					c[2]*(g.Ez[n+sy]-g.Ez[n]) +
					c[3]*(g.Ey[n+1]-g.Ey[n])
			}
		}
	})

	// Hy = c0*Hy - cz*dEx/dz + cx*dEz/dx
	ck.forEachI(0, g.Nx, func(i int) {
		for j := 1; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsH[g.ID[int(CompHy)*nodes+n]]
				g.Hy[n] = c[0]*g.Hy[n] -
					c[3]*(g.Ex[n+1]-g.Ex[n]) +
					c[1]*(g.Ez[n+sx]-g.Ez[n])
			}
		}
	})

	// Hz = c0*Hz - cx*dEy/dx + cy*dEx/dy
	ck.forEachI(0, g.Nx, func(i int) {
		for j := 0; j < g.Ny; j++ {
			for k := 1; k < g.Nz; k++ {
				n := i*sx + j*sy + k
				c := g.CoeffsH[g.ID[int(CompHz)*nodes+n]]
				g.Hz[n] = c[0]*g.Hz[n] -
					c[1]*(g.Ey[n+sx]-g.Ey[n]) +
					c[2]*(g.Ex[n+sy]-g.Ex[n])
			}
		}
	})
}
