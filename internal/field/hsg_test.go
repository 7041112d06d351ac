package field

import (
	"math"
	"testing"
)

// The twelve Inner Surface couplings carry fixed curl-orientation signs; the
// table below is the hand-derived reference.
func TestISSignTable(t *testing.T) {
	cases := []struct {
		updated, precursor Component
		lower, upper       float64
	}{
		// magnetic IS, z faces
		{CompHy, CompEx, 1, -1},
		{CompHx, CompEy, -1, 1},
		// magnetic IS, x faces
		{CompHz, CompEy, 1, -1},
		{CompHy, CompEz, -1, 1},
		// magnetic IS, y faces
		{CompHz, CompEx, -1, 1},
		{CompHx, CompEz, 1, -1},
		// electric IS, z faces
		{CompEx, CompHy, 1, -1},
		{CompEy, CompHx, -1, 1},
		// electric IS, x faces
		{CompEy, CompHz, 1, -1},
		{CompEz, CompHy, -1, 1},
		// electric IS, y faces
		{CompEx, CompHz, -1, 1},
		{CompEz, CompHx, 1, -1},
	}
	for _, c := range cases {
		l, u := isSignPair(c.updated, c.precursor)
		if l != c.lower || u != c.upper {
			t.Errorf("isSignPair(%s, %s) = (%g, %g), want (%g, %g)",
				c.updated, c.precursor, l, u, c.lower, c.upper)
		}
	}
}

// Outer Surface signs are the exact negation of the paired Inner Surface
// signs for every coupling, so the two surfaces inject a consistent
// equivalent-current pair.
func TestOSSignsNegateISSigns(t *testing.T) {
	for updated := CompEx; updated < numComponents; updated++ {
		for read := CompEx; read < numComponents; read++ {
			if updated.Axis() == read.Axis() {
				continue
			}
			il, iu := isSignPair(updated, read)
			ol, ou := osSignPair(updated, read)
			if ol != -il || ou != -iu {
				t.Errorf("osSignPair(%s, %s) = (%g, %g), want negation of (%g, %g)",
					updated, read, ol, ou, il, iu)
			}
		}
	}
}

// An IS update must touch exactly the two node planes of its face pair, with
// the precursor scaled by the material's curl coefficient along the normal.
func TestUpdateISTouchesOnlyFacePlanes(t *testing.T) {
	_, sub := testSubGrid(t)
	p := NewPrecursors(sub, true)

	const v = 2.0
	for i := range p.ExBT.lowerNow {
		p.ExBT.lowerNow[i] = v
		p.ExBT.upperNow[i] = v
	}
	sub.updateIS(sub.Hy, CompHy, p.ExBT)

	nbc := sub.NBoundaryCells
	cz := sub.CoeffsH[0][3]
	lowerPlane := nbc - 1
	upperPlane := nbc + sub.NWz

	if got := sub.Hy[sub.Idx(nbc, nbc, lowerPlane)]; math.Abs(got-cz*v) > 1e-18 {
		t.Fatalf("lower plane Hy = %g, want %g", got, cz*v)
	}
	if got := sub.Hy[sub.Idx(nbc, nbc, upperPlane)]; math.Abs(got+cz*v) > 1e-18 {
		t.Fatalf("upper plane Hy = %g, want %g", got, -cz*v)
	}

	// Hy is staggered along x, so the face carries NWx * (NWy+1) nodes.
	nonzero := 0
	for _, x := range sub.Hy {
		if x != 0 {
			nonzero++
		}
	}
	want := 2 * sub.NWx * (sub.NWy + 1)
	if nonzero != want {
		t.Fatalf("IS update touched %d nodes, want %d", nonzero, want)
	}

	// Interior node well away from both planes.
	if got := sub.Hy[sub.Idx(nbc+2, nbc+2, nbc+sub.NWz/2)]; got != 0 {
		t.Fatalf("interior Hy = %g, want 0", got)
	}
}

// The six magnetic IS couplings write to the expected components and leave
// the electric field alone.
func TestUpdateMagneticIS(t *testing.T) {
	_, sub := testSubGrid(t)
	p := NewPrecursors(sub, true)
	for _, fp := range p.electricPairs() {
		for i := range fp.lowerNow {
			fp.lowerNow[i] = 1
			fp.upperNow[i] = 1
		}
	}
	sub.UpdateMagneticIS(p)

	for _, c := range []Component{CompHx, CompHy, CompHz} {
		any := false
		for _, x := range sub.Field(c) {
			if x != 0 {
				any = true
				break
			}
		}
		if !any {
			t.Errorf("%s untouched by magnetic IS update", c)
		}
	}
	for _, c := range []Component{CompEx, CompEy, CompEz} {
		for _, x := range sub.Field(c) {
			if x != 0 {
				t.Fatalf("%s modified by magnetic IS update", c)
			}
		}
	}
}

// An Outer Surface projection writes only into the narrow band of main-grid
// planes around the subgrid, never into the region interior to the OS or far
// outside it.
func TestUpdateElectricOSLocality(t *testing.T) {
	main, sub := testSubGrid(t)

	// Uniform subgrid magnetic field so every OS face projects something.
	for _, f := range [][]float64{sub.Hx, sub.Hy, sub.Hz} {
		for i := range f {
			f[i] = 1
		}
	}
	sub.UpdateElectricOS(main)

	osLo := 8 - sub.ISOSSep  // 5
	osHi := 12 + sub.ISOSSep // 15
	any := false
	for i := 0; i <= main.Nx; i++ {
		for j := 0; j <= main.Ny; j++ {
			for k := 0; k <= main.Nz; k++ {
				n := main.Idx(i, j, k)
				val := main.Ex[n] + main.Ey[n] + main.Ez[n]
				if val == 0 {
					continue
				}
				any = true
				outside := i < osLo || i > osHi || j < osLo || j > osHi || k < osLo || k > osHi
				interior := i > osLo && i < osHi && j > osLo && j < osHi && k > osLo && k < osHi
				if outside || interior {
					t.Fatalf("OS projection wrote E at (%d,%d,%d) off the OS shell", i, j, k)
				}
			}
		}
	}
	if !any {
		t.Fatal("OS projection wrote nothing")
	}
}
