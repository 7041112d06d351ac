package field

import (
	"strings"
	"testing"
)

func testSubGrid(t *testing.T) (*Grid, *SubGrid) {
	t.Helper()
	main := testGrid(t, 20, 20, 20)
	sub, err := NewSubGrid(main, SubGridSpec{
		Name: "fine",
		I0:   8, J0: 8, K0: 8,
		I1: 12, J1: 12, K1: 12,
		Ratio: 3,
	})
	if err != nil {
		t.Fatalf("NewSubGrid: %v", err)
	}
	return main, sub
}

func TestSubGridGeometry(t *testing.T) {
	main, sub := testSubGrid(t)

	// Defaults: IS/OS separation 3, PML 6, PML separation ratio/2+2.
	wantNBC := 3*3 + (3/2 + 2) + 6
	if sub.NBoundaryCells != wantNBC {
		t.Fatalf("NBoundaryCells = %d, want %d", sub.NBoundaryCells, wantNBC)
	}
	if sub.NWx != 12 || sub.NWy != 12 || sub.NWz != 12 {
		t.Fatalf("working cells = (%d,%d,%d), want (12,12,12)", sub.NWx, sub.NWy, sub.NWz)
	}
	wantExtent := 12 + 2*wantNBC
	if sub.Nx != wantExtent || sub.Ny != wantExtent || sub.Nz != wantExtent {
		t.Fatalf("extent = (%d,%d,%d), want %d per axis", sub.Nx, sub.Ny, sub.Nz, wantExtent)
	}
	if sub.Dx != main.Dx/3 {
		t.Fatalf("sub dx = %g, want %g", sub.Dx, main.Dx/3)
	}
	if sub.Dt != main.Dt/3 {
		t.Fatalf("sub dt = %g, want %g", sub.Dt, main.Dt/3)
	}
	if got := sub.InnerBound(); got != (Index{wantNBC, wantNBC, wantNBC}) {
		t.Fatalf("InnerBound = %v", got)
	}
	if got := sub.OuterBound(); got != (Index{wantNBC + 12, wantNBC + 12, wantNBC + 12}) {
		t.Fatalf("OuterBound = %v", got)
	}
	if got := sub.osPlane(); got != wantNBC-9 {
		t.Fatalf("osPlane = %d, want %d", got, wantNBC-9)
	}
}

func TestSubGridValidation(t *testing.T) {
	main := testGrid(t, 20, 20, 20)

	cases := []struct {
		name string
		spec SubGridSpec
		want string
	}{
		{
			"even ratio",
			SubGridSpec{Name: "s", I0: 8, J0: 8, K0: 8, I1: 12, J1: 12, K1: 12, Ratio: 2},
			"ratio must be odd",
		},
		{
			"zero ratio",
			SubGridSpec{Name: "s", I0: 8, J0: 8, K0: 8, I1: 12, J1: 12, K1: 12},
			"ratio must be >= 1",
		},
		{
			"inverted region",
			SubGridSpec{Name: "s", I0: 12, J0: 8, K0: 8, I1: 8, J1: 12, K1: 12, Ratio: 3},
			"inverted or empty",
		},
		{
			"outer surface outside main grid",
			SubGridSpec{Name: "s", I0: 2, J0: 8, K0: 8, I1: 12, J1: 12, K1: 12, Ratio: 3},
			"no room inside the main grid",
		},
		{
			"outer surface on upper face",
			SubGridSpec{Name: "s", I0: 8, J0: 8, K0: 8, I1: 12, J1: 12, K1: 19, Ratio: 3},
			"no room inside the main grid",
		},
	}
	for _, tc := range cases {
		_, err := NewSubGrid(main, tc.spec)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestSubGridHasOwnMaterialTable(t *testing.T) {
	main, sub := testSubGrid(t)
	if _, err := sub.AddMaterial(PEC()); err != nil {
		t.Fatalf("AddMaterial on subgrid: %v", err)
	}
	if len(main.Materials()) != 1 {
		t.Fatalf("main grid material table grew to %d entries", len(main.Materials()))
	}
	if len(sub.Materials()) != 2 {
		t.Fatalf("subgrid material table has %d entries, want 2", len(sub.Materials()))
	}
}
