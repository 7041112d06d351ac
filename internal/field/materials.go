package field

import (
	"fmt"

	"github.com/banshee-data/emfield/internal/units"
)

// Material describes an isotropic, possibly lossy medium.
type Material struct {
	Name            string  `json:"name"`
	RelPermittivity float64 `json:"rel_permittivity"`
	Conductivity    float64 `json:"conductivity"` // S/m
	RelPermeability float64 `json:"rel_permeability"`
	MagneticLoss    float64 `json:"magnetic_loss"` // ohms/m
}

// FreeSpace returns the vacuum material that occupies every new grid.
func FreeSpace() Material {
	return Material{Name: "free_space", RelPermittivity: 1, RelPermeability: 1}
}

// PEC returns a perfect electric conductor approximated by a very high
// conductivity.
func PEC() Material {
	return Material{Name: "pec", RelPermittivity: 1, RelPermeability: 1, Conductivity: 1e10}
}

// AddMaterial registers a material and computes its update coefficient rows
// from the grid's discretisation. Returns the assigned MaterialID.
func (g *Grid) AddMaterial(m Material) (MaterialID, error) {
	if m.RelPermittivity <= 0 || m.RelPermeability <= 0 {
		return 0, fmt.Errorf("material %q: permittivity and permeability must be positive", m.Name)
	}
	for _, existing := range g.materials {
		if existing.Name == m.Name {
			return 0, fmt.Errorf("material %q already defined", m.Name)
		}
	}

	eps := m.RelPermittivity * units.Eps0
	mu := m.RelPermeability * units.Mu0
	sigma := m.Conductivity
	sigmaM := m.MagneticLoss
	dt := g.Dt

	// Standard lossy-medium semi-implicit coefficients.
	denomE := 2*eps + sigma*dt
	rowE := [5]float64{
		(2*eps - sigma*dt) / denomE,
		2 * dt / (denomE * g.Dx),
		2 * dt / (denomE * g.Dy),
		2 * dt / (denomE * g.Dz),
		2 * dt / (denomE * g.Dx * g.Dy * g.Dz),
	}
	denomH := 2*mu + sigmaM*dt
	rowH := [5]float64{
		(2*mu - sigmaM*dt) / denomH,
		2 * dt / (denomH * g.Dx),
		2 * dt / (denomH * g.Dy),
		2 * dt / (denomH * g.Dz),
		2 * dt / (denomH * g.Dx * g.Dy * g.Dz),
	}

	g.materials = append(g.materials, m)
	g.CoeffsE = append(g.CoeffsE, rowE)
	g.CoeffsH = append(g.CoeffsH, rowH)
	return MaterialID(len(g.materials) - 1), nil
}

// Materials returns the registered materials in ID order.
func (g *Grid) Materials() []Material { return g.materials }

// MaterialByName looks up a registered material ID.
func (g *Grid) MaterialByName(name string) (MaterialID, bool) {
	for i, m := range g.materials {
		if m.Name == name {
			return MaterialID(i), true
		}
	}
	return 0, false
}
