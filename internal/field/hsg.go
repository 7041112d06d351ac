package field

import (
	"github.com/banshee-data/emfield/internal/units"
)

// Axis returns the spatial axis a component is directed along.
func (c Component) Axis() units.Axis { return units.Axis(int(c) % 3) }

// isSignPair returns the curl-orientation signs applied on the lower and
// upper face of a pair when an Inner Surface update of `updated` consumes a
// precursor of `precursor`. The pattern follows directly from the Yee curl
// relations (Hz = c0*Hz - cx*Ey + cy*Ex and companions): the sign of the
// missing-neighbour term depends only on whether the two component axes are
// in cyclic order.
func isSignPair(updated, precursor Component) (lower, upper float64) {
	ua := int(updated.Axis())
	pa := int(precursor.Axis())
	var positive bool
	if updated.IsElectric() {
		positive = (ua+1)%3 == pa
	} else {
		positive = (pa+1)%3 == ua
	}
	if positive {
		return 1, -1
	}
	return -1, 1
}

// osSignPair is the Outer Surface counterpart: the exact negation of the
// paired Inner Surface signs, so the two injections form a consistent
// equivalent-current pair.
func osSignPair(updated, read Component) (lower, upper float64) {
	l, u := isSignPair(updated, read)
	return -l, -u
}

// updateIS applies the missing-neighbour precursor terms of one face pair to
// a subgrid field component. At the Inner Surface one of the two curl
// neighbours lives outside the subgrid interior; the interior kernel omitted
// it, and this adds it back from the precursor estimate.
func (s *SubGrid) updateIS(fld []float64, comp Component, fp *facePair) {
	normal := fp.normal
	t := tangentialAxes[normal]
	work := s.WorkingCells()
	off := staggerOffsets[comp]
	signL, signU := isSignPair(comp, fp.comp)

	coeffs := s.CoeffsE
	planeL := s.NBoundaryCells
	if !comp.IsElectric() {
		coeffs = s.CoeffsH
		// the magnetic node layer sits half a cell below the IS plane
		planeL = s.NBoundaryCells - 1
	}
	planeU := s.NBoundaryCells + work[normal]
	col := int(normal) + 1

	// A component staggered along a tangential axis has one fewer node
	// across the face than the node lattice.
	n1 := work[t[0]] + 1
	if off[t[0]] != 0 {
		n1 = work[t[0]]
	}
	n2 := work[t[1]] + 1
	if off[t[1]] != 0 {
		n2 = work[t[1]]
	}

	var idx Index
	for u := 0; u < n1; u++ {
		for v := 0; v < n2; v++ {
			idx[t[0]] = s.NBoundaryCells + u
			idx[t[1]] = s.NBoundaryCells + v

			idx[normal] = planeL
			n := s.Idx(idx[0], idx[1], idx[2])
			c := coeffs[s.MaterialAt(comp, idx[0], idx[1], idx[2])]
			fld[n] += signL * c[col] * fp.lowerNow[fp.at(u, v)]

			idx[normal] = planeU
			n = s.Idx(idx[0], idx[1], idx[2])
			c = coeffs[s.MaterialAt(comp, idx[0], idx[1], idx[2])]
			fld[n] += signU * c[col] * fp.upperNow[fp.at(u, v)]
		}
	}
}

// UpdateMagneticIS updates the subgrid magnetic field at the Inner Surface
// with the electric precursors derived from the main grid.
func (s *SubGrid) UpdateMagneticIS(p *Precursors) {
	// Form of the FDTD update equations for H:
	// Hz = c0*Hz - cx*Ey + cy*Ex
	// Hy = c0*Hy - cz*Ex + cx*Ez
	// Hx = c0*Hx - cy*Ez + cz*Ey

	// Bottom and top
	s.updateIS(s.Hy, CompHy, p.ExBT)
	s.updateIS(s.Hx, CompHx, p.EyBT)
	// Left and right
	s.updateIS(s.Hz, CompHz, p.EyLR)
	s.updateIS(s.Hy, CompHy, p.EzLR)
	// Front and back
	s.updateIS(s.Hz, CompHz, p.ExFB)
	s.updateIS(s.Hx, CompHx, p.EzFB)
}

// UpdateElectricIS updates the subgrid electric field at the Inner Surface
// with the magnetic precursors derived from the main grid.
func (s *SubGrid) UpdateElectricIS(p *Precursors) {
	// Form of the FDTD update equations for E:
	// Ex = c0*Ex + cy*dHz - cz*dHy
	// Ey = c0*Ey + cz*dHx - cx*dHz
	// Ez = c0*Ez + cx*dHy - cy*dHx

	// Bottom and top
	s.updateIS(s.Ex, CompEx, p.HyBT)
	s.updateIS(s.Ey, CompEy, p.HxBT)
	// Left and right
	s.updateIS(s.Ey, CompEy, p.HzLR)
	s.updateIS(s.Ez, CompEz, p.HyLR)
	// Front and back
	s.updateIS(s.Ex, CompEx, p.HzFB)
	s.updateIS(s.Ez, CompEz, p.HxFB)
}

// updateOS projects one subgrid component onto the paired main-grid
// component across both Outer Surface faces sharing a normal axis. The
// subgrid field is averaged over Ratio fine cells along each tangential axis
// the component is staggered on; aligned axes map one-to-one.
func (s *SubGrid) updateOS(main *Grid, mainFld []float64, mainComp Component, subFld []float64, subComp Component, normal units.Axis) {
	t := tangentialAxes[normal]
	signL, signU := osSignPair(mainComp, subComp)

	lower := Index{s.I0, s.J0, s.K0}
	upper := Index{s.I1, s.J1, s.K1}

	coeffs := main.CoeffsE
	// Main-grid planes carrying the updated nodes on each face.
	mPlaneL := lower[normal] - s.ISOSSep
	mPlaneU := upper[normal] + s.ISOSSep
	// Subgrid planes read on each face. Electric OS updates read subgrid H
	// half a coarse cell inside the OS; magnetic OS updates read subgrid E
	// exactly on it.
	sPlaneL := s.osPlane() + s.Ratio/2
	sPlaneU := s.NBoundaryCells + s.WorkingCells()[normal] + s.Ratio*s.ISOSSep - s.Ratio/2 - 1
	if !mainComp.IsElectric() {
		coeffs = main.CoeffsH
		mPlaneL--
		sPlaneL = s.osPlane()
		sPlaneU = s.NBoundaryCells + s.WorkingCells()[normal] + s.Ratio*s.ISOSSep
	}
	col := int(normal) + 1

	mOff := staggerOffsets[mainComp]
	sOff := staggerOffsets[subComp]

	// Main-grid face rectangle, inclusive node counts per tangential axis.
	lo1 := lower[t[0]] - s.ISOSSep
	lo2 := lower[t[1]] - s.ISOSSep
	n1 := upper[t[0]] + s.ISOSSep - lo1 + 1
	if mOff[t[0]] != 0 {
		n1--
	}
	n2 := upper[t[1]] + s.ISOSSep - lo2 + 1
	if mOff[t[1]] != 0 {
		n2--
	}

	mainNodes := main.nodes()

	var mIdx, sIdx Index
	for a := 0; a < n1; a++ {
		for b := 0; b < n2; b++ {
			mIdx[t[0]] = lo1 + a
			mIdx[t[1]] = lo2 + b

			// Fine base indices for the coarse tangential position.
			f1 := s.NBoundaryCells + s.Ratio*(lo1+a-lower[t[0]])
			f2 := s.NBoundaryCells + s.Ratio*(lo2+b-lower[t[1]])

			for face := 0; face < 2; face++ {
				sign := signL
				mIdx[normal] = mPlaneL
				sIdx[normal] = sPlaneL
				if face == 1 {
					sign = signU
					mIdx[normal] = mPlaneU
					sIdx[normal] = sPlaneU
				}

				// Average the staggered tangential axes over Ratio
				// fine cells; aligned axes sample one node.
				var sum float64
				count := 0
				u1 := 1
				if sOff[t[0]] != 0 {
					u1 = s.Ratio
				}
				u2 := 1
				if sOff[t[1]] != 0 {
					u2 = s.Ratio
				}
				for du := 0; du < u1; du++ {
					for dv := 0; dv < u2; dv++ {
						sIdx[t[0]] = f1 + du
						sIdx[t[1]] = f2 + dv
						sum += subFld[s.Idx(sIdx[0], sIdx[1], sIdx[2])]
						count++
					}
				}
				avg := sum / float64(count)

				n := main.Idx(mIdx[0], mIdx[1], mIdx[2])
				c := coeffs[main.ID[int(mainComp)*mainNodes+n]]
				mainFld[n] += sign * c[col] * avg
			}
		}
	}
}

// UpdateElectricOS updates the main-grid electric field at the Outer Surface
// from the subgrid's magnetic field.
func (s *SubGrid) UpdateElectricOS(main *Grid) {
	// Front and back
	s.updateOS(main, main.Ex, CompEx, s.Hz, CompHz, units.Y)
	s.updateOS(main, main.Ez, CompEz, s.Hx, CompHx, units.Y)
	// Left and right
	s.updateOS(main, main.Ey, CompEy, s.Hz, CompHz, units.X)
	s.updateOS(main, main.Ez, CompEz, s.Hy, CompHy, units.X)
	// Bottom and top
	s.updateOS(main, main.Ex, CompEx, s.Hy, CompHy, units.Z)
	s.updateOS(main, main.Ey, CompEy, s.Hx, CompHx, units.Z)
}

// UpdateMagneticOS updates the main-grid magnetic field at the Outer Surface
// from the subgrid's electric field.
func (s *SubGrid) UpdateMagneticOS(main *Grid) {
	// Front and back
	s.updateOS(main, main.Hz, CompHz, s.Ex, CompEx, units.Y)
	s.updateOS(main, main.Hx, CompHx, s.Ez, CompEz, units.Y)
	// Left and right
	s.updateOS(main, main.Hz, CompHz, s.Ey, CompEy, units.X)
	s.updateOS(main, main.Hy, CompHy, s.Ez, CompEz, units.X)
	// Bottom and top
	s.updateOS(main, main.Hy, CompHy, s.Ex, CompEx, units.Z)
	s.updateOS(main, main.Hx, CompHx, s.Ey, CompEy, units.Z)
}
