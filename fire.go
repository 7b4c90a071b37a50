/*
Copyright © 2017 the ALFRESCO authors.
This file is part of ALFRESCO.

ALFRESCO is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ALFRESCO is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ALFRESCO.  If not, see <http://www.gnu.org/licenses/>.
*/

package alfresco

// compassOffsets orders the 8-connected neighborhood N, NE, E, SE, S,
// SW, W, NW. Equal-probability neighbors are always visited in this
// order, which keeps spread deterministic under a fixed seed.
var compassOffsets = [8][2]int{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1},
}

// FireSizeRecord summarizes one fire scar for the year's fire-size
// statistics.
type FireSizeRecord struct {
	FireID      int
	Cells       int
	IgnitionRow int
	IgnitionCol int
	LowLSS      int
	Moderate    int
	HighLSS     int
	HighHSS     int
}

func (r *FireSizeRecord) count(s BurnSeverity) {
	r.Cells++
	switch s {
	case SeverityLowLSS:
		r.LowLSS++
	case SeverityModerate:
		r.Moderate++
	case SeverityHighLSS:
		r.HighLSS++
	case SeverityHighHSS:
		r.HighHSS++
	}
}

// Fire returns the fire-season manipulator: ignition selection in
// row-major order, then breadth-first spread across 8-connected
// neighbors for each ignition in order of generation. Burned cells do
// not re-ignite within the year.
func Fire() LandscapeManipulator {
	return func(L *Landscape) error {
		for row := 0; row < L.Rows; row++ {
			for col := 0; col < L.Cols; col++ {
				i := L.Index(row, col)
				f := L.Frames[i]
				if L.Registry.Kind(f.Type()) == KindNoVeg {
					continue
				}
				u := L.Rand.Uniform()
				if f.Base().YearOfLastBurn == L.Year {
					continue // burned earlier this season
				}
				if u < f.FireProbability(L) {
					L.igniteAndSpread(i)
				}
			}
		}
		return nil
	}
}

// ForceIgnition starts a fire at (row, col) regardless of the
// ignition draw, for scenarios and tests that need an ignition at a
// fixed cell.
func (L *Landscape) ForceIgnition(row, col int) {
	L.igniteAndSpread(L.Index(row, col))
}

func (L *Landscape) igniteAndSpread(origin int) {
	L.LastFireID++
	L.NumIgnitions++
	fireID := L.LastFireID

	rec := FireSizeRecord{
		FireID:      fireID,
		IgnitionRow: origin / L.Cols,
		IgnitionCol: origin % L.Cols,
	}

	L.burnCell(origin, fireID, true, &rec)

	// Breadth-first spread; the frontier holds cell indices.
	frontier := []int{origin}
	for len(frontier) > 0 {
		i := frontier[0]
		frontier = frontier[1:]
		row, col := i/L.Cols, i%L.Cols

		for _, off := range compassOffsets {
			nr, nc := row+off[0], col+off[1]
			if !L.InBounds(nr, nc) {
				continue
			}
			ni := L.Index(nr, nc)
			nf := L.Frames[ni]
			if L.Registry.Kind(nf.Type()) == KindNoVeg {
				continue
			}
			if nf.Base().YearOfLastBurn == L.Year {
				continue
			}
			if L.Rand.Uniform() < L.spreadProbability(ni, fireID) {
				L.burnCell(ni, fireID, false, &rec)
				frontier = append(frontier, ni)
			}
		}
	}

	L.SeasonFires = append(L.SeasonFires, rec)
}

// spreadProbability is the chance a fire crossing into cell i burns
// it: base flammability of the cell's type and age, modulated by the
// cell's sensitivity, topographic complexity, the active suppression
// class, and any custom multiplier.
func (L *Landscape) spreadProbability(i, fireID int) float64 {
	f := L.Frames[i]
	b := f.Base()
	sp := L.Registry.Species(b.Veg)
	if sp == nil {
		return 0
	}
	p := sp.FireProbAt(b.Age(L.Year)) * b.FireSensitivity
	if b.IsTopoComplex {
		p *= L.TopoFactor
	}
	p *= L.SuppressionMultiplier(i)
	if L.CustomSpreadMultiplier != nil {
		p *= L.CustomSpreadMultiplier(b.Row, b.Col, L.TotalBurned, fireID)
	}
	return p
}

func (L *Landscape) burnCell(i, fireID int, origin bool, rec *FireSizeRecord) {
	f := L.Frames[i]
	b := f.Base()
	sev := L.drawSeverity(f)
	b.Burn(L.Year, fireID, sev, origin)
	L.TotalBurned++
	if k := L.SuppressionClass[i]; k >= 0 && k < len(L.BurnPartitionBySuppClass) {
		L.BurnPartitionBySuppClass[k]++
	}
	rec.count(sev)
}

// drawSeverity assigns a burn severity from the cell's pre-fire type
// and age plus one severity draw. Burned cells never carry
// SeverityNone.
func (L *Landscape) drawSeverity(f Frame) BurnSeverity {
	b := f.Base()
	u := L.Rand.Uniform()
	switch L.Registry.Kind(b.Veg) {
	case KindBlackSpruce, KindWhiteSpruce, KindDeciduous:
		sp := L.Registry.Species(b.Veg)
		if sp != nil && b.Age(L.Year) < sp.History {
			// Young stands carry too little fuel for a crown fire.
			return SeverityLowLSS
		}
		switch {
		case u < 0.25:
			return SeverityModerate
		case u < 0.75:
			return SeverityHighLSS
		default:
			return SeverityHighHSS
		}
	case KindTundra, KindGrassland:
		if u < 0.5 {
			return SeverityLowLSS
		}
		return SeverityModerate
	default:
		return SeverityLowLSS
	}
}
