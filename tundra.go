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

// Tundra is the frame for the tundra variants (generic, Wetland,
// Shrub and Graminoid). The variants share behavior; the parameter
// bundle looked up through the frame's vegetation code tells them
// apart.
type Tundra struct {
	FrameBase

	// BasalArea is the accumulated spruce basal area on the cell,
	// the surrogate for woody biomass that triggers the
	// tundra→spruce transition.
	BasalArea float64 `desc:"Spruce basal area" units:"m²/ha"`

	// YearOfEstablishment tracks when spruce seedlings took hold;
	// -history while the cell is recovering from a burn.
	YearOfEstablishment int

	// Degrees is the degree-year tally. It is set to -1 when the
	// frame is built and after a burn; no code path accumulates it.
	Degrees float64
}

// newTundra builds a tundra frame at landscape load. treeDensity
// comes from the tree density input layer; non-positive density
// starts the cell bare.
func newTundra(L *Landscape, base FrameBase, treeDensity int) *Tundra {
	sp := L.Registry.Species(base.Veg)
	t := &Tundra{FrameBase: base}
	if treeDensity > 0 && sp != nil {
		t.BasalArea = sp.InitialBasalArea(L.Rand)
	}
	t.YearOfEstablishment = 0
	t.Degrees = -1
	return t
}

// newTundraFrom builds a tundra frame replacing a frame of another
// type, as when spruce over a tundra sub-canopy re-establishes as
// tundra after a burn.
func newTundraFrom(L *Landscape, prev *FrameBase, veg VegType) *Tundra {
	base := prev.successor(L)
	base.Veg = veg
	t := &Tundra{FrameBase: base}
	t.YearOfEstablishment = 0
	t.Degrees = -1
	return t
}

// QueryReply reports the cell's basal area scaled by the caller's
// kernel weight.
func (t *Tundra) QueryReply(L *Landscape, weight float64) float64 {
	return t.BasalArea * weight
}

// AsFloat implements the tundra basal area map.
func (t *Tundra) AsFloat(m MapType) (float32, error) {
	if m == MapTundraBasalArea {
		return float32(t.BasalArea), nil
	}
	return t.FrameBase.AsFloat(m)
}

// Success is the tundra succession rule: post-burn reset, then seed
// rain from neighboring spruce through the fat-tailed dispersal
// kernel, then basal area growth, and finally the transition to
// spruce once basal area crosses the threshold.
func (t *Tundra) Success(L *Landscape) (Frame, error) {
	sp := L.Registry.Species(t.Veg)
	if sp == nil {
		return nil, invariantf("tundra frame at (%d,%d) has no species bundle for code %d",
			t.Row, t.Col, t.Veg)
	}

	// A burn last year resets the stand: degree-years start over and
	// the canopy prediction reverts to the tundra type itself.
	if t.YearOfLastBurn >= 0 && L.Year-t.YearOfLastBurn == 1 {
		t.YearEstablished = L.Year
		t.SpeciesSubCanopy = t.Veg
		t.BasalArea = 0
		t.YearOfEstablishment = -sp.History
		t.Degrees = -1
	}

	// Weighted neighborhood seed source, own contribution excluded.
	seeds := L.NeighborsSuccess(t.Row, t.Col, sp.SeedRange, func(n Frame, d float64) float64 {
		return n.QueryReply(L, FatTail(d, sp.SeedSource[0], sp.SeedSource[1]))
	})
	seeds -= t.QueryReply(L, FatTail(0, sp.SeedSource[0], sp.SeedSource[1]))
	seeds *= sp.SeedBasalArea
	seeds /= sp.Seedling

	growthFactor := 0.
	if L.Registry.ClimateCoupling && L.Climate != nil {
		temp, precip := L.Climate(L.Year)
		growthFactor = (sp.ClimGrowth[0] + sp.ClimGrowth[1]*temp + sp.ClimGrowth[2]*precip) /
			1000. * sp.MeanGrowth
	}

	if t.BasalArea == 0 && seeds > 0 {
		t.YearOfEstablishment = L.Year
	}
	t.BasalArea += t.BasalArea * growthFactor * sp.CalFactor[0]
	t.BasalArea += seeds * sp.SeedlingBasalArea * sp.CalFactor[1]

	if t.BasalArea >= sp.SpruceTransitionBasalArea {
		switch L.Registry.Kind(t.SpeciesSubCanopy) {
		case KindWhiteSpruce:
			return newWSpruceFrom(L, &t.FrameBase), nil
		case KindBlackSpruce:
			return newBSpruceFrom(L, &t.FrameBase), nil
		default:
			// No canopy prediction: evaluate the site.
			if Site(t.Site, 0.5) > L.Rand.Uniform() {
				return newBSpruceFrom(L, &t.FrameBase), nil
			}
			return newWSpruceFrom(L, &t.FrameBase), nil
		}
	}
	return nil, nil
}
