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

// Decid is the deciduous frame. Deciduous stands are a post-fire
// stage: they hold the site for the species' history window and then
// return to the spruce type they replaced.
type Decid struct {
	FrameBase

	// Trajectory is the spruce type this stand succeeds back to.
	Trajectory VegType `desc:"Spruce type the stand returns to"`
}

// newDecidFrom builds a deciduous frame replacing a burned spruce
// stand.
func newDecidFrom(L *Landscape, prev *FrameBase, trajectory VegType) *Decid {
	base := prev.successor(L)
	id, _ := L.Registry.ID("Decid")
	base.Veg = id
	base.SpeciesSubCanopy = trajectory
	return &Decid{FrameBase: base, Trajectory: trajectory}
}

// newDecid builds a deciduous frame at landscape load. The input
// sub-canopy layer supplies the trajectory; black spruce is assumed
// when the layer has none.
func newDecid(L *Landscape, base FrameBase) *Decid {
	traj := base.SpeciesSubCanopy
	if L.Registry.Kind(traj) != KindBlackSpruce && L.Registry.Kind(traj) != KindWhiteSpruce {
		traj, _ = L.Registry.ID("BSpruce")
		base.SpeciesSubCanopy = traj
	}
	return &Decid{FrameBase: base, Trajectory: traj}
}

// AsByte implements the deciduous species trajectory map.
func (d *Decid) AsByte(m MapType) (byte, error) {
	if m == MapDecidSpeciesTrajectory {
		return byte(d.Trajectory), nil
	}
	return d.FrameBase.AsByte(m)
}

// Success restarts the stand after a burn and otherwise transitions
// back toward spruce once the stand outlives the species' window.
func (d *Decid) Success(L *Landscape) (Frame, error) {
	sp := L.Registry.Species(d.Veg)
	if sp == nil {
		return nil, invariantf("deciduous frame at (%d,%d) has no species bundle for code %d",
			d.Row, d.Col, d.Veg)
	}

	if d.YearOfLastBurn >= 0 && L.Year-d.YearOfLastBurn == 1 {
		// Deciduous reburns in place; the clock restarts.
		d.YearEstablished = L.Year
		return nil, nil
	}

	if d.Age(L.Year) >= sp.History {
		switch L.Registry.Kind(d.Trajectory) {
		case KindWhiteSpruce:
			return newWSpruceFrom(L, &d.FrameBase), nil
		default:
			return newBSpruceFrom(L, &d.FrameBase), nil
		}
	}
	return nil, nil
}
