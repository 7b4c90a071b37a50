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

// spruce carries the state shared by the black and white spruce
// frames. The two concrete types exist so successional code can
// produce one or the other explicitly.
type spruce struct {
	FrameBase

	BasalArea float64 `desc:"Stand basal area" units:"m²/ha"`
}

// QueryReply reports the stand's basal area scaled by the caller's
// kernel weight; spruce stands are the seed source for the tundra
// transition.
func (s *spruce) QueryReply(L *Landscape, weight float64) float64 {
	return s.BasalArea * weight
}

// grow advances the stand's basal area by the species' mean annual
// growth.
func (s *spruce) grow(L *Landscape) {
	if sp := L.Registry.Species(s.Veg); sp != nil {
		s.BasalArea += sp.MeanGrowth
	}
}

// postFire decides the successor of a spruce stand that burned last
// year: moderate or worse severity converts the stand to deciduous on
// suitable sites; on tundra substrates (a tundra sub-canopy
// prediction) the cell re-establishes as that tundra type.
func (s *spruce) postFire(L *Landscape) Frame {
	if s.YearOfLastBurn < 0 || L.Year-s.YearOfLastBurn != 1 {
		return nil
	}
	if k := L.Registry.Kind(s.SpeciesSubCanopy); k == KindTundra {
		return newTundraFrom(L, &s.FrameBase, s.SpeciesSubCanopy)
	}
	if s.BurnSeverity >= SeverityModerate && s.Site > 0 {
		return newDecidFrom(L, &s.FrameBase, s.Veg)
	}
	// Low severity: the stand reburns in place and restarts its age.
	s.YearEstablished = L.Year
	s.BasalArea = 0
	return nil
}

// BSpruce is the black spruce frame.
type BSpruce struct {
	spruce
}

func newBSpruceFrom(L *Landscape, prev *FrameBase) *BSpruce {
	base := prev.successor(L)
	id, _ := L.Registry.ID("BSpruce")
	base.Veg = id
	f := &BSpruce{spruce{FrameBase: base}}
	if sp := L.Registry.Species(id); sp != nil {
		f.BasalArea = sp.SpruceEstBasalArea
	}
	return f
}

// newBSpruce builds a black spruce frame at landscape load.
func newBSpruce(L *Landscape, base FrameBase) *BSpruce {
	f := &BSpruce{spruce{FrameBase: base}}
	if sp := L.Registry.Species(base.Veg); sp != nil {
		f.BasalArea = sp.SpruceEstBasalArea
	}
	return f
}

// Success ages the stand and applies the post-fire transition rules.
func (s *BSpruce) Success(L *Landscape) (Frame, error) {
	if next := s.postFire(L); next != nil {
		return next, nil
	}
	s.grow(L)
	return nil, nil
}

// WSpruce is the white spruce frame.
type WSpruce struct {
	spruce
}

func newWSpruceFrom(L *Landscape, prev *FrameBase) *WSpruce {
	base := prev.successor(L)
	id, _ := L.Registry.ID("WSpruce")
	base.Veg = id
	f := &WSpruce{spruce{FrameBase: base}}
	if sp := L.Registry.Species(id); sp != nil {
		f.BasalArea = sp.SpruceEstBasalArea
	}
	return f
}

// newWSpruce builds a white spruce frame at landscape load.
func newWSpruce(L *Landscape, base FrameBase) *WSpruce {
	f := &WSpruce{spruce{FrameBase: base}}
	if sp := L.Registry.Species(base.Veg); sp != nil {
		f.BasalArea = sp.SpruceEstBasalArea
	}
	return f
}

// Success ages the stand and applies the post-fire transition rules.
func (s *WSpruce) Success(L *Landscape) (Frame, error) {
	if next := s.postFire(L); next != nil {
		return next, nil
	}
	s.grow(L)
	return nil, nil
}
