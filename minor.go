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

// The minor frame types hold their vegetation state without
// successional transitions.

// Grassland burns but does not transition.
type Grassland struct {
	FrameBase
}

// Success implements Frame.
func (g *Grassland) Success(L *Landscape) (Frame, error) { return nil, nil }

// BarrenLichenMoss is sparsely vegetated ground.
type BarrenLichenMoss struct {
	FrameBase
}

// Success implements Frame.
func (b *BarrenLichenMoss) Success(L *Landscape) (Frame, error) { return nil, nil }

// TemperateRainforest occurs along the coastal margin of the domain.
type TemperateRainforest struct {
	FrameBase
}

// Success implements Frame.
func (t *TemperateRainforest) Success(L *Landscape) (Frame, error) { return nil, nil }

// NoVeg marks cells outside the modeled landscape. It never burns and
// never transitions.
type NoVeg struct {
	FrameBase
}

// FireProbability implements Frame: no-vegetation cells never ignite.
func (n *NoVeg) FireProbability(L *Landscape) float64 { return 0 }

// Success implements Frame.
func (n *NoVeg) Success(L *Landscape) (Frame, error) { return nil, nil }
