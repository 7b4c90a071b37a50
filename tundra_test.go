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

import "testing"

// A tundra cell at the transition threshold on a worthless site
// becomes white spruce: Site(0, 0.5) is zero, so the site draw can
// never favor black spruce.
func TestTundraTransitionOnPoorSite(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 3, 3, testWetlandTundra, 20)
	f := L.At(1, 1).(*Tundra)
	sp := L.Registry.Species(f.Veg)
	f.BasalArea = sp.SpruceTransitionBasalArea
	f.Site = 0
	f.SpeciesSubCanopy = f.Veg // no canopy prediction

	next, err := f.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	if next == nil {
		t.Fatal("expected a transition at the basal area threshold")
	}
	if _, ok := next.(*WSpruce); !ok {
		t.Fatalf("transitioned to %T; want white spruce on a zero site", next)
	}
	if next.Base().YearEstablished != L.Year {
		t.Errorf("successor established %d; want %d", next.Base().YearEstablished, L.Year)
	}
}

// A sub-canopy prediction overrides the site draw.
func TestTundraTransitionFollowsSubCanopy(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 1, testWetlandTundra, 20)
	f := L.At(0, 0).(*Tundra)
	f.BasalArea = L.Registry.Species(f.Veg).SpruceTransitionBasalArea
	f.SpeciesSubCanopy = testBSpruce

	next, err := f.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.(*BSpruce); !ok {
		t.Fatalf("transitioned to %T; want black spruce per the sub-canopy", next)
	}
}

// A burn resets the tundra stand: basal area clears, the sub-canopy
// reverts to the tundra type, and the establishment clock restarts.
func TestTundraPostBurnReset(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 1, testGraminoidTundra, 20)
	f := L.At(0, 0).(*Tundra)
	f.BasalArea = 5
	f.SpeciesSubCanopy = testBSpruce
	f.YearOfLastBurn = L.Year
	L.Year++

	next, err := f.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Fatalf("burned tundra transitioned to %T; want reset in place", next)
	}
	if f.BasalArea != 0 {
		t.Errorf("basal area = %g after burn; want 0", f.BasalArea)
	}
	if f.SpeciesSubCanopy != testGraminoidTundra {
		t.Errorf("sub-canopy = %d after burn; want own type", f.SpeciesSubCanopy)
	}
	if f.YearEstablished != L.Year {
		t.Errorf("yearEstablished = %d; want %d", f.YearEstablished, L.Year)
	}
	sp := L.Registry.Species(f.Veg)
	if f.YearOfEstablishment != -sp.History {
		t.Errorf("yearOfEstablishment = %d; want %d", f.YearOfEstablishment, -sp.History)
	}
}

// Neighboring spruce stands seed tundra through the dispersal kernel;
// the cell's own contribution is excluded.
func TestTundraSeedRain(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 3, 3, testWetlandTundra, 20)

	// Surround the center with spruce carrying basal area.
	for _, rc := range [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}} {
		i := L.Index(rc[0], rc[1])
		base := L.Frames[i].Base()
		base.Veg = testBSpruce
		s := newBSpruce(L, *base)
		s.BasalArea = 8
		L.Replace(i, s)
	}

	f := L.At(1, 1).(*Tundra)
	before := f.BasalArea
	next, err := f.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Fatalf("transitioned to %T before reaching the threshold", next)
	}
	if f.BasalArea <= before {
		t.Errorf("basal area did not grow under seed rain: %g -> %g", before, f.BasalArea)
	}
	if f.YearOfEstablishment != L.Year {
		t.Errorf("establishment year = %d; want %d at first seed", f.YearOfEstablishment, L.Year)
	}

	// A tundra cell with no seed source stays bare.
	lone := newTestLandscape(t, testConfig(), 3, 3, testWetlandTundra, 20)
	g := lone.At(1, 1).(*Tundra)
	if _, err := g.Success(lone); err != nil {
		t.Fatal(err)
	}
	if g.BasalArea != 0 {
		t.Errorf("isolated tundra grew basal area %g from nothing", g.BasalArea)
	}
}

// Burned spruce converts to deciduous at moderate-plus severity, and
// the deciduous stand later succeeds back to the same spruce type.
func TestSpruceDecidCycle(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 1, testBSpruce, 60)
	s := L.At(0, 0).(*BSpruce)
	s.Site = 0.8
	s.YearOfLastBurn = L.Year
	s.BurnSeverity = SeverityHighLSS
	L.Year++

	next, err := s.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := next.(*Decid)
	if !ok {
		t.Fatalf("burned spruce became %T; want deciduous", next)
	}
	if d.Trajectory != testBSpruce {
		t.Errorf("trajectory = %d; want the burned spruce type", d.Trajectory)
	}

	// Age the deciduous stand past its window.
	L.Replace(0, d)
	L.Year += L.Registry.Species(d.Veg).History
	back, err := d.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := back.(*BSpruce); !ok {
		t.Fatalf("deciduous succeeded to %T; want black spruce", back)
	}
}

// Spruce over a tundra sub-canopy re-establishes as tundra after fire.
func TestSpruceTundraReestablishment(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 1, testWSpruce, 60)
	s := L.At(0, 0).(*WSpruce)
	s.SpeciesSubCanopy = testWetlandTundra
	s.YearOfLastBurn = L.Year
	s.BurnSeverity = SeverityHighHSS
	L.Year++

	next, err := s.Success(L)
	if err != nil {
		t.Fatal(err)
	}
	tu, ok := next.(*Tundra)
	if !ok {
		t.Fatalf("burned spruce became %T; want tundra", next)
	}
	if tu.Type() != testWetlandTundra {
		t.Errorf("re-established as type %d; want wetland tundra", tu.Type())
	}
}
