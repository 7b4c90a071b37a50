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

import (
	"math"
	"testing"
)

// No-vegetation cells neither ignite nor carry fire, even surrounded
// by a fully flammable landscape.
func TestNoVegNeverBurns(t *testing.T) {
	cfg := testConfig()
	cfg["BSpruce.FireProb"] = 1.0
	L := newTestLandscape(t, cfg, 3, 3, testBSpruce, 50)

	i := L.Index(1, 1)
	base := *L.Frames[i].Base()
	base.Veg = testNoVeg
	L.Replace(i, &NoVeg{FrameBase: base})

	L.RunFuncs = []LandscapeManipulator{YearStart(), Fire(), Succession()}
	if err := L.Run(); err != nil {
		t.Fatal(err)
	}

	center := L.At(1, 1)
	if center.Type() != testNoVeg {
		t.Errorf("NoVeg cell changed type to %d", center.Type())
	}
	if center.Base().YearOfLastBurn != NeverBurned {
		t.Errorf("NoVeg cell burned in year %d", center.Base().YearOfLastBurn)
	}
	burned := 0
	for _, f := range L.Frames {
		if f.Base().YearOfLastBurn >= 0 {
			burned++
		}
	}
	if burned != 8 {
		t.Errorf("%d cells burned; want the 8 flammable ones", burned)
	}
}

// Cells burned this year never report SeverityNone, and unburned
// cells never gain a severity.
func TestBurnSeverityAssignment(t *testing.T) {
	cfg := testConfig()
	cfg["BSpruce.FireProb"] = 1.0
	L := newTestLandscape(t, cfg, 4, 4, testBSpruce, 50)
	L.ForceIgnition(0, 0)

	for i, f := range L.Frames {
		b := f.Base()
		if b.YearOfLastBurn == L.Year && b.BurnSeverity == SeverityNone {
			t.Errorf("cell %d: burned this year with severity None", i)
		}
		if b.YearOfLastBurn == NeverBurned && b.BurnSeverity != SeverityNone {
			t.Errorf("cell %d: unburned cell carries severity %d", i, b.BurnSeverity)
		}
	}
}

// Young forest burns at low surface severity; mature stands draw from
// the crown-fire classes.
func TestSeverityAgeGate(t *testing.T) {
	cfg := testConfig()
	cfg["BSpruce.FireProb"] = 1.0
	L := newTestLandscape(t, cfg, 1, 1, testBSpruce, 5) // younger than History=30
	L.ForceIgnition(0, 0)
	if got := L.At(0, 0).Base().BurnSeverity; got != SeverityLowLSS {
		t.Errorf("young stand severity = %d; want LowLSS", got)
	}
}

func TestFireScarEncoding(t *testing.T) {
	// The documented example: year 2024, fire 42, ignition origin.
	got := EncodeFireScar(2024, 42, true)
	if math.Abs(got-(-2024.042)) > 1e-9 {
		t.Errorf("EncodeFireScar(2024, 42, true) = %v; want -2024.042", got)
	}

	cases := []struct {
		year, fireID int
		origin       bool
	}{
		{2024, 1, false},
		{2024, 7, true},
		{1950, 42, false},
		{2100, 123, true},
		{2000, 9999, false},
		{1999, 1234567, true},
	}
	for _, c := range cases {
		v := EncodeFireScar(c.year, c.fireID, c.origin)
		year, id, origin := DecodeFireScar(v)
		if year != c.year || id != c.fireID || origin != c.origin {
			t.Errorf("round trip %+v: encoded %v, decoded (%d, %d, %v)",
				c, v, year, id, origin)
		}
	}
}

// The custom spread multiplier hook scales spread without touching
// ignition.
func TestCustomSpreadMultiplier(t *testing.T) {
	cfg := testConfig()
	cfg["BSpruce.FireProb"] = 1.0
	L := newTestLandscape(t, cfg, 1, 5, testBSpruce, 50)
	L.CustomSpreadMultiplier = func(row, col, fireSizeTotal, fireNum int) float64 {
		if col >= 2 {
			return 0
		}
		return 1
	}
	L.ForceIgnition(0, 0)
	if L.TotalBurned != 2 {
		t.Errorf("burned %d cells; want 2 with spread blocked at column 2", L.TotalBurned)
	}
}

// Topographically complex cells spread at the configured factor.
func TestTopoFactor(t *testing.T) {
	cfg := testConfig()
	cfg["BSpruce.FireProb"] = 1.0
	L := newTestLandscape(t, cfg, 1, 3, testBSpruce, 50)
	L.TopoFactor = 0
	L.At(0, 1).Base().IsTopoComplex = true
	L.ForceIgnition(0, 0)
	if L.TotalBurned != 1 {
		t.Errorf("burned %d cells; want the origin only with a zero topo factor", L.TotalBurned)
	}
}
