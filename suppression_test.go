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

func suppressionTestConfig() ConfigMap {
	cfg := testConfig()
	cfg["Fire.Suppression.Tran.Years"] = []int{2002, 2004, 2050}
	cfg["Fire.Suppression.Tran.Classes"] = []float64{
		1, 0.5, 0.25, 0.1, 0, 0,
		1, 0.9, 0.8, 0.7, 0.6, 0.5,
		1, 0, 0, 0, 0, 0,
	}
	cfg["Fire.Suppression.Tran.ThresholdFireSizes"] = []float64{100, 200, 300}
	cfg["Fire.Suppression.Tran.ThresholdIgnitions"] = []float64{10, 20, 30}
	return cfg
}

func TestLoadSuppressionTransitions(t *testing.T) {
	ts, err := LoadSuppressionTransitions(suppressionTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 3 {
		t.Fatalf("loaded %d transitions; want 3", len(ts))
	}
	for i := 1; i < len(ts); i++ {
		if ts[i].Year < ts[i-1].Year {
			t.Fatal("transitions not sorted ascending by year")
		}
	}
	if ts[0].Classes != [6]float64{1, 0.5, 0.25, 0.1, 0, 0} {
		t.Errorf("first transition classes = %v", ts[0].Classes)
	}
	if ts[1].ThresholdFireSize != 200 || ts[1].ThresholdIgnitions != 20 {
		t.Errorf("second transition thresholds = %d, %d; want 200, 20",
			ts[1].ThresholdFireSize, ts[1].ThresholdIgnitions)
	}
}

func TestLoadSuppressionTransitionsBadArity(t *testing.T) {
	cfg := suppressionTestConfig()
	cfg["Fire.Suppression.Tran.Classes"] = []float64{1, 0.5}
	if _, err := LoadSuppressionTransitions(cfg); err == nil {
		t.Fatal("expected an arity error for the classes array")
	}
}

// With nothing scheduled at or before the first year, suppression
// stays disabled and every multiplier is 1.
func TestSuppressionDefaultsOff(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 4, testBSpruce, 50)
	ts, err := LoadSuppressionTransitions(suppressionTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := InitSuppression(ts)(L); err != nil {
		t.Fatal(err)
	}
	if L.Suppression.On {
		t.Error("suppression enabled with no transition at the initial year")
	}
	L.SuppressionClass[2] = 4
	if got := L.SuppressionMultiplier(2); got != 1 {
		t.Errorf("disabled multiplier = %g; want 1", got)
	}
}

// Each transition installs when its year arrives; transitions beyond
// the horizon never fire.
func TestSuppressionTransitionSchedule(t *testing.T) {
	L := newTestLandscape(t, testConfig(), 1, 4, testBSpruce, 50)
	ts, err := LoadSuppressionTransitions(suppressionTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	apply := ApplySuppressionTransitions(ts)

	for year := 2000; year < 2005; year++ {
		L.Year = year
		if err := apply(L); err != nil {
			t.Fatal(err)
		}
	}
	if !L.Suppression.On {
		t.Fatal("suppression still off after its scheduled year")
	}
	if L.Suppression.ThresholdFireSize != 200 {
		t.Errorf("threshold = %d after 2004; want the 2004 transition's 200",
			L.Suppression.ThresholdFireSize)
	}

	// The 2050 transition lies beyond the 5-year horizon.
	if L.Suppression.Classes[1] != 0.9 {
		t.Errorf("classes = %v; the 2050 transition must not have fired", L.Suppression.Classes)
	}

	L.SuppressionClass[1] = 1
	if got := L.SuppressionMultiplier(1); got != 0.9 {
		t.Errorf("class-1 multiplier = %g; want 0.9", got)
	}
	if got := L.SuppressionMultiplier(0); got != 1 {
		t.Errorf("class-0 multiplier = %g; want 1", got)
	}
}

// Initial installation picks the most recent transition at or before
// the first simulated year.
func TestInitSuppressionPicksMostRecent(t *testing.T) {
	cfg := suppressionTestConfig()
	cfg["Fire.Suppression.Tran.Years"] = []int{1990, 1995, 2050}
	L := newTestLandscape(t, cfg, 1, 4, testBSpruce, 50)
	ts, err := LoadSuppressionTransitions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := InitSuppression(ts)(L); err != nil {
		t.Fatal(err)
	}
	if !L.Suppression.On {
		t.Fatal("suppression should be on from the 1995 transition")
	}
	if L.Suppression.ThresholdFireSize != 200 {
		t.Errorf("threshold = %d; want the 1995 transition's 200", L.Suppression.ThresholdFireSize)
	}
}
