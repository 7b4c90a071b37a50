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
	"sort"

	"github.com/rarutter/alfresco/rasterio"
)

// SuppressionTransition schedules a change of fire-suppression policy
// at a given year: new class multipliers, new resource thresholds and
// optionally a new suppression-class map.
type SuppressionTransition struct {
	Year               int
	HasNewMap          bool
	MapFile            string
	Classes            [6]float64
	ThresholdFireSize  int
	ThresholdIgnitions int
}

// SuppressionState is the landscape's active suppression policy.
// When Off, every cell's multiplier is 1. Suppression stops being
// applied for the rest of a year once the burned-cell count exceeds
// ThresholdFireSize or the ignition count exceeds ThresholdIgnitions.
type SuppressionState struct {
	On                 bool
	Classes            [6]float64
	ThresholdFireSize  int
	ThresholdIgnitions int
}

// SuppressionMultiplier returns the spread multiplier for cell i
// under the active policy.
func (L *Landscape) SuppressionMultiplier(i int) float64 {
	s := &L.Suppression
	if !s.On {
		return 1
	}
	if L.TotalBurned > s.ThresholdFireSize || L.NumIgnitions > s.ThresholdIgnitions {
		// Suppression resources are exhausted for the year.
		return 1
	}
	k := L.SuppressionClass[i]
	if k <= 0 || k >= len(s.Classes) {
		return 1
	}
	return s.Classes[k]
}

// LoadSuppressionTransitions reads the scheduled suppression
// transitions. The transition arrays are parallel; every array must
// carry one entry per scheduled year (Classes carries six per year).
func LoadSuppressionTransitions(cfg Config) ([]SuppressionTransition, error) {
	if !cfg.HasKey("Fire.Suppression.Tran.Years") {
		return nil, nil
	}
	k := &keyReader{cfg: cfg}
	years, err := cfg.IntSlice("Fire.Suppression.Tran.Years")
	if err != nil {
		return nil, err
	}
	n := len(years)
	classes := k.floats("Fire.Suppression.Tran.Classes", 6*n)
	sizes := k.floats("Fire.Suppression.Tran.ThresholdFireSizes", n)
	igns := k.floats("Fire.Suppression.Tran.ThresholdIgnitions", n)
	var files []string
	if cfg.HasKey("Fire.Suppression.Tran.Files") {
		if files, err = cfg.StringSlice("Fire.Suppression.Tran.Files"); err != nil {
			return nil, err
		}
		if len(files) != n {
			return nil, configError("Fire.Suppression.Tran.Files",
				"expected array size of %d but found %d", n, len(files))
		}
	}
	if k.err != nil {
		return nil, k.err
	}

	ts := make([]SuppressionTransition, n)
	for i := range ts {
		ts[i].Year = years[i]
		copy(ts[i].Classes[:], classes[6*i:6*i+6])
		ts[i].ThresholdFireSize = int(sizes[i])
		ts[i].ThresholdIgnitions = int(igns[i])
		if files != nil && files[i] != "" {
			ts[i].HasNewMap = true
			ts[i].MapFile = files[i]
		}
	}
	sort.Slice(ts, func(a, b int) bool { return ts[a].Year < ts[b].Year })
	return ts, nil
}

func (L *Landscape) installSuppressionTransition(t SuppressionTransition) error {
	L.Suppression.On = true
	L.Suppression.Classes = t.Classes
	L.Suppression.ThresholdFireSize = t.ThresholdFireSize
	L.Suppression.ThresholdIgnitions = t.ThresholdIgnitions
	if t.HasNewMap {
		supp, err := L.Raster.Read(t.MapFile, rasterio.Byte)
		if err != nil {
			return &IOError{Path: t.MapFile, Err: err}
		}
		L.LoadSuppressionMap(supp)
	}
	return nil
}

// InitSuppression installs the most recent transition scheduled at or
// before the first simulated year. With nothing scheduled the policy
// stays disabled: all-zero classes and no thresholds.
func InitSuppression(transitions []SuppressionTransition) LandscapeManipulator {
	return func(L *Landscape) error {
		for i := range transitions {
			if transitions[i].Year <= L.FirstYear {
				if err := L.installSuppressionTransition(transitions[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// ApplySuppressionTransitions fires at most one scheduled transition
// per year, when its year arrives. Transitions beyond the simulated
// horizon never take effect.
func ApplySuppressionTransitions(transitions []SuppressionTransition) LandscapeManipulator {
	return func(L *Landscape) error {
		for i := range transitions {
			if transitions[i].Year == L.Year && L.Year != L.FirstYear {
				return L.installSuppressionTransition(transitions[i])
			}
		}
		return nil
	}
}
