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
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Succession returns the succession driver: after the fire phase,
// every frame runs its succession rule in row-major order, and a
// non-nil result replaces the frame in place. Replacements are
// visible to cells visited later the same year.
func Succession() LandscapeManipulator {
	return func(L *Landscape) error {
		for i, f := range L.Frames {
			next, err := f.Success(L)
			if err != nil {
				return err
			}
			if next != nil {
				L.Replace(i, next)
			}
		}
		return nil
	}
}

// VegTransition forces a cell to a vegetation type at a scheduled
// year, ahead of that year's fire season.
type VegTransition struct {
	Year     int
	Row, Col int
	Veg      VegType
}

// LoadVegTransitions reads the forced-transition schedule from the
// file named by Landscape.VegTransitionFile. Each line is
// "year row col vegType"; blank lines and #-comments are skipped.
func LoadVegTransitions(cfg Config) ([]VegTransition, error) {
	if !cfg.HasKey("Landscape.VegTransitionFile") {
		return nil, nil
	}
	path, err := cfg.String("Landscape.VegTransitionFile")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	var ts []VegTransition
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var t VegTransition
		var veg int
		if _, err := fmt.Sscanf(text, "%d %d %d %d", &t.Year, &t.Row, &t.Col, &veg); err != nil {
			return nil, &IOError{Path: path,
				Err: fmt.Errorf("line %d: parsing vegetation transition: %v", line, err)}
		}
		t.Veg = VegType(veg)
		ts = append(ts, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return ts, nil
}

// ApplyVegTransitions replaces the frames of cells whose forced
// transition falls on the current year.
func ApplyVegTransitions(transitions []VegTransition) LandscapeManipulator {
	return func(L *Landscape) error {
		for _, t := range transitions {
			if t.Year != L.Year {
				continue
			}
			if !L.InBounds(t.Row, t.Col) {
				return invariantf("vegetation transition targets (%d,%d) outside the %d×%d landscape",
					t.Row, t.Col, L.Rows, L.Cols)
			}
			if !L.Registry.Valid(t.Veg) {
				return invariantf("vegetation transition targets unregistered type %d", t.Veg)
			}
			i := L.Index(t.Row, t.Col)
			base := L.Frames[i].Base().successor(L)
			base.Veg = t.Veg
			base.SpeciesSubCanopy = t.Veg
			next, err := L.newFrameForVeg(t.Veg, base, 0)
			if err != nil {
				return err
			}
			L.Replace(i, next)
		}
		return nil
	}
}
