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
	"strconv"
	"strings"

	"github.com/ctessum/sparse"

	"github.com/rarutter/alfresco/rasterio"
)

// repToken in an input file name is replaced with the replicate
// number when unique per-replicate inputs are enabled, following the
// same stand-in convention the output templates use.
const repToken = "[rep]"

func expandRep(path string, rep int) string {
	return strings.Replace(path, repToken, strconv.Itoa(rep), -1)
}

// LoadLandscape returns an initialization manipulator that reads the
// input layers and builds the frame matrix. The landscape's Registry
// and Rand must be installed before it runs; frames draw their start
// ages and initial basal areas in row-major order so the stream stays
// reproducible.
func LoadLandscape(cfg Config, rio *rasterio.IO, rep int) LandscapeManipulator {
	return func(L *Landscape) error {
		L.Rows = rio.YSize
		L.Cols = rio.XSize
		L.Raster = rio

		k := &keyReader{cfg: cfg}
		L.CellSize = k.float("CellSize")
		L.FirstYear = k.intval("FirstYear")
		L.NumYears = k.intval("Years")
		L.Year = L.FirstYear

		uniquePerRep := false
		if cfg.HasKey("Landscape.UseUniqueVegAndAgePerRep") {
			uniquePerRep = k.boolean("Landscape.UseUniqueVegAndAgePerRep")
		}
		L.TopoFactor = 1
		if cfg.HasKey("Fire.TopoFactor") {
			L.TopoFactor = k.float("Fire.TopoFactor")
		}
		if k.err != nil {
			return k.err
		}

		read := func(key string, dt rasterio.DataType, required bool) (*sparse.DenseArray, error) {
			if !cfg.HasKey(key) {
				if required {
					return nil, configError(key, "missing required key")
				}
				return nil, nil
			}
			path, err := cfg.String(key)
			if err != nil {
				return nil, err
			}
			if uniquePerRep {
				path = expandRep(path, rep)
			}
			a, err := rio.Read(path, dt)
			if err != nil {
				return nil, &IOError{Path: path, Err: err}
			}
			return a, nil
		}

		var err error
		if L.VegInput, err = read("Landscape.VegInputFile", rasterio.Byte, true); err != nil {
			return err
		}
		if L.AgeInput, err = read("Landscape.AgeInputFile", rasterio.Int32, true); err != nil {
			return err
		}
		if L.SiteInput, err = read("Landscape.SiteInputFile", rasterio.Float32, true); err != nil {
			return err
		}
		if L.Topo, err = read("Landscape.TopoInputFile", rasterio.Int32, false); err != nil {
			return err
		}
		if L.TreeDensity, err = read("Landscape.TreeDensityInputFile", rasterio.Int32, false); err != nil {
			return err
		}
		if L.BurnSeverityInput, err = read("Landscape.BurnSeverityInputFile", rasterio.Byte, false); err != nil {
			return err
		}
		if L.HistoricalFire, err = read("Fire.HistoricalFireInputFile", rasterio.Int32, false); err != nil {
			return err
		}
		if L.IgnitionFactorInput, err = read("Fire.IgnitionFactorInputFile", rasterio.Float32, false); err != nil {
			return err
		}
		if L.SensitivityInput, err = read("Fire.SensitivityInputFile", rasterio.Float32, false); err != nil {
			return err
		}

		L.SuppressionClass = make([]int, L.Rows*L.Cols)
		if cfg.HasKey("Fire.Suppression.InputFile") {
			supp, err := read("Fire.Suppression.InputFile", rasterio.Byte, false)
			if err != nil {
				return err
			}
			L.LoadSuppressionMap(supp)
		}

		if L.Registry.ClimateCoupling {
			if err := loadClimate(cfg, L); err != nil {
				return err
			}
		}

		return L.buildFrames()
	}
}

func loadClimate(cfg Config, L *Landscape) error {
	k := &keyReader{cfg: cfg}
	temps := k.floats("Climate.Temp", 0)
	precips := k.floats("Climate.Precip", 0)
	if k.err != nil {
		return k.err
	}
	if len(temps) != len(precips) {
		return configError("Climate.Precip",
			"expected array size of %d to match Climate.Temp but found %d", len(temps), len(precips))
	}
	first := L.FirstYear
	L.Climate = func(year int) (float64, float64) {
		i := year - first
		if i < 0 || i >= len(temps) {
			return 0, 0
		}
		return temps[i], precips[i]
	}
	return nil
}

// buildFrames constructs one frame per cell from the input layers.
func (L *Landscape) buildFrames() error {
	L.Frames = make([]Frame, L.Rows*L.Cols)
	for row := 0; row < L.Rows; row++ {
		for col := 0; col < L.Cols; col++ {
			i := L.Index(row, col)
			f, err := L.newFrameFromInputs(row, col, i)
			if err != nil {
				return err
			}
			L.Frames[i] = f
		}
	}
	return nil
}

func (L *Landscape) layer(a *sparse.DenseArray, i int, def float64) float64 {
	if a == nil {
		return def
	}
	return a.Elements[i]
}

func (L *Landscape) newFrameFromInputs(row, col, i int) (Frame, error) {
	veg := VegType(L.Registry.NoVeg)
	if v := L.VegInput.Elements[i]; v != float64(rasterio.NodataByte) {
		veg = VegType(byte(v))
	}
	if !L.Registry.Valid(veg) {
		return nil, invariantf("vegetation input holds unregistered type %d at (%d,%d)",
			veg, row, col)
	}

	base := FrameBase{
		Row:                row,
		Col:                col,
		Veg:                veg,
		YearOfLastBurn:     NeverBurned,
		SpeciesSubCanopy:   veg,
		Site:               L.layer(L.SiteInput, i, 0),
		IsTopoComplex:      L.layer(L.Topo, i, 0) > 0,
		FireIgnitionFactor: L.layer(L.IgnitionFactorInput, i, 1),
		FireSensitivity:    L.layer(L.SensitivityInput, i, 1),
	}
	if base.Site == float64(rasterio.NodataFloat32) {
		base.Site = 0
	}

	// Stand age: from the age layer when present, otherwise drawn
	// from the type's start-age distribution.
	age := int(L.layer(L.AgeInput, i, float64(rasterio.NodataInt32)))
	if age == int(rasterio.NodataInt32) || age < 0 {
		if sp := L.Registry.Species(veg); sp != nil {
			age = sp.StartAge(L.Rand)
		} else {
			age = 0
		}
	}
	base.YearEstablished = L.FirstYear - age
	base.YearFrameEstablished = base.YearEstablished

	if hf := L.layer(L.HistoricalFire, i, float64(rasterio.NodataInt32)); hf != float64(rasterio.NodataInt32) && hf >= 0 {
		base.YearOfLastBurn = int(hf)
	}
	if sev := L.layer(L.BurnSeverityInput, i, float64(rasterio.NodataByte)); sev != float64(rasterio.NodataByte) &&
		sev >= 0 && sev <= float64(SeverityHighHSS) {
		base.BurnSeverity = BurnSeverity(byte(sev))
	}

	density := int(L.layer(L.TreeDensity, i, 0))
	if density == int(rasterio.NodataInt32) {
		density = 0
	}
	return L.newFrameForVeg(veg, base, density)
}

// newFrameForVeg builds a frame of the behavior registered for the
// vegetation code.
func (L *Landscape) newFrameForVeg(veg VegType, base FrameBase, treeDensity int) (Frame, error) {
	switch L.Registry.Kind(veg) {
	case KindTundra:
		return newTundra(L, base, treeDensity), nil
	case KindBlackSpruce:
		return newBSpruce(L, base), nil
	case KindWhiteSpruce:
		return newWSpruce(L, base), nil
	case KindDeciduous:
		return newDecid(L, base), nil
	case KindGrassland:
		return &Grassland{FrameBase: base}, nil
	case KindBarrenLichenMoss:
		return &BarrenLichenMoss{FrameBase: base}, nil
	case KindTemperateRainforest:
		return &TemperateRainforest{FrameBase: base}, nil
	case KindNoVeg:
		return &NoVeg{FrameBase: base}, nil
	}
	return nil, invariantf("no frame behavior for vegetation type %d", veg)
}

// LoadSuppressionMap installs a suppression-class raster, clamping
// unknown classes to 0 (no suppression).
func (L *Landscape) LoadSuppressionMap(supp *sparse.DenseArray) {
	if supp == nil {
		return
	}
	for i, v := range supp.Elements {
		c := int(v)
		if v == float64(rasterio.NodataByte) || c < 0 || c > 5 {
			c = 0
		}
		L.SuppressionClass[i] = c
	}
}
