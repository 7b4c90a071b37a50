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
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/Knetic/govaluate"
	"github.com/cenkalti/backoff"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"

	"github.com/rarutter/alfresco/rasterio"
)

// EncodeFireScar packs a cell's burn history into the fire-scar map
// value: ±year.fireID, negative when the cell was the ignition
// origin, with the fire ID carried in the fractional digits after a
// zero separator (year 2024, fire 42, origin → −2024.042).
func EncodeFireScar(yearOfLastBurn, fireScarID int, origin bool) float64 {
	scale := 0.01
	for lim := 10; fireScarID >= lim && lim <= 10000000; lim *= 10 {
		scale /= 10
	}
	v := float64(yearOfLastBurn) + float64(fireScarID)*scale
	if origin {
		v = -v
	}
	return v
}

// DecodeFireScar recovers (yearOfLastBurn, fireScarID, origin) from a
// fire-scar map value. Exact for fire IDs below 10⁷ without trailing
// zeros.
func DecodeFireScar(v float64) (yearOfLastBurn, fireScarID int, origin bool) {
	origin = v < 0
	v = math.Abs(v)
	yearOfLastBurn = int(v)
	id := int(math.Round((v - float64(yearOfLastBurn)) * 1e8))
	for id != 0 && id%10 == 0 {
		id /= 10
	}
	return yearOfLastBurn, id, origin
}

// mapDataType gives the file datatype each map type is written with.
func mapDataType(m MapType) rasterio.DataType {
	switch m {
	case MapAge, MapFireAge:
		return rasterio.Int32
	case MapSiteVariable, MapFireScar, MapTundraBasalArea:
		return rasterio.Float32
	default:
		return rasterio.Byte
	}
}

// mapValue projects one frame onto a map type, returning the raster
// value or the datatype's nodata sentinel.
func (L *Landscape) mapValue(f Frame, m MapType) (float64, error) {
	b := f.Base()
	switch m {
	case MapVegetation:
		return float64(f.Type()), nil
	case MapAge:
		return float64(b.Age(L.Year)), nil
	case MapSubcanopy:
		return float64(b.SpeciesSubCanopy), nil
	case MapSiteVariable:
		return b.Site, nil
	case MapFireAge:
		if b.YearOfLastBurn >= 0 {
			return float64(b.YearOfLastBurn), nil
		}
		return float64(rasterio.NodataInt32), nil
	case MapFireScar:
		if b.YearOfLastBurn >= 0 {
			return EncodeFireScar(b.YearOfLastBurn, b.FireScarID, b.LastBurnWasOrigin), nil
		}
		return float64(rasterio.NodataFloat32), nil
	case MapBurnSeverity:
		if b.YearOfLastBurn == L.Year {
			return float64(b.BurnSeverity), nil
		}
		return float64(rasterio.NodataByte), nil
	case MapBurnSeverityHistory:
		return float64(b.BurnSeverity), nil
	case MapDecidSpeciesTrajectory:
		if L.Registry.Kind(f.Type()) == KindDeciduous {
			v, err := f.AsByte(m)
			return float64(v), err
		}
		return float64(rasterio.NodataByte), nil
	case MapTundraBasalArea:
		if L.Registry.Kind(f.Type()) == KindTundra {
			v, err := f.AsFloat(m)
			return float64(v), err
		}
		return float64(rasterio.NodataFloat32), nil
	}
	return 0, invariantf("undefined map type %d", m)
}

// MapStat is one time-keyed map-output request. A map is written for
// replicate rep and year iff (rep−RepStart) mod RepFreq == 0 and
// (year−YearStart) mod YearFreq == 0.
type MapStat struct {
	File  string // output name pattern with [code], [rep], [year] stand-ins
	Code  string
	Flags int

	RepStart, RepFreq   int
	YearStart, YearFreq int

	// Expr, when set, writes a derived float map evaluated per cell
	// instead of a direct projection.
	Expr string

	mapType MapType
	expr    *govaluate.EvaluableExpression
}

// ShouldWrite applies the request's replicate and year gating.
func (m *MapStat) ShouldWrite(rep, year int) bool {
	if rep < m.RepStart || year < m.YearStart {
		return false
	}
	repFreq, yearFreq := m.RepFreq, m.YearFreq
	if repFreq < 1 {
		repFreq = 1
	}
	if yearFreq < 1 {
		yearFreq = 1
	}
	return (rep-m.RepStart)%repFreq == 0 && (year-m.YearStart)%yearFreq == 0
}

func (m *MapStat) fileName(rep, year int) string {
	name := m.File
	name = strings.Replace(name, "[code]", m.Code, -1)
	name = strings.Replace(name, "[rep]", strconv.Itoa(rep), -1)
	name = strings.Replace(name, "[year]", strconv.Itoa(year), -1)
	return name
}

// HabitatStat tallies the cells matching one habitat definition:
// type within VegTypes and age within [MinAge, MaxAge].
type HabitatStat struct {
	Name     string
	VegTypes []VegType
	MinAge   int
	MaxAge   int

	// Counts holds one tally per simulated year of the replicate.
	Counts []int
}

func (h *HabitatStat) matches(L *Landscape, f Frame) bool {
	age := f.Base().Age(L.Year)
	if age < h.MinAge || age > h.MaxAge {
		return false
	}
	for _, v := range h.VegTypes {
		if f.Type() == v {
			return true
		}
	}
	return false
}

// StatCollection accumulates one replicate's statistics. Parallel
// replicate harnesses give each worker its own collection and reduce
// afterwards.
type StatCollection struct {
	Rep       int
	FirstYear int
	NumYears  int
	OutputDir string

	Maps     []MapStat
	Habitats []*HabitatStat

	// Fires holds the year's fire-size tuples, one slice per year.
	Fires [][]FireSizeRecord

	// BurnBySuppClass is the NumYears×6 matrix of burned cells
	// partitioned by suppression class.
	BurnBySuppClass *sparse.DenseArray

	// AnnualBurn and FireSizes run across the replicate's years.
	AnnualBurn stats.Stats
	FireSizes  stats.Stats
}

// NewStatCollection reads the stat configuration for one replicate.
func NewStatCollection(cfg Config, rep int) (*StatCollection, error) {
	k := &keyReader{cfg: cfg}
	s := &StatCollection{
		Rep:       rep,
		FirstYear: k.intval("FirstYear"),
		NumYears:  k.intval("Years"),
	}
	if cfg.HasKey("Output.Dir") {
		s.OutputDir = k.str("Output.Dir")
	}
	if k.err != nil {
		return nil, k.err
	}
	s.BurnBySuppClass = sparse.ZerosDense(s.NumYears, 6)
	s.Fires = make([][]FireSizeRecord, s.NumYears)

	if err := s.loadMapStats(cfg); err != nil {
		return nil, err
	}
	if err := s.loadHabitatStats(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StatCollection) loadMapStats(cfg Config) error {
	if !cfg.HasKey("MapStats.Files") {
		return nil
	}
	files, err := cfg.StringSlice("MapStats.Files")
	if err != nil {
		return err
	}
	n := len(files)
	k := &keyReader{cfg: cfg}
	codes := make([]string, n)
	if cfg.HasKey("MapStats.Codes") {
		if codes, err = cfg.StringSlice("MapStats.Codes"); err != nil {
			return err
		}
		if len(codes) != n {
			return configError("MapStats.Codes", "expected array size of %d but found %d", n, len(codes))
		}
	}
	flags := k.floats("MapStats.Flags", n)
	repStarts := k.floats("MapStats.RepStart", n)
	repFreqs := k.floats("MapStats.RepFreq", n)
	yearStarts := k.floats("MapStats.YearStart", n)
	yearFreqs := k.floats("MapStats.YearFreq", n)
	var exprs []string
	if cfg.HasKey("MapStats.Exprs") {
		if exprs, err = cfg.StringSlice("MapStats.Exprs"); err != nil {
			return err
		}
		if len(exprs) != n {
			return configError("MapStats.Exprs", "expected array size of %d but found %d", n, len(exprs))
		}
	}
	if k.err != nil {
		return k.err
	}

	s.Maps = make([]MapStat, n)
	for i := range s.Maps {
		m := &s.Maps[i]
		m.File = files[i]
		m.Code = codes[i]
		m.Flags = int(flags[i])
		m.RepStart = int(repStarts[i])
		m.RepFreq = int(repFreqs[i])
		m.YearStart = int(yearStarts[i])
		m.YearFreq = int(yearFreqs[i])
		if m.mapType, err = MapTypeFromFlags(m.Flags); err != nil {
			return err
		}
		if exprs != nil && exprs[i] != "" {
			m.Expr = exprs[i]
			if m.expr, err = govaluate.NewEvaluableExpression(m.Expr); err != nil {
				return configError("MapStats.Exprs", "parsing %q: %v", m.Expr, err)
			}
		}
	}
	return nil
}

func (s *StatCollection) loadHabitatStats(cfg Config) error {
	if !cfg.HasKey("HabitatStats.Names") {
		return nil
	}
	names, err := cfg.StringSlice("HabitatStats.Names")
	if err != nil {
		return err
	}
	for _, name := range names {
		k := &keyReader{cfg: cfg}
		vegs, err := cfg.IntSlice("HabitatStats." + name + ".VegTypes")
		if err != nil {
			return err
		}
		h := &HabitatStat{
			Name:   name,
			MinAge: k.intval("HabitatStats." + name + ".MinAge"),
			MaxAge: k.intval("HabitatStats." + name + ".MaxAge"),
			Counts: make([]int, s.NumYears),
		}
		if k.err != nil {
			return k.err
		}
		for _, v := range vegs {
			h.VegTypes = append(h.VegTypes, VegType(v))
		}
		s.Habitats = append(s.Habitats, h)
	}
	return nil
}

func (s *StatCollection) yearIndex(L *Landscape) int { return L.Year - s.FirstYear }

// Collect returns the statistics phase: habitat tallies, the year's
// fire-size tuples, and the burn partition by suppression class.
func (s *StatCollection) Collect() LandscapeManipulator {
	return func(L *Landscape) error {
		y := s.yearIndex(L)
		if y < 0 || y >= s.NumYears {
			return invariantf("statistics collected for year %d outside the replicate horizon", L.Year)
		}

		for _, h := range s.Habitats {
			n := 0
			for _, f := range L.Frames {
				if h.matches(L, f) {
					n++
				}
			}
			h.Counts[y] = n
		}

		s.Fires[y] = append([]FireSizeRecord(nil), L.SeasonFires...)
		for _, rec := range L.SeasonFires {
			s.FireSizes.Update(float64(rec.Cells))
		}
		s.AnnualBurn.Update(float64(L.TotalBurned))
		for c, n := range L.BurnPartitionBySuppClass {
			s.BurnBySuppClass.Set(float64(n), y, c)
		}
		return nil
	}
}

// WriteMaps returns the map-output phase. Writes happen synchronously
// at year end; transient failures retry with exponential backoff
// before the year is allowed to fail.
func (s *StatCollection) WriteMaps() LandscapeManipulator {
	return func(L *Landscape) error {
		for i := range s.Maps {
			m := &s.Maps[i]
			if !m.ShouldWrite(s.Rep, L.Year) {
				continue
			}
			data, dt, err := s.buildMap(L, m)
			if err != nil {
				return err
			}
			path := filepath.Join(s.OutputDir, m.fileName(s.Rep, L.Year))
			write := func() error { return L.Raster.Write(path, data, dt) }
			notify := func(err error, d time.Duration) {
				logrus.WithFields(logrus.Fields{
					"file": path, "wait": d,
				}).Warnf("retrying map write: %v", err)
			}
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			if err := backoff.RetryNotify(write, b, notify); err != nil {
				return &IOError{Path: path, Err: err}
			}
		}
		return nil
	}
}

func (s *StatCollection) buildMap(L *Landscape, m *MapStat) (*sparse.DenseArray, rasterio.DataType, error) {
	data := sparse.ZerosDense(L.Rows, L.Cols)
	if m.expr != nil {
		if err := s.evalMap(L, m, data); err != nil {
			return nil, 0, err
		}
		return data, rasterio.Float32, nil
	}
	for i, f := range L.Frames {
		v, err := L.mapValue(f, m.mapType)
		if err != nil {
			return nil, 0, err
		}
		data.Elements[i] = v
	}
	return data, mapDataType(m.mapType), nil
}

// evalMap writes a derived map: the request's expression evaluated
// against each cell's variables.
func (s *StatCollection) evalMap(L *Landscape, m *MapStat, data *sparse.DenseArray) error {
	params := make(map[string]interface{}, 8)
	for i, f := range L.Frames {
		b := f.Base()
		params["Veg"] = float64(f.Type())
		params["Age"] = float64(b.Age(L.Year))
		params["Site"] = b.Site
		params["Severity"] = float64(b.BurnSeverity)
		params["Subcanopy"] = float64(b.SpeciesSubCanopy)
		if b.YearOfLastBurn >= 0 {
			params["FireAge"] = float64(L.Year - b.YearOfLastBurn)
		} else {
			params["FireAge"] = float64(-1)
		}
		params["BasalArea"] = f.QueryReply(L, 1)

		v, err := m.expr.Evaluate(params)
		if err != nil {
			return invariantf("evaluating map expression %q: %v", m.Expr, err)
		}
		switch val := v.(type) {
		case float64:
			data.Elements[i] = val
		case bool:
			if val {
				data.Elements[i] = 1
			}
		default:
			return invariantf("map expression %q returned %T; want number or bool", m.Expr, v)
		}
	}
	return nil
}

// Summary formats the replicate's running fire statistics.
func (s *StatCollection) Summary() string {
	return fmt.Sprintf("rep %d: burned/yr mean=%.1f sd=%.1f; fire size mean=%.1f sd=%.1f (n=%d)",
		s.Rep, s.AnnualBurn.Mean(), s.AnnualBurn.SampleStandardDeviation(),
		s.FireSizes.Mean(), s.FireSizes.SampleStandardDeviation(), s.FireSizes.Count())
}
