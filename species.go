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
)

// SpeciesKind selects the successional behavior a vegetation type
// uses. The four tundra variants share one behavior with their own
// parameter bundles.
type SpeciesKind int

const (
	KindNoVeg SpeciesKind = iota
	KindTundra
	KindBlackSpruce
	KindWhiteSpruce
	KindDeciduous
	KindGrassland
	KindBarrenLichenMoss
	KindTemperateRainforest
)

// StartAgeType is the distribution family used to assign initial
// stand ages at landscape load.
type StartAgeType int

const (
	StartAgeConstant StartAgeType = iota
	StartAgeWeibull
)

// Species is the static parameter bundle for one vegetation type,
// read once per run and immutable afterwards.
type Species struct {
	Name string
	ID   VegType
	Kind SpeciesKind

	// Fire probability: either a constant or the three-parameter age
	// regression p0 + p1·exp(p2·age).
	AgeDependentFireProb bool
	FireProb             float64
	FireProbParams       []float64

	IgnitionDepressor float64
	HumanIgnitionProb float64

	SeedRange         float64
	SeedSource        []float64 // kernel shape and exponent
	SeedBasalArea     float64
	Seedling          float64
	SeedlingBasalArea float64

	History      int
	SeedEstParms []float64
	ClimGrowth   []float64
	CalFactor    []float64
	MeanGrowth   float64

	// Tundra→spruce transition parameters.
	SpruceTransitionBasalArea float64
	SpruceEstBasalArea        float64

	StartAgeType  StartAgeType
	StartAgeParms []float64

	// ratioAK and the reliability table are precomputed at load.
	ratioAK          float64
	startAgeIntegral []float64
}

// FireProbAt returns the type's flammability at the given stand age.
func (s *Species) FireProbAt(age int) float64 {
	if !s.AgeDependentFireProb {
		return s.FireProb
	}
	p := s.FireProbParams
	return p[0] + p[1]*math.Exp(p[2]*float64(age))
}

// StartAge draws an initial stand age from the type's start-age
// distribution using the replicate stream.
func (s *Species) StartAge(rng *Rand) int {
	switch s.StartAgeType {
	case StartAgeWeibull:
		u := rng.Uniform()
		for age, p := range s.startAgeIntegral {
			if p >= u {
				return age
			}
		}
		return len(s.startAgeIntegral) - 1
	default:
		if len(s.StartAgeParms) == 0 || s.StartAgeParms[0] <= 0 {
			return 0
		}
		return 1 + int(rng.Uniform()*s.StartAgeParms[0])
	}
}

// InitialBasalArea draws a starting basal area matching the
// steady-state growth curve, so initial conditions do not perturb the
// tundra→spruce transition statistics.
func (s *Species) InitialBasalArea(rng *Rand) float64 {
	if s.ratioAK == 0 {
		return 0
	}
	return s.ratioAK * (math.Pow(s.SpruceTransitionBasalArea/s.ratioAK+1, rng.Uniform()) - 1)
}

// SpeciesRegistry maps vegetation codes to their frozen parameter
// bundles. It replaces the per-class mutable statics of older model
// generations so per-replicate re-parameterization stays safe.
type SpeciesRegistry struct {
	byID   map[VegType]*Species
	byName map[string]VegType

	NoVeg    VegType
	CellSize float64

	// ClimateCoupling enables the climate-dependent growth terms in
	// the tundra succession.
	ClimateCoupling bool
}

// Species returns the bundle for a vegetation code, or nil if the code
// has no bundle (NoVeg and unparameterized types).
func (r *SpeciesRegistry) Species(id VegType) *Species {
	return r.byID[id]
}

// ID resolves a species name to its configured vegetation code.
func (r *SpeciesRegistry) ID(name string) (VegType, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Valid reports whether a vegetation code was registered at startup.
func (r *SpeciesRegistry) Valid(id VegType) bool {
	if id == r.NoVeg {
		return true
	}
	_, ok := r.byID[id]
	return ok
}

// Kind returns the successional behavior for a vegetation code.
func (r *SpeciesRegistry) Kind(id VegType) SpeciesKind {
	if sp := r.byID[id]; sp != nil {
		return sp.Kind
	}
	return KindNoVeg
}

// speciesSpec names a species key in the configuration and the
// behavior its frames use. Grassland, Tundra, BarrenLichenMoss and
// TemperateRainforest are optional for backwards compatibility with
// older parameter files.
var speciesSpecs = []struct {
	name     string
	kind     SpeciesKind
	optional bool
	minimal  bool // no succession parameter block
}{
	{"BSpruce", KindBlackSpruce, false, false},
	{"WSpruce", KindWhiteSpruce, false, false},
	{"Decid", KindDeciduous, false, false},
	{"ShrubTundra", KindTundra, false, false},
	{"GraminoidTundra", KindTundra, false, false},
	{"WetlandTundra", KindTundra, false, false},
	{"Grassland", KindGrassland, true, false},
	{"Tundra", KindTundra, true, false},
	{"BarrenLichenMoss", KindBarrenLichenMoss, true, true},
	{"TemperateRainforest", KindTemperateRainforest, true, true},
}

// LoadSpecies reads every vegetation type present in the
// configuration, validates its parameter arrays, and freezes the
// registry. A missing required key or a wrong-arity array is a fatal
// ConfigError naming the key.
func LoadSpecies(cfg Config) (*SpeciesRegistry, error) {
	k := &keyReader{cfg: cfg}
	r := &SpeciesRegistry{
		byID:     make(map[VegType]*Species),
		byName:   make(map[string]VegType),
		NoVeg:    VegType(k.intval("NoVeg")),
		CellSize: k.float("CellSize"),
	}
	if cfg.HasKey("ClimateCoupling.Enabled") {
		r.ClimateCoupling = k.boolean("ClimateCoupling.Enabled")
	}
	if k.err != nil {
		return nil, k.err
	}

	for _, spec := range speciesSpecs {
		if spec.optional && !cfg.HasKey(spec.name) {
			continue
		}
		id := VegType(k.intval(spec.name))
		if k.err != nil {
			return nil, k.err
		}
		sp := &Species{Name: spec.name, ID: id, Kind: spec.kind}
		if !spec.minimal {
			if err := loadSpeciesParams(cfg, sp); err != nil {
				return nil, err
			}
		}
		r.byID[id] = sp
		r.byName[spec.name] = id
	}
	return r, nil
}

func loadSpeciesParams(cfg Config, sp *Species) error {
	k := &keyReader{cfg: cfg}
	name := sp.Name

	sp.HumanIgnitionProb = k.float(name + ".HumanFireProb")
	sp.AgeDependentFireProb = k.boolean(name + ".FireProb.IsAgeDependent")
	if sp.AgeDependentFireProb {
		sp.FireProbParams = k.floats(name+".FireProb", 3)
	} else {
		sp.FireProb = k.float(name + ".FireProb")
	}
	sp.IgnitionDepressor = 1
	if cfg.HasKey(name + ".IgnitionDepressor") {
		sp.IgnitionDepressor = k.float(name + ".IgnitionDepressor")
	}
	sp.History = k.intval(name + ".History")
	sp.StartAgeParms = k.floats(name+".StartAge", 0)
	switch t := k.str(name + ".StartAgeType"); t {
	case "Weibull":
		sp.StartAgeType = StartAgeWeibull
	case "Constant", "":
		sp.StartAgeType = StartAgeConstant
	default:
		return configError(name+".StartAgeType", "unknown start age distribution %q", t)
	}

	// The spruce types and deciduous share the fire and history
	// parameters; only the tundra variants carry the full seed and
	// growth block.
	if sp.Kind == KindTundra {
		sp.SeedRange = k.float(name + ".SeedRange")
		sp.SeedBasalArea = k.float(name + ".Seed.BasalArea")
		sp.Seedling = k.float(name + ".Seedling")
		sp.SeedlingBasalArea = k.float(name + ".SeedlingBA")
		sp.SpruceTransitionBasalArea = k.float(name + "->Spruce.BasalArea")
		sp.SpruceEstBasalArea = k.float(name + ".Spruce.EstBA")
		sp.MeanGrowth = k.float(name + ".MeanGrowth")
		sp.SeedEstParms = k.floats(name+".SeedEstParms", 2)
		sp.ClimGrowth = k.floats(name+".ClimGrowth", 3)
		sp.CalFactor = k.floats(name+".CalFactor", 2)
		sp.SeedSource = k.floats(name+".SeedSource", 2)
	} else {
		sp.SeedSource = []float64{1, 2}
		sp.CalFactor = []float64{0, 0}
		sp.ClimGrowth = []float64{0, 0, 0}
		sp.SeedEstParms = []float64{0, 0}
		if cfg.HasKey(name + ".MeanGrowth") {
			sp.MeanGrowth = k.float(name + ".MeanGrowth")
		}
	}
	if k.err != nil {
		return k.err
	}

	if sp.Kind == KindTundra {
		// Precompute the initial-basal-area ratio α/k.
		cellSize, err := cfg.Float("CellSize")
		if err != nil {
			return err
		}
		alpha := sp.CalFactor[1] * sp.SpruceEstBasalArea * sp.SeedBasalArea *
			FatTail(cellSize, sp.SeedSource[0], sp.SeedSource[1]) /
			sp.Seedling * sp.SeedlingBasalArea
		kk := sp.CalFactor[0] * sp.MeanGrowth
		if kk != 0 {
			sp.ratioAK = alpha / kk
		}
	}

	if sp.StartAgeType == StartAgeWeibull {
		if len(sp.StartAgeParms) < 2 {
			return configError(name+".StartAge",
				"expected array size of 2 for a Weibull start age but found %d", len(sp.StartAgeParms))
		}
		length := int(math.Ceil(5 * sp.StartAgeParms[0]))
		sp.startAgeIntegral = weibullReliabilityTable(sp.StartAgeParms[0], sp.StartAgeParms[1], length)
	}
	return nil
}
