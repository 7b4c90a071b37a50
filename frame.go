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

// VegType is the byte code identifying a vegetation type. The codes
// themselves come from the configuration file (they must match the
// values used in the input vegetation raster), so the same landscape
// inputs keep working when the model gains or loses species.
type VegType byte

// NeverBurned is the yearOfLastBurn sentinel for cells with no burn
// history.
const NeverBurned = -1 << 30

// BurnSeverity classifies how severely a cell burned.
type BurnSeverity byte

// Burn severity classes, ordered by increasing severity. LSS and HSS
// distinguish low and high surface (organic layer) severity.
const (
	SeverityNone BurnSeverity = iota
	SeverityLowLSS
	SeverityModerate
	SeverityHighLSS
	SeverityHighHSS
)

// MapType selects which per-cell variable a raster export projects.
type MapType int

const (
	MapVegetation MapType = iota
	MapAge
	MapSubcanopy
	MapSiteVariable
	MapFireAge
	MapFireScar
	MapBurnSeverity
	MapBurnSeverityHistory
	MapDecidSpeciesTrajectory
	MapTundraBasalArea
)

var mapTypeNames = map[MapType]string{
	MapVegetation:             "Vegetation",
	MapAge:                    "Age",
	MapSubcanopy:              "Subcanopy",
	MapSiteVariable:           "SiteVariable",
	MapFireAge:                "FireAge",
	MapFireScar:               "FireScar",
	MapBurnSeverity:           "BurnSeverity",
	MapBurnSeverityHistory:    "BurnSeverityHistory",
	MapDecidSpeciesTrajectory: "DecidSpeciesTrajectory",
	MapTundraBasalArea:        "TundraBasalArea",
}

// String implements fmt.Stringer.
func (m MapType) String() string {
	if s, ok := mapTypeNames[m]; ok {
		return s
	}
	return "unknown"
}

// Map output flag bits, one per exportable map type.
const (
	OutVeg = 1 << iota
	OutAge
	OutSite
	OutSub
	OutFireAge
	OutFireScar
	OutFireSeverity
	OutFireSeverityHistory
	OutDecidTrajectory
	OutTundraBasalArea
)

// MapTypeFromFlags decodes the first map type present in a map-output
// flag word. At most one map type is requested per flag bit.
func MapTypeFromFlags(f int) (MapType, error) {
	switch {
	case f&OutVeg != 0:
		return MapVegetation, nil
	case f&OutAge != 0:
		return MapAge, nil
	case f&OutSite != 0:
		return MapSiteVariable, nil
	case f&OutSub != 0:
		return MapSubcanopy, nil
	case f&OutFireAge != 0:
		return MapFireAge, nil
	case f&OutFireScar != 0:
		return MapFireScar, nil
	case f&OutFireSeverity != 0:
		return MapBurnSeverity, nil
	case f&OutFireSeverityHistory != 0:
		return MapBurnSeverityHistory, nil
	case f&OutDecidTrajectory != 0:
		return MapDecidSpeciesTrajectory, nil
	case f&OutTundraBasalArea != 0:
		return MapTundraBasalArea, nil
	}
	return 0, invariantf("invalid map output flags %#x: no map type specified", f)
}

// Frame is the state of one grid cell in one year. A frame is created
// when its cell establishes a vegetation type and replaced, not
// mutated, when succession changes the type.
type Frame interface {
	// Base exposes the attributes shared by every frame type.
	Base() *FrameBase

	// Type returns the frame's vegetation code.
	Type() VegType

	// FireProbability returns the annual ignition probability for
	// this cell: fireProb(type, age) · ignitionDepressor ·
	// fireIgnitionFactor + humanIgnitionProb.
	FireProbability(L *Landscape) float64

	// QueryReply returns this frame's seed-source basal area scaled
	// by the caller's kernel weight.
	QueryReply(L *Landscape, weight float64) float64

	// Success applies one year of succession and returns a non-nil
	// replacement frame if the cell transitions to a new type.
	Success(L *Landscape) (Frame, error)

	// AsByte projects a type-specific byte map value.
	AsByte(m MapType) (byte, error)

	// AsFloat projects a type-specific float map value.
	AsFloat(m MapType) (float32, error)
}

// FrameBase holds the per-cell attributes shared by every vegetation
// type.
type FrameBase struct {
	Row, Col int
	Veg      VegType

	YearEstablished      int `desc:"Year the current stand established" units:"year"`
	YearFrameEstablished int `desc:"Year the current frame type established" units:"year"`

	YearOfLastBurn    int  `desc:"Most recent burn year, NeverBurned if none" units:"year"`
	LastBurnWasOrigin bool `desc:"Whether the last burn ignited in this cell"`
	BurnSeverity      BurnSeverity
	FireScarID        int `desc:"Identifier of the fire that last burned this cell"`

	Site               float64 `desc:"Topographic/edaphic suitability" units:"fraction"`
	IsTopoComplex      bool    `desc:"Topographic complexity modulates fire spread"`
	FireIgnitionFactor float64
	FireSensitivity    float64

	SpeciesSubCanopy VegType `desc:"Predicted type after the next disturbance"`
}

// Base implements Frame.
func (f *FrameBase) Base() *FrameBase { return f }

// Type implements Frame.
func (f *FrameBase) Type() VegType { return f.Veg }

// Age returns the years since the stand established as of year.
func (f *FrameBase) Age(year int) int { return year - f.YearEstablished }

// Burn records a fire reaching this cell.
func (f *FrameBase) Burn(year, fireScarID int, severity BurnSeverity, origin bool) {
	f.YearOfLastBurn = year
	f.FireScarID = fireScarID
	f.BurnSeverity = severity
	f.LastBurnWasOrigin = origin
}

// FireProbability implements the shared ignition model. Frame types
// without a species bundle (NoVeg) override it.
func (f *FrameBase) FireProbability(L *Landscape) float64 {
	sp := L.Registry.Species(f.Veg)
	if sp == nil {
		return 0
	}
	return sp.FireProbAt(f.Age(L.Year))*sp.IgnitionDepressor*f.FireIgnitionFactor +
		sp.HumanIgnitionProb
}

// QueryReply returns no seed source; types that carry basal area
// override it.
func (f *FrameBase) QueryReply(L *Landscape, weight float64) float64 { return 0 }

// AsByte rejects map types the frame does not support; frame types
// with extra byte maps override it.
func (f *FrameBase) AsByte(m MapType) (byte, error) {
	return 0, invariantf("frame type %d does not support map type %v", f.Veg, m)
}

// AsFloat rejects map types the frame does not support; frame types
// with extra float maps override it.
func (f *FrameBase) AsFloat(m MapType) (float32, error) {
	return 0, invariantf("frame type %d does not support map type %v", f.Veg, m)
}

// successor initializes the shared attributes of a replacement frame
// from the frame being replaced. The stand and frame establishment
// years restart at the current year.
func (f *FrameBase) successor(L *Landscape) FrameBase {
	n := *f
	n.YearEstablished = L.Year
	n.YearFrameEstablished = L.Year
	return n
}
