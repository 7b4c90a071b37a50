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

// Package alfresco is a spatially explicit, raster-based stochastic
// simulator of boreal and tundra landscape dynamics: vegetation
// succession, wildfire ignition and spread, fire suppression policy,
// and multi-decade replicate runs producing map and statistical
// outputs.
package alfresco

import (
	"math"

	"github.com/ctessum/sparse"

	"github.com/rarutter/alfresco/rasterio"
)

// LandscapeManipulator is a function that operates on the entire
// landscape. The landscape's initialization and per-year phases are
// each a pipeline of manipulators run in order.
type LandscapeManipulator func(L *Landscape) error

// Landscape holds the current state of one replicate: the matrix of
// frames, the parallel input layers, and the fire-season bookkeeping.
// All phases within a replicate run serially; a parallel harness must
// give each replicate its own Landscape, Rand and stat accumulators.
type Landscape struct {
	// InitFuncs are run by Init, in order, at replicate start.
	InitFuncs []LandscapeManipulator

	// RunFuncs are run by Run, in order, once per simulated year.
	// The order defines the phase order: year start, scheduled
	// transitions, fire, succession, statistics, map writes.
	RunFuncs []LandscapeManipulator

	// CleanupFuncs are run by Cleanup after the year loop finishes.
	CleanupFuncs []LandscapeManipulator

	Rows, Cols int
	CellSize   float64

	// Frames is the row-major matrix of cell states. The landscape
	// exclusively owns every frame.
	Frames []Frame

	Registry *SpeciesRegistry
	Rand     *Rand

	// Raster carries the run's georeferencing and handles every
	// raster file read and write.
	Raster *rasterio.IO

	Rep       int
	FirstYear int
	NumYears  int
	Year      int

	// Input layers, dimensioned Rows×Cols.
	VegInput            *sparse.DenseArray
	AgeInput            *sparse.DenseArray
	Topo                *sparse.DenseArray
	SiteInput           *sparse.DenseArray
	TreeDensity         *sparse.DenseArray
	BurnSeverityInput   *sparse.DenseArray
	HistoricalFire      *sparse.DenseArray
	IgnitionFactorInput *sparse.DenseArray
	SensitivityInput    *sparse.DenseArray

	// SuppressionClass maps each cell to its suppression class 0..5,
	// 0 meaning no suppression. Mutable: suppression transitions may
	// reload it mid-run.
	SuppressionClass []int

	Suppression SuppressionState

	// TopoFactor multiplies spread probability on topographically
	// complex cells.
	TopoFactor float64

	// CustomSpreadMultiplier, when non-nil, is an additional spread
	// factor looked up per target cell during fire spread.
	CustomSpreadMultiplier func(row, col, fireSizeTotal, fireNum int) float64

	// Climate returns the year's temperature and precipitation when
	// climate coupling is enabled.
	Climate func(year int) (temp, precip float64)

	// Fire-season state, reset each year.
	NumIgnitions             int
	TotalBurned              int
	LastFireID               int
	BurnPartitionBySuppClass [6]int
	SeasonFires              []FireSizeRecord
}

// Init runs the initialization pipeline.
func (L *Landscape) Init() error {
	for _, f := range L.InitFuncs {
		if err := f(L); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the replicate's year loop: each year every RunFunc
// executes to completion before the next begins, in pipeline order.
func (L *Landscape) Run() error {
	for y := 0; y < L.NumYears; y++ {
		L.Year = L.FirstYear + y
		for _, f := range L.RunFuncs {
			if err := f(L); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup runs the cleanup pipeline.
func (L *Landscape) Cleanup() error {
	for _, f := range L.CleanupFuncs {
		if err := f(L); err != nil {
			return err
		}
	}
	return nil
}

// Index converts a (row, col) position to the row-major cell index.
func (L *Landscape) Index(row, col int) int { return row*L.Cols + col }

// At returns the frame at (row, col).
func (L *Landscape) At(row, col int) Frame { return L.Frames[L.Index(row, col)] }

// InBounds reports whether (row, col) is on the landscape.
func (L *Landscape) InBounds(row, col int) bool {
	return row >= 0 && row < L.Rows && col >= 0 && col < L.Cols
}

// Replace installs a new frame at the cell the old frame occupied.
// The replacement is atomic from the caller's perspective: the cell
// is never without a frame.
func (L *Landscape) Replace(i int, f Frame) {
	L.Frames[i] = f
}

// NeighborsSuccess iterates over the cells within radius (in cell
// units) of (row, col), including the center cell at distance 0,
// invoking fn with each neighbor frame and its Euclidean distance and
// summing the replies. Callers apply their dispersal kernel inside fn.
func (L *Landscape) NeighborsSuccess(row, col int, radius float64,
	fn func(n Frame, distance float64) float64) float64 {

	r := int(radius)
	if float64(r) < radius {
		r++
	}
	sum := 0.
	for dr := -r; dr <= r; dr++ {
		nr := row + dr
		if nr < 0 || nr >= L.Rows {
			continue
		}
		for dc := -r; dc <= r; dc++ {
			nc := col + dc
			if nc < 0 || nc >= L.Cols {
				continue
			}
			d := math.Sqrt(float64(dr*dr + dc*dc))
			if d > radius {
				continue
			}
			sum += fn(L.Frames[L.Index(nr, nc)], d)
		}
	}
	return sum
}

// YearStart resets the fire-season state. It is the first phase of
// every year.
func YearStart() LandscapeManipulator {
	return func(L *Landscape) error {
		L.NumIgnitions = 0
		L.TotalBurned = 0
		for i := range L.BurnPartitionBySuppClass {
			L.BurnPartitionBySuppClass[i] = 0
		}
		L.SeasonFires = L.SeasonFires[:0]
		return nil
	}
}
