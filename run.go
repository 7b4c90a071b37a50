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
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rarutter/alfresco/rasterio"
)

// Model runs the full simulation: numReps independent replicates,
// each over the configured year horizon. Replicates are the only unit
// of parallelism; every worker gets its own Landscape, Rand and
// StatCollection, and the only cross-worker interaction is the final
// reduction over per-replicate outputs.
type Model struct {
	Config   Config
	Registry *SpeciesRegistry
	Raster   *rasterio.IO

	NumReps int
	Seed    uint64

	// NProcs caps the worker count; 1 runs replicates serially.
	NProcs int

	// Collections holds each replicate's statistics after Run.
	Collections []*StatCollection
}

// NewModel assembles a model from configuration.
func NewModel(cfg Config, reg *SpeciesRegistry, rio *rasterio.IO) (*Model, error) {
	k := &keyReader{cfg: cfg}
	m := &Model{
		Config:   cfg,
		Registry: reg,
		Raster:   rio,
		NumReps:  k.intval("Reps"),
		Seed:     uint64(k.intval("Seed")),
		NProcs:   1,
	}
	if cfg.HasKey("NProcs") {
		m.NProcs = k.intval("NProcs")
	}
	if k.err != nil {
		return nil, k.err
	}
	if m.NumReps < 1 {
		return nil, configError("Reps", "need at least one replicate but found %d", m.NumReps)
	}
	return m, nil
}

// NewLandscape builds the landscape and pipelines for one replicate.
// The RNG is reseeded per replicate so replicate r always consumes
// the same stream regardless of scheduling.
func (m *Model) NewLandscape(rep int) (*Landscape, *StatCollection, error) {
	suppTrans, err := LoadSuppressionTransitions(m.Config)
	if err != nil {
		return nil, nil, err
	}
	vegTrans, err := LoadVegTransitions(m.Config)
	if err != nil {
		return nil, nil, err
	}
	coll, err := NewStatCollection(m.Config, rep)
	if err != nil {
		return nil, nil, err
	}

	L := &Landscape{
		Registry: m.Registry,
		Rand:     NewRand(m.Seed + uint64(rep)),
		Rep:      rep,
	}
	L.InitFuncs = []LandscapeManipulator{
		LoadLandscape(m.Config, m.Raster, rep),
		InitSuppression(suppTrans),
	}
	L.RunFuncs = []LandscapeManipulator{
		YearStart(),
		ApplySuppressionTransitions(suppTrans),
		ApplyVegTransitions(vegTrans),
		Fire(),
		Succession(),
		coll.Collect(),
		coll.WriteMaps(),
		Log(),
	}
	return L, coll, nil
}

// RunReplicate executes one replicate to completion.
func (m *Model) RunReplicate(rep int) (*StatCollection, error) {
	L, coll, err := m.NewLandscape(rep)
	if err != nil {
		return nil, err
	}
	if err := L.Init(); err != nil {
		return nil, err
	}
	if err := L.Run(); err != nil {
		return nil, err
	}
	if err := L.Cleanup(); err != nil {
		return nil, err
	}
	return coll, nil
}

// Run executes every replicate and reduces their statistics.
func (m *Model) Run() error {
	nprocs := m.NProcs
	if nprocs < 1 {
		nprocs = 1
	}
	if nprocs > m.NumReps {
		nprocs = m.NumReps
	}

	colls := make([]*StatCollection, m.NumReps)
	errs := make([]error, m.NumReps)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func(p int) {
			defer wg.Done()
			for rep := p; rep < m.NumReps; rep += nprocs {
				logrus.WithField("rep", rep).Info("starting replicate")
				colls[rep], errs[rep] = m.RunReplicate(rep)
			}
		}(p)
	}
	wg.Wait()

	for rep, err := range errs {
		if err != nil {
			return fmt.Errorf("replicate %d: %w", rep, err)
		}
	}
	m.Collections = colls
	return m.writeStatFiles()
}

// Log reports each simulated year's fire season, the way long runs
// are watched from the console.
func Log() LandscapeManipulator {
	start := time.Now()
	return func(L *Landscape) error {
		logrus.WithFields(logrus.Fields{
			"rep":       L.Rep,
			"year":      L.Year,
			"ignitions": L.NumIgnitions,
			"burned":    L.TotalBurned,
			"walltime":  time.Since(start).Round(time.Millisecond),
		}).Debug("year complete")
		return nil
	}
}

// writeStatFiles reduces the per-replicate collections into the
// run-level stat files: fire sizes, habitat tallies and the burn
// partition by suppression class.
func (m *Model) writeStatFiles() error {
	if len(m.Collections) == 0 || m.Collections[0] == nil {
		return nil
	}
	dir := m.Collections[0].OutputDir
	if dir == "" {
		return nil
	}

	if err := m.writeFireSizeStats(filepath.Join(dir, "FireSizeStats.txt")); err != nil {
		return err
	}
	if err := m.writeHabitatStats(filepath.Join(dir, "HabitatStats.txt")); err != nil {
		return err
	}
	return m.writeBurnPartition(filepath.Join(dir, "BurnPartitionBySuppClass.txt"))
}

// statFile opens a stat output file for transactional writing: the
// file is removed again if the write does not run to completion.
func statFile(path string, write func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		os.Remove(path)
		return &IOError{Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return &IOError{Path: path, Err: err}
	}
	return nil
}

func (m *Model) writeFireSizeStats(path string) error {
	return statFile(path, func(w *bufio.Writer) error {
		fmt.Fprintln(w, "rep\tyear\tfireID\tcells\trow\tcol\tlowLSS\tmoderate\thighLSS\thighHSS")
		for _, s := range m.Collections {
			for y, recs := range s.Fires {
				for _, r := range recs {
					if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
						s.Rep, s.FirstYear+y, r.FireID, r.Cells, r.IgnitionRow, r.IgnitionCol,
						r.LowLSS, r.Moderate, r.HighLSS, r.HighHSS); err != nil {
						return err
					}
				}
			}
			logrus.Info(s.Summary())
		}
		return nil
	})
}

func (m *Model) writeHabitatStats(path string) error {
	if len(m.Collections[0].Habitats) == 0 {
		return nil
	}
	return statFile(path, func(w *bufio.Writer) error {
		fmt.Fprintln(w, "rep\tyear\thabitat\tcells")
		for _, s := range m.Collections {
			for _, h := range s.Habitats {
				for y, n := range h.Counts {
					if _, err := fmt.Fprintf(w, "%d\t%d\t%s\t%d\n",
						s.Rep, s.FirstYear+y, h.Name, n); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func (m *Model) writeBurnPartition(path string) error {
	return statFile(path, func(w *bufio.Writer) error {
		fmt.Fprintln(w, "rep\tyear\tclass0\tclass1\tclass2\tclass3\tclass4\tclass5")
		for _, s := range m.Collections {
			for y := 0; y < s.NumYears; y++ {
				if _, err := fmt.Fprintf(w, "%d\t%d", s.Rep, s.FirstYear+y); err != nil {
					return err
				}
				for c := 0; c < 6; c++ {
					if _, err := fmt.Fprintf(w, "\t%.0f", s.BurnBySuppClass.Get(y, c)); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
