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

import "golang.org/x/exp/rand"

// Rand is the single pseudo-random stream for one replicate. Every
// stochastic cell decision draws from it in row-major, phase-ordered
// sequence, so a replicate with a given seed reproduces exactly.
// Across-replicate harnesses must give each worker its own Rand.
type Rand struct {
	src  *rand.Rand
	seed uint64
}

// NewRand returns a stream seeded for one replicate.
func NewRand(seed uint64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed)), seed: seed}
}

// Reseed restarts the stream, as happens at the top of each replicate.
func (r *Rand) Reseed(seed uint64) {
	r.src = rand.New(rand.NewSource(seed))
	r.seed = seed
}

// Seed returns the seed the stream was last (re)started with.
func (r *Rand) Seed() uint64 { return r.seed }

// Uniform returns the next draw in [0,1).
func (r *Rand) Uniform() float64 { return r.src.Float64() }

// Intn returns the next draw in [0,n).
func (r *Rand) Intn(n int) int { return r.src.Intn(n) }

// Source exposes the underlying source for gonum distributions.
func (r *Rand) Source() rand.Source { return r.src }
