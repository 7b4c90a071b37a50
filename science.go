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

	"gonum.org/v1/gonum/stat/distuv"
)

// FatTail is the heavy-tailed seed dispersal kernel. distance is in
// cell units; shape and exponent are the species' two seed-source
// parameters. The weight at distance 0 is 1 and decays with a
// polynomial tail, so distant spruce stands still contribute seed.
func FatTail(distance, shape, exponent float64) float64 {
	if shape <= 0 {
		return 0
	}
	return 1. / (1. + math.Pow(distance/shape, exponent))
}

// Site maps a cell's site variable in [0,1] to the probability that an
// establishing stand becomes black spruce rather than white spruce.
// The ramp passes through (0,0), (0.5,p) and (1,1): poor, dry sites
// favor white spruce and wet lowland sites favor black spruce.
func Site(site, p float64) float64 {
	switch {
	case site <= 0:
		return 0
	case site >= 1:
		return 1
	case site <= 0.5:
		return 2 * p * site
	default:
		return p + (1-p)*(site-0.5)*2
	}
}

// weibullReliabilityTable numerically integrates the Weibull
// reliability function from 0 to length-1 with unit steps and
// normalizes the running integral to 1, producing the inverse-sampling
// table used by the Weibull start-age distribution.
func weibullReliabilityTable(life, shape float64, length int) []float64 {
	if length < 1 {
		length = 1
	}
	w := distuv.Weibull{K: shape, Lambda: life}
	table := make([]float64, length)
	sum := 0.
	prev := w.Survival(0)
	table[0] = 0
	for i := 1; i < length; i++ {
		cur := w.Survival(float64(i))
		sum += (prev + cur) / 2 // trapezoid with unit step
		table[i] = sum
		prev = cur
	}
	if sum > 0 {
		for i := range table {
			table[i] /= sum
		}
	}
	table[length-1] = 1
	return table
}
