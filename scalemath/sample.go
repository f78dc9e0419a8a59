// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scalemath reduces repeated measurements of one quantity to a
// mean and spread, optionally discarding the most extreme values
// first.
package scalemath

import (
	"errors"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmptySample is returned when a statistic is requested of a sample
// with no values.
var ErrEmptySample = errors.New("empty sample")

// A Sample is a set of repeated measurements of one quantity.
type Sample struct {
	// Values are the measured values, in ascending order.
	Values []float64
}

// NewSample constructs a Sample from a set of measurements. values is
// not modified.
func NewSample(values []float64) *Sample {
	vs := make([]float64, len(values))
	copy(vs, values)
	// Sort values for order statistics.
	sort.Float64s(vs)
	return &Sample{vs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// TrimOptions configures outlier removal.
type TrimOptions struct {
	// Bottom and Top are the number of lowest and highest values
	// to drop.
	Bottom, Top int

	// Disabled turns trimming off.
	Disabled bool
}

// DefaultTrim drops the two lowest values and the highest value.
var DefaultTrim = TrimOptions{Bottom: 2, Top: 1}

// Trim returns the sample left after dropping the o.Bottom lowest and
// o.Top highest values of s. Samples with no more than
// o.Bottom+o.Top values are returned unchanged, so trimming never
// empties a non-empty sample.
func (s *Sample) Trim(o TrimOptions) *Sample {
	n := len(s.Values)
	if o.Disabled || o.Bottom < 0 || o.Top < 0 || n <= o.Bottom+o.Top {
		return s
	}
	return &Sample{s.Values[o.Bottom : n-o.Top]}
}

// A Summary is the mean and spread of a Sample.
type Summary struct {
	Mean float64

	// StdDev is the population standard deviation.
	StdDev float64

	// Min and Max are the extreme values of the sample.
	Min, Max float64

	// N is the number of values summarized.
	N int
}

// Defined reports whether s summarizes at least one value.
func (s Summary) Defined() bool {
	return s.N > 0
}

// Summarize computes the mean and population standard deviation of s.
// It returns ErrEmptySample if s has no values.
func Summarize(s *Sample) (Summary, error) {
	n := len(s.Values)
	if n == 0 {
		return Summary{}, ErrEmptySample
	}
	lo, hi := s.Values[0], s.Values[n-1]
	if lo == hi {
		return Summary{Mean: lo, StdDev: 0, Min: lo, Max: hi, N: n}, nil
	}

	sample := s.sample()
	// go-moremath computes the unbiased (n-1) variance.
	v := sample.Variance() * float64(n-1) / float64(n)
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	return Summary{
		Mean:   sample.Mean(),
		StdDev: math.Sqrt(v),
		Min:    lo,
		Max:    hi,
		N:      n,
	}, nil
}
