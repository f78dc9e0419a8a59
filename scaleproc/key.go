// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaleproc identifies the experiment a logged run belongs to.
//
// Runs are grouped by Key, which combines the scaling Mode of the
// scenario with the number of MPI ranks. A Filter selects the runs of
// one experiment configuration.
package scaleproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opendihu/perfscaling/scalefmt"
)

// A Mode is the kind of scaling study a run was part of.
type Mode byte

const (
	// Strong scaling keeps the total problem size fixed.
	Strong Mode = 's'
	// Weak scaling keeps the problem size per process fixed.
	Weak Mode = 'w'
	// Other is any scenario that is neither.
	Other Mode = 'x'
)

func (m Mode) String() string {
	switch m {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	case Other:
		return "other"
	}
	return fmt.Sprintf("Mode(%q)", byte(m))
}

// ModeOf returns the scaling mode of a scenario name. "weak_scaling"
// and "Strong_scaling" are matched without regard to case.
func ModeOf(scenario string) Mode {
	switch strings.ToLower(strings.TrimSpace(scenario)) {
	case "weak_scaling":
		return Weak
	case "strong_scaling":
		return Strong
	}
	return Other
}

// ParseMode parses a mode given as its letter or its name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "s", "strong":
		return Strong, nil
	case "w", "weak":
		return Weak, nil
	case "x", "other":
		return Other, nil
	}
	return 0, fmt.Errorf("unknown scaling mode %q", s)
}

// A Key identifies a group of runs: one process count of one scaling
// study.
type Key struct {
	Mode  Mode
	Procs int
}

// String formats k as its mode letter followed by the process count
// padded to five digits, such as "s00024". Keys of one mode sort as
// strings in the same order as their process counts.
func (k Key) String() string {
	return fmt.Sprintf("%c%05d", byte(k.Mode), k.Procs)
}

// Less orders keys by mode letter, then by process count.
func (k Key) Less(o Key) bool {
	if k.Mode != o.Mode {
		return k.Mode < o.Mode
	}
	return k.Procs < o.Procs
}

// ParseKey parses the result of Key.String.
func ParseKey(s string) (Key, error) {
	if len(s) < 2 {
		return Key{}, fmt.Errorf("bad group key %q", s)
	}
	m, err := ParseMode(s[:1])
	if err != nil {
		return Key{}, fmt.Errorf("bad group key %q: %w", s, err)
	}
	procs, err := strconv.Atoi(s[1:])
	if err != nil || procs < 0 {
		return Key{}, fmt.Errorf("bad group key %q: bad process count", s)
	}
	return Key{m, procs}, nil
}

// KeyOf returns the group key of r.
func KeyOf(r *scalefmt.Row) Key {
	return Key{ModeOf(r.ScenarioName), r.NRanks.Int()}
}
