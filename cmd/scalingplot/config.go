// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opendihu/perfscaling/internal/blob"
	"github.com/opendihu/perfscaling/scalefmt"
)

// A config is an experiment file. Unset fields keep the flag values.
type config struct {
	Inputs       []string          `yaml:"inputs"`
	Output       string            `yaml:"output"`
	Format       string            `yaml:"format"`
	Title        string            `yaml:"title"`
	Delimiter    string            `yaml:"delimiter"`
	Mode         string            `yaml:"mode"`
	Reference    *int              `yaml:"reference"`
	ProcsPerNode *int              `yaml:"procsPerNode"`
	KeepZeros    *bool             `yaml:"keepZeros"`
	Columns      []string          `yaml:"columns"`
	Labels       map[string]string `yaml:"labels"`

	Filter struct {
		EndTime  *float64 `yaml:"endTime"`
		Elements *int64   `yaml:"elements"`
		All      *bool    `yaml:"all"`
	} `yaml:"filter"`

	Trim struct {
		Bottom   *int  `yaml:"bottom"`
		Top      *int  `yaml:"top"`
		Disabled *bool `yaml:"disabled"`
	} `yaml:"trim"`

	Outputs struct {
		CSV      string `yaml:"csv"`
		HTML     string `yaml:"html"`
		Filtered string `yaml:"filtered"`
	} `yaml:"outputs"`

	Archive struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Label  string `yaml:"label"`
	} `yaml:"archive"`
}

// loadConfig reads the experiment file name. Unknown keys are errors.
func loadConfig(ctx context.Context, name string) (*config, error) {
	r, err := blob.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cfg := new(config)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// apply copies the settings of c into o, except those whose flag was
// given on the command line.
func (c *config) apply(o *options, set map[string]bool) error {
	str := func(flag string, dst *string, v string) {
		if v != "" && !set[flag] {
			*dst = v
		}
	}
	str("o", &o.out, c.Output)
	str("format", &o.format, c.Format)
	str("title", &o.title, c.Title)
	str("delim", &o.delim, c.Delimiter)
	str("mode", &o.mode, c.Mode)
	str("csv", &o.csvOut, c.Outputs.CSV)
	str("html", &o.htmlOut, c.Outputs.HTML)
	str("filtered", &o.filtered, c.Outputs.Filtered)
	str("driver", &o.driver, c.Archive.Driver)
	str("dsn", &o.dsn, c.Archive.DSN)
	str("label", &o.label, c.Archive.Label)
	if len(c.Columns) > 0 {
		str("columns", &o.columns, strings.Join(c.Columns, ","))
	}

	num := func(flag string, dst *int, v *int) {
		if v != nil && !set[flag] {
			*dst = *v
		}
	}
	num("ref", &o.ref, c.Reference)
	num("procs-per-node", &o.procsPerNode, c.ProcsPerNode)
	num("trim-bottom", &o.trimBottom, c.Trim.Bottom)
	num("trim-top", &o.trimTop, c.Trim.Top)

	boolean := func(flag string, dst *bool, v *bool) {
		if v != nil && !set[flag] {
			*dst = *v
		}
	}
	boolean("keep-zeros", &o.keepZeros, c.KeepZeros)
	boolean("all", &o.all, c.Filter.All)
	boolean("no-trim", &o.noTrim, c.Trim.Disabled)

	if c.Filter.EndTime != nil && !set["end-time"] {
		o.endTime = *c.Filter.EndTime
	}
	if c.Filter.Elements != nil && !set["elements"] {
		o.elements = *c.Filter.Elements
	}
	if (c.Trim.Bottom != nil && *c.Trim.Bottom < 0) || (c.Trim.Top != nil && *c.Trim.Top < 0) {
		return fmt.Errorf("negative trim count")
	}

	o.inputs = c.Inputs
	if len(c.Labels) > 0 {
		o.labels = make(map[string]string, len(c.Labels))
		for col, label := range c.Labels {
			o.labels[scalefmt.CanonicalName(col)] = label
		}
	}
	return nil
}
