// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Scalingplot summarizes the performance logs of a parallel scaling
// study and draws its scaling chart.
//
// Usage:
//
//	scalingplot [flags] [log files...]
//
// Each log is a delimited table written by the simulation, one line
// per run. Scalingplot keeps the runs of one experiment configuration,
// groups them by scaling mode and process count, drops the extreme
// runtimes of each group, and averages the rest. It prints one line
// per group and writes a two-panel chart of the runtime and the
// parallel efficiency against the number of processes.
//
// If no log is named, build_release/logs/logS.csv is read. The name
// "-" reads standard input. Logs and outputs may be gs://bucket/object
// URLs.
//
// The -config flag names a YAML file that sets the same options, plus
// the plotted columns and their legend labels:
//
//	inputs: [build_release/logs/logS.csv]
//	output: cuboid_strong_scaling.pdf
//	title: Strong scaling, Hazel Hen
//	filter: {endTime: 100, elements: 2399999}
//	trim: {bottom: 2, top: 1}
//	columns: [duration_total, duration_0D, duration_1D]
//	labels: {duration_total: total}
//	archive: {driver: sqlite3, dsn: runs.db, label: cuboid}
//
// Flags given on the command line override the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/opendihu/perfscaling/internal/blob"
	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleproc"
	"github.com/opendihu/perfscaling/scaleseries"
	"github.com/opendihu/perfscaling/scalestat"
	"github.com/opendihu/perfscaling/storage/db"
	_ "github.com/opendihu/perfscaling/storage/db/sqlite3"
)

const (
	defaultInput  = "build_release/logs/logS.csv"
	defaultOutput = "cuboid_strong_scaling_multiple_nodes_GMRES.pdf"
	defaultTitle  = "Strong scaling, Hazel Hen"
)

// options are the settings of one invocation, from flags and the
// experiment file.
type options struct {
	out, format  string
	csvOut       string
	htmlOut      string
	filtered     string
	config       string
	table        string
	delim        string
	endTime      float64
	elements     int64
	all          bool
	trimBottom   int
	trimTop      int
	noTrim       bool
	keepZeros    bool
	ref          int
	procsPerNode int
	mode         string
	columns      string
	driver, dsn  string
	label        string
	title        string

	// Set only by the experiment file.
	inputs []string
	labels map[string]string
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("scalingplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: scalingplot [flags] [log files...]\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.out, "o", defaultOutput, "write the chart to `file`")
	fs.StringVar(&o.format, "format", "", "chart `format`: pdf, svg, png, or eps (default from the -o extension)")
	fs.StringVar(&o.csvOut, "csv", "", "write the scaling series as CSV to `file`")
	fs.StringVar(&o.htmlOut, "html", "", "write the group table as HTML to `file`")
	fs.StringVar(&o.filtered, "filtered", "", "write the runs that pass the filter to `file`, in log format")
	fs.StringVar(&o.config, "config", "", "read options from the YAML experiment `file`")
	fs.StringVar(&o.table, "table", "text", "print the group table as `text` or csv")
	fs.StringVar(&o.delim, "delim", string(scalefmt.DefaultDelimiter), "log field `delimiter`; \"tab\" for a tab")
	fs.Float64Var(&o.endTime, "end-time", scaleproc.DefaultFilter.EndTime, "keep runs with this simulated end `time`")
	fs.Int64Var(&o.elements, "elements", scaleproc.DefaultFilter.Elements1D, "keep runs with this many 1-D `elements`")
	fs.BoolVar(&o.all, "all", false, "keep all runs regardless of end time and elements")
	fs.IntVar(&o.trimBottom, "trim-bottom", scalemath.DefaultTrim.Bottom, "drop the `n` lowest values of each column")
	fs.IntVar(&o.trimTop, "trim-top", scalemath.DefaultTrim.Top, "drop the `n` highest values of each column")
	fs.BoolVar(&o.noTrim, "no-trim", false, "average all values")
	fs.BoolVar(&o.keepZeros, "keep-zeros", false, "treat logged zeros as measurements")
	fs.IntVar(&o.ref, "ref", 0, "reference process `count` for the ideal scaling (default the smallest)")
	fs.IntVar(&o.procsPerNode, "procs-per-node", 24, "processes per compute node, for the node axis")
	fs.StringVar(&o.mode, "mode", "strong", "scaling `mode` to plot: strong, weak, or other")
	fs.StringVar(&o.columns, "columns", strings.Join(scaleseries.DefaultColumns, ","), "comma-separated duration `columns` to plot")
	fs.StringVar(&o.driver, "driver", "sqlite3", "database `driver` of the run archive: sqlite3 or mysql")
	fs.StringVar(&o.dsn, "dsn", "", "archive the reduced groups in the database `dsn`")
	fs.StringVar(&o.label, "label", "", "`label` of the archived run")
	fs.StringVar(&o.title, "title", defaultTitle, "chart `title`")
	return fs
}

func main() {
	log.SetPrefix("scalingplot: ")
	log.SetFlags(0)
	if err := scalingplot(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == errUsage {
			os.Exit(2)
		}
		fail("%v\n", err)
	}
}

func fail(format string, args ...interface{}) {
	log.Printf(format, args...)
	os.Exit(1)
}

// errUsage reports bad arguments. The flag package has printed them.
var errUsage = errors.New("usage")

func scalingplot(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if o.config != "" {
		cfg, err := loadConfig(ctx, o.config)
		if err != nil {
			return err
		}
		if err := cfg.apply(&o, set); err != nil {
			return fmt.Errorf("%s: %w", o.config, err)
		}
	}
	logger := log.New(stderr, "scalingplot: ", 0)
	warn := func(format string, args ...interface{}) {
		logger.Printf(format, args...)
	}

	delim, err := parseDelim(o.delim)
	if err != nil {
		return err
	}
	mode, err := scaleproc.ParseMode(o.mode)
	if err != nil {
		return err
	}
	if o.table != "text" && o.table != "csv" {
		return fmt.Errorf("unknown table format %q", o.table)
	}
	cols := splitColumns(o.columns)
	if len(cols) == 0 {
		return fmt.Errorf("no columns to plot")
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = o.inputs
	}
	if len(paths) == 0 {
		paths = []string{defaultInput}
	}

	// Read and group the runs.
	bo := scaleseries.DefaultBuilderOptions()
	bo.Filter = &scaleproc.Filter{EndTime: o.endTime, Elements1D: o.elements, All: o.all}
	bo.Warn = warn
	b := scaleseries.NewBuilder(bo)
	files := &scalefmt.Files{
		Paths:      paths,
		AllowStdin: true,
		Open:       func(path string) (io.ReadCloser, error) { return blob.Open(ctx, path) },
		Delimiter:  delim,
	}
	if err := b.AddFiles(files); err != nil {
		return err
	}

	ro := scaleseries.DefaultReduceOptions()
	ro.Trim = scalemath.TrimOptions{Bottom: o.trimBottom, Top: o.trimTop, Disabled: o.noTrim}
	ro.ZeroAsMissing = !o.keepZeros
	ro.Required = cols
	groups, err := b.Reduce(ro)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("no runs match %v among %d runs read", bo.Filter, b.Len())
	}

	switch o.table {
	case "csv":
		err = scalestat.FormatCSV(stdout, groups)
	default:
		err = scalestat.FormatText(stdout, groups)
	}
	if err != nil {
		return err
	}

	series, err := scaleseries.NewSeries(groups, mode, cols, o.ref)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no %v scaling runs to plot", mode)
	}

	format := o.format
	if format == "" {
		format = scaleseries.FormatOf(o.out)
	}
	co := &scaleseries.ChartOptions{
		Title:        o.title,
		Format:       format,
		ProcsPerNode: o.procsPerNode,
		Labels:       o.labels,
	}
	if err := writeTo(ctx, o.out, func(w io.Writer) error {
		return scaleseries.Chart(w, series, co)
	}); err != nil {
		return err
	}

	if o.csvOut != "" {
		if err := writeTo(ctx, o.csvOut, func(w io.Writer) error {
			return scaleseries.WriteCSV(w, series, scaleseries.CSV_STDDEV|scaleseries.CSV_NODES, o.procsPerNode)
		}); err != nil {
			return err
		}
	}
	if o.htmlOut != "" {
		if err := writeTo(ctx, o.htmlOut, func(w io.Writer) error {
			return scalestat.FormatHTML(w, o.title, groups)
		}); err != nil {
			return err
		}
	}
	if o.filtered != "" {
		if err := writeTo(ctx, o.filtered, func(w io.Writer) error {
			return writeFiltered(w, groups, delim)
		}); err != nil {
			return err
		}
	}

	if o.dsn != "" {
		id, err := archive(ctx, o.driver, o.dsn, db.RunInfo{Label: o.label, Source: strings.Join(paths, " ")}, groups)
		if err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
		logger.Printf("archived run %s", id)
	}
	return nil
}

// writeTo creates name and calls write on it.
func writeTo(ctx context.Context, name string, write func(w io.Writer) error) (err error) {
	w, err := blob.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(w); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// writeFiltered writes the runs of groups in log format.
func writeFiltered(w io.Writer, groups []*scaleseries.Group, delim rune) error {
	lw := scalefmt.NewWriter(w)
	lw.SetDelimiter(delim)
	for _, g := range groups {
		for _, r := range g.Records {
			if err := lw.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func archive(ctx context.Context, driver, dsn string, info db.RunInfo, groups []*scaleseries.Group) (string, error) {
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		return "", err
	}
	defer d.Close()
	summaries, err := db.SummarizeGroups(groups)
	if err != nil {
		return "", err
	}
	return d.InsertRun(ctx, info, summaries)
}

func parseDelim(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("bad delimiter %q", s)
	}
	return r, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, scalefmt.CanonicalName(c))
		}
	}
	return cols
}
