// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleseries

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/opendihu/perfscaling/scalefmt"
)

// ChartOptions configures Chart.
type ChartOptions struct {
	Title string

	// Format is the output format: "pdf", "svg", "png", or "eps".
	// If empty, "pdf" is used.
	Format string

	// Width and Height are the page size. If zero, 14 by 12 inches
	// is used.
	Width, Height vg.Length

	// ProcsPerNode converts process counts to node counts for the
	// tick labels. If zero, 24 is used.
	ProcsPerNode int

	// Labels maps column names to legend labels. Columns without
	// a label use DefaultLabels, then the column name.
	Labels map[string]string
}

// DefaultLabels are the legend labels of the known duration columns.
var DefaultLabels = map[string]string{
	scalefmt.ColDurationTotal:       "total",
	scalefmt.ColDuration0D:          "solver 0D model",
	scalefmt.ColDuration1D:          "solver 1D model",
	scalefmt.ColDuration3D:          "solver 3D model",
	scalefmt.ColDurationWriteOutput: "file output",
}

// FormatOf returns the chart format implied by the extension of
// file name, or "pdf" if it has none.
func FormatOf(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "pdf"
	}
	return ext
}

var columnStyles = map[string]struct {
	color color.Color
	glyph draw.GlyphDrawer
}{
	scalefmt.ColDurationTotal: {color.Black, draw.CircleGlyph{}},
	scalefmt.ColDuration0D:    {color.RGBA{R: 0xcc, G: 0xaa, A: 0xff}, draw.SquareGlyph{}},
	scalefmt.ColDuration1D:    {color.RGBA{R: 0xee, A: 0xff}, draw.PyramidGlyph{}},
	scalefmt.ColDuration3D:    {color.RGBA{G: 0x80, A: 0xff}, draw.BoxGlyph{}},
}

func styleOf(col string, i int) (color.Color, draw.GlyphDrawer) {
	if s, ok := columnStyles[col]; ok {
		return s.color, s.glyph
	}
	return plotutil.Color(i), plotutil.Shape(i)
}

// errPoints are points with vertical error bars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Chart draws series on one page of two panels and writes it to w.
//
// The upper panel shows the measured runtime of each series against
// the process count on log-log axes, with one standard deviation error
// bars, and the ideal runtime as a dashed line. The lower panel shows
// the parallel efficiency on a logarithmic process axis.
func Chart(w io.Writer, series []*Series, o *ChartOptions) error {
	if o == nil {
		o = &ChartOptions{}
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}
	width, height := o.Width, o.Height
	if width == 0 {
		width = 14 * vg.Inch
	}
	if height == 0 {
		height = 12 * vg.Inch
	}
	format := o.Format
	if format == "" {
		format = "pdf"
	}
	ppn := o.ProcsPerNode
	if ppn <= 0 {
		ppn = 24
	}

	runtime, err := runtimePlot(series, o, ppn)
	if err != nil {
		return err
	}
	efficiency, err := efficiencyPlot(series, o, ppn)
	if err != nil {
		return err
	}

	can, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return err
	}
	dc := draw.New(can)
	h := dc.Rectangle.Size().Y
	// Upper panel gets 3/5 of the page.
	runtime.Draw(draw.Crop(dc, 0, 0, h*2/5, 0))
	efficiency.Draw(draw.Crop(dc, 0, 0, 0, -h*3/5))

	_, err = can.WriteTo(w)
	return err
}

func label(o *ChartOptions, col string) string {
	if l, ok := o.Labels[col]; ok {
		return l
	}
	if l, ok := DefaultLabels[col]; ok {
		return l
	}
	return col
}

func runtimePlot(series []*Series, o *ChartOptions, ppn int) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = o.Title
	pl.Y.Label.Text = "Runtime (s)"
	pl.X.Scale = plot.LogScale{}
	pl.Y.Scale = plot.LogScale{}
	pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	pl.X.Tick.Marker = plot.ConstantTicks(procTicks(series, func(procs int) string {
		return fmtNodes(procs, ppn)
	}))
	pl.Legend.Top = true
	pl.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range series {
		var pts errPoints
		var ideal plotter.XYs
		for _, p := range s.Points {
			// Nothing at or below zero fits on a log axis.
			if p.Measured.Mean <= 0 || p.Optimal <= 0 {
				continue
			}
			y := p.Measured.Mean
			lo := p.Measured.StdDev
			if lo >= y {
				lo = y / 2
			}
			pts.XYs = append(pts.XYs, plotter.XY{X: float64(p.Procs), Y: y})
			pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{lo, p.Measured.StdDev})
			ideal = append(ideal, plotter.XY{X: float64(p.Procs), Y: p.Optimal})
		}
		if len(pts.XYs) == 0 {
			continue
		}
		clr, glyph := styleOf(s.Column, i)

		line, scatter, err := plotter.NewLinePoints(pts.XYs)
		if err != nil {
			return nil, err
		}
		line.Color = clr
		line.Width = vg.Points(3)
		scatter.Color = clr
		scatter.Shape = glyph
		scatter.Radius = vg.Points(4)

		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return nil, err
		}
		bars.Color = clr

		opt, err := plotter.NewLine(ideal)
		if err != nil {
			return nil, err
		}
		opt.Color = clr
		opt.Width = vg.Points(1)
		opt.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

		pl.Add(line, scatter, bars, opt)
		pl.Legend.Add(label(o, s.Column), line, scatter)
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("no positive runtimes to plot")
	}
	widenLog(&pl.X)
	widenLog(&pl.Y)
	return pl, nil
}

// widenLog gives a log axis with a single value some range. plot would
// otherwise pad it by ±1, which can reach zero.
func widenLog(a *plot.Axis) {
	if a.Min == a.Max && a.Min > 0 {
		a.Min /= 2
		a.Max *= 2
	}
}

func efficiencyPlot(series []*Series, o *ChartOptions, ppn int) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = "Number of nodes\nNumber of processes"
	pl.Y.Label.Text = "Parallel efficiency (-)"
	pl.X.Scale = plot.LogScale{}
	pl.X.Tick.Marker = plot.ConstantTicks(procTicks(series, func(procs int) string {
		return fmtNodes(procs, ppn) + "\n" + strconv.Itoa(procs)
	}))
	pl.Add(plotter.NewGrid())

	for i, s := range series {
		var xys plotter.XYs
		for _, p := range s.Points {
			if math.IsInf(p.Efficiency, 0) || math.IsNaN(p.Efficiency) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(p.Procs), Y: p.Efficiency})
		}
		if len(xys) == 0 {
			continue
		}
		clr, glyph := styleOf(s.Column, i)
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.Color = clr
		line.Width = vg.Points(2)
		scatter.Color = clr
		scatter.Shape = glyph
		scatter.Radius = vg.Points(4)
		pl.Add(line, scatter)
	}
	widenLog(&pl.X)
	return pl, nil
}

// procTicks returns a tick at every process count of series.
func procTicks(series []*Series, label func(procs int) string) []plot.Tick {
	seen := make(map[int]bool)
	var procs []int
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.Procs] {
				seen[p.Procs] = true
				procs = append(procs, p.Procs)
			}
		}
	}
	sort.Ints(procs)
	ticks := make([]plot.Tick, len(procs))
	for i, p := range procs {
		ticks[i] = plot.Tick{Value: float64(p), Label: label(p)}
	}
	return ticks
}

func fmtNodes(procs, ppn int) string {
	if procs%ppn == 0 {
		return strconv.Itoa(procs / ppn)
	}
	return strconv.FormatFloat(nodes(procs, ppn), 'g', 3, 64)
}
