// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalestat

import (
	"io"

	"github.com/google/safehtml/template"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleseries"
)

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
th, td { padding: 0.2em 0.8em; text-align: right; }
tr:nth-child(even) { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Entries}}<tr>
<td>{{.Key}}</td><td>{{.Procs}}</td><td>{{.Muscles}}</td><td>{{.MusclesPerProc}}</td><td>{{.Fibers}}</td>
<td title="{{sd .Solve0D}}">{{dur .Solve0D}}</td><td title="{{sd .Solve1D}}">{{dur .Solve1D}}</td><td title="{{sd .Total}}">{{dur .Total}}</td>
<td>{{.N}}</td><td>{{mem .MemData}}</td>
</tr>
{{end}}</table>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"dur": func(s scalemath.Summary) string { return scaled(s, scalefmt.ColDurationTotal) },
	"mem": func(s scalemath.Summary) string { return scaled(s, scalefmt.ColMemoryData) },
	"sd": func(s scalemath.Summary) string {
		if !s.Defined() {
			return ""
		}
		return "± " + scaled(scalemath.Summary{Mean: s.StdDev, N: s.N}, scalefmt.ColDurationTotal)
	},
}).Parse(reportHTML))

// FormatHTML writes the report of groups as an HTML page.
func FormatHTML(w io.Writer, title string, groups []*scaleseries.Group) error {
	return reportTemplate.Execute(w, struct {
		Title   string
		Header  []string
		Entries []Entry
	}{title, header, Entries(groups)})
}
