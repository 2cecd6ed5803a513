// Package render writes the comparison result as a small static HTML
// report: a study index linking per-series pages linking per-instance
// attribute diffs.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/diff"
)

// Config holds the pass-through rendering knobs
type Config struct {
	OutDir string
	// Context trims instance pages to rows near a difference; Lines is the
	// number of unchanged rows kept around each difference.
	Context bool
	Lines   int
}

// Renderer writes one report per study comparison
type Renderer struct {
	cfg  Config
	dict *tag.Dictionary
}

// New creates a Renderer; dict supplies tag keywords for display
func New(cfg Config, dict *tag.Dictionary) *Renderer {
	if cfg.Lines <= 0 {
		cfg.Lines = 1
	}
	return &Renderer{cfg: cfg, dict: dict}
}

// Render writes the full report and returns the study index path
func (r *Renderer) Render(sd *diff.StudyDiff) (string, error) {
	if err := os.MkdirAll(r.cfg.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	var entries []seriesEntry
	for _, se := range sd.Series {
		entry, err := r.renderSeries(se)
		if err != nil {
			return "", err
		}
		entries = append(entries, entry)
	}

	indexPath := filepath.Join(r.cfg.OutDir, "study_index.html")
	data := studyPage{
		RefStudy:  sd.Ref.Label(),
		TestStudy: sd.Test.Label(),
		Series:    entries,
	}
	if err := writeTemplate(indexPath, studyTmpl, data); err != nil {
		return "", err
	}
	return indexPath, nil
}

func (r *Renderer) renderSeries(se diff.SeriesDiff) (seriesEntry, error) {
	label := se.Match.Ref.Label()
	file := label + ".html"
	entry := seriesEntry{
		Label:   label,
		File:    file,
		Matched: se.Match.Test != nil,
		Summary: se.Summary(),
	}

	page := seriesPage{RefSeries: label, Matched: entry.Matched}
	if se.Match.Test != nil {
		page.TestSeries = se.Match.Test.Label()
		page.Match = se.Match.Reason.String()
	}

	for _, inst := range se.Instances {
		instFile := inst.Ref.SOPInstanceUID + ".html"
		ie := instanceEntry{
			UID:     inst.Ref.SOPInstanceUID,
			File:    instFile,
			Paired:  inst.Test != nil,
			Summary: inst.Summary(),
		}
		page.Instances = append(page.Instances, ie)
		if err := r.renderInstance(inst, instFile); err != nil {
			return entry, err
		}
	}

	return entry, writeTemplate(filepath.Join(r.cfg.OutDir, file), seriesTmpl, page)
}

func (r *Renderer) renderInstance(inst diff.InstanceDiff, file string) error {
	page := instancePage{
		UID:     inst.Ref.SOPInstanceUID,
		Paired:  inst.Test != nil,
		Context: r.cfg.Context,
	}
	if inst.Test != nil {
		page.TestUID = inst.Test.SOPInstanceUID
		rows := r.rows(inst.Records, 0)
		if r.cfg.Context {
			rows = contextRows(rows, r.cfg.Lines)
		}
		page.Rows = rows
	}
	return writeTemplate(filepath.Join(r.cfg.OutDir, file), instanceTmpl, page)
}

// row is one rendered diff line; Depth indents nested sequence content
type row struct {
	Depth   int
	Item    bool // item separator line
	Tag     string
	Keyword string
	VR      string
	Status  string
	Ref     string
	Test    string
	Changed bool
}

// Indent renders nesting for the template
func (r row) Indent() string {
	s := ""
	for i := 0; i < r.Depth; i++ {
		s += "    "
	}
	return s
}

func (r *Renderer) rows(records []diff.DiffRecord, depth int) []row {
	var out []row
	for _, rec := range records {
		changed := rec.Status == diff.Differ ||
			rec.Status == diff.OnlyInReference || rec.Status == diff.OnlyInTest
		out = append(out, row{
			Depth:   depth,
			Tag:     rec.Tag.String(),
			Keyword: r.dict.Keyword(rec.Tag),
			VR:      string(rec.VR),
			Status:  rec.Status.String(),
			Ref:     formatValue(rec.Ref),
			Test:    formatValue(rec.Test),
			Changed: changed,
		})
		for _, item := range rec.Items {
			out = append(out, row{
				Depth:  depth + 1,
				Item:   true,
				Tag:    fmt.Sprintf("item %d", item.Index+1),
				Status: "item",
			})
			out = append(out, r.rows(item.Records, depth+1)...)
		}
	}
	return out
}

// contextRows keeps rows within lines of a changed row, the way a context
// diff trims unchanged runs. Item separator rows survive when any of their
// neighborhood survives.
func contextRows(rows []row, lines int) []row {
	keep := make([]bool, len(rows))
	for i, r := range rows {
		if !r.Changed {
			continue
		}
		lo := i - lines
		if lo < 0 {
			lo = 0
		}
		hi := i + lines
		if hi > len(rows)-1 {
			hi = len(rows) - 1
		}
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}
	var out []row
	for i, r := range rows {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// formatValue renders an element value for display; absent elements render
// empty
func formatValue(elem *dicom.Element) string {
	if elem == nil {
		return ""
	}
	switch v := elem.Value.(type) {
	case nil:
		return ""
	case []*dicom.Dataset:
		return fmt.Sprintf("sequence (%d items)", len(v))
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("binary (%d bytes)", len(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func writeTemplate(path string, tmpl *template.Template, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

type studyPage struct {
	RefStudy  string
	TestStudy string
	Series    []seriesEntry
}

type seriesEntry struct {
	Label   string
	File    string
	Matched bool
	Summary diff.Summary
}

type seriesPage struct {
	RefSeries  string
	TestSeries string
	Match      string
	Matched    bool
	Instances  []instanceEntry
}

type instanceEntry struct {
	UID     string
	File    string
	Paired  bool
	Summary diff.Summary
}

type instancePage struct {
	UID     string
	TestUID string
	Paired  bool
	Context bool
	Rows    []row
}

var studyTmpl = template.Must(template.New("study").Parse(`<!DOCTYPE html>
<html>
<head><title>DICOM study comparison</title></head>
<body>
<h1>DICOM study comparison</h1>
<p>Reference: {{.RefStudy}}<br>Test: {{.TestStudy}}</p>
<p>Select a reference series to view differences:</p>
<ol>
{{range .Series}}<li><a href="{{.File}}">{{.Label}}</a>{{if not .Matched}} (unmatched){{else if .Summary.Changed}} ({{.Summary.Differ}} differ, {{.Summary.OnlyRef}} ref-only, {{.Summary.OnlyTest}} test-only){{else}} (no differences){{end}}</li>
{{end}}</ol>
</body>
</html>
`))

var seriesTmpl = template.Must(template.New("series").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.RefSeries}}</title></head>
<body>
<h1>Reference series: {{.RefSeries}}</h1>
{{if .Matched}}<h1>Test series: {{.TestSeries}} ({{.Match}} match)</h1>
<p>Select an instance to view differences:</p>
<ol>
{{range .Instances}}<li><a href="{{.File}}">{{.UID}}</a>{{if not .Paired}} (no test instance){{end}}</li>
{{end}}</ol>
{{else}}<p>No series from test study selected for comparison</p>
{{end}}</body>
</html>
`))

var instanceTmpl = template.Must(template.New("instance").Parse(`<!DOCTYPE html>
<html>
<head><title>Instance {{.UID}}</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
td, th { border: 1px solid #ccc; padding: 2px 8px; }
tr.differ { background: #ffdddd; }
tr.only-in-reference { background: #ffffcc; }
tr.only-in-test { background: #ddffdd; }
tr.ignored { color: #999; }
tr.item td { background: #eee; }
</style>
</head>
<body>
<h1>Instance {{.UID}}</h1>
{{if .Paired}}<p>Compared against test instance {{.TestUID}}{{if .Context}} (context view){{end}}</p>
<table>
<tr><th>tag</th><th>keyword</th><th>VR</th><th>status</th><th>reference</th><th>test</th></tr>
{{range .Rows}}{{if .Item}}<tr class="item"><td colspan="6">{{.Indent}}{{.Tag}}</td></tr>
{{else}}<tr class="{{.Status}}"><td>{{.Indent}}{{.Tag}}</td><td>{{.Keyword}}</td><td>{{.VR}}</td><td>{{.Status}}</td><td>{{.Ref}}</td><td>{{.Test}}</td></tr>
{{end}}{{end}}</table>
{{else}}<p>No instance from test series found or selected for comparison</p>
{{end}}</body>
</html>
`))
