package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// One-shot static page; no live dashboard.
const htmlPage = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>Roster sync report</title>
<style>
  body { font-family: sans-serif; margin: 2em; color: #222; }
  table { border-collapse: collapse; margin-bottom: 2em; }
  th, td { border: 1px solid #bbb; padding: 4px 10px; text-align: left; }
  th { background: #f0f0f0; }
  h2 { margin-top: 1.5em; }
  .err { color: #a00; }
</style>
</head>
<body>
<h1>Roster sync report</h1>
<p>{{.Timestamp.Format "2006-01-02 15:04:05"}} — mode: {{.Mode}}{{if .DryRun}} (dry run){{end}}</p>

<h2>Summary</h2>
<table>
<tr><th>Source rows</th><td>{{.Summary.SourceRows}}</td></tr>
<tr><th>Valid records</th><td>{{.Summary.ValidRecords}}</td></tr>
<tr><th>Dropped (no name)</th><td>{{.Summary.DroppedRecords}}</td></tr>
<tr><th>DB before / after</th><td>{{.Summary.DBBefore}} / {{.Summary.DBAfter}}</td></tr>
<tr><th>Inserted</th><td>{{.Summary.Inserted}}</td></tr>
<tr><th>Updated</th><td>{{.Summary.Updated}}</td></tr>
<tr><th>Skipped</th><td>{{.Summary.Skipped}}</td></tr>
<tr><th>Deleted</th><td>{{.Summary.Deleted}}</td></tr>
<tr><th>Failed</th><td>{{.Summary.Failed}}</td></tr>
<tr><th>Retained extras</th><td>{{.Summary.RetainedExtras}}</td></tr>
<tr><th>Accuracy</th><td>{{.Summary.Accuracy}}</td></tr>
</table>

<h2>City distribution</h2>
<table>
<tr><th>City</th><th>Members</th><th>Share</th></tr>
{{range .CityDistribution}}<tr><td>{{.City}}</td><td>{{.Count}}</td><td>{{.Percentage}}</td></tr>
{{end}}</table>
<p>Location coverage: {{.DataQuality.Coverage}} ({{.DataQuality.SentinelLocation}} members without a known city)</p>

{{if .Mismatches}}<h2>Field mismatches (sample)</h2>
<table>
<tr><th>Member</th><th>Field</th><th>Old</th><th>New</th></tr>
{{range .Mismatches}}<tr><td>{{.Name}}</td><td>{{.Field}}</td><td>{{.Old}}</td><td>{{.New}}</td></tr>
{{end}}</table>{{end}}

{{if .Operations}}<h2>Operations (sample)</h2>
<table>
<tr><th>Type</th><th>Member</th><th>Row</th><th>Error</th></tr>
{{range .Operations}}<tr><td>{{.Type}}</td><td>{{.Name}}</td><td>{{if .Row}}{{.Row}}{{end}}</td><td class="err">{{.Error}}</td></tr>
{{end}}</table>{{end}}

{{if .ExtraUsers}}<h2>Retained unmatched members (sample)</h2>
<table>
<tr><th>Name</th><th>Phone</th></tr>
{{range .ExtraUsers}}<tr><td>{{.Name}}</td><td>{{.Phone}}</td></tr>
{{end}}</table>{{end}}

</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlPage))

// WriteHTML renders the report as a static page for manual review.
func WriteHTML(r Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	defer f.Close()
	if err := htmlTmpl.Execute(f, r); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
