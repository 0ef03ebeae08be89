// Package htmlreport renders grading results as a single self-contained
// HTML page and, by default, opens it in the local browser. This is the
// report surface students see.
package htmlreport

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/pkg/browser"

	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/ports"
)

var _ ports.ReportSink = (*Sink)(nil)

// Config controls where the report is written and whether it is opened.
type Config struct {
	// Path of the generated report file. Defaults to "results.html".
	Path string
	// OpenBrowser opens the report in the default browser after writing.
	OpenBrowser bool
}

// Sink writes an HTML report file.
type Sink struct {
	config Config
}

// New constructs an HTML report sink.
func New(cfg Config) *Sink {
	if cfg.Path == "" {
		cfg.Path = "results.html"
	}
	return &Sink{config: cfg}
}

// Publish renders the report and writes it to the configured path.
func (s *Sink) Publish(ctx context.Context, results []grading.TestResult) error {
	file, err := os.Create(s.config.Path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := render(file, results); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	if s.config.OpenBrowser {
		// Opening the browser is best-effort: on a headless machine the
		// report file is still there.
		_ = browser.OpenFile(s.config.Path)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}

type reportRow struct {
	Name    string
	Script  string
	Verdict string
	Class   string
	Detail  string
}

func render(w io.Writer, results []grading.TestResult) error {
	rows := make([]reportRow, 0, len(results))
	for _, result := range results {
		rows = append(rows, makeRow(result))
	}
	if err := reportTemplate.Execute(w, rows); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func makeRow(result grading.TestResult) reportRow {
	row := reportRow{
		Name:   result.Case.Name,
		Script: result.Case.Script,
	}
	switch result.Outcome {
	case grading.OutcomePassed:
		row.Verdict = "PASS"
		row.Class = "pass"
	case grading.OutcomeFailed:
		row.Verdict = "FAIL"
		row.Class = "fail"
		row.Detail = result.FailMessage
	default:
		row.Verdict = "ERROR"
		row.Class = "error"
		row.Detail = result.ErrorText
	}
	return row
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
<head>
<link href="https://fonts.googleapis.com/css2?family=Roboto:wght@400;500;700&display=swap" rel="stylesheet">
<style>
table {
  border-radius: 10px;
  width: 100%;
  margin: 40px auto;
  box-shadow: 0 2px 15px rgba(0, 0, 0, 0.1);
  text-align: center;
  border-spacing: 0;
}
table tr:first-child td { border-top: 0; }
table tr td:first-child { border-left: 0; }
table tr:last-child td { border-bottom: 0; }
table tr td:last-child { border-right: 0; }
th, td {
  border: solid 1px #68706a29;
  padding: 20px;
  font-size: 16px;
  font-weight: 500;
  color: #333;
  text-align: center;
  vertical-align: middle;
}
th {
  background-color: #ddd;
  font-weight: bold;
}
pre {
  background-color: #f6f8fa;
  border-radius: 10px;
  font-size: 85%;
  line-height: 1.45;
  overflow: auto;
  padding: 16px;
  text-align: left;
  margin: 20px 0;
}
body {
  padding: 20px;
  background-color: #f2f2f2;
  font-family: 'Roboto', sans-serif;
}
.error { background-color: #FFE844; }
.pass { background-color: #A6FB88; }
.fail { background-color: #FF4444; }
</style>
</head>
<body>
<table>
<tr>
<th>Test name</th>
<th>Script</th>
<th>Result</th>
<th>Details</th>
</tr>
{{range .}}<tr>
<td><b>{{.Name}}</b></td>
<td><b>{{.Script}}</b></td>
<td class="{{.Class}}"><b>{{.Verdict}}</b></td>
<td>{{if .Detail}}<pre>{{.Detail}}</pre>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))
