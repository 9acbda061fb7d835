package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// Renderer prints score reports for humans and writes them as JSON for
// machines.
type Renderer struct {
	out     io.Writer
	noColor bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	return &Renderer{out: out, noColor: noColor}
}

// Render prints the full report: verdict line, check table, reasons, and
// the optional rationale.
func (r *Renderer) Render(report *model.ScoreReport) {
	fmt.Fprintf(r.out, "\n%s: %s", kindLabel(report.Kind), report.Subject)
	if report.Identifier != "" && report.Identifier != report.Subject {
		fmt.Fprintf(r.out, " (%s)", report.Identifier)
	}
	fmt.Fprintln(r.out)

	fmt.Fprintf(r.out, "Score: %d/100  Verdict: %s\n", report.Score, r.bandLabel(report.Band))

	if report.Hijacked {
		fmt.Fprintln(r.out, r.colorize(color.FgRed, "Listed in the hijacked-journal registry. All other signals are overridden."))
		r.renderRationale(report)
		return
	}
	if report.ReducedConfidence {
		fmt.Fprintln(r.out, r.colorize(color.FgYellow, "Reduced confidence: at least half of the checks lacked data."))
	}
	fmt.Fprintln(r.out)

	r.renderChecks(report.Checks)

	if len(report.Reasons) > 0 {
		fmt.Fprintln(r.out, "\nReasons:")
		for _, reason := range report.Reasons {
			fmt.Fprintf(r.out, "  - %s\n", reason)
		}
	}

	r.renderRationale(report)
}

func (r *Renderer) renderChecks(checks []model.CheckResult) {
	table := tablewriter.NewWriter(r.out)
	table.Header([]string{"Check", "Status", "Penalty"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(checks))
	for _, c := range checks {
		penalty := "-"
		if c.Penalty > 0 {
			penalty = fmt.Sprintf("-%d", c.Penalty)
		}
		data = append(data, []string{c.Name, r.statusLabel(c.Status), penalty})
	}
	if err := table.Bulk(data); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: render table: %v\n", err)
		return
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: render table: %v\n", err)
	}
}

func (r *Renderer) renderRationale(report *model.ScoreReport) {
	if report.Rationale == nil {
		return
	}
	fmt.Fprintf(r.out, "\nRationale (%s/%s, advisory only):\n%s\n",
		report.Rationale.Provider, report.Rationale.Model, report.Rationale.Text)
}

func kindLabel(kind model.SubjectKind) string {
	if kind == model.KindPaper {
		return "Paper"
	}
	return "Journal"
}

func (r *Renderer) bandLabel(band model.Band) string {
	switch band {
	case model.BandTrusted:
		return r.colorize(color.FgGreen, string(band))
	case model.BandQuestionable:
		return r.colorize(color.FgYellow, string(band))
	default:
		return r.colorize(color.FgRed, string(band))
	}
}

func (r *Renderer) statusLabel(status model.CheckStatus) string {
	switch status {
	case model.CheckFlagged:
		return r.colorize(color.FgRed, string(status))
	case model.CheckSkipped:
		return r.colorize(color.FgYellow, string(status))
	default:
		return string(status)
	}
}

func (r *Renderer) colorize(attr color.Attribute, s string) string {
	if r.noColor {
		return s
	}
	return color.New(attr, color.Bold).Sprint(s)
}

// WriteJSON writes one or more reports to path as pretty-printed JSON.
// A single report is written as an object, several as an array.
func WriteJSON(path string, reports []*model.ScoreReport) error {
	var payload interface{} = reports
	if len(reports) == 1 {
		payload = reports[0]
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}
