package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"github.com/scholarlytrust/scholarlytrust/internal/openalex"
	"github.com/scholarlytrust/scholarlytrust/internal/pipeline"
	"github.com/spf13/cobra"
)

var journalByName bool

// journalCmd represents the journal command
var journalCmd = &cobra.Command{
	Use:   "journal <issn|name>",
	Short: "Evaluate the credibility of an academic journal",
	Long: `Evaluate a journal by ISSN or by exact name.

An argument shaped like an ISSN (e.g. 2041-1723) is looked up by ISSN;
anything else is treated as a journal name. Name lookups require an exact
match on the journal's registered name, so prefer the ISSN when you have it.

Example:
  scholarlytrust journal 2041-1723
  scholarlytrust journal "Nature Communications"
  scholarlytrust journal 2041-1723 --llm --json report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	registerEvalFlags(journalCmd)
	journalCmd.Flags().BoolVar(&journalByName, "name", false, "treat the argument as a journal name even if it looks like an ISSN")
}

func runJournal(cmd *cobra.Command, args []string) error {
	arg := strings.TrimSpace(args[0])

	ref := pipeline.JournalRef{}
	if !journalByName && isISSN(arg) {
		ref.ISSN = strings.ToUpper(arg)
	} else {
		if err := validateTitle(arg); err != nil {
			return fmt.Errorf("invalid journal name: %w", err)
		}
		ref.Name = arg
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ev, err := buildEvaluator(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	report, err := ev.EvaluateJournal(ctx, ref)
	if err != nil {
		return describeEvalError(err, arg)
	}

	return renderReport(cfg, report)
}

// describeEvalError translates pipeline failures into user-facing messages.
func describeEvalError(err error, identifier string) error {
	if errors.Is(err, openalex.ErrNotFound) {
		return fmt.Errorf("no record found for %q; check the identifier (name lookups require an exact match)", identifier)
	}
	return err
}

// renderReport prints the report and optionally writes it as JSON.
func renderReport(cfg *model.Config, report *model.ScoreReport) error {
	pipeline.NewRenderer(os.Stdout, cfg.Output.NoColor).Render(report)

	if cfg.Output.JSONPath != "" {
		if err := pipeline.WriteJSON(cfg.Output.JSONPath, []*model.ScoreReport{report}); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ report written to %s\n", cfg.Output.JSONPath)
		}
	}
	return nil
}
