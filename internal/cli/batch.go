package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"github.com/scholarlytrust/scholarlytrust/internal/pipeline"
	"github.com/scholarlytrust/scholarlytrust/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchKind    string
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate identifiers from a file concurrently",
	Long: `Evaluate a list of identifiers, one per line. Blank lines and lines
starting with # are skipped; duplicates are collapsed.

The file holds journals (ISSNs or names) by default; pass --kind paper for
DOIs or titles. Mixed identifier shapes are fine within a kind: each line
is classified the same way the single-subject commands classify their
argument.

Example:
  scholarlytrust batch journals.txt
  scholarlytrust batch papers.txt --kind paper --workers 8 --json reports.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	registerEvalFlags(batchCmd)
	batchCmd.Flags().StringVar(&batchKind, "kind", "journal", "identifier kind: journal or paper")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent evaluations (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(batchKind)
	if kind != "journal" && kind != "paper" {
		return fmt.Errorf("unknown kind %q (expected journal or paper)", batchKind)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchWorkers > 0 {
		cfg.Concurrency.Workers = batchWorkers
	}

	ev, err := buildEvaluator(cfg)
	if err != nil {
		return err
	}

	evaluate := worker.EvaluatorFunc(func(ctx context.Context, identifier string) (*model.ScoreReport, error) {
		if kind == "paper" {
			ref := pipeline.PaperRef{}
			if isDOI(identifier) {
				ref.DOI = stripDOIPrefix(identifier)
			} else {
				if err := validateTitle(identifier); err != nil {
					return nil, fmt.Errorf("invalid paper title: %w", err)
				}
				ref.Title = identifier
			}
			return ev.EvaluatePaper(ctx, ref)
		}

		ref := pipeline.JournalRef{}
		if isISSN(identifier) {
			ref.ISSN = strings.ToUpper(identifier)
		} else {
			if err := validateTitle(identifier); err != nil {
				return nil, fmt.Errorf("invalid journal name: %w", err)
			}
			ref.Name = identifier
		}
		return ev.EvaluateJournal(ctx, ref)
	})

	bp := worker.NewBatchProcessor(evaluate, cfg.Concurrency.Workers)
	results, err := bp.ProcessFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(os.Stdout, cfg.Output.NoColor)
	var reports []*model.ScoreReport
	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Identifier, describeEvalError(res.Error, res.Identifier))
			continue
		}
		reports = append(reports, res.Report)
		renderer.Render(res.Report)
	}

	fmt.Fprintf(os.Stdout, "\nEvaluated %d of %d identifiers (%d failed)\n",
		len(reports), len(results), failures)

	if cfg.Output.JSONPath != "" && len(reports) > 0 {
		if err := pipeline.WriteJSON(cfg.Output.JSONPath, reports); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ %d reports written to %s\n", len(reports), cfg.Output.JSONPath)
		}
	}

	if failures > 0 && len(reports) == 0 {
		return fmt.Errorf("all %d evaluations failed", failures)
	}
	return nil
}
