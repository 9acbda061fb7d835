package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/pipeline"
	"github.com/spf13/cobra"
)

var paperByTitle bool

// paperCmd represents the paper command
var paperCmd = &cobra.Command{
	Use:   "paper <doi|title>",
	Short: "Evaluate the credibility of an academic paper",
	Long: `Evaluate a paper by DOI or by title.

An argument shaped like a DOI (e.g. 10.1038/s41467-023-36000-6) is looked
up by DOI; anything else is treated as a title search. The paper's hosting
journal is fetched and weighed as part of the evaluation.

Example:
  scholarlytrust paper 10.1038/s41467-023-36000-6
  scholarlytrust paper "Attention Is All You Need"
  scholarlytrust paper 10.1038/s41467-023-36000-6 --llm-provider anthropic --llm`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	rootCmd.AddCommand(paperCmd)
	registerEvalFlags(paperCmd)
	paperCmd.Flags().BoolVar(&paperByTitle, "title", false, "treat the argument as a title even if it looks like a DOI")
}

func runPaper(cmd *cobra.Command, args []string) error {
	arg := strings.TrimSpace(args[0])

	ref := pipeline.PaperRef{}
	if !paperByTitle && isDOI(arg) {
		ref.DOI = stripDOIPrefix(arg)
	} else {
		if err := validateTitle(arg); err != nil {
			return fmt.Errorf("invalid paper title: %w", err)
		}
		ref.Title = arg
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ev, err := buildEvaluator(cfg)
	if err != nil {
		return err
	}

	report, err := ev.EvaluatePaper(context.Background(), ref)
	if err != nil {
		return describeEvalError(err, arg)
	}

	return renderReport(cfg, report)
}
