package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// Evaluator scores a single identifier.
type Evaluator interface {
	Evaluate(ctx context.Context, identifier string) (*model.ScoreReport, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, identifier string) (*model.ScoreReport, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, identifier string) (*model.ScoreReport, error) {
	return f(ctx, identifier)
}

// EvaluateJob scores one identifier through the configured evaluator.
type EvaluateJob struct {
	Identifier string
	Evaluator  Evaluator
}

// Execute runs the evaluation and wraps the outcome.
func (j *EvaluateJob) Execute(ctx context.Context) Result {
	report, err := j.Evaluator.Evaluate(ctx, j.Identifier)
	return &EvaluateResult{
		Identifier: j.Identifier,
		Report:     report,
		Error:      err,
	}
}

// EvaluateResult carries one identifier's report or failure.
type EvaluateResult struct {
	Identifier string
	Report     *model.ScoreReport
	Error      error
}

// GetError returns the error from the evaluation, if any.
func (r *EvaluateResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates multiple identifiers concurrently.
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency.
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// Process evaluates the given identifiers concurrently.
func (b *BatchProcessor) Process(ctx context.Context, identifiers []string) []*EvaluateResult {
	if len(identifiers) == 0 {
		return []*EvaluateResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range identifiers {
		pool.Submit(&EvaluateJob{
			Identifier: id,
			Evaluator:  b.evaluator,
		})
	}

	results := pool.Wait()

	evalResults := make([]*EvaluateResult, len(results))
	for i, result := range results {
		evalResults[i] = result.(*EvaluateResult)
	}
	return evalResults
}

// ProcessFile reads identifiers from a file and evaluates them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*EvaluateResult, error) {
	identifiers, err := ReadIdentifiersFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read identifiers: %w", err)
	}
	return b.Process(ctx, identifiers), nil
}

// ReadIdentifiersFromFile reads identifiers from a file, one per line.
// Blank lines and lines starting with # are skipped; duplicates collapse.
func ReadIdentifiersFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var identifiers []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			identifiers = append(identifiers, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return identifiers, nil
}
