// Package pipeline orchestrates one evaluation: registry lookup, metadata
// fetch, optional homepage probe, rule scoring, and optional LLM rationale.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/scholarlytrust/scholarlytrust/internal/llm"
	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"github.com/scholarlytrust/scholarlytrust/internal/score"
)

// JournalSource fetches journal metadata by identifier.
type JournalSource interface {
	JournalByISSN(ctx context.Context, issn string) (*model.JournalRecord, error)
	JournalByName(ctx context.Context, name string) (*model.JournalRecord, error)
}

// PaperSource fetches paper metadata by identifier.
type PaperSource interface {
	PaperByDOI(ctx context.Context, doi string) (*model.PaperRecord, error)
	PaperByTitle(ctx context.Context, title string) (*model.PaperRecord, error)
}

// HijackRegistry answers membership queries against the hijacked-journal lists.
type HijackRegistry interface {
	LookupISSN(issn string) bool
	LookupTitle(title string) bool
}

// HomepageProber verifies a journal's homepage. Nil disables the probe.
type HomepageProber interface {
	Probe(ctx context.Context, homepageURL, journalTitle string) *model.HomepageStatus
}

// JournalRef identifies a journal to evaluate. Exactly one field is set.
type JournalRef struct {
	ISSN string
	Name string
}

// PaperRef identifies a paper to evaluate. Exactly one field is set.
type PaperRef struct {
	DOI   string
	Title string
}

// Evaluator runs the full evaluation pipeline.
type Evaluator struct {
	journals JournalSource
	papers   PaperSource
	registry HijackRegistry
	prober   HomepageProber
	engine   *score.Engine
	provider llm.Provider
	verbose  bool
}

// Options bundles the evaluator's collaborators. Journals, Registry and
// Engine are required; the rest are optional.
type Options struct {
	Journals JournalSource
	Papers   PaperSource
	Registry HijackRegistry
	Prober   HomepageProber
	Engine   *score.Engine
	Provider llm.Provider
	Verbose  bool
}

// NewEvaluator creates an evaluator from its collaborators.
func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{
		journals: opts.Journals,
		papers:   opts.Papers,
		registry: opts.Registry,
		prober:   opts.Prober,
		engine:   opts.Engine,
		provider: opts.Provider,
		verbose:  opts.Verbose,
	}
}

// EvaluateJournal scores a journal. A hijacked-registry hit on the given
// identifier or on the fetched record short-circuits to a zero score with a
// single reason; no fetch and no rationale follow.
func (ev *Evaluator) EvaluateJournal(ctx context.Context, ref JournalRef) (*model.ScoreReport, error) {
	identifier := ref.ISSN
	if identifier == "" {
		identifier = ref.Name
	}

	if ref.ISSN != "" && ev.registry.LookupISSN(ref.ISSN) {
		ev.logf("✗ %s is on the hijacked-journal registry", ref.ISSN)
		return ev.engine.HijackedReport(model.KindJournal, ref.Name, ref.ISSN), nil
	}
	if ref.Name != "" && ev.registry.LookupTitle(ref.Name) {
		ev.logf("✗ %q is on the hijacked-journal registry", ref.Name)
		return ev.engine.HijackedReport(model.KindJournal, ref.Name, ""), nil
	}

	rec, err := ev.fetchJournal(ctx, ref)
	if err != nil {
		return nil, err
	}
	ev.logf("✓ fetched journal %q (%s)", rec.Title, rec.ISSN)

	// The registry may know the record under its canonical ISSN or title
	// even when the query used the other identifier.
	if (rec.ISSN != "" && ev.registry.LookupISSN(rec.ISSN)) ||
		(rec.Title != "" && ev.registry.LookupTitle(rec.Title)) {
		ev.logf("✗ %q is on the hijacked-journal registry", rec.Title)
		return ev.engine.HijackedReport(model.KindJournal, rec.Title, rec.ISSN), nil
	}

	if ev.prober != nil && rec.HomepageURL != "" {
		rec.Homepage = ev.prober.Probe(ctx, rec.HomepageURL, rec.Title)
		if rec.Homepage != nil {
			ev.logf("✓ probed homepage %s (reachable=%v)", rec.HomepageURL, rec.Homepage.Reachable)
		}
	}

	report, err := ev.engine.ScoreJournal(rec)
	if err != nil {
		return nil, fmt.Errorf("score journal %q: %w", identifier, err)
	}
	return ev.withRationale(ctx, report), nil
}

// EvaluatePaper scores a paper. A paper published in a hijacked journal is
// reported as predatory without further checks.
func (ev *Evaluator) EvaluatePaper(ctx context.Context, ref PaperRef) (*model.ScoreReport, error) {
	identifier := ref.DOI
	if identifier == "" {
		identifier = ref.Title
	}

	rec, err := ev.fetchPaper(ctx, ref)
	if err != nil {
		return nil, err
	}
	ev.logf("✓ fetched paper %q", rec.Title)

	if ev.hostedByHijacked(rec) {
		ev.logf("✗ hosting journal is on the hijacked-journal registry")
		return ev.engine.HijackedReport(model.KindPaper, rec.Title, rec.DOI), nil
	}

	report, err := ev.engine.ScorePaper(rec)
	if err != nil {
		return nil, fmt.Errorf("score paper %q: %w", identifier, err)
	}
	return ev.withRationale(ctx, report), nil
}

func (ev *Evaluator) fetchJournal(ctx context.Context, ref JournalRef) (*model.JournalRecord, error) {
	if ref.ISSN != "" {
		rec, err := ev.journals.JournalByISSN(ctx, ref.ISSN)
		if err != nil {
			return nil, fmt.Errorf("fetch journal %q: %w", ref.ISSN, err)
		}
		return rec, nil
	}
	rec, err := ev.journals.JournalByName(ctx, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch journal %q: %w", ref.Name, err)
	}
	return rec, nil
}

func (ev *Evaluator) fetchPaper(ctx context.Context, ref PaperRef) (*model.PaperRecord, error) {
	if ref.DOI != "" {
		rec, err := ev.papers.PaperByDOI(ctx, ref.DOI)
		if err != nil {
			return nil, fmt.Errorf("fetch paper %q: %w", ref.DOI, err)
		}
		return rec, nil
	}
	rec, err := ev.papers.PaperByTitle(ctx, ref.Title)
	if err != nil {
		return nil, fmt.Errorf("fetch paper %q: %w", ref.Title, err)
	}
	return rec, nil
}

func (ev *Evaluator) hostedByHijacked(rec *model.PaperRecord) bool {
	if rec.JournalISSN != "" && ev.registry.LookupISSN(rec.JournalISSN) {
		return true
	}
	return rec.Journal != nil && rec.Journal.Title != "" && ev.registry.LookupTitle(rec.Journal.Title)
}

// withRationale attaches the optional LLM explanation. Scoring is already
// done; a provider failure only costs the commentary.
func (ev *Evaluator) withRationale(ctx context.Context, report *model.ScoreReport) *model.ScoreReport {
	if ev.provider == nil || report == nil {
		return report
	}

	rationale, err := ev.provider.Rationale(ctx, llm.RationaleRequest{Report: *report})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: rationale generation failed: %v\n", err)
		return report
	}
	report.Rationale = rationale
	ev.logf("✓ rationale generated by %s", rationale.Provider)
	return report
}

func (ev *Evaluator) logf(format string, args ...interface{}) {
	if ev.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
