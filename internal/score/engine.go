package score

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// ErrInsufficientData is returned when every check had to be skipped.
// Callers report "insufficient data to score" instead of a number.
var ErrInsufficientData = errors.New("insufficient data to score")

// Engine evaluates the named heuristic checks against a fetched record and
// derives a score report. It is a pure function of the record and the
// configured weights: no I/O, no state shared between evaluations.
type Engine struct {
	cfg     model.ScoringConfig
	nowFunc func() time.Time
}

// NewEngine creates a rule engine with the given scoring configuration.
func NewEngine(cfg model.ScoringConfig) *Engine {
	return &Engine{
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// outcome is one check's raw verdict before aggregation.
type outcome struct {
	flagged bool
	skipped bool
	reason  string
}

func flagged(reason string) outcome { return outcome{flagged: true, reason: reason} }
func passed() outcome               { return outcome{} }
func skipped() outcome              { return outcome{skipped: true, reason: "insufficient data"} }

// ScoreJournal evaluates all journal checks and aggregates the report.
func (e *Engine) ScoreJournal(rec *model.JournalRecord) (*model.ScoreReport, error) {
	checks := []struct {
		name string
		out  outcome
	}{
		{CheckOpenAccessWithoutDOAJ, e.checkOpenAccessWithoutDOAJ(rec)},
		{CheckNotInCoreIndex, e.checkNotInCoreIndex(rec)},
		{CheckHighRetractionRate, e.checkRetractions(rec.Retractions)},
		{CheckAPCOutOfRange, e.checkAPC(rec)},
		{CheckWorksCitationMismatch, e.checkWorksCitationMismatch(rec)},
		{CheckScopeSprawl, e.checkScopeSprawl(rec)},
		{CheckUnknownPublisher, e.checkUnknownPublisher(rec)},
		{CheckLowORCIDCoverage, e.checkORCIDCoverage(rec.Authors)},
		{CheckHomepageUnverified, e.checkHomepage(rec)},
	}

	report := e.aggregate(checks)
	if report == nil {
		return nil, ErrInsufficientData
	}

	report.Subject = rec.Title
	report.Identifier = rec.ISSN
	report.Kind = model.KindJournal
	return report, nil
}

// ScorePaper evaluates all paper checks and aggregates the report.
func (e *Engine) ScorePaper(rec *model.PaperRecord) (*model.ScoreReport, error) {
	checks := []struct {
		name string
		out  outcome
	}{
		{CheckRetractedPaper, e.checkRetractedPaper(rec)},
		{CheckJournalNotIndexed, e.checkJournalNotIndexed(rec)},
		{CheckJournalRetractionHistory, e.checkJournalRetractionHistory(rec)},
		{CheckMissingDOI, e.checkMissingDOI(rec)},
		{CheckStaleUncited, e.checkStaleUncited(rec)},
		{CheckLowORCIDCoverage, e.checkORCIDCoverage(rec.Authors)},
		{CheckMissingAffiliations, e.checkAffiliations(rec.Authors)},
	}

	report := e.aggregate(checks)
	if report == nil {
		return nil, ErrInsufficientData
	}

	report.Subject = rec.Title
	report.Identifier = rec.DOI
	report.Kind = model.KindPaper
	return report, nil
}

// HijackedReport builds the short-circuit report for a registry hit: score 0,
// band predatory, no further checks.
func (e *Engine) HijackedReport(kind model.SubjectKind, subject, identifier string) *model.ScoreReport {
	reason := "listed in the hijacked-journal registry"
	return &model.ScoreReport{
		Subject:    subject,
		Identifier: identifier,
		Kind:       kind,
		Score:      0,
		Band:       model.BandPredatory,
		Checks: []model.CheckResult{{
			Name:    CheckHijackedJournal,
			Status:  model.CheckFlagged,
			Penalty: e.baseline(),
			Reason:  reason,
		}},
		Reasons:     []string{reason},
		Hijacked:    true,
		EvaluatedAt: e.nowFunc().UTC(),
	}
}

// aggregate applies the baseline-minus-penalties model: start at the
// baseline, subtract the penalty of each flagged check, floor at 0 and clamp
// to [0,100]. Returns nil when every check was skipped.
func (e *Engine) aggregate(checks []struct {
	name string
	out  outcome
}) *model.ScoreReport {
	score := e.baseline()
	results := make([]model.CheckResult, 0, len(checks))
	var reasons []string
	skippedCount := 0

	for _, c := range checks {
		res := model.CheckResult{Name: c.name, Reason: c.out.reason}
		switch {
		case c.out.skipped:
			res.Status = model.CheckSkipped
			skippedCount++
		case c.out.flagged:
			res.Status = model.CheckFlagged
			res.Penalty = e.penalty(c.name)
			score -= res.Penalty
			reasons = append(reasons, c.out.reason)
		default:
			res.Status = model.CheckPassed
		}
		results = append(results, res)
	}

	if skippedCount == len(checks) {
		return nil
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &model.ScoreReport{
		Score:             score,
		Band:              e.band(score),
		Checks:            results,
		Reasons:           reasons,
		ReducedConfidence: skippedCount*2 >= len(checks),
		EvaluatedAt:       e.nowFunc().UTC(),
	}
}

func (e *Engine) baseline() int {
	if e.cfg.Baseline > 0 {
		return e.cfg.Baseline
	}
	return 100
}

func (e *Engine) penalty(name string) int {
	if p, ok := e.cfg.Penalties[name]; ok {
		return p
	}
	return DefaultPenalty(name)
}

func (e *Engine) band(score int) model.Band {
	switch {
	case score >= e.cfg.TrustedMin:
		return model.BandTrusted
	case score >= e.cfg.QuestionableMin:
		return model.BandQuestionable
	default:
		return model.BandPredatory
	}
}

// Journal checks.

func (e *Engine) checkOpenAccessWithoutDOAJ(rec *model.JournalRecord) outcome {
	if rec.OpenAccess == nil || rec.InDOAJ == nil {
		return skipped()
	}
	if *rec.OpenAccess && !*rec.InDOAJ {
		return flagged("open access journal is not listed in DOAJ")
	}
	return passed()
}

func (e *Engine) checkNotInCoreIndex(rec *model.JournalRecord) outcome {
	if rec.InScopus == nil {
		return skipped()
	}
	if !*rec.InScopus {
		return flagged("not indexed in a core index (Scopus)")
	}
	return passed()
}

func (e *Engine) checkRetractions(sample *model.RetractionSample) outcome {
	if sample == nil || sample.SampleSize == 0 {
		return skipped()
	}
	if sample.Rate() > e.cfg.MaxRetractionRate || sample.Retracted > e.cfg.MaxRetractedCount {
		return flagged(fmt.Sprintf("%d of %d sampled works retracted (%.1f%%)",
			sample.Retracted, sample.SampleSize, sample.Rate()*100))
	}
	return passed()
}

func (e *Engine) checkAPC(rec *model.JournalRecord) outcome {
	if rec.APCUSD == nil {
		return skipped()
	}
	apc := *rec.APCUSD
	if apc < e.cfg.MinAPCUSD || apc > e.cfg.MaxAPCUSD {
		return flagged(fmt.Sprintf("article processing charge $%d is outside the $%d-$%d norm",
			apc, e.cfg.MinAPCUSD, e.cfg.MaxAPCUSD))
	}
	return passed()
}

func (e *Engine) checkWorksCitationMismatch(rec *model.JournalRecord) outcome {
	if rec.WorksCount == nil || rec.HIndex == nil {
		return skipped()
	}
	if *rec.WorksCount > e.cfg.HighWorksCount && *rec.HIndex < e.cfg.LowHIndex {
		return flagged(fmt.Sprintf("%d published works but h-index of only %d",
			*rec.WorksCount, *rec.HIndex))
	}
	return passed()
}

func (e *Engine) checkScopeSprawl(rec *model.JournalRecord) outcome {
	if len(rec.Fields) == 0 {
		return skipped()
	}
	if len(rec.Fields) > e.cfg.MaxFields {
		return flagged(fmt.Sprintf("scope spans %d research fields (limit %d)",
			len(rec.Fields), e.cfg.MaxFields))
	}
	return passed()
}

func (e *Engine) checkUnknownPublisher(rec *model.JournalRecord) outcome {
	// An absent host organization is itself the signal, not missing data.
	if rec.Publisher == "" {
		return flagged("no publisher or host organization on record")
	}
	return passed()
}

func (e *Engine) checkORCIDCoverage(authors []model.AuthorInfo) outcome {
	if len(authors) == 0 {
		return skipped()
	}
	without := 0
	for _, a := range authors {
		if !a.HasORCID {
			without++
		}
	}
	share := float64(without) / float64(len(authors))
	if share > e.cfg.MinORCIDShare {
		return flagged(fmt.Sprintf("%d of %d authors have no ORCID", without, len(authors)))
	}
	return passed()
}

func (e *Engine) checkHomepage(rec *model.JournalRecord) outcome {
	if rec.HomepageURL == "" {
		return flagged("no homepage listed")
	}
	if rec.Homepage == nil {
		// Probe disabled or failed; nothing to verify against.
		return skipped()
	}
	if !rec.Homepage.Reachable {
		return flagged("homepage is unreachable")
	}
	if rec.Homepage.TitleMatches != nil && !*rec.Homepage.TitleMatches {
		return flagged(fmt.Sprintf("homepage title %q does not mention the journal name",
			rec.Homepage.PageTitle))
	}
	return passed()
}

// Paper checks.

func (e *Engine) checkRetractedPaper(rec *model.PaperRecord) outcome {
	if rec.Retracted == nil {
		return skipped()
	}
	if *rec.Retracted {
		return flagged("paper has been retracted")
	}
	return passed()
}

func (e *Engine) checkJournalNotIndexed(rec *model.PaperRecord) outcome {
	if rec.Journal == nil {
		return skipped()
	}
	j := rec.Journal
	if j.InDOAJ == nil && j.InScopus == nil {
		return skipped()
	}
	inDOAJ := j.InDOAJ != nil && *j.InDOAJ
	inScopus := j.InScopus != nil && *j.InScopus
	if !inDOAJ && !inScopus {
		return flagged("hosting journal is in neither DOAJ nor a core index")
	}
	return passed()
}

func (e *Engine) checkJournalRetractionHistory(rec *model.PaperRecord) outcome {
	if rec.Journal == nil {
		return skipped()
	}
	return e.checkRetractions(rec.Journal.Retractions)
}

func (e *Engine) checkMissingDOI(rec *model.PaperRecord) outcome {
	if rec.DOI == "" {
		return flagged("no DOI on record")
	}
	return passed()
}

func (e *Engine) checkStaleUncited(rec *model.PaperRecord) outcome {
	if rec.CitedByCount == nil {
		return skipped()
	}
	years, ok := rec.YearsSincePublication(e.nowFunc().Year())
	if !ok {
		return skipped()
	}
	if years >= e.cfg.StaleYears && *rec.CitedByCount == 0 {
		return flagged(fmt.Sprintf("no citations %d years after publication", years))
	}
	return passed()
}

func (e *Engine) checkAffiliations(authors []model.AuthorInfo) outcome {
	if len(authors) == 0 {
		return skipped()
	}
	for _, a := range authors {
		if strings.TrimSpace(a.Affiliation) != "" {
			return passed()
		}
	}
	return flagged("no author lists an institutional affiliation")
}
