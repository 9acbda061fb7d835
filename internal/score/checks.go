package score

// Check names. Reports reference checks by these names and the penalty for
// each can be overridden through Config.Scoring.Penalties.
const (
	// Journal checks.
	CheckOpenAccessWithoutDOAJ  = "open_access_without_doaj"
	CheckNotInCoreIndex         = "not_in_core_index"
	CheckHighRetractionRate     = "high_retraction_rate"
	CheckAPCOutOfRange          = "apc_out_of_range"
	CheckWorksCitationMismatch  = "works_citation_mismatch"
	CheckScopeSprawl            = "scope_sprawl"
	CheckUnknownPublisher       = "unknown_publisher"
	CheckHomepageUnverified     = "homepage_unverified"
	CheckHijackedJournal        = "hijacked_journal"

	// Paper checks.
	CheckRetractedPaper           = "retracted_paper"
	CheckJournalNotIndexed        = "journal_not_indexed"
	CheckJournalRetractionHistory = "journal_retraction_history"
	CheckMissingDOI               = "missing_doi"
	CheckStaleUncited             = "stale_uncited"
	CheckMissingAffiliations      = "missing_affiliations"

	// Shared.
	CheckLowORCIDCoverage = "low_orcid_coverage"
)

// defaultPenalties documents the points deducted per flagged check. The
// values follow the deduction rules of the original assessment heuristics;
// any of them can be overridden in configuration.
var defaultPenalties = map[string]int{
	CheckOpenAccessWithoutDOAJ: 20,
	CheckNotInCoreIndex:        25,
	CheckHighRetractionRate:    20,
	CheckAPCOutOfRange:         10,
	CheckWorksCitationMismatch: 15,
	CheckScopeSprawl:           10,
	CheckUnknownPublisher:      10,
	CheckHomepageUnverified:    10,

	CheckRetractedPaper:           60,
	CheckJournalNotIndexed:        20,
	CheckJournalRetractionHistory: 10,
	CheckMissingDOI:               15,
	CheckStaleUncited:             15,
	CheckMissingAffiliations:      5,

	CheckLowORCIDCoverage: 10,
}

// DefaultPenalty returns the built-in penalty for a check name.
func DefaultPenalty(name string) int {
	return defaultPenalties[name]
}
