package model

// JournalRecord is the normalized journal metadata the rule engine evaluates.
// Pointer fields distinguish "provider did not report this" from a zero value;
// a nil field causes the dependent check to be skipped, never penalized.
type JournalRecord struct {
	ISSN        string `json:"issn,omitempty"`
	Title       string `json:"title"`
	Publisher   string `json:"publisher,omitempty"`    // host organization name
	HomepageURL string `json:"homepage_url,omitempty"`
	CountryCode string `json:"country_code,omitempty"`

	InDOAJ     *bool `json:"in_doaj,omitempty"`
	OpenAccess *bool `json:"open_access,omitempty"`
	InScopus   *bool `json:"in_scopus,omitempty"`

	WorksCount         *int     `json:"works_count,omitempty"`
	CitedByCount       *int     `json:"cited_by_count,omitempty"`
	HIndex             *int     `json:"h_index,omitempty"`
	I10Index           *int     `json:"i10_index,omitempty"`
	TwoYrMeanCitedness *float64 `json:"two_yr_mean_citedness,omitempty"`
	APCUSD             *int     `json:"apc_usd,omitempty"`

	Fields []string `json:"fields,omitempty"` // distinct research field names

	// RetractionSample and Authors come from one page of recent works.
	Retractions *RetractionSample `json:"retractions,omitempty"`
	Authors     []AuthorInfo      `json:"authors,omitempty"`

	// Homepage is filled by the homepage prober when enabled. Nil means
	// the homepage was not probed and the related check is skipped.
	Homepage *HomepageStatus `json:"homepage,omitempty"`
}

// HomepageStatus is the outcome of probing a journal's homepage.
type HomepageStatus struct {
	Reachable bool `json:"reachable"`
	// TitleMatches reports whether the page title mentions the journal
	// name. Nil when the page was unreachable or had no title.
	TitleMatches *bool  `json:"title_matches,omitempty"`
	PageTitle    string `json:"page_title,omitempty"`
}

// RetractionSample summarizes retraction statistics over a sample of works.
type RetractionSample struct {
	SampleSize int `json:"sample_size"`
	Retracted  int `json:"retracted"`
}

// Rate returns the retracted share of the sample, 0 for an empty sample.
func (s RetractionSample) Rate() float64 {
	if s.SampleSize == 0 {
		return 0
	}
	return float64(s.Retracted) / float64(s.SampleSize)
}

// AuthorInfo describes one author attached to a work.
type AuthorInfo struct {
	Name            string `json:"name"`
	HasORCID        bool   `json:"has_orcid"`
	Affiliation     string `json:"affiliation,omitempty"`
	IsCorresponding bool   `json:"is_corresponding,omitempty"`
	Position        string `json:"position,omitempty"` // first, middle, last
}

// PaperRecord is the normalized research-paper metadata.
type PaperRecord struct {
	DOI             string `json:"doi,omitempty"`
	Title           string `json:"title"`
	Language        string `json:"language,omitempty"`
	PublicationYear *int   `json:"publication_year,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`

	CitedByCount         *int  `json:"cited_by_count,omitempty"`
	ReferencedWorksCount *int  `json:"referenced_works_count,omitempty"`
	Retracted            *bool `json:"retracted,omitempty"`
	OpenAccess           *bool `json:"open_access,omitempty"`

	Authors  []AuthorInfo `json:"authors,omitempty"`
	Concepts []string     `json:"concepts,omitempty"`
	Grants   []string     `json:"grants,omitempty"` // funder names

	// Journal is the hosting source, fetched separately via its ISSN-L.
	// Nil when the paper has no resolvable source.
	JournalISSN string         `json:"journal_issn,omitempty"`
	Journal     *JournalRecord `json:"journal,omitempty"`
}

// YearsSincePublication returns full years since the publication year,
// at least 1 for papers published this year. Second result is false when
// the publication year is unknown.
func (p *PaperRecord) YearsSincePublication(currentYear int) (int, bool) {
	if p.PublicationYear == nil {
		return 0, false
	}
	years := currentYear - *p.PublicationYear
	if years < 1 {
		years = 1
	}
	return years, true
}
