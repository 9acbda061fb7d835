package openalex

import (
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// Response shapes for the OpenAlex /sources and /works endpoints. Only the
// fields the rule engine cares about are decoded; everything else is dropped.

type sourcesResponse struct {
	Meta    metaJSON     `json:"meta"`
	Results []sourceJSON `json:"results"`
}

type worksResponse struct {
	Meta    metaJSON   `json:"meta"`
	Results []workJSON `json:"results"`
}

type metaJSON struct {
	Count int `json:"count"`
}

type sourceJSON struct {
	ID                   string       `json:"id"`
	DisplayName          string       `json:"display_name"`
	ISSNL                *string      `json:"issn_l"`
	HostOrganizationName *string      `json:"host_organization_name"`
	HomepageURL          *string      `json:"homepage_url"`
	CountryCode          *string      `json:"country_code"`
	IsInDOAJ             *bool        `json:"is_in_doaj"`
	IsOA                 *bool        `json:"is_oa"`
	IsIndexedInScopus    *bool        `json:"is_indexed_in_scopus"`
	WorksCount           *int         `json:"works_count"`
	CitedByCount         *int         `json:"cited_by_count"`
	APCUSD               *int         `json:"apc_usd"`
	SummaryStats         *statsJSON   `json:"summary_stats"`
	Topics               []topicJSON  `json:"topics"`
}

type statsJSON struct {
	HIndex             *int     `json:"h_index"`
	I10Index           *int     `json:"i10_index"`
	TwoYrMeanCitedness *float64 `json:"2yr_mean_citedness"`
}

type topicJSON struct {
	DisplayName string `json:"display_name"`
	Field       *struct {
		DisplayName string `json:"display_name"`
	} `json:"field"`
}

type workJSON struct {
	Title                *string          `json:"title"`
	DOI                  *string          `json:"doi"`
	Language             *string          `json:"language"`
	PublicationYear      *int             `json:"publication_year"`
	PublicationDate      *string          `json:"publication_date"`
	CitedByCount         *int             `json:"cited_by_count"`
	ReferencedWorksCount *int             `json:"referenced_works_count"`
	IsRetracted          *bool            `json:"is_retracted"`
	OpenAccess           *openAccessJSON  `json:"open_access"`
	Authorships          []authorshipJSON `json:"authorships"`
	Concepts             []conceptJSON    `json:"concepts"`
	Grants               []grantJSON      `json:"grants"`
	Locations            []locationJSON   `json:"locations"`
}

type openAccessJSON struct {
	IsOA *bool `json:"is_oa"`
}

type authorshipJSON struct {
	Author struct {
		DisplayName string  `json:"display_name"`
		ORCID       *string `json:"orcid"`
	} `json:"author"`
	Institutions []struct {
		DisplayName string `json:"display_name"`
	} `json:"institutions"`
	IsCorresponding bool   `json:"is_corresponding"`
	AuthorPosition  string `json:"author_position"`
}

type conceptJSON struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type grantJSON struct {
	FunderDisplayName *string `json:"funder_display_name"`
}

type locationJSON struct {
	Source *struct {
		ID          string  `json:"id"`
		DisplayName string  `json:"display_name"`
		ISSNL       *string `json:"issn_l"`
		IsInDOAJ    *bool   `json:"is_in_doaj"`
	} `json:"source"`
}

// normalizeSource converts a raw source into a JournalRecord. Nil pointers
// survive as nil so the engine can distinguish absent data from zero values.
func normalizeSource(src *sourceJSON) *model.JournalRecord {
	rec := &model.JournalRecord{
		Title:        src.DisplayName,
		InDOAJ:       src.IsInDOAJ,
		OpenAccess:   src.IsOA,
		InScopus:     src.IsIndexedInScopus,
		WorksCount:   src.WorksCount,
		CitedByCount: src.CitedByCount,
		APCUSD:       src.APCUSD,
	}
	if src.ISSNL != nil {
		rec.ISSN = *src.ISSNL
	}
	if src.HostOrganizationName != nil {
		rec.Publisher = *src.HostOrganizationName
	}
	if src.HomepageURL != nil {
		rec.HomepageURL = *src.HomepageURL
	}
	if src.CountryCode != nil {
		rec.CountryCode = *src.CountryCode
	}
	if src.SummaryStats != nil {
		rec.HIndex = src.SummaryStats.HIndex
		rec.I10Index = src.SummaryStats.I10Index
		rec.TwoYrMeanCitedness = src.SummaryStats.TwoYrMeanCitedness
	}
	rec.Fields = topicFields(src.Topics)
	return rec
}

// topicFields reduces the journal's topics (first 25, as returned) to the
// distinct set of top-level research fields, preserving order.
func topicFields(topics []topicJSON) []string {
	if len(topics) > 25 {
		topics = topics[:25]
	}
	seen := make(map[string]bool)
	var fields []string
	for _, t := range topics {
		name := t.DisplayName
		if t.Field != nil && t.Field.DisplayName != "" {
			name = t.Field.DisplayName
		}
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		fields = append(fields, name)
	}
	return fields
}

// normalizeWork converts a raw work into a PaperRecord and reports the
// hosting journal's ISSN-L when one is present.
func normalizeWork(w *workJSON) (*model.PaperRecord, string) {
	rec := &model.PaperRecord{
		PublicationYear:      w.PublicationYear,
		CitedByCount:         w.CitedByCount,
		ReferencedWorksCount: w.ReferencedWorksCount,
		Retracted:            w.IsRetracted,
	}
	if w.Title != nil {
		rec.Title = *w.Title
	}
	if w.DOI != nil {
		rec.DOI = strings.TrimPrefix(*w.DOI, "https://doi.org/")
	}
	if w.Language != nil {
		rec.Language = *w.Language
	}
	if w.PublicationDate != nil {
		rec.PublicationDate = *w.PublicationDate
	}
	if w.OpenAccess != nil {
		rec.OpenAccess = w.OpenAccess.IsOA
	}

	rec.Authors = normalizeAuthorships(w.Authorships)

	for _, c := range w.Concepts {
		if c.Score > 0.3 {
			rec.Concepts = append(rec.Concepts, c.DisplayName)
		}
	}
	for _, g := range w.Grants {
		if g.FunderDisplayName != nil && *g.FunderDisplayName != "" {
			rec.Grants = append(rec.Grants, *g.FunderDisplayName)
		}
	}

	var issn string
	for _, loc := range w.Locations {
		if loc.Source != nil && loc.Source.ISSNL != nil && *loc.Source.ISSNL != "" {
			issn = *loc.Source.ISSNL
			break
		}
	}
	return rec, issn
}

func normalizeAuthorships(authorships []authorshipJSON) []model.AuthorInfo {
	var authors []model.AuthorInfo
	for _, a := range authorships {
		info := model.AuthorInfo{
			Name:            a.Author.DisplayName,
			HasORCID:        a.Author.ORCID != nil && *a.Author.ORCID != "",
			IsCorresponding: a.IsCorresponding,
			Position:        a.AuthorPosition,
		}
		if len(a.Institutions) > 0 {
			info.Affiliation = a.Institutions[0].DisplayName
		}
		authors = append(authors, info)
	}
	return authors
}
