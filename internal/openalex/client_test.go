package openalex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

func newTestClient(baseURL string) *Client {
	cfg := model.DefaultConfig()
	cfg.OpenAlex.BaseURL = baseURL
	cfg.OpenAlex.NoCache = true
	cfg.OpenAlex.RequestsPerSecond = 1000
	cfg.OpenAlex.Burst = 1000
	return NewClient(cfg.OpenAlex, cfg.HTTP)
}

const sourceBody = `{
	"meta": {"count": 1},
	"results": [{
		"id": "https://openalex.org/S12345",
		"display_name": "Journal of Testing",
		"issn_l": "1234-5678",
		"host_organization_name": "Test Press",
		"homepage_url": "https://example.org/jot",
		"country_code": "US",
		"is_in_doaj": true,
		"is_oa": true,
		"is_indexed_in_scopus": false,
		"works_count": 420,
		"cited_by_count": 9000,
		"apc_usd": 1500,
		"summary_stats": {"h_index": 35, "i10_index": 120, "2yr_mean_citedness": 2.4},
		"topics": [
			{"display_name": "Software Testing", "field": {"display_name": "Computer Science"}},
			{"display_name": "Program Analysis", "field": {"display_name": "Computer Science"}}
		]
	}]
}`

const worksPageBody = `{
	"meta": {"count": 2},
	"results": [
		{
			"title": "First Paper",
			"is_retracted": true,
			"authorships": [
				{"author": {"display_name": "Ada Example", "orcid": "https://orcid.org/0000-0001-0000-0000"},
				 "institutions": [{"display_name": "Example University"}],
				 "is_corresponding": true, "author_position": "first"}
			]
		},
		{
			"title": "Second Paper",
			"is_retracted": false,
			"authorships": [
				{"author": {"display_name": "Bob Example", "orcid": null},
				 "institutions": [], "is_corresponding": false, "author_position": "last"}
			]
		}
	]
}`

func TestJournalByISSN(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/sources"):
			if !strings.Contains(r.URL.RawQuery, "issn%3A1234-5678") {
				t.Errorf("unexpected sources query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(sourceBody))
		case strings.HasPrefix(r.URL.Path, "/works"):
			w.Write([]byte(worksPageBody))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	rec, err := newTestClient(ts.URL).JournalByISSN(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Journal of Testing" {
		t.Errorf("title = %q, want Journal of Testing", rec.Title)
	}
	if rec.Publisher != "Test Press" {
		t.Errorf("publisher = %q, want Test Press", rec.Publisher)
	}
	if rec.InDOAJ == nil || !*rec.InDOAJ {
		t.Error("expected InDOAJ true")
	}
	if rec.HIndex == nil || *rec.HIndex != 35 {
		t.Errorf("h-index = %v, want 35", rec.HIndex)
	}
	if len(rec.Fields) != 1 || rec.Fields[0] != "Computer Science" {
		t.Errorf("fields = %v, want [Computer Science]", rec.Fields)
	}
	if rec.Retractions == nil {
		t.Fatal("expected retraction sample from works enrichment")
	}
	if rec.Retractions.SampleSize != 2 || rec.Retractions.Retracted != 1 {
		t.Errorf("retractions = %d/%d, want 1/2", rec.Retractions.Retracted, rec.Retractions.SampleSize)
	}
	if len(rec.Authors) != 2 {
		t.Fatalf("authors = %d, want 2", len(rec.Authors))
	}
	if !rec.Authors[0].HasORCID || rec.Authors[1].HasORCID {
		t.Error("ORCID presence mismatch in sampled authors")
	}
}

func TestJournalByISSN_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"count": 0}, "results": []}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).JournalByISSN(context.Background(), "9999-9999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestJournalByName_ExactMatchRequired(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/sources") {
			w.Write([]byte(sourceBody))
			return
		}
		w.Write([]byte(`{"meta": {"count": 0}, "results": []}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)

	// Case differences are fine.
	rec, err := c.JournalByName(context.Background(), "journal of testing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ISSN != "1234-5678" {
		t.Errorf("issn = %q, want 1234-5678", rec.ISSN)
	}

	// A search hit under a different title is not a match.
	_, err = c.JournalByName(context.Background(), "Journal of Testing and More")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for inexact name", err)
	}
}

func TestPaperByDOI(t *testing.T) {
	workBody := `{
		"meta": {"count": 1},
		"results": [{
			"title": "A Useful Result",
			"doi": "https://doi.org/10.1234/test.5678",
			"publication_year": 2021,
			"cited_by_count": 12,
			"is_retracted": false,
			"open_access": {"is_oa": true},
			"authorships": [
				{"author": {"display_name": "Ada Example", "orcid": "https://orcid.org/0000-0001-0000-0000"},
				 "institutions": [{"display_name": "Example University"}],
				 "is_corresponding": true, "author_position": "first"}
			],
			"concepts": [
				{"display_name": "Biology", "score": 0.8},
				{"display_name": "Noise", "score": 0.1}
			],
			"grants": [{"funder_display_name": "National Science Foundation"}],
			"locations": [{"source": {"id": "https://openalex.org/S12345", "display_name": "Journal of Testing", "issn_l": "1234-5678", "is_in_doaj": true}}]
		}]
	}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/works") && strings.Contains(r.URL.RawQuery, "doi"):
			w.Write([]byte(workBody))
		case strings.HasPrefix(r.URL.Path, "/sources"):
			w.Write([]byte(sourceBody))
		case strings.HasPrefix(r.URL.Path, "/works"):
			w.Write([]byte(worksPageBody))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	rec, err := newTestClient(ts.URL).PaperByDOI(context.Background(), "10.1234/test.5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DOI != "10.1234/test.5678" {
		t.Errorf("doi = %q, want bare DOI without resolver prefix", rec.DOI)
	}
	if len(rec.Concepts) != 1 || rec.Concepts[0] != "Biology" {
		t.Errorf("concepts = %v, want low-score concepts dropped", rec.Concepts)
	}
	if len(rec.Grants) != 1 {
		t.Errorf("grants = %v, want 1 funder", rec.Grants)
	}
	if rec.JournalISSN != "1234-5678" {
		t.Errorf("journal issn = %q, want 1234-5678", rec.JournalISSN)
	}
	if rec.Journal == nil || rec.Journal.Title != "Journal of Testing" {
		t.Error("expected nested journal record")
	}
}

func TestPaperByTitle_RequiresMatchingTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"count": 1}, "results": [{"title": "Something Else Entirely"}]}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).PaperByTitle(context.Background(), "A Useful Result")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for mismatched title", err)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"meta": {"count": 0}, "results": []}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).JournalByISSN(context.Background(), "1234-5678")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound after retries succeed", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &statusError{code: 500, status: "500 Internal Server Error"}, true},
		{"rate limited", &statusError{code: 429, status: "429 Too Many Requests"}, true},
		{"client error", &statusError{code: 400, status: "400 Bad Request"}, false},
		{"not found", ErrNotFound, false},
		{"timeout", errors.New("dial tcp: i/o timeout"), true},
		{"refused", errors.New("connection refused"), true},
		{"canceled", context.Canceled, false},
		{"other", errors.New("invalid character"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCacheAvoidsSecondFetch(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"meta": {"count": 0}, "results": []}`))
	}))
	defer ts.Close()

	cfg := model.DefaultConfig()
	cfg.OpenAlex.BaseURL = ts.URL
	cfg.OpenAlex.RequestsPerSecond = 1000
	cfg.OpenAlex.Burst = 1000
	c := NewClient(cfg.OpenAlex, cfg.HTTP)

	for i := 0; i < 2; i++ {
		if _, err := c.JournalByISSN(context.Background(), "1234-5678"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (second lookup served from cache)", requests)
	}
}
