package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/cache"
	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"golang.org/x/time/rate"
)

// ErrNotFound indicates the identifier matched nothing in OpenAlex.
var ErrNotFound = errors.New("no record found in OpenAlex")

const maxRetries = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// Client wraps the OpenAlex REST API and normalizes responses into the
// records the rule engine consumes. Requests are rate limited and cached
// in memory for the session; nothing persists across runs.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	mailto      string
	userAgent   string
	maxBytes    int64
	limiter     *rate.Limiter
	cache       cache.Cache // nil disables caching
	cacheTTL    time.Duration
	worksSample int
}

// NewClient creates an OpenAlex client from configuration.
func NewClient(cfg model.OpenAlexConfig, httpCfg model.HTTPConfig) *Client {
	var c cache.Cache
	if !cfg.NoCache {
		c = cache.NewMemoryCache(cfg.CacheTTL, 10*time.Minute)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}

	sample := cfg.WorksSample
	if sample <= 0 {
		sample = 200
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		mailto:      cfg.MailTo,
		userAgent:   httpCfg.UserAgent,
		maxBytes:    httpCfg.MaxBodyBytes,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		cache:       c,
		cacheTTL:    cfg.CacheTTL,
		worksSample: sample,
	}
}

// JournalByISSN fetches and normalizes a journal record by its ISSN.
func (c *Client) JournalByISSN(ctx context.Context, issn string) (*model.JournalRecord, error) {
	params := url.Values{}
	params.Set("filter", "issn:"+issn)

	var resp sourcesResponse
	if err := c.getJSON(ctx, "/sources", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}

	rec := normalizeSource(&resp.Results[0])
	if rec.ISSN == "" {
		rec.ISSN = issn
	}
	c.enrichJournal(ctx, rec, resp.Results[0].ID)
	return rec, nil
}

// JournalByName fetches a journal by exact display name, case-insensitive.
// A search hit whose title differs from the query is treated as not found,
// matching the strict name-lookup behavior users are warned about.
func (c *Client) JournalByName(ctx context.Context, name string) (*model.JournalRecord, error) {
	params := url.Values{}
	params.Set("search", `"`+name+`"`)

	var resp sourcesResponse
	if err := c.getJSON(ctx, "/sources", params, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Results {
		if strings.EqualFold(resp.Results[i].DisplayName, name) {
			rec := normalizeSource(&resp.Results[i])
			c.enrichJournal(ctx, rec, resp.Results[i].ID)
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// PaperByDOI fetches and normalizes a paper record by DOI.
func (c *Client) PaperByDOI(ctx context.Context, doi string) (*model.PaperRecord, error) {
	params := url.Values{}
	params.Set("filter", "doi:"+doi)
	return c.paper(ctx, params)
}

// PaperByTitle fetches a paper by title search; the first (most relevant)
// result is used when its title matches the query case-insensitively.
func (c *Client) PaperByTitle(ctx context.Context, title string) (*model.PaperRecord, error) {
	params := url.Values{}
	params.Set("filter", "title.search:"+title)

	rec, err := c.paper(ctx, params)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(rec.Title, title) {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (c *Client) paper(ctx context.Context, params url.Values) (*model.PaperRecord, error) {
	var resp worksResponse
	if err := c.getJSON(ctx, "/works", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}

	rec, journalISSN := normalizeWork(&resp.Results[0])

	// The hosting journal gets its own record so paper checks can weigh
	// the venue. Failure here degrades to a paper without journal data.
	if journalISSN != "" {
		if j, err := c.JournalByISSN(ctx, journalISSN); err == nil {
			rec.Journal = j
		}
		rec.JournalISSN = journalISSN
	}
	return rec, nil
}

// enrichJournal samples one page of the journal's recent works to derive
// retraction statistics and author ORCID coverage. Enrichment failures are
// tolerated: the related checks will be skipped for lack of data.
func (c *Client) enrichJournal(ctx context.Context, rec *model.JournalRecord, sourceID string) {
	id := strings.TrimPrefix(sourceID, "https://openalex.org/")
	if id == "" {
		return
	}

	params := url.Values{}
	params.Set("filter", "primary_location.source.id:"+id)
	params.Set("per-page", fmt.Sprintf("%d", c.worksSample))

	var resp worksResponse
	if err := c.getJSON(ctx, "/works", params, &resp); err != nil {
		return
	}
	if len(resp.Results) == 0 {
		return
	}

	retracted := 0
	var authors []model.AuthorInfo
	for i := range resp.Results {
		w := &resp.Results[i]
		if w.IsRetracted != nil && *w.IsRetracted {
			retracted++
		}
		authors = append(authors, normalizeAuthorships(w.Authorships)...)
	}

	rec.Retractions = &model.RetractionSample{
		SampleSize: len(resp.Results),
		Retracted:  retracted,
	}
	rec.Authors = authors
}

// getJSON performs a cached, rate-limited GET against the API and decodes
// the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	fullURL := c.baseURL + path + "?" + params.Encode()

	if c.cache != nil {
		if body, found := c.cache.Get(cache.Key(fullURL)); found {
			return json.Unmarshal(body, out)
		}
	}

	body, err := c.fetchWithRetry(ctx, fullURL)
	if err != nil {
		return err
	}

	if c.cache != nil {
		_ = c.cache.Set(cache.Key(fullURL), body, c.cacheTTL)
	}
	return json.Unmarshal(body, out)
}

// fetchWithRetry retries transient failures with exponential backoff.
func (c *Client) fetchWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		body, err = c.fetch(ctx, fullURL)
		if err == nil || !isRetryable(err) {
			return body, err
		}
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			fetchSleepFunc(backoff)
		}
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// statusError carries the HTTP status so retry classification can see it.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.status)
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || (se.code >= 500 && se.code < 600)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
