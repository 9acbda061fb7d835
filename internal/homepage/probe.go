// Package homepage verifies that a journal's declared homepage resolves and
// looks like it belongs to the journal. The probe is advisory: verification
// feeds one scoring check and its failures never abort an evaluation.
package homepage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"github.com/scholarlytrust/scholarlytrust/internal/worker"
	"golang.org/x/net/html"
)

// Prober fetches journal homepages politely: robots.txt is honored, hosts
// are rate limited per domain, and bodies are read with a hard byte cap.
type Prober struct {
	httpClient *http.Client
	robots     *robotsChecker
	limiter    *worker.Limiter
	userAgent  string
	maxBytes   int64
}

// NewProber creates a homepage prober from configuration.
func NewProber(cfg model.HomepageConfig, httpCfg model.HTTPConfig) *Prober {
	timeout := probeTimeout(cfg.Timeout)
	return &Prober{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    newRobotsChecker(httpCfg.UserAgent, timeout),
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		userAgent: httpCfg.UserAgent,
		maxBytes:  httpCfg.MaxBodyBytes,
	}
}

// Probe fetches the homepage and reports whether it is reachable and whether
// its page title mentions the journal's name. A nil status means the probe
// could not run at all (robots disallowed or invalid URL) and the related
// check should be skipped rather than flagged.
func (p *Prober) Probe(ctx context.Context, homepageURL, journalTitle string) *model.HomepageStatus {
	if homepageURL == "" {
		return nil
	}

	allowed, crawlDelay, err := p.robots.canFetch(ctx, homepageURL)
	if err != nil || !allowed {
		return nil
	}

	if err := p.limiter.WaitWithDelay(ctx, homepageURL, crawlDelay); err != nil {
		return nil
	}

	body, err := p.fetch(ctx, homepageURL)
	if err != nil {
		return &model.HomepageStatus{Reachable: false}
	}

	status := &model.HomepageStatus{Reachable: true}
	title := extractTitle(body)
	if title == "" {
		// No <title> at all; cannot judge the match either way.
		return status
	}

	status.PageTitle = title
	matches := titleMentions(title, journalTitle)
	status.TitleMatches = &matches
	return status
}

func (p *Prober) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch homepage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
}

// extractTitle returns the text of the first <title> element, or "".
func extractTitle(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

// titleMentions reports whether the page title contains the journal name,
// ignoring case and surrounding whitespace.
func titleMentions(pageTitle, journalTitle string) bool {
	if journalTitle == "" {
		return false
	}
	return strings.Contains(
		strings.ToLower(pageTitle),
		strings.ToLower(strings.TrimSpace(journalTitle)),
	)
}

// probeTimeout guards against configs with a zero timeout.
func probeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
