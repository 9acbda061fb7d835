package hijack

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/cache"
	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// Registry holds the known hijacked-journal identifiers. A hit here
// short-circuits scoring entirely: the journal is reported as predatory
// without consulting any other signal.
type Registry struct {
	issns  map[string]bool
	titles map[string]bool
}

// Load builds a registry from the configured list files. An optional remote
// snapshot extends the local lists; snapshot failures are reported but the
// local lists still load.
func Load(cfg model.HijackConfig) (*Registry, error) {
	r := &Registry{
		issns:  make(map[string]bool),
		titles: make(map[string]bool),
	}

	if cfg.ISSNFile != "" {
		if err := r.loadFile(cfg.ISSNFile, r.addISSN); err != nil {
			return nil, fmt.Errorf("load ISSN list: %w", err)
		}
	}
	if cfg.TitleFile != "" {
		if err := r.loadFile(cfg.TitleFile, r.addTitle); err != nil {
			return nil, fmt.Errorf("load title list: %w", err)
		}
	}

	if cfg.SnapshotURL != "" {
		if err := r.loadSnapshot(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: hijacked-journal snapshot unavailable: %v\n", err)
		}
	}
	return r, nil
}

// LookupISSN reports whether the ISSN appears on a hijacked list.
func (r *Registry) LookupISSN(issn string) bool {
	return r.issns[normalizeISSN(issn)]
}

// LookupTitle reports whether the title appears on a hijacked list,
// case-insensitively.
func (r *Registry) LookupTitle(title string) bool {
	return r.titles[normalizeTitle(title)]
}

// Size returns the number of known ISSNs and titles.
func (r *Registry) Size() (issns, titles int) {
	return len(r.issns), len(r.titles)
}

func (r *Registry) addISSN(line string) {
	if issn := normalizeISSN(line); issn != "" {
		r.issns[issn] = true
	}
}

func (r *Registry) addTitle(line string) {
	if title := normalizeTitle(line); title != "" {
		r.titles[title] = true
	}
}

func (r *Registry) loadFile(path string, add func(string)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return readLines(file, add)
}

// loadSnapshot fetches the remote list once per TTL, keeping a copy on disk
// so repeated runs do not hammer the registry host.
func (r *Registry) loadSnapshot(cfg model.HijackConfig) error {
	dir := cfg.SnapshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve snapshot dir: %w", err)
		}
		dir = filepath.Join(home, ".scholarlytrust", "snapshots")
	}
	dc := cache.NewDiskCache(dir, cfg.SnapshotTTL)

	key := cache.Key(cfg.SnapshotURL)
	body, found := dc.Get(key)
	if !found {
		var err error
		body, err = fetchSnapshot(cfg.SnapshotURL)
		if err != nil {
			return err
		}
		_ = dc.Set(key, body, cfg.SnapshotTTL)
	}

	// Snapshot lines are either ISSNs or titles; route by shape.
	return readLines(strings.NewReader(string(body)), func(line string) {
		if looksLikeISSN(line) {
			r.addISSN(line)
		} else {
			r.addTitle(line)
		}
	})
}

func fetchSnapshot(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

func readLines(r io.Reader, add func(string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		add(line)
	}
	return scanner.Err()
}

func normalizeISSN(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func looksLikeISSN(s string) bool {
	s = normalizeISSN(s)
	if len(s) != 9 || s[4] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 {
			continue
		}
		if c >= '0' && c <= '9' {
			continue
		}
		if i == 8 && c == 'X' {
			continue
		}
		return false
	}
	return true
}
