package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/scholarlytrust/scholarlytrust/internal/hijack"
	"github.com/scholarlytrust/scholarlytrust/internal/homepage"
	"github.com/scholarlytrust/scholarlytrust/internal/llm"
	"github.com/scholarlytrust/scholarlytrust/internal/model"
	"github.com/scholarlytrust/scholarlytrust/internal/openalex"
	"github.com/scholarlytrust/scholarlytrust/internal/pipeline"
	"github.com/scholarlytrust/scholarlytrust/internal/score"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Shared evaluation flags, registered by each evaluating command.
var (
	outJSON     string
	noColor     bool
	noCache     bool
	noHomepage  bool
	timeout     time.Duration
	mailto      string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// issnPattern matches an ISSN: four digits, a hyphen, three digits, and a
// final digit or X check character.
var issnPattern = regexp.MustCompile(`^\d{4}-\d{3}[\dXx]$`)

// doiPattern matches a bare DOI (the resolver prefix is stripped first).
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

const maxTitleLength = 500

func isISSN(s string) bool {
	return issnPattern.MatchString(s)
}

func isDOI(s string) bool {
	return doiPattern.MatchString(stripDOIPrefix(s))
}

func stripDOIPrefix(s string) string {
	s = strings.TrimPrefix(s, "https://doi.org/")
	s = strings.TrimPrefix(s, "http://doi.org/")
	return strings.TrimPrefix(s, "doi:")
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title exceeds %d characters", maxTitleLength)
	}
	return nil
}

// loadConfig builds the effective configuration: defaults, then config
// file and environment via viper, then command flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if mailto != "" {
		cfg.OpenAlex.MailTo = mailto
	}
	cfg.OpenAlex.NoCache = cfg.OpenAlex.NoCache || noCache
	cfg.Homepage.Enabled = cfg.Homepage.Enabled && !noHomepage
	cfg.Output.Verbose = verbose
	cfg.Output.JSONPath = outJSON
	cfg.Output.NoColor = cfg.Output.NoColor || noColor

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		switch strings.ToLower(llmProvider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}

// resolveDataFile locates a bundled data file. A relative path is tried
// against the working directory, the executable's directory, and
// ~/.scholarlytrust, so the hijacked-journal lists resolve no matter where
// the command runs from. The original path comes back when nothing exists,
// leaving a clear open error to the caller.
func resolveDataFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	candidates := []string{path}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".scholarlytrust", path))
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return paths[0]
}

// buildEvaluator assembles the pipeline from configuration.
func buildEvaluator(cfg *model.Config) (*pipeline.Evaluator, error) {
	cfg.Hijack.ISSNFile = resolveDataFile(cfg.Hijack.ISSNFile)
	cfg.Hijack.TitleFile = resolveDataFile(cfg.Hijack.TitleFile)

	registry, err := hijack.Load(cfg.Hijack)
	if err != nil {
		return nil, fmt.Errorf("load hijacked-journal registry: %w", err)
	}
	if verbose {
		issns, titles := registry.Size()
		fmt.Fprintf(os.Stderr, "✓ hijacked-journal registry loaded (%d ISSNs, %d titles)\n", issns, titles)
	}

	client := openalex.NewClient(cfg.OpenAlex, cfg.HTTP)

	var prober pipeline.HomepageProber
	if cfg.Homepage.Enabled {
		prober = homepage.NewProber(cfg.Homepage, cfg.HTTP)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}

	return pipeline.NewEvaluator(pipeline.Options{
		Journals: client,
		Papers:   client,
		Registry: registry,
		Prober:   prober,
		Engine:   score.NewEngine(cfg.Scoring),
		Provider: provider,
		Verbose:  cfg.Output.Verbose,
	}), nil
}

// registerEvalFlags attaches the flags shared by the evaluating commands.
func registerEvalFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outJSON, "json", "", "also write the report(s) to this JSON file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the in-memory response cache")
	cmd.Flags().BoolVar(&noHomepage, "no-homepage", false, "skip the homepage verification probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request HTTP timeout (default 30s)")
	cmd.Flags().StringVar(&mailto, "mailto", "", "contact email sent to OpenAlex (polite pool)")
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an advisory LLM rationale (never alters the score)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}
