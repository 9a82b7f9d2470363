// Package config provides configuration types and defaults for rdapgw.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/rdapgw/internal/aggregate"
	"github.com/zjrosen/rdapgw/internal/browse"
	"github.com/zjrosen/rdapgw/internal/classifier"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/pipeline"
	"github.com/zjrosen/rdapgw/internal/tracing"
)

// Config holds all configuration options for rdapgw.
type Config struct {
	Output     OutputConfig     `mapstructure:"output"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Gateways   []GatewayConfig  `mapstructure:"gateways"`
	UI         UIConfig         `mapstructure:"ui"`
	Session    SessionConfig    `mapstructure:"session"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Tracing    tracing.Config   `mapstructure:"tracing"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// AnalysisConfig bounds the lists in gateway_analysis.json.
type AnalysisConfig struct {
	TopN              int `mapstructure:"top_n"`
	TopURLs           int `mapstructure:"top_urls"`
	LargestSelfHosted int `mapstructure:"largest_self_hosted"`
	SharedHostMin     int `mapstructure:"shared_host_min"`
}

// EnrichmentConfig configures the secondary dataset.
type EnrichmentConfig struct {
	Path           string `mapstructure:"path"`            // registrar enrichment JSON (optional)
	DeriveWebsites bool   `mapstructure:"derive_websites"` // guess missing websites from names
}

// GatewayConfig adds a shared RDAP operator to the built-in table.
type GatewayConfig struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Hosts    []string `mapstructure:"hosts" yaml:"hosts,omitempty"`
	Suffixes []string `mapstructure:"suffixes" yaml:"suffixes,omitempty"`
	Domains  []string `mapstructure:"domains" yaml:"domains,omitempty"`
}

// UIConfig holds browser options.
type UIConfig struct {
	PageSize      int    `mapstructure:"page_size"`
	AutoReload    bool   `mapstructure:"auto_reload"`    // reload registrars.json when it changes
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// SessionConfig controls the browser unlock.
type SessionConfig struct {
	// DurationHours is how long an unlock lasts. 0 = unlimited.
	DurationHours int `mapstructure:"duration_hours"`
	// Required shows the unlock screen before the browser.
	Required bool `mapstructure:"required"`
	// StatePath persists the session between runs. Empty keeps it in memory.
	StatePath string `mapstructure:"state_path"`
}

// SnapshotConfig controls the run history database.
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns ~/.config/rdapgw, or "" when the home directory
// is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rdapgw")
}

func inConfigDir(parts ...string) string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, parts...)...)
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() Config {
	agg := aggregate.DefaultOptions()
	tc := tracing.DefaultConfig()
	tc.FilePath = inConfigDir("traces", "traces.jsonl")
	return Config{
		Output: OutputConfig{Dir: "."},
		Analysis: AnalysisConfig{
			TopN:              agg.TopN,
			TopURLs:           agg.TopURLs,
			LargestSelfHosted: agg.LargestSelfHosted,
			SharedHostMin:     agg.SharedHostMin,
		},
		UI: UIConfig{
			PageSize:      browse.DefaultPageSize,
			AutoReload:    true,
			MarkdownStyle: "dark",
		},
		Session: SessionConfig{
			DurationHours: 0,
			StatePath:     inConfigDir("session.yaml"),
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Path:    inConfigDir("history.db"),
		},
		Tracing: tc,
	}
}

// ValidateGateways checks the user gateway table.
func ValidateGateways(gateways []GatewayConfig) error {
	seen := make(map[string]bool)
	for i, g := range gateways {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return fmt.Errorf("gateways[%d]: name is required", i)
		}
		if len(g.Hosts)+len(g.Suffixes)+len(g.Domains) == 0 {
			return fmt.Errorf("gateways[%d] (%s): at least one of hosts, suffixes or domains is required", i, name)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("gateways[%d]: duplicate gateway name %q", i, name)
		}
		seen[strings.ToLower(name)] = true
		for _, h := range append(append(append([]string{}, g.Hosts...), g.Suffixes...), g.Domains...) {
			if strings.TrimSpace(h) == "" || strings.ContainsAny(h, "/: ") {
				return fmt.Errorf("gateways[%d] (%s): %q is not a hostname", i, name, h)
			}
		}
	}
	return nil
}

// ValidateTracing checks the tracing section.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	a := c.Analysis
	switch {
	case a.TopN < 0:
		return fmt.Errorf("analysis.top_n must not be negative, got %d", a.TopN)
	case a.TopURLs < 0:
		return fmt.Errorf("analysis.top_urls must not be negative, got %d", a.TopURLs)
	case a.LargestSelfHosted < 0:
		return fmt.Errorf("analysis.largest_self_hosted must not be negative, got %d", a.LargestSelfHosted)
	case a.SharedHostMin != 0 && a.SharedHostMin < 2:
		return fmt.Errorf("analysis.shared_host_min must be at least 2, got %d", a.SharedHostMin)
	}
	if c.UI.PageSize < 0 {
		return fmt.Errorf("ui.page_size must not be negative, got %d", c.UI.PageSize)
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	if c.Session.DurationHours < 0 {
		return fmt.Errorf("session.duration_hours must not be negative, got %d", c.Session.DurationHours)
	}
	if c.Snapshot.Enabled && c.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required when snapshots are enabled")
	}
	if err := ValidateGateways(c.Gateways); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ClassifierGateways converts the configured gateways.
func (c Config) ClassifierGateways() []classifier.Gateway {
	out := make([]classifier.Gateway, 0, len(c.Gateways))
	for _, g := range c.Gateways {
		out = append(out, classifier.Gateway{
			Name:     strings.TrimSpace(g.Name),
			Hosts:    g.Hosts,
			Suffixes: g.Suffixes,
			Domains:  g.Domains,
		})
	}
	return out
}

// PipelineOptions builds run options from the configuration.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Aggregate = aggregate.Options{
		TopN:              c.Analysis.TopN,
		TopURLs:           c.Analysis.TopURLs,
		LargestSelfHosted: c.Analysis.LargestSelfHosted,
		SharedHostMin:     c.Analysis.SharedHostMin,
	}
	opts.Gateways = c.ClassifierGateways()
	opts.DeriveWebsites = c.Enrichment.DeriveWebsites
	return opts
}

// DefaultConfigTemplate returns the commented YAML written on first run.
func DefaultConfigTemplate() string {
	return `# rdapgw configuration

# Where analyze writes registrars.json, gateway_analysis.json and data_quality.json
output:
  dir: .

# Limits for the lists in gateway_analysis.json
analysis:
  top_n: 10                # top registrars per provider
  top_urls: 20             # most shared RDAP base URLs
  largest_self_hosted: 10  # biggest registrars running their own RDAP
  shared_host_min: 3       # registrars needed to flag a non-gateway host as shared

# Secondary registrar dataset (websites, whois servers, status, notes)
enrichment:
  # path: registrar_enrichment.json
  derive_websites: false   # guess missing websites from registrar names

# Extra shared RDAP operators, added after the built-in table
# gateways:
#   - name: Example Hosting
#     hosts: [rdap.examplehosting.net]
#     suffixes: [.rdap.examplehosting.net]
#     domains: [examplehosting.net]

# Browser settings
ui:
  page_size: 20
  auto_reload: true        # reload registrars.json when analyze rewrites it
  # markdown_style: dark   # report rendering: "dark" (default) or "light"

# Browser unlock
session:
  required: false
  duration_hours: 0        # 0 = never expires

# Run history (rdapgw history)
snapshot:
  enabled: false
  # path: ~/.config/rdapgw/history.db

# Pipeline tracing (OpenTelemetry)
# tracing:
#   enabled: true
#   exporter: file         # none, file, stdout or otlp
#   file_path: ~/.config/rdapgw/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
