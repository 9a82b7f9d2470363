package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/rdapgw/internal/aggregate"
	"github.com/zjrosen/rdapgw/internal/tracing"
)

func load(t *testing.T, yaml string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 20, cfg.UI.PageSize)
	require.Equal(t, 0, cfg.Session.DurationHours)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, aggregate.DefaultOptions(), cfg.PipelineOptions().Aggregate)
}

func TestDefaultConfigTemplate_Loads(t *testing.T) {
	cfg := load(t, DefaultConfigTemplate())
	require.NoError(t, cfg.Validate())
	require.Equal(t, ".", cfg.Output.Dir)
	require.Equal(t, 10, cfg.Analysis.TopN)
	require.Equal(t, 3, cfg.Analysis.SharedHostMin)
	require.True(t, cfg.UI.AutoReload)
	require.Empty(t, cfg.Gateways)
}

func TestLoad_Overrides(t *testing.T) {
	cfg := load(t, `
output:
  dir: out
analysis:
  top_n: 5
enrichment:
  path: extra.json
  derive_websites: true
gateways:
  - name: Example Hosting
    hosts: [rdap.examplehosting.net]
    domains: [examplehosting.net]
session:
  duration_hours: 8
tracing:
  enabled: true
  exporter: stdout
`)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "out", cfg.Output.Dir)
	require.Equal(t, "extra.json", cfg.Enrichment.Path)
	require.Equal(t, 8, cfg.Session.DurationHours)
	require.Equal(t, tracing.ExporterStdout, cfg.Tracing.Exporter)
	// untouched keys keep their defaults
	require.Equal(t, 20, cfg.Analysis.TopURLs)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)

	opts := cfg.PipelineOptions()
	require.Equal(t, 5, opts.Aggregate.TopN)
	require.True(t, opts.DeriveWebsites)
	require.Len(t, opts.Gateways, 1)
	require.Equal(t, "Example Hosting", opts.Gateways[0].Name)
	require.Equal(t, []string{"rdap.examplehosting.net"}, opts.Gateways[0].Hosts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"negative top_n", func(c *Config) { c.Analysis.TopN = -1 }, "analysis.top_n"},
		{"negative top_urls", func(c *Config) { c.Analysis.TopURLs = -2 }, "analysis.top_urls"},
		{"shared host min too small", func(c *Config) { c.Analysis.SharedHostMin = 1 }, "shared_host_min"},
		{"negative page size", func(c *Config) { c.UI.PageSize = -5 }, "ui.page_size"},
		{"bad markdown style", func(c *Config) { c.UI.MarkdownStyle = "neon" }, "markdown_style"},
		{"negative session", func(c *Config) { c.Session.DurationHours = -1 }, "duration_hours"},
		{"snapshot without path", func(c *Config) { c.Snapshot = SnapshotConfig{Enabled: true} }, "snapshot.path"},
		{"gateway without name", func(c *Config) { c.Gateways = []GatewayConfig{{Hosts: []string{"a.net"}}} }, "name is required"},
		{"gateway without hosts", func(c *Config) { c.Gateways = []GatewayConfig{{Name: "X"}} }, "at least one of"},
		{"gateway with url", func(c *Config) {
			c.Gateways = []GatewayConfig{{Name: "X", Hosts: []string{"https://rdap.x.net"}}}
		}, "not a hostname"},
		{"duplicate gateway", func(c *Config) {
			c.Gateways = []GatewayConfig{{Name: "X", Hosts: []string{"a.net"}}, {Name: "x", Hosts: []string{"b.net"}}}
		}, "duplicate gateway"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "sample_rate"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "kafka" }, "tracing.exporter"},
		{"otlp endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = tracing.ExporterOTLP
			c.Tracing.OTLPEndpoint = ""
		}, "otlp_endpoint"},
		{"file path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = tracing.ExporterFile
			c.Tracing.FilePath = ""
		}, "file_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
