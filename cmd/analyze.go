package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/config"
	"github.com/zjrosen/rdapgw/internal/infrastructure/sqlite"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/pipeline"
	"github.com/zjrosen/rdapgw/internal/presentation"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/snapshot"
	"github.com/zjrosen/rdapgw/internal/tracing"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

// ErrDrift is returned by analyze --check when the artifacts on disk differ
// from a fresh run.
var ErrDrift = errors.New("artifacts are out of date")

type analyzeOptions struct {
	Workbook   string
	Enrichment string
	OutDir     string
	TopN       int
	Snapshot   bool
	Check      bool
}

var analyzeFlags analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze <workbook.xlsx>",
	Short: "Classify registrars and write the market share artifacts",
	Long: `Read the ICANN registrar workbook (sheets "List" and "Domain count"),
classify every registrar by its RDAP service, merge the optional enrichment
dataset and write registrars.json, gateway_analysis.json and
data_quality.json to the output directory.

Examples:
  rdapgw analyze registrars.xlsx
  rdapgw analyze registrars.xlsx --enrichment registrar_enrichment.json --out data/
  rdapgw analyze registrars.xlsx --check     # fail if data/ is stale
  rdapgw analyze registrars.xlsx --snapshot  # record the run for 'rdapgw history'`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("missing workbook path\nusage: rdapgw analyze <workbook.xlsx>")
		}
		if len(args) > 1 {
			return fmt.Errorf("expected one workbook path, got %d arguments", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analyzeFlags
		opts.Workbook = args[0]

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runAnalyze(ctx, cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFlags.Enrichment, "enrichment", "e", "",
		"registrar enrichment JSON (overrides enrichment.path)")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.OutDir, "out", "o", "",
		"output directory (overrides output.dir)")
	analyzeCmd.Flags().IntVar(&analyzeFlags.TopN, "top", 0,
		"top registrars kept per provider (overrides analysis.top_n)")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.Snapshot, "snapshot", false,
		"record this run in the history database")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.Check, "check", false,
		"compare against the existing artifacts without writing; exit non-zero on drift")
}

func runAnalyze(ctx context.Context, c config.Config, opts analyzeOptions, out io.Writer) error {
	if _, err := os.Stat(opts.Workbook); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &registrar.FileNotFoundError{Path: opts.Workbook}
		}
		return fmt.Errorf("checking workbook: %w", err)
	}

	in := pipeline.Input{WorkbookPath: opts.Workbook, EnrichmentPath: c.Enrichment.Path}
	if opts.Enrichment != "" {
		in.EnrichmentPath = opts.Enrichment
	}
	outDir := c.Output.Dir
	if opts.OutDir != "" {
		outDir = opts.OutDir
	}
	if outDir == "" {
		outDir = "."
	}

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatPipeline, "tracing shutdown failed", err)
		}
	}()

	popts := c.PipelineOptions()
	if opts.TopN > 0 {
		popts.Aggregate.TopN = opts.TopN
	}
	popts.Tracer = provider.Tracer()

	res, err := pipeline.Run(ctx, in, popts)
	if err != nil {
		return err
	}
	artifacts, err := presentation.Render(res)
	if err != nil {
		return err
	}

	if opts.Check {
		return checkArtifacts(artifacts, outDir, out)
	}

	paths, err := artifacts.Write(outDir)
	if err != nil {
		return err
	}
	printSummary(out, res, paths)

	if opts.Snapshot || c.Snapshot.Enabled {
		id, err := saveSnapshot(ctx, c.Snapshot.Path, in, res)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Snapshot %s saved to %s\n", id, c.Snapshot.Path)
	}
	return nil
}

func checkArtifacts(fresh presentation.Artifacts, dir string, out io.Writer) error {
	existing, err := fresh.ReadExisting(dir)
	if err != nil {
		return err
	}
	drift := false
	for _, d := range presentation.Compare(existing, fresh) {
		switch {
		case d.Missing:
			drift = true
			_, _ = fmt.Fprintf(out, "%s: missing\n", d.Name)
		case d.Changed():
			drift = true
			_, _ = fmt.Fprintf(out, "%s: +%d -%d\n", d.Name, d.Added, d.Removed)
			for _, l := range d.Lines {
				_, _ = fmt.Fprintf(out, "  %s\n", l)
			}
		default:
			_, _ = fmt.Fprintf(out, "%s: up to date\n", d.Name)
		}
	}
	if drift {
		return ErrDrift
	}
	return nil
}

func printSummary(out io.Writer, res *pipeline.Result, paths []string) {
	a := res.Analysis
	_, _ = fmt.Fprintf(out, "Analyzed %s registrars holding %s domains (%d providers, %d RDAP URLs)\n",
		styles.FormatCount(int64(a.Summary.TotalRegistrars)),
		styles.FormatCount(a.Summary.GrandTotalDomains),
		a.Summary.DistinctProviders,
		a.Summary.UniqueRDAPURLs)
	_, _ = fmt.Fprintf(out, "Gateways %.1f%%  candidates %.1f%%  self-hosted %.1f%%\n",
		a.Gateways.GatewayPercent, a.Gateways.CandidatePercent, a.Gateways.SelfHostedPercent)
	_, _ = fmt.Fprintf(out, "Enrichment: %s\n", res.Enrichment)
	if n := len(res.Report.Warnings); n > 0 {
		_, _ = fmt.Fprintf(out, "%d data quality warnings (%d skipped rows, %d orphans, %d duplicate ids)\n",
			n,
			res.Report.Count(registrar.SkippedRowWarning),
			res.Report.Count(registrar.JoinOrphanWarning),
			res.Report.Count(registrar.DuplicateIDWarning))
	}
	for _, p := range paths {
		_, _ = fmt.Fprintf(out, "wrote %s\n", p)
	}
}

func saveSnapshot(ctx context.Context, path string, in pipeline.Input, res *pipeline.Result) (string, error) {
	db, err := sqlite.NewDB(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	run := snapshot.NewRun(uuid.NewString(), time.Now(), in, res)
	if err := db.SnapshotRepository().Save(ctx, run); err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	log.Info(log.CatStore, "snapshot saved", "id", run.ID, "providers", len(run.Shares))
	return run.ID, nil
}
