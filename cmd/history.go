package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/infrastructure/sqlite"
	"github.com/zjrosen/rdapgw/internal/snapshot"
	"github.com/zjrosen/rdapgw/internal/ui/styles"
)

const historyTimeFormat = "2006-01-02 15:04"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analyze runs",
	Long: `List the runs recorded with 'rdapgw analyze --snapshot' (or with
snapshot.enabled in the config), newest first.

Examples:
  rdapgw history
  rdapgw history show <run-id>
  rdapgw history diff            # latest run against the one before it
  rdapgw history diff <old> <new>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withSnapshots(cmd.Context(), func(ctx context.Context, repo snapshot.Repository) error {
			return listRuns(ctx, repo, limit, cmd.OutOrStdout())
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the provider shares of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd.Context(), func(ctx context.Context, repo snapshot.Repository) error {
			return showRun(ctx, repo, args[0], cmd.OutOrStdout())
		})
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff [old-run-id new-run-id]",
	Short: "Compare provider shares between two runs",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return errors.New("diff takes no arguments or exactly two run ids")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd.Context(), func(ctx context.Context, repo snapshot.Repository) error {
			return diffRuns(ctx, repo, args, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyDiffCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to list (0 = all)")
}

func withSnapshots(ctx context.Context, fn func(context.Context, snapshot.Repository) error) error {
	db, err := sqlite.NewDB(cfg.Snapshot.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return fn(ctx, db.SnapshotRepository())
}

func listRuns(ctx context.Context, repo snapshot.Repository, limit int, out io.Writer) error {
	runs, err := repo.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded. Use 'rdapgw analyze --snapshot' to record one.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s  %s  %s  %s  %s  %s  %s\n",
		cell("ID", 8), cell("WHEN", 16), cellRight("REGISTRARS", 10), cellRight("DOMAINS", 13),
		cellRight("GATEWAY", 8), cellRight("SELF", 8), "WORKBOOK")
	for _, r := range runs {
		_, _ = fmt.Fprintf(out, "%s  %s  %s  %s  %s  %s  %s\n",
			cell(shortID(r.ID), 8),
			cell(r.CreatedAt.Local().Format(historyTimeFormat), 16),
			cellRight(styles.FormatCount(int64(r.Records)), 10),
			cellRight(styles.FormatCount(r.GrandTotalDomains), 13),
			cellRight(fmt.Sprintf("%.1f%%", r.GatewayPercent), 8),
			cellRight(fmt.Sprintf("%.1f%%", r.SelfHostedPercent), 8),
			r.WorkbookPath)
	}
	return nil
}

func showRun(ctx context.Context, repo snapshot.Repository, id string, out io.Writer) error {
	run, err := findRun(ctx, repo, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Run %s  %s\n", run.ID, run.CreatedAt.Local().Format(historyTimeFormat))
	_, _ = fmt.Fprintf(out, "Workbook: %s\n", run.WorkbookPath)
	if run.EnrichmentPath != "" {
		_, _ = fmt.Fprintf(out, "Enrichment: %s\n", run.EnrichmentPath)
	}
	_, _ = fmt.Fprintf(out, "%s registrars, %s domains, %d providers, %d warnings\n\n",
		styles.FormatCount(int64(run.Records)), styles.FormatCount(run.GrandTotalDomains), run.Providers, run.Warnings)

	_, _ = fmt.Fprintf(out, "%s  %s  %s  %s  %s\n",
		cell("PROVIDER", 28), cell("KIND", 11), cellRight("REGISTRARS", 10), cellRight("DOMAINS", 13), cellRight("SHARE", 7))
	for _, s := range run.Shares {
		_, _ = fmt.Fprintf(out, "%s  %s  %s  %s  %s\n",
			cell(s.Provider, 28),
			cell(string(s.Kind), 11),
			cellRight(styles.FormatCount(int64(s.RegistrarCount)), 10),
			cellRight(styles.FormatCount(s.TotalDomains), 13),
			cellRight(fmt.Sprintf("%.1f%%", s.MarketSharePercent), 7))
	}
	return nil
}

func diffRuns(ctx context.Context, repo snapshot.Repository, ids []string, out io.Writer) error {
	var before, after *snapshot.Run
	if len(ids) == 2 {
		var err error
		if before, err = findRun(ctx, repo, ids[0]); err != nil {
			return err
		}
		if after, err = findRun(ctx, repo, ids[1]); err != nil {
			return err
		}
	} else {
		runs, err := repo.List(ctx, 2)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) < 2 {
			return errors.New("need at least two recorded runs to diff")
		}
		if before, err = repo.FindByID(ctx, runs[1].ID); err != nil {
			return err
		}
		if after, err = repo.FindByID(ctx, runs[0].ID); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(out, "%s (%s) -> %s (%s)\n",
		shortID(before.ID), before.CreatedAt.Local().Format(historyTimeFormat),
		shortID(after.ID), after.CreatedAt.Local().Format(historyTimeFormat))
	_, _ = fmt.Fprintf(out, "Gateways %.1f%% -> %.1f%%  self-hosted %.1f%% -> %.1f%%\n\n",
		before.GatewayPercent, after.GatewayPercent, before.SelfHostedPercent, after.SelfHostedPercent)

	deltas := snapshot.Compare(before, after)
	moved := 0
	for _, d := range deltas {
		if d.Change() == 0 && d.DomainsChange == 0 {
			continue
		}
		moved++
		_, _ = fmt.Fprintf(out, "%s  %s  %s -> %s  %s  %s\n",
			cell(d.Provider, 28),
			cell(string(d.Kind), 11),
			cellRight(fmt.Sprintf("%.1f%%", d.Before), 6),
			cellRight(fmt.Sprintf("%.1f%%", d.After), 6),
			cellRight(fmt.Sprintf("%+.1f", d.Change()), 6),
			cellRight(fmt.Sprintf("%+d", d.DomainsChange), 10))
	}
	if moved == 0 {
		_, _ = fmt.Fprintln(out, "No provider changed.")
	}
	return nil
}

// findRun resolves a full id or a unique prefix of at least four characters.
func findRun(ctx context.Context, repo snapshot.Repository, id string) (*snapshot.Run, error) {
	run, err := repo.FindByID(ctx, id)
	if err == nil {
		return run, nil
	}
	var notFound *snapshot.RunNotFoundError
	if !errors.As(err, &notFound) || len(id) < 4 {
		return nil, err
	}

	runs, listErr := repo.List(ctx, 0)
	if listErr != nil {
		return nil, fmt.Errorf("listing runs: %w", listErr)
	}
	var match string
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			if match != "" {
				return nil, fmt.Errorf("run id %q is ambiguous", id)
			}
			match = r.ID
		}
	}
	if match == "" {
		return nil, err
	}
	return repo.FindByID(ctx, match)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func cellRight(s string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(s, width, "…"), width)
}
