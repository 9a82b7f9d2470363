package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/browse"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/presentation"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/ui/browser"
)

type exportOptions struct {
	Search   string
	Provider string
	Kind     string
	Size     string
	Category string
	Sort     string
	Desc     bool
	Out      string
}

var exportFlags exportOptions

var exportCmd = &cobra.Command{
	Use:   "export [registrars.json]",
	Short: "Write a filtered view of the registrars as CSV",
	Long: `Apply the same search, filters and sort as the browser and write the
matching registrars as CSV, every field quoted. Writes to stdout unless
--out is given.

Examples:
  rdapgw export --kind gateway --sort name
  rdapgw export --provider Tucows --size large --out tucows.csv
  rdapgw export --search "domains" --category Retail`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := exportQuery(exportFlags, cmd.Flags().Changed("desc"))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportFlags.Out != "" {
			f, err := os.Create(exportFlags.Out) //nolint:gosec // G304: output path comes from the user
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportFlags.Out, err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		n, err := runExport(recordsPath(cfg, args), q, out)
		if err != nil {
			return err
		}
		if exportFlags.Out != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", n, exportFlags.Out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.Search, "search", "s", "", "match name, IANA id, RDAP URL, provider or website")
	f.StringVarP(&exportFlags.Provider, "provider", "p", "", "exact provider name")
	f.StringVarP(&exportFlags.Kind, "kind", "k", "", "gateway, candidate or self_hosted")
	f.StringVar(&exportFlags.Size, "size", "", "small, medium, large or enterprise")
	f.StringVar(&exportFlags.Category, "category", "", "registrar category (\"Uncategorized\" for none)")
	f.StringVar(&exportFlags.Sort, "sort", "", "domain_count, name, iana_id, provider, provider_kind or category")
	f.BoolVar(&exportFlags.Desc, "desc", false, "sort descending (default when no --sort is given)")
	f.StringVarP(&exportFlags.Out, "out", "o", "", "write to a file instead of stdout")
}

// exportQuery builds the browse query for the flags. Without --sort the
// browser default of largest first applies unless --desc was set
// explicitly.
func exportQuery(o exportOptions, descChanged bool) (browse.Query, error) {
	q := browse.DefaultQuery()
	q.Search = o.Search
	q.Provider = o.Provider
	q.Category = o.Category

	if o.Kind != "" {
		k := registrar.Kind(strings.ToLower(strings.TrimSpace(o.Kind)))
		if !k.Valid() {
			return q, fmt.Errorf("unknown kind %q (want gateway, candidate or self_hosted)", o.Kind)
		}
		q.Kind = k
	}

	size, err := browse.ParseSize(o.Size)
	if err != nil {
		return q, err
	}
	q.Size = size

	sort, err := browse.ParseSortField(o.Sort)
	if err != nil {
		return q, err
	}
	q.Sort = sort
	if o.Sort != "" || descChanged {
		q.Desc = o.Desc
	}
	return q, nil
}

// runExport writes the matching records to out and returns how many there
// were.
func runExport(path string, q browse.Query, out io.Writer) (int, error) {
	records, err := browser.LoadRecords(path)
	if err != nil {
		return 0, fmt.Errorf("loading registrars: %w", err)
	}
	view := browse.Apply(records, q)
	if err := presentation.WriteCSV(out, presentation.FromRecords(view)); err != nil {
		return 0, fmt.Errorf("writing CSV: %w", err)
	}
	log.Info(log.CatOutput, "exported", "records", len(view), "query", q.Key())
	return len(view), nil
}
