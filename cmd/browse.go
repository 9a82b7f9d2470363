package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/rdapgw/internal/config"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/presentation"
	"github.com/zjrosen/rdapgw/internal/session"
	"github.com/zjrosen/rdapgw/internal/ui/browser"
	"github.com/zjrosen/rdapgw/internal/watcher"
)

var browseCmd = &cobra.Command{
	Use:   "browse [registrars.json]",
	Short: "Browse registrars in the terminal",
	Long: `Open a paged, searchable table over registrars.json. Filter by provider,
kind, size bucket and category, sort by any column and export the current
view to CSV. The file is reloaded automatically when analyze rewrites it.

Press ? inside the browser for key bindings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().Bool("no-auto-reload", false,
		"do not reload registrars.json when it changes")
	browseCmd.Flags().Int("page-size", 0,
		"registrars per page (overrides ui.page_size)")
}

// recordsPath resolves the registrars.json argument, falling back to the
// configured output directory.
func recordsPath(c config.Config, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return filepath.Join(c.Output.Dir, presentation.RecordsFile)
}

// newSessionManager returns nil when the login gate is off.
func newSessionManager(c config.Config) *session.Manager {
	if !c.Session.Required {
		return nil
	}
	var store session.Store
	if c.Session.StatePath != "" {
		store = session.FileStore{Path: c.Session.StatePath}
	}
	return session.NewManager(session.SystemClock{}, session.Hours(c.Session.DurationHours), store)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	path := recordsPath(cfg, args)
	records, err := browser.LoadRecords(path)
	if err != nil {
		return fmt.Errorf("loading registrars: %w\nRun 'rdapgw analyze <workbook.xlsx>' first", err)
	}

	bcfg := browser.Config{
		RecordsPath:  path,
		PageSize:     cfg.UI.PageSize,
		Sessions:     newSessionManager(cfg),
		RequireLogin: cfg.Session.Required,
	}
	if n, _ := cmd.Flags().GetInt("page-size"); n > 0 {
		bcfg.PageSize = n
	}
	if bcfg.Sessions != nil {
		s, err := bcfg.Sessions.Restore()
		if err != nil {
			log.ErrorErr(log.CatUI, "restoring session failed", err)
		}
		bcfg.Session = s
	}

	autoReload := cfg.UI.AutoReload
	if noAutoReload, _ := cmd.Flags().GetBool("no-auto-reload"); noAutoReload {
		autoReload = false
	}
	if autoReload {
		w, err := watcher.New(watcher.DefaultConfig(path))
		if err != nil {
			log.ErrorErr(log.CatWatcher, "creating watcher failed", err)
		} else {
			changes, err := w.Start()
			if err != nil {
				log.ErrorErr(log.CatWatcher, "starting watcher failed", err)
			} else {
				bcfg.Changes = changes
			}
			defer func() { _ = w.Stop() }()
		}
	}

	zone.NewGlobal()
	model := browser.New(bcfg, records)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
