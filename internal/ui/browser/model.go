// Package browser implements the terminal registrar browser: a paged,
// filterable table over registrars.json behind an optional login gate.
package browser

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/rdapgw/internal/browse"
	"github.com/zjrosen/rdapgw/internal/keys"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/session"
	"github.com/zjrosen/rdapgw/internal/ui/help"
	"github.com/zjrosen/rdapgw/internal/ui/shared/table"
	"github.com/zjrosen/rdapgw/internal/ui/toaster"
)

// ExportFileName is the name of the CSV written by the export action.
const ExportFileName = "all_gateway_registrars.csv"

const (
	toastDuration = 3 * time.Second
	detailHeight  = 10
)

// Config wires the browser to its data and session.
type Config struct {
	// RecordsPath is reloaded on demand and when Changes fires.
	RecordsPath string
	// ExportDir receives the CSV export. Defaults to the directory of
	// RecordsPath.
	ExportDir string
	PageSize  int
	// Sessions is nil when no login gate is configured.
	Sessions     *session.Manager
	Session      session.Session
	RequireLogin bool
	// Changes signals that RecordsPath was rewritten. Nil disables
	// auto-reload.
	Changes <-chan struct{}
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	cfg    Config
	engine *browse.Engine
	query  browse.Query
	page   browse.Page
	cursor int

	table     table.Model
	search    textinput.Model
	searching bool
	details   bool
	showHelp  bool
	help      help.Model
	toaster   toaster.Model
	session   session.Session

	width  int
	height int
}

// New creates a browser over records.
func New(cfg Config, records []registrar.Record) Model {
	if cfg.PageSize <= 0 {
		cfg.PageSize = browse.DefaultPageSize
	}
	if cfg.ExportDir == "" && cfg.RecordsPath != "" {
		cfg.ExportDir = filepath.Dir(cfg.RecordsPath)
	}

	ti := textinput.New()
	ti.Placeholder = "name, id, provider, website..."
	ti.Prompt = "/ "
	ti.CharLimit = 128

	q := browse.DefaultQuery()
	q.PageSize = cfg.PageSize

	m := Model{
		cfg:     cfg,
		engine:  browse.NewEngine(records),
		query:   q,
		table:   table.New(tableConfig()),
		search:  ti,
		help:    help.New(),
		toaster: toaster.New(),
		session: cfg.Session,
	}
	m.refresh()
	return m
}

// Init starts listening for file changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.cfg.Changes)
}

// Locked reports whether the login gate is shown.
func (m Model) Locked() bool {
	if !m.cfg.RequireLogin || m.cfg.Sessions == nil {
		return false
	}
	return !m.cfg.Sessions.Valid(m.session)
}

// Query returns the active query.
func (m Model) Query() browse.Query {
	return m.query
}

// Page returns the page currently shown.
func (m Model) Page() browse.Page {
	return m.page
}

// Selected returns the record under the cursor.
func (m Model) Selected() (registrar.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Records) {
		return registrar.Record{}, false
	}
	return m.page.Records[m.cursor], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case fileChangedMsg:
		log.Debug(log.CatUI, "records file changed", "path", m.cfg.RecordsPath)
		return m, tea.Batch(loadRecords(m.cfg.RecordsPath), waitForChange(m.cfg.Changes))

	case recordsLoadedMsg:
		return m.handleLoaded(msg)

	case exportedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "export failed", msg.err, "path", msg.path)
			return m.toast("Export failed: "+msg.err.Error(), toaster.StyleError)
		}
		log.Info(log.CatUI, "exported records", "path", msg.path, "count", msg.count)
		return m.toast(exportMessage(msg.count, msg.path), toaster.StyleSuccess)

	case tea.MouseMsg:
		if m.Locked() || m.showHelp || m.searching {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.Locked() {
			// An authenticated session that is no longer valid ran out
			// while the browser was open.
			if m.session.Authenticated {
				return m.expire()
			}
			return m.handleLoginKey(msg)
		}
		if m.searching {
			return m.handleSearchKey(msg)
		}
		if m.showHelp {
			return m.handleHelpKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Login.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Login.Login):
		s, err := m.cfg.Sessions.Login()
		if err != nil {
			log.ErrorErr(log.CatUI, "login failed", err)
			return m.toast("Login failed: "+err.Error(), toaster.StyleError)
		}
		m.session = s
		log.Info(log.CatUI, "logged in")
		return m.toast("Logged in", toaster.StyleSuccess)
	}
	return m, nil
}

func (m Model) expire() (tea.Model, tea.Cmd) {
	s, err := m.cfg.Sessions.Logout()
	if err != nil {
		log.ErrorErr(log.CatUI, "clearing expired session", err)
	}
	m.session = s
	m.searching = false
	m.showHelp = false
	m.search.Blur()
	return m.toast("Session expired", toaster.StyleWarn)
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Browser.Help), key.Matches(msg, keys.Browser.Escape):
		m.showHelp = false
	case key.Matches(msg, keys.Browser.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, keys.Browser.ConfirmSearch), key.Matches(msg, keys.Browser.CancelSearch):
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.query.Search {
		m.query.Search = m.search.Value()
		m.query.Page = 1
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keys.Browser
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
	case key.Matches(msg, k.NextPage):
		m.gotoPage(m.page.Page + 1)
	case key.Matches(msg, k.PrevPage):
		m.gotoPage(m.page.Page - 1)
	case key.Matches(msg, k.Top):
		m.gotoPage(1)
	case key.Matches(msg, k.Bottom):
		m.gotoPage(m.page.TotalPages)

	case key.Matches(msg, k.Search):
		m.searching = true
		m.search.SetValue(m.query.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, k.CycleProvider):
		m.query.Provider = nextOption(append([]string{""}, m.engine.Facets().Providers...), m.query.Provider)
		m.requery()
	case key.Matches(msg, k.CycleKind):
		m.query.Kind = nextOption(append([]registrar.Kind{""}, m.engine.Facets().Kinds...), m.query.Kind)
		m.requery()
	case key.Matches(msg, k.CycleSize):
		m.query.Size = m.query.Size.Next()
		m.requery()
	case key.Matches(msg, k.CycleCategory):
		m.query.Category = nextOption(m.engine.Facets().CategoryOptions(), m.query.Category)
		m.requery()
	case key.Matches(msg, k.CycleSort):
		m.query.Sort = m.query.Sort.Next()
		m.requery()
	case key.Matches(msg, k.ToggleOrder):
		m.query.Desc = !m.query.Desc
		m.requery()
	case key.Matches(msg, k.ClearFilters):
		q := browse.DefaultQuery()
		q.PageSize = m.cfg.PageSize
		m.query = q
		m.search.SetValue("")
		m.requery()

	case key.Matches(msg, k.Details):
		m.details = !m.details
		m.layout()
	case key.Matches(msg, k.Escape):
		if m.details {
			m.details = false
			m.layout()
		}
	case key.Matches(msg, k.Help):
		m.showHelp = true

	case key.Matches(msg, k.Export):
		view, err := m.engine.View(context.Background(), m.query)
		if err != nil {
			return m.toast("Export failed: "+err.Error(), toaster.StyleError)
		}
		return m, exportRecords(filepath.Join(m.cfg.ExportDir, ExportFileName), view)
	case key.Matches(msg, k.Reload):
		if m.cfg.RecordsPath == "" {
			return m.toast("Nothing to reload", toaster.StyleWarn)
		}
		return m, loadRecords(m.cfg.RecordsPath)
	case key.Matches(msg, k.Logout):
		if !m.cfg.RequireLogin || m.cfg.Sessions == nil {
			return m.toast("Login is not enabled", toaster.StyleInfo)
		}
		s, err := m.cfg.Sessions.Logout()
		if err != nil {
			log.ErrorErr(log.CatUI, "logout failed", err)
			return m.toast("Logout failed: "+err.Error(), toaster.StyleError)
		}
		m.session = s
		log.Info(log.CatUI, "logged out")
		return m.toast("Logged out", toaster.StyleInfo)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	for i := range m.page.Records {
		if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
			if i == m.cursor {
				m.details = !m.details
				m.layout()
			} else {
				m.cursor = i
				m.table = m.table.EnsureVisible(i)
			}
			break
		}
	}
	return m, nil
}

func (m Model) handleLoaded(msg recordsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatUI, "reload failed", msg.err, "path", m.cfg.RecordsPath)
		return m.toast("Reload failed: "+msg.err.Error(), toaster.StyleError)
	}
	if err := m.engine.Replace(context.Background(), msg.records); err != nil {
		return m.toast("Reload failed: "+err.Error(), toaster.StyleError)
	}
	m.refresh()
	return m.toast(reloadMessage(len(msg.records)), toaster.StyleSuccess)
}

func (m Model) toast(text string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, style, toastDuration)
	return m, cmd
}

// requery resets paging after a filter or sort change.
func (m *Model) requery() {
	m.query.Page = 1
	m.cursor = 0
	m.refresh()
}

func (m *Model) gotoPage(p int) {
	if p < 1 || p > m.page.TotalPages || p == m.page.Page {
		return
	}
	m.query.Page = p
	m.cursor = 0
	m.refresh()
}

// moveCursor moves within the page and spills onto the neighbouring page
// at either end.
func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	switch {
	case next < 0:
		if m.page.HasPrev() {
			m.query.Page--
			m.refresh()
			m.cursor = len(m.page.Records) - 1
		}
	case next >= len(m.page.Records):
		if m.page.HasNext() {
			m.query.Page++
			m.cursor = 0
			m.refresh()
		}
	default:
		m.cursor = next
	}
	m.table = m.table.EnsureVisible(m.cursor)
}

func (m *Model) refresh() {
	page, err := m.engine.Query(context.Background(), m.query)
	if err != nil {
		log.ErrorErr(log.CatUI, "query failed", err)
		return
	}
	m.page = page
	m.query.Page = page.Page
	m.cursor = min(max(m.cursor, 0), max(len(page.Records)-1, 0))

	rows := make([]any, len(page.Records))
	for i, r := range page.Records {
		rows[i] = r
	}
	m.table = m.table.SetRows(rows).EnsureVisible(m.cursor)
}

func (m *Model) layout() {
	m.table = m.table.SetSize(m.width, m.tableHeight()).EnsureVisible(m.cursor)
}

// tableHeight is what remains after the header, filter bar, status line and
// the detail pane when it is open.
func (m Model) tableHeight() int {
	h := m.height - 3
	if m.details {
		h -= detailHeight
	}
	return max(h, 3)
}

func nextOption[T comparable](opts []T, cur T) T {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}
