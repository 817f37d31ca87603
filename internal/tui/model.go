// Package tui renders the expense client: a table of records, category
// and monthly charts, and a form for create and edit. It forwards user
// intents to the session coordinator and re-renders from the snapshot
// every confirmed mutation returns, so the table, form, and charts can
// never disagree about committed state.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"outgo/internal/core"
	applog "outgo/internal/log"
	"outgo/internal/session"
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
)

type keyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Messages produced by commands. Both carry backend outcomes back onto
// the event loop; the store is only ever updated from there.
type (
	loadedMsg struct {
		records []core.Expense
		err     error
	}
	opDoneMsg struct {
		res session.Result
	}
)

// Model is the bubbletea model for the whole client.
type Model struct {
	session *session.Coordinator
	logger  *applog.Logger

	table table.Model
	form  form
	spin  spinner.Model
	keys  keyMap

	mode    mode
	editID  string // record being edited; empty in add mode
	records []core.Expense

	status    string
	statusErr bool
	loading   bool

	width  int
	height int
}

func New(coordinator *session.Coordinator, logger *applog.Logger) Model {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Description", Width: 28},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	ts.Selected = selectedStyle
	t.SetStyles(ts)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		session: coordinator,
		logger:  logger.WithComponent(applog.ComponentTUI),
		table:   t,
		form:    newForm(),
		spin:    sp,
		keys:    defaultKeyMap(),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spin.Tick)
}

// loadCmd fetches the full record set off the event loop.
func (m Model) loadCmd() tea.Cmd {
	coordinator := m.session
	return func() tea.Msg {
		records, err := coordinator.Load(context.Background())
		return loadedMsg{records: records, err: err}
	}
}

// opCmd executes a claimed request off the event loop.
func (m Model) opCmd(req session.Request) tea.Cmd {
	coordinator := m.session
	return func() tea.Msg {
		return opDoneMsg{res: coordinator.Do(context.Background(), req)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if h := msg.Height - 16; h > 4 {
			m.table.SetHeight(h)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("load failed", applog.FieldError, msg.err)
			m.setError("load failed: " + msg.err.Error())
			return m, nil
		}
		m.syncRecords(msg.records)
		m.setInfo("")
		return m, nil

	case opDoneMsg:
		return m.applyResult(msg.res)

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// applyResult commits a backend outcome through the coordinator and
// re-renders from the returned snapshot. Stale results are dropped.
func (m Model) applyResult(res session.Result) (tea.Model, tea.Cmd) {
	snapshot, live := m.session.Apply(res)
	if !live {
		return m, nil
	}
	if res.Err != nil {
		// The store is untouched and the form keeps its values; the
		// user retries manually.
		m.setError(res.Err.Error())
		return m, nil
	}

	m.syncRecords(snapshot)
	switch res.Req.Kind {
	case session.KindAdd:
		m.form.reset()
		m.mode = modeForm // stay in the form for quick consecutive entry
		m.setInfo("expense added")
	case session.KindUpdate:
		m.mode = modeBrowse
		m.editID = ""
		m.setInfo("expense updated")
	case session.KindDelete:
		m.setInfo("expense deleted")
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		m.form.reset()
		m.editID = ""
		m.mode = modeForm
		m.setInfo("")
		return *m, nil

	case key.Matches(msg, m.keys.Edit):
		if _, pending := m.session.DeletePending(); pending {
			m.setError("a delete is in progress")
			return *m, nil
		}
		record, ok := m.selectedRecord()
		if !ok {
			return *m, nil
		}
		m.form.load(record)
		m.editID = record.ID
		m.mode = modeForm
		m.setInfo("")
		return *m, nil

	case key.Matches(msg, m.keys.Delete):
		record, ok := m.selectedRecord()
		if !ok {
			return *m, nil
		}
		req, err := m.session.StartDelete(record.ID)
		if err != nil {
			m.setError(err.Error())
			return *m, nil
		}
		m.setInfo("deleting...")
		return *m, tea.Batch(m.opCmd(req), m.spin.Tick)

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return *m, tea.Batch(m.loadCmd(), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return *m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return *m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.editID = ""
		m.setInfo("")
		return *m, nil

	case "tab", "down":
		m.form.nextField()
		return *m, nil

	case "shift+tab", "up":
		m.form.prevField()
		return *m, nil

	case "left", "right":
		if m.form.focus == fieldCategory {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.form.cycleCategory(delta)
			return *m, nil
		}

	case "enter":
		return m.submitForm()
	}

	return *m, m.form.update(msg)
}

// submitForm validates locally and claims the add or update slot. Any
// error, local or admission, surfaces on the status line and the form
// keeps everything the user entered.
func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	draft, err := m.form.draft()
	if err != nil {
		m.setError(err.Error())
		return *m, nil
	}

	var req session.Request
	if m.editID == "" {
		req, err = m.session.StartAdd(draft)
	} else {
		req, err = m.session.StartUpdate(m.editID, draft)
	}
	if err != nil {
		m.setError(err.Error())
		return *m, nil
	}
	m.setInfo("")
	return *m, tea.Batch(m.opCmd(req), m.spin.Tick)
}

// syncRecords is the single point where a new snapshot reaches the
// view: table rows and chart input update together.
func (m *Model) syncRecords(records []core.Expense) {
	m.records = records
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Date.Format(dateLayout),
			r.Description,
			string(r.Category),
			core.FormatAmount(r.Amount),
		})
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) selectedRecord() (core.Expense, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return core.Expense{}, false
	}
	return m.records[i], true
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

func (m *Model) setInfo(text string) {
	m.status = text
	m.statusErr = false
}

func (m Model) busy() bool {
	if m.loading || m.session.SubmitPending() {
		return true
	}
	_, pending := m.session.DeletePending()
	return pending
}

func (m Model) View() string {
	header := titleStyle.Render("outgo") + "  " +
		mutedStyle.Render("total "+core.FormatAmount(core.GrandTotal(m.records)))
	if m.busy() {
		header += "  " + m.spin.View()
	}

	chartWidth := 20
	charts := panelStyle.Render(
		renderCategoryChart(m.records, chartWidth) + "\n\n" +
			renderMonthlyChart(m.records, chartWidth),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(m.table.View()), " ", charts)

	sections := []string{header, body}
	if m.mode == modeForm {
		title := "New expense"
		if m.editID != "" {
			title = "Edit expense"
		}
		sections = append(sections, m.form.view(title, m.session.SubmitPending()))
	}

	if m.status != "" {
		if m.statusErr {
			sections = append(sections, errorStyle.Render("✖ "+m.status))
		} else {
			sections = append(sections, successStyle.Render("✔ "+m.status))
		}
	}

	if m.mode == modeBrowse {
		help := "a add • e edit • d delete • r reload • q quit"
		if _, pending := m.session.DeletePending(); pending {
			help = "delete in progress, actions disabled"
		}
		sections = append(sections, helpStyle.Render(help))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
