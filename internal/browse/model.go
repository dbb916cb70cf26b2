// Package browse provides the Bubble Tea pager over a game's draws.
package browse

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/drawlens/internal/engine"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/pipeline"
	"github.com/verte-zerg/drawlens/internal/query"
	"github.com/verte-zerg/drawlens/internal/stats"
)

const (
	tabResults = iota
	tabStats
	tabPairs
	tabTrending
	tabWeekly
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea pager.
type Model struct {
	engine *engine.Engine
	crit   query.Criteria
	opts   pipeline.Options

	result engine.SearchResult
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	resultTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a pager. Zero criteria browse every draw.
func NewModel(e *engine.Engine, crit query.Criteria, opts pipeline.Options) *Model {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = pipeline.DefaultPageSize
	}
	m := &Model{
		engine: e,
		crit:   crit,
		opts:   opts,
		tabs:   []string{"Results", "Statistics", "Pairs", "Trending", "Weekly"},
	}
	m.initInputs()
	m.initViewports()
	m.resultTable = buildResultTable(e, nil, 80, 10)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Result returns the search currently shown.
func (m *Model) Result() engine.SearchResult {
	return m.result
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "n", "pgdown":
			if m.opts.Page < m.result.Page.TotalPages {
				m.opts.Page++
				m.refresh()
			}
			return m, nil
		case "p", "pgup":
			if m.opts.Page > 1 {
				m.opts.Page--
				m.refresh()
			}
			return m, nil
		case "s":
			if m.opts.SortBy == pipeline.SortByNumber {
				m.opts.SortBy = pipeline.SortByDate
			} else {
				m.opts.SortBy = pipeline.SortByNumber
			}
			m.opts.Page = 1
			m.refresh()
			return m, nil
		case "o":
			m.opts.Desc = !m.opts.Desc
			m.opts.Page = 1
			m.refresh()
			return m, nil
		case "r":
			m.opts.Months = nextInt(pipeline.RangeMonths, m.opts.Months)
			m.opts.Page = 1
			m.refresh()
			return m, nil
		case "z":
			m.opts.PageSize = nextInt(pipeline.PageSizes, m.opts.PageSize)
			m.opts.Page = 1
			m.refresh()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabResults {
				m.resultTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabResults {
				m.resultTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabResults {
				var cmd tea.Cmd
				m.resultTable, cmd = m.resultTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Selector: "),
		newFilterInput("Value: "),
		newFilterInput("Line: "),
	}
	m.filterInputs[0].Placeholder = "draw-number, draw-date, weekday, holiday, day-of-month"
	m.setInputsFromCriteria()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromCriteria() {
	m.filterInputs[0].SetValue(string(m.crit.Selector))
	m.filterInputs[1].SetValue(m.crit.Value)
	if m.opts.Line != nil {
		m.filterInputs[2].SetValue(strconv.Itoa(*m.opts.Line))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.resultTable.SetWidth(m.width)
	m.resultTable.SetHeight(maxInt(1, vpHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabResults {
		m.resultTable.Focus()
	} else {
		m.resultTable.Blur()
	}
}

// refresh reruns the search with the current criteria and options. On error
// the previous result stays on screen.
func (m *Model) refresh() {
	var (
		res engine.SearchResult
		err error
	)
	if m.crit == (query.Criteria{}) {
		res, err = m.engine.All(m.opts)
	} else {
		res, err = m.engine.Search(m.crit, m.opts)
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.result = res
	m.resultTable.SetRows(resultRows(m.engine, res))
	m.resultTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabStats].SetContent(m.renderStats())
	p := m.engine.Profile()
	tables := m.engine.Tables()
	m.viewports[tabPairs].SetContent(renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderRanked(buf, "Pairs", tables.Pairs.Header, m.engine.Pairs())
	}))
	m.viewports[tabTrending].SetContent(renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderRanked(buf, "Trending Numbers", tables.Trending.Header, m.engine.Trending())
	}))
	m.viewports[tabWeekly].SetContent(renderSection(func(buf *bytes.Buffer) error {
		return stats.RenderRows(buf, fmt.Sprintf("%s: last %d weeks", p.Name, stats.WeeklyRows), tables.Weekly.Header, m.engine.Weekly())
	}))
	for i := range m.viewports {
		m.viewports[i].Width = width
	}
}

func (m *Model) renderStats() string {
	return renderSection(func(buf *bytes.Buffer) error {
		switch m.crit.Selector {
		case query.ByWeekday, query.ByDayOfMonth, query.ByHoliday:
			if m.crit.Value != "" {
				top, err := m.engine.TopNumbers(m.crit.Selector, m.crit.Value, stats.DefaultTopN)
				if err != nil {
					return err
				}
				if err := stats.RenderFrequency(buf, "Top Numbers for "+m.crit.Value, top); err != nil {
					return err
				}
			}
		}
		return stats.RenderReport(buf, m.engine.Report(m.result.Result.Records, stats.DefaultTopN))
	})
}

func renderSection(render func(*bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(m.renderSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSummary() string {
	search := "all draws"
	if m.crit != (query.Criteria{}) {
		search = m.crit.String()
	}
	rng := "all"
	if m.opts.Months > 0 {
		rng = fmt.Sprintf("%dm", m.opts.Months)
	}
	order := "asc"
	if m.opts.Desc {
		order = "desc"
	}
	sortBy := m.opts.SortBy
	if sortBy == "" {
		sortBy = pipeline.SortByDate
	}
	summary := fmt.Sprintf("%s  %s  range=%s  sort=%s %s  page %d/%d  (%d draws)",
		m.engine.Profile().Name, search, rng, sortBy, order,
		m.result.Page.Page, m.result.Page.TotalPages, m.result.Page.TotalCount)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Tabs: left/right  Page: n/p  Sort: s  Order: o  Range: r  Size: z  Search: /  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Search (enter to apply, esc to cancel, leave both empty to browse all draws)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if labels := m.engine.HolidayLabels(); len(labels) > 0 {
		lines = append(lines, headerStyle.Render("Holidays: "+strings.Join(labels, ", ")))
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabResults {
		if len(m.result.Page.Records) == 0 {
			return fitLines("No draws found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.resultTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromCriteria()
	return m, m.setFilterIndex(1)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	crit := query.Criteria{Value: strings.TrimSpace(m.filterInputs[1].Value())}
	if sel := strings.TrimSpace(m.filterInputs[0].Value()); sel != "" {
		parsed, err := query.ParseSelector(sel)
		if err != nil {
			return err
		}
		crit.Selector = parsed
	} else if crit.Value != "" {
		return fmt.Errorf("a selector is required with a value")
	}
	if crit.Selector != "" && crit.Value == "" {
		return model.InvalidCriteria("%s needs a value", crit.Selector)
	}

	opts := m.opts
	opts.Line = nil
	if lineInput := strings.TrimSpace(m.filterInputs[2].Value()); lineInput != "" {
		line, err := strconv.Atoi(lineInput)
		if err != nil || line < 1 {
			return fmt.Errorf("invalid line (use a positive integer)")
		}
		opts.Line = &line
	}
	opts.Page = 1

	prevCrit, prevOpts := m.crit, m.opts
	m.crit, m.opts = crit, opts
	m.refresh()
	if m.errMsg != "" {
		err := m.errMsg
		m.crit, m.opts = prevCrit, prevOpts
		m.errMsg = ""
		return fmt.Errorf("%s", err)
	}
	return nil
}

func buildResultTable(e *engine.Engine, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(resultColumns(e)),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(resultTableStyles())
	return t
}

func resultColumns(e *engine.Engine) []table.Column {
	p := e.Profile()
	numbersWidth := 8
	if p.MultiNumber {
		numbersWidth = 22
	}
	cols := []table.Column{
		{Title: "Draw", Width: 7},
		{Title: "Date", Width: 16},
		{Title: "Numbers", Width: numbersWidth},
	}
	if p.HasLine {
		cols = append(cols, table.Column{Title: "Line", Width: 4})
	}
	return cols
}

func resultRows(e *engine.Engine, res engine.SearchResult) []table.Row {
	hasLine := e.Profile().HasLine
	rows := make([]table.Row, 0, len(res.Page.Records))
	for _, r := range res.Page.Records {
		row := table.Row{strconv.Itoa(r.DrawNumber), r.RawDateText, strings.Join(r.Numbers, " ")}
		if hasLine {
			line := ""
			if r.Line != nil {
				line = strconv.Itoa(*r.Line)
			}
			row = append(row, line)
		}
		rows = append(rows, row)
	}
	return rows
}

func resultTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func nextInt(values []int, current int) int {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
