// Package statsui provides the Bubble Tea dashboard interface.
package statsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
)

const (
	defaultPlotHeight = 12
	maxBins           = 200
	maxPlotHeight     = 60
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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	panelTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Config holds the initial dashboard settings.
type Config struct {
	// Diets is the initial selection; empty selects every diet.
	Diets      []string
	Bins       int
	PlotHeight int
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	ds     *dataset.Dataset
	diets  []string
	counts map[string]int

	sel        filter.Selection
	opts       stats.Options
	plotHeight int
	report     stats.Report
	errMsg     string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int

	settingsMode   bool
	settingsInputs []textinput.Model
	settingsIndex  int
	settingsError  string

	pickerMode  bool
	dietTable   table.Model
	tableLayout tableLayout
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a dashboard model over ds.
func NewModel(ds *dataset.Dataset, cfg Config) *Model {
	m := &Model{
		ds:         ds,
		tabs:       stats.TabNames,
		opts:       stats.Options{Bins: cfg.Bins},
		plotHeight: cfg.PlotHeight,
	}
	if m.opts.Bins <= 0 {
		m.opts.Bins = stats.DefaultBins
	}
	if m.plotHeight <= 0 {
		m.plotHeight = defaultPlotHeight
	}
	m.diets, _ = dataset.Levels(ds, dataset.ColDiet)
	m.counts = make(map[string]int, len(m.diets))
	if counts, err := stats.ValueCounts(ds, dataset.ColDiet); err == nil {
		for _, c := range counts {
			m.counts[c.Key] = c.N
		}
	}
	m.sel = filter.NewSelection(cfg.Diets...).Restrict(m.diets)
	if len(cfg.Diets) == 0 {
		m.sel = filter.NewSelection(m.diets...)
	}
	m.initInputs()
	m.initDietTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Selection returns the diets currently selected.
func (m *Model) Selection() filter.Selection {
	return m.sel
}

// Report returns the report for the current selection.
func (m *Model) Report() stats.Report {
	return m.report
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
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
		if m.settingsMode {
			return m.updateSettings(msg)
		}
		if m.pickerMode {
			return m.updatePicker(msg)
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
		case "d", "enter":
			return m.startPicker()
		case "/":
			return m.startSettings()
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
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
	if m.pickerMode {
		return fitLines(m.renderPicker(), m.width, m.height)
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
	m.settingsInputs = []textinput.Model{
		newInput("Histogram bins: "),
		newInput("Plot height: "),
	}
	m.setInputsFromSettings()
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 4
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromSettings() {
	m.settingsInputs[0].SetValue(strconv.Itoa(m.opts.Bins))
	m.settingsInputs[1].SetValue(strconv.Itoa(m.plotHeight))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.settingsMode && m.errMsg != "" {
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
	for i := range m.settingsInputs {
		promptWidth := lipgloss.Width(m.settingsInputs[i].Prompt)
		m.settingsInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	m.setDietTableSize(modalInnerWidth(m.width), maxInt(3, m.height-12))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
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
	summary := padLines(m.renderSelectionSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSelectionSummary() string {
	diets := m.sel.String()
	if m.sel.Len() == len(m.diets) && len(m.diets) > 0 {
		diets = "all"
	}
	summary := fmt.Sprintf("Diets: %s  meals=%d/%d  bins=%d  height=%d",
		diets, m.report.Rows, m.report.Total, m.opts.Bins, m.plotHeight)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Diets: d  Settings: /  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.settingsMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderSettingsForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.settingsInputs {
		lines = append(lines, input.View())
	}
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.settingsMode {
		return fitLines(m.renderSettingsForm(), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	m.report = stats.BuildReport(m.ds, m.sel, m.opts)
	m.errMsg = ""
	if m.sel.Len() == 0 {
		m.errMsg = "No diets selected. Press d to choose diets."
	}
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i := range m.viewports {
		m.viewports[i].SetContent(m.renderTab(stats.Tab(i), width))
	}
}

func (m *Model) renderTab(tab stats.Tab, width int) string {
	sections := make([]string, 0, 4)
	if tab == stats.TabOverview {
		sections = append(sections, renderSummaryCards(m.report.Cards, width))
	}
	opts := stats.RenderOptions{Width: width, Height: m.plotHeight, Color: true}
	for _, p := range m.report.PanelsFor(tab) {
		sections = append(sections, renderPanel(p, opts))
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(c stats.Cards, width int) string {
	cards := []string{
		metricCard("Meals", strconv.Itoa(c.Meals)),
		metricCard("Avg Calories", stats.FormatNumber(c.MeanCalories, 1)),
		metricCard("Avg Prep (min)", stats.FormatNumber(c.MeanPrepTime, 1)),
		metricCard("Healthy", stats.FormatPercent(c.HealthyShare)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderPanel(p stats.Panel, opts stats.RenderOptions) string {
	title := p.Title
	if p.Unfiltered {
		title += " (all diets)"
	}
	lines := []string{panelTitleStyle.Render(title)}
	for _, line := range wrapText(p.Description, opts.Width) {
		lines = append(lines, headerStyle.Render(line))
	}
	switch {
	case p.Empty():
		lines = append(lines, "No data for the current selection.")
	case p.Failed():
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Unavailable: %v", p.Err)))
	default:
		body, err := stats.PanelLines(p, opts)
		if err != nil {
			lines = append(lines, errorStyle.Render(fmt.Sprintf("Unavailable: %v", err)))
			break
		}
		lines = append(lines, body...)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.settingsMode = true
	m.settingsError = ""
	m.setInputsFromSettings()
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsMode = false
		m.settingsError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applySettings(); err != nil {
			m.settingsError = err.Error()
			return m, nil
		}
		m.settingsMode = false
		m.settingsError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsInputs[m.settingsIndex], cmd = m.settingsInputs[m.settingsIndex].Update(msg)
	return m, cmd
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsInputs {
		if i == m.settingsIndex {
			cmd = m.settingsInputs[i].Focus()
		} else {
			m.settingsInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applySettings() error {
	bins, err := parseBounded(m.settingsInputs[0].Value(), 1, maxBins)
	if err != nil {
		return fmt.Errorf("invalid bins (use integer 1-%d)", maxBins)
	}
	height, err := parseBounded(m.settingsInputs[1].Value(), 4, maxPlotHeight)
	if err != nil {
		return fmt.Errorf("invalid plot height (use integer 4-%d)", maxPlotHeight)
	}
	m.opts.Bins = bins
	m.plotHeight = height
	return nil
}

func parseBounded(input string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d out of range", v)
	}
	return v, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
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
