package statsui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mealboard/internal/filter"
)

func (m *Model) initDietTable() {
	m.dietTable = table.New(
		table.WithColumns(dietColumns()),
		table.WithRows(m.dietRows()),
		table.WithHeight(maxInt(1, len(m.diets))),
		table.WithFocused(true),
	)
	m.dietTable.SetStyles(dietTableStyles())
	m.tableLayout.rowCount = len(m.diets)
}

func dietColumns() []table.Column {
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "Diet", Width: 20},
		{Title: "Meals", Width: 7},
	}
}

func (m *Model) dietRows() []table.Row {
	rows := make([]table.Row, 0, len(m.diets))
	for _, diet := range m.diets {
		mark := "[ ]"
		if m.sel.Contains(diet) {
			mark = "[x]"
		}
		rows = append(rows, table.Row{mark, diet, strconv.Itoa(m.counts[diet])})
	}
	return rows
}

func dietTableStyles() table.Styles {
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

func (m *Model) setDietTableSize(width, height int) {
	rows := minInt(maxInt(1, len(m.diets)), maxInt(1, height-1))
	if m.tableLayout.width == width && m.tableLayout.height == rows {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = rows
	m.dietTable.SetWidth(width)
	m.dietTable.SetHeight(rows)
}

func (m *Model) startPicker() (tea.Model, tea.Cmd) {
	if len(m.diets) == 0 {
		m.errMsg = "No diet types in the dataset."
		return m, nil
	}
	m.pickerMode = true
	m.dietTable.SetRows(m.dietRows())
	m.dietTable.Focus()
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "d", "q":
		m.pickerMode = false
		m.dietTable.Blur()
		return m, nil
	case " ", "space", "x":
		row := m.dietTable.Cursor()
		if row >= 0 && row < len(m.diets) {
			m.setSelection(m.sel.Toggle(m.diets[row]))
		}
		return m, nil
	case "a":
		m.setSelection(filter.NewSelection(m.diets...))
		return m, nil
	case "n":
		m.setSelection(filter.NewSelection())
		return m, nil
	}
	var cmd tea.Cmd
	m.dietTable, cmd = m.dietTable.Update(msg)
	return m, cmd
}

// setSelection applies sel and rebuilds every panel.
func (m *Model) setSelection(sel filter.Selection) {
	m.sel = sel
	m.dietTable.SetRows(m.dietRows())
	m.refreshReport()
}

func (m *Model) renderPicker() string {
	body := []string{
		cardValueStyle.Render("Select Diets"),
		tableMutedStyle.Render(m.dietTable.View()),
		headerStyle.Render("space: toggle  a: all  n: none"),
		headerStyle.Render("Enter/Esc to close"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
