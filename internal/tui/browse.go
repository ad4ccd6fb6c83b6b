// Package tui is the terminal presentation of the drill-down navigator.
//
// The model never renders navigator state on its own: it subscribes to the
// navigator and re-binds from every emitted View, so a Back re-render always
// carries the current row actions.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/navigator"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/ginjaninja78/payables-dashboard/pkg/utils"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD37A"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87CEEB"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
)

// dayItem is one line of the day list shown while the modal is closed.
type dayItem struct {
	day         string
	submissions int
	total       float64
}

// session holds the state the navigator subscription writes to. The tea
// model is copied on every update; the session is shared.
type session struct {
	nav    *navigator.Navigator
	view   navigator.View
	cursor int
}

type model struct {
	s      *session
	days   []dayItem
	cursor int
	err    string
}

// New builds the browse model over a filtered group set.
func New(groups []types.SubmissionGroup, labels types.LabelIndex) tea.Model {
	s := &session{nav: navigator.New(groups, labels)}
	s.nav.Subscribe(func(v navigator.View) {
		s.view = v
		s.cursor = 0
	})
	return model{s: s, days: dayList(groups)}
}

// Run starts the interactive browser on the alternate screen.
func Run(groups []types.SubmissionGroup, labels types.LabelIndex) error {
	if _, err := tea.NewProgram(New(groups, labels), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// dayList lists days newest first with their submission counts.
func dayList(groups []types.SubmissionGroup) []dayItem {
	var items []dayItem
	index := make(map[string]int)
	for _, row := range analytics.ComputeDayTable(groups) {
		i, ok := index[row.Day]
		if !ok {
			i = len(items)
			index[row.Day] = i
			items = append(items, dayItem{day: row.Day})
		}
		items[i].submissions += row.Submissions
		items[i].total += row.Total
	}
	return items
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) closed() bool {
	return m.s.view.State.Screen == navigator.Closed
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = ""

	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.closed() {
			return m, tea.Quit
		}
		m.s.nav.Close()
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		m.setErr(m.activate())
	case "esc", "backspace":
		if !m.closed() {
			m.setErr(m.s.nav.Back())
		}
	case "left", "h":
		m.setErr(m.s.nav.Prev())
	case "right", "l":
		m.setErr(m.s.nav.Next())
	}
	return m, nil
}

func (m *model) setErr(err error) {
	if err != nil {
		m.err = err.Error()
	}
}

func (m *model) move(delta int) {
	if m.closed() {
		m.cursor = clamp(m.cursor+delta, len(m.days))
		return
	}
	m.s.cursor = clamp(m.s.cursor+delta, len(m.s.view.Rows))
}

func (m *model) activate() error {
	if m.closed() {
		if len(m.days) == 0 {
			return nil
		}
		return m.s.nav.OpenDay(m.days[m.cursor].day)
	}
	if m.s.view.OnRowClick == nil {
		return nil
	}
	return m.s.nav.Click(m.s.cursor)
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// =============================================================================
// RENDERING
// =============================================================================

func (m model) View() string {
	var b strings.Builder
	if m.closed() {
		m.renderDays(&b)
	} else {
		m.renderModal(&b)
	}
	if m.err != "" {
		b.WriteString("\n" + errStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m model) renderDays(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Submission days") + "\n\n")
	if len(m.days) == 0 {
		b.WriteString(subStyle.Render("No submissions in view.") + "\n")
	}

	cells := make([][]string, len(m.days))
	for i, d := range m.days {
		cells[i] = []string{d.day, fmt.Sprintf("%d", d.submissions), utils.FormatMoney(d.total)}
	}
	b.WriteString(renderTable([]string{"Day", "Submissions", "Total"}, cells, m.cursor))
	b.WriteString("\n" + helpStyle.Render("↑/↓ move • enter open • q quit") + "\n")
}

func (m model) renderModal(b *strings.Builder) {
	v := m.s.view

	if len(v.Tabs) > 0 {
		b.WriteString(tabStyle.Render(strings.Join(v.Tabs, " › ")) + "\n")
	}
	b.WriteString(titleStyle.Render(v.Title) + "\n")
	if v.Sub != "" {
		b.WriteString(subStyle.Render(v.Sub) + "\n")
	}
	if v.Count > 0 {
		b.WriteString(subStyle.Render(fmt.Sprintf("%d of %d", v.Position, v.Count)) + "\n")
	}
	b.WriteString("\n")

	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = c.Title
	}
	cells := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		cells[i] = r.Cells
	}
	cursor := -1
	if v.OnRowClick != nil {
		cursor = m.s.cursor
	}
	b.WriteString(renderTable(headers, cells, cursor))

	help := []string{"↑/↓ move"}
	if v.OnRowClick != nil {
		help = append(help, "enter open")
	}
	if v.CanPrev || v.CanNext {
		help = append(help, "←/→ prev/next")
	}
	help = append(help, "esc back", "q close")
	b.WriteString("\n" + helpStyle.Render(strings.Join(help, " • ")) + "\n")
}

// renderTable pads every column to its widest cell. cursor < 0 highlights
// nothing.
func renderTable(headers []string, rows [][]string, cursor int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			parts[i] = lipgloss.NewStyle().Width(widths[i]).Render(c)
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(headers)) + "\n")
	for i, row := range rows {
		l := line(row)
		if i == cursor {
			l = selectedStyle.Render(l)
		}
		b.WriteString(l + "\n")
	}
	return b.String()
}
