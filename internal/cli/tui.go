package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/trackdash/pkg/chart"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GenrePickerModel - Interactive genre selection
// =============================================================================

// GenreChoice is one row of the picker.
type GenreChoice struct {
	Name   string
	Tracks int
}

// GenrePickerModel is the bubbletea model for choosing the genres of the
// energy density charts.
type GenrePickerModel struct {
	Choices  []GenreChoice
	Cursor   int
	Picked   map[string]bool
	Done     bool
	Canceled bool
}

// NewGenrePickerModel creates a picker with the given genres preselected.
func NewGenrePickerModel(choices []GenreChoice, preselected []string) GenrePickerModel {
	picked := make(map[string]bool, len(preselected))
	for _, g := range preselected {
		picked[g] = true
	}
	return GenrePickerModel{Choices: choices, Picked: picked}
}

func (m GenrePickerModel) Init() tea.Cmd {
	return nil
}

func (m GenrePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Choices)-1 {
			m.Cursor++
		}
	case " ", "space", "x":
		if len(m.Choices) > 0 {
			name := m.Choices[m.Cursor].Name
			m.Picked[name] = !m.Picked[name]
		}
	case "a":
		all := len(m.Selection()) < len(m.Choices)
		for _, c := range m.Choices {
			m.Picked[c.Name] = all
		}
	case "enter":
		if len(m.Selection()) == 0 {
			return m, nil
		}
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

// Selection returns the picked genres in list order.
func (m GenrePickerModel) Selection() []string {
	var out []string
	for _, c := range m.Choices {
		if m.Picked[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

func (m GenrePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Genres"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Choices))
	for i, c := range m.Choices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Picked[c.Name] {
			box = "[x]"
		}
		rows[i] = []string{cursor, box, chart.GenreLabel(c.Name), chart.FormatCount(c.Tracks)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Genre", "Tracks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.Choices) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorGray)
			}
			switch {
			case row == m.Cursor:
				return base.Foreground(colorCyan).Bold(true)
			case m.Picked[m.Choices[row].Name]:
				return base.Foreground(colorGreen)
			default:
				return base
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", len(m.Selection()), len(m.Choices))))

	return b.String()
}
