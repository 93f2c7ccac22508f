// Package tui is a terminal version of the dynamic filter page: the ten
// census predicates in a list, with the filtered count and the first rows
// updated on every key press.
package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lcap17/proyect-viernes/census"
	"github.com/lcap17/proyect-viernes/engine"
)

// PreviewRows is how many filtered rows are shown.
const PreviewRows = 5

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA")).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	paramStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	countStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")).MarginTop(1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).Padding(0, 1)
)

// Model is the bubbletea model of the filter panel.
type Model struct {
	keys  KeyMap
	help  help.Model
	input textinput.Model

	rng        *rand.Rand
	size       int
	dataset    census.Dataset
	predicates []census.Predicate
	params     census.FilterParameters
	view       census.View

	cursor  int
	editing bool
	width   int
}

// New builds a panel over a freshly generated dataset. A zero seed draws a
// random one.
func New(seed uint64) Model {
	input := textinput.New()
	input.Prompt = "nombre: "
	input.Placeholder = "texto a buscar"
	input.CharLimit = 64

	m := Model{
		keys:       DefaultKeyMap,
		help:       help.New(),
		input:      input,
		rng:        census.NewRand(seed),
		size:       census.DefaultSize,
		predicates: census.Predicates(),
		params:     census.DefaultParameters(),
	}
	m.dataset = census.Generate(m.rng, m.size)
	m.refresh()
	return m
}

// Params returns the current filter parameters.
func (m Model) Params() census.FilterParameters { return m.params }

// Count returns the number of people passing the enabled predicates.
func (m Model) Count() int { return m.view.Count() }

// Cursor returns the index of the focused predicate.
func (m Model) Cursor() int { return m.cursor }

// Editing reports whether the name query input has focus.
func (m Model) Editing() bool { return m.editing }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.handleInput(msg)
		}
		return m.handleKeypress(msg)
	}
	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(m.predicates) - 1) % len(m.predicates)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.predicates)
	case key.Matches(msg, m.keys.Toggle):
		name := m.predicates[m.cursor].Name
		setEnabled(&m.params, name, !m.predicates[m.cursor].Enabled(m.params))
	case key.Matches(msg, m.keys.Decrease):
		adjust(&m.params, m.predicates[m.cursor].Name, -1)
	case key.Matches(msg, m.keys.Increase):
		adjust(&m.params, m.predicates[m.cursor].Name, 1)
	case key.Matches(msg, m.keys.Search):
		m.editing = true
		m.input.SetValue(m.params.Name.Query)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Regenerate):
		m.dataset = census.Generate(m.rng, m.size)
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

// handleInput routes keys to the name query while it is being edited.
// Enter applies the query and enables the name predicate.
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.params.Name.Query = strings.TrimSpace(m.input.Value())
		m.params.Name.Enabled = true
		m.editing = false
		m.input.Blur()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	m.params = m.params.Normalize()
	m.view = census.Apply(m.dataset, m.params)
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📊 Aplicación de Filtros Dinámicos") + "\n")

	var list strings.Builder
	for i, pr := range m.predicates {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▸ ")
		}
		mark, style := "[ ]", disabledStyle
		if pr.Enabled(m.params) {
			mark, style = "[x]", enabledStyle
		}
		line := cursor + style.Render(mark+" "+pr.Label)
		if summary := describe(m.params, pr.Name); summary != "" {
			line += "  " + paramStyle.Render(summary)
		}
		list.WriteString(line + "\n")
	}
	b.WriteString(panelStyle.Render(strings.TrimRight(list.String(), "\n")) + "\n")

	if m.editing {
		b.WriteString(m.input.View() + "\n")
	}

	b.WriteString(countStyle.Render(fmt.Sprintf("Resultados: %d registros encontrados", m.view.Count())) + "\n")
	b.WriteString(preview(m.view) + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func preview(v census.View) string {
	td := engine.BuildRecordTable("", engine.Subset(v.RecordView(), rowsOf(min(v.Count(), PreviewRows))), nil)
	headers := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		headers[i] = c.Label
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(td.Rows...).
		String()
}

func rowsOf(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ---------------------------------------------------------------------------
// Parameter editing
// ---------------------------------------------------------------------------

func setEnabled(p *census.FilterParameters, name string, on bool) {
	switch name {
	case census.KeyAge:
		p.Age.Enabled = on
	case census.KeyMunicipality:
		p.Municipality.Enabled = on
	case census.KeyIncome:
		p.Income.Enabled = on
	case census.KeyOccupation:
		p.Occupation.Enabled = on
	case census.KeyNonOwned:
		p.NonOwned.Enabled = on
	case census.KeyName:
		p.Name.Enabled = on
	case census.KeyYear:
		p.BirthYear.Enabled = on
	case census.KeyInternet:
		p.Internet.Enabled = on
	case census.KeyNullIncome:
		p.NullIncome.Enabled = on
	case census.KeyDates:
		p.BirthDates.Enabled = on
	}
}

// adjust moves the main parameter of a predicate one step. Membership
// predicates cycle through single selections; predicates without
// parameters ignore it.
func adjust(p *census.FilterParameters, name string, delta int) {
	switch name {
	case census.KeyAge:
		p.Age.Min = max(census.MinAge, min(p.Age.Min+delta, p.Age.Max))
	case census.KeyMunicipality:
		p.Municipality.Selected = cycle(census.Municipalities(), p.Municipality.Selected, delta)
	case census.KeyIncome:
		p.Income.Threshold = max(census.MinIncome, min(p.Income.Threshold+delta*census.IncomeStep, census.MaxIncome))
	case census.KeyOccupation:
		p.Occupation.Selected = cycle(census.Occupations, p.Occupation.Selected, delta)
	case census.KeyYear:
		p.BirthYear.Year = max(census.FirstYear, min(p.BirthYear.Year+delta, census.LastYear))
	case census.KeyInternet:
		p.Internet.HasAccess = !p.Internet.HasAccess
	case census.KeyDates:
		start := census.Date{Time: p.BirthDates.Start.AddDate(delta, 0, 0)}
		if !start.After(p.BirthDates.End.Time) && !start.Before(census.FirstBirthDate) {
			p.BirthDates.Start = start
		}
	}
}

// cycle selects the option after (or before) the first selected one.
func cycle(options, selected []string, delta int) []string {
	i := -1
	if len(selected) > 0 {
		i = slices.Index(options, selected[0])
	}
	if i < 0 && delta < 0 {
		i = 0
	}
	n := len(options)
	return []string{options[((i+delta)%n+n)%n]}
}

func describe(p census.FilterParameters, name string) string {
	switch name {
	case census.KeyAge:
		return fmt.Sprintf("%d–%d años", p.Age.Min, p.Age.Max)
	case census.KeyMunicipality:
		return strings.Join(p.Municipality.Selected, ", ")
	case census.KeyIncome:
		return "> " + engine.FormatInt(p.Income.Threshold) + " COP"
	case census.KeyOccupation:
		return strings.Join(p.Occupation.Selected, ", ")
	case census.KeyName:
		if p.Name.Query == "" {
			return ""
		}
		return fmt.Sprintf("%q", p.Name.Query)
	case census.KeyYear:
		return fmt.Sprint(p.BirthYear.Year)
	case census.KeyInternet:
		if p.Internet.HasAccess {
			return "si"
		}
		return "no"
	case census.KeyDates:
		return p.BirthDates.Start.String() + " → " + p.BirthDates.End.String()
	}
	return ""
}

// Run starts the panel on the terminal until the user quits or ctx is done.
func Run(ctx context.Context, seed uint64) error {
	_, err := tea.NewProgram(New(seed), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
