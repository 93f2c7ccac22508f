package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/pages"
)

// ---------------------------------------------------------------------------
// Terminal text
// ---------------------------------------------------------------------------

var (
	primaryColor = lipgloss.Color("#A78BFA")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#F87171")
	infoColor    = lipgloss.Color("#60A5FA")
	mutedColor   = lipgloss.Color("#9CA3AF")
	borderColor  = lipgloss.Color("#6B7280")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	subheaderStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	linkStyle      = lipgloss.NewStyle().Foreground(infoColor).Underline(true)
	codeStyle      = lipgloss.NewStyle().Foreground(mutedColor).PaddingLeft(2)
	barStyle       = lipgloss.NewStyle().Foreground(primaryColor)

	calloutStyles = map[pages.SectionKind]lipgloss.Style{
		pages.SectionWarning: lipgloss.NewStyle().Foreground(warningColor),
		pages.SectionError:   lipgloss.NewStyle().Foreground(errorColor),
		pages.SectionInfo:    lipgloss.NewStyle().Foreground(infoColor),
		pages.SectionSuccess: lipgloss.NewStyle().Foreground(successColor),
	}
	calloutIcons = map[pages.SectionKind]string{
		pages.SectionWarning: "⚠",
		pages.SectionError:   "✗",
		pages.SectionInfo:    "ℹ",
		pages.SectionSuccess: "✓",
	}

	metricStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 2).
			MarginRight(1)
)

// barCells is the width of the longest bar of a text chart.
const barCells = 40

// Text renders doc for a terminal.
func Text(w io.Writer, doc *pages.Document) error {
	if doc == nil {
		return fmt.Errorf("render text: nil document")
	}
	var b strings.Builder
	group := ""
	for _, s := range doc.Sections {
		if s.Group != group {
			group = s.Group
			if group != "" {
				b.WriteString(subheaderStyle.Render("▸ "+group) + "\n")
			}
		}
		block := textSection(s)
		if block == "" {
			continue
		}
		if group != "" {
			block = indent(block, "  ")
		}
		b.WriteString(block)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func textSection(s pages.Section) string {
	switch s.Kind {
	case pages.SectionTitle:
		return titleStyle.Render(s.Text) + "\n"
	case pages.SectionHeader:
		return headerStyle.Render(s.Text) + "\n"
	case pages.SectionSubheader:
		return subheaderStyle.Render(s.Text) + "\n"
	case pages.SectionMarkdown, pages.SectionText:
		return s.Text + "\n"
	case pages.SectionLink:
		return s.Text + ": " + linkStyle.Render(s.URL) + "\n"
	case pages.SectionCode:
		return codeStyle.Render(s.Text) + "\n"
	case pages.SectionWarning, pages.SectionError, pages.SectionInfo, pages.SectionSuccess:
		return calloutStyles[s.Kind].Render(calloutIcons[s.Kind]+" "+s.Text) + "\n"
	case pages.SectionTable:
		return textTable(s.Table)
	case pages.SectionMetrics:
		return textMetrics(s.Metrics)
	case pages.SectionChart:
		return textChart(s.Chart)
	case pages.SectionRecord:
		return textRecord(s.Text, s.Record)
	case pages.SectionControl:
		return textControl(s.Control)
	}
	return ""
}

func textTable(td *engine.TableData) string {
	if td == nil {
		return ""
	}
	headers := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		headers[i] = c.Label
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		Rows(td.Rows...)

	var b strings.Builder
	if td.Title != "" {
		b.WriteString(subheaderStyle.Render(td.Title) + "\n")
	}
	b.WriteString(t.String() + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d filas", len(td.Rows))) + "\n")
	return b.String()
}

func textMetrics(metrics []engine.Metric) string {
	tiles := make([]string, len(metrics))
	for i, m := range metrics {
		tile := mutedStyle.Render(m.Label) + "\n" + titleStyle.Render(m.Value)
		if m.Period != "" {
			tile += "\n" + mutedStyle.Render(m.Period)
		}
		tiles[i] = metricStyle.Render(tile)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...) + "\n"
}

// textChart draws every series as horizontal bars scaled to the largest
// value.
func textChart(cfg *engine.ChartConfig) string {
	if cfg == nil || len(cfg.Series) == 0 {
		return ""
	}
	var b strings.Builder
	if cfg.Title != "" {
		b.WriteString(subheaderStyle.Render(cfg.Title) + "\n")
	}

	peak, width := 0.0, 0
	for _, s := range cfg.Series {
		for _, p := range s.Data {
			peak = math.Max(peak, p.Value)
			width = max(width, lipgloss.Width(p.Label))
		}
	}
	for _, s := range cfg.Series {
		if len(cfg.Series) > 1 {
			b.WriteString(mutedStyle.Render(s.Name) + "\n")
		}
		for _, p := range s.Data {
			cells := 0
			if peak > 0 && p.Value > 0 {
				cells = max(1, int(math.Round(p.Value/peak*barCells)))
			}
			label := p.Label + strings.Repeat(" ", width-lipgloss.Width(p.Label))
			fmt.Fprintf(&b, "%s │%s %s\n", label, barStyle.Render(strings.Repeat("█", cells)), engine.FormatValue(p.Value))
		}
	}
	return b.String()
}

func textRecord(title string, fields []pages.Field) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.Name))
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-lipgloss.Width(f.Name))
		fmt.Fprintf(&b, "  %s%s  %s\n", mutedStyle.Render(f.Name), pad, f.Value)
	}
	return b.String()
}

func textControl(c *pages.Control) string {
	if c == nil {
		return ""
	}
	var value string
	switch c.Type {
	case pages.ControlCheckbox:
		mark := "[ ]"
		if c.Checked {
			mark = "[x]"
		}
		return fmt.Sprintf("%s %s\n", mark, c.Label)
	case pages.ControlButton:
		return fmt.Sprintf("[ %s ]\n", c.Label)
	case pages.ControlRange:
		value = strings.Join(c.Values, " – ")
	case pages.ControlMultiSelect:
		value = strings.Join(c.Values, ", ")
		if len(c.Values) == 0 {
			value = mutedStyle.Render("(ninguno)")
		}
	default:
		value = c.Value
	}
	return fmt.Sprintf("%s %s %s\n", mutedStyle.Render("◆"), c.Label, value)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
