package pages

import (
	"github.com/lcap17/proyect-viernes/engine"
)

// ============================================================================
// DOCUMENT — the rendered form of a page
// ============================================================================
// A page renders to an ordered list of sections. Renderers (HTML, terminal
// text, JSON) only walk the list; they never compute anything.
// ============================================================================

// SectionKind identifies how a section is displayed.
type SectionKind string

const (
	SectionTitle     SectionKind = "title"
	SectionHeader    SectionKind = "header"
	SectionSubheader SectionKind = "subheader"
	SectionMarkdown  SectionKind = "markdown"
	SectionText      SectionKind = "text"
	SectionLink      SectionKind = "link"
	SectionTable     SectionKind = "table"
	SectionMetrics   SectionKind = "metrics"
	SectionChart     SectionKind = "chart"
	SectionWarning   SectionKind = "warning"
	SectionError     SectionKind = "error"
	SectionInfo      SectionKind = "info"
	SectionSuccess   SectionKind = "success"
	SectionCode      SectionKind = "code"
	SectionRecord    SectionKind = "record"
	SectionControl   SectionKind = "control"
)

// Section is one block of a Document. Only the fields of its Kind are set.
type Section struct {
	Kind SectionKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	// URL is the target of a link section.
	URL     string              `json:"url,omitempty"`
	Table   *engine.TableData   `json:"table,omitempty"`
	Metrics []engine.Metric     `json:"metrics,omitempty"`
	Chart   *engine.ChartConfig `json:"chart,omitempty"`
	Record  []Field             `json:"record,omitempty"`
	Control *Control            `json:"control,omitempty"`
	// Group names the collapsible block (expander) the section belongs to.
	Group string `json:"group,omitempty"`
}

// Field is one labelled value of a record section.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ControlType is the widget a control is drawn with.
type ControlType string

const (
	ControlCheckbox    ControlType = "checkbox"
	ControlSlider      ControlType = "slider"
	ControlRange       ControlType = "range"
	ControlNumber      ControlType = "number"
	ControlSelect      ControlType = "select"
	ControlMultiSelect ControlType = "multiselect"
	ControlRadio       ControlType = "radio"
	ControlText        ControlType = "text"
	ControlDate        ControlType = "date"
	ControlButton      ControlType = "button"
)

// Control describes an input widget. Name is the query string key its
// value is submitted under; a range control submits MinName and MaxName.
type Control struct {
	Type    ControlType `json:"type"`
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Value   string      `json:"value,omitempty"`
	Values  []string    `json:"values,omitempty"`
	Options []string    `json:"options,omitempty"`
	Checked bool        `json:"checked,omitempty"`
	Min     float64     `json:"min,omitempty"`
	Max     float64     `json:"max,omitempty"`
	Step    float64     `json:"step,omitempty"`
	MinName string      `json:"minName,omitempty"`
	MaxName string      `json:"maxName,omitempty"`
	// Panel groups controls drawn together, e.g. a sidebar.
	Panel string `json:"panel,omitempty"`
}

// Document is a rendered page.
type Document struct {
	ID       string    `json:"id"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`

	group string
}

func (d *Document) add(s Section) *Document {
	if s.Group == "" {
		s.Group = d.group
	}
	d.Sections = append(d.Sections, s)
	return d
}

// Expander places the sections added by fn in a collapsible group.
func (d *Document) Expander(label string, fn func()) {
	prev := d.group
	d.group = label
	fn()
	d.group = prev
}

func (d *Document) Title1(text string) *Document {
	return d.add(Section{Kind: SectionTitle, Text: text})
}

func (d *Document) Header(text string) *Document {
	return d.add(Section{Kind: SectionHeader, Text: text})
}

func (d *Document) Subheader(text string) *Document {
	return d.add(Section{Kind: SectionSubheader, Text: text})
}

func (d *Document) Markdown(text string) *Document {
	return d.add(Section{Kind: SectionMarkdown, Text: text})
}

func (d *Document) Text(text string) *Document {
	return d.add(Section{Kind: SectionText, Text: text})
}

func (d *Document) Link(text, url string) *Document {
	return d.add(Section{Kind: SectionLink, Text: text, URL: url})
}

func (d *Document) Table(t *engine.TableData) *Document {
	return d.add(Section{Kind: SectionTable, Table: t})
}

func (d *Document) Metrics(m []engine.Metric) *Document {
	return d.add(Section{Kind: SectionMetrics, Metrics: m})
}

func (d *Document) Chart(c *engine.ChartConfig) *Document {
	return d.add(Section{Kind: SectionChart, Chart: c})
}

func (d *Document) Warning(text string) *Document {
	return d.add(Section{Kind: SectionWarning, Text: text})
}

func (d *Document) Error(text string) *Document {
	return d.add(Section{Kind: SectionError, Text: text})
}

func (d *Document) Info(text string) *Document {
	return d.add(Section{Kind: SectionInfo, Text: text})
}

func (d *Document) Success(text string) *Document {
	return d.add(Section{Kind: SectionSuccess, Text: text})
}

func (d *Document) Code(text string) *Document {
	return d.add(Section{Kind: SectionCode, Text: text})
}

func (d *Document) Record(title string, fields []Field) *Document {
	return d.add(Section{Kind: SectionRecord, Text: title, Record: fields})
}

func (d *Document) Control(c Control) *Document {
	return d.add(Section{Kind: SectionControl, Control: &c})
}

// Find returns the sections of kind, in order.
func (d *Document) Find(kind SectionKind) []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
