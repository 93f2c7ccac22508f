// Package pages holds the five dashboard pages. Each page is a pure
// function of its environment and the control values of one request: it
// builds or loads its tables, filters them and returns a Document.
package pages

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/loader"
)

// Controls are the control values of one request, keyed by control name.
type Controls = url.Values

// Env is what a page may depend on besides its controls.
type Env struct {
	Loader *loader.Loader
	// Database is the embedded SQLite file.
	Database string
	// RemoteURL is the remote CSV of the data sources page.
	RemoteURL string
	// Seed fixes the simulated census; zero draws a new one per render.
	Seed    uint64
	Logger  *slog.Logger
	Metrics *Metrics
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

func (e Env) loader() *loader.Loader {
	if e.Loader == nil {
		return &loader.Loader{}
	}
	return e.Loader
}

// Page is one dashboard.
type Page struct {
	Slug   string
	Title  string
	render func(ctx context.Context, env Env, c Controls) (*Document, error)
}

// NewPage builds a page from its render function.
func NewPage(slug, title string, render func(ctx context.Context, env Env, c Controls) (*Document, error)) Page {
	return Page{Slug: slug, Title: title, render: render}
}

// Registry lists the pages in menu order.
func Registry() []Page {
	return []Page{
		{Slug: "fuentes", Title: "Fuentes de datos", render: renderSources},
		{Slug: "estudiantes", Title: "Estudiantes", render: renderStudents},
		{Slug: "filtros", Title: "Filtros dinámicos", render: renderFilters},
		{Slug: "peliculas", Title: "Películas", render: renderMovies},
		{Slug: "trata", Title: "Trata de personas", render: renderTrafficking},
	}
}

// Lookup finds a page by slug.
func Lookup(slug string) (Page, bool) {
	for _, p := range Registry() {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Render evaluates the page from scratch. A failing page returns its error;
// load failures inside a page are warnings in the Document instead.
func (p Page) Render(ctx context.Context, env Env, c Controls) (*Document, error) {
	if c == nil {
		c = Controls{}
	}
	id := uuid.NewString()
	logger := env.logger().With(slog.String("page", p.Slug), slog.String("render_id", id))
	env.Logger = logger

	start := time.Now()
	doc, err := p.render(ctx, env, c)
	env.Metrics.observe(p.Slug, err)
	if err != nil {
		logger.Error("page render failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("render %s: %w", p.Slug, err)
	}

	doc.ID = id
	doc.Slug = p.Slug
	if doc.Title == "" {
		doc.Title = p.Title
	}
	logger.Debug("page rendered",
		slog.Int("sections", len(doc.Sections)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return doc, nil
}

// ============================================================================
// METRICS
// ============================================================================

// Metrics counts page renders. A nil *Metrics records nothing.
type Metrics struct {
	renders *prometheus.CounterVec
}

// NewMetrics registers the page collectors with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablero_page_renders_total",
			Help: "Page renders by page and outcome.",
		}, []string{"page", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.renders)
	}
	return m
}

func (m *Metrics) observe(page string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.renders.WithLabelValues(page, outcome).Inc()
}

// Renders returns the counter for page and outcome.
func (m *Metrics) Renders(page, outcome string) prometheus.Counter {
	return m.renders.WithLabelValues(page, outcome)
}

// ============================================================================
// CONTROL VALUES
// ============================================================================

// checkbox reports whether a checkbox control is on.
func checkbox(c Controls, key string) bool {
	switch strings.ToLower(c.Get(key)) {
	case "on", "1", "true", "si", "sí":
		return true
	}
	return false
}

// multiValues reads a multiselect. An absent key yields def; a key present
// with only empty values is an explicit empty selection.
func multiValues(c Controls, key string, def []string) []string {
	raw, ok := c[key]
	if !ok {
		return def
	}
	out := []string{}
	for _, v := range raw {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// only keeps the values present in options, in the order given.
func only(values, options []string) []string {
	allowed := make(map[string]bool, len(options))
	for _, o := range options {
		allowed[o] = true
	}
	out := []string{}
	for _, v := range values {
		if allowed[v] {
			out = append(out, v)
		}
	}
	return out
}

// floatValue reads a slider value, clamped to [lo, hi] and snapped to step.
func floatValue(c Controls, key string, def, lo, hi, step float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Get(key)), 64)
	if err != nil || math.IsNaN(v) {
		v = def
	}
	v = math.Max(lo, math.Min(v, hi))
	if step > 0 {
		v = lo + math.Round((v-lo)/step)*step
		v = math.Round(v*1e6) / 1e6
	}
	return v
}

// intValue reads a numeric control clamped to [lo, hi].
func intValue(c Controls, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Get(key)))
	if err != nil {
		v = def
	}
	return max(lo, min(v, hi))
}

// decimal formats a float the way the dashboards print slider values:
// always with a fractional part ("4.0", "8.25").
func decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tableOf renders every row and column of t.
func tableOf(title string, t loader.Table) *engine.TableData {
	return engine.BuildRecordTable(title, t.View(), t.Columns())
}
