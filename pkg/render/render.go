// Package render draws tables and views as styled text tables.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
	"livedb/pkg/view"
)

// NullText is how Null cells are shown.
const NullText = "NULL"

// DefaultLimit caps the rows rendered when no limit is given.
const DefaultLimit = 50

type options struct {
	palette Palette
	limit   int
}

// Option configures rendering.
type Option func(*options)

// WithPalette selects the colour scheme.
func WithPalette(p Palette) Option {
	return func(o *options) { o.palette = p }
}

// WithLimit caps the number of rows drawn. Zero or less draws every row.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

func buildOptions(opts []Option) options {
	o := options{palette: DarkPalette, limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Rows converts rows to string cells, Null as NullText.
func Rows(rows []types.Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if v.IsNull() {
				cells[j] = NullText
			} else {
				cells[j] = v.String()
			}
		}
		out[i] = cells
	}
	return out
}

// Table renders up to the configured limit of t's rows, read at one version.
func Table(t *table.Table, opts ...Option) (string, error) {
	o := buildOptions(opts)

	sch := t.Schema()
	var (
		rows  []types.Row
		total int
	)
	err := t.Snapshot(func(r table.Reader) error {
		total = r.Len()
		n := shown(total, o.limit)
		rows = make([]types.Row, n)
		for i := range rows {
			rows[i] = r.Row(i)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return draw(t.Name(), "table", sch, rows, total, o), nil
}

// View renders up to limit rows of v. A limit of zero or less draws every row.
func View(v view.View, limit int, opts ...Option) (string, error) {
	o := buildOptions(append(opts, WithLimit(limit)))

	total, err := v.Len()
	if err != nil {
		return "", err
	}
	rows := make([]types.Row, 0, shown(total, o.limit))
	for i := 0; i < cap(rows); i++ {
		row, err := v.Row(i)
		if err != nil {
			return "", err
		}
		rows = append(rows, row)
	}

	badge := fmt.Sprintf("%s view, %s", v.Kind(), v.State())
	return draw(v.Name(), badge, v.Schema(), rows, total, o), nil
}

func shown(total, limit int) int {
	if limit > 0 && limit < total {
		return limit
	}
	return total
}

func draw(name, badge string, sch *schema.Schema, rows []types.Row, total int, o options) string {
	st := newStyles(o.palette)
	cells := Rows(rows)

	headers := make([]string, sch.Len())
	for i, c := range sch.Columns() {
		headers[i] = c.Name
	}

	tbl := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return st.header
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col].IsNull() {
				return st.null
			}
			return st.cell
		})

	var b strings.Builder
	b.WriteString(st.title.Render(name))
	b.WriteString(st.badge.Render("[" + badge + "]"))
	b.WriteByte('\n')
	b.WriteString(tbl.String())
	b.WriteByte('\n')

	footer := fmt.Sprintf("%d row(s)", total)
	if len(rows) < total {
		footer += fmt.Sprintf(", showing first %d", len(rows))
	}
	b.WriteString(st.footer.Render(footer))
	return b.String()
}
