// Package diagram compiles a validated harness model into an abstract graph:
// nodes with nested-table labels, ports, and colored multi-stripe edges. The
// graph serializes to Graphviz DOT and is rendered by pkg/render.
//
// Labels are built as an explicit table AST and converted to Graphviz
// HTML-like markup only at the DOT boundary, so layout logic stays testable
// independent of markup syntax.
package diagram

import (
	"fmt"
	"strings"
)

// Table is an HTML-like label table. Attribute zero values are emitted
// as-is ("0" is meaningful to Graphviz), so construct tables through the
// helpers below or set every field.
type Table struct {
	Border      int
	CellSpacing int
	CellPadding int
	CellBorder  int
	Rows        []Row
}

// Row is one table row.
type Row []Cell

// Cell is a single table cell. Text is raw markup and is inserted verbatim;
// when Nested is set it takes precedence over Text.
type Cell struct {
	Text    string
	Port    string
	Colspan int
	Sides   string // visible cell borders, e.g. "tbl"
	BGColor string // single color or Graphviz gradient "a:b"
	Width   int
	Height  int
	Fixed   bool // fixedsize="true", for color swatches
	NoPad   bool // cellpadding="0" on this cell
	BorderW int  // explicit border width; 0 = inherit from table
	Nested  *Table
}

// sectionTable wraps rows in the outer label table used for every node:
// zero spacing, zero padding, no border.
func sectionTable(rows ...Row) *Table {
	return &Table{Border: 0, CellSpacing: 0, CellPadding: 0, CellBorder: 0, Rows: rows}
}

// headerRow builds a single-row bordered sub-table from the non-empty cells
// and wraps it into an outer-table row. Returns nil when every cell is empty.
func headerRow(cells ...Cell) Row {
	var kept []Cell
	for _, c := range cells {
		if c.Text == "" && c.Nested == nil && c.BGColor == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil
	}
	inner := &Table{Border: 0, CellSpacing: 0, CellPadding: 3, CellBorder: 1, Rows: []Row{kept}}
	return Row{Cell{Nested: inner}}
}

// HTML renders the table to Graphviz HTML-like markup.
func (t *Table) HTML() string {
	var b strings.Builder
	t.write(&b, 0)
	return b.String()
}

func (t *Table) write(b *strings.Builder, depth int) {
	ind := strings.Repeat(" ", depth)
	fmt.Fprintf(b, "%s<table border=\"%d\" cellspacing=\"%d\" cellpadding=\"%d\" cellborder=\"%d\">\n",
		ind, t.Border, t.CellSpacing, t.CellPadding, t.CellBorder)
	for _, row := range t.Rows {
		if row == nil {
			continue
		}
		fmt.Fprintf(b, "%s <tr>\n", ind)
		for _, c := range row {
			c.write(b, depth+2)
		}
		fmt.Fprintf(b, "%s </tr>\n", ind)
	}
	fmt.Fprintf(b, "%s</table>", ind)
	if depth > 0 {
		b.WriteString("\n")
	}
}

func (c Cell) write(b *strings.Builder, depth int) {
	ind := strings.Repeat(" ", depth)
	b.WriteString(ind)
	b.WriteString("<td")
	if c.Port != "" {
		fmt.Fprintf(b, " port=%q", c.Port)
	}
	if c.Colspan > 0 {
		fmt.Fprintf(b, " colspan=\"%d\"", c.Colspan)
	}
	if c.Sides != "" {
		fmt.Fprintf(b, " sides=%q", c.Sides)
	}
	if c.BGColor != "" {
		fmt.Fprintf(b, " bgcolor=%q", c.BGColor)
	}
	if c.Width > 0 {
		fmt.Fprintf(b, " width=\"%d\"", c.Width)
	}
	if c.Height > 0 {
		fmt.Fprintf(b, " height=\"%d\"", c.Height)
	}
	if c.Fixed {
		b.WriteString(` fixedsize="true"`)
	}
	if c.NoPad {
		b.WriteString(` cellpadding="0"`)
	}
	if c.BorderW > 0 {
		fmt.Fprintf(b, " border=\"%d\"", c.BorderW)
	}
	b.WriteString(">")
	if c.Nested != nil {
		b.WriteString("\n")
		c.Nested.write(b, depth+1)
		b.WriteString(ind)
	} else {
		b.WriteString(c.Text)
	}
	b.WriteString("</td>\n")
}

// Escape makes user text safe for HTML-like labels. Cell.Text is raw markup,
// so anything originating from the model goes through Escape first.
func Escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// LineBreaks converts newlines in user text to HTML line breaks after
// escaping.
func LineBreaks(s string) string {
	return strings.ReplaceAll(Escape(s), "\n", "<br/>")
}
