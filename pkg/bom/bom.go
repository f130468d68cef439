// Package bom aggregates the parts of a harness into a bill of materials.
//
// Rows are grouped by a composite key (description, unit, and part
// identity), quantities summed, and ordered by first occurrence: connectors
// in declaration order, then cables and bundle wires, then ad-hoc items.
// The result is memoized on the harness and recomputed only after a
// mutating call.
package bom

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tracewire/tracewire/pkg/colors"
	"github.com/tracewire/tracewire/pkg/harness"
)

// Build aggregates the harness into an ordered list of BOM rows.
func Build(h *harness.Harness) []harness.BOMRow {
	if rows, ok := h.BOMCache(); ok {
		return rows
	}

	agg := aggregator{index: make(map[key]int)}

	for _, c := range h.Connectors() {
		agg.add(harness.BOMRow{
			Description:  describeConnector(c),
			Qty:          1,
			PN:           c.PN,
			Manufacturer: c.Manufacturer,
			MPN:          c.MPN,
		}, c.Name)
	}

	for _, c := range h.Cables() {
		qty, unit := cableQty(c)
		if c.Category == harness.CategoryBundle {
			// Loose wires carry individual part identities.
			for i := 1; i <= c.WireCount(); i++ {
				agg.add(harness.BOMRow{
					Description:  describeWire(c, i),
					Qty:          qty,
					Unit:         unit,
					PN:           firstNonEmpty(c.WirePN(i), c.PN),
					Manufacturer: firstNonEmpty(c.WireManufacturer(i), c.Manufacturer),
					MPN:          firstNonEmpty(c.WireMPN(i), c.MPN),
				}, c.Name)
			}
			continue
		}
		agg.add(harness.BOMRow{
			Description:  describeCable(c),
			Qty:          qty,
			Unit:         unit,
			PN:           c.PN,
			Manufacturer: c.Manufacturer,
			MPN:          c.MPN,
		}, c.Name)
	}

	for _, item := range h.AdditionalBOMItems {
		agg.add(item, item.Designators...)
	}

	rows := agg.rows
	h.SetBOMCache(rows)
	return rows
}

// key identifies interchangeable parts across components.
type key struct {
	description  string
	unit         string
	pn           string
	manufacturer string
	mpn          string
}

type aggregator struct {
	rows  []harness.BOMRow
	index map[key]int
}

// add merges the row into an existing one with the same part key, summing
// quantities and accumulating designators, or appends it.
func (a *aggregator) add(row harness.BOMRow, designators ...string) {
	k := key{row.Description, row.Unit, row.PN, row.Manufacturer, row.MPN}
	if i, ok := a.index[k]; ok {
		a.rows[i].Qty += row.Qty
		a.rows[i].Designators = appendUnique(a.rows[i].Designators, designators...)
		return
	}
	row.Designators = appendUnique(nil, designators...)
	a.index[k] = len(a.rows)
	a.rows = append(a.rows, row)
}

func appendUnique(list []string, vals ...string) []string {
	for _, v := range vals {
		if v == "" {
			continue
		}
		seen := false
		for _, s := range list {
			if s == v {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, v)
		}
	}
	return list
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// cableQty returns the BOM quantity for a cable: its length in metres when
// declared, otherwise one piece.
func cableQty(c *harness.Cable) (float64, string) {
	if c.Length > 0 {
		return c.Length, "m"
	}
	return 1, ""
}

func describeConnector(c *harness.Connector) string {
	parts := []string{"Connector"}
	parts = appendNonEmpty(parts, c.Type, c.Subtype)
	if n := c.PinCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pins", n))
	}
	parts = appendNonEmpty(parts, fullColor(c.Color))
	return strings.Join(parts, ", ")
}

func describeCable(c *harness.Cable) string {
	parts := []string{"Cable"}
	parts = appendNonEmpty(parts, c.Type)
	if c.Gauge != "" {
		parts = append(parts, fmt.Sprintf("%d x %s %s", c.WireCount(), c.Gauge, c.GaugeUnit))
	} else {
		parts = append(parts, fmt.Sprintf("%d wires", c.WireCount()))
	}
	if c.Shield.Present {
		parts = append(parts, "shielded")
	}
	return strings.Join(parts, ", ")
}

func describeWire(c *harness.Cable, i int) string {
	parts := []string{"Wire"}
	parts = appendNonEmpty(parts, c.Type)
	if c.Gauge != "" {
		parts = append(parts, c.Gauge+" "+c.GaugeUnit)
	}
	parts = appendNonEmpty(parts, fullColor(c.Colors[i-1]))
	return strings.Join(parts, ", ")
}

func appendNonEmpty(list []string, vals ...string) []string {
	for _, v := range vals {
		if v != "" {
			list = append(list, v)
		}
	}
	return list
}

// fullColor renders a color token as its full name for descriptions,
// falling back to the raw token for anything outside the palette (tokens
// are validated at compile time, not here).
func fullColor(token string) string {
	s, err := colors.Translate(token, colors.ModeFull)
	if err != nil {
		return token
	}
	return s
}

// TSV serializes BOM rows to tab-separated text with a header line,
// numbering rows from 1. Designators are sorted for stable output.
func TSV(rows []harness.BOMRow) []byte {
	var b strings.Builder
	b.WriteString("#\tDescription\tQty\tUnit\tDesignators\tP/N\tManufacturer\tMPN\n")
	for i, r := range rows {
		designators := slices.Clone(r.Designators)
		slices.Sort(designators)
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Description,
			strconv.FormatFloat(r.Qty, 'f', -1, 64),
			r.Unit,
			strings.Join(designators, ", "),
			r.PN,
			r.Manufacturer,
			r.MPN,
		)
	}
	return []byte(b.String())
}
