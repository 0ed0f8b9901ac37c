// Package grid models a statement spreadsheet as rows of tagged cells and
// reads CSV, XLSX and XLS files into that model.
package grid

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	Empty CellKind = iota
	Text
	Number
)

func (k CellKind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "empty"
	}
}

// Cell is one spreadsheet value. Text always holds the raw value as read,
// so leading zeros in account numbers survive numeric classification.
type Cell struct {
	Kind   CellKind        `yaml:"kind" json:"kind"`
	Text   string          `yaml:"text,omitempty" json:"text,omitempty"`
	Number decimal.Decimal `yaml:"number,omitempty" json:"number,omitempty"`
}

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][-+]?\d+)?$`)

// Classify builds a Cell from a raw string: blank is Empty, a strictly
// numeric string is Number, anything else is Text.
func Classify(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: Empty, Text: raw}
	}
	if numericPattern.MatchString(trimmed) {
		if d, err := decimal.NewFromString(trimmed); err == nil {
			return Cell{Kind: Number, Text: raw, Number: d}
		}
	}
	return Cell{Kind: Text, Text: raw}
}

// TextCell builds a Text cell, or an Empty cell for a blank string.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: Empty, Text: s}
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell builds a Number cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: Number, Text: d.String(), Number: d}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	if c.Kind == Number {
		return false
	}
	return strings.TrimSpace(c.Text) == ""
}

// String returns the trimmed raw text of the cell.
func (c Cell) String() string {
	return strings.TrimSpace(c.Text)
}

// Row is an ordered sequence of cells. Rows may be ragged.
type Row []Cell

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Cell returns the cell at index i, or an Empty cell when i is out of range.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Texts returns the trimmed text of every cell.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Joined returns the lower-cased text of all non-empty cells joined by a
// single space.
func (r Row) Joined() string {
	parts := make([]string, 0, len(r))
	for _, c := range r {
		if s := c.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Grid is the raw statement input: ordered rows of cells.
type Grid []Row

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, r := range g {
		out[i] = r.Clone()
	}
	return out
}

// FromStrings classifies every value of a string matrix.
func FromStrings(rows [][]string) Grid {
	g := make(Grid, len(rows))
	for i, raw := range rows {
		row := make(Row, len(raw))
		for j, v := range raw {
			row[j] = Classify(v)
		}
		g[i] = row
	}
	return g
}

// Strings returns the trimmed text of every cell, row by row.
func (g Grid) Strings() [][]string {
	out := make([][]string, len(g))
	for i, r := range g {
		out[i] = r.Texts()
	}
	return out
}
