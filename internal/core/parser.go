package core

import (
	"fmt"
	"strings"
)

// DefaultMaxPoints is the default soft cap on accepted rows per import.
const DefaultMaxPoints = 10000

// RowDiagnostic describes a data line that was skipped.
type RowDiagnostic struct {
	Line     int    `json:"line"` // 1-indexed among non-empty lines, header is 1
	Expected int    `json:"expected"`
	Got      int    `json:"got"`
	Reason   string `json:"reason"`
}

// ParseResult holds the accepted points plus everything that was dropped.
type ParseResult struct {
	Headers []string
	Points  []Point
	// Skipped lists rows dropped for a column-count mismatch.
	Skipped []RowDiagnostic
	// Warnings are non-fatal, human-readable findings.
	Warnings []string
	// Truncated is set when MaxPoints was reached; Discarded counts the
	// data lines that were never read.
	Truncated bool
	Discarded int
}

// Parser converts CSV text into point records for one kind.
type Parser struct {
	MaxPoints int
}

// NewParser creates a parser that accepts at most maxPoints rows.
// A non-positive maxPoints falls back to DefaultMaxPoints.
func NewParser(maxPoints int) *Parser {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Parser{MaxPoints: maxPoints}
}

// Parse splits content into lines, validates the header row for kind and
// builds one Point per accepted row.
//
// Fatal: *EmptyInputError, *SchemaError, *QuantileStructureError,
// *UnsupportedKindError. Rows with the wrong column count are skipped and
// the point cap truncates silently apart from a single warning.
func (p *Parser) Parse(content string, kind Kind) (*ParseResult, error) {
	if !kind.Valid() {
		return nil, &UnsupportedKindError{Kind: kind}
	}

	lines := splitLines(content)
	if len(lines) == 0 {
		return nil, &EmptyInputError{}
	}

	headers := ParseLine(lines[0])
	if err := ValidateHeaders(headers, kind); err != nil {
		return nil, err
	}

	result := &ParseResult{Headers: headers}

	if kind == KindQuantiles {
		warnings, err := ValidateQuantileStructure(headers)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	layout := newLayout(headers, kind)
	maxPoints := p.MaxPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	result.Points = make([]Point, 0, min(len(lines)-1, maxPoints))
	for i := 1; i < len(lines); i++ {
		if len(result.Points) >= maxPoints {
			result.Truncated = true
			result.Discarded = len(lines) - i
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("limit of %d points reached, %d remaining lines ignored", maxPoints, result.Discarded))
			break
		}

		values := ParseLine(lines[i])
		if len(values) != len(headers) {
			result.Skipped = append(result.Skipped, RowDiagnostic{
				Line:     i + 1,
				Expected: len(headers),
				Got:      len(values),
				Reason:   "incorrect number of columns",
			})
			continue
		}

		result.Points = append(result.Points, layout.build(values))
	}

	if len(result.Skipped) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d lines skipped: incorrect number of columns (first at line %d)",
				len(result.Skipped), result.Skipped[0].Line))
	}

	return result, nil
}

// splitLines splits on \n and \r\n and drops whitespace-only lines.
func splitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// slot says where a column lands in a Point.
type slot int

const (
	slotExtra slot = iota
	slotT
	slotX
	slotY
	slotZ
	slotVX
	slotVY
	slotVZ
	slotQuantile
)

// layout is the per-parse mapping from column position to Point member.
type layout struct {
	kind         Kind
	headers      []string
	slots        []slot
	quantiles    []QuantileValue // template: Dim and Level per quantile column
	quantileCols map[string]int
	quantileIdx  []int // column position -> index in quantiles, or -1
}

func newLayout(headers []string, kind Kind) *layout {
	l := &layout{
		kind:        kind,
		headers:     headers,
		slots:       make([]slot, len(headers)),
		quantileIdx: make([]int, len(headers)),
	}

	for i, h := range headers {
		l.quantileIdx[i] = -1
		l.slots[i] = l.slotFor(h)
		if l.slots[i] != slotQuantile {
			continue
		}
		if idx, dup := l.quantileCols[h]; dup {
			// last occurrence wins
			l.quantileIdx[i] = idx
			continue
		}
		dim, level, _ := splitQuantile(h)
		if l.quantileCols == nil {
			l.quantileCols = make(map[string]int)
		}
		l.quantileCols[h] = len(l.quantiles)
		l.quantileIdx[i] = len(l.quantiles)
		l.quantiles = append(l.quantiles, QuantileValue{Column: h, Dim: dim, Level: level})
	}

	return l
}

func (l *layout) slotFor(h string) slot {
	if h == "t" {
		return slotT
	}
	switch l.kind {
	case KindDeterministic, KindMonteCarlo:
		switch h {
		case "x":
			return slotX
		case "y":
			return slotY
		case "z":
			return slotZ
		}
		if l.kind == KindDeterministic {
			switch h {
			case "vx":
				return slotVX
			case "vy":
				return slotVY
			case "vz":
				return slotVZ
			}
		}
	case KindQuantiles:
		if _, _, ok := splitQuantile(h); ok {
			return slotQuantile
		}
	}
	return slotExtra
}

func (l *layout) build(values []string) Point {
	pt := Point{
		Kind:         l.kind,
		headers:      l.headers,
		quantileCols: l.quantileCols,
	}
	if len(l.quantiles) > 0 {
		pt.Quantiles = append([]QuantileValue(nil), l.quantiles...)
	}

	for i, raw := range values {
		v := ParseValue(raw)
		switch l.slots[i] {
		case slotT:
			pt.T = v
		case slotX:
			pt.X = v
		case slotY:
			pt.Y = v
		case slotZ:
			pt.Z = v
		case slotVX:
			pt.VX = v
		case slotVY:
			pt.VY = v
		case slotVZ:
			pt.VZ = v
		case slotQuantile:
			pt.Quantiles[l.quantileIdx[i]].Value = v
		default:
			pt.Extra = append(pt.Extra, Field{Name: l.headers[i], Value: v})
		}
	}

	return pt
}
