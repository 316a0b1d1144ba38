package bingo

import "fmt"

// Pattern names one of the recognised win shapes
type Pattern string

const (
	PatternRow      Pattern = "row"
	PatternColumn   Pattern = "column"
	PatternDiagonal Pattern = "diagonal"
	PatternCorners  Pattern = "corners"
)

// AllPatterns lists the win shapes in the order they are checked
var AllPatterns = []Pattern{PatternRow, PatternColumn, PatternDiagonal, PatternCorners}

// ParsePattern validates a pattern name
func ParsePattern(name string) (Pattern, error) {
	p := Pattern(name)
	if p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("unknown pattern %q", name)
}

// IsValid reports whether p is one of the recognised shapes
func (p Pattern) IsValid() bool {
	switch p {
	case PatternRow, PatternColumn, PatternDiagonal, PatternCorners:
		return true
	}
	return false
}

// Cell is a [row, col] position on a card
type Cell struct {
	Row int
	Col int
}

// Marks is the set of values a player has daubed
type Marks map[int]bool

// NewMarks builds a mark set from a list of values
func NewMarks(values ...int) Marks {
	m := make(Marks, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// lines returns every cell group that completes the pattern
func (p Pattern) lines() [][]Cell {
	var lines [][]Cell
	switch p {
	case PatternRow:
		for row := 0; row < Size; row++ {
			line := make([]Cell, Size)
			for col := 0; col < Size; col++ {
				line[col] = Cell{row, col}
			}
			lines = append(lines, line)
		}
	case PatternColumn:
		for col := 0; col < Size; col++ {
			line := make([]Cell, Size)
			for row := 0; row < Size; row++ {
				line[row] = Cell{row, col}
			}
			lines = append(lines, line)
		}
	case PatternDiagonal:
		main := make([]Cell, Size)
		anti := make([]Cell, Size)
		for i := 0; i < Size; i++ {
			main[i] = Cell{i, i}
			anti[i] = Cell{i, Size - 1 - i}
		}
		lines = append(lines, main, anti)
	case PatternCorners:
		lines = append(lines, []Cell{{0, 0}, {0, Size - 1}, {Size - 1, 0}, {Size - 1, Size - 1}})
	}
	return lines
}

func isMarked(card Card, marks Marks, cell Cell) bool {
	v := card[cell.Row][cell.Col]
	return v == FreeSpace || marks[v]
}

// MatchesPattern reports whether any line of exactly this pattern is complete
func MatchesPattern(card Card, marks Marks, pattern Pattern) bool {
	for _, line := range pattern.lines() {
		complete := true
		for _, cell := range line {
			if !isMarked(card, marks, cell) {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

// HasWinningPattern reports whether any recognised pattern is complete
func HasWinningPattern(card Card, marks Marks) bool {
	_, ok := WinningPattern(card, marks)
	return ok
}

// WinningPattern returns the first complete pattern, if any
func WinningPattern(card Card, marks Marks) (Pattern, bool) {
	for _, p := range AllPatterns {
		if MatchesPattern(card, marks, p) {
			return p, true
		}
	}
	return "", false
}

// NearMiss describes the cheapest way to complete a pattern
type NearMiss struct {
	Pattern Pattern
	Missing []int // card values still unmarked on the closest line
}

// ClosestLine finds the line with the fewest unmarked cells across every pattern.
// Only lines whose missing values all satisfy allowed are considered.
func ClosestLine(card Card, marks Marks, allowed func(int) bool) (NearMiss, bool) {
	best := NearMiss{}
	found := false
	for _, p := range AllPatterns {
		for _, line := range p.lines() {
			var missing []int
			eligible := true
			for _, cell := range line {
				if isMarked(card, marks, cell) {
					continue
				}
				v := card[cell.Row][cell.Col]
				if allowed != nil && !allowed(v) {
					eligible = false
					break
				}
				missing = append(missing, v)
			}
			if !eligible {
				continue
			}
			if !found || len(missing) < len(best.Missing) {
				best = NearMiss{Pattern: p, Missing: missing}
				found = true
			}
		}
	}
	return best, found
}
