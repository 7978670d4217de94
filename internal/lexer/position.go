package lexer

import "sort"

// lineIndex provides byte offset to line/column conversion.
// It pre-computes line start positions for O(log n) lookups.
type lineIndex struct {
	size       int
	lineStarts []int // byte offset of each line start
}

func newLineIndex(source string) *lineIndex {
	idx := &lineIndex{
		size:       len(source),
		lineStarts: []int{0},
	}

	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			idx.lineStarts = append(idx.lineStarts, i+1)
		case '\r':
			// CRLF counts as a single break
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			idx.lineStarts = append(idx.lineStarts, i+1)
		}
	}

	return idx
}

// position converts a byte offset to a 1-based Position.
func (idx *lineIndex) position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > idx.size {
		offset = idx.size
	}

	line := sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}

	return Position{Line: line + 1, Column: offset - idx.lineStarts[line] + 1}
}

// PositionOf converts a byte offset in source to a 1-based Position.
// It is meant for callers that hold an offset without a token.
func PositionOf(source string, offset int) Position {
	return newLineIndex(source).position(offset)
}
