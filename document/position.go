package document

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gossip-lsp/hilite/protocol"
)

// Point is a zero-based row and byte column, the coordinate system
// tree-sitter edits use.
type Point struct {
	Row    uint
	Column uint
}

// OffsetAt converts an LSP Position (line, UTF-16 character offset) to a byte
// offset in the document text. Positions past the end clamp to len(text).
func OffsetAt(text string, pos protocol.Position) int {
	offset := 0
	for l := uint32(0); l < pos.Line; l++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}

	line := text[offset:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}

	u16 := 0
	i := 0
	for i < len(line) && u16 < int(pos.Character) {
		size, n := runeUnits(line[i:])
		i += size
		u16 += n
	}
	return offset + i
}

// PositionAt converts a byte offset to an LSP Position.
func PositionAt(text string, offset int) protocol.Position {
	offset = clamp(offset, len(text))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := strings.Count(text[:lineStart], "\n")
	return protocol.Position{Line: uint32(line), Character: uint32(utf16Len(text[lineStart:offset]))}
}

// PointAt converts a byte offset to a row and byte column.
func PointAt(text string, offset int) Point {
	offset = clamp(offset, len(text))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return Point{
		Row:    uint(strings.Count(text[:lineStart], "\n")),
		Column: uint(offset - lineStart),
	}
}

// runeUnits decodes the first rune of s and returns its byte size and
// UTF-16 length. Invalid bytes count as one unit each.
func runeUnits(s string) (size, units int) {
	if s[0] < utf8.RuneSelf {
		return 1, 1
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 1 {
		return 1, 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return size, n
	}
	return size, 1
}

func utf16Len(s string) int {
	u16 := 0
	for i := 0; i < len(s); {
		size, n := runeUnits(s[i:])
		i += size
		u16 += n
	}
	return u16
}

func clamp(offset, n int) int {
	return min(max(offset, 0), n)
}
