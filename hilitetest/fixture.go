package hilitetest

import (
	"fmt"
	"strings"

	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/syntax"
)

// FileURI creates a file:// URI from a path.
func FileURI(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("file://%s", path)
}

// Pos creates a protocol.Position from line and character (0-indexed).
func Pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// Rng creates a protocol.Range from start and end positions.
func Rng(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: Pos(startLine, startChar),
		End:   Pos(endLine, endChar),
	}
}

// E builds an entry covering [from, to).
func E(from, to int, tag syntax.Tag) highlight.Entry {
	return highlight.Entry{From: from, To: to, Tag: tag}
}
