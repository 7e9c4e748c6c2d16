// Package region finds the code blocks of a markdown document. Each block is
// a region a host can highlight on its own, with the block's start passed
// as the region offset.
package region

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/syntax"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Block is one code block. Bytes bounds the content in the source, fences
// excluded; Start and End are the same bounds in UTF-16 code units. Content
// is the raw source slice, so offsets inside it line up with the document
// even when the block is indented.
type Block struct {
	Language string
	Fenced   bool
	Bytes    syntax.Range
	Start    int
	End      int
	Content  string
}

// Contains reports whether the editor offset unit lies within the block,
// end included so a cursor after the last character still counts.
func (b Block) Contains(unit int) bool { return b.Start <= unit && unit <= b.End }

// Find parses source and returns its non-empty code blocks in document
// order.
func Find(source string) []Block {
	src := []byte(source)
	root := markdown.Parser().Parse(text.NewReader(src))
	tr := document.NewTranslator(source)

	var blocks []Block
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch cb := n.(type) {
		case *ast.FencedCodeBlock:
			if b, ok := block(cb, source, tr); ok {
				b.Fenced = true
				b.Language = string(cb.Language(src))
				blocks = append(blocks, b)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			if b, ok := block(cb, source, tr); ok {
				blocks = append(blocks, b)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

func block(n ast.Node, source string, tr *document.Translator) (Block, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return Block{}, false
	}
	start := lines.At(0).Start
	end := lines.At(lines.Len() - 1).Stop
	content := strings.TrimSuffix(source[start:end], "\n")
	content = strings.TrimSuffix(content, "\r")
	end = start + len(content)
	if strings.TrimSpace(content) == "" {
		return Block{}, false
	}

	su, ok1 := tr.EditorOffset(start)
	eu, ok2 := tr.EditorOffset(end)
	if !ok1 || !ok2 {
		return Block{}, false
	}
	return Block{
		Bytes:   syntax.Range{Start: start, End: end},
		Start:   su,
		End:     eu,
		Content: content,
	}, true
}

// At returns the block containing the editor offset cursor.
func At(blocks []Block, cursor int) (Block, bool) {
	for _, b := range blocks {
		if b.Contains(cursor) {
			return b, true
		}
	}
	return Block{}, false
}
