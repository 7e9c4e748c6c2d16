// Package highlight turns a syntax tree into a snapshot of tagged spans and
// authoritative bracket pairs, and diffs successive snapshots into the
// minimal change set a host needs to repaint.
package highlight

import (
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/syntax"
)

// Extract walks the tree rooted at root depth-first and collects spans and
// pairs. Delimiter nodes are matched with the same tolerant stack rule as
// bracket.Resolve; every other node is offered to c. A nil classifier
// classifies by kind alone. Extract never fails: nodes it cannot make sense
// of contribute nothing.
func Extract(root syntax.Node, c syntax.Classifier) Snapshot {
	if root == nil {
		return Snapshot{}
	}
	if c == nil {
		c = syntax.KindClassifier{}
	}

	var (
		snap  Snapshot
		stack bracket.Stack
		seen  = make(map[Span]struct{})
		work  = []syntax.Node{root}
	)
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]

		kind := n.Kind()
		r := n.Range()
		if kind.IsGrouping() {
			matchDelimiter(&stack, &snap, kind, r)
		} else if tag, ok := c.TagFor(n); ok && spanTag(tag) && r.Len() > 0 {
			sp := Span{Range: r, Tag: tag}
			if _, dup := seen[sp]; !dup {
				seen[sp] = struct{}{}
				snap.Spans = append(snap.Spans, sp)
			}
		}

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				work = append(work, children[i])
			}
		}
	}

	sortSpans(snap.Spans)
	bracket.SortByOpen(snap.Pairs)
	return snap
}

func matchDelimiter(stack *bracket.Stack, snap *Snapshot, kind syntax.Kind, r syntax.Range) {
	// Zero-width delimiters are parser recovery placeholders.
	if r.Len() <= 0 {
		return
	}
	bk := delimiterKind(kind)
	pos := bracket.Position{Byte: r.Start, Unit: r.Start}
	if kind.IsOpen() {
		stack.Push(bk, pos)
		return
	}
	if p, ok := stack.Close(bk, pos); ok {
		snap.Pairs = append(snap.Pairs, p)
	}
}

func delimiterKind(k syntax.Kind) bracket.Kind {
	switch k {
	case syntax.KindLeftBracket, syntax.KindRightBracket:
		return bracket.Square
	case syntax.KindLeftBrace, syntax.KindRightBrace:
		return bracket.Brace
	default:
		return bracket.Paren
	}
}

// spanTag reports whether a classifier result may appear as a span. The
// delimiter and enclosing tags belong to pair entries only.
func spanTag(t syntax.Tag) bool {
	return t != syntax.TagNone && t != syntax.TagEnclosing && !t.IsDelimiter()
}
