package highlight

import (
	"cmp"
	"slices"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/syntax"
)

// Span is a tagged highlight range. Spans compare by value.
type Span struct {
	Range syntax.Range `json:"range"`
	Tag   syntax.Tag   `json:"tag"`
}

// Snapshot is the result of one extraction pass. Offsets are bytes until
// the snapshot is projected into editor units with Project.
type Snapshot struct {
	Spans []Span
	Pairs []bracket.Pair
}

// Translator maps a byte offset into the host editor's code-unit space.
// The mapping is partial; ok == false drops whatever needed the offset.
type Translator interface {
	EditorOffset(byteOff int) (unit int, ok bool)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(byteOff int) (int, bool)

// EditorOffset calls f(byteOff).
func (f TranslatorFunc) EditorOffset(byteOff int) (int, bool) { return f(byteOff) }

// Identity is the Translator for hosts that address text by byte.
type Identity struct{}

// EditorOffset returns byteOff unchanged for any non-negative offset.
func (Identity) EditorOffset(byteOff int) (int, bool) { return byteOff, byteOff >= 0 }

// Project returns a copy of s with every offset translated and shifted by
// regionStart. Span ranges become editor units; pairs keep their byte
// offsets and get Unit filled in. Entries with an endpoint the translator
// rejects are dropped. The second result counts them.
func (s Snapshot) Project(tr Translator, regionStart int) (Snapshot, int) {
	if tr == nil {
		tr = Identity{}
	}
	unit := func(off int) (int, bool) {
		u, ok := tr.EditorOffset(off)
		return regionStart + u, ok
	}

	var (
		out     Snapshot
		dropped int
	)
	out.Spans = make([]Span, 0, len(s.Spans))
	for _, sp := range s.Spans {
		from, ok1 := unit(sp.Range.Start)
		to, ok2 := unit(sp.Range.End)
		if !ok1 || !ok2 || to < from {
			dropped++
			continue
		}
		out.Spans = append(out.Spans, Span{Range: syntax.Range{Start: from, End: to}, Tag: sp.Tag})
	}

	out.Pairs = make([]bracket.Pair, 0, len(s.Pairs))
	for _, p := range s.Pairs {
		open, ok1 := unit(p.Open.Byte)
		cl, ok2 := unit(p.Close.Byte)
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		p.Open.Unit = open
		p.Close.Unit = cl
		out.Pairs = append(out.Pairs, p)
	}
	return out, dropped
}

// Entries flattens s into the value set the Differ compares: one entry per
// span and two one-unit entries per pair, one on each delimiter.
func (s Snapshot) Entries() []Entry {
	seen := make(map[Entry]struct{}, len(s.Spans)+2*len(s.Pairs))
	for _, sp := range s.Spans {
		seen[Entry{From: sp.Range.Start, To: sp.Range.End, Tag: sp.Tag}] = struct{}{}
	}
	for _, p := range s.Pairs {
		for _, e := range delimiterEntries(p, PairTag(p.Kind)) {
			seen[e] = struct{}{}
		}
	}
	entries := make([]Entry, 0, len(seen))
	for e := range seen {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries
}

// PairTag returns the highlight tag for a delimiter family.
func PairTag(k bracket.Kind) syntax.Tag {
	switch k {
	case bracket.Square:
		return syntax.TagBracket
	case bracket.Brace:
		return syntax.TagBrace
	default:
		return syntax.TagParen
	}
}

func delimiterEntries(p bracket.Pair, tag syntax.Tag) [2]Entry {
	return [2]Entry{
		{From: p.Open.Unit, To: p.Open.Unit + 1, Tag: tag},
		{From: p.Close.Unit, To: p.Close.Unit + 1, Tag: tag},
	}
}

func sortSpans(spans []Span) {
	slices.SortFunc(spans, func(a, b Span) int {
		return cmp.Or(
			cmp.Compare(a.Range.Start, b.Range.Start),
			cmp.Compare(a.Range.End, b.Range.End),
			cmp.Compare(a.Tag, b.Tag),
		)
	})
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, compareEntries)
}

func compareEntries(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
		cmp.Compare(a.Tag, b.Tag),
	)
}
