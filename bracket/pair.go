package bracket

import "sort"

// Pair is a matched open/close delimiter pair. Open and Close are the
// positions of the delimiter characters themselves. Depth is the number of
// opens still pending when the pair closed; for balanced text that equals
// the number of pairs enclosing it.
type Pair struct {
	Kind  Kind     `json:"kind"`
	Depth int      `json:"depth"`
	Open  Position `json:"open"`
	Close Position `json:"close"`
}

// Span returns the half-open byte interval covered by the pair, delimiters
// included.
func (p Pair) Span() (start, end int) { return p.Open.Byte, p.Close.Byte + 1 }

// Contains reports whether q lies strictly inside p.
func (p Pair) Contains(q Pair) bool {
	return p.Open.Byte < q.Open.Byte && q.Close.Byte < p.Close.Byte
}

// Disjoint reports whether p and q do not overlap at all.
func (p Pair) Disjoint(q Pair) bool {
	return p.Close.Byte < q.Open.Byte || q.Close.Byte < p.Open.Byte
}

// Stack is the incremental form of the matching algorithm. Push opens,
// Close attempts to match; mismatched or unmatched closes leave the stack
// untouched. It is shared by the lexer path and the tree path.
type Stack struct {
	open []stackEntry
}

type stackEntry struct {
	kind Kind
	pos  Position
}

// Push records an opening delimiter.
func (s *Stack) Push(kind Kind, pos Position) {
	s.open = append(s.open, stackEntry{kind: kind, pos: pos})
}

// Close matches a closing delimiter against the top of the stack. It
// returns the pair and true on a match; otherwise the close is dropped.
func (s *Stack) Close(kind Kind, pos Position) (Pair, bool) {
	n := len(s.open)
	if n == 0 || s.open[n-1].kind != kind {
		return Pair{}, false
	}
	top := s.open[n-1]
	s.open = s.open[:n-1]
	return Pair{Kind: kind, Depth: len(s.open), Open: top.pos, Close: pos}, true
}

// Len returns the number of unmatched opens currently held.
func (s *Stack) Len() int { return len(s.open) }

// Resolve matches tokens into pairs. Unmatched opens and closes are dropped
// silently. The result is sorted by open offset.
func Resolve(tokens []Token) []Pair {
	var (
		stack Stack
		pairs []Pair
	)
	for _, tok := range tokens {
		if tok.Open {
			stack.Push(tok.Kind, tok.Pos)
			continue
		}
		if p, ok := stack.Close(tok.Kind, tok.Pos); ok {
			pairs = append(pairs, p)
		}
	}
	SortByOpen(pairs)
	return pairs
}

// FindPairs lexes and resolves text in one step.
func FindPairs(text string) []Pair {
	return Resolve(Lex(text))
}

// SortByOpen orders pairs by ascending open offset.
func SortByOpen(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Open.Byte < pairs[j].Open.Byte
	})
}
