package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pos(b int) Position { return Position{Byte: b, Unit: b} }

func TestLex(t *testing.T) {
	tokens := Lex(`f(a, "[x]") {}`)
	require.Len(t, tokens, 6)

	want := []Token{
		{Kind: Paren, Open: true, Pos: pos(1)},
		{Kind: Square, Open: true, Pos: pos(6)},
		{Kind: Square, Pos: pos(8)},
		{Kind: Paren, Pos: pos(10)},
		{Kind: Brace, Open: true, Pos: pos(12)},
		{Kind: Brace, Pos: pos(13)},
	}
	assert.Equal(t, want, tokens)
}

func TestLexEmpty(t *testing.T) {
	assert.Empty(t, Lex(""))
	assert.Empty(t, Lex("no delimiters here"))
}

func TestLexUTF16Units(t *testing.T) {
	// 😀 is four bytes and two UTF-16 code units; é is two bytes, one unit.
	tokens := Lex("é😀(x)")
	require.Len(t, tokens, 2)
	assert.Equal(t, Position{Byte: 6, Unit: 3}, tokens[0].Pos)
	assert.Equal(t, Position{Byte: 8, Unit: 5}, tokens[1].Pos)
}

func TestLexInvalidUTF8(t *testing.T) {
	tokens := Lex("\xff(\xfe)")
	require.Len(t, tokens, 2)
	assert.Equal(t, Position{Byte: 1, Unit: 1}, tokens[0].Pos)
	assert.Equal(t, Position{Byte: 3, Unit: 3}, tokens[1].Pos)
}

func TestFindPairs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Pair
	}{
		{
			name: "nested",
			text: "(a[b]c)",
			want: []Pair{
				{Kind: Paren, Depth: 0, Open: pos(0), Close: pos(6)},
				{Kind: Square, Depth: 1, Open: pos(2), Close: pos(4)},
			},
		},
		{name: "mismatched", text: "(a]", want: nil},
		{name: "empty", text: "", want: nil},
		{name: "unmatched close first", text: ")()", want: []Pair{
			{Kind: Paren, Open: pos(1), Close: pos(2)},
		}},
		{name: "unmatched open", text: "(()", want: []Pair{
			{Kind: Paren, Depth: 1, Open: pos(1), Close: pos(2)},
		}},
		{name: "mismatched close keeps stack", text: "({]})", want: []Pair{
			{Kind: Paren, Depth: 0, Open: pos(0), Close: pos(4)},
			{Kind: Brace, Depth: 1, Open: pos(1), Close: pos(3)},
		}},
		{name: "crossed", text: "{(]}", want: nil},
		{name: "siblings", text: "{}[]", want: []Pair{
			{Kind: Brace, Open: pos(0), Close: pos(1)},
			{Kind: Square, Open: pos(2), Close: pos(3)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPairs(tt.text))
		})
	}
}

func TestPairSpan(t *testing.T) {
	pairs := FindPairs("(a[b]c)")
	require.Len(t, pairs, 2)
	start, end := pairs[0].Span()
	assert.Equal(t, 0, start)
	assert.Equal(t, 7, end)
}

func TestEnclosing(t *testing.T) {
	pairs := []Pair{
		{Kind: Paren, Open: pos(0), Close: pos(10)},
		{Kind: Square, Depth: 1, Open: pos(3), Close: pos(5)},
	}

	got, ok := Enclosing(pairs, 4)
	require.True(t, ok)
	assert.Equal(t, pairs[1], got)

	got, ok = Enclosing(pairs, 3)
	require.True(t, ok)
	assert.Equal(t, pairs[1], got, "open boundary is inclusive")

	got, ok = Enclosing(pairs, 5)
	require.True(t, ok)
	assert.Equal(t, pairs[1], got, "close boundary is inclusive")

	got, ok = Enclosing(pairs, 7)
	require.True(t, ok)
	assert.Equal(t, pairs[0], got)

	_, ok = Enclosing(pairs, 11)
	assert.False(t, ok)

	_, ok = Enclosing(nil, 0)
	assert.False(t, ok)
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Paren, Square, Brace} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("angle")))
}

var delimiterText = rapid.StringOfN(rapid.RuneFrom([]rune("()[]{}ab\"é")), 0, 64, -1)

func TestPairsWellNested(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := delimiterText.Draw(rt, "text")
		pairs := FindPairs(text)
		for i, a := range pairs {
			if a.Open.Byte >= a.Close.Byte {
				rt.Fatalf("pair %d does not open before it closes: %+v", i, a)
			}
			if text[a.Open.Byte] != openChar(a.Kind) || text[a.Close.Byte] != closeChar(a.Kind) {
				rt.Fatalf("pair %d does not sit on its delimiters: %+v", i, a)
			}
			for j, b := range pairs {
				if i == j {
					continue
				}
				if !(a.Disjoint(b) || a.Contains(b) || b.Contains(a)) {
					rt.Fatalf("pairs %+v and %+v partially overlap in %q", a, b, text)
				}
			}
		}
	})
}

func TestDepthCountsEnclosingPairsWhenBalanced(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := balanced(rt, 4)
		pairs := FindPairs(text)
		for _, p := range pairs {
			enclosing := 0
			for _, q := range pairs {
				if q.Contains(p) {
					enclosing++
				}
			}
			if enclosing != p.Depth {
				rt.Fatalf("pair %+v has depth %d, enclosed by %d in %q", p, p.Depth, enclosing, text)
			}
		}
	})
}

func balanced(rt *rapid.T, budget int) string {
	n := rapid.IntRange(0, 3).Draw(rt, "siblings")
	out := ""
	for i := 0; i < n; i++ {
		if budget == 0 || !rapid.Bool().Draw(rt, "nest") {
			out += "x"
			continue
		}
		k := rapid.SampledFrom([]Kind{Paren, Square, Brace}).Draw(rt, "kind")
		out += string(openChar(k)) + balanced(rt, budget-1) + string(closeChar(k))
	}
	return out
}

func openChar(k Kind) byte {
	return "([{"[k]
}

func closeChar(k Kind) byte {
	return ")]}"[k]
}
