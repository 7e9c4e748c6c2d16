package hilitetest

import (
	"testing"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/syntax"
)

// AssertHasEntry asserts that entries contains want.
func AssertHasEntry(t testing.TB, entries []highlight.Entry, want highlight.Entry) {
	t.Helper()
	for _, e := range entries {
		if e == want {
			return
		}
	}
	t.Errorf("entries do not contain %v, got: %v", want, entries)
}

// AssertNoEntry asserts that entries does not contain e.
func AssertNoEntry(t testing.TB, entries []highlight.Entry, e highlight.Entry) {
	t.Helper()
	for _, got := range entries {
		if got == e {
			t.Errorf("entries unexpectedly contain %v", e)
			return
		}
	}
}

// AssertTagCount asserts how many entries carry tag.
func AssertTagCount(t testing.TB, entries []highlight.Entry, tag syntax.Tag, count int) {
	t.Helper()
	n := 0
	for _, e := range entries {
		if e.Tag == tag {
			n++
		}
	}
	if n != count {
		t.Errorf("expected %d %s entries, got %d", count, tag, n)
	}
}

// AssertEmptyChanges asserts that cs carries no work.
func AssertEmptyChanges(t testing.TB, cs highlight.ChangeSet) {
	t.Helper()
	if !cs.Empty() {
		t.Errorf("expected no changes, got adds=%v removes=%v", cs.Adds, cs.Removes)
	}
}

// AssertPairAt asserts that pair is non-nil and its delimiters sit at the
// given editor units.
func AssertPairAt(t testing.TB, pair *bracket.Pair, open, close int) {
	t.Helper()
	if pair == nil {
		t.Fatalf("pair is nil, expected %d..%d", open, close)
	}
	if pair.Open.Unit != open || pair.Close.Unit != close {
		t.Errorf("pair = %d..%d, want %d..%d", pair.Open.Unit, pair.Close.Unit, open, close)
	}
}
