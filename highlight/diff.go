package highlight

import (
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/syntax"
)

// Entry is one decoration as the host sees it: a half-open editor-unit
// range and a tag. Entries are compared by value.
type Entry struct {
	From int        `json:"from"`
	To   int        `json:"to"`
	Tag  syntax.Tag `json:"tag"`
}

// ChangeSet is the difference between two successive snapshots. Both lists
// are sorted. A host applies Removes before Adds; the enclosing decoration
// is the only value that can appear in both, and applying Adds first would
// drop an enclosing decoration that stays in place.
type ChangeSet struct {
	Adds    []Entry `json:"adds"`
	Removes []Entry `json:"removes"`
}

// Empty reports whether the change set carries no work.
func (c ChangeSet) Empty() bool { return len(c.Adds) == 0 && len(c.Removes) == 0 }

// Differ retains the entries of the last snapshot it saw and reports what
// changed on each call. The zero value is ready to use and behaves as if
// nothing had been shown yet. A Differ is not safe for concurrent use.
type Differ struct {
	prev      map[Entry]struct{}
	enclosing []Entry
}

// Diff compares s against the retained entries, replaces them with s and
// returns the change set. enclosing is the cursor's enclosing pair, or nil.
// The enclosing decoration is always re-added when present and the previous
// one is always removed, even if the pair did not move.
func (d *Differ) Diff(s Snapshot, enclosing *bracket.Pair) ChangeSet {
	cur := s.Entries()
	next := make(map[Entry]struct{}, len(cur))
	cs := ChangeSet{Adds: []Entry{}, Removes: []Entry{}}
	for _, e := range cur {
		next[e] = struct{}{}
		if _, ok := d.prev[e]; !ok {
			cs.Adds = append(cs.Adds, e)
		}
	}
	for e := range d.prev {
		if _, ok := next[e]; !ok {
			cs.Removes = append(cs.Removes, e)
		}
	}

	cs.Removes = append(cs.Removes, d.enclosing...)
	d.enclosing = nil
	if enclosing != nil {
		ee := delimiterEntries(*enclosing, syntax.TagEnclosing)
		d.enclosing = ee[:]
		cs.Adds = append(cs.Adds, d.enclosing...)
	}
	d.prev = next

	sortEntries(cs.Adds)
	sortEntries(cs.Removes)
	return cs
}

// Reset forgets the retained entries. The next Diff reports everything as
// added.
func (d *Differ) Reset() {
	d.prev = nil
	d.enclosing = nil
}

// Retained returns how many entries the host is currently assumed to hold.
func (d *Differ) Retained() int { return len(d.prev) + len(d.enclosing) }
