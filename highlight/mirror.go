package highlight

// Mirror is a host-side replica of the decorations a Differ believes are
// shown. It is what a client keeps in sync by applying change sets.
type Mirror struct {
	set map[Entry]struct{}
}

// NewMirror returns a mirror holding entries.
func NewMirror(entries ...Entry) *Mirror {
	m := &Mirror{set: make(map[Entry]struct{}, len(entries))}
	for _, e := range entries {
		m.set[e] = struct{}{}
	}
	return m
}

// Apply removes cs.Removes and then adds cs.Adds.
func (m *Mirror) Apply(cs ChangeSet) {
	if m.set == nil {
		m.set = make(map[Entry]struct{})
	}
	for _, e := range cs.Removes {
		delete(m.set, e)
	}
	for _, e := range cs.Adds {
		m.set[e] = struct{}{}
	}
}

// Entries returns the mirrored entries in sorted order.
func (m *Mirror) Entries() []Entry {
	out := make([]Entry, 0, len(m.set))
	for e := range m.set {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Len returns the number of mirrored entries.
func (m *Mirror) Len() int { return len(m.set) }
