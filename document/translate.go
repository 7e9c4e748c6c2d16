package document

import "sort"

// markEvery is the byte spacing of the translator's checkpoints.
const markEvery = 4096

type mark struct {
	byte int
	unit int
}

// Translator maps byte offsets of a fixed text to UTF-16 code-unit offsets.
// Lookups scan forward from the nearest checkpoint, so arbitrary access
// order costs at most markEvery bytes per call. Pure ASCII texts map
// identically. A Translator is immutable and safe for concurrent use.
type Translator struct {
	text  string
	ascii bool
	marks []mark
}

// NewTranslator indexes text.
func NewTranslator(text string) *Translator {
	t := &Translator{text: text, ascii: true}
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x80 {
			t.ascii = false
			break
		}
	}
	if t.ascii {
		return t
	}

	t.marks = []mark{{}}
	next := markEvery
	unit := 0
	for i := 0; i < len(text); {
		if i >= next {
			t.marks = append(t.marks, mark{byte: i, unit: unit})
			next = i + markEvery
		}
		size, n := runeUnits(text[i:])
		i += size
		unit += n
	}
	return t
}

// EditorOffset returns the UTF-16 offset of byte offset off. It fails when
// off is out of range or falls inside a multi-byte character.
func (t *Translator) EditorOffset(off int) (int, bool) {
	if off < 0 || off > len(t.text) {
		return 0, false
	}
	if t.ascii {
		return off, true
	}

	k := sort.Search(len(t.marks), func(i int) bool { return t.marks[i].byte > off }) - 1
	i, unit := t.marks[k].byte, t.marks[k].unit
	for i < off {
		size, n := runeUnits(t.text[i:])
		i += size
		unit += n
	}
	if i != off {
		return 0, false
	}
	return unit, true
}

// Units returns the length of the text in UTF-16 code units.
func (t *Translator) Units() int {
	u, _ := t.EditorOffset(len(t.text))
	return u
}
