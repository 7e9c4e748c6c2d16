package document

import (
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/gossip-lsp/hilite/protocol"
)

// narrowTimeout bounds the diff used to shrink full-text replacements.
// When it expires the edit is merely less narrow.
const narrowTimeout = 20 * time.Millisecond

// EditRange describes one replaced byte range in the coordinates the
// tree-sitter incremental parser expects. Edits in a slice apply in order,
// each against the text the previous one produced.
type EditRange struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// ApplyChanges applies a set of LSP content change events to document text.
// Supports both full and incremental sync.
func ApplyChanges(text string, changes []protocol.TextDocumentContentChangeEvent) string {
	text, _ = ApplyChangesWithEdits(text, changes)
	return text
}

// ApplyChangesWithEdits applies changes and returns edit ranges for
// incremental parsing. A full-text replacement is narrowed to the region
// that actually differs so the reparse stays incremental for clients that
// only sync whole documents.
func ApplyChangesWithEdits(text string, changes []protocol.TextDocumentContentChangeEvent) (string, []EditRange) {
	var edits []EditRange
	for _, change := range changes {
		var start, end int
		if change.Range == nil {
			var newEnd int
			start, end, newEnd = narrow(text, change.Text)
			if start == end && start == newEnd {
				text = change.Text
				continue
			}
			edits = append(edits, makeEdit(text, change.Text, start, end, newEnd))
			text = change.Text
			continue
		}

		start = OffsetAt(text, change.Range.Start)
		end = OffsetAt(text, change.Range.End)
		if start > end {
			start, end = end, start
		}
		next := text[:start] + change.Text + text[end:]
		edits = append(edits, makeEdit(text, next, start, end, start+len(change.Text)))
		text = next
	}
	return text, edits
}

func makeEdit(before, after string, start, oldEnd, newEnd int) EditRange {
	return EditRange{
		StartByte:   start,
		OldEndByte:  oldEnd,
		NewEndByte:  newEnd,
		StartPoint:  PointAt(before, start),
		OldEndPoint: PointAt(before, oldEnd),
		NewEndPoint: PointAt(after, newEnd),
	}
}

// narrow returns the single edit turning before into after: the length of
// the common prefix and the ends of the differing middle in each text.
// Texts that are not valid UTF-8 fall back to replacing everything, since
// the diff works on runes and would misreport byte lengths.
func narrow(before, after string) (start, oldEnd, newEnd int) {
	if !utf8.ValidString(before) || !utf8.ValidString(after) {
		return 0, len(before), len(after)
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = narrowTimeout
	diffs := dmp.DiffMain(before, after, false)

	prefix, suffix := 0, 0
	if len(diffs) > 0 && diffs[0].Type == diffmatchpatch.DiffEqual {
		prefix = len(diffs[0].Text)
	}
	if n := len(diffs); n > 1 && diffs[n-1].Type == diffmatchpatch.DiffEqual {
		suffix = len(diffs[n-1].Text)
	}
	return prefix, len(before) - suffix, len(after) - suffix
}
