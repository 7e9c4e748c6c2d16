package document

import (
	"sync"

	"github.com/gossip-lsp/hilite/protocol"
)

// Document represents a single managed text document.
type Document struct {
	mu         sync.RWMutex
	uri        protocol.DocumentURI
	languageID string
	version    int32
	text       string

	// tr is built on first use and dropped on every change.
	tr *Translator
	// onTreeEdit receives the edits of each change, outside the lock.
	onTreeEdit func(edits []EditRange)
}

// New creates a new Document from an LSP TextDocumentItem.
func New(item protocol.TextDocumentItem) *Document {
	return &Document{
		uri:        item.URI,
		languageID: item.LanguageID,
		version:    item.Version,
		text:       item.Text,
	}
}

// URI returns the document's URI.
func (d *Document) URI() protocol.DocumentURI {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uri
}

// LanguageID returns the LSP language identifier (e.g., "go", "python").
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// Version returns the document's current version number.
func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full text content of the document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the text length in bytes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Translator returns the byte to UTF-16 translator for the current text.
func (d *Document) Translator() *Translator {
	_, _, tr := d.Snapshot()
	return tr
}

// Snapshot returns the version, text and translator read under one lock,
// so the three always agree.
func (d *Document) Snapshot() (int32, string, *Translator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tr == nil {
		d.tr = NewTranslator(d.text)
	}
	return d.version, d.text, d.tr
}

// SetOnTreeEdit sets the callback for tree-sitter edit notifications.
func (d *Document) SetOnTreeEdit(fn func(edits []EditRange)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onTreeEdit = fn
}

// ApplyChanges applies the edits of a didChange and updates the version.
func (d *Document) ApplyChanges(version int32, changes []protocol.TextDocumentContentChangeEvent) []EditRange {
	d.mu.Lock()
	newText, edits := ApplyChangesWithEdits(d.text, changes)
	d.text = newText
	d.version = version
	d.tr = nil
	cb := d.onTreeEdit
	d.mu.Unlock()

	// The callback reads Text(), so it runs after the lock is released.
	if cb != nil && len(edits) > 0 {
		cb(edits)
	}

	return edits
}
