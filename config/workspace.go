package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// Bridge feeds both config sources into a Store: the workspace file and
// the settings object the editor sends with
// workspace/didChangeConfiguration. Editor settings are applied on top of
// the file, so a file reload keeps the last settings the editor sent.
type Bridge[T any] struct {
	store    *Store[T]
	filePath string
	defaults *T
	section  string

	mu       sync.Mutex
	settings json.RawMessage
}

// NewBridge creates a bridge. filePath may be empty when there is no
// workspace file. section names the key editor settings are nested under,
// if any.
func NewBridge[T any](store *Store[T], filePath string, defaults *T, section string) *Bridge[T] {
	return &Bridge[T]{
		store:    store,
		filePath: filePath,
		defaults: defaults,
		section:  section,
	}
}

// Reload re-reads the file, applies the retained editor settings and swaps
// the result into the store. On error the store keeps its value.
func (b *Bridge[T]) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reload()
}

// Apply records new editor settings and reloads.
func (b *Bridge[T]) Apply(settings json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.settings
	b.settings = b.extract(settings)
	if err := b.reload(); err != nil {
		b.settings = prev
		return err
	}
	return nil
}

// SetFile changes the workspace file and reloads.
func (b *Bridge[T]) SetFile(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filePath = path
	return b.reload()
}

func (b *Bridge[T]) reload() error {
	cfg := b.defaults
	if b.filePath != "" {
		loaded, err := Load(b.filePath, b.defaults)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if len(b.settings) > 0 {
		merged := new(T)
		if cfg != nil {
			*merged = *cfg
		}
		if err := json.Unmarshal(b.settings, merged); err != nil {
			return fmt.Errorf("applying editor settings: %w", err)
		}
		if err := validate(merged); err != nil {
			return fmt.Errorf("validating editor settings: %w", err)
		}
		cfg = merged
	}
	b.store.Swap(cfg)
	return nil
}

// extract returns the section of raw meant for this bridge. Null and
// non-object settings are treated as empty.
func (b *Bridge[T]) extract(raw json.RawMessage) json.RawMessage {
	if b.section != "" {
		var outer map[string]json.RawMessage
		if err := json.Unmarshal(raw, &outer); err == nil {
			if inner, ok := outer[b.section]; ok {
				raw = inner
			}
		}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	return raw
}
