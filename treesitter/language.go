package treesitter

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// LanguageMatcher associates a language with one or more matching
// strategies. At least one of Extensions, Filenames, Pattern, or LanguageID
// must be set.
type LanguageMatcher struct {
	Language   *Language
	Extensions []string // e.g., [".yml", ".yaml"]
	Filenames  []string // exact filenames, e.g., ["go.mod"]
	Pattern    string   // glob pattern, e.g., ".github/workflows/*.yml"
	LanguageID string   // LSP languageId, e.g., "yaml"
}

// Registry maps file names, patterns and language IDs to languages.
type Registry struct {
	mu       sync.RWMutex
	matchers []LanguageMatcher
}

// NewRegistry creates a new language registry from a config.
func NewRegistry(cfg Config) *Registry {
	return &Registry{matchers: slices.Clone(cfg.Matchers)}
}

// RegisterMatcher adds a LanguageMatcher to the registry. Matchers are
// evaluated in registration order within each pass.
func (r *Registry) RegisterMatcher(m LanguageMatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
}

// LanguageForURI returns the language for a URI and optional languageID.
// It evaluates in this order:
//  1. exact filename
//  2. languageID
//  3. glob pattern, against the full URI and then the base name
//  4. extension
func (r *Registry) LanguageForURI(uri string, languageID string) (*Language, error) {
	filename := path.Base(uri)
	ext := path.Ext(uri)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matchers {
		if slices.Contains(m.Filenames, filename) {
			return m.Language, nil
		}
	}

	if languageID != "" {
		for _, m := range r.matchers {
			if m.LanguageID == languageID {
				return m.Language, nil
			}
		}
	}

	for _, m := range r.matchers {
		if m.Pattern == "" {
			continue
		}
		if ok, _ := path.Match(m.Pattern, uri); ok {
			return m.Language, nil
		}
		if ok, _ := path.Match(m.Pattern, filename); ok {
			return m.Language, nil
		}
	}

	if ext != "" {
		for _, m := range r.matchers {
			for _, mExt := range m.Extensions {
				if !strings.HasPrefix(mExt, ".") {
					mExt = "." + mExt
				}
				if mExt == ext {
					return m.Language, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no language registered for: %s", uri)
}

// Names returns the distinct language names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, m := range r.matchers {
		if m.Language != nil && !slices.Contains(names, m.Language.Name) {
			names = append(names, m.Language.Name)
		}
	}
	return names
}
