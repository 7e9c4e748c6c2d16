package treesitter

import (
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/hilite/syntax"
)

// QueryCache holds compiled highlight queries by language name. A query
// that fails to compile is remembered as a failure so it is not retried.
type QueryCache struct {
	mu    sync.Mutex
	cache *cache.Cache
}

type compiled struct {
	query *tree_sitter.Query
	err   error
}

// NewQueryCache creates an empty cache. Entries never expire; Close
// releases them.
func NewQueryCache() *QueryCache {
	c := cache.New(cache.NoExpiration, 0)
	c.OnEvicted(func(_ string, v any) {
		if q := v.(compiled).query; q != nil {
			q.Close()
		}
	})
	return &QueryCache{cache: c}
}

// Get returns the compiled highlight query for lang, or nil when the
// language has none.
func (qc *QueryCache) Get(lang *Language) (*tree_sitter.Query, error) {
	if lang == nil || lang.Highlights == "" {
		return nil, nil
	}
	if v, ok := qc.cache.Get(lang.Name); ok {
		c := v.(compiled)
		return c.query, c.err
	}

	qc.mu.Lock()
	defer qc.mu.Unlock()
	if v, ok := qc.cache.Get(lang.Name); ok {
		c := v.(compiled)
		return c.query, c.err
	}
	var c compiled
	q, qerr := tree_sitter.NewQuery(lang.Grammar, lang.Highlights)
	if qerr != nil {
		c.err = fmt.Errorf("compiling %s highlight query: %w", lang.Name, qerr)
	} else {
		c.query = q
	}
	qc.cache.Set(lang.Name, c, cache.NoExpiration)
	return c.query, c.err
}

// Len returns the number of cached languages.
func (qc *QueryCache) Len() int { return qc.cache.ItemCount() }

// Close releases every compiled query.
func (qc *QueryCache) Close() {
	for k := range qc.cache.Items() {
		qc.cache.Delete(k)
	}
}

// queryClassifier tags nodes captured by a highlight query and defers to
// the kind table for everything else.
type queryClassifier struct {
	tags map[uintptr]syntax.Tag
}

type capturedTag struct {
	tag     syntax.Tag
	pattern uint
}

func newQueryClassifier(tree *tree_sitter.Tree, q *tree_sitter.Query, src []byte) syntax.Classifier {
	if tree == nil || q == nil {
		return syntax.KindClassifier{}
	}
	names := q.CaptureNames()
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	// When several patterns capture one node the earliest pattern wins.
	best := make(map[uintptr]capturedTag)
	matches := cursor.Matches(q, tree.RootNode(), src)
	for m := matches.Next(); m != nil; m = matches.Next() {
		for _, c := range m.Captures {
			if int(c.Index) >= len(names) {
				continue
			}
			tag, ok := syntax.TagForCapture(names[c.Index])
			if !ok {
				continue
			}
			id := c.Node.Id()
			if prev, seen := best[id]; seen && prev.pattern <= m.PatternIndex {
				continue
			}
			best[id] = capturedTag{tag: tag, pattern: m.PatternIndex}
		}
	}

	tags := make(map[uintptr]syntax.Tag, len(best))
	for id, ct := range best {
		tags[id] = ct.tag
	}
	return &queryClassifier{tags: tags}
}

func (c *queryClassifier) TagFor(n syntax.Node) (syntax.Tag, bool) {
	if tn, ok := n.(*node); ok {
		if tag, ok := c.tags[tn.raw.Id()]; ok {
			return tag, true
		}
	}
	return syntax.KindClassifier{}.TagFor(n)
}
