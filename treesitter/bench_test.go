package treesitter_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/treesitter"
)

type langSpec struct {
	name string
	ext  string
	gen  func(lines int) string // generates a file with ~N lines
	// A structural edit in the middle of the file
	editGen func(lines int) (rng protocol.Range, text string)
}

// ---------------------------------------------------------------------------
// Realistic source generators
// ---------------------------------------------------------------------------

func genGoFile(lines int) string {
	var b strings.Builder
	b.WriteString("package bench\n\nimport (\n\t\"fmt\"\n\t\"strings\"\n)\n\n")
	funcs := max((lines-8)/6, 1)
	for i := 0; i < funcs; i++ {
		fmt.Fprintf(&b, "// Process%d handles item %d.\nfunc Process%d(input string) string {\n", i, i, i)
		fmt.Fprintf(&b, "\tresult := strings.TrimSpace(input)\n")
		fmt.Fprintf(&b, "\tfmt.Println(result[0:len(result)])\n")
		fmt.Fprintf(&b, "\treturn result\n}\n\n")
	}
	return b.String()
}

func genGoEdit(lines int) (protocol.Range, string) {
	midFunc := (lines - 8) / 6 / 2
	line := uint32(8 + midFunc*6 + 2) // the TrimSpace line inside the middle function
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: 1},
		End:   protocol.Position{Line: line + 1, Character: 0},
	}, "\tresult := strings.ToUpper(strings.TrimSpace(input))\n\t_ = len(result)\n"
}

func genPythonFile(lines int) string {
	var b strings.Builder
	b.WriteString("import os\nimport sys\nimport json\n\n")
	funcs := max((lines-4)/6, 1)
	for i := 0; i < funcs; i++ {
		fmt.Fprintf(&b, "# Process item %d\ndef process_%d(data: str) -> str:\n", i, i)
		fmt.Fprintf(&b, "    result = data.strip()\n")
		fmt.Fprintf(&b, "    print({\"r\": [result]})\n")
		fmt.Fprintf(&b, "    return result\n\n")
	}
	return b.String()
}

func genPythonEdit(lines int) (protocol.Range, string) {
	midFunc := (lines - 4) / 6 / 2
	line := uint32(4 + midFunc*6 + 2) // the strip() line
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: 0},
		End:   protocol.Position{Line: line + 1, Character: 0},
	}, "    result = data.strip().upper()\n    _ = len(result)\n"
}

func genJSONFile(lines int) string {
	var b strings.Builder
	b.WriteString("{\n")
	entries := max(lines-2, 1)
	for i := 0; i < entries; i++ {
		comma := ","
		if i == entries-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "  \"key_%d\": [\"value_%d\", {\"n\": %d}]%s\n", i, i, i, comma)
	}
	b.WriteString("}\n")
	return b.String()
}

func genJSONEdit(lines int) (protocol.Range, string) {
	mid := uint32((lines - 2) / 2)
	return protocol.Range{
		Start: protocol.Position{Line: mid + 1, Character: 0},
		End:   protocol.Position{Line: mid + 2, Character: 0},
	}, fmt.Sprintf("  \"key_%d\": [1, 2, 3],\n", mid)
}

func genYAMLFile(lines int) string {
	var b strings.Builder
	b.WriteString("---\n")
	entries := max((lines-1)/6, 1)
	for i := 0; i < entries; i++ {
		fmt.Fprintf(&b, "# Service %d configuration\n", i)
		fmt.Fprintf(&b, "service_%d:\n", i)
		fmt.Fprintf(&b, "  name: service-%d\n", i)
		fmt.Fprintf(&b, "  version: \"%d.0.0\"\n", i)
		fmt.Fprintf(&b, "  enabled: true\n")
		fmt.Fprintf(&b, "  tags: [a, {b: c}]\n")
	}
	return b.String()
}

func genYAMLEdit(lines int) (protocol.Range, string) {
	midEntry := (lines - 1) / 6 / 2
	line := uint32(1 + midEntry*6 + 4) // the "enabled: true" line
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: 0},
		End:   protocol.Position{Line: line + 1, Character: 0},
	}, "  enabled:\n    - yes\n    - no\n"
}

var languages = []langSpec{
	{name: "go", ext: ".go", gen: genGoFile, editGen: genGoEdit},
	{name: "python", ext: ".py", gen: genPythonFile, editGen: genPythonEdit},
	{name: "json", ext: ".json", gen: genJSONFile, editGen: genJSONEdit},
	{name: "yaml", ext: ".yaml", gen: genYAMLFile, editGen: genYAMLEdit},
}

var sizes = []struct {
	name  string
	lines int
}{
	{"Small_50", 50},
	{"Medium_500", 500},
	{"Large_5000", 5000},
}

// ---------------------------------------------------------------------------
// Benchmark infrastructure
// ---------------------------------------------------------------------------

func setupBench(b *testing.B) (*document.Store, *treesitter.Manager) {
	store := document.NewStore()
	mgr := treesitter.NewManager(treesitter.DefaultConfig(), store)
	b.Cleanup(mgr.Close)
	return store, mgr
}

func openBench(store *document.Store, spec langSpec, uri protocol.DocumentURI, src string) {
	store.Open(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: spec.name, Version: 1, Text: src},
	})
}

func change(store *document.Store, uri protocol.DocumentURI, version int32, c protocol.TextDocumentContentChangeEvent) {
	store.Change(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{c},
	})
}

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

// BenchmarkInitialParse measures the first parse on open.
func BenchmarkInitialParse(b *testing.B) {
	for _, spec := range languages {
		for _, sz := range sizes {
			src := spec.gen(sz.lines)
			b.Run(spec.name+"/"+sz.name, func(b *testing.B) {
				store, mgr := setupBench(b)
				b.ReportAllocs()
				b.SetBytes(int64(len(src)))
				for i := 0; i < b.N; i++ {
					uri := protocol.DocumentURI(fmt.Sprintf("file:///bench%d%s", i, spec.ext))
					openBench(store, spec, uri, src)
					if mgr.GetTree(uri) == nil {
						b.Fatal("nil tree")
					}
					store.Close(&protocol.DidCloseTextDocumentParams{
						TextDocument: protocol.TextDocumentIdentifier{URI: uri},
					})
				}
			})
		}
	}
}

// BenchmarkIncrementalEdit measures an incremental edit followed by a
// whole-text revert, which exercises edit narrowing.
func BenchmarkIncrementalEdit(b *testing.B) {
	for _, spec := range languages {
		for _, sz := range sizes {
			src := spec.gen(sz.lines)
			editRange, editText := spec.editGen(sz.lines)

			b.Run(spec.name+"/"+sz.name, func(b *testing.B) {
				store, _ := setupBench(b)
				uri := protocol.DocumentURI("file:///bench" + spec.ext)
				openBench(store, spec, uri, src)

				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					change(store, uri, int32(2*i+2), protocol.TextDocumentContentChangeEvent{Range: &editRange, Text: editText})
					change(store, uri, int32(2*i+3), protocol.TextDocumentContentChangeEvent{Text: src})
				}
			})
		}
	}
}

// BenchmarkExtractDiff measures one highlight pass over an unchanged tree:
// extraction, projection and a diff that finds nothing new.
func BenchmarkExtractDiff(b *testing.B) {
	for _, spec := range languages {
		for _, sz := range sizes {
			src := spec.gen(sz.lines)
			b.Run(spec.name+"/"+sz.name, func(b *testing.B) {
				store, mgr := setupBench(b)
				uri := protocol.DocumentURI("file:///bench" + spec.ext)
				openBench(store, spec, uri, src)
				tree := mgr.GetTree(uri)
				tr := document.NewTranslator(src)

				var d highlight.Differ
				snap, _ := highlight.Extract(tree.Root(), tree.Classifier()).Project(tr, 0)
				d.Diff(snap, nil)

				b.ReportAllocs()
				b.SetBytes(int64(len(src)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					snap, _ := highlight.Extract(tree.Root(), tree.Classifier()).Project(tr, 0)
					var enc *bracket.Pair
					if p, ok := bracket.Enclosing(snap.Pairs, len(src)/2); ok {
						enc = &p
					}
					d.Diff(snap, enc)
				}
			})
		}
	}
}

// BenchmarkFindPairs measures the lexer-only path on the same sources.
func BenchmarkFindPairs(b *testing.B) {
	for _, spec := range languages {
		src := spec.gen(5000)
		b.Run(spec.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				bracket.FindPairs(src)
			}
		})
	}
}
