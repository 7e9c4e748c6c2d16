// Package hilite is an incremental bracket-matching and highlight-diffing
// engine for code editors, plus a JSON-RPC server that hosts it.
//
// The core is Engine: it extracts tagged spans and bracket pairs from a
// syntax tree, finds the pair enclosing the cursor, and diffs each
// snapshot against the last one so the editor repaints only what changed.
//
//	e := hilite.NewEngine(tree)
//	changes := e.ComputeHighlights(0, cursor)
//
// Server wraps one Engine per open document behind hilite/* requests:
//
//	s := hilite.NewServer("hilite", "0.1.0")
//	hilite.Serve(s, hilite.WithStdio())
package hilite
