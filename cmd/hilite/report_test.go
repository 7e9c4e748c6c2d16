package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/syntax"
)

// setup resets the flag globals and writes name with body into a temp dir.
func setup(t *testing.T, name, body string) (string, *cobra.Command, *bytes.Buffer) {
	t.Helper()
	initConfig()
	colorMode = "never"
	reportFormat = "json"
	reportLanguage = ""
	reportCursor = -1
	blocksHilite = false

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return path, cmd, &buf
}

func TestRunPairsJSON(t *testing.T) {
	path, cmd, buf := setup(t, "a.txt", "f(a[1], {})")
	require.NoError(t, runPairs(cmd, []string{path}))

	var pairs []bracket.Pair
	require.NoError(t, json.Unmarshal(buf.Bytes(), &pairs))
	require.Len(t, pairs, 3)
	assert.Equal(t, bracket.Paren, pairs[0].Kind)
	assert.Equal(t, 1, pairs[0].Open.Byte)
	assert.Equal(t, 10, pairs[0].Close.Byte)
	assert.Equal(t, 1, pairs[1].Depth)
}

func TestRunPairsHuman(t *testing.T) {
	path, cmd, buf := setup(t, "a.txt", "([])")
	reportFormat = "human"
	require.NoError(t, runPairs(cmd, []string{path}))

	out := buf.String()
	assert.Contains(t, out, "paren 0..3")
	assert.Contains(t, out, "  bracket 1..2")
	assert.Contains(t, out, "2 pairs")
}

func TestRunPairsMissingFile(t *testing.T) {
	_, cmd, _ := setup(t, "a.txt", "")
	assert.Error(t, runPairs(cmd, []string{filepath.Join(t.TempDir(), "nope")}))
}

func TestRunHighlightTreeSitter(t *testing.T) {
	path, cmd, buf := setup(t, "doc.json", `{"a": [1]}`)
	reportCursor = 7
	require.NoError(t, runHighlight(cmd, []string{path}))

	var entries []highlight.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Contains(t, entries, highlight.Entry{From: 0, To: 1, Tag: syntax.TagBrace})
	assert.Contains(t, entries, highlight.Entry{From: 6, To: 7, Tag: syntax.TagBracket})
	assert.Contains(t, entries, highlight.Entry{From: 6, To: 7, Tag: syntax.TagEnclosing})
}

func TestRunHighlightFallback(t *testing.T) {
	path, cmd, buf := setup(t, "a.js", `f("(")`)
	require.NoError(t, runHighlight(cmd, []string{path}))

	var entries []highlight.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Contains(t, entries, highlight.Entry{From: 2, To: 5, Tag: syntax.TagString})
	assert.Contains(t, entries, highlight.Entry{From: 5, To: 6, Tag: syntax.TagParen})
}

func TestRunHighlightHuman(t *testing.T) {
	path, cmd, buf := setup(t, "a.txt", "é(x)")
	reportFormat = "human"
	require.NoError(t, runHighlight(cmd, []string{path}))

	out := buf.String()
	assert.Contains(t, out, `"("`)
	assert.Contains(t, out, `")"`)
	assert.Contains(t, out, "2 entries")
}

func TestRunBlocks(t *testing.T) {
	md := "# Title\n\n```json\n{\"a\": 1}\n```\n\ntext\n\n```\n(x)\n```\n"
	path, cmd, buf := setup(t, "README.md", md)
	blocksHilite = true
	require.NoError(t, runBlocks(cmd, []string{path}))

	var reports []blockReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "json", reports[0].Language)
	assert.Equal(t, 17, reports[0].Start)
	assert.Contains(t, reports[0].Entries, highlight.Entry{From: 17, To: 18, Tag: syntax.TagBrace})
	assert.Empty(t, reports[1].Language)
	assert.Contains(t, reports[1].Entries, highlight.Entry{From: 41, To: 42, Tag: syntax.TagParen})
}

func TestApplyColorMode(t *testing.T) {
	colorMode = "sometimes"
	assert.Error(t, applyColorMode())
	colorMode = "never"
	assert.NoError(t, applyColorMode())
}

func TestLoadSettingsFromEnv(t *testing.T) {
	initConfig()
	t.Setenv("HILITE_MAX_DOCUMENT_BYTES", "99")
	t.Setenv("HILITE_SYNTAX_HIGHLIGHT", "false")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, 99, s.MaxDocumentBytes)
	assert.False(t, s.SyntaxHighlight)
	assert.True(t, s.EnclosingBracket)

	t.Setenv("HILITE_MAX_DOCUMENT_BYTES", "-1")
	_, err = loadSettings()
	assert.Error(t, err)
}
