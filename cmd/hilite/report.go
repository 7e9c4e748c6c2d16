package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf16"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gossip-lsp/hilite"
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/fallback"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/region"
	"github.com/gossip-lsp/hilite/syntax"
	"github.com/gossip-lsp/hilite/treesitter"
)

var (
	reportFormat   string
	reportLanguage string
	reportCursor   int
	blocksHilite   bool
)

var pairsCmd = &cobra.Command{
	Use:   "pairs FILE",
	Short: "List the bracket pairs of a file",
	Long:  "Match the brackets of FILE with the lexer alone. Strings and comments are not skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPairs,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE",
	Short: "Print the highlight entries of a file",
	Long: `Parse FILE with its tree-sitter grammar, or the chroma lexer when it has
none, and print every entry a host would be asked to add on first sight.`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlight,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks FILE",
	Short: "List the code blocks of a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocks,
}

func init() {
	for _, c := range []*cobra.Command{pairsCmd, highlightCmd, blocksCmd} {
		c.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	}
	highlightCmd.Flags().StringVarP(&reportLanguage, "language", "l", "", "Language id, overriding the file extension")
	highlightCmd.Flags().IntVar(&reportCursor, "cursor", -1, "Cursor offset in UTF-16 units; marks the enclosing pair")
	blocksCmd.Flags().BoolVar(&blocksHilite, "highlight", false, "Also print the entries of each block")
}

// palette maps tags to colors. Tags without an entry print plain.
var palette = map[syntax.Tag]*color.Color{
	syntax.TagComment:   color.New(color.FgHiBlack),
	syntax.TagString:    color.New(color.FgGreen),
	syntax.TagEscape:    color.New(color.FgHiGreen),
	syntax.TagNumber:    color.New(color.FgHiMagenta),
	syntax.TagKeyword:   color.New(color.Bold, color.FgBlue),
	syntax.TagConstant:  color.New(color.FgMagenta),
	syntax.TagFunction:  color.New(color.FgHiBlue),
	syntax.TagType:      color.New(color.FgCyan),
	syntax.TagProperty:  color.New(color.FgHiCyan),
	syntax.TagError:     color.New(color.FgRed),
	syntax.TagParen:     color.New(color.FgYellow),
	syntax.TagBracket:   color.New(color.FgHiYellow),
	syntax.TagBrace:     color.New(color.FgHiRed),
	syntax.TagEnclosing: color.New(color.Bold, color.BgYellow, color.FgBlack),
}

func paint(tag syntax.Tag, s string) string {
	if c, ok := palette[tag]; ok {
		return c.Sprint(s)
	}
	return s
}

func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPairs(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(); err != nil {
		return err
	}
	text, err := readInput(args[0])
	if err != nil {
		return err
	}
	pairs := bracket.FindPairs(text)
	if reportFormat == "json" {
		if pairs == nil {
			pairs = []bracket.Pair{}
		}
		return writeJSON(cmd.OutOrStdout(), pairs)
	}
	printPairs(cmd.OutOrStdout(), pairs)
	return nil
}

func printPairs(w io.Writer, pairs []bracket.Pair) {
	for _, p := range pairs {
		tag := highlight.PairTag(p.Kind)
		fmt.Fprintf(w, "%*s%s %d..%d (units %d..%d)\n",
			2*p.Depth, "", paint(tag, p.Kind.String()),
			p.Open.Byte, p.Close.Byte, p.Open.Unit, p.Close.Unit)
	}
	fmt.Fprintf(w, "%d pairs\n", len(pairs))
}

// parser builds tree sources for one-shot reports.
type parser struct {
	mgr      *treesitter.Manager
	fallback bool
}

func newParser(settings hilite.Settings) *parser {
	return &parser{
		mgr:      treesitter.NewManager(treesitter.DefaultConfig(), document.NewStore(), treesitter.WithManagerLogger(newLogger(os.Stderr))),
		fallback: settings.FallbackLexer,
	}
}

// source returns a tree for text, named by filename or languageID. The
// release func frees the tree-sitter tree, if any.
func (p *parser) source(text, filename, languageID string) (hilite.TreeSource, func()) {
	if lang, err := p.mgr.Registry().LanguageForURI(filename, languageID); err == nil {
		if tree, err := p.mgr.Parse(lang, text); err == nil {
			return tree, tree.Close
		}
	}
	if !p.fallback {
		return nil, func() {}
	}
	return fallback.New(text, filename, languageID), func() {}
}

func (p *parser) Close() { p.mgr.Close() }

func runHighlight(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(); err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	p := newParser(settings)
	defer p.Close()
	src, release := p.source(text, args[0], reportLanguage)
	defer release()

	eng := hilite.NewEngine(src, settings.EngineOptions(newLogger(os.Stderr))...)
	cs := eng.ComputeHighlights(0, reportCursor)
	if reportFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), cs.Adds)
	}
	printEntries(cmd.OutOrStdout(), text, 0, cs.Adds)
	return nil
}

// printEntries prints entries with the text they cover. base is the unit
// offset of text's start.
func printEntries(w io.Writer, text string, base int, entries []highlight.Entry) {
	units := utf16.Encode([]rune(text))
	for _, e := range entries {
		from, to := e.From-base, e.To-base
		snippet := ""
		if from >= 0 && to <= len(units) && from <= to {
			snippet = string(utf16.Decode(units[from:to]))
		}
		fmt.Fprintf(w, "%6d..%-6d %s %q\n", e.From, e.To, paint(e.Tag, fmt.Sprintf("%-12s", e.Tag)), snippet)
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
}

type blockReport struct {
	Language string            `json:"language"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Entries  []highlight.Entry `json:"entries,omitempty"`
}

func runBlocks(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(); err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	p := newParser(settings)
	defer p.Close()

	blocks := region.Find(text)
	reports := make([]blockReport, 0, len(blocks))
	for _, b := range blocks {
		r := blockReport{Language: b.Language, Start: b.Start, End: b.End}
		if blocksHilite {
			src, release := p.source(b.Content, "", b.Language)
			eng := hilite.NewEngine(src, append(settings.EngineOptions(nil), hilite.WithEnclosing(false))...)
			r.Entries = eng.ComputeHighlights(b.Start, b.Start).Adds
			release()
		}
		reports = append(reports, r)
	}

	out := cmd.OutOrStdout()
	if reportFormat == "json" {
		return writeJSON(out, reports)
	}
	for i, r := range reports {
		lang := r.Language
		if lang == "" {
			lang = "(none)"
		}
		fmt.Fprintf(out, "%s %s units %d..%d\n", color.New(color.Bold).Sprintf("block %d", i+1), lang, r.Start, r.End)
		if blocksHilite {
			printEntries(out, blocks[i].Content, blocks[i].Start, r.Entries)
		}
	}
	return nil
}
