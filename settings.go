package hilite

import (
	"errors"
	"log/slog"
)

// SettingsFiles are the workspace files settings are read from, in order
// of preference.
var SettingsFiles = []string{".hilite.toml", ".hilite.yaml", ".hilite.yml", ".hilite.json"}

// SettingsSection is the key editor settings are nested under in
// workspace/didChangeConfiguration.
const SettingsSection = "hilite"

// Settings are the user-facing switches of a server.
type Settings struct {
	SyntaxHighlight  bool `toml:"syntax_highlight" yaml:"syntax_highlight" json:"syntaxHighlight"`
	EnclosingBracket bool `toml:"enclosing_bracket" yaml:"enclosing_bracket" json:"enclosingBracket"`
	BracketHighlight bool `toml:"bracket_highlight" yaml:"bracket_highlight" json:"bracketHighlight"`
	MaxDocumentBytes int  `toml:"max_document_bytes" yaml:"max_document_bytes" json:"maxDocumentBytes"`
	FallbackLexer    bool `toml:"fallback_lexer" yaml:"fallback_lexer" json:"fallbackLexer"`
}

// DefaultSettings returns everything on, with a 2 MiB document limit.
func DefaultSettings() Settings {
	return Settings{
		SyntaxHighlight:  true,
		EnclosingBracket: true,
		BracketHighlight: true,
		MaxDocumentBytes: 2 << 20,
		FallbackLexer:    true,
	}
}

var errNegativeLimit = errors.New("max_document_bytes must not be negative")

// Validate implements config.Validatable.
func (s *Settings) Validate() error {
	if s.MaxDocumentBytes < 0 {
		return errNegativeLimit
	}
	return nil
}

// EngineOptions translates s into engine options.
func (s *Settings) EngineOptions(logger *slog.Logger) []EngineOption {
	opts := []EngineOption{
		WithSyntaxHighlight(s.SyntaxHighlight),
		WithEnclosing(s.EnclosingBracket),
		WithBracketHighlight(s.BracketHighlight),
		WithMaxBytes(s.MaxDocumentBytes),
	}
	if logger != nil {
		opts = append(opts, WithEngineLogger(logger))
	}
	return opts
}
