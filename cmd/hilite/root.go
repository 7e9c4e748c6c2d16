package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/gossip-lsp/hilite"
)

var (
	cfgFile   string
	verbose   bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:   "hilite",
	Short: "Incremental bracket matching and highlight diffing",
	Long: `hilite matches brackets and computes syntax highlight change sets for
editors. Run "hilite serve" to speak the hilite/* protocol over JSON-RPC, or
use the report commands to inspect a single file.

Settings come from --config, HILITE_* environment variables and, when
serving, the .hilite.toml of the workspace.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "settings file (toml, yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	defaults := hilite.DefaultSettings()
	viper.SetDefault("syntax_highlight", defaults.SyntaxHighlight)
	viper.SetDefault("enclosing_bracket", defaults.EnclosingBracket)
	viper.SetDefault("bracket_highlight", defaults.BracketHighlight)
	viper.SetDefault("max_document_bytes", defaults.MaxDocumentBytes)
	viper.SetDefault("fallback_lexer", defaults.FallbackLexer)

	viper.SetEnvPrefix("HILITE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "hilite: reading %s: %v\n", cfgFile, err)
		}
	}
}

// loadSettings resolves the settings from viper's layers.
func loadSettings() (hilite.Settings, error) {
	s := hilite.Settings{
		SyntaxHighlight:  viper.GetBool("syntax_highlight"),
		EnclosingBracket: viper.GetBool("enclosing_bracket"),
		BracketHighlight: viper.GetBool("bracket_highlight"),
		MaxDocumentBytes: viper.GetInt("max_document_bytes"),
		FallbackLexer:    viper.GetBool("fallback_lexer"),
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// applyColorMode sets color.NoColor from --color.
func applyColorMode() error {
	switch colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("unknown color mode %q", colorMode)
	}
	return nil
}
