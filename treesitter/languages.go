package treesitter

import (
	"sync"
	"unsafe"

	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/gossip-lsp/hilite/syntax"
)

// Language is a grammar plus what hilite needs to classify its nodes.
type Language struct {
	Name    string
	Grammar *tree_sitter.Language

	// Kinds maps node types to normalized kinds. Named nodes missing from
	// the table are KindOther; anonymous nodes fall back to the generic
	// token rules in kindOf.
	Kinds map[string]syntax.Kind

	// Highlights is a tree-sitter query whose capture names are mapped
	// with syntax.TagForCapture. It may be empty.
	Highlights string
}

var goKinds = map[string]syntax.Kind{
	"comment":                    syntax.KindComment,
	"interpreted_string_literal": syntax.KindString,
	"raw_string_literal":         syntax.KindString,
	"rune_literal":               syntax.KindString,
	"escape_sequence":            syntax.KindEscape,
	"int_literal":                syntax.KindNumber,
	"float_literal":              syntax.KindNumber,
	"imaginary_literal":          syntax.KindNumber,
	"true":                       syntax.KindConstant,
	"false":                      syntax.KindConstant,
	"nil":                        syntax.KindConstant,
	"iota":                       syntax.KindConstant,
	"identifier":                 syntax.KindIdentifier,
	"type_identifier":            syntax.KindType,
	"field_identifier":           syntax.KindProperty,
	"package_identifier":         syntax.KindIdentifier,
	"label_name":                 syntax.KindLabel,
}

const goHighlights = `
(call_expression function: (identifier) @function)
(call_expression function: (selector_expression field: (field_identifier) @function.method))
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function.method)
(type_spec name: (type_identifier) @type.definition)
`

var jsonKinds = map[string]syntax.Kind{
	"comment":         syntax.KindComment,
	"string":          syntax.KindString,
	"escape_sequence": syntax.KindEscape,
	"number":          syntax.KindNumber,
	"true":            syntax.KindConstant,
	"false":           syntax.KindConstant,
	"null":            syntax.KindConstant,
}

const jsonHighlights = `
(pair key: (string) @property)
`

var pythonKinds = map[string]syntax.Kind{
	"comment":         syntax.KindComment,
	"string":          syntax.KindString,
	"escape_sequence": syntax.KindEscape,
	"integer":         syntax.KindNumber,
	"float":           syntax.KindNumber,
	"true":            syntax.KindConstant,
	"false":           syntax.KindConstant,
	"none":            syntax.KindConstant,
	"identifier":      syntax.KindIdentifier,
	"type":            syntax.KindType,
}

const pythonHighlights = `
(function_definition name: (identifier) @function)
(class_definition name: (identifier) @type)
(call function: (identifier) @function.call)
(call function: (attribute attribute: (identifier) @function.method))
(attribute attribute: (identifier) @property)
(decorator (identifier) @function)
`

var yamlKinds = map[string]syntax.Kind{
	"comment":             syntax.KindComment,
	"double_quote_scalar": syntax.KindString,
	"single_quote_scalar": syntax.KindString,
	"block_scalar":        syntax.KindString,
	"escape_sequence":     syntax.KindEscape,
	"integer_scalar":      syntax.KindNumber,
	"float_scalar":        syntax.KindNumber,
	"boolean_scalar":      syntax.KindConstant,
	"null_scalar":         syntax.KindConstant,
	"anchor_name":         syntax.KindLabel,
	"alias_name":          syntax.KindLabel,
	"tag":                 syntax.KindType,
	"-":                   syntax.KindPunctuation,
	"---":                 syntax.KindPunctuation,
}

const yamlHighlights = `
(block_mapping_pair key: (flow_node) @property)
(flow_pair key: (flow_node) @property)
`

var (
	goLanguage = sync.OnceValue(func() *Language {
		return &Language{
			Name:       "go",
			Grammar:    tree_sitter.NewLanguage(unsafe.Pointer(ts_go.Language())),
			Kinds:      goKinds,
			Highlights: goHighlights,
		}
	})
	jsonLanguage = sync.OnceValue(func() *Language {
		return &Language{
			Name:       "json",
			Grammar:    tree_sitter.NewLanguage(unsafe.Pointer(ts_json.Language())),
			Kinds:      jsonKinds,
			Highlights: jsonHighlights,
		}
	})
	pythonLanguage = sync.OnceValue(func() *Language {
		return &Language{
			Name:       "python",
			Grammar:    tree_sitter.NewLanguage(unsafe.Pointer(ts_python.Language())),
			Kinds:      pythonKinds,
			Highlights: pythonHighlights,
		}
	})
	yamlLanguage = sync.OnceValue(func() *Language {
		return &Language{
			Name:       "yaml",
			Grammar:    tree_sitter.NewLanguage(unsafe.Pointer(ts_yaml.Language())),
			Kinds:      yamlKinds,
			Highlights: yamlHighlights,
		}
	})
)

// Go returns the built-in Go language.
func Go() *Language { return goLanguage() }

// JSON returns the built-in JSON language.
func JSON() *Language { return jsonLanguage() }

// Python returns the built-in Python language.
func Python() *Language { return pythonLanguage() }

// YAML returns the built-in YAML language.
func YAML() *Language { return yamlLanguage() }

// BuiltinMatchers returns matchers for every built-in language.
func BuiltinMatchers() []LanguageMatcher {
	return []LanguageMatcher{
		{Language: Go(), Extensions: []string{".go"}, LanguageID: "go"},
		{Language: JSON(), Extensions: []string{".json"}, Filenames: []string{".prettierrc", ".babelrc"}, LanguageID: "json"},
		{Language: Python(), Extensions: []string{".py", ".pyi"}, LanguageID: "python"},
		{Language: YAML(), Extensions: []string{".yaml", ".yml"}, LanguageID: "yaml"},
	}
}
