package protocol

// LSP method constants.
const (
	// Lifecycle
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"
	MethodSetTrace    = "$/setTrace"

	// Text document sync
	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidClose  = "textDocument/didClose"

	// Workspace
	MethodDidChangeConfiguration = "workspace/didChangeConfiguration"

	// Server -> client notifications
	MethodLogMessage  = "window/logMessage"
	MethodShowMessage = "window/showMessage"

	// hilite
	MethodBracketPairs     = "hilite/bracketPairs"
	MethodHighlights       = "hilite/highlights"
	MethodEnclosingBracket = "hilite/enclosingBracket"
	MethodReset            = "hilite/reset"
	MethodCodeBlocks       = "hilite/codeBlocks"
	MethodStats            = "hilite/stats"
)

// HiliteMethods lists the hilite/* requests in the order they are
// advertised.
var HiliteMethods = []string{
	MethodBracketPairs,
	MethodHighlights,
	MethodEnclosingBracket,
	MethodReset,
	MethodCodeBlocks,
	MethodStats,
}
