package hilite

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gossip-lsp/hilite/config"
)

// settingsHolder wires the config package to the server: a store read by
// every request, a bridge merging the workspace file with editor settings,
// and a watcher reloading the file.
type settingsHolder struct {
	store  *config.Store[Settings]
	bridge *config.Bridge[Settings]

	// file is an explicit settings path; empty means search the workspace.
	file string

	mu      sync.Mutex
	watcher *config.Watcher
}

func newSettingsHolder(defaults Settings) *settingsHolder {
	initial := defaults
	h := &settingsHolder{store: config.NewComparableStore(&initial)}
	h.bridge = config.NewBridge(h.store, "", &defaults, SettingsSection)
	return h
}

// setDefaults replaces the defaults before the server starts.
func (h *settingsHolder) setDefaults(defaults Settings) {
	initial := defaults
	h.store.Swap(&initial)
	h.bridge = config.NewBridge(h.store, h.file, &defaults, SettingsSection)
}

// start loads the settings file of rootDir and watches it. Failures are
// logged; the server runs on defaults without a readable file.
func (h *settingsHolder) start(logger *slog.Logger, rootDir string) {
	path := h.file
	if path == "" {
		path = config.Find(rootDir, SettingsFiles...)
	}
	if path == "" {
		path = filepath.Join(rootDir, SettingsFiles[0])
	}

	if err := h.bridge.SetFile(path); err != nil {
		logger.Warn("failed to load settings", "path", path, "error", err)
	}

	w, err := config.NewWatcher(path, func() {
		if err := h.bridge.Reload(); err != nil {
			logger.Warn("failed to reload settings", "path", path, "error", err)
		}
	}, config.WithWatcherLogger(logger))
	if err != nil {
		logger.Warn("failed to start settings watcher", "path", path, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		h.watcher.Close()
	}
	h.watcher = w
}

func (h *settingsHolder) apply(raw json.RawMessage) error {
	return h.bridge.Apply(raw)
}

func (h *settingsHolder) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		h.watcher.Close()
		h.watcher = nil
	}
}
