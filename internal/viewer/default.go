package viewer

import (
	"sync"

	"github.com/Faultbox/aowow-viewer/internal/config"
	"github.com/Faultbox/aowow-viewer/internal/lookup"
	"github.com/Faultbox/aowow-viewer/internal/pipeline"
)

var (
	defaultMu     sync.Mutex
	defaultViewer *Viewer
)

// SetDefault installs v as the package-level viewer, disposing the one it
// replaces. A nil v clears it.
func SetDefault(v *Viewer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultViewer != nil && defaultViewer != v {
		defaultViewer.Dispose()
	}
	defaultViewer = v
}

// Default returns the package-level viewer. When none is installed, or
// the installed one was disposed, a headless viewer with the default
// configuration is created.
func Default() (*Viewer, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultViewer != nil && !defaultViewer.Disposed() {
		return defaultViewer, nil
	}
	v, err := New(config.Default().Viewer, nil)
	if err != nil {
		return nil, err
	}
	defaultViewer = v
	return v, nil
}

// ShowDefault shows req on the package-level viewer.
func ShowDefault(req lookup.ModelRequest) (*pipeline.Session, error) {
	v, err := Default()
	if err != nil {
		return nil, err
	}
	return v.Show(req), nil
}

// HideDefault hides the package-level viewer's model, if there is one.
func HideDefault() {
	defaultMu.Lock()
	v := defaultViewer
	defaultMu.Unlock()
	if v != nil {
		v.Hide()
	}
}
