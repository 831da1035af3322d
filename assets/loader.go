package assets

import (
	"context"
	"log/slog"
	"maps"
)

// Loader turns the bytes of a file into an asset.
type Loader interface {
	// Load decodes data, the contents of the file at lc.Path().
	Load(ctx context.Context, data []byte, lc *LoadContext) (*LoadedAsset, error)
	// Extensions lists the file extensions handled, without the leading dot.
	Extensions() []string
}

// LoadedAsset is the result of a successful Load. Every dependency must be
// loaded before the asset is reported as loaded.
type LoadedAsset struct {
	Value        any
	Dependencies []AssetPath
}

// LoadContext is handed to a Loader for the duration of one load.
type LoadContext struct {
	path    AssetPath
	logger  *slog.Logger
	labeled map[string]any
}

// NewLoadContext returns a context for loading the file at p. A nil logger
// means slog.Default().
func NewLoadContext(p AssetPath, logger *slog.Logger) *LoadContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadContext{
		path:    p.WithoutLabel(),
		logger:  logger,
		labeled: make(map[string]any),
	}
}

func (lc *LoadContext) Path() AssetPath {
	return lc.path
}

func (lc *LoadContext) Logger() *slog.Logger {
	return lc.logger
}

// SetLabeledAsset registers v as the sub-asset "path#label" of the file being
// loaded and returns its handle.
func (lc *LoadContext) SetLabeledAsset(label string, v any) UntypedHandle {
	lc.labeled[label] = v
	return NewUntypedHandle(lc.path.WithLabel(label))
}

// LabeledAssets returns the sub-assets registered so far.
func (lc *LoadContext) LabeledAssets() map[string]any {
	return maps.Clone(lc.labeled)
}

// GetHandle returns the handle of the asset at p. The handle becomes usable
// once p has been loaded, which a loader requests by listing p among its
// dependencies.
func GetHandle[T any](lc *LoadContext, p AssetPath) Handle[T] {
	lc.logger.Debug("handle requested", "dependency", p.String())
	return NewHandle[T](p)
}
