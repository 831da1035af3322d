package assets

import (
	"path"
	"path/filepath"
	"strings"
)

// AssetPath identifies an asset by its slash-separated path inside the asset
// source, plus an optional label naming a sub-asset produced while loading
// that file.
type AssetPath struct {
	Path  string
	Label string
}

// NewAssetPath returns the unlabeled asset path for p.
func NewAssetPath(p string) AssetPath {
	return AssetPath{Path: cleanAssetPath(p)}
}

// ParseAssetPath parses "dir/file.ext" or "dir/file.ext#label".
func ParseAssetPath(s string) AssetPath {
	p, label, _ := strings.Cut(s, "#")
	return AssetPath{Path: cleanAssetPath(p), Label: label}
}

func (p AssetPath) String() string {
	if p.Label == "" {
		return p.Path
	}
	return p.Path + "#" + p.Label
}

func (p AssetPath) WithLabel(label string) AssetPath {
	return AssetPath{Path: p.Path, Label: label}
}

func (p AssetPath) WithoutLabel() AssetPath {
	return AssetPath{Path: p.Path}
}

// Dir returns the directory holding the asset's file.
func (p AssetPath) Dir() string {
	return path.Dir(p.Path)
}

// Ext returns the lower-cased file extension without the leading dot.
func (p AssetPath) Ext() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p.Path), "."))
}

// Resolve anchors rel at the directory of p's file.
func (p AssetPath) Resolve(rel string) AssetPath {
	return NewAssetPath(path.Join(p.Dir(), filepath.ToSlash(rel)))
}

func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(s, "/")
}
