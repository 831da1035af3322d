package project

import (
	"iter"
	"maps"
	"slices"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/ldtk"
)

// WithMetadata pairs a parsed project document with the metadata of each of
// its levels, keyed by level iid.
type WithMetadata[L metadataCarrier] struct {
	doc    *ldtk.Document
	levels map[string]L
}

func newWithMetadata[L metadataCarrier](doc *ldtk.Document, levels map[string]L) WithMetadata[L] {
	return WithMetadata[L]{doc: doc, levels: levels}
}

func (w *WithMetadata[L]) Document() *ldtk.Document {
	return w.doc
}

func (w *WithMetadata[L]) RawWorlds() []ldtk.World {
	return w.doc.RawWorlds()
}

func (w *WithMetadata[L]) RootLevels() []ldtk.Level {
	return w.doc.RootLevels()
}

func (w *WithMetadata[L]) LevelMetadataByIid(iid string) (LevelMetadata, bool) {
	m, ok := w.levels[iid]
	if !ok {
		return LevelMetadata{}, false
	}
	return m.metadata(), true
}

// LevelMap returns a copy of the iid to metadata index.
func (w *WithMetadata[L]) LevelMap() map[string]L {
	return maps.Clone(w.levels)
}

// Iids returns the indexed level iids in sorted order.
func (w *WithMetadata[L]) Iids() []string {
	return slices.Sorted(maps.Keys(w.levels))
}

// ProjectData is the level data of a loaded project. It is either a
// *StandaloneProject or a *ParentProject.
type ProjectData interface {
	LevelAccessor
	Document() *ldtk.Document
	isProjectData()
}

// StandaloneProject is the data of a project whose levels are stored inside
// the project file.
type StandaloneProject struct {
	WithMetadata[LevelMetadata]
}

func (*StandaloneProject) isProjectData() {}

// LoadedLevelByIid returns the complete level with the given iid.
func (p *StandaloneProject) LoadedLevelByIid(iid string) (ldtk.LoadedLevel, bool) {
	raw, ok := RawLevelByIid(p, iid)
	if !ok {
		return ldtk.LoadedLevel{}, false
	}
	lvl, err := ldtk.NewLoadedLevel(raw)
	return lvl, err == nil
}

// LoadedLevels yields every level in document order.
func (p *StandaloneProject) LoadedLevels() iter.Seq[ldtk.LoadedLevel] {
	return func(yield func(ldtk.LoadedLevel) bool) {
		for raw := range ldtk.RawLevels(p) {
			lvl, err := ldtk.NewLoadedLevel(raw)
			if err != nil {
				continue
			}
			if !yield(lvl) {
				return
			}
		}
	}
}

// ParentProject is the data of a project whose levels are stored in separate
// level files.
type ParentProject struct {
	WithMetadata[ExternalLevelMetadata]
}

func (*ParentProject) isProjectData() {}

func (p *ParentProject) ExternalLevelMetadataByIid(iid string) (ExternalLevelMetadata, bool) {
	m, ok := p.levels[iid]
	return m, ok
}

// ExternalHandles returns the handles of the level files in document order.
func (p *ParentProject) ExternalHandles() []assets.Handle[ExternalLevel] {
	var handles []assets.Handle[ExternalLevel]
	for raw := range ldtk.RawLevels(p) {
		if m, ok := p.levels[raw.Iid]; ok {
			handles = append(handles, m.ExternalHandle)
		}
	}
	return handles
}
