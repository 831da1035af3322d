package project

import (
	"context"
	"fmt"
	"image"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/ldtk"
)

// Features selects which level storage layouts a Loader accepts.
type Features struct {
	InternalLevels bool
	ExternalLevels bool
}

func DefaultFeatures() Features {
	return Features{InternalLevels: true, ExternalLevels: true}
}

// Loader is the assets.Loader for LDtk project files. It keeps no state
// between loads.
type Loader struct {
	Features Features
}

func NewLoader(features Features) *Loader {
	return &Loader{Features: features}
}

func (*Loader) Extensions() []string {
	return []string{ldtk.Extension}
}

func (l *Loader) Load(_ context.Context, data []byte, lc *assets.LoadContext) (*assets.LoadedAsset, error) {
	p, deps, err := l.LoadProject(data, lc)
	if err != nil {
		return nil, err
	}
	return &assets.LoadedAsset{Value: p, Dependencies: deps}, nil
}

// ResolveRelPath anchors a path found inside a project file at the directory
// holding the project file.
func ResolveRelPath(projectPath assets.AssetPath, rel string) assets.AssetPath {
	return projectPath.Resolve(rel)
}

// LoadProject parses a project file and returns the project together with
// the paths of every file it depends on, in document order. Paths may repeat.
func (l *Loader) LoadProject(data []byte, lc *assets.LoadContext) (*Project, []assets.AssetPath, error) {
	doc, err := ldtk.ParseDocument(data)
	if err != nil {
		return nil, nil, &ParseError{Path: lc.Path(), Err: err}
	}

	var deps []assets.AssetPath

	tilesetMap := make(map[int]assets.Handle[image.Image])
	for _, tileset := range doc.Defs.Tilesets {
		switch {
		case tileset.RelPath != nil:
			p := ResolveRelPath(lc.Path(), *tileset.RelPath)
			deps = append(deps, p)
			tilesetMap[tileset.UID] = assets.GetHandle[image.Image](lc, p)
		case tileset.EmbedAtlas != nil:
			lc.Logger().Warn("ignoring LDtk's internal icons, they cannot be displayed due to their license", "tileset", tileset.Identifier)
		default:
			lc.Logger().Warn("tileset cannot be loaded, it has a null relative path", "tileset", tileset.Identifier)
		}
	}

	for _, layer := range doc.Defs.Layers {
		if layer.Type != ldtk.LayerTypeIntGrid {
			continue
		}
		for _, v := range layer.IntGridValues {
			if !v.InPalette() {
				lc.Logger().Warn("int grid value is left out of the int grid image, it is outside the palette range",
					"layer", layer.Identifier, "value", v.Value, "max", ldtk.MaxIntGridPaletteValue)
			}
		}
	}

	var intGridImage *assets.Handle[image.Image]
	if img, ok := doc.Defs.IntGridImage(); ok {
		h := assets.Typed[image.Image](lc.SetLabeledAsset(ldtk.IntGridImageLabel, img))
		intGridImage = &h
	}

	var pd ProjectData
	if doc.ExternalLevels {
		if !l.Features.ExternalLevels {
			return nil, nil, ErrExternalLevelsDisabled
		}
		levels, levelDeps, err := buildLevelMap(lc, doc, func(indices ldtk.LevelIndices, level *ldtk.Level) (levelMetadataResult[ExternalLevelMetadata], error) {
			return loadExternalLevelMetadata(lc, indices, level)
		})
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, levelDeps...)
		pd = &ParentProject{WithMetadata: newWithMetadata(doc, levels)}
	} else {
		if !l.Features.InternalLevels {
			return nil, nil, ErrInternalLevelsDisabled
		}
		levels, levelDeps, err := buildLevelMap(lc, doc, func(indices ldtk.LevelIndices, level *ldtk.Level) (levelMetadataResult[LevelMetadata], error) {
			return loadLevelMetadata(lc, indices, level, true)
		})
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, levelDeps...)
		pd = &StandaloneProject{WithMetadata: newWithMetadata(doc, levels)}
	}

	return NewProject(pd, tilesetMap, intGridImage), deps, nil
}

type levelMetadataResult[L any] struct {
	metadata L
	deps     []assets.AssetPath
}

func buildLevelMap[L metadataCarrier](
	lc *assets.LoadContext,
	doc *ldtk.Document,
	build func(ldtk.LevelIndices, *ldtk.Level) (levelMetadataResult[L], error),
) (map[string]L, []assets.AssetPath, error) {
	levels := make(map[string]L)
	var deps []assets.AssetPath
	for indices, level := range ldtk.RawLevelsWithIndices(doc) {
		res, err := build(indices, level)
		if err != nil {
			return nil, nil, fmt.Errorf("project: level %q at %s: %w", level.Iid, indices, err)
		}
		if prev, ok := levels[level.Iid]; ok {
			lc.Logger().Warn("duplicate level iid, the later level replaces the earlier one",
				"iid", level.Iid, "replaced", prev.metadata().Indices.String(), "by", indices.String())
		}
		levels[level.Iid] = res.metadata
		deps = append(deps, res.deps...)
	}
	return levels, deps, nil
}

func loadLevelMetadata(lc *assets.LoadContext, indices ldtk.LevelIndices, level *ldtk.Level, expectLoaded bool) (levelMetadataResult[LevelMetadata], error) {
	if expectLoaded && level.LayerInstances == nil {
		return levelMetadataResult[LevelMetadata]{}, ErrInternalLevelWithNullLayers
	}

	var deps []assets.AssetPath
	var bgImage *assets.Handle[image.Image]
	if level.BgRelPath != nil {
		p := ResolveRelPath(lc.Path(), *level.BgRelPath)
		h := assets.GetHandle[image.Image](lc, p)
		bgImage = &h
		deps = append(deps, p)
	}

	return levelMetadataResult[LevelMetadata]{
		metadata: LevelMetadata{BgImage: bgImage, Indices: indices},
		deps:     deps,
	}, nil
}

func loadExternalLevelMetadata(lc *assets.LoadContext, indices ldtk.LevelIndices, level *ldtk.Level) (levelMetadataResult[ExternalLevelMetadata], error) {
	res, err := loadLevelMetadata(lc, indices, level, false)
	if err != nil {
		return levelMetadataResult[ExternalLevelMetadata]{}, err
	}

	if level.ExternalRelPath == nil {
		return levelMetadataResult[ExternalLevelMetadata]{}, ErrExternalLevelWithNullPath
	}
	p := ResolveRelPath(lc.Path(), *level.ExternalRelPath)

	return levelMetadataResult[ExternalLevelMetadata]{
		metadata: ExternalLevelMetadata{
			LevelMetadata:  res.metadata,
			ExternalHandle: assets.GetHandle[ExternalLevel](lc, p),
		},
		deps: append(res.deps, p),
	}, nil
}
