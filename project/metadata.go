package project

import (
	"image"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/ldtk"
)

// LevelMetadata is the data derived for each level while loading a project.
type LevelMetadata struct {
	// BgImage is nil when the level has no background image.
	BgImage *assets.Handle[image.Image]
	Indices ldtk.LevelIndices
}

func (m LevelMetadata) metadata() LevelMetadata {
	return m
}

// ExternalLevel is the asset produced from a separate level file. This
// package only ever holds handles to it and registers no loader for it: the
// handle resolves with assets.Get only once the host registers an
// assets.Loader for "ldtkl" files that produces ExternalLevel values. With
// assets.RawLoader as fallback the files load as assets.RawAsset instead.
type ExternalLevel struct {
	Level ldtk.LoadedLevel
}

// ExternalLevelMetadata is LevelMetadata for projects that store each level in
// its own file.
type ExternalLevelMetadata struct {
	LevelMetadata
	// ExternalHandle points at the level file. See ExternalLevel for when it
	// resolves.
	ExternalHandle assets.Handle[ExternalLevel]
}

type metadataCarrier interface {
	metadata() LevelMetadata
}

// LevelMetadataAccessor looks up level metadata by level iid.
type LevelMetadataAccessor interface {
	LevelMetadataByIid(iid string) (LevelMetadata, bool)
}

// LevelAccessor combines raw level access with level metadata.
type LevelAccessor interface {
	ldtk.RawLevelAccessor
	LevelMetadataAccessor
}

// RawLevelByIid returns the raw level with the given iid using the indices
// stored in its metadata.
func RawLevelByIid(a LevelAccessor, iid string) (*ldtk.Level, bool) {
	meta, ok := a.LevelMetadataByIid(iid)
	if !ok {
		return nil, false
	}
	return ldtk.RawLevelAt(a, meta.Indices)
}
