package ldtk

import (
	"errors"
	"fmt"
	"iter"
)

// LevelIndices locates a raw level inside a project. World is -1 for levels
// stored at the project root.
type LevelIndices struct {
	World int
	Level int
}

// InRoot returns the indices of the level-th root level.
func InRoot(level int) LevelIndices {
	return LevelIndices{World: -1, Level: level}
}

// InWorld returns the indices of the level-th level of the world-th world.
func InWorld(world, level int) LevelIndices {
	return LevelIndices{World: world, Level: level}
}

// InRootLevels reports whether the indices point at a root level.
func (i LevelIndices) InRootLevels() bool {
	return i.World < 0
}

func (i LevelIndices) String() string {
	if i.InRootLevels() {
		return fmt.Sprintf("root[%d]", i.Level)
	}
	return fmt.Sprintf("world[%d].level[%d]", i.World, i.Level)
}

// RawLevelAccessor gives access to the raw levels of a project, whether or not
// their layer data is present.
type RawLevelAccessor interface {
	RawWorlds() []World
	RootLevels() []Level
}

// RawLevelsWithIndices yields every raw level in document order: root levels
// first, then the levels of each world.
func RawLevelsWithIndices(a RawLevelAccessor) iter.Seq2[LevelIndices, *Level] {
	return func(yield func(LevelIndices, *Level) bool) {
		root := a.RootLevels()
		for i := range root {
			if !yield(InRoot(i), &root[i]) {
				return
			}
		}
		worlds := a.RawWorlds()
		for w := range worlds {
			levels := worlds[w].Levels
			for i := range levels {
				if !yield(InWorld(w, i), &levels[i]) {
					return
				}
			}
		}
	}
}

// RawLevels yields every raw level in document order.
func RawLevels(a RawLevelAccessor) iter.Seq[*Level] {
	return func(yield func(*Level) bool) {
		for _, lvl := range RawLevelsWithIndices(a) {
			if !yield(lvl) {
				return
			}
		}
	}
}

// LevelCount returns the number of raw levels, root and world levels combined.
func LevelCount(a RawLevelAccessor) int {
	n := len(a.RootLevels())
	for _, w := range a.RawWorlds() {
		n += len(w.Levels)
	}
	return n
}

// RawLevelAt returns the raw level at the given indices.
func RawLevelAt(a RawLevelAccessor, indices LevelIndices) (*Level, bool) {
	levels := a.RootLevels()
	if !indices.InRootLevels() {
		worlds := a.RawWorlds()
		if indices.World >= len(worlds) {
			return nil, false
		}
		levels = worlds[indices.World].Levels
	}
	if indices.Level < 0 || indices.Level >= len(levels) {
		return nil, false
	}
	return &levels[indices.Level], true
}

// ErrNullLayerInstances is returned when a level is expected to be loaded but
// carries no layer instances.
var ErrNullLayerInstances = errors.New("ldtk: level has null layer instances")

// LoadedLevel is a raw level that is guaranteed to carry its layer instances.
type LoadedLevel struct {
	raw *Level
}

// NewLoadedLevel wraps lvl, failing if its layer instances are absent.
func NewLoadedLevel(lvl *Level) (LoadedLevel, error) {
	if lvl == nil || lvl.LayerInstances == nil {
		return LoadedLevel{}, ErrNullLayerInstances
	}
	return LoadedLevel{raw: lvl}, nil
}

// Raw returns the underlying raw level.
func (l LoadedLevel) Raw() *Level {
	return l.raw
}

func (l LoadedLevel) Iid() string {
	return l.raw.Iid
}

func (l LoadedLevel) LayerInstances() []LayerInstance {
	return *l.raw.LayerInstances
}

// LayerByIdentifier returns the first layer instance with the given identifier.
func (l LoadedLevel) LayerByIdentifier(identifier string) (*LayerInstance, bool) {
	layers := *l.raw.LayerInstances
	for i := range layers {
		if layers[i].Identifier == identifier {
			return &layers[i], true
		}
	}
	return nil, false
}
