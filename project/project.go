package project

import (
	"image"
	"maps"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/ldtk"
)

// Project is a loaded LDtk project.
//
// Raw levels, which may lack layer data, are available on every project
// through the ldtk.RawLevelAccessor methods and RawLevelByIid. Complete
// levels depend on how the project stores them. Projects that keep levels
// inside the project file are standalone projects, see AsStandalone. Projects
// that store each level in its own file are parent projects, see AsParent;
// their level content lives in separate ExternalLevel assets.
type Project struct {
	data         ProjectData
	tilesetMap   map[int]assets.Handle[image.Image]
	intGridImage *assets.Handle[image.Image]
}

func NewProject(data ProjectData, tilesetMap map[int]assets.Handle[image.Image], intGridImage *assets.Handle[image.Image]) *Project {
	return &Project{data: data, tilesetMap: tilesetMap, intGridImage: intGridImage}
}

func (p *Project) Data() ProjectData {
	return p.data
}

// Document returns the raw project document.
func (p *Project) Document() *ldtk.Document {
	return p.data.Document()
}

func (p *Project) RawWorlds() []ldtk.World {
	return p.data.RawWorlds()
}

func (p *Project) RootLevels() []ldtk.Level {
	return p.data.RootLevels()
}

func (p *Project) LevelMetadataByIid(iid string) (LevelMetadata, bool) {
	return p.data.LevelMetadataByIid(iid)
}

// TilesetMap returns a copy of the tileset uid to image handle map.
func (p *Project) TilesetMap() map[int]assets.Handle[image.Image] {
	return maps.Clone(p.tilesetMap)
}

func (p *Project) TilesetHandle(uid int) (assets.Handle[image.Image], bool) {
	h, ok := p.tilesetMap[uid]
	return h, ok
}

// IntGridImage returns the handle of the int grid palette image, if the
// project defines any IntGrid layer.
func (p *Project) IntGridImage() (assets.Handle[image.Image], bool) {
	if p.intGridImage == nil {
		return assets.Handle[image.Image]{}, false
	}
	return *p.intGridImage, true
}

// Standalone returns the project's data if its levels are stored internally.
func (p *Project) Standalone() (*StandaloneProject, bool) {
	s, ok := p.data.(*StandaloneProject)
	return s, ok
}

// Parent returns the project's data if its levels are stored externally.
func (p *Project) Parent() (*ParentProject, bool) {
	s, ok := p.data.(*ParentProject)
	return s, ok
}

// AsStandalone is Standalone for callers that know the project uses internal
// levels. It panics otherwise.
func (p *Project) AsStandalone() *StandaloneProject {
	s, ok := p.Standalone()
	if !ok {
		panic("project: AsStandalone called on a project with external levels")
	}
	return s
}

// AsParent is Parent for callers that know the project uses external levels.
// It panics otherwise.
func (p *Project) AsParent() *ParentProject {
	s, ok := p.Parent()
	if !ok {
		panic("project: AsParent called on a project with internal levels")
	}
	return s
}
