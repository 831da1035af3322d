package levels

import (
	"embed"
	"io/fs"
)

// Paths of the sample projects inside Sample().
const (
	SampleProject      = "world.ldtk"
	SampleSplitProject = "split/world.ldtk"
)

//go:embed sample
var sampleFS embed.FS

// Sample returns a small LDtk project tree: world.ldtk keeps its levels
// inline inside one world, split/world.ldtk stores its level in a separate
// .ldtkl file and shares the images of the parent directory.
func Sample() fs.FS {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		panic(err)
	}
	return sub
}
