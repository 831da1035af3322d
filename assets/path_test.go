package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetPathResolve(t *testing.T) {
	cases := []struct {
		name    string
		project string
		rel     string
		want    string
	}{
		{"sibling_dir", "levels/world.ldtk", "img/bg.png", "levels/img/bg.png"},
		{"root_project", "world.ldtk", "img/bg.png", "img/bg.png"},
		{"parent_dir", "levels/world.ldtk", "../tilesets/cave.png", "tilesets/cave.png"},
		{"dot_segments", "a/b/world.ldtk", "./c/../d.png", "a/b/d.png"},
		{"same_dir", "levels/world.ldtk", "world/0000-Level_0.ldtkl", "levels/world/0000-Level_0.ldtkl"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewAssetPath(c.project).Resolve(c.rel)
			assert.Equal(t, c.want, got.Path)
			assert.Empty(t, got.Label)
		})
	}
}

func TestParseAssetPath(t *testing.T) {
	p := ParseAssetPath("levels/world.ldtk#int_grid_image")
	assert.Equal(t, "levels/world.ldtk", p.Path)
	assert.Equal(t, "int_grid_image", p.Label)
	assert.Equal(t, "levels/world.ldtk#int_grid_image", p.String())
	assert.Equal(t, "levels/world.ldtk", p.WithoutLabel().String())
	assert.Equal(t, "ldtk", p.Ext())
	assert.Equal(t, "levels", p.Dir())

	assert.Equal(t, "a/b.PNG", ParseAssetPath("/a/./b.PNG").Path)
	assert.Equal(t, "png", ParseAssetPath("a/b.PNG").Ext())
	assert.Equal(t, "", ParseAssetPath("").Path)
}

func TestHandlesAreDerivedFromPaths(t *testing.T) {
	a := NewHandle[int](NewAssetPath("levels/world.ldtk"))
	b := NewHandle[int](NewAssetPath("./levels/world.ldtk"))
	c := NewHandle[int](NewAssetPath("levels/world.ldtk").WithLabel("int_grid_image"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.ID(), c.ID())
	assert.False(t, a.IsZero())
	assert.True(t, UntypedHandle{}.IsZero())
	assert.Equal(t, a.Untyped(), Typed[int](b.Untyped()).Untyped())
	assert.Equal(t, "levels/world.ldtk#int_grid_image", c.String())
}
