package project

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/milk9111/ldtkloader/assets"
	"github.com/milk9111/ldtkloader/ldtk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestServer(source fstest.MapFS, features Features) *assets.Server {
	s := assets.NewServer(source, assets.WithFallbackLoader(assets.RawLoader{}))
	s.Register(assets.ImageLoader{})
	s.Register(NewLoader(features))
	return s
}

func loadProject(t *testing.T, s *assets.Server, p string) *Project {
	t.Helper()
	h, err := s.Load(context.Background(), p)
	require.NoError(t, err)
	proj, ok := assets.Get(s, assets.Typed[*Project](h))
	require.True(t, ok)
	return proj
}

func TestServerLoadsInternalProject(t *testing.T) {
	source := fstest.MapFS{
		"levels/world.ldtk":            {Data: []byte(internalProject)},
		"levels/tilesets/cavernas.png": {Data: testPNG(t, 16, 8)},
		"levels/backgrounds/sky.png":   {Data: testPNG(t, 4, 4)},
	}
	s := newTestServer(source, DefaultFeatures())

	proj := loadProject(t, s, projectPath)

	tileset, ok := proj.TilesetHandle(1)
	require.True(t, ok)
	img, ok := assets.Get(s, tileset)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	meta, ok := proj.LevelMetadataByIid("lvl-0")
	require.True(t, ok)
	require.NotNil(t, meta.BgImage)
	assert.Equal(t, assets.Loaded, s.State(meta.BgImage.Untyped()))

	grid, ok := proj.IntGridImage()
	require.True(t, ok)
	gridImg, ok := assets.Get(s, grid)
	require.True(t, ok)
	assert.Equal(t, 3, gridImg.Bounds().Dx())

	h, err := s.Load(context.Background(), "levels/world.ldtk#int_grid_image")
	require.NoError(t, err)
	assert.Equal(t, grid.Untyped(), h)

	assert.Len(t, s.Dependencies(assets.NewUntypedHandle(assets.NewAssetPath(projectPath))), 2)
}

func TestServerLoadsExternalProject(t *testing.T) {
	source := fstest.MapFS{
		"levels/world.ldtk":          {Data: []byte(externalProject)},
		"levels/bg.png":              {Data: testPNG(t, 2, 2)},
		"levels/world/Level_0.ldtkl": {Data: []byte(`{"iid": "lvl-0", "layerInstances": []}`)},
		"levels/world/Level_1.ldtkl": {Data: []byte(`{"iid": "lvl-1", "layerInstances": []}`)},
	}
	s := newTestServer(source, DefaultFeatures())

	proj := loadProject(t, s, projectPath)

	parent, ok := proj.Parent()
	require.True(t, ok)
	for _, h := range parent.ExternalHandles() {
		assert.Equal(t, assets.Loaded, s.State(h.Untyped()), h.String())
		raw, ok := assets.Get(s, assets.Typed[assets.RawAsset](h.Untyped()))
		require.True(t, ok)
		assert.NotEmpty(t, raw.Data)
	}
}

func TestServerFailsOnMissingDependency(t *testing.T) {
	source := fstest.MapFS{
		"levels/world.ldtk":          {Data: []byte(internalProject)},
		"levels/backgrounds/sky.png": {Data: testPNG(t, 4, 4)},
	}
	s := newTestServer(source, DefaultFeatures())

	_, err := s.Load(context.Background(), projectPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cavernas.png")

	h := assets.NewHandle[*Project](assets.NewAssetPath(projectPath))
	assert.Equal(t, assets.Failed, s.State(h.Untyped()))
	_, ok := assets.Get(s, h)
	assert.False(t, ok)
}

func TestServerReportsLoaderErrors(t *testing.T) {
	source := fstest.MapFS{
		"levels/world.ldtk": {Data: []byte(externalProject)},
	}
	s := newTestServer(source, Features{InternalLevels: true})

	_, err := s.Load(context.Background(), projectPath)
	require.ErrorIs(t, err, ErrExternalLevelsDisabled)
}

func TestServerReloadReplacesProject(t *testing.T) {
	oneLevel := `{"externalLevels": false, "defs": {}, "levels": [
		{"iid": "a", "layerInstances": []}
	]}`
	twoLevels := `{"externalLevels": false, "defs": {}, "levels": [
		{"iid": "a", "layerInstances": []},
		{"iid": "b", "layerInstances": []}
	]}`
	source := fstest.MapFS{
		"levels/world.ldtk": {Data: []byte(oneLevel)},
	}
	s := newTestServer(source, DefaultFeatures())

	before := loadProject(t, s, projectPath)
	assert.Equal(t, 1, ldtk.LevelCount(before))

	source["levels/world.ldtk"] = &fstest.MapFile{Data: []byte(twoLevels)}
	require.NoError(t, s.Reload(context.Background(), projectPath))

	after := loadProject(t, s, projectPath)
	assert.NotSame(t, before, after)
	assert.Equal(t, []string{"a", "b"}, after.AsStandalone().Iids())
}
