package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes image files into image.Image values.
type ImageLoader struct{}

func (ImageLoader) Extensions() []string {
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}
}

func (ImageLoader) Load(_ context.Context, data []byte, lc *LoadContext) (*LoadedAsset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", lc.Path(), err)
	}
	lc.Logger().Debug("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return &LoadedAsset{Value: img}, nil
}

// RawAsset holds the undecoded bytes of a file.
type RawAsset struct {
	Data []byte
}

// RawLoader stores files as RawAsset. It is meant as a fallback loader for
// files whose content is decoded elsewhere.
type RawLoader struct{}

func (RawLoader) Extensions() []string {
	return nil
}

func (RawLoader) Load(_ context.Context, data []byte, _ *LoadContext) (*LoadedAsset, error) {
	return &LoadedAsset{Value: RawAsset{Data: bytes.Clone(data)}}, nil
}
