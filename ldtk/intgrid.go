package ldtk

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/colornames"
)

// IntGridImageLabel is the label of the int grid palette image inside a
// loaded project.
const IntGridImageLabel = "int_grid_image"

// MaxIntGridPaletteValue is the largest int grid value that fits in a
// paletted image next to the transparent entry.
const MaxIntGridPaletteValue = 254

// InPalette reports whether v can be drawn by IntGridImage.
func (v IntGridValueDefinition) InPalette() bool {
	return v.Value >= 0 && v.Value <= MaxIntGridPaletteValue
}

// IntGridImage builds a one-pixel-high indexed-color image in which pixel x
// has the color of int grid value x. Pixel colors that no definition covers,
// value 0 included, are transparent. Values outside 0..MaxIntGridPaletteValue
// are left out. It returns false when the definitions contain no IntGrid layer.
func (d *Definitions) IntGridImage() (*image.Paletted, bool) {
	hasIntGrid := false
	colors := make(map[int]color.RGBA)
	for _, layer := range d.Layers {
		if layer.Type != LayerTypeIntGrid {
			continue
		}
		hasIntGrid = true
		for _, v := range layer.IntGridValues {
			if !v.InPalette() {
				continue
			}
			if _, seen := colors[v.Value]; !seen {
				colors[v.Value] = parseHexColor(v.Color)
			}
		}
	}
	if !hasIntGrid {
		return nil, false
	}

	values := make([]int, 0, len(colors))
	for v := range colors {
		values = append(values, v)
	}
	slices.Sort(values)

	width := 1
	if len(values) > 0 {
		width = values[len(values)-1] + 1
	}

	palette := color.Palette{color.RGBA{}}
	img := image.NewPaletted(image.Rect(0, 0, width, 1), palette)
	for _, v := range values {
		img.Palette = append(img.Palette, colors[v])
		img.SetColorIndex(v, 0, uint8(len(img.Palette)-1))
	}
	return img, true
}

// parseHexColor parses a color in the form #rrggbb. Colors that fail to parse
// come back as opaque magenta so they stand out.
func parseHexColor(s string) color.RGBA {
	if len(s) == 7 && s[0] == '#' {
		var ri, gi, bi uint32
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &ri, &gi, &bi); err == nil {
			return color.RGBA{R: uint8(ri), G: uint8(gi), B: uint8(bi), A: 0xff}
		}
	}
	return colornames.Magenta
}
