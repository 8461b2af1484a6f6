package gfx

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/segment"
	"golang.org/x/image/colornames"
	"golang.org/x/image/tiff"
)

// DefaultBoxColor is used for box outlines if no color is configured.
var DefaultBoxColor color.Color = colornames.Yellow

// ParseColor looks up an SVG color name, e.g. "yellow" or "orangered".
func ParseColor(name string) (color.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultBoxColor, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, core.Error(core.EINVALID, "unknown color name %q", name)
}

// DrawBoxes copies img to an RGBA image and draws the outline of every box
// onto it.
func DrawBoxes(img image.Image, boxes []segment.Box, c color.Color) *image.RGBA {
	if c == nil {
		c = DefaultBoxColor
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for _, box := range boxes {
		drawRectOutline(out, box, c)
	}
	return out
}

func drawRectOutline(img *image.RGBA, box segment.Box, c color.Color) {
	for x := box.X0; x <= box.X1; x++ {
		img.Set(x, box.Y0, c)
		img.Set(x, box.Y1, c)
	}
	for y := box.Y0; y <= box.Y1; y++ {
		img.Set(box.X0, y, c)
		img.Set(box.X1, y, c)
	}
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	return save(path, img, png.Encode)
}

// SaveTIFF writes img as a deflate-compressed TIFF file.
func SaveTIFF(path string, img image.Image) error {
	return save(path, img, func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	})
}

func save(path string, img image.Image, encode func(io.Writer, image.Image) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("cannot encode %s: %w", filepath.Base(path), err)
	}
	tracer().Debugf("wrote image %s", path)
	return f.Close()
}
