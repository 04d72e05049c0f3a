// Package material synthesizes and converts the face texture: a procedural
// skin raster built from the detected skin tone, decoding of textures
// supplied by the detection service, and encoding for embedding.
package material

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Raster errors.
var (
	ErrEmptyRaster   = errors.New("raster has no pixels")
	ErrPixelLength   = errors.New("pixel buffer length mismatch")
	ErrDecode        = errors.New("texture decode failed")
	ErrEncode        = errors.New("texture encode failed")
	ErrUnknownFormat = errors.New("unknown texture format")
	ErrTooLarge      = errors.New("texture dimensions too large")
)

// RasterImage is a plain RGBA pixel buffer, 4 bytes per pixel, rows top to bottom.
type RasterImage struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a zeroed width x height raster.
func NewRaster(width, height int) *RasterImage {
	return &RasterImage{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Validate checks that the buffer holds exactly Width*Height pixels.
func (r *RasterImage) Validate() error {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return ErrEmptyRaster
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrPixelLength, len(r.Pix), r.Width, r.Height)
	}
	return nil
}

// RGBA returns the pixel at (x, y).
func (r *RasterImage) RGBA(x, y int) color.NRGBA {
	i := (y*r.Width + x) * 4
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Set stores the pixel at (x, y).
func (r *RasterImage) Set(x, y int, c color.NRGBA) {
	i := (y*r.Width + x) * 4
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
	r.Pix[i+3] = c.A
}

// NRGBA returns an image.NRGBA view sharing the raster's pixel buffer.
func (r *RasterImage) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// FromImage copies any image into a new raster.
func FromImage(src image.Image) *RasterImage {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &RasterImage{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}
