package material

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/Faultbox/facegen/internal/avatarerr"
)

// Format is the image encoding used when embedding a texture.
type Format string

// Embeddable formats.
const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat parses a format name. The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatWebP:
		return FormatWebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// MimeType returns the MIME type written into the glTF image.
func (f Format) MimeType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatWebP {
		return ".webp"
	}
	return ".png"
}

// Encode encodes img in format f.
func (f Format) Encode(img *RasterImage) ([]byte, error) {
	switch f {
	case FormatWebP:
		return EncodeWebP(img)
	case FormatPNG, "":
		return EncodePNG(img)
	}
	return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f)))
}

// EncodePNG encodes the raster as PNG.
func EncodePNG(img *RasterImage) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.NRGBA()); err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: png: %v", ErrEncode, err))
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes the raster as lossless WebP.
func EncodeWebP(img *RasterImage) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, err)
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img.NRGBA(), nil); err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: webp: %v", ErrEncode, err))
	}
	return buf.Bytes(), nil
}

// MaxTexturePixels bounds the declared area of a supplied texture. Larger
// headers are rejected before any pixel data is decoded.
const MaxTexturePixels = 8192 * 8192

const tgaHeaderLen = 18

// DecodeTexture decodes a supplied texture (PNG, JPEG, BMP, WebP or TGA) and
// resamples it to size x size. A size of 0 keeps the source dimensions.
// Failures are resource errors: callers drop the texture and carry on.
func DecodeTexture(data []byte, size int) (*RasterImage, error) {
	if len(data) == 0 {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: empty input", ErrDecode))
	}
	format := SniffFormat(data)
	cfg, err := decodeConfig(data, format)
	if err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: %s: %v", ErrDecode, format, err))
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxTexturePixels {
		return nil, avatarerr.Resource(avatarerr.StageMaterial,
			fmt.Errorf("%w: %w: %s %dx%d", ErrDecode, ErrTooLarge, format, cfg.Width, cfg.Height))
	}
	src, err := decode(data, format)
	if err != nil {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: %s: %v", ErrDecode, format, err))
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, avatarerr.Resource(avatarerr.StageMaterial, fmt.Errorf("%w: empty image", ErrDecode))
	}
	if size <= 0 || (b.Dx() == size && b.Dy() == size) {
		return FromImage(src), nil
	}
	return Resize(src, size, size), nil
}

// SniffFormat guesses the image format from its leading bytes. TGA has no
// signature, so anything unrecognised is reported as "tga".
func SniffFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	}
	return "tga"
}

func decodeConfig(data []byte, format string) (image.Config, error) {
	r := bytes.NewReader(data)
	switch format {
	case "png":
		return png.DecodeConfig(r)
	case "jpeg":
		return jpeg.DecodeConfig(r)
	case "bmp":
		return bmp.DecodeConfig(r)
	case "webp":
		return webp.DecodeConfig(r)
	}
	// TGA: width and height are little-endian uint16 at offsets 12 and 14.
	if len(data) < tgaHeaderLen {
		return image.Config{}, fmt.Errorf("tga header: %d bytes", len(data))
	}
	return image.Config{
		Width:  int(binary.LittleEndian.Uint16(data[12:14])),
		Height: int(binary.LittleEndian.Uint16(data[14:16])),
	}, nil
}

func decode(data []byte, format string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "png":
		return png.Decode(r)
	case "jpeg":
		return jpeg.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return tga.Decode(r)
	}
}

// Resize resamples src to width x height with Catmull-Rom filtering.
func Resize(src image.Image, width, height int) *RasterImage {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &RasterImage{Width: width, Height: height, Pix: dst.Pix}
}
