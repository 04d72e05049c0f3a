package material

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image/color"
	"testing"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/face"
)

var skin = face.SkinTone{R: 200, G: 150, B: 120, Confidence: 0.9}

func TestSynthesizeDeterministic(t *testing.T) {
	a := Synthesize(skin, 64, NewRNG(42))
	b := Synthesize(skin, 64, NewRNG(42))
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("same seed produced different textures")
	}

	c := Synthesize(skin, 64, NewRNG(43))
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds produced identical textures")
	}
}

func TestSynthesizeDimensions(t *testing.T) {
	img := Synthesize(skin, 32, NewRNG(1))
	if img.Width != 32 || img.Height != 32 {
		t.Errorf("size = %dx%d, want 32x32", img.Width, img.Height)
	}
	if err := img.Validate(); err != nil {
		t.Fatal(err)
	}

	def := Synthesize(skin, 0, NewRNG(1))
	if def.Width != DefaultSize || def.Height != DefaultSize {
		t.Errorf("default size = %dx%d, want %d", def.Width, def.Height, DefaultSize)
	}
}

func TestSynthesizeChannelRange(t *testing.T) {
	img := Synthesize(skin, 64, NewRNG(7))
	base := [3]int{int(skin.R), int(skin.G), int(skin.B)}

	varied := false
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := int(img.Pix[i+c])
			hi := base[c] + NoiseAmplitude
			lo := int(float64(base[c])*BlemishShade) - NoiseAmplitude - 1
			if v > hi || v < lo {
				t.Fatalf("pixel %d channel %d = %d, want in [%d, %d]", i/4, c, v, lo, hi)
			}
			if v != base[c] {
				varied = true
			}
		}
		if img.Pix[i+3] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i/4, img.Pix[i+3])
		}
	}
	if !varied {
		t.Error("no noise applied")
	}
}

func TestSynthesizeClamps(t *testing.T) {
	img := Synthesize(face.SkinTone{R: 255, G: 0, B: 3}, 64, NewRNG(3))

	sawMaxR, sawMinG := false, false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			sawMaxR = true
		}
		if img.Pix[i+1] == 0 {
			sawMinG = true
		}
		if img.Pix[i+1] > NoiseAmplitude {
			t.Fatalf("G = %d exceeds noise amplitude", img.Pix[i+1])
		}
	}
	if !sawMaxR || !sawMinG {
		t.Errorf("expected clamped channels: R=255 seen %v, G=0 seen %v", sawMaxR, sawMinG)
	}
}

func TestStampFalloff(t *testing.T) {
	img := NewRaster(11, 11)
	flat := color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	for y := 0; y < 11; y++ {
		for x := 0; x < 11; x++ {
			img.Set(x, y, flat)
		}
	}
	stamp(img, 5, 5, 3, [3]float64{0, 0, 0})

	if got := img.RGBA(5, 5); got.R != 50 || got.A != 255 {
		t.Errorf("centre = %v, want R=50 A=255", got)
	}
	if got := img.RGBA(6, 5); got.R <= 50 || got.R >= 100 {
		t.Errorf("ring = %v, want between centre and base", got)
	}
	if got := img.RGBA(8, 5); got != flat {
		t.Errorf("rim = %v, want untouched %v", got, flat)
	}
	if got := img.RGBA(0, 0); got != flat {
		t.Errorf("corner = %v, want untouched", got)
	}
}

func TestStampClipsToBounds(t *testing.T) {
	img := NewRaster(4, 4)
	stamp(img, 0, 0, 4, [3]float64{255, 255, 255})
	stamp(img, 3, 3, 4, [3]float64{255, 255, 255})
}

func TestPNGRoundTrip(t *testing.T) {
	src := Synthesize(skin, 16, NewRNG(5))
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if got := SniffFormat(data); got != "png" {
		t.Errorf("SniffFormat = %q, want png", got)
	}

	got, err := DecodeTexture(data, 0)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if got.Width != 16 || got.Height != 16 {
		t.Fatalf("size = %dx%d", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("pixels differ after PNG round trip")
	}
}

func TestWebPRoundTrip(t *testing.T) {
	src := Synthesize(skin, 16, NewRNG(5))
	data, err := EncodeWebP(src)
	if err != nil {
		t.Fatalf("EncodeWebP: %v", err)
	}
	if got := SniffFormat(data); got != "webp" {
		t.Errorf("SniffFormat = %q, want webp", got)
	}

	got, err := DecodeTexture(data, 0)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if got.Width != 16 || got.Height != 16 {
		t.Errorf("size = %dx%d", got.Width, got.Height)
	}
}

func TestDecodeTextureResizes(t *testing.T) {
	data, err := EncodePNG(Synthesize(skin, 32, NewRNG(9)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeTexture(data, 8)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if got.Width != 8 || got.Height != 8 || len(got.Pix) != 8*8*4 {
		t.Errorf("resized to %dx%d (%d bytes)", got.Width, got.Height, len(got.Pix))
	}
}

func TestDecodeTextureFailureIsResourceError(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated png", append([]byte("\x89PNG\r\n\x1a\n"), 0, 0, 0, 13)},
		{"truncated jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTexture(tt.data, 16)
			if !errors.Is(err, avatarerr.ErrResource) {
				t.Errorf("err = %v, want resource error", err)
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGBA.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 6
	chunk := append([]byte("IHDR"), ihdr...)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, uint32(len(ihdr)))
	out = append(out, chunk...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(chunk))
}

// tgaHeader returns an uncompressed true-color TGA header declaring w x h.
func tgaHeader(w, h uint16) []byte {
	hdr := make([]byte, 18)
	hdr[2] = 2
	binary.LittleEndian.PutUint16(hdr[12:14], w)
	binary.LittleEndian.PutUint16(hdr[14:16], h)
	hdr[16] = 32
	return hdr
}

func TestDecodeTextureRejectsOversizedDimensions(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"png 16000x16000", pngHeader(16000, 16000)},
		{"png 8193x8192", pngHeader(8193, 8192)},
		{"tga 20000x20000", tgaHeader(20000, 20000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTexture(tt.data, 16)
			if got != nil {
				t.Errorf("got %dx%d raster, want nil", got.Width, got.Height)
			}
			if !errors.Is(err, avatarerr.ErrResource) {
				t.Errorf("err = %v, want resource error", err)
			}
			if !errors.Is(err, ErrDecode) || !errors.Is(err, ErrTooLarge) {
				t.Errorf("err = %v, want ErrDecode and ErrTooLarge", err)
			}
			if stage := avatarerr.StageOf(err); stage != avatarerr.StageMaterial {
				t.Errorf("stage = %v, want %v", stage, avatarerr.StageMaterial)
			}
		})
	}
}

func TestEncodeInvalidRaster(t *testing.T) {
	bad := &RasterImage{Width: 2, Height: 2, Pix: make([]byte, 3)}
	if _, err := EncodePNG(bad); !errors.Is(err, ErrPixelLength) {
		t.Errorf("EncodePNG err = %v, want ErrPixelLength", err)
	}
	if _, err := FormatWebP.Encode(bad); !errors.Is(err, avatarerr.ErrResource) {
		t.Errorf("WebP err = %v, want resource error", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"WEBP", FormatWebP, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FormatWebP.MimeType() != "image/webp" || FormatPNG.MimeType() != "image/png" {
		t.Error("unexpected MIME types")
	}
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		data []byte
		want string
	}{
		{[]byte("BM\x00\x00"), "bmp"},
		{[]byte{0xFF, 0xD8, 0xFF, 0xDB}, "jpeg"},
		{[]byte("RIFF\x00\x00\x00\x00WEBPVP8L"), "webp"},
		{[]byte{0, 0, 2, 0}, "tga"},
	}
	for _, tt := range tests {
		if got := SniffFormat(tt.data); got != tt.want {
			t.Errorf("SniffFormat(% x) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestRasterNRGBAView(t *testing.T) {
	r := NewRaster(2, 2)
	r.Set(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	if got := r.NRGBA().NRGBAAt(1, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("NRGBAAt = %v", got)
	}
	back := FromImage(r.NRGBA())
	if !bytes.Equal(back.Pix, r.Pix) {
		t.Error("FromImage changed pixels")
	}
}
