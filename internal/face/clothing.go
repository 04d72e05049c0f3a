package face

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RGB is an 8-bit color. It travels as a "#rrggbb" string in JSON.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses "#rrggbb" or "rrggbb".
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the "#rrggbb" form.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Linear returns the color as an opaque RGBA factor in [0,1].
func (c RGB) Linear() [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
}

// Scale multiplies each channel by f, clamped to [0,255].
func (c RGB) Scale(f float64) RGB {
	return RGB{R: clampByte(float64(c.R) * f), G: clampByte(float64(c.G) * f), B: clampByte(float64(c.B) * f)}
}

func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *RGB) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrBadColor, data)
	}
	parsed, err := ParseRGB(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Style is the clothing style reported by the classifier. Each style selects
// exactly one decoration set.
type Style string

// Clothing styles.
const (
	StyleMinimalist Style = "minimalist"
	StylePreppy     Style = "preppy"
	StyleCasual     Style = "casual"
	StyleClassic    Style = "classic"
)

// ParseStyle validates s.
func ParseStyle(s string) (Style, error) {
	switch style := Style(strings.ToLower(strings.TrimSpace(s))); style {
	case StyleMinimalist, StylePreppy, StyleCasual, StyleClassic:
		return style, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// Clothing is the clothing classifier's output.
type Clothing struct {
	PrimaryColor   RGB   `json:"primaryColor"`
	SecondaryColor RGB   `json:"secondaryColor"`
	Style          Style `json:"style"`
}

// DefaultClothing is used when no classification is available.
func DefaultClothing() Clothing {
	return Clothing{
		PrimaryColor:   RGB{R: 0x4a, G: 0x5a, B: 0x6e},
		SecondaryColor: RGB{R: 0xe0, G: 0xe0, B: 0xe0},
		Style:          StyleMinimalist,
	}
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
