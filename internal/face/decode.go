package face

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/facegen/internal/avatarerr"
)

// DecodeInput reads and validates a face input document.
func DecodeInput(r io.Reader) (*Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, avatarerr.Input(avatarerr.StageDecode, fmt.Errorf("parsing face input: %w", err))
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// LoadInput reads a face input document from path.
func LoadInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := DecodeInput(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// DecodeClothing reads and validates a clothing classification document.
func DecodeClothing(r io.Reader) (*Clothing, error) {
	var c Clothing
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, avatarerr.Input(avatarerr.StageDecode, fmt.Errorf("parsing clothing: %w", err))
	}
	style, err := ParseStyle(string(c.Style))
	if err != nil {
		return nil, avatarerr.Input(avatarerr.StageDecode, err)
	}
	c.Style = style
	return &c, nil
}

// LoadClothing reads a clothing classification document from path.
func LoadClothing(path string) (*Clothing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := DecodeClothing(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
