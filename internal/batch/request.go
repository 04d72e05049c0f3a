package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/pipeline"
)

// ClothingSuffix marks a clothing classification file that sits next to a
// face input: alice.json pairs with alice.clothing.json.
const ClothingSuffix = ".clothing.json"

// textureExts are tried, in order, for a texture file next to a face input.
var textureExts = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tga"}

// IsInput reports whether path names a face input document.
func IsInput(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json") &&
		!strings.HasSuffix(strings.ToLower(path), ClothingSuffix)
}

// Collect returns the face inputs in dir, sorted by name.
func Collect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsInput(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadRequest reads a face input and its optional clothing and texture
// siblings.
func LoadRequest(path string) (pipeline.Request, error) {
	in, err := face.LoadInput(path)
	if err != nil {
		return pipeline.Request{}, err
	}
	req := pipeline.Request{Face: in}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	clothing, err := face.LoadClothing(stem + ClothingSuffix)
	switch {
	case err == nil:
		req.Clothing = clothing
	case !errors.Is(err, fs.ErrNotExist):
		return pipeline.Request{}, err
	}

	for _, ext := range textureExts {
		data, err := os.ReadFile(stem + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("read texture: %w", err)
		}
		req.Texture = data
		break
	}
	return req, nil
}

// ErrSameDir is returned when avatars would be written into the input
// directory, where their metadata files would be read back as inputs.
var ErrSameDir = errors.New("output directory must differ from input directory")

// CheckDirs rejects an output directory equal to the input directory.
func CheckDirs(inputDir, outputDir string) error {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	if in == out {
		return fmt.Errorf("%w: %s", ErrSameDir, in)
	}
	return nil
}

// InputFor maps a changed file to the face input it belongs to: the file
// itself for an input, or the sibling input for a clothing or texture file.
// It returns "" when the file is unrelated.
func InputFor(path string) string {
	if IsInput(path) {
		return path
	}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ClothingSuffix) {
		return path[:len(path)-len(ClothingSuffix)] + ".json"
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range textureExts {
		if ext == e {
			return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		}
	}
	return ""
}
