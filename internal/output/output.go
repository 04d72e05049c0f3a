// Package output writes generated avatars to disk.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/facegen/internal/pipeline"
)

// ErrEmptyName is returned when the avatar name is blank or contains a path
// separator.
var ErrEmptyName = errors.New("invalid avatar name")

// Paths lists the files written for one avatar.
type Paths struct {
	GLB      string
	Metadata string // empty when metadata is not written
}

// WriteAvatar writes <dir>/<name>.glb and, if withMetadata is set,
// <dir>/<name>.json. Each file is written to a temporary sibling and renamed
// into place, so readers never observe a partial file.
func WriteAvatar(dir, name string, res *pipeline.Result, withMetadata bool) (Paths, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Paths{}, fmt.Errorf("%w: %q", ErrEmptyName, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	p := Paths{GLB: filepath.Join(dir, name+".glb")}
	if err := writeAtomic(p.GLB, res.GLB); err != nil {
		return Paths{}, err
	}

	if withMetadata {
		data, err := json.MarshalIndent(res.Metadata, "", "  ")
		if err != nil {
			return Paths{}, fmt.Errorf("marshal metadata: %w", err)
		}
		p.Metadata = filepath.Join(dir, name+".json")
		if err := writeAtomic(p.Metadata, append(data, '\n')); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

// NameFor derives the avatar name from an input file path: "in/alice.json"
// becomes "alice".
func NameFor(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
