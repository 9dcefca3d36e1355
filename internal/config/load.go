package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load decodes the settings file at path. Keys the File type does not know
// are rejected, so typos do not go unnoticed.
func Load(path string) (*File, error) {
	f := &File{}
	meta, err := toml.DecodeFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in settings file '%s': %s", path, strings.Join(keys, ", "))
	}
	f.resolvePaths(filepath.Dir(path))
	return f, nil
}

// LoadOptional is Load for a file that may not exist, in which case an
// empty File is returned.
func LoadOptional(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}
	return f, err
}

// Discover loads FileName from dir, if present.
func Discover(dir string) (*File, error) {
	return LoadOptional(filepath.Join(dir, FileName))
}

// resolvePaths makes relative paths relative to the settings file rather
// than the working directory.
func (f *File) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	f.OutputDir = abs(f.OutputDir)
	for name, dir := range f.Manifests {
		f.Manifests[name] = abs(dir)
	}
}
