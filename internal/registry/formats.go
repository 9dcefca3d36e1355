package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/format"
)

// RegisterFormat adds a format plugin. Registering the same name or
// extension twice is a programmer error and panics.
func (r *Registry) RegisterFormat(p format.Plugin) {
	if _, exists := r.formatNames[p.Name()]; exists {
		panic(fmt.Sprintf("format with name '%s' already registered", p.Name()))
	}
	for _, other := range r.formats {
		if strings.EqualFold(other.Extension(), p.Extension()) {
			panic(fmt.Sprintf("format extension '%s' already registered by '%s'", p.Extension(), other.Name()))
		}
	}
	slog.Debug("Registering format.", "name", p.Name(), "extension", p.Extension())
	r.formats = append(r.formats, p)
	r.formatNames[p.Name()] = p
}

// Format returns the plugin with the given name.
func (r *Registry) Format(name string) (format.Plugin, error) {
	if p, ok := r.formatNames[name]; ok {
		return p, nil
	}
	return nil, &UnknownFormatError{Name: name}
}

// FormatByExtension returns the plugin for a file extension, with or without
// the leading dot. The match is case-insensitive.
func (r *Registry) FormatByExtension(ext string) (format.Plugin, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, p := range r.formats {
		if strings.EqualFold(p.Extension(), ext) {
			return p, nil
		}
	}
	return nil, &UnknownFormatError{Extension: ext}
}

// Formats returns every plugin in registration order.
func (r *Registry) Formats() []format.Plugin {
	return slices.Clone(r.formats)
}

// RegisterFeature adds a feature. Registering the same name twice panics.
func (r *Registry) RegisterFeature(f feature.Feature) {
	if _, exists := r.featureNames[f.Name()]; exists {
		panic(fmt.Sprintf("feature with name '%s' already registered", f.Name()))
	}
	slog.Debug("Registering feature.", "name", f.Name())
	r.features = append(r.features, f)
	r.featureNames[f.Name()] = f
}

// Feature returns the feature with the given name.
func (r *Registry) Feature(name string) (feature.Feature, bool) {
	f, ok := r.featureNames[name]
	return f, ok
}

// Features returns every feature in registration order.
func (r *Registry) Features() []feature.Feature {
	return slices.Clone(r.features)
}
