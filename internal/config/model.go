package config

// FileName is the settings file looked up in the working directory.
const FileName = "scratchkit.toml"

// File is the content of a settings file. Zero values mean "not set".
type File struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	// Workers bounds the number of projects converted at once.
	Workers int `toml:"workers"`
	// DefaultFormat is the target of batch conversions when none is given.
	DefaultFormat string `toml:"default_format"`
	// OutputDir receives converted files. Empty means next to the source.
	OutputDir string `toml:"output_dir"`
	// Manifests holds one directory of extra block manifests per format
	// name.
	Manifests map[string]string `toml:"manifests"`
}
