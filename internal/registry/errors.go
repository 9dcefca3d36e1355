package registry

import (
	"fmt"
	"strings"
)

// UnknownFormatError is returned when no plugin matches a name or extension.
type UnknownFormatError struct {
	Name      string
	Extension string
}

func (e *UnknownFormatError) Error() string {
	if e.Extension != "" {
		return fmt.Sprintf("no format plugin handles extension %q", e.Extension)
	}
	return fmt.Sprintf("unknown format %q", e.Name)
}

// UnknownBlockTypeError is returned when an identifier resolves to nothing.
type UnknownBlockTypeError struct {
	Identifier string
	// Suggestion is the closest known command, if any.
	Suggestion string
}

func (e *UnknownBlockTypeError) Error() string {
	msg := fmt.Sprintf("unknown block type %q", e.Identifier)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// AmbiguousBlockReferenceError is returned when loose text matches several
// canonical block types. Candidates lists the default command of each, which
// callers can use to disambiguate.
type AmbiguousBlockReferenceError struct {
	Identifier string
	Candidates []string
}

func (e *AmbiguousBlockReferenceError) Error() string {
	return fmt.Sprintf("ambiguous block %q: use one of the commands %s",
		e.Identifier, strings.Join(e.Candidates, ", "))
}

// ConfigurationError reports an inconsistent block vocabulary. It is a
// programmer error and makes Validate fail.
type ConfigurationError struct {
	Format  string
	Command string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("format %q, block %q: %v", e.Format, e.Command, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
