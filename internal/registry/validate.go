package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
)

// Validate performs a strict consistency check of everything registered. It
// reports every registration failure, every feature a format declares that
// was never registered, and every format without block types, in one error.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, err := range r.configErrs {
		errs = append(errs, err.Error())
	}

	for _, p := range r.formats {
		for _, name := range p.Features() {
			if _, ok := r.featureNames[name]; !ok {
				errs = append(errs, fmt.Sprintf("format '%s' declares unknown feature '%s'", p.Name(), name))
			}
		}
		if len(r.byFormatCommand[p.Name()]) == 0 {
			errs = append(errs, fmt.Sprintf("format '%s' registers no block types", p.Name()))
		}
	}

	for name := range r.byFormatCommand {
		if _, ok := r.formatNames[name]; !ok {
			logger.Warn("Block types registered for a format without a plugin.", "format", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.",
		"formats", len(r.formats), "features", len(r.features), "block_types", len(r.blockTypes))
	return nil
}

// ConfigErrors returns the registration failures recorded so far.
func (r *Registry) ConfigErrors() error {
	return errors.Join(r.configErrs...)
}
