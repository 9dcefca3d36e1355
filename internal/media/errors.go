package media

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when bytes match no supported media format.
var ErrUnknownFormat = errors.New("unknown media format")

// VectorRasterizationError is returned when pixels are requested from a
// vector image. Call Rasterize first.
type VectorRasterizationError struct {
	Format string
}

func (e *VectorRasterizationError) Error() string {
	return fmt.Sprintf("cannot read pixels of %s vector image: rasterize it first", e.Format)
}
