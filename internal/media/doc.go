// Package media provides the immutable image and sound values costumes and
// sounds are made of, plus a content-addressed store format plugins use to
// deduplicate assets.
//
// # Laziness
//
// Media values are cheap to create. Raw bytes are read from disk, and pixels
// decoded, on first access only, and the result is cached for the lifetime of
// the value. Every transformation (Convert, Resize, Rasterize) returns a new
// value; nothing ever changes a materialized value in place, so a value can be
// shared freely between copies of a project and between goroutines.
//
// # Formats
//
// Raster images are PNG, JPEG, GIF and BMP. SVG images are vector data: their
// natural size is read from the view box, and pixels are only available after
// an explicit Rasterize. Sounds are WAV files whose sample rate and sample
// count are read from the header without decoding the samples.
package media
