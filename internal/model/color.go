// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value used by color inserts.
type Color struct {
	R, G, B uint8
}

// ParseColor reads a `#rgb` or `#rrggbb` hex code.
func ParseColor(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("invalid color hexcode %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color hexcode %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color hexcode %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseColor is like ParseColor but panics on malformed input. It is meant
// for package-level literals.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ColorFromRGB packs a 0xRRGGBB integer, the representation several formats
// store colors in.
func ColorFromRGB(v int) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// RGB returns the color as a 0xRRGGBB integer.
func (c Color) RGB() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// RGBA converts to the standard library color type.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// String returns the hex code, e.g. `#ff1056`.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
