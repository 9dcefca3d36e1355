// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"image/color"

	"github.com/specialistvlad/scratchkit/internal/media"
)

// Costume is a named image a Scriptable can show.
type Costume struct {
	Name  string
	Image *media.Image
	// RotationCenter is relative to the top-left of the image.
	RotationCenter Point
}

// NewCostume builds a costume rotating around the centre of img.
func NewCostume(name string, img *media.Image) (*Costume, error) {
	w, h, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("costume %q: %w", name, err)
	}
	return &Costume{
		Name:           name,
		Image:          img,
		RotationCenter: Point{X: float64(w) / 2, Y: float64(h) / 2},
	}, nil
}

// Copy returns a copy sharing the immutable image.
func (c *Costume) Copy() *Costume {
	out := *c
	return &out
}

func (c *Costume) String() string { return fmt.Sprintf("Costume(%q)", c.Name) }

// BlankCostume returns the placeholder used when a Scriptable has no
// costume: a white stage-sized backdrop for the Stage, and a single black
// pixel for a Sprite.
func BlankCostume(s Scriptable) *Costume {
	if _, ok := s.(*Stage); ok {
		img := media.Solid(StageWidth, StageHeight, color.White)
		return &Costume{Name: "blank", Image: img, RotationCenter: Point{X: StageWidth / 2, Y: StageHeight / 2}}
	}
	return &Costume{Name: "blank", Image: media.Solid(1, 1, color.Black)}
}

// Sound is a named waveform.
type Sound struct {
	Name     string
	Waveform *media.Waveform
}

// NewSound builds a sound.
func NewSound(name string, w *media.Waveform) *Sound {
	return &Sound{Name: name, Waveform: w}
}

// Copy returns a copy sharing the immutable waveform.
func (s *Sound) Copy() *Sound {
	out := *s
	return &out
}

func (s *Sound) String() string { return fmt.Sprintf("Sound(%q)", s.Name) }
