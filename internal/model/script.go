// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"slices"
	"strings"
)

// Point is a canvas position in pixels from the top-left corner.
type Point struct {
	X, Y float64
}

// Pt is a shorthand for &Point{x, y}.
func Pt(x, y float64) *Point { return &Point{X: x, Y: y} }

func (p *Point) copy() *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Script is a single sequence of blocks on a scripting canvas. The first
// block is usually a hat, but nothing enforces it.
type Script struct {
	Blocks []*Block
	Pos    *Point
}

// NewScript builds a script at pos, which may be nil.
func NewScript(pos *Point, blocks ...*Block) *Script {
	return &Script{Blocks: slices.Clone(blocks), Pos: pos}
}

func (s *Script) Len() int { return len(s.Blocks) }

func (s *Script) At(i int) *Block { return s.Blocks[i] }

func (s *Script) Set(i int, b *Block) { s.Blocks[i] = b }

func (s *Script) Append(blocks ...*Block) { s.Blocks = append(s.Blocks, blocks...) }

// Insert places b before index i.
func (s *Script) Insert(i int, b *Block) { s.Blocks = slices.Insert(s.Blocks, i, b) }

func (s *Script) Delete(i int) { s.Blocks = slices.Delete(s.Blocks, i, i+1) }

// Equal compares the blocks only. Positions are presentation.
func (s *Script) Equal(o *Script) bool {
	if len(s.Blocks) != len(o.Blocks) {
		return false
	}
	for i := range s.Blocks {
		if !s.Blocks[i].Equal(o.Blocks[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the script.
func (s *Script) Copy() *Script { return s.copyWith(nil) }

func (s *Script) copyWith(c *copier) *Script {
	out := &Script{Blocks: make([]*Block, len(s.Blocks)), Pos: s.Pos.copy()}
	for i, b := range s.Blocks {
		out.Blocks[i] = b.copyWith(c)
	}
	return out
}

// Walk visits every block of the script, nested arguments included, pre-order.
func (s *Script) Walk(fn func(*Block) bool) {
	for _, b := range s.Blocks {
		b.Walk(fn)
	}
}

// Stringify renders one block per line.
func (s *Script) Stringify(style RenderStyle) string {
	lines := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		lines[i] = b.Stringify(style)
	}
	return strings.Join(lines, "\n")
}

func (s *Script) String() string { return s.Stringify(TextStyle) }

// Comment is a free-floating note on the scripting canvas.
type Comment struct {
	Text string
	Pos  *Point
}

// NewComment builds a comment at pos, which may be nil.
func NewComment(text string, pos *Point) *Comment {
	return &Comment{Text: text, Pos: pos}
}

func (c *Comment) Copy() *Comment {
	return &Comment{Text: c.Text, Pos: c.Pos.copy()}
}

func (c *Comment) String() string {
	return "// " + strings.ReplaceAll(c.Text, "\n", "\n// ")
}

// sortByPosition orders items by (y, x). Items without a position keep their
// relative order after every positioned item.
func sortByPosition[T any](items []T, pos func(T) *Point) []T {
	var placed, loose []T
	for _, it := range items {
		if pos(it) != nil {
			placed = append(placed, it)
		} else {
			loose = append(loose, it)
		}
	}
	slices.SortStableFunc(placed, func(a, b T) int {
		pa, pb := pos(a), pos(b)
		switch {
		case pa.Y < pb.Y:
			return -1
		case pa.Y > pb.Y:
			return 1
		case pa.X < pb.X:
			return -1
		case pa.X > pb.X:
			return 1
		}
		return 0
	})
	return append(placed, loose...)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
