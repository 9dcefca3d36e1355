// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Block, a typed instruction or expression with bound
// arguments.
//
// Arguments are stored as `any`. The values a Block may hold are int,
// float64, string, bool, Color, *Block (a nested reporter), []*Block (the
// contents of a stack insert), *CustomBlockType (the argument of a definition
// hat) and nil (render the insert default).
package model

import (
	"reflect"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Block is an instance of a block type.
type Block struct {
	Type Type
	Args []any
	// Comment is attached text. Only top-level blocks of a script carry one.
	Comment string
}

// NewBlock resolves id through r and binds args positionally. Missing trailing
// arguments take the insert defaults; extra arguments are appended verbatim.
func NewBlock(r Resolver, id any, args ...any) (*Block, error) {
	t, ok := id.(Type)
	if !ok || isPluginType(t) {
		var err error
		if t, err = r.Resolve(id); err != nil {
			return nil, err
		}
	}
	return NewBlockOfType(t, args...), nil
}

func isPluginType(t Type) bool {
	_, ok := t.(*PluginBlockType)
	return ok
}

// NewBlockOfType binds args to an already resolved type.
func NewBlockOfType(t Type, args ...any) *Block {
	b := &Block{Type: t, Args: t.Defaults()}
	for n, arg := range args {
		if n < len(b.Args) {
			b.Args[n] = arg
		} else {
			b.Args = append(b.Args, arg)
		}
	}
	b.Normalize()
	return b
}

// Normalize pads missing arguments with defaults and coerces numeric text
// bound to number and number-menu inserts.
func (b *Block) Normalize() {
	inserts := b.Type.Inserts()
	for len(b.Args) < len(inserts) {
		b.Args = append(b.Args, inserts[len(b.Args)].defaultValue())
	}
	for n, ins := range inserts {
		if ins.Shape != InsertNumber && ins.Shape != InsertNumberMenu {
			continue
		}
		if s, ok := b.Args[n].(string); ok {
			b.Args[n] = CoerceNumber(s)
		}
	}
}

// CoerceNumber parses s as a number. Integral values become int, other
// numbers float64. Text that is not a number is returned unchanged.
func CoerceNumber(s string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}
	if n, err := safecast.Convert[int](f); err == nil {
		return n
	}
	return f
}

// Arg returns argument n, or nil when out of range.
func (b *Block) Arg(n int) any {
	if n < 0 || n >= len(b.Args) {
		return nil
	}
	return b.Args[n]
}

// Command returns the default command of a canonical type, or "" for custom
// blocks.
func (b *Block) Command() string {
	if bt, ok := b.Type.(*BlockType); ok {
		return bt.Command()
	}
	return ""
}

// Equal reports structural equality: same type and recursively equal
// arguments. Comments are not compared.
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Type != o.Type || len(b.Args) != len(o.Args) {
		return false
	}
	for n := range b.Args {
		if !valuesEqual(b.Args[n], o.Args[n]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Block:
		bv, ok := b.(*Block)
		return ok && av.Equal(bv)
	case []*Block:
		bv, ok := b.([]*Block)
		if !ok || len(av) != len(bv) {
			return false
		}
		for n := range av {
			if !av[n].Equal(bv[n]) {
				return false
			}
		}
		return true
	case int:
		if bv, ok := b.(float64); ok {
			return float64(av) == bv
		}
	case float64:
		if bv, ok := b.(int); ok {
			return av == float64(bv)
		}
	}
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Copy returns a deep copy. Block types are shared.
func (b *Block) Copy() *Block {
	return b.copyWith(nil)
}

func (b *Block) copyWith(c *copier) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Type: c.blockType(b.Type), Args: make([]any, len(b.Args)), Comment: b.Comment}
	for n, arg := range b.Args {
		out.Args[n] = copyValue(arg, c)
	}
	return out
}

func copyValue(v any, c *copier) any {
	switch v := v.(type) {
	case *Block:
		return v.copyWith(c)
	case []*Block:
		out := make([]*Block, len(v))
		for n, b := range v {
			out[n] = b.copyWith(c)
		}
		return out
	case *CustomBlockType:
		return c.custom(v)
	}
	return v
}

// Walk visits b and every Block nested in its arguments, pre-order. Returning
// false from fn skips the children of that block.
func (b *Block) Walk(fn func(*Block) bool) {
	if !fn(b) {
		return
	}
	for _, arg := range b.Args {
		switch v := arg.(type) {
		case *Block:
			v.Walk(fn)
		case []*Block:
			for _, child := range v {
				child.Walk(fn)
			}
		}
	}
}

// Stringify renders the block, appending an attached comment after the first
// line.
func (b *Block) Stringify(style RenderStyle) string {
	return b.stringify(style, false)
}

func (b *Block) stringify(style RenderStyle, inInsert bool) string {
	s := b.Type.Stringify(b.Args, style, inInsert)
	if b.Comment == "" {
		return s
	}
	i := strings.Index(s, "\n")
	if i < 0 {
		i = len(s)
	}
	indent := "\n" + strings.Repeat(" ", i) + " // "
	comment := " // " + strings.ReplaceAll(b.Comment, "\n", indent)
	return s[:i] + comment + s[i:]
}

func (b *Block) String() string {
	return b.Stringify(TextStyle)
}
