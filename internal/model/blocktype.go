// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the three flavours of block type: the per-format
// PluginBlockType, the canonical BlockType that groups them, and the
// user-defined CustomBlockType.
//
// Why two levels of block types?
//
// Different generations of the authoring tool rename, add and retire blocks.
// A PluginBlockType records exactly how one format spells a block, while the
// canonical BlockType is the identity every Block points at. Conversion between
// formats is then a lookup from the canonical type to the target format's
// spelling instead of a rewrite of the script tree.
package model

import (
	"fmt"
	"slices"
	"strings"
)

// BlockShape is the outline of a block, which decides where it can connect.
type BlockShape string

const (
	StackShape    BlockShape = "stack"
	CapShape      BlockShape = "cap"
	HatShape      BlockShape = "hat"
	ReporterShape BlockShape = "reporter"
	BooleanShape  BlockShape = "boolean"
)

// Valid reports whether s is one of the known block shapes.
func (s BlockShape) Valid() bool {
	switch s {
	case StackShape, CapShape, HatShape, ReporterShape, BooleanShape:
		return true
	}
	return false
}

// Part is one element of a block's display template: either literal text or
// an Insert.
type Part struct {
	Text   string
	Insert *Insert
}

// TextPart returns a literal text Part.
func TextPart(s string) Part { return Part{Text: s} }

// InsertPart returns an argument Part.
func InsertPart(i *Insert) Part { return Part{Insert: i} }

// Type is implemented by every block type a Block can reference.
type Type interface {
	Shape() BlockShape
	Parts() []Part
	Inserts() []*Insert
	// Defaults returns a fresh slice of default arguments.
	Defaults() []any
	// Text is the display template with `%s` in place of each insert.
	Text() string
	Stringify(args []any, style RenderStyle, inInsert bool) string
	isBlockType()
}

// Resolver turns an identifier (a Type, a *PluginBlockType, a command or a
// loose text template) into a block Type.
type Resolver interface {
	Resolve(id any) (Type, error)
}

// BlockWorkaround rewrites a Block into an equivalent the target format can
// express. Returning a nil Block declines.
type BlockWorkaround func(r Resolver, b *Block) (*Block, error)

// template holds what all block types share.
type template struct {
	shape BlockShape
	parts []Part
}

func (t *template) Shape() BlockShape { return t.shape }

func (t *template) Parts() []Part { return slices.Clone(t.parts) }

func (t *template) Inserts() []*Insert { return partInserts(t.parts) }

func (t *template) Defaults() []any { return partDefaults(t.parts) }

func (t *template) Text() string { return partText(t.parts) }

func (t *template) Stringify(args []any, style RenderStyle, inInsert bool) string {
	return renderType(t.shape, t.parts, args, style, inInsert)
}

// HasInsert reports whether any insert has the given shape.
func (t *template) HasInsert(shape InsertShape) bool {
	for _, i := range partInserts(t.parts) {
		if i.Shape == shape {
			return true
		}
	}
	return false
}

func partInserts(parts []Part) []*Insert {
	var out []*Insert
	for _, p := range parts {
		if p.Insert != nil {
			out = append(out, p.Insert)
		}
	}
	return out
}

func partDefaults(parts []Part) []any {
	inserts := partInserts(parts)
	out := make([]any, len(inserts))
	for i, ins := range inserts {
		out[i] = ins.defaultValue()
	}
	return out
}

func partText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Insert != nil {
			b.WriteString("%s")
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// strippedPartText is the lookup key for loose text resolution. Inline inserts
// keep their default so `var` and `list` reporters stay addressable.
func strippedPartText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.Insert == nil:
			b.WriteString(p.Text)
		case p.Insert.Shape == InsertInline:
			b.WriteString(fmt.Sprint(p.Insert.Default))
		default:
			b.WriteString("%s")
		}
	}
	return StripText(b.String())
}

// PluginBlockType is a single format's view of a block.
type PluginBlockType struct {
	template
	// Category is the palette group, e.g. "motion" or "control".
	Category string
	// Command is the stable format-local identifier, e.g. `forward:`.
	Command string
	// Match names a command registered earlier by another format. The two
	// are merged into one canonical type.
	Match string
	// Format is the owning format name, set at registration.
	Format string
}

// NewPluginBlockType builds a PluginBlockType with no format assigned.
func NewPluginBlockType(category string, shape BlockShape, command string, parts []Part) *PluginBlockType {
	return &PluginBlockType{
		template: template{shape: shape, parts: slices.Clone(parts)},
		Category: category,
		Command:  command,
	}
}

// StrippedText is the normalized text used for loose lookups.
func (p *PluginBlockType) StrippedText() string { return strippedPartText(p.parts) }

// WithFormat returns a copy owned by the named format.
func (p *PluginBlockType) WithFormat(format string) *PluginBlockType {
	c := *p
	c.parts = slices.Clone(p.parts)
	c.Format = format
	return &c
}

// Equal compares shape, inserts, command, format and category.
func (p *PluginBlockType) Equal(o *PluginBlockType) bool {
	if p.shape != o.shape || p.Command != o.Command || p.Format != o.Format || p.Category != o.Category {
		return false
	}
	return insertsEqual(p.Inserts(), o.Inserts())
}

func (p *PluginBlockType) String() string {
	return fmt.Sprintf("%s:%s", p.Format, p.Command)
}

func (p *PluginBlockType) isBlockType() {}

func insertsEqual(a, b []*Insert) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// BlockType is the canonical, format-independent identity of a block concept.
// It maps format names to PluginBlockTypes in registration order. The first
// registered format is the default spelling.
type BlockType struct {
	formats     []string
	conversions map[string]*PluginBlockType
	// Workaround is tried by the pipeline when the target format has no
	// conversion for this type.
	Workaround BlockWorkaround
}

// NewBlockType starts a canonical type from its first specialization.
func NewBlockType(pbt *PluginBlockType) *BlockType {
	return &BlockType{
		formats:     []string{pbt.Format},
		conversions: map[string]*PluginBlockType{pbt.Format: pbt},
	}
}

// AddConversion merges another format's spelling into the type. Shape and
// the per-position insert signature must agree. A format that is already
// present is left untouched.
func (t *BlockType) AddConversion(pbt *PluginBlockType) error {
	def := t.Default()
	if def.Shape() != pbt.Shape() {
		return fmt.Errorf("block %q (%s) has shape %q, but %q (%s) has shape %q",
			pbt.Command, pbt.Format, pbt.Shape(), def.Command, def.Format, def.Shape())
	}
	ours, theirs := def.Inserts(), pbt.Inserts()
	if len(ours) != len(theirs) {
		return fmt.Errorf("block %q (%s) has %d inserts, but %q (%s) has %d",
			pbt.Command, pbt.Format, len(theirs), def.Command, def.Format, len(ours))
	}
	for i := range ours {
		if !ours[i].Compatible(theirs[i]) {
			return fmt.Errorf("block %q (%s) insert %d is %s/%q, but %q (%s) expects %s/%q",
				pbt.Command, pbt.Format, i, theirs[i].Shape, theirs[i].Kind,
				def.Command, def.Format, ours[i].Shape, ours[i].Kind)
		}
	}
	if _, ok := t.conversions[pbt.Format]; ok {
		return nil
	}
	t.formats = append(t.formats, pbt.Format)
	t.conversions[pbt.Format] = pbt
	return nil
}

// Default returns the first registered specialization.
func (t *BlockType) Default() *PluginBlockType {
	return t.conversions[t.formats[0]]
}

// Command is the default specialization's command.
func (t *BlockType) Command() string { return t.Default().Command }

// Convert returns the specialization for format, or the default when format
// is empty.
func (t *BlockType) Convert(format string) (*PluginBlockType, error) {
	if format == "" {
		return t.Default(), nil
	}
	if pbt, ok := t.conversions[format]; ok {
		return pbt, nil
	}
	return nil, &BlockNotSupportedError{Type: t, Format: format}
}

// Conversions returns every specialization in registration order.
func (t *BlockType) Conversions() []*PluginBlockType {
	out := make([]*PluginBlockType, 0, len(t.formats))
	for _, f := range t.formats {
		out = append(out, t.conversions[f])
	}
	return out
}

// Formats returns the names of every format that can express the type.
func (t *BlockType) Formats() []string { return slices.Clone(t.formats) }

func (t *BlockType) HasConversion(format string) bool {
	_, ok := t.conversions[format]
	return ok
}

// HasCommand reports whether any format spells the type as command.
func (t *BlockType) HasCommand(command string) bool {
	for _, pbt := range t.conversions {
		if pbt.Command == command {
			return true
		}
	}
	return false
}

func (t *BlockType) Shape() BlockShape  { return t.Default().Shape() }
func (t *BlockType) Parts() []Part      { return t.Default().Parts() }
func (t *BlockType) Inserts() []*Insert { return t.Default().Inserts() }
func (t *BlockType) Defaults() []any    { return t.Default().Defaults() }
func (t *BlockType) Text() string       { return t.Default().Text() }

func (t *BlockType) Stringify(args []any, style RenderStyle, inInsert bool) string {
	return t.Default().Stringify(args, style, inInsert)
}

func (t *BlockType) String() string {
	return fmt.Sprintf("BlockType(%q)", t.Command())
}

func (t *BlockType) isBlockType() {}

// CustomBlockType is a user-defined block. It is never registered; two
// instances are different types even when their text is identical.
type CustomBlockType struct {
	template
	// Atomic marks definitions that run without screen refresh.
	Atomic bool
}

// NewCustomBlockType builds a custom block type. Parameter names live on the
// inserts.
func NewCustomBlockType(shape BlockShape, parts []Part) *CustomBlockType {
	return &CustomBlockType{template: template{shape: shape, parts: slices.Clone(parts)}}
}

// Copy returns a new, distinct custom type with the same definition.
func (c *CustomBlockType) Copy() *CustomBlockType {
	parts := make([]Part, len(c.parts))
	for i, p := range c.parts {
		if p.Insert != nil {
			p.Insert = p.Insert.Copy()
		}
		parts[i] = p
	}
	return &CustomBlockType{template: template{shape: c.shape, parts: parts}, Atomic: c.Atomic}
}

func (c *CustomBlockType) String() string {
	return fmt.Sprintf("CustomBlockType(%q)", c.Text())
}

func (c *CustomBlockType) isBlockType() {}
