// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Insert, the specification of a single argument slot on a
// block type.
//
// Why is the shape so important?
//
// The shape of an Insert decides how its argument is stored, rendered and
// coerced. Two formats can only share a canonical block type when every Insert
// position agrees on shape, menu kind and evaluation mode, so the shape is also
// the unit of the compatibility check the registry performs at startup.
package model

import (
	"slices"
	"sort"
	"strconv"
)

// InsertShape is the kind of value an Insert accepts.
type InsertShape string

const (
	InsertNumber       InsertShape = "number"
	InsertString       InsertShape = "string"
	InsertBoolean      InsertShape = "boolean"
	InsertReadonlyMenu InsertShape = "readonly-menu"
	InsertNumberMenu   InsertShape = "number-menu"
	InsertColor        InsertShape = "color"
	// InsertStack holds a sequence of stack blocks (the "mouth" of a C block).
	InsertStack InsertShape = "stack"
	// InsertInline is not a real slot. Variable and list reporters use it to
	// carry the name they read.
	InsertInline InsertShape = "inline"
	// InsertBlock is the argument of a custom block definition hat.
	InsertBlock InsertShape = "block"
)

// Valid reports whether s is one of the known insert shapes.
func (s InsertShape) Valid() bool {
	switch s {
	case InsertNumber, InsertString, InsertBoolean, InsertReadonlyMenu, InsertNumberMenu,
		InsertColor, InsertStack, InsertInline, InsertBlock:
		return true
	}
	return false
}

// Insert is the specification of one argument to a block type.
type Insert struct {
	Shape InsertShape
	// Kind restricts menu-shaped inserts to a category of values, e.g.
	// "broadcast", "costume" or "var". Empty when unrestricted.
	Kind    string
	Default any
	// Unevaluated is true when the argument is raw structure rather than a
	// value to evaluate first. Stack inserts are unevaluated.
	Unevaluated bool
	// Name is the parameter name. Only custom block types use it.
	Name string
}

// NewInsert builds an Insert, filling the shape's default when def is nil.
func NewInsert(shape InsertShape, kind string, def any) *Insert {
	if def == nil {
		def = shapeDefault(shape)
	}
	return &Insert{
		Shape:       shape,
		Kind:        kind,
		Default:     def,
		Unevaluated: shape == InsertStack,
	}
}

func shapeDefault(shape InsertShape) any {
	switch shape {
	case InsertNumber, InsertNumberMenu:
		return 0
	case InsertStack:
		return []*Block{}
	case InsertColor:
		return Color{R: 0xff}
	case InsertInline:
		return "nil"
	}
	return nil
}

// Equal compares shape, kind, default and evaluation mode. The parameter name
// is not compared.
func (i *Insert) Equal(o *Insert) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.Shape == o.Shape &&
		i.Kind == o.Kind &&
		i.Unevaluated == o.Unevaluated &&
		valuesEqual(i.Default, o.Default)
}

// Compatible is the weaker check used when two formats share a canonical type:
// defaults may differ between formats.
func (i *Insert) Compatible(o *Insert) bool {
	return i.Shape == o.Shape && i.Kind == o.Kind && i.Unevaluated == o.Unevaluated
}

// Copy returns a shallow copy of the Insert.
func (i *Insert) Copy() *Insert {
	c := *i
	return &c
}

// defaultValue returns the default, never sharing a mutable stack sequence.
func (i *Insert) defaultValue() any {
	if blocks, ok := i.Default.([]*Block); ok {
		out := make([]*Block, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, b.Copy())
		}
		return out
	}
	return i.Default
}

// kindOptions lists the fixed menu entries per insert kind.
var kindOptions = map[string][]string{
	"attribute":      {"x position", "y position", "direction", "costume #", "size", "volume"},
	"booleanSensor":  {"button pressed", "A connected", "B connected", "C connected", "D connected"},
	"drum":           numberedOptions(1, 18),
	"effect":         {"color", "fisheye", "whirl", "pixelate", "mosaic", "brightness", "ghost"},
	"instrument":     numberedOptions(1, 21),
	"key":            keyOptions(),
	"listDeleteItem": {"last", "all"},
	"listItem":       {"last", "random"},
	"mathOp": {"abs", "floor", "ceiling", "sqrt", "sin", "cos", "tan",
		"asin", "acos", "atan", "ln", "log", "e ^", "10 ^"},
	"motorDirection":  {"this way", "that way", "reverse"},
	"rotationStyle":   {"left-right", "don't rotate", "all around"},
	"sensor":          {"slider", "light", "sound", "resistance-A", "resistance-B", "resistance-C", "resistance-D"},
	"spriteOnly":      {"myself"},
	"spriteOrMouse":   {"mouse-pointer"},
	"spriteOrStage":   {"Stage"},
	"stageOrThis":     {"Stage"},
	"stop":            {"all", "this script", "other scripts in sprite"},
	"timeAndDate":     {"year", "month", "date", "day of week", "hour", "minute", "second"},
	"touching":        {"mouse-pointer", "edge"},
	"triggerSensor":   {"loudness", "timer", "video motion"},
	"videoMotionType": {"motion", "direction"},
	"videoState":      {"off", "on", "on-flipped"},
}

func numberedOptions(from, to int) []string {
	out := make([]string, 0, to-from)
	for n := from; n < to; n++ {
		out = append(out, strconv.Itoa(n))
	}
	return out
}

func keyOptions() []string {
	out := make([]string, 0, 41)
	for c := '0'; c <= '9'; c++ {
		out = append(out, string(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		out = append(out, string(c))
	}
	return append(out, "space", "left arrow", "right arrow", "up arrow", "down arrow")
}

// Options returns the valid choices for a menu insert. When a Scriptable is
// given, context-dependent entries (variable names, costumes, sounds, sprites,
// broadcasts) are appended after the fixed ones.
func (i *Insert) Options(s Scriptable) []string {
	options := slices.Clone(kindOptions[i.Kind])
	if s == nil {
		return options
	}
	project := s.Project()
	base := s.Base()
	switch i.Kind {
	case "var":
		options = append(options, sortedKeys(base.Variables)...)
		if project != nil {
			options = append(options, sortedKeys(project.Variables)...)
		}
	case "list":
		options = append(options, sortedKeys(base.Lists)...)
		if project != nil {
			options = append(options, sortedKeys(project.Lists)...)
		}
	case "costume":
		for _, c := range base.Costumes {
			options = append(options, c.Name)
		}
	case "backdrop":
		if project != nil && project.Stage != nil {
			for _, c := range project.Stage.Costumes {
				options = append(options, c.Name)
			}
		}
	case "sound":
		for _, snd := range base.Sounds {
			options = append(options, snd.Name)
		}
		if project != nil && project.Stage != nil {
			for _, snd := range project.Stage.Sounds {
				options = append(options, snd.Name)
			}
		}
	case "spriteOnly", "spriteOrMouse", "spriteOrStage", "touching":
		if project != nil {
			for _, sprite := range project.Sprites {
				options = append(options, sprite.Name)
			}
		}
	case "broadcast":
		if project != nil {
			options = append(options, project.Broadcasts()...)
		}
	}
	return options
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
