// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderStyle selects how blocks are turned into text.
type RenderStyle int

const (
	// TextStyle is the surface of the text grammar: strings and broadcasts
	// are quoted, nested reporters sit in parentheses and nested stack blocks
	// in braces.
	TextStyle RenderStyle = iota
	// BlockStyle brackets every argument by its insert shape, the notation
	// used when drawing blocks.
	BlockStyle
)

var insertFormats = map[InsertShape]string{
	InsertNumber:       "(%s)",
	InsertString:       "[%s]",
	InsertReadonlyMenu: "[%s v]",
	InsertNumberMenu:   "(%s v)",
	InsertColor:        "[%s]",
	InsertBoolean:      "<%s>",
	InsertStack:        "\n    %s\n",
	InsertInline:       "%s",
	InsertBlock:        "{%s}",
}

var blockFormats = map[BlockShape]string{
	ReporterShape: "(%s)",
	BooleanShape:  "<%s>",
}

// Stringify renders value as an argument for this insert. A nil value, or
// false in a boolean slot, renders the default.
func (i *Insert) Stringify(value any, style RenderStyle) string {
	if value == nil || (value == false && i.Shape == InsertBoolean) {
		value = i.Default
		if value == nil {
			value = ""
		}
	}
	if b, ok := value.(*Block); ok {
		return b.stringify(style, true)
	}

	var s string
	switch v := value.(type) {
	case []*Block:
		lines := make([]string, len(v))
		for n, b := range v {
			lines[n] = b.Stringify(style)
		}
		s = strings.Join(lines, "\n")
	case *CustomBlockType:
		s = v.Stringify(nil, style, false)
	default:
		s = FormatValue(v)
	}

	if i.Shape == InsertStack {
		s = strings.ReplaceAll(s, "\n", "\n    ")
	}
	switch {
	case style == BlockStyle || i.Shape == InsertStack:
		s = formatWith(insertFormats[i.Shape], s)
	case i.Shape == InsertString || i.Kind == "broadcast":
		s = quote(s)
	}
	return s
}

func formatWith(format, s string) string {
	if format == "" {
		return s
	}
	return fmt.Sprintf(format, s)
}

// quote wraps s in single quotes, or in double quotes when s itself contains
// a single quote.
func quote(s string) string {
	if strings.Contains(s, "'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return "'" + s + "'"
}

// FormatValue renders a scalar argument the way it appears in text.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

func renderType(shape BlockShape, parts []Part, args []any, style RenderStyle, inInsert bool) string {
	var b strings.Builder
	n := 0
	hasStack := false
	for _, p := range parts {
		if p.Insert == nil {
			b.WriteString(p.Text)
			continue
		}
		var arg any
		if n < len(args) {
			arg = args[n]
		}
		n++
		if p.Insert.Shape == InsertStack {
			hasStack = true
		}
		b.WriteString(p.Insert.Stringify(arg, style))
	}
	r := b.String()
	if hasStack {
		return r + "end"
	}

	format, bracketed := blockFormats[shape]
	if style == TextStyle && bracketed {
		format = "(%s)"
	}
	if inInsert && !bracketed {
		format = "{%s}"
	}
	return formatWith(format, r)
}
