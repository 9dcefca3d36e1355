package scratch20

import (
	"regexp"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// Custom blocks are stored by their spec, e.g. "jump %n times", with the
// parameter names and defaults kept alongside in the definition.

var specInsert = regexp.MustCompile(`%[nsb]`)

var specShapes = map[byte]model.InsertShape{
	'n': model.InsertNumber,
	's': model.InsertString,
	'b': model.InsertBoolean,
}

// customType builds a custom block type from its spec.
func customType(spec string, names []string, defaults []any, atomic bool) *model.CustomBlockType {
	var parts []model.Part
	last, n := 0, 0
	for _, m := range specInsert.FindAllStringIndex(spec, -1) {
		if m[0] > last {
			parts = append(parts, model.TextPart(spec[last:m[0]]))
		}
		var def any
		if n < len(defaults) {
			def = jsonNumber(defaults[n])
		}
		ins := model.NewInsert(specShapes[spec[m[0]+1]], "", def)
		if n < len(names) {
			ins.Name = names[n]
		}
		parts = append(parts, model.InsertPart(ins))
		last = m[1]
		n++
	}
	if last < len(spec) {
		parts = append(parts, model.TextPart(spec[last:]))
	}
	ct := model.NewCustomBlockType(model.StackShape, parts)
	ct.Atomic = atomic
	return ct
}

// customSpec is the inverse of customType.
func customSpec(ct *model.CustomBlockType) (spec string, names []any, defaults []any) {
	var b strings.Builder
	names, defaults = []any{}, []any{}
	for _, p := range ct.Parts() {
		if p.Insert == nil {
			b.WriteString(p.Text)
			continue
		}
		switch p.Insert.Shape {
		case model.InsertNumber, model.InsertNumberMenu:
			b.WriteString("%n")
		case model.InsertBoolean:
			b.WriteString("%b")
		default:
			b.WriteString("%s")
		}
		names = append(names, p.Insert.Name)
		defaults = append(defaults, p.Insert.Default)
	}
	return b.String(), names, defaults
}

// customs tracks the custom block types of one scriptable by spec. Calls
// whose definition was deleted still get a type of their own.
type customs map[string]*model.CustomBlockType

func (c customs) get(spec string) *model.CustomBlockType {
	if ct, ok := c[spec]; ok {
		return ct
	}
	ct := customType(spec, nil, nil, false)
	c[spec] = ct
	return ct
}
