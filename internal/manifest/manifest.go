package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// manifestRoot defines the top-level structure of the file, expecting one or
// more 'block' blocks.
type manifestRoot struct {
	Blocks []*hclBlock `hcl:"block,block"`
}

// hclBlock represents a single 'block' block in the HCL file for decoding
// purposes.
type hclBlock struct {
	Command  string     `hcl:"command,label"`
	Category string     `hcl:"category"`
	Shape    string     `hcl:"shape"`
	Text     string     `hcl:"text"`
	Defaults *cty.Value `hcl:"defaults,optional"`
	Match    string     `hcl:"match,optional"`

	DefRange      hcl.Range `hcl:",def_range"`
	ShapeRange    hcl.Range `hcl:"shape,attr_range"`
	TextRange     hcl.Range `hcl:"text,attr_range"`
	DefaultsRange hcl.Range `hcl:"defaults,attr_range"`
}

// Parse decodes a manifest held in memory. filename is only used in
// diagnostics. Errors are hcl.Diagnostics.
func Parse(filename string, src []byte) ([]*model.PluginBlockType, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeFile(file)
}

// ParseFile reads and decodes a manifest file.
func ParseFile(path string) ([]*model.PluginBlockType, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeFile(file)
}

func decodeFile(file *hcl.File) ([]*model.PluginBlockType, error) {
	root := &manifestRoot{}
	diags := gohcl.DecodeBody(file.Body, nil, root)
	if diags.HasErrors() {
		return nil, diags
	}

	out := make([]*model.PluginBlockType, 0, len(root.Blocks))
	for _, b := range root.Blocks {
		pbt, blockDiags := decodeBlock(b)
		diags = append(diags, blockDiags...)
		if pbt != nil {
			out = append(out, pbt)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return out, nil
}

func decodeBlock(b *hclBlock) (*model.PluginBlockType, hcl.Diagnostics) {
	shape := model.BlockShape(b.Shape)
	if !shape.Valid() {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block shape",
			Detail:   fmt.Sprintf("Block %q has shape %q; expected one of stack, cap, hat, reporter, boolean.", b.Command, b.Shape),
			Subject:  b.ShapeRange.Ptr(),
		}}
	}

	specs, diags := parseText(b.Text, b.TextRange)
	if diags.HasErrors() {
		return nil, diags
	}

	var defaults []cty.Value
	if b.Defaults != nil && !b.Defaults.IsNull() {
		ty := b.Defaults.Type()
		if !ty.IsTupleType() && !ty.IsListType() {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid defaults",
				Detail:   "The 'defaults' attribute must be a list with one entry per insert.",
				Subject:  b.DefaultsRange.Ptr(),
			}}
		}
		defaults = b.Defaults.AsValueSlice()
	}
	if len(defaults) > countInserts(specs) {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Too many defaults",
			Detail:   fmt.Sprintf("Block %q has %d inserts but %d defaults.", b.Command, countInserts(specs), len(defaults)),
			Subject:  b.DefaultsRange.Ptr(),
		}}
	}

	parts := make([]model.Part, 0, len(specs))
	n := 0
	for _, s := range specs {
		if s.shape == "" {
			parts = append(parts, model.TextPart(s.text))
			continue
		}
		var def any
		if n < len(defaults) {
			v, err := convertDefault(defaults[n], s.shape)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value",
					Detail:   fmt.Sprintf("Block %q, insert %d: %v.", b.Command, n, err),
					Subject:  b.DefaultsRange.Ptr(),
				})
				continue
			}
			def = v
		}
		parts = append(parts, model.InsertPart(model.NewInsert(s.shape, s.kind, def)))
		n++
	}
	if diags.HasErrors() {
		return nil, diags
	}

	pbt := model.NewPluginBlockType(b.Category, shape, b.Command, parts)
	pbt.Match = b.Match
	return pbt, nil
}

// partSpec is a parsed template element: literal text when shape is empty.
type partSpec struct {
	text  string
	shape model.InsertShape
	kind  string
}

var placeholder = regexp.MustCompile(`%(?:([nsbcSB])|([mdi])\.([A-Za-z0-9_]+)|(%))`)

var simpleShapes = map[string]model.InsertShape{
	"n": model.InsertNumber,
	"s": model.InsertString,
	"b": model.InsertBoolean,
	"c": model.InsertColor,
	"S": model.InsertStack,
	"B": model.InsertBlock,
}

var kindShapes = map[string]model.InsertShape{
	"m": model.InsertReadonlyMenu,
	"d": model.InsertNumberMenu,
	"i": model.InsertInline,
}

func parseText(text string, rng hcl.Range) ([]partSpec, hcl.Diagnostics) {
	var (
		out   []partSpec
		lit   strings.Builder
		diags hcl.Diagnostics
	)
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, partSpec{text: lit.String()})
			lit.Reset()
		}
	}
	checkLiteral := func(s string) {
		if strings.Contains(s, "%") {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown placeholder",
				Detail:   fmt.Sprintf("The text %q contains a %% that starts no known placeholder; write %%%% for a literal percent sign.", text),
				Subject:  rng.Ptr(),
			})
		}
		lit.WriteString(s)
	}

	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(text, -1) {
		checkLiteral(text[last:m[0]])
		last = m[1]
		switch {
		case m[8] >= 0:
			lit.WriteString("%")
		case m[2] >= 0:
			flush()
			out = append(out, partSpec{shape: simpleShapes[text[m[2]:m[3]]]})
		default:
			flush()
			out = append(out, partSpec{shape: kindShapes[text[m[4]:m[5]]], kind: text[m[6]:m[7]]})
		}
	}
	checkLiteral(text[last:])
	flush()
	return out, diags
}

func countInserts(specs []partSpec) int {
	n := 0
	for _, s := range specs {
		if s.shape != "" {
			n++
		}
	}
	return n
}

// convertDefault turns a cty value into the Go value an Insert of shape
// holds. Null means "use the shape default".
func convertDefault(v cty.Value, shape model.InsertShape) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("default must be a literal")
	}
	switch shape {
	case model.InsertStack, model.InsertBlock:
		return nil, fmt.Errorf("%s inserts cannot have a default", shape)
	}

	switch v.Type() {
	case cty.String:
		s := v.AsString()
		switch shape {
		case model.InsertColor:
			return model.ParseColor(s)
		case model.InsertNumber, model.InsertNumberMenu:
			return model.CoerceNumber(s), nil
		}
		return s, nil
	case cty.Number:
		var n int
		if err := gocty.FromCtyValue(v, &n); err == nil {
			if shape == model.InsertColor {
				return model.ColorFromRGB(n), nil
			}
			return n, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case cty.Bool:
		return v.True(), nil
	}
	return nil, fmt.Errorf("unsupported default of type %s", v.Type().FriendlyName())
}
