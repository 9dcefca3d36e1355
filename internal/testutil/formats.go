package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Names of the toy formats registered by ToyModule.
const (
	Alpha = "alpha"
	Beta  = "beta"
)

// ToyFormat is a format plugin whose files only hold the project name. It is
// enough to drive the registry and the pipeline in tests.
type ToyFormat struct {
	FormatName  string
	Ext         string
	FeatureList []string
}

func (f *ToyFormat) Name() string        { return f.FormatName }
func (f *ToyFormat) DisplayName() string { return "Toy " + f.FormatName }
func (f *ToyFormat) Extension() string   { return f.Ext }
func (f *ToyFormat) Features() []string  { return f.FeatureList }

// Load reads a file written by Save.
func (f *ToyFormat) Load(_ context.Context, r io.Reader) (*model.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	name, ok := strings.CutPrefix(string(data), f.FormatName+":")
	if !ok {
		return nil, fmt.Errorf("not a %s file", f.FormatName)
	}
	p := model.NewProject()
	p.Name = name
	p.Format = f.FormatName
	return p, nil
}

// Save writes the project name.
func (f *ToyFormat) Save(_ context.Context, w io.Writer, p *model.Project) error {
	_, err := io.WriteString(w, f.FormatName+":"+p.Name)
	return err
}

// ToyModule registers two formats. Alpha supports every built-in feature
// except stage variables; beta only supports stage variables. Their
// vocabularies overlap, beta spells "xpos" as "xPosition", and beta's
// "doForeverIf" carries a workaround into alpha.
type ToyModule struct{}

// Register implements the registry.Module interface.
func (m *ToyModule) Register(r *registry.Registry) {
	r.RegisterFormat(&ToyFormat{
		FormatName:  Alpha,
		Ext:         ".alpha",
		FeatureList: []string{feature.VectorImages, feature.CloudVariables, feature.CustomBlocks},
	})
	r.RegisterFormat(&ToyFormat{
		FormatName:  Beta,
		Ext:         ".beta",
		FeatureList: []string{feature.StageVariables},
	})
	if err := r.RegisterManifest(Alpha, "alpha.hcl", []byte(alphaBlocks)); err != nil {
		panic(err)
	}
	if err := r.RegisterManifest(Beta, "beta.hcl", []byte(betaBlocks)); err != nil {
		panic(err)
	}
	if err := r.SetWorkaround("doForeverIf", ForeverIfWorkaround); err != nil {
		panic(err)
	}
}

// ForeverIfWorkaround rewrites "forever if <cond>" as "forever { if <cond> }".
func ForeverIfWorkaround(r model.Resolver, b *model.Block) (*model.Block, error) {
	doIf, err := model.NewBlock(r, "doIf", b.Arg(0), b.Arg(1))
	if err != nil {
		return nil, err
	}
	return model.NewBlock(r, "doForever", []*model.Block{doIf})
}

const alphaBlocks = `
block "whenGreenFlag" {
  category = "control"
  shape    = "hat"
  text     = "when green flag clicked"
}

block "forward:" {
  category = "motion"
  shape    = "stack"
  text     = "move %n steps"
  defaults = [10]
}

block "xpos" {
  category = "motion"
  shape    = "reporter"
  text     = "x position"
}

block "say:" {
  category = "looks"
  shape    = "stack"
  text     = "say %s"
  defaults = ["Hello!"]
}

block "readVariable" {
  category = "variables"
  shape    = "reporter"
  text     = "%i.var"
  defaults = ["var"]
}

block "setVar:to:" {
  category = "variables"
  shape    = "stack"
  text     = "set %m.var to %s"
  defaults = ["var", 0]
}

block "contentsOfList:" {
  category = "list"
  shape    = "reporter"
  text     = "%i.list"
  defaults = ["list"]
}

block "append:toList:" {
  category = "list"
  shape    = "stack"
  text     = "add %s to %m.list"
  defaults = ["thing", "list"]
}

block "broadcast:" {
  category = "control"
  shape    = "stack"
  text     = "broadcast %m.broadcast"
}

block "doForever" {
  category = "control"
  shape    = "cap"
  text     = "forever%S"
}

block "doIf" {
  category = "control"
  shape    = "stack"
  text     = "if %b then%S"
}

block "stopAll" {
  category = "control"
  shape    = "cap"
  text     = "stop all"
}

block "procDef" {
  category = "custom"
  shape    = "hat"
  text     = "define %B"
}

block "touching:" {
  category = "sensing"
  shape    = "boolean"
  text     = "touching %m.touching?"
  defaults = ["mouse-pointer"]
}
`

const betaBlocks = `
block "whenGreenFlag" {
  category = "control"
  shape    = "hat"
  text     = "when green flag clicked"
  match    = "whenGreenFlag"
}

block "forward:" {
  category = "motion"
  shape    = "stack"
  text     = "move %n steps"
  defaults = [10]
  match    = "forward:"
}

block "xPosition" {
  category = "motion"
  shape    = "reporter"
  text     = "x position"
  match    = "xpos"
}

block "say:" {
  category = "looks"
  shape    = "stack"
  text     = "say %s"
  match    = "say:"
}

block "readVariable" {
  category = "variables"
  shape    = "reporter"
  text     = "%i.var"
  defaults = ["var"]
  match    = "readVariable"
}

block "setVar:to:" {
  category = "variables"
  shape    = "stack"
  text     = "set %m.var to %s"
  match    = "setVar:to:"
}

block "contentsOfList:" {
  category = "list"
  shape    = "reporter"
  text     = "%i.list"
  defaults = ["list"]
  match    = "contentsOfList:"
}

block "append:toList:" {
  category = "list"
  shape    = "stack"
  text     = "add %s to %m.list"
  match    = "append:toList:"
}

block "broadcast:" {
  category = "control"
  shape    = "stack"
  text     = "broadcast %m.broadcast"
  match    = "broadcast:"
}

block "doForever" {
  category = "control"
  shape    = "cap"
  text     = "forever%S"
  match    = "doForever"
}

block "doIf" {
  category = "control"
  shape    = "stack"
  text     = "if %b then%S"
  match    = "doIf"
}

block "doForeverIf" {
  category = "control"
  shape    = "cap"
  text     = "forever if %b%S"
}

block "touchingColor:" {
  category = "sensing"
  shape    = "boolean"
  text     = "touching %c?"
}

block "turnRight:" {
  category = "motion"
  shape    = "stack"
  text     = "turn right %n degrees"
  defaults = [15]
}
`
