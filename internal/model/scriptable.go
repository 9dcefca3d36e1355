// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the capability interfaces (VariableOwner, Scriptable,
// Actor) and their concrete members: Stage and Sprite.
//
// Why marker methods?
//
// The sets of things that own variables (Project, Stage, Sprite), own scripts
// (Stage, Sprite) or stand on the stage (Sprite, Watcher) are closed. Each
// interface carries an unexported method so that only this package can add a
// member, and callers dispatch with a type switch instead of probing for
// optional methods.
package model

import "fmt"

const (
	// StageWidth and StageHeight are the fixed stage dimensions in pixels.
	StageWidth  = 480
	StageHeight = 360
	// StageName is the name scripts use to refer to the stage.
	StageName = "Stage"
)

// Sprite rotation styles.
const (
	RotateNormal    = "normal"
	RotateLeftRight = "leftRight"
	RotateNone      = "none"
)

// VarScope holds named variables and lists.
type VarScope struct {
	Variables map[string]*Variable
	Lists     map[string]*List
}

func newVarScope() VarScope {
	return VarScope{Variables: map[string]*Variable{}, Lists: map[string]*List{}}
}

// Scope returns the receiver. It gives every embedder the VariableOwner
// accessor.
func (v *VarScope) Scope() *VarScope { return v }

// VariableOwner is a Project, Stage or Sprite.
type VariableOwner interface {
	Scope() *VarScope
	isVariableOwner()
}

// Scriptable is a Stage or Sprite.
type Scriptable interface {
	VariableOwner
	Base() *Scripted
	// ScriptableName is the name scripts use to refer to the object.
	ScriptableName() string
	Project() *Project
	isScriptable()
}

// Actor is anything placed on the stage: a Sprite or a Watcher.
type Actor interface {
	isActor()
}

// Scripted holds the contents every Scriptable has in common.
type Scripted struct {
	VarScope
	Scripts  []*Script
	Comments []*Comment
	Costumes []*Costume
	// Costume is the selected costume. The pipeline falls back to the first
	// costume, or a blank placeholder, when it is nil.
	Costume *Costume
	Sounds  []*Sound
	// Volume is a percentage used by sound and note blocks.
	Volume int
}

func newScripted() Scripted {
	return Scripted{VarScope: newVarScope(), Volume: 100}
}

// Base returns the receiver. It gives Stage and Sprite the Scriptable
// accessor.
func (s *Scripted) Base() *Scripted { return s }

// AddScript appends a script and returns it.
func (s *Scripted) AddScript(script *Script) *Script {
	s.Scripts = append(s.Scripts, script)
	return script
}

// CostumeIndex returns the index of the selected costume, or -1.
func (s *Scripted) CostumeIndex() int {
	for i, c := range s.Costumes {
		if c == s.Costume {
			return i
		}
	}
	return -1
}

// SetCostumeIndex selects a costume. A negative index clears the selection.
func (s *Scripted) SetCostumeIndex(i int) error {
	if i < 0 {
		s.Costume = nil
		return nil
	}
	if i >= len(s.Costumes) {
		return fmt.Errorf("costume index %d out of range (%d costumes)", i, len(s.Costumes))
	}
	s.Costume = s.Costumes[i]
	return nil
}

// CostumeNamed returns the costume named name, or nil.
func (s *Scripted) CostumeNamed(name string) *Costume {
	for _, c := range s.Costumes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Scripted) copyInto(out *Scripted, c *copier) {
	out.Volume = s.Volume
	for name, v := range s.Variables {
		out.Variables[name] = v.Copy()
	}
	for name, l := range s.Lists {
		out.Lists[name] = l.Copy()
	}
	for _, script := range s.Scripts {
		out.Scripts = append(out.Scripts, script.copyWith(c))
	}
	for _, comment := range s.Comments {
		out.Comments = append(out.Comments, comment.Copy())
	}
	for _, costume := range s.Costumes {
		cc := costume.Copy()
		out.Costumes = append(out.Costumes, cc)
		if costume == s.Costume {
			out.Costume = cc
		}
	}
	if out.Costume == nil && s.Costume != nil {
		out.Costume = s.Costume.Copy()
	}
	for _, snd := range s.Sounds {
		out.Sounds = append(out.Sounds, snd.Copy())
	}
}

// TextParser is the text-grammar collaborator. It reads the TextStyle
// rendering of a script back into blocks.
type TextParser interface {
	Parse(text string, s Scriptable) (*Script, error)
}

// ParseScript parses text with p and appends the result to s.
func ParseScript(p TextParser, s Scriptable, text string) (*Script, error) {
	script, err := p.Parse(text, s)
	if err != nil {
		return nil, err
	}
	return s.Base().AddScript(script), nil
}

// Stage is the background of the project. It has a fixed size and position.
type Stage struct {
	Scripted
	project *Project
}

func newStage(p *Project) *Stage {
	return &Stage{Scripted: newScripted(), project: p}
}

func (s *Stage) ScriptableName() string { return StageName }

func (s *Stage) Project() *Project { return s.project }

func (s *Stage) String() string { return "Stage" }

func (s *Stage) isVariableOwner() {}
func (s *Stage) isScriptable()    {}

// Sprite is a scriptable object that can move and rotate on the stage.
type Sprite struct {
	Scripted
	project *Project

	Name string
	// Position is the centre of the sprite in stage coordinates.
	Position  Point
	Direction float64
	// RotationStyle is one of RotateNormal, RotateLeftRight or RotateNone.
	RotationStyle string
	// Size is the scale factor in percent.
	Size      float64
	Draggable bool
	Visible   bool
}

// NewSprite builds a sprite belonging to p. It is not added to p.
func NewSprite(p *Project, name string) *Sprite {
	return &Sprite{
		Scripted:      newScripted(),
		project:       p,
		Name:          name,
		Direction:     90,
		RotationStyle: RotateNormal,
		Size:          100,
		Visible:       true,
	}
}

func (s *Sprite) ScriptableName() string { return s.Name }

func (s *Sprite) Project() *Project { return s.project }

func (s *Sprite) String() string { return fmt.Sprintf("Sprite(%q)", s.Name) }

func (s *Sprite) isVariableOwner() {}
func (s *Sprite) isScriptable()    {}
func (s *Sprite) isActor()         {}
