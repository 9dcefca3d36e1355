// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Project, the aggregate root of the model, and the deep
// copy that rebuilds its internal references.
//
// Why rebuild references on copy?
//
// A Project is a graph, not a tree. Watchers point at their target and at the
// Variable or List they display, and those point back at the Watcher. A copy
// that only cloned the values would leave the new Watchers pointing into the
// old graph, so that normalizing the copy would silently mutate the original.
package model

import (
	"fmt"
	"slices"
	"sort"

	"github.com/specialistvlad/scratchkit/internal/media"
)

// DefaultTempo is the tempo of a new project in beats per minute.
const DefaultTempo = 60

// Project is the in-memory form of a project file.
type Project struct {
	// VarScope holds the global variables and lists.
	VarScope

	Name string
	// Path is the file the project was loaded from, if any.
	Path string
	// Format is the name of the active format plugin.
	Format string

	Stage   *Stage
	Sprites []*Sprite
	// Actors is every Sprite and Watcher, in stage layer order.
	Actors []Actor

	Thumbnail *media.Image
	Tempo     float64
	Notes     string
	Author    string
}

// NewProject builds an empty project with a blank stage.
func NewProject() *Project {
	p := &Project{VarScope: newVarScope(), Tempo: DefaultTempo}
	p.Stage = newStage(p)
	return p
}

func (p *Project) isVariableOwner() {}

func (p *Project) String() string {
	if p.Name == "" {
		return "Project"
	}
	return fmt.Sprintf("Project(%q)", p.Name)
}

// Sprite returns the sprite named name, or nil.
func (p *Project) Sprite(name string) *Sprite {
	for _, s := range p.Sprites {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSprite creates a sprite and places it on top of the actor list.
func (p *Project) AddSprite(name string) (*Sprite, error) {
	if p.Sprite(name) != nil {
		return nil, &StructuralInvariantError{Reason: fmt.Sprintf("sprite name %q is not unique", name)}
	}
	s := NewSprite(p, name)
	p.Sprites = append(p.Sprites, s)
	p.Actors = append(p.Actors, s)
	return s, nil
}

// AddWatcher links w to the Variable or List it shows, if any, and places it
// on top of the actor list.
func (p *Project) AddWatcher(w *Watcher) *Watcher {
	if v := w.Value(); v != nil {
		v.SetWatcher(w)
	}
	p.Actors = append(p.Actors, w)
	return w
}

// Scriptables returns the stage followed by every sprite.
func (p *Project) Scriptables() []Scriptable {
	out := make([]Scriptable, 0, len(p.Sprites)+1)
	out = append(out, p.Stage)
	for _, s := range p.Sprites {
		out = append(out, s)
	}
	return out
}

// VariableOwners returns the project, the stage and every sprite.
func (p *Project) VariableOwners() []VariableOwner {
	out := []VariableOwner{p, p.Stage}
	for _, s := range p.Sprites {
		out = append(out, s)
	}
	return out
}

// Watchers returns the watchers of the actor list in order.
func (p *Project) Watchers() []*Watcher {
	var out []*Watcher
	for _, a := range p.Actors {
		if w, ok := a.(*Watcher); ok {
			out = append(out, w)
		}
	}
	return out
}

// Walk visits every block of every script in the project.
func (p *Project) Walk(fn func(Scriptable, *Block) bool) {
	for _, s := range p.Scriptables() {
		for _, script := range s.Base().Scripts {
			script.Walk(func(b *Block) bool { return fn(s, b) })
		}
	}
}

// Broadcasts returns the sorted, distinct broadcast names used by any block.
func (p *Project) Broadcasts() []string {
	seen := map[string]struct{}{}
	p.Walk(func(_ Scriptable, b *Block) bool {
		for n, ins := range b.Type.Inserts() {
			if ins.Kind != "broadcast" {
				continue
			}
			if name, ok := b.Arg(n).(string); ok && name != "" {
				seen[name] = struct{}{}
			}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Copy returns a deep copy. Watchers in the copy target the copied owners
// and are linked to the copied Variables and Lists. Custom block types are
// duplicated once and shared by every block of the copy that used them.
// Media values are immutable and shared.
func (p *Project) Copy() *Project {
	c := &copier{customs: map[*CustomBlockType]*CustomBlockType{}}
	out := &Project{
		VarScope:  newVarScope(),
		Name:      p.Name,
		Path:      p.Path,
		Format:    p.Format,
		Thumbnail: p.Thumbnail,
		Tempo:     p.Tempo,
		Notes:     p.Notes,
		Author:    p.Author,
	}
	for name, v := range p.Variables {
		out.Variables[name] = v.Copy()
	}
	for name, l := range p.Lists {
		out.Lists[name] = l.Copy()
	}

	out.Stage = newStage(out)
	p.Stage.copyInto(&out.Stage.Scripted, c)

	owners := map[VariableOwner]VariableOwner{p: out, p.Stage: out.Stage}
	sprites := map[*Sprite]*Sprite{}
	for _, s := range p.Sprites {
		cs := s.copyWith(out, c)
		out.Sprites = append(out.Sprites, cs)
		owners[s] = cs
		sprites[s] = cs
	}

	watchers := map[*Watcher]*Watcher{}
	for _, a := range p.Actors {
		switch a := a.(type) {
		case *Sprite:
			cs, ok := sprites[a]
			if !ok {
				cs = a.copyWith(out, c)
				sprites[a] = cs
				owners[a] = cs
			}
			out.Actors = append(out.Actors, cs)
		case *Watcher:
			cw := a.copyWith(c)
			if target, ok := owners[a.Target]; ok {
				cw.Target = target
			}
			watchers[a] = cw
			out.Actors = append(out.Actors, cw)
		}
	}

	for orig, cp := range owners {
		relinkWatchers(orig.Scope(), cp.Scope(), watchers)
	}
	return out
}

func relinkWatchers(orig, cp *VarScope, watchers map[*Watcher]*Watcher) {
	for name, v := range orig.Variables {
		if w, ok := watchers[v.watcher]; ok {
			cp.Variables[name].watcher = w
		}
	}
	for name, l := range orig.Lists {
		if w, ok := watchers[l.watcher]; ok {
			cp.Lists[name].watcher = w
		}
	}
}

func (s *Sprite) copyWith(p *Project, c *copier) *Sprite {
	out := NewSprite(p, s.Name)
	out.Position = s.Position
	out.Direction = s.Direction
	out.RotationStyle = s.RotationStyle
	out.Size = s.Size
	out.Draggable = s.Draggable
	out.Visible = s.Visible
	s.Scripted.copyInto(&out.Scripted, c)
	return out
}

func (w *Watcher) copyWith(c *copier) *Watcher {
	out := *w
	out.Block = w.Block.copyWith(c)
	out.Pos = w.Pos.copy()
	return &out
}

// copier carries the state of one deep copy. A nil copier shares custom block
// types, which is what copying a single Block or Script needs.
type copier struct {
	customs map[*CustomBlockType]*CustomBlockType
}

func (c *copier) blockType(t Type) Type {
	if ct, ok := t.(*CustomBlockType); ok {
		return c.custom(ct)
	}
	return t
}

func (c *copier) custom(t *CustomBlockType) *CustomBlockType {
	if c == nil {
		return t
	}
	if out, ok := c.customs[t]; ok {
		return out
	}
	out := t.Copy()
	c.customs[t] = out
	return out
}

// SortScripts orders scripts by canvas position, top to bottom then left to
// right. Scripts without a position follow in their original order.
func (s *Scripted) SortScripts() {
	s.Scripts = sortByPosition(slices.Clone(s.Scripts), func(script *Script) *Point { return script.Pos })
}
