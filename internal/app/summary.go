package app

import (
	"sort"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// Summary is a serializable overview of a project, as shown by `inspect`.
type Summary struct {
	Name      string          `json:"name" yaml:"name"`
	Format    string          `json:"format" yaml:"format"`
	Author    string          `json:"author,omitempty" yaml:"author,omitempty"`
	Notes     string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tempo     float64         `json:"tempo" yaml:"tempo"`
	Variables []string        `json:"variables,omitempty" yaml:"variables,omitempty"`
	Lists     []string        `json:"lists,omitempty" yaml:"lists,omitempty"`
	Stage     ObjectSummary   `json:"stage" yaml:"stage"`
	Sprites   []ObjectSummary `json:"sprites,omitempty" yaml:"sprites,omitempty"`
	Watchers  []string        `json:"watchers,omitempty" yaml:"watchers,omitempty"`
}

// ObjectSummary describes the stage or one sprite.
type ObjectSummary struct {
	Name      string   `json:"name" yaml:"name"`
	Costumes  int      `json:"costumes" yaml:"costumes"`
	Sounds    int      `json:"sounds" yaml:"sounds"`
	Scripts   int      `json:"scripts" yaml:"scripts"`
	Blocks    int      `json:"blocks" yaml:"blocks"`
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Lists     []string `json:"lists,omitempty" yaml:"lists,omitempty"`
}

// Summarize builds the Summary of p.
func Summarize(p *model.Project) *Summary {
	s := &Summary{
		Name:      p.Name,
		Format:    p.Format,
		Author:    p.Author,
		Notes:     p.Notes,
		Tempo:     p.Tempo,
		Variables: keys(p.Variables),
		Lists:     keys(p.Lists),
		Stage:     summarizeObject(p.Stage),
	}
	for _, sprite := range p.Sprites {
		s.Sprites = append(s.Sprites, summarizeObject(sprite))
	}
	for _, actor := range p.Actors {
		w, ok := actor.(*model.Watcher)
		if !ok {
			continue
		}
		label := w.Name()
		if label == "" {
			label = w.Block.String()
		}
		s.Watchers = append(s.Watchers, string(w.Kind())+" "+label)
	}
	return s
}

func summarizeObject(obj model.Scriptable) ObjectSummary {
	base := obj.Base()
	out := ObjectSummary{
		Name:      obj.ScriptableName(),
		Costumes:  len(base.Costumes),
		Sounds:    len(base.Sounds),
		Scripts:   len(base.Scripts),
		Variables: keys(base.Variables),
		Lists:     keys(base.Lists),
	}
	for _, script := range base.Scripts {
		out.Blocks += countBlocks(script.Blocks)
	}
	return out
}

func countBlocks(blocks []*model.Block) int {
	n := 0
	for _, b := range blocks {
		n++
		for _, arg := range b.Args {
			switch v := arg.(type) {
			case *model.Block:
				n += countBlocks([]*model.Block{v})
			case []*model.Block:
				n += countBlocks(v)
			}
		}
	}
	return n
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
