package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/format"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Normalize brings p to a consistent state for its active format, p.Format.
// The project is changed in place. Running it twice yields no notices the
// second time.
//
// Structural problems fail with *model.StructuralInvariantError, blocks the
// format cannot express with *model.BlockNotSupportedError. On failure the
// project may be partially normalized.
func Normalize(ctx context.Context, p *model.Project, reg *registry.Registry) ([]model.Notice, error) {
	plugin, err := reg.Format(p.Format)
	if err != nil {
		return nil, err
	}
	n := &normalizer{project: p, registry: reg, plugin: plugin}
	return n.run(ctx)
}

// Convert switches p to the named format and normalizes it. The project is
// changed in place; callers that need the original keep a Copy.
func Convert(ctx context.Context, p *model.Project, reg *registry.Registry, formatName string) ([]model.Notice, error) {
	if _, err := reg.Format(formatName); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Converting project.", "project", p.Name, "from", p.Format, "to", formatName)
	p.Format = formatName
	return Normalize(ctx, p, reg)
}

type normalizer struct {
	project  *model.Project
	registry *registry.Registry
	plugin   format.Plugin
	notices  []model.Notice
}

func (n *normalizer) run(ctx context.Context) ([]model.Notice, error) {
	logger := ctxlog.FromContext(ctx).With("project", n.project.Name, "format", n.plugin.Name())
	logger.Debug("Normalizing project.")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"validate structure", n.validateStructure},
		{"normalize scriptables", n.normalizeScriptables},
		{"validate watchers", n.validateWatchers},
		{"synchronize watchers", n.synchronizeWatchers},
		{"canonicalize notes", n.canonicalizeNotes},
		{"specialize blocks", n.specializeBlocks},
		{"apply feature workarounds", n.applyWorkarounds},
		{"apply feature normalization", n.applyNormalization},
	}
	for i, step := range steps {
		logger.Debug("Pipeline step.", "step", i+1, "name", step.name)
		if err := step.fn(); err != nil {
			logger.Debug("Pipeline step failed.", "step", i+1, "name", step.name, "error", err)
			return nil, err
		}
	}

	for _, notice := range n.notices {
		logger.Info("Compatibility change.", "notice", notice.String())
	}
	logger.Debug("Project normalized.", "notices", len(n.notices))
	return n.notices, nil
}

func (n *normalizer) supports(featureName string) bool {
	return slices.Contains(n.plugin.Features(), featureName)
}

// validateStructure checks sprite name uniqueness and that the sprite list
// and the actor list hold the same sprites.
func (n *normalizer) validateStructure() error {
	p := n.project
	if p.Stage == nil {
		return &model.StructuralInvariantError{Reason: "project has no stage"}
	}

	names := make(map[string]struct{}, len(p.Sprites))
	listed := make(map[*model.Sprite]struct{}, len(p.Sprites))
	for _, s := range p.Sprites {
		if _, dup := names[s.Name]; dup {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite name %q is not unique", s.Name)}
		}
		names[s.Name] = struct{}{}
		listed[s] = struct{}{}
		if s.Project() != p {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite %q belongs to another project", s.Name)}
		}
	}

	onStage := make(map[*model.Sprite]struct{}, len(p.Sprites))
	for _, a := range p.Actors {
		s, ok := a.(*model.Sprite)
		if !ok {
			continue
		}
		if _, ok := listed[s]; !ok {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("actor %v is not in the sprite list", s)}
		}
		if _, dup := onStage[s]; dup {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite %q appears twice in the actor list", s.Name)}
		}
		onStage[s] = struct{}{}
	}
	for _, s := range p.Sprites {
		if _, ok := onStage[s]; !ok {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite %q is not in the actor list", s.Name)}
		}
	}
	return nil
}

// normalizeScriptables selects a costume for every scriptable, falling back
// to a blank one, and sorts and normalizes its scripts. A selected costume
// missing from the costume list is appended to it.
func (n *normalizer) normalizeScriptables() error {
	for _, s := range n.project.Scriptables() {
		base := s.Base()
		if base.Costume == nil {
			if len(base.Costumes) == 0 {
				base.Costumes = append(base.Costumes, model.BlankCostume(s))
			}
			base.Costume = base.Costumes[0]
		}
		if base.CostumeIndex() < 0 {
			base.Costumes = append(base.Costumes, base.Costume)
		}

		base.SortScripts()
		for _, script := range base.Scripts {
			script.Walk(func(b *model.Block) bool {
				b.Normalize()
				return true
			})
		}

		if sprite, ok := s.(*model.Sprite); ok {
			switch sprite.RotationStyle {
			case model.RotateNormal, model.RotateLeftRight, model.RotateNone:
			default:
				return &model.StructuralInvariantError{
					Reason: fmt.Sprintf("sprite %q has unknown rotation style %q", sprite.Name, sprite.RotationStyle),
				}
			}
		}
	}
	return nil
}

// validateWatchers rejects watchers that cannot be saved and links each
// variable watcher to its variable.
func (n *normalizer) validateWatchers() error {
	owners := n.project.VariableOwners()
	seen := make(map[model.Watchable]*model.Watcher)

	for _, w := range n.project.Watchers() {
		switch w.Style {
		case model.StyleNormal, model.StyleLarge, model.StyleSlider:
		default:
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("%v has unknown style %q", w, w.Style)}
		}
		if w.Block == nil {
			return &model.StructuralInvariantError{Reason: "watcher has no block"}
		}
		if !slices.Contains(owners, w.Target) {
			return &model.StructuralInvariantError{Reason: fmt.Sprintf("%v targets an object outside the project", w)}
		}
		w.Block.Walk(func(b *model.Block) bool {
			b.Normalize()
			return true
		})
		if w.Kind() == model.WatchBlock {
			continue
		}

		v := w.Value()
		if v == nil {
			return &model.StructuralInvariantError{
				Reason: fmt.Sprintf("%v watches %s %q, which %v does not have", w, w.Kind(), w.Name(), w.Target),
			}
		}
		if other, dup := seen[v]; dup {
			return &model.StructuralInvariantError{
				Reason: fmt.Sprintf("%s %q has two watchers: %v and %v", w.Kind(), w.Name(), other, w),
			}
		}
		seen[v] = w
		if v.Watcher() != w {
			v.SetWatcher(w)
		}
	}

	// Watchers removed from the actor list leave their variable unwatched.
	for _, owner := range owners {
		scope := owner.Scope()
		for _, v := range scope.Variables {
			unlinkStale(v, seen)
		}
		for _, l := range scope.Lists {
			unlinkStale(l, seen)
		}
	}
	return nil
}

func unlinkStale(v model.Watchable, seen map[model.Watchable]*model.Watcher) {
	if w := v.Watcher(); w != nil && seen[v] != w {
		v.SetWatcher(nil)
	}
}

// synchronizeWatchers gives every unwatched variable and list a hidden
// watcher.
func (n *normalizer) synchronizeWatchers() error {
	for _, owner := range n.project.VariableOwners() {
		scope := owner.Scope()
		for _, name := range sortedNames(scope.Variables) {
			if scope.Variables[name].Watcher() == nil {
				if err := n.addHiddenWatcher(owner, model.CommandReadVariable, name); err != nil {
					return err
				}
			}
		}
		for _, name := range sortedNames(scope.Lists) {
			if scope.Lists[name].Watcher() == nil {
				if err := n.addHiddenWatcher(owner, model.CommandContentsOfList, name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (n *normalizer) addHiddenWatcher(owner model.VariableOwner, command, name string) error {
	b, err := model.NewBlock(n.registry, command, name)
	if err != nil {
		return fmt.Errorf("cannot create watcher for %q: %w", name, err)
	}
	w := model.NewWatcher(owner, b)
	w.Visible = false
	n.project.AddWatcher(w)
	return nil
}

func (n *normalizer) canonicalizeNotes() error {
	notes := strings.ReplaceAll(n.project.Notes, "\r\n", "\n")
	n.project.Notes = strings.ReplaceAll(notes, "\r", "\n")
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
