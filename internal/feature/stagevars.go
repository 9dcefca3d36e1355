package feature

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// StageVars is the "Stage-specific Variables" feature: the stage may own
// variables and lists separate from the project globals.
type StageVars struct{}

func (StageVars) Name() string { return StageVariables }

func (StageVars) Description() string {
	return "The stage may have its own variables and lists, separate from the global ones."
}

// Workaround moves stage variables and lists into the project globals. When
// a global of the same name exists the stage one is dropped, together with
// its watcher.
func (StageVars) Workaround(p *model.Project) []Fix {
	stage := p.Stage
	var fixes []Fix
	for _, name := range sortedNames(stage.Variables) {
		v := stage.Variables[name]
		_, clash := p.Variables[name]
		fixes = append(fixes, Fix{
			Object: fmt.Sprintf("variable %q", name),
			Detail: moveDetail(clash),
			Apply: func() error {
				delete(stage.Variables, name)
				moveWatchable(p, v, clash)
				if !clash {
					p.Variables[name] = v
				}
				return nil
			},
		})
	}
	for _, name := range sortedNames(stage.Lists) {
		l := stage.Lists[name]
		_, clash := p.Lists[name]
		fixes = append(fixes, Fix{
			Object: fmt.Sprintf("list %q", name),
			Detail: moveDetail(clash),
			Apply: func() error {
				delete(stage.Lists, name)
				moveWatchable(p, l, clash)
				if !clash {
					p.Lists[name] = l
				}
				return nil
			},
		})
	}
	return fixes
}

func (StageVars) Normalize(*model.Project) error { return nil }

func moveDetail(clash bool) string {
	if clash {
		return "stage copy dropped in favour of the global of the same name"
	}
	return "moved from the stage to the global variables"
}

func moveWatchable(p *model.Project, v model.Watchable, clash bool) {
	w := v.Watcher()
	if w == nil {
		return
	}
	if clash {
		v.SetWatcher(nil)
		p.Actors = slices.DeleteFunc(p.Actors, func(a model.Actor) bool { return a == model.Actor(w) })
		return
	}
	w.Target = p
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
