package feature

import "github.com/specialistvlad/scratchkit/internal/model"

// Insert kinds that hold variable and list names.
const (
	kindVar  = "var"
	kindList = "list"
)

// rename moves a variable (or list) of owner from old to new and rewrites
// every block argument and watcher that refers to it. Scripts of a sprite
// that shadows a global of the same name are left alone.
func rename(p *model.Project, owner model.VariableOwner, old, new string, list bool) {
	scope := owner.Scope()
	kind := kindVar
	if list {
		kind = kindList
		l, ok := scope.Lists[old]
		if !ok {
			return
		}
		delete(scope.Lists, old)
		scope.Lists[new] = l
	} else {
		v, ok := scope.Variables[old]
		if !ok {
			return
		}
		delete(scope.Variables, old)
		scope.Variables[new] = v
	}

	visit := func(b *model.Block) bool {
		for n, ins := range b.Type.Inserts() {
			if ins.Kind == kind && b.Arg(n) == any(old) {
				b.Args[n] = new
			}
		}
		return true
	}

	for _, s := range p.Scriptables() {
		if !refersTo(s, owner, old, list) {
			continue
		}
		for _, script := range s.Base().Scripts {
			script.Walk(visit)
		}
	}
	for _, w := range p.Watchers() {
		if w.Target == owner && w.Block != nil {
			w.Block.Walk(visit)
		}
	}
}

// refersTo reports whether a name used in the scripts of s resolves to the
// variable of owner.
func refersTo(s model.Scriptable, owner model.VariableOwner, name string, list bool) bool {
	if model.VariableOwner(s) == owner {
		return true
	}
	if _, global := owner.(*model.Project); !global {
		return false
	}
	scope := s.Scope()
	if list {
		_, shadowed := scope.Lists[name]
		return !shadowed
	}
	_, shadowed := scope.Variables[name]
	return !shadowed
}
