package feature

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// CloudPrefix starts the name of every cloud variable in formats that
// support them.
const CloudPrefix = "☁ "

// Cloud is the "Cloud Variables" feature: variables whose value is shared
// online between everyone running the project.
type Cloud struct{}

func (Cloud) Name() string { return CloudVariables }

func (Cloud) Description() string {
	return "Variables may be stored online and shared between users."
}

// Workaround turns every cloud variable and list into a plain one and drops
// the cloud prefix from its name.
func (Cloud) Workaround(p *model.Project) []Fix {
	var fixes []Fix
	for _, owner := range p.VariableOwners() {
		scope := owner.Scope()
		fixes = append(fixes, uncloud(p, owner, scope.Variables, false)...)
		fixes = append(fixes, uncloud(p, owner, scope.Lists, true)...)
	}
	return fixes
}

func uncloud[V model.Watchable](p *model.Project, owner model.VariableOwner, values map[string]V, list bool) []Fix {
	kind := "variable"
	if list {
		kind = "list"
	}
	var fixes []Fix
	for _, name := range sortedNames(values) {
		v := values[name]
		if !v.Cloud() {
			continue
		}
		plain := strings.TrimPrefix(name, CloudPrefix)
		if _, taken := values[plain]; taken {
			plain = name
		}
		fixes = append(fixes, Fix{
			Object: fmt.Sprintf("%s %q of %v", kind, name, owner),
			Detail: "made local",
			Apply: func() error {
				v.SetCloud(false)
				if plain != name {
					rename(p, owner, name, plain, list)
				}
				return nil
			},
		})
	}
	return fixes
}

// Normalize gives every cloud variable and list the cloud prefix, renaming
// the blocks and watchers that use it.
func (Cloud) Normalize(p *model.Project) error {
	for _, owner := range p.VariableOwners() {
		scope := owner.Scope()
		if err := prefixCloud(p, owner, scope.Variables, false); err != nil {
			return err
		}
		if err := prefixCloud(p, owner, scope.Lists, true); err != nil {
			return err
		}
	}
	return nil
}

func prefixCloud[V model.Watchable](p *model.Project, owner model.VariableOwner, values map[string]V, list bool) error {
	for _, name := range sortedNames(values) {
		if !values[name].Cloud() || strings.HasPrefix(name, CloudPrefix) {
			continue
		}
		prefixed := CloudPrefix + name
		if _, taken := values[prefixed]; taken {
			return &model.StructuralInvariantError{
				Reason: fmt.Sprintf("cloud %q clashes with %q on %v", name, prefixed, owner),
			}
		}
		rename(p, owner, name, prefixed, list)
	}
	return nil
}
