package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// RegisterBlockType adds one format's spelling of a block. When pbt.Match
// names a command registered earlier, the spelling is merged into that
// canonical type after a compatibility check; otherwise a new canonical type
// is created. Failures are ConfigurationErrors, also kept for Validate.
func (r *Registry) RegisterBlockType(formatName string, pbt *model.PluginBlockType) (*model.BlockType, error) {
	pbt = pbt.WithFormat(formatName)
	slog.Debug("Registering block type.", "format", formatName, "command", pbt.Command)

	if !pbt.Shape().Valid() {
		return nil, r.configError(pbt, fmt.Errorf("unknown block shape %q", pbt.Shape()))
	}
	for n, ins := range pbt.Inserts() {
		if !ins.Shape.Valid() {
			return nil, r.configError(pbt, fmt.Errorf("insert %d has unknown shape %q", n, ins.Shape))
		}
	}
	commands := r.byFormatCommand[formatName]
	if commands == nil {
		commands = make(map[string]*model.BlockType)
		r.byFormatCommand[formatName] = commands
	}
	if _, exists := commands[pbt.Command]; exists {
		return nil, r.configError(pbt, fmt.Errorf("command registered twice"))
	}

	var bt *model.BlockType
	if pbt.Match != "" {
		target, ok := r.byCommand[pbt.Match]
		if ok {
			if err := target.AddConversion(pbt); err != nil {
				return nil, r.configError(pbt, fmt.Errorf("cannot merge into %q: %w", pbt.Match, err))
			}
			bt = target
		} else {
			slog.Warn("Block type match not found, registering a new block type.",
				"format", formatName, "command", pbt.Command, "match", pbt.Match)
		}
	}
	if bt == nil {
		bt = model.NewBlockType(pbt)
		r.blockTypes = append(r.blockTypes, bt)
	}

	commands[pbt.Command] = bt
	if _, exists := r.byCommand[pbt.Command]; !exists {
		r.byCommand[pbt.Command] = bt
	}
	key := pbt.StrippedText()
	if !slices.Contains(r.byText[key], bt) {
		r.byText[key] = append(r.byText[key], bt)
	}
	return bt, nil
}

func (r *Registry) configError(pbt *model.PluginBlockType, err error) error {
	cerr := &ConfigurationError{Format: pbt.Format, Command: pbt.Command, Err: err}
	r.configErrs = append(r.configErrs, cerr)
	return cerr
}

// SetWorkaround attaches fn to the canonical type owning command. It is used
// when the target format has no spelling for the type.
func (r *Registry) SetWorkaround(command string, fn model.BlockWorkaround) error {
	bt, ok := r.byCommand[command]
	if !ok {
		err := &UnknownBlockTypeError{Identifier: command}
		r.configErrs = append(r.configErrs, fmt.Errorf("workaround: %w", err))
		return err
	}
	bt.Workaround = fn
	return nil
}

// Resolve finds the block type an identifier refers to. In priority order it
// accepts:
//
//   - a *model.BlockType or *model.CustomBlockType, returned as is;
//   - a *model.PluginBlockType, looked up by its format and command;
//   - a command string, matched exactly;
//   - a loose text template such as "move %n steps" or "Move %s Steps",
//     matched after model.StripText.
//
// Loose text that matches canonical types with different default commands
// fails with *AmbiguousBlockReferenceError; text matching nothing fails with
// *UnknownBlockTypeError.
func (r *Registry) Resolve(id any) (model.Type, error) {
	switch v := id.(type) {
	case *model.BlockType:
		return v, nil
	case *model.CustomBlockType:
		return v, nil
	case *model.PluginBlockType:
		if bt, ok := r.byFormatCommand[v.Format][v.Command]; ok {
			return bt, nil
		}
		return r.resolveString(v.Command)
	case string:
		return r.resolveString(v)
	}
	return nil, fmt.Errorf("cannot resolve a block type from %T", id)
}

// ResolveBlockType is Resolve restricted to canonical types.
func (r *Registry) ResolveBlockType(id any) (*model.BlockType, error) {
	t, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	bt, ok := t.(*model.BlockType)
	if !ok {
		return nil, fmt.Errorf("%v is not a canonical block type", t)
	}
	return bt, nil
}

// ResolveCommand looks up a command as spelled by one format. Formats may
// reuse a command for different blocks, so archive readers use this instead
// of Resolve.
func (r *Registry) ResolveCommand(formatName, command string) (*model.BlockType, error) {
	if bt, ok := r.byFormatCommand[formatName][command]; ok {
		return bt, nil
	}
	return nil, &UnknownBlockTypeError{Identifier: command, Suggestion: r.suggest(command)}
}

func (r *Registry) resolveString(s string) (model.Type, error) {
	if bt, ok := r.byCommand[s]; ok {
		return bt, nil
	}
	matches := r.byText[model.StripText(s)]
	if len(matches) == 0 {
		return nil, &UnknownBlockTypeError{Identifier: s, Suggestion: r.suggest(s)}
	}
	first := matches[0]
	for _, m := range matches[1:] {
		if r.byCommand[m.Command()] != first {
			return nil, &AmbiguousBlockReferenceError{Identifier: s, Candidates: candidateCommands(matches)}
		}
	}
	return first, nil
}

func candidateCommands(matches []*model.BlockType) []string {
	var out []string
	for _, m := range matches {
		if !slices.Contains(out, m.Command()) {
			out = append(out, m.Command())
		}
	}
	return out
}

// suggest returns the known command closest to s, or "".
func (r *Registry) suggest(s string) string {
	if s == "" || len(r.byCommand) == 0 {
		return ""
	}
	commands := make([]string, 0, len(r.byCommand))
	for c := range r.byCommand {
		commands = append(commands, c)
	}
	ranks := fuzzy.RankFindFold(s, commands)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Convert returns the spelling of bt in the named format. An unregistered
// format fails with *UnknownFormatError, a missing spelling with
// *model.BlockNotSupportedError.
func (r *Registry) Convert(bt *model.BlockType, formatName string) (*model.PluginBlockType, error) {
	if formatName != "" {
		if _, err := r.Format(formatName); err != nil {
			return nil, err
		}
	}
	return bt.Convert(formatName)
}

// HasCommand reports whether any format registered command.
func (r *Registry) HasCommand(command string) bool {
	_, ok := r.byCommand[command]
	return ok
}

// BlockTypes returns every canonical type in registration order.
func (r *Registry) BlockTypes() []*model.BlockType {
	return slices.Clone(r.blockTypes)
}

// BlockTypesFor returns the canonical types the named format can express, in
// registration order.
func (r *Registry) BlockTypesFor(formatName string) []*model.BlockType {
	var out []*model.BlockType
	for _, bt := range r.blockTypes {
		if bt.HasConversion(formatName) {
			out = append(out, bt)
		}
	}
	return out
}
