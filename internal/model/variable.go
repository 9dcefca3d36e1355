// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"slices"
)

// Watchable is a Variable or a List.
type Watchable interface {
	Watcher() *Watcher
	SetWatcher(w *Watcher)
	Cloud() bool
	SetCloud(cloud bool)
}

// Variable is a named value used by scripts. Its name is the key it is stored
// under in a VarScope.
type Variable struct {
	// Value is usually a number or a string.
	Value   any
	IsCloud bool
	watcher *Watcher
}

// NewVariable builds a local variable holding value.
func NewVariable(value any) *Variable {
	return &Variable{Value: value}
}

// Copy returns a copy without a watcher link. Project.Copy relinks it.
func (v *Variable) Copy() *Variable {
	return &Variable{Value: v.Value, IsCloud: v.IsCloud}
}

func (v *Variable) Watcher() *Watcher { return v.watcher }
func (v *Variable) SetWatcher(w *Watcher) { v.watcher = w }
func (v *Variable) Cloud() bool { return v.IsCloud }
func (v *Variable) SetCloud(cloud bool) { v.IsCloud = cloud }
func (v *Variable) String() string { return fmt.Sprintf("Variable(%v)", v.Value) }

// List is a named sequence of string items.
type List struct {
	Items   []string
	IsCloud bool
	watcher *Watcher
}

// NewList builds a list holding items.
func NewList(items ...string) *List {
	return &List{Items: slices.Clone(items)}
}

// Copy returns a copy without a watcher link. Project.Copy relinks it.
func (l *List) Copy() *List {
	return &List{Items: slices.Clone(l.Items), IsCloud: l.IsCloud}
}

func (l *List) Watcher() *Watcher { return l.watcher }
func (l *List) SetWatcher(w *Watcher) { l.watcher = w }
func (l *List) Cloud() bool { return l.IsCloud }
func (l *List) SetCloud(cloud bool) { l.IsCloud = cloud }
func (l *List) String() string { return fmt.Sprintf("List(%d items)", len(l.Items)) }
