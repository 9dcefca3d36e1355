// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "fmt"

// Commands that identify variable and list watchers.
const (
	CommandReadVariable   = "readVariable"
	CommandContentsOfList = "contentsOfList:"
)

// Watcher display styles.
const (
	StyleNormal = "normal"
	StyleLarge  = "large"
	StyleSlider = "slider"
)

// WatcherKind is what a watcher monitors.
type WatcherKind string

const (
	WatchVariable WatcherKind = "variable"
	WatchList     WatcherKind = "list"
	WatchBlock    WatcherKind = "block"
)

// Watcher is a monitor showing a value on the stage.
type Watcher struct {
	// Target is the Project, Stage or Sprite the block is evaluated on.
	Target VariableOwner
	// Block identifies what is watched: `readVariable`, `contentsOfList:` or a
	// reporter.
	Block *Block
	// Style is one of StyleNormal, StyleLarge or StyleSlider.
	Style string
	// Pos is the top-left corner from the top-left of the stage, or nil.
	Pos       *Point
	Visible   bool
	SliderMin float64
	SliderMax float64
}

// NewWatcher builds a visible, normal-style watcher.
func NewWatcher(target VariableOwner, block *Block) *Watcher {
	return &Watcher{
		Target:    target,
		Block:     block,
		Style:     StyleNormal,
		Visible:   true,
		SliderMax: 100,
	}
}

// Kind classifies the watcher by the commands its block type answers to.
func (w *Watcher) Kind() WatcherKind {
	if bt, ok := w.Block.Type.(*BlockType); ok {
		switch {
		case bt.HasCommand(CommandReadVariable):
			return WatchVariable
		case bt.HasCommand(CommandContentsOfList):
			return WatchList
		}
	}
	return WatchBlock
}

// Name is the watched variable or list name, or "" for block watchers.
func (w *Watcher) Name() string {
	if w.Kind() == WatchBlock {
		return ""
	}
	name, _ := w.Block.Arg(0).(string)
	return name
}

// Value returns the watched Variable or List on the target, or nil for block
// watchers and dangling names.
func (w *Watcher) Value() Watchable {
	if w.Target == nil {
		return nil
	}
	scope := w.Target.Scope()
	switch w.Kind() {
	case WatchVariable:
		if v, ok := scope.Variables[w.Name()]; ok {
			return v
		}
	case WatchList:
		if l, ok := scope.Lists[w.Name()]; ok {
			return l
		}
	}
	return nil
}

func (w *Watcher) String() string {
	return fmt.Sprintf("Watcher(%v, %s)", w.Target, w.Block)
}

func (w *Watcher) isActor() {}
