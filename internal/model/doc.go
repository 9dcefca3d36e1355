// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the format-independent, in-memory representation of a
// visual-programming project: the block types scripts are built from, the
// scripts themselves, and the sprites, stage, watchers and variables that own
// them.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Insert: one argument slot of a block type. It describes the value shape
//     (number, string, menu, boolean, stack ...), the menu kind and the default.
//
//   - PluginBlockType: one file format's spelling of a block. Each format names
//     its blocks with a stable `command` and shows them with a text template.
//
//   - BlockType: the canonical identity of a block concept. It groups the
//     PluginBlockTypes of every format that can express the concept, so that a
//     project loaded from one format can be written to another.
//
//   - CustomBlockType: a user-defined block. It never enters a registry and is
//     compared by identity, so two definitions with identical text stay distinct.
//
//   - Block and Script: instances of block types with bound arguments, and the
//     ordered sequences they form on a scripting canvas.
//
//   - Project: the aggregate root. It owns the Stage, the Sprites, the Actor list
//     (Sprites and Watchers) and the global Variables and Lists.
//
// Why a separate model package?
//
// Every file format plugin reads into and writes from this package, and the
// normalization pipeline only ever operates on it. Keeping the model free of
// any byte-level concerns means that adding a new format never touches the
// conversion engine, and the engine can reason about a project without knowing
// where it came from.
//
// Block types are resolved through the Resolver interface instead of a global
// table. A registry value is built once per process and passed explicitly to
// every constructor that needs to look a block up.
package model
