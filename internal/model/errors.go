// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"strings"
)

// StructuralInvariantError reports a project whose shape is inconsistent,
// e.g. two sprites sharing a name. It is never recoverable.
type StructuralInvariantError struct {
	Reason string
}

func (e *StructuralInvariantError) Error() string {
	return "invalid project: " + e.Reason
}

// BlockNotSupportedError reports a block the target format cannot express.
// The registry returns it with only Type and Format set; the pipeline fills
// in the Block and its owner before handing it to the caller.
type BlockNotSupportedError struct {
	Type       Type
	Block      *Block
	Scriptable Scriptable
	Format     string
	// Reason overrides the default explanation.
	Reason string
}

func (e *BlockNotSupportedError) Error() string {
	var b strings.Builder
	if e.Block != nil {
		fmt.Fprintf(&b, "block %q", firstLine(e.Block.String()))
	} else {
		fmt.Fprintf(&b, "block type %v", e.Type)
	}
	if e.Scriptable != nil {
		fmt.Fprintf(&b, " in %v", e.Scriptable)
	}
	reason := e.Reason
	if reason == "" {
		reason = "has no conversion"
	}
	fmt.Fprintf(&b, " is not supported by format %q: %s", e.Format, reason)
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
