// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "fmt"

// Notice reports one change made while making a project fit a format. Every
// notice describes a mutation that has already been applied.
type Notice struct {
	// Feature is the missing feature, or empty for a rewritten block.
	Feature string
	// Object is what was changed: a Block, Costume, Variable name ...
	Object any
	Detail string
}

func (n Notice) String() string {
	s := fmt.Sprintf("%v", n.Object)
	if n.Feature != "" {
		s = fmt.Sprintf("%s: %s", n.Feature, s)
	}
	if n.Detail != "" {
		s += ": " + n.Detail
	}
	return s
}
