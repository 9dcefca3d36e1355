// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// stripPattern removes insert placeholders (`%s`, `%n`, `%m.kind` ...) and
// the punctuation that formats disagree on.
var stripPattern = regexp.MustCompile(`%[a-z](\.[a-z0-9_]+)?|[ ,?:]`)

// StripText normalizes a block text template for loose lookups. Hyphens and
// percent signs are removed only when something is left afterwards, so that
// blocks such as `-` and `%` keep a key.
func StripText(text string) string {
	text = cases.Fold().String(norm.NFKC.String(text))
	text = stripPattern.ReplaceAllString(text, "")
	for _, c := range []string{"-", "%"} {
		if stripped := strings.ReplaceAll(text, c, ""); stripped != "" {
			text = stripped
		}
	}
	return text
}
