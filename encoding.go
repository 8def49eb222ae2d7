// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"github.com/creachadair/jsonout/internal/escape"

	"go4.org/mem"
)

// Escape escapes s for inclusion in a JSON string literal. Backslash, double
// quote, tab and newline are escaped; no other characters are changed.
func Escape(s string) string {
	if !escape.NeedsEscape(mem.S(s)) {
		return s
	}
	return string(escape.Escape(mem.S(s)))
}

// Quote encodes s as a JSON string literal: the contents are escaped as by
// Escape and double quotation marks are added.
func Quote(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	buf = escape.Append(buf, mem.S(s))
	return string(append(buf, '"'))
}
