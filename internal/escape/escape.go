// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package escape handles escaping of JSON string literals.
package escape

import "go4.org/mem"

// escByte maps each escaped input byte to the letter following the
// backslash in its escape sequence. Zero entries are copied verbatim.
var escByte = [...]byte{
	'\t': 't',
	'\n': 'n',
	'"':  '"',
	'\\': '\\',
}

// Escape escapes src for inclusion in a JSON string literal. Backslashes,
// double quotation marks, tabs and newlines are escaped; all other bytes,
// including other control characters, are copied unchanged.
func Escape(src mem.RO) []byte { return Append(make([]byte, 0, src.Len()), src) }

// Append appends the escaped form of src to dst and returns the extended
// slice. See Escape.
//
// The result is the same as replacing, in order, backslash, quotation mark,
// tab and newline with their escapes. Each rewrite only introduces bytes
// that no later rule matches, so a single pass suffices.
func Append(dst []byte, src mem.RO) []byte {
	for src.Len() != 0 {
		i := indexEscape(src)
		if i < 0 {
			return mem.Append(dst, src)
		}
		dst = mem.Append(dst, src.SliceTo(i))
		dst = append(dst, '\\', escByte[src.At(i)])
		src = src.SliceFrom(i + 1)
	}
	return dst
}

// NeedsEscape reports whether src contains any byte that Escape rewrites.
func NeedsEscape(src mem.RO) bool { return indexEscape(src) >= 0 }

func indexEscape(src mem.RO) int {
	for i := 0; i < src.Len(); i++ {
		if c := src.At(i); int(c) < len(escByte) && escByte[c] != 0 {
			return i
		}
	}
	return -1
}
