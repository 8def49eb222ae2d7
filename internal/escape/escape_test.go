// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jsonout/internal/escape"
	"go4.org/mem"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`a\b`, `a\\b`},
		{`say "hi"`, `say \"hi\"`},
		{"a\tb", `a\tb`},
		{"a\nb", `a\nb`},
		{`\"`, `\\\"`},
		{"\\\n", `\\\n`},
		{"\r\b\f", "\r\b\f"}, // other control characters are not escaped
		{"café  ", "café  "},
		{"\"\"\t\n\\", `\"\"\t\n\\`},
	}
	for _, tc := range tests {
		got := string(escape.Escape(mem.S(tc.input)))
		if got != tc.want {
			t.Errorf("Escape(%q): got %q, want %q", tc.input, got, tc.want)
		}
		if need := escape.NeedsEscape(mem.S(tc.input)); need != (got != tc.input) {
			t.Errorf("NeedsEscape(%q): got %v, want %v", tc.input, need, !need)
		}
	}
}

func TestEscapeOrder(t *testing.T) {
	// Replacing sequentially in the documented order must agree with the
	// single-pass implementation.
	inputs := []string{
		`\t`, "\\\t", `"\n"`, "\t\"\\\n", `\\\\`, "x\"y\tz\nw\\v",
	}
	for _, in := range inputs {
		want := in
		want = strings.ReplaceAll(want, `\`, `\\`)
		want = strings.ReplaceAll(want, `"`, `\"`)
		want = strings.ReplaceAll(want, "\t", `\t`)
		want = strings.ReplaceAll(want, "\n", `\n`)
		if got := string(escape.Escape(mem.S(in))); got != want {
			t.Errorf("Escape(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestAppend(t *testing.T) {
	got := escape.Append([]byte(`"`), mem.S("a\"b"))
	got = append(got, '"')
	if want := `"a\"b"`; string(got) != want {
		t.Errorf("Append: got %q, want %q", got, want)
	}
}

func TestNoRawQuoteOrNewline(t *testing.T) {
	for _, in := range []string{"\"", "\n", "a\"\"\n\nb", "\\\"\\\n"} {
		out := string(escape.Escape(mem.S(in)))
		if strings.Contains(out, "\n") {
			t.Errorf("Escape(%q) = %q contains a raw newline", in, out)
		}
		for i := 0; i < len(out); i++ {
			if out[i] != '"' {
				continue
			}
			// Count the backslashes preceding the quote; an odd count means
			// the quote is escaped.
			n := 0
			for j := i - 1; j >= 0 && out[j] == '\\'; j-- {
				n++
			}
			if n%2 == 0 {
				t.Errorf("Escape(%q) = %q has an unescaped quote at %d", in, out, i)
			}
		}
	}
}
