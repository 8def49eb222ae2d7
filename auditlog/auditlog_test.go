// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package auditlog_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jsonout"
	"github.com/creachadair/jsonout/auditlog"
	"github.com/creachadair/jsonout/internal/testutil"
)

func entries() []jsonout.Object {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []jsonout.Object
	for i, who := range []string{"alice", "bob", "carol", "dave"} {
		out = append(out, &testutil.Obj{Class: "Transfer", Fields: []testutil.Field{
			{Name: "seq", Value: i + 1, Set: true},
			{Name: "who", Value: who, Set: true},
			{Name: "at", Value: base.Add(time.Duration(i) * time.Minute), Set: true},
			{Name: "memo", Value: "note\t" + who, Set: true, Storage: true},
			{Name: "party", Value: testutil.Set("Party", "name", who), Set: true},
		}})
	}
	return out
}

func writeLog(t *testing.T, opts *jsonout.Options) (string, *auditlog.Log) {
	t.Helper()
	var buf bytes.Buffer
	lg, err := auditlog.New(&buf, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, obj := range entries() {
		if err := lg.Put(obj); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return buf.String(), lg
}

func TestVerify(t *testing.T) {
	for _, opts := range []*jsonout.Options{
		nil,
		{Mode: jsonout.Storage},
		{Mode: jsonout.Network, HashAlgorithm: "SHA3-512"},
		{OutputDefaultValues: true, HashAlgorithm: "sha1"},
	} {
		text, lg := writeLog(t, opts)
		if got := strings.Count(text, "\n"); got != 4 {
			t.Fatalf("Log has %d lines, want 4:\n%s", got, text)
		}
		n, err := auditlog.Verify(strings.NewReader(text), opts)
		if err != nil {
			t.Errorf("Verify: unexpected error: %v", err)
		}
		if n != 4 {
			t.Errorf("Verify: got %d records, want 4", n)
		}

		v, err := auditlog.NewVerifier(opts)
		if err != nil {
			t.Fatalf("NewVerifier: %v", err)
		}
		for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
			if err := v.Check(line); err != nil {
				t.Fatalf("Check: %v", err)
			}
		}
		if v.Head() != lg.Head() {
			t.Errorf("Verifier head %s != log head %s", v.Head(), lg.Head())
		}
	}
}

func TestTamper(t *testing.T) {
	text, _ := writeLog(t, nil)
	lines := strings.SplitAfter(text, "\n")

	tests := []struct {
		name  string
		input string
		n     int // records verified before the failure
	}{
		{"EditValue", strings.Replace(text, `"who":"carol"`, `"who":"carl"`, 1), 2},
		{"EditNested", strings.Replace(text, `"name":"bob"`, `"name":"rob"`, 1), 1},
		{"Swap", lines[0] + lines[2] + lines[1] + lines[3], 1},
		{"Drop", lines[0] + lines[1] + lines[3], 2},
		{"DropFirst", lines[1] + lines[2] + lines[3], 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := auditlog.Verify(strings.NewReader(tc.input), nil)
			var me *auditlog.MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("Verify: got %v, want *MismatchError", err)
			}
			if me.Record != tc.n+1 {
				t.Errorf("Mismatch at record %d, want %d", me.Record, tc.n+1)
			}
			if n != tc.n {
				t.Errorf("Verify: got %d records, want %d", n, tc.n)
			}
			if me.Got == me.Want {
				t.Errorf("Mismatch with identical text: %s", me.Got)
			}
		})
	}
}

func TestVerifyMalformed(t *testing.T) {
	text, _ := writeLog(t, nil)
	bad := text + "{not json\n"
	n, err := auditlog.Verify(strings.NewReader(bad), nil)
	if err == nil {
		t.Fatal("Verify: got nil, want error")
	}
	var me *auditlog.MismatchError
	if errors.As(err, &me) {
		t.Errorf("Verify: got mismatch %v, want parse error", err)
	}
	if n != 4 {
		t.Errorf("Verify: got %d records, want 4", n)
	}
}

func TestVerifyRecords(t *testing.T) {
	text, _ := writeLog(t, &jsonout.Options{Mode: jsonout.Storage})
	recs := strings.Split(strings.TrimSpace(text), "\n")
	if n, err := auditlog.VerifyRecords(recs, &jsonout.Options{Mode: jsonout.Storage}); err != nil || n != 4 {
		t.Errorf("VerifyRecords: got (%d, %v), want (4, nil)", n, err)
	}
	// Verifying with a different algorithm fails at the first record.
	if n, err := auditlog.VerifyRecords(recs, &jsonout.Options{HashAlgorithm: "SHA-384"}); err == nil || n != 0 {
		t.Errorf("VerifyRecords: got (%d, %v), want (0, error)", n, err)
	}
	if _, err := auditlog.VerifyRecords(recs, &jsonout.Options{HashAlgorithm: "bogus"}); !errors.Is(err, jsonout.ErrUnknownAlgorithm) {
		t.Errorf("VerifyRecords: got %v, want %v", err, jsonout.ErrUnknownAlgorithm)
	}
}

func TestEmpty(t *testing.T) {
	var buf bytes.Buffer
	lg, err := auditlog.New(&buf, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h := lg.Head(); h != "" {
		t.Errorf("Head of empty log: got %q, want empty", h)
	}
	if n, err := auditlog.Verify(strings.NewReader("\n\n"), nil); err != nil || n != 0 {
		t.Errorf("Verify empty: got (%d, %v), want (0, nil)", n, err)
	}
}

func TestResume(t *testing.T) {
	opts := &jsonout.Options{Mode: jsonout.Network, HashAlgorithm: "BLAKE2s-256"}
	full, lg := writeLog(t, opts)
	lines := strings.SplitAfter(full, "\n")
	prefix := strings.Join(lines[:2], "")

	var tail bytes.Buffer
	rl, err := auditlog.Resume(&tail, opts, strings.Split(strings.TrimSpace(prefix), "\n"))
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	for _, obj := range entries()[2:] {
		if err := rl.Put(obj); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if got := prefix + tail.String(); got != full {
		t.Errorf("Resumed log differs:\ngot:  %s\nwant: %s", got, full)
	}
	if rl.Head() != lg.Head() {
		t.Errorf("Resumed head %s, want %s", rl.Head(), lg.Head())
	}

	bad := strings.Replace(prefix, "alice", "alicia", 1)
	if _, err := auditlog.Resume(&tail, opts, strings.Split(strings.TrimSpace(bad), "\n")); err == nil {
		t.Error("Resume with a tampered record: got nil, want error")
	}
}
