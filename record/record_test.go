// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package record_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/creachadair/jsonout"
	"github.com/creachadair/jsonout/internal/testutil"
	"github.com/creachadair/jsonout/record"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	const input = `{"class":"Order","id":7,"note":"a\"b\tc","ok":true,"none":null,` +
		`"tags":["x",1.5],"meta":{"k":"v","n":{}},"owner":{"class":"User","name":"bo","hash":"00ff"},` +
		`"prop":{"class":"__Property__","forClass_":"pkg.User.name"},"hash":"abcd"}`
	obj, err := record.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := &record.Object{
		Class: "Order",
		Fields: []record.Field{
			{Name: "id", Value: json.Number("7")},
			{Name: "note", Value: "a\"b\tc"},
			{Name: "ok", Value: true},
			{Name: "none", Value: nil},
			{Name: "tags", Value: []any{"x", json.Number("1.5")}},
			{Name: "meta", Value: &record.Map{Members: []record.Field{
				{Name: "k", Value: "v"},
				{Name: "n", Value: &record.Map{Members: []record.Field{}}},
			}}},
			{Name: "owner", Value: &record.Object{
				Class:  "User",
				Fields: []record.Field{{Name: "name", Value: "bo"}},
				Hash:   "00ff",
			}},
			{Name: "prop", Value: record.PropertyRef{Class: "pkg.User", Field: "name"}},
		},
		Hash: "abcd",
	}
	if diff := cmp.Diff(want, obj); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}

	if v, ok := obj.Get("ok"); !ok || v != true {
		t.Errorf("Get(ok): got (%v, %v), want (true, true)", v, ok)
	}
	if _, ok := obj.Get("hash"); ok {
		t.Error("Get(hash): hash should not be a field")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"Empty", ``},
		{"Array", `[1,2]`},
		{"Scalar", `"class"`},
		{"NoClass", `{"a":1}`},
		{"ClassNotFirst", `{"a":1,"class":"X"}`},
		{"ClassNotString", `{"class":5}`},
		{"Truncated", `{"class":"X","a":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obj, err := record.Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("Parse(%q): got %v, want error", tc.input, obj)
			}
		})
	}
	if _, err := record.Parse([]byte(`{"a":1}`)); !errors.Is(err, record.ErrNotObject) {
		t.Errorf("Parse: got %v, want %v", err, record.ErrNotObject)
	}
}

func TestParseValue(t *testing.T) {
	v, err := record.ParseValue([]byte(`{"b":1,"a":[true,null]}`))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	m, ok := v.(*record.Map)
	if !ok {
		t.Fatalf("ParseValue: got %T, want *record.Map", v)
	}
	if got, ok := m.Get("a"); !ok || !cmp.Equal(got, []any{true, nil}) {
		t.Errorf("Get(a): got (%v, %v)", got, ok)
	}
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2025, 1, 2, 3, 4, 5, 600_000_000, time.UTC)
	owner := testutil.Set("User", "name", "bo", "age", 41)
	source := &testutil.Obj{Class: "Order", Fields: []testutil.Field{
		{Name: "id", Value: 7, Set: true},
		{Name: "when", Value: when, Set: true},
		{Name: "note", Value: "line1\nline2 \"quoted\" \\ tab\t", Set: true},
		{Name: "price", Value: 12.75, Set: true},
		{Name: "tags", Value: []string{"a", "b"}, Set: true},
		{Name: "attrs", Value: map[string]any{"z": 1, "a": []int{}}, Set: true},
		{Name: "owner", Value: owner, Set: true},
		{Name: "ownerName", Value: owner.Properties()[0], Set: true},
		{Name: "secret", Value: "s3cr3t", Set: true, Storage: true},
		{Name: "empty", Value: []any{nil, false}, Set: true},
	}}

	for _, opts := range []*jsonout.Options{
		{},
		{Mode: jsonout.Storage},
		{OutputHash: true},
		{OutputHash: true, RollHashes: true, HashAlgorithm: "BLAKE2b-256"},
		{OutputHash: true, RollHashes: true, Mode: jsonout.Storage},
	} {
		src, err := jsonout.New(opts)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		text, err := src.Stringify(source)
		if err != nil {
			t.Fatalf("Stringify: %v", err)
		}

		obj, err := record.Parse([]byte(text))
		if err != nil {
			t.Fatalf("Parse %s: %v", text, err)
		}
		dst, err := jsonout.New(opts)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		got, err := dst.Stringify(obj)
		if err != nil {
			t.Fatalf("Stringify record: %v", err)
		}
		if diff := cmp.Diff(text, got); diff != "" {
			t.Errorf("Round trip %+v (-want, +got):\n%s", *opts, diff)
		}
	}
}
