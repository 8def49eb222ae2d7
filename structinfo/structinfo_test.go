// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package structinfo_test

import (
	"errors"
	"testing"
	"time"

	"github.com/creachadair/jsonout"
	"github.com/creachadair/jsonout/structinfo"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

type Audit struct {
	Created time.Time `jsonout:"created"`
	By      string    `jsonout:"by,network"`
}

type Line struct {
	SKU string `jsonout:"sku"`
	Qty int    `jsonout:"qty"`
}

type Status int

func (s Status) Ordinal() int { return int(s) }

type Order struct {
	Audit

	ID       int               `jsonout:"id"`
	Key      string            `jsonout:"key,multipart"`
	Customer *Customer         `jsonout:"customer"`
	Lines    []Line            `jsonout:"lines"`
	Status   Status            `jsonout:"status"`
	Token    string            `jsonout:"token,network,storage"`
	Notes    map[string]string `jsonout:"notes"`
	Cache    []byte            `jsonout:"-"`
	Plain    bool

	internal int
}

func (*Order) ClassID() string { return "shop.Order" }

type Customer struct {
	Name string `jsonout:"name"`
}

func TestClassOf(t *testing.T) {
	c, err := structinfo.ClassOf((*Order)(nil))
	if err != nil {
		t.Fatalf("ClassOf: unexpected error: %v", err)
	}
	if got := c.ID(); got != "shop.Order" {
		t.Errorf("ID: got %q, want shop.Order", got)
	}
	var names []string
	for _, p := range c.Properties() {
		names = append(names, p.Name())
	}
	want := []string{"created", "by", "id", "key", "customer", "lines", "status", "token", "notes", "Plain"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Properties (-want, +got):\n%s", diff)
	}

	tok := c.Property("token")
	if tok == nil || !tok.NetworkTransient() || !tok.StorageTransient() || tok.MultiPartID() {
		t.Errorf("Property(token): got %+v", tok)
	}
	if p := c.Property("key"); p == nil || !p.MultiPartID() {
		t.Errorf("Property(key): got %+v", p)
	}
	if p := c.Property("nonesuch"); p != nil {
		t.Errorf("Property(nonesuch): got %+v, want nil", p)
	}

	// Classes are cached by type.
	if c2 := structinfo.MustClass(Order{}); c2 != c {
		t.Errorf("MustClass: got %p, want %p", c2, c)
	}
	if got := structinfo.MustClass(Customer{}).ID(); got != "Customer" {
		t.Errorf("Customer ID: got %q, want Customer", got)
	}
}

func TestErrors(t *testing.T) {
	for _, v := range []any{nil, 5, "x", []Order{}, (*int)(nil)} {
		if _, err := structinfo.ClassOf(v); !errors.Is(err, structinfo.ErrNotStruct) {
			t.Errorf("ClassOf(%T): got %v, want %v", v, err, structinfo.ErrNotStruct)
		}
	}
	for _, v := range []any{nil, Order{}, (*Order)(nil), new(int)} {
		if _, err := structinfo.Wrap(v); !errors.Is(err, structinfo.ErrNotStruct) {
			t.Errorf("Wrap(%T): got %v, want %v", v, err, structinfo.ErrNotStruct)
		}
	}
	mtest.MustPanic(t, func() { structinfo.MustClass(17) })
	mtest.MustPanic(t, func() { structinfo.MustWrap(Order{}) })
}

func TestOutput(t *testing.T) {
	order := &Order{
		Audit:    Audit{Created: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), By: "clerk"},
		ID:       42,
		Key:      "42:a",
		Customer: &Customer{Name: "Ada"},
		Lines:    []Line{{SKU: "x1", Qty: 2}, {SKU: "y2"}},
		Status:   Status(2),
		Token:    "t0k",
		Cache:    []byte("ignored"),
		internal: 9,
	}
	obj := structinfo.MustWrap(order)

	tests := []struct {
		mode     jsonout.Mode
		defaults bool
		want     string
	}{
		{jsonout.Full, false, `{"class":"shop.Order","created":"2025-06-01T12:00:00.000Z","by":"clerk","id":42,` +
			`"customer":{"class":"Customer","name":"Ada"},` +
			`"lines":[{"class":"Line","sku":"x1","qty":2},{"class":"Line","sku":"y2"}],"status":2,"token":"t0k"}`},
		{jsonout.Network, false, `{"class":"shop.Order","created":"2025-06-01T12:00:00.000Z","id":42,` +
			`"customer":{"class":"Customer","name":"Ada"},` +
			`"lines":[{"class":"Line","sku":"x1","qty":2},{"class":"Line","sku":"y2"}],"status":2}`},
		{jsonout.Storage, true, `{"class":"shop.Order","created":"2025-06-01T12:00:00.000Z","by":"clerk","id":42,` +
			`"customer":{"class":"Customer","name":"Ada"},` +
			`"lines":[{"class":"Line","sku":"x1","qty":2},{"class":"Line","sku":"y2","qty":0}],"status":2,"Plain":false}`},
	}
	for _, tc := range tests {
		out, err := jsonout.New(&jsonout.Options{Mode: tc.mode, OutputDefaultValues: tc.defaults})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		got, err := out.Stringify(obj)
		if err != nil {
			t.Fatalf("Stringify: %v", err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Stringify %v (-want, +got):\n%s", tc.mode, diff)
		}
	}

	// The wrapper reads the struct each time it is rendered.
	order.ID = 43
	out, err := jsonout.New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := structinfo.MustClass(order)
	got, err := out.StringifyValue([]any{c.Property("id"), obj.Properties()[2]})
	if err != nil {
		t.Fatalf("StringifyValue: %v", err)
	}
	want := `[{"class":"__Property__","forClass_":"shop.Order.id"},{"class":"__Property__","forClass_":"shop.Order.id"}]`
	if got != want {
		t.Errorf("Property refs: got %s, want %s", got, want)
	}
	if v, ok := c.Property("id").Get(obj); !ok || v != 43 {
		t.Errorf("Get(id): got (%v, %v), want (43, true)", v, ok)
	}
}

func TestNilEmbedded(t *testing.T) {
	type Inner struct {
		X int `jsonout:"x"`
	}
	type Outer struct {
		*Inner
		Y int `jsonout:"y"`
	}
	out, err := jsonout.New(&jsonout.Options{OutputDefaultValues: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := out.Stringify(structinfo.MustWrap(&Outer{Y: 1}))
	if err != nil {
		t.Fatalf("Stringify: %v", err)
	}
	if want := `{"class":"Outer","y":1}`; got != want {
		t.Errorf("Stringify: got %s, want %s", got, want)
	}
}
