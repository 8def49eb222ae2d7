// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package testutil defines support code for unit tests.
package testutil

import (
	"errors"

	"github.com/creachadair/jsonout"
)

// A Field is one property of an Obj, with its descriptor flags and value.
type Field struct {
	Name      string
	Value     any  // nil means no value
	Set       bool // reported by IsSet
	Network   bool // network-transient
	Storage   bool // storage-transient
	MultiPart bool

	// If non-nil, Render is used in place of Outputter.Output.
	Render func(out *jsonout.Outputter, v any)
}

// An Obj is a jsonout.Object with a fixed list of fields.
type Obj struct {
	Class  string
	Fields []Field
}

// ClassID implements part of jsonout.Object.
func (o *Obj) ClassID() string { return o.Class }

// Properties implements part of jsonout.Object.
func (o *Obj) Properties() []jsonout.Property {
	ps := make([]jsonout.Property, len(o.Fields))
	for i := range o.Fields {
		ps[i] = Prop{Owner: o.Class, Index: i, Field: &o.Fields[i]}
	}
	return ps
}

// Set returns an Obj of the given class whose fields are all set, from
// alternating names and values.
func Set(class string, kv ...any) *Obj {
	obj := &Obj{Class: class}
	for i := 0; i+1 < len(kv); i += 2 {
		obj.Fields = append(obj.Fields, Field{Name: kv[i].(string), Value: kv[i+1], Set: true})
	}
	return obj
}

// Prop is the jsonout.Property for field Index of an Obj.
type Prop struct {
	Owner string
	Index int
	Field *Field
}

func (p Prop) Name() string           { return p.Field.Name }
func (p Prop) ForClass() string       { return p.Owner }
func (p Prop) NetworkTransient() bool { return p.Field.Network }
func (p Prop) StorageTransient() bool { return p.Field.Storage }
func (p Prop) MultiPartID() bool      { return p.Field.MultiPart }

func (p Prop) IsSet(obj jsonout.Object) bool { return p.field(obj).Set }

func (p Prop) Get(obj jsonout.Object) (any, bool) {
	v := p.field(obj).Value
	return v, v != nil
}

func (p Prop) Render(out *jsonout.Outputter, v any) {
	if p.Field.Render != nil {
		p.Field.Render(out, v)
		return
	}
	out.Output(v)
}

func (p Prop) field(obj jsonout.Object) *Field { return &obj.(*Obj).Fields[p.Index] }

// FixedDigester is a jsonout.Digester that always returns the same sum.
type FixedDigester []byte

func (d FixedDigester) Hash(jsonout.Object, string, []byte) ([]byte, error) { return d, nil }

// ErrBadAlgorithm is reported by FailDigester.
var ErrBadAlgorithm = errors.New("bad algorithm")

// FailDigester is a jsonout.Digester that always fails.
type FailDigester struct{}

func (FailDigester) Hash(jsonout.Object, string, []byte) ([]byte, error) {
	return nil, ErrBadAlgorithm
}
