// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package record decodes the output of a jsonout.Outputter into dynamic
// objects that can be inspected, and rendered again.
//
// An object is recognized by a leading "class" member with a string value.
// The result of Parse implements jsonout.Object, and rendering it with the
// same settings that produced the input reproduces the input text, provided
// the properties of the source object used the standard renderings.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/creachadair/jsonout"
	"github.com/tailscale/hujson"
)

// ErrNotObject is reported by Parse when its input is not a jsonout object.
var ErrNotObject = errors.New(`not an object with a leading "class" member`)

// An Object is a dynamic jsonout.Object decoded from text.
type Object struct {
	Class  string
	Fields []Field

	// Hash is the value of the trailing "hash" member, or "" if there was
	// none. It is not one of the Fields.
	Hash string
}

// A Field is a named value of an Object.
type Field struct {
	Name  string
	Value any
}

// ClassID implements part of jsonout.Object.
func (o *Object) ClassID() string { return o.Class }

// Properties implements part of jsonout.Object. Every field is reported as
// set and present, so a field with a nil value renders as null.
func (o *Object) Properties() []jsonout.Property {
	ps := make([]jsonout.Property, len(o.Fields))
	for i, f := range o.Fields {
		ps[i] = fieldProp{class: o.Class, name: f.Name, index: i}
	}
	return ps
}

// Get returns the value of the first field with the given name, and reports
// whether such a field exists.
func (o *Object) Get(name string) (any, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (o *Object) String() string { return fmt.Sprintf("Object(class=%q, len=%d)", o.Class, len(o.Fields)) }

type fieldProp struct {
	class, name string
	index       int
}

func (p fieldProp) Name() string                       { return p.name }
func (p fieldProp) ForClass() string                   { return p.class }
func (fieldProp) NetworkTransient() bool               { return false }
func (fieldProp) StorageTransient() bool               { return false }
func (fieldProp) MultiPartID() bool                    { return false }
func (fieldProp) IsSet(jsonout.Object) bool            { return true }
func (fieldProp) Render(out *jsonout.Outputter, v any) { out.Output(v) }
func (p fieldProp) Get(obj jsonout.Object) (any, bool) { return obj.(*Object).Fields[p.index].Value, true }

// A Map is a JSON object that is not a jsonout object. It preserves the
// order of its members.
type Map struct {
	Members []Field
}

// Entries implements the jsonout.Mapping interface.
func (m *Map) Entries() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, f := range m.Members {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// Get returns the value of the first member with the given key, and reports
// whether such a member exists.
func (m *Map) Get(key string) (any, bool) {
	for _, f := range m.Members {
		if f.Name == key {
			return f.Value, true
		}
	}
	return nil, false
}

// A PropertyRef is a reference to a property descriptor, decoded from the
// rendering of a jsonout.Property value.
type PropertyRef struct {
	Class string // the class that declares the property
	Field string // the name of the property
}

func (p PropertyRef) Name() string                       { return p.Field }
func (p PropertyRef) ForClass() string                   { return p.Class }
func (PropertyRef) NetworkTransient() bool               { return false }
func (PropertyRef) StorageTransient() bool               { return false }
func (PropertyRef) MultiPartID() bool                    { return false }
func (PropertyRef) IsSet(jsonout.Object) bool            { return false }
func (PropertyRef) Get(jsonout.Object) (any, bool)       { return nil, false }
func (PropertyRef) Render(out *jsonout.Outputter, v any) { out.Output(v) }

// Parse decodes a single jsonout object from data.
//
// Nested objects with a leading "class" member become *Object values, or a
// PropertyRef for the class jsonout.PropertyClassID; other objects become
// *Map values. Arrays become []any, numbers json.Number, and strings,
// Booleans and null the corresponding Go values.
func Parse(data []byte) (*Object, error) {
	v, err := ParseValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// ParseValue decodes a single JSON value from data, as described by Parse.
func ParseValue(data []byte) (any, error) {
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return convert(v)
}

func convert(v hujson.Value) (any, error) {
	switch t := v.Value.(type) {
	case hujson.Literal:
		return literal(t)
	case *hujson.Array:
		out := make([]any, len(t.Elements))
		for i, elt := range t.Elements {
			ev, err := convert(elt)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case *hujson.Object:
		return object(t)
	default:
		return nil, fmt.Errorf("unexpected value of type %T", v.Value)
	}
}

func literal(lit hujson.Literal) (any, error) {
	switch lit.Kind() {
	case 'n':
		return nil, nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case '0':
		return json.Number(string(lit)), nil
	case '"':
		var s string
		if err := json.Unmarshal(lit, &s); err != nil {
			return nil, fmt.Errorf("invalid string %s: %w", lit, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("invalid literal %q", lit)
	}
}

func object(obj *hujson.Object) (any, error) {
	fs := make([]Field, len(obj.Members))
	for i, m := range obj.Members {
		lit, ok := m.Name.Value.(hujson.Literal)
		if !ok {
			return nil, fmt.Errorf("invalid member name of type %T", m.Name.Value)
		}
		name, err := literal(lit)
		if err != nil {
			return nil, err
		}
		key, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("invalid member name %s", lit)
		}
		val, err := convert(m.Value)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		fs[i] = Field{Name: key, Value: val}
	}

	class, ok := leadingClass(fs)
	if !ok {
		return &Map{Members: fs}, nil
	}
	if class == jsonout.PropertyClassID {
		if ref, ok := propertyRef(fs); ok {
			return ref, nil
		}
	}
	out := &Object{Class: class, Fields: fs[1:]}
	if n := len(out.Fields); n > 0 && out.Fields[n-1].Name == "hash" {
		if h, ok := out.Fields[n-1].Value.(string); ok {
			out.Hash = h
			out.Fields = out.Fields[:n-1]
		}
	}
	return out, nil
}

func leadingClass(fs []Field) (string, bool) {
	if len(fs) == 0 || fs[0].Name != "class" {
		return "", false
	}
	s, ok := fs[0].Value.(string)
	return s, ok
}

// propertyRef decodes {"class":"__Property__","forClass_":"Owner.Name"}.
func propertyRef(fs []Field) (PropertyRef, bool) {
	if len(fs) != 2 || fs[1].Name != "forClass_" {
		return PropertyRef{}, false
	}
	s, ok := fs[1].Value.(string)
	if !ok {
		return PropertyRef{}, false
	}
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return PropertyRef{}, false
	}
	return PropertyRef{Class: s[:i], Field: s[i+1:]}, true
}
