// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package structinfo implements jsonout introspection for Go struct types.
//
// The exported fields of a struct are its properties, in declaration order,
// with the fields of embedded structs in place of the embedded field. A field
// tag with key "jsonout" sets the name of the property and its flags:
//
//	type Account struct {
//	   ID     int    `jsonout:"id"`
//	   Owner  string `jsonout:"owner"`
//	   Token  string `jsonout:"token,network,storage"`
//	   Key    string `jsonout:"key,multipart"`
//	   Cache  []byte `jsonout:"-"`
//	}
//
// The flags are:
//
//	network   -- omit the property in jsonout.Network mode
//	storage   -- omit the property in jsonout.Storage mode
//	multipart -- the property is a multi-part identifier, never emitted
//
// A field is set if it is not the zero value of its type. The class ID of a
// struct is the result of its ClassID method, if it has one, or else the name
// of the type.
package structinfo

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/creachadair/jsonout"
)

// ErrNotStruct is reported for values that are not structs or pointers to
// structs.
var ErrNotStruct = errors.New("not a struct type")

// ClassIDer is implemented by struct types that define their own class ID.
type ClassIDer interface {
	ClassID() string
}

// A Class describes the properties of a struct type.
type Class struct {
	id    string
	typ   reflect.Type
	props []jsonout.Property
}

// ID returns the class ID of c.
func (c *Class) ID() string { return c.id }

// Type returns the struct type described by c.
func (c *Class) Type() reflect.Type { return c.typ }

// Properties returns the property descriptors of c in declaration order.
func (c *Class) Properties() []jsonout.Property { return c.props }

// Property returns the descriptor for the named property, or nil.
func (c *Class) Property(name string) *Property {
	for _, p := range c.props {
		if p.Name() == name {
			return p.(*Property)
		}
	}
	return nil
}

func (c *Class) String() string { return fmt.Sprintf("Class(%q, props=%d)", c.id, len(c.props)) }

var classes sync.Map // reflect.Type → *Class

// ClassOf returns the class of proto, which must be a struct or a pointer to
// a struct. A nil pointer is allowed.
func ClassOf(proto any) (*Class, error) {
	t := reflect.TypeOf(proto)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structinfo: %v: %w", t, ErrNotStruct)
	}
	return classOfType(t), nil
}

// MustClass is as ClassOf, but panics on error.
func MustClass(proto any) *Class {
	c, err := ClassOf(proto)
	if err != nil {
		panic(err)
	}
	return c
}

func classOfType(t reflect.Type) *Class {
	if c, ok := classes.Load(t); ok {
		return c.(*Class)
	}
	c := &Class{id: t.Name(), typ: t}
	if ider, ok := reflect.New(t).Interface().(ClassIDer); ok {
		c.id = ider.ClassID()
	}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || (f.Anonymous && indirect(f.Type).Kind() == reflect.Struct) {
			continue
		}
		tag, ok := f.Tag.Lookup("jsonout")
		if tag == "-" {
			continue
		}
		p := &Property{class: c.id, name: f.Name, index: f.Index}
		if ok {
			name, flags, _ := strings.Cut(tag, ",")
			if name != "" {
				p.name = name
			}
			for _, flag := range strings.Split(flags, ",") {
				switch strings.TrimSpace(flag) {
				case "network":
					p.network = true
				case "storage":
					p.storage = true
				case "multipart":
					p.multipart = true
				}
			}
		}
		c.props = append(c.props, p)
	}
	actual, _ := classes.LoadOrStore(t, c)
	return actual.(*Class)
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// Wrap returns a jsonout.Object for v, which must be a non-nil pointer to a
// struct. The object reads the fields of *v each time it is rendered.
func Wrap(v any) (jsonout.Object, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("structinfo: wrap %T: %w", v, ErrNotStruct)
	}
	return object{class: classOfType(rv.Elem().Type()), v: rv.Elem()}, nil
}

// MustWrap is as Wrap, but panics on error.
func MustWrap(v any) jsonout.Object {
	obj, err := Wrap(v)
	if err != nil {
		panic(err)
	}
	return obj
}

// object is a jsonout.Object backed by an addressable struct value.
type object struct {
	class *Class
	v     reflect.Value
}

func (o object) ClassID() string                { return o.class.id }
func (o object) Properties() []jsonout.Property { return o.class.props }

// Unwrap returns a pointer to the underlying struct.
func (o object) Unwrap() any { return o.v.Addr().Interface() }

// A Property describes one field of a struct type.
type Property struct {
	class string
	name  string
	index []int

	network, storage, multipart bool
}

func (p *Property) Name() string           { return p.name }
func (p *Property) ForClass() string       { return p.class }
func (p *Property) NetworkTransient() bool { return p.network }
func (p *Property) StorageTransient() bool { return p.storage }
func (p *Property) MultiPartID() bool      { return p.multipart }

// IsSet reports whether the field is not the zero value of its type.
func (p *Property) IsSet(obj jsonout.Object) bool {
	fv, ok := p.field(obj)
	return ok && !fv.IsZero()
}

// Get returns the value of the field. Nil pointers, slices, maps and
// interfaces have no value. Nested structs, and slices of them, are wrapped
// as objects.
func (p *Property) Get(obj jsonout.Object) (any, bool) {
	fv, ok := p.field(obj)
	if !ok {
		return nil, false
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if fv.IsNil() {
			return nil, false
		}
	}
	return value(fv), true
}

// Render implements part of jsonout.Property.
func (p *Property) Render(out *jsonout.Outputter, v any) { out.Output(v) }

func (p *Property) field(obj jsonout.Object) (reflect.Value, bool) {
	o, ok := obj.(object)
	if !ok {
		return reflect.Value{}, false
	}
	fv, err := o.v.FieldByIndexErr(p.index)
	if err != nil {
		return reflect.Value{}, false // nil embedded pointer
	}
	return fv, true
}

var timeType = reflect.TypeFor[time.Time]()

var (
	marshalerType = reflect.TypeFor[jsonout.Marshaler]()
	objectType    = reflect.TypeFor[jsonout.Object]()
)

// value converts a field value for rendering.
func value(fv reflect.Value) any {
	if isPlainStruct(fv.Type()) {
		return wrapStruct(fv)
	}
	if fv.Kind() == reflect.Struct && fv.CanAddr() && hasRendering(fv.Type()) {
		return fv.Addr().Interface() // methods with pointer receivers
	}
	if fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array {
		if isPlainStruct(fv.Type().Elem()) {
			out := make([]any, fv.Len())
			for i := range out {
				out[i] = wrapStruct(fv.Index(i))
			}
			return out
		}
	}
	return fv.Interface()
}

// isPlainStruct reports whether t is a struct or pointer to struct type with
// no rendering of its own.
func isPlainStruct(t reflect.Type) bool {
	if indirect(t).Kind() != reflect.Struct || indirect(t) == timeType {
		return false
	}
	return !hasRendering(indirect(t))
}

// hasRendering reports whether *t renders itself or is an object.
func hasRendering(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(marshalerType) || pt.Implements(objectType)
}

func wrapStruct(fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if !fv.CanAddr() {
		cp := reflect.New(fv.Type()).Elem()
		cp.Set(fv)
		fv = cp
	}
	return object{class: classOfType(fv.Type()), v: fv}
}
