// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"cmp"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"time"
)

// A Marshaler is a value that renders itself. OutputJSON must write exactly
// one JSON value to out, typically by calling its Output methods.
type Marshaler interface {
	OutputJSON(out *Outputter)
}

// An Enum is a value of an enumerated type. Enums are rendered as their
// ordinal, not their name, so reordering the declarations of an enumerated
// type changes the encoding of its values.
type Enum interface {
	Ordinal() int
}

// A Mapping is a collection of key-value entries with its own iteration
// order. Keys are rendered as strings using fmt.Sprint.
type Mapping interface {
	Entries() iter.Seq2[any, any]
}

// Kind identifies which rendering rule applies to a value.
type Kind byte

// Constants defining the valid Kind values, in order of precedence.
const (
	KindNull     Kind = iota // null, and anything not covered below
	KindCustom               // a Marshaler
	KindString               // a string
	KindObject               // an Object
	KindProperty             // a Property descriptor
	KindNumber               // an integer, float, json.Number, or big number
	KindArray                // a Go array
	KindBool                 // true or false
	KindDate                 // a time.Time
	KindMap                  // a Go map or a Mapping
	KindList                 // a Go slice
	KindEnum                 // an Enum
)

var kindStr = [...]string{
	KindNull:     "null",
	KindCustom:   "custom",
	KindString:   "string",
	KindObject:   "object",
	KindProperty: "property",
	KindNumber:   "number",
	KindArray:    "array",
	KindBool:     "bool",
	KindDate:     "date",
	KindMap:      "map",
	KindList:     "list",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "invalid kind"
	}
	return kindStr[k]
}

// A Value is the classification of an arbitrary Go value into one of the
// rendering rules of the outputter. The set of implementations is closed;
// use Classify to construct one.
type Value interface {
	Kind() Kind

	isValue()
}

type (
	nullValue     struct{}
	customValue   struct{ m Marshaler }
	stringValue   string
	objectValue   struct{ obj Object }
	propertyValue struct{ prop Property }
	numberValue   string // formatted text
	arrayValue    struct{ rv reflect.Value }
	boolValue     bool
	dateValue     time.Time
	mapValue      struct{ entries iter.Seq2[any, any] }
	listValue     struct{ rv reflect.Value }
	enumValue     int
)

func (nullValue) Kind() Kind     { return KindNull }
func (customValue) Kind() Kind   { return KindCustom }
func (stringValue) Kind() Kind   { return KindString }
func (objectValue) Kind() Kind   { return KindObject }
func (propertyValue) Kind() Kind { return KindProperty }
func (numberValue) Kind() Kind   { return KindNumber }
func (arrayValue) Kind() Kind    { return KindArray }
func (boolValue) Kind() Kind     { return KindBool }
func (dateValue) Kind() Kind     { return KindDate }
func (mapValue) Kind() Kind      { return KindMap }
func (listValue) Kind() Kind     { return KindList }
func (enumValue) Kind() Kind     { return KindEnum }

func (nullValue) isValue()     {}
func (customValue) isValue()   {}
func (stringValue) isValue()   {}
func (objectValue) isValue()   {}
func (propertyValue) isValue() {}
func (numberValue) isValue()   {}
func (arrayValue) isValue()    {}
func (boolValue) isValue()     {}
func (dateValue) isValue()     {}
func (mapValue) isValue()      {}
func (listValue) isValue()     {}
func (enumValue) isValue()     {}

// Classify reports which rendering rule applies to v. The first matching
// rule in Kind order wins; for example, an Object that is also a Marshaler
// renders itself.
//
// Capabilities (Marshaler, Object, Property, Mapping, Enum) are checked on v
// itself. Otherwise a non-nil pointer or interface is dereferenced and its
// target classified in turn. A value of numeric or string kind that
// implements Enum is an enum, but one of bool, array, slice or map kind
// follows the rule for its kind. Anything left over, including nil, is null.
func Classify(v any) Value {
	switch t := v.(type) {
	case nil:
		return nullValue{}
	case Marshaler:
		return customValue{t}
	case string:
		return stringValue(t)
	case Object:
		return objectValue{t}
	case Property:
		return propertyValue{t}
	case json.Number:
		if t == "" {
			return nullValue{}
		}
		return numberValue(t)
	case *big.Int:
		if t == nil {
			return nullValue{}
		}
		return numberValue(t.String())
	case *big.Float:
		if t == nil || t.IsInf() {
			return nullValue{}
		}
		return numberValue(t.Text('g', -1))
	case bool:
		return boolValue(t)
	case time.Time:
		return dateValue(t)
	case *time.Time:
		if t == nil {
			return nullValue{}
		}
		return dateValue(*t)
	case Mapping:
		return mapValue{t.Entries()}
	case Enum:
		if isEnum(t) {
			return enumValue(t.Ordinal())
		}
	}
	return classifyReflect(reflect.ValueOf(v))
}

// isEnum reports whether the Enum rule applies to e. Types of bool, array,
// slice or map kind keep the rule of their kind, and a nil pointer is null.
func isEnum(e Enum) bool {
	rv := reflect.ValueOf(e)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool, reflect.Array, reflect.Slice, reflect.Map:
		return false
	}
	return true
}

func classifyReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nullValue{}
		}
		return Classify(rv.Elem().Interface())
	case reflect.String:
		return stringValue(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberValue(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberValue(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.Array:
		return arrayValue{rv}
	case reflect.Bool:
		return boolValue(rv.Bool())
	case reflect.Map:
		if rv.IsNil() {
			return nullValue{}
		}
		return mapValue{sortedEntries(rv)}
	case reflect.Slice:
		if rv.IsNil() {
			return nullValue{}
		}
		return listValue{rv}
	}
	return nullValue{}
}

func formatFloat(f float64, bits int) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nullValue{}
	}
	return numberValue(strconv.FormatFloat(f, 'g', -1, bits))
}

// keyText renders the key of a map entry.
func keyText(key any) string {
	if key == nil {
		return ""
	} else if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

// sortedEntries returns the entries of a Go map ordered by key text. Go maps
// have no iteration order of their own.
func sortedEntries(rv reflect.Value) iter.Seq2[any, any] {
	type entry struct {
		text       string
		key, value any
	}
	es := make([]entry, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		k := it.Key().Interface()
		es = append(es, entry{keyText(k), k, it.Value().Interface()})
	}
	slices.SortStableFunc(es, func(a, b entry) int { return cmp.Compare(a.text, b.text) })
	return func(yield func(any, any) bool) {
		for _, e := range es {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Output renders v as JSON to the current output target.
func (o *Outputter) Output(v any) { o.outputValue(Classify(v)) }

func (o *Outputter) outputValue(v Value) {
	if o.err != nil {
		return
	}
	switch t := v.(type) {
	case nullValue:
		o.put("null")
	case customValue:
		t.m.OutputJSON(o)
	case stringValue:
		o.OutputString(string(t))
	case objectValue:
		o.outputObject(t.obj)
	case propertyValue:
		o.outputPropertyRef(t.prop)
	case numberValue:
		o.put(string(t))
	case arrayValue:
		o.outputSeq(t.rv)
	case boolValue:
		o.put(strconv.FormatBool(bool(t)))
	case dateValue:
		o.OutputString(FormatDate(time.Time(t)))
	case mapValue:
		o.outputEntries(t.entries)
	case listValue:
		o.outputSeq(t.rv)
	case enumValue:
		o.put(strconv.Itoa(int(t)))
	default:
		panic(fmt.Sprintf("jsonout: unhandled value kind %v", v.Kind()))
	}
}

// outputSeq renders the elements of an array or slice.
func (o *Outputter) outputSeq(rv reflect.Value) {
	o.putByte('[')
	for i := range rv.Len() {
		if i > 0 {
			o.putByte(',')
		}
		o.Output(rv.Index(i).Interface())
	}
	o.putByte(']')
}

func (o *Outputter) outputEntries(entries iter.Seq2[any, any]) {
	o.putByte('{')
	first := true
	for key, val := range entries {
		if !first {
			o.putByte(',')
		}
		first = false
		o.OutputString(keyText(key))
		o.putByte(':')
		o.Output(val)
	}
	o.putByte('}')
}

// outputPropertyRef renders a reference to a property descriptor itself,
// rather than the value of the property.
func (o *Outputter) outputPropertyRef(p Property) {
	o.put(`{"class":`)
	o.OutputString(PropertyClassID)
	o.put(`,"forClass_":`)
	o.OutputString(p.ForClass() + "." + p.Name())
	o.putByte('}')
}
