// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"fmt"
	"strings"
)

// An Object is an introspectable value with a class identity and an ordered
// set of property descriptors. The outputter never modifies an Object.
type Object interface {
	// ClassID returns the identifier of the object's class.
	ClassID() string

	// Properties returns the property descriptors of the object's class in
	// declaration order, which is also the order of emission.
	Properties() []Property
}

// A Property describes one property of an object class.
type Property interface {
	// Name returns the name of the property, used as its JSON key.
	Name() string

	// ForClass returns the class ID of the class that declares the property.
	ForClass() string

	// NetworkTransient reports whether the property is omitted in Network mode.
	NetworkTransient() bool

	// StorageTransient reports whether the property is omitted in Storage mode.
	StorageTransient() bool

	// MultiPartID reports whether the property is a composite identifier
	// whose parts are emitted as properties of their own.
	MultiPartID() bool

	// IsSet reports whether the property has been explicitly set on obj.
	IsSet(obj Object) bool

	// Get returns the value of the property on obj, and reports whether a
	// value is present.
	Get(obj Object) (any, bool)

	// Render writes the JSON encoding of a value of this property to out.
	// Most implementations call out.Output(value).
	Render(out *Outputter, value any)
}

// Mode selects which properties of an object are eligible for output.
type Mode byte

// Constants defining the valid Mode values.
const (
	Full    Mode = iota // all properties
	Network             // omit network-transient properties
	Storage             // omit storage-transient properties
)

var modeStr = [...]string{Full: "FULL", Network: "NETWORK", Storage: "STORAGE"}

func (m Mode) String() string {
	if int(m) >= len(modeStr) {
		return fmt.Sprintf("Mode(%d)", m)
	}
	return modeStr[m]
}

// ParseMode returns the Mode whose name matches s, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeStr {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown output mode %q", s)
}

// PropertyClassID is the class identifier rendered for a property descriptor
// that appears as a value.
const PropertyClassID = "__Property__"

// include reports whether p should be emitted for obj.
func (o *Outputter) include(obj Object, p Property) bool {
	switch {
	case o.mode == Network && p.NetworkTransient():
		return false
	case o.mode == Storage && p.StorageTransient():
		return false
	case !o.defaults && !p.IsSet(obj):
		return false
	case p.MultiPartID():
		return false
	}
	return true
}

// outputObject renders obj as a JSON object whose first key is "class" and,
// when hashing is enabled, whose last key is "hash".
func (o *Outputter) outputObject(obj Object) {
	o.put(`{"class":`)
	o.OutputString(obj.ClassID())
	for _, p := range obj.Properties() {
		if !o.include(obj, p) {
			continue
		}
		v, ok := p.Get(obj)
		if !ok {
			continue
		}
		o.putByte(',')
		o.OutputString(p.Name())
		o.putByte(':')
		p.Render(o, v)
		if o.err != nil {
			return
		}
	}
	if o.outputHash {
		o.outputHashField(obj)
	}
	o.putByte('}')
}

// outputHashField renders the digest of obj. The digest is computed only
// after all of the properties of obj have been written.
func (o *Outputter) outputHashField(obj Object) {
	sum, err := o.hasher.digest(o.digester, obj)
	if err != nil {
		o.fail(err)
		return
	}
	o.log.Debug("digest", "class", obj.ClassID(), "hash", sum, "rolling", o.hasher.Rolling())
	o.put(`,"hash":"`)
	o.put(sum)
	o.putByte('"')
}
