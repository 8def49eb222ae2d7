// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jsonout renders introspectable objects as JSON text, with
// mode-sensitive property filtering and optional tamper-evident hashing.
//
// # Objects
//
// An Object reports a class ID and an ordered list of Property descriptors.
// The outputter renders an object as a JSON object whose first key is
// "class", followed by each eligible property in declaration order:
//
//	{"class":"Account","id":17,"owner":"alice"}
//
// Which properties are eligible depends on the Mode of the outputter:
//
//	Mode    | Omits
//	------- | ----------------------------------
//	Full    | nothing
//	Network | properties marked network-transient
//	Storage | properties marked storage-transient
//
// Properties that are not set on the object are also omitted, unless
// OutputDefaultValues is enabled, as are multi-part identifiers and
// properties with no value.
//
// # Values
//
// Property values are rendered by kind, in the order given by the Kind
// constants: a Marshaler renders itself, strings are quoted, objects nest,
// numbers and Booleans are literal, dates are quoted UTC timestamps with
// millisecond precision, maps and slices become objects and arrays, an Enum
// renders as its ordinal, and anything else is null.
//
// # Sessions
//
// Construct an Outputter with New to render into an owned buffer:
//
//	out, err := jsonout.New(&jsonout.Options{Mode: jsonout.Network})
//	if err != nil {
//	   log.Fatalf("New: %v", err)
//	}
//	text, err := out.Stringify(obj)
//
// Or with NewWriter to append one record per call to Put:
//
//	out, err := jsonout.NewWriter(f, &jsonout.Options{Separator: "\n"})
//	...
//	if err := out.Put(obj); err != nil {
//	   log.Fatalf("Put: %v", err)
//	}
//
// # Hashing
//
// When OutputHash is enabled, each object carries a final "hash" field with
// the hexadecimal digest of the object. With RollHashes, each digest also
// covers the digest before it, so the sequence of records written by an
// outputter forms a chain in which tampering with any record changes every
// later digest. See SequenceHasher.
//
// # Related packages
//
// Package structinfo provides Object and Property implementations for Go
// structs by reflection. Package record parses emitted objects back into
// Objects. Package auditlog writes and verifies hash-chained logs, and
// package sqlsink stores records in SQLite.
package jsonout
