// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"github.com/creachadair/jsonout/internal/digest"
)

// DefaultAlgorithm is the digest algorithm used when none is specified.
const DefaultAlgorithm = digest.Default

// ErrUnknownAlgorithm is reported for an unsupported digest algorithm.
var ErrUnknownAlgorithm = digest.ErrUnknownAlgorithm

// A Digester computes the digest of an object under a named algorithm. If
// prev != nil, it is the previous digest of a chain, and must be covered by
// the result.
type Digester interface {
	Hash(obj Object, algorithm string, prev []byte) ([]byte, error)
}

// An AlgorithmChecker is an optional interface for a Digester to report
// unsupported algorithms before any object is hashed.
type AlgorithmChecker interface {
	CheckAlgorithm(name string) error
}

func checkAlgorithm(d Digester, name string) error {
	if c, ok := d.(AlgorithmChecker); ok {
		return c.CheckAlgorithm(name)
	}
	return nil
}

// CheckAlgorithm reports an error if name is not a supported algorithm.
func CheckAlgorithm(name string) error { return digest.Check(name) }

// Algorithms returns the names of the supported digest algorithms.
func Algorithms() []string { return digest.Names() }

// A TextDigester is a Digester that hashes the JSON text of an object.
//
// The digest covers the previous digest, if any, followed by the object as
// an Outputter with the same settings renders it, but with no hash fields.
type TextDigester struct {
	Mode                Mode
	OutputDefaultValues bool
}

// Hash implements the Digester interface.
func (d TextDigester) Hash(obj Object, algorithm string, prev []byte) ([]byte, error) {
	h, err := digest.New(algorithm)
	if err != nil {
		return nil, err
	}
	h.Write(prev)
	h.Write(d.Text(obj))
	return h.Sum(nil), nil
}

// CheckAlgorithm implements the AlgorithmChecker interface.
func (TextDigester) CheckAlgorithm(name string) error { return digest.Check(name) }

// Text returns the text covered by the digest of obj.
func (d TextDigester) Text(obj Object) []byte {
	o := &Outputter{mode: d.Mode, defaults: d.OutputDefaultValues}
	o.cur = &o.buf
	o.outputObject(obj)
	return o.buf.Bytes()
}

// outputDigester is the default Digester of an Outputter. It tracks the
// current settings of the outputter.
type outputDigester struct{ o *Outputter }

func (d outputDigester) Hash(obj Object, algorithm string, prev []byte) ([]byte, error) {
	return d.text().Hash(obj, algorithm, prev)
}

func (d outputDigester) CheckAlgorithm(name string) error { return digest.Check(name) }

func (d outputDigester) text() TextDigester {
	return TextDigester{Mode: d.o.mode, OutputDefaultValues: d.o.defaults}
}
