// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package digest maps hash algorithm names to hash constructors.
//
// Names are matched without regard to case, hyphens or underscores, so
// "SHA-256", "sha256" and "Sha_256" all select the same algorithm.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Default is the name of the algorithm used when none is specified.
const Default = "SHA-256"

// ErrUnknownAlgorithm is reported for an algorithm name that does not match
// any registered algorithm.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

type algorithm struct {
	name string // canonical spelling
	new  func() hash.Hash
}

var algorithms = []algorithm{
	{"MD5", md5.New},
	{"SHA-1", sha1.New},
	{"SHA-224", sha256.New224},
	{"SHA-256", sha256.New},
	{"SHA-384", sha512.New384},
	{"SHA-512", sha512.New},
	{"SHA-512/256", sha512.New512_256},
	{"SHA3-256", func() hash.Hash { return sha3.New256() }},
	{"SHA3-384", func() hash.Hash { return sha3.New384() }},
	{"SHA3-512", func() hash.Hash { return sha3.New512() }},
	{"BLAKE2b-256", func() hash.Hash { return mustKeyless(blake2b.New256(nil)) }},
	{"BLAKE2b-512", func() hash.Hash { return mustKeyless(blake2b.New512(nil)) }},
	{"BLAKE2s-256", func() hash.Hash { return mustKeyless(blake2s.New256(nil)) }},
}

var byKey = func() map[string]*algorithm {
	m := make(map[string]*algorithm, len(algorithms))
	for i, a := range algorithms {
		m[key(a.name)] = &algorithms[i]
	}
	return m
}()

// mustKeyless unwraps the result of a BLAKE2 constructor. The constructors
// only fail for oversized keys, and a nil key is never oversized.
func mustKeyless(h hash.Hash, err error) hash.Hash {
	if err != nil {
		panic(err)
	}
	return h
}

func key(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(name)))
}

func lookup(name string) (*algorithm, error) {
	if a, ok := byKey[key(name)]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// New returns a new hash for the named algorithm.
func New(name string) (hash.Hash, error) {
	a, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return a.new(), nil
}

// Check reports an error if name does not select a known algorithm.
func Check(name string) error {
	_, err := lookup(name)
	return err
}

// Canonical returns the canonical spelling of the named algorithm.
func Canonical(name string) (string, error) {
	a, err := lookup(name)
	if err != nil {
		return "", err
	}
	return a.name, nil
}

// Names returns the canonical names of all known algorithms.
func Names() []string {
	out := make([]string, len(algorithms))
	for i, a := range algorithms {
		out[i] = a.name
	}
	return out
}
