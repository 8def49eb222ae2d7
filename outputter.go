// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/creachadair/jsonout/internal/escape"
	"go4.org/mem"
)

// ErrOddKeyValues is reported by OutputMap when its arguments do not pair up
// into keys and values.
var ErrOddKeyValues = errors.New("odd number of key/value arguments")

// Options are settings for an Outputter. A nil *Options provides defaults.
type Options struct {
	// Mode selects which properties are eligible for output.
	Mode Mode

	// OutputDefaultValues, if true, emits properties that have not been set.
	OutputDefaultValues bool

	// OutputHash, if true, appends a "hash" field to each object.
	OutputHash bool

	// RollHashes, if true, chains each digest to the previous one.
	// It is ignored if Hasher is set.
	RollHashes bool

	// HashAlgorithm names the digest algorithm (default SHA-256).
	// It is ignored if Hasher is set.
	HashAlgorithm string

	// Digester computes object digests. If nil, a TextDigester matching the
	// outputter's current mode and default-value setting is used.
	// It is ignored if Hasher is set.
	Digester Digester

	// Hasher, if set, is used for digests in place of a hasher built from
	// the fields above. Outputters sharing a Hasher share one chain.
	// If the Hasher was built by another Outputter, digests computed for
	// this outputter cover objects as this outputter renders them.
	Hasher *SequenceHasher

	// Separator is written after each record emitted by Put.
	Separator string

	// Logger receives diagnostic events. If nil, logs are discarded.
	Logger *slog.Logger
}

func (o *Options) mode() Mode {
	if o == nil {
		return Full
	}
	return o.Mode
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// An Outputter renders objects and values as JSON text.
//
// An Outputter either owns a reusable buffer (see New) or streams records to
// a writer supplied by the caller (see NewWriter). The caller retains
// ownership of the writer and must close it, if necessary, after use.
//
// An Outputter is not safe for concurrent use by multiple goroutines. Its
// SequenceHasher is, and may be shared.
type Outputter struct {
	w       io.Writer
	buf     bytes.Buffer  // owned buffer
	scratch bytes.Buffer  // record in progress for Put
	cur     *bytes.Buffer // current output target
	tmp     []byte        // escape buffer
	err     error         // sticky render error

	mode       Mode
	defaults   bool
	outputHash bool
	sep        string
	hasher     *SequenceHasher
	digester   Digester // computes digests for hash fields
	log        *slog.Logger
}

// New constructs an Outputter that renders into an owned buffer.
// It reports an error if the hash algorithm is not supported.
func New(opts *Options) (*Outputter, error) { return NewWriter(nil, opts) }

// NewWriter constructs an Outputter whose Put method appends each record to
// w. If w == nil, records are appended to the owned buffer instead.
// It reports an error if the hash algorithm is not supported.
func NewWriter(w io.Writer, opts *Options) (*Outputter, error) {
	o := &Outputter{
		w:    w,
		mode: opts.mode(),
		log:  opts.logger(),
	}
	o.cur = &o.buf
	if opts == nil {
		opts = new(Options)
	}
	o.defaults = opts.OutputDefaultValues
	o.outputHash = opts.OutputHash
	o.sep = opts.Separator

	if opts.Hasher != nil {
		o.hasher = opts.Hasher
		o.digester = o.hasher.d
		if _, ok := o.digester.(outputDigester); ok {
			o.digester = outputDigester{o}
		}
	} else {
		d := opts.Digester
		if d == nil {
			d = outputDigester{o}
		}
		h, err := NewSequenceHasher(d, opts.HashAlgorithm, opts.RollHashes)
		if err != nil {
			return nil, fmt.Errorf("configure hashing: %w", err)
		}
		o.hasher, o.digester = h, d
	}
	return o, nil
}

// Stringify renders obj into the owned buffer, replacing its previous
// contents, and returns the resulting text. In case of error, the contents
// of the buffer are unspecified.
func (o *Outputter) Stringify(obj Object) (string, error) {
	o.begin(&o.buf)
	o.outputObject(obj)
	if err := o.end(); err != nil {
		return "", err
	}
	return o.buf.String(), nil
}

// StringifyValue renders v into the owned buffer, replacing its previous
// contents, and returns the resulting text.
func (o *Outputter) StringifyValue(v any) (string, error) {
	o.begin(&o.buf)
	o.Output(v)
	if err := o.end(); err != nil {
		return "", err
	}
	return o.buf.String(), nil
}

// StringifyMap renders alternating keys and values as a single JSON object
// into the owned buffer, replacing its previous contents, and returns the
// resulting text. It reports ErrOddKeyValues if len(kv) is odd.
func (o *Outputter) StringifyMap(kv ...any) (string, error) {
	o.begin(&o.buf)
	o.OutputMap(kv...)
	if err := o.end(); err != nil {
		return "", err
	}
	return o.buf.String(), nil
}

// Put renders obj followed by the separator and appends the result to the
// writer. Prior output is never truncated. The record is written with a
// single call to Write, and only if rendering succeeded.
//
// A failed render may already have advanced a rolling hash chain for nested
// objects, so the chain no longer matches the written records. Treat errors
// from Put as fatal to the log being written.
func (o *Outputter) Put(obj Object) error {
	o.begin(&o.scratch)
	o.outputObject(obj)
	o.cur = &o.buf
	if err := o.end(); err != nil {
		o.log.Error("render aborted", "class", obj.ClassID(), "err", err)
		return err
	}
	o.scratch.WriteString(o.sep)
	if o.w == nil {
		o.buf.Write(o.scratch.Bytes())
		return nil
	}
	if _, err := o.w.Write(o.scratch.Bytes()); err != nil {
		return fmt.Errorf("write %s record: %w", obj.ClassID(), err)
	}
	return nil
}

// String returns the contents of the owned buffer.
func (o *Outputter) String() string { return o.buf.String() }

// Err returns the error, if any, that has interrupted the render in progress.
// A Marshaler may use it to stop early.
func (o *Outputter) Err() error { return o.err }

// OutputString renders s as a quoted, escaped JSON string.
func (o *Outputter) OutputString(s string) {
	if o.err != nil {
		return
	}
	o.tmp = append(o.tmp[:0], '"')
	o.tmp = escape.Append(o.tmp, mem.S(s))
	o.tmp = append(o.tmp, '"')
	o.cur.Write(o.tmp)
}

// OutputRawString writes s to the output verbatim. The caller is responsible
// for ensuring the result is valid JSON.
func (o *Outputter) OutputRawString(s string) { o.put(s) }

// OutputMap renders alternating keys and values as a single JSON object. If
// len(kv) is odd, it writes nothing and reports ErrOddKeyValues, which also
// interrupts the render in progress. Otherwise it returns the error, if any,
// that interrupted rendering.
func (o *Outputter) OutputMap(kv ...any) error {
	if len(kv)%2 != 0 {
		o.fail(fmt.Errorf("%w: got %d", ErrOddKeyValues, len(kv)))
		return o.err
	}
	o.outputEntries(func(yield func(any, any) bool) {
		for i := 0; i < len(kv); i += 2 {
			if !yield(kv[i], kv[i+1]) {
				return
			}
		}
	})
	return o.err
}

// Mode returns the output mode of o.
func (o *Outputter) Mode() Mode { return o.mode }

// OutputDefaultValues reports whether unset properties are emitted.
func (o *Outputter) OutputDefaultValues() bool { return o.defaults }

// SetOutputDefaultValues sets whether unset properties are emitted.
func (o *Outputter) SetOutputDefaultValues(ok bool) { o.defaults = ok }

// OutputHash reports whether objects carry a trailing hash field.
func (o *Outputter) OutputHash() bool { return o.outputHash }

// SetOutputHash sets whether objects carry a trailing hash field.
func (o *Outputter) SetOutputHash(ok bool) { o.outputHash = ok }

// RollHashes reports whether digests are chained.
func (o *Outputter) RollHashes() bool { return o.hasher.Rolling() }

// SetRollHashes sets whether digests are chained. The setting belongs to the
// hasher, and so affects every outputter that shares it.
func (o *Outputter) SetRollHashes(ok bool) { o.hasher.SetRolling(ok) }

// HashAlgorithm returns the name of the digest algorithm.
func (o *Outputter) HashAlgorithm() string { return o.hasher.Algorithm() }

// SetHashAlgorithm sets the digest algorithm. It reports an error without
// changing the setting if the algorithm is not supported.
func (o *Outputter) SetHashAlgorithm(name string) error { return o.hasher.SetAlgorithm(name) }

// Hasher returns the hasher used for digests.
func (o *Outputter) Hasher() *SequenceHasher { return o.hasher }

func (o *Outputter) begin(target *bytes.Buffer) {
	target.Reset()
	o.cur, o.err = target, nil
}

// end returns and clears the sticky error.
func (o *Outputter) end() error {
	err := o.err
	o.err = nil
	return err
}

func (o *Outputter) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

func (o *Outputter) put(s string) {
	if o.err == nil {
		o.cur.WriteString(s)
	}
}

func (o *Outputter) putByte(b byte) {
	if o.err == nil {
		o.cur.WriteByte(b)
	}
}
