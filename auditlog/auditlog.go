// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package auditlog writes and verifies tamper-evident logs of jsonout
// records.
//
// A log is a sequence of records, one per line, each carrying a rolling hash
// that covers the record and the hash of the record before it. To verify a
// log, each record is parsed and rendered again with the same settings and a
// fresh hash chain; the first record whose text differs is reported.
package auditlog

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/creachadair/jsonout"
	"github.com/creachadair/jsonout/record"
)

// maxRecord is the largest record Verify will read.
const maxRecord = 64 << 20

// A Log appends hash-chained records to a writer.
type Log struct {
	out *jsonout.Outputter
}

// New constructs a Log that appends records to w using the settings of opts.
// Hashing and chaining are always enabled, and each log has its own chain,
// so opts.Hasher is ignored. If opts.Separator is empty, records end with a
// newline.
func New(w io.Writer, opts *jsonout.Options) (*Log, error) {
	cfg := chained(opts)
	out, err := jsonout.NewWriter(w, &cfg)
	if err != nil {
		return nil, err
	}
	return &Log{out: out}, nil
}

// Resume checks the records of an existing log, written with the settings
// of opts, and returns a Log that appends to w continuing the chain after the
// last of them. It fails if any of the records does not verify.
func Resume(w io.Writer, opts *jsonout.Options, records []string) (*Log, error) {
	v, err := NewVerifier(opts)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := v.Check(rec); err != nil {
			return nil, err
		}
	}
	cfg := chained(opts)
	cfg.Hasher = v.out.Hasher()
	out, err := jsonout.NewWriter(w, &cfg)
	if err != nil {
		return nil, err
	}
	return &Log{out: out}, nil
}

// Put appends a record for obj to the log. If Put reports an error, the log
// must not be written further, since its chain may no longer match the
// records written.
func (l *Log) Put(obj jsonout.Object) error { return l.out.Put(obj) }

// Head returns the hexadecimal hash at the end of the chain, or "" if the log
// is empty.
func (l *Log) Head() string { return hex.EncodeToString(l.out.Hasher().Previous()) }

func chained(opts *jsonout.Options) jsonout.Options {
	var cfg jsonout.Options
	if opts != nil {
		cfg = *opts
	}
	cfg.OutputHash = true
	cfg.RollHashes = true
	cfg.Hasher = nil
	if cfg.Separator == "" {
		cfg.Separator = "\n"
	}
	return cfg
}

// MismatchError is reported when a record does not match the chain.
type MismatchError struct {
	Record int    // 1-based index of the record
	Want   string // the record as stored
	Got    string // the record as rendered again
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("record %d does not match the hash chain", e.Record)
}

// A Verifier checks the records of a log in order.
type Verifier struct {
	out *jsonout.Outputter
	n   int
}

// NewVerifier constructs a Verifier for records written with the settings of
// opts. The settings must match those used to write the log.
func NewVerifier(opts *jsonout.Options) (*Verifier, error) {
	cfg := chained(opts)
	out, err := jsonout.New(&cfg)
	if err != nil {
		return nil, err
	}
	return &Verifier{out: out}, nil
}

// Check verifies the next record of the log. Once Check has reported an
// error, later records cannot be verified by v.
func (v *Verifier) Check(text string) error {
	v.n++
	obj, err := record.Parse([]byte(text))
	if err != nil {
		return fmt.Errorf("record %d: %w", v.n, err)
	}
	got, err := v.out.Stringify(obj)
	if err != nil {
		return fmt.Errorf("record %d: %w", v.n, err)
	}
	if got != text {
		return &MismatchError{Record: v.n, Want: text, Got: got}
	}
	return nil
}

// Len returns the number of records checked so far.
func (v *Verifier) Len() int { return v.n }

// Head returns the hexadecimal hash at the end of the verified chain.
func (v *Verifier) Head() string { return hex.EncodeToString(v.out.Hasher().Previous()) }

// Verify reads a log from r, one record per line, and verifies it with the
// settings of opts. Blank lines are ignored. It returns the number of records
// verified, and an error for the first record that fails.
func Verify(r io.Reader, opts *jsonout.Options) (int, error) {
	v, err := NewVerifier(opts)
	if err != nil {
		return 0, err
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecord)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if err := v.Check(line); err != nil {
			return v.Len() - 1, err
		}
	}
	if err := sc.Err(); err != nil {
		return v.Len(), fmt.Errorf("read log: %w", err)
	}
	return v.Len(), nil
}

// VerifyRecords verifies a log held as a slice of records, with the settings
// of opts. It returns the number of records verified, and an error for the
// first record that fails.
func VerifyRecords(records []string, opts *jsonout.Options) (int, error) {
	v, err := NewVerifier(opts)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := v.Check(rec); err != nil {
			return v.Len() - 1, err
		}
	}
	return v.Len(), nil
}
