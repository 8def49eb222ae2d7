// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsonout

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// A SequenceHasher computes digests of objects, optionally chaining each
// digest to the one before it. A chained ("rolling") sequence of digests is
// tamper-evident: changing, removing or reordering any object changes the
// digests of every object after it.
//
// A SequenceHasher is safe for concurrent use. Concurrent callers of Digest
// in rolling mode are serialized, but the order in which they join the chain
// is the order in which they acquire the lock, which the caller does not
// control.
type SequenceHasher struct {
	d Digester

	mu        sync.Mutex
	algorithm string
	rolling   bool
	prev      []byte // most recent digest in rolling mode, or nil
}

// NewSequenceHasher constructs a hasher that uses d to compute digests with
// the named algorithm. If d == nil, a Full-mode TextDigester is used; if
// algorithm == "", DefaultAlgorithm is used. It reports an error if d
// implements AlgorithmChecker and rejects the algorithm.
func NewSequenceHasher(d Digester, algorithm string, rolling bool) (*SequenceHasher, error) {
	if d == nil {
		d = TextDigester{}
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	if err := checkAlgorithm(d, algorithm); err != nil {
		return nil, err
	}
	return &SequenceHasher{d: d, algorithm: algorithm, rolling: rolling}, nil
}

// Digest returns the lowercase hexadecimal digest of obj. In rolling mode,
// the digest covers the previous digest in the chain, and becomes the new
// end of the chain. Otherwise the result depends only on obj and the
// algorithm.
func (h *SequenceHasher) Digest(obj Object) (string, error) { return h.digest(h.d, obj) }

// digest is Digest, but computing the digest of obj with d.
func (h *SequenceHasher) digest(d Digester, obj Object) (string, error) {
	h.mu.Lock()
	if !h.rolling {
		algorithm := h.algorithm
		h.mu.Unlock()
		sum, err := d.Hash(obj, algorithm, nil)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", obj.ClassID(), err)
		}
		return hex.EncodeToString(sum), nil
	}
	defer h.mu.Unlock()
	sum, err := d.Hash(obj, h.algorithm, h.prev)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", obj.ClassID(), err)
	}
	h.prev = bytes.Clone(sum)
	return hex.EncodeToString(sum), nil
}

// DigestAll returns the digests of objs in order. In rolling mode the objects
// are chained in slice order. Otherwise, if workers > 1, the digests are
// computed concurrently on a pool of that many workers.
func (h *SequenceHasher) DigestAll(objs []Object, workers int) ([]string, error) {
	out := make([]string, len(objs))
	if h.Rolling() || workers <= 1 || len(objs) < 2 {
		for i, obj := range objs {
			sum, err := h.Digest(obj)
			if err != nil {
				return nil, err
			}
			out[i] = sum
		}
		return out, nil
	}

	pool, err := ants.NewPool(min(workers, len(objs)))
	if err != nil {
		return nil, fmt.Errorf("start digest workers: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errs := make([]error, len(objs))
	for i, obj := range objs {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out[i], errs[i] = h.Digest(obj)
		}); err != nil {
			wg.Done()
			errs[i] = err
			break
		}
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Previous returns a copy of the digest at the end of the chain, or nil if
// no digest has been chained.
func (h *SequenceHasher) Previous() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Clone(h.prev)
}

// Rolling reports whether digests are chained.
func (h *SequenceHasher) Rolling() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rolling
}

// SetRolling sets whether digests are chained. Turning chaining off and on
// again resumes the chain where it left off.
func (h *SequenceHasher) SetRolling(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rolling = ok
}

// Algorithm returns the name of the digest algorithm.
func (h *SequenceHasher) Algorithm() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.algorithm
}

// SetAlgorithm sets the digest algorithm. It reports an error without
// changing the setting if the digester rejects the algorithm.
func (h *SequenceHasher) SetAlgorithm(name string) error {
	if err := checkAlgorithm(h.d, name); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.algorithm = name
	return nil
}
