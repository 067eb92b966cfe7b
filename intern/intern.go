package intern

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Handle identifies a unique string within a single pool. Handles from one
// pool are meaningless in another.
type Handle int32

// ErrInvalidHandle is returned when a handle does not index an entry of the pool.
var ErrInvalidHandle = errors.New("invalid handle")

// HandleError describes a handle that fell outside the table.
type HandleError struct {
	Handle Handle
	Len    int
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("%v %d: table has %d entries", ErrInvalidHandle, e.Handle, e.Len)
}

func (e *HandleError) Unwrap() error {
	return ErrInvalidHandle
}

// Resolver maps handles back to their strings.
type Resolver interface {
	Resolve(Handle) (string, error)
}

// Interner deduplicates strings into handles.
type Interner interface {
	Resolver
	InternOrLookup(string) Handle
	Len() int
}

// Pool is a hash-indexed string table. The index and the reverse table are
// updated together under the write lock.
type Pool struct {
	mu     sync.RWMutex
	index  map[string]Handle
	values []string
}

// NewPool returns an empty hash-indexed pool.
func NewPool() *Pool {
	return &Pool{index: make(map[string]Handle)}
}

// NewPoolFrom returns a pool pre-populated with values in order. Repeated
// values keep the handle of their first occurrence.
func NewPoolFrom(values []string) *Pool {
	p := &Pool{
		index:  make(map[string]Handle, len(values)),
		values: make([]string, 0, len(values)),
	}
	for _, v := range values {
		p.InternOrLookup(v)
	}
	return p
}

// InternOrLookup returns the handle for s, appending s to the table when it
// has not been seen before.
func (p *Pool) InternOrLookup(s string) Handle {
	h, _ := p.Intern(s)
	return h
}

// Intern is InternOrLookup that also reports whether s created a new entry.
func (p *Pool) Intern(s string) (Handle, bool) {
	p.mu.RLock()
	h, ok := p.index[s]
	p.mu.RUnlock()
	if ok {
		return h, false
	}

	// s is usually a field of a longer line; keep only its own bytes
	owned := strings.Clone(s)

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.index[owned]; ok {
		return h, false
	}
	h = Handle(len(p.values))
	p.values = append(p.values, owned)
	p.index[owned] = h
	return h, true
}

// Lookup reports the handle for s without inserting it.
func (p *Pool) Lookup(s string) (Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.index[s]
	return h, ok
}

// Resolve returns the string stored under h.
func (p *Pool) Resolve(h Handle) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if h < 0 || int(h) >= len(p.values) {
		return "", &HandleError{Handle: h, Len: len(p.values)}
	}
	return p.values[h], nil
}

// Len returns the number of unique entries.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}

// Values returns a copy of the table in handle order.
func (p *Pool) Values() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.values)
}

// Fingerprint digests the table in handle order. Two pools built from the
// same insertion sequence share a fingerprint.
func (p *Pool) Fingerprint() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return fingerprint(p.values)
}

func fingerprint(values []string) uint64 {
	d := xxhash.New()
	var size [8]byte
	for _, v := range values {
		// length prefix keeps ["ab","c"] and ["a","bc"] apart
		binary.LittleEndian.PutUint64(size[:], uint64(len(v)))
		_, _ = d.Write(size[:])
		_, _ = d.WriteString(v)
	}
	return d.Sum64()
}
