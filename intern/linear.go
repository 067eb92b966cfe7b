package intern

import (
	"slices"
	"strings"
	"sync"
)

// LinearPool finds existing entries by scanning the table. Each intern call is
// O(n), which is fine for small vocabularies and nothing else.
type LinearPool struct {
	mu     sync.Mutex
	values []string
}

// NewLinearPool returns an empty linear-scan pool.
func NewLinearPool() *LinearPool {
	return &LinearPool{}
}

// NewLinearPoolFrom returns a linear-scan pool pre-populated with values.
func NewLinearPoolFrom(values []string) *LinearPool {
	p := &LinearPool{values: make([]string, 0, len(values))}
	for _, v := range values {
		p.InternOrLookup(v)
	}
	return p
}

// InternOrLookup returns the handle for s, appending s when it is new.
func (p *LinearPool) InternOrLookup(s string) Handle {
	h, _ := p.Intern(s)
	return h
}

// Intern is InternOrLookup that also reports whether s created a new entry.
func (p *LinearPool) Intern(s string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx := slices.Index(p.values, s); idx != -1 {
		return Handle(idx), false
	}
	p.values = append(p.values, strings.Clone(s))
	return Handle(len(p.values) - 1), true
}

// Lookup reports the handle for s without inserting it.
func (p *LinearPool) Lookup(s string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := slices.Index(p.values, s)
	return Handle(idx), idx != -1
}

// Resolve returns the string stored under h.
func (p *LinearPool) Resolve(h Handle) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h < 0 || int(h) >= len(p.values) {
		return "", &HandleError{Handle: h, Len: len(p.values)}
	}
	return p.values[h], nil
}

// Len returns the number of unique entries.
func (p *LinearPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

// Values returns a copy of the table in handle order.
func (p *LinearPool) Values() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.values)
}

// Fingerprint digests the table the same way Pool does.
func (p *LinearPool) Fingerprint() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fingerprint(p.values)
}
