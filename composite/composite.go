// Package composite stores multi-token strings as handles into a shared
// intern pool and rebuilds them on demand.
package composite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RowanDark/namepool/intern"
)

// Value is a whitespace separated string kept as an ordered handle sequence.
// It does not own the pool its handles point into.
type Value struct {
	handles []intern.Handle
}

// New tokenises text on Unicode whitespace and interns every token. Runs of
// whitespace collapse and empty text yields an empty value.
func New(text string, pool intern.Interner) Value {
	return FromTokens(strings.Fields(text), pool)
}

// FromTokens interns tokens that have already been split, in order.
func FromTokens(tokens []string, pool intern.Interner) Value {
	if len(tokens) == 0 {
		return Value{}
	}
	handles := make([]intern.Handle, len(tokens))
	for i, token := range tokens {
		handles[i] = pool.InternOrLookup(token)
	}
	return Value{handles: handles}
}

// FromHandles rebuilds a value from a previously stored handle sequence.
func FromHandles(handles []intern.Handle) Value {
	if len(handles) == 0 {
		return Value{}
	}
	return Value{handles: slices.Clone(handles)}
}

// String resolves every handle against pool and joins the tokens with a
// single space. The first handle that fails to resolve aborts the call.
func (v Value) String(pool intern.Resolver) (string, error) {
	switch len(v.handles) {
	case 0:
		return "", nil
	case 1:
		s, err := pool.Resolve(v.handles[0])
		if err != nil {
			return "", fmt.Errorf("resolving token 0: %w", err)
		}
		return s, nil
	}

	var builder strings.Builder
	for i, h := range v.handles {
		token, err := pool.Resolve(h)
		if err != nil {
			return "", fmt.Errorf("resolving token %d: %w", i, err)
		}
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(token)
	}
	return builder.String(), nil
}

// MustString is like String but panics on a handle the pool does not know.
func (v Value) MustString(pool intern.Resolver) string {
	s, err := v.String(pool)
	if err != nil {
		panic(err)
	}
	return s
}

// Handles returns a copy of the handle sequence.
func (v Value) Handles() []intern.Handle {
	return slices.Clone(v.handles)
}

// Len returns the number of tokens.
func (v Value) Len() int {
	return len(v.handles)
}
