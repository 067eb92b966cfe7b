package intern

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strategies() map[Strategy]func() Table {
	return map[Strategy]func() Table{
		StrategyHash:   func() Table { return NewPool() },
		StrategyLinear: func() Table { return NewLinearPool() },
	}
}

func TestInternOrLookupAssignsInsertionOrder(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			var got []Handle
			for _, s := range []string{"Alice", "Bob", "Alice"} {
				got = append(got, p.InternOrLookup(s))
			}
			if diff := cmp.Diff([]Handle{0, 1, 0}, got); diff != "" {
				t.Fatalf("handles mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"Alice", "Bob"}, p.Values()); diff != "" {
				t.Fatalf("table mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInternOrLookupProperties(t *testing.T) {
	inputs := []string{"", " ", "a", "A", "ab", "a b", "élan", "élan", "Smith"}
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			seen := make(map[Handle]string)
			for _, s := range inputs {
				h := p.InternOrLookup(s)
				if again := p.InternOrLookup(s); again != h {
					t.Fatalf("%q interned twice as %d and %d", s, h, again)
				}
				if prev, ok := seen[h]; ok && prev != s {
					t.Fatalf("handle %d shared by %q and %q", h, prev, s)
				}
				seen[h] = s

				got, err := p.Resolve(h)
				if err != nil {
					t.Fatalf("resolve %d: %v", h, err)
				}
				if got != s {
					t.Fatalf("round trip: want %q, got %q", s, got)
				}
			}
			if p.Len() != len(seen) {
				t.Fatalf("expected %d entries, got %d", len(seen), p.Len())
			}
		})
	}
}

func TestResolveStableUnderGrowth(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			first := p.InternOrLookup("first")
			for i := range 500 {
				p.InternOrLookup("value-" + strconv.Itoa(i))
				got, err := p.Resolve(first)
				if err != nil || got != "first" {
					t.Fatalf("after %d inserts: got %q, %v", i+1, got, err)
				}
			}
		})
	}
}

func TestResolveInvalidHandle(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			p.InternOrLookup("only")
			for _, h := range []Handle{1, 42, -1} {
				_, err := p.Resolve(h)
				if !errors.Is(err, ErrInvalidHandle) {
					t.Fatalf("handle %d: expected ErrInvalidHandle, got %v", h, err)
				}
				var herr *HandleError
				if !errors.As(err, &herr) || herr.Handle != h || herr.Len != 1 {
					t.Fatalf("handle %d: unexpected error detail %#v", h, err)
				}
			}
		})
	}
}

func TestLookupDoesNotInsert(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			if _, ok := p.Lookup("ghost"); ok {
				t.Fatalf("unexpected hit on empty table")
			}
			if p.Len() != 0 {
				t.Fatalf("lookup inserted an entry")
			}
			h := p.InternOrLookup("ghost")
			if got, ok := p.Lookup("ghost"); !ok || got != h {
				t.Fatalf("expected %d, got %d (%v)", h, got, ok)
			}
		})
	}
}

func TestDedupAcrossNameGrid(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			for i := range 100 {
				for j := range 100 {
					p.InternOrLookup(fmt.Sprintf("first%03d", i))
					p.InternOrLookup(fmt.Sprintf("last%03d", j))
				}
			}
			if p.Len() > 200 {
				t.Fatalf("expected at most 200 entries, got %d", p.Len())
			}
		})
	}
}

func TestConcurrentInternIsConsistent(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			const workers = 8
			results := make([][]Handle, workers)
			var wg sync.WaitGroup
			for w := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range 200 {
						results[w] = append(results[w], p.InternOrLookup("k"+strconv.Itoa(i)))
					}
				}()
			}
			wg.Wait()

			if p.Len() != 200 {
				t.Fatalf("expected 200 unique entries, got %d", p.Len())
			}
			for w := 1; w < workers; w++ {
				if diff := cmp.Diff(results[0], results[w]); diff != "" {
					t.Fatalf("worker %d saw different handles (-w0 +w%d):\n%s", w, w, diff)
				}
			}
		})
	}
}

func TestNewFromSeedsInOrder(t *testing.T) {
	for name := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := NewFrom(name, []string{"x", "y", "x", "z"})
			if diff := cmp.Diff([]string{"x", "y", "z"}, p.Values()); diff != "" {
				t.Fatalf("seeded table mismatch (-want +got):\n%s", diff)
			}
			if h := p.InternOrLookup("z"); h != 2 {
				t.Fatalf("expected seeded handle 2, got %d", h)
			}
		})
	}
}

func TestFingerprintMatchesAcrossStrategies(t *testing.T) {
	values := []string{"ab", "c"}
	hash := NewPoolFrom(values)
	linear := NewLinearPoolFrom(values)
	if hash.Fingerprint() != linear.Fingerprint() {
		t.Fatalf("expected equal fingerprints for equal tables")
	}
	other := NewPoolFrom([]string{"a", "bc"})
	if other.Fingerprint() == hash.Fingerprint() {
		t.Fatalf("expected boundary-shifted tables to differ")
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{"": StrategyHash, "HASH": StrategyHash, " linear ": StrategyLinear}
	for input, want := range cases {
		got, err := ParseStrategy(input)
		if err != nil || got != want {
			t.Fatalf("ParseStrategy(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseStrategy("trie"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func BenchmarkInternOrLookup(b *testing.B) {
	words := make([]string, 1000)
	for i := range words {
		words[i] = "word" + strconv.Itoa(i)
	}
	for name, newTable := range strategies() {
		b.Run(string(name), func(b *testing.B) {
			p := newTable()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.InternOrLookup(words[i%len(words)])
			}
		})
	}
}

func TestInternReportsInsertion(t *testing.T) {
	for name, newTable := range strategies() {
		t.Run(string(name), func(t *testing.T) {
			p := newTable()
			if h, inserted := p.Intern("Ada"); h != 0 || !inserted {
				t.Fatalf("first intern: got %d, %v", h, inserted)
			}
			if h, inserted := p.Intern("Ada"); h != 0 || inserted {
				t.Fatalf("second intern: got %d, %v", h, inserted)
			}
		})
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	if _, ok := New(StrategyHash).(*Pool); !ok {
		t.Fatalf("expected hash strategy to build a *Pool")
	}
	if _, ok := New(StrategyLinear).(*LinearPool); !ok {
		t.Fatalf("expected linear strategy to build a *LinearPool")
	}
	var table Table = New("")
	var _ Interner = table
	if table.Len() != 0 {
		t.Fatalf("expected empty table")
	}
}
