// Package memcheck compares the heap cost of storing full names as plain
// strings against storing them as composite values over a shared pool.
package memcheck

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"

	"github.com/RowanDark/namepool/composite"
	"github.com/RowanDark/namepool/intern"
	"github.com/RowanDark/namepool/logging"
)

const (
	nameLength   = 10
	DefaultFirst = 100
	DefaultLast  = 100
)

type Options struct {
	First    int
	Last     int
	Seed     uint64
	Strategy intern.Strategy
	Logger   *logging.Logger
}

// Report holds the retained heap bytes of both representations.
type Report struct {
	Values         int
	TableSize      int
	PlainBytes     uint64
	FlyweightBytes uint64
}

// Ratio is flyweight bytes over plain bytes, or 0 when nothing was measured.
func (r Report) Ratio() float64 {
	if r.PlainBytes == 0 {
		return 0
	}
	return float64(r.FlyweightBytes) / float64(r.PlainBytes)
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "values:          %d\n", r.Values)
	fmt.Fprintf(&b, "table entries:   %d\n", r.TableSize)
	fmt.Fprintf(&b, "plain strings:   %d bytes\n", r.PlainBytes)
	fmt.Fprintf(&b, "composite:       %d bytes\n", r.FlyweightBytes)
	if ratio := r.Ratio(); ratio > 0 {
		fmt.Fprintf(&b, "ratio:           %.2f\n", ratio)
	}
	return b.String()
}

// Compare builds First×Last full names both ways and measures each.
func Compare(opts Options) Report {
	first, last := opts.First, opts.Last
	if first <= 0 {
		first = DefaultFirst
	}
	if last <= 0 {
		last = DefaultLast
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	firstNames := RandomNames(rng, first)
	lastNames := RandomNames(rng, last)

	report := Report{Values: first * last}

	before := heapInUse()
	plain := make([]string, 0, report.Values)
	for _, f := range firstNames {
		for _, l := range lastNames {
			plain = append(plain, f+" "+l)
		}
	}
	report.PlainBytes = since(before)
	runtime.KeepAlive(plain)
	opts.Logger.Debugf("plain strings retained %d bytes", report.PlainBytes)

	before = heapInUse()
	pool := intern.New(opts.Strategy)
	values := make([]composite.Value, 0, report.Values)
	for _, f := range firstNames {
		for _, l := range lastNames {
			values = append(values, composite.New(f+" "+l, pool))
		}
	}
	report.FlyweightBytes = since(before)
	report.TableSize = pool.Len()
	runtime.KeepAlive(values)
	runtime.KeepAlive(pool)
	opts.Logger.Debugf("composite values retained %d bytes over %d entries", report.FlyweightBytes, report.TableSize)

	return report
}

// RandomNames returns n lowercase names of ten letters each.
func RandomNames(rng *rand.Rand, n int) []string {
	names := make([]string, n)
	buf := make([]byte, nameLength)
	for i := range names {
		for j := range buf {
			buf[j] = byte('a' + rng.IntN(26))
		}
		names[i] = string(buf)
	}
	return names
}

func heapInUse() uint64 {
	runtime.GC()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func since(before uint64) uint64 {
	after := heapInUse()
	if after < before {
		return 0
	}
	return after - before
}
