package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/RowanDark/namepool/composite"
	"github.com/RowanDark/namepool/intern"
	"github.com/RowanDark/namepool/logging"
	"github.com/RowanDark/namepool/metrics"
	"github.com/RowanDark/namepool/stats"
)

const (
	scannerBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
	cancelCheckEvery  = 1024
)

// largeFileSize is the size above which regular files are memory mapped.
var largeFileSize int64 = 10 * 1024 * 1024

// StdinSource names records read from standard input.
const StdinSource = "stdin"

// Entry is one composite value together with where it came from.
type Entry struct {
	Source string
	Line   int
	Value  composite.Value
}

// Options configures how lines are turned into composite values. Pool is
// required; everything else is optional.
type Options struct {
	Pool      intern.Table
	Normalize Normalizer
	Workers   int
	Tracker   *stats.Tracker
	Metrics   *metrics.Collectors
	Logger    *logging.Logger
}

var errNilPool = errors.New("ingest: nil pool")

// tokenLine is a non-blank input line split into tokens but not yet interned.
type tokenLine struct {
	number int
	tokens []string
}

type scanned struct {
	source  string
	lines   []tokenLine
	read    int
	skipped int
}

// Reader interns every non-blank line of r as a composite value.
func Reader(ctx context.Context, source string, r io.Reader, opts Options) ([]Entry, error) {
	if opts.Pool == nil {
		return nil, errNilPool
	}
	result, err := scan(ctx, source, r, opts.Normalize)
	if err != nil {
		return nil, err
	}
	return build(result, opts), nil
}

// Files reads and tokenises every path concurrently, bounded by opts.Workers,
// then interns the tokens into the shared pool in path order. The same paths
// therefore always yield the same handles.
func Files(ctx context.Context, paths []string, opts Options) ([]Entry, error) {
	if opts.Pool == nil {
		return nil, errNilPool
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]*scanned, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			result, err := readFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.lines)
	}
	merged := make([]Entry, 0, total)
	for _, r := range results {
		merged = append(merged, build(r, opts)...)
	}
	return merged, nil
}

// File reads a single input file. Large regular files are memory mapped
// where the platform allows it.
func File(ctx context.Context, path string, opts Options) ([]Entry, error) {
	if opts.Pool == nil {
		return nil, errNilPool
	}
	result, err := readFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return build(result, opts), nil
}

func readFile(ctx context.Context, path string, opts Options) (*scanned, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if size := info.Size(); size > largeFileSize && info.Mode().IsRegular() && size <= int64(^uint(0)>>1) {
		result, mapped, err := readMapped(ctx, path, file, int(size), opts.Normalize)
		if mapped {
			return result, err
		}
		opts.Logger.Debugf("%s: mmap unavailable, streaming instead", path)
	}

	return scan(ctx, path, bufio.NewReaderSize(file, scannerBufferSize), opts.Normalize)
}

// scan splits r into tokenised lines without touching any pool.
func scan(ctx context.Context, source string, r io.Reader, normalize Normalizer) (*scanned, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), maxLineSize)

	result := &scanned{source: source, lines: make([]tokenLine, 0, 256)}
	for scanner.Scan() {
		result.read++
		if result.read%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		text := scanner.Text()
		if normalize != nil {
			text = normalize(text)
		}

		tokens := strings.Fields(text)
		if len(tokens) == 0 {
			result.skipped++
			continue
		}
		result.lines = append(result.lines, tokenLine{number: result.read, tokens: tokens})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s line %d: %w", source, result.read+1, err)
	}
	return result, nil
}

// build interns scanned lines in order and records stats and metrics.
func build(result *scanned, opts Options) []Entry {
	counter := &countingPool{Table: opts.Pool}
	entries := make([]Entry, 0, len(result.lines))
	for range result.skipped {
		opts.Tracker.RecordSkipped()
	}
	for _, line := range result.lines {
		counter.added = 0
		value := composite.FromTokens(line.tokens, counter)
		opts.Tracker.RecordValue(result.source, value.Len(), counter.added)
		opts.Metrics.RecordValue(value.Len(), counter.added)
		entries = append(entries, Entry{Source: result.source, Line: line.number, Value: value})
	}

	opts.Metrics.SetTableSize(opts.Pool.Len())
	opts.Logger.Debugf("%s: %d value(s) from %d line(s)", result.source, len(entries), result.read)
	return entries
}

// countingPool counts how many tokens of the current value created a new
// table entry. Each build call owns its own counter.
type countingPool struct {
	intern.Table
	added int
}

func (c *countingPool) InternOrLookup(s string) intern.Handle {
	h, inserted := c.Table.Intern(s)
	if inserted {
		c.added++
	}
	return h
}
