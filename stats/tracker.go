package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RowanDark/namepool/logging"
)

// Sizer reports the current number of unique entries in a pool.
type Sizer interface {
	Len() int
}

type Options struct {
	Logger   *logging.Logger
	Interval time.Duration
	Table    Sizer
}

type Tracker struct {
	mu         sync.RWMutex
	start      time.Time
	values     int
	tokens     int
	newEntries int
	skipped    int

	sourceBreakdown map[string]int

	table    Sizer
	logger   *logging.Logger
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

type Snapshot struct {
	Values     int
	Tokens     int
	NewEntries int
	Skipped    int
	TableSize  int
	Sources    map[string]int
	Duration   time.Duration
}

func NewTracker(opts Options) *Tracker {
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Tracker{
		table:           opts.Table,
		logger:          opts.Logger,
		interval:        interval,
		sourceBreakdown: make(map[string]int),
		done:            make(chan struct{}),
	}
}

func (t *Tracker) Start(ctxDone <-chan struct{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.start = time.Now()
	t.mu.Unlock()

	if t.logger == nil {
		return
	}

	t.ticker = time.NewTicker(t.interval)
	go func() {
		for {
			select {
			case <-t.ticker.C:
				t.logSnapshot(false)
			case <-ctxDone:
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tracker) Stop() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.stopOnce.Do(func() {
		close(t.done)
		if t.ticker != nil {
			t.ticker.Stop()
		}
		t.logSnapshot(true)
	})
	return t.Snapshot()
}

// RecordValue counts one composite value built from source. added is the
// number of tokens that created a new table entry.
func (t *Tracker) RecordValue(source string, tokens, added int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.values++
	t.tokens += tokens
	t.newEntries += added
	if source = strings.TrimSpace(source); source != "" {
		t.sourceBreakdown[source]++
	}
	t.mu.Unlock()
}

// RecordSkipped counts an input line that produced no tokens.
func (t *Tracker) RecordSkipped() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.skipped++
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	copyMap := make(map[string]int, len(t.sourceBreakdown))
	for key, value := range t.sourceBreakdown {
		copyMap[key] = value
	}
	duration := time.Duration(0)
	if !t.start.IsZero() {
		duration = time.Since(t.start)
	}
	tableSize := 0
	if t.table != nil {
		tableSize = t.table.Len()
	}
	return Snapshot{
		Values:     t.values,
		Tokens:     t.tokens,
		NewEntries: t.newEntries,
		Skipped:    t.skipped,
		TableSize:  tableSize,
		Sources:    copyMap,
		Duration:   duration,
	}
}

// HitRate is the percentage of tokens that reused an existing entry.
func (s Snapshot) HitRate() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return (float64(s.Tokens-s.NewEntries) / float64(s.Tokens)) * 100
}

// DedupRatio is the number of tokens stored per unique table entry.
func (s Snapshot) DedupRatio() float64 {
	if s.TableSize == 0 {
		return 0
	}
	return float64(s.Tokens) / float64(s.TableSize)
}

func (t *Tracker) logSnapshot(final bool) {
	if t == nil || t.logger == nil {
		return
	}
	snapshot := t.Snapshot()
	if final {
		t.logger.Infof("Intern statistics: %s", Render(snapshot))
		return
	}
	t.logger.Infof("Stats update: %s", Render(snapshot))
}

// Render formats a snapshot as a single log-friendly line.
func Render(s Snapshot) string {
	parts := []string{
		fmt.Sprintf("values=%d", s.Values),
		fmt.Sprintf("tokens=%d", s.Tokens),
		fmt.Sprintf("table=%d", s.TableSize),
		fmt.Sprintf("hit_rate=%.1f%%", s.HitRate()),
		fmt.Sprintf("dedup=%.2fx", s.DedupRatio()),
		fmt.Sprintf("duration=%s", s.Duration.Truncate(time.Millisecond)),
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("skipped=%d", s.Skipped))
	}
	if len(s.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("sources=%s", FormatSourceBreakdown(s.Sources, 5)))
	}
	return strings.Join(parts, " | ")
}

// FormatSourceBreakdown converts a map of source counts into a human readable string.
func FormatSourceBreakdown(sources map[string]int, limit int) string {
	if limit <= 0 {
		limit = len(sources)
	}
	type item struct {
		name  string
		count int
	}
	entries := make([]item, 0, len(sources))
	for name, count := range sources {
		entries = append(entries, item{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].name < entries[j].name
		}
		return entries[i].count > entries[j].count
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	formatted := make([]string, 0, len(entries))
	for _, entry := range entries {
		formatted = append(formatted, fmt.Sprintf("%s=%d", entry.name, entry.count))
	}
	return strings.Join(formatted, ", ")
}
