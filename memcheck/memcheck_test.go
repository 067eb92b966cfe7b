package memcheck

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RowanDark/namepool/intern"
)

func TestRandomNamesShape(t *testing.T) {
	names := RandomNames(rand.New(rand.NewPCG(1, 2)), 50)
	if len(names) != 50 {
		t.Fatalf("expected 50 names, got %d", len(names))
	}
	for _, name := range names {
		if len(name) != nameLength {
			t.Fatalf("expected %d letters, got %q", nameLength, name)
		}
		if strings.Trim(name, "abcdefghijklmnopqrstuvwxyz") != "" {
			t.Fatalf("unexpected characters in %q", name)
		}
	}
}

func TestRandomNamesDeterministic(t *testing.T) {
	a := RandomNames(rand.New(rand.NewPCG(7, 7)), 10)
	b := RandomNames(rand.New(rand.NewPCG(7, 7)), 10)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different names (-a +b):\n%s", diff)
	}
}

func TestCompareCounts(t *testing.T) {
	for _, strategy := range []intern.Strategy{intern.StrategyHash, intern.StrategyLinear} {
		report := Compare(Options{First: 20, Last: 30, Seed: 42, Strategy: strategy})
		if report.Values != 600 {
			t.Fatalf("%s: expected 600 values, got %d", strategy, report.Values)
		}
		if report.TableSize == 0 || report.TableSize > 50 {
			t.Fatalf("%s: expected table size in (0, 50], got %d", strategy, report.TableSize)
		}
	}
}

func TestCompareDefaults(t *testing.T) {
	report := Compare(Options{Seed: 1})
	if report.Values != DefaultFirst*DefaultLast {
		t.Fatalf("expected %d values, got %d", DefaultFirst*DefaultLast, report.Values)
	}
	if !strings.Contains(report.String(), "table entries:") {
		t.Fatalf("unexpected report rendering:\n%s", report.String())
	}
}

func TestReportRatio(t *testing.T) {
	if (Report{}).Ratio() != 0 {
		t.Fatalf("expected zero ratio for empty report")
	}
	if got := (Report{PlainBytes: 200, FlyweightBytes: 50}).Ratio(); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}
