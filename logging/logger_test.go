package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	if err != nil || level != LevelWarn {
		t.Fatalf("unexpected parse result: %v %v", level, err)
	}
	if level, err := ParseLevel(""); err != nil || level != LevelInfo {
		t.Fatalf("expected info default, got %v %v", level, err)
	}
	if _, err := ParseLevel("unknown"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerWritesToOutputs(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "namepool.log")
	var console bytes.Buffer

	logger, err := New(Options{Level: LevelInfo, Console: &console, FilePath: logPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer logger.Close()

	logger.Infof("interned %d tokens", 12)
	logger.Debugf("debug message should be filtered")
	writer := logger.Writer(LevelError)
	writer.Write([]byte("first error\nsecond error\n"))

	if !strings.Contains(console.String(), "[INFO] interned 12 tokens") {
		t.Fatalf("console output missing log entry: %s", console.String())
	}
	if strings.Contains(console.String(), "filtered") {
		t.Fatalf("debug entry leaked at info level: %s", console.String())
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	contents := string(data)
	if !strings.Contains(contents, "interned 12 tokens") || !strings.Contains(contents, "[ERROR] second error") {
		t.Fatalf("log file missing entries: %s", contents)
	}
}

func TestWithPrefixesAndSharesLevel(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: LevelWarn, Console: &console})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child := logger.With("ingest").With("names.txt")
	child.Infof("hidden")
	logger.SetLevel(LevelInfo)
	if child.Level() != LevelInfo {
		t.Fatalf("expected child to report parent level, got %s", child.Level())
	}
	child.Infof("visible")

	out := console.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("child ignored parent level: %s", out)
	}
	if !strings.Contains(out, "ingest: names.txt: visible") {
		t.Fatalf("expected prefixed message, got %s", out)
	}
}

func TestDiscardAndNilAreSilent(t *testing.T) {
	Discard().Errorf("nothing %d", 1)
	var nilLogger *Logger
	nilLogger.Infof("nothing")
	if nilLogger.With("x") != nil {
		t.Fatalf("expected nil child from nil logger")
	}
}
