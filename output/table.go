package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// tableEntry encodes as a JSON string when it is valid UTF-8 and as
// {"bytes": "<base64>"} otherwise, so every entry survives a round trip.
type tableEntry string

type rawEntry struct {
	Bytes []byte `json:"bytes"`
}

func (e tableEntry) MarshalJSON() ([]byte, error) {
	if utf8.ValidString(string(e)) {
		return json.Marshal(string(e))
	}
	return json.Marshal(rawEntry{Bytes: []byte(e)})
}

func (e *tableEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var raw rawEntry
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*e = tableEntry(raw.Bytes)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = tableEntry(s)
	return nil
}

// WriteTable dumps a pool table as a JSON array in handle order.
func WriteTable(path string, values []string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return fmt.Errorf("creating table directory: %w", err)
		}
	}
	entries := make([]tableEntry, len(values))
	for i, v := range values {
		entries[i] = tableEntry(v)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

// LoadTable reads a table written by WriteTable.
func LoadTable(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	var entries []tableEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", path, err)
	}
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = string(e)
	}
	return values, nil
}
