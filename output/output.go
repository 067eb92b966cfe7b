package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/namepool/config"
	"github.com/RowanDark/namepool/intern"
)

// Record is the serialised form of one composite value. In JSON, RawText
// carries the exact bytes of Text when Text is not valid UTF-8.
type Record struct {
	Source  string          `json:"source"`
	Line    int             `json:"line"`
	Text    string          `json:"text"`
	RawText []byte          `json:"raw_text,omitempty"`
	Handles []intern.Handle `json:"handles"`
}

// preserveText fills RawText when Text would be altered by JSON encoding.
func (r *Record) preserveText() {
	r.RawText = nil
	if !utf8.ValidString(r.Text) {
		r.RawText = []byte(r.Text)
	}
}

// restoreText is the inverse of preserveText.
func (r *Record) restoreText() {
	if r.RawText != nil {
		r.Text = string(r.RawText)
		r.RawText = nil
	}
}

// Writer serialises records to stdout or a file in a configured format.
type Writer struct {
	format        config.Format
	pretty        bool
	destination   io.Writer
	closer        io.Closer
	csvWriter     *csv.Writer
	csvHeaderSent bool
	buffered      *bufio.Writer
	written       int
}

// NewWriter creates a writer configured according to cfg. Records go to
// stdout when cfg has no output path; a nil stdout means os.Stdout.
func NewWriter(cfg *config.Config, stdout io.Writer) (*Writer, error) {
	var (
		dest   io.Writer
		closer io.Closer
	)

	if cfg.LiveOutput() {
		dest = stdout
		if dest == nil {
			dest = os.Stdout
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}

		file, err := os.Create(cfg.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("opening output file: %w", err)
		}
		dest = file
		closer = file
	}

	writer := &Writer{format: cfg.Format, pretty: cfg.JSONPretty, closer: closer}
	writer.buffered = bufio.NewWriter(dest)
	writer.destination = writer.buffered

	switch cfg.Format {
	case config.FormatJSON, config.FormatTXT:
	case config.FormatCSV:
		writer.csvWriter = csv.NewWriter(writer.buffered)
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}

	return writer, nil
}

// WriteRecord persists a single record using the configured format.
func (w *Writer) WriteRecord(record Record) error {
	if record.Handles == nil {
		record.Handles = []intern.Handle{}
	}
	record.preserveText()

	var err error
	switch w.format {
	case config.FormatJSON:
		err = w.writeJSONRecord(record)
	case config.FormatCSV:
		err = w.writeCSVRecord(record)
	case config.FormatTXT:
		err = w.writeTXTRecord(record)
	default:
		err = fmt.Errorf("unsupported output format: %s", w.format)
	}
	if err == nil {
		w.written++
	}
	return err
}

// Written returns the number of records written so far.
func (w *Writer) Written() int {
	return w.written
}

func (w *Writer) writeJSONRecord(record Record) error {
	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = json.MarshalIndent(record, "  ", "  ")
	} else {
		data, err = json.Marshal(record)
	}
	if err != nil {
		return err
	}

	sep := ","
	if w.written == 0 {
		sep = "["
	}
	if w.pretty {
		sep += "\n  "
	}
	if _, err := io.WriteString(w.destination, sep); err != nil {
		return err
	}
	_, err = w.destination.Write(data)
	return err
}

func (w *Writer) writeCSVRecord(record Record) error {
	if w.csvWriter == nil {
		return fmt.Errorf("csv writer not initialised")
	}

	if !w.csvHeaderSent {
		header := []string{"source", "line", "text", "handles"}
		if err := w.csvWriter.Write(header); err != nil {
			return err
		}
		w.csvHeaderSent = true
	}

	row := []string{
		record.Source,
		strconv.Itoa(record.Line),
		record.Text,
		joinHandles(record.Handles, ";"),
	}
	if err := w.csvWriter.Write(row); err != nil {
		return err
	}
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

func (w *Writer) writeTXTRecord(record Record) error {
	_, err := fmt.Fprintf(w.destination, "%s:%d\t%s\t[%s]\n", record.Source, record.Line, record.Text, joinHandles(record.Handles, " "))
	return err
}

func joinHandles(handles []intern.Handle, sep string) string {
	parts := make([]string, len(handles))
	for i, h := range handles {
		parts[i] = strconv.Itoa(int(h))
	}
	return strings.Join(parts, sep)
}

// Close terminates the JSON array, flushes any buffered data and closes
// owned file handles.
func (w *Writer) Close() error {
	if w.format == config.FormatJSON {
		closing := "]\n"
		switch {
		case w.written == 0:
			closing = "[]\n"
		case w.pretty:
			closing = "\n]\n"
		}
		if _, err := io.WriteString(w.destination, closing); err != nil {
			return err
		}
	}

	if w.csvWriter != nil {
		w.csvWriter.Flush()
		if err := w.csvWriter.Error(); err != nil {
			return err
		}
	}

	if err := w.buffered.Flush(); err != nil {
		return err
	}

	if w.closer != nil {
		return w.closer.Close()
	}

	return nil
}
