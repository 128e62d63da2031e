package harness

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sink receives result records in run order.
type Sink interface {
	Write(rec Record) error
}

// FileSink appends records as JSON lines to a file shared with other
// processes. The file is opened in append mode for every record and each
// line goes out in a single write, so it is never truncated and concurrent
// appenders never interleave inside a line.
type FileSink struct {
	Path string
}

// NewFileSink returns a FileSink for path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// Probe opens the file for appending and closes it again, creating it if
// needed, so an unwritable path fails before any benchmark work.
func (s *FileSink) Probe() error {
	f, err := s.open()
	if err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close results file %s: %w", s.Path, err)
	}

	return nil
}

// Write appends rec as one newline-terminated JSON object.
func (s *FileSink) Write(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	line = append(line, '\n')

	f, err := s.open()
	if err != nil {
		return err
	}

	if _, err := f.Write(line); err != nil {
		f.Close()

		return fmt.Errorf("append to results file %s: %w", s.Path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close results file %s: %w", s.Path, err)
	}

	return nil
}

func (s *FileSink) open() (*os.File, error) {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results file %s: %w", s.Path, err)
	}

	return f, nil
}
