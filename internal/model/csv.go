package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVOptions controls ReadCSV.
type CSVOptions struct {
	Comma rune // field delimiter, ',' when zero

	// NullString is the cell text read as NULL. Empty cells are always NULL
	// unless KeepEmpty is set.
	NullString string
	KeepEmpty  bool
}

// ReadCSV reads a frame from CSV. The first record is the header.
func ReadCSV(r io.Reader, opts CSVOptions) (*Frame, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	f := NewFrame(header...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			switch {
			case cell == "" && !opts.KeepEmpty:
				row[i] = nil
			case opts.NullString != "" && cell == opts.NullString:
				row[i] = nil
			default:
				row[i] = cell
			}
		}
		f.Rows = append(f.Rows, row)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return f, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, opts CSVOptions) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer fh.Close()
	return ReadCSV(fh, opts)
}
