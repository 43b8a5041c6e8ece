// Package zeppelin reads the "%table" display format notebook interpreters
// emit: a header line followed by data lines, cells separated by tabs.
package zeppelin

import (
	"bufio"
	"context"
	"io"
	"strings"

	"bubbleviz/domain/table"
	"bubbleviz/internal/errors"
)

// TablePrefix marks interpreter output as a table
const TablePrefix = "%table"

// Parse reads a %table payload. The prefix is optional, a trailing empty line
// is ignored, and rows are padded or cut to the header width. Cells are not
// trimmed.
func Parse(r io.Reader) (*table.Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)

	var header []string
	var rows [][]string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if header == nil {
			line = strings.TrimPrefix(line, TablePrefix)
			line = strings.TrimLeft(line, " \n")
			if line == "" {
				continue
			}
			header = strings.Split(line, "\t")
			continue
		}
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		row := make([]string, len(header))
		copy(row, cells)
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read table")
	}
	if header == nil {
		return nil, errors.InvalidInput("table has no header line")
	}
	return table.New(header, rows), nil
}

// ParseString is Parse over a string
func ParseString(s string) (*table.Table, error) {
	return Parse(strings.NewReader(s))
}

// Format writes tbl back out in %table form
func Format(w io.Writer, tbl *table.Table) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(TablePrefix + " ")
	bw.WriteString(strings.Join(tbl.Header(), "\t"))
	bw.WriteByte('\n')
	for _, row := range tbl.Rows {
		bw.WriteString(strings.Join(row, "\t"))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Source is a ports.TableSource over a fixed %table payload
type Source struct {
	payload string
}

// NewSource creates a source over payload
func NewSource(payload string) *Source {
	return &Source{payload: payload}
}

// Fetch parses the payload
func (s *Source) Fetch(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseString(s.payload)
}
