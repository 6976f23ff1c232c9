// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Escape quotes text for a csv with the given separator.
func Escape(text, sep string) string {
	// check if need escape
	if !strings.Contains(text, sep) &&
		!strings.Contains(text, "\"") &&
		!strings.Contains(text, "\n") &&
		!strings.Contains(text, "\r") {
		return text
	}
	// start to encode
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parse fields of each line for csv file.
func ReadLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		// read line
		lineStr := sc.Text()
		line := []rune(lineStr)
		// start of line
		if quoted {
			builder.WriteString("\r\n")
		}
		// parse line
		for i := 0; i < len(line); i++ {
			if string(line[i]) == sep && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		// increase line count
		lineCount++
	}
	return sc.Err()
}

// ReadCSV reads a table whose first line is the header. Blank lines are skipped.
func ReadCSV(r io.Reader, sep string) (*Table, error) {
	var (
		header  []string
		records [][]string
		err     error
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if readErr := ReadLines(sc, sep, func(i int, fields []string) bool {
		if header == nil {
			header = trimHeader(fields)
			return true
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return true
		}
		if len(fields) != len(header) {
			err = base.InvalidArgumentf("line %d has %d fields (expect %d)", i+1, len(fields), len(header))
			return false
		}
		records = append(records, fields)
		return true
	}); readErr != nil {
		return nil, errors.Trace(readErr)
	}
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, base.InvalidArgumentf("csv without header")
	}
	return NewTable(header, records)
}

func trimHeader(fields []string) []string {
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = strings.TrimSpace(strings.TrimPrefix(field, "\ufeff"))
	}
	return header
}

// LoadCSV reads a table from a csv file.
func LoadCSV(path, sep string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	table, err := ReadCSV(file, sep)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read %s", path)
	}
	log.Logger().Debug("load table",
		zap.String("path", path),
		zap.Int("rows", table.Len()),
		zap.Strings("columns", table.Columns()))
	return table, nil
}

// WriteCSV writes the header and all rows of a table.
func WriteCSV(w io.Writer, t *Table, sep string) error {
	writeLine := func(fields []string) error {
		escaped := make([]string, len(fields))
		for i, field := range fields {
			escaped[i] = Escape(field, sep)
		}
		_, err := io.WriteString(w, strings.Join(escaped, sep)+"\r\n")
		return err
	}
	if err := writeLine(t.columns); err != nil {
		return errors.Trace(err)
	}
	for _, record := range t.records {
		if err := writeLine(record); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
