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
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Table is an in-memory table of string cells with named columns. Recommenders
// read items, tags and weights from it by column name.
type Table struct {
	columns []string
	index   map[string]int
	records [][]string
}

// NewTable creates a table from a header and row-major records. Every record must
// have one cell per column.
func NewTable(columns []string, records [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		if _, exist := index[column]; exist {
			return nil, base.InvalidArgumentf("duplicate column %q", column)
		}
		index[column] = i
	}
	rows := make([][]string, len(records))
	for i, record := range records {
		if len(record) != len(columns) {
			return nil, base.InvalidArgumentf("record %d of length %d (expect %d)", i, len(record), len(columns))
		}
		rows[i] = append([]string(nil), record...)
	}
	return &Table{
		columns: append([]string(nil), columns...),
		index:   index,
		records: rows,
	}, nil
}

// NewTableFromColumns creates a table from column vectors. The order argument fixes
// the column order; all vectors must have the same length.
func NewTableFromColumns(order []string, values map[string][]string) (*Table, error) {
	if len(order) != len(values) {
		return nil, base.InvalidArgumentf("column order of length %d for %d columns", len(order), len(values))
	}
	n := -1
	for _, column := range order {
		vector, exist := values[column]
		if !exist {
			return nil, base.InvalidArgumentf("column %q", column)
		}
		if n >= 0 && len(vector) != n {
			return nil, base.InvalidArgumentf("column %q of length %d (expect %d)", column, len(vector), n)
		}
		n = len(vector)
	}
	records := make([][]string, max(n, 0))
	for i := range records {
		records[i] = lo.Map(order, func(column string, _ int) string {
			return values[column][i]
		})
	}
	return NewTable(order, records)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) HasColumn(name string) bool {
	_, exist := t.index[name]
	return exist
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]string, error) {
	j, exist := t.index[name]
	if !exist {
		return nil, base.InvalidArgumentf("column %q", name)
	}
	return lo.Map(t.records, func(record []string, _ int) string {
		return record[j]
	}), nil
}

// Value returns the cell at the given row of the named column.
func (t *Table) Value(row int, column string) (string, error) {
	j, exist := t.index[column]
	if !exist {
		return "", base.InvalidArgumentf("column %q", column)
	}
	if row < 0 || row >= len(t.records) {
		return "", base.InvalidArgumentf("row %d", row)
	}
	return t.records[row][j], nil
}

// Floats parses the named column as numbers. Empty or malformed cells become NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	column, err := t.Column(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Map(column, func(cell string, _ int) float64 {
		value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return math.NaN()
		}
		return value
	}), nil
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	records := make([][]string, 0, len(t.records))
	for i, record := range t.records {
		if keep(i) {
			records = append(records, record)
		}
	}
	return &Table{columns: t.columns, index: t.index, records: records}
}

// GroupBy splits rows by the values of a column. Keys are sorted.
func (t *Table) GroupBy(name string) ([]string, map[string]*Table, error) {
	j, exist := t.index[name]
	if !exist {
		return nil, nil, base.InvalidArgumentf("column %q", name)
	}
	groups := make(map[string]*Table)
	for _, record := range t.records {
		key := record[j]
		group, exist := groups[key]
		if !exist {
			group = &Table{columns: t.columns, index: t.index}
			groups[key] = group
		}
		group.records = append(group.records, record)
	}
	keys := lo.Keys(groups)
	sort.Strings(keys)
	return keys, groups, nil
}

// Dict is the serializable form of a table.
type Dict struct {
	Columns []string   `json:"columns"`
	Records [][]string `json:"records"`
}

func (t *Table) ToDict() *Dict {
	records := make([][]string, len(t.records))
	for i, record := range t.records {
		records[i] = append([]string(nil), record...)
	}
	return &Dict{Columns: t.Columns(), Records: records}
}

func FromDict(d *Dict) (*Table, error) {
	if d == nil {
		return nil, base.InvalidArgumentf("nil table dict")
	}
	return NewTable(d.Columns, d.Records)
}
