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

package matrix

import (
	"sort"

	"github.com/gorse-io/smr/base"
	"github.com/james-bowman/sparse"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Aggregation combines values stored at the same coordinate.
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateLast Aggregation = "last"
	AggregateMax  Aggregation = "max"
)

// ParseAggregation parses an aggregation name. The empty string is kept, so
// that callers can pick their own default. Matrices sum when it is empty.
func ParseAggregation(name string) (Aggregation, error) {
	switch Aggregation(name) {
	case "":
		return "", nil
	case AggregateSum:
		return AggregateSum, nil
	case AggregateLast:
		return AggregateLast, nil
	case AggregateMax:
		return AggregateMax, nil
	default:
		return "", base.InvalidArgumentf("aggregation %q", name)
	}
}

func (a Aggregation) combine(previous, value float64) float64 {
	switch a {
	case AggregateLast:
		return value
	case AggregateMax:
		return max(previous, value)
	default:
		return previous + value
	}
}

// Triplets is a coordinate list. Rows, Columns and Values have the same length.
type Triplets struct {
	Rows    []int
	Columns []int
	Values  []float64
}

type entry struct {
	row, col int
	value    float64
}

// combine sorts entries in row-major order, folds repeated coordinates with agg
// and drops zeros. The sort is stable so AggregateLast keeps the value appended
// last.
func combine(entries []entry, agg Aggregation) []entry {
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].row != entries[b].row {
			return entries[a].row < entries[b].row
		}
		return entries[a].col < entries[b].col
	})
	combined := make([]entry, 0, len(entries))
	for k := 0; k < len(entries); {
		e := entries[k]
		next := k + 1
		for next < len(entries) && entries[next].row == e.row && entries[next].col == e.col {
			e.value = agg.combine(e.value, entries[next].value)
			next++
		}
		if e.value != 0 {
			combined = append(combined, e)
		}
		k = next
	}
	return combined
}

// SparseMatrix is a sparse matrix with named rows and columns, stored as a
// compressed sparse row matrix. Operations never modify the receiver; they
// return new matrices. Explicit zeros are never stored.
type SparseMatrix struct {
	rows, cols int
	// csr is nil if the matrix has no non-zero value.
	csr      *sparse.CSR
	rowNames *Names
	colNames *Names
}

var _ mat.Matrix = (*SparseMatrix)(nil)

// fromEntries creates a matrix from a coordinate list. Repeated coordinates are
// combined with agg.
func fromEntries(rows, cols int, entries []entry, agg Aggregation, rowNames, colNames *Names) *SparseMatrix {
	m := &SparseMatrix{rows: rows, cols: cols, rowNames: rowNames, colNames: colNames}
	combined := combine(entries, agg)
	if len(combined) == 0 {
		return m
	}
	is := make([]int, len(combined))
	js := make([]int, len(combined))
	values := make([]float64, len(combined))
	for k, e := range combined {
		is[k], js[k], values[k] = e.row, e.col, e.value
	}
	m.csr = sparse.NewCOO(rows, cols, is, js, values).ToCSR()
	return m
}

// fromCSR wraps the result of a sparse operation. Cancelled values are removed
// and the remaining ones are stored in row-major order.
func fromCSR(rows, cols int, csr *sparse.CSR, rowNames, colNames *Names) *SparseMatrix {
	var entries []entry
	csr.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{row: i, col: j, value: v})
	})
	return fromEntries(rows, cols, entries, AggregateSum, rowNames, colNames)
}

func resolveNames(names []string, n int, axis string, unique bool) (*Names, error) {
	if names == nil {
		return NewNames(DefaultNames(n)), nil
	}
	if len(names) != n {
		return nil, base.DimensionMismatchf("%d %s names for %d %ss", len(names), axis, n, axis)
	}
	result := NewNames(names)
	if unique && !result.Unique() {
		return nil, base.DimensionMismatchf("duplicate %s names", axis)
	}
	return result, nil
}

// New creates an all-zero matrix with the given names.
func New(rowNames, colNames []string) (*SparseMatrix, error) {
	return FromTriplets(len(rowNames), len(colNames), Triplets{}, rowNames, colNames, AggregateSum)
}

// FromTriplets creates a matrix from a coordinate list. Nil names default to
// stringified indices. Duplicate coordinates are combined with agg.
func FromTriplets(rows, cols int, t Triplets, rowNames, colNames []string, agg Aggregation) (*SparseMatrix, error) {
	if rows < 0 || cols < 0 {
		return nil, base.DimensionMismatchf("shape (%d, %d)", rows, cols)
	}
	if len(t.Rows) != len(t.Values) || len(t.Columns) != len(t.Values) {
		return nil, base.DimensionMismatchf("triplets of lengths %d, %d and %d", len(t.Rows), len(t.Columns), len(t.Values))
	}
	rn, err := resolveNames(rowNames, rows, "row", true)
	if err != nil {
		return nil, errors.Trace(err)
	}
	cn, err := resolveNames(colNames, cols, "column", false)
	if err != nil {
		return nil, errors.Trace(err)
	}
	entries := make([]entry, len(t.Values))
	for k := range t.Values {
		if t.Rows[k] < 0 || t.Rows[k] >= rows || t.Columns[k] < 0 || t.Columns[k] >= cols {
			return nil, base.DimensionMismatchf("coordinate (%d, %d) in shape (%d, %d)", t.Rows[k], t.Columns[k], rows, cols)
		}
		entries[k] = entry{row: t.Rows[k], col: t.Columns[k], value: t.Values[k]}
	}
	return fromEntries(rows, cols, entries, agg, rn, cn), nil
}

// FromDense creates a matrix from row-major dense values.
func FromDense(values [][]float64, rowNames, colNames []string) (*SparseMatrix, error) {
	cols := 0
	if len(values) > 0 {
		cols = len(values[0])
	} else if colNames != nil {
		cols = len(colNames)
	}
	var t Triplets
	for i, row := range values {
		if len(row) != cols {
			return nil, base.DimensionMismatchf("row %d of length %d (expect %d)", i, len(row), cols)
		}
		for j, value := range row {
			if value != 0 {
				t.Rows = append(t.Rows, i)
				t.Columns = append(t.Columns, j)
				t.Values = append(t.Values, value)
			}
		}
	}
	return FromTriplets(len(values), cols, t, rowNames, colNames, AggregateSum)
}

// FromMatrix copies any gonum matrix.
func FromMatrix(m mat.Matrix, rowNames, colNames []string) (*SparseMatrix, error) {
	if sm, ok := m.(*SparseMatrix); ok {
		var err error
		result := sm.Clone()
		if rowNames != nil {
			if result, err = result.WithRowNames(rowNames); err != nil {
				return nil, errors.Trace(err)
			}
		}
		if colNames != nil {
			if result, err = result.WithColumnNames(colNames); err != nil {
				return nil, errors.Trace(err)
			}
		}
		return result, nil
	}
	rows, cols := m.Dims()
	var t Triplets
	appendValue := func(i, j int, value float64) {
		if value != 0 {
			t.Rows = append(t.Rows, i)
			t.Columns = append(t.Columns, j)
			t.Values = append(t.Values, value)
		}
	}
	if doer, ok := m.(mat.NonZeroDoer); ok {
		doer.DoNonZero(appendValue)
	} else {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				appendValue(i, j, m.At(i, j))
			}
		}
	}
	return FromTriplets(rows, cols, t, rowNames, colNames, AggregateSum)
}

// Clone returns a deep copy.
func (m *SparseMatrix) Clone() *SparseMatrix {
	result := *m
	if m.csr != nil {
		var csr sparse.CSR
		csr.Clone(m.csr)
		result.csr = &csr
	}
	return &result
}

// Dims returns the number of rows and columns.
func (m *SparseMatrix) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the value at (i, j). It panics if the position is out of range.
func (m *SparseMatrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	if m.csr == nil {
		return 0
	}
	return m.csr.At(i, j)
}

// T returns the transpose as a gonum matrix.
func (m *SparseMatrix) T() mat.Matrix {
	return m.Transpose()
}

func (m *SparseMatrix) RowsCount() int {
	return m.rows
}

func (m *SparseMatrix) ColumnsCount() int {
	return m.cols
}

// NNZ returns the number of stored non-zero values.
func (m *SparseMatrix) NNZ() int {
	if m.csr == nil {
		return 0
	}
	return m.csr.NNZ()
}

func (m *SparseMatrix) RowNames() []string {
	return m.rowNames.Slice()
}

func (m *SparseMatrix) ColumnNames() []string {
	return m.colNames.Slice()
}

// RowName returns the name of row i.
func (m *SparseMatrix) RowName(i int) string {
	return m.rowNames.Name(i)
}

// ColumnName returns the name of column j.
func (m *SparseMatrix) ColumnName(j int) string {
	return m.colNames.Name(j)
}

// RowIndex returns the position of a row name.
func (m *SparseMatrix) RowIndex(name string) (int, bool) {
	return m.rowNames.Index(name)
}

// ColumnIndex returns the position of a column name.
func (m *SparseMatrix) ColumnIndex(name string) (int, bool) {
	return m.colNames.Index(name)
}

// HasRow returns true if the row name exists.
func (m *SparseMatrix) HasRow(name string) bool {
	_, exist := m.rowNames.Index(name)
	return exist
}

// HasColumn returns true if the column name exists.
func (m *SparseMatrix) HasColumn(name string) bool {
	_, exist := m.colNames.Index(name)
	return exist
}

// Get returns the value at a named position.
func (m *SparseMatrix) Get(row, col string) (float64, error) {
	i, exist := m.rowNames.Index(row)
	if !exist {
		return 0, base.UnknownNamef("row %q", row)
	}
	j, exist := m.colNames.Index(col)
	if !exist {
		return 0, base.UnknownNamef("column %q", col)
	}
	return m.At(i, j), nil
}

// GetAt returns the value at (i, j), reporting out of range positions as errors.
func (m *SparseMatrix) GetAt(i, j int) (float64, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, base.DimensionMismatchf("position (%d, %d) in shape (%d, %d)", i, j, m.rows, m.cols)
	}
	return m.At(i, j), nil
}

// DoNonZero calls fn for each stored value in row-major order.
func (m *SparseMatrix) DoNonZero(fn func(i, j int, v float64)) {
	if m.csr != nil {
		m.csr.DoNonZero(fn)
	}
}

// DoRowNonZero calls fn for each stored value of row i in column order.
func (m *SparseMatrix) DoRowNonZero(i int, fn func(i, j int, v float64)) {
	if m.csr != nil {
		m.csr.DoRowNonZero(i, fn)
	}
}

// RowNNZ returns the number of stored values in row i.
func (m *SparseMatrix) RowNNZ(i int) int {
	count := 0
	m.DoRowNonZero(i, func(_, _ int, _ float64) {
		count++
	})
	return count
}

func (m *SparseMatrix) entries() []entry {
	entries := make([]entry, 0, m.NNZ())
	m.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{row: i, col: j, value: v})
	})
	return entries
}

// ToDense returns the values as a row-major dense slice. It is meant for
// inspection of small matrices.
func (m *SparseMatrix) ToDense() [][]float64 {
	dense := make([][]float64, m.rows)
	for i := range dense {
		dense[i] = make([]float64, m.cols)
	}
	m.DoNonZero(func(i, j int, v float64) {
		dense[i][j] = v
	})
	return dense
}

// WithRowNames returns a copy with new row names.
func (m *SparseMatrix) WithRowNames(names []string) (*SparseMatrix, error) {
	rn, err := resolveNames(names, m.rows, "row", true)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result := *m
	result.rowNames = rn
	return &result, nil
}

// WithColumnNames returns a copy with new column names.
func (m *SparseMatrix) WithColumnNames(names []string) (*SparseMatrix, error) {
	cn, err := resolveNames(names, m.cols, "column", true)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result := *m
	result.colNames = cn
	return &result, nil
}

func namesFromIndex(index map[string]int, n int, axis string) ([]string, error) {
	if len(index) != n {
		return nil, base.DimensionMismatchf("%d %s names for %d %ss", len(index), axis, n, axis)
	}
	names := make([]string, n)
	filled := make([]bool, n)
	for name, i := range index {
		if i < 0 || i >= n || filled[i] {
			return nil, base.DimensionMismatchf("%s index %d of %q", axis, i, name)
		}
		names[i] = name
		filled[i] = true
	}
	return names, nil
}

// WithRowIndex returns a copy whose row names are given as a name to position map.
func (m *SparseMatrix) WithRowIndex(index map[string]int) (*SparseMatrix, error) {
	names, err := namesFromIndex(index, m.rows, "row")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.WithRowNames(names)
}

// WithColumnIndex returns a copy whose column names are given as a name to position map.
func (m *SparseMatrix) WithColumnIndex(index map[string]int) (*SparseMatrix, error) {
	names, err := namesFromIndex(index, m.cols, "column")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.WithColumnNames(names)
}
