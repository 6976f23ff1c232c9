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
	"math"

	"github.com/gorse-io/smr/base"
	"github.com/james-bowman/sparse"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// DefaultTolerance is the tolerance used by Equal.
const DefaultTolerance = 1e-9

type selectorKind int

const (
	selectAll selectorKind = iota
	selectNames
	selectIndices
	selectRange
)

// Selector picks rows or columns of a matrix. Build one with All, ByNames,
// ByIndices or ByRange.
type Selector struct {
	kind       selectorKind
	names      []string
	indices    []int
	start, end int
}

// All selects every row or column in the current order.
func All() Selector {
	return Selector{kind: selectAll}
}

// ByNames selects rows or columns by name, in the given order.
func ByNames(names ...string) Selector {
	return Selector{kind: selectNames, names: names}
}

// ByIndices selects rows or columns by position, in the given order.
func ByIndices(indices ...int) Selector {
	return Selector{kind: selectIndices, indices: indices}
}

// ByRange selects positions in [start, end). Bounds are clamped to the axis.
func ByRange(start, end int) Selector {
	return Selector{kind: selectRange, start: start, end: end}
}

// resolve returns positions of the selection; nil stands for the whole axis.
func (s Selector) resolve(names *Names, n int, axis string) ([]int, error) {
	switch s.kind {
	case selectNames:
		positions := make([]int, len(s.names))
		for k, name := range s.names {
			i, exist := names.Index(name)
			if !exist {
				return nil, base.UnknownNamef("%s %q", axis, name)
			}
			positions[k] = i
		}
		return positions, nil
	case selectIndices:
		for _, i := range s.indices {
			if i < 0 || i >= n {
				return nil, base.DimensionMismatchf("%s index %d of %d %ss", axis, i, n, axis)
			}
		}
		return append([]int{}, s.indices...), nil
	case selectRange:
		start, end := min(max(s.start, 0), n), min(max(s.end, 0), n)
		if end < start {
			end = start
		}
		return lo.RangeFrom(start, end-start), nil
	default:
		return nil, nil
	}
}

func namesAt(names *Names, positions []int) *Names {
	if positions == nil {
		return names
	}
	return NewNames(lo.Map(positions, func(i int, _ int) string {
		return names.Name(i)
	}))
}

// take builds a matrix from the given row and column positions. A nil slice keeps
// the axis as is and a negative position produces an all-zero row or column.
func (m *SparseMatrix) take(rowPositions, colPositions []int, rowNames, colNames *Names) *SparseMatrix {
	rows, cols := m.rows, m.cols
	if rowPositions != nil {
		rows = len(rowPositions)
	}
	var colMap [][]int
	if colPositions != nil {
		cols = len(colPositions)
		colMap = make([][]int, m.cols)
		for j, old := range colPositions {
			if old >= 0 {
				colMap[old] = append(colMap[old], j)
			}
		}
	}
	var entries []entry
	for i := 0; i < rows; i++ {
		old := i
		if rowPositions != nil {
			old = rowPositions[i]
		}
		if old < 0 {
			continue
		}
		m.DoRowNonZero(old, func(_, j int, v float64) {
			if colMap == nil {
				entries = append(entries, entry{row: i, col: j, value: v})
				return
			}
			for _, newJ := range colMap[j] {
				entries = append(entries, entry{row: i, col: newJ, value: v})
			}
		})
	}
	return fromEntries(rows, cols, entries, AggregateSum, rowNames, colNames)
}

// Slice selects rows and columns at the same time. Names follow the selection order.
func (m *SparseMatrix) Slice(rows, cols Selector) (*SparseMatrix, error) {
	rowPositions, err := rows.resolve(m.rowNames, m.rows, "row")
	if err != nil {
		return nil, errors.Trace(err)
	}
	colPositions, err := cols.resolve(m.colNames, m.cols, "column")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.take(rowPositions, colPositions, namesAt(m.rowNames, rowPositions), namesAt(m.colNames, colPositions)), nil
}

// Rows selects rows by name.
func (m *SparseMatrix) Rows(names ...string) (*SparseMatrix, error) {
	return m.Slice(ByNames(names...), All())
}

// Columns selects columns by name.
func (m *SparseMatrix) Columns(names ...string) (*SparseMatrix, error) {
	return m.Slice(All(), ByNames(names...))
}

// Transpose swaps rows and columns together with their names.
func (m *SparseMatrix) Transpose() *SparseMatrix {
	if m.csr == nil {
		return &SparseMatrix{rows: m.cols, cols: m.rows, rowNames: m.colNames, colNames: m.rowNames}
	}
	return fromCSR(m.cols, m.rows, m.csr.T().(*sparse.CSC).ToCSR(), m.colNames, m.rowNames)
}

// Dot multiplies two matrices. Only the inner dimension counts have to agree;
// the result takes row names from m and column names from other.
func (m *SparseMatrix) Dot(other *SparseMatrix) (*SparseMatrix, error) {
	if m.cols != other.rows {
		return nil, base.DimensionMismatchf("dot of (%d, %d) and (%d, %d)", m.rows, m.cols, other.rows, other.cols)
	}
	if m.csr == nil || other.csr == nil {
		return &SparseMatrix{rows: m.rows, cols: other.cols, rowNames: m.rowNames, colNames: other.colNames}, nil
	}
	var product sparse.CSR
	product.Mul(m.csr, other.csr)
	return fromCSR(m.rows, other.cols, &product, m.rowNames, other.colNames), nil
}

// DotVector multiplies the matrix with a dense column vector.
func (m *SparseMatrix) DotVector(v []float64) ([]float64, error) {
	if len(v) != m.cols {
		return nil, base.DimensionMismatchf("dot of (%d, %d) and vector of length %d", m.rows, m.cols, len(v))
	}
	result := make([]float64, m.rows)
	m.DoNonZero(func(i, j int, value float64) {
		result[i] += value * v[j]
	})
	return result, nil
}

func (m *SparseMatrix) checkShape(other *SparseMatrix, op string) error {
	if m.rows != other.rows || m.cols != other.cols {
		return base.DimensionMismatchf("%s of (%d, %d) and (%d, %d)", op, m.rows, m.cols, other.rows, other.cols)
	}
	return nil
}

// Multiply returns the elementwise product. Names come from m.
func (m *SparseMatrix) Multiply(other *SparseMatrix) (*SparseMatrix, error) {
	if err := m.checkShape(other, "multiply"); err != nil {
		return nil, errors.Trace(err)
	}
	if m.csr == nil || other.csr == nil {
		return &SparseMatrix{rows: m.rows, cols: m.cols, rowNames: m.rowNames, colNames: m.colNames}, nil
	}
	var product sparse.CSR
	product.MulElem(m.csr, other.csr)
	return fromCSR(m.rows, m.cols, &product, m.rowNames, m.colNames), nil
}

// Add returns the elementwise sum. Names come from m.
func (m *SparseMatrix) Add(other *SparseMatrix) (*SparseMatrix, error) {
	if err := m.checkShape(other, "add"); err != nil {
		return nil, errors.Trace(err)
	}
	switch {
	case other.csr == nil:
		result := *m
		return &result, nil
	case m.csr == nil:
		result := *other
		result.rowNames, result.colNames = m.rowNames, m.colNames
		return &result, nil
	}
	var sum sparse.CSR
	sum.Add(m.csr, other.csr)
	return fromCSR(m.rows, m.cols, &sum, m.rowNames, m.colNames), nil
}

// Map applies fn to every stored value. Zero results are dropped.
func (m *SparseMatrix) Map(fn func(i, j int, v float64) float64) *SparseMatrix {
	entries := make([]entry, 0, m.NNZ())
	m.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{row: i, col: j, value: fn(i, j, v)})
	})
	return fromEntries(m.rows, m.cols, entries, AggregateSum, m.rowNames, m.colNames)
}

// Scale multiplies every value by s.
func (m *SparseMatrix) Scale(s float64) *SparseMatrix {
	return m.Map(func(_, _ int, v float64) float64 { return v * s })
}

// Unitize replaces every stored value by 1.
func (m *SparseMatrix) Unitize() *SparseMatrix {
	return m.Map(func(_, _ int, _ float64) float64 { return 1 })
}

// ScaleRows multiplies row i by weights[i].
func (m *SparseMatrix) ScaleRows(weights []float64) (*SparseMatrix, error) {
	if len(weights) != m.rows {
		return nil, base.DimensionMismatchf("%d row weights for %d rows", len(weights), m.rows)
	}
	return m.Map(func(i, _ int, v float64) float64 { return v * weights[i] }), nil
}

// ScaleColumns multiplies column j by weights[j].
func (m *SparseMatrix) ScaleColumns(weights []float64) (*SparseMatrix, error) {
	if len(weights) != m.cols {
		return nil, base.DimensionMismatchf("%d column weights for %d columns", len(weights), m.cols)
	}
	return m.Map(func(_, j int, v float64) float64 { return v * weights[j] }), nil
}

func (m *SparseMatrix) RowSums() []float64 {
	sums := make([]float64, m.rows)
	m.DoNonZero(func(i, _ int, v float64) {
		sums[i] += v
	})
	return sums
}

func (m *SparseMatrix) ColumnSums() []float64 {
	sums := make([]float64, m.cols)
	m.DoNonZero(func(_, j int, v float64) {
		sums[j] += v
	})
	return sums
}

// RowSumsMap returns row sums keyed by row name.
func (m *SparseMatrix) RowSumsMap() map[string]float64 {
	sums := make(map[string]float64, m.rows)
	for i, sum := range m.RowSums() {
		sums[m.rowNames.Name(i)] += sum
	}
	return sums
}

// ColumnSumsMap returns column sums keyed by column name. Repeated column names
// share one entry.
func (m *SparseMatrix) ColumnSumsMap() map[string]float64 {
	sums := make(map[string]float64, m.cols)
	for j, sum := range m.ColumnSums() {
		sums[m.colNames.Name(j)] += sum
	}
	return sums
}

// RowBind stacks other below m. If any row name appears in both operands, the
// rows of m get the suffix ".1" and the rows of other get ".2".
func (m *SparseMatrix) RowBind(other *SparseMatrix) (*SparseMatrix, error) {
	if m.cols != other.cols {
		return nil, base.DimensionMismatchf("row bind of %d and %d columns", m.cols, other.cols)
	}
	top, bottom := m.rowNames.Slice(), other.rowNames.Slice()
	collision := lo.SomeBy(bottom, func(name string) bool {
		_, exist := m.rowNames.Index(name)
		return exist
	})
	if collision {
		top = lo.Map(top, func(name string, _ int) string { return name + ".1" })
		bottom = lo.Map(bottom, func(name string, _ int) string { return name + ".2" })
	}
	entries := m.entries()
	other.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{row: i + m.rows, col: j, value: v})
	})
	return fromEntries(m.rows+other.rows, m.cols, entries, AggregateSum, NewNames(append(top, bottom...)), m.colNames), nil
}

// ColumnBind places other to the right of m. Column names are kept as they are,
// even if they repeat.
func (m *SparseMatrix) ColumnBind(other *SparseMatrix) (*SparseMatrix, error) {
	if m.rows != other.rows {
		return nil, base.DimensionMismatchf("column bind of %d and %d rows", m.rows, other.rows)
	}
	entries := m.entries()
	other.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{row: i, col: j + m.cols, value: v})
	})
	names := append(m.colNames.Slice(), other.colNames.Slice()...)
	return fromEntries(m.rows, m.cols+other.cols, entries, AggregateSum, m.rowNames, NewNames(names)), nil
}

func imposedPositions(names *Names, target []string) []int {
	return lo.Map(target, func(name string, _ int) int {
		if i, exist := names.Index(name); exist {
			return i
		}
		return -1
	})
}

// ImposeRowNames reorders rows to the target names. Rows missing from m become
// zero rows and rows missing from the target are dropped.
func (m *SparseMatrix) ImposeRowNames(names []string) (*SparseMatrix, error) {
	target := NewNames(names)
	if !target.Unique() {
		return nil, base.DimensionMismatchf("duplicate row names")
	}
	return m.take(imposedPositions(m.rowNames, names), nil, target, m.colNames), nil
}

// ImposeColumnNames reorders columns to the target names. Columns missing from m
// become zero columns and columns missing from the target are dropped.
func (m *SparseMatrix) ImposeColumnNames(names []string) (*SparseMatrix, error) {
	target := NewNames(names)
	if !target.Unique() {
		return nil, base.DimensionMismatchf("duplicate column names")
	}
	return m.take(nil, imposedPositions(m.colNames, names), m.rowNames, target), nil
}

// Equal compares shapes, names and values with DefaultTolerance.
func (m *SparseMatrix) Equal(other *SparseMatrix) bool {
	return m.EqualWithin(other, DefaultTolerance)
}

// EqualWithin compares shapes, names and values. Values a and b match if
// |a - b| <= tol * max(1, |a|, |b|).
func (m *SparseMatrix) EqualWithin(other *SparseMatrix, tol float64) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	if !m.rowNames.equal(other.rowNames) || !m.colNames.equal(other.colNames) {
		return false
	}
	matches := func(a, b float64) bool {
		return math.Abs(a-b) <= tol*max(1, math.Abs(a), math.Abs(b))
	}
	equal := true
	m.DoNonZero(func(i, j int, v float64) {
		equal = equal && matches(v, other.At(i, j))
	})
	other.DoNonZero(func(i, j int, v float64) {
		equal = equal && matches(m.At(i, j), v)
	})
	return equal
}
