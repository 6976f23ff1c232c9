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
	"github.com/gorse-io/smr/base"
	"github.com/juju/errors"
)

// Dict is the coordinate list form of a matrix. It round-trips exactly.
type Dict struct {
	RowIndices    []int     `json:"row_indices"`
	ColumnIndices []int     `json:"column_indices"`
	Values        []float64 `json:"values"`
	Shape         [2]int    `json:"shape"`
	RowNames      []string  `json:"row_names"`
	ColumnNames   []string  `json:"column_names"`
}

func (m *SparseMatrix) ToDict() *Dict {
	d := &Dict{
		RowIndices:    make([]int, 0, m.NNZ()),
		ColumnIndices: make([]int, 0, m.NNZ()),
		Values:        make([]float64, 0, m.NNZ()),
		Shape:         [2]int{m.rows, m.cols},
		RowNames:      m.RowNames(),
		ColumnNames:   m.ColumnNames(),
	}
	m.DoNonZero(func(i, j int, v float64) {
		d.RowIndices = append(d.RowIndices, i)
		d.ColumnIndices = append(d.ColumnIndices, j)
		d.Values = append(d.Values, v)
	})
	return d
}

// FromDict rebuilds a matrix from its coordinate list form. Names may repeat
// on both axes, as they do in transposed column binds.
func FromDict(d *Dict) (*SparseMatrix, error) {
	if d == nil {
		return nil, base.InvalidArgumentf("nil matrix dict")
	}
	rows, cols := d.Shape[0], d.Shape[1]
	rowNames, colNames := d.RowNames, d.ColumnNames
	if rowNames == nil {
		rowNames = DefaultNames(rows)
	}
	if colNames == nil {
		colNames = DefaultNames(cols)
	}
	if len(rowNames) != rows || len(colNames) != cols {
		return nil, base.DimensionMismatchf("names of lengths (%d, %d) for shape (%d, %d)", len(rowNames), len(colNames), rows, cols)
	}
	if len(d.RowIndices) != len(d.Values) || len(d.ColumnIndices) != len(d.Values) {
		return nil, base.DimensionMismatchf("coordinates of lengths %d, %d and %d", len(d.RowIndices), len(d.ColumnIndices), len(d.Values))
	}
	entries := make([]entry, len(d.Values))
	for k := range d.Values {
		i, j := d.RowIndices[k], d.ColumnIndices[k]
		if i < 0 || i >= rows || j < 0 || j >= cols {
			return nil, errors.Trace(base.DimensionMismatchf("coordinate (%d, %d) in shape (%d, %d)", i, j, rows, cols))
		}
		entries[k] = entry{row: i, col: j, value: d.Values[k]}
	}
	return fromEntries(rows, cols, entries, AggregateSum, NewNames(rowNames), NewNames(colNames)), nil
}
