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

// Package crosstab turns categorical columns of a table into item-by-category
// sparse matrices.
package crosstab

import (
	"math"
	"sort"

	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Options of a cross tabulation.
type Options struct {
	// ValueColumn holds cell values. If empty, each occurrence counts as 1.
	ValueColumn string
	// Aggregation combines rows with the same item and category. Defaults to
	// last with a value column and to sum without one, so that a cell either
	// keeps the latest value or counts its occurrences.
	Aggregation matrix.Aggregation
}

func sortedUnique(values []string) []string {
	unique := lo.Uniq(values)
	sort.Strings(unique)
	return unique
}

// CrossTabulate builds a matrix with one row per item and one column per
// category value found in the table. Both axes are sorted.
func CrossTabulate(table *dataset.Table, itemColumn, categoryColumn string, opts Options) (*matrix.SparseMatrix, error) {
	items, err := table.Column(itemColumn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	categories, err := table.Column(categoryColumn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	values := lo.Times(table.Len(), func(int) float64 { return 1 })
	if opts.ValueColumn != "" {
		if values, err = table.Floats(opts.ValueColumn); err != nil {
			return nil, errors.Trace(err)
		}
		for i := range values {
			if math.IsNaN(values[i]) {
				values[i] = 0
			}
		}
	}
	agg, err := matrix.ParseAggregation(string(opts.Aggregation))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if agg == "" {
		agg = lo.Ternary(opts.ValueColumn != "", matrix.AggregateLast, matrix.AggregateSum)
	}

	rowNames, colNames := sortedUnique(items), sortedUnique(categories)
	rowIndex := make(map[string]int, len(rowNames))
	for i, name := range rowNames {
		rowIndex[name] = i
	}
	colIndex := make(map[string]int, len(colNames))
	for j, name := range colNames {
		colIndex[name] = j
	}
	triplets := matrix.Triplets{
		Rows:    make([]int, table.Len()),
		Columns: make([]int, table.Len()),
		Values:  values,
	}
	for k := range items {
		triplets.Rows[k] = rowIndex[items[k]]
		triplets.Columns[k] = colIndex[categories[k]]
	}
	m, err := matrix.FromTriplets(len(rowNames), len(colNames), triplets, rowNames, colNames, agg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("cross tabulate",
		zap.String("item_column", itemColumn),
		zap.String("category_column", categoryColumn),
		zap.Int("rows", m.RowsCount()),
		zap.Int("columns", m.ColumnsCount()),
		zap.Int("nnz", m.NNZ()))
	return m, nil
}

// CrossTabulateColumns cross tabulates each category column on its own. The
// matrices do not share row or column universes.
func CrossTabulateColumns(table *dataset.Table, itemColumn string, categoryColumns []string, opts Options) (map[string]*matrix.SparseMatrix, error) {
	result := make(map[string]*matrix.SparseMatrix, len(categoryColumns))
	for _, column := range categoryColumns {
		m, err := CrossTabulate(table, itemColumn, column, opts)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result[column] = m
	}
	return result, nil
}
