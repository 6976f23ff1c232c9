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

package recommender

import (
	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/crosstab"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/gorse-io/smr/weight"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// WideFormOptions configure NewFromWideForm.
type WideFormOptions struct {
	// Columns are the tag type columns. Empty means every column but the item column.
	Columns []string
	// AddTagTypesToColumnNames names tags "<tag type><separator><value>".
	AddTagTypesToColumnNames bool
	// TagValueSeparator defaults to DefaultTagValueSeparator.
	TagValueSeparator string
	Aggregation       matrix.Aggregation
}

// NewFromWideForm cross tabulates every tag type column of a table against
// the item column.
func NewFromWideForm(table *dataset.Table, itemColumn string, opts WideFormOptions) (*Recommender, error) {
	if !table.HasColumn(itemColumn) {
		return nil, base.InvalidArgumentf("item column %q", itemColumn)
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = lo.Without(table.Columns(), itemColumn)
	}
	matrices, err := crosstab.CrossTabulateColumns(table, itemColumn, columns, crosstab.Options{
		Aggregation: opts.Aggregation,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	separator := lo.Ternary(opts.TagValueSeparator == "", DefaultTagValueSeparator, opts.TagValueSeparator)
	if opts.AddTagTypesToColumnNames {
		for tagType, m := range matrices {
			if matrices[tagType], err = m.WithColumnNames(qualify(tagType, separator, m.ColumnNames())); err != nil {
				return nil, errors.Trace(err)
			}
		}
	}
	r, err := newRecommender(lo.Uniq(columns), matrices, nil, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.data, r.itemColumn = table, itemColumn
	r.indexTags(separator)
	return r, nil
}

// LongFormOptions configure NewFromLongForm.
type LongFormOptions struct {
	ItemColumn    string
	TagTypeColumn string
	TagColumn     string
	// WeightColumn holds cell values. Empty means every row counts as 1.
	WeightColumn             string
	AddTagTypesToColumnNames bool
	TagValueSeparator        string
	Aggregation              matrix.Aggregation
}

// NewFromLongForm groups a table of (item, tag type, tag, weight) rows by tag
// type and cross tabulates items against tags within each group. Tag types are
// sorted.
func NewFromLongForm(table *dataset.Table, opts LongFormOptions) (*Recommender, error) {
	for _, name := range []string{opts.ItemColumn, opts.TagTypeColumn, opts.TagColumn} {
		if !table.HasColumn(name) {
			return nil, base.InvalidArgumentf("column %q", name)
		}
	}
	tagTypes, groups, err := table.GroupBy(opts.TagTypeColumn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	separator := lo.Ternary(opts.TagValueSeparator == "", DefaultTagValueSeparator, opts.TagValueSeparator)
	matrices := make(map[string]*matrix.SparseMatrix, len(tagTypes))
	for _, tagType := range tagTypes {
		m, err := crosstab.CrossTabulate(groups[tagType], opts.ItemColumn, opts.TagColumn, crosstab.Options{
			ValueColumn: opts.WeightColumn,
			Aggregation: opts.Aggregation,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		if opts.AddTagTypesToColumnNames {
			if m, err = m.WithColumnNames(qualify(tagType, separator, m.ColumnNames())); err != nil {
				return nil, errors.Trace(err)
			}
		}
		matrices[tagType] = m
	}
	r, err := newRecommender(tagTypes, matrices, nil, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r.data, r.itemColumn = table, opts.ItemColumn
	r.indexTags(separator)
	return r, nil
}

// ApplyTermWeightFunctions weights the matrix of every tag type on its own and
// combines them again.
func (r *Recommender) ApplyTermWeightFunctions(global weight.GlobalWeight, local weight.LocalWeight, normalizer weight.Normalizer) (*Recommender, error) {
	matrices := make(map[string]*matrix.SparseMatrix, len(r.matrices))
	for tagType, m := range r.matrices {
		weighted, err := weight.Apply(m, global, local, normalizer)
		if err != nil {
			return nil, errors.Trace(err)
		}
		matrices[tagType] = weighted
	}
	return r.derive(r.tagTypes, matrices, r.weights, r.Items())
}
