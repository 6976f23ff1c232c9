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

// Package recommender implements a tag-weighted sparse matrix recommender.
// Items are rows shared by a set of tag type matrices. The matrices, scaled by
// tag type weights and bound side by side, form the combined matrix that every
// query scores against.
package recommender

import (
	"sort"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultTagValueSeparator joins a tag type and a tag into a qualified tag.
const DefaultTagValueSeparator = ":"

// column traces a combined column back to its tag type.
type column struct {
	tagType string
	tag     string
}

// Recommender is immutable. Every method that changes it returns a new one.
type Recommender struct {
	tagTypes []string
	matrices map[string]*matrix.SparseMatrix
	weights  map[string]float64
	combined *matrix.SparseMatrix
	columns  []column
	tagIndex map[string][]int

	data       *dataset.Table
	itemColumn string
	// separator qualifies tags by their tag type in lookups.
	separator  string
}

// NewFromMatrices creates a recommender from tag type matrices. Tag types are
// ordered by tagTypeOrder first and by name after that. Items are the sorted
// union of the row names of all matrices.
func NewFromMatrices(matrices map[string]*matrix.SparseMatrix, tagTypeOrder ...string) (*Recommender, error) {
	order, err := orderTagTypes(matrices, tagTypeOrder)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return newRecommender(order, matrices, nil, nil)
}

func orderTagTypes(matrices map[string]*matrix.SparseMatrix, tagTypeOrder []string) ([]string, error) {
	order := make([]string, 0, len(matrices))
	for _, tagType := range tagTypeOrder {
		if _, exist := matrices[tagType]; !exist {
			return nil, base.InvalidArgumentf("tag type %q has no matrix", tagType)
		}
		if lo.Contains(order, tagType) {
			return nil, base.InvalidArgumentf("tag type %q is ordered twice", tagType)
		}
		order = append(order, tagType)
	}
	rest := lo.Filter(lo.Keys(matrices), func(tagType string, _ int) bool {
		return !lo.Contains(order, tagType)
	})
	sort.Strings(rest)
	return append(order, rest...), nil
}

// newRecommender reconciles every matrix to the item universe and builds the
// combined matrix. A nil item universe is the sorted union of row names.
func newRecommender(tagTypes []string, matrices map[string]*matrix.SparseMatrix, weights map[string]float64, items []string) (*Recommender, error) {
	if items == nil {
		var names []string
		for _, tagType := range tagTypes {
			if matrices[tagType] == nil {
				return nil, base.InvalidArgumentf("nil matrix of tag type %q", tagType)
			}
			names = append(names, matrices[tagType].RowNames()...)
		}
		items = lo.Uniq(names)
		sort.Strings(items)
	}
	r := &Recommender{
		tagTypes: append([]string(nil), tagTypes...),
		matrices: make(map[string]*matrix.SparseMatrix, len(tagTypes)),
		weights:  make(map[string]float64, len(tagTypes)),
	}
	combined, err := matrix.New(items, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, tagType := range tagTypes {
		m := matrices[tagType]
		if m == nil {
			return nil, base.InvalidArgumentf("nil matrix of tag type %q", tagType)
		}
		if m, err = m.ImposeRowNames(items); err != nil {
			return nil, errors.Trace(err)
		}
		r.matrices[tagType] = m
		w, exist := weights[tagType]
		if !exist {
			w = 1
		}
		r.weights[tagType] = w
		if combined, err = combined.ColumnBind(m.Scale(w)); err != nil {
			return nil, errors.Trace(err)
		}
		for _, tag := range m.ColumnNames() {
			r.columns = append(r.columns, column{tagType: tagType, tag: tag})
		}
	}
	r.combined = combined
	r.indexTags(DefaultTagValueSeparator)
	log.Logger().Debug("combine tag type matrices",
		zap.Strings("tag_types", r.tagTypes),
		zap.Int("items", combined.RowsCount()),
		zap.Int("tags", combined.ColumnsCount()),
		zap.Int("nnz", combined.NNZ()))
	return r, nil
}

// derive builds a recommender that keeps the source table of r.
func (r *Recommender) derive(tagTypes []string, matrices map[string]*matrix.SparseMatrix, weights map[string]float64, items []string) (*Recommender, error) {
	result, err := newRecommender(tagTypes, matrices, weights, items)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result.data, result.itemColumn = r.data, r.itemColumn
	result.indexTags(r.separator)
	return result, nil
}

// indexTags maps every tag and every "<tag type><separator><tag>" alias to
// its combined columns.
func (r *Recommender) indexTags(separator string) {
	r.separator = separator
	r.tagIndex = make(map[string][]int, 2*len(r.columns))
	for p, c := range r.columns {
		r.tagIndex[c.tag] = append(r.tagIndex[c.tag], p)
		if qualified := c.tagType + separator + c.tag; qualified != c.tag {
			r.tagIndex[qualified] = append(r.tagIndex[qualified], p)
		}
	}
}

// TagValueSeparator returns the separator of qualified tags.
func (r *Recommender) TagValueSeparator() string {
	return r.separator
}

// lookup returns the combined columns of a tag. A tag is either a column name
// or a column name qualified by its tag type.
func (r *Recommender) lookup(tag string) []int {
	return r.tagIndex[tag]
}

// TagTypes returns tag types in combined column order.
func (r *Recommender) TagTypes() []string {
	return append([]string(nil), r.tagTypes...)
}

// Matrix returns the matrix of a tag type, reconciled to the item universe and
// not scaled by the tag type weight.
func (r *Recommender) Matrix(tagType string) (*matrix.SparseMatrix, error) {
	m, exist := r.matrices[tagType]
	if !exist {
		return nil, base.UnknownNamef("tag type %q", tagType)
	}
	return m, nil
}

// Combined returns the weighted combined matrix.
func (r *Recommender) Combined() *matrix.SparseMatrix {
	return r.combined
}

func (r *Recommender) Items() []string {
	return r.combined.RowNames()
}

// Tags returns combined column names.
func (r *Recommender) Tags() []string {
	return r.combined.ColumnNames()
}

// TagTypeOf returns the tag type a tag belongs to. A tag found in several tag
// types resolves to the first of them.
func (r *Recommender) TagTypeOf(tag string) (string, error) {
	positions := r.lookup(tag)
	if len(positions) == 0 {
		return "", base.UnknownTagf("tag %q", tag)
	}
	return r.columns[positions[0]].tagType, nil
}

func (r *Recommender) TagTypeWeights() map[string]float64 {
	weights := make(map[string]float64, len(r.weights))
	for tagType, w := range r.weights {
		weights[tagType] = w
	}
	return weights
}

// Data returns the table the recommender was built from, if any.
func (r *Recommender) Data() *dataset.Table {
	return r.data
}

func (r *Recommender) ItemColumn() string {
	return r.itemColumn
}

// IsEmpty returns true if the recommender has no tag types.
func (r *Recommender) IsEmpty() bool {
	return len(r.tagTypes) == 0
}

// SetTagTypeWeights replaces the weights of the given tag types. Unlisted tag
// types keep their weights and unknown tag types are skipped.
func (r *Recommender) SetTagTypeWeights(weights map[string]float64) (*Recommender, error) {
	merged := r.TagTypeWeights()
	for tagType, w := range weights {
		if w <= 0 {
			return nil, base.InvalidArgumentf("weight %v of tag type %q", w, tagType)
		}
		if _, exist := r.matrices[tagType]; !exist {
			log.Logger().Warn("skip weight of unknown tag type", zap.String("tag_type", tagType))
			continue
		}
		merged[tagType] = w
	}
	return r.derive(r.tagTypes, r.matrices, merged, r.Items())
}

// FilterItems keeps the given items. Unknown items are ignored.
func (r *Recommender) FilterItems(items ...string) (*Recommender, error) {
	keep := make(map[string]struct{}, len(items))
	for _, item := range items {
		keep[item] = struct{}{}
	}
	kept := lo.Filter(r.Items(), func(item string, _ int) bool {
		_, exist := keep[item]
		return exist
	})
	result, err := r.derive(r.tagTypes, r.matrices, r.weights, kept)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if r.data != nil && r.data.HasColumn(r.itemColumn) {
		column, _ := r.data.Column(r.itemColumn)
		result.data = r.data.Filter(func(row int) bool {
			_, exist := keep[column[row]]
			return exist
		})
	}
	return result, nil
}

// qualify prefixes names with their tag type.
func qualify(tagType, separator string, names []string) []string {
	return lo.Map(names, func(name string, _ int) string {
		return strings.Join([]string{tagType, name}, separator)
	})
}
