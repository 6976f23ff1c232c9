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
	"sort"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/matrix"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type JoinType string

const (
	InnerJoin JoinType = "inner"
	OuterJoin JoinType = "outer"
	LeftJoin  JoinType = "left"
)

// ParseJoinType parses a join type name case insensitively.
func ParseJoinType(name string) (JoinType, error) {
	switch joinType := JoinType(strings.ToLower(name)); joinType {
	case InnerJoin, OuterJoin, LeftJoin:
		return joinType, nil
	default:
		return "", base.InvalidArgumentf("join type %q", name)
	}
}

// Join merges the tag types of r and other. The item universe is the
// intersection (inner), the union (outer) or the items of r (left). Items
// missing from one side get zero rows there. The source table is only kept by
// left joins.
func (r *Recommender) Join(other *Recommender, joinType JoinType) (*Recommender, error) {
	if common := lo.Intersect(r.tagTypes, other.tagTypes); len(common) > 0 {
		return nil, base.IncompatibleRecommendersf("tag types %v exist in both recommenders", common)
	}
	var items []string
	switch joinType {
	case InnerJoin:
		items = lo.Intersect(r.Items(), other.Items())
		if len(items) == 0 {
			return nil, base.IncompatibleRecommendersf("no common items")
		}
	case OuterJoin:
		items = lo.Union(r.Items(), other.Items())
	case LeftJoin:
		items = r.Items()
	default:
		return nil, base.InvalidArgumentf("join type %q", joinType)
	}
	sort.Strings(items)

	tagTypes := append(r.TagTypes(), other.tagTypes...)
	matrices := lo.Assign(r.matrices, other.matrices)
	weights := lo.Assign(r.weights, other.weights)
	result, err := newRecommender(tagTypes, matrices, weights, items)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if joinType == LeftJoin {
		result.data, result.itemColumn = r.data, r.itemColumn
	}
	result.indexTags(r.separator)
	log.Logger().Debug("join recommenders",
		zap.String("join_type", string(joinType)),
		zap.Int("items", len(items)),
		zap.Strings("tag_types", tagTypes))
	return result, nil
}

// RemoveTagTypes drops the given tag types. Unknown tag types are ignored and
// the item universe is kept.
func (r *Recommender) RemoveTagTypes(tagTypes ...string) (*Recommender, error) {
	kept := lo.Without(r.tagTypes, tagTypes...)
	return r.derive(kept, r.matrices, r.weights, r.Items())
}

// AnnexSubMatrices adds tag type matrices to r. Their rows are reconciled to
// the items of r, so each matrix must share at least one item with r. A
// recommender without tag types takes the union of the annexed rows instead.
// New tag types are placed after the existing ones, ordered by tagTypeOrder
// first and by name after that.
func (r *Recommender) AnnexSubMatrices(matrices map[string]*matrix.SparseMatrix, tagTypeOrder ...string) (*Recommender, error) {
	order, err := orderTagTypes(matrices, tagTypeOrder)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var items []string
	if !r.IsEmpty() {
		items = r.Items()
		universe := matrix.NewNames(items)
		for _, tagType := range order {
			if _, exist := r.matrices[tagType]; exist {
				return nil, base.IncompatibleRecommendersf("tag type %q already exists", tagType)
			}
			if m := matrices[tagType]; m == nil || !lo.SomeBy(m.RowNames(), func(item string) bool {
				_, exist := universe.Index(item)
				return exist
			}) {
				return nil, base.IncompatibleRecommendersf("matrix of tag type %q shares no item", tagType)
			}
		}
	}
	return r.derive(append(r.TagTypes(), order...), lo.Assign(r.matrices, matrices), r.weights, items)
}

// ToMetadataRecommender makes the tags of tagTypeTo the new items. The matrix
// of every other tag type becomes M_to^T * M, so a value of tagTypeTo is
// tagged with the tags of the items carrying it. Empty tagTypes means all tag
// types but tagTypeTo.
func (r *Recommender) ToMetadataRecommender(tagTypeTo string, tagTypes ...string) (*Recommender, error) {
	to, exist := r.matrices[tagTypeTo]
	if !exist {
		return nil, base.UnknownNamef("tag type %q", tagTypeTo)
	}
	if len(tagTypes) == 0 {
		tagTypes = lo.Without(r.tagTypes, tagTypeTo)
	}
	if !matrix.NewNames(to.ColumnNames()).Unique() {
		return nil, base.IncompatibleRecommendersf("tags of tag type %q repeat", tagTypeTo)
	}
	transposed := to.Transpose()
	matrices := make(map[string]*matrix.SparseMatrix, len(tagTypes))
	weights := make(map[string]float64, len(tagTypes))
	for _, tagType := range lo.Uniq(tagTypes) {
		m, exist := r.matrices[tagType]
		if !exist {
			return nil, base.UnknownNamef("tag type %q", tagType)
		}
		product, err := transposed.Dot(m)
		if err != nil {
			return nil, errors.Trace(err)
		}
		matrices[tagType] = product
		weights[tagType] = r.weights[tagType]
	}
	result, err := newRecommender(lo.Uniq(tagTypes), matrices, weights, transposed.RowNames())
	if err != nil {
		return nil, errors.Trace(err)
	}
	result.itemColumn = tagTypeTo
	result.indexTags(r.separator)
	return result, nil
}
