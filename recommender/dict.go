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
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/juju/errors"
)

// Dict is the serializable form of a recommender. Value caches the combined
// matrix and is not needed to restore a recommender.
type Dict struct {
	Matrices       map[string]*matrix.Dict `json:"matrices"`
	TagTypeWeights map[string]float64      `json:"tag_type_weights"`
	Data           *dataset.Dict           `json:"data,omitempty"`
	Value          *matrix.Dict            `json:"value,omitempty"`
	TagTypes       []string                `json:"tag_types"`
	ItemColumn     string                  `json:"item_column,omitempty"`
	// Separator of qualified tags, empty for the default one.
	Separator      string                  `json:"tag_value_separator,omitempty"`
}

func (r *Recommender) ToDict() *Dict {
	d := &Dict{
		Matrices:       make(map[string]*matrix.Dict, len(r.matrices)),
		TagTypeWeights: r.TagTypeWeights(),
		Value:          r.combined.ToDict(),
		TagTypes:       r.TagTypes(),
		ItemColumn:     r.itemColumn,
	}
	if r.separator != DefaultTagValueSeparator {
		d.Separator = r.separator
	}
	for tagType, m := range r.matrices {
		d.Matrices[tagType] = m.ToDict()
	}
	if r.data != nil {
		d.Data = r.data.ToDict()
	}
	return d
}

// FromDict restores a recommender. The items are taken from the cached
// combined matrix if present.
func FromDict(d *Dict) (*Recommender, error) {
	if d == nil {
		return nil, base.InvalidArgumentf("nil recommender dict")
	}
	matrices := make(map[string]*matrix.SparseMatrix, len(d.Matrices))
	for tagType, md := range d.Matrices {
		m, err := matrix.FromDict(md)
		if err != nil {
			return nil, errors.Annotatef(err, "matrix of tag type %q", tagType)
		}
		matrices[tagType] = m
	}
	order, err := orderTagTypes(matrices, d.TagTypes)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var items []string
	if d.Value != nil {
		items = d.Value.RowNames
	}
	r, err := newRecommender(order, matrices, d.TagTypeWeights, items)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if d.Data != nil {
		if r.data, err = dataset.FromDict(d.Data); err != nil {
			return nil, errors.Trace(err)
		}
	}
	r.itemColumn = d.ItemColumn
	if d.Separator != "" {
		r.indexTags(d.Separator)
	}
	return r, nil
}
