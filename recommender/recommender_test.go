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
	"math"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/json"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/gorse-io/smr/weight"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passengers(t *testing.T, records ...[]string) *Recommender {
	if len(records) == 0 {
		records = [][]string{
			{"A", "male", "1st"},
			{"B", "female", "1st"},
			{"C", "male", "3rd"},
		}
	}
	table, err := dataset.NewTable([]string{"id", "sex", "class"}, records)
	require.NoError(t, err)
	r, err := NewFromWideForm(table, "id", WideFormOptions{})
	require.NoError(t, err)
	return r
}

func ids(scores []Score) []string {
	return lo.Map(scores, func(s Score, _ int) string { return s.Id })
}

func TestNewFromWideForm(t *testing.T) {
	r := passengers(t)
	assert.Equal(t, []string{"sex", "class"}, r.TagTypes())
	assert.Equal(t, []string{"A", "B", "C"}, r.Items())
	assert.Equal(t, []string{"female", "male", "1st", "3rd"}, r.Tags())
	assert.Equal(t, "id", r.ItemColumn())
	assert.Equal(t, 3, r.Data().Len())
	assert.Equal(t, map[string]float64{"sex": 1, "class": 1}, r.TagTypeWeights())
	tagType, err := r.TagTypeOf("3rd")
	assert.NoError(t, err)
	assert.Equal(t, "class", tagType)
	tagType, err = r.TagTypeOf("sex:male")
	assert.NoError(t, err)
	assert.Equal(t, "sex", tagType)
	_, err = r.TagTypeOf("2nd")
	assert.ErrorIs(t, err, base.ErrUnknownTag)
	m, err := r.Matrix("class")
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {1, 0}, {0, 1}}, m.ToDense())
	_, err = r.Matrix("age")
	assert.ErrorIs(t, err, base.ErrUnknownName)

	table, err := dataset.NewTable([]string{"id", "sex", "class"}, [][]string{{"A", "male", "1st"}})
	require.NoError(t, err)
	r, err = NewFromWideForm(table, "id", WideFormOptions{
		Columns:                  []string{"class"},
		AddTagTypesToColumnNames: true,
		TagValueSeparator:        ".",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"class"}, r.TagTypes())
	assert.Equal(t, []string{"class.1st"}, r.Tags())
	_, err = NewFromWideForm(table, "name", WideFormOptions{})
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestTagValueSeparator(t *testing.T) {
	table, err := dataset.NewTable([]string{"id", "sex", "class"}, [][]string{
		{"A", "male", "1st"},
		{"B", "female", "1st"},
		{"C", "male", "3rd"},
	})
	require.NoError(t, err)
	r, err := NewFromWideForm(table, "id", WideFormOptions{TagValueSeparator: "|"})
	require.NoError(t, err)
	assert.Equal(t, "|", r.TagValueSeparator())
	tagType, err := r.TagTypeOf("sex|male")
	require.NoError(t, err)
	assert.Equal(t, "sex", tagType)
	_, err = r.TagTypeOf("sex:male")
	assert.ErrorIs(t, err, base.ErrUnknownTag)

	weighted, err := r.SetTagTypeWeights(map[string]float64{"class": 2})
	require.NoError(t, err)
	scores, err := weighted.RecommendByProfile(Unweighted("sex|male"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "C"}, ids(scores))

	restored, err := FromDict(weighted.ToDict())
	require.NoError(t, err)
	assert.Equal(t, "|", restored.TagValueSeparator())
	tagType, err = restored.TagTypeOf("class|3rd")
	require.NoError(t, err)
	assert.Equal(t, "class", tagType)
	assert.Equal(t, DefaultTagValueSeparator, passengers(t).TagValueSeparator())
}

func TestNewFromLongForm(t *testing.T) {
	table, err := dataset.NewTable([]string{"item", "type", "tag", "weight"}, [][]string{
		{"A", "genre", "drama", "2"},
		{"A", "year", "1990", "1"},
		{"B", "genre", "comedy", "1"},
		{"B", "genre", "comedy", "3"},
	})
	require.NoError(t, err)
	r, err := NewFromLongForm(table, LongFormOptions{
		ItemColumn:               "item",
		TagTypeColumn:            "type",
		TagColumn:                "tag",
		WeightColumn:             "weight",
		AddTagTypesToColumnNames: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"genre", "year"}, r.TagTypes())
	assert.Equal(t, []string{"A", "B"}, r.Items())
	assert.Equal(t, []string{"genre:comedy", "genre:drama", "year:1990"}, r.Tags())
	assert.Equal(t, [][]float64{{0, 2, 1}, {3, 0, 0}}, r.Combined().ToDense())

	r, err = NewFromLongForm(table, LongFormOptions{
		ItemColumn:    "item",
		TagTypeColumn: "type",
		TagColumn:     "tag",
		WeightColumn:  "weight",
		Aggregation:   matrix.AggregateSum,
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 2, 1}, {4, 0, 0}}, r.Combined().ToDense())

	_, err = NewFromLongForm(table, LongFormOptions{ItemColumn: "item", TagTypeColumn: "kind", TagColumn: "tag"})
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestNewFromMatrices(t *testing.T) {
	a, err := matrix.FromDense([][]float64{{1}, {1}}, []string{"y", "x"}, []string{"red"})
	require.NoError(t, err)
	b, err := matrix.FromDense([][]float64{{2}}, []string{"z"}, []string{"big"})
	require.NoError(t, err)
	r, err := NewFromMatrices(map[string]*matrix.SparseMatrix{"color": a, "size": b}, "size")
	require.NoError(t, err)
	assert.Equal(t, []string{"size", "color"}, r.TagTypes())
	assert.Equal(t, []string{"x", "y", "z"}, r.Items())
	assert.Equal(t, [][]float64{{0, 1}, {0, 1}, {2, 0}}, r.Combined().ToDense())

	_, err = NewFromMatrices(map[string]*matrix.SparseMatrix{"color": a}, "size")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestRecommendByProfile(t *testing.T) {
	r := passengers(t)
	scores, err := r.RecommendByProfile(Unweighted("male", "1st"))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"A", 2}, {"B", 1}, {"C", 1}}, scores)

	scores, err = r.RecommendByProfile(Unweighted("male", "1st"), WithNRecs(1))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"A", 2}}, scores)

	scores, err = r.RecommendByProfile(map[string]float64{"sex:female": 1})
	require.NoError(t, err)
	assert.Equal(t, []Score{{"B", 1}}, scores)

	scores, err = r.RecommendByProfile(Unweighted("male", "1st"), WithNormalize(true))
	require.NoError(t, err)
	assert.InDelta(t, 2/math.Sqrt(6), scores[0].Score, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(6), scores[2].Score, 1e-12)

	_, err = r.RecommendByProfile(Unweighted("male", "2nd"))
	assert.ErrorIs(t, err, base.ErrUnknownTag)
	scores, err = r.RecommendByProfile(Unweighted("female", "2nd"), WithIgnoreUnknown(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids(scores))
}

func TestRecommend(t *testing.T) {
	r := passengers(t)
	scores, err := r.Recommend(Unweighted("A"))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"B", 1}, {"C", 1}}, scores)

	scores, err = r.Recommend(Unweighted("A"), WithRemoveHistory(false))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"A", 2}, {"B", 1}, {"C", 1}}, scores)

	scores, err = r.Recommend(map[string]float64{"B": 1, "C": 2})
	require.NoError(t, err)
	assert.Equal(t, []Score{{"A", 3}}, scores)

	_, err = r.Recommend(Unweighted("Z"))
	assert.ErrorIs(t, err, base.ErrUnknownName)
	scores, err = r.Recommend(Unweighted("Z", "B"), WithIgnoreUnknown(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(scores))
}

func TestProfile(t *testing.T) {
	r := passengers(t)
	profile, err := r.Profile(Unweighted("A", "C"))
	require.NoError(t, err)
	assert.Equal(t, []TagScore{
		{Tag: "male", TagType: "sex", Score: 2},
		{Tag: "1st", TagType: "class", Score: 1},
		{Tag: "3rd", TagType: "class", Score: 1},
	}, profile)

	profile, err = r.Profile(Unweighted("A", "C"), WithNRecs(1))
	require.NoError(t, err)
	assert.Len(t, profile, 1)
}

func TestClassifyByProfile(t *testing.T) {
	r := passengers(t,
		[]string{"A", "male", "1st"},
		[]string{"B", "female", "1st"},
		[]string{"C", "male", "3rd"},
		[]string{"D", "male", "3rd"},
	)
	labels, err := r.ClassifyByProfile("class", Unweighted("male"), 100)
	require.NoError(t, err)
	assert.Equal(t, []Score{{"3rd", 2}, {"1st", 1}}, labels)

	withOwnTags, err := r.ClassifyByProfile("class", Unweighted("male", "1st"), 100)
	require.NoError(t, err)
	assert.Equal(t, labels, withOwnTags)

	labels, err = r.ClassifyByProfile("class", Unweighted("male"), 100, WithNormalize(true))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"3rd", 1}, {"1st", 0.5}}, labels)

	labels, err = r.ClassifyByProfile("class", Unweighted("male"), 1)
	require.NoError(t, err)
	assert.Equal(t, []Score{{"1st", 1}}, labels)

	_, err = r.ClassifyByProfile("age", Unweighted("male"), 1)
	assert.ErrorIs(t, err, base.ErrUnknownName)
	_, err = r.ClassifyByProfile("class", Unweighted("male"), 0)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestRetrieveByQueryElements(t *testing.T) {
	r := passengers(t)
	items, err := r.RetrieveByQueryElements(nil, []string{"male"}, []string{"1st"})
	require.NoError(t, err)
	assert.True(t, mapset.NewSet("C").Equal(items))

	items, err = r.RetrieveByQueryElements(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, items.Cardinality())

	items, err = r.RetrieveByQueryElements([]string{"female", "3rd"}, nil, nil)
	require.NoError(t, err)
	assert.True(t, mapset.NewSet("B", "C").Equal(items))

	_, err = r.RetrieveByQueryElements(nil, []string{"2nd"}, nil)
	assert.ErrorIs(t, err, base.ErrUnknownTag)
	items, err = r.RetrieveByQueryElements(nil, []string{"2nd", "1st"}, nil, WithIgnoreUnknown(true))
	require.NoError(t, err)
	assert.True(t, mapset.NewSet("A", "B").Equal(items))
}

func TestEmptyRecommender(t *testing.T) {
	r, err := NewFromMatrices(nil)
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())
	scores, err := r.RecommendByProfile(Unweighted("male"))
	assert.NoError(t, err)
	assert.Empty(t, scores)
	scores, err = r.Recommend(Unweighted("A"))
	assert.NoError(t, err)
	assert.Empty(t, scores)
	scores, err = r.ClassifyByProfile("class", Unweighted("male"), 3)
	assert.NoError(t, err)
	assert.Empty(t, scores)
	items, err := r.RetrieveByQueryElements([]string{"male"}, nil, nil)
	assert.NoError(t, err)
	assert.Zero(t, items.Cardinality())
}

func TestJoin(t *testing.T) {
	sex, err := matrix.FromDense([][]float64{{1, 0}, {0, 1}}, []string{"A", "B"}, []string{"male", "female"})
	require.NoError(t, err)
	class, err := matrix.FromDense([][]float64{{1}, {1}}, []string{"B", "C"}, []string{"1st"})
	require.NoError(t, err)
	left, err := NewFromMatrices(map[string]*matrix.SparseMatrix{"sex": sex})
	require.NoError(t, err)
	right, err := NewFromMatrices(map[string]*matrix.SparseMatrix{"class": class})
	require.NoError(t, err)

	outer, err := left.Join(right, OuterJoin)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, outer.Items())
	assert.Equal(t, []string{"sex", "class"}, outer.TagTypes())
	assert.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 1}, {0, 0, 1}}, outer.Combined().ToDense())

	inner, err := left.Join(right, InnerJoin)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, inner.Items())

	leftJoin, err := left.Join(right, LeftJoin)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, leftJoin.Items())
	assert.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 1}}, leftJoin.Combined().ToDense())

	_, err = left.Join(left, OuterJoin)
	assert.ErrorIs(t, err, base.ErrIncompatibleRecommenders)
	other, err := matrix.FromDense([][]float64{{1}}, []string{"Z"}, []string{"1st"})
	require.NoError(t, err)
	disjoint, err := NewFromMatrices(map[string]*matrix.SparseMatrix{"class": other})
	require.NoError(t, err)
	_, err = left.Join(disjoint, InnerJoin)
	assert.ErrorIs(t, err, base.ErrIncompatibleRecommenders)

	joinType, err := ParseJoinType("Outer")
	assert.NoError(t, err)
	assert.Equal(t, OuterJoin, joinType)
	_, err = ParseJoinType("cross")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestRemoveTagTypes(t *testing.T) {
	r := passengers(t)
	removed, err := r.RemoveTagTypes("class", "age")
	require.NoError(t, err)
	assert.Equal(t, []string{"sex"}, removed.TagTypes())
	assert.Equal(t, []string{"A", "B", "C"}, removed.Items())
	assert.Equal(t, []string{"female", "male"}, removed.Tags())
	// the receiver is untouched
	assert.Equal(t, []string{"sex", "class"}, r.TagTypes())
}

func TestAnnexSubMatrices(t *testing.T) {
	r := passengers(t)
	topics, err := matrix.FromDense([][]float64{{0.5}, {0.2}, {0.1}}, []string{"C", "A", "Z"}, []string{"Topic:0"})
	require.NoError(t, err)
	annexed, err := r.AnnexSubMatrices(map[string]*matrix.SparseMatrix{"Topic": topics})
	require.NoError(t, err)
	assert.Equal(t, []string{"sex", "class", "Topic"}, annexed.TagTypes())
	assert.Equal(t, []string{"A", "B", "C"}, annexed.Items())
	m, err := annexed.Matrix("Topic")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.2}, {0}, {0.5}}, m.ToDense())

	_, err = annexed.AnnexSubMatrices(map[string]*matrix.SparseMatrix{"Topic": topics})
	assert.ErrorIs(t, err, base.ErrIncompatibleRecommenders)
	stranger, err := matrix.FromDense([][]float64{{1}}, []string{"Z"}, []string{"w"})
	require.NoError(t, err)
	_, err = r.AnnexSubMatrices(map[string]*matrix.SparseMatrix{"Word": stranger})
	assert.ErrorIs(t, err, base.ErrIncompatibleRecommenders)

	empty, err := NewFromMatrices(nil)
	require.NoError(t, err)
	annexed, err = empty.AnnexSubMatrices(map[string]*matrix.SparseMatrix{"Word": stranger})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, annexed.Items())
}

func TestToMetadataRecommender(t *testing.T) {
	r := passengers(t)
	metadata, err := r.ToMetadataRecommender("class")
	require.NoError(t, err)
	assert.Equal(t, []string{"1st", "3rd"}, metadata.Items())
	assert.Equal(t, []string{"sex"}, metadata.TagTypes())
	assert.Equal(t, "class", metadata.ItemColumn())
	assert.Equal(t, [][]float64{{1, 1}, {0, 1}}, metadata.Combined().ToDense())
	scores, err := metadata.RecommendByProfile(Unweighted("female"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1st"}, ids(scores))

	_, err = r.ToMetadataRecommender("age")
	assert.ErrorIs(t, err, base.ErrUnknownName)
	_, err = r.ToMetadataRecommender("class", "age")
	assert.ErrorIs(t, err, base.ErrUnknownName)
}

func TestApplyTermWeightFunctions(t *testing.T) {
	r := passengers(t)
	weighted, err := r.ApplyTermWeightFunctions(weight.IDF, weight.LocalNone, weight.Cosine)
	require.NoError(t, err)
	m, err := weighted.Matrix("sex")
	require.NoError(t, err)
	expected := [][]float64{{0, 1}, {1, 0}, {0, 1}}
	for i, row := range m.ToDense() {
		assert.InDeltaSlice(t, expected[i], row, 1e-12)
	}
	scores, err := weighted.RecommendByProfile(Unweighted("male", "1st"))
	require.NoError(t, err)
	assert.Equal(t, "A", scores[0].Id)

	_, err = r.ApplyTermWeightFunctions("bm25", weight.LocalNone, weight.Cosine)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestSetTagTypeWeights(t *testing.T) {
	r := passengers(t)
	weighted, err := r.SetTagTypeWeights(map[string]float64{"sex": 2, "age": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"sex": 2, "class": 1}, weighted.TagTypeWeights())
	scores, err := weighted.RecommendByProfile(Unweighted("male", "1st"))
	require.NoError(t, err)
	assert.Equal(t, []Score{{"A", 3}, {"C", 2}, {"B", 1}}, scores)

	_, err = r.SetTagTypeWeights(map[string]float64{"sex": -1})
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestFilterItems(t *testing.T) {
	r := passengers(t)
	filtered, err := r.FilterItems("C", "A", "Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, filtered.Items())
	assert.Equal(t, 2, filtered.Data().Len())
	assert.Equal(t, 3, r.Data().Len())
}

func TestDict(t *testing.T) {
	r := passengers(t)
	r, err := r.SetTagTypeWeights(map[string]float64{"class": 0.5})
	require.NoError(t, err)
	data, err := json.Marshal(r.ToDict())
	require.NoError(t, err)
	var d Dict
	require.NoError(t, json.Unmarshal(data, &d))
	restored, err := FromDict(&d)
	require.NoError(t, err)

	assert.Equal(t, r.TagTypes(), restored.TagTypes())
	assert.Equal(t, r.TagTypeWeights(), restored.TagTypeWeights())
	assert.Equal(t, r.ItemColumn(), restored.ItemColumn())
	assert.Equal(t, r.Data().ToDict(), restored.Data().ToDict())
	assert.True(t, r.Combined().Equal(restored.Combined()))
	for _, profile := range [][]string{{"male", "1st"}, {"female"}, {"3rd", "1st"}} {
		expected, err := r.RecommendByProfile(Unweighted(profile...))
		require.NoError(t, err)
		actual, err := restored.RecommendByProfile(Unweighted(profile...))
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err = FromDict(nil)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}
