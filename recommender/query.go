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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/common/heap"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Score of an item, a tag or a label.
type Score struct {
	Id    string
	Score float64
}

// TagScore is a tag of a profile along with its tag type.
type TagScore struct {
	Tag     string
	TagType string
	Score   float64
}

// QueryOptions control ranking and unknown name handling of queries.
type QueryOptions struct {
	// NRecs is the number of results. Non-positive means all.
	NRecs         int
	Normalize     bool
	IgnoreUnknown bool
	RemoveHistory bool
}

// QueryOption is used to change QueryOptions.
type QueryOption func(options *QueryOptions)

// NewQueryOptions creates QueryOptions from QueryOptions setters.
func NewQueryOptions(setters []QueryOption) *QueryOptions {
	options := &QueryOptions{RemoveHistory: true}
	for _, setter := range setters {
		setter(options)
	}
	return options
}

// WithNRecs sets the number of results.
func WithNRecs(n int) QueryOption {
	return func(options *QueryOptions) {
		options.NRecs = n
	}
}

// WithNormalize sets whether scores are normalized.
func WithNormalize(normalize bool) QueryOption {
	return func(options *QueryOptions) {
		options.Normalize = normalize
	}
}

// WithIgnoreUnknown sets whether unknown tags and items are skipped instead of
// failing the query.
func WithIgnoreUnknown(ignore bool) QueryOption {
	return func(options *QueryOptions) {
		options.IgnoreUnknown = ignore
	}
}

// WithRemoveHistory sets whether history items are excluded from recommendations.
func WithRemoveHistory(remove bool) QueryOption {
	return func(options *QueryOptions) {
		options.RemoveHistory = remove
	}
}

// Unweighted turns a list of tags or items into a profile with weights 1.
func Unweighted(names ...string) map[string]float64 {
	profile := make(map[string]float64, len(names))
	for _, name := range names {
		profile[name] = 1
	}
	return profile
}

// queryVector maps a profile onto combined columns. Columns of excluded tag
// types are skipped silently.
func (r *Recommender) queryVector(profile map[string]float64, options *QueryOptions, excluded string) ([]float64, error) {
	vector := make([]float64, r.combined.ColumnsCount())
	for _, tag := range sortedKeys(profile) {
		positions := r.lookup(tag)
		if len(positions) == 0 {
			if !options.IgnoreUnknown {
				return nil, base.UnknownTagf("tag %q", tag)
			}
			log.Logger().Warn("skip unknown tag", zap.String("tag", tag))
			continue
		}
		for _, p := range positions {
			if r.columns[p].tagType != excluded {
				vector[p] += profile[tag]
			}
		}
	}
	return vector, nil
}

// historyVector sums the weighted combined rows of history items.
func (r *Recommender) historyVector(history map[string]float64, options *QueryOptions) ([]float64, []int, error) {
	vector := make([]float64, r.combined.ColumnsCount())
	var rows []int
	for _, item := range sortedKeys(history) {
		i, exist := r.combined.RowIndex(item)
		if !exist {
			if !options.IgnoreUnknown {
				return nil, nil, base.UnknownNamef("item %q", item)
			}
			log.Logger().Warn("skip unknown item", zap.String("item", item))
			continue
		}
		rows = append(rows, i)
		w := history[item]
		r.combined.DoRowNonZero(i, func(_, j int, v float64) {
			vector[j] += w * v
		})
	}
	return vector, rows, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// top sorts positions with non-zero scores in descending order of scores. Ties
// keep position order.
func top(scores []float64, n int) []heap.Elem[int, float64] {
	filter := heap.NewTopKFilter[int, float64](n)
	for i, score := range scores {
		if score != 0 {
			filter.Push(i, score)
		}
	}
	return filter.PopAll()
}

func rank(scores []float64, name func(int) string, n int) []Score {
	return lo.Map(top(scores, n), func(e heap.Elem[int, float64], _ int) Score {
		return Score{Id: name(e.Value), Score: e.Weight}
	})
}

func normalizeL2(scores []float64) {
	if norm := floats.Norm(scores, 2); norm > 0 {
		floats.Scale(1/norm, scores)
	}
}

// RecommendByProfile scores every item by the dot product of its combined row
// and the profile. Items scoring 0 are left out.
func (r *Recommender) RecommendByProfile(profile map[string]float64, opts ...QueryOption) ([]Score, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	options := NewQueryOptions(opts)
	vector, err := r.queryVector(profile, options, "")
	if err != nil {
		return nil, errors.Trace(err)
	}
	scores, err := r.combined.DotVector(vector)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if options.Normalize {
		normalizeL2(scores)
	}
	return rank(scores, r.combined.RowName, options.NRecs), nil
}

// Recommend scores items by their similarity to the weighted history items.
func (r *Recommender) Recommend(history map[string]float64, opts ...QueryOption) ([]Score, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	options := NewQueryOptions(opts)
	vector, rows, err := r.historyVector(history, options)
	if err != nil {
		return nil, errors.Trace(err)
	}
	scores, err := r.combined.DotVector(vector)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if options.RemoveHistory {
		for _, i := range rows {
			scores[i] = 0
		}
	}
	if options.Normalize {
		normalizeL2(scores)
	}
	return rank(scores, r.combined.RowName, options.NRecs), nil
}

// Profile sums the weighted combined rows of history items into tag scores.
func (r *Recommender) Profile(history map[string]float64, opts ...QueryOption) ([]TagScore, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	options := NewQueryOptions(opts)
	vector, _, err := r.historyVector(history, options)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if options.Normalize {
		normalizeL2(vector)
	}
	return lo.Map(top(vector, options.NRecs), func(e heap.Elem[int, float64], _ int) TagScore {
		return TagScore{Tag: r.columns[e.Value].tag, TagType: r.columns[e.Value].tagType, Score: e.Weight}
	}), nil
}

// ClassifyByProfile votes for the tags of tagType with the nTopNN items
// nearest to the profile. Each neighbor adds its score to every label it
// carries. Profile tags of tagType itself are ignored.
func (r *Recommender) ClassifyByProfile(tagType string, profile map[string]float64, nTopNN int, opts ...QueryOption) ([]Score, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	labels, exist := r.matrices[tagType]
	if !exist {
		return nil, base.UnknownNamef("tag type %q", tagType)
	}
	if nTopNN <= 0 {
		return nil, base.InvalidArgumentf("%d nearest neighbors", nTopNN)
	}
	options := NewQueryOptions(opts)
	vector, err := r.queryVector(profile, options, tagType)
	if err != nil {
		return nil, errors.Trace(err)
	}
	scores, err := r.combined.DotVector(vector)
	if err != nil {
		return nil, errors.Trace(err)
	}
	tally := make([]float64, labels.ColumnsCount())
	for _, neighbor := range top(scores, nTopNN) {
		labels.DoRowNonZero(neighbor.Value, func(_, j int, _ float64) {
			tally[j] += neighbor.Weight
		})
	}
	if options.Normalize && len(tally) > 0 {
		if highest := floats.Max(tally); highest > 0 {
			floats.Scale(1/highest, tally)
		}
	}
	return rank(tally, labels.ColumnName, options.NRecs), nil
}

// RetrieveByQueryElements returns items having at least one should tag, all
// must tags and none of the must not tags. An empty should list matches every
// item.
func (r *Recommender) RetrieveByQueryElements(should, must, mustNot []string, opts ...QueryOption) (mapset.Set[string], error) {
	result := mapset.NewSet[string]()
	if r.IsEmpty() {
		return result, nil
	}
	options := NewQueryOptions(opts)
	incidence := r.combined.Transpose()
	tagged := func(tag string) (mapset.Set[string], bool, error) {
		positions := r.lookup(tag)
		if len(positions) == 0 {
			if !options.IgnoreUnknown {
				return nil, false, base.UnknownTagf("tag %q", tag)
			}
			log.Logger().Warn("skip unknown tag", zap.String("tag", tag))
			return nil, false, nil
		}
		items := mapset.NewSet[string]()
		for _, p := range positions {
			incidence.DoRowNonZero(p, func(_, i int, _ float64) {
				items.Add(r.combined.RowName(i))
			})
		}
		return items, true, nil
	}

	if len(should) == 0 {
		result.Append(r.Items()...)
	}
	for _, tag := range should {
		items, ok, err := tagged(tag)
		if err != nil {
			return nil, errors.Trace(err)
		} else if ok {
			result = result.Union(items)
		}
	}
	for _, tag := range must {
		items, ok, err := tagged(tag)
		if err != nil {
			return nil, errors.Trace(err)
		} else if ok {
			result = result.Intersect(items)
		}
	}
	for _, tag := range mustNot {
		items, ok, err := tagged(tag)
		if err != nil {
			return nil, errors.Trace(err)
		} else if ok {
			result = result.Difference(items)
		}
	}
	return result, nil
}
