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

package lsa

import (
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/matrix"
	"github.com/gorse-io/smr/recommender"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var documents = map[string]string{
	"A": "Space rockets and rocket launches",
	"B": "Rockets orbit space stations",
	"C": "Cooking pasta with tomato sauce",
	"D": "Tomato pasta recipes, fresh pasta",
}

func TestTokenize(t *testing.T) {
	tokenizer := NewTokenizer(DefaultStopWords)
	assert.Equal(t, []string{"tomato", "pasta", "recipes", "fresh", "pasta"}, tokenizer.Tokenize(documents["D"]))
	assert.Equal(t, []string{"über", "straße", "42"}, tokenizer.Tokenize("Über-Straße, a 42 x"))
	assert.Empty(t, tokenizer.Tokenize("the, of, and"))
}

func TestParseMethod(t *testing.T) {
	method, err := ParseMethod("NMF")
	assert.NoError(t, err)
	assert.Equal(t, NMF, method)
	method, err = ParseMethod("")
	assert.NoError(t, err)
	assert.Equal(t, SVD, method)
	_, err = ParseMethod("lda")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestFitSVD(t *testing.T) {
	model, err := NewAnalyzer(4).Fit(documents)
	require.NoError(t, err)
	assert.Equal(t, 4, model.NumTopics())
	word := model.WordMatrix()
	assert.Equal(t, []string{"A", "B", "C", "D"}, word.RowNames())
	assert.True(t, lo.EveryBy(word.ColumnNames(), func(name string) bool {
		return strings.HasPrefix(name, WordPrefix)
	}))
	assert.Contains(t, model.Terms(), "pasta")
	topic := model.TopicMatrix()
	assert.Equal(t, []string{"Topic:0", "Topic:1", "Topic:2", "Topic:3"}, topic.ColumnNames())

	// a full rank factorization reconstructs the weighted matrix
	var reconstructed mat.Dense
	reconstructed.Mul(topic, model.termTopics.T())
	assert.True(t, mat.EqualApprox(&reconstructed, mat.DenseCopyOf(word), 1e-9))
}

func TestFitNMF(t *testing.T) {
	analyzer := NewAnalyzer(2)
	analyzer.Method = NMF
	model, err := analyzer.Fit(documents)
	require.NoError(t, err)
	assert.Equal(t, 2, model.NumTopics())
	topic := model.TopicMatrix()
	rows, cols := topic.Dims()
	assert.Equal(t, []int{4, 2}, []int{rows, cols})
	assert.Equal(t, []string{"Topic:0", "Topic:1"}, topic.ColumnNames())
	topic.DoNonZero(func(_, _ int, v float64) {
		assert.Greater(t, v, 0.0)
	})
	terms, k := model.termTopics.Dims()
	assert.Equal(t, []int{len(model.Terms()), 2}, []int{terms, k})
	for j := 0; j < terms; j++ {
		for i := 0; i < k; i++ {
			assert.GreaterOrEqual(t, model.termTopics.At(j, i), 0.0)
		}
	}
}

func TestFitNMFNegativeWeights(t *testing.T) {
	weighted, err := matrix.FromDense([][]float64{{1, -1}, {0, 2}}, nil, nil)
	require.NoError(t, err)
	_, _, err = factorizeNMF(weighted, 1, 10)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestFitErrors(t *testing.T) {
	_, err := NewAnalyzer(0).Fit(documents)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
	_, err = NewAnalyzer(2).Fit(map[string]string{"A": "the of and"})
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
	analyzer := NewAnalyzer(2)
	analyzer.MinTermFrequency = 100
	_, err = analyzer.Fit(documents)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
	analyzer = NewAnalyzer(2)
	analyzer.Method = "lda"
	_, err = analyzer.Fit(documents)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestMinTermFrequency(t *testing.T) {
	analyzer := NewAnalyzer(2)
	analyzer.MinTermFrequency = 2
	model, err := analyzer.Fit(documents)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"space", "rockets", "pasta", "tomato"}, model.Terms())
}

func TestRepresent(t *testing.T) {
	model, err := NewAnalyzer(2).Fit(documents)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Word:space": 1, "Word:pasta": 2}, model.Represent("space pasta, pasta and quantum"))
	topics := model.RepresentTopics("space pasta")
	assert.NotEmpty(t, topics)
	for tag := range topics {
		assert.True(t, strings.HasPrefix(tag, TopicPrefix))
	}
	assert.Empty(t, model.RepresentTopics("quantum"))
}

func TestEndow(t *testing.T) {
	genre, err := matrix.FromDense([][]float64{{1, 0}, {1, 0}, {0, 1}, {0, 1}},
		[]string{"A", "B", "C", "D"}, []string{"science", "food"})
	require.NoError(t, err)
	r, err := recommender.NewFromMatrices(map[string]*matrix.SparseMatrix{"genre": genre})
	require.NoError(t, err)
	model, err := NewAnalyzer(2).Fit(documents)
	require.NoError(t, err)
	endowed, err := model.Endow(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"genre", WordTagType, TopicTagType}, endowed.TagTypes())

	scores, err := endowed.RecommendByProfile(model.Represent("space orbit"))
	require.NoError(t, err)
	found := mapset.NewSet(lo.Map(scores, func(s recommender.Score, _ int) string { return s.Id })...)
	assert.True(t, mapset.NewSet("A", "B").Equal(found))
	assert.Equal(t, "B", scores[0].Id)

	_, err = model.Endow(endowed)
	assert.ErrorIs(t, err, base.ErrIncompatibleRecommenders)
}
