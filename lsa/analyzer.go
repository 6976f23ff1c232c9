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

// Package lsa derives Word and Topic tag types from free text. Documents are
// turned into a weighted item by term matrix, which is factorized into item
// topic loadings with a truncated SVD or a non-negative matrix factorization.
// NMF starts from random factors, so its topics differ between fits.
package lsa

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/crosstab"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/gorse-io/smr/recommender"
	"github.com/gorse-io/smr/weight"
	"github.com/james-bowman/nlp"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	WordTagType  = "Word"
	TopicTagType = "Topic"
	WordPrefix   = WordTagType + recommender.DefaultTagValueSeparator
	TopicPrefix  = TopicTagType + recommender.DefaultTagValueSeparator

	// loadings below this magnitude are stored as zeros
	epsilon = 1e-12
)

type Method string

const (
	SVD Method = "svd"
	NMF Method = "nmf"
)

func ParseMethod(name string) (Method, error) {
	switch method := Method(strings.ToLower(name)); method {
	case "", SVD:
		return SVD, nil
	case NMF:
		return NMF, nil
	default:
		return "", base.InvalidArgumentf("factorization method %q", name)
	}
}

// Analyzer holds the parameters of a latent semantic analysis.
type Analyzer struct {
	NumTopics int
	Method    Method
	// MinTermFrequency drops terms occurring less often in the whole corpus.
	MinTermFrequency int
	// MaxIterations bounds NMF updates.
	MaxIterations int
	StopWords     []string
	Weights       weight.Functions
}

// NewAnalyzer creates an analyzer with IDF and cosine weighting.
func NewAnalyzer(numTopics int) *Analyzer {
	return &Analyzer{
		NumTopics:        numTopics,
		Method:           SVD,
		MinTermFrequency: 1,
		MaxIterations:    100,
		StopWords:        DefaultStopWords,
		Weights: weight.Functions{
			Global:     weight.IDF,
			Local:      weight.LocalNone,
			Normalizer: weight.Cosine,
		},
	}
}

// Model is a fitted analysis.
type Model struct {
	tokenizer  *Tokenizer
	terms      *matrix.Names
	word       *matrix.SparseMatrix
	topic      *matrix.SparseMatrix
	termTopics *mat.Dense
}

// Fit analyzes documents keyed by item.
func (a *Analyzer) Fit(documents map[string]string) (*Model, error) {
	if a.NumTopics <= 0 {
		return nil, base.InvalidArgumentf("%d topics", a.NumTopics)
	}
	method, err := ParseMethod(string(a.Method))
	if err != nil {
		return nil, errors.Trace(err)
	}
	tokenizer := NewTokenizer(a.StopWords)

	items := lo.Keys(documents)
	sort.Strings(items)
	var records [][]string
	for _, item := range items {
		for _, token := range tokenizer.Tokenize(documents[item]) {
			records = append(records, []string{item, token})
		}
	}
	if len(records) == 0 {
		return nil, base.InvalidArgumentf("documents have no terms")
	}
	table, err := dataset.NewTable([]string{"item", "term"}, records)
	if err != nil {
		return nil, errors.Trace(err)
	}
	counts, err := crosstab.CrossTabulate(table, "item", "term", crosstab.Options{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if counts, err = counts.ImposeRowNames(items); err != nil {
		return nil, errors.Trace(err)
	}
	var kept []int
	for j, sum := range counts.ColumnSums() {
		if sum >= float64(a.MinTermFrequency) {
			kept = append(kept, j)
		}
	}
	if len(kept) == 0 {
		return nil, base.InvalidArgumentf("no term occurs %d times", a.MinTermFrequency)
	}
	if counts, err = counts.Slice(matrix.All(), matrix.ByIndices(kept...)); err != nil {
		return nil, errors.Trace(err)
	}
	weighted, err := a.Weights.Apply(counts)
	if err != nil {
		return nil, errors.Trace(err)
	}

	rows, cols := weighted.Dims()
	k := min(a.NumTopics, rows, cols)
	var loadings, termTopics *mat.Dense
	switch method {
	case NMF:
		if loadings, termTopics, err = factorizeNMF(weighted, k, a.MaxIterations); err != nil {
			return nil, errors.Trace(err)
		}
	default:
		if loadings, termTopics, err = factorizeSVD(weighted, k); err != nil {
			return nil, errors.Trace(err)
		}
	}

	terms := counts.ColumnNames()
	word, err := weighted.WithColumnNames(lo.Map(terms, func(term string, _ int) string { return WordPrefix + term }))
	if err != nil {
		return nil, errors.Trace(err)
	}
	topicNames := lo.Times(k, func(i int) string { return TopicPrefix + strconv.Itoa(i) })
	topic, err := matrix.FromMatrix(loadings, items, topicNames)
	if err != nil {
		return nil, errors.Trace(err)
	}
	topic = topic.Map(func(_, _ int, v float64) float64 {
		return lo.Ternary(math.Abs(v) < epsilon, 0, v)
	})
	log.Logger().Debug("fit latent semantic analysis",
		zap.String("method", string(method)),
		zap.Int("documents", rows),
		zap.Int("terms", cols),
		zap.Int("topics", k))
	return &Model{
		tokenizer:  tokenizer,
		terms:      matrix.NewNames(terms),
		word:       word,
		topic:      topic,
		termTopics: termTopics,
	}, nil
}

// factorizeSVD returns S_k * V_k^T of the term by document matrix as document
// loadings and U_k as term loadings.
func factorizeSVD(documentTerms mat.Matrix, k int) (*mat.Dense, *mat.Dense, error) {
	svd := nlp.NewTruncatedSVD(k)
	reduced, err := svd.FitTransform(documentTerms.T())
	if err != nil {
		return nil, nil, errors.Annotate(err, "svd factorization failed")
	}
	return mat.DenseCopyOf(reduced.T()), mat.DenseCopyOf(svd.Components), nil
}

// factorizeNMF factorizes the term by document matrix into W * H and returns
// H^T as document loadings and W as term loadings.
func factorizeNMF(documentTerms mat.Matrix, k, iterations int) (*mat.Dense, *mat.Dense, error) {
	var negative error
	if doer, ok := documentTerms.(mat.NonZeroDoer); ok {
		doer.DoNonZero(func(i, j int, v float64) {
			if v < 0 && negative == nil {
				negative = base.InvalidArgumentf("negative weight at (%d, %d)", i, j)
			}
		})
	}
	if negative != nil {
		return nil, nil, negative
	}
	nmf := nlp.NewNMF(k)
	nmf.Iterations = iterations
	reduced, err := nmf.FitTransform(documentTerms.T())
	if err != nil {
		return nil, nil, errors.Annotate(err, "nmf factorization failed")
	}
	return mat.DenseCopyOf(reduced.T()), mat.DenseCopyOf(nmf.Components), nil
}

// WordMatrix returns weighted item term values with "Word:<term>" columns.
func (m *Model) WordMatrix() *matrix.SparseMatrix {
	return m.word
}

// TopicMatrix returns item topic loadings with "Topic:<k>" columns.
func (m *Model) TopicMatrix() *matrix.SparseMatrix {
	return m.topic
}

func (m *Model) Terms() []string {
	return m.terms.Slice()
}

func (m *Model) NumTopics() int {
	_, k := m.termTopics.Dims()
	return k
}

// Endow annexes the Word and Topic tag types to a recommender.
func (m *Model) Endow(r *recommender.Recommender) (*recommender.Recommender, error) {
	return r.AnnexSubMatrices(map[string]*matrix.SparseMatrix{
		WordTagType:  m.word,
		TopicTagType: m.topic,
	}, WordTagType, TopicTagType)
}

// termCounts counts known terms of a text.
func (m *Model) termCounts(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, token := range m.tokenizer.Tokenize(text) {
		if j, exist := m.terms.Index(token); exist {
			counts[j]++
		}
	}
	return counts
}

// Represent turns free text into a profile over Word tags. Unknown words are
// dropped.
func (m *Model) Represent(text string) map[string]float64 {
	profile := make(map[string]float64)
	for j, count := range m.termCounts(text) {
		profile[WordPrefix+m.terms.Name(j)] = count
	}
	return profile
}

// RepresentTopics projects free text onto topics and returns a profile over
// Topic tags.
func (m *Model) RepresentTopics(text string) map[string]float64 {
	profile := make(map[string]float64)
	counts := m.termCounts(text)
	for k := 0; k < m.NumTopics(); k++ {
		var loading float64
		for j, count := range counts {
			loading += count * m.termTopics.At(j, k)
		}
		if math.Abs(loading) >= epsilon {
			profile[TopicPrefix+strconv.Itoa(k)] = loading
		}
	}
	return profile
}
