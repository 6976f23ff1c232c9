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

// Package weight implements term weighting of sparse matrices. A weighting
// is a local function applied to every stored value, a global factor for
// every column and a row normalizer, applied in that order.
package weight

import (
	"math"
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/matrix"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

type GlobalWeight string

const (
	GlobalNone GlobalWeight = "none"
	// IDF is log(rows / nnz(column)).
	IDF GlobalWeight = "idf"
	// GFIDF is sum(column) / nnz(column).
	GFIDF GlobalWeight = "gfidf"
	// Normal is 1 / sqrt(sum(column^2)).
	Normal           GlobalWeight = "normal"
	GlobalBinary     GlobalWeight = "binary"
	ColumnStochastic GlobalWeight = "column_stochastic"
)

type LocalWeight string

const (
	LocalNone   LocalWeight = "none"
	LocalBinary LocalWeight = "binary"
	// Log is log(1 + value).
	Log   LocalWeight = "log"
	Log1p LocalWeight = "log1p"
)

type Normalizer string

const (
	NormalizerNone Normalizer = "none"
	// Cosine divides each row by its L2 norm.
	Cosine Normalizer = "cosine"
	// Sum divides each row by its L1 norm.
	Sum Normalizer = "sum"
	// Max divides each row by its largest absolute value.
	Max Normalizer = "max"
)

var (
	globalWeights = []GlobalWeight{GlobalNone, IDF, GFIDF, Normal, GlobalBinary, ColumnStochastic}
	localWeights  = []LocalWeight{LocalNone, LocalBinary, Log, Log1p}
	normalizers   = []Normalizer{NormalizerNone, Cosine, Sum, Max}
)

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "_")
	if name == "" {
		return "none"
	}
	return name
}

// ParseGlobal parses a global weight name. The empty string means none.
func ParseGlobal(name string) (GlobalWeight, error) {
	w := GlobalWeight(normalizeName(name))
	if !lo.Contains(globalWeights, w) {
		return "", base.InvalidArgumentf("global weight %q", name)
	}
	return w, nil
}

// ParseLocal parses a local weight name. The empty string means none.
func ParseLocal(name string) (LocalWeight, error) {
	w := LocalWeight(normalizeName(name))
	if !lo.Contains(localWeights, w) {
		return "", base.InvalidArgumentf("local weight %q", name)
	}
	return w, nil
}

// ParseNormalizer parses a normalizer name. The empty string means none.
func ParseNormalizer(name string) (Normalizer, error) {
	n := Normalizer(normalizeName(name))
	if !lo.Contains(normalizers, n) {
		return "", base.InvalidArgumentf("normalizer %q", name)
	}
	return n, nil
}

// Functions is a complete weighting scheme.
type Functions struct {
	Global     GlobalWeight
	Local      LocalWeight
	Normalizer Normalizer
}

// Parse builds a weighting scheme from names.
func Parse(global, local, normalizer string) (Functions, error) {
	var (
		f   Functions
		err error
	)
	if f.Global, err = ParseGlobal(global); err != nil {
		return Functions{}, errors.Trace(err)
	}
	if f.Local, err = ParseLocal(local); err != nil {
		return Functions{}, errors.Trace(err)
	}
	if f.Normalizer, err = ParseNormalizer(normalizer); err != nil {
		return Functions{}, errors.Trace(err)
	}
	return f, nil
}

// Apply weights m with f. See the package level Apply.
func (f Functions) Apply(m *matrix.SparseMatrix) (*matrix.SparseMatrix, error) {
	return Apply(m, f.Global, f.Local, f.Normalizer)
}

// IsIdentity returns true if applying f leaves every matrix unchanged.
func (f Functions) IsIdentity() bool {
	return normalizeName(string(f.Global)) == string(GlobalNone) &&
		normalizeName(string(f.Local)) == string(LocalNone) &&
		normalizeName(string(f.Normalizer)) == string(NormalizerNone)
}

// Apply returns a weighted copy of m. Local weights come first, global weights
// are computed from the locally weighted copy and rows are normalized last.
// Zero rows and columns are never scaled.
func Apply(m *matrix.SparseMatrix, global GlobalWeight, local LocalWeight, normalizer Normalizer) (*matrix.SparseMatrix, error) {
	global, err := ParseGlobal(string(global))
	if err != nil {
		return nil, errors.Trace(err)
	}
	local, err = ParseLocal(string(local))
	if err != nil {
		return nil, errors.Trace(err)
	}
	normalizer, err = ParseNormalizer(string(normalizer))
	if err != nil {
		return nil, errors.Trace(err)
	}

	result := applyLocal(m, local)
	if global != GlobalNone {
		if result, err = result.ScaleColumns(columnFactors(result, global)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if normalizer != NormalizerNone {
		if result, err = result.ScaleRows(rowFactors(result, normalizer)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

func applyLocal(m *matrix.SparseMatrix, local LocalWeight) *matrix.SparseMatrix {
	switch local {
	case LocalBinary:
		return m.Unitize()
	case Log, Log1p:
		return m.Map(func(_, _ int, v float64) float64 { return math.Log1p(v) })
	default:
		return m.Clone()
	}
}

func columnFactors(m *matrix.SparseMatrix, global GlobalWeight) []float64 {
	rows, cols := m.Dims()
	nnz := make([]float64, cols)
	sums := make([]float64, cols)
	squares := make([]float64, cols)
	m.DoNonZero(func(_, j int, v float64) {
		nnz[j]++
		sums[j] += v
		squares[j] += v * v
	})
	weights := make([]float64, cols)
	for j := range weights {
		weights[j] = 1
		if nnz[j] == 0 {
			continue
		}
		switch global {
		case IDF:
			weights[j] = math.Log(float64(rows) / nnz[j])
		case GFIDF:
			weights[j] = sums[j] / nnz[j]
		case Normal:
			if squares[j] > 0 {
				weights[j] = 1 / math.Sqrt(squares[j])
			}
		case ColumnStochastic:
			if sums[j] != 0 {
				weights[j] = 1 / sums[j]
			}
		}
	}
	return weights
}

func rowFactors(m *matrix.SparseMatrix, normalizer Normalizer) []float64 {
	rows, _ := m.Dims()
	norms := make([]float64, rows)
	m.DoNonZero(func(i, _ int, v float64) {
		switch normalizer {
		case Cosine:
			norms[i] += v * v
		case Sum:
			norms[i] += math.Abs(v)
		case Max:
			norms[i] = math.Max(norms[i], math.Abs(v))
		}
	})
	return lo.Map(norms, func(norm float64, _ int) float64 {
		if normalizer == Cosine {
			norm = math.Sqrt(norm)
		}
		if norm == 0 {
			return 1
		}
		return 1 / norm
	})
}
