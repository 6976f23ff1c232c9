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

package weight

import (
	"math"
	"testing"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatrix(t *testing.T) *matrix.SparseMatrix {
	m, err := matrix.FromDense([][]float64{
		{1, 0, 3},
		{0, 0, 0},
		{2, 0, 4},
		{0, 0, 1},
	}, []string{"a", "b", "c", "d"}, []string{"x", "y", "z"})
	require.NoError(t, err)
	return m
}

func TestParse(t *testing.T) {
	g, err := ParseGlobal("IDF")
	assert.NoError(t, err)
	assert.Equal(t, IDF, g)
	g, err = ParseGlobal("")
	assert.NoError(t, err)
	assert.Equal(t, GlobalNone, g)
	g, err = ParseGlobal("Column-Stochastic")
	assert.NoError(t, err)
	assert.Equal(t, ColumnStochastic, g)
	_, err = ParseGlobal("entropy")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)

	l, err := ParseLocal("Log")
	assert.NoError(t, err)
	assert.Equal(t, Log, l)
	_, err = ParseLocal("sqrt")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)

	n, err := ParseNormalizer("Cosine")
	assert.NoError(t, err)
	assert.Equal(t, Cosine, n)
	_, err = ParseNormalizer("l3")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)

	f, err := Parse("idf", "none", "cosine")
	assert.NoError(t, err)
	assert.Equal(t, Functions{Global: IDF, Local: LocalNone, Normalizer: Cosine}, f)
	assert.False(t, f.IsIdentity())
	assert.True(t, Functions{}.IsIdentity())
	_, err = Parse("idf", "none", "l3")
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}

func TestApplyIdentity(t *testing.T) {
	m := newMatrix(t)
	w, err := Apply(m, GlobalNone, LocalNone, NormalizerNone)
	require.NoError(t, err)
	assert.True(t, m.Equal(w))
	w, err = Functions{}.Apply(m)
	require.NoError(t, err)
	assert.True(t, m.Equal(w))
}

func TestApplyLocal(t *testing.T) {
	m := newMatrix(t)
	w, err := Apply(m, GlobalNone, LocalBinary, NormalizerNone)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 1}, {0, 0, 0}, {1, 0, 1}, {0, 0, 1}}, w.ToDense())

	w, err = Apply(m, GlobalNone, Log, NormalizerNone)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(4), w.At(0, 2), 1e-12)
	assert.InDelta(t, math.Log(2), w.At(0, 0), 1e-12)
	assert.Equal(t, m.NNZ(), w.NNZ())
}

func TestApplyGlobal(t *testing.T) {
	m := newMatrix(t)
	w, err := Apply(m, IDF, LocalNone, NormalizerNone)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), w.At(0, 0), 1e-12)
	assert.InDelta(t, 4*math.Log(4.0/3), w.At(2, 2), 1e-12)
	assert.Equal(t, 0.0, w.At(1, 1))

	w, err = Apply(m, GFIDF, LocalNone, NormalizerNone)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, w.At(0, 0), 1e-12)
	assert.InDelta(t, 8.0/3*4, w.At(2, 2), 1e-12)

	w, err = Apply(m, Normal, LocalNone, NormalizerNone)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt(5), w.At(0, 0), 1e-12)
	assert.InDelta(t, 3/math.Sqrt(26), w.At(0, 2), 1e-12)

	w, err = Apply(m, ColumnStochastic, LocalNone, NormalizerNone)
	require.NoError(t, err)
	sums := w.ColumnSums()
	assert.InDelta(t, 1, sums[0], 1e-12)
	assert.Equal(t, 0.0, sums[1])
	assert.InDelta(t, 1, sums[2], 1e-12)

	w, err = Apply(m, GlobalBinary, LocalNone, NormalizerNone)
	require.NoError(t, err)
	assert.True(t, m.Equal(w))
}

func TestApplyGlobalAfterLocal(t *testing.T) {
	m := newMatrix(t)
	w, err := Apply(m, GFIDF, Log, NormalizerNone)
	require.NoError(t, err)
	factor := (math.Log(2) + math.Log(3)) / 2
	assert.InDelta(t, math.Log(2)*factor, w.At(0, 0), 1e-12)
	assert.InDelta(t, math.Log(3)*factor, w.At(2, 0), 1e-12)

	w, err = Apply(m, ColumnStochastic, LocalBinary, NormalizerNone)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, w.At(0, 2), 1e-12)
	assert.InDelta(t, 0.5, w.At(2, 0), 1e-12)
	sums := w.ColumnSums()
	assert.InDelta(t, 1, sums[0], 1e-12)
	assert.InDelta(t, 1, sums[2], 1e-12)
}

func TestApplyNormalizer(t *testing.T) {
	m := newMatrix(t)
	w, err := Apply(m, IDF, Log, Cosine)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		var norm float64
		w.DoRowNonZero(i, func(_, _ int, v float64) {
			norm += v * v
		})
		if w.RowNNZ(i) > 0 {
			assert.InDelta(t, 1, math.Sqrt(norm), 1e-9)
		}
	}
	assert.Zero(t, w.RowNNZ(1))

	w, err = Apply(m, GlobalNone, LocalNone, Sum)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0, 1, 1}, w.RowSums(), 1e-12)

	w, err = Apply(m, GlobalNone, LocalNone, Max)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, w.At(0, 0), 1e-12)
	assert.InDelta(t, 1, w.At(2, 2), 1e-12)
}

func TestApplyInvalid(t *testing.T) {
	_, err := Apply(newMatrix(t), "tfidf", LocalNone, NormalizerNone)
	assert.ErrorIs(t, err, base.ErrInvalidArgument)
}
