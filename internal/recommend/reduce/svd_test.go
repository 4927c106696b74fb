// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package reduce

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// dense adapts a *mat.Dense to Sparse for tests.
type dense struct{ *mat.Dense }

func (d dense) MulDense(x *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(d.Dense, x)
	return &out
}

func (d dense) TMulDense(x *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(d.Dense.T(), x)
	return &out
}

func (d dense) ColumnVariances() []float64 {
	r, c := d.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		var sum, sumSq float64
		for i := 0; i < r; i++ {
			v := d.At(i, j)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(r)
		out[j] = sumSq/float64(r) - mean*mean
	}
	return out
}

func randomMatrix(r, c int, seed uint64) dense {
	rng := rand.New(rand.NewPCG(seed, seed))
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rng.Float64() < 0.3 {
				m.Set(i, j, rng.Float64())
			}
		}
	}
	return dense{m}
}

func TestTruncatedSVDMatchesExactSingularValues(t *testing.T) {
	t.Parallel()

	a := randomMatrix(40, 25, 7)
	res, err := TruncatedSVD(a, Options{Rank: 5, Seed: 42})
	if err != nil {
		t.Fatalf("TruncatedSVD() error = %v", err)
	}

	var svd mat.SVD
	if !svd.Factorize(a.Dense, mat.SVDNone) {
		t.Fatal("reference SVD failed")
	}
	exact := svd.Values(nil)

	for i := 0; i < 5; i++ {
		if math.Abs(res.SingularValues[i]-exact[i]) > 1e-2*exact[i] {
			t.Errorf("sigma[%d] = %v, want %v", i, res.SingularValues[i], exact[i])
		}
	}

	r, c := res.Embedding.Dims()
	if r != 40 || c != 5 {
		t.Errorf("embedding dims = %d×%d, want 40×5", r, c)
	}
	if res.ExplainedVarianceRatio <= 0 || res.ExplainedVarianceRatio > 1+1e-9 {
		t.Errorf("explained variance ratio = %v, want in (0, 1]", res.ExplainedVarianceRatio)
	}
}

func TestTruncatedSVDFullRankPreservesRowGeometry(t *testing.T) {
	t.Parallel()

	a := randomMatrix(12, 8, 3)
	res, err := TruncatedSVD(a, Options{Rank: 100, Seed: 1})
	if err != nil {
		t.Fatalf("TruncatedSVD() error = %v", err)
	}
	if res.Components != 8 {
		t.Fatalf("components = %d, want 8 (clamped to column count)", res.Components)
	}

	// At full rank U·Σ·Vᵀ = A, so row inner products are preserved.
	var want, got mat.Dense
	want.Mul(a.Dense, a.Dense.T())
	got.Mul(res.Embedding, res.Embedding.T())
	if !mat.EqualApprox(&want, &got, 1e-8) {
		t.Error("embedding Gram matrix differs from input Gram matrix")
	}
}

func TestTruncatedSVDDeterministic(t *testing.T) {
	t.Parallel()

	a := randomMatrix(30, 20, 11)
	first, err := TruncatedSVD(a, Options{Rank: 4, Seed: 42})
	if err != nil {
		t.Fatalf("TruncatedSVD() error = %v", err)
	}
	second, err := TruncatedSVD(a, Options{Rank: 4, Seed: 42})
	if err != nil {
		t.Fatalf("TruncatedSVD() error = %v", err)
	}
	if !mat.Equal(first.Embedding, second.Embedding) {
		t.Error("identical input and seed produced different embeddings")
	}
}

func TestTruncatedSVDEmpty(t *testing.T) {
	t.Parallel()

	_, err := TruncatedSVD(dense{&mat.Dense{}}, Options{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("TruncatedSVD(empty) error = %v, want ErrEmptyInput", err)
	}
}
