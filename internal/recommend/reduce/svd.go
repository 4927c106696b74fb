// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package reduce

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Defaults.
const (
	DefaultRank            = 2000
	DefaultSeed            = 42
	DefaultOversample      = 10
	DefaultPowerIterations = 5
)

// ErrEmptyInput is returned for a matrix with no rows or no columns.
var ErrEmptyInput = errors.New("cannot reduce an empty matrix")

// Sparse is the input the reducer needs: products with dense blocks and
// per-column variances. *features.CSR satisfies it.
type Sparse interface {
	Dims() (r, c int)
	MulDense(x *mat.Dense) *mat.Dense
	TMulDense(x *mat.Dense) *mat.Dense
	ColumnVariances() []float64
}

// Options configures TruncatedSVD. Zero values select the defaults, except
// PowerIterations where a negative value means none.
type Options struct {
	Rank            int
	Seed            int64
	Oversample      int
	PowerIterations int
}

func (o Options) withDefaults() Options {
	if o.Rank <= 0 {
		o.Rank = DefaultRank
	}
	if o.Oversample <= 0 {
		o.Oversample = DefaultOversample
	}
	if o.PowerIterations == 0 {
		o.PowerIterations = DefaultPowerIterations
	}
	if o.PowerIterations < 0 {
		o.PowerIterations = 0
	}
	return o
}

// Result is the projected matrix.
type Result struct {
	// Embedding is rows × Components, the input projected onto the leading
	// right singular vectors (U·Σ).
	Embedding *mat.Dense

	// Components is the rank actually used: min(Rank, rows, cols).
	Components int

	// SingularValues in descending order.
	SingularValues []float64

	// ExplainedVarianceRatio is the share of total column variance retained.
	ExplainedVarianceRatio float64
}

// TruncatedSVD computes a randomized low-rank approximation of a.
//
// The range of a is sampled with a Gaussian test matrix drawn from a
// generator seeded with opts.Seed, refined with power iterations, and the
// small projected problem is solved through the eigendecomposition of its
// Gram matrix. Identical input and options give identical output.
func TruncatedSVD(a Sparse, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyInput
	}

	k := min(opts.Rank, rows, cols)
	l := min(k+opts.Oversample, rows, cols)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0x6d61727175656521)) //nolint:gosec // deterministic projection, not crypto
	omega := mat.NewDense(cols, l, nil)
	raw := omega.RawMatrix().Data
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}

	q, err := orthonormalize(a.MulDense(omega))
	if err != nil {
		return nil, err
	}
	for i := 0; i < opts.PowerIterations; i++ {
		z, err := orthonormalize(a.TMulDense(q))
		if err != nil {
			return nil, err
		}
		if q, err = orthonormalize(a.MulDense(z)); err != nil {
			return nil, err
		}
	}

	// B = Qᵀ·A is l × cols; its Gram matrix B·Bᵀ = Cᵀ·C with C = Aᵀ·Q.
	c := a.TMulDense(q)
	var gram mat.SymDense
	gram.SymOuterK(1, c.T())

	var eig mat.EigenSym
	if ok := eig.Factorize(&gram, true); !ok {
		return nil, fmt.Errorf("eigendecomposition of %d×%d gram matrix did not converge", l, l)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues are ascending; take the top k in descending order.
	sigma := make([]float64, k)
	ub := mat.NewDense(l, k, nil)
	for j := 0; j < k; j++ {
		src := l - 1 - j
		sigma[j] = math.Sqrt(math.Max(values[src], 0))
		col := mat.Col(nil, src, &vectors)
		flipSign(col)
		ub.SetCol(j, col)
	}

	embedding := mat.NewDense(rows, k, nil)
	embedding.Mul(q, ub)
	for j, s := range sigma {
		for i := 0; i < rows; i++ {
			embedding.Set(i, j, embedding.At(i, j)*s)
		}
	}

	return &Result{
		Embedding:              embedding,
		Components:             k,
		SingularValues:         sigma,
		ExplainedVarianceRatio: explainedVarianceRatio(embedding, a.ColumnVariances()),
	}, nil
}

// orthonormalize returns a matrix with orthonormal columns spanning the
// columns of y, which must have at least as many rows as columns.
func orthonormalize(y *mat.Dense) (*mat.Dense, error) {
	r, c := y.Dims()
	if r < c {
		return nil, fmt.Errorf("cannot orthonormalize %d×%d matrix", r, c)
	}

	g := y.RawMatrix()
	tau := make([]float64, c)

	work := make([]float64, 1)
	lapack64.Geqrf(g, tau, work, -1)
	work = make([]float64, max(int(work[0]), c, 1))
	lapack64.Geqrf(g, tau, work, len(work))

	work = work[:1]
	lapack64.Orgqr(g, tau, work, -1)
	work = make([]float64, max(int(work[0]), c, 1))
	lapack64.Orgqr(g, tau, work, len(work))

	return y, nil
}

// flipSign makes the largest-magnitude entry of v positive.
func flipSign(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if len(v) > 0 && v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

func explainedVarianceRatio(embedding *mat.Dense, colVariances []float64) float64 {
	var total float64
	for _, v := range colVariances {
		total += v
	}
	if total == 0 {
		return 0
	}

	rows, k := embedding.Dims()
	var explained float64
	for j := 0; j < k; j++ {
		var sum, sumSq float64
		for i := 0; i < rows; i++ {
			v := embedding.At(i, j)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(rows)
		explained += sumSq/float64(rows) - mean*mean
	}
	return explained / total
}
