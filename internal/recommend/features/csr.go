// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CSR is a compressed sparse row matrix. Row i stores its column indices in
// Indices[Indptr[i]:Indptr[i+1]], ascending, with values in the same range of
// Data. Explicit zeros are never stored.
//
// CSR implements mat.Matrix so it can be handed to gonum code that only needs
// element access; bulk products should use MulDense and TMulDense.
type CSR struct {
	rows, cols int
	Indptr     []int
	Indices    []int
	Data       []float64
}

var _ mat.Matrix = (*CSR)(nil)

// Dims returns the matrix dimensions.
func (m *CSR) Dims() (r, c int) { return m.rows, m.cols }

// At returns the element at (i, j).
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	k := lo + sort.SearchInts(m.Indices[lo:hi], j)
	if k < hi && m.Indices[k] == j {
		return m.Data[k]
	}
	return 0
}

// T returns the implicit transpose.
func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.Data) }

// Row returns the stored column indices and values of row i. The slices alias
// the matrix and must not be modified.
func (m *CSR) Row(i int) ([]int, []float64) {
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

// MulDense returns m·x for a dense x with m.cols rows.
func (m *CSR) MulDense(x *mat.Dense) *mat.Dense {
	xr, xc := x.Dims()
	if xr != m.cols {
		panic(mat.ErrShape)
	}
	out := mat.NewDense(m.rows, xc, nil)
	for i := 0; i < m.rows; i++ {
		dst := out.RawRowView(i)
		idx, val := m.Row(i)
		for k, j := range idx {
			v := val[k]
			src := x.RawRowView(j)
			for c := range dst {
				dst[c] += v * src[c]
			}
		}
	}
	return out
}

// TMulDense returns mᵀ·x for a dense x with m.rows rows.
func (m *CSR) TMulDense(x *mat.Dense) *mat.Dense {
	xr, xc := x.Dims()
	if xr != m.rows {
		panic(mat.ErrShape)
	}
	out := mat.NewDense(m.cols, xc, nil)
	for i := 0; i < m.rows; i++ {
		src := x.RawRowView(i)
		idx, val := m.Row(i)
		for k, j := range idx {
			v := val[k]
			dst := out.RawRowView(j)
			for c := range dst {
				dst[c] += v * src[c]
			}
		}
	}
	return out
}

// ColumnVariances returns the population variance of every column.
func (m *CSR) ColumnVariances() []float64 {
	sum := make([]float64, m.cols)
	sumSq := make([]float64, m.cols)
	for k, j := range m.Indices {
		v := m.Data[k]
		sum[j] += v
		sumSq[j] += v * v
	}
	n := float64(m.rows)
	out := make([]float64, m.cols)
	if m.rows == 0 {
		return out
	}
	for j := range out {
		mean := sum[j] / n
		v := sumSq[j]/n - mean*mean
		if v < 0 {
			v = 0
		}
		out[j] = v
	}
	return out
}

// csrBuilder appends rows in order.
type csrBuilder struct {
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

func newCSRBuilder(cols, rowsHint int) *csrBuilder {
	b := &csrBuilder{cols: cols, indptr: make([]int, 1, rowsHint+1)}
	return b
}

// addRow appends one row. idx must be ascending; zero values are dropped.
func (b *csrBuilder) addRow(idx []int, val []float64) {
	for k, j := range idx {
		if val[k] == 0 {
			continue
		}
		b.indices = append(b.indices, j)
		b.data = append(b.data, val[k])
	}
	b.indptr = append(b.indptr, len(b.indices))
}

func (b *csrBuilder) build() *CSR {
	return &CSR{
		rows:    len(b.indptr) - 1,
		cols:    b.cols,
		Indptr:  b.indptr,
		Indices: b.indices,
		Data:    b.data,
	}
}

// HStack concatenates matrices with equal row counts left to right.
func HStack(blocks ...*CSR) (*CSR, error) {
	if len(blocks) == 0 {
		return &CSR{Indptr: []int{0}}, nil
	}
	rows := blocks[0].rows
	cols, nnz := 0, 0
	for i, b := range blocks {
		if b.rows != rows {
			return nil, fmt.Errorf("block %d has %d rows, want %d", i, b.rows, rows)
		}
		cols += b.cols
		nnz += b.NNZ()
	}

	out := &CSR{
		rows:    rows,
		cols:    cols,
		Indptr:  make([]int, 1, rows+1),
		Indices: make([]int, 0, nnz),
		Data:    make([]float64, 0, nnz),
	}
	for i := 0; i < rows; i++ {
		offset := 0
		for _, b := range blocks {
			idx, val := b.Row(i)
			for k, j := range idx {
				out.Indices = append(out.Indices, j+offset)
				out.Data = append(out.Data, val[k])
			}
			offset += b.cols
		}
		out.Indptr = append(out.Indptr, len(out.Indices))
	}
	return out, nil
}
