package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DCT is the orthonormal two-dimensional DCT-II over n×n blocks, computed as
// B·X·Bᵀ with the 1-D basis matrix B.
type DCT struct {
	n     int
	basis *mat.Dense
}

func NewDCT(n int) *DCT {
	nf := float64(n)
	phi := make([]float64, n*n)
	for j := range n {
		// i = 0
		phi[j] = 1.0 / math.Sqrt(nf)
	}
	for i := 1; i < n; i++ {
		for j := range n {
			phi[i*n+j] = math.Sqrt(2.0/nf) *
				math.Cos(
					(float64(i)*math.Pi*(float64(j)*2+1))/
						(2.0*nf),
				)
		}
	}
	return &DCT{n: n, basis: mat.NewDense(n, n, phi)}
}

func (d *DCT) Size() int {
	return d.n
}

// Forward transforms a row-major n×n block of samples into coefficients.
func (d *DCT) Forward(block []float64) []float64 {
	x := mat.NewDense(d.n, d.n, block)
	var out mat.Dense
	out.Product(d.basis, x, d.basis.T())
	return denseData(&out, d.n)
}

// Inverse transforms a row-major n×n block of coefficients back into samples.
func (d *DCT) Inverse(coeffs []float64) []float64 {
	c := mat.NewDense(d.n, d.n, coeffs)
	var out mat.Dense
	out.Product(d.basis.T(), c, d.basis)
	return denseData(&out, d.n)
}

func denseData(m *mat.Dense, n int) []float64 {
	data := make([]float64, n*n)
	for i := range n {
		for j := range n {
			data[i*n+j] = m.At(i, j)
		}
	}
	return data
}
