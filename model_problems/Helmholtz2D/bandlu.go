package Helmholtz2D

import (
	"fmt"
	"math"

	"github.com/notargets/wallopt/utils"
)

/*
	BandLU is an LU factorization with partial pivoting of a banded matrix with kl
	sub-diagonals and ku super-diagonals. Row interchanges fill in at most kl extra
	super-diagonals, so row i stores columns [i-kl, i+kl+ku] in a slot of width
	2*kl+ku+1. Multipliers stay in the rows where they were computed and the pivots
	are applied interleaved with the forward elimination, as in LAPACK's gbtrf/gbtrs.
*/
type BandLU struct {
	n, kl, ku int
	width     int
	ab        []float64
	piv       []int
}

func (lu *BandLU) at(i, j int) float64     { return lu.ab[i*lu.width+j-i+lu.kl] }
func (lu *BandLU) set(i, j int, v float64) { lu.ab[i*lu.width+j-i+lu.kl] = v }

func NewBandLU(A utils.CSR) (lu *BandLU, err error) {
	var (
		n, nc  = A.Dims()
		kl, ku = A.Bandwidth()
	)
	if n != nc {
		err = fmt.Errorf("%w: band factorization of a non square %dx%d matrix", ErrInvalidProblem, n, nc)
		return
	}
	lu = &BandLU{
		n:     n,
		kl:    kl,
		ku:    ku,
		width: 2*kl + ku + 1,
		piv:   make([]int, n),
	}
	lu.ab = make([]float64, n*lu.width)
	A.Each(func(i, j int, val float64) {
		lu.set(i, j, lu.at(i, j)+val)
	})
	err = lu.factor()
	return
}

func (lu *BandLU) factor() (err error) {
	var (
		n, kl, ku = lu.n, lu.kl, lu.ku
	)
	for k := 0; k < n; k++ {
		var (
			rLast = min(n-1, k+kl)
			cLast = min(n-1, k+kl+ku)
			p     = k
			pMax  = math.Abs(lu.at(k, k))
		)
		for r := k + 1; r <= rLast; r++ {
			if v := math.Abs(lu.at(r, k)); v > pMax {
				p, pMax = r, v
			}
		}
		if pMax == 0 || math.IsNaN(pMax) {
			return fmt.Errorf("%w: zero pivot in column %d", ErrSingular, k)
		}
		lu.piv[k] = p
		if p != k {
			for c := k; c <= cLast; c++ {
				vk, vp := lu.at(k, c), lu.at(p, c)
				lu.set(k, c, vp)
				lu.set(p, c, vk)
			}
		}
		pivot := lu.at(k, k)
		for r := k + 1; r <= rLast; r++ {
			m := lu.at(r, k) / pivot
			lu.set(r, k, m)
			if m == 0 {
				continue
			}
			for c := k + 1; c <= cLast; c++ {
				lu.set(r, c, lu.at(r, c)-m*lu.at(k, c))
			}
		}
	}
	return
}

// Solve returns x with A x = b, b is not modified
func (lu *BandLU) Solve(b []float64) (x []float64) {
	var (
		n, kl, ku = lu.n, lu.kl, lu.ku
	)
	x = make([]float64, n)
	copy(x, b)
	for k := 0; k < n; k++ {
		if p := lu.piv[k]; p != k {
			x[k], x[p] = x[p], x[k]
		}
		for r := k + 1; r <= min(n-1, k+kl); r++ {
			x[r] -= lu.at(r, k) * x[k]
		}
	}
	for k := n - 1; k >= 0; k-- {
		sum := x[k]
		for c := k + 1; c <= min(n-1, k+kl+ku); c++ {
			sum -= lu.at(k, c) * x[c]
		}
		x[k] = sum / lu.at(k, k)
	}
	return
}

func (lu *BandLU) Dims() (n, kl, ku int) { return lu.n, lu.kl, lu.ku }
