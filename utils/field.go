package utils

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
)

/*
	Grid fields are stored as gonum matrices with one entry per grid node, row i
	and column j matching the node map. All fields here are created with stride
	equal to the number of columns, so the raw data is a contiguous row-major slice
	and can be handed to the floats package directly.
*/

func NewField(Nr, Nc int, val float64) (F *mat.Dense) {
	F = mat.NewDense(Nr, Nc, nil)
	if val != 0 {
		data := F.RawMatrix().Data
		for i := range data {
			data[i] = val
		}
	}
	return
}

func NewCField(Nr, Nc int) *mat.CDense {
	return mat.NewCDense(Nr, Nc, nil)
}

func FieldData(F *mat.Dense) []float64 {
	return F.RawMatrix().Data
}

func CFieldData(F *mat.CDense) []complex128 {
	return F.RawCMatrix().Data
}

func CopyField(F *mat.Dense) (R *mat.Dense) {
	nr, nc := F.Dims()
	R = mat.NewDense(nr, nc, nil)
	R.Copy(F)
	return
}

// Mask zeroes every entry of F whose node is not labeled keep, in place
func Mask(F *mat.Dense, nm types.NodeMap, keep types.NodeType) *mat.Dense {
	data := FieldData(F)
	for ind, nt := range nm.Nodes {
		if nt != keep {
			data[ind] = 0
		}
	}
	return F
}

func MaskC(F *mat.CDense, nm types.NodeMap, keep types.NodeType) *mat.CDense {
	data := CFieldData(F)
	for ind, nt := range nm.Nodes {
		if nt != keep {
			data[ind] = 0
		}
	}
	return F
}

// ClampShift stores max(lo, min(src+shift, hi)) into dst, dst and src may alias
func ClampShift(dst, src *mat.Dense, shift, lo, hi float64) *mat.Dense {
	var (
		d = FieldData(dst)
		s = FieldData(src)
	)
	for i, val := range s {
		d[i] = math.Max(lo, math.Min(val+shift, hi))
	}
	return dst
}

// MaskedSum sums the entries of F on nodes labeled nt
func MaskedSum(F *mat.Dense, nm types.NodeMap, nt types.NodeType) (sum float64) {
	data := FieldData(F)
	for ind, val := range nm.Nodes {
		if val == nt {
			sum += data[ind]
		}
	}
	return
}

// MaskedMaxAbs is the largest magnitude of F on nodes labeled nt
func MaskedMaxAbs(F *mat.Dense, nm types.NodeMap, nt types.NodeType) (mx float64) {
	data := FieldData(F)
	for ind, val := range nm.Nodes {
		if val == nt {
			mx = math.Max(mx, math.Abs(data[ind]))
		}
	}
	return
}

// MaskedFinite checks the entries of F on nodes labeled nt
func MaskedFinite(F *mat.Dense, nm types.NodeMap, nt types.NodeType) bool {
	data := FieldData(F)
	for ind, val := range nm.Nodes {
		if val == nt && !isFinite(data[ind]) {
			return false
		}
	}
	return true
}

// ScaleToC returns a*F as a complex field
func ScaleToC(a complex128, F *mat.Dense) (R *mat.CDense) {
	nr, nc := F.Dims()
	R = NewCField(nr, nc)
	rd := CFieldData(R)
	for i, val := range FieldData(F) {
		rd[i] = a * complex(val, 0)
	}
	return
}

// ConjScaleC returns a*conj(F)
func ConjScaleC(a complex128, F *mat.CDense) (R *mat.CDense) {
	nr, nc := F.Dims()
	R = NewCField(nr, nc)
	rd := CFieldData(R)
	for i, val := range CFieldData(F) {
		rd[i] = a * cmplx.Conj(val)
	}
	return
}

// AbsC returns the pointwise magnitude of F
func AbsC(F *mat.CDense) (R *mat.Dense) {
	nr, nc := F.Dims()
	R = mat.NewDense(nr, nc, nil)
	rd := FieldData(R)
	for i, val := range CFieldData(F) {
		rd[i] = cmplx.Abs(val)
	}
	return
}

func AllFinite(F *mat.Dense) bool {
	for _, val := range FieldData(F) {
		if !isFinite(val) {
			return false
		}
	}
	return true
}

func AllFiniteC(F *mat.CDense) bool {
	for _, val := range CFieldData(F) {
		if cmplx.IsNaN(val) || cmplx.IsInf(val) {
			return false
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FieldRows returns a row-major [][]float64 copy, for serialization
func FieldRows(F *mat.Dense) (rows [][]float64) {
	nr, nc := F.Dims()
	rows = make([][]float64, nr)
	data := FieldData(F)
	for i := 0; i < nr; i++ {
		rows[i] = make([]float64, nc)
		copy(rows[i], data[i*nc:(i+1)*nc])
	}
	return
}
