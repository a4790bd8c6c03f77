package Helmholtz2D

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

// flatWall is a rectangle with the Dirichlet row on top, the Robin row at w and
// Neumann side columns, below w the nodes are outside of the domain
func flatWall(Nr, Nc, w int) (nm types.NodeMap) {
	nm = types.NewNodeMap(Nr, Nc, types.NodeComplement)
	for i := 0; i < w; i++ {
		for j := 0; j < Nc; j++ {
			nm.Set(i, j, types.NodeInterior)
			if j == 0 || j == Nc-1 {
				nm.Set(i, j, types.NodeNeumann)
			}
		}
	}
	for j := 0; j < Nc; j++ {
		nm.Set(0, j, types.NodeDirichlet)
		nm.Set(w, j, types.NodeRobin)
	}
	return
}

func planarProblem(Nr, Nc, w int, omega float64) (pb *Problem) {
	pb = NewProblem(flatWall(Nr, Nc, w), 1./float64(Nc), omega)
	for j := 0; j < Nc; j++ {
		pb.FDir.Set(0, j, 1)
	}
	return
}

func TestBandLU(t *testing.T) {
	var (
		n      = 14
		kl, ku = 2, 3
		rng    = rand.New(rand.NewSource(11))
		Ad     = utils.NewDOK(n, n)
		Adense = mat.NewDense(n, n, nil)
	)
	for i := 0; i < n; i++ {
		for j := max(0, i-kl); j <= min(n-1, i+ku); j++ {
			val := rng.Float64() - 0.5
			// Weak diagonal on even rows forces row interchanges
			if i == j && i%2 == 1 {
				val += 4
			}
			Ad.Set(i, j, val)
			Adense.Set(i, j, val)
		}
	}
	b := make([]float64, n)
	for i := range b {
		b[i] = rng.Float64()
	}
	lu, err := NewBandLU(Ad.ToCSR())
	require.NoError(t, err)
	nn, l, u := lu.Dims()
	assert.Equal(t, n, nn)
	assert.Equal(t, kl, l)
	assert.Equal(t, ku, u)
	bCopy := append([]float64{}, b...)
	x := lu.Solve(b)
	assert.Equal(t, bCopy, b)

	var xd mat.VecDense
	require.NoError(t, xd.SolveVec(Adense, mat.NewVecDense(n, b)))
	assert.InDeltaSlice(t, xd.RawVector().Data, x, 1.e-10)

	{ // A vanishing column is singular
		As := utils.NewDOK(3, 3)
		As.Set(0, 0, 1)
		As.Set(1, 2, 1)
		As.Set(2, 2, 1)
		As.Set(2, 0, 1)
		_, err = NewBandLU(As.ToCSR())
		assert.True(t, errors.Is(err, ErrSingular))
	}
}

func TestPlanarWave(t *testing.T) {
	var (
		Nr, Nc, w = 10, 6, 5
		omega     = 1.
		h         = 1. / float64(Nc)
	)
	pb := planarProblem(Nr, Nc, w, omega)
	s := NewSolver()
	u, err := s.Solve(pb)
	require.NoError(t, err)

	// Without absorption the solution is uniform across the columns and solves
	//	u0 = 1, (u[i-1] - 2u[i] + u[i+1])/h^2 + omega^2 u[i] = 0, u[w] = u[w-1]
	A := mat.NewDense(w, w, nil)
	rhs := mat.NewVecDense(w, nil)
	for r := 0; r < w-1; r++ { // Rows 1..w-1 of the grid
		A.Set(r, r, -2/(h*h)+omega*omega)
		if r > 0 {
			A.Set(r, r-1, 1/(h*h))
		} else {
			rhs.SetVec(r, -1/(h*h))
		}
		A.Set(r, r+1, 1/(h*h))
	}
	A.Set(w-1, w-1, 1)
	A.Set(w-1, w-2, -1)
	var ref mat.VecDense
	require.NoError(t, ref.SolveVec(A, rhs))

	for j := 0; j < Nc; j++ {
		assert.InDelta(t, 1., real(u.At(0, j)), 1.e-9)
		for i := 1; i <= w; i++ {
			assert.InDelta(t, ref.AtVec(i-1), real(u.At(i, j)), 1.e-8)
			assert.InDelta(t, 0., imag(u.At(i, j)), 1.e-8)
		}
		for i := w + 1; i < Nr; i++ {
			assert.Equal(t, complex(0, 0), u.At(i, j))
		}
	}
	assert.Less(t, s.Stats().LastResidual, DefaultResidualTolerance)
}

func TestSolverReusesFactorization(t *testing.T) {
	pb := planarProblem(10, 6, 5, 3)
	s := NewSolver()
	u1, err := s.Solve(pb)
	require.NoError(t, err)
	u2, err := s.Solve(pb)
	require.NoError(t, err)
	assert.Equal(t, utils.CFieldData(u1), utils.CFieldData(u2))
	st := s.Stats()
	assert.Equal(t, 2, st.Solves)
	assert.Equal(t, 1, st.Factorizations)

	// The adjoint problem only changes the right hand sides
	_, err = s.Solve(pb.WithAdjointSource(utils.ConjScaleC(-2, u1)))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Stats().Factorizations)

	// Absorption on the wall changes the operator
	alpha := utils.NewCField(10, 6)
	for j := 0; j < 6; j++ {
		alpha.Set(5, j, complex(5, -5))
	}
	ua, err := s.Solve(pb.WithAbsorption(alpha))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Stats().Factorizations)
	assert.Equal(t, 4, s.Stats().Solves)
	assert.NotEqual(t, 0., imag(ua.At(3, 2)))
	// pb itself is unchanged
	assert.Equal(t, complex(0, 0), pb.AlphaRob.At(5, 0))
}

func TestSolverRejectsNaNSolution(t *testing.T) {
	pb := planarProblem(10, 6, 5, 1)
	s := NewSolver()
	_, err := s.Solve(pb)
	require.NoError(t, err)
	b := AssembleRHS(pb)
	x := s.op.lu.Solve(b)
	require.NoError(t, s.verify(b, x))
	x[7] = math.NaN()
	err = s.verify(b, x)
	assert.True(t, errors.Is(err, ErrSingular))
	assert.True(t, math.IsNaN(s.Stats().LastResidual))
}

func TestInvalidProblem(t *testing.T) {
	s := NewSolver()
	{
		pb := planarProblem(10, 6, 5, 1)
		pb.Spacestep = 0
		_, err := s.Solve(pb)
		assert.True(t, errors.Is(err, ErrInvalidProblem))
	}
	{
		pb := planarProblem(10, 6, 5, 1)
		pb.FNeu = nil
		_, err := s.Solve(pb)
		assert.True(t, errors.Is(err, ErrInvalidProblem))
	}
	{
		pb := planarProblem(10, 6, 5, 1)
		pb.BetaPDE.Set(2, 2, 0)
		_, err := s.Solve(pb)
		assert.True(t, errors.Is(err, ErrInvalidProblem))
	}
	{
		pb := planarProblem(10, 6, 5, 1)
		pb.F = utils.NewCField(3, 3)
		_, err := s.Solve(pb)
		assert.True(t, errors.Is(err, ErrInvalidProblem))
	}
	assert.Equal(t, 0, s.Stats().Factorizations)
}
