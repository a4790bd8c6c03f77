package Helmholtz2D

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

const DefaultResidualTolerance = 1.e-6

type Stats struct {
	Solves         int // Number of calls to Solve
	Factorizations int
	Refinements    int
	LastResidual   float64 // Relative residual |b - A x| / |b| of the last solve
	Runtime        time.Duration
}

/*
	Solver is a finite difference Helmholtz solver. The factorization of the last
	operator is retained, so solves that only change the right hand sides (the
	adjoint solve following a forward solve) skip the factorization.
	A Solver is not safe for concurrent use.
*/
type Solver struct {
	ResidualTolerance float64
	stats             Stats
	op                *operatorCache
}

type operatorCache struct {
	key []complex128
	nm  types.NodeMap
	A   utils.CSR
	lu  *BandLU
}

func NewSolver() *Solver {
	return &Solver{
		ResidualTolerance: DefaultResidualTolerance,
	}
}

func (s *Solver) Stats() Stats { return s.stats }

// Solve returns the complex field u solving the problem, deterministic for fixed input
func (s *Solver) Solve(pb *Problem) (u *mat.CDense, err error) {
	start := time.Now()
	defer func() { s.stats.Runtime += time.Since(start) }()
	s.stats.Solves++
	if err = pb.Validate(); err != nil {
		return
	}
	var (
		Nr, Nc = pb.Nodes.Dims()
		b      = AssembleRHS(pb)
		x      []float64
	)
	if err = s.factorize(pb); err != nil {
		return
	}
	x = s.op.lu.Solve(b)
	if err = s.verify(b, x); err != nil {
		return
	}
	u = utils.NewCField(Nr, Nc)
	ud := utils.CFieldData(u)
	for k := range ud {
		ud[k] = complex(x[2*k], x[2*k+1])
	}
	return
}

func (s *Solver) factorize(pb *Problem) (err error) {
	key := operatorKey(pb)
	if s.op != nil && sameNodes(s.op.nm, pb.Nodes) && equalKeys(s.op.key, key) {
		return
	}
	s.op = nil
	A := AssembleOperator(pb)
	var lu *BandLU
	if lu, err = NewBandLU(A); err != nil {
		return
	}
	s.stats.Factorizations++
	s.op = &operatorCache{
		key: key,
		nm:  pb.Nodes,
		A:   A,
		lu:  lu,
	}
	return
}

// verify checks the residual and applies one step of iterative refinement if needed
func (s *Solver) verify(b, x []float64) (err error) {
	if utils.IsNan(x) {
		s.stats.LastResidual = math.NaN()
		return fmt.Errorf("%w: solution has NaN entries", ErrSingular)
	}
	var (
		r     = make([]float64, len(b))
		bNorm = floats.Norm(b, 2)
	)
	if bNorm == 0 {
		bNorm = 1
	}
	residual := func() float64 {
		s.op.A.MulVec(r, x)
		floats.SubTo(r, b, r) // r = b - Ax
		return floats.Norm(r, 2) / bNorm
	}
	res := residual()
	if res > s.ResidualTolerance && !math.IsNaN(res) {
		floats.Add(x, s.op.lu.Solve(r))
		s.stats.Refinements++
		res = residual()
	}
	s.stats.LastResidual = res
	if math.IsNaN(res) || math.IsInf(res, 0) || res > s.ResidualTolerance {
		err = fmt.Errorf("%w: relative residual %8.3e, tolerance %8.3e", ErrResidual, res, s.ResidualTolerance)
	}
	return
}

func operatorKey(pb *Problem) (key []complex128) {
	key = append(key, complex(pb.Spacestep, pb.Omega))
	for _, F := range []*mat.CDense{pb.BetaPDE, pb.AlphaPDE, pb.AlphaDir, pb.BetaNeu, pb.BetaRob, pb.AlphaRob} {
		key = append(key, utils.CFieldData(F)...)
	}
	return
}

func equalKeys(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameNodes(a, b types.NodeMap) bool {
	if a.Nr != b.Nr || a.Nc != b.Nc || len(a.Nodes) != len(b.Nodes) {
		return false
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			return false
		}
	}
	return true
}
