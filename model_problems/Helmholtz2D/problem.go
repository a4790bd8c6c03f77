package Helmholtz2D

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

var (
	ErrInvalidProblem = errors.New("Helmholtz2D: invalid problem")
	ErrSingular       = errors.New("Helmholtz2D: singular operator")
	ErrResidual       = errors.New("Helmholtz2D: solution residual above tolerance")
)

/*
	Problem holds the data of the discretized boundary value problem

		BetaPDE * Lap(u) + Omega^2 * AlphaPDE * u = F         interior nodes
		AlphaDir * u                              = FDir      Dirichlet nodes
		BetaNeu * du/dn                           = FNeu      Neumann nodes
		BetaRob * du/dn + AlphaRob * u            = FRob      Robin nodes

	on the grid described by Nodes with spacing Spacestep. Every field is an
	Nr x Nc complex matrix indexed like Nodes, entries off the relevant node type
	are ignored. Fields are never modified by the solver.
*/
type Problem struct {
	Nodes               types.NodeMap
	Spacestep           float64
	Omega               float64 // Wavenumber
	F, FDir, FNeu, FRob *mat.CDense
	BetaPDE, AlphaPDE   *mat.CDense
	AlphaDir            *mat.CDense
	BetaNeu             *mat.CDense
	BetaRob, AlphaRob   *mat.CDense
}

// NewProblem sets unit coefficients, zero absorption and zero right hand sides
func NewProblem(nodes types.NodeMap, spacestep, omega float64) (pb *Problem) {
	var (
		Nr, Nc = nodes.Dims()
		ones   = func() *mat.CDense {
			F := utils.NewCField(Nr, Nc)
			data := utils.CFieldData(F)
			for i := range data {
				data[i] = 1
			}
			return F
		}
	)
	pb = &Problem{
		Nodes:     nodes,
		Spacestep: spacestep,
		Omega:     omega,
		F:         utils.NewCField(Nr, Nc),
		FDir:      utils.NewCField(Nr, Nc),
		FNeu:      utils.NewCField(Nr, Nc),
		FRob:      utils.NewCField(Nr, Nc),
		BetaPDE:   ones(),
		AlphaPDE:  ones(),
		AlphaDir:  ones(),
		BetaNeu:   ones(),
		BetaRob:   ones(),
		AlphaRob:  utils.NewCField(Nr, Nc),
	}
	return
}

// WithAbsorption returns a shallow copy using alphaRob as the Robin coefficient
func (pb *Problem) WithAbsorption(alphaRob *mat.CDense) *Problem {
	pbN := *pb
	pbN.AlphaRob = alphaRob
	return &pbN
}

// WithAdjointSource returns a shallow copy with interior source f and homogeneous
// Dirichlet data, the operator is unchanged
func (pb *Problem) WithAdjointSource(f *mat.CDense) *Problem {
	pbN := *pb
	pbN.F = f
	pbN.FDir = utils.NewCField(pb.Nodes.Dims())
	return &pbN
}

func (pb *Problem) fields() []*mat.CDense {
	return []*mat.CDense{
		pb.F, pb.FDir, pb.FNeu, pb.FRob,
		pb.BetaPDE, pb.AlphaPDE, pb.AlphaDir, pb.BetaNeu, pb.BetaRob, pb.AlphaRob,
	}
}

func (pb *Problem) Validate() (err error) {
	var (
		Nr, Nc = pb.Nodes.Dims()
		names  = []string{"F", "FDir", "FNeu", "FRob",
			"BetaPDE", "AlphaPDE", "AlphaDir", "BetaNeu", "BetaRob", "AlphaRob"}
	)
	if Nr*Nc == 0 || len(pb.Nodes.Nodes) != Nr*Nc {
		return fmt.Errorf("%w: empty or inconsistent node map", ErrInvalidProblem)
	}
	if !(pb.Spacestep > 0) || math.IsInf(pb.Spacestep, 0) {
		return fmt.Errorf("%w: spacestep must be positive and finite, have %v", ErrInvalidProblem, pb.Spacestep)
	}
	if math.IsNaN(pb.Omega) || math.IsInf(pb.Omega, 0) {
		return fmt.Errorf("%w: wavenumber is not finite", ErrInvalidProblem)
	}
	for n, F := range pb.fields() {
		if F == nil {
			return fmt.Errorf("%w: field %s is nil", ErrInvalidProblem, names[n])
		}
		if nr, nc := F.Dims(); nr != Nr || nc != Nc {
			return fmt.Errorf("%w: field %s is %dx%d, node map is %dx%d",
				ErrInvalidProblem, names[n], nr, nc, Nr, Nc)
		}
		if !utils.AllFiniteC(F) {
			return fmt.Errorf("%w: field %s has non-finite entries", ErrInvalidProblem, names[n])
		}
	}
	// Leading coefficients must not vanish where they close an equation
	required := map[types.NodeType]*mat.CDense{
		types.NodeInterior:  pb.BetaPDE,
		types.NodeDirichlet: pb.AlphaDir,
		types.NodeNeumann:   pb.BetaNeu,
		types.NodeRobin:     pb.BetaRob,
	}
	for ind, nt := range pb.Nodes.Nodes {
		if F, ok := required[nt]; ok {
			i, j := pb.Nodes.IJ(ind)
			if F.At(i, j) == 0 {
				return fmt.Errorf("%w: zero leading coefficient on %s node (%d,%d)",
					ErrInvalidProblem, nt, i, j)
			}
		}
	}
	return
}
