package Helmholtz2D

import (
	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

/*
	The complex system A u = b is assembled in its real equivalent form with the real
	and imaginary parts of each node interleaved: node k owns rows/columns 2k and 2k+1.
	A complex coefficient a coupling node r to node c contributes the 2x2 block

		| Re(a)  -Im(a) |
		| Im(a)   Re(a) |

	With row-major node numbering the half bandwidth is 2*Nc+1.
*/
type System struct {
	A   utils.CSR
	B   []float64
	Dim int
}

func addC(A utils.DOK, r, c int, a complex128) {
	A.Add(2*r, 2*c, real(a))
	A.Add(2*r, 2*c+1, -imag(a))
	A.Add(2*r+1, 2*c, imag(a))
	A.Add(2*r+1, 2*c+1, real(a))
}

// AssembleOperator builds the matrix of the problem, independent of the right hand sides
func AssembleOperator(pb *Problem) (A utils.CSR) {
	var (
		nm     = pb.Nodes
		Nr, Nc = nm.Dims()
		dim    = 2 * Nr * Nc
		h      = pb.Spacestep
		w2     = complex(pb.Omega*pb.Omega, 0)
		Ad     = utils.NewDOK(dim, dim)
	)
	for k, nt := range nm.Nodes {
		i, j := nm.IJ(k)
		switch nt {
		case types.NodeInterior:
			beta := pb.BetaPDE.At(i, j) / complex(h*h, 0)
			nb := nm.Neighbors(i, j)
			for _, n := range nb {
				addC(Ad, k, n, beta)
			}
			addC(Ad, k, k, -4*beta+w2*pb.AlphaPDE.At(i, j))
		case types.NodeDirichlet:
			addC(Ad, k, k, pb.AlphaDir.At(i, j))
		case types.NodeNeumann, types.NodeRobin:
			in := inwardNeighbors(nm, i, j)
			if len(in) == 0 {
				addC(Ad, k, k, 1)
				continue
			}
			var diag, c complex128
			if nt == types.NodeNeumann {
				c = pb.BetaNeu.At(i, j) / complex(h, 0)
				diag = c
			} else {
				c = pb.BetaRob.At(i, j) / complex(h, 0)
				diag = c + pb.AlphaRob.At(i, j)
			}
			addC(Ad, k, k, diag)
			for _, n := range in {
				addC(Ad, k, n, -c/complex(float64(len(in)), 0))
			}
		default:
			addC(Ad, k, k, 1)
		}
	}
	Ad.SetReadOnly("Helmholtz operator")
	return Ad.ToCSR()
}

// AssembleRHS builds the interleaved right hand side
func AssembleRHS(pb *Problem) (b []float64) {
	var (
		nm = pb.Nodes
	)
	b = make([]float64, 2*len(nm.Nodes))
	for k, nt := range nm.Nodes {
		var (
			i, j = nm.IJ(k)
			val  complex128
		)
		switch nt {
		case types.NodeInterior:
			val = pb.F.At(i, j)
		case types.NodeDirichlet:
			val = pb.FDir.At(i, j)
		case types.NodeNeumann:
			if len(inwardNeighbors(nm, i, j)) != 0 {
				val = pb.FNeu.At(i, j)
			}
		case types.NodeRobin:
			if len(inwardNeighbors(nm, i, j)) != 0 {
				val = pb.FRob.At(i, j)
			}
		}
		b[2*k], b[2*k+1] = real(val), imag(val)
	}
	return
}

// inwardNeighbors are the interior 4-neighbors of a boundary node, or when there are
// none, the neighbors that belong to the domain
func inwardNeighbors(nm types.NodeMap, i, j int) (in []int) {
	nb := nm.Neighbors(i, j)
	for _, n := range nb {
		if nm.Nodes[n] == types.NodeInterior {
			in = append(in, n)
		}
	}
	if len(in) != 0 {
		return
	}
	for _, n := range nb {
		if nm.Nodes[n] != types.NodeComplement {
			in = append(in, n)
		}
	}
	return
}

func Assemble(pb *Problem) (sys System) {
	sys.A = AssembleOperator(pb)
	sys.B = AssembleRHS(pb)
	sys.Dim = len(sys.B)
	return
}
