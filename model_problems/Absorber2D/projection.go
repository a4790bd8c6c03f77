package Absorber2D

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

// ProjectionTolerance bounds the width of the final bisection bracket on the shift
const ProjectionTolerance = 1.e-4

// The density lives on the Robin nodes
const densityNode = types.NodeRobin

type Projection struct {
	Chi   *mat.Dense
	Shift float64 // The constant l with Chi = clamp(B+l, 0, 1) on the Robin nodes
	Steps int     // Number of bisection steps
	Mean  float64 // Mean of Chi over the Robin nodes
}

/*
	Project maps B onto the admissible set

		{ chi : 0 <= chi <= 1, chi = 0 off the Robin nodes, mean(chi) = vObj }

	by bisection on the shift l of P(l) = clamp(B+l, 0, 1). The mean of P(l) is non
	decreasing in l, it is 0 at l = -max|B| and 1 at l = max|B|+1, so the bracket
	always contains the target. B is not modified.
*/
func Project(B *mat.Dense, nodes types.NodeMap, vObj float64) (pr Projection, err error) {
	var (
		S = nodes.Count(densityNode)
	)
	if err = checkProjectionInput(B, nodes, S, vObj); err != nil {
		return
	}
	var (
		Nr, Nc  = nodes.Dims()
		bMax    = utils.MaskedMaxAbs(B, nodes, densityNode)
		lo, hi  = -bMax, bMax + 1
		chi     = mat.NewDense(Nr, Nc, nil)
		meanAtL = func(l float64) float64 {
			utils.Mask(utils.ClampShift(chi, B, l, 0, 1), nodes, densityNode)
			return utils.MaskedSum(chi, nodes, densityNode) / float64(S)
		}
	)
	for hi-lo > ProjectionTolerance {
		l := 0.5 * (lo + hi)
		if meanAtL(l) > vObj {
			hi = l
		} else {
			lo = l
		}
		pr.Steps++
	}
	pr.Shift = 0.5 * (lo + hi)
	pr.Mean = meanAtL(pr.Shift)
	pr.Chi = chi
	return
}

func checkProjectionInput(B *mat.Dense, nodes types.NodeMap, S int, vObj float64) error {
	switch {
	case S == 0:
		return configErr("nodes", "has no Robin nodes, the volume constraint is undefined")
	case math.IsNaN(vObj) || vObj <= 0 || vObj > 1:
		return configErr("vObj", "must be in (0,1], have %v", vObj)
	}
	if nr, nc := B.Dims(); nr != nodes.Nr || nc != nodes.Nc {
		return configErr("B", "is %dx%d, node map is %dx%d", nr, nc, nodes.Nr, nodes.Nc)
	}
	if !utils.MaskedFinite(B, nodes, densityNode) {
		return configErr("B", "has non-finite entries on Robin nodes")
	}
	return nil
}

// VolumeFraction is the mean of chi over the Robin nodes
func VolumeFraction(chi *mat.Dense, nodes types.NodeMap) float64 {
	S := nodes.Count(densityNode)
	if S == 0 {
		return 0
	}
	return utils.MaskedSum(chi, nodes, densityNode) / float64(S)
}
