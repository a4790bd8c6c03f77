package geometry2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

/*
	The computational domain is a rectangular Nr x Nc grid of spacing h = 1/Nc:
		- Row 0 is the Dirichlet edge where the incoming wave is prescribed
		- The left and right columns above the wall are Neumann
		- The wall sits near the middle row and is deformed by a square-wave fractal
		  of the requested level, all wall nodes are Robin
		- Nodes below the wall are outside of the domain (complement)
*/
type Domain struct {
	Nodes     types.NodeMap
	X, Y      []float64 // Node coordinates, X per column, Y per row
	Wall      []int     // Row index of the wall in each column
	Spacestep float64
	Level     int
}

func NewDomain(Nr, Nc, level int) (d *Domain, err error) {
	switch {
	case Nc < 3:
		err = fmt.Errorf("domain needs at least 3 columns, have %d", Nc)
	case Nr < 5:
		err = fmt.Errorf("domain needs at least 5 rows, have %d", Nr)
	case level < 0:
		err = fmt.Errorf("fractal level must be non-negative, have %d", level)
	}
	if err != nil {
		return
	}
	d = &Domain{
		Nodes:     types.NewNodeMap(Nr, Nc, types.NodeComplement),
		X:         make([]float64, Nc),
		Y:         make([]float64, Nr),
		Wall:      WallProfile(Nr, Nc, level),
		Spacestep: 1. / float64(Nc),
		Level:     level,
	}
	for j := range d.X {
		d.X[j] = float64(j) * d.Spacestep
	}
	for i := range d.Y {
		d.Y[i] = float64(i) * d.Spacestep
	}
	d.label()
	return
}

func (d *Domain) label() {
	var (
		nm     = d.Nodes
		Nr, Nc = nm.Dims()
	)
	for j := 0; j < Nc; j++ {
		w := d.Wall[j]
		for i := 0; i < w; i++ {
			nm.Set(i, j, types.NodeInterior)
		}
		nm.Set(w, j, types.NodeRobin)
		for i := w + 1; i < Nr; i++ {
			nm.Set(i, j, types.NodeComplement)
		}
	}
	// Seal the vertical steps of the wall so no interior node touches the complement
	for j := 1; j < Nc; j++ {
		wl, wr := d.Wall[j-1], d.Wall[j]
		switch {
		case wl < wr:
			for i := wl; i < wr; i++ {
				nm.Set(i, j, types.NodeRobin)
			}
		case wl > wr:
			for i := wr; i < wl; i++ {
				nm.Set(i, j-1, types.NodeRobin)
			}
		}
	}
	for _, j := range []int{0, Nc - 1} {
		for i := 1; i < Nr; i++ {
			if nm.Is(i, j, types.NodeInterior) {
				nm.Set(i, j, types.NodeNeumann)
			}
		}
	}
	for j := 0; j < Nc; j++ {
		nm.Set(0, j, types.NodeDirichlet)
	}
}

// WallProfile returns the wall row per column for a square-wave fractal of the given level
func WallProfile(Nr, Nc, level int) (wall []int) {
	var (
		base = Nr / 2
		amp  = float64(Nc) / 8.
	)
	wall = make([]int, Nc)
	for j := range wall {
		x := (float64(j) + 0.5) / float64(Nc)
		w := base + int(math.Round(fractalOffset(x, level, amp)))
		// Keep the Dirichlet row and the last row clear of the wall
		wall[j] = max(2, min(w, Nr-2))
	}
	return
}

func fractalOffset(x float64, level int, amp float64) float64 {
	if level == 0 {
		return 0
	}
	q := math.Floor(4 * x)
	local := 4*x - q
	var offset float64
	switch int(q) {
	case 1:
		offset = amp
	case 2:
		offset = -amp
	}
	return offset + fractalOffset(local, level-1, amp/4.)
}

// RobinCount is the number of nodes carrying the density, the surface S
func (d *Domain) RobinCount() int {
	return d.Nodes.Count(types.NodeRobin)
}

// InitialDensity is value on every Robin node and zero elsewhere
func (d *Domain) InitialDensity(value float64) (chi *mat.Dense) {
	Nr, Nc := d.Nodes.Dims()
	chi = utils.NewField(Nr, Nc, value)
	return utils.Mask(chi, d.Nodes, types.NodeRobin)
}
