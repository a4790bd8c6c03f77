package geometry2D

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

type SourceType uint8

const (
	PlanarWave SourceType = iota
	SphericalWave
)

func NewSourceType(label string) (st SourceType, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "planar", "plane":
		st = PlanarWave
	case "spherical", "point":
		st = SphericalWave
	default:
		err = fmt.Errorf("unknown source type: \"%s\", use planar or spherical", label)
	}
	return
}

func (st SourceType) Print() string {
	switch st {
	case PlanarWave:
		return "Planar Wave"
	case SphericalWave:
		return "Spherical Wave"
	}
	return "Unknown"
}

// DirichletData returns the boundary values on row 0: a uniform value for the planar
// wave, a single point at the middle column for the spherical wave
func (d *Domain) DirichletData(st SourceType, amplitude float64) (fdir *mat.CDense) {
	var (
		nm     = d.Nodes
		Nr, Nc = nm.Dims()
	)
	fdir = utils.NewCField(Nr, Nc)
	switch st {
	case PlanarWave:
		for j := 0; j < Nc; j++ {
			fdir.Set(0, j, complex(amplitude, 0))
		}
	case SphericalWave:
		fdir.Set(0, Nc/2, complex(amplitude, 0))
	}
	return utils.MaskC(fdir, nm, types.NodeDirichlet)
}
