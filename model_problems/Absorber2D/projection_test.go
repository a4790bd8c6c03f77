package Absorber2D

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/geometry2D"
	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

func assertAdmissible(t *testing.T, chi *mat.Dense, nodes types.NodeMap) {
	for k, nt := range nodes.Nodes {
		i, j := nodes.IJ(k)
		if nt == types.NodeRobin {
			assert.True(t, chi.At(i, j) >= 0 && chi.At(i, j) <= 1)
		} else {
			assert.Equal(t, 0., chi.At(i, j))
		}
	}
}

func TestEnergy(t *testing.T) {
	u := utils.NewCField(10, 8)
	data := utils.CFieldData(u)
	for i := range data {
		data[i] = complex(0, 2)
	}
	// 48 inner nodes of |u|^2 = 4, h^2 = 1/64
	assert.InDelta(t, 3., Energy(u, 1./8., 0, 1), 1.e-12)
	assert.InDelta(t, 3.125, Energy(u, 1./8., 0.5, 1), 1.e-12)
	// The outer ring is not counted
	u.Set(0, 3, 100)
	u.Set(9, 0, 100)
	assert.InDelta(t, 3., Energy(u, 1./8., 0, 1), 1.e-12)
}

func TestProject(t *testing.T) {
	d, err := geometry2D.NewDomain(32, 32, 2)
	require.NoError(t, err)
	nodes := d.Nodes
	Nr, Nc := nodes.Dims()
	{ // Random input
		rng := rand.New(rand.NewSource(3))
		B := mat.NewDense(Nr, Nc, nil)
		bd := utils.FieldData(B)
		for i := range bd {
			bd[i] = 4*rng.Float64() - 2
		}
		Bcopy := utils.CopyField(B)
		for _, vObj := range []float64{0.05, 0.3, 0.5, 0.9, 1} {
			pr, err := Project(B, nodes, vObj)
			require.NoError(t, err)
			assertAdmissible(t, pr.Chi, nodes)
			assert.InDelta(t, vObj, VolumeFraction(pr.Chi, nodes), 1.e-4)
			assert.InDelta(t, pr.Mean, VolumeFraction(pr.Chi, nodes), 1.e-12)
			if vObj != 0.3 && vObj != 0.5 {
				continue
			}
			// Idempotent up to the tolerance
			pr2, err := Project(pr.Chi, nodes, vObj)
			require.NoError(t, err)
			assert.InDeltaSlice(t, utils.FieldData(pr.Chi), utils.FieldData(pr2.Chi), 2.e-4)
		}
		assert.Equal(t, utils.FieldData(Bcopy), utils.FieldData(B))
	}
	{ // Already admissible
		pr, err := Project(d.InitialDensity(0.5), nodes, 0.5)
		require.NoError(t, err)
		assert.Less(t, math.Abs(pr.Shift), 1.e-4)
	}
	{ // Wide range of values
		B := d.InitialDensity(0)
		var first = true
		for k, nt := range nodes.Nodes {
			if nt != types.NodeRobin {
				continue
			}
			i, j := nodes.IJ(k)
			if first {
				B.Set(i, j, 1000)
				first = false
			} else {
				B.Set(i, j, -1000)
			}
		}
		pr, err := Project(B, nodes, 0.5)
		require.NoError(t, err)
		assert.LessOrEqual(t, pr.Steps, 25)
		assertAdmissible(t, pr.Chi, nodes)
		assert.InDelta(t, 0.5, pr.Mean, 1.e-4)
	}
}

func TestProjectErrors(t *testing.T) {
	d, err := geometry2D.NewDomain(10, 8, 0)
	require.NoError(t, err)
	B := d.InitialDensity(0.5)
	for _, vObj := range []float64{0, -0.1, 1.5, math.NaN()} {
		_, err = Project(B, d.Nodes, vObj)
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
	_, err = Project(B, types.NewNodeMap(10, 8, types.NodeInterior), 0.5)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = Project(mat.NewDense(3, 3, nil), d.Nodes, 0.5)
	assert.True(t, errors.Is(err, ErrConfiguration))
	B.Set(5, 3, math.Inf(-1))
	_, err = Project(B, d.Nodes, 0.5)
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "B", ce.Field)
	// Non-finite values away from the wall are ignored
	B.Set(5, 3, 0.5)
	B.Set(8, 3, math.NaN())
	_, err = Project(B, d.Nodes, 0.5)
	assert.NoError(t, err)
}
