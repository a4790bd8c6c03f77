package geometry2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/wallopt/types"
)

// interiorSealed reports whether no interior node has a complement neighbor
func interiorSealed(nm types.NodeMap) bool {
	for k, nt := range nm.Nodes {
		if nt != types.NodeInterior {
			continue
		}
		i, j := nm.IJ(k)
		for _, n := range nm.Neighbors(i, j) {
			if nm.Nodes[n] == types.NodeComplement {
				return false
			}
		}
	}
	return true
}

func TestDomain(t *testing.T) {
	{ // Flat wall
		d, err := NewDomain(10, 8, 0)
		require.NoError(t, err)
		assert.Equal(t, 1./8., d.Spacestep)
		assert.Equal(t, []int{5, 5, 5, 5, 5, 5, 5, 5}, d.Wall)
		nm := d.Nodes
		assert.Equal(t, 8, d.RobinCount())
		assert.Equal(t, 8, nm.Count(types.NodeDirichlet))
		assert.Equal(t, 8, nm.Count(types.NodeNeumann))
		assert.Equal(t, 24, nm.Count(types.NodeInterior))
		assert.Equal(t, 32, nm.Count(types.NodeComplement))
		for j := 0; j < 8; j++ {
			assert.True(t, nm.Is(0, j, types.NodeDirichlet))
			assert.True(t, nm.Is(5, j, types.NodeRobin))
			assert.True(t, nm.Is(9, j, types.NodeComplement))
		}
		assert.True(t, nm.Is(3, 0, types.NodeNeumann))
		assert.True(t, nm.Is(3, 7, types.NodeNeumann))
		assert.True(t, interiorSealed(nm))
		assert.InDelta(t, 7./8., d.X[7], 1.e-12)
		assert.InDelta(t, 9./8., d.Y[9], 1.e-12)
	}
	{ // One level of the square wave, amplitude Nc/8 = 1
		d, err := NewDomain(16, 8, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{8, 8, 9, 9, 7, 7, 8, 8}, d.Wall)
		nm := d.Nodes
		// Steps of the wall are closed with Robin nodes
		assert.True(t, nm.Is(8, 2, types.NodeRobin))
		assert.True(t, nm.Is(7, 3, types.NodeRobin))
		assert.True(t, nm.Is(8, 3, types.NodeRobin))
		assert.True(t, nm.Is(7, 5, types.NodeRobin))
		assert.True(t, nm.Is(7, 6, types.NodeRobin))
		assert.True(t, interiorSealed(nm))
		assert.Greater(t, d.RobinCount(), 8)
	}
	{ // Deeper levels stay inside the grid
		for _, level := range []int{2, 3} {
			d, err := NewDomain(40, 32, level)
			require.NoError(t, err)
			for _, w := range d.Wall {
				assert.True(t, w >= 2 && w <= 38)
			}
			assert.True(t, interiorSealed(d.Nodes))
			assert.Equal(t, 32, d.Nodes.Count(types.NodeDirichlet))
		}
	}
	{ // Degenerate sizes
		_, err := NewDomain(10, 2, 0)
		assert.Error(t, err)
		_, err = NewDomain(4, 8, 0)
		assert.Error(t, err)
		_, err = NewDomain(10, 8, -1)
		assert.Error(t, err)
	}
}

func TestInitialDensity(t *testing.T) {
	d, err := NewDomain(10, 8, 0)
	require.NoError(t, err)
	chi := d.InitialDensity(0.5)
	for k, nt := range d.Nodes.Nodes {
		i, j := d.Nodes.IJ(k)
		if nt == types.NodeRobin {
			assert.Equal(t, 0.5, chi.At(i, j))
		} else {
			assert.Equal(t, 0., chi.At(i, j))
		}
	}
}

func TestSources(t *testing.T) {
	st, err := NewSourceType("")
	require.NoError(t, err)
	assert.Equal(t, PlanarWave, st)
	st, err = NewSourceType(" Spherical")
	require.NoError(t, err)
	assert.Equal(t, SphericalWave, st)
	assert.Equal(t, "Spherical Wave", st.Print())
	_, err = NewSourceType("cylindrical")
	assert.Error(t, err)

	d, err := NewDomain(10, 8, 0)
	require.NoError(t, err)
	fdir := d.DirichletData(PlanarWave, 2)
	for j := 0; j < 8; j++ {
		assert.Equal(t, complex(2, 0), fdir.At(0, j))
		assert.Equal(t, complex(0, 0), fdir.At(1, j))
	}
	fdir = d.DirichletData(SphericalWave, 1)
	for j := 0; j < 8; j++ {
		if j == 4 {
			assert.Equal(t, complex(1, 0), fdir.At(0, j))
		} else {
			assert.Equal(t, complex(0, 0), fdir.At(0, j))
		}
	}
}
