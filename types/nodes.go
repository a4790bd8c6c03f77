package types

import (
	"strings"
)

// NodeType labels a grid node of the discretized domain
type NodeType uint8

const (
	NodeInterior   NodeType = iota
	NodeComplement          // Outside of the computational domain
	NodeDirichlet
	NodeNeumann
	NodeRobin // Wall node carrying the absorbing material
)

func (nt NodeType) String() string {
	switch nt {
	case NodeInterior:
		return "Interior"
	case NodeComplement:
		return "Complement"
	case NodeDirichlet:
		return "Dirichlet"
	case NodeNeumann:
		return "Neumann"
	case NodeRobin:
		return "Robin"
	}
	return "Unknown"
}

// NodeMap is a row-major Nr x Nc grid of node labels
type NodeMap struct {
	Nr, Nc int
	Nodes  []NodeType
}

func NewNodeMap(Nr, Nc int, fill NodeType) (nm NodeMap) {
	nm = NodeMap{
		Nr:    Nr,
		Nc:    Nc,
		Nodes: make([]NodeType, Nr*Nc),
	}
	if fill != NodeInterior {
		for i := range nm.Nodes {
			nm.Nodes[i] = fill
		}
	}
	return
}

func (nm NodeMap) Dims() (r, c int)              { return nm.Nr, nm.Nc }
func (nm NodeMap) At(i, j int) NodeType          { return nm.Nodes[j+nm.Nc*i] }
func (nm NodeMap) Set(i, j int, nt NodeType)     { nm.Nodes[j+nm.Nc*i] = nt }
func (nm NodeMap) InBounds(i, j int) bool        { return i >= 0 && i < nm.Nr && j >= 0 && j < nm.Nc }
func (nm NodeMap) Index(i, j int) (ind int)      { return j + nm.Nc*i }
func (nm NodeMap) IJ(ind int) (i, j int)         { return ind / nm.Nc, ind % nm.Nc }
func (nm NodeMap) Is(i, j int, nt NodeType) bool { return nm.At(i, j) == nt }

// Count returns the number of nodes labeled nt
func (nm NodeMap) Count(nt NodeType) (n int) {
	for _, val := range nm.Nodes {
		if val == nt {
			n++
		}
	}
	return
}

// Neighbors returns the in-bounds 4-neighbors of (i,j) as flat indices
func (nm NodeMap) Neighbors(i, j int) (nb []int) {
	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, off := range offsets {
		ii, jj := i+off[0], j+off[1]
		if nm.InBounds(ii, jj) {
			nb = append(nb, nm.Index(ii, jj))
		}
	}
	return
}

func (nm NodeMap) String() string {
	var sb strings.Builder
	glyph := map[NodeType]byte{
		NodeInterior:   '.',
		NodeComplement: ' ',
		NodeDirichlet:  'D',
		NodeNeumann:    'N',
		NodeRobin:      'R',
	}
	for i := 0; i < nm.Nr; i++ {
		for j := 0; j < nm.Nc; j++ {
			sb.WriteByte(glyph[nm.At(i, j)])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
