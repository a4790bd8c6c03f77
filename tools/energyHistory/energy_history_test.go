package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "energy.csv")
	require.NoError(t, os.WriteFile(file, []byte("iteration,energy\n0,4.0e+00\n1,2.0e+00\n2,1.5e+00\n"), 0644))
	h, err := readCSV(file)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, h.iteration)
	assert.Equal(t, 1., h.RatioToPrevious(0))
	assert.Equal(t, 0.5, h.RatioToPrevious(1))
	assert.Equal(t, 0.75, h.RatioToPrevious(2))

	require.NoError(t, os.WriteFile(file, []byte("iteration,energy\n"), 0644))
	_, err = readCSV(file)
	assert.Error(t, err)
	require.NoError(t, os.WriteFile(file, []byte("iteration,energy\n0,abc\n"), 0644))
	_, err = readCSV(file)
	assert.Error(t, err)
}
