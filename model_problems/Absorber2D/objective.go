package Absorber2D

import (
	"gonum.org/v1/gonum/mat"
)

/*
	Energy evaluates the objective

		J(u) = sum |u_ij|^2 h^2 + Mu1 * (Nr*Nc*h^2 - V0)

	where the sum runs over rows 1..Nr-2 and columns 1..Nc-2, the outer ring of the
	grid carries the boundary data and is excluded.
*/
func Energy(u *mat.CDense, spacestep, mu1, V0 float64) (ene float64) {
	var (
		Nr, Nc = u.Dims()
		h2     = spacestep * spacestep
	)
	for i := 1; i < Nr-1; i++ {
		for j := 1; j < Nc-1; j++ {
			v := u.At(i, j)
			ene += (real(v)*real(v) + imag(v)*imag(v)) * h2
		}
	}
	ene += mu1 * (float64(Nr*Nc)*h2 - V0)
	return
}
