package solver

import (
	"math"
	"math/cmplx"
)

// ReflectionCoefficient returns the complex voltage reflection coefficient
// of impedance z against a real reference impedance z0.
func ReflectionCoefficient(z complex128, z0 float64) complex128 {
	return (z - complex(z0, 0)) / (z + complex(z0, 0))
}

// SWR returns the voltage standing wave ratio of impedance z against z0.
// Total reflection yields +Inf.
func SWR(z complex128, z0 float64) float64 {
	rho := cmplx.Abs(ReflectionCoefficient(z, z0))
	if rho >= 1 {
		return math.Inf(1)
	}
	return (1 + rho) / (1 - rho)
}
