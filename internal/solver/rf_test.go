package solver

import (
	"math"
	"testing"
)

func TestReflectionCoefficient(t *testing.T) {
	if got := ReflectionCoefficient(complex(50, 0), 50); got != 0 {
		t.Fatalf("matched load rho = %v, want 0", got)
	}
	if got := ReflectionCoefficient(0, 50); got != -1 {
		t.Fatalf("short circuit rho = %v, want -1", got)
	}

	got := ReflectionCoefficient(complex(100, 0), 50)
	if math.Abs(real(got)-1.0/3.0) > 1e-12 || imag(got) != 0 {
		t.Fatalf("rho(100 ohm) = %v, want 1/3", got)
	}
}

func TestSWR(t *testing.T) {
	if got := SWR(complex(50, 0), 50); got != 1 {
		t.Fatalf("SWR(50 ohm) = %v, want 1", got)
	}
	if got := SWR(complex(100, 0), 50); math.Abs(got-2) > 1e-9 {
		t.Fatalf("SWR(100 ohm) = %v, want 2", got)
	}
	if got := SWR(complex(25, 0), 50); math.Abs(got-2) > 1e-9 {
		t.Fatalf("SWR(25 ohm) = %v, want 2", got)
	}
	if got := SWR(0, 50); !math.IsInf(got, 1) {
		t.Fatalf("SWR(short) = %v, want +Inf", got)
	}
	// A pure reactance reflects everything.
	if got := SWR(complex(0, 50), 50); !math.IsInf(got, 1) {
		t.Fatalf("SWR(j50 ohm) = %v, want +Inf", got)
	}
}
