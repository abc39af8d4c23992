package matrix

import (
	"math"
	"testing"
)

func TestSolve2x2(t *testing.T) {
	m, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Destroy()
	m.SetupElements()

	// 2a + b = 3, a + 3b = 5
	m.AddElement(1, 1, 2)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddElement(2, 2, 3)
	m.AddRHS(1, 3)
	m.AddRHS(2, 5)

	if err := m.Solve(); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	sol := m.Solution()
	if math.Abs(sol[1]-0.8) > 1e-12 {
		t.Errorf("x1 = %.15f, want 0.8", sol[1])
	}
	if math.Abs(sol[2]-1.4) > 1e-12 {
		t.Errorf("x2 = %.15f, want 1.4", sol[2])
	}
}

func TestRestampAfterFactor(t *testing.T) {
	m, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Destroy()
	m.SetupElements()

	// Newton-style loop: every iteration restamps a factored, possibly
	// reordered matrix. GetElement must keep working across Factor calls.
	for i := 1; i <= 5; i++ {
		d := float64(i)
		m.Clear()
		m.AddElement(1, 1, 2*d)
		m.AddElement(1, 2, d)
		m.AddElement(2, 1, d)
		m.AddElement(2, 2, 3*d)
		m.AddRHS(1, 3*d)
		m.AddRHS(2, 5*d)

		if err := m.Solve(); err != nil {
			t.Fatalf("iteration %d: Solve failed: %v", i, err)
		}

		sol := m.Solution()
		if math.Abs(sol[1]-0.8) > 1e-12 || math.Abs(sol[2]-1.4) > 1e-12 {
			t.Fatalf("iteration %d: solution = (%.15f, %.15f), want (0.8, 1.4)",
				i, sol[1], sol[2])
		}
	}
}

func TestClearAndResolve(t *testing.T) {
	m, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Destroy()
	m.SetupElements()

	stamp := func(d float64) {
		m.Clear()
		m.AddElement(1, 1, d)
		m.AddElement(2, 2, d)
		m.AddRHS(1, d)
		m.AddRHS(2, 2*d)
	}

	// Identity-scaled system twice with different values; Clear must drop
	// the previous stamps entirely.
	stamp(2)
	if err := m.Solve(); err != nil {
		t.Fatalf("first Solve failed: %v", err)
	}

	stamp(4)
	if err := m.Solve(); err != nil {
		t.Fatalf("second Solve failed: %v", err)
	}

	sol := m.Solution()
	if math.Abs(sol[1]-1.0) > 1e-12 || math.Abs(sol[2]-2.0) > 1e-12 {
		t.Errorf("solution = (%.15f, %.15f), want (1, 2)", sol[1], sol[2])
	}
}
