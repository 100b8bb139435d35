package components

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/contagion/population"
)

func TestUnitSquareRange(t *testing.T) {
	var prev Position
	repeats := 0
	for i := 0; i < 10000; i++ {
		p := UnitSquare()
		if p.X < 0 || p.X >= 1 || p.Y < 0 || p.Y >= 1 {
			t.Fatalf("draw %d out of range: %+v", i, p)
		}
		if i > 0 && p == prev {
			repeats++
		}
		prev = p
	}

	// Consecutive equal draws are possible but should be vanishingly rare.
	if repeats > 1 {
		t.Errorf("%d consecutive repeats in 10000 draws", repeats)
	}
}

func TestSamplerReproducible(t *testing.T) {
	a := NewUnitSquareSampler(rand.NewPCG(1, 2))
	b := NewUnitSquareSampler(rand.NewPCG(1, 2))

	for i := 0; i < 100; i++ {
		pa, pb := a.Sample(), b.Sample()
		if pa != pb {
			t.Fatalf("draw %d differs: %+v vs %+v", i, pa, pb)
		}
		if pa.X < 0 || pa.X >= 1 || pa.Y < 0 || pa.Y >= 1 {
			t.Fatalf("draw %d out of range: %+v", i, pa)
		}
	}
}

func TestPositionPatchRoundTrip(t *testing.T) {
	ind := population.MustNewIndividual[int](Position{X: 0.25, Y: 0.75}.Patch())

	pos, ok := PositionOf(ind)
	if !ok {
		t.Fatal("PositionOf should find x and y")
	}
	if pos != (Position{X: 0.25, Y: 0.75}) {
		t.Errorf("pos = %+v", pos)
	}

	if _, ok := PositionOf(population.MustNewIndividual[int](nil)); ok {
		t.Error("PositionOf should fail without coordinates")
	}
}
