package rmsd

import (
	"math"
	"math/rand"
	"testing"

	matrix "github.com/skelterjohn/go.matrix"

	"github.com/petrichorcode/ensgo/xyz"
)

var rng = rand.New(rand.NewSource(0x5eed))

// TestKnownRMSD pins the minimal RMSD of two seven-atom fragments. The
// fragments and the expected value come from comparing two helix pieces
// of the same protein.
func TestKnownRMSD(t *testing.T) {
	f1 := xyz.Frame{
		{-2.803, -15.373, 24.556},
		{0.893, -16.062, 25.147},
		{1.368, -12.371, 25.885},
		{-1.651, -12.153, 28.177},
		{-0.440, -15.218, 30.068},
		{2.551, -13.273, 31.372},
		{0.105, -11.330, 33.567},
	}
	f2 := xyz.Frame{
		{-14.739, -18.673, 15.040},
		{-12.473, -15.810, 16.074},
		{-14.802, -13.307, 14.408},
		{-17.782, -14.852, 16.171},
		{-16.124, -14.617, 19.584},
		{-15.029, -11.037, 18.902},
		{-18.577, -10.001, 17.996},
	}
	got := RMSD(f1, f2)
	if math.Abs(got-0.719106) > 1e-5 {
		t.Fatalf("RMSD of helix fragments is 0.719106, but we computed %f", got)
	}
}

// TestCovariance checks our unrolled cross-covariance against the full
// matrix product computed with go.matrix.
func TestCovariance(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		n := 3 + rng.Intn(20)
		tar, mob := randFrame(n), randFrame(n)

		cov := covariance(tar, mob, nil)

		x := make([]float64, 3*n)
		y := make([]float64, 3*n)
		for i := 0; i < n; i++ {
			for a := 0; a < 3; a++ {
				x[a*n+i] = tar[i][a]
				y[a*n+i] = mob[i][a]
			}
		}
		mx := matrix.MakeDenseMatrix(x, 3, n)
		my := matrix.MakeDenseMatrix(y, 3, n)
		want, err := mx.TimesDense(my.Transpose())
		if err != nil {
			t.Fatal(err)
		}

		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				if math.Abs(cov[a*3+b]-want.Get(a, b)) > 1e-9 {
					t.Fatalf("covariance[%d][%d] = %f, go.matrix says %f",
						a, b, cov[a*3+b], want.Get(a, b))
				}
			}
		}
	}
}

// TestRotationProper verifies det(R) = +1 for random, reflected, and
// degenerate (collinear and coplanar) configurations, with and without
// weights.
func TestRotationProper(t *testing.T) {
	orig, refl := mirrored(randFrame(12))
	cases := []struct {
		name string
		mob  xyz.Frame
		tar  xyz.Frame
	}{
		{"random", randFrame(12), randFrame(12)},
		{"reflected", orig, refl},
		{"collinear", xyz.Frame{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
			xyz.Frame{{0, 0, 0}, {0, 1, 0}, {0, 2, 0}, {0, 3, 0}}},
		{"coplanar", xyz.Frame{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
			xyz.Frame{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1}}},
	}
	weights := [][]float64{nil, nil, nil, nil}
	for i := range cases {
		w := make([]float64, len(cases[i].mob))
		for k := range w {
			w[k] = rng.Float64() + 0.1
		}
		weights[i] = w
	}

	for i, c := range cases {
		for _, w := range [][]float64{nil, weights[i]} {
			mobc, _ := c.mob.Centered(w)
			tarc, _ := c.tar.Centered(w)
			rot, err := RotationCentered(mobc, tarc, w)
			if err != nil {
				t.Fatalf("%s: %s", c.name, err)
			}
			if math.Abs(rot.Det()-1) > 1e-9 {
				t.Fatalf("%s (weighted=%v): det(R) = %f, want +1",
					c.name, w != nil, rot.Det())
			}
		}
	}
}

// TestSuperposeRecovers applies a known rigid transform to a frame and
// checks that Superpose undoes it exactly.
func TestSuperposeRecovers(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		tar := randFrame(10)
		mob := tar.Copy()
		mob.Transform(randRotation(), xyz.Coords{
			rng.NormFloat64() * 10,
			rng.NormFloat64() * 10,
			rng.NormFloat64() * 10,
		})

		rot, trans, err := Superpose(mob, tar, nil)
		if err != nil {
			t.Fatal(err)
		}
		moved := mob.Copy()
		moved.Transform(rot, trans)
		if dev := Deviation(moved, tar, nil); dev > 1e-9 {
			t.Fatalf("trial %d: residual deviation %g after recovering a "+
				"rigid transform", trial, dev)
		}
	}
}

// TestWeightedCentroidInvariance: after a weighted superposition, the
// weighted centroid of the moved frame matches the target's.
func TestWeightedCentroidInvariance(t *testing.T) {
	tar, mob := randFrame(15), randFrame(15)
	w := make([]float64, len(tar))
	for i := range w {
		w[i] = rng.Float64() + 0.1
	}

	rot, trans, err := Superpose(mob, tar, w)
	if err != nil {
		t.Fatal(err)
	}
	moved := mob.Copy()
	moved.Transform(rot, trans)

	got := moved.WeightedCentroid(w)
	want := tar.WeightedCentroid(w)
	for k := 0; k < 3; k++ {
		if math.Abs(got[k]-want[k]) > 1e-9 {
			t.Fatalf("weighted centroid %v after superposition, want %v",
				got, want)
		}
	}
}

func TestDeviationWeighted(t *testing.T) {
	f1 := xyz.Frame{{0, 0, 0}, {0, 0, 0}}
	f2 := xyz.Frame{{1, 0, 0}, {3, 0, 0}}
	// sqrt((1*1 + 3*9) / 4) = sqrt(7)
	got := Deviation(f1, f2, []float64{1, 3})
	if math.Abs(got-math.Sqrt(7)) > 1e-12 {
		t.Fatalf("weighted deviation = %f, want sqrt(7)", got)
	}
}

func randFrame(n int) xyz.Frame {
	f := make(xyz.Frame, n)
	for i := range f {
		f[i] = xyz.Coords{
			rng.NormFloat64() * 5,
			rng.NormFloat64() * 5,
			rng.NormFloat64() * 5,
		}
	}
	return f
}

// mirrored returns a frame and its reflection through the xy-plane, a
// pair whose best orthogonal map is improper without the determinant
// correction.
func mirrored(f xyz.Frame) (xyz.Frame, xyz.Frame) {
	m := f.Copy()
	for i := range m {
		m[i][2] = -m[i][2]
	}
	return f, m
}

// randRotation composes rotations about the z and y axes by random angles.
func randRotation() xyz.Rotation {
	a, b := rng.Float64()*2*math.Pi, rng.Float64()*2*math.Pi
	sa, ca := math.Sin(a), math.Cos(a)
	sb, cb := math.Sin(b), math.Cos(b)
	rz := xyz.Rotation{{ca, sa, 0}, {-sa, ca, 0}, {0, 0, 1}}
	ry := xyz.Rotation{{cb, 0, -sb}, {0, 1, 0}, {sb, 0, cb}}

	var out xyz.Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += rz[i][k] * ry[k][j]
			}
		}
	}
	return out
}
