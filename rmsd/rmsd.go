package rmsd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/petrichorcode/ensgo/xyz"
)

// Deviation computes the root-mean-square deviation between two frames as
// they are, without any alignment. When a weight slice is given, the
// standard weighted formula sqrt(sum(w*d^2) / sum(w)) is used; a nil slice
// means uniform weights.
//
// Deviation panics if the frames (or the weights) differ in length, since
// comparing mismatched structures is a programming error.
func Deviation(f1, f2 xyz.Frame, w []float64) float64 {
	if len(f1) != len(f2) {
		panic(fmt.Sprintf("Computing the RMSD of two frames requires that "+
			"they have equal length. But the lengths of the two frames "+
			"provided are %d and %d.", len(f1), len(f2)))
	}
	if w != nil && len(w) != len(f1) {
		panic(fmt.Sprintf("Weighted RMSD requires one weight per atom, "+
			"but there are %d weights for %d atoms.", len(w), len(f1)))
	}

	var sqsum, wsum float64
	for i := range f1 {
		d := f1[i].Sub(f2[i])
		sq := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
		if w == nil {
			sqsum += sq
			wsum++
		} else {
			sqsum += sq * w[i]
			wsum += w[i]
		}
	}
	return math.Sqrt(sqsum / wsum)
}

// RMSD computes the minimal root-mean-square deviation between two frames:
// the mobile frame f1 is optimally superposed onto f2 before the deviation
// is measured. Like Deviation, it panics on mismatched lengths.
func RMSD(f1, f2 xyz.Frame) float64 {
	rot, trans, err := Superpose(f1, f2, nil)
	if err != nil {
		panic(err)
	}
	moved := f1.Copy()
	moved.Transform(rot, trans)
	return Deviation(moved, f2, nil)
}

// Superpose computes the rigid transform (rotation and translation, applied
// as p' = p*R + t) that minimizes the weighted squared deviation of the
// mobile frame from the target frame. A nil weight slice means uniform
// weights.
func Superpose(mob, tar xyz.Frame, w []float64) (xyz.Rotation, xyz.Coords, error) {
	if len(mob) != len(tar) {
		return xyz.Identity, xyz.Coords{}, fmt.Errorf(
			"rmsd: mobile frame has %d atoms but target has %d",
			len(mob), len(tar))
	}
	mobc, mcom := mob.Centered(w)
	tarc, tcom := tar.Centered(w)
	rot, err := RotationCentered(mobc, tarc, w)
	if err != nil {
		return xyz.Identity, xyz.Coords{}, err
	}
	trans := tcom.Sub(rot.Apply(mcom))
	return rot, trans, nil
}

// RotationCentered computes the optimal rotation mapping a centered mobile
// frame onto a centered target frame. Both frames must already have their
// (weighted) centroids at the origin; Superpose takes care of that for
// frames in arbitrary positions.
//
// The rotation is found from the SVD of the weighted cross-covariance
// matrix C = sum_i w_i^2 * tar_i (x) mob_i = U*S*V^T as R = V*D*U^T, where
// D is the identity except that its last diagonal entry is the sign of
// det(C) (computed as sign(det(U)*det(V)), which survives singular C).
// The correction guarantees a proper rotation (det(R) = +1) even when the
// best orthogonal map would be a reflection. Degenerate inputs (coplanar,
// collinear) are not special-cased: the SVD produces arbitrary but valid
// orthogonal factors for vanishing singular values.
func RotationCentered(mob, tar xyz.Frame, w []float64) (xyz.Rotation, error) {
	if len(mob) != len(tar) {
		return xyz.Identity, fmt.Errorf(
			"rmsd: mobile frame has %d atoms but target has %d",
			len(mob), len(tar))
	}

	cov := covariance(tar, mob, w)
	c := mat.NewDense(3, 3, cov[:])

	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return xyz.Identity, fmt.Errorf("rmsd: SVD of covariance matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// sign(det(U)*det(V)) equals sign(det(C)) whenever C is nonsingular,
	// and stays well defined for rank-deficient (collinear, coplanar)
	// inputs where det(C) is exactly zero.
	d := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		d = -1.0
	}

	// R = V * diag(1, 1, d) * U^T.
	var rot xyz.Rotation
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			rot[a][b] = v.At(a, 0)*u.At(b, 0) +
				v.At(a, 1)*u.At(b, 1) +
				d*v.At(a, 2)*u.At(b, 2)
		}
	}
	return rot, nil
}

// covariance builds the 3x3 cross-covariance matrix of two centered frames
// in row-major order: cov[a*3+b] = sum_i w_i^2 * tar_i[a] * mob_i[b].
func covariance(tar, mob xyz.Frame, w []float64) (cov [9]float64) {
	for i := range tar {
		wi := 1.0
		if w != nil {
			wi = w[i] * w[i]
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				cov[a*3+b] += wi * tar[i][a] * mob[i][b]
			}
		}
	}
	return cov
}
