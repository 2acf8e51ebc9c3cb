// Package xyz provides the coordinate primitives shared by the ensemble
// machinery: single atomic positions, frames (one position per atom) and
// 3x3 rotation matrices.
package xyz

// Coords is a single atomic position.
type Coords [3]float64

// Add returns the componentwise sum of c and other.
func (c Coords) Add(other Coords) Coords {
	return Coords{c[0] + other[0], c[1] + other[1], c[2] + other[2]}
}

// Sub returns the componentwise difference of c and other.
func (c Coords) Sub(other Coords) Coords {
	return Coords{c[0] - other[0], c[1] - other[1], c[2] - other[2]}
}

// Frame is one coordinate snapshot: one position per atom, in atom order.
type Frame []Coords

// Copy returns a frame backed by freshly allocated storage.
func (f Frame) Copy() Frame {
	cp := make(Frame, len(f))
	copy(cp, f)
	return cp
}

// Take returns a new frame containing the positions at the given indices,
// in the given order. The result never aliases f.
func (f Frame) Take(indices []int) Frame {
	sub := make(Frame, len(indices))
	for i, idx := range indices {
		sub[i] = f[idx]
	}
	return sub
}

// Centroid computes the unweighted mean position of the frame.
func (f Frame) Centroid() Coords {
	var c Coords
	for _, p := range f {
		c[0] += p[0]
		c[1] += p[1]
		c[2] += p[2]
	}
	n := float64(len(f))
	return Coords{c[0] / n, c[1] / n, c[2] / n}
}

// WeightedCentroid computes the weighted mean position of the frame.
// The weights must have one entry per atom; a nil weight slice is
// equivalent to uniform weights.
func (f Frame) WeightedCentroid(w []float64) Coords {
	if w == nil {
		return f.Centroid()
	}
	var c Coords
	var sum float64
	for i, p := range f {
		c[0] += p[0] * w[i]
		c[1] += p[1] * w[i]
		c[2] += p[2] * w[i]
		sum += w[i]
	}
	return Coords{c[0] / sum, c[1] / sum, c[2] / sum}
}

// Translate shifts every position in the frame by delta, in place.
func (f Frame) Translate(delta Coords) {
	for i := range f {
		f[i][0] += delta[0]
		f[i][1] += delta[1]
		f[i][2] += delta[2]
	}
}

// Centered returns a copy of the frame translated so that its weighted
// centroid sits at the origin, along with the centroid that was removed.
func (f Frame) Centered(w []float64) (Frame, Coords) {
	com := f.WeightedCentroid(w)
	cp := f.Copy()
	cp.Translate(Coords{-com[0], -com[1], -com[2]})
	return cp, com
}

// Rotation is a 3x3 rotation matrix. Positions transform as row vectors:
// p' = p * R.
type Rotation [3][3]float64

// Identity is the do-nothing rotation.
var Identity = Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Apply rotates a single position.
func (r Rotation) Apply(p Coords) Coords {
	return Coords{
		p[0]*r[0][0] + p[1]*r[1][0] + p[2]*r[2][0],
		p[0]*r[0][1] + p[1]*r[1][1] + p[2]*r[2][1],
		p[0]*r[0][2] + p[1]*r[1][2] + p[2]*r[2][2],
	}
}

// Det computes the determinant of the rotation matrix. Proper rotations
// have determinant +1; reflections have determinant -1.
func (r Rotation) Det() float64 {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// Rotate applies the rotation to every position in the frame, in place.
func (f Frame) Rotate(r Rotation) {
	for i := range f {
		f[i] = r.Apply(f[i])
	}
}

// Transform applies the rigid transform p' = p*R + t to every position in
// the frame, in place.
func (f Frame) Transform(r Rotation, t Coords) {
	for i := range f {
		p := r.Apply(f[i])
		f[i] = p.Add(t)
	}
}
