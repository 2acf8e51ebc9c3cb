package ensemble

import (
	"fmt"

	"github.com/petrichorcode/ensgo/xyz"
)

// fromSnapshot assembles an ensemble around already-copied state.
func fromSnapshot(title string, s snapshot, confs []xyz.Frame, weights *weightSet) *Ensemble {
	return &Ensemble{
		title:   title,
		coords:  s.coords,
		confs:   confs,
		nAtoms:  s.nAtoms,
		weights: weights,
		atoms:   s.atoms,
		indices: s.indices,
		obs:     noopObserver{},
	}
}

// Slice returns a new ensemble holding copies of the conformations in
// [start, stop), taking every step-th one. A step of zero or less means
// one. The reference, weights, atoms and selection are carried over; the
// result shares no coordinate buffers with the receiver.
func (e *Ensemble) Slice(start, stop, step int) (*Ensemble, error) {
	if start < 0 || stop < start {
		return nil, fmt.Errorf("ensemble: invalid slice bounds [%d:%d)", start, stop)
	}
	if step <= 0 {
		step = 1
	}
	indices := make([]int, 0, (stop-start+step-1)/step)
	for i := start; i < stop; i += step {
		indices = append(indices, i)
	}
	sub, err := e.Subset(indices)
	if err != nil {
		return nil, err
	}
	sub.title = fmt.Sprintf("%s (%d:%d:%d)", sub.title, start, stop, step)
	return sub, nil
}

// Subset returns a new ensemble holding copies of the conformations at
// the given indices, in the given order. The reference, weights, atoms
// and selection are carried over; the result shares no coordinate buffers
// with the receiver.
func (e *Ensemble) Subset(indices []int) (*Ensemble, error) {
	s := e.snapshot()
	confs := make([]xyz.Frame, 0, len(indices))
	var perConf [][]float64
	for _, i := range indices {
		if i < 0 || i >= len(s.confs) {
			return nil, fmt.Errorf("ensemble: conformation index %d out of "+
				"range [0, %d)", i, len(s.confs))
		}
		confs = append(confs, s.confs[i])
		if s.weights != nil && s.weights.perConf != nil {
			perConf = append(perConf, s.weights.perConf[i])
		}
	}
	weights := s.weights
	if weights != nil && weights.perConf != nil {
		weights = &weightSet{perConf: perConf}
	}
	return fromSnapshot(s.title, s, confs, weights), nil
}

// Concat concatenates two ensembles with the same atom count into a new
// one. The reference coordinates, weights, atoms and selection are taken
// from the receiver when it has them, falling back to the other operand's.
// Per-conformation weights do not concatenate across ensembles and are
// carried over only when the chosen operand's weights are shared.
func (e *Ensemble) Concat(other *Ensemble) (*Ensemble, error) {
	a := e.snapshot()
	b := other.snapshot()

	if a.nAtoms != b.nAtoms {
		return nil, fmt.Errorf("ensemble: cannot concatenate ensembles "+
			"with %d and %d atoms", a.nAtoms, b.nAtoms)
	}

	out := fromSnapshot(fmt.Sprintf("%s + %s", a.title, b.title), a,
		append(a.confs, b.confs...), nil)
	if out.coords == nil {
		out.coords = b.coords
	}

	pick := a.weights
	if pick == nil {
		pick = b.weights
	}
	if pick != nil && pick.shared != nil {
		out.weights = &weightSet{shared: pick.shared}
	}

	if a.atoms == nil {
		out.atoms = b.atoms
		out.indices = b.indices
	}
	return out, nil
}
