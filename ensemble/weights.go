package ensemble

import "fmt"

// weightSet holds least-squares weights in one of two shapes: a single
// per-atom vector shared by every conformation, or one vector per
// conformation. Exactly one of the two fields is non-nil.
type weightSet struct {
	shared  []float64   // length nAtoms
	perConf [][]float64 // one length-nAtoms row per conformation
}

func checkWeightVector(w []float64) error {
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("ensemble: weights must be non-negative "+
				"(weight %d is %g)", i, v)
		}
	}
	return nil
}

// SetWeights sets per-atom weights shared by all conformations. The slice
// must have one entry per atom, or one entry per selected atom when a
// selection is active; in the latter case the values are scattered into a
// full-size vector whose unselected entries are one (or taken from the
// previously set shared weights).
func (e *Ensemble) SetWeights(w []float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nAtoms == 0 {
		return fmt.Errorf("ensemble: first set reference coordinates")
	}
	if err := checkWeightVector(w); err != nil {
		return err
	}

	switch {
	case len(w) == e.nAtoms:
		cp := make([]float64, len(w))
		copy(cp, w)
		e.weights = &weightSet{shared: cp}
		return nil
	case e.indices != nil && len(w) == len(e.indices):
		if e.weights != nil && e.weights.perConf != nil {
			return fmt.Errorf("ensemble: cannot scatter selected-atom "+
				"weights over per-conformation weights")
		}
		full := make([]float64, e.nAtoms)
		if e.weights != nil {
			copy(full, e.weights.shared)
		} else {
			for i := range full {
				full[i] = 1
			}
		}
		for k, idx := range e.indices {
			full[idx] = w[k]
		}
		e.weights = &weightSet{shared: full}
		return nil
	}
	return fmt.Errorf("ensemble: weight array has %d entries, expected %d "+
		"atoms or %d selected atoms", len(w), e.nAtoms, e.numSelected())
}

// SetConfWeights sets one weight vector per conformation. There must be
// exactly one row per conformation, each sized like the argument of
// SetWeights (full or selected atom count, selected rows are scattered
// into ones).
func (e *Ensemble) SetConfWeights(w [][]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nAtoms == 0 {
		return fmt.Errorf("ensemble: first set reference coordinates")
	}
	if len(e.confs) == 0 {
		return ErrNoConfs
	}
	if len(w) != len(e.confs) {
		return fmt.Errorf("ensemble: got weights for %d conformations, "+
			"ensemble has %d", len(w), len(e.confs))
	}

	rows := make([][]float64, len(w))
	for m, row := range w {
		if err := checkWeightVector(row); err != nil {
			return err
		}
		switch {
		case len(row) == e.nAtoms:
			cp := make([]float64, len(row))
			copy(cp, row)
			rows[m] = cp
		case e.indices != nil && len(row) == len(e.indices):
			full := make([]float64, e.nAtoms)
			for i := range full {
				full[i] = 1
			}
			for k, idx := range e.indices {
				full[idx] = row[k]
			}
			rows[m] = full
		default:
			return fmt.Errorf("ensemble: weight row %d has %d entries, "+
				"expected %d atoms or %d selected atoms",
				m, len(row), e.nAtoms, e.numSelected())
		}
	}
	e.weights = &weightSet{perConf: rows}
	return nil
}

// Weights returns a copy of the shared per-atom weights, restricted to the
// selection when selected is true. It returns nil when no weights are set
// or when the weights vary per conformation (see ConfWeights).
func (e *Ensemble) Weights(selected bool) []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.weights == nil || e.weights.shared == nil {
		return nil
	}
	return e.restrictWeights(e.weights.shared, selected)
}

// ConfWeights returns a copy of the per-conformation weights, restricted
// to the selection when selected is true. It returns nil when no weights
// are set or when a single shared vector is in use (see Weights).
func (e *Ensemble) ConfWeights(selected bool) [][]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.weights == nil || e.weights.perConf == nil {
		return nil
	}
	rows := make([][]float64, len(e.weights.perConf))
	for m, row := range e.weights.perConf {
		rows[m] = e.restrictWeights(row, selected)
	}
	return rows
}

func (e *Ensemble) restrictWeights(w []float64, selected bool) []float64 {
	if e.indices == nil || !selected {
		cp := make([]float64, len(w))
		copy(cp, w)
		return cp
	}
	cp := make([]float64, len(e.indices))
	for k, idx := range e.indices {
		cp[k] = w[idx]
	}
	return cp
}

// checkConfWeights verifies that per-conformation weight rows cover the
// current conformation stack. Weights may be installed before or after
// the stack grows, so every operation that pairs a row with a
// conformation must call this first. Caller holds the lock.
func (e *Ensemble) checkConfWeights() error {
	if e.weights != nil && e.weights.perConf != nil &&
		len(e.weights.perConf) != len(e.confs) {
		return fmt.Errorf("ensemble: per-conformation weights cover %d "+
			"conformations, ensemble has %d",
			len(e.weights.perConf), len(e.confs))
	}
	return nil
}

// confWeights returns the weight vector for conformation i restricted to
// the given indices (nil means all atoms), or nil when no weights are set.
// The caller must hold the lock. The result may alias stored weights only
// when indices is nil; callers must not mutate it.
func (e *Ensemble) confWeights(i int, indices []int) []float64 {
	if e.weights == nil {
		return nil
	}
	w := e.weights.shared
	if e.weights.perConf != nil {
		w = e.weights.perConf[i]
	}
	if indices == nil {
		return w
	}
	sub := make([]float64, len(indices))
	for k, idx := range indices {
		sub[k] = w[idx]
	}
	return sub
}

// sumWeights returns the per-atom sum of weights over conformations for
// per-conformation weights, or the shared vector scaled by the number of
// conformations. Nil when no weights are set. Caller holds the lock.
func (e *Ensemble) sumWeights() []float64 {
	if e.weights == nil {
		return nil
	}
	sum := make([]float64, e.nAtoms)
	if e.weights.perConf != nil {
		for _, row := range e.weights.perConf {
			for i, v := range row {
				sum[i] += v
			}
		}
		return sum
	}
	n := float64(len(e.confs))
	for i, v := range e.weights.shared {
		sum[i] = v * n
	}
	return sum
}
