package ensemble

import (
	"fmt"

	"github.com/petrichorcode/ensgo/xyz"
)

// SetCoords sets the ensemble's reference coordinates from the source's
// single frame. The first call fixes the ensemble's atom count; later
// calls must match it.
func (e *Ensemble) SetCoords(src Source) error {
	// Resolve the source before locking: it may be backed by this very
	// ensemble, whose accessors take the read lock.
	if src == nil {
		return fmt.Errorf("ensemble: no coordinate source given")
	}
	frame, err := src.Frame()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setCoords(frame)
}

func (e *Ensemble) setCoords(frame xyz.Frame) error {
	if len(frame) == 0 {
		return fmt.Errorf("ensemble: coordinate source holds an empty frame")
	}
	if e.nAtoms != 0 && len(frame) != e.nAtoms {
		return fmt.Errorf("ensemble: reference frame has %d atoms, "+
			"ensemble has %d", len(frame), e.nAtoms)
	}
	e.coords = frame.Copy()
	e.nAtoms = len(frame)
	return nil
}

// AddCoordset appends the source's coordinate frames to the conformation
// stack. Frames sized to the full atom count are stored as given; when a
// selection is active, frames sized to the selected atom count are
// scattered into full-size frames that take the current reference values
// at unselected positions. Adding another ensemble absorbs its full,
// unselected stack.
func (e *Ensemble) AddCoordset(src Source) error {
	if src == nil {
		return fmt.Errorf("ensemble: no coordinate source given")
	}
	frames, err := src.Frames()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(frames) == 0 {
		return fmt.Errorf("ensemble: coordinate source holds no frames")
	}

	n := len(frames[0])
	if n == 0 {
		return fmt.Errorf("ensemble: coordinate source holds an empty frame")
	}
	for i, frame := range frames {
		if len(frame) != n {
			return fmt.Errorf("ensemble: frame %d has %d atoms, frame 0 "+
				"has %d", i, len(frame), n)
		}
	}
	if e.nAtoms == 0 {
		e.nAtoms = n
	}

	scatter := false
	switch {
	case n == e.nAtoms:
	case e.indices != nil && n == len(e.indices):
		if e.coords == nil {
			return fmt.Errorf("ensemble: cannot expand selected-atom frames " +
				"without reference coordinates")
		}
		scatter = true
	default:
		return fmt.Errorf("ensemble: frames have %d atoms, expected %d "+
			"atoms or %d selected atoms", n, e.nAtoms, e.numSelected())
	}

	for _, frame := range frames {
		var full xyz.Frame
		if scatter {
			full = e.coords.Copy()
			for k, idx := range e.indices {
				full[idx] = frame[k]
			}
		} else {
			full = frame.Copy()
		}
		e.confs = append(e.confs, full)
	}
	e.gen++
	return nil
}

// Coords returns a copy of the reference coordinates, restricted to the
// selection when selected is true. It returns nil when no reference has
// been set.
func (e *Ensemble) Coords(selected bool) xyz.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.coords == nil {
		return nil
	}
	if e.indices == nil || !selected {
		return e.coords.Copy()
	}
	return e.coords.Take(e.indices)
}

// selectedCoords returns the reference restricted to the selection. The
// caller must hold the lock; the result aliases stored state when no
// selection is active and must not be mutated.
func (e *Ensemble) selectedCoords() xyz.Frame {
	if e.indices == nil {
		return e.coords
	}
	return e.coords.Take(e.indices)
}

// Coordsets returns copies of the requested conformation frames,
// restricted to the selection when selected is true. A nil index slice
// requests all frames. It returns nil (with no error) when no
// conformations have been added.
func (e *Ensemble) Coordsets(indices []int, selected bool) ([]xyz.Frame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.confs == nil {
		return nil, nil
	}
	if indices == nil {
		indices = make([]int, len(e.confs))
		for i := range indices {
			indices[i] = i
		}
	}
	frames := make([]xyz.Frame, len(indices))
	for k, i := range indices {
		if i < 0 || i >= len(e.confs) {
			return nil, fmt.Errorf("ensemble: conformation index %d out of "+
				"range [0, %d)", i, len(e.confs))
		}
		if selected && e.indices != nil {
			frames[k] = e.confs[i].Take(e.indices)
		} else {
			frames[k] = e.confs[i].Copy()
		}
	}
	return frames, nil
}

// DelCoordset removes the conformations at the given indices. Removing
// the last conformation also clears the weights, whose leading axis may
// have been per-conformation.
func (e *Ensemble) DelCoordset(indices ...int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.confs) == 0 {
		return ErrNoConfs
	}
	// The per-conformation weight filter below pairs rows with frames.
	if err := e.checkConfWeights(); err != nil {
		return err
	}
	keep := make([]bool, len(e.confs))
	for i := range keep {
		keep[i] = true
	}
	for _, i := range indices {
		if i < 0 || i >= len(e.confs) {
			return fmt.Errorf("ensemble: conformation index %d out of "+
				"range [0, %d)", i, len(e.confs))
		}
		keep[i] = false
	}

	var confs []xyz.Frame
	var perConf [][]float64
	for i, ok := range keep {
		if !ok {
			continue
		}
		confs = append(confs, e.confs[i])
		if e.weights != nil && e.weights.perConf != nil {
			perConf = append(perConf, e.weights.perConf[i])
		}
	}

	if len(confs) == 0 {
		e.confs = nil
		e.weights = nil
	} else {
		e.confs = confs
		if e.weights != nil && e.weights.perConf != nil {
			e.weights = &weightSet{perConf: perConf}
		}
	}
	e.gen++
	return nil
}

// CoordsetIter iterates over per-conformation coordinate copies restricted
// to the selection, in the style of bufio.Scanner. It reads live state:
// two iterators created at different times see the state current at each
// Next call, but a structural mutation between creation and traversal
// stops iteration with ErrModified.
type CoordsetIter struct {
	e     *Ensemble
	gen   uint64
	next  int
	frame xyz.Frame
	err   error
}

// IterCoordsets returns a fresh iterator over the conformation stack.
func (e *Ensemble) IterCoordsets() *CoordsetIter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &CoordsetIter{e: e, gen: e.gen}
}

// Next advances to the next conformation. It returns false when the stack
// is exhausted or when the ensemble was structurally modified, in which
// case Err reports ErrModified.
func (it *CoordsetIter) Next() bool {
	it.e.mu.RLock()
	defer it.e.mu.RUnlock()

	if it.err != nil {
		return false
	}
	if it.gen != it.e.gen {
		it.err = ErrModified
		return false
	}
	if it.next >= len(it.e.confs) {
		return false
	}
	conf := it.e.confs[it.next]
	if it.e.indices != nil {
		it.frame = conf.Take(it.e.indices)
	} else {
		it.frame = conf.Copy()
	}
	it.next++
	return true
}

// Frame returns the frame read by the last successful Next.
func (it *CoordsetIter) Frame() xyz.Frame {
	return it.frame
}

// Err returns the error that stopped iteration, if any.
func (it *CoordsetIter) Err() error {
	return it.err
}
