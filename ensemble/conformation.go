package ensemble

import (
	"fmt"

	"github.com/petrichorcode/ensgo/rmsd"
	"github.com/petrichorcode/ensgo/xyz"
)

// Conformation is a lightweight handle identifying one coordinate set in
// an ensemble. It holds no coordinates of its own and is invalidated by
// any structural mutation of the ensemble it points into.
type Conformation struct {
	e     *Ensemble
	index int
	gen   uint64
}

// Conformation returns a handle for the coordinate set at the given index.
func (e *Ensemble) Conformation(index int) (*Conformation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.confs) == 0 {
		return nil, ErrNoConfs
	}
	if index < 0 || index >= len(e.confs) {
		return nil, fmt.Errorf("ensemble: conformation index %d out of "+
			"range [0, %d)", index, len(e.confs))
	}
	return &Conformation{e: e, index: index, gen: e.gen}, nil
}

// Index returns the conformation's position in the ensemble.
func (c *Conformation) Index() int {
	return c.index
}

// Ensemble returns the ensemble the handle points into.
func (c *Conformation) Ensemble() *Ensemble {
	return c.e
}

func (c *Conformation) String() string {
	return fmt.Sprintf("<Conformation: %d from %s>", c.index, c.e.Title())
}

func (c *Conformation) check() error {
	if c.gen != c.e.gen {
		return ErrModified
	}
	return nil
}

// Coords returns a copy of the conformation's coordinates, restricted to
// the selection when selected is true.
func (c *Conformation) Coords(selected bool) (xyz.Frame, error) {
	c.e.mu.RLock()
	defer c.e.mu.RUnlock()
	if err := c.check(); err != nil {
		return nil, err
	}
	conf := c.e.confs[c.index]
	if selected && c.e.indices != nil {
		return conf.Take(c.e.indices), nil
	}
	return conf.Copy(), nil
}

// Weights returns a copy of the conformation's weight vector, restricted
// to the selection when selected is true, or nil when no weights are set.
func (c *Conformation) Weights(selected bool) ([]float64, error) {
	c.e.mu.RLock()
	defer c.e.mu.RUnlock()
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.e.weights == nil {
		return nil, nil
	}
	if err := c.e.checkConfWeights(); err != nil {
		return nil, err
	}
	w := c.e.weights.shared
	if c.e.weights.perConf != nil {
		w = c.e.weights.perConf[c.index]
	}
	return c.e.restrictWeights(w, selected), nil
}

// RMSD computes the (weighted, when weights are set) RMSD between the
// conformation and the ensemble's reference, restricted to the selection.
func (c *Conformation) RMSD() (float64, error) {
	c.e.mu.RLock()
	defer c.e.mu.RUnlock()
	if err := c.check(); err != nil {
		return 0, err
	}
	if c.e.coords == nil {
		return 0, ErrNoCoords
	}
	if err := c.e.checkConfWeights(); err != nil {
		return 0, err
	}
	tar := c.e.selectedCoords()
	mob := c.e.confs[c.index]
	if c.e.indices != nil {
		mob = mob.Take(c.e.indices)
	}
	w := c.e.confWeights(c.index, c.e.indices)
	return rmsd.Deviation(mob, tar, w), nil
}

// ConfIter iterates over conformation handles in index order, in the
// style of bufio.Scanner. A structural mutation of the ensemble stops
// iteration with ErrModified.
type ConfIter struct {
	e    *Ensemble
	gen  uint64
	next int
	conf *Conformation
	err  error
}

// Conformations returns a fresh iterator over the ensemble's
// conformation handles.
func (e *Ensemble) Conformations() *ConfIter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &ConfIter{e: e, gen: e.gen}
}

// Next advances to the next conformation handle. It returns false when
// exhausted or when the ensemble was structurally modified, in which case
// Err reports ErrModified.
func (it *ConfIter) Next() bool {
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
	it.conf = &Conformation{e: it.e, index: it.next, gen: it.gen}
	it.next++
	return true
}

// Conformation returns the handle produced by the last successful Next.
func (it *ConfIter) Conformation() *Conformation {
	return it.conf
}

// Err returns the error that stopped iteration, if any.
func (it *ConfIter) Err() error {
	return it.err
}
