package ensemble

import "fmt"

// Atoms is the narrow contract an ensemble needs from an external atom
// group: how many atoms it has. Richer collaborators may additionally
// implement Subset (an ordered subset of a parent group), DummyCounter
// (placeholder atoms), and the metadata accessors below.
type Atoms interface {
	NumAtoms() int
}

// Subset is an ordered subset of a larger atom group. Indices index into
// the parent group and must be strictly increasing: a selection preserves
// the original atom order, reordering is rejected.
type Subset interface {
	Atoms
	Parent() Atoms
	Indices() []int
}

// DummyCounter is implemented by atom groups that may contain placeholder
// ("dummy") atoms. Such groups cannot define a selection.
type DummyCounter interface {
	NumDummies() int
}

// ChainIdentifier exposes per-atom chain identifiers.
type ChainIdentifier interface {
	ChainIDs() []byte
}

// ResidueNumberer exposes per-atom residue sequence numbers.
type ResidueNumberer interface {
	ResidueNumbers() []int
}

// SetAtoms associates an atom group with the ensemble or restricts
// calculations to a subset of its atoms. Passing nil clears both.
//
// If the ensemble has no atoms yet, the group's atom count becomes the
// ensemble's. A group matching the full atom count is stored without a
// selection. A smaller group must be a Subset whose parent matches the
// ensemble's atom count and whose indices are strictly increasing; its
// indices become the selection used by alignment and statistics.
func (e *Ensemble) SetAtoms(atoms Atoms) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if atoms == nil {
		e.atoms = nil
		e.indices = nil
		e.gen++
		return nil
	}

	n := atoms.NumAtoms()
	if e.nAtoms == 0 {
		e.nAtoms = n
		e.atoms = atoms
		e.indices = nil
		return nil
	}
	if n > e.nAtoms {
		return fmt.Errorf("ensemble: atoms must be the same size or smaller "+
			"than the ensemble (%d atoms, ensemble has %d)", n, e.nAtoms)
	}
	if dc, ok := atoms.(DummyCounter); ok && dc.NumDummies() > 0 {
		return fmt.Errorf("ensemble: atoms must not have any dummies")
	}

	if n == e.nAtoms {
		e.atoms = atoms
		e.indices = nil
		e.gen++
		return nil
	}

	sub, ok := atoms.(Subset)
	if !ok {
		return fmt.Errorf("ensemble: a smaller atom set must expose its "+
			"parent group and indices (%d atoms, ensemble has %d)",
			n, e.nAtoms)
	}
	parent := sub.Parent()
	if parent == nil || parent.NumAtoms() != e.nAtoms {
		got := 0
		if parent != nil {
			got = parent.NumAtoms()
		}
		return fmt.Errorf("ensemble: size mismatch between this ensemble "+
			"(%d atoms) and the subset's parent group (%d atoms)",
			e.nAtoms, got)
	}

	src := sub.Indices()
	if len(src) != n {
		return fmt.Errorf("ensemble: subset reports %d atoms but %d indices",
			n, len(src))
	}
	indices := make([]int, len(src))
	copy(indices, src)
	for i, idx := range indices {
		if idx < 0 || idx >= e.nAtoms {
			return fmt.Errorf("ensemble: selection index %d out of range "+
				"[0, %d)", idx, e.nAtoms)
		}
		if i > 0 && idx <= indices[i-1] {
			return fmt.Errorf("ensemble: atoms must be ordered by indices")
		}
	}

	e.atoms = parent
	e.indices = indices
	e.gen++
	return nil
}

// Atoms returns the atom group associated with the ensemble, or nil.
func (e *Ensemble) Atoms() Atoms {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.atoms
}

// IsSelected reports whether a subset of atoms is selected.
func (e *Ensemble) IsSelected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indices != nil
}

// NumSelected returns the number of selected atoms, or the total number of
// atoms when no selection is set.
func (e *Ensemble) NumSelected() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.numSelected()
}

func (e *Ensemble) numSelected() int {
	if e.indices == nil {
		return e.nAtoms
	}
	return len(e.indices)
}

// SelectedIndices returns a copy of the selection's atom indices, or nil
// when no selection is set.
func (e *Ensemble) SelectedIndices() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.indices == nil {
		return nil
	}
	cp := make([]int, len(e.indices))
	copy(cp, e.indices)
	return cp
}
