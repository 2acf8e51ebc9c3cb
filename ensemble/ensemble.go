package ensemble

import (
	"fmt"
	"strings"
	"sync"

	"github.com/petrichorcode/ensgo/xyz"
)

// Ensemble is a collection of conformations sampled for the same molecular
// topology. It owns its reference frame and conformation stack outright:
// coordinates handed out by accessors are copies, and coordinates taken in
// are copied on the way in.
//
// Structural mutations (adding or deleting conformations, changing the
// selection) are serialized against reads and computations by an internal
// lock, and bump a generation counter that invalidates outstanding
// iterators and conformation handles.
type Ensemble struct {
	mu sync.RWMutex

	title   string
	coords  xyz.Frame   // reference, nil until SetCoords
	confs   []xyz.Frame // conformation stack, always full atom size
	nAtoms  int         // fixed once the first coordinates are set
	weights *weightSet
	atoms   Atoms
	indices []int // selection, nil means all atoms
	gen     uint64
	obs     Observer
}

// New creates an empty ensemble with the given title.
func New(title string) *Ensemble {
	return &Ensemble{
		title: strings.TrimSpace(title),
		obs:   noopObserver{},
	}
}

// FromSource creates an ensemble whose reference and conformation stack
// are both taken from the given coordinate source.
func FromSource(title string, src Source) (*Ensemble, error) {
	e := New(title)
	if err := e.SetCoords(src); err != nil {
		return nil, err
	}
	if err := e.AddCoordset(src); err != nil {
		return nil, err
	}
	return e, nil
}

// SetObserver installs an observer for progress and diagnostic reports.
// Passing nil restores the default, which discards everything.
func (e *Ensemble) SetObserver(obs Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if obs == nil {
		obs = noopObserver{}
	}
	e.obs = obs
}

// Title returns the title of the ensemble.
func (e *Ensemble) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// SetTitle sets the title of the ensemble.
func (e *Ensemble) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = strings.TrimSpace(title)
}

// NumAtoms returns the number of atoms.
func (e *Ensemble) NumAtoms() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nAtoms
}

// NumConfs returns the number of conformations.
func (e *Ensemble) NumConfs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.confs)
}

func (e *Ensemble) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.indices == nil {
		return fmt.Sprintf("<Ensemble: %s (%d conformations; %d atoms)>",
			e.title, len(e.confs), e.nAtoms)
	}
	return fmt.Sprintf("<Ensemble: %s (%d conformations; selected %d of %d atoms)>",
		e.title, len(e.confs), len(e.indices), e.nAtoms)
}

// snapshot captures a deep copy of the ensemble's state under its own
// lock. Used by Slice, Subset and Concat so that derived ensembles never
// share buffers with (or hold the locks of) their sources.
type snapshot struct {
	title   string
	coords  xyz.Frame
	confs   []xyz.Frame
	nAtoms  int
	weights *weightSet
	atoms   Atoms
	indices []int
}

func (e *Ensemble) snapshot() snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := snapshot{title: e.title, nAtoms: e.nAtoms, atoms: e.atoms}
	if e.coords != nil {
		s.coords = e.coords.Copy()
	}
	s.confs = make([]xyz.Frame, len(e.confs))
	for i, conf := range e.confs {
		s.confs[i] = conf.Copy()
	}
	if e.weights != nil {
		ws := &weightSet{}
		if e.weights.shared != nil {
			ws.shared = append([]float64(nil), e.weights.shared...)
		}
		for _, row := range e.weights.perConf {
			ws.perConf = append(ws.perConf, append([]float64(nil), row...))
		}
		s.weights = ws
	}
	if e.indices != nil {
		s.indices = append([]int(nil), e.indices...)
	}
	return s
}
