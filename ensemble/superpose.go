package ensemble

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/petrichorcode/ensgo/rmsd"
	"github.com/petrichorcode/ensgo/xyz"
)

// DefaultIterposeTol is the reference-shift RMSD below which Iterpose
// considers the refinement converged, in length units (angstroms for
// structural data).
const DefaultIterposeTol = 0.0001

// Superpose rigidly aligns every conformation onto the reference
// coordinates, in place. When a selection is active, the rotation and
// translation are derived from the selected atoms only and then applied
// to the entire stored frame. The reference itself is left untouched.
//
// The per-conformation rotation solves are independent and run across
// GOMAXPROCS workers; each worker only reads the shared target and writes
// its own frame. Progress is reported to the ensemble's observer.
func (e *Ensemble) Superpose() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkSuperpose(); err != nil {
		return err
	}
	return e.superpose()
}

func (e *Ensemble) checkSuperpose() error {
	if e.coords == nil {
		return ErrNoCoords
	}
	if len(e.confs) == 0 {
		return ErrNoConfs
	}
	return e.checkConfWeights()
}

// superpose runs the engine proper. The caller holds the write lock and
// has validated preconditions.
func (e *Ensemble) superpose() error {
	indices := e.indices
	tar := e.selectedCoords()

	// With a single shared weight vector the centered target is the same
	// for every conformation, so compute it once. Per-conformation
	// weights move the target centroid per frame.
	sharedW := e.weights == nil || e.weights.shared != nil
	var tarc xyz.Frame
	var tcom xyz.Coords
	var wShared []float64
	if sharedW {
		wShared = e.confWeights(0, indices)
		tarc, tcom = tar.Centered(wShared)
	}

	total := len(e.confs)
	var progressMu sync.Mutex
	done := 0
	report := func() {
		progressMu.Lock()
		done++
		e.obs.OnProgress(done, total)
		progressMu.Unlock()
	}

	align := func(i int) error {
		w := wShared
		tc, tm := tarc, tcom
		if !sharedW {
			w = e.confWeights(i, indices)
			tc, tm = tar.Centered(w)
		}

		full := e.confs[i]
		mob := full
		if indices != nil {
			mob = full.Take(indices)
		}
		mobc, mcom := mob.Centered(w)

		rot, err := rmsd.RotationCentered(mobc, tc, w)
		if err != nil {
			return err
		}
		if indices != nil {
			// The fit used the selected subset; carry the whole frame
			// along with the same rigid transform.
			trans := tm.Sub(rot.Apply(mcom))
			full.Transform(rot, trans)
		} else {
			mobc.Rotate(rot)
			mobc.Translate(tm)
			copy(full, mobc)
		}
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > total {
		workers = total
	}
	if workers <= 1 {
		for i := range e.confs {
			if err := align(i); err != nil {
				return err
			}
			report()
		}
		return nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := align(i); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				report()
			}
		}()
	}
	for i := range e.confs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

// Iterpose iteratively superposes the ensemble until convergence. Each
// step aligns all conformations with the current reference, replaces the
// reference with the (weighted) mean conformation, and measures the RMSD
// between the old and new reference; the loop stops when that shift drops
// to tol or below. A tol of zero or less selects DefaultIterposeTol.
//
// On return the reference equals the mean of the mutually aligned stack.
// No iteration cap is imposed: degenerate inputs whose alignment
// oscillates indefinitely are pathological and will not terminate.
func (e *Ensemble) Iterpose(tol float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkSuperpose(); err != nil {
		return err
	}
	if tol <= 0 {
		tol = DefaultIterposeTol
	}

	e.obs.OnMessage(Info, "starting iterative superposition")
	for step := 1; ; step++ {
		if err := e.superpose(); err != nil {
			return err
		}
		newref := e.meanFrame()
		shift := rmsd.Deviation(e.coords, newref, nil)
		e.coords = newref
		e.obs.OnMessage(Info, fmt.Sprintf(
			"step #%d: RMSD difference = %.4e", step, shift))
		if shift <= tol {
			return nil
		}
	}
}

// meanFrame computes the mean of the full conformation stack. With
// per-conformation weights each atom is averaged with those weights; a
// shared weight vector cancels out of the per-atom mean and is treated as
// uniform. Caller holds the lock.
func (e *Ensemble) meanFrame() xyz.Frame {
	mean := make(xyz.Frame, e.nAtoms)
	if e.weights != nil && e.weights.perConf != nil {
		wsum := e.sumWeights()
		for m, conf := range e.confs {
			w := e.weights.perConf[m]
			for i, p := range conf {
				mean[i][0] += p[0] * w[i]
				mean[i][1] += p[1] * w[i]
				mean[i][2] += p[2] * w[i]
			}
		}
		for i := range mean {
			if wsum[i] != 0 {
				mean[i][0] /= wsum[i]
				mean[i][1] /= wsum[i]
				mean[i][2] /= wsum[i]
			}
		}
		return mean
	}
	n := float64(len(e.confs))
	for _, conf := range e.confs {
		for i, p := range conf {
			mean[i][0] += p[0]
			mean[i][1] += p[1]
			mean[i][2] += p[2]
		}
	}
	for i := range mean {
		mean[i][0] /= n
		mean[i][1] /= n
		mean[i][2] /= n
	}
	return mean
}
