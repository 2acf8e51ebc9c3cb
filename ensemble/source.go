package ensemble

import (
	"fmt"

	"github.com/petrichorcode/ensgo/xyz"
)

// Source supplies coordinate frames to SetCoords and AddCoordset. It is
// resolved once at the call boundary: raw in-memory frames are wrapped
// with Raw, while structure providers (a parsed PDB entry, another
// ensemble) implement the two accessors themselves. For an Ensemble the
// single frame is its reference and Frames is its full, unselected
// conformation stack.
type Source interface {
	// Frame returns the source's single, current, or reference frame.
	Frame() (xyz.Frame, error)

	// Frames returns every coordinate frame held by the source.
	Frames() ([]xyz.Frame, error)
}

type rawFrames []xyz.Frame

// Raw wraps in-memory coordinate frames as a Source. A single frame acts
// as a one-frame stack.
func Raw(frames ...xyz.Frame) Source {
	return rawFrames(frames)
}

func (r rawFrames) Frame() (xyz.Frame, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("ensemble: raw source holds no frames")
	}
	return r[0], nil
}

func (r rawFrames) Frames() ([]xyz.Frame, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("ensemble: raw source holds no frames")
	}
	return r, nil
}

// Frame implements Source: it returns a copy of the ensemble's full
// (unselected) reference coordinates.
func (e *Ensemble) Frame() (xyz.Frame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.coords == nil {
		return nil, ErrNoCoords
	}
	return e.coords.Copy(), nil
}

// Frames implements Source: it returns copies of the ensemble's full
// (unselected) conformation stack.
func (e *Ensemble) Frames() ([]xyz.Frame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.confs) == 0 {
		return nil, ErrNoConfs
	}
	frames := make([]xyz.Frame, len(e.confs))
	for i, conf := range e.confs {
		frames[i] = conf.Copy()
	}
	return frames, nil
}
