package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/petrichorcode/ensgo/rmsd"
	"github.com/petrichorcode/ensgo/xyz"
)

// Deviations returns, for every conformation, the elementwise difference
// between its selected coordinates and the selected reference. Align the
// ensemble with Superpose or Iterpose first for meaningful values.
//
// This accessor is deliberately lenient: when conformations or reference
// coordinates are unset it warns through the observer and returns nil
// instead of failing, so exploratory pipelines can probe freely.
func (e *Ensemble) Deviations() []xyz.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.confs == nil {
		e.obs.OnMessage(Warning, "conformations are not set")
		return nil
	}
	if e.coords == nil {
		e.obs.OnMessage(Warning, "coordinates are not set")
		return nil
	}
	ref := e.selectedCoords()
	devs := make([]xyz.Frame, len(e.confs))
	for m, conf := range e.confs {
		if e.indices != nil {
			conf = conf.Take(e.indices)
		}
		dev := make(xyz.Frame, len(ref))
		for i := range ref {
			dev[i] = conf[i].Sub(ref[i])
		}
		devs[m] = dev
	}
	return devs
}

// MSFs returns the mean square fluctuation of each selected atom across
// the conformation stack. Fluctuations are measured about the stack's own
// mean, not about the reference, so the result describes the ensemble's
// internal spread. It returns nil when no conformations are set.
func (e *Ensemble) MSFs() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.confs == nil {
		return nil
	}

	sel := make([]xyz.Frame, len(e.confs))
	for m, conf := range e.confs {
		if e.indices != nil {
			conf = conf.Take(e.indices)
		}
		sel[m] = conf
	}
	n := len(sel[0])

	mean := make(xyz.Frame, n)
	for _, conf := range sel {
		for i, p := range conf {
			mean[i][0] += p[0]
			mean[i][1] += p[1]
			mean[i][2] += p[2]
		}
	}
	nc := float64(len(sel))
	for i := range mean {
		mean[i][0] /= nc
		mean[i][1] /= nc
		mean[i][2] /= nc
	}

	msf := make([]float64, n)
	for _, conf := range sel {
		for i, p := range conf {
			d := p.Sub(mean[i])
			msf[i] += d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
		}
	}
	for i := range msf {
		msf[i] /= nc
	}
	return msf
}

// RMSFs returns the root mean square fluctuation of each selected atom,
// the elementwise square root of MSFs. Nil when no conformations are set.
func (e *Ensemble) RMSFs() []float64 {
	msf := e.MSFs()
	for i, v := range msf {
		msf[i] = math.Sqrt(v)
	}
	return msf
}

// RMSDs returns the RMSD of every conformation against the reference,
// restricted to the selection and weighted when weights are set. Align
// the ensemble first for minimal values. It returns nil when reference or
// conformations are unset.
func (e *Ensemble) RMSDs() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.confs == nil || e.coords == nil {
		return nil
	}
	if err := e.checkConfWeights(); err != nil {
		e.obs.OnMessage(Warning, err.Error())
		return nil
	}
	ref := e.selectedCoords()
	out := make([]float64, len(e.confs))
	for i, conf := range e.confs {
		if e.indices != nil {
			conf = conf.Take(e.indices)
		}
		out[i] = rmsd.Deviation(conf, ref, e.confWeights(i, e.indices))
	}
	return out
}

// PairwiseRMSDs returns the symmetric matrix of RMSDs between every pair
// of conformations, restricted to the selection. Shared per-atom weights
// are applied directly; per-conformation weights are collapsed to their
// per-atom sums, since a single weight vector must serve both frames of a
// pair. It returns nil when no conformations are set.
func (e *Ensemble) PairwiseRMSDs() *mat.SymDense {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.confs == nil {
		return nil
	}
	if err := e.checkConfWeights(); err != nil {
		e.obs.OnMessage(Warning, err.Error())
		return nil
	}

	var w []float64
	if e.weights != nil {
		if e.weights.shared != nil {
			w = e.weights.shared
		} else {
			w = e.sumWeights()
		}
		if e.indices != nil {
			sub := make([]float64, len(e.indices))
			for k, idx := range e.indices {
				sub[k] = w[idx]
			}
			w = sub
		}
	}

	sel := make([]xyz.Frame, len(e.confs))
	for m, conf := range e.confs {
		if e.indices != nil {
			conf = conf.Take(e.indices)
		}
		sel[m] = conf
	}

	out := mat.NewSymDense(len(sel), nil)
	for i := 0; i < len(sel); i++ {
		for j := i + 1; j < len(sel); j++ {
			out.SetSym(i, j, rmsd.Deviation(sel[i], sel[j], w))
		}
	}
	return out
}
