package util

import "github.com/petrichorcode/ensgo/ensemble"

// Progress is an ensemble.Observer that prints progress and messages with
// the package's logging helpers. Progress lines are only emitted when
// verbose output is enabled; warnings always are.
type Progress struct{}

func NewProgress() Progress {
	return Progress{}
}

func (Progress) OnProgress(done, total int) {
	ratio := 100.0 * (float64(done) / float64(total))
	Verbosef("\r%d of %d conformations superposed (%0.2f%% done)", done, total, ratio)
	if done == total {
		Verbosef("\n")
	}
}

func (Progress) OnMessage(level ensemble.Level, msg string) {
	if level == ensemble.Warning {
		Warnf("WARNING: %s.", msg)
	} else {
		Verbosef("%s", msg)
	}
}
