package ensemble

// Level classifies observer messages.
type Level int

const (
	Info Level = iota
	Warning
)

// Observer receives optional progress and diagnostic reports from the
// superposition engine and the iterative refinement loop. Implementations
// must not call back into the reporting ensemble. The default observer
// discards everything.
type Observer interface {
	// OnProgress reports that done of total independent units of work
	// have completed.
	OnProgress(done, total int)

	// OnMessage reports a human-readable notice.
	OnMessage(level Level, msg string)
}

type noopObserver struct{}

func (noopObserver) OnProgress(done, total int) {}
func (noopObserver) OnMessage(level Level, msg string) {}
