package stream

// State is a snapshot of a controller.
type State struct {
	IsStreaming bool
	Text        string
	// Generation is the start/reset counter that produced this state.
	// Observers drop states older than the newest generation they have seen.
	Generation uint64
}

// Outcome is the terminal result of one Start call.
type Outcome struct {
	// Text is the final revealed text.
	Text string
	// Err is the error returned by the fetch or the stream read, if any.
	Err error
	// UsedFallback is set when Err is non-nil and the fallback was revealed.
	UsedFallback bool
	// Canceled is set when the generation was superseded by Start or Reset,
	// or the caller's context was cancelled.
	Canceled bool
}

// Succeeded reports whether the answer came from the network.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && !o.Canceled
}
