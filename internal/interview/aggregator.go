package interview

import "strings"

const defaultMinSegmentConfidence = 0.2

// utteranceAggregator accumulates transcript segments for the current answer
// turn. It is owned by the session actor and mutated only on its goroutine.
//
// Endpoint detection works on epochs: every transcript arrival bumps the
// epoch, and a finalized segment arms a silence timer stamped with the epoch
// at arming time. When the timer fires with a stale epoch the user spoke
// again in the meantime and the fire is discarded.
type utteranceAggregator struct {
	segments      []string
	confidences   []float64
	partialTail   string
	epoch         int
	hasFinal      bool
	minConfidence float64
}

func newUtteranceAggregator() *utteranceAggregator {
	return &utteranceAggregator{minConfidence: defaultMinSegmentConfidence}
}

// Reset clears accumulated transcript for a new turn. The epoch keeps
// advancing across turns so timers armed in a previous turn can never match.
func (a *utteranceAggregator) Reset() {
	a.segments = nil
	a.confidences = nil
	a.partialTail = ""
	a.hasFinal = false
	a.epoch++
}

// AddPartial registers in-flight speech and invalidates any pending endpoint
// timer. The latest interim text is buffered as a provisional tail so words
// the provider never finalized survive an explicit stop.
func (a *utteranceAggregator) AddPartial(text string) {
	a.epoch++
	if text = strings.TrimSpace(text); text != "" {
		a.partialTail = text
	}
}

// AddSegment appends a finalized transcript segment and returns the epoch to
// stamp on the endpoint silence timer. Segments below the confidence floor
// are dropped but still bump the epoch. The finalized segment supersedes any
// buffered interim tail.
func (a *utteranceAggregator) AddSegment(text string, confidence float64) (epoch int, accepted bool) {
	a.epoch++
	a.partialTail = ""
	text = strings.TrimSpace(text)
	if text == "" || confidence < a.minConfidence {
		return a.epoch, false
	}
	a.segments = append(a.segments, text)
	a.confidences = append(a.confidences, confidence)
	a.hasFinal = true
	return a.epoch, true
}

// EndpointReady reports whether a silence timer fire with the given epoch
// should finalize the answer.
func (a *utteranceAggregator) EndpointReady(epoch int) bool {
	return epoch == a.epoch && a.hasFinal
}

// Text joins the accepted segments, plus any provisional tail, into the
// answer transcript.
func (a *utteranceAggregator) Text() string {
	if a.partialTail == "" {
		return strings.Join(a.segments, " ")
	}
	return strings.Join(append(append([]string{}, a.segments...), a.partialTail), " ")
}

// Empty reports whether no usable transcript has accumulated.
func (a *utteranceAggregator) Empty() bool {
	return len(a.segments) == 0 && a.partialTail == ""
}

// Confidence averages the accepted segments' confidences.
func (a *utteranceAggregator) Confidence() float64 {
	if len(a.confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range a.confidences {
		sum += c
	}
	return sum / float64(len(a.confidences))
}
