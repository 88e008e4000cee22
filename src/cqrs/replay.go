package cqrs

// Replay re-derives an aggregate by folding the event log over an initial
// state. Only primary events are played: playing a primary event
// deterministically regenerates its side-effect cascade, so replaying the
// stored side-effect events as well would apply them twice.
func Replay[A any](initial A, events []Event[A]) A {
	latest := initial
	for _, event := range events {
		if !event.IsPrimary() {
			continue
		}
		latest = event.Play(latest).Aggregate
	}
	return latest
}
