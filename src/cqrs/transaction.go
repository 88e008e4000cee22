package cqrs

// Event is one entry of the append-only log of an aggregate. Playing an
// event against an aggregate is a pure function: the same event against the
// same aggregate always yields the same result.
//
// Primary events are direct responses to commands. Side-effect events are
// generated while playing another event; during recovery they are not
// replayed themselves because replaying the primary event regenerates them.
type Event[A any] interface {
	EventID() EventID
	IsPrimary() bool
	Play(aggregate A) Transaction[A]
}

// Transaction is the result of executing one command: the new aggregate
// state plus every event that must be appended to the log, in the exact
// order they must be replayed.
type Transaction[A any] struct {
	Aggregate A
	Events    []Event[A]
}

func NewTransaction[A any](aggregate A, events ...Event[A]) Transaction[A] {
	return Transaction[A]{Aggregate: aggregate, Events: events}
}

// Append concatenates the other transaction after this one. The other
// transaction's aggregate wins, matching the "take the newer state" merge.
func (t Transaction[A]) Append(other Transaction[A]) Transaction[A] {
	events := make([]Event[A], 0, len(t.Events)+len(other.Events))
	events = append(events, t.Events...)
	events = append(events, other.Events...)
	return Transaction[A]{Aggregate: other.Aggregate, Events: events}
}
