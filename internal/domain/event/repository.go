package event

import "context"

type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListByRef(ctx context.Context, ledger string, refID uint64) ([]Event, error)
}

// Publisher pushes committed events to off-service observers. Publishing is
// best-effort: it runs after commit and failures must not undo the change.
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
}
