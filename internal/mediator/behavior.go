package mediator

import "context"

// Next invokes the remaining pipeline. A behavior calls it at most once.
type Next func(ctx context.Context) (any, error)

// Behavior is a cross-cutting wrapper composed around handler execution.
// Behaviors are stateless with respect to a single call; they may
// short-circuit by returning without calling next, but must never swallow
// an error returned by it.
type Behavior interface {
	Wrap(ctx context.Context, request any, next Next) (any, error)
}
