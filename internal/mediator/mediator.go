package mediator

import (
	"context"
	"fmt"
	"reflect"
)

// Handler processes a single request type and produces its declared response.
type Handler[Req any, Res any] interface {
	Handle(ctx context.Context, request Req) (Res, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc[Req any, Res any] func(ctx context.Context, request Req) (Res, error)

func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, request Req) (Res, error) {
	return f(ctx, request)
}

type pipeline func(ctx context.Context, request any) (any, error)

// Dispatcher routes a request to the single handler registered for its exact
// type, through the behavior chain configured at construction. Pipelines are
// composed once per request type at registration; dispatch is a map lookup.
type Dispatcher struct {
	behaviors []Behavior
	pipelines map[reflect.Type]pipeline
}

// New creates a dispatcher with a fixed, ordered behavior chain. The first
// behavior is outermost.
func New(behaviors ...Behavior) *Dispatcher {
	return &Dispatcher{
		behaviors: behaviors,
		pipelines: make(map[reflect.Type]pipeline),
	}
}

// Register maps a request type to its handler and composes the behavior
// chain around it. Registering a second handler for the same request type is
// a wiring error, reported here rather than at dispatch time.
func Register[Req any, Res any](d *Dispatcher, handler Handler[Req, Res]) error {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if _, exists := d.pipelines[reqType]; exists {
		return fmt.Errorf("mediator: handler already registered for %s", reqType)
	}

	invoke := pipeline(func(ctx context.Context, request any) (any, error) {
		return handler.Handle(ctx, request.(Req))
	})

	// Wrap innermost-out so the first configured behavior runs first.
	for i := len(d.behaviors) - 1; i >= 0; i-- {
		behavior := d.behaviors[i]
		next := invoke
		invoke = func(ctx context.Context, request any) (any, error) {
			return behavior.Wrap(ctx, request, func(ctx context.Context) (any, error) {
				return next(ctx, request)
			})
		}
	}

	d.pipelines[reqType] = invoke
	return nil
}

// MustRegister is Register for wiring paths with no error handling of their own.
func MustRegister[Req any, Res any](d *Dispatcher, handler Handler[Req, Res]) {
	if err := Register(d, handler); err != nil {
		panic(err)
	}
}

// Send dispatches a request and returns its declared response. The context
// is propagated unchanged through every behavior and into the handler.
func Send[Res any](ctx context.Context, d *Dispatcher, request any) (Res, error) {
	var zero Res

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	p, ok := d.pipelines[reflect.TypeOf(request)]
	if !ok {
		return zero, fmt.Errorf("mediator: no handler registered for %T", request)
	}

	result, err := p(ctx, request)
	if err != nil {
		return zero, err
	}

	response, ok := result.(Res)
	if !ok {
		return zero, fmt.Errorf("mediator: handler for %T returned %T, caller expected %s",
			request, result, reflect.TypeOf((*Res)(nil)).Elem())
	}

	return response, nil
}
