package mediator

import (
	"context"
	"reflect"

	"github.com/Pesokrava/product_catalog/internal/domain"
	pkgvalidator "github.com/Pesokrava/product_catalog/internal/pkg/validator"
)

// Rule inspects a request value and returns its violations. Rules are pure
// functions of the request; uniqueness and other state-dependent checks
// belong to the handlers.
type Rule func(request any) []domain.FieldViolation

// ValidationBehavior runs every rule registered for a request's exact type
// before the rest of the pipeline. Requests with no registered rules pass
// through unchanged. All rules run and every violation is collected; a
// non-empty list short-circuits the chain with a domain.ValidationError.
type ValidationBehavior struct {
	rules map[reflect.Type][]Rule
}

// NewValidationBehavior creates an empty validation behavior.
func NewValidationBehavior() *ValidationBehavior {
	return &ValidationBehavior{
		rules: make(map[reflect.Type][]Rule),
	}
}

// Wrap implements Behavior.
func (b *ValidationBehavior) Wrap(ctx context.Context, request any, next Next) (any, error) {
	rules := b.rules[reflect.TypeOf(request)]
	if len(rules) == 0 {
		return next(ctx)
	}

	var violations []domain.FieldViolation
	for _, rule := range rules {
		violations = append(violations, rule(request)...)
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	return next(ctx)
}

// RegisterRules adds rules for a request type. Call before the corresponding
// handler is registered so the composed pipeline sees them.
func RegisterRules[Req any](b *ValidationBehavior, rules ...func(request Req) []domain.FieldViolation) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	for _, rule := range rules {
		typed := rule
		b.rules[reqType] = append(b.rules[reqType], func(request any) []domain.FieldViolation {
			return typed(request.(Req))
		})
	}
}

// StructRule validates a request against its struct tags using the shared
// validator instance.
func StructRule[Req any]() func(request Req) []domain.FieldViolation {
	return func(request Req) []domain.FieldViolation {
		if err := pkgvalidator.Get().Struct(request); err != nil {
			return pkgvalidator.Violations(err)
		}
		return nil
	}
}
