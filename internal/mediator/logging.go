package mediator

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// LoggingBehavior logs an entry before the rest of the pipeline runs and a
// completion entry after it returns successfully. Failures propagate
// unchanged; this behavior observes, it never recovers or reclassifies.
type LoggingBehavior struct {
	logger *logger.Logger
}

// NewLoggingBehavior creates a logging behavior writing to the given logger.
func NewLoggingBehavior(log *logger.Logger) *LoggingBehavior {
	return &LoggingBehavior{logger: log}
}

// Wrap implements Behavior.
func (b *LoggingBehavior) Wrap(ctx context.Context, request any, next Next) (any, error) {
	name := requestName(request)

	payload, err := json.Marshal(request)
	if err != nil {
		payload = []byte("<unserializable>")
	}

	b.logger.WithFields(map[string]interface{}{
		"request": name,
		"payload": string(payload),
	}).Info("Handling request")

	response, err := next(ctx)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(map[string]interface{}{
		"request": name,
	}).Info("Handled request")

	return response, nil
}

func requestName(request any) string {
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
