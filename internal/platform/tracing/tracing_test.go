package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	dErrors "medledger/pkg/domain-errors"
)

func TestStartAndEnd(t *testing.T) {
	ctx, span := Start(context.Background(), Tracer("test"), "op", attribute.Int64("patient_id", 1))
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { End(span, nil) })

	_, span = Start(context.Background(), Tracer("test"), "op")
	assert.NotPanics(t, func() { End(span, dErrors.New(dErrors.CodeForbidden, "denied")) })

	_, span = Start(context.Background(), Tracer("test"), "op")
	assert.NotPanics(t, func() { End(span, errors.New("boom")) })
}
