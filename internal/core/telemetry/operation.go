package telemetry

import (
	"context"
	"time"

	"todoapi/internal/core/port"
)

// Operation measures one repository or service call from span start to End.
type Operation struct {
	probe     port.Telemetry
	ctx       context.Context
	span      port.Span
	startTime time.Time
	operation string
	entity    string
	service   string
}

func StartOperation(ctx context.Context, probe port.Telemetry, operation, entity string, attrs map[string]interface{}) (context.Context, *Operation) {
	if probe == nil {
		probe = NewNoOpProbe()
	}

	ctx, span := probe.StartRepositorySpan(ctx, operation, entity, attrs)

	return ctx, &Operation{
		probe:     probe,
		ctx:       ctx,
		span:      span,
		startTime: time.Now(),
		operation: operation,
		entity:    entity,
	}
}

func StartServiceOperation(ctx context.Context, probe port.Telemetry, service, operation string, attrs map[string]interface{}) (context.Context, *Operation) {
	if probe == nil {
		probe = NewNoOpProbe()
	}

	ctx, span := probe.StartServiceSpan(ctx, service, operation, attrs)

	return ctx, &Operation{
		probe:     probe,
		ctx:       ctx,
		span:      span,
		startTime: time.Now(),
		operation: operation,
		service:   service,
	}
}

func (op *Operation) Query(query string, args []interface{}) {
	op.probe.RecordRepositoryQuery(op.ctx, op.operation, op.entity, query, args)
}

func (op *Operation) SetAttributes(attrs map[string]interface{}) {
	op.span.SetAttributes(attrs)
}

// End closes the span and records the outcome. It returns err unchanged so
// callers can write `return op.End(err)`.
func (op *Operation) End(err error) error {
	duration := time.Since(op.startTime)

	op.span.SetAttributes(map[string]interface{}{
		"operation.duration_ns": duration.Nanoseconds(),
	})

	if err != nil {
		op.span.SetStatus("error", err.Error())
		op.span.RecordError(err)
	} else {
		op.span.SetStatus("ok", "")
	}

	if op.service != "" {
		op.probe.RecordServiceOperation(op.ctx, op.service, op.operation, duration, err)
	} else {
		op.probe.RecordRepositoryOperation(op.ctx, op.operation, op.entity, duration, err)
	}
	op.span.End()

	return err
}
