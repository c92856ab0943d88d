package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/villagio/leaseflow/internal/domain"
)

// TracingDecisionStore wraps a domain.DecisionStore with OpenTelemetry
// tracing. The decision transitions are the operations worth watching in
// production, so each gets its own span.
type TracingDecisionStore struct {
	next   domain.DecisionStore
	tracer trace.Tracer
}

// Compile-time check: TracingDecisionStore implements domain.DecisionStore.
var _ domain.DecisionStore = (*TracingDecisionStore)(nil)

// NewTracingDecisionStore creates a tracing decorator around the given store.
func NewTracingDecisionStore(next domain.DecisionStore) *TracingDecisionStore {
	return &TracingDecisionStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingDecisionStore) Approve(ctx context.Context, p domain.ApprovalParams) (domain.Lease, error) {
	ctx, span := s.tracer.Start(ctx, "DecisionStore.Approve",
		trace.WithAttributes(
			attribute.String("request.id", p.RequestID),
			attribute.String("lease.id", p.LeaseID),
			attribute.String("decision.admin_id", p.AdminID),
		),
	)
	defer span.End()

	lease, err := s.next.Approve(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := domain.GuardCodeOf(err); code != "" {
			span.SetAttributes(attribute.String("guard.code", string(code)))
		}
	}
	return lease, err
}

func (s *TracingDecisionStore) Reject(ctx context.Context, p domain.RejectionParams) error {
	ctx, span := s.tracer.Start(ctx, "DecisionStore.Reject",
		trace.WithAttributes(
			attribute.String("request.id", p.RequestID),
			attribute.String("decision.admin_id", p.AdminID),
		),
	)
	defer span.End()

	err := s.next.Reject(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := domain.GuardCodeOf(err); code != "" {
			span.SetAttributes(attribute.String("guard.code", string(code)))
		}
	}
	return err
}

func (s *TracingDecisionStore) Terminate(ctx context.Context, leaseID string) error {
	ctx, span := s.tracer.Start(ctx, "DecisionStore.Terminate",
		trace.WithAttributes(attribute.String("lease.id", leaseID)),
	)
	defer span.End()

	err := s.next.Terminate(ctx, leaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
