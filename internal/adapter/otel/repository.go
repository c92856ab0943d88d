package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/villagio/leaseflow/internal/domain"
)

const tracerName = "github.com/villagio/leaseflow/internal/adapter/otel"

// TracingRepository wraps a domain.RequestRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingRepository struct {
	next   domain.RequestRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.RequestRepository.
var _ domain.RequestRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.RequestRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, req domain.RentalRequest) error {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.Create",
		trace.WithAttributes(
			attribute.String("request.id", req.ID),
			attribute.String("request.user_id", req.UserID),
			attribute.String("request.unit_id", req.UnitID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (domain.RentalRequest, error) {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.GetByID",
		trace.WithAttributes(attribute.String("request.id", id)),
	)
	defer span.End()

	req, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return req, err
}

func (r *TracingRepository) LatestByUser(ctx context.Context, userID string) (domain.RentalRequest, error) {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.LatestByUser",
		trace.WithAttributes(attribute.String("request.user_id", userID)),
	)
	defer span.End()

	req, err := r.next.LatestByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return req, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.RentalRequest, error) {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	reqs, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(reqs)))
	}
	return reqs, err
}

func (r *TracingRepository) Acknowledge(ctx context.Context, requestID, userID string) error {
	ctx, span := r.tracer.Start(ctx, "RequestRepository.Acknowledge",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("request.user_id", userID),
		),
	)
	defer span.End()

	err := r.next.Acknowledge(ctx, requestID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
