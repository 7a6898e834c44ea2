package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/visionlog/visionlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

// ErrInvalidPayload marks a metric rejected by validation; nothing
// was written to the store.
var ErrInvalidPayload = errors.New("date required")

type metricsRepo interface {
	Add(ctx context.Context, metric Metric) (*Metric, error)
	List(ctx context.Context) ([]Metric, error)
	Count(ctx context.Context) (int, error)
}

type LogRequest struct {
	Date                string
	FatigueScore        *int
	NearWorkMin         *int
	Breaks              *int
	ContrastMinReadable *float64
}

type Service struct {
	repo metricsRepo
}

func NewService(repo metricsRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// Log stores one daily metric. Only the date is validated (trimmed,
// non-empty); the optional fields pass through as given, absent ones
// end up as NULL.
func (s *Service) Log(ctx context.Context, req LogRequest) (_ *Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.metrics.log")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	date := strings.TrimSpace(req.Date)
	if date == "" {
		return nil, ErrInvalidPayload
	}

	metric, err := s.repo.Add(ctx, Metric{
		Date:                date,
		FatigueScore:        req.FatigueScore,
		NearWorkMin:         req.NearWorkMin,
		Breaks:              req.Breaks,
		ContrastMinReadable: req.ContrastMinReadable,
	})
	if err != nil {
		return nil, fmt.Errorf("add metric: %w", err)
	}
	return metric, nil
}
