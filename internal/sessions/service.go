package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/visionlog/visionlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=service.go -destination=repo_mock.go -package=sessions

// ErrInvalidPayload marks a session rejected by validation; nothing
// was written to the store.
var ErrInvalidPayload = errors.New("invalid session payload")

type sessionsRepo interface {
	Add(ctx context.Context, session Session) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	Count(ctx context.Context) (int, error)
}

type LogRequest struct {
	Type        string
	DurationSec int
	Meta        string
}

type Service struct {
	repo sessionsRepo
	now  func() time.Time
}

func NewService(repo sessionsRepo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Log validates and stores one session. The type is trimmed of surrounding
// whitespace and must be non-empty, the duration strictly positive. The
// timestamp comes from the server clock, never from the client.
func (s *Service) Log(ctx context.Context, req LogRequest) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.log")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sessionType := strings.TrimSpace(req.Type)
	if sessionType == "" || req.DurationSec <= 0 {
		return nil, ErrInvalidPayload
	}

	session, err := s.repo.Add(ctx, Session{
		Timestamp:   s.now().Unix(),
		Type:        sessionType,
		DurationSec: req.DurationSec,
		Meta:        req.Meta,
	})
	if err != nil {
		return nil, fmt.Errorf("add session: %w", err)
	}
	return session, nil
}
