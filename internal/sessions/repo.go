package sessions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/visionlog/visionlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.add")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (ts, type, duration_sec, meta)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`,
		session.Timestamp, session.Type, session.DurationSec, session.Meta,
	).Scan(&session.ID)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns all sessions ordered by ascending id, i.e. insertion order.
func (r *Repo) List(ctx context.Context) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ts, type, duration_sec, COALESCE(meta, '')
		FROM sessions
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allSessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Type, &s.DurationSec, &s.Meta); err != nil {
			return nil, err
		}
		allSessions = append(allSessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return allSessions, nil
}

func (r *Repo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.count")
	defer span.End()

	var count int
	if err := r.db.
		QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).
		Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}
