package metrics

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

func (r *Repo) Add(ctx context.Context, metric Metric) (_ *Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.metrics.add")
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
		INSERT INTO metrics (date, fatigue_score, near_work_min, breaks, contrast_min_readable)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`,
		metric.Date,
		metric.FatigueScore, metric.NearWorkMin, metric.Breaks,
		metric.ContrastMinReadable,
	).Scan(&metric.ID)
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// List returns all metrics ordered by ascending id, i.e. insertion order.
func (r *Repo) List(ctx context.Context) (_ []Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.metrics.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, fatigue_score, near_work_min, breaks, contrast_min_readable
		FROM metrics
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allMetrics := make([]Metric, 0)
	for rows.Next() {
		var m Metric
		if err := rows.Scan(
			&m.ID, &m.Date,
			&m.FatigueScore, &m.NearWorkMin, &m.Breaks,
			&m.ContrastMinReadable,
		); err != nil {
			return nil, err
		}
		allMetrics = append(allMetrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return allMetrics, nil
}

func (r *Repo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.metrics.count")
	defer span.End()

	var count int
	if err := r.db.
		QueryRowContext(ctx, `SELECT COUNT(*) FROM metrics`).
		Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}
