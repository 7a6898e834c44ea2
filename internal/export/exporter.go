package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/visionlog/visionlog/internal/metrics"
	"github.com/visionlog/visionlog/internal/sessions"
	"github.com/visionlog/visionlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

var (
	sessionsHeader = []string{"id", "ts", "type", "duration_sec", "meta"}
	metricsHeader  = []string{
		"id", "date", "fatigue_score", "near_work_min", "breaks", "contrast_min_readable",
	}
)

type sessionsRepo interface {
	List(ctx context.Context) ([]sessions.Session, error)
}

type metricsRepo interface {
	List(ctx context.Context) ([]metrics.Metric, error)
}

// Exporter serializes the full content of both tables as one CSV document:
// a "# sessions" section and a "# metrics" section, each with a header row
// and data rows in insertion order, separated by a blank line.
type Exporter struct {
	sessions sessionsRepo
	metrics  metricsRepo
}

func NewExporter(sessionsRepo sessionsRepo, metricsRepo metricsRepo) *Exporter {
	return &Exporter{
		sessions: sessionsRepo,
		metrics:  metricsRepo,
	}
}

// WriteCSV performs two sequential read-only scans, sessions first. The
// scans are separate reads, not one snapshot across both tables: a write
// landing between them may show up in only one section.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "export.writecsv")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	allSessions, err := e.sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"# sessions"}); err != nil {
		return err
	}
	if err := csvWriter.Write(sessionsHeader); err != nil {
		return err
	}
	for _, s := range allSessions {
		if err := csvWriter.Write([]string{
			strconv.Itoa(s.ID),
			strconv.FormatInt(s.Timestamp, 10),
			s.Type,
			strconv.Itoa(s.DurationSec),
			s.Meta,
		}); err != nil {
			return err
		}
	}

	// blank separator line between the two sections
	if err := csvWriter.Write([]string{}); err != nil {
		return err
	}

	allMetrics, err := e.metrics.List(ctx)
	if err != nil {
		return fmt.Errorf("list metrics: %w", err)
	}

	if err := csvWriter.Write([]string{"# metrics"}); err != nil {
		return err
	}
	if err := csvWriter.Write(metricsHeader); err != nil {
		return err
	}
	for _, m := range allMetrics {
		if err := csvWriter.Write([]string{
			strconv.Itoa(m.ID),
			m.Date,
			formatOptionalInt(m.FatigueScore),
			formatOptionalInt(m.NearWorkMin),
			formatOptionalInt(m.Breaks),
			formatOptionalFloat(m.ContrastMinReadable),
		}); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// NULL fields render as empty cells.
func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
