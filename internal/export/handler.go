package export

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	telemetry "github.com/visionlog/visionlog/internal/telemetry/metrics"
	"github.com/visionlog/visionlog/internal/telemetry/tracing"
	"github.com/visionlog/visionlog/pkg"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const exportFileName = "visionlog_export.csv"

type Handler struct {
	exporter *Exporter
	metrics  *telemetry.Manager
}

func NewHandler(exporter *Exporter, metricsManager *telemetry.Manager) *Handler {
	return &Handler{
		exporter: exporter,
		metrics:  metricsManager,
	}
}

// HandleExportCSV writes the export into a temp file scoped to this one
// request, serves it as a download, and removes it on every exit path.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.export.csv")
	defer span.End()

	tmpFile, err := os.CreateTemp("", "visionlog_export_*.csv")
	if err != nil {
		log.Errorf("export: create temp file: %s", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	defer func() {
		if cleanupErr := multierr.Combine(
			tmpFile.Close(),
			os.Remove(tmpFile.Name()),
		); cleanupErr != nil {
			log.Errorf("export: cleanup temp file [%s]: %s", tmpFile.Name(), cleanupErr)
		}
	}()

	if err := h.exporter.WriteCSV(ctx, tmpFile); err != nil {
		log.Errorf("export: %s", err)
		http.Error(w, fmt.Sprintf("export failed: %s", err), http.StatusInternalServerError)
		return
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		log.Errorf("export: rewind temp file: %s", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterExports.Inc()

	w.Header().Set("Content-Type", pkg.ContentType.CSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName))
	http.ServeContent(w, r, exportFileName, time.Time{}, tmpFile)
}
