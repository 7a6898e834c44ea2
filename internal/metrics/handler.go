package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	telemetry "github.com/visionlog/visionlog/internal/telemetry/metrics"
	"github.com/visionlog/visionlog/internal/telemetry/tracing"
	"github.com/visionlog/visionlog/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	metrics *telemetry.Manager
}

func NewHandler(service *Service, metricsManager *telemetry.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metricsManager,
	}
}

type addMetricRequest struct {
	Date                string   `json:"date"`
	FatigueScore        *int     `json:"fatigue_score"`
	NearWorkMin         *int     `json:"near_work_min"`
	Breaks              *int     `json:"breaks"`
	ContrastMinReadable *float64 `json:"contrast_min_readable"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.metrics.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var payload addMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Errorf("new metric, unmarshal json params: %s", err)
		http.Error(w, "invalid metric payload", http.StatusBadRequest)
		return
	}

	metric, err := h.service.Log(ctx, LogRequest{
		Date:                payload.Date,
		FatigueScore:        payload.FatigueScore,
		NearWorkMin:         payload.NearWorkMin,
		Breaks:              payload.Breaks,
		ContrastMinReadable: payload.ContrastMinReadable,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}
		log.Errorf("new metric: %s", err)
		http.Error(w, fmt.Sprintf("add metric failed: %s", err), http.StatusInternalServerError)
		return
	}

	h.metrics.CounterMetricEntries.Inc()
	log.Tracef("new metric logged for date [%s]", metric.Date)

	metricJson, err := json.Marshal(metric)
	if err != nil {
		log.Errorf("failed to marshal new metric: %s", err)
		http.Error(w, "error, failed to add new metric", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, metricJson, http.StatusCreated)
}
