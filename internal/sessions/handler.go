package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/visionlog/visionlog/internal/telemetry/metrics"
	"github.com/visionlog/visionlog/internal/telemetry/tracing"
	"github.com/visionlog/visionlog/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	metrics *metrics.Manager
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metricsManager,
	}
}

type addSessionRequest struct {
	Type string `json:"type"`
	// decoded loosely so that unparseable values coerce to 0 and fail
	// validation instead of erroring out on decode
	DurationSec any    `json:"duration_sec"`
	Meta        string `json:"meta"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var payload addSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Errorf("new session, unmarshal json params: %s", err)
		http.Error(w, "invalid session payload", http.StatusBadRequest)
		return
	}

	session, err := h.service.Log(ctx, LogRequest{
		Type:        payload.Type,
		DurationSec: pkg.CoerceInt(payload.DurationSec, 0),
		Meta:        payload.Meta,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			http.Error(w, "invalid session payload", http.StatusBadRequest)
			return
		}
		log.Errorf("new session: %s", err)
		http.Error(w, fmt.Sprintf("add session failed: %s", err), http.StatusInternalServerError)
		return
	}

	h.metrics.CounterSessions.Inc()
	log.Tracef("new session logged: [%s] %d sec", session.Type, session.DurationSec)

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("failed to marshal new session: %s", err)
		http.Error(w, "error, failed to add new session", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusCreated)
}
