// Package httptransport maps HTTP verbs and query parameters onto the mode
// dispatcher. Every response, including transport-level rejections, is an
// envelope.
package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/porthorian/fedcheck"
	"github.com/porthorian/fedcheck/pkg/envelope"
)

// Dispatcher is the core decision function behind the handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req fedcheck.Request) envelope.Envelope
}

type Config struct {
	Dispatcher Dispatcher
	Logger     logr.Logger
	Metrics    *Metrics
}

type Handler struct {
	dispatcher Dispatcher
	logger     logr.Logger
	metrics    *Metrics
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(config Config) *Handler {
	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Handler{
		dispatcher: config.Dispatcher,
		logger:     logger,
		metrics:    config.Metrics,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := uuid.NewString()
	logger := h.logger.WithValues("request_id", requestID, "method", r.Method)

	mode := "unknown"
	var env envelope.Envelope

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(nil, "recovered from handler fault", "panic", rec)
			env = envelope.Failure(envelope.CodeInternal, envelope.StatusInternal, "internal fault while handling request", nil)
			h.write(w, logger, env)
		}
		h.observe(mode, env, time.Since(started))
	}()

	switch r.Method {
	case http.MethodGet:
		mode = r.URL.Query().Get("mode")
		env = h.handleGet(mode)
	case http.MethodPost:
		mode, env = h.handlePost(r)
	default:
		env = envelope.Failure(envelope.CodeMethodNotAllowed, envelope.StatusMethodNotAllowed, "method "+r.Method+" is not allowed", nil)
	}

	h.write(w, logger, env)
}

func (h *Handler) handleGet(mode string) envelope.Envelope {
	switch mode {
	case "health":
		return envelope.Success(map[string]any{
			"type":   "health",
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	case "spec":
		modes := make([]string, 0, len(fedcheck.Modes()))
		for _, m := range fedcheck.Modes() {
			modes = append(modes, string(m))
		}
		return envelope.Success(map[string]any{
			"type":     "spec",
			"modes":    modes,
			"contract": fedcheck.ContractTag,
		})
	default:
		return envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "unsupported mode", []envelope.ErrorItem{{
			Domain:       "global",
			Location:     "mode",
			LocationType: "parameter",
			Message:      "GET mode must be one of health, spec",
			Reason:       "invalidMode",
		}})
	}
}

func (h *Handler) handlePost(r *http.Request) (string, envelope.Envelope) {
	var req fedcheck.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "unknown", envelope.Failure(envelope.CodeInvalidArgument, envelope.StatusInvalidArgument, "request body is not valid JSON", []envelope.ErrorItem{{
			Domain:       "global",
			Location:     "(body)",
			LocationType: "body",
			Message:      err.Error(),
			Reason:       "parseError",
		}})
	}
	return string(req.Mode), h.dispatcher.Dispatch(r.Context(), req)
}

func (h *Handler) write(w http.ResponseWriter, logger logr.Logger, env envelope.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.HTTPStatus())
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error(err, "failed to write response envelope")
	}
}

func (h *Handler) observe(mode string, env envelope.Envelope, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "result"
	if env.IsError() {
		outcome = "error"
	}
	h.metrics.Observe(mode, outcome, elapsed)
}
