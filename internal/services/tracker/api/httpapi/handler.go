// Package httpapi exposes the tracker session over JSON HTTP for the
// presentation client.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/snapshot"
	"github.com/louisbranch/pitchside/internal/services/tracker/syncqueue"
)

const maxActionBytes = 1 << 20

// Tracker is the session the API reads and mutates.
type Tracker interface {
	State() season.State
	Dispatch(act season.Action) season.Decision
}

// SyncStatus reports offline queue state.
type SyncStatus interface {
	Status() syncqueue.Status
}

// Drainer delivers queued snapshots on demand.
type Drainer interface {
	Drain(ctx context.Context) (syncqueue.DrainResult, error)
}

// Config wires the API.
type Config struct {
	Tracker Tracker
	// Sync and Drainer may be nil when no remote store is configured.
	Sync           SyncStatus
	Drainer        Drainer
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logf           func(format string, args ...any)
}

type handler struct {
	tracker Tracker
	sync    SyncStatus
	drainer Drainer
	logf    func(format string, args ...any)
}

// NewHandler builds the router.
func NewHandler(cfg Config) http.Handler {
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	h := &handler{tracker: cfg.Tracker, sync: cfg.Sync, drainer: cfg.Drainer, logf: cfg.Logf}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.healthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/season", h.getSeason)
		r.Post("/season/actions", h.postSeasonAction)
		r.Get("/season/summary", h.getSeasonSummary)
		r.Get("/matches/current", h.getCurrentMatch)
		r.Post("/matches/current/actions", h.postMatchAction)
		r.Get("/matches/{matchID}/summary", h.getMatchSummary)
		r.Get("/sync", h.getSync)
		r.Post("/sync/drain", h.postSyncDrain)
	})
	return r
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getSeason(w http.ResponseWriter, _ *http.Request) {
	payload, err := snapshot.Encode(h.tracker.State())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "encode season", err)
		return
	}
	h.respondJSON(w, http.StatusOK, json.RawMessage(payload))
}

func (h *handler) postSeasonAction(w http.ResponseWriter, r *http.Request) {
	actionType, raw, ok := h.readAction(w, r)
	if !ok {
		return
	}
	act, err := season.ParseAction(season.ActionType(actionType), raw)
	if err != nil {
		h.respondActionParseError(w, err, season.ErrUnknownActionType)
		return
	}
	decision := h.tracker.Dispatch(act)
	payload, err := snapshot.Encode(decision.State)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "encode season", err)
		return
	}
	h.respondDecision(w, payload, decision)
}

func (h *handler) postMatchAction(w http.ResponseWriter, r *http.Request) {
	actionType, raw, ok := h.readAction(w, r)
	if !ok {
		return
	}
	act, err := match.ParseAction(match.ActionType(actionType), raw)
	if err != nil {
		h.respondActionParseError(w, err, match.ErrUnknownActionType)
		return
	}
	decision := h.tracker.Dispatch(season.ApplyToCurrent{Action: act})
	current, ok := decision.State.Current()
	if !ok {
		h.respondJSON(w, http.StatusNotFound, decisionResponse{
			Rejections: rejectionsView(decision.Rejections),
			Warnings:   warningsView(decision.Warnings),
		})
		return
	}
	payload, err := snapshot.EncodeMatch(current)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "encode match", err)
		return
	}
	h.respondDecision(w, payload, decision)
}

func (h *handler) getCurrentMatch(w http.ResponseWriter, _ *http.Request) {
	current, ok := h.tracker.State().Current()
	if !ok {
		h.respondError(w, http.StatusNotFound, "no match is selected", nil)
		return
	}
	payload, err := snapshot.EncodeMatch(current)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "encode match", err)
		return
	}
	h.respondJSON(w, http.StatusOK, json.RawMessage(payload))
}

func (h *handler) getMatchSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "match id must be an integer", nil)
		return
	}
	m, ok := h.tracker.State().Match(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}
	h.respondJSON(w, http.StatusOK, matchSummaryView(match.Summarize(m)))
}

func (h *handler) getSeasonSummary(w http.ResponseWriter, _ *http.Request) {
	state := h.tracker.State()
	h.respondJSON(w, http.StatusOK, seasonSummaryView(state.TeamTitle, match.SummarizeSeason(state.Matches)))
}

func (h *handler) getSync(w http.ResponseWriter, _ *http.Request) {
	if h.sync == nil {
		h.respondJSON(w, http.StatusOK, syncStatusResponse{Remote: false})
		return
	}
	h.respondJSON(w, http.StatusOK, syncStatusView(h.sync.Status()))
}

func (h *handler) postSyncDrain(w http.ResponseWriter, r *http.Request) {
	if h.drainer == nil {
		h.respondError(w, http.StatusConflict, "no remote store is configured", nil)
		return
	}
	result, err := h.drainer.Drain(r.Context())
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "drain queue", err)
		return
	}
	h.respondJSON(w, http.StatusOK, drainView(result))
}

// readAction reads a {"type": ..., ...fields} body and returns the type and
// the full body for field decoding.
func (h *handler) readAction(w http.ResponseWriter, r *http.Request) (string, json.RawMessage, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "read request body", err)
		return "", nil, false
	}
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.respondError(w, http.StatusBadRequest, "request body must be a JSON object with a type", nil)
		return "", nil, false
	}
	actionType := strings.TrimSpace(envelope.Type)
	if actionType == "" {
		h.respondError(w, http.StatusBadRequest, "action type is required", nil)
		return "", nil, false
	}
	return actionType, body, true
}

func (h *handler) respondActionParseError(w http.ResponseWriter, err, unknown error) {
	if errors.Is(err, unknown) {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	h.respondError(w, http.StatusBadRequest, "invalid action fields", err)
}

func (h *handler) respondDecision(w http.ResponseWriter, state []byte, decision season.Decision) {
	status := http.StatusOK
	if decision.Rejected() {
		status = http.StatusConflict
	}
	h.respondJSON(w, status, decisionResponse{
		State:      json.RawMessage(state),
		Rejections: rejectionsView(decision.Rejections),
		Warnings:   warningsView(decision.Warnings),
	})
}

func (h *handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logf("httpapi: encode response: %v", err)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logf("httpapi: %s: %v", message, err)
		message = message + ": " + err.Error()
	}
	h.respondJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
}
