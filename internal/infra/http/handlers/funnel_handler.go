package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agencyscout/scout-funnel/internal/funnel"
	"github.com/agencyscout/scout-funnel/internal/metrics"
	"github.com/agencyscout/scout-funnel/internal/usecase"
)

// maxUploadBytes bounds the raw upload before normalization.
const maxUploadBytes = 10 << 20

// sessionHeader carries the visitor's funnel session token.
const sessionHeader = "X-Session-Token"

// ControllerFactory builds a fresh funnel controller per visitor
// session.
type ControllerFactory func() *funnel.Controller

// FunnelHandler exposes the scan/status/submit/reset surface. Each
// visitor session owns one controller; the token round-trips through a
// header so a stateless frontend can poll.
type FunnelHandler struct {
	factory     ControllerFactory
	rateLimiter *RateLimiter

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	controller *funnel.Controller
	lastSeen   time.Time
}

func NewFunnelHandler(factory ControllerFactory) *FunnelHandler {
	h := &FunnelHandler{
		factory:     factory,
		rateLimiter: NewRateLimiter(10, time.Minute),
		sessions:    make(map[string]*sessionEntry),
	}
	go h.evictStale()
	return h
}

type scanResponse struct {
	SessionToken string      `json:"session_token"`
	View         funnel.View `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HandleScan accepts the portrait upload and starts an attempt.
func (h *FunnelHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please try again later."})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file upload"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable file upload"})
		return
	}

	token, ctrl := h.session(r)

	// The attempt outlives this request: the handler answers 202 and
	// net/http then cancels r.Context(), which must not tear down the
	// in-flight analysis. Abandoning an attempt is the generation
	// counter's job, not the transport's.
	if err := ctrl.Begin(context.WithoutCancel(r.Context()), raw); err != nil {
		if errors.Is(err, funnel.ErrNotIdle) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "a scan is already in progress"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not start scan"})
		return
	}

	metrics.RecordScanStarted()

	writeJSON(w, http.StatusAccepted, scanResponse{SessionToken: token, View: ctrl.View()})
}

// HandleStatus reports the gated view for polling clients.
func (h *FunnelHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// HandleSubmit runs the lead submission for the session's preview.
func (h *FunnelHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	lead, err := ctrl.Submit(r.Context(), input)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	metrics.RecordLeadCreated()

	writeJSON(w, http.StatusCreated, usecase.SubmitLeadOutput{
		ID:       lead.ID,
		LeadCode: lead.LeadCode,
		ImageURL: lead.ImageURL,
		Msg:      "Application received.",
	})
}

func (h *FunnelHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var dup *usecase.DuplicateError
	switch {
	case errors.As(err, &dup):
		metrics.RecordDuplicateSubmission(dup.Field)
		writeJSON(w, http.StatusConflict, errorResponse{Error: dup.Error(), Field: dup.Field})
	case errors.Is(err, funnel.ErrNotInPreview), errors.Is(err, funnel.ErrNotQualified):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case usecase.IsDomainError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Something went wrong. Please try again."})
	}
}

// HandleReset returns the session's funnel to idle ("scan another").
func (h *FunnelHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}
	ctrl.Reset()
	writeJSON(w, http.StatusOK, ctrl.View())
}

// session returns the caller's controller, creating a session when the
// token is absent or unknown.
func (h *FunnelHandler) session(r *http.Request) (string, *funnel.Controller) {
	token := r.Header.Get(sessionHeader)

	h.mu.Lock()
	defer h.mu.Unlock()

	if token != "" {
		if entry, ok := h.sessions[token]; ok {
			entry.lastSeen = time.Now()
			return token, entry.controller
		}
	}

	token = uuid.New().String()
	entry := &sessionEntry{controller: h.factory(), lastSeen: time.Now()}
	h.sessions[token] = entry
	return token, entry.controller
}

func (h *FunnelHandler) lookup(r *http.Request) (*funnel.Controller, bool) {
	token := r.Header.Get(sessionHeader)
	if token == "" {
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.sessions[token]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.controller, true
}

func (h *FunnelHandler) evictStale() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		cutoff := time.Now().Add(-30 * time.Minute)
		for token, entry := range h.sessions {
			if entry.lastSeen.Before(cutoff) {
				delete(h.sessions, token)
			}
		}
		h.mu.Unlock()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
