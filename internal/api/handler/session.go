package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/request"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/api/sse"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/session"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessions   session.ManagerInterface
	hubManager *sse.HubManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions session.ManagerInterface, hubManager *sse.HubManager) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		hubManager: hubManager,
	}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apierr.NewInvalidRequestError("Invalid request body")
	}
	return nil
}

func (h *SessionHandler) writeSnapshot(w http.ResponseWriter, status int, snap *game.Snapshot, err error) {
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, status, response.SessionFromSnapshot(snap))
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if req.MinWords < 0 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("min_words must not be negative"))
		return
	}

	snap, err := h.sessions.Create(r.Context(), session.Options{
		Language: model.Language(strings.ToLower(req.Language)),
		MinWords: req.MinWords,
	})
	h.writeSnapshot(w, http.StatusCreated, snap, err)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Snapshot(sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Remove(sessionID(r)); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Select handles POST /api/v1/sessions/{id}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req request.SelectRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}
	snap, err := h.sessions.ToggleSelection(sessionID(r), req.Position())
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// ClearSelection handles DELETE /api/v1/sessions/{id}/select
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.ClearSelection(sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Submit handles POST /api/v1/sessions/{id}/words
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	result, err := h.sessions.Submit(sessionID(r), game.Submission{
		Word: strings.ToUpper(strings.TrimSpace(req.Word)),
		Path: req.Path,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.Accepted(w, response.SubmitResponseFromResult(result))
}

// Swap handles POST /api/v1/sessions/{id}/swap
func (h *SessionHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req request.SwapRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	result, err := h.sessions.Swap(sessionID(r), req.A, req.B)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.Accepted(w, response.SubmitResponseFromResult(result))
}

// Pause handles POST /api/v1/sessions/{id}/pause
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Pause(sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Resume handles POST /api/v1/sessions/{id}/resume
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Resume(sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Recover handles POST /api/v1/sessions/{id}/recover
func (h *SessionHandler) Recover(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Recover(sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Restart handles POST /api/v1/sessions/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Restart(r.Context(), sessionID(r))
	h.writeSnapshot(w, http.StatusOK, snap, err)
}

// Hint handles GET /api/v1/sessions/{id}/hint
func (h *SessionHandler) Hint(w http.ResponseWriter, r *http.Request) {
	match, found, err := h.sessions.Hint(sessionID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.HintResponse{Found: found}
	if found {
		m := response.WordMatchFromModel(match)
		resp.Match = &m
	}
	response.OK(w, resp)
}

// Events handles GET /api/v1/sessions/{id}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if !h.sessions.Exists(id) {
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}
	if h.hubManager == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Event streaming is disabled"))
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	// A session removed before its hub existed never closes it
	if !h.sessions.Exists(id) {
		h.hubManager.RemoveHub(id)
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}
	sse.ServeSSE(w, r, hub)
}
