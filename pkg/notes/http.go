package notes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/session-notes", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/session-notes", h.handleListByClinician).Methods(http.MethodGet)
	r.HandleFunc("/session-notes/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/session-notes/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/session-notes/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.service.Create(r.Context(), req, resolveActor(r))
	if err != nil {
		respondError(w, err, "failed to create session note")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"session_note": note})
}

func (h *Handler) handleListByClinician(w http.ResponseWriter, r *http.Request) {
	bcbaID, err := strconv.ParseInt(r.URL.Query().Get("bcba_id"), 10, 64)
	if err != nil {
		http.Error(w, "bcba_id query parameter is required", http.StatusBadRequest)
		return
	}

	details, err := h.service.ListByClinician(r.Context(), bcbaID)
	if err != nil {
		respondError(w, err, "failed to list session notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": details})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseNoteID(r)
	if err != nil {
		http.Error(w, "invalid session note id", http.StatusBadRequest)
		return
	}

	detail, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, "failed to get session note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_note": detail})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseNoteID(r)
	if err != nil {
		http.Error(w, "invalid session note id", http.StatusBadRequest)
		return
	}

	var req models.UpdateSessionNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.service.Update(r.Context(), id, req, resolveActor(r))
	if err != nil {
		respondError(w, err, "failed to update session note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_note": note})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseNoteID(r)
	if err != nil {
		http.Error(w, "invalid session note id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id, resolveActor(r)); err != nil {
		respondError(w, err, "failed to delete session note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseNoteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// resolveActor identifies the acting clinician for the audit trail. The
// identifier arrives as an explicit header; authentication of that header
// belongs to the gateway in front of this service.
func resolveActor(r *http.Request) string {
	if actor := r.Header.Get("X-Clinician-ID"); actor != "" {
		return actor
	}
	return "system"
}

func respondError(w http.ResponseWriter, err error, fallback string) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": ve.Error(),
			"field": ve.Field,
		})
		return
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": nf.Error()})
		return
	}

	logger.Log.WithError(err).Error(fallback)
	http.Error(w, fallback, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
