package registry

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
	r.HandleFunc("/patients", h.handleCreatePatient).Methods(http.MethodPost)
	r.HandleFunc("/patients", h.handleListPatients).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", h.handleGetPatient).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", h.handleUpdatePatient).Methods(http.MethodPut)
	r.HandleFunc("/clinics", h.handleCreateClinic).Methods(http.MethodPost)
	r.HandleFunc("/clinics", h.handleListClinics).Methods(http.MethodGet)
	r.HandleFunc("/clinics/{id}", h.handleGetClinic).Methods(http.MethodGet)
	r.HandleFunc("/bcbas", h.handleRegisterBCBA).Methods(http.MethodPost)
	r.HandleFunc("/bcbas", h.handleListBCBAs).Methods(http.MethodGet)
	r.HandleFunc("/bcbas/{id}", h.handleGetBCBA).Methods(http.MethodGet)
}

func (h *Handler) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		http.Error(w, "first_name and last_name are required", http.StatusBadRequest)
		return
	}
	if req.DOB.IsZero() {
		http.Error(w, "dob is required", http.StatusBadRequest)
		return
	}
	patient, err := h.service.CreatePatient(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).Error("failed to create patient")
		http.Error(w, "failed to create patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"patient": patient})
}

func (h *Handler) handleListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list patients")
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": patients})
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	patient, err := h.service.GetPatient(r.Context(), id)
	if errors.Is(err, ErrPatientNotFound) {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to get patient")
		http.Error(w, "failed to get patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"patient": patient})
}

func (h *Handler) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	var req models.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	patient, err := h.service.UpdatePatient(r.Context(), id, req)
	if errors.Is(err, ErrPatientNotFound) {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to update patient")
		http.Error(w, "failed to update patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"patient": patient})
}

func (h *Handler) handleCreateClinic(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	clinic, err := h.service.CreateClinic(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).Error("failed to create clinic")
		http.Error(w, "failed to create clinic", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"clinic": clinic})
}

func (h *Handler) handleListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.service.ListClinics(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list clinics")
		http.Error(w, "failed to list clinics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": clinics})
}

func (h *Handler) handleGetClinic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid clinic id", http.StatusBadRequest)
		return
	}
	clinic, err := h.service.GetClinic(r.Context(), id)
	if errors.Is(err, ErrClinicNotFound) {
		http.Error(w, "clinic not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to get clinic")
		http.Error(w, "failed to get clinic", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clinic": clinic})
}

func (h *Handler) handleRegisterBCBA(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterBCBARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.ID == 0 || req.Name == "" {
		http.Error(w, "id and name are required", http.StatusBadRequest)
		return
	}
	bcba, err := h.service.RegisterBCBA(r.Context(), req)
	if errors.Is(err, ErrBCBAExists) {
		http.Error(w, "bcba id already registered", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to register bcba")
		http.Error(w, "failed to register bcba", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"bcba": bcba})
}

func (h *Handler) handleListBCBAs(w http.ResponseWriter, r *http.Request) {
	bcbas, err := h.service.ListBCBAs(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list bcbas")
		http.Error(w, "failed to list bcbas", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": bcbas})
}

func (h *Handler) handleGetBCBA(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid bcba id", http.StatusBadRequest)
		return
	}
	bcba, err := h.service.GetBCBA(r.Context(), id)
	if errors.Is(err, ErrBCBANotFound) {
		http.Error(w, "bcba not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to get bcba")
		http.Error(w, "failed to get bcba", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bcba": bcba})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
