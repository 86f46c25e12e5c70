package generation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
	"github.com/brightpath-aba/platform/pkg/registry"
	"github.com/gorilla/mux"
)

type Handler struct {
	service   *Service
	directory *registry.Service
}

func NewHandler(service *Service, directory *registry.Service) *Handler {
	return &Handler{service: service, directory: directory}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/llm", h.handleGenerate).Methods(http.MethodPost)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Observations == "" {
		http.Error(w, "observations are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	var patient *models.Patient
	if req.PatientID != nil && *req.PatientID != 0 {
		p, err := h.directory.GetPatient(ctx, *req.PatientID)
		if errors.Is(err, registry.ErrPatientNotFound) {
			http.Error(w, "patient does not exist", http.StatusBadRequest)
			return
		}
		if err != nil {
			logger.Log.WithError(err).Error("failed to load patient for generation")
			http.Error(w, "failed to load patient", http.StatusInternalServerError)
			return
		}
		patient = &p
	}

	var clinic *models.Clinic
	if req.ClinicID != nil && *req.ClinicID != 0 {
		c, err := h.directory.GetClinic(ctx, *req.ClinicID)
		if errors.Is(err, registry.ErrClinicNotFound) {
			http.Error(w, "clinic does not exist", http.StatusBadRequest)
			return
		}
		if err != nil {
			logger.Log.WithError(err).Error("failed to load clinic for generation")
			http.Error(w, "failed to load clinic", http.StatusInternalServerError)
			return
		}
		clinic = &c
	}

	loc := time.UTC
	if req.Timezone != "" {
		parsed, err := time.LoadLocation(req.Timezone)
		if err != nil {
			http.Error(w, "invalid timezone", http.StatusBadRequest)
			return
		}
		loc = parsed
	}

	aptDate := time.Now().UTC()
	if req.AptDate != nil {
		aptDate = req.AptDate.UTC()
	}

	noteContext := AssembleContext(patient, clinic, SessionInfo{
		AptDate:  aptDate,
		Duration: req.Duration,
		Location: loc,
	})

	generated, err := h.service.Generate(ctx, req.Observations, noteContext, req.Model)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generated)
}

func respondProviderError(w http.ResponseWriter, err error) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		status := http.StatusBadGateway
		if pe.Retryable() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{
			"error":     pe.Message,
			"kind":      string(pe.Kind),
			"retryable": pe.Retryable(),
		})
		return
	}

	logger.Log.WithError(err).Error("note generation failed")
	http.Error(w, "note generation failed", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
