package registry

import (
	"context"
	"strings"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
)

// Service exposes the patient, clinic and BCBA registries. Patients are
// never deleted here; retention policy lives outside this service.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, req models.CreatePatientRequest) (models.Patient, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	patient, err := s.repo.CreatePatient(ctx, req)
	if err != nil {
		return models.Patient{}, err
	}
	logger.Log.WithField("patient_id", patient.ID).Info("Patient registered")
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (models.Patient, error) {
	return s.repo.GetPatient(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]models.Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, req models.UpdatePatientRequest) (models.Patient, error) {
	return s.repo.UpdatePatient(ctx, id, req)
}

func (s *Service) CreateClinic(ctx context.Context, req models.CreateClinicRequest) (models.Clinic, error) {
	req.Name = strings.TrimSpace(req.Name)
	return s.repo.CreateClinic(ctx, req)
}

func (s *Service) GetClinic(ctx context.Context, id int64) (models.Clinic, error) {
	return s.repo.GetClinic(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	return s.repo.ListClinics(ctx)
}

func (s *Service) RegisterBCBA(ctx context.Context, req models.RegisterBCBARequest) (models.BCBA, error) {
	bcba, err := s.repo.RegisterBCBA(ctx, req)
	if err != nil {
		return models.BCBA{}, err
	}
	logger.Log.WithField("bcba_id", bcba.ID).Info("BCBA registered")
	return bcba, nil
}

func (s *Service) GetBCBA(ctx context.Context, id int64) (models.BCBA, error) {
	return s.repo.GetBCBA(ctx, id)
}

func (s *Service) ListBCBAs(ctx context.Context) ([]models.BCBA, error) {
	return s.repo.ListBCBAs(ctx)
}
