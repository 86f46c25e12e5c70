package registry

import (
	"context"
	"errors"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/models"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrClinicNotFound  = errors.New("clinic not found")
	ErrBCBANotFound    = errors.New("bcba not found")
	ErrBCBAExists      = errors.New("bcba id already registered")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type PatientModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	FirstName string
	LastName  string
	// DOB is stored as the instant at midnight UTC of the calendar date.
	DOB       time.Time
	ICD       string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PatientModel) TableName() string {
	return "patients"
}

type ClinicModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	Address   string
	CreatedAt time.Time
}

func (ClinicModel) TableName() string {
	return "clinics"
}

// BCBAModel rows carry externally issued identifiers, so the primary key
// is never auto-generated.
type BCBAModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	CreatedAt time.Time
}

func (BCBAModel) TableName() string {
	return "bcbas"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PatientModel{}, &ClinicModel{}, &BCBAModel{})
}

// normalizeDOB clamps a date of birth to midnight UTC so no local-time
// component ever reaches the store.
func normalizeDOB(dob time.Time) time.Time {
	u := dob.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *Repository) CreatePatient(ctx context.Context, req models.CreatePatientRequest) (models.Patient, error) {
	now := time.Now().UTC()
	patient := PatientModel{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DOB:       normalizeDOB(req.DOB),
		ICD:       req.ICD,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return models.Patient{}, err
	}

	return mapPatientModel(patient), nil
}

func (r *Repository) GetPatient(ctx context.Context, id int64) (models.Patient, error) {
	var patient PatientModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Patient{}, ErrPatientNotFound
	}
	if err != nil {
		return models.Patient{}, err
	}
	return mapPatientModel(patient), nil
}

func (r *Repository) ListPatients(ctx context.Context) ([]models.Patient, error) {
	var rows []PatientModel
	if err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	patients := make([]models.Patient, 0, len(rows))
	for _, row := range rows {
		patients = append(patients, mapPatientModel(row))
	}
	return patients, nil
}

func (r *Repository) UpdatePatient(ctx context.Context, id int64, req models.UpdatePatientRequest) (models.Patient, error) {
	var patient PatientModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Patient{}, ErrPatientNotFound
	}
	if err != nil {
		return models.Patient{}, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.DOB != nil {
		patient.DOB = normalizeDOB(*req.DOB)
	}
	if req.ICD != nil {
		patient.ICD = *req.ICD
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	patient.UpdatedAt = time.Now().UTC()

	if err := r.db.WithContext(ctx).Save(&patient).Error; err != nil {
		return models.Patient{}, err
	}
	return mapPatientModel(patient), nil
}

func (r *Repository) PatientExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PatientModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateClinic(ctx context.Context, req models.CreateClinicRequest) (models.Clinic, error) {
	clinic := ClinicModel{
		Name:      req.Name,
		Address:   req.Address,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&clinic).Error; err != nil {
		return models.Clinic{}, err
	}
	return mapClinicModel(clinic), nil
}

func (r *Repository) GetClinic(ctx context.Context, id int64) (models.Clinic, error) {
	var clinic ClinicModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&clinic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Clinic{}, ErrClinicNotFound
	}
	if err != nil {
		return models.Clinic{}, err
	}
	return mapClinicModel(clinic), nil
}

func (r *Repository) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	var rows []ClinicModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	clinics := make([]models.Clinic, 0, len(rows))
	for _, row := range rows {
		clinics = append(clinics, mapClinicModel(row))
	}
	return clinics, nil
}

func (r *Repository) ClinicExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ClinicModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) RegisterBCBA(ctx context.Context, req models.RegisterBCBARequest) (models.BCBA, error) {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&BCBAModel{}).Where("id = ?", req.ID).Count(&existing).Error; err != nil {
		return models.BCBA{}, err
	}
	if existing > 0 {
		return models.BCBA{}, ErrBCBAExists
	}

	bcba := BCBAModel{
		ID:        req.ID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&bcba).Error; err != nil {
		return models.BCBA{}, err
	}
	return mapBCBAModel(bcba), nil
}

func (r *Repository) GetBCBA(ctx context.Context, id int64) (models.BCBA, error) {
	var bcba BCBAModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bcba).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BCBA{}, ErrBCBANotFound
	}
	if err != nil {
		return models.BCBA{}, err
	}
	return mapBCBAModel(bcba), nil
}

func (r *Repository) ListBCBAs(ctx context.Context) ([]models.BCBA, error) {
	var rows []BCBAModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	bcbas := make([]models.BCBA, 0, len(rows))
	for _, row := range rows {
		bcbas = append(bcbas, mapBCBAModel(row))
	}
	return bcbas, nil
}

func mapPatientModel(patient PatientModel) models.Patient {
	return models.Patient{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		DOB:       patient.DOB.UTC(),
		ICD:       patient.ICD,
		Address:   patient.Address,
		CreatedAt: patient.CreatedAt.UTC(),
		UpdatedAt: patient.UpdatedAt.UTC(),
	}
}

func mapClinicModel(clinic ClinicModel) models.Clinic {
	return models.Clinic{
		ID:        clinic.ID,
		Name:      clinic.Name,
		Address:   clinic.Address,
		CreatedAt: clinic.CreatedAt.UTC(),
	}
}

func mapBCBAModel(bcba BCBAModel) models.BCBA {
	return models.BCBA{
		ID:        bcba.ID,
		Name:      bcba.Name,
		CreatedAt: bcba.CreatedAt.UTC(),
	}
}
