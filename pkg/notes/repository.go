package notes

import (
	"context"
	"errors"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SessionNoteModel keeps the short column names of the original schema
// (bcba, patient, clinic) so existing data migrates in place. The bcba
// column is indexed but carries no foreign key constraint.
type SessionNoteModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	BCBA      int64  `gorm:"column:bcba;index"`
	Patient   int64  `gorm:"column:patient;index"`
	Clinic    *int64 `gorm:"column:clinic"`
	AptDate   time.Time
	Duration  *int
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SessionNoteModel) TableName() string {
	return "session_notes"
}

type AuditLogModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Actor     string
	Action    string `gorm:"index"`
	Entity    string
	EntityID  string
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&SessionNoteModel{}, &AuditLogModel{})
}

func (r *Repository) CreateSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error) {
	now := time.Now().UTC()
	row := SessionNoteModel{
		BCBA:      note.BCBAID,
		Patient:   note.PatientID,
		Clinic:    note.ClinicID,
		AptDate:   note.AptDate.UTC(),
		Duration:  note.Duration,
		Notes:     note.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.SessionNote{}, err
	}
	return mapSessionNoteModel(row), nil
}

func (r *Repository) GetSessionNote(ctx context.Context, id int64) (models.SessionNote, error) {
	var row SessionNoteModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SessionNote{}, &NotFoundError{Entity: "session note", ID: id}
	}
	if err != nil {
		return models.SessionNote{}, err
	}
	return mapSessionNoteModel(row), nil
}

// detailRow is the scan target for the denormalizing joins. Clinic and BCBA
// joins are LEFT JOINs: a note may legitimately have no clinic, and the
// clinician reference is unvalidated so the bcbas row may be missing.
type detailRow struct {
	ID               int64
	BCBA             int64
	Patient          int64
	Clinic           *int64
	AptDate          time.Time
	Duration         *int
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PatientFirstName string
	PatientLastName  string
	ClinicName       *string
	BCBAName         *string
}

const detailSelect = `session_notes.id, session_notes.bcba, session_notes.patient, session_notes.clinic,
session_notes.apt_date, session_notes.duration, session_notes.notes,
session_notes.created_at, session_notes.updated_at,
patients.first_name AS patient_first_name, patients.last_name AS patient_last_name,
clinics.name AS clinic_name, bcbas.name AS bcba_name`

func (r *Repository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("session_notes").
		Select(detailSelect).
		Joins("JOIN patients ON patients.id = session_notes.patient").
		Joins("LEFT JOIN clinics ON clinics.id = session_notes.clinic").
		Joins("LEFT JOIN bcbas ON bcbas.id = session_notes.bcba")
}

func (r *Repository) GetSessionNoteDetail(ctx context.Context, id int64) (models.SessionNoteDetail, error) {
	var rows []detailRow
	err := r.detailQuery(ctx).Where("session_notes.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return models.SessionNoteDetail{}, err
	}
	if len(rows) == 0 {
		return models.SessionNoteDetail{}, &NotFoundError{Entity: "session note", ID: id}
	}
	return mapDetailRow(rows[0]), nil
}

func (r *Repository) ListByClinician(ctx context.Context, bcbaID int64) ([]models.SessionNoteDetail, error) {
	var rows []detailRow
	err := r.detailQuery(ctx).
		Where("session_notes.bcba = ?", bcbaID).
		Order("session_notes.apt_date DESC, session_notes.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionNoteDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, mapDetailRow(row))
	}
	return details, nil
}

// SaveSessionNote overwrites the stored row with the supplied record. The
// identifier never changes; callers load the existing record and apply
// their partial changes before saving.
func (r *Repository) SaveSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error) {
	row := SessionNoteModel{
		ID:        note.ID,
		BCBA:      note.BCBAID,
		Patient:   note.PatientID,
		Clinic:    note.ClinicID,
		AptDate:   note.AptDate.UTC(),
		Duration:  note.Duration,
		Notes:     note.Notes,
		CreatedAt: note.CreatedAt.UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	result := r.db.WithContext(ctx).
		Model(&SessionNoteModel{}).
		Where("id = ?", note.ID).
		Select("bcba", "patient", "clinic", "apt_date", "duration", "notes", "updated_at").
		Updates(&row)
	if result.Error != nil {
		return models.SessionNote{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.SessionNote{}, &NotFoundError{Entity: "session note", ID: note.ID}
	}
	return mapSessionNoteModel(row), nil
}

func (r *Repository) DeleteSessionNote(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&SessionNoteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "session note", ID: id}
	}
	return nil
}

type AuditEntry struct {
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Payload  map[string]interface{}
}

func (r *Repository) AppendAudit(ctx context.Context, entry AuditEntry) error {
	row := AuditLogModel{
		Actor:     entry.Actor,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Payload:   datatypes.JSONMap(entry.Payload),
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func mapSessionNoteModel(row SessionNoteModel) models.SessionNote {
	return models.SessionNote{
		ID:        row.ID,
		BCBAID:    row.BCBA,
		PatientID: row.Patient,
		ClinicID:  row.Clinic,
		AptDate:   row.AptDate.UTC(),
		Duration:  row.Duration,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func mapDetailRow(row detailRow) models.SessionNoteDetail {
	detail := models.SessionNoteDetail{
		SessionNote: models.SessionNote{
			ID:        row.ID,
			BCBAID:    row.BCBA,
			PatientID: row.Patient,
			ClinicID:  row.Clinic,
			AptDate:   row.AptDate.UTC(),
			Duration:  row.Duration,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt.UTC(),
			UpdatedAt: row.UpdatedAt.UTC(),
		},
		PatientName: row.PatientFirstName + " " + row.PatientLastName,
		ClinicName:  "No Clinic",
	}
	if row.ClinicName != nil && *row.ClinicName != "" {
		detail.ClinicName = *row.ClinicName
	}
	if row.BCBAName != nil {
		detail.BCBAName = *row.BCBAName
	}
	return detail
}
