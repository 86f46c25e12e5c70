package models

import "time"

// Core entities

type Patient struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	DOB       time.Time `json:"dob"`
	ICD       string    `json:"icd,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the denormalized name used on session-note listings.
func (p Patient) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

type Clinic struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BCBA is the clinician who authors session notes. The identifier is
// supplied by the credentialing system, not generated by the store.
type BCBA struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionNote links a clinician, a patient, an optional clinic, an
// appointment instant and free-text notes. All timestamps are UTC.
// The clinician reference is never checked against the BCBA registry;
// notes from clinicians that were onboarded elsewhere must still save.
type SessionNote struct {
	ID        int64      `json:"id"`
	BCBAID    int64      `json:"bcba"`
	PatientID int64      `json:"patient"`
	ClinicID  *int64     `json:"clinic,omitempty"`
	AptDate   time.Time  `json:"apt_date"`
	Duration  *int       `json:"duration,omitempty"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SessionNoteDetail is a SessionNote enriched with display names for
// listing screens.
type SessionNoteDetail struct {
	SessionNote
	PatientName string `json:"patient_name"`
	ClinicName  string `json:"clinic_name"`
	BCBAName    string `json:"bcba_name,omitempty"`
}

// Request payloads

type CreateSessionNoteRequest struct {
	BCBAID    int64      `json:"bcba"`
	PatientID int64      `json:"patient_id"`
	ClinicID  *int64     `json:"clinic_id,omitempty"`
	AptDate   *time.Time `json:"apt_date,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	Notes     *string    `json:"notes"`
}

// UpdateSessionNoteRequest carries a partial update. A nil pointer means
// "leave unchanged"; the Clear* flags are the explicit way to null an
// optional field, so absence is never conflated with erasure.
type UpdateSessionNoteRequest struct {
	PatientID     *int64     `json:"patient_id,omitempty"`
	ClinicID      *int64     `json:"clinic_id,omitempty"`
	ClearClinic   bool       `json:"clear_clinic,omitempty"`
	AptDate       *time.Time `json:"apt_date,omitempty"`
	Duration      *int       `json:"duration,omitempty"`
	ClearDuration bool       `json:"clear_duration,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	DOB       time.Time `json:"dob"`
	ICD       string    `json:"icd,omitempty"`
	Address   string    `json:"address,omitempty"`
}

type UpdatePatientRequest struct {
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	ICD       *string    `json:"icd,omitempty"`
	Address   *string    `json:"address,omitempty"`
}

type CreateClinicRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type RegisterBCBARequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Note generation

type GenerateNoteRequest struct {
	Observations string     `json:"observations"`
	Model        string     `json:"model,omitempty"`
	PatientID    *int64     `json:"patient_id,omitempty"`
	ClinicID     *int64     `json:"clinic_id,omitempty"`
	AptDate      *time.Time `json:"apt_date,omitempty"`
	Duration     *int       `json:"duration,omitempty"`
	Timezone     string     `json:"timezone,omitempty"`
}

type GeneratedNote struct {
	Text         string `json:"generated_note"`
	ModelUsed    string `json:"model_used"`
	TemplateUsed bool   `json:"template_used"`
}

// Event bus

type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // note_created, note_updated, note_deleted
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}
