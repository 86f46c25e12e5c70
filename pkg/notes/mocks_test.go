package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/models"
)

// memStore is an in-memory Store and ReferenceChecker used across the
// service tests.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	notes    map[int64]models.SessionNote
	patients map[int64]models.Patient
	clinics  map[int64]models.Clinic
	bcbas    map[int64]string
	audits   []AuditEntry
}

func newMemStore() *memStore {
	return &memStore{
		notes:    make(map[int64]models.SessionNote),
		patients: make(map[int64]models.Patient),
		clinics:  make(map[int64]models.Clinic),
		bcbas:    make(map[int64]string),
	}
}

func (m *memStore) addPatient(id int64, first, last string) {
	m.patients[id] = models.Patient{ID: id, FirstName: first, LastName: last}
}

func (m *memStore) addClinic(id int64, name string) {
	m.clinics[id] = models.Clinic{ID: id, Name: name}
}

func (m *memStore) PatientExists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.patients[id]
	return ok, nil
}

func (m *memStore) ClinicExists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.clinics[id]
	return ok, nil
}

func (m *memStore) CreateSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	note.ID = m.nextID
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	m.notes[note.ID] = note
	return note, nil
}

func (m *memStore) GetSessionNote(ctx context.Context, id int64) (models.SessionNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok {
		return models.SessionNote{}, &NotFoundError{Entity: "session note", ID: id}
	}
	return note, nil
}

func (m *memStore) GetSessionNoteDetail(ctx context.Context, id int64) (models.SessionNoteDetail, error) {
	note, err := m.GetSessionNote(ctx, id)
	if err != nil {
		return models.SessionNoteDetail{}, err
	}
	return m.detail(note), nil
}

func (m *memStore) ListByClinician(ctx context.Context, bcbaID int64) ([]models.SessionNoteDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	details := make([]models.SessionNoteDetail, 0)
	for _, note := range m.notes {
		if note.BCBAID == bcbaID {
			details = append(details, m.detail(note))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		if !details[i].AptDate.Equal(details[j].AptDate) {
			return details[i].AptDate.After(details[j].AptDate)
		}
		return details[i].ID > details[j].ID
	})
	return details, nil
}

func (m *memStore) SaveSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[note.ID]; !ok {
		return models.SessionNote{}, &NotFoundError{Entity: "session note", ID: note.ID}
	}
	note.UpdatedAt = time.Now().UTC()
	m.notes[note.ID] = note
	return note, nil
}

func (m *memStore) DeleteSessionNote(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return &NotFoundError{Entity: "session note", ID: id}
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) AppendAudit(ctx context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, entry)
	return nil
}

func (m *memStore) detail(note models.SessionNote) models.SessionNoteDetail {
	detail := models.SessionNoteDetail{SessionNote: note, ClinicName: "No Clinic"}
	if patient, ok := m.patients[note.PatientID]; ok {
		detail.PatientName = patient.DisplayName()
	}
	if note.ClinicID != nil {
		if clinic, ok := m.clinics[*note.ClinicID]; ok {
			detail.ClinicName = clinic.Name
		}
	}
	if name, ok := m.bcbas[note.BCBAID]; ok {
		detail.BCBAName = name
	}
	return detail
}

type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}
