package notes

import (
	"context"
	"strconv"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
)

// Store is the persistence surface the service mutates. *Repository is the
// production implementation.
type Store interface {
	CreateSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error)
	GetSessionNote(ctx context.Context, id int64) (models.SessionNote, error)
	GetSessionNoteDetail(ctx context.Context, id int64) (models.SessionNoteDetail, error)
	ListByClinician(ctx context.Context, bcbaID int64) ([]models.SessionNoteDetail, error)
	SaveSessionNote(ctx context.Context, note models.SessionNote) (models.SessionNote, error)
	DeleteSessionNote(ctx context.Context, id int64) error
	AppendAudit(ctx context.Context, entry AuditEntry) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) error
}

// Service is the single entry point mutating session-note state. Validation
// always runs before the store is touched, so a rejected request leaves no
// partial write behind. Audit rows, lifecycle events and cache invalidation
// happen after the committed write and are best-effort.
type Service struct {
	store  Store
	refs   ReferenceChecker
	events EventPublisher
	cache  *ListCache
}

func NewService(store Store, refs ReferenceChecker, events EventPublisher, cache *ListCache) *Service {
	return &Service{store: store, refs: refs, events: events, cache: cache}
}

func (s *Service) Create(ctx context.Context, req models.CreateSessionNoteRequest, actor string) (models.SessionNote, error) {
	if err := RunChecks(ctx,
		ClinicianPresent(req.BCBAID),
		PatientRefValid(s.refs, req.PatientID),
		ClinicRefValid(s.refs, req.ClinicID),
		NotesPresent(req.Notes),
	); err != nil {
		return models.SessionNote{}, err
	}

	aptDate := time.Now().UTC()
	if req.AptDate != nil {
		aptDate = req.AptDate.UTC()
	}

	note := models.SessionNote{
		BCBAID:    req.BCBAID,
		PatientID: req.PatientID,
		ClinicID:  normalizeClinicID(req.ClinicID),
		AptDate:   aptDate,
		Duration:  req.Duration,
		Notes:     *req.Notes,
	}

	created, err := s.store.CreateSessionNote(ctx, note)
	if err != nil {
		return models.SessionNote{}, err
	}

	s.afterMutation(ctx, actor, "note_created", created)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (models.SessionNoteDetail, error) {
	return s.store.GetSessionNoteDetail(ctx, id)
}

// ListByClinician returns the clinician's notes, newest appointment first,
// enriched with patient and clinic display names. A clinician with no notes
// gets an empty slice, not an error.
func (s *Service) ListByClinician(ctx context.Context, bcbaID int64) ([]models.SessionNoteDetail, error) {
	if details, ok := s.cache.Get(ctx, bcbaID); ok {
		return details, nil
	}

	details, err := s.store.ListByClinician(ctx, bcbaID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, bcbaID, details)
	return details, nil
}

// Update applies the supplied subset of fields to an existing note. Nil
// request fields leave the stored values untouched; only the references
// actually being changed are re-validated.
func (s *Service) Update(ctx context.Context, id int64, req models.UpdateSessionNoteRequest, actor string) (models.SessionNote, error) {
	existing, err := s.store.GetSessionNote(ctx, id)
	if err != nil {
		return models.SessionNote{}, err
	}

	var checks []Check
	if req.PatientID != nil {
		checks = append(checks, PatientRefValid(s.refs, *req.PatientID))
	}
	if req.ClinicID != nil && !req.ClearClinic {
		checks = append(checks, ClinicRefValid(s.refs, req.ClinicID))
	}
	if req.Notes != nil {
		checks = append(checks, NotesPresent(req.Notes))
	}
	if err := RunChecks(ctx, checks...); err != nil {
		return models.SessionNote{}, err
	}

	if req.PatientID != nil {
		existing.PatientID = *req.PatientID
	}
	switch {
	case req.ClearClinic:
		existing.ClinicID = nil
	case req.ClinicID != nil:
		existing.ClinicID = normalizeClinicID(req.ClinicID)
	}
	if req.AptDate != nil {
		existing.AptDate = req.AptDate.UTC()
	}
	switch {
	case req.ClearDuration:
		existing.Duration = nil
	case req.Duration != nil:
		existing.Duration = req.Duration
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}

	updated, err := s.store.SaveSessionNote(ctx, existing)
	if err != nil {
		return models.SessionNote{}, err
	}

	s.afterMutation(ctx, actor, "note_updated", updated)
	return updated, nil
}

// Delete permanently removes the note. Deleting an id a second time yields
// NotFoundError, which callers treat as an outcome rather than a failure.
func (s *Service) Delete(ctx context.Context, id int64, actor string) error {
	note, err := s.store.GetSessionNote(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSessionNote(ctx, id); err != nil {
		return err
	}

	s.afterMutation(ctx, actor, "note_deleted", note)
	return nil
}

func (s *Service) afterMutation(ctx context.Context, actor, action string, note models.SessionNote) {
	payload := map[string]interface{}{
		"note_id": note.ID,
		"bcba":    note.BCBAID,
		"patient": note.PatientID,
	}

	if err := s.store.AppendAudit(ctx, AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "session_note",
		EntityID: strconv.FormatInt(note.ID, 10),
		Payload:  payload,
	}); err != nil {
		logger.Log.WithError(err).WithField("note_id", note.ID).Warn("Failed to append audit entry")
	}

	if s.events != nil {
		if err := s.events.PublishEvent(ctx, action, payload); err != nil {
			logger.Log.WithError(err).WithField("note_id", note.ID).Warn("Failed to publish note event")
		}
	}

	s.cache.Invalidate(ctx, note.BCBAID)
}

// normalizeClinicID folds the zero sentinel into "no clinic" so a zero id
// never reaches the store as a dangling reference.
func normalizeClinicID(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
