package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
)

func init() {
	logger.Init()
}

func newTestService() (*Service, *memStore, *capturePublisher) {
	store := newMemStore()
	publisher := &capturePublisher{}
	return NewService(store, store, publisher, nil), store, publisher
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

func TestCreateSessionNoteWithAllFields(t *testing.T) {
	service, store, publisher := newTestService()
	store.addPatient(1, "Jane", "Doe")
	store.addClinic(7, "Main Street Clinic")

	aptDate := time.Date(2025, 2, 1, 14, 30, 0, 0, time.UTC)
	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		ClinicID:  int64Ptr(7),
		AptDate:   &aptDate,
		Duration:  intPtr(75),
		Notes:     strPtr("Patient demonstrated excellent progress in communication skills today."),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note.ID == 0 {
		t.Fatal("expected a generated id")
	}
	if note.BCBAID != 101 || note.PatientID != 1 {
		t.Fatalf("foreign keys do not match inputs: %+v", note)
	}
	if note.ClinicID == nil || *note.ClinicID != 7 {
		t.Fatalf("expected clinic 7, got %v", note.ClinicID)
	}
	if !note.AptDate.Equal(aptDate) {
		t.Fatalf("expected apt date %v, got %v", aptDate, note.AptDate)
	}
	if note.Duration == nil || *note.Duration != 75 {
		t.Fatalf("expected duration 75, got %v", note.Duration)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "note_created" {
		t.Fatalf("expected note_created event, got %v", publisher.events)
	}
	if len(store.audits) != 1 || store.audits[0].Action != "note_created" {
		t.Fatalf("expected note_created audit entry, got %v", store.audits)
	}
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	service, store, _ := newTestService()

	_, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 42,
		Notes:     strPtr("should not persist"),
	}, "101")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != "patient" {
		t.Fatalf("expected field patient, got %q", ve.Field)
	}
	if len(store.notes) != 0 {
		t.Fatalf("store gained %d rows on rejected create", len(store.notes))
	}
}

func TestCreateRejectsUnknownClinic(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	_, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		ClinicID:  int64Ptr(99),
		Notes:     strPtr("should not persist"),
	}, "101")

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "clinic" {
		t.Fatalf("expected clinic validation error, got %v", err)
	}
	if len(store.notes) != 0 {
		t.Fatal("store should remain empty")
	}
}

func TestCreateWithoutClinic(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Notes:     strPtr("Home-based session."),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.ClinicID != nil {
		t.Fatalf("expected nil clinic, got %v", *note.ClinicID)
	}
}

func TestCreateTreatsZeroClinicAsAbsent(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		ClinicID:  int64Ptr(0),
		Notes:     strPtr(""),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.ClinicID != nil {
		t.Fatalf("expected nil clinic for zero sentinel, got %v", *note.ClinicID)
	}
}

func TestCreateDefaultsAppointmentToNow(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	before := time.Now().UTC()
	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Notes:     strPtr("Session with default timestamp."),
	}, "101")
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note.AptDate.Before(before) || note.AptDate.After(after) {
		t.Fatalf("expected apt date between %v and %v, got %v", before, after, note.AptDate)
	}
	if note.AptDate.Location() != time.UTC {
		t.Fatalf("expected UTC apt date, got %v", note.AptDate.Location())
	}
}

func TestCreateAllowsUnregisteredClinician(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	// 99999 is not in the bcbas table; the note must still save.
	if _, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    99999,
		PatientID: 1,
		Notes:     strPtr("authored by an unregistered clinician"),
	}, "99999"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateAcceptsZeroDurationAndEmptyNotes(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Duration:  intPtr(0),
		Notes:     strPtr(""),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := service.GetByID(context.Background(), note.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Duration == nil || *got.Duration != 0 {
		t.Fatalf("expected zero duration to round-trip, got %v", got.Duration)
	}
	if got.Notes != "" {
		t.Fatalf("expected empty notes to round-trip, got %q", got.Notes)
	}
}

func TestCreateAllowsDuplicateAppointmentInstants(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")
	store.addPatient(2, "John", "Smith")

	aptDate := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	first, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		AptDate:   &aptDate,
		Notes:     strPtr("first"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 2,
		AptDate:   &aptDate,
		Notes:     strPtr("second"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("expected two independent rows")
	}
	if len(store.notes) != 2 {
		t.Fatalf("expected 2 stored notes, got %d", len(store.notes))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.GetByID(context.Background(), 42)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if nf.Entity != "session note" || nf.ID != 42 {
		t.Fatalf("unexpected not found detail: %+v", nf)
	}
}

func TestUpdateNotesOnlyLeavesOtherFieldsUnchanged(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")
	store.addClinic(7, "Main Street Clinic")

	aptDate := time.Date(2025, 2, 1, 14, 30, 0, 0, time.UTC)
	created, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		ClinicID:  int64Ptr(7),
		AptDate:   &aptDate,
		Duration:  intPtr(45),
		Notes:     strPtr("original"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := service.Update(context.Background(), created.ID, models.UpdateSessionNoteRequest{
		Notes: strPtr("rewritten after review"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.ID != created.ID {
		t.Fatal("update must not change the identifier")
	}
	if updated.Notes != "rewritten after review" {
		t.Fatalf("expected updated notes, got %q", updated.Notes)
	}
	if updated.PatientID != created.PatientID ||
		updated.BCBAID != created.BCBAID ||
		!updated.AptDate.Equal(created.AptDate) {
		t.Fatalf("unrelated fields changed: %+v vs %+v", updated, created)
	}
	if updated.ClinicID == nil || *updated.ClinicID != 7 {
		t.Fatalf("clinic changed: %v", updated.ClinicID)
	}
	if updated.Duration == nil || *updated.Duration != 45 {
		t.Fatalf("duration changed: %v", updated.Duration)
	}
}

func TestUpdateDurationOnly(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	aptDate := time.Date(2025, 2, 1, 14, 30, 0, 0, time.UTC)
	created, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		AptDate:   &aptDate,
		Duration:  intPtr(45),
		Notes:     strPtr("original"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := service.Update(context.Background(), created.ID, models.UpdateSessionNoteRequest{
		Duration: intPtr(60),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Duration == nil || *updated.Duration != 60 {
		t.Fatalf("expected duration 60, got %v", updated.Duration)
	}
	if updated.Notes != created.Notes ||
		updated.PatientID != created.PatientID ||
		updated.ClinicID != nil ||
		!updated.AptDate.Equal(created.AptDate) {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
}

func TestUpdateClearsOptionalFieldsExplicitly(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")
	store.addClinic(7, "Main Street Clinic")

	created, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		ClinicID:  int64Ptr(7),
		Duration:  intPtr(45),
		Notes:     strPtr("original"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := service.Update(context.Background(), created.ID, models.UpdateSessionNoteRequest{
		ClearClinic:   true,
		ClearDuration: true,
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.ClinicID != nil {
		t.Fatalf("expected cleared clinic, got %v", *updated.ClinicID)
	}
	if updated.Duration != nil {
		t.Fatalf("expected cleared duration, got %v", *updated.Duration)
	}
	if updated.Notes != "original" {
		t.Fatalf("notes changed: %q", updated.Notes)
	}
}

func TestUpdateRevalidatesChangedPatient(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	created, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Notes:     strPtr("original"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = service.Update(context.Background(), created.ID, models.UpdateSessionNoteRequest{
		PatientID: int64Ptr(42),
	}, "101")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "patient" {
		t.Fatalf("expected patient validation error, got %v", err)
	}

	// The stored record must be untouched after the rejected update.
	got, err := service.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PatientID != 1 {
		t.Fatalf("rejected update mutated the record: %+v", got)
	}
}

func TestUpdateMissingNoteReturnsNotFound(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Update(context.Background(), 42, models.UpdateSessionNoteRequest{
		Notes: strPtr("x"),
	}, "101")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeleteIsIdempotentInEffect(t *testing.T) {
	service, store, publisher := newTestService()
	store.addPatient(1, "Jane", "Doe")

	created, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Notes:     strPtr("to be removed"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.Delete(context.Background(), created.ID, "101"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if len(store.notes) != 0 {
		t.Fatal("record still present after delete")
	}

	err = service.Delete(context.Background(), created.ID, "101")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	// Only one deletion event should have been published.
	deleted := 0
	for _, event := range publisher.events {
		if event == "note_deleted" {
			deleted++
		}
	}
	if deleted != 1 {
		t.Fatalf("expected exactly one note_deleted event, got %d", deleted)
	}
}

func TestListByClinicianScenario(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	note, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID:    101,
		PatientID: 1,
		Duration:  intPtr(45),
		Notes:     strPtr("Observed 8/10 correct responses"),
	}, "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note.ClinicID != nil {
		t.Fatalf("expected nil clinic, got %v", *note.ClinicID)
	}
	if note.Duration == nil || *note.Duration != 45 {
		t.Fatalf("expected duration 45, got %v", note.Duration)
	}
	if delta := time.Since(note.AptDate); delta < 0 || delta > 5*time.Second {
		t.Fatalf("expected apt date near now, got %v", note.AptDate)
	}

	details, err := service.ListByClinician(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected exactly one note, got %d", len(details))
	}
	if details[0].ID != note.ID {
		t.Fatalf("expected note %d, got %d", note.ID, details[0].ID)
	}
	if details[0].PatientName != "Jane Doe" {
		t.Fatalf("expected patient name Jane Doe, got %q", details[0].PatientName)
	}
	if details[0].ClinicName != "No Clinic" {
		t.Fatalf("expected No Clinic sentinel, got %q", details[0].ClinicName)
	}
}

func TestListByClinicianEmpty(t *testing.T) {
	service, _, _ := newTestService()

	details, err := service.ListByClinician(context.Background(), 101)
	if err != nil {
		t.Fatalf("expected empty list, got error %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("expected no notes, got %d", len(details))
	}
}

func TestListByClinicianOrdersNewestFirst(t *testing.T) {
	service, store, _ := newTestService()
	store.addPatient(1, "Jane", "Doe")

	early := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

	if _, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID: 101, PatientID: 1, AptDate: &early, Notes: strPtr("early"),
	}, "101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Create(context.Background(), models.CreateSessionNoteRequest{
		BCBAID: 101, PatientID: 1, AptDate: &late, Notes: strPtr("late"),
	}, "101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	details, err := service.ListByClinician(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(details))
	}
	if details[0].Notes != "late" || details[1].Notes != "early" {
		t.Fatalf("expected newest first, got %q then %q", details[0].Notes, details[1].Notes)
	}
}
