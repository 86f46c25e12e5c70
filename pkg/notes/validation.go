package notes

import (
	"context"
	"fmt"
)

// ReferenceChecker resolves foreign keys during validation without exposing
// the rest of the store to the checks.
type ReferenceChecker interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	ClinicExists(ctx context.Context, id int64) (bool, error)
}

// Check is one validation step. It performs no mutation and returns either
// nil, a *ValidationError naming the field, or the store error when the
// lookup itself failed.
type Check func(ctx context.Context) error

// RunChecks evaluates checks in order and stops at the first failure.
func RunChecks(ctx context.Context, checks ...Check) error {
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ClinicianPresent only verifies that a clinician id was supplied. Existence
// against the BCBA registry is deliberately not checked: clinicians are
// onboarded by an external credentialing system and notes must save even
// when the local registry lags behind it.
func ClinicianPresent(id int64) Check {
	return func(context.Context) error {
		if id == 0 {
			return &ValidationError{Field: "bcba", Reason: "clinician id is required"}
		}
		return nil
	}
}

// PatientRefValid requires the patient id to resolve to a stored patient.
func PatientRefValid(refs ReferenceChecker, id int64) Check {
	return func(ctx context.Context) error {
		if id == 0 {
			return &ValidationError{Field: "patient", Reason: "patient id is required"}
		}
		ok, err := refs.PatientExists(ctx, id)
		if err != nil {
			return fmt.Errorf("checking patient %d: %w", id, err)
		}
		if !ok {
			return &ValidationError{Field: "patient", Reason: fmt.Sprintf("patient %d does not exist", id)}
		}
		return nil
	}
}

// ClinicRefValid validates the clinic reference when one was supplied.
// A nil or zero id means "no clinic" and passes.
func ClinicRefValid(refs ReferenceChecker, id *int64) Check {
	return func(ctx context.Context) error {
		if id == nil || *id == 0 {
			return nil
		}
		ok, err := refs.ClinicExists(ctx, *id)
		if err != nil {
			return fmt.Errorf("checking clinic %d: %w", *id, err)
		}
		if !ok {
			return &ValidationError{Field: "clinic", Reason: fmt.Sprintf("clinic %d does not exist", *id)}
		}
		return nil
	}
}

// NotesPresent requires the notes field to be supplied. The empty string is
// a legal note body; only absence fails.
func NotesPresent(text *string) Check {
	return func(context.Context) error {
		if text == nil {
			return &ValidationError{Field: "notes", Reason: "notes text is required"}
		}
		return nil
	}
}
