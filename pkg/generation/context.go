package generation

import (
	"strconv"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/models"
)

// Context is the fully-computed payload handed to the generation provider.
// Every key is always present and holds a string sentinel when the source
// data is missing, never an empty or absent value.
type Context map[string]string

const (
	KeyClientName      = "client_name"
	KeyClientDOB       = "client_dob"
	KeyClientICD       = "client_icd"
	KeySessionDate     = "session_date"
	KeySessionTime     = "session_time"
	KeySessionDuration = "session_duration"
	KeySessionLocation = "session_location"
	KeyClinician       = "clinician"
	KeyClinic          = "clinic"
	KeyGoals           = "goals"
)

const (
	sentinelUnknownClient = "Unknown Client"
	sentinelNoClinic      = "No Clinic"
	sentinelNotProvided   = "Not provided"
)

// SessionInfo carries the appointment metadata for context assembly.
// AptDate is a UTC instant; Location is the calling user's zone, used only
// to render the local calendar date and time window.
type SessionInfo struct {
	AptDate  time.Time
	Duration *int
	Location *time.Location
}

// AssembleContext derives the context map from the patient, optional clinic
// and session metadata. It reads no clocks and performs no I/O, so the same
// inputs always produce the same map.
func AssembleContext(patient *models.Patient, clinic *models.Clinic, session SessionInfo) Context {
	c := Context{}

	if patient != nil {
		c[KeyClientName] = patient.DisplayName()
		c[KeyClientDOB] = patient.DOB.UTC().Format("01/02/2006")
		c[KeyClientICD] = sentinelNotProvided
		if patient.ICD != "" {
			c[KeyClientICD] = patient.ICD
		}
	} else {
		c[KeyClientName] = sentinelUnknownClient
		c[KeyClientDOB] = sentinelNotProvided
		c[KeyClientICD] = sentinelNotProvided
	}

	loc := session.Location
	if loc == nil {
		loc = time.UTC
	}
	local := session.AptDate.UTC().In(loc)
	c[KeySessionDate] = local.Format("January 2, 2006")

	if session.Duration != nil {
		end := local.Add(time.Duration(*session.Duration) * time.Minute)
		c[KeySessionTime] = local.Format("3:04 PM") + " - " + end.Format("3:04 PM")
		c[KeySessionDuration] = strconv.Itoa(*session.Duration)
	} else {
		c[KeySessionTime] = local.Format("3:04 PM")
		c[KeySessionDuration] = sentinelNotProvided
	}

	if clinic != nil {
		c[KeySessionLocation] = clinic.Name
		c[KeyClinic] = clinic.Name
	} else {
		c[KeySessionLocation] = sentinelNoClinic
		c[KeyClinic] = sentinelNoClinic
	}

	// Clinician resolution and goal enrichment land with the treatment-plan
	// integration; until then the prompt carries explicit placeholders.
	c[KeyClinician] = sentinelNotProvided
	c[KeyGoals] = sentinelNotProvided

	return c
}
