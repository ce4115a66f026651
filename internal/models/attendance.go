package models

import (
	"encoding/json"
	"strings"
)

// AttendanceState is the canonical attendance status.
type AttendanceState string

const (
	AttendancePresent AttendanceState = "present"
	AttendanceLate    AttendanceState = "late"
	AttendanceAbsent  AttendanceState = "absent"
	AttendanceExcused AttendanceState = "excused"
)

// AttendanceStates lists every valid state.
var AttendanceStates = []AttendanceState{AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused}

var (
	stateToBackend = map[AttendanceState]string{
		AttendancePresent: "PRESENTE",
		AttendanceLate:    "RETARDO",
		AttendanceAbsent:  "AUSENTE",
		AttendanceExcused: "JUSTIFICADO",
	}
	stateLabels = map[AttendanceState]string{
		AttendancePresent: "Presente",
		AttendanceLate:    "Retardo",
		AttendanceAbsent:  "Ausente",
		AttendanceExcused: "Justificado",
	}
)

// ParseAttendanceState accepts canonical, backend and Spanish spellings.
func ParseAttendanceState(raw string) (AttendanceState, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present", "presente":
		return AttendancePresent, true
	case "late", "retardo":
		return AttendanceLate, true
	case "absent", "ausente":
		return AttendanceAbsent, true
	case "excused", "excuse", "justificado":
		return AttendanceExcused, true
	}
	return "", false
}

// StateFromBackend maps a remote status; unknown values fall back to present.
func StateFromBackend(raw string) AttendanceState {
	if state, ok := ParseAttendanceState(raw); ok {
		return state
	}
	return AttendancePresent
}

// Backend returns the remote spelling; unknown states map to PRESENTE.
func (s AttendanceState) Backend() string {
	if v, ok := stateToBackend[s]; ok {
		return v
	}
	return stateToBackend[AttendancePresent]
}

// Label returns the human readable Spanish label used in exports.
func (s AttendanceState) Label() string {
	if v, ok := stateLabels[s]; ok {
		return v
	}
	return "No definido"
}

// Tutorado is a student under a tutor's academic supervision.
type Tutorado struct {
	Matricula    string `json:"matricula"`
	Nombre       string `json:"nombre"`
	Carrera      string `json:"carrera"`
	Cuatrimestre string `json:"cuatrimestre"`
	Grupo        string `json:"grupo"`
}

// AttendanceRecord is one student's attendance on a date.
type AttendanceRecord struct {
	Date      string          `json:"date"`
	Matricula string          `json:"matricula"`
	Name      string          `json:"name,omitempty"`
	Career    string          `json:"career,omitempty"`
	Term      string          `json:"term,omitempty"`
	Group     string          `json:"group,omitempty"`
	State     AttendanceState `json:"state"`
	Notes     string          `json:"notes,omitempty"`
}

// AttendanceRoll is the editable list for one tutor and date.
type AttendanceRoll struct {
	TutorID string             `json:"tutor_id"`
	Date    string             `json:"date"`
	Records []AttendanceRecord `json:"records"`
}

// Counts tallies the roll by state.
func (r AttendanceRoll) Counts() map[AttendanceState]int {
	counts := make(map[AttendanceState]int, len(AttendanceStates))
	for _, state := range AttendanceStates {
		counts[state] = 0
	}
	for _, rec := range r.Records {
		counts[rec.State]++
	}
	return counts
}

// AttendanceHistoryEntry is one historical attendance row from the remote service.
type AttendanceHistoryEntry struct {
	Date      string          `json:"date"`
	Matricula string          `json:"matricula"`
	Name      string          `json:"name,omitempty"`
	State     AttendanceState `json:"state"`
	Notes     string          `json:"notes,omitempty"`
}

// AttendanceImport reports a roll loaded from a spreadsheet.
type AttendanceImport struct {
	Date      string          `json:"date"`
	Submitted int             `json:"submitted"`
	Rejected  []RejectedRow   `json:"rejected"`
	Response  json.RawMessage `json:"response"`
}
