package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GradeSnapshot holds raw score text keyed studentID -> unitID -> activity name.
// Raw strings are kept verbatim so in-progress edits survive a save.
type GradeSnapshot map[string]map[string]map[string]string

// GradeRegistry maps subject identifiers to their snapshots.
type GradeRegistry map[string]GradeSnapshot

// Get returns the raw score for a cell.
func (s GradeSnapshot) Get(studentID, unitID, activity string) (string, bool) {
	units, ok := s[studentID]
	if !ok {
		return "", false
	}
	acts, ok := units[unitID]
	if !ok {
		return "", false
	}
	raw, ok := acts[activity]
	return raw, ok
}

// Set stores the raw score for a cell, creating intermediate maps.
func (s GradeSnapshot) Set(studentID, unitID, activity, raw string) {
	units, ok := s[studentID]
	if !ok {
		units = make(map[string]map[string]string)
		s[studentID] = units
	}
	acts, ok := units[unitID]
	if !ok {
		acts = make(map[string]string)
		units[unitID] = acts
	}
	acts[activity] = raw
}

// Clone deep-copies the snapshot.
func (s GradeSnapshot) Clone() GradeSnapshot {
	out := make(GradeSnapshot, len(s))
	for studentID, units := range s {
		for unitID, acts := range units {
			for activity, raw := range acts {
				out.Set(studentID, unitID, activity, raw)
			}
		}
	}
	return out
}

// Value marshals the snapshot to JSON for persistence.
func (s GradeSnapshot) Value() (driver.Value, error) {
	if s == nil {
		s = GradeSnapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal grade snapshot: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the snapshot.
func (s *GradeSnapshot) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan grade snapshot: %w", err)
	}
	if len(data) == 0 {
		*s = GradeSnapshot{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// GradeBand is the colour category of a computed grade.
type GradeBand string

const (
	BandNeutral   GradeBand = "neutral"
	BandCritical  GradeBand = "critical"
	BandCaution   GradeBand = "caution"
	BandGood      GradeBand = "good"
	BandExcellent GradeBand = "excellent"
)

// BandFor maps a computed grade to its colour band.
func BandFor(grade *int) GradeBand {
	switch {
	case grade == nil:
		return BandNeutral
	case *grade < 70:
		return BandCritical
	case *grade < 80:
		return BandCaution
	case *grade < 90:
		return BandGood
	default:
		return BandExcellent
	}
}

// UnitGrade is the computed grade of one student for one unit. Grade is nil
// while any activity score is missing or invalid.
type UnitGrade struct {
	StudentID string    `json:"student_id"`
	UnitID    string    `json:"unit_id"`
	Grade     *int      `json:"grade"`
	Band      GradeBand `json:"band"`
}

// ScoreCell reports the state of one score after an edit.
type ScoreCell struct {
	StudentID string    `json:"student_id"`
	UnitID    string    `json:"unit_id"`
	Activity  string    `json:"activity"`
	Raw       string    `json:"raw"`
	Hint      string    `json:"hint,omitempty"`
	UnitGrade UnitGrade `json:"unit_grade"`
}

// ActivityView exposes an activity with its display percentage.
type ActivityView struct {
	Activity
	WeightPercent float64 `json:"weight_percent"`
}

// UnitView is a unit prepared for the grading grid.
type UnitView struct {
	ID             string         `json:"id"`
	SequenceNumber int            `json:"sequence_number"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Activities     []ActivityView `json:"activities"`
	WeightsValid   bool           `json:"weights_valid"`
}

// GradebookView is the full grading grid for a subject.
type GradebookView struct {
	SubjectID string        `json:"subject_id"`
	CourseID  string        `json:"course_id"`
	Units     []UnitView    `json:"units"`
	Students  []Student     `json:"students"`
	Scores    GradeSnapshot `json:"scores"`
	Grades    []UnitGrade   `json:"grades"`
	Dirty     bool          `json:"dirty"`
	LoadedAt  time.Time     `json:"loaded_at"`
}

// GradeSnapshotRecord is the persisted row of a subject snapshot.
type GradeSnapshotRecord struct {
	SubjectID string        `db:"subject_id"`
	Payload   GradeSnapshot `db:"payload"`
	UpdatedAt time.Time     `db:"updated_at"`
}
