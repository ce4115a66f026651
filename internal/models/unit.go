package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// WeightTolerance is the accepted drift when activity weights are summed.
// It applies to fractions (1 ± 0.01) and percentages (100 ± 0.01) alike.
const WeightTolerance = 0.01

// Activity is a gradable component of a unit. Weight is always a decimal
// fraction in [0,1]; percentages exist only at the HTTP boundary.
type Activity struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Activities is persisted as a JSONB array.
type Activities []Activity

// Value marshals activities to JSON for persistence.
func (a Activities) Value() (driver.Value, error) {
	if a == nil {
		a = Activities{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal activities: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the activity slice.
func (a *Activities) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan activities: %w", err)
	}
	if len(data) == 0 {
		*a = Activities{}
		return nil
	}
	return json.Unmarshal(data, a)
}

// Unit is a graded block of a course made of weighted activities.
type Unit struct {
	ID             string     `db:"id" json:"id"`
	RemoteID       *string    `db:"remote_id" json:"remote_id,omitempty"`
	SubjectID      string     `db:"subject_id" json:"subject_id"`
	CourseID       string     `db:"course_id" json:"course_id"`
	SequenceNumber int        `db:"sequence_number" json:"sequence_number"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	Activities     Activities `db:"activities" json:"activities"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// WeightSum adds the fractional weights of every activity.
func (u Unit) WeightSum() float64 {
	var total float64
	for _, a := range u.Activities {
		total += a.Weight
	}
	return total
}

// WeightsBalanced reports whether the activity weights add up to one.
func (u Unit) WeightsBalanced() bool {
	return math.Abs(u.WeightSum()-1) <= WeightTolerance
}

// UnitStats summarises the local unit registry.
type UnitStats struct {
	TotalUnits      int            `json:"total_units"`
	TotalActivities int            `json:"total_activities"`
	BySubject       map[string]int `json:"by_subject"`
}

// PercentToFraction converts a UI percentage (0-100) into the canonical fraction.
func PercentToFraction(percent float64) float64 {
	return percent / 100
}

// FractionToPercent converts a canonical fraction into a display percentage,
// rounded to two decimals so 0.3 renders as 30 rather than 30.000000000000004.
func FractionToPercent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// ActivityRegistration is the outcome of creating one activity remotely.
type ActivityRegistration struct {
	Activity
	Error string `json:"error,omitempty"`
}

// UnitRegistration summarises a unit created with its activities. Activities
// that failed are listed with their error; the rest of the unit still stands.
type UnitRegistration struct {
	Unit       Unit                   `json:"unit"`
	Activities []ActivityRegistration `json:"activities"`
	Total      int                    `json:"total"`
	Succeeded  int                    `json:"succeeded"`
	Failed     int                    `json:"failed"`
}
