package dto

// ActivityDraft is an activity as authored in the UI, weight in percent.
type ActivityDraft struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	WeightPercent float64 `json:"weight_percent"`
}

// UnitDraft is a unit as authored in the UI.
type UnitDraft struct {
	SubjectID      string          `json:"subject_id"`
	CourseID       string          `json:"course_id"`
	SequenceNumber int             `json:"sequence_number"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Activities     []ActivityDraft `json:"activities"`
}

// ValidationResult lists every problem found in a draft or batch.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
