package dto

// SetScoreRequest carries raw score text typed into a grid cell.
type SetScoreRequest struct {
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id" validate:"required"`
	UnitID    string `json:"unit_id" validate:"required"`
	Activity  string `json:"activity" validate:"required"`
	Value     string `json:"value"`
}

// CommitScoreRequest asks for a cell to be sanitised.
type CommitScoreRequest struct {
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id" validate:"required"`
	UnitID    string `json:"unit_id" validate:"required"`
	Activity  string `json:"activity" validate:"required"`
}
