package dto

// AttendanceEntry is one student's state in a submitted roll.
type AttendanceEntry struct {
	Matricula string `json:"matricula"`
	State     string `json:"state"`
	Notes     string `json:"notes"`
}

// SubmitAttendanceRequest is a full roll for a date.
type SubmitAttendanceRequest struct {
	Date    string            `json:"date"`
	Records []AttendanceEntry `json:"records"`
}
