package models

import "encoding/json"

// RosterSchema names the columns a CSV must carry.
type RosterSchema struct {
	Name     string
	Required []string
}

var (
	// StudentRosterSchema is used for student and enrollment list uploads.
	StudentRosterSchema = RosterSchema{Name: "students", Required: []string{"matricula", "nombre"}}
	// AttendanceRosterSchema is used for attendance sheet uploads.
	AttendanceRosterSchema = RosterSchema{Name: "attendance", Required: []string{"matricula", "estado"}}
)

// RosterRow is one accepted CSV row keyed by lower-cased header.
type RosterRow struct {
	RowNumber int               `json:"row_number"`
	Fields    map[string]string `json:"fields"`
}

// Get returns a trimmed field value.
func (r RosterRow) Get(column string) string {
	return r.Fields[column]
}

// RejectedRow explains why a CSV row was not accepted.
type RejectedRow struct {
	RowNumber int    `json:"row_number"`
	Reason    string `json:"reason"`
}

// ParseResult is the outcome of parsing a roster file.
type ParseResult struct {
	Headers  []string      `json:"headers"`
	Accepted []RosterRow   `json:"accepted"`
	Rejected []RejectedRow `json:"rejected"`
}

// RosterEntry is the minimal student identity carried by an enrollment list.
type RosterEntry struct {
	Matricula string `json:"matricula" validate:"required"`
	Nombre    string `json:"nombre" validate:"required"`
}

// Entries projects accepted rows onto roster entries.
func (p ParseResult) Entries() []RosterEntry {
	entries := make([]RosterEntry, 0, len(p.Accepted))
	for _, row := range p.Accepted {
		entries = append(entries, RosterEntry{Matricula: row.Get("matricula"), Nombre: row.Get("nombre")})
	}
	return entries
}

// UploadDestination selects the remote endpoint of a roster upload.
type UploadDestination string

const (
	// DestinationStudents loads the student master list.
	DestinationStudents UploadDestination = "students"
	// DestinationEnrollment registers a tutor/group list.
	DestinationEnrollment UploadDestination = "enrollment"
)

// UploadMeta carries the form fields an enrollment list needs.
type UploadMeta struct {
	TutorID         string `json:"tutor_id"`
	GroupID         string `json:"group_id"`
	ForwardOriginal bool   `json:"forward_original"`
}

// UploadReport is the remote service's ingestion summary, passed through as is.
type UploadReport struct {
	TotalRows             int               `json:"totalRows"`
	SuccessfullyProcessed int               `json:"successfullyProcessed"`
	Errors                []json.RawMessage `json:"errors"`
}

// UploadResult combines the local parse outcome with the remote report.
type UploadResult struct {
	Destination UploadDestination `json:"destination"`
	Rejected    []RejectedRow     `json:"rejected"`
	Report      UploadReport      `json:"report"`
}

// EnrollmentList is a registered tutor/group roster enriched with the
// tutor's current tutorados.
type EnrollmentList struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Group     string    `json:"group"`
	Professor string    `json:"professor"`
	TutorID   string    `json:"tutor_id,omitempty"`
	Students  []Student `json:"students"`
}
