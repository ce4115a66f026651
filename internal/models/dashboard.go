package models

import "time"

// PersonnelStats summarises the staff list.
type PersonnelStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Inactive int            `json:"inactive"`
	ByType   map[string]int `json:"by_type"`
}

// EmptyPersonnelStats is the default used when the staff service fails.
func EmptyPersonnelStats() PersonnelStats {
	return PersonnelStats{ByType: map[string]int{"director": 0, "docente": 0, "tutor": 0}}
}

// StudentStatusStats groups unique students by status family.
type StudentStatusStats struct {
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Graduated int `json:"graduated"`
}

// StudentStats summarises the students service records.
type StudentStats struct {
	TotalRecords   int                `json:"total_records"`
	UniqueStudents int                `json:"unique_students"`
	ByCareer       map[string]int     `json:"by_career"`
	ByTerm         map[string]int     `json:"by_term"`
	ByStatus       StudentStatusStats `json:"by_status"`
}

// EmptyStudentStats is the default used when the students service fails.
func EmptyStudentStats() StudentStats {
	return StudentStats{ByCareer: map[string]int{}, ByTerm: map[string]int{}}
}

// DirectorSummary holds the headline numbers of the director home.
type DirectorSummary struct {
	TotalStudents   int `json:"total_students"`
	ActivePersonnel int `json:"active_personnel"`
}

// DirectorDashboard aggregates staff and student statistics.
type DirectorDashboard struct {
	Personnel   PersonnelStats  `json:"personnel"`
	Students    StudentStats    `json:"students"`
	Summary     DirectorSummary `json:"summary"`
	Degraded    []string        `json:"degraded,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// TutorDashboard aggregates a tutor's tutorados, courses and incidents.
type TutorDashboard struct {
	Tutorados    []Tutorado `json:"tutorados"`
	Courses      []Course   `json:"courses"`
	Incidents    []Incident `json:"incidents"`
	ActiveAlerts int        `json:"active_alerts"`
	Degraded     []string   `json:"degraded,omitempty"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// TeacherDashboardStats are the docente headline counters.
type TeacherDashboardStats struct {
	TotalCourses   int `json:"total_courses"`
	TotalStudents  int `json:"total_students"`
	TotalIncidents int `json:"total_incidents"`
}

// TeacherDashboard aggregates a docente's courses, students and incidents.
type TeacherDashboard struct {
	Courses     []Course              `json:"courses"`
	Students    []Student             `json:"students"`
	Incidents   []Incident            `json:"incidents"`
	Stats       TeacherDashboardStats `json:"stats"`
	Degraded    []string              `json:"degraded,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}
