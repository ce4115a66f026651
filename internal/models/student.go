package models

// Student is a learner known to the gateway. Matricula is the natural key.
type Student struct {
	ID        string `json:"id"`
	Matricula string `json:"matricula"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id,omitempty"`
}

// StudentRecord is one row of the students service, which keeps a row per
// student and subject (kardex history), so a matricula can appear many times.
type StudentRecord struct {
	Matricula          string `json:"matricula"`
	Nombre             string `json:"nombre"`
	Carrera            string `json:"carrera"`
	EstatusAlumno      string `json:"estatusAlumno"`
	CuatrimestreActual string `json:"cuatrimestreActual"`
	GrupoActual        string `json:"grupoActual"`
	Materia            string `json:"materia"`
	Periodo            string `json:"periodo"`
	EstatusMateria     string `json:"estatusMateria"`
	Final              string `json:"final"`
	Extra              string `json:"extra"`
	EstatusCardex      string `json:"estatusCardex"`
	PeriodoCursado     string `json:"periodoCursado"`
	PlanEstudiosClave  string `json:"planEstudiosClave"`
	Creditos           string `json:"creditos"`
	TutorAcademico     string `json:"tutorAcademico"`
}

// StudentExportHeaders is the fixed column order of student exports and the
// upload template.
var StudentExportHeaders = []string{
	"Matricula",
	"Nombre",
	"Carrera",
	"EstatusAlumno",
	"CuatrimestreActual",
	"GrupoActual",
	"Materia",
	"Periodo",
	"EstatusMateria",
	"Final",
	"Extra",
	"EstatusCardex",
	"PeriodoCursado",
	"PlanEstudiosClave",
	"Creditos",
	"TutorAcademico",
}

// Columns returns the record keyed by export header.
func (r StudentRecord) Columns() map[string]string {
	return map[string]string{
		"Matricula":          r.Matricula,
		"Nombre":             r.Nombre,
		"Carrera":            r.Carrera,
		"EstatusAlumno":      r.EstatusAlumno,
		"CuatrimestreActual": r.CuatrimestreActual,
		"GrupoActual":        r.GrupoActual,
		"Materia":            r.Materia,
		"Periodo":            r.Periodo,
		"EstatusMateria":     r.EstatusMateria,
		"Final":              r.Final,
		"Extra":              r.Extra,
		"EstatusCardex":      r.EstatusCardex,
		"PeriodoCursado":     r.PeriodoCursado,
		"PlanEstudiosClave":  r.PlanEstudiosClave,
		"Creditos":           r.Creditos,
		"TutorAcademico":     r.TutorAcademico,
	}
}
