package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type staffLister interface {
	List(ctx context.Context) ([]models.StaffMember, error)
}

type studentRecordLister interface {
	Records(ctx context.Context) ([]models.StudentRecord, error)
	Basic(ctx context.Context) ([]models.Student, error)
}

type tutoradoLister interface {
	Tutorados(ctx context.Context, tutorID string) ([]models.Tutorado, error)
}

type courseLister interface {
	CoursesByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
}

type incidentLister interface {
	ByTutor(ctx context.Context, tutorID string) ([]models.Incident, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Staff     staffLister
	Students  studentRecordLister
	Tutorados tutoradoLister
	Courses   courseLister
	Incidents incidentLister
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// DashboardService composes the role home pages from several backends.
type DashboardService struct {
	staff     staffLister
	students  studentRecordLister
	tutorados tutoradoLister
	courses   courseLister
	incidents incidentLister
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		staff:     params.Staff,
		students:  params.Students,
		tutorados: params.Tutorados,
		courses:   params.Courses,
		incidents: params.Incidents,
		cache:     params.Cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

func dashboardCacheKey(role models.UserRole, userID string) string {
	return fmt.Sprintf("dash:%s:%s", role, userID)
}

// Director returns staff and student statistics. The bool reports a cache hit.
func (s *DashboardService) Director(ctx context.Context, userID string) (*models.DirectorDashboard, bool, error) {
	key := dashboardCacheKey(models.RoleDirector, userID)
	var cached models.DirectorDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	personnel := models.EmptyPersonnelStats()
	students := models.EmptyStudentStats()
	degraded := fanOut(ctx, s.logger,
		branch{name: "personnel", run: func(ctx context.Context) error {
			list, err := s.staff.List(ctx)
			if err == nil {
				personnel = PersonnelStatsFor(list)
			}
			return err
		}},
		branch{name: "students", run: func(ctx context.Context) error {
			records, err := s.students.Records(ctx)
			if err == nil {
				students = StudentStatsFor(records)
			}
			return err
		}},
	)

	dash := &models.DirectorDashboard{
		Personnel: personnel,
		Students:  students,
		Summary: models.DirectorSummary{
			TotalStudents:   students.UniqueStudents,
			ActivePersonnel: personnel.Active,
		},
		Degraded:    degraded,
		GeneratedAt: s.now().UTC(),
	}
	s.persist(ctx, key, dash, len(degraded) == 0)
	return dash, false, nil
}

// Tutor returns a tutor's tutorados, courses and incidents.
func (s *DashboardService) Tutor(ctx context.Context, tutorID string) (*models.TutorDashboard, bool, error) {
	if strings.TrimSpace(tutorID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "tutor id is required")
	}
	key := dashboardCacheKey(models.RoleTutor, tutorID)
	var cached models.TutorDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	dash := &models.TutorDashboard{
		Tutorados: []models.Tutorado{},
		Courses:   []models.Course{},
		Incidents: []models.Incident{},
	}
	dash.Degraded = fanOut(ctx, s.logger,
		branch{name: "tutorados", run: func(ctx context.Context) error {
			list, err := s.tutorados.Tutorados(ctx, tutorID)
			if err == nil && list != nil {
				dash.Tutorados = list
			}
			return err
		}},
		branch{name: "courses", run: func(ctx context.Context) error {
			list, err := s.courses.CoursesByTeacher(ctx, tutorID)
			if err == nil && list != nil {
				dash.Courses = list
			}
			return err
		}},
		branch{name: "incidents", run: func(ctx context.Context) error {
			list, err := s.incidents.ByTutor(ctx, tutorID)
			if err == nil && list != nil {
				dash.Incidents = list
			}
			return err
		}},
	)
	dash.ActiveAlerts = countPending(dash.Incidents)
	dash.GeneratedAt = s.now().UTC()
	s.persist(ctx, key, dash, len(dash.Degraded) == 0)
	return dash, false, nil
}

// Teacher returns a docente's courses, the student directory and incidents.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*models.TeacherDashboard, bool, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	key := dashboardCacheKey(models.RoleTeacher, teacherID)
	var cached models.TeacherDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	dash := &models.TeacherDashboard{
		Courses:   []models.Course{},
		Students:  []models.Student{},
		Incidents: []models.Incident{},
	}
	dash.Degraded = fanOut(ctx, s.logger,
		branch{name: "courses", run: func(ctx context.Context) error {
			list, err := s.courses.CoursesByTeacher(ctx, teacherID)
			if err == nil && list != nil {
				dash.Courses = list
			}
			return err
		}},
		branch{name: "students", run: func(ctx context.Context) error {
			list, err := s.students.Basic(ctx)
			if err == nil && list != nil {
				dash.Students = list
			}
			return err
		}},
		branch{name: "incidents", run: func(ctx context.Context) error {
			list, err := s.incidents.ByTutor(ctx, teacherID)
			if err == nil && list != nil {
				dash.Incidents = list
			}
			return err
		}},
	)
	dash.Stats = models.TeacherDashboardStats{
		TotalCourses:   len(dash.Courses),
		TotalStudents:  len(dash.Students),
		TotalIncidents: len(dash.Incidents),
	}
	dash.GeneratedAt = s.now().UTC()
	s.persist(ctx, key, dash, len(dash.Degraded) == 0)
	return dash, false, nil
}

// Invalidate drops every cached dashboard of a role, or all when role is empty.
func (s *DashboardService) Invalidate(ctx context.Context, role models.UserRole) error {
	pattern := "dash:*"
	if role != "" {
		pattern = fmt.Sprintf("dash:%s:*", role)
	}
	return s.cache.Invalidate(ctx, pattern)
}

// tryCache treats cache errors as misses.
func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	return err == nil && hit
}

// persist skips degraded payloads so a backend blip is not cached.
func (s *DashboardService) persist(ctx context.Context, key string, value interface{}, complete bool) {
	if !complete {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func countPending(incidents []models.Incident) int {
	count := 0
	for _, inc := range incidents {
		if strings.EqualFold(inc.Status, models.IncidentStatusPending) {
			count++
		}
	}
	return count
}

// PersonnelStatsFor counts staff by status and, among active staff, by type.
func PersonnelStatsFor(list []models.StaffMember) models.PersonnelStats {
	stats := models.EmptyPersonnelStats()
	stats.Total = len(list)
	for _, member := range list {
		if !member.Status.Known {
			continue
		}
		if !member.Status.Active {
			stats.Inactive++
			continue
		}
		stats.Active++
		kind := strings.ToLower(strings.TrimSpace(member.Type))
		if kind == "" {
			kind = "sin_tipo"
		}
		stats.ByType[kind]++
	}
	return stats
}

// StudentStatsFor collapses per-subject records to unique matriculas and
// groups them by career, term and status family.
func StudentStatsFor(records []models.StudentRecord) models.StudentStats {
	stats := models.EmptyStudentStats()
	stats.TotalRecords = len(records)
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Matricula == "" {
			continue
		}
		if _, dup := seen[r.Matricula]; dup {
			continue
		}
		seen[r.Matricula] = struct{}{}

		career := r.Carrera
		if career == "" {
			career = "Sin carrera"
		}
		stats.ByCareer[career]++
		term := r.CuatrimestreActual
		if term == "" {
			term = "Sin cuatrimestre"
		}
		stats.ByTerm[term]++

		// inactivo contains activo, so the inactive families are checked first
		status := strings.ToLower(r.EstatusAlumno)
		switch {
		case strings.Contains(status, "inactivo") || strings.Contains(status, "baja"):
			stats.ByStatus.Inactive++
		case strings.Contains(status, "activo") || strings.Contains(status, "cursando"):
			stats.ByStatus.Active++
		case strings.Contains(status, "egresado") || strings.Contains(status, "titulado"):
			stats.ByStatus.Graduated++
		}
	}
	stats.UniqueStudents = len(seen)
	return stats
}
