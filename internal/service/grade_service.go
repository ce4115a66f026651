package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// GradeStore persists grade snapshots per subject. Put replaces the subject's
// previous snapshot and its entry in the all-grades registry.
type GradeStore interface {
	Get(ctx context.Context, subjectID string) (models.GradeSnapshot, error)
	Put(ctx context.Context, subjectID string, snapshot models.GradeSnapshot) error
	All(ctx context.Context) (models.GradeRegistry, error)
}

// GradingSource supplies the units and students of a gradebook.
type GradingSource interface {
	Units(ctx context.Context, courseID string) ([]models.Unit, error)
	Students(ctx context.Context, subjectID string) ([]models.Student, error)
}

const defaultDraftTTL = 2 * time.Hour

type gradeDraft struct {
	mu       sync.Mutex
	book     *Gradebook
	courseID string
	students []models.Student
	loadedAt time.Time
	touched  time.Time
}

// GradeServiceParams groups GradeService dependencies.
type GradeServiceParams struct {
	Store     GradeStore
	Source    GradingSource
	Validator *validator.Validate
	Logger    *zap.Logger
	DraftTTL  time.Duration
	Now       func() time.Time
}

// GradeService keeps one working gradebook per subject and persists it on save.
type GradeService struct {
	store     GradeStore
	source    GradingSource
	validator *validator.Validate
	logger    *zap.Logger
	draftTTL  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	drafts map[string]*gradeDraft
}

// NewGradeService constructs a GradeService.
func NewGradeService(params GradeServiceParams) *GradeService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.DraftTTL <= 0 {
		params.DraftTTL = defaultDraftTTL
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &GradeService{
		store:     params.Store,
		source:    params.Source,
		validator: params.Validator,
		logger:    params.Logger,
		draftTTL:  params.DraftTTL,
		now:       params.Now,
		drafts:    make(map[string]*gradeDraft),
	}
}

// Gradebook returns the grading grid of a subject, loading it when needed.
// courseID selects the unit set. Empty reuses the loaded draft's course, or the
// subject id when nothing is loaded. Switching course on a draft with unsaved
// edits fails with ErrConflict.
func (s *GradeService) Gradebook(ctx context.Context, subjectID, courseID string) (*models.GradebookView, error) {
	d, err := s.draft(ctx, subjectID, courseID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return s.view(d), nil
}

// SetScore records raw text for a cell and returns the cell with its
// recomputed unit grade.
func (s *GradeService) SetScore(ctx context.Context, subjectID string, req dto.SetScoreRequest) (*models.ScoreCell, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	d, err := s.draft(ctx, subjectID, req.CourseID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.book.SetScore(req.StudentID, req.UnitID, req.Activity, req.Value); err != nil {
		return nil, err
	}
	cell, err := s.cell(d, req.StudentID, req.UnitID, req.Activity)
	if err != nil {
		return nil, err
	}
	cell.Hint = scoreHintFor(req.Value)
	return cell, nil
}

// CommitScore sanitises a cell, typically when the editor leaves it.
func (s *GradeService) CommitScore(ctx context.Context, subjectID string, req dto.CommitScoreRequest) (*models.ScoreCell, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	d, err := s.draft(ctx, subjectID, req.CourseID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.book.CommitScore(req.StudentID, req.UnitID, req.Activity); err != nil {
		return nil, err
	}
	return s.cell(d, req.StudentID, req.UnitID, req.Activity)
}

// Save persists the whole subject snapshot, replacing what was stored.
func (s *GradeService) Save(ctx context.Context, subjectID string) (*models.GradebookView, error) {
	s.mu.Lock()
	d, ok := s.drafts[subjectID]
	if ok {
		d.touched = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no gradebook loaded for subject")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := s.store.Put(ctx, subjectID, d.book.Snapshot()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grades")
	}
	d.book.MarkSaved()
	s.logger.Sugar().Infow("grades saved", "subject_id", subjectID, "students", len(d.book.Snapshot()))
	return s.view(d), nil
}

// Discard drops the working copy so the next access reloads from the store.
func (s *GradeService) Discard(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, subjectID)
}

// AllGrades returns the registry of saved snapshots keyed by subject.
func (s *GradeService) AllGrades(ctx context.Context) (models.GradeRegistry, error) {
	registry, err := s.store.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	return registry, nil
}

func (s *GradeService) draft(ctx context.Context, subjectID, courseID string) (*gradeDraft, error) {
	if subjectID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject id is required")
	}

	s.mu.Lock()
	s.sweepLocked()
	d, ok := s.drafts[subjectID]
	if ok && (courseID == "" || d.courseID == courseID) {
		d.touched = s.now()
		s.mu.Unlock()
		return d, nil
	}
	if ok && draftDirty(d) {
		s.mu.Unlock()
		return nil, courseConflict(subjectID, d.courseID, courseID)
	}
	s.mu.Unlock()

	if courseID == "" {
		courseID = subjectID
	}
	loaded, err := s.load(ctx, subjectID, courseID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have loaded the same subject meanwhile
	if existing, ok := s.drafts[subjectID]; ok {
		if existing.courseID == courseID {
			return existing, nil
		}
		if draftDirty(existing) {
			return nil, courseConflict(subjectID, existing.courseID, courseID)
		}
	}
	s.drafts[subjectID] = loaded
	return loaded, nil
}

// draftDirty locks d briefly. Caller holds s.mu.
func draftDirty(d *gradeDraft) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.book.Dirty()
}

func courseConflict(subjectID, loaded, requested string) error {
	return appErrors.WithDetails(appErrors.ErrConflict,
		"gradebook has unsaved edits for another course; save or discard first",
		[]string{"subject_id: " + subjectID, "loaded course_id: " + loaded, "requested course_id: " + requested})
}

func (s *GradeService) load(ctx context.Context, subjectID, courseID string) (*gradeDraft, error) {
	units, err := s.source.Units(ctx, courseID)
	if err != nil {
		s.logger.Warn("failed to load units, using empty set", zap.String("course_id", courseID), zap.Error(err))
		units = nil
	}
	students, err := s.source.Students(ctx, subjectID)
	if err != nil {
		s.logger.Warn("failed to load students, using empty set", zap.String("subject_id", subjectID), zap.Error(err))
		students = nil
	}
	saved, err := s.store.Get(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load saved grades")
	}
	now := s.now()
	return &gradeDraft{
		book:     NewGradebook(subjectID, units, saved, s.logger),
		courseID: courseID,
		students: students,
		loadedAt: now,
		touched:  now,
	}, nil
}

// sweepLocked evicts drafts idle for longer than the TTL. Drafts in use by a
// request are skipped. Caller holds s.mu.
func (s *GradeService) sweepLocked() {
	cutoff := s.now().Add(-s.draftTTL)
	for subjectID, d := range s.drafts {
		if d.touched.After(cutoff) || !d.mu.TryLock() {
			continue
		}
		if d.book.Dirty() {
			s.logger.Warn("evicting gradebook with unsaved edits", zap.String("subject_id", subjectID))
		}
		d.mu.Unlock()
		delete(s.drafts, subjectID)
	}
}

func (s *GradeService) cell(d *gradeDraft, studentID, unitID, activity string) (*models.ScoreCell, error) {
	grade, err := d.book.UnitGrade(studentID, unitID)
	if err != nil {
		return nil, err
	}
	return &models.ScoreCell{
		StudentID: studentID,
		UnitID:    unitID,
		Activity:  activity,
		Raw:       d.book.Score(studentID, unitID, activity),
		UnitGrade: models.UnitGrade{StudentID: studentID, UnitID: unitID, Grade: grade, Band: models.BandFor(grade)},
	}, nil
}

func (s *GradeService) view(d *gradeDraft) *models.GradebookView {
	ids := make([]string, 0, len(d.students))
	seen := make(map[string]struct{}, len(d.students))
	for _, st := range d.students {
		ids = append(ids, st.ID)
		seen[st.ID] = struct{}{}
	}
	// students with saved scores but missing from the roster are still graded
	snapshot := d.book.Snapshot()
	extra := make([]string, 0)
	for id := range snapshot {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	ids = append(ids, extra...)
	students := d.students
	if students == nil {
		students = []models.Student{}
	}
	return &models.GradebookView{
		SubjectID: d.book.SubjectID(),
		CourseID:  d.courseID,
		Units:     d.book.UnitViews(),
		Students:  students,
		Scores:    snapshot,
		Grades:    d.book.Grades(ids),
		Dirty:     d.book.Dirty(),
		LoadedAt:  d.loadedAt,
	}
}
