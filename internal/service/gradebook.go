package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

const (
	// MaxScoreInputLength bounds raw score text while a cell is being edited.
	MaxScoreInputLength = 3

	minScore = 0.0
	maxScore = 100.0

	scoreHint = "score must be a number between 0 and 100"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingNumber reads the numeric prefix of raw, so "12abc" is 12 and
// "abc" does not parse. Leading whitespace is ignored.
func parseLeadingNumber(raw string) (float64, bool) {
	match := leadingNumber.FindString(strings.TrimLeft(raw, " \t\r\n"))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func clampScore(v float64) float64 {
	return math.Min(maxScore, math.Max(minScore, v))
}

// SanitizeScore repairs a raw score: unparseable text becomes 0 and numbers
// are clamped to [0,100]. Empty input stays empty. Applying it twice yields
// the same value.
func SanitizeScore(raw string) string {
	if raw == "" {
		return ""
	}
	v, ok := parseLeadingNumber(raw)
	if !ok {
		v = 0
	}
	return strconv.FormatFloat(clampScore(v), 'f', -1, 64)
}

// scoreValue returns the committed numeric value of a cell. Missing, blank,
// unparseable and out of range values are not usable for a grade.
func scoreValue(raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}
	v, ok := parseLeadingNumber(raw)
	if !ok || v < minScore || v > maxScore {
		return 0, false
	}
	return v, true
}

// scoreHintFor returns an advisory message for raw text that is not yet a
// clean score. It never blocks the edit.
func scoreHintFor(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < minScore || v > maxScore {
		return scoreHint
	}
	return ""
}

const gradeSnapScale = 1e6

// ComputeUnitGrade returns round(sum(score_i * weight_i)) over the unit's
// activities, rounding half away from zero on the total only. It returns nil
// when any activity lacks a usable score or the unit has no activities.
func ComputeUnitGrade(unit models.Unit, scores map[string]string) *int {
	if len(unit.Activities) == 0 {
		return nil
	}
	var total float64
	for _, activity := range unit.Activities {
		v, ok := scoreValue(scores[activity.Name])
		if !ok {
			return nil
		}
		total += v * activity.Weight
	}
	// fractional weights such as 0.3 leave exact halves at .49999...
	total = math.Round(total*gradeSnapScale) / gradeSnapScale
	grade := int(math.Round(total))
	return &grade
}

type gradeKey struct {
	studentID string
	unitID    string
}

// Gradebook is the in-memory grading grid of one subject. It is not safe for
// concurrent use; GradeService serialises access per subject.
type Gradebook struct {
	subjectID string
	units     []models.Unit
	unitIndex map[string]int
	scores    models.GradeSnapshot

	grades map[gradeKey]*int
	stale  map[gradeKey]struct{}
	dirty  bool

	logger *zap.Logger
}

// NewGradebook builds a grid over units and a previously saved snapshot.
// Units whose weights do not add up to one are logged but still graded.
func NewGradebook(subjectID string, units []models.Unit, saved models.GradeSnapshot, logger *zap.Logger) *Gradebook {
	if logger == nil {
		logger = zap.NewNop()
	}
	if saved == nil {
		saved = models.GradeSnapshot{}
	}
	g := &Gradebook{
		subjectID: subjectID,
		units:     units,
		unitIndex: make(map[string]int, len(units)),
		scores:    saved.Clone(),
		grades:    make(map[gradeKey]*int),
		stale:     make(map[gradeKey]struct{}),
		logger:    logger,
	}
	for i, unit := range units {
		g.unitIndex[unit.ID] = i
		if !unit.WeightsBalanced() {
			logger.Warn("unit activity weights do not sum to 1",
				zap.String("subject_id", subjectID),
				zap.String("unit_id", unit.ID),
				zap.Float64("weight_sum", unit.WeightSum()),
			)
		}
	}
	return g
}

// SubjectID returns the subject the grid belongs to.
func (g *Gradebook) SubjectID() string { return g.subjectID }

// Units returns the graded units in order.
func (g *Gradebook) Units() []models.Unit { return g.units }

// Dirty reports whether there are edits not yet saved.
func (g *Gradebook) Dirty() bool { return g.dirty }

// MarkSaved clears the unsaved flag after a successful save.
func (g *Gradebook) MarkSaved() { g.dirty = false }

func (g *Gradebook) unit(unitID string) (models.Unit, error) {
	idx, ok := g.unitIndex[unitID]
	if !ok {
		return models.Unit{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unit %s not found", unitID))
	}
	return g.units[idx], nil
}

func (g *Gradebook) checkCell(studentID, unitID, activity string) error {
	if strings.TrimSpace(studentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	unit, err := g.unit(unitID)
	if err != nil {
		return err
	}
	for _, a := range unit.Activities {
		if a.Name == activity {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("activity %q is not part of unit %s", activity, unitID))
}

// SetScore stores raw text verbatim. Input longer than MaxScoreInputLength
// characters is rejected and leaves the cell untouched.
func (g *Gradebook) SetScore(studentID, unitID, activity, raw string) error {
	if utf8.RuneCountInString(raw) > MaxScoreInputLength {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score input is limited to %d characters", MaxScoreInputLength))
	}
	if err := g.checkCell(studentID, unitID, activity); err != nil {
		return err
	}
	g.scores.Set(studentID, unitID, activity, raw)
	g.stale[gradeKey{studentID, unitID}] = struct{}{}
	g.dirty = true
	return nil
}

// CommitScore sanitises the stored raw value of a cell and returns it.
func (g *Gradebook) CommitScore(studentID, unitID, activity string) (string, error) {
	if err := g.checkCell(studentID, unitID, activity); err != nil {
		return "", err
	}
	raw, ok := g.scores.Get(studentID, unitID, activity)
	if !ok || raw == "" {
		return raw, nil
	}
	sanitized := SanitizeScore(raw)
	if sanitized != raw {
		g.scores.Set(studentID, unitID, activity, sanitized)
		g.stale[gradeKey{studentID, unitID}] = struct{}{}
		g.dirty = true
	}
	return sanitized, nil
}

// Score returns the raw text of a cell.
func (g *Gradebook) Score(studentID, unitID, activity string) string {
	raw, _ := g.scores.Get(studentID, unitID, activity)
	return raw
}

// UnitGrade returns the computed grade of a student for a unit, recomputing
// it only when a cell of that pair changed since the last computation.
func (g *Gradebook) UnitGrade(studentID, unitID string) (*int, error) {
	unit, err := g.unit(unitID)
	if err != nil {
		return nil, err
	}
	key := gradeKey{studentID, unitID}
	if grade, ok := g.grades[key]; ok {
		if _, stale := g.stale[key]; !stale {
			return grade, nil
		}
	}
	var cells map[string]string
	if units, ok := g.scores[studentID]; ok {
		cells = units[unitID]
	}
	grade := ComputeUnitGrade(unit, cells)
	g.grades[key] = grade
	delete(g.stale, key)
	return grade, nil
}

// Grades computes every unit grade for the given students.
func (g *Gradebook) Grades(studentIDs []string) []models.UnitGrade {
	out := make([]models.UnitGrade, 0, len(studentIDs)*len(g.units))
	for _, studentID := range studentIDs {
		for _, unit := range g.units {
			grade, _ := g.UnitGrade(studentID, unit.ID)
			out = append(out, models.UnitGrade{
				StudentID: studentID,
				UnitID:    unit.ID,
				Grade:     grade,
				Band:      models.BandFor(grade),
			})
		}
	}
	return out
}

// Snapshot returns a copy of every raw score in the grid.
func (g *Gradebook) Snapshot() models.GradeSnapshot {
	return g.scores.Clone()
}

// UnitViews renders units with display percentages for the grid header.
func (g *Gradebook) UnitViews() []models.UnitView {
	views := make([]models.UnitView, 0, len(g.units))
	for _, unit := range g.units {
		acts := make([]models.ActivityView, 0, len(unit.Activities))
		for _, a := range unit.Activities {
			acts = append(acts, models.ActivityView{Activity: a, WeightPercent: models.FractionToPercent(a.Weight)})
		}
		views = append(views, models.UnitView{
			ID:             unit.ID,
			SequenceNumber: unit.SequenceNumber,
			Name:           unit.Name,
			Description:    unit.Description,
			Activities:     acts,
			WeightsValid:   unit.WeightsBalanced(),
		})
	}
	return views
}
