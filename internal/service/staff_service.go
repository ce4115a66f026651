package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// StaffService lists school personnel for the director.
type StaffService struct {
	staff  staffLister
	logger *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(staff staffLister, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{staff: staff, logger: logger}
}

// List returns staff members, optionally only those whose tipo matches
// staffType (case-insensitive). A missing listing is an empty result.
func (s *StaffService) List(ctx context.Context, staffType string) ([]models.StaffMember, error) {
	members, err := s.staff.List(ctx)
	if err != nil {
		s.logger.Error("failed to list staff", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load staff")
	}
	staffType = strings.TrimSpace(staffType)
	out := make([]models.StaffMember, 0, len(members))
	for _, m := range members {
		if staffType != "" && !strings.EqualFold(strings.TrimSpace(m.Type), staffType) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
