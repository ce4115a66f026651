package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type fakeStaffLister struct {
	members []models.StaffMember
	err     error
}

func (f *fakeStaffLister) List(context.Context) ([]models.StaffMember, error) {
	return f.members, f.err
}

func TestStaffServiceListFiltersByType(t *testing.T) {
	svc := NewStaffService(&fakeStaffLister{members: []models.StaffMember{
		{ID: "1", Name: "Rosa", Type: "Tutor"},
		{ID: "2", Name: "Luis", Type: "Docente"},
		{ID: "3", Name: "Ana", Type: " tutor "},
	}}, nil)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tutors, err := svc.List(context.Background(), "TUTOR")
	require.NoError(t, err)
	require.Len(t, tutors, 2)
	assert.Equal(t, "1", tutors[0].ID)
	assert.Equal(t, "3", tutors[1].ID)
}

func TestStaffServiceListEmpty(t *testing.T) {
	svc := NewStaffService(&fakeStaffLister{}, nil)
	members, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestStaffServiceListUpstreamFailure(t *testing.T) {
	svc := NewStaffService(&fakeStaffLister{err: errors.New("connection reset")}, nil)
	_, err := svc.List(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}
