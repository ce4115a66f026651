package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBandFor(t *testing.T) {
	cases := []struct {
		grade *int
		band  GradeBand
	}{
		{nil, BandNeutral},
		{intPtr(0), BandCritical},
		{intPtr(69), BandCritical},
		{intPtr(70), BandCaution},
		{intPtr(79), BandCaution},
		{intPtr(80), BandGood},
		{intPtr(89), BandGood},
		{intPtr(90), BandExcellent},
		{intPtr(100), BandExcellent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.band, BandFor(tc.grade))
	}
}

func TestWeightConversions(t *testing.T) {
	assert.InDelta(t, 0.4, PercentToFraction(40), 1e-9)
	assert.Equal(t, 30.0, FractionToPercent(0.3))
	assert.Equal(t, 33.33, FractionToPercent(1.0/3))
}

func TestUnitWeightsBalanced(t *testing.T) {
	u := Unit{Activities: Activities{{Name: "Exam", Weight: 0.4}, {Name: "Project", Weight: 0.595}}}
	assert.True(t, u.WeightsBalanced())
	u.Activities[1].Weight = 0.5
	assert.False(t, u.WeightsBalanced())
}

func TestGradeSnapshotScanAndClone(t *testing.T) {
	var snap GradeSnapshot
	require.NoError(t, snap.Scan([]byte(`{"s1":{"u1":{"Exam":"80"}}}`)))
	raw, ok := snap.Get("s1", "u1", "Exam")
	require.True(t, ok)
	assert.Equal(t, "80", raw)

	clone := snap.Clone()
	clone.Set("s1", "u1", "Exam", "10")
	raw, _ = snap.Get("s1", "u1", "Exam")
	assert.Equal(t, "80", raw)
}

func TestAttendanceStateMapping(t *testing.T) {
	state, ok := ParseAttendanceState("RETARDO")
	require.True(t, ok)
	assert.Equal(t, AttendanceLate, state)
	assert.Equal(t, "JUSTIFICADO", AttendanceExcused.Backend())
	assert.Equal(t, AttendancePresent, StateFromBackend("desconocido"))
	assert.Equal(t, "PRESENTE", AttendanceState("bogus").Backend())
}

func TestStaffStatusDecoding(t *testing.T) {
	var members []StaffMember
	require.NoError(t, json.Unmarshal([]byte(`[{"estado":"Activo"},{"estado":false},{"estado":"otro"}]`), &members))
	assert.True(t, members[0].Status.Active)
	assert.True(t, members[1].Status.Known)
	assert.False(t, members[1].Status.Active)
	assert.False(t, members[2].Status.Known)
}

func TestRoleFromStaff(t *testing.T) {
	role, ok := RoleFromStaff("Tutor Académico")
	require.True(t, ok)
	assert.Equal(t, RoleTutor, role)
	_, ok = RoleFromStaff("Conserje")
	assert.False(t, ok)
}
