package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwners struct {
	owners map[string]string
}

func (f fakeOwners) CourseTeacherID(courseID string) (string, error) {
	teacherID, ok := f.owners[courseID]
	if !ok {
		return "", ErrIllegalParameter("Course id is incorrect")
	}
	return teacherID, nil
}

func TestRoleGuard(t *testing.T) {
	guard := RequireRoles(RoleTeacher, RoleAdmin)

	assert.NoError(t, guard.Check(Identity{UserID: "u1", Role: RoleTeacher}))
	assert.NoError(t, guard.Check(Identity{UserID: "u2", Role: RoleAdmin}))

	err := guard.Check(Identity{UserID: "u3", Role: RoleStudent})
	assert.True(t, IsKind(err, KindForbidden))
}

func TestOwnershipGuard(t *testing.T) {
	guard := OwnershipGuard{Courses: fakeOwners{owners: map[string]string{"c1": "t1"}}}

	assert.NoError(t, guard.Check(Identity{UserID: "t1", Role: RoleTeacher}, "c1"))

	err := guard.Check(Identity{UserID: "t2", Role: RoleTeacher}, "c1")
	assert.True(t, IsKind(err, KindForbidden))

	err = guard.Check(Identity{UserID: "t1", Role: RoleStudent}, "c1")
	assert.True(t, IsKind(err, KindForbidden))
}

func TestOwnershipGuardSurfacesLookupError(t *testing.T) {
	guard := OwnershipGuard{Courses: fakeOwners{owners: map[string]string{}}}

	err := guard.Check(Identity{UserID: "t1", Role: RoleTeacher}, "missing")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindIllegalParameter))
	assert.False(t, IsKind(err, KindForbidden))
}
