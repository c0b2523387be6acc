package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(1)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	status, err = ParseStatus(3)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	for _, raw := range []int{0, 4, -1, 100} {
		_, err := ParseStatus(raw)
		assert.True(t, IsKind(err, KindBadRequest), "raw %d", raw)
	}
}

func TestIsBrowsable(t *testing.T) {
	assert.True(t, IsBrowsable(StatusApproved))
	assert.False(t, IsBrowsable(StatusPending))
	assert.False(t, IsBrowsable(StatusDisapproved))
}

func TestApprovedIsFinal(t *testing.T) {
	err := CanTransition(StatusApproved)
	assert.True(t, IsKind(err, KindCourseLocked))

	assert.NoError(t, CanTransition(StatusPending))
	assert.NoError(t, CanTransition(StatusDisapproved))
}

func TestApprovedCourseRejectsComments(t *testing.T) {
	err := CanComment(StatusApproved)
	assert.True(t, IsKind(err, KindCourseLocked))

	assert.NoError(t, CanComment(StatusPending))
	assert.NoError(t, CanComment(StatusDisapproved))
}
