package alert

import (
	"testing"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, token := range []string{"Academic", "Attendance", "Wellbeing", "Other"} {
		ty, err := ParseType(token)
		require.NoError(t, err)
		assert.Equal(t, Type(token), ty)
	}

	_, err := ParseType("Financial")
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestAlert_ResolveIsOneWay(t *testing.T) {
	a, err := NewAlert(4, TypeWellbeing, "stress 5 in week 3")
	require.NoError(t, err)
	assert.False(t, a.Resolved)

	require.NoError(t, a.Resolve())
	assert.True(t, a.Resolved)

	assert.ErrorIs(t, a.Resolve(), shared.ErrStateTransition)
	assert.True(t, a.Resolved)
}

func TestNewAlert_Rejects(t *testing.T) {
	_, err := NewAlert(0, TypeOther, "x")
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewAlert(1, "Nope", "x")
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)

	_, err = NewAlert(1, TypeOther, "  ")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
