package attendance

import (
	"testing"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, token := range []string{"Present", "Absent", "Excused", "Late"} {
		s, err := ParseStatus(token)
		require.NoError(t, err, token)
		assert.Equal(t, Status(token), s)
	}

	for _, token := range []string{"", "present", "PRESENT", "Sick", " Late"} {
		_, err := ParseStatus(token)
		assert.ErrorIs(t, err, shared.ErrInvalidFormat, token)
		if token != "" {
			assert.Contains(t, err.Error(), token)
		}
	}
}

func TestNewRecord(t *testing.T) {
	r, err := NewRecord(NewRecordParams{StudentID: 3, Week: 2, ModuleCode: " CS101 ", Status: StatusLate})
	require.NoError(t, err)
	assert.Equal(t, "CS101", r.ModuleCode)
	assert.False(t, r.IsPresent())

	_, err = NewRecord(NewRecordParams{StudentID: 3, Week: 0, ModuleCode: "CS101", Status: StatusPresent})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = NewRecord(NewRecordParams{StudentID: 3, Week: 1, ModuleCode: "CS101", Status: "Gone"})
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)

	_, err = NewRecord(NewRecordParams{StudentID: 0, Week: 1, ModuleCode: "CS101", Status: StatusPresent})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
