package Models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"resolved":    StatusCompleted,
		"verified":    StatusCompleted,
		"pending":     StatusPending,
		"in_progress": StatusInProgress,
		"completed":   StatusCompleted,
		"cancelled":   StatusCancelled,
		"":            StatusPending,
		"weird":       "weird",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeStatus(in), "input %q", in)
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := map[string]string{
		"low":    PriorityNormal,
		"medium": PriorityNormal,
		"high":   PriorityUrgent,
		"normal": PriorityNormal,
		"urgent": PriorityUrgent,
		"":       PriorityNormal,
		"junk":   PriorityNormal,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePriority(in), "input %q", in)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus("completed"))
	assert.True(t, IsTerminalStatus("cancelled"))
	assert.True(t, IsTerminalStatus("resolved"))
	assert.True(t, IsTerminalStatus("verified"))
	assert.False(t, IsTerminalStatus("pending"))
	assert.False(t, IsTerminalStatus("in_progress"))
	assert.False(t, IsTerminalStatus(""))
}

func TestStaffRefShapes(t *testing.T) {
	decode := func(raw string) *uint {
		var r StaffRef
		require.NoError(t, json.Unmarshal([]byte(raw), &r), "payload %s", raw)
		return r.ID
	}

	require.NotNil(t, decode(`7`))
	assert.Equal(t, uint(7), *decode(`7`))

	require.NotNil(t, decode(`"12"`))
	assert.Equal(t, uint(12), *decode(`"12"`))

	require.NotNil(t, decode(`[3]`))
	assert.Equal(t, uint(3), *decode(`[3]`))

	require.NotNil(t, decode(`["4"]`))
	assert.Equal(t, uint(4), *decode(`["4"]`))

	assert.Nil(t, decode(`null`))
	assert.Nil(t, decode(`""`))
	assert.Nil(t, decode(`[]`))
}

func TestStaffRefRejectsGarbage(t *testing.T) {
	var r StaffRef
	assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &r))
}

func TestStaffRefMarshal(t *testing.T) {
	id := uint(9)
	out, err := json.Marshal(StaffRef{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, `9`, string(out))

	out, err = json.Marshal(StaffRef{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}
