package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints_PaidPlaces(t *testing.T) {
	// Фонд при 20 участниках: 20 * 75 = 1500.
	cases := []struct {
		name     string
		place    int
		total    int
		expected int
	}{
		{"first place takes 24 percent", 1, 20, 360},
		{"second place", 2, 20, 255},
		{"third place", 3, 20, 165},
		{"fractional percent rounds half up", 4, 20, 128}, // 127.5
		{"six point six percent", 6, 20, 99},
		{"shared percent band", 12, 20, 23}, // 22.5
		{"last paid place", 15, 20, 15},
		{"single participant", 1, 1, 18},
		{"nine player pool second place", 2, 9, 115}, // 114.75
		{"nine player pool third place", 3, 9, 74},   // 74.25
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			points, err := Points(tc.place, tc.total)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, points)
		})
	}
}

func TestPoints_FlatBeyondPaidZone(t *testing.T) {
	for _, place := range []int{16, 25, 100} {
		points, err := Points(place, 40)
		require.NoError(t, err)
		assert.Equal(t, 5, points, "place %d must earn flat points", place)
	}
}

func TestPoints_Errors(t *testing.T) {
	_, err := Points(0, 10)
	assert.ErrorIs(t, err, ErrInvalidPlace)

	_, err = Points(-3, 10)
	assert.ErrorIs(t, err, ErrInvalidPlace)

	_, err = Points(1, 0)
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestPoints_PoolScalesWithParticipants(t *testing.T) {
	small, err := Points(1, 10)
	require.NoError(t, err)
	large, err := Points(1, 30)
	require.NoError(t, err)
	assert.Equal(t, small*3, large)
}
