package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeString(t *testing.T) {
	ts := NewTimeString(time.Date(2025, 10, 15, 9, 5, 0, 0, time.UTC))
	assert.Equal(t, "09:05", ts.String())
}

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("10:30")
	require.NoError(t, err)
	assert.Equal(t, "10:30", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.Error(t, err)

	_, err = NewTimeStringFromString("1030")
	assert.Error(t, err)
}

func TestTimeString_Minutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"10:00", 600, false},
		{"10:30", 630, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false}, // конец дня допустим
		{"bad", 0, true},
	}

	for _, tt := range tests {
		got, err := TimeString(tt.in).Minutes()
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := TimeString("10:00")

	end, err := start.AddMinutes(105)
	require.NoError(t, err)
	assert.Equal(t, "11:45", end.String())

	end, err = start.AddMinutes(840)
	require.NoError(t, err)
	assert.Equal(t, "24:00", end.String())

	// Выход за пределы суток
	_, err = start.AddMinutes(900)
	assert.Error(t, err)
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("11:00").IsAfter(TimeString("10:30")))
}
