package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idmonitor/pkg/domain-errors"
)

func TestIntervalDays(t *testing.T) {
	cases := map[Frequency]int{
		FrequencyDaily:    1,
		FrequencyWeekly:   7,
		FrequencyBiweekly: 14,
		FrequencyMonthly:  30,
	}
	for f, want := range cases {
		got, err := IntervalDays(f)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIntervalDays_Unknown(t *testing.T) {
	_, err := IntervalDays(Frequency("HOURLY"))
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("WEEKLY")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	_, err = ParseFrequency("weekly")
	require.Error(t, err)

	_, err = ParseFrequency("")
	require.Error(t, err)
}
