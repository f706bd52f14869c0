package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// eventKey compares plans as sets: generation order is not part of the
// contract.
type eventKey struct {
	Type         Type
	ScheduledFor time.Time
}

func keysOf(events []Event) map[eventKey]string {
	out := make(map[eventKey]string, len(events))
	for _, e := range events {
		out[eventKey{e.Type, e.ScheduledFor}] = e.Message
	}
	return out
}

func TestDaysUntil(t *testing.T) {
	today := date(2025, 1, 5)

	assert.Equal(t, 15, DaysUntil(today, date(2025, 1, 20)))
	assert.Equal(t, 0, DaysUntil(today, today))
	assert.Equal(t, -1, DaysUntil(today, date(2025, 1, 4)))
	// Partial days floor toward zero days remaining.
	assert.Equal(t, 0, DaysUntil(today, today.Add(23*time.Hour)))
}

func TestGeneratePlan_FarFromExpiry(t *testing.T) {
	// Expiry ~348 days out: the 365-day warning date has already passed,
	// the 180- and 90-day warnings are still ahead, and no recurring window
	// is active.
	expiresAt := date(2025, 12, 15)
	today := date(2025, 1, 1)

	plan, err := GeneratePlan(expiresAt, today, DefaultConfig("user-1"), KindPassport)
	require.NoError(t, err)

	got := keysOf(plan)
	assert.Len(t, got, 2)
	assert.Contains(t, got, eventKey{TypeEarlyWarning, date(2025, 6, 18)})
	assert.Contains(t, got, eventKey{TypeEarlyWarning, date(2025, 9, 16)})
	assert.Equal(t, "Your PASSPORT expires in 180 days (2025-12-15)", got[eventKey{TypeEarlyWarning, date(2025, 6, 18)}])
	assert.Equal(t, "Your PASSPORT expires in 90 days (2025-12-15)", got[eventKey{TypeEarlyWarning, date(2025, 9, 16)}])
}

func TestGeneratePlan_UrgentWindow(t *testing.T) {
	// 15 days to expiry with the default config: inside the urgent window,
	// weekly cadence, stopping where the 7-day critical window begins.
	expiresAt := date(2025, 1, 20)
	today := date(2025, 1, 5)

	plan, err := GeneratePlan(expiresAt, today, DefaultConfig("user-1"), KindVisa)
	require.NoError(t, err)

	got := keysOf(plan)
	assert.Len(t, got, 2)
	assert.Equal(t, "Your VISA expires in 15 days (2025-01-20)", got[eventKey{TypeUrgentReminder, date(2025, 1, 5)}])
	assert.Equal(t, "Your VISA expires in 8 days (2025-01-20)", got[eventKey{TypeUrgentReminder, date(2025, 1, 12)}])
}

func TestGeneratePlan_CriticalWindow(t *testing.T) {
	// 5 days to expiry: daily alerts from today up to but excluding expiry.
	expiresAt := date(2025, 3, 10)
	today := date(2025, 3, 5)

	plan, err := GeneratePlan(expiresAt, today, DefaultConfig("user-1"), KindNationalID)
	require.NoError(t, err)

	got := keysOf(plan)
	assert.Len(t, got, 5)
	for i := 0; i < 5; i++ {
		key := eventKey{TypeCriticalAlert, today.AddDate(0, 0, i)}
		require.Contains(t, got, key)
	}
	assert.Equal(t, "Your NATIONAL_ID expires in 1 days (2025-03-10)", got[eventKey{TypeCriticalAlert, date(2025, 3, 9)}])
}

func TestGeneratePlan_Expired(t *testing.T) {
	today := date(2025, 7, 1)
	expiresAt := today.AddDate(0, 0, -1)

	plan, err := GeneratePlan(expiresAt, today, DefaultConfig("user-1"), KindDriversLicense)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, TypeExpiredNotice, plan[0].Type)
	assert.Equal(t, today, plan[0].ScheduledFor)
	assert.Equal(t, "URGENT: Your DRIVERS_LICENSE has expired! Please renew immediately.", plan[0].Message)
}

func TestGeneratePlan_ExpiresToday(t *testing.T) {
	// Zero days remaining: not expired, not inside the critical window's
	// open interval, so nothing is produced.
	today := date(2025, 7, 1)

	plan, err := GeneratePlan(today, today, DefaultConfig("user-1"), KindPassport)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestGeneratePlan_EmptyEarlyDays(t *testing.T) {
	cfg := DefaultConfig("user-1")
	cfg.EarlyReminderDays = nil

	plan, err := GeneratePlan(date(2026, 6, 1), date(2025, 1, 1), cfg, KindPassport)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestGeneratePlan_EarlyWarningCountMatchesFutureDates(t *testing.T) {
	// With today well before expiry, one warning per early-days entry whose
	// date is still strictly ahead of today.
	expiresAt := date(2026, 1, 1)
	cfg := DefaultConfig("user-1")
	cfg.EarlyReminderDays = []int{400, 365, 180, 90, 30}

	cases := []struct {
		today time.Time
		want  int
	}{
		{date(2024, 1, 1), 5},
		{date(2024, 12, 1), 4}, // the 400-day date has passed
		{date(2025, 1, 2), 3},  // 365-day date passed too
		{date(2025, 8, 1), 2},
	}
	for _, tc := range cases {
		plan, err := GeneratePlan(expiresAt, tc.today, cfg, KindPassport)
		require.NoError(t, err)

		count := 0
		for _, e := range plan {
			if e.Type == TypeEarlyWarning {
				count++
			}
		}
		assert.Equal(t, tc.want, count, "today=%s", tc.today.Format("2006-01-02"))
	}
}

func TestGeneratePlan_Deterministic(t *testing.T) {
	expiresAt := date(2025, 1, 20)
	today := date(2025, 1, 5)
	cfg := DefaultConfig("user-1")

	first, err := GeneratePlan(expiresAt, today, cfg, KindPassport)
	require.NoError(t, err)
	second, err := GeneratePlan(expiresAt, today, cfg, KindPassport)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGeneratePlan_InvalidUrgentFrequency(t *testing.T) {
	cfg := DefaultConfig("user-1")
	cfg.UrgentFrequency = Frequency("HOURLY")

	// Inside the urgent window so the invalid cadence is actually reached.
	_, err := GeneratePlan(date(2025, 1, 20), date(2025, 1, 5), cfg, KindPassport)
	require.Error(t, err)
}
