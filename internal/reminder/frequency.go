package reminder

import dErrors "idmonitor/pkg/domain-errors"

// IntervalDays maps a cadence to its step in whole days.
//
// An unknown frequency is a programming error: config validation guarantees
// callers only pass validated enum values, so there is no silent default.
func IntervalDays(f Frequency) (int, error) {
	switch f {
	case FrequencyDaily:
		return 1, nil
	case FrequencyWeekly:
		return 7, nil
	case FrequencyBiweekly:
		return 14, nil
	case FrequencyMonthly:
		return 30, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid frequency: "+f.String())
	}
}
