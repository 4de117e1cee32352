package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	// User input errors
	ErrDogNotFound:         "Use 'pawminder dog list' to see your dogs.",
	ErrReminderNotFound:    "Use 'pawminder reminder list' to see active reminders.",
	ErrLogNotFound:         "Use 'pawminder log list' to see recorded logs.",
	ErrWebhookNotFound:     "Use 'pawminder webhook list' to see configured webhooks.",
	ErrHourOutOfRange:      "Use an hour between 0 and 23, like '--hour 17'.",
	ErrMinuteOutOfRange:    "Use a minute between 0 and 59, like '--minute 30'.",
	ErrDayOutOfRange:       "Use a day of month between 1 and 31. Days past a month's end clamp to its last day.",
	ErrIntervalNotPositive: "Use a positive interval like '2h', '8h', or '45m'.",
	ErrNoWeekdays:          "Select at least one weekday, like '--on mon,wed,fri'.",
	ErrActionNameTooLong:   "Custom action names must be 32 characters or fewer.",

	// System errors
	ErrDiskFull:           "Free up disk space and try again.",
	ErrDatabaseCorrupted:  "The data directory may need to be restored from backup.",
	ErrNetworkUnavailable: "Check your internet connection. Notifications will retry automatically.",
	ErrLockHeld:           "Another pawminder instance is running. Use 'pawminder daemon stop' or check for stale processes.",
	ErrTimeout:            "The operation took too long. Try again or check your network connection.",
	ErrPermissionDenied:   "Check file permissions in your data directory (~/.local/share/pawminder/).",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	return ""
}


// CommandExamples provides example commands for common errors.
var CommandExamples = map[error][]string{
	ErrDogNotFound: {
		"pawminder dog add Rex",
		"pawminder dog list",
	},
	ErrReminderNotFound: {
		"pawminder reminder add --dog Rex --action feed --weekly --on mon,wed,fri --hour 17 --minute 30",
		"pawminder reminder list",
	},
	ErrIntervalNotPositive: {
		"pawminder reminder add --dog Rex --action water --countdown 8h",
	},
	ErrNoWeekdays: {
		"pawminder reminder add --dog Rex --action walk --weekly --on sat,sun --hour 9 --minute 0",
	},
}
