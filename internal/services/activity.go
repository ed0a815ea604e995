package services

import (
	"fmt"
	"time"

	"multisite-backend-go/internal/models"
)

// FormatMessage renders the sentence fragment shown after the actor's name
// in the activity feed. Unknown action tags come back verbatim; the feed
// must never fail on a tag added later.
func FormatMessage(record models.ActivityRecord) string {
	switch record.Action {
	case models.ActionCreateAccount:
		return "created a new account"
	case models.ActionUpdateProfile:
		return "updated their profile"
	case models.ActionAddDocument:
		if name, ok := record.Metadata["documentName"].(string); ok && name != "" {
			return fmt.Sprintf("added %q", name)
		}
		return "added a new document"
	case models.ActionLogin:
		return "signed in"
	default:
		return record.Action
	}
}

// FormatTimeAgo renders a coarse relative timestamp with thresholds at 60
// seconds, 60 minutes and 24 hours.
func FormatTimeAgo(timestamp time.Time) string {
	return timeAgo(timestamp, time.Now())
}

func timeAgo(timestamp, now time.Time) string {
	seconds := int(now.Sub(timestamp).Seconds())
	if seconds < 60 {
		return "less than a minute ago"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return pluralAgo(minutes, "minute")
	}
	hours := minutes / 60
	if hours < 24 {
		return pluralAgo(hours, "hour")
	}
	return pluralAgo(hours/24, "day")
}

func pluralAgo(count int, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", count, unit)
}
