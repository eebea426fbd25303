package store

import (
	"strconv"
	"time"

	"github.com/joescharf/issues/internal/models"
)

// matchesAll reports whether issue satisfies every key/value pair in filter.
func matchesAll(issue *models.Issue, filter map[string]string) bool {
	for key, value := range filter {
		if !matches(issue, key, value) {
			return false
		}
	}
	return true
}

// matches compares a single field against a query-string value. Keys that
// name no issue field never match, so they exclude every issue.
func matches(issue *models.Issue, key, value string) bool {
	switch key {
	case "_id":
		return issue.ID == value
	case "issue_title":
		return issue.IssueTitle == value
	case "issue_text":
		return issue.IssueText == value
	case "created_by":
		return issue.CreatedBy == value
	case "assigned_to":
		return issue.AssignedTo == value
	case "status_text":
		return issue.StatusText == value
	case "open":
		// Only the literal "true" and "false" compare equal to a boolean.
		if value != "true" && value != "false" {
			return false
		}
		b, _ := strconv.ParseBool(value)
		return issue.Open == b
	case "created_on":
		return timeEquals(issue.CreatedOn, value)
	case "updated_on":
		return timeEquals(issue.UpdatedOn, value)
	default:
		return false
	}
}

func timeEquals(t time.Time, value string) bool {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return false
	}
	return t.Equal(parsed)
}
