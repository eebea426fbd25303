package models

import "time"

// Issue represents a tracked issue within a project.
type Issue struct {
	ID         string    `json:"_id"`
	IssueTitle string    `json:"issue_title"`
	IssueText  string    `json:"issue_text"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
	CreatedBy  string    `json:"created_by"`
	AssignedTo string    `json:"assigned_to"`
	Open       bool      `json:"open"`
	StatusText string    `json:"status_text"`
}

// NewIssue holds the caller-supplied fields for creating an issue.
// IssueTitle, IssueText and CreatedBy are required.
type NewIssue struct {
	IssueTitle string
	IssueText  string
	CreatedBy  string
	AssignedTo string
	StatusText string
}

// Complete reports whether all required fields are non-empty.
func (n NewIssue) Complete() bool {
	return n.IssueTitle != "" && n.IssueText != "" && n.CreatedBy != ""
}

// IssueUpdate is a partial update. A nil field was not supplied and is left
// untouched; a non-nil field overwrites the issue's value, even when empty.
type IssueUpdate struct {
	IssueTitle *string
	IssueText  *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	Open       *bool
}

// Empty reports whether no field was supplied.
func (u IssueUpdate) Empty() bool {
	return u.IssueTitle == nil && u.IssueText == nil && u.CreatedBy == nil &&
		u.AssignedTo == nil && u.StatusText == nil && u.Open == nil
}

// Apply copies every supplied field onto issue. It does not touch UpdatedOn.
func (u IssueUpdate) Apply(issue *Issue) {
	applyString(u.IssueTitle, &issue.IssueTitle)
	applyString(u.IssueText, &issue.IssueText)
	applyString(u.CreatedBy, &issue.CreatedBy)
	applyString(u.AssignedTo, &issue.AssignedTo)
	applyString(u.StatusText, &issue.StatusText)
	if u.Open != nil {
		issue.Open = *u.Open
	}
}

func applyString(v *string, target *string) {
	if v != nil {
		*target = *v
	}
}

// String and Bool return pointers to v, for building an IssueUpdate.
func String(v string) *string { return &v }

func Bool(v bool) *bool { return &v }
