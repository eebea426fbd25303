package store

import (
	"context"
	"errors"

	"github.com/joescharf/issues/internal/models"
)

// Validation errors. Every operation detects these before mutating state.
var (
	ErrMissingRequiredFields = errors.New("required field(s) missing")
	ErrMissingID             = errors.New("missing _id")
	ErrProjectNotFound       = errors.New("project not found")
	ErrIssueNotFound         = errors.New("issue not found")
	ErrNoUpdateFields        = errors.New("no update field(s) sent")
)

// Store defines the issue operations, scoped by project name.
type Store interface {
	// ListIssues returns the project's issues in insertion order, keeping only
	// those that match every filter entry. Unknown projects yield an empty slice.
	ListIssues(ctx context.Context, project string, filter map[string]string) ([]*models.Issue, error)
	CreateIssue(ctx context.Context, project string, in models.NewIssue) (*models.Issue, error)
	UpdateIssue(ctx context.Context, project, id string, upd models.IssueUpdate) (*models.Issue, error)
	DeleteIssue(ctx context.Context, project, id string) error
}
