package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/issues/internal/models"
)

// MemoryStore implements Store over a process-local map of project name to
// issues. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string][]*models.Issue

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used for created_on and updated_on.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator sets the function used to generate issue ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *MemoryStore) { s.newID = newID }
}

// WithLogger sets the logger for store mutations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *MemoryStore) { s.logger = logger }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		projects: make(map[string][]*models.Issue),
		now:      time.Now,
		newID:    newULID,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newULID generates a new ULID string.
func newULID() string {
	return ulid.Make().String()
}

// timestamp returns the current time in UTC at millisecond precision.
func (s *MemoryStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *MemoryStore) ListIssues(_ context.Context, project string, filter map[string]string) ([]*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issues := make([]*models.Issue, 0, len(s.projects[project]))
	for _, issue := range s.projects[project] {
		if matchesAll(issue, filter) {
			c := *issue
			issues = append(issues, &c)
		}
	}
	return issues, nil
}

func (s *MemoryStore) CreateIssue(_ context.Context, project string, in models.NewIssue) (*models.Issue, error) {
	if !in.Complete() {
		return nil, ErrMissingRequiredFields
	}

	now := s.timestamp()
	issue := &models.Issue{
		ID:         s.newID(),
		IssueTitle: in.IssueTitle,
		IssueText:  in.IssueText,
		CreatedOn:  now,
		UpdatedOn:  now,
		CreatedBy:  in.CreatedBy,
		AssignedTo: in.AssignedTo,
		Open:       true,
		StatusText: in.StatusText,
	}

	s.mu.Lock()
	s.projects[project] = append(s.projects[project], issue)
	s.mu.Unlock()

	s.logger.Debug("issue created", "project", project, "id", issue.ID)
	c := *issue
	return &c, nil
}

func (s *MemoryStore) UpdateIssue(_ context.Context, project, id string, upd models.IssueUpdate) (*models.Issue, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issues, ok := s.projects[project]
	if !ok {
		return nil, ErrProjectNotFound
	}
	i := indexOf(issues, id)
	if i < 0 {
		return nil, ErrIssueNotFound
	}
	if upd.Empty() {
		return nil, ErrNoUpdateFields
	}

	issue := issues[i]
	upd.Apply(issue)
	if now := s.timestamp(); now.After(issue.UpdatedOn) {
		issue.UpdatedOn = now
	}

	s.logger.Debug("issue updated", "project", project, "id", id)
	c := *issue
	return &c, nil
}

func (s *MemoryStore) DeleteIssue(_ context.Context, project, id string) error {
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issues, ok := s.projects[project]
	if !ok {
		return ErrProjectNotFound
	}
	i := indexOf(issues, id)
	if i < 0 {
		return ErrIssueNotFound
	}

	// The project key stays even when its last issue is removed.
	s.projects[project] = append(issues[:i:i], issues[i+1:]...)

	s.logger.Debug("issue deleted", "project", project, "id", id)
	return nil
}

func indexOf(issues []*models.Issue, id string) int {
	for i, issue := range issues {
		if issue.ID == id {
			return i
		}
	}
	return -1
}
