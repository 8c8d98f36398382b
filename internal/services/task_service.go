package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"client-tasks.com/client-tasks/internal/constants"
	"client-tasks.com/client-tasks/internal/cursor"
	apperrors "client-tasks.com/client-tasks/internal/errors"
	model "client-tasks.com/client-tasks/internal/models"
	repository "client-tasks.com/client-tasks/internal/repositories"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxTitleLength   = 500
)

type TaskStore interface {
	Insert(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	Query(ctx context.Context, q repository.TaskQuery) ([]model.Task, bool, error)
	UpdateStatus(ctx context.Context, id string, status constants.TaskStatus, now time.Time) (*model.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountOverdueByClient(ctx context.Context, now time.Time) ([]model.OverdueCount, error)
	NextDueAfter(ctx context.Context, now time.Time) (*time.Time, error)
}

type ClientStore interface {
	FindAll(ctx context.Context) ([]model.Client, error)
}

// OverdueCache is optional; a nil cache means every read hits the store.
// Invalidate bumps the version, and SetIfVersion stores a snapshot only
// while the version is still the one read before computing it.
type OverdueCache interface {
	Get(ctx context.Context) (*model.OverdueSnapshot, error)
	Version(ctx context.Context) (int64, error)
	SetIfVersion(ctx context.Context, version int64, snapshot model.OverdueSnapshot) (bool, error)
	Invalidate(ctx context.Context) error
}

type CreateTaskInput struct {
	ClientID    string
	Title       string
	Description *string
	DueDate     *time.Time
	ExternalID  *string
}

type ListTasksInput struct {
	ClientID string
	Status   string
	Cursor   string
	Limit    int
}

type TaskPage struct {
	Items      []model.Task `json:"items"`
	NextCursor *string      `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

type TaskService struct {
	tasks   TaskStore
	clients ClientStore
	cache   OverdueCache
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*TaskService)

func WithOverdueCache(cache OverdueCache) Option {
	return func(s *TaskService) {
		s.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func NewTaskService(tasks TaskStore, clients ClientStore, logger *zap.Logger, opts ...Option) *TaskService {
	s := &TaskService{
		tasks:   tasks,
		clients: clients,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is UTC truncated to microseconds, the precision both drivers store.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, apperrors.ErrTitleTooLong
	}

	clientID, err := parseClientID(in.ClientID)
	if err != nil {
		return nil, err
	}

	var dueDate *time.Time
	if in.DueDate != nil {
		d := in.DueDate.UTC().Truncate(time.Microsecond)
		dueDate = &d
	}

	var externalID *string
	if in.ExternalID != nil && *in.ExternalID != "" {
		id := *in.ExternalID
		externalID = &id
	}

	now := s.timestamp()
	task := &model.Task{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Title:       title,
		Description: in.Description,
		Status:      constants.StatusTodo,
		DueDate:     dueDate,
		ExternalID:  externalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateOverdue(ctx)
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, in ListTasksInput) (*TaskPage, error) {
	clientID, err := parseClientID(in.ClientID)
	if err != nil {
		return nil, err
	}

	var status constants.TaskStatus
	if in.Status != "" {
		parsed, ok := constants.ParseTaskStatus(in.Status)
		if !ok {
			return nil, apperrors.ErrInvalidStatus
		}
		status = parsed
	}

	query := repository.TaskQuery{
		ClientID: clientID,
		Status:   status,
		Limit:    clampLimit(in.Limit),
	}

	if in.Cursor != "" {
		pos, err := cursor.Decode(in.Cursor)
		if err != nil {
			return nil, err
		}
		query.After = &pos
	}

	items, hasMore, err := s.tasks.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Task{}
	}

	page := &TaskPage{Items: items, HasMore: hasMore}
	if hasMore {
		last := items[len(items)-1]
		next := cursor.Encode(cursor.Position{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}

	return page, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, taskID)
}

func (s *TaskService) UpdateStatus(ctx context.Context, id, status string) (*model.Task, error) {
	newStatus, ok := constants.ParseTaskStatus(status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}

	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.UpdateStatus(ctx, taskID, newStatus, s.timestamp())
	if err != nil {
		return nil, err
	}

	s.invalidateOverdue(ctx)
	return task, nil
}

// DeleteTask reports ErrTaskNotFound when no row was removed.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	taskID, err := parseTaskID(id)
	if err != nil {
		return err
	}

	deleted, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrTaskNotFound
	}

	s.invalidateOverdue(ctx)
	return nil
}

func (s *TaskService) OverdueCounts(ctx context.Context) ([]model.OverdueCount, error) {
	if s.cache != nil {
		snapshot, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("overdue cache read failed", zap.Error(err))
		} else if snapshot != nil && snapshot.FreshAt(s.now().UTC()) {
			return snapshot.Counts, nil
		}
	}

	return s.RefreshOverdueCounts(ctx)
}

// RefreshOverdueCounts recomputes from the store and repopulates the cache.
// A result computed while a task changed is returned but not cached.
func (s *TaskService) RefreshOverdueCounts(ctx context.Context) ([]model.OverdueCount, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		v, err := s.cache.Version(ctx)
		if err != nil {
			s.logger.Warn("overdue cache version read failed", zap.Error(err))
		} else {
			version, cacheable = v, true
		}
	}

	now := s.now().UTC()
	counts, err := s.tasks.CountOverdueByClient(ctx, now)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return counts, nil
	}

	validUntil, err := s.tasks.NextDueAfter(ctx, now)
	if err != nil {
		s.logger.Warn("overdue cache expiry lookup failed", zap.Error(err))
		return counts, nil
	}

	stored, err := s.cache.SetIfVersion(ctx, version, model.OverdueSnapshot{Counts: counts, ValidUntil: validUntil})
	switch {
	case err != nil:
		s.logger.Warn("overdue cache write failed", zap.Error(err))
	case !stored:
		s.logger.Debug("overdue counts changed during refresh, not cached", zap.Int64("version", version))
	}

	return counts, nil
}

func (s *TaskService) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.clients.FindAll(ctx)
}

func (s *TaskService) invalidateOverdue(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("overdue cache invalidation failed", zap.Error(err))
	}
}

func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultPageLimit
	case limit < 1:
		return 1
	case limit > MaxPageLimit:
		return MaxPageLimit
	}
	return limit
}

func parseClientID(id string) (string, error) {
	if id == "" {
		return "", apperrors.ErrClientIDRequired
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperrors.ErrInvalidClientID
	}
	return parsed.String(), nil
}

func parseTaskID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperrors.ErrInvalidTaskID
	}
	return parsed.String(), nil
}
