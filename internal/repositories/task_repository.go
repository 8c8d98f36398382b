package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"client-tasks.com/client-tasks/internal/constants"
	"client-tasks.com/client-tasks/internal/cursor"
	apperrors "client-tasks.com/client-tasks/internal/errors"
	model "client-tasks.com/client-tasks/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskQuery selects one page of a client's tasks, newest first.
// An empty Status matches every status; a nil After starts at the newest task.
type TaskQuery struct {
	ClientID string
	Status   constants.TaskStatus
	After    *cursor.Position
	Limit    int
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert stores task after checking, in the same transaction, that its client exists.
func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var clients int64
		if err := tx.Model(&model.Client{}).Where("id = ?", task.ClientID).Count(&clients).Error; err != nil {
			return err
		}
		if clients == 0 {
			return apperrors.ErrClientNotFound
		}

		if err := tx.Create(task).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateExternalID
			}
			return err
		}
		return nil
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Query returns at most q.Limit tasks and whether more exist past them.
func (r *TaskRepository) Query(ctx context.Context, q TaskQuery) ([]model.Task, bool, error) {
	if q.Limit <= 0 {
		return nil, false, apperrors.ErrInvalidLimit
	}

	query := r.db.WithContext(ctx).Where("client_id = ?", q.ClientID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.After != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			q.After.CreatedAt, q.After.CreatedAt, q.After.ID,
		)
	}

	var tasks []model.Task
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.Limit + 1).
		Find(&tasks).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(tasks) > q.Limit
	if hasMore {
		tasks = tasks[:q.Limit]
	}

	return tasks, hasMore, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status constants.TaskStatus, now time.Time) (*model.Task, error) {
	var task *model.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotFound
		}

		var updated model.Task
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		task = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Delete reports whether a row was removed.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountOverdueByClient counts open tasks due before now, per client.
// Clients without overdue work produce no row.
func (r *TaskRepository) CountOverdueByClient(ctx context.Context, now time.Time) ([]model.OverdueCount, error) {
	counts := make([]model.OverdueCount, 0)

	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("client_id, COUNT(*) AS overdue_count").
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", constants.StatusTodo, now).
		Group("client_id").
		Order("client_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// NextDueAfter returns the earliest due date of an open task that is not
// overdue at now, or nil when there is none.
func (r *TaskRepository) NextDueAfter(ctx context.Context, now time.Time) (*time.Time, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Select("due_date").
		Where("status = ? AND due_date IS NOT NULL AND due_date >= ?", constants.StatusTodo, now).
		Order("due_date ASC").
		Take(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task.DueDate, nil
}
