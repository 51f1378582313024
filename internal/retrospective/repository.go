package retrospective

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

var ErrNotFound = errors.New("retrospective not found")

// Repository handles retrospective persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// RecentTasks returns the user's tasks created in the past 7 days.
func (r *Repository) RecentTasks(ctx context.Context, userID int64) ([]Task, error) {
	var tasks []Task
	err := r.db.NewRaw(`
		SELECT * FROM tasks
		WHERE user_id = ?
		AND created_at >= NOW() - INTERVAL '7 days'
		ORDER BY created_at DESC`, userID).Scan(ctx, &tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// CreateTask inserts a task from the retrospective screen. The creator is the
// assignee.
func (r *Repository) CreateTask(ctx context.Context, userID int64, title string, description *string, status string) (*Task, error) {
	dbTask := &database.Task{
		UserID:      userID,
		AssignedTo:  userID,
		Title:       title,
		Description: description,
		Status:      status,
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &Task{
		ID:          dbTask.ID,
		UserID:      userID,
		AssignedTo:  userID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   dbTask.CreatedAt,
	}, nil
}

// ListByUser returns the user's retrospectives, newest week first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Retrospective, error) {
	var retros []Retrospective
	err := r.db.NewRaw(`
		SELECT * FROM retrospectives
		WHERE user_id = ?
		ORDER BY week_start_date DESC`, userID).Scan(ctx, &retros)
	if err != nil {
		return nil, fmt.Errorf("failed to list retrospectives: %w", err)
	}
	if retros == nil {
		retros = []Retrospective{}
	}
	return retros, nil
}

// Create inserts a submitted retrospective and links the given tasks to it,
// all in one transaction.
func (r *Repository) Create(ctx context.Context, retro *database.Retrospective, taskIDs []int64) (int64, error) {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		retro.Status = "submitted"
		now := time.Now()
		retro.SubmittedAt = &now

		if _, err := tx.NewInsert().Model(retro).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create retrospective: %w", err)
		}

		for _, taskID := range taskIDs {
			link := &database.RetrospectiveTask{
				RetrospectiveID: retro.ID,
				TaskID:          taskID,
			}
			if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
				return fmt.Errorf("failed to link task %d: %w", taskID, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return retro.ID, nil
}

// GetByID returns a retrospective with its linked tasks.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Detail, error) {
	var retro Retrospective
	err := r.db.NewRaw(`SELECT * FROM retrospectives WHERE id = ?`, id).Scan(ctx, &retro)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get retrospective: %w", err)
	}

	var tasks []Task
	err = r.db.NewRaw(`
		SELECT t.* FROM tasks t
		INNER JOIN retrospective_tasks rt ON t.id = rt.task_id
		WHERE rt.retrospective_id = ?`, id).Scan(ctx, &tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}

	return &Detail{Retrospective: retro, Tasks: tasks}, nil
}

// GetByWeek returns the user's retrospective whose week starts on the given
// Monday, or ErrNotFound.
func (r *Repository) GetByWeek(ctx context.Context, userID int64, weekStart string) (*Retrospective, error) {
	var retro Retrospective
	err := r.db.NewRaw(`
		SELECT * FROM retrospectives
		WHERE user_id = ? AND week_start_date = ?`, userID, weekStart).Scan(ctx, &retro)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get retrospective by week: %w", err)
	}
	return &retro, nil
}
