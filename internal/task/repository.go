package task

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

// Repository handles task persistence and the dashboard roll-ups
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

type statRow struct {
	Total     int `bun:"total"`
	Completed int `bun:"completed"`
}

// Stats computes the personal, team and per-member completion rates.
func (r *Repository) Stats(ctx context.Context, userID, teamID int64) (*Stats, error) {
	var personal statRow
	err := r.db.NewRaw(`
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed
		FROM tasks
		WHERE assigned_to = ?`, userID).Scan(ctx, &personal)
	if err != nil {
		return nil, fmt.Errorf("failed to compute personal stats: %w", err)
	}

	var team statRow
	err = r.db.NewRaw(`
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN t.status = 'completed' THEN 1 END) AS completed
		FROM tasks t
		INNER JOIN team_members tm ON t.assigned_to = tm.user_id
		WHERE tm.team_id = ?`, teamID).Scan(ctx, &team)
	if err != nil {
		return nil, fmt.Errorf("failed to compute team stats: %w", err)
	}

	var members []MemberStats
	err = r.db.NewRaw(`
		SELECT u.id AS id,
		       u.name AS name,
		       COUNT(t.id) AS total,
		       COUNT(CASE WHEN t.status = 'completed' THEN 1 END) AS completed
		FROM users u
		INNER JOIN team_members tm ON u.id = tm.user_id
		LEFT JOIN tasks t ON u.id = t.assigned_to
		WHERE tm.team_id = ?
		GROUP BY u.id, u.name
		ORDER BY u.id`, teamID).Scan(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to compute member stats: %w", err)
	}

	for i := range members {
		members[i].Rate = completionRate(members[i].Completed, members[i].Total)
	}
	if members == nil {
		members = []MemberStats{}
	}

	return &Stats{
		Personal: StatLine{
			Total:     personal.Total,
			Completed: personal.Completed,
			Rate:      completionRate(personal.Completed, personal.Total),
		},
		Team: StatLine{
			Total:     team.Total,
			Completed: team.Completed,
			Rate:      completionRate(team.Completed, team.Total),
		},
		Members: members,
	}, nil
}

// ListByAssignee returns the user's tasks ordered by due date.
func (r *Repository) ListByAssignee(ctx context.Context, userID int64) ([]Task, error) {
	var tasks []Task
	err := r.db.NewRaw(`
		SELECT t.*,
		       u_assigned.name AS assigned_name,
		       u_creator.name AS creator_name
		FROM tasks t
		LEFT JOIN users u_assigned ON t.assigned_to = u_assigned.id
		LEFT JOIN users u_creator ON t.user_id = u_creator.id
		WHERE t.assigned_to = ?
		ORDER BY t.due_date ASC, t.created_at DESC`, userID).Scan(ctx, &tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return markOverdue(tasks), nil
}

// ListByTeam returns every team member's tasks ordered by due date.
func (r *Repository) ListByTeam(ctx context.Context, teamID int64) ([]Task, error) {
	var tasks []Task
	err := r.db.NewRaw(`
		SELECT t.*,
		       u_assigned.name AS assigned_name,
		       u_creator.name AS creator_name
		FROM tasks t
		INNER JOIN team_members tm ON t.assigned_to = tm.user_id
		LEFT JOIN users u_assigned ON t.assigned_to = u_assigned.id
		LEFT JOIN users u_creator ON t.user_id = u_creator.id
		WHERE tm.team_id = ?
		ORDER BY t.due_date ASC, t.created_at DESC`, teamID).Scan(ctx, &tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}

	return markOverdue(tasks), nil
}

// Create inserts a new task and returns its id and creation time.
func (r *Repository) Create(ctx context.Context, in CreateInput) (int64, time.Time, error) {
	dbTask := &database.Task{
		UserID:      in.UserID,
		AssignedTo:  in.AssignedTo,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     &in.DueDate,
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to create task: %w", err)
	}

	return dbTask.ID, dbTask.CreatedAt, nil
}

// Update applies a partial task update. Setting status to completed stamps
// completed_at.
func (r *Repository) Update(ctx context.Context, in UpdateInput) error {
	q := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Where("id = ?", in.ID).
		Set("updated_at = NOW()")

	if in.Title != nil {
		q = q.Set("title = ?", *in.Title)
	}
	if in.Description != nil {
		q = q.Set("description = ?", *in.Description)
	}
	if in.Status != nil {
		q = q.Set("status = ?", *in.Status)
		if *in.Status == "completed" {
			q = q.Set("completed_at = NOW()")
		}
	}
	if in.AssignedTo != nil {
		q = q.Set("assigned_to = ?", *in.AssignedTo)
	}
	if in.DueDate != nil {
		q = q.Set("due_date = ?", *in.DueDate)
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// TeamMembers returns the team roster ordered by user id.
func (r *Repository) TeamMembers(ctx context.Context, teamID int64) ([]TeamMember, error) {
	var members []TeamMember
	err := r.db.NewRaw(`
		SELECT u.id AS id, u.name AS name, u.email AS email, tm.role AS role
		FROM users u
		INNER JOIN team_members tm ON u.id = tm.user_id
		WHERE tm.team_id = ?
		ORDER BY u.id`, teamID).Scan(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	if members == nil {
		members = []TeamMember{}
	}
	return members, nil
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

func markOverdue(tasks []Task) []Task {
	today := time.Now().Truncate(24 * time.Hour)
	for i := range tasks {
		t := &tasks[i]
		t.IsOverdue = t.DueDate != nil && t.DueDate.Before(today) && t.Status != "completed"
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks
}
