package task

import "time"

// Task is a tracked work item with the joined display names the dashboard
// shows. IsOverdue is computed against today, never stored.
type Task struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	AssignedTo   int64      `json:"assigned_to"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	AssignedName *string    `json:"assigned_name"`
	CreatorName  *string    `json:"creator_name"`
	IsOverdue    bool       `json:"is_overdue"`
}

// StatLine is one completion-rate roll-up.
type StatLine struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

// MemberStats is one team member's completion-rate roll-up.
type MemberStats struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

// Stats is the dashboard statistics payload.
type Stats struct {
	Personal StatLine      `json:"personal"`
	Team     StatLine      `json:"team"`
	Members  []MemberStats `json:"members"`
}

// TeamMember is one roster entry.
type TeamMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	UserID      int64
	AssignedTo  int64
	Title       string
	Description *string
	Status      string
	DueDate     time.Time
}

// UpdateInput carries a partial task update. Nil fields stay untouched.
type UpdateInput struct {
	ID          int64
	Title       *string
	Description *string
	Status      *string
	AssignedTo  *int64
	DueDate     *time.Time
}

// Empty reports whether the update carries no fields.
func (u *UpdateInput) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.AssignedTo == nil && u.DueDate == nil
}
