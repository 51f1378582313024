// Package top serves the home screen dashboard: task and goal completion
// rates, this week's team evaluations and last week's outlook, plus the
// evaluation upserts the home screen writes back.
package top

import "time"

// MemberEvaluation is one team member's self evaluation for the week.
// Score is nil while the member has not submitted one.
type MemberEvaluation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score *int   `json:"evaluation_score"`
}

// Outlook is the previous week's future outlook together with the user's
// check state on it.
type Outlook struct {
	ID            int64   `json:"id"`
	FutureOutlook *string `json:"future_outlook"`
	IsCompleted   *bool   `json:"is_completed"`
}

// Goal is a personal goal shown on the dashboard. Evaluation holds "+",
// "-" or nil.
type Goal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Evaluation  *string   `json:"evaluation"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dashboard bundles everything the home screen renders in one response.
type Dashboard struct {
	PersonalTaskRate float64            `json:"personal_task_rate"`
	TeamTaskRate     float64            `json:"team_task_rate"`
	PersonalGoalRate float64            `json:"personal_goal_rate"`
	TeamGoalRate     float64            `json:"team_goal_rate"`
	Evaluations      []MemberEvaluation `json:"evaluations"`
	AverageScore     *float64           `json:"average_score"`
	LastWeekOutlook  *Outlook           `json:"last_week_outlook"`
	Goals            []Goal             `json:"goals"`
	CurrentWeek      string             `json:"current_week"`
}

// mondayOf returns the Monday of now's week at midnight. Sunday counts as
// the end of the preceding week.
func mondayOf(now time.Time) time.Time {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := now.AddDate(0, 0, 1-weekday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}
