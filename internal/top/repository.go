package top

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

// Repository reads the dashboard aggregates and persists the home screen's
// evaluation writes.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

type completionCount struct {
	Total     int `bun:"total"`
	Completed int `bun:"completed"`
}

// Dashboard assembles the full home screen payload for one user and team.
func (r *Repository) Dashboard(ctx context.Context, userID, teamID int64, now time.Time) (*Dashboard, error) {
	monday := mondayOf(now)
	lastMonday := mondayOf(now.AddDate(0, 0, -7))

	personalTask, err := r.completion(ctx, `
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed
		FROM tasks
		WHERE assigned_to = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count personal tasks: %w", err)
	}

	teamTask, err := r.completion(ctx, `
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN t.status = 'completed' THEN 1 END) AS completed
		FROM tasks t
		INNER JOIN team_members tm ON t.assigned_to = tm.user_id
		WHERE tm.team_id = ?
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count team tasks: %w", err)
	}

	personalGoal, err := r.completion(ctx, `
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed
		FROM goals
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count personal goals: %w", err)
	}

	teamGoal, err := r.completion(ctx, `
		SELECT COUNT(*) AS total,
		       COUNT(CASE WHEN g.status = 'completed' THEN 1 END) AS completed
		FROM goals g
		INNER JOIN team_members tm ON g.user_id = tm.user_id
		WHERE tm.team_id = ?
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count team goals: %w", err)
	}

	evaluations := make([]MemberEvaluation, 0)
	if err := r.db.NewRaw(`
		SELECT u.id, u.name, tre.evaluation_score AS score
		FROM users u
		INNER JOIN team_members tm ON u.id = tm.user_id
		LEFT JOIN team_retrospective_evaluations tre
			ON u.id = tre.user_id
			AND tre.week_start_date = ?
		WHERE tm.team_id = ?
		ORDER BY u.id
	`, monday, teamID).Scan(ctx, &evaluations); err != nil {
		return nil, fmt.Errorf("failed to list team evaluations: %w", err)
	}

	outlook := new(Outlook)
	err = r.db.NewRaw(`
		SELECT r.id, r.future_outlook, oc.is_completed
		FROM retrospectives r
		LEFT JOIN outlook_checks oc ON r.id = oc.retrospective_id AND oc.user_id = ?
		WHERE r.user_id = ? AND r.week_start_date = ?
	`, userID, userID, lastMonday).Scan(ctx, outlook)
	if errors.Is(err, sql.ErrNoRows) {
		outlook = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get last week's outlook: %w", err)
	}

	goals := make([]Goal, 0)
	if err := r.db.NewRaw(`
		SELECT id, user_id, title, description, status, evaluation, created_at, updated_at
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID).Scan(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return &Dashboard{
		PersonalTaskRate: completionRate(personalTask),
		TeamTaskRate:     completionRate(teamTask),
		PersonalGoalRate: completionRate(personalGoal),
		TeamGoalRate:     completionRate(teamGoal),
		Evaluations:      evaluations,
		AverageScore:     averageScore(evaluations),
		LastWeekOutlook:  outlook,
		Goals:            goals,
		CurrentWeek:      monday.Format("2006-01-02"),
	}, nil
}

// UpsertTeamEvaluation stores the user's 1 to 5 self evaluation for the
// current week, overwriting an earlier submission for the same week.
func (r *Repository) UpsertTeamEvaluation(ctx context.Context, userID, teamID int64, score int, now time.Time) error {
	eval := &database.TeamRetrospectiveEvaluation{
		UserID:          userID,
		TeamID:          teamID,
		WeekStartDate:   mondayOf(now),
		EvaluationScore: score,
	}

	if _, err := r.db.NewInsert().
		Model(eval).
		On("CONFLICT (user_id, team_id, week_start_date) DO UPDATE").
		Set("evaluation_score = EXCLUDED.evaluation_score").
		Set("updated_at = NOW()").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert team evaluation: %w", err)
	}

	return nil
}

// UpsertOutlookCheck records whether the user carried out last week's
// outlook.
func (r *Repository) UpsertOutlookCheck(ctx context.Context, userID, retrospectiveID int64, isCompleted bool) error {
	check := &database.OutlookCheck{
		UserID:          userID,
		RetrospectiveID: retrospectiveID,
		IsCompleted:     isCompleted,
	}

	if _, err := r.db.NewInsert().
		Model(check).
		On("CONFLICT (user_id, retrospective_id) DO UPDATE").
		Set("is_completed = EXCLUDED.is_completed").
		Set("updated_at = NOW()").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert outlook check: %w", err)
	}

	return nil
}

// UpdateGoalEvaluation sets a goal's evaluation to "+", "-" or clears it.
func (r *Repository) UpdateGoalEvaluation(ctx context.Context, goalID int64, evaluation *string) error {
	if _, err := r.db.NewUpdate().
		Model((*database.Goal)(nil)).
		Set("evaluation = ?", evaluation).
		Set("updated_at = NOW()").
		Where("id = ?", goalID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to update goal evaluation: %w", err)
	}

	return nil
}

func (r *Repository) completion(ctx context.Context, query string, arg any) (completionCount, error) {
	var count completionCount
	if err := r.db.NewRaw(query, arg).Scan(ctx, &count); err != nil {
		return completionCount{}, err
	}
	return count, nil
}

func completionRate(c completionCount) float64 {
	if c.Total == 0 {
		return 0
	}
	return math.Round(float64(c.Completed)/float64(c.Total)*1000) / 10
}

func averageScore(evaluations []MemberEvaluation) *float64 {
	var sum, n int
	for _, e := range evaluations {
		if e.Score != nil {
			sum += *e.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(float64(sum)/float64(n)*10) / 10
	return &avg
}
