package feedback

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

// Repository handles feedback persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// TeamRetrospectives lists every retrospective submitted by the team's
// members, newest week first.
func (r *Repository) TeamRetrospectives(ctx context.Context, teamID int64) ([]TeamRetrospective, error) {
	var retros []TeamRetrospective
	err := r.db.NewRaw(`
		SELECT r.*, u.name AS user_name
		FROM retrospectives r
		INNER JOIN users u ON r.user_id = u.id
		INNER JOIN team_members tm ON u.id = tm.user_id
		WHERE tm.team_id = ?
		ORDER BY r.week_start_date DESC, r.created_at DESC`, teamID).Scan(ctx, &retros)
	if err != nil {
		return nil, fmt.Errorf("failed to list team retrospectives: %w", err)
	}
	if retros == nil {
		retros = []TeamRetrospective{}
	}
	return retros, nil
}

// ListReceived returns feedback addressed to the user, with replies and
// per-type reaction counts attached.
func (r *Repository) ListReceived(ctx context.Context, userID int64) ([]Feedback, error) {
	var feedbacks []Feedback
	err := r.db.NewRaw(`
		SELECT f.*,
		       u_sender.name AS sender_name,
		       r.week_start_date,
		       (SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = f.id) AS reply_count,
		       (SELECT COUNT(*) FROM feedback_reactions WHERE feedback_id = f.id) AS reaction_count
		FROM feedbacks f
		INNER JOIN users u_sender ON f.sender_id = u_sender.id
		INNER JOIN retrospectives r ON f.retrospective_id = r.id
		WHERE f.receiver_id = ?
		ORDER BY f.created_at DESC`, userID).Scan(ctx, &feedbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to list received feedback: %w", err)
	}

	return r.attachThreads(ctx, feedbacks)
}

// ListSent returns feedback the user wrote, with replies and per-type
// reaction counts attached.
func (r *Repository) ListSent(ctx context.Context, userID int64) ([]Feedback, error) {
	var feedbacks []Feedback
	err := r.db.NewRaw(`
		SELECT f.*,
		       u_receiver.name AS receiver_name,
		       r.week_start_date,
		       (SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = f.id) AS reply_count,
		       (SELECT COUNT(*) FROM feedback_reactions WHERE feedback_id = f.id) AS reaction_count
		FROM feedbacks f
		INNER JOIN users u_receiver ON f.receiver_id = u_receiver.id
		INNER JOIN retrospectives r ON f.retrospective_id = r.id
		WHERE f.sender_id = ?
		ORDER BY f.created_at DESC`, userID).Scan(ctx, &feedbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent feedback: %w", err)
	}

	return r.attachThreads(ctx, feedbacks)
}

func (r *Repository) attachThreads(ctx context.Context, feedbacks []Feedback) ([]Feedback, error) {
	for i := range feedbacks {
		f := &feedbacks[i]

		var replies []Reply
		err := r.db.NewRaw(`
			SELECT fr.*, u.name AS user_name
			FROM feedback_replies fr
			INNER JOIN users u ON fr.user_id = u.id
			WHERE fr.feedback_id = ?
			ORDER BY fr.created_at ASC`, f.ID).Scan(ctx, &replies)
		if err != nil {
			return nil, fmt.Errorf("failed to list replies: %w", err)
		}
		if replies == nil {
			replies = []Reply{}
		}
		f.Replies = replies

		var reactions []ReactionCount
		err = r.db.NewRaw(`
			SELECT reaction_type, COUNT(*) AS count
			FROM feedback_reactions
			WHERE feedback_id = ?
			GROUP BY reaction_type`, f.ID).Scan(ctx, &reactions)
		if err != nil {
			return nil, fmt.Errorf("failed to count reactions: %w", err)
		}
		if reactions == nil {
			reactions = []ReactionCount{}
		}
		f.Reactions = reactions
	}
	if feedbacks == nil {
		feedbacks = []Feedback{}
	}
	return feedbacks, nil
}

// Create inserts a feedback and returns its id.
func (r *Repository) Create(ctx context.Context, retrospectiveID, senderID, receiverID int64, content string) (int64, error) {
	dbFeedback := &database.Feedback{
		RetrospectiveID: retrospectiveID,
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Content:         content,
	}

	_, err := r.db.NewInsert().
		Model(dbFeedback).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create feedback: %w", err)
	}

	return dbFeedback.ID, nil
}

// UpdateContent replaces a feedback's content.
func (r *Repository) UpdateContent(ctx context.Context, id int64, content string) error {
	_, err := r.db.NewUpdate().
		Model((*database.Feedback)(nil)).
		Set("content = ?", content).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	return nil
}

// Delete removes a feedback.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*database.Feedback)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

// CreateReply adds a threaded reply and returns its id.
func (r *Repository) CreateReply(ctx context.Context, feedbackID, userID int64, content string) (int64, error) {
	dbReply := &database.FeedbackReply{
		FeedbackID: feedbackID,
		UserID:     userID,
		Content:    content,
	}

	_, err := r.db.NewInsert().
		Model(dbReply).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create reply: %w", err)
	}

	return dbReply.ID, nil
}

// ToggleReaction adds the user's reaction of the given type, or removes it if
// it already exists. Returns "added" or "removed".
func (r *Repository) ToggleReaction(ctx context.Context, feedbackID, userID int64, reactionType string) (string, error) {
	exists, err := r.db.NewSelect().
		Model((*database.FeedbackReaction)(nil)).
		Where("feedback_id = ?", feedbackID).
		Where("user_id = ?", userID).
		Where("reaction_type = ?", reactionType).
		Exists(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check reaction: %w", err)
	}

	if exists {
		_, err := r.db.NewDelete().
			Model((*database.FeedbackReaction)(nil)).
			Where("feedback_id = ?", feedbackID).
			Where("user_id = ?", userID).
			Where("reaction_type = ?", reactionType).
			Exec(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to remove reaction: %w", err)
		}
		return "removed", nil
	}

	reaction := &database.FeedbackReaction{
		FeedbackID:   feedbackID,
		UserID:       userID,
		ReactionType: reactionType,
	}
	if _, err := r.db.NewInsert().Model(reaction).Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to add reaction: %w", err)
	}
	return "added", nil
}

// MarkAsRead flags a feedback as read.
func (r *Repository) MarkAsRead(ctx context.Context, feedbackID int64) error {
	_, err := r.db.NewUpdate().
		Model((*database.Feedback)(nil)).
		Set("is_read = TRUE").
		Set("updated_at = NOW()").
		Where("id = ?", feedbackID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark feedback as read: %w", err)
	}
	return nil
}
