package goodmore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

var (
	ErrNotFound         = errors.New("good&more not found")
	ErrReactionNotFound = errors.New("reaction not found")
)

// Repository persists Good&More messages and their reactions.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// SendInput carries a new message. MoreMessage may be nil.
type SendInput struct {
	SenderID    int64
	ReceiverID  int64
	GoodMessage string
	MoreMessage *string
}

// Create inserts a message in the "sent" state and returns it with the
// generated id and timestamp.
func (r *Repository) Create(ctx context.Context, input SendInput) (*GoodMore, error) {
	gm := &database.GoodMore{
		SenderID:    input.SenderID,
		ReceiverID:  input.ReceiverID,
		GoodMessage: input.GoodMessage,
		MoreMessage: input.MoreMessage,
		Status:      "sent",
	}

	if _, err := r.db.NewInsert().
		Model(gm).
		Returning("id, created_at, updated_at").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create good&more: %w", err)
	}

	return &GoodMore{
		ID:          gm.ID,
		SenderID:    gm.SenderID,
		ReceiverID:  gm.ReceiverID,
		GoodMessage: gm.GoodMessage,
		MoreMessage: gm.MoreMessage,
		Status:      gm.Status,
		CreatedAt:   gm.CreatedAt,
		UpdatedAt:   gm.UpdatedAt,
	}, nil
}

// ListSent returns one page of messages the user sent, newest first, with the
// receiver's name and the reaction count attached.
func (r *Repository) ListSent(ctx context.Context, senderID int64, page, perPage int) ([]GoodMore, *Pagination, error) {
	total, err := r.countBy(ctx, "sender_id", senderID)
	if err != nil {
		return nil, nil, err
	}

	items := make([]GoodMore, 0)
	if err := r.db.NewRaw(`
		SELECT gm.id, gm.sender_id, gm.receiver_id, gm.good_message, gm.more_message,
		       gm.status, gm.created_at, gm.updated_at,
		       u.name AS receiver_name,
		       u.email AS receiver_email,
		       COUNT(gmr.id) AS reaction_count
		FROM good_mores gm
		LEFT JOIN users u ON gm.receiver_id = u.id
		LEFT JOIN good_more_reactions gmr ON gm.id = gmr.good_more_id
		WHERE gm.sender_id = ?
		GROUP BY gm.id, u.name, u.email
		ORDER BY gm.created_at DESC
		LIMIT ? OFFSET ?
	`, senderID, perPage, (page-1)*perPage).Scan(ctx, &items); err != nil {
		return nil, nil, fmt.Errorf("failed to list sent good&mores: %w", err)
	}

	return items, paginate(page, perPage, total), nil
}

// ListReceived returns one page of messages the user received, newest first,
// and marks every still unread message on the user's inbox as read.
func (r *Repository) ListReceived(ctx context.Context, receiverID int64, page, perPage int) ([]GoodMore, *Pagination, error) {
	total, err := r.countBy(ctx, "receiver_id", receiverID)
	if err != nil {
		return nil, nil, err
	}

	items := make([]GoodMore, 0)
	if err := r.db.NewRaw(`
		SELECT gm.id, gm.sender_id, gm.receiver_id, gm.good_message, gm.more_message,
		       gm.status, gm.created_at, gm.updated_at,
		       u.name AS sender_name,
		       u.email AS sender_email,
		       COUNT(gmr.id) AS reaction_count
		FROM good_mores gm
		LEFT JOIN users u ON gm.sender_id = u.id
		LEFT JOIN good_more_reactions gmr ON gm.id = gmr.good_more_id
		WHERE gm.receiver_id = ?
		GROUP BY gm.id, u.name, u.email
		ORDER BY gm.created_at DESC
		LIMIT ? OFFSET ?
	`, receiverID, perPage, (page-1)*perPage).Scan(ctx, &items); err != nil {
		return nil, nil, fmt.Errorf("failed to list received good&mores: %w", err)
	}

	// Opening the inbox counts as reading everything in it.
	if _, err := r.db.NewUpdate().
		Model((*database.GoodMore)(nil)).
		Set("status = 'read'").
		Set("updated_at = NOW()").
		Where("receiver_id = ?", receiverID).
		Where("status = 'sent'").
		Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to mark good&mores as read: %w", err)
	}

	return items, paginate(page, perPage, total), nil
}

// GetByID returns one message with both participant names and its reactions,
// newest reaction first.
func (r *Repository) GetByID(ctx context.Context, id int64) (*GoodMore, error) {
	gm := new(GoodMore)
	if err := r.db.NewRaw(`
		SELECT gm.id, gm.sender_id, gm.receiver_id, gm.good_message, gm.more_message,
		       gm.status, gm.created_at, gm.updated_at,
		       u_sender.name AS sender_name,
		       u_sender.email AS sender_email,
		       u_receiver.name AS receiver_name,
		       u_receiver.email AS receiver_email
		FROM good_mores gm
		LEFT JOIN users u_sender ON gm.sender_id = u_sender.id
		LEFT JOIN users u_receiver ON gm.receiver_id = u_receiver.id
		WHERE gm.id = ?
	`, id).Scan(ctx, gm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get good&more: %w", err)
	}

	gm.Reactions = make([]Reaction, 0)
	if err := r.db.NewRaw(`
		SELECT gmr.id, gmr.good_more_id, gmr.user_id, gmr.reaction_type,
		       gmr.reaction_content, gmr.created_at,
		       u.name AS user_name,
		       u.email AS user_email
		FROM good_more_reactions gmr
		LEFT JOIN users u ON gmr.user_id = u.id
		WHERE gmr.good_more_id = ?
		ORDER BY gmr.created_at DESC
	`, id).Scan(ctx, &gm.Reactions); err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}

	return gm, nil
}

// ReactionInput carries a new reaction. ReactionContent may be nil.
type ReactionInput struct {
	GoodMoreID      int64
	UserID          int64
	ReactionType    string
	ReactionContent *string
}

// AddReaction stores the user's reaction on a message, replacing any reaction
// the same user left before, and flips the message status to "reacted". The
// whole exchange runs in one transaction.
func (r *Repository) AddReaction(ctx context.Context, input ReactionInput) (*Reaction, error) {
	exists, err := r.db.NewSelect().
		Model((*database.GoodMore)(nil)).
		Where("id = ?", input.GoodMoreID).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check good&more: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	reaction := &database.GoodMoreReaction{
		GoodMoreID:      input.GoodMoreID,
		UserID:          input.UserID,
		ReactionType:    input.ReactionType,
		ReactionContent: input.ReactionContent,
	}

	err = r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*database.GoodMoreReaction)(nil)).
			Where("good_more_id = ?", input.GoodMoreID).
			Where("user_id = ?", input.UserID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to replace reaction: %w", err)
		}

		if _, err := tx.NewInsert().
			Model(reaction).
			Returning("id, created_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create reaction: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*database.GoodMore)(nil)).
			Set("status = 'reacted'").
			Set("updated_at = NOW()").
			Where("id = ?", input.GoodMoreID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update good&more status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Reaction{
		ID:              reaction.ID,
		GoodMoreID:      reaction.GoodMoreID,
		UserID:          reaction.UserID,
		ReactionType:    reaction.ReactionType,
		ReactionContent: reaction.ReactionContent,
		CreatedAt:       reaction.CreatedAt,
	}, nil
}

// DeleteReaction removes a reaction by its id.
func (r *Repository) DeleteReaction(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*database.GoodMoreReaction)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrReactionNotFound
	}

	return nil
}

// Notifications returns the user's 50 most recent notifications, mixing
// unread messages they received with reactions left on messages they sent,
// together with the unread message count.
func (r *Repository) Notifications(ctx context.Context, userID int64) ([]Notification, int, error) {
	items := make([]Notification, 0)
	if err := r.db.NewRaw(`
		SELECT gm.id, gm.sender_id, gm.good_message, gm.more_message, gm.status,
		       gm.created_at, u.name AS sender_name, 'good_more' AS type
		FROM good_mores gm
		LEFT JOIN users u ON gm.sender_id = u.id
		WHERE gm.receiver_id = ? AND gm.status = 'sent'

		UNION ALL

		SELECT gm.id, gmr.user_id AS sender_id,
		       'Your Good&More received a reaction' AS good_message,
		       gmr.reaction_content AS more_message,
		       'reacted' AS status,
		       gmr.created_at,
		       u.name AS sender_name, 'reaction' AS type
		FROM good_more_reactions gmr
		LEFT JOIN good_mores gm ON gmr.good_more_id = gm.id
		LEFT JOIN users u ON gmr.user_id = u.id
		WHERE gm.sender_id = ?

		ORDER BY created_at DESC
		LIMIT 50
	`, userID, userID).Scan(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := r.db.NewSelect().
		Model((*database.GoodMore)(nil)).
		Where("receiver_id = ?", userID).
		Where("status = 'sent'").
		Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count unread good&mores: %w", err)
	}

	return items, unread, nil
}

// MarkAsRead flips a single still unread message to read. Messages already
// read or reacted to are left alone.
func (r *Repository) MarkAsRead(ctx context.Context, id int64) error {
	if _, err := r.db.NewUpdate().
		Model((*database.GoodMore)(nil)).
		Set("status = 'read'").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = 'sent'").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark good&more as read: %w", err)
	}
	return nil
}

func (r *Repository) countBy(ctx context.Context, column string, id int64) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.GoodMore)(nil)).
		Where("? = ?", bun.Ident(column), id).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count good&mores: %w", err)
	}
	return count, nil
}

func paginate(page, perPage, total int) *Pagination {
	lastPage := (total + perPage - 1) / perPage
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
