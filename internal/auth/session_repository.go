package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

// SessionRepository handles session persistence
type SessionRepository struct {
	db *bun.DB
}

func NewSessionRepository(db *bun.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session row
func (r *SessionRepository) Create(ctx context.Context, session *Session) error {
	dbSession := &database.Session{
		ID:           session.ID,
		UserID:       session.UserID,
		IPAddress:    session.IPAddress,
		UserAgent:    session.UserAgent,
		LastActivity: session.LastActivity,
		CreatedAt:    session.CreatedAt,
	}

	_, err := r.db.NewInsert().
		Model(dbSession).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its identifier
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	dbSession := new(database.Session)
	err := r.db.NewSelect().
		Model(dbSession).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return mapDBSessionToModel(dbSession), nil
}

// Touch refreshes the session's last-activity timestamp
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*database.Session)(nil)).
		Set("last_activity = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// Delete removes a session row. Deleting a session that no longer exists is
// not an error; logout stays idempotent.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// mapDBSessionToModel converts database model to domain model
func mapDBSessionToModel(dbs *database.Session) *Session {
	return &Session{
		ID:           dbs.ID,
		UserID:       dbs.UserID,
		IPAddress:    dbs.IPAddress,
		UserAgent:    dbs.UserAgent,
		LastActivity: dbs.LastActivity,
		CreatedAt:    dbs.CreatedAt,
	}
}
