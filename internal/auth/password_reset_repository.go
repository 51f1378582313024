package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
)

// PasswordResetRepository handles password reset token persistence
type PasswordResetRepository struct {
	db *bun.DB
}

func NewPasswordResetRepository(db *bun.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Replace deletes any prior reset tokens for the email and stores a fresh
// one, so at most one token per email is ever live.
func (r *PasswordResetRepository) Replace(ctx context.Context, email, token string, expiresAt time.Time) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*database.PasswordReset)(nil)).
			Where("email = ?", email).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete prior reset tokens: %w", err)
		}

		reset := &database.PasswordReset{
			Email:     email,
			Token:     token,
			ExpiresAt: expiresAt,
		}
		_, err = tx.NewInsert().
			Model(reset).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}

		return nil
	})
}

// GetByToken retrieves a pending reset token
func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (*PasswordReset, error) {
	dbReset := new(database.PasswordReset)
	err := r.db.NewSelect().
		Model(dbReset).
		Where("token = ?", token).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return &PasswordReset{
		Email:     dbReset.Email,
		Token:     dbReset.Token,
		ExpiresAt: dbReset.ExpiresAt,
		CreatedAt: dbReset.CreatedAt,
	}, nil
}

// Consume updates the user's password and deletes the token as one
// transaction. The delete doubles as the single-use guard: a token already
// consumed by a racing request affects zero rows and the whole unit rolls
// back with ErrResetTokenNotFound.
func (r *PasswordResetRepository) Consume(ctx context.Context, token, email, passwordHash string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewDelete().
			Model((*database.PasswordReset)(nil)).
			Where("token = ?", token).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete reset token: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrResetTokenNotFound
		}

		_, err = tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("password = ?", passwordHash).
			Set("updated_at = NOW()").
			Where("email = ?", email).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		return nil
	})
}
