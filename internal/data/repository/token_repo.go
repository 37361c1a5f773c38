package repository

import (
	"context"
	"fmt"

	"auth-service/internal/data/entity"
	"auth-service/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TokenRepository interface {
	Create(ctx context.Context, pair *entity.TokenPair) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TokenPair, error)
	FindByAccessToken(ctx context.Context, accessToken string) (*entity.TokenPair, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
}

type tokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTokenRepository(db database.PgxIface, log *zap.Logger) TokenRepository {
	return &tokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "token")),
	}
}

func (r *tokenRepository) Create(ctx context.Context, pair *entity.TokenPair) error {
	query := `
		INSERT INTO tokens (id, user_id, access_token, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		pair.ID,
		pair.UserID,
		pair.AccessToken,
		pair.RefreshToken,
		pair.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create token pair",
			zap.Error(err),
			zap.String("user_id", pair.UserID.String()),
		)
		return fmt.Errorf("create token pair for user %s: %w", pair.UserID.String(), err)
	}

	return nil
}

func (r *tokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TokenPair, error) {
	return r.findOne(ctx, `user_id = $1`, userID)
}

func (r *tokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*entity.TokenPair, error) {
	return r.findOne(ctx, `access_token = $1`, accessToken)
}

func (r *tokenRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	return r.findOne(ctx, `refresh_token = $1`, refreshToken)
}

func (r *tokenRepository) findOne(ctx context.Context, where string, arg any) (*entity.TokenPair, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, created_at
		FROM tokens
		WHERE ` + where

	var pair entity.TokenPair
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&pair.ID,
		&pair.UserID,
		&pair.AccessToken,
		&pair.RefreshToken,
		&pair.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find token pair", zap.Error(err))
		return nil, fmt.Errorf("find token pair: %w", err)
	}

	return &pair, nil
}

// UpdateAccessToken rotates the access token in place. The refresh token
// column is never touched by this path.
func (r *tokenRepository) UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string) error {
	query := `
		UPDATE tokens
		SET access_token = $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, accessToken)
	if err != nil {
		r.log.Error("Failed to update access token",
			zap.Error(err),
			zap.String("token_id", id.String()),
		)
		return fmt.Errorf("update access token %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("token pair %s not found", id.String())
	}

	return nil
}

// DeleteByUserID removes the user's pair if one exists. Deleting nothing is
// not an error, login calls this unconditionally before inserting.
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM tokens WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to delete token pair by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("delete token pair for user %s: %w", userID.String(), err)
	}

	return nil
}

func (r *tokenRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM tokens WHERE refresh_token = $1`

	result, err := r.db.Exec(ctx, query, refreshToken)
	if err != nil {
		r.log.Error("Failed to delete token pair by refresh token", zap.Error(err))
		return fmt.Errorf("delete token pair by refresh token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("token pair not found")
	}

	return nil
}
