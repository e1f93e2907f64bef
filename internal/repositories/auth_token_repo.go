package repositories

import (
	"context"
	"time"

	"billingportal/internal/models"
)

type AuthTokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	GetByHash(ctx context.Context, tokenHash string, tokenType models.TokenType) (*models.AuthToken, error)
	// ConsumeMagicLink marks an unused, unexpired magic link as used. It
	// returns ErrAlreadyApplied when another request consumed it first.
	ConsumeMagicLink(ctx context.Context, tokenHash string, now time.Time) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type authTokenRepo struct {
	db DBTX
}

func NewAuthTokenRepository(db DBTX) AuthTokenRepository {
	return &authTokenRepo{db: db}
}

func (r *authTokenRepo) Create(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, customer_id, token_hash, token_type, expires_at, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.ID, token.CustomerID, token.TokenHash, token.TokenType, token.ExpiresAt, token.IPAddress, token.UserAgent)
	return err
}

func (r *authTokenRepo) GetByHash(ctx context.Context, tokenHash string, tokenType models.TokenType) (*models.AuthToken, error) {
	query := `
		SELECT id, customer_id, token_hash, token_type, expires_at, used_at, ip_address, user_agent, created_at
		FROM auth_tokens
		WHERE token_hash = $1 AND token_type = $2
	`
	t := &models.AuthToken{}
	err := r.db.QueryRow(ctx, query, tokenHash, tokenType).Scan(
		&t.ID, &t.CustomerID, &t.TokenHash, &t.TokenType, &t.ExpiresAt, &t.UsedAt, &t.IPAddress, &t.UserAgent, &t.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *authTokenRepo) ConsumeMagicLink(ctx context.Context, tokenHash string, now time.Time) error {
	query := `
		UPDATE auth_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND token_type = 'magic_link' AND used_at IS NULL AND expires_at > $2
	`
	tag, err := r.db.Exec(ctx, query, tokenHash, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyApplied
	}
	return nil
}

func (r *authTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *authTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
