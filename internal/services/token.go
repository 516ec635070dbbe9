package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/database"
)

type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) StoreRefreshToken(ctx context.Context, subjectID uuid.UUID, subjectKind, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (subject_id, subject_kind, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, subjectID, subjectKind, tokenHash, expiresAt)
	return err
}

func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, string, error) {
	var subjectID uuid.UUID
	var subjectKind string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT subject_id, subject_kind FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash).Scan(&subjectID, &subjectKind)
	return subjectID, subjectKind, err
}

func (s *TokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *TokenService) RevokeAllSubjectTokens(ctx context.Context, subjectID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE subject_id = $1`, subjectID)
	return err
}

func (s *TokenService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	return err
}
