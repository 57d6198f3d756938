package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// TokenPrefix marks wsadmin personal access tokens.
const TokenPrefix = "wsa_"

// GenerateToken returns a new plaintext token and the hash to store for it.
func GenerateToken() (plaintext, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	plaintext = TokenPrefix + hex.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the hex-encoded blake3 digest of a plaintext token.
func HashToken(plaintext string) string {
	sum := blake3.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// IssueToken creates a token for userID and returns the stored record along
// with the plaintext, which is not recoverable afterwards.
func (s *Storage) IssueToken(ctx context.Context, userID int64, name, scopes string, ttl time.Duration) (*PersonalAccessToken, string, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, "", err
	}

	plaintext, hash, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	token := &PersonalAccessToken{
		UserID:    userID,
		Name:      name,
		Hash:      hash,
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := ValidateToken(token, now); err != nil {
		return nil, "", err
	}

	if err := s.repos.Tokens.Create(ctx, token); err != nil {
		return nil, "", err
	}

	log.Info().
		Int64("user_id", userID).
		Int64("token_id", token.ID).
		Time("expires_at", token.ExpiresAt).
		Msg("Personal access token issued")

	return token, plaintext, nil
}

// LookupToken resolves a plaintext token to its unexpired record.
func (s *Storage) LookupToken(ctx context.Context, plaintext string, now time.Time) (*PersonalAccessToken, error) {
	if !strings.HasPrefix(plaintext, TokenPrefix) {
		return nil, ErrNotFound
	}

	token, err := s.repos.Tokens.First(ctx, Where("hash = ?", HashToken(plaintext)))
	if err != nil {
		return nil, err
	}
	if token.IsExpired(now) {
		return nil, ErrNotFound
	}
	return token, nil
}

// DeleteExpiredTokens removes every token expired at now and returns how many
// were deleted.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repos.Tokens.deleteWhere(ctx, []Clause{Where("expires_at <= ?", now.UTC())})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Expired personal access tokens deleted")
	}
	return n, nil
}
