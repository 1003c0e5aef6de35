package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrVerificationTokenUnknown is returned when a token expired or never existed.
var ErrVerificationTokenUnknown = errors.New("verification token unknown or expired")

// VerificationStore keeps email-verification tokens in Redis under a TTL.
type VerificationStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

type verificationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerificationStore constructs the store.
func NewVerificationStore(client *redis.Client, ttl time.Duration) VerificationStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &verificationStore{client: client, ttl: ttl}
}

func verificationKey(token string) string {
	return fmt.Sprintf("email_verification:%s", token)
}

// Issue stores a fresh opaque token mapped to the user id.
func (s *verificationStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, verificationKey(token), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves and deletes the token in one step; a token verifies at
// most one account.
func (s *verificationStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, verificationKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrVerificationTokenUnknown
		}
		return "", err
	}
	return userID, nil
}
