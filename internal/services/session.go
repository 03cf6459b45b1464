package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionKeyPrefix is the Redis key prefix for live token ids
	SessionKeyPrefix = "session:"
	tokenIssuer      = "serenify-journal"
)

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// SessionService issues HS256 JWTs and keeps their ids in Redis so a token
// can be revoked before it expires.
type SessionService struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(rdb *redis.Client, secret string, ttl time.Duration) *SessionService {
	return &SessionService{rdb: rdb, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID and records its id.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.rdb.Set(ctx, SessionKeyPrefix+claims.ID, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Validate checks the signature, expiry and that the token was not revoked.
func (s *SessionService) Validate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	owner, err := s.rdb.Get(ctx, SessionKeyPrefix+claims.ID).Result()
	if errors.Is(err, redis.Nil) {
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, fmt.Errorf("load session: %w", err)
	}
	if owner != claims.Subject {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates a single token id.
func (s *SessionService) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	return s.rdb.Del(ctx, SessionKeyPrefix+tokenID).Err()
}
