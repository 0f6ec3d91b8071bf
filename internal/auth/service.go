package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 30 * time.Minute
	sessionKeyPrefix = "cj-session||"
	tokenLength      = 35
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps login sessions in redis: session token -> user id.
// Every successful lookup extends the session by ttl, so sessions expire after ttl of inactivity.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (as *Service) Login(ctx context.Context, userID int) (string, error) {
	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKey(token), userID, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	log.Tracef("auth service, user %d logged in", userID)
	return token, nil
}

// UserID returns the id of the user owning the session token, and refreshes the session ttl
func (as *Service) UserID(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}

	key := sessionKey(token)
	val, err := as.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid session value [%s]: %w", val, err)
	}

	if err := as.redisClient.Expire(ctx, key, as.ttl).Err(); err != nil {
		// session is still valid, it will just expire sooner
		log.Warnf("auth service, refresh session ttl: %s", err)
	}

	return userID, nil
}

func (as *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := as.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
