package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remasterhq/remaster/pkg/otp"
)

// Cache key namespaces. At most one live code exists per purpose and
// subject: issuing a new code deletes any previous entry for the key.
const (
	verifyEmailPrefix    = "verify-email:"
	forgotPasswordPrefix = "forgot-password:"
)

// Cache is the subset of key-value operations the OTP lifecycle needs.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// RedisCache adapts a go-redis client to the Cache contract.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// OTPStore implements the cache-backed one-time-code lifecycle shared
// by email verification and password reset. Issue is delete-then-set
// (last writer wins for concurrent issuance to the same subject);
// consume is fetch-compare-delete, with the entry kept on mismatch so
// the subject can retry within the TTL window.
type OTPStore struct {
	cache Cache
	ttl   time.Duration
}

func NewOTPStore(cache Cache, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &OTPStore{cache: cache, ttl: ttl}
}

// IssueVerifyEmail replaces any live verification code for the user
// with a fresh one and returns it for out-of-band delivery.
func (s *OTPStore) IssueVerifyEmail(ctx context.Context, userID int64) (string, error) {
	key := verifyEmailPrefix + strconv.FormatInt(userID, 10)

	code, err := otp.Generate()
	if err != nil {
		return "", err
	}

	if err := s.cache.Del(ctx, key); err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, key, code, s.ttl); err != nil {
		return "", err
	}

	return code, nil
}

// ConsumeVerifyEmail validates a code for the user and deletes it on
// success. Absent key yields ErrOTPExpired; mismatch yields
// ErrOTPInvalid and keeps the entry.
func (s *OTPStore) ConsumeVerifyEmail(ctx context.Context, userID int64, code string) error {
	key := verifyEmailPrefix + strconv.FormatInt(userID, 10)

	stored, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPExpired
	}
	if stored != code {
		return ErrOTPInvalid
	}

	return s.cache.Del(ctx, key)
}

// IssueForgotPassword replaces any live reset code for the email. The
// stored value encodes the user id alongside the code because the
// consumer of a reset code is unauthenticated and the code alone cannot
// identify the account.
func (s *OTPStore) IssueForgotPassword(ctx context.Context, email string, userID int64) (string, error) {
	key := forgotPasswordPrefix + email

	code, err := otp.Generate()
	if err != nil {
		return "", err
	}

	if err := s.cache.Del(ctx, key); err != nil {
		return "", err
	}
	value := fmt.Sprintf("%d:%s", userID, code)
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		return "", err
	}

	return code, nil
}

// ConsumeForgotPassword validates a reset code for the email and, on
// success, deletes the entry and returns the user id it was issued for.
func (s *OTPStore) ConsumeForgotPassword(ctx context.Context, email, code string) (int64, error) {
	key := forgotPasswordPrefix + email

	stored, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrOTPExpired
	}

	id, storedCode, found := strings.Cut(stored, ":")
	if !found || storedCode != code {
		return 0, ErrOTPInvalid
	}

	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, ErrOTPInvalid
	}

	if err := s.cache.Del(ctx, key); err != nil {
		return 0, err
	}

	return userID, nil
}
