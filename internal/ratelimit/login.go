package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sortelabs/promo/internal/config"
)

const (
	keyLoginCPF      = "auth:login:cpf:%s"
	keyLoginIP       = "auth:login:ip:%s"
	keyLuckClaimLock = "luck:claim:client:%s"
)

// LoginLimiter throttles credential and device-authorization attempts.
type LoginLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &LoginLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.LoginRate,
		burst:   limitCfg.LoginBurst,
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *LoginLimiter) AllowCPF(ctx context.Context, cpf string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginCPF, strings.TrimSpace(cpf)), l.rate, l.burst)
}

func (l *LoginLimiter) AllowIP(ctx context.Context, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, strings.TrimSpace(ip)), l.rate, l.burst)
}

// TryLockClaim serializes voucher claims per client across instances.
func (l *LoginLimiter) TryLockClaim(ctx context.Context, clientID string, ttl time.Duration) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyLuckClaimLock, strings.TrimSpace(clientID)), ttl)
}

func (l *LoginLimiter) ReleaseClaim(ctx context.Context, clientID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyLuckClaimLock, strings.TrimSpace(clientID)), token)
}
