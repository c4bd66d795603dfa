package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"veo-studio-server/modules/common/config"
)

const pingTimeout = 10 * time.Second

// Options - 설정에서 go-redis 옵션 생성
func Options(cfg *config.Config) *redis.Options {
	// TLS 설정 (Render.com Redis는 자체 서명 인증서)
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true,
		}
	}

	return &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Connect - Redis 연결 생성 후 ping으로 확인 (REDIS_ENABLED=false면 nil, nil)
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled {
		return nil, nil
	}

	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())
	rdb := redis.NewClient(Options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	log.Printf("🔍 Testing Redis connection...")
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Printf("✅ Redis connected: %s", cfg.GetRedisAddr())
	return rdb, nil
}
