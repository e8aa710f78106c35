package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

type cacheRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *cacheRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *cacheRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// CacheMiddleware caches successful GET responses in Redis keyed by request
// path and query string. Only 200 responses are stored. Redis errors fail
// open and the request is served from the handler.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := config.KeyPrefix + ":" + r.URL.RequestURI()
			ctx := r.Context()

			cached, err := redisClient.Get(ctx, key).Bytes()
			if err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(cached)
				return
			}
			if err != redis.Nil {
				logger.Error("Failed to read response cache",
					zap.Error(err),
					zap.String("key", key),
				)
			}

			recorder := &cacheRecorder{ResponseWriter: w, status: http.StatusOK}
			recorder.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(recorder, r)

			if recorder.status == http.StatusOK && recorder.body.Len() > 0 {
				if err := redisClient.Set(ctx, key, recorder.body.Bytes(), config.TTL).Err(); err != nil {
					logger.Error("Failed to store response cache",
						zap.Error(err),
						zap.String("key", key),
					)
				}
			}
		})
	}
}

// InvalidateCache removes all cached responses under the given prefix. Write
// handlers call this after mutating catalog state.
func InvalidateCache(redisClient *redis.Client, keyPrefix string, logger *zap.Logger) {
	ctx := context.Background()
	iter := redisClient.Scan(ctx, 0, keyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Error("Failed to invalidate cache entry",
				zap.Error(err),
				zap.String("key", iter.Val()),
			)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan cache keys", zap.Error(err))
	}
}
