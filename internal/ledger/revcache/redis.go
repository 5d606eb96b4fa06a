// Package revcache mirrors revocation flags into Redis so verification
// probes can skip the durable store on the hot path. Revocation markers only
// ever flip false→true, which makes positive cache entries safe forever; a
// miss just falls through to the store.
package revcache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "trustledger/pkg/domain"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "trustledger_revcache_lookup_duration_ms",
	Help:    "Latency of revocation cache lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// Redis key prefix for revoked credential markers.
const revokedKeyPrefix = "rev:"

// Redis is the shared revocation mirror for multi-instance deployments.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Mark records a revoked (identity, hash) pair. Keys never expire: the
// underlying flag is one-way.
func (c *Redis) Mark(ctx context.Context, identityID id.IdentityID, hash id.Hash) error {
	return c.client.Set(ctx, key(identityID, hash), "1", 0).Err()
}

// IsRevoked reports whether the pair is known revoked. Absence means "ask
// the store", not "valid".
func (c *Redis) IsRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) (bool, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	_, err := c.client.Get(ctx, key(identityID, hash)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func key(identityID id.IdentityID, hash id.Hash) string {
	return revokedKeyPrefix + identityID.String() + ":" + hash.String()
}
