//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/freightline-io/freightline/pkg/model"
)

// RedisAddr returns the address of the test Redis instance from
// FREIGHTLINE_TEST_REDIS_ADDR, or the local default.
func RedisAddr() string {
	if addr := os.Getenv("FREIGHTLINE_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// SkipIfNoRedis skips the test if the test Redis is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr()})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", RedisAddr(), err)
	}
}

// FlushDB flushes a specific Redis database.
func FlushDB(t *testing.T, db int) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
}

// SeedVendors writes vendor documents into the test Redis in the
// vendor|<id> + vendors|index layout the catalog store reads.
func SeedVendors(t *testing.T, db int, vendors []*model.Vendor) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	for _, v := range vendors {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshaling vendor %s: %v", v.ID, err)
		}
		if err := client.Set(ctx, "vendor|"+v.ID, data, 0).Err(); err != nil {
			t.Fatalf("seeding vendor %s: %v", v.ID, err)
		}
		if err := client.SAdd(ctx, "vendors|index", v.ID).Err(); err != nil {
			t.Fatalf("indexing vendor %s: %v", v.ID, err)
		}
	}
	return client
}
