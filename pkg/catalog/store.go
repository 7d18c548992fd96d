// Package catalog resolves a route to the set of candidate vendors,
// enriched with pricing tables and the zones effective under each
// vendor's serviceability view.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/util"
)

// Redis key layout: one JSON document per vendor under "vendor|<id>",
// with the id set kept in "vendors|index".
const (
	vendorKeyPrefix = "vendor|"
	vendorIndexKey  = "vendors|index"
)

// VendorStore fetches vendor records for a request.
type VendorStore interface {
	FetchAll(ctx context.Context) ([]*model.Vendor, error)
	FetchByID(ctx context.Context, id string) (*model.Vendor, error)
}

// RedisStore is the redis-backed vendor store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// FetchAll loads every vendor record. Malformed documents are skipped
// with a warning; a redis failure is a catalog error.
func (s *RedisStore) FetchAll(ctx context.Context) ([]*model.Vendor, error) {
	ids, err := s.client.SMembers(ctx, vendorIndexKey).Result()
	if err != nil {
		return nil, util.NewCatalogError("vendor-store", vendorIndexKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = vendorKeyPrefix + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, util.NewCatalogError("vendor-store", "", err)
	}

	vendors := make([]*model.Vendor, 0, len(vals))
	for i, val := range vals {
		raw, ok := val.(string)
		if !ok {
			util.WithOperation("vendor-fetch").Warnf("missing record for indexed vendor %s", ids[i])
			continue
		}
		var v model.Vendor
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			util.WithVendor(ids[i]).Warnf("skipping malformed vendor record: %v", err)
			continue
		}
		if v.ID == "" {
			v.ID = ids[i]
		}
		vendors = append(vendors, &v)
	}
	return vendors, nil
}

// FetchByID loads one vendor record. Returns util.ErrNotFound for a
// missing id.
func (s *RedisStore) FetchByID(ctx context.Context, id string) (*model.Vendor, error) {
	raw, err := s.client.Get(ctx, vendorKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("vendor %s: %w", id, util.ErrNotFound)
	}
	if err != nil {
		return nil, util.NewCatalogError("vendor-store", id, err)
	}
	var v model.Vendor
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parsing vendor %s: %w", id, err)
	}
	if v.ID == "" {
		v.ID = id
	}
	return &v, nil
}

// Put stores a vendor record and indexes it. Used by operational tooling
// and test seeding.
func (s *RedisStore) Put(ctx context.Context, v *model.Vendor) error {
	if v.ID == "" {
		return util.NewInputError("_id", "is required")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding vendor %s: %w", v.ID, err)
	}
	if err := s.client.Set(ctx, vendorKeyPrefix+v.ID, data, 0).Err(); err != nil {
		return util.NewCatalogError("vendor-store", v.ID, err)
	}
	if err := s.client.SAdd(ctx, vendorIndexKey, v.ID).Err(); err != nil {
		return util.NewCatalogError("vendor-store", vendorIndexKey, err)
	}
	return nil
}

// Ping verifies store connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return util.NewCatalogError("vendor-store", "", err)
	}
	return nil
}
