package cache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// ValkeyCache stores cached results in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache that namespaces keys with prefix.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "faq"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements faq.Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := c.client.B().Get().Key(c.key(key)).Build()
	payload, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set implements faq.Cache using SET ... EX.
func (c *ValkeyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(key string) string {
	return c.prefix + ":" + key
}

var _ faq.Cache = (*ValkeyCache)(nil)
