// Copyright 2022 geebytes
// Licensed under the Apache License, Version 2.0 (the 'License');
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an 'AS IS' BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vmwiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OptionsKey redis key of the cached VM options
const OptionsKey string = "vmwiz:v1:vmoptions"

// OptionsCache cache of the VM options document
type OptionsCache interface {
	// Get the cached body, false on miss or expiry
	Get(ctx context.Context) ([]byte, bool)
	// Set store body for the cache ttl
	Set(ctx context.Context, body []byte) error
}

var (
	_ OptionsCache = (*MemoryOptionsCache)(nil)
	_ OptionsCache = (*RdbOptionsCache)(nil)
)

// MemoryOptionsCache process local options cache
type MemoryOptionsCache struct {
	mu      sync.RWMutex
	body    []byte
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryOptionsCache get a process local options cache
func NewMemoryOptionsCache(ttl time.Duration) *MemoryOptionsCache {
	return &MemoryOptionsCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *MemoryOptionsCache) Get(_ context.Context) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.body == nil || !c.now().Before(c.expires) {
		return nil, false
	}
	body := make([]byte, len(c.body))
	copy(body, c.body)
	return body, true
}

func (c *MemoryOptionsCache) Set(_ context.Context, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.body = make([]byte, len(body))
	copy(c.body, body)
	c.expires = c.now().Add(c.ttl)
	return nil
}

// RdbOptionsCache options cache shared through redis
type RdbOptionsCache struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

// NewRdbOptionsCache get an options cache stored in redis
func NewRdbOptionsCache(rdb redis.Cmdable, ttl time.Duration) *RdbOptionsCache {
	return &RdbOptionsCache{
		rdb: rdb,
		key: OptionsKey,
		ttl: ttl,
	}
}

func (c *RdbOptionsCache) Get(ctx context.Context) ([]byte, bool) {
	body, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			clientLog.Warnf("Get cached vm options error %s", err.Error())
		}
		return nil, false
	}
	return body, true
}

func (c *RdbOptionsCache) Set(ctx context.Context, body []byte) error {
	return c.rdb.Set(ctx, c.key, body, c.ttl).Err()
}
