package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/google/renameio/v2"
	"github.com/redis/go-redis/v9"
	"github.com/trexis-racing/roster/pkg/cache"
)

// Scope is one key-value persistence area, like browser local or session storage.
type Scope interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// FileScope keeps all keys in one JSON object on disk.
type FileScope struct {
	mu   sync.Mutex
	path string
}

func NewFileScope(path string) *FileScope {
	return &FileScope{path: path}
}

func (f *FileScope) Path() string {
	return f.path
}

func (f *FileScope) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileScope) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		// 文件损坏时以空内容覆盖
		values = map[string]string{}
	}
	values[key] = value
	return f.write(values)
}

func (f *FileScope) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		values = map[string]string{}
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed && err == nil {
		return nil
	}
	if len(values) == 0 {
		if rmErr := os.Remove(f.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return rmErr
		}
		return nil
	}
	return f.write(values)
}

func (f *FileScope) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := sonic.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return values, nil
}

// write replaces the file atomically with owner-only permissions.
func (f *FileScope) write(values map[string]string) error {
	data, err := sonic.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return renameio.WriteFile(f.path, data, 0o600)
}

// MemoryScope lives only as long as the process.
type MemoryScope struct {
	cache *fastcache.Cache
}

// memoryScopeBytes is the fastcache minimum bucket allocation.
const memoryScopeBytes = 32 * 1024 * 1024

func NewMemoryScope() *MemoryScope {
	return &MemoryScope{cache: fastcache.New(memoryScopeBytes)}
}

func (m *MemoryScope) Get(key string) (string, bool, error) {
	v, ok := m.cache.HasGet(nil, []byte(key))
	if !ok {
		return "", false, nil
	}
	return string(v), true, nil
}

func (m *MemoryScope) Set(key, value string) error {
	m.cache.Set([]byte(key), []byte(value))
	return nil
}

func (m *MemoryScope) Remove(keys ...string) error {
	for _, k := range keys {
		m.cache.Del([]byte(k))
	}
	return nil
}

// RedisScope stores keys as fields of one hash, so several hosts can share a session.
type RedisScope struct {
	client  cache.IHashCache
	key     string
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisScope(client cache.IHashCache, key string, ttl time.Duration) *RedisScope {
	return &RedisScope{client: client, key: key, ttl: ttl, timeout: 3 * time.Second}
}

func (r *RedisScope) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisScope) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		return err
	}
	if r.ttl > 0 {
		return r.client.Expire(ctx, r.key, r.ttl).Err()
	}
	return nil
}

func (r *RedisScope) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.HDel(ctx, r.key, keys...).Err()
}
