package cache

import (
	"errors"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/sirupsen/logrus"
)

// Cache stores small integer aggregates such as follower counts.
type Cache interface {
	GetInt(key string) (int64, bool)
	SetInt(key string, value int64, ttl int32)
	Delete(keys ...string)
}

// New returns a memcached-backed cache, or a no-op cache when url is empty.
func New(url string) Cache {
	if url == "" {
		return Nop{}
	}
	return &Memcached{client: memcache.New(url)}
}

type Memcached struct {
	client *memcache.Client
}

func (m *Memcached) GetInt(key string) (int64, bool) {
	item, err := m.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logrus.WithError(err).WithField("key", key).Warn("memcached get failed")
		}
		return 0, false
	}
	value, err := strconv.ParseInt(string(item.Value), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (m *Memcached) SetInt(key string, value int64, ttl int32) {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      []byte(strconv.FormatInt(value, 10)),
		Expiration: ttl,
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("memcached set failed")
	}
}

func (m *Memcached) Delete(keys ...string) {
	for _, key := range keys {
		if err := m.client.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			logrus.WithError(err).WithField("key", key).Warn("memcached delete failed")
		}
	}
}

type Nop struct{}

func (Nop) GetInt(string) (int64, bool) { return 0, false }
func (Nop) SetInt(string, int64, int32) {}
func (Nop) Delete(...string) {}
