package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/akl7777777/avi-intl/internal/model"
)

type entry struct {
	data      *model.AddressInfoResponse
	expiresAt time.Time
}

// Cache keeps validated responses for a fixed TTL. Responses are immutable
// once built, so entries are shared rather than copied.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*entry
	ttl    time.Duration
	stopCh chan struct{}
	once   sync.Once
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		items:  make(map[string]*entry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Key fingerprints the parts of req that affect the answer. The license key
// and timeout are left out.
func Key(transport string, req model.AddressRequest) string {
	h := sha256.New()
	h.Write([]byte(transport))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.IsLive)))
	for _, f := range req.Fields() {
		if f.Name == "LicenseKey" {
			continue
		}
		h.Write([]byte{0})
		h.Write([]byte(f.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(key string) (*model.AddressInfoResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) Set(key string, resp *model.AddressInfoResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &entry{
		data:      resp,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stopCh) })
}

// Purge drops expired entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Purge()
		case <-c.stopCh:
			return
		}
	}
}
