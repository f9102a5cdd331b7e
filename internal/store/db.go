package store

import (
	"sync"
	"time"
)

type entry struct {
	v         []byte
	expiresAt time.Time
}

// DB is the shared keyspace. It is the only state shared across connection
// tasks; all access goes through its lock. Expired entries are dropped
// lazily on read.
type DB struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

type Options struct {
	// Now overrides the time source, for deterministic expiry in tests.
	Now func() time.Time
}

func NewDB(opts Options) *DB {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &DB{
		m:   make(map[string]entry),
		now: now,
	}
}

// Get returns a copy of the value stored at key. The copy keeps callers
// from observing later writes through a shared slice.
func (db *DB) Get(key string) ([]byte, bool) {
	now := db.now()
	db.mu.RLock()
	ent, ok := db.m[key]
	db.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if ent.expired(now) {
		db.mu.Lock()
		delete(db.m, key)
		db.mu.Unlock()
		return nil, false
	}
	out := make([]byte, len(ent.v))
	copy(out, ent.v)
	return out, true
}

// Set stores value at key. A ttl of zero means no expiry.
func (db *DB) Set(key string, value []byte, ttl time.Duration) {
	buf := make([]byte, len(value))
	copy(buf, value)
	ent := entry{v: buf}
	if ttl > 0 {
		ent.expiresAt = db.now().Add(ttl)
	}
	db.mu.Lock()
	db.m[key] = ent
	db.mu.Unlock()
}

// Len reports the number of live entries.
func (db *DB) Len() int {
	now := db.now()
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for k, ent := range db.m {
		if ent.expired(now) {
			delete(db.m, k)
			continue
		}
		n++
	}
	return n
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
