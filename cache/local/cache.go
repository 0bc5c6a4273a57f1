// Package local is an in-process stand-in for Redis. It keeps one keyspace
// where each key holds a string, a set or a sorted set, like Redis does, and
// is only coherent inside a single process.
package local

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("cache: key not found")

// Config holds Store settings.
type Config struct {
	// GCInterval is how often expired strings are purged. Defaults to 30s.
	GCInterval time.Duration
}

type kind uint8

const (
	kindString kind = iota
	kindSet
	kindZSet
)

type slot struct {
	kind    kind
	str     string
	members map[string]struct{}
	scores  map[string]float64
	expires time.Time // zero means no expiry
}

func (s *slot) live(now time.Time) bool {
	return s.expires.IsZero() || now.Before(s.expires)
}

// Store is the in-process cache.
type Store struct {
	mu    sync.Mutex
	keys  map[string]*slot
	stop  chan struct{}
	close sync.Once
}

// New creates a Store and starts its purge loop. Call Close to stop it.
func New(cfg Config) *Store {
	every := cfg.GCInterval
	if every <= 0 {
		every = 30 * time.Second
	}
	s := &Store{keys: make(map[string]*slot), stop: make(chan struct{})}
	go s.purgeLoop(every)
	return s
}

// Close stops the purge loop. Safe to call more than once.
func (s *Store) Close() error {
	s.close.Do(func() { close(s.stop) })
	return nil
}

func (s *Store) purgeLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			s.mu.Lock()
			for k, sl := range s.keys {
				if !sl.live(now) {
					delete(s.keys, k)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// lookup returns the live slot for key, dropping it when expired.
// Callers hold s.mu.
func (s *Store) lookup(key string, want kind) *slot {
	sl, ok := s.keys[key]
	if !ok {
		return nil
	}
	if !sl.live(time.Now()) {
		delete(s.keys, key)
		return nil
	}
	if sl.kind != want {
		return nil
	}
	return sl
}

func (s *Store) putString(key, value string, ttl time.Duration) {
	sl := &slot{kind: kindString, str: value}
	if ttl > 0 {
		sl.expires = time.Now().Add(ttl)
	}
	s.keys[key] = sl
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(key, kindString)
	if sl == nil {
		return "", ErrNotFound
	}
	return sl.str, nil
}

// Set stores value under key. A ttl <= 0 keeps it until deleted.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	s.putString(key, value, ttl)
	s.mu.Unlock()
	return nil
}

// SetNX stores value only if key holds nothing live.
func (s *Store) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.keys[key]; ok && sl.live(time.Now()) {
		return false, nil
	}
	s.putString(key, value, ttl)
	return true, nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.keys[key]
	return ok && sl.live(time.Now()), nil
}

// Del removes keys whatever they hold.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.keys, k)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(key, kindSet)
	if sl == nil {
		sl = &slot{kind: kindSet, members: make(map[string]struct{}, len(members))}
		s.keys[key] = sl
	}
	for _, m := range members {
		sl.members[m] = struct{}{}
	}
	return nil
}

func (s *Store) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(key, kindSet)
	if sl == nil {
		return nil
	}
	for _, m := range members {
		delete(sl.members, m)
	}
	if len(sl.members) == 0 {
		delete(s.keys, key)
	}
	return nil
}

func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	if sl := s.lookup(key, kindSet); sl != nil {
		for m := range sl.members {
			out = append(out, m)
		}
	}
	return out, nil
}

// ZAdd sets member's score, inserting it when absent.
func (s *Store) ZAdd(_ context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(key, kindZSet)
	if sl == nil {
		sl = &slot{kind: kindZSet, scores: make(map[string]float64)}
		s.keys[key] = sl
	}
	sl.scores[member] = score
	return nil
}

func (s *Store) ZRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.lookup(key, kindZSet)
	if sl == nil {
		return nil
	}
	for _, m := range members {
		delete(sl.scores, m)
	}
	if len(sl.scores) == 0 {
		delete(s.keys, key)
	}
	return nil
}

// ZRevRange returns members by score descending, ties broken by member
// descending, between ranks start and stop inclusive. A negative stop means
// the last rank, matching ZREVRANGE key 0 -1.
func (s *Store) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	sl := s.lookup(key, kindZSet)
	if sl == nil {
		s.mu.Unlock()
		return []string{}, nil
	}
	ranked := make([]string, 0, len(sl.scores))
	for m := range sl.scores {
		ranked = append(ranked, m)
	}
	scores := sl.scores
	sort.Slice(ranked, func(i, j int) bool {
		a, b := scores[ranked[i]], scores[ranked[j]]
		if a != b {
			return a > b
		}
		return ranked[i] > ranked[j]
	})
	s.mu.Unlock()

	n := int64(len(ranked))
	start = max(start, 0)
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}
	return ranked[start : stop+1], nil
}

func (s *Store) ZCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl := s.lookup(key, kindZSet); sl != nil {
		return int64(len(sl.scores)), nil
	}
	return 0, nil
}
