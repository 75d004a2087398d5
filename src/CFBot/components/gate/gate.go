package gate

import (
	"sync"
	"time"
)

// Gate is the only mutable state shared across webhook tasks. Check-then-act
// operations are atomic so two concurrent deliveries of the same cast cannot
// both pass.
type Gate interface {
	// MarkSeen records the hash and reports whether this was the first time.
	MarkSeen(hash string) bool
	Seen(hash string) bool
	ClearSeen(hash string)

	CooldownActive(hash string) bool
	MarkCooldown(hash string)
	ClearCooldown(hash string)

	// RecordReply notes a cast the bot itself published, for burst-loop
	// detection on replies to it.
	RecordReply(hash string)
	RepliedRecently(hash string, within time.Duration) bool
}

const (
	// DefaultCooldown rejects rapid duplicate deliveries.
	DefaultCooldown = 30 * time.Second
	// entryMaxAge bounds cooldown/reply map growth; stale entries are evicted
	// opportunistically on each touch.
	entryMaxAge = time.Hour
)

// Memory is the process-local gate. State is lost on restart, which is
// acceptable: webhook redelivery across restarts is rare.
type Memory struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	cooldown map[string]time.Time
	replies  map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		seen:     make(map[string]struct{}),
		cooldown: make(map[string]time.Time),
		replies:  make(map[string]time.Time),
		window:   DefaultCooldown,
		now:      time.Now,
	}
}

func (g *Memory) MarkSeen(hash string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[hash]; ok {
		return false
	}
	g.seen[hash] = struct{}{}
	return true
}

func (g *Memory) Seen(hash string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[hash]
	return ok
}

func (g *Memory) ClearSeen(hash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, hash)
}

func (g *Memory) CooldownActive(hash string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evictLocked()
	last, ok := g.cooldown[hash]
	return ok && g.now().Sub(last) < g.window
}

func (g *Memory) MarkCooldown(hash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evictLocked()
	g.cooldown[hash] = g.now()
}

func (g *Memory) ClearCooldown(hash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cooldown, hash)
}

func (g *Memory) RecordReply(hash string) {
	if hash == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies[hash] = g.now()
}

func (g *Memory) RepliedRecently(hash string, within time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	at, ok := g.replies[hash]
	return ok && g.now().Sub(at) < within
}

func (g *Memory) evictLocked() {
	now := g.now()
	for hash, at := range g.cooldown {
		if now.Sub(at) > entryMaxAge {
			delete(g.cooldown, hash)
		}
	}
	for hash, at := range g.replies {
		if now.Sub(at) > entryMaxAge {
			delete(g.replies, hash)
		}
	}
}
