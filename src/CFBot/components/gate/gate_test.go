package gate

import (
	"sync"
	"testing"
	"time"
)

func newTestGate(start time.Time) (*Memory, *time.Time) {
	g := NewMemory()
	current := start
	g.now = func() time.Time { return current }
	return g, &current
}

func TestMarkSeenIsFirstTimeOnly(t *testing.T) {
	g := NewMemory()
	if !g.MarkSeen("0xA") {
		t.Fatal("first MarkSeen should report first time")
	}
	if g.MarkSeen("0xA") {
		t.Fatal("second MarkSeen should report already seen")
	}
	if !g.Seen("0xA") {
		t.Fatal("Seen should be true after MarkSeen")
	}
	g.ClearSeen("0xA")
	if g.Seen("0xA") {
		t.Fatal("Seen should be false after ClearSeen")
	}
}

func TestMarkSeenConcurrent(t *testing.T) {
	g := NewMemory()
	const n = 50
	var firsts int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.MarkSeen("0xB") {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firsts != 1 {
		t.Fatalf("expected exactly one first-time MarkSeen, got %d", firsts)
	}
}

func TestCooldownWindow(t *testing.T) {
	g, now := newTestGate(time.Unix(1000, 0))

	if g.CooldownActive("0xC") {
		t.Fatal("cooldown should not be active before MarkCooldown")
	}
	g.MarkCooldown("0xC")
	if !g.CooldownActive("0xC") {
		t.Fatal("cooldown should be active immediately after MarkCooldown")
	}

	*now = now.Add(29 * time.Second)
	if !g.CooldownActive("0xC") {
		t.Fatal("cooldown should still be active inside the window")
	}

	*now = now.Add(2 * time.Second)
	if g.CooldownActive("0xC") {
		t.Fatal("cooldown should expire after the window")
	}
}

func TestClearCooldownAllowsRetry(t *testing.T) {
	g, _ := newTestGate(time.Unix(1000, 0))
	g.MarkCooldown("0xD")
	g.ClearCooldown("0xD")
	if g.CooldownActive("0xD") {
		t.Fatal("cooldown should be inactive after ClearCooldown")
	}
}

func TestCooldownEviction(t *testing.T) {
	g, now := newTestGate(time.Unix(1000, 0))
	g.MarkCooldown("0xE")
	*now = now.Add(61 * time.Minute)
	g.MarkCooldown("0xF") // touch triggers eviction
	g.mu.Lock()
	_, stale := g.cooldown["0xE"]
	g.mu.Unlock()
	if stale {
		t.Fatal("entries older than an hour should be evicted")
	}
}

func TestRepliedRecently(t *testing.T) {
	g, now := newTestGate(time.Unix(1000, 0))
	g.RecordReply("0xR")
	if !g.RepliedRecently("0xR", 10*time.Second) {
		t.Fatal("reply should register as recent")
	}
	*now = now.Add(11 * time.Second)
	if g.RepliedRecently("0xR", 10*time.Second) {
		t.Fatal("reply should age out of the burst window")
	}
	if g.RepliedRecently("0xZ", 10*time.Second) {
		t.Fatal("unknown hash should not be recent")
	}
}
