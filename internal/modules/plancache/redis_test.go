// README: Redis store integration tests (gated on a live Redis).
package plancache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfare/internal/plangen"
)

// setupRedisStore creates a real Redis-backed store for integration
// tests. It skips the test when WAYFARE_TEST_REDIS is not set.
func setupRedisStore(t *testing.T, ttl time.Duration, capacity int) *RedisStore {
	t.Helper()

	addr := os.Getenv("WAYFARE_TEST_REDIS")
	if addr == "" {
		t.Skip("WAYFARE_TEST_REDIS not set; skipping Redis-backed tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, ttl, capacity, nil)
	if err := store.Clear(context.Background(), "it_user"); err != nil {
		t.Fatalf("clear scope: %v", err)
	}
	return store
}

func TestRedisStore_SaveAndLookup(t *testing.T) {
	store := setupRedisStore(t, time.Minute, 5)
	ctx := context.Background()
	prefs := plangen.Preferences{Destination: "Paris", Duration: 3, Travelers: 2}

	if _, ok := store.Lookup(ctx, "it_user", prefs); ok {
		t.Fatal("lookup hit on cleared scope")
	}
	store.Save(ctx, "it_user", prefs, planFor("Paris"))
	res, ok := store.Lookup(ctx, "it_user", prefs)
	if !ok {
		t.Fatal("lookup missed after save")
	}
	if res.Plan["destination"] != "Paris" {
		t.Fatalf("result = %v", res.Plan)
	}
}

func TestRedisStore_CapacityEviction(t *testing.T) {
	store := setupRedisStore(t, time.Minute, 2)
	ctx := context.Background()

	prefsAt := func(i int) plangen.Preferences {
		return plangen.Preferences{Destination: fmt.Sprintf("city-%d", i), Duration: 1, Travelers: 1}
	}
	for i := 0; i < 3; i++ {
		store.Save(ctx, "it_user", prefsAt(i), planFor(fmt.Sprintf("city-%d", i)))
		// Index scores have second precision; space the writes out.
		time.Sleep(1100 * time.Millisecond)
	}

	if _, ok := store.Lookup(ctx, "it_user", prefsAt(0)); ok {
		t.Fatal("oldest entry survived capacity eviction")
	}
	for i := 1; i < 3; i++ {
		if _, ok := store.Lookup(ctx, "it_user", prefsAt(i)); !ok {
			t.Fatalf("entry %d was evicted, want only the oldest gone", i)
		}
	}
}

func TestRedisStore_TTLAndEvictExpired(t *testing.T) {
	store := setupRedisStore(t, time.Second, 5)
	ctx := context.Background()
	prefs := plangen.Preferences{Destination: "Oslo", Duration: 2, Travelers: 1}

	store.Save(ctx, "it_user", prefs, planFor("Oslo"))
	time.Sleep(1500 * time.Millisecond)

	if _, ok := store.Lookup(ctx, "it_user", prefs); ok {
		t.Fatal("entry survived past its TTL")
	}
	dropped, err := store.EvictExpired(ctx, "it_user")
	if err != nil {
		t.Fatalf("evict expired: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	store := setupRedisStore(t, time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		prefs := plangen.Preferences{Destination: fmt.Sprintf("c%d", i), Duration: 1, Travelers: 1}
		store.Save(ctx, "it_user", prefs, planFor(prefs.Destination))
	}
	if err := store.Clear(ctx, "it_user"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	prefs := plangen.Preferences{Destination: "c0", Duration: 1, Travelers: 1}
	if _, ok := store.Lookup(ctx, "it_user", prefs); ok {
		t.Fatal("entry survived clear")
	}
}
