package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips the test when
// none is reachable. Integration tests use testcontainers instead.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisCollection_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisCollection should panic with nil redis client")
		}
	}()
	NewRedisCollection[OfferRecord](nil, CollectionKey{Collection: "offers"})
}

func TestRedisCollection_ReplaceAndAll(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedisCollection[OfferRecord](client, CollectionKey{Collection: "offers"})
	ctx := context.Background()

	got, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All on empty collection: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}

	if err := c.Replace(ctx, []OfferRecord{
		{ID: "2", Title: "Oslo", Discount: 20},
		{ID: "1", Title: "Paris", Discount: 30},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err = c.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if want := []string{"2", "1"}; !reflect.DeepEqual(offerIDs(got), want) {
		t.Errorf("All() ids = %v, want %v", offerIDs(got), want)
	}
	if got[1].Discount != 30 {
		t.Errorf("Discount = %d, want 30", got[1].Discount)
	}

	if err := c.Replace(ctx, []OfferRecord{{ID: "7", Title: "Lima"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := c.Get(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(1) after replace error = %v, want ErrNotFound", err)
	}
}

func TestRedisCollection_ReplaceDuplicateIDs(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedisCollection[OfferRecord](client, CollectionKey{Collection: "offers"})
	ctx := context.Background()

	if err := c.Replace(ctx, []OfferRecord{
		{ID: "1", Title: "old"},
		{ID: "2", Title: "Oslo"},
		{ID: "1", Title: "new"},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(offerIDs(got), want) {
		t.Errorf("All() ids = %v, want %v", offerIDs(got), want)
	}
	if got[0].Title != "new" {
		t.Errorf("Title = %q, want last write to win", got[0].Title)
	}
}

func TestRedisCollection_UpsertAndGet(t *testing.T) {
	client := setupTestRedis(t)
	key := CollectionKey{Collection: "reservations", Scope: map[string]string{"account": "A-1"}}
	c := NewRedisCollection[ReservationRecord](client, key)
	ctx := context.Background()

	if err := c.Upsert(ctx,
		ReservationRecord{ID: "r1", FlightID: "F1", Status: "pending"},
		ReservationRecord{ID: "r2", FlightID: "F2", Status: "pending"},
	); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := c.Upsert(ctx, ReservationRecord{ID: "r1", FlightID: "F1", Status: "confirmed", Synced: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r1, err := c.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r1.Status != "confirmed" || !r1.Synced {
		t.Errorf("Get(r1) = %+v, want confirmed and synced", r1)
	}

	all, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	ids := []string{all[0].ID, all[1].ID}
	if want := []string{"r2", "r1"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v (upsert moves to end)", ids, want)
	}
}

func TestRedisCollection_InvalidEntity(t *testing.T) {
	client := setupTestRedis(t)
	key := CollectionKey{Collection: "offers"}
	c := NewRedisCollection[OfferRecord](client, key)
	ctx := context.Background()

	client.HSet(ctx, key.String(), "bad", "{not json")
	client.RPush(ctx, key.orderKey(), "bad")

	if _, err := c.Get(ctx, "bad"); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("Get error = %v, want ErrInvalidEntity", err)
	}
	if _, err := c.All(ctx); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("All error = %v, want ErrInvalidEntity", err)
	}
}

func TestRedisCollection_Clear(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedisCollection[PartnerRecord](client, CollectionKey{Collection: "partners"})
	ctx := context.Background()

	if err := c.Replace(ctx, []PartnerRecord{{ID: "p1", Name: "Hotel"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}
}
