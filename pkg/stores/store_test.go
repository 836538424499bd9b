package stores

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestAddGetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, err := db.Store("users")
	if err != nil {
		t.Fatalf("failed to get store: %v", err)
	}

	rec := Record{
		"id":    "u1",
		"email": "u1@example.com",
		"team":  "storage",
		"bio":   "undeclared fields round-trip too",
	}
	key, err := users.Add(ctx, rec)
	if err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if key != "u1" {
		t.Errorf("expected key u1, got %q", key)
	}

	got, err := users.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round-trip mismatch:\n added: %v\n got:   %v", rec, got)
	}
}

func TestAddUpserts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	if _, err := users.Add(ctx, Record{"id": "u1", "email": "old@example.com"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if _, err := users.Add(ctx, Record{"id": "u1", "email": "new@example.com"}); err != nil {
		t.Fatalf("failed to re-add record: %v", err)
	}

	got, err := users.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if got["email"] != "new@example.com" {
		t.Errorf("expected upserted email, got %v", got["email"])
	}

	keys, err := users.GetAllKeys(ctx)
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("expected 1 key after upsert, got %d", len(keys))
	}
}

func TestAddGeneratesMissingKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	key, err := users.Add(ctx, Record{"email": "anon@example.com"})
	if err != nil {
		t.Fatalf("failed to add keyless record: %v", err)
	}
	if key == "" {
		t.Fatal("expected generated key")
	}

	got, err := users.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get record by generated key: %v", err)
	}
	if got["id"] != key {
		t.Errorf("expected generated key stored in record, got %v", got["id"])
	}

	// Empty record still gets a key.
	key2, err := users.Add(ctx, nil)
	if err != nil {
		t.Fatalf("failed to add empty record: %v", err)
	}
	if key2 == "" || key2 == key {
		t.Errorf("expected distinct generated key, got %q", key2)
	}
}

func TestNumericKeysCanonicalize(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	key, err := users.Add(ctx, Record{"id": 42, "email": "n@example.com"})
	if err != nil {
		t.Fatalf("failed to add record with numeric key: %v", err)
	}
	if key != "42" {
		t.Errorf("expected canonical key 42, got %q", key)
	}

	// float64(42) is how JSON delivers the same key.
	if _, err := users.Get(ctx, float64(42)); err != nil {
		t.Errorf("expected float64 key to match: %v", err)
	}
	if _, err := users.Get(ctx, "42"); err != nil {
		t.Errorf("expected string key to match: %v", err)
	}

	if _, err := users.Get(ctx, []string{"not", "a", "key"}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got: %v", err)
	}
}

func TestGetAbsentKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	_, err := users.Get(ctx, "nobody")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got: %v", err)
	}
}

func TestRemoveThenGetAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	if _, err := users.Add(ctx, Record{"id": "u1", "email": "u1@example.com"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if err := users.Remove(ctx, "u1"); err != nil {
		t.Fatalf("failed to remove record: %v", err)
	}
	if _, err := users.Get(ctx, "u1"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after remove, got: %v", err)
	}

	// Removing an absent key is a no-op.
	if err := users.Remove(ctx, "u1"); err != nil {
		t.Errorf("expected remove of absent key to succeed, got: %v", err)
	}
}

func TestGetAllOrdered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	for _, id := range []string{"c", "a", "b"} {
		if _, err := users.Add(ctx, Record{"id": id, "email": id + "@example.com"}); err != nil {
			t.Fatalf("failed to add record %q: %v", id, err)
		}
	}

	records, err := users.GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if records[i]["id"] != want {
			t.Errorf("expected record %d keyed %q, got %v", i, want, records[i]["id"])
		}
	}

	keys, err := users.GetAllKeys(ctx)
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Errorf("expected ordered keys, got %v", keys)
	}
}

func TestClearThenGetAllEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	for _, id := range []string{"a", "b"} {
		if _, err := users.Add(ctx, Record{"id": id}); err != nil {
			t.Fatalf("failed to add record: %v", err)
		}
	}
	if err := users.Clear(ctx); err != nil {
		t.Fatalf("failed to clear store: %v", err)
	}

	records, err := users.GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty store after clear, got %d records", len(records))
	}

	keys, err := users.GetAllKeys(ctx)
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys after clear, got %v", keys)
	}
}

func TestCountUniqueIndex(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	if _, err := users.Add(ctx, Record{"id": "u1", "email": "a@example.com"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if _, err := users.Add(ctx, Record{"id": "u2", "email": "b@example.com"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	// No email: not present in the index.
	if _, err := users.Add(ctx, Record{"id": "u3"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	n, err := users.Count(ctx, "email")
	if err != nil {
		t.Fatalf("failed to count index: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}

	if _, err := users.Count(ctx, "nickname"); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got: %v", err)
	}
}

func TestUniqueIndexViolationIsIsolated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	if _, err := users.Add(ctx, Record{"id": "u1", "email": "same@example.com"}); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	// Same unique email under a different key must fail this call only.
	_, err := users.Add(ctx, Record{"id": "u2", "email": "same@example.com"})
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got: %v", err)
	}

	// The failed call left the store and its sibling usable.
	if _, err := users.Get(ctx, "u1"); err != nil {
		t.Errorf("existing record unaffected by failed add: %v", err)
	}
	if _, err := users.Add(ctx, Record{"id": "u2", "email": "other@example.com"}); err != nil {
		t.Errorf("subsequent add failed: %v", err)
	}

	sessions, _ := db.Store("sessions")
	if _, err := sessions.Add(ctx, Record{"token": "t1", "user_id": "u1"}); err != nil {
		t.Errorf("sibling store affected by failed add: %v", err)
	}
}

func TestStoresAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, _ := db.Store("users")
	sessions, _ := db.Store("sessions")

	if _, err := users.Add(ctx, Record{"id": "u1"}); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	if _, err := sessions.Add(ctx, Record{"token": "t1", "user_id": "u1"}); err != nil {
		t.Fatalf("failed to add session: %v", err)
	}

	if err := users.Clear(ctx); err != nil {
		t.Fatalf("failed to clear users: %v", err)
	}

	got, err := sessions.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("sessions affected by users clear: %v", err)
	}
	if got["user_id"] != "u1" {
		t.Errorf("unexpected session record: %v", got)
	}
}
