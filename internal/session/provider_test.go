package session

import (
	"context"
	"testing"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default provider", provider: "", wantErr: false},
		{name: "memory provider", provider: "memory", wantErr: false},
		{name: "unsupported provider", provider: "unsupported", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(context.Background(), Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if store == nil {
				t.Fatalf("expected store, got nil")
			}
			if err := store.Close(); err != nil {
				t.Fatalf("expected close without error, got %v", err)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	data := &Data{AdminID: 7, Name: "Sumon", Role: 0}
	store.Set(ctx, "abc", data, ttl)

	got, ok := store.Get(ctx, "abc")
	if !ok {
		t.Fatalf("expected session to exist")
	}
	if got.AdminID != 7 || got.Role != 0 || got.Name != "Sumon" {
		t.Fatalf("unexpected session data: %+v", got)
	}

	// Returned data must be a copy, not the stored pointer.
	got.Role = 5
	again, _ := store.Get(ctx, "abc")
	if again.Role != 0 {
		t.Fatalf("session data mutated through returned copy")
	}

	store.Delete(ctx, "abc")
	if _, ok := store.Get(ctx, "abc"); ok {
		t.Fatalf("expected session to be deleted")
	}
}
