package repository

import (
	"errors"
	"testing"

	"memoria-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// keylessSupabaseClient simulates a deployment without a service key:
// AdminDB is nil, and any fallback to the token client would panic.
type keylessSupabaseClient struct {
	stubSupabaseClient
}

func (s *keylessSupabaseClient) AdminDB() *supabase.Client { return nil }

func TestSetStatus_WithoutServiceKey(t *testing.T) {
	repo := NewCondolenceRepository(&keylessSupabaseClient{}, nopLogger{})

	err := repo.SetStatus("0b37c5a2-47f7-4c36-ae77-1a2b3c4d5e6f", domain.CondolenceApproved, "user-token")
	if !errors.Is(err, domain.ErrServiceKeyMissing) {
		t.Fatalf("expected ErrServiceKeyMissing, got %v", err)
	}
}

func TestSetStatus_MalformedIDIsNotFound(t *testing.T) {
	repo := NewCondolenceRepository(&stubSupabaseClient{}, nopLogger{})

	if err := repo.SetStatus("not-a-uuid", domain.CondolenceRejected, "user-token"); err != domain.ErrCondolenceNotFound {
		t.Fatalf("expected ErrCondolenceNotFound, got %v", err)
	}
}
