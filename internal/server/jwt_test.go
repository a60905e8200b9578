package server

import (
	"testing"
	"time"
)

func TestTokenIssuer(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	t.Run("round-trips the user ID", func(t *testing.T) {
		t.Parallel()
		issuer, err := NewTokenIssuer("secret")
		if err != nil {
			t.Fatalf("NewTokenIssuer() error = %v", err)
		}

		token, err := issuer.Issue("u1", now)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		userID, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if userID != "u1" {
			t.Errorf("userID = %q, want u1", userID)
		}
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		t.Parallel()
		issuerA, _ := NewTokenIssuer("secret-a")
		issuerB, _ := NewTokenIssuer("secret-b")

		token, err := issuerA.Issue("u1", now)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if _, err := issuerB.Verify(token); err == nil {
			t.Error("Verify() expected error for foreign signature")
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()
		issuer, _ := NewTokenIssuer("secret")

		token, err := issuer.Issue("u1", now.Add(-48*time.Hour))
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if _, err := issuer.Verify(token); err == nil {
			t.Error("Verify() expected error for expired token")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		issuer, _ := NewTokenIssuer("secret")

		if _, err := issuer.Verify("not-a-token"); err == nil {
			t.Error("Verify() expected error")
		}
	})

	t.Run("requires a secret", func(t *testing.T) {
		t.Parallel()
		if _, err := NewTokenIssuer(""); err == nil {
			t.Error("NewTokenIssuer() expected error for empty secret")
		}
	})
}
