package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.Issue("u1", "Ada Lovelace", "ada@example.com", "https://example.com/p.png")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.ID != "u1" {
		t.Errorf("ID = %q, want u1", id.ID)
	}
	if id.Name != "Ada Lovelace" {
		t.Errorf("Name = %q", id.Name)
	}
	if id.Initials != "AL" {
		t.Errorf("Initials = %q, want AL", id.Initials)
	}
	if id.Email != "ada@example.com" || id.Picture != "https://example.com/p.png" {
		t.Errorf("Email/Picture = %q/%q", id.Email, id.Picture)
	}
}

func TestVerifyRejects(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	other := NewService("other-secret", time.Hour)

	goodToken, err := other.Issue("u1", "Someone", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired := NewService("test-secret", -time.Hour)
	expiredToken, err := expired.Issue("u1", "Someone", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", goodToken},
		{"expired", expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); err != ErrInvalidToken {
				t.Errorf("Verify(%s) err = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestVerifyNameFallbacks(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.Issue("u1", "", "ada@example.com", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Name != "ada@example.com" {
		t.Errorf("Name fallback = %q, want email", id.Name)
	}

	token, err = svc.Issue("u1", "", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err = svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Name != "Unknown" {
		t.Errorf("Name fallback = %q, want Unknown", id.Name)
	}
}

func TestInitialsOf(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"ada", "A"},
		{"", ""},
		{"grace brewster hopper", "GB"},
		{"ada@example.com", "A"},
	}

	for _, tt := range tests {
		if got := InitialsOf(tt.name); got != tt.want {
			t.Errorf("InitialsOf(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
