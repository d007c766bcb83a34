package service

import (
	"errors"
	"testing"
	"time"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

func TestTokenIssueAndValidate(t *testing.T) {
	svc := NewTokenService(&infrastructure.AuthConfig{SecretKey: "s3cret", TokenExpiry: time.Hour, Issuer: "leetcurve"})
	svc.now = func() time.Time { return t0 }

	issued, err := svc.Issue("cli")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !issued.ExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", issued.ExpiresAt)
	}

	client, err := svc.Validate(issued.AccessToken)
	if err != nil || client != "cli" {
		t.Errorf("Validate = %q, %v; want cli, nil", client, err)
	}

	svc.now = func() time.Time { return t0.Add(2 * time.Hour) }
	if _, err := svc.Validate(issued.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	a := NewTokenService(&infrastructure.AuthConfig{SecretKey: "a", TokenExpiry: time.Hour, Issuer: "leetcurve"})
	b := NewTokenService(&infrastructure.AuthConfig{SecretKey: "b", TokenExpiry: time.Hour, Issuer: "leetcurve"})

	issued, err := a.Issue("")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Validate(issued.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
	if _, err := a.Validate("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenDisabledWithoutSecret(t *testing.T) {
	svc := NewTokenService(&infrastructure.AuthConfig{})
	if svc.Enabled() {
		t.Error("Enabled() = true without a secret")
	}
	if _, err := svc.Issue("cli"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Issue error = %v, want ErrInvalidInput", err)
	}
}
