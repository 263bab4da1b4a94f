package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMintAndVerifyPanelSessionRoundTrip(t *testing.T) {
	adminUUID := uuid.New()
	token, err := MintPanelSession("super-secret", adminUUID, time.Now())
	if err != nil {
		t.Fatalf("MintPanelSession() error = %v", err)
	}

	got, err := VerifyPanelSession("super-secret", token)
	if err != nil {
		t.Fatalf("VerifyPanelSession() error = %v", err)
	}
	if got != adminUUID {
		t.Errorf("got %v, want %v", got, adminUUID)
	}
}

func TestMintPanelSessionWithoutSecretFails(t *testing.T) {
	_, err := MintPanelSession("", uuid.New(), time.Now())
	if err != ErrPanelSecretNotConfigured {
		t.Errorf("err = %v, want ErrPanelSecretNotConfigured", err)
	}
}

func TestVerifyPanelSessionRejectsWrongSecret(t *testing.T) {
	token, err := MintPanelSession("secret-a", uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("MintPanelSession() error = %v", err)
	}

	if _, err := VerifyPanelSession("secret-b", token); err == nil {
		t.Error("VerifyPanelSession() with the wrong secret should fail")
	}
}

func TestVerifyPanelSessionRejectsExpiredToken(t *testing.T) {
	adminUUID := uuid.New()
	issuedInThePast := time.Now().Add(-2 * PanelSessionTTL)
	token, err := MintPanelSession("super-secret", adminUUID, issuedInThePast)
	if err != nil {
		t.Fatalf("MintPanelSession() error = %v", err)
	}

	if _, err := VerifyPanelSession("super-secret", token); err == nil {
		t.Error("VerifyPanelSession() on an expired token should fail")
	}
}
