package turnauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMint(t *testing.T) {
	t.Parallel()

	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	now := time.Unix(1_700_000_000, 0)

	creds, err := Mint("top-secret", userID, now)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	wantExpiry := now.Add(CredentialTTL).Unix()
	wantUsername := fmt.Sprintf("%d:%s", wantExpiry, userID.String())
	if creds.Username != wantUsername {
		t.Errorf("Username = %q, want %q", creds.Username, wantUsername)
	}

	mac := hmac.New(sha1.New, []byte("top-secret"))
	mac.Write([]byte(wantUsername))
	wantPassword := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if creds.Password != wantPassword {
		t.Errorf("Password = %q, want %q", creds.Password, wantPassword)
	}
}

func TestMintMissingSecret(t *testing.T) {
	t.Parallel()

	_, err := Mint("", uuid.New(), time.Now())
	if err != ErrSecretNotConfigured {
		t.Errorf("Mint() with empty secret error = %v, want %v", err, ErrSecretNotConfigured)
	}
}
