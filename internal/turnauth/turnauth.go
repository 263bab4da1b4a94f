// Package turnauth mints short-lived coturn REST API credentials for WebRTC TURN relay access.
package turnauth

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // required by the coturn REST API credential scheme, not used for anything security-critical
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSecretNotConfigured is returned when TURN_SECRET_KEY is empty, mirroring the original server's explicit check
// in get_turn_creds before it would otherwise produce a credential signed with an empty key.
var ErrSecretNotConfigured = errors.New("TURN secret key is not configured")

// CredentialTTL is how long a minted credential remains valid, matching the original's 24 hour window.
const CredentialTTL = 24 * time.Hour

// Credentials holds a coturn REST API long-term credential pair.
type Credentials struct {
	Username string
	Password string
}

// Mint produces TURN credentials for userID, valid for CredentialTTL from now. The username is
// "<expiry-unix-timestamp>:<user-uuid>" and the password is HMAC-SHA1(secret, username) base64-encoded, exactly as
// original_source/handlers/api_handlers.py:get_turn_creds computes it.
func Mint(secret string, userID uuid.UUID, now time.Time) (Credentials, error) {
	if secret == "" {
		return Credentials{}, ErrSecretNotConfigured
	}

	expiry := now.Add(CredentialTTL).Unix()
	username := fmt.Sprintf("%d:%s", expiry, userID.String())

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(username))
	password := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return Credentials{Username: username, Password: password}, nil
}
