package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrPanelSecretNotConfigured is returned when ADMIN_PANEL_JWT_SECRET is empty.
var ErrPanelSecretNotConfigured = errors.New("admin panel JWT secret is not configured")

// PanelSessionCookie is the name of the cookie carrying the admin panel session token.
const PanelSessionCookie = "bungaacord_admin_session"

// PanelSessionTTL is how long an admin panel session cookie remains valid before the panel re-asserts identity via
// the `user=` query parameter.
const PanelSessionTTL = 12 * time.Hour

type panelClaims struct {
	jwt.RegisteredClaims
}

// MintPanelSession signs a short-lived JWT asserting adminUUID, so the admin HTML panel can carry identity in a
// cookie instead of repeating the UUID in every link and form action — original_source/handlers/admin_handlers.py has
// no such token; this is a rendition-only hardening of the panel transport, not a change to the identity model.
func MintPanelSession(secret string, adminUUID uuid.UUID, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrPanelSecretNotConfigured
	}
	claims := panelClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminUUID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(PanelSessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign panel session: %w", err)
	}
	return signed, nil
}

// VerifyPanelSession validates a panel session token and returns the admin UUID it asserts.
func VerifyPanelSession(secret, tokenStr string) (uuid.UUID, error) {
	if secret == "" {
		return uuid.Nil, ErrPanelSecretNotConfigured
	}

	claims := &panelClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse panel session: %w", err)
	}

	adminUUID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse panel session subject: %w", err)
	}
	return adminUUID, nil
}
