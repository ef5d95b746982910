package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers every verification failure: missing token, bad
// signature, wrong claims or expiry. Callers only see the single
// authentication-failed outcome.
var ErrInvalid = errors.New("authentication failed")

// Manager issues and verifies the bearer tokens used by both the HTTP
// routes and the WebSocket handshake.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "chatlink-service",
	}
}

// Issue signs a token carrying the user id.
func (m *Manager) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(m.ttl).Unix(),
		"iss":    m.issuer,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
func (m *Manager) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalid
	}

	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalid
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", ErrInvalid
	}
	return userID, nil
}
