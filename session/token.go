package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("session: backend token already expired")

// TokenTTL is how long a session holding token may live: until the token's
// exp claim when it is a JWT that has one, def otherwise. The signature is
// not checked; the backend does that on every call.
func TokenTTL(token string, now time.Time, def time.Duration) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return def
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return def
	}
	ttl := exp.Time.Sub(now)
	if def > 0 && ttl > def {
		return def
	}
	return ttl
}
