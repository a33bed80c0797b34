package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "evalview/internal/platform/errors"
	pnet "evalview/internal/platform/net"
)

// AuthPort is a tiny seam so transports can swap the auth scheme
type AuthPort interface {
	// Authorize inspects the request and returns an error when it must be rejected
	Authorize(r *http.Request) error
}

// Auth rejects requests the port refuses. A nil port disables auth entirely
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := p.Authorize(r); err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken is an AuthPort that requires Authorization: Bearer <token>.
// Viewers deployed behind a shared secret use this; an empty token means open access
type BearerToken struct {
	Token string
}

// Authorize implements AuthPort
func (b BearerToken) Authorize(r *http.Request) error {
	if b.Token == "" {
		return nil
	}
	h := r.Header.Get("Authorization")
	got, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return perr.Unauthorizedf("missing bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(b.Token)) != 1 {
		return perr.Unauthorizedf("invalid token")
	}
	return nil
}
