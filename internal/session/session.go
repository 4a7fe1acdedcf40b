// Package session is the identity provider for the admin front end. The
// backend credential (an opaque bearer token) is persisted in an HMAC-signed
// cookie; on each request the middleware resolves it to a user profile
// through the TechFix API, caching resolutions for a short TTL. A credential
// that no longer resolves is cleared and the request proceeds anonymously.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

const sessionCookieName = "session"

type userCtxKey struct{}

// Provider owns the session cookie format and the token-to-profile
// resolution. One instance is shared by all handlers.
type Provider struct {
	client *techfix.Client
	secret []byte
	cache  *userCache
}

// NewProvider creates a provider signing cookies with secret and caching
// profile resolutions for cacheTTL.
func NewProvider(client *techfix.Client, secret string, cacheTTL time.Duration) *Provider {
	return &Provider{
		client: client,
		secret: []byte(secret),
		cache:  newUserCache(cacheTTL),
	}
}

func (p *Provider) sign(payload string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie carrying the bearer token.
func (p *Provider) CreateSession(w http.ResponseWriter, token string) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(token))
	value := encoded + "." + p.sign(encoded)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func (p *Provider) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and returns the bearer token.
func (p *Provider) ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return "", false
	}
	encoded, sig := parts[0], parts[1]
	if !hmac.Equal([]byte(sig), []byte(p.sign(encoded))) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Resolve turns a bearer token into the current user profile, consulting the
// cache first. The context passed to the API call carries the token.
func (p *Provider) Resolve(ctx context.Context, token string) (*techfix.User, error) {
	if u, ok := p.cache.get(token); ok {
		return u, nil
	}
	u, err := p.client.Me(techfix.WithToken(ctx, token))
	if err != nil {
		return nil, err
	}
	p.cache.put(token, u)
	return u, nil
}

// Invalidate drops a cached resolution, e.g. on logout.
func (p *Provider) Invalidate(token string) { p.cache.invalidate(token) }

// WithUser stores the resolved user in context.
func WithUser(ctx context.Context, u *techfix.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom extracts the resolved user; nil means anonymous.
func UserFrom(ctx context.Context) *techfix.User {
	u, _ := ctx.Value(userCtxKey{}).(*techfix.User)
	return u
}

// Middleware resolves the session cookie. Authenticated requests get the
// bearer token and user profile attached to the context; a stale credential
// is cleared so the request continues anonymously.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := p.ParseSession(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := p.Resolve(r.Context(), token)
		if err != nil {
			p.ClearSession(w)
			next.ServeHTTP(w, r)
			return
		}
		ctx := techfix.WithToken(r.Context(), token)
		ctx = WithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects to /login if not authenticated (HTML) or returns 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
