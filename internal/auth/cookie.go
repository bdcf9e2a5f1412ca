// Package auth — signed session cookies.
//
// The session is a single cookie holding "<user_id>|<hmac>". The HMAC is a
// keyed integrity tag over the user id: the browser can read the value but
// cannot forge or alter it without the server-side secret. This is signing,
// not encryption — the user id is visible, it just can't be tampered with.
//
// The secret is process-wide configuration: set once at startup, never
// rotated at runtime. Changing it invalidates every outstanding session.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// SessionCookieName is the cookie carrying the signed user id.
const SessionCookieName = "user_id"

// CookieSigner signs and verifies cookie values with HMAC-SHA256.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner creates a signer from the configured secret key.
// An empty secret is refused — it would make every signature forgeable.
func NewCookieSigner(secret string) (*CookieSigner, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("auth: cookie secret must be at least 16 bytes")
	}
	return &CookieSigner{secret: []byte(secret)}, nil
}

// Sign returns "value|hex(hmac)" for the given value.
func (s *CookieSigner) Sign(value string) string {
	return value + "|" + s.mac(value)
}

// Verify checks a signed string and returns the enclosed value.
//
// The split is on the LAST '|' so a value containing '|' still verifies
// (the MAC itself is hex and never contains one). Returns ("", false) for a
// missing separator or a bad signature.
//
// hmac.Equal compares in constant time — a byte-by-byte == would leak how
// many leading MAC bytes an attacker got right.
func (s *CookieSigner) Verify(signed string) (string, bool) {
	i := strings.LastIndex(signed, "|")
	if i < 0 {
		return "", false
	}
	value, mac := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(mac), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}

func (s *CookieSigner) mac(value string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// SetSessionCookie logs the user in: the signed user id is stored in the
// session cookie, scoped to the whole site.
//
// No Expires/MaxAge is set — the session lasts until explicit logout, the
// browser session ends, or the signing secret changes.
//
// HttpOnly means JavaScript cannot read the cookie (XSS protection).
// SameSite=Lax means it's sent on top-level navigations but not cross-site
// POSTs, which blunts CSRF on the form routes.
func SetSessionCookie(w http.ResponseWriter, signer *CookieSigner, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signer.Sign(userID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie logs the user out by overwriting the cookie with an
// empty value and telling the browser to drop it immediately.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
