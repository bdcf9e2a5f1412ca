package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
)

const testSecret = "test-secret-at-least-16-chars!!"

// stubUserRepo resolves every id to a user — enough for the middleware
// tests, which only care whether the cookie verified.
type stubUserRepo struct{}

func (stubUserRepo) CreateUser(ctx context.Context, user *model.User) error { return nil }

func (stubUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Name: "stub"}, nil
}

func (stubUserRepo) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	return nil, apperror.NotFound("user", name)
}

func newTestSigner(t *testing.T) *CookieSigner {
	t.Helper()
	signer, err := NewCookieSigner(testSecret)
	if err != nil {
		t.Fatalf("NewCookieSigner: %v", err)
	}
	return signer
}

func TestNewCookieSigner_RejectsShortSecret(t *testing.T) {
	if _, err := NewCookieSigner("short"); err == nil {
		t.Error("NewCookieSigner() should reject a short secret")
	}
}

func TestSignAndVerify(t *testing.T) {
	signer := newTestSigner(t)

	signed := signer.Sign("user-123")

	value, ok := signer.Verify(signed)
	if !ok {
		t.Fatal("Verify() = false for a freshly signed value")
	}
	if value != "user-123" {
		t.Errorf("Verify() value = %q, want %q", value, "user-123")
	}
}

func TestSign_Format(t *testing.T) {
	signer := newTestSigner(t)

	signed := signer.Sign("user-123")
	if !strings.HasPrefix(signed, "user-123|") {
		t.Errorf("Sign() = %q, want value|mac form", signed)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	signer := newTestSigner(t)

	signed := signer.Sign("user-123")

	// Flip one character of the MAC — every position must fail.
	for i := strings.LastIndex(signed, "|") + 1; i < len(signed); i++ {
		tampered := []byte(signed)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		if _, ok := signer.Verify(string(tampered)); ok {
			t.Fatalf("Verify() = true for tampered signature at position %d", i)
		}
	}
}

func TestVerify_TamperedValue(t *testing.T) {
	signer := newTestSigner(t)

	signed := signer.Sign("user-123")
	tampered := "user-999" + signed[strings.Index(signed, "|"):]

	if _, ok := signer.Verify(tampered); ok {
		t.Error("Verify() = true for a swapped value")
	}
}

func TestVerify_MissingSeparator(t *testing.T) {
	signer := newTestSigner(t)

	if _, ok := signer.Verify("no-separator-here"); ok {
		t.Error("Verify() = true for a value with no separator")
	}
	if _, ok := signer.Verify(""); ok {
		t.Error("Verify() = true for an empty value")
	}
}

func TestVerify_ValueContainingSeparator(t *testing.T) {
	signer := newTestSigner(t)

	// The split is on the LAST '|', so values containing one still work.
	signed := signer.Sign("odd|value")

	value, ok := signer.Verify(signed)
	if !ok {
		t.Fatal("Verify() = false for a value containing '|'")
	}
	if value != "odd|value" {
		t.Errorf("Verify() value = %q, want %q", value, "odd|value")
	}
}

func TestVerify_DifferentSecret(t *testing.T) {
	signer := newTestSigner(t)
	other, err := NewCookieSigner("another-secret-16-chars-long!!")
	if err != nil {
		t.Fatalf("NewCookieSigner: %v", err)
	}

	signed := signer.Sign("user-123")
	if _, ok := other.Verify(signed); ok {
		t.Error("Verify() = true under a different secret")
	}
}

func TestSetSessionCookie(t *testing.T) {
	signer := newTestSigner(t)
	rr := httptest.NewRecorder()

	SetSessionCookie(rr, signer, "user-123")

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Name != SessionCookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, SessionCookieName)
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if !c.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if c.MaxAge != 0 || !c.Expires.IsZero() {
		t.Error("session cookie should not carry an expiry")
	}

	value, ok := signer.Verify(c.Value)
	if !ok || value != "user-123" {
		t.Errorf("cookie value %q does not verify to user-123", c.Value)
	}
}

func TestClearSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()

	ClearSessionCookie(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Value != "" {
		t.Errorf("cleared cookie value = %q, want empty", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Error("cleared cookie should have a negative MaxAge")
	}
}

// sanity check that the middleware helpers are exercised too — a request
// carrying a valid cookie resolves, a tampered one stays anonymous.
func TestWithUser_ResolvesAndRejects(t *testing.T) {
	signer := newTestSigner(t)
	users := &stubUserRepo{}

	var sawUser bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = UserFromContext(r.Context())
	})
	h := WithUser(signer, users)(inner)

	// Valid cookie → user in context.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signer.Sign("u1")})
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !sawUser {
		t.Error("valid cookie did not resolve to a user")
	}

	// Tampered cookie → anonymous.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signer.Sign("u1") + "x"})
	h.ServeHTTP(httptest.NewRecorder(), r)
	if sawUser {
		t.Error("tampered cookie resolved to a user")
	}

	// No cookie → anonymous.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	if sawUser {
		t.Error("cookie-less request resolved to a user")
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler ran for an anonymous request")
	})
	h := RequireUser(inner)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}
