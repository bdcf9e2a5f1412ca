package auth

import (
	"context"
	"net/http"

	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. If we used a plain string like
// "user", ANY package that knows the string could read or shadow our value.
// A package-private type prevents collisions: only this package can create a
// key of type contextKey, so only this package can store the session user.
type contextKey string

const userKey contextKey = "user"

// WithUser resolves the session user on every request.
//
// It reads the session cookie, verifies the signature, and loads the user
// record for the enclosed id. If the cookie is absent, tampered, or the id
// doesn't resolve to a user, the request simply proceeds anonymously — this
// middleware never blocks.
//
// Downstream handlers read the result with UserFromContext.
func WithUser(signer *CookieSigner, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolveUser(r, signer, users); user != nil {
				ctx := context.WithValue(r.Context(), userKey, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser enforces authentication on protected routes.
//
// Anonymous requests are redirected to the login page rather than answered
// with 401 — this is a browser app, and the useful response to "you're not
// logged in" is the login form. Must be mounted after WithUser.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) if the request is anonymous.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// resolveUser is the cookie → user lookup shared by WithUser.
// Any failure along the way means "anonymous", never an error response.
func resolveUser(r *http.Request, signer *CookieSigner, users repository.UserRepository) *model.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	userID, ok := signer.Verify(cookie.Value)
	if !ok {
		return nil
	}

	user, err := users.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}
