package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/response"
	"github.com/shashiranjanraj/dailyfresh/pkg/session"
)

// Session keys written on login.
const (
	SessionUserID   = "user_id"
	SessionUsername = "username"
)

// LoginPath is where RequireAuth sends anonymous callers.
const LoginPath = "/user/login"

// Authenticate resolves the caller from the session, or failing that from
// an "Authorization: Bearer" API token, and stores the principal in the
// request context. Anonymous requests pass through untouched; an invalid
// bearer token is ignored rather than rejected.
//
// session.Middleware must run first.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := fromSession(r)
		if p == nil {
			p = fromBearer(r)
		}
		if p != nil {
			ctx := auth.WithPrincipal(r.Context(), p)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.UserID))
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func fromSession(r *http.Request) *auth.Principal {
	sess := session.FromCtx(r)
	id, ok := sess.GetUint(SessionUserID)
	if !ok || id == 0 {
		return nil
	}
	name, _ := sess.GetString(SessionUsername)
	return &auth.Principal{UserID: id, Username: name}
}

func fromBearer(r *http.Request) *auth.Principal {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return nil
	}
	claims, err := auth.ParseToken(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &auth.Principal{UserID: claims.UserID, Username: claims.Username}
}

// RequireAuth answers 401 with the login URL for anonymous callers.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			response.ErrorWithData(w, http.StatusUnauthorized, "Please log in first",
				map[string]string{"login_url": LoginURL(r)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL is the login page with the current path as ?next=.
func LoginURL(r *http.Request) string {
	return LoginPath + "?next=" + (&url.URL{Path: r.URL.Path}).EscapedPath()
}
