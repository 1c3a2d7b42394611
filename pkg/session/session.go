// Package session keeps server-side session data in a cache.Store keyed by
// a random cookie value.
//
//	r.Use(session.Middleware(store, session.DefaultOptions()))
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", user.ID)
//	_ = sess.Save(r.Context(), w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/dailyfresh/pkg/cache"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/response"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "dailyfresh_session",
		TTL:        14 * 24 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

type Session struct {
	id      string
	data    map[string]interface{}
	store   cache.Store
	opts    Options
	changed bool
	removed []string
}

func newID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func storeKey(id string) string { return "dailyfresh:session:" + id }

func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

// GetUint handles values that came back from JSON as float64.
func (s *Session) GetUint(key string) (uint, bool) {
	switch n := s.data[key].(type) {
	case float64:
		if n > 0 {
			return uint(n), true
		}
	case uint:
		return n, true
	case int:
		if n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// Regenerate moves the data to a fresh id; call it on login.
func (s *Session) Regenerate() {
	s.removed = append(s.removed, s.id)
	s.id = newID()
	s.changed = true
}

// Invalidate drops all data and the id; call it on logout.
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.Regenerate()
}

func (s *Session) ID() string { return s.id }

// Save persists the session and writes the cookie when anything changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}
	if len(s.removed) > 0 {
		keys := make([]string, len(s.removed))
		for i, id := range s.removed {
			keys[i] = storeKey(id)
		}
		if err := s.store.Del(ctx, keys...); err != nil {
			return fmt.Errorf("session: delete old: %w", err)
		}
		s.removed = nil
	}

	maxAge := int(s.opts.TTL.Seconds())
	if len(s.data) == 0 {
		maxAge = -1
	} else if err := s.store.Set(ctx, storeKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
	s.changed = false
	return nil
}

// Middleware loads the session named by the cookie, or starts an empty one.
// A store failure answers 500.
func Middleware(store cache.Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{store: store, opts: opts, data: map[string]interface{}{}}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				found, err := store.Get(r.Context(), storeKey(sess.id), &sess.data)
				if err != nil {
					logger.WithCtx(r.Context()).Error("session load failed", "error", err)
					response.ServiceUnavailable(w)
					return
				}
				if !found {
					sess.id = newID()
					sess.data = map[string]interface{}{}
				}
			} else {
				sess.id = newID()
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// FromCtx returns the request's session, or a detached empty one backed by
// a memory store when the middleware did not run.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}, store: cache.NewMemory(), opts: DefaultOptions()}
}
