package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/metrics"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/workflow"
)

const (
	sessionCookieName = "FIXLAB_WEB_SESSION"
	sessionTTL        = 24 * time.Hour
)

// ErrSessionTooLarge is returned when the session would not fit in its cookie.
var ErrSessionTooLarge = errors.New("session: too large for cookie")

// SessionData is the signed, encrypted per-browser state.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Flow is the registration waiting for the user's confirmation.
	Flow *workflow.Flow `json:"flow,omitempty"`

	// internal dirty flag; not serialized
	dirty bool
	// encode checks that the session still fits its cookie; nil outside the middleware
	encode func(*SessionData) error
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
}

// Sessions loads and persists SessionData in a securecookie.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessions builds the session middleware factory.
func NewSessions(opts SessionOptions) (*Sessions, error) {
	if len(opts.HashKey) == 0 {
		return nil, errors.New("session: hash key is required")
	}
	codec := securecookie.New(opts.HashKey, opts.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionTTL.Seconds()))
	return &Sessions{codec: codec, secure: opts.Secure}, nil
}

// Middleware loads or initializes a session and stores it in request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		sd.encode = func(d *SessionData) error {
			_, err := s.codec.Encode(sessionCookieName, d)
			return err
		}
		ctx := withSession(r.Context(), sd)
		rw := NewResponseRecorder(w)
		// ensure cookie is set just before first write if needed
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(r.Context(), w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			s.write(r.Context(), w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// HoldFlow stores f as the pending flow. When the session would outgrow its
// cookie the pending flow is cleared and ErrSessionTooLarge is returned.
func (s *SessionData) HoldFlow(f *workflow.Flow) error {
	s.Flow = f
	s.MarkDirty()
	if s.encode == nil {
		return nil
	}
	if err := s.encode(s); err != nil {
		s.Flow = nil
		return fmt.Errorf("%w: %w", ErrSessionTooLarge, err)
	}
	return nil
}

// ClearFlow drops the pending flow.
func (s *SessionData) ClearFlow() {
	s.Flow = nil
	s.MarkDirty()
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := s.codec.Decode(sessionCookieName, c.Value, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *Sessions) write(ctx context.Context, w http.ResponseWriter, sd *SessionData) {
	val, err := s.codec.Encode(sessionCookieName, sd)
	if err != nil {
		metrics.IncStateWriteFailure("session")
		observability.FromContext(ctx).Error("session cookie not written", zap.String("sessionID", sd.ID), zap.Error(err))
		return
	}
	// httpOnly to prevent JS access
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

// Secure reports whether cookies carry the Secure flag.
func (s *Sessions) Secure() bool { return s.secure }

// helpers
func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
