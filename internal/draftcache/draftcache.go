package draftcache

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

// CookieName is the browser-side key of the cached draft.
const CookieName = "registrationData"

const defaultTTL = time.Hour

// ErrInvalidConfig is returned when a store is built without signing keys.
var ErrInvalidConfig = errors.New("draftcache: invalid config")

// Store keeps one registration draft per browser across the payment-gateway
// round trip. Writes are last-writer-wins and unlocked.
type Store interface {
	Save(w http.ResponseWriter, r *http.Request, d form.RegistrationDraft) error
	Load(r *http.Request) (form.RegistrationDraft, bool, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Config configures the cookie codec shared by both stores.
type Config struct {
	HashKey  []byte
	BlockKey []byte
	TTL      time.Duration
	Secure   bool
}

type cookieCodec struct {
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

func newCodec(cfg Config) (cookieCodec, error) {
	if len(cfg.HashKey) == 0 {
		return cookieCodec{}, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.TTL.Seconds()))
	return cookieCodec{codec: codec, ttl: cfg.TTL, secure: cfg.Secure}, nil
}

func (c cookieCodec) write(w http.ResponseWriter, v any) error {
	encoded, err := c.codec.Encode(CookieName, v)
	if err != nil {
		return fmt.Errorf("draftcache: encode: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.ttl.Seconds()),
		Expires:  time.Now().Add(c.ttl),
	})
	return nil
}

// read decodes the cookie into v. A missing cookie reports false with no error.
func (c cookieCodec) read(r *http.Request, v any) (bool, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return false, nil
	}
	if err := c.codec.Decode(CookieName, ck.Value, v); err != nil {
		return false, fmt.Errorf("draftcache: decode: %w", err)
	}
	return true, nil
}

func (c cookieCodec) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// CookieStore keeps the whole draft in a signed, optionally encrypted cookie.
type CookieStore struct {
	codec cookieCodec
}

// NewCookieStore builds a CookieStore.
func NewCookieStore(cfg Config) (*CookieStore, error) {
	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	return &CookieStore{codec: codec}, nil
}

// Save writes d to the response cookie.
func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, d form.RegistrationDraft) error {
	return s.codec.write(w, d)
}

// Load reads the draft. Tampered or expired cookies report false with an error.
func (s *CookieStore) Load(r *http.Request) (form.RegistrationDraft, bool, error) {
	var d form.RegistrationDraft
	ok, err := s.codec.read(r, &d)
	if !ok {
		return form.RegistrationDraft{}, false, err
	}
	return d, true, nil
}

// Clear expires the cookie.
func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	s.codec.expire(w)
	return nil
}

var (
	_ Store = (*CookieStore)(nil)
	_ Store = (*RedisStore)(nil)
)
