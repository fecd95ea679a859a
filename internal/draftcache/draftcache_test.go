package draftcache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

var testConfig = Config{
	HashKey:  []byte("0123456789abcdef0123456789abcdef"),
	BlockKey: []byte("abcdef0123456789abcdef0123456789"),
	TTL:      30 * time.Minute,
}

func sampleDraft() form.RegistrationDraft {
	return form.RegistrationDraft{
		FullName:       "Ada Obi",
		Email:          "ada@example.com",
		Phone:          "+2348012345678",
		Gender:         "female",
		Address:        "12 Allen Ave, Ikeja",
		Occupation:     "Engineer",
		Course:         "Cybersecurity Online",
		ModeOfLearning: "virtual",
		PaymentOption:  "installment",
		Message:        "See you \"soon\" & thanks",
	}
}

// carry replays the cookies set on rec into a fresh request.
func carry(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/payment-success", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func roundTrip(t *testing.T, store Store) {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/registration/confirm", nil), sampleDraft()))

	got, ok, err := store.Load(carry(t, rec))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sampleDraft(), got)

	clear := httptest.NewRecorder()
	require.NoError(t, store.Clear(clear, carry(t, rec)))
	cookies := clear.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestCookieStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewCookieStore(testConfig)
	require.NoError(t, err)
	roundTrip(t, store)
}

func TestCookieStoreMissingAndTampered(t *testing.T) {
	t.Parallel()

	store, err := NewCookieStore(testConfig)
	require.NoError(t, err)

	_, ok, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: `{"email":"evil@x.com"}`})
	_, ok, err = store.Load(req)
	require.Error(t, err)
	require.False(t, ok)
}

func TestNewCookieStoreRequiresHashKey(t *testing.T) {
	t.Parallel()

	_, err := NewCookieStore(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	store, err := NewRedisStore(fake, testConfig)
	require.NoError(t, err)
	roundTrip(t, store)
	require.Empty(t, fake.data)
}

func TestRedisStoreKeysAndTTL(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	store, err := NewRedisStore(fake, testConfig)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), sampleDraft()))
	require.Len(t, fake.data, 1)
	for key, ttl := range fake.data {
		require.True(t, strings.HasPrefix(key, "registrationData:"))
		require.Equal(t, testConfig.TTL, fake.ttls[key])
		_ = ttl
	}

	// a second save from the same browser overwrites in place
	next := sampleDraft()
	next.Course = "Python Programming Online"
	rec2 := httptest.NewRecorder()
	require.NoError(t, store.Save(rec2, carry(t, rec), next))
	require.Len(t, fake.data, 1)

	got, ok, err := store.Load(carry(t, rec))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Python Programming Online", got.Course)
}

func TestRedisStoreExpiredEntry(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	store, err := NewRedisStore(fake, testConfig)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), sampleDraft()))
	fake.data = map[string]string{}

	_, ok, err := store.Load(carry(t, rec))
	require.NoError(t, err)
	require.False(t, ok)
}
