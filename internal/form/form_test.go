package form

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRegistrationNormalizes(t *testing.T) {
	t.Parallel()

	pc := ContextFromValues("/register", url.Values{
		"name":       {"  Ada Obi "},
		"email":      {" Ada@Example.COM "},
		"phone":      {"+2348012345678"},
		"gender":     {"female"},
		"address":    {"12 Allen Ave"},
		"occupation": {"Engineer"},
		"course":     {"Cybersecurity Online"},
	}, nil, nil)

	draft := ReadRegistration(pc)
	require.Equal(t, "Ada Obi", draft.FullName)
	require.Equal(t, "ada@example.com", draft.Email)
	require.Equal(t, "Cybersecurity Online", draft.Course)
	require.Empty(t, draft.Message)
	require.Empty(t, draft.ModeOfLearning)
}

func TestReadAlreadyRegistered(t *testing.T) {
	t.Parallel()

	pc := ContextFromValues("/already-registered", url.Values{
		"existingEmail":    {"U@X.com"},
		"actionSelect":     {"newCourse"},
		"newCourse":        {"Python Programming Online"},
		"newMode":          {"virtual"},
		"newPaymentOption": {"full"},
	}, nil, nil)

	draft, action := ReadAlreadyRegistered(pc)
	require.Equal(t, ActionNewCourse, action)
	require.Equal(t, "u@x.com", draft.Email)
	require.Equal(t, "virtual", draft.ModeOfLearning)
	require.Equal(t, "full", draft.PaymentOption)

	_, action = ReadAlreadyRegistered(ContextFromValues("/", url.Values{"action": {"refund"}}, nil, nil))
	require.Equal(t, Action(""), action)
}

func TestReadPaymentReturnPrefersReference(t *testing.T) {
	t.Parallel()

	pc := ContextFromValues("/payment-success", nil, url.Values{
		"reference": {"ref-1"},
		"trxref":    {"trx-1"},
	}, nil)
	require.Equal(t, "ref-1", ReadPaymentReturn(pc).Reference)

	pc = ContextFromValues("/payment-success", nil, url.Values{"trxref": {"trx-1"}, "registration_id": {"42"}}, nil)
	ret := ReadPaymentReturn(pc)
	require.Equal(t, "trx-1", ret.Reference)
	require.Equal(t, "42", ret.RegistrationID)
}

func TestReadListing(t *testing.T) {
	t.Parallel()

	l := ReadListing(ContextFromValues("/blog", nil, url.Values{"page": {"3"}, "search": {"go"}, "tag": {"4"}}, nil))
	require.Equal(t, Listing{Page: 3, Search: "go", Tag: "4"}, l)

	l = ReadListing(ContextFromValues("/blog", url.Values{"search": {"htmx"}}, url.Values{"page": {"-2"}}, nil))
	require.Equal(t, 1, l.Page)
	require.Equal(t, "htmx", l.Search)
}

func TestNewPageContextSnapshotsRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/blog/7/comments?x=1", strings.NewReader("name=Bola&email=b%40x.com&comment=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "tok"})

	pc, err := NewPageContext(req)
	require.NoError(t, err)
	require.Equal(t, "/blog/7/comments", pc.Path())
	require.Equal(t, "tok", pc.Cookie("csrftoken"))
	require.Equal(t, "1", pc.Query("x"))

	req.PostForm.Set("name", "changed")
	require.Equal(t, Comment{Name: "Bola", Email: "b@x.com", Content: "hi"}, ReadComment(pc))
}
