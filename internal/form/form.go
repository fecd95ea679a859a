package form

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Action names one registration variant.
type Action string

const (
	ActionNewRegistration Action = "newRegistration"
	ActionInstallment     Action = "installment"
	ActionNewCourse       Action = "newCourse"
)

// ParseAction resolves a submitted action value. Unknown values return false.
func ParseAction(v string) (Action, bool) {
	switch Action(strings.TrimSpace(v)) {
	case ActionNewRegistration:
		return ActionNewRegistration, true
	case ActionInstallment:
		return ActionInstallment, true
	case ActionNewCourse:
		return ActionNewCourse, true
	default:
		return "", false
	}
}

// RegistrationDraft is the registration data held until the payment round trip completes.
type RegistrationDraft struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Gender         string `json:"gender"`
	Address        string `json:"address"`
	Occupation     string `json:"occupation"`
	Course         string `json:"course"`
	ModeOfLearning string `json:"mode_of_learning"`
	PaymentOption  string `json:"payment_option"`
	Message        string `json:"message"`
}

// Comment is a visitor comment on a blog post.
type Comment struct {
	Name    string
	Email   string
	Content string
}

// Contact is a message from the contact form.
type Contact struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Listing describes one blog listing request.
type Listing struct {
	Page     int
	Search   string
	Category string
	Tag      string
}

// PaymentReturn carries the query of the gateway redirect back to the site.
type PaymentReturn struct {
	Reference      string
	RegistrationID string
}

// PageContext is an immutable snapshot of one request's inputs.
type PageContext struct {
	path    string
	form    url.Values
	query   url.Values
	cookies map[string]string
}

// NewPageContext snapshots r. It parses the body for form posts.
func NewPageContext(r *http.Request) (PageContext, error) {
	if err := r.ParseForm(); err != nil {
		return PageContext{}, err
	}
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, ok := cookies[c.Name]; !ok {
			cookies[c.Name] = c.Value
		}
	}
	return ContextFromValues(r.URL.Path, r.PostForm, r.URL.Query(), cookies), nil
}

// ContextFromValues builds a PageContext from plain values.
func ContextFromValues(path string, form, query url.Values, cookies map[string]string) PageContext {
	pc := PageContext{
		path:    path,
		form:    cloneValues(form),
		query:   cloneValues(query),
		cookies: make(map[string]string, len(cookies)),
	}
	for k, v := range cookies {
		pc.cookies[k] = v
	}
	return pc
}

// Path returns the request path.
func (pc PageContext) Path() string { return pc.path }

// Field returns the first non-empty trimmed form value among ids.
func (pc PageContext) Field(ids ...string) string {
	for _, id := range ids {
		if v := strings.TrimSpace(pc.form.Get(id)); v != "" {
			return v
		}
	}
	return ""
}

// Query returns the first non-empty trimmed query value among names.
func (pc PageContext) Query(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(pc.query.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// Cookie returns the named cookie value or "".
func (pc PageContext) Cookie(name string) string {
	return pc.cookies[name]
}

// ReadRegistration reads the new-student form.
func ReadRegistration(pc PageContext) RegistrationDraft {
	return RegistrationDraft{
		FullName:       pc.Field("name", "full_name"),
		Email:          strings.ToLower(pc.Field("email")),
		Phone:          pc.Field("phone"),
		Gender:         pc.Field("gender"),
		Address:        pc.Field("address"),
		Occupation:     pc.Field("occupation"),
		Course:         pc.Field("course"),
		ModeOfLearning: pc.Field("mode", "mode_of_learning"),
		PaymentOption:  pc.Field("paymentOption", "payment_option"),
		Message:        pc.Field("message"),
	}
}

// ReadAlreadyRegistered reads the returning-student form. Unknown actions yield "".
func ReadAlreadyRegistered(pc PageContext) (RegistrationDraft, Action) {
	action, _ := ParseAction(pc.Field("actionSelect", "action"))
	draft := RegistrationDraft{
		Email:          strings.ToLower(pc.Field("existingEmail", "email")),
		Course:         pc.Field("newCourse", "course"),
		ModeOfLearning: pc.Field("newMode", "mode"),
		PaymentOption:  pc.Field("newPaymentOption", "paymentOption"),
		Message:        pc.Field("message"),
	}
	return draft, action
}

// ReadComment reads the comment form.
func ReadComment(pc PageContext) Comment {
	return Comment{
		Name:    pc.Field("name"),
		Email:   strings.ToLower(pc.Field("email")),
		Content: pc.Field("comment", "content"),
	}
}

// ReadNewsletter reads the newsletter email.
func ReadNewsletter(pc PageContext) string {
	return strings.ToLower(pc.Field("newsletter-email", "email"))
}

// ReadContact reads the contact form.
func ReadContact(pc PageContext) Contact {
	return Contact{
		Name:    pc.Field("name"),
		Email:   strings.ToLower(pc.Field("email")),
		Subject: pc.Field("subject"),
		Message: pc.Field("message"),
	}
}

// ReadListing reads listing parameters from the query, falling back to the form
// for htmx search inputs. Pages below 1 become 1.
func ReadListing(pc PageContext) Listing {
	l := Listing{
		Search:   firstNonEmpty(pc.Query("search"), pc.Field("search")),
		Category: firstNonEmpty(pc.Query("category"), pc.Field("category")),
		Tag:      firstNonEmpty(pc.Query("tag"), pc.Field("tag")),
		Page:     1,
	}
	if n, err := strconv.Atoi(firstNonEmpty(pc.Query("page"), pc.Field("page"))); err == nil && n > 1 {
		l.Page = n
	}
	return l
}

// ReadPaymentReturn reads the gateway redirect. reference wins over trxref.
func ReadPaymentReturn(pc PageContext) PaymentReturn {
	return PaymentReturn{
		Reference:      pc.Query("reference", "trxref"),
		RegistrationID: pc.Query("registration_id"),
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
