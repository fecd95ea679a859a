package validate

import (
	"regexp"

	"github.com/ARUMANDESU/validation"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

// Messages shown to visitors, one per failing rule.
const (
	MsgMissingFields    = "Please fill in all required fields!"
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgInvalidPhone     = "Please enter a valid phone number (digits only, min 7 and max 15)."
	MsgMissingAction    = "Please fill all required fields."
	MsgMissingNewCourse = "Please fill all new course fields."
	MsgCommentFields    = "All fields are required!"
	MsgNewsletterEmail  = "Please enter a valid email"
	MsgFieldTooLong     = "Please shorten your entries. Names, emails and occupations allow 100 characters and addresses 200."
	MsgMessageTooLong   = "Please keep your message to 500 characters or fewer."
)

// Length limits of the typed registration fields. A pending registration is
// held in the session cookie, which browsers cap at 4 KB.
const (
	MaxFieldLength   = 100
	MaxAddressLength = 200
	MaxMessageLength = 500
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool { return emailPattern.MatchString(s) }

// IsValidPhone reports whether s is an optional "+" followed by 7 to 15 digits.
func IsValidPhone(s string) bool { return phonePattern.MatchString(s) }

type check struct {
	field string
	value string
	rules []validation.Rule
}

func required(field, value, msg string) check {
	return check{field: field, value: value, rules: []validation.Rule{validation.Required.Error(msg)}}
}

func matches(field, value string, re *regexp.Regexp, msg string) check {
	return check{field: field, value: value, rules: []validation.Rule{
		validation.Required.Error(msg),
		validation.Match(re).Error(msg),
	}}
}

func limit(field, value string, max int, msg string) check {
	return check{field: field, value: value, rules: []validation.Rule{validation.RuneLength(0, max).Error(msg)}}
}

// firstFailure runs checks in order and returns the first failing rule as a
// *apperr.ValidationError carrying that rule's message.
func firstFailure(checks ...check) error {
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return &apperr.ValidationError{Field: c.field, Message: err.Error()}
		}
	}
	return nil
}

// RequiredFieldsPresent checks the draft for the given action. An empty action
// is treated as a returning-student submission with no action chosen.
func RequiredFieldsPresent(d form.RegistrationDraft, action form.Action) error {
	switch action {
	case form.ActionNewRegistration:
		return firstFailure(
			required("name", d.FullName, MsgMissingFields),
			required("email", d.Email, MsgMissingFields),
			required("phone", d.Phone, MsgMissingFields),
			required("gender", d.Gender, MsgMissingFields),
			required("address", d.Address, MsgMissingFields),
			required("occupation", d.Occupation, MsgMissingFields),
			required("course", d.Course, MsgMissingFields),
			limit("name", d.FullName, MaxFieldLength, MsgFieldTooLong),
			limit("email", d.Email, MaxFieldLength, MsgFieldTooLong),
			limit("occupation", d.Occupation, MaxFieldLength, MsgFieldTooLong),
			limit("address", d.Address, MaxAddressLength, MsgFieldTooLong),
			limit("message", d.Message, MaxMessageLength, MsgMessageTooLong),
			matches("email", d.Email, emailPattern, MsgInvalidEmail),
			matches("phone", d.Phone, phonePattern, MsgInvalidPhone),
		)
	case form.ActionNewCourse:
		return firstFailure(
			required("email", d.Email, MsgMissingAction),
			required("action", string(action), MsgMissingAction),
			required("course", d.Course, MsgMissingNewCourse),
			required("mode", d.ModeOfLearning, MsgMissingNewCourse),
			required("paymentOption", d.PaymentOption, MsgMissingNewCourse),
			limit("email", d.Email, MaxFieldLength, MsgFieldTooLong),
			limit("message", d.Message, MaxMessageLength, MsgMessageTooLong),
		)
	default:
		return firstFailure(
			required("email", d.Email, MsgMissingAction),
			required("action", string(action), MsgMissingAction),
			limit("email", d.Email, MaxFieldLength, MsgFieldTooLong),
			limit("message", d.Message, MaxMessageLength, MsgMessageTooLong),
		)
	}
}

// Comment checks a blog comment.
func Comment(c form.Comment) error {
	return firstFailure(
		required("name", c.Name, MsgCommentFields),
		required("email", c.Email, MsgCommentFields),
		required("comment", c.Content, MsgCommentFields),
	)
}

// Newsletter checks a newsletter address.
func Newsletter(email string) error {
	return firstFailure(matches("email", email, emailPattern, MsgNewsletterEmail))
}

// Contact checks a contact message.
func Contact(c form.Contact) error {
	return firstFailure(
		required("name", c.Name, MsgMissingFields),
		required("email", c.Email, MsgMissingFields),
		required("message", c.Message, MsgMissingFields),
		matches("email", c.Email, emailPattern, MsgInvalidEmail),
	)
}
