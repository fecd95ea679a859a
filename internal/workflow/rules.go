package workflow

import (
	"strings"

	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
)

// User-facing copy for the business rules.
const (
	MsgAlreadyRegistered = "You already have a registration. Please use the 'Already Registered' option to continue."
	MsgUserNotFound      = "No user found with this email. Please register first."
	MsgPaymentCompleted  = "You have already completed payment for your course."
	MsgNoCourseOnFile    = "No course on file for this email. Choose 'New Course' to enroll."
	MsgSameCourse        = "You are already enrolled in this course & mode. Choose a different one."
	MsgInvalidMode       = "Invalid mode selected. Please try again."
	MsgMissingReference  = "Missing payment reference."
	MsgMissingPayLink    = "Payment link was not provided. Please try again later."
	MsgNothingToConfirm  = "Your session has expired. Please submit the form again."
	MsgCannotHold        = "We could not keep your details for confirmation. Please shorten your message and try again."
)

// Page paths the rules point users at.
const (
	PathRegister          = "/register"
	PathAlreadyRegistered = "/already-registered"
	PathHome              = "/"
)

// Redirect selects where a confirmed flow sends the browser.
type Redirect int

const (
	// RedirectPaymentURL uses the payment URL returned by the submit call.
	RedirectPaymentURL Redirect = iota
	// RedirectPlanLink prefers the returned payment URL and falls back to the plan's gateway link.
	RedirectPlanLink
	// RedirectModeLink uses the mode's gateway link with ?registration_id= appended.
	RedirectModeLink
)

// Gateways resolves payment-gateway links.
type Gateways interface {
	ModeLink(mode string) (string, bool)
	PlanLink(plan string) string
}

// Block is a business-rule rejection of the requested action.
type Block struct {
	Message  string
	Redirect string
	Info     bool
}

// Rule parameterizes the flow for one action.
type Rule struct {
	Action form.Action
	// MissIsHappyPath is true when a lookup miss means the user may proceed.
	MissIsHappyPath bool
	// Precheck runs after field validation and before any remote call.
	Precheck func(d form.RegistrationDraft, gw Gateways) string
	// Conflict runs against an existing record.
	Conflict func(d form.RegistrationDraft, u remote.UserLookupResult) *Block
	// Resolve merges the lookup into the draft that is submitted.
	Resolve    func(d form.RegistrationDraft, u remote.UserLookupResult) form.RegistrationDraft
	Redirect   Redirect
	CacheDraft bool
}

// Rules is the per-action rules table.
var Rules = map[form.Action]Rule{
	form.ActionNewRegistration: {
		Action:          form.ActionNewRegistration,
		MissIsHappyPath: true,
		Conflict: func(form.RegistrationDraft, remote.UserLookupResult) *Block {
			return &Block{Message: MsgAlreadyRegistered, Redirect: PathAlreadyRegistered}
		},
		Resolve:    func(d form.RegistrationDraft, _ remote.UserLookupResult) form.RegistrationDraft { return d },
		Redirect:   RedirectPaymentURL,
		CacheDraft: true,
	},
	form.ActionInstallment: {
		Action: form.ActionInstallment,
		Conflict: func(_ form.RegistrationDraft, u remote.UserLookupResult) *Block {
			if u.PaymentStatus == remote.PaymentCompleted {
				return &Block{Message: MsgPaymentCompleted, Info: true}
			}
			if strings.TrimSpace(u.Course) == "" {
				return &Block{Message: MsgNoCourseOnFile}
			}
			return nil
		},
		Resolve: func(d form.RegistrationDraft, u remote.UserLookupResult) form.RegistrationDraft {
			d.FullName = defaultString(u.FullName, d.FullName)
			d.Course = u.Course
			d.ModeOfLearning = u.ModeOfLearning
			d.PaymentOption = catalog.PlanInstallment
			return d
		},
		Redirect:   RedirectPlanLink,
		CacheDraft: true,
	},
	form.ActionNewCourse: {
		Action: form.ActionNewCourse,
		Precheck: func(d form.RegistrationDraft, gw Gateways) string {
			if _, ok := gw.ModeLink(d.ModeOfLearning); !ok {
				return MsgInvalidMode
			}
			return ""
		},
		Conflict: func(d form.RegistrationDraft, u remote.UserLookupResult) *Block {
			if strings.EqualFold(u.Course, d.Course) && strings.EqualFold(u.ModeOfLearning, d.ModeOfLearning) {
				return &Block{Message: MsgSameCourse}
			}
			return nil
		},
		Resolve: func(d form.RegistrationDraft, u remote.UserLookupResult) form.RegistrationDraft {
			d.FullName = defaultString(u.FullName, d.FullName)
			return d
		},
		Redirect: RedirectModeLink,
	},
}

// RuleFor returns the rule for action.
func RuleFor(action form.Action) (Rule, bool) {
	r, ok := Rules[action]
	return r, ok
}

func defaultString(val, fallback string) string {
	if v := strings.TrimSpace(val); v != "" {
		return v
	}
	return fallback
}
