package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/metrics"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
	"github.com/fixlabtech/fixlab-technologies/internal/validate"
)

// Dialog tones.
const (
	ToneError    = "error"
	ToneInfo     = "info"
	ToneSuccess  = "success"
	ToneQuestion = "question"
)

const (
	titleConfirm  = "Confirm Action"
	titleError    = "Error"
	titleInfo     = "Info"
	titleSuccess  = "Success"
	titleVerified = "Payment Verified & Registration Complete"
)

// Registry is the remote API surface the controller drives.
type Registry interface {
	CheckUser(ctx context.Context, email string) (remote.UserLookupResult, error)
	SubmitRegistration(ctx context.Context, d form.RegistrationDraft, action form.Action) (remote.SubmitResult, error)
	VerifyPayment(ctx context.Context, req remote.VerifyRequest) (remote.VerifyResult, error)
}

// SummaryLine is one row of the confirmation dialog.
type SummaryLine struct {
	Label string
	Value string
}

// Outcome is what the dialog layer shows after an operation.
type Outcome struct {
	State       State
	Kind        apperr.Kind
	Tone        string
	Title       string
	Message     string
	RedirectURL string
	Summary     []SummaryLine

	// CacheDraft is set when the draft must be stored before following RedirectURL.
	CacheDraft *form.RegistrationDraft
	// ClearDraft is set when the stored draft must be removed.
	ClearDraft bool
}

// Redirects reports whether the browser should navigate to RedirectURL now.
func (o Outcome) Redirects() bool {
	return o.State == StateRedirecting && o.RedirectURL != ""
}

// Deps wires the controller's collaborators.
type Deps struct {
	Registry    Registry
	Gateways    Gateways
	Clock       func() time.Time
	IDGenerator func() string
}

// Controller runs the registration and payment-return flows. It never touches
// the request or response; handlers pass it values and act on the Outcome.
type Controller struct {
	registry Registry
	gateways Gateways
	clock    func() time.Time
	newID    func() string
}

// NewController validates deps and builds a Controller.
func NewController(deps Deps) (*Controller, error) {
	if deps.Registry == nil {
		return nil, errors.New("workflow: registry is required")
	}
	if deps.Gateways == nil {
		return nil, errors.New("workflow: gateways are required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &Controller{
		registry: deps.Registry,
		gateways: deps.Gateways,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// NewFlow starts an Idle flow for action.
func (c *Controller) NewFlow(action form.Action) *Flow {
	return &Flow{
		ID:      c.newID(),
		Action:  action,
		State:   StateIdle,
		History: []Step{{State: StateIdle, At: c.clock()}},
	}
}

// Submit validates the draft, looks the email up and stops at Confirming or Blocked.
func (c *Controller) Submit(ctx context.Context, flow *Flow, d form.RegistrationDraft) (out Outcome) {
	defer func() { c.record(ctx, flow, out) }()

	if err := flow.advance(StateValidating, c.clock()); err != nil {
		return internalOutcome(StateIdle)
	}
	flow.Draft = d
	flow.Checked = false

	rule, ok := RuleFor(flow.Action)
	err := validate.RequiredFieldsPresent(d, flow.Action)
	if err == nil && !ok {
		err = &apperr.ValidationError{Field: "action", Message: validate.MsgMissingAction}
	}
	if err == nil && rule.Precheck != nil {
		if msg := rule.Precheck(d, c.gateways); msg != "" {
			err = &apperr.ValidationError{Field: "mode", Message: msg}
		}
	}
	if err != nil {
		_ = flow.advance(StateIdle, c.clock())
		return errorOutcome(StateIdle, err)
	}

	_ = flow.advance(StateCheckingUser, c.clock())
	user, err := c.registry.CheckUser(ctx, d.Email)
	if err != nil {
		_ = flow.advance(StateFailed, c.clock())
		_ = flow.advance(StateIdle, c.clock())
		return errorOutcome(StateFailed, err)
	}

	if !user.Exists && !rule.MissIsHappyPath {
		return c.block(flow, &apperr.NotFoundError{Message: MsgUserNotFound}, PathRegister, false)
	}
	if user.Exists {
		if b := rule.Conflict(d, user); b != nil {
			return c.block(flow, &apperr.ConflictError{Message: b.Message}, b.Redirect, b.Info)
		}
	}

	flow.Draft = rule.Resolve(d, user)
	flow.Checked = true
	_ = flow.advance(StateConfirming, c.clock())
	return Outcome{
		State:   StateConfirming,
		Tone:    ToneQuestion,
		Title:   titleConfirm,
		Summary: summarize(flow.Action, flow.Draft),
	}
}

func (c *Controller) block(flow *Flow, err error, redirect string, info bool) Outcome {
	_ = flow.advance(StateBlocked, c.clock())
	_ = flow.advance(StateIdle, c.clock())
	out := errorOutcome(StateBlocked, err)
	out.RedirectURL = redirect
	if info {
		out.Tone = ToneInfo
		out.Title = titleInfo
	}
	return out
}

// Abandon returns a Confirming flow to Idle when its confirmation cannot be
// kept for the user, so Confirm is never offered for a flow that was lost.
func (c *Controller) Abandon(ctx context.Context, flow *Flow, cause error) (out Outcome) {
	defer func() { c.record(ctx, flow, out) }()

	if flow.State == StateConfirming {
		_ = flow.advance(StateIdle, c.clock())
	}
	flow.Checked = false
	observability.FromContext(ctx).Warn("confirmation not held", zap.String("flowID", flow.ID), zap.Error(cause))
	return Outcome{
		State:   StateIdle,
		Kind:    apperr.KindInternal,
		Tone:    ToneError,
		Title:   titleError,
		Message: MsgCannotHold,
	}
}

// Confirm submits a flow the user confirmed and resolves the redirect target.
func (c *Controller) Confirm(ctx context.Context, flow *Flow) (out Outcome) {
	if !flow.Pending() {
		return Outcome{
			State:   StateIdle,
			Kind:    apperr.KindValidation,
			Tone:    ToneError,
			Title:   titleError,
			Message: MsgNothingToConfirm,
		}
	}
	defer func() { c.record(ctx, flow, out) }()

	rule, _ := RuleFor(flow.Action)
	_ = flow.advance(StateSubmitting, c.clock())
	res, err := c.registry.SubmitRegistration(ctx, flow.Draft, flow.Action)
	if err != nil {
		return c.fail(flow, err)
	}

	target, err := c.redirectTarget(rule, flow.Draft, res)
	if err != nil {
		return c.fail(flow, err)
	}

	_ = flow.advance(StateRedirecting, c.clock())
	out = Outcome{
		State:       StateRedirecting,
		Tone:        ToneSuccess,
		Title:       titleSuccess,
		Message:     res.Message,
		RedirectURL: target,
	}
	if rule.CacheDraft {
		d := flow.Draft
		out.CacheDraft = &d
	}
	return out
}

func (c *Controller) fail(flow *Flow, err error) Outcome {
	_ = flow.advance(StateFailed, c.clock())
	return errorOutcome(StateFailed, err)
}

func (c *Controller) redirectTarget(rule Rule, d form.RegistrationDraft, res remote.SubmitResult) (string, error) {
	switch rule.Redirect {
	case RedirectPlanLink:
		if res.PaymentURL != "" {
			return res.PaymentURL, nil
		}
		return c.gateways.PlanLink(catalog.PlanInstallment), nil
	case RedirectModeLink:
		link, ok := c.gateways.ModeLink(d.ModeOfLearning)
		if !ok {
			return "", &apperr.ValidationError{Field: "mode", Message: MsgInvalidMode}
		}
		return catalog.WithRegistrationID(link, res.RegistrationID), nil
	default:
		if res.PaymentURL == "" {
			return "", &apperr.ServerRejection{Op: "submit_registration", Message: MsgMissingPayLink}
		}
		return res.PaymentURL, nil
	}
}

// Cancel drops a pending confirmation.
func (c *Controller) Cancel(flow *Flow) Outcome {
	if flow != nil && flow.State == StateConfirming {
		_ = flow.advance(StateIdle, c.clock())
		flow.Checked = false
	}
	return Outcome{State: StateIdle}
}

// VerifyPayment handles the redirect back from the payment gateway.
func (c *Controller) VerifyPayment(ctx context.Context, ret form.PaymentReturn, cached *form.RegistrationDraft) Outcome {
	flow := c.NewFlow("")
	_ = flow.advance(StateVerifyingPayment, c.clock())
	logger := observability.FromContext(ctx).With(zap.String("flowID", flow.ID))
	if cached != nil {
		logger = logger.With(observability.Email("email", cached.Email))
	}

	if strings.TrimSpace(ret.Reference) == "" {
		_ = flow.advance(StateFailed, c.clock())
		metrics.IncPaymentVerification("missing_reference")
		out := errorOutcome(StateFailed, &apperr.ValidationError{Field: "reference", Message: MsgMissingReference})
		out.RedirectURL = PathRegister
		return out
	}

	res, err := c.registry.VerifyPayment(ctx, remote.VerifyRequest{
		Reference:      ret.Reference,
		RegistrationID: ret.RegistrationID,
	})
	if err != nil {
		_ = flow.advance(StateFailed, c.clock())
		result := "fail"
		if apperr.IsNetwork(err) {
			result = "network"
		}
		metrics.IncPaymentVerification(result)
		logger.Warn("payment verification failed", zap.String("reference", ret.Reference), zap.Error(err))
		return errorOutcome(StateFailed, err)
	}

	_ = flow.advance(StateRedirecting, c.clock())
	metrics.IncPaymentVerification("ok")
	logger.Info("payment verified", zap.String("reference", ret.Reference))
	out := Outcome{
		State:       StateRedirecting,
		Tone:        ToneSuccess,
		Title:       titleVerified,
		Message:     res.Message,
		RedirectURL: PathHome,
		ClearDraft:  true,
	}
	if cached != nil {
		out.Summary = summarize(form.Action(""), *cached)
	}
	return out
}

func (c *Controller) record(ctx context.Context, flow *Flow, out Outcome) {
	metrics.IncWorkflowOutcome(string(flow.Action), string(out.State))
	observability.FromContext(ctx).Info("registration flow",
		zap.String("flowID", flow.ID),
		zap.String("action", string(flow.Action)),
		zap.String("state", string(out.State)),
		zap.String("kind", string(out.Kind)),
		observability.Email("email", flow.Draft.Email),
	)
}

func errorOutcome(state State, err error) Outcome {
	return Outcome{
		State:   state,
		Kind:    apperr.KindOf(err),
		Tone:    ToneError,
		Title:   titleError,
		Message: apperr.UserMessage(err),
	}
}

func internalOutcome(state State) Outcome {
	return Outcome{
		State:   state,
		Kind:    apperr.KindInternal,
		Tone:    ToneError,
		Title:   titleError,
		Message: MsgNothingToConfirm,
	}
}

func summarize(action form.Action, d form.RegistrationDraft) []SummaryLine {
	lines := []SummaryLine{
		{Label: "Name", Value: d.FullName},
		{Label: "Email", Value: d.Email},
		{Label: "Course", Value: d.Course},
	}
	if action != "" {
		lines = append(lines, SummaryLine{Label: "Selected Action", Value: string(action)})
	}
	if action != form.ActionInstallment && d.ModeOfLearning != "" {
		lines = append(lines, SummaryLine{Label: "Mode", Value: d.ModeOfLearning})
	}
	if action != form.ActionInstallment && d.PaymentOption != "" {
		lines = append(lines, SummaryLine{Label: "Payment", Value: d.PaymentOption})
	}
	return lines
}
