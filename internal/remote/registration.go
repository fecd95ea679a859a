package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

const (
	checkUserPath     = "/api/check-user"
	registrationsPath = "/api/registrations/"
	verifyPaymentPath = "/api/verify-payment/"

	defaultVerifyFailure = "Payment verification failed."
	defaultVerifySuccess = "Thank you! Your registration is now complete."
)

// Payment statuses reported by the lookup.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// ErrMissingReference is returned when VerifyPayment is called without a reference.
var ErrMissingReference = errors.New("remote: missing payment reference")

// UserLookupResult is the existence check for an email address.
type UserLookupResult struct {
	Exists         bool
	FullName       string
	Email          string
	Course         string
	ModeOfLearning string
	PaymentOption  string
	PaymentStatus  string
	Reference      string
}

// SubmitResult is a successful registration submit.
type SubmitResult struct {
	Message        string
	PaymentURL     string
	RegistrationID string
}

// VerifyRequest identifies a payment to verify.
type VerifyRequest struct {
	Reference      string
	RegistrationID string
}

// VerifyResult is a successful verification.
type VerifyResult struct {
	Message string
}

type lookupPayload struct {
	Exists         bool   `json:"exists"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Course         string `json:"course"`
	ModeOfLearning string `json:"mode_of_learning"`
	PaymentOption  string `json:"payment_option"`
	PaymentStatus  string `json:"payment_status"`
	Reference      string `json:"reference"`
	ReferenceNo    string `json:"reference_no"`
}

type registrationBody struct {
	FullName       string `json:"full_name,omitempty"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Address        string `json:"address,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	Course         string `json:"course,omitempty"`
	ModeOfLearning string `json:"mode_of_learning,omitempty"`
	PaymentOption  string `json:"payment_option,omitempty"`
	Action         string `json:"action"`
	Message        string `json:"message"`
}

type resultPayload struct {
	Success        *bool           `json:"success"`
	Message        json.RawMessage `json:"message"`
	PaymentURL     string          `json:"payment_url"`
	RegistrationID json.RawMessage `json:"registration_id"`
}

func (p resultPayload) succeeded() bool { return p.Success != nil && *p.Success }

// CheckUser looks up whether email already has a registration.
func (c *Client) CheckUser(ctx context.Context, email string) (UserLookupResult, error) {
	const op = "check_user"
	resp, err := c.send(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   checkUserPath,
		query:  url.Values{"email": {strings.TrimSpace(email)}},
	})
	if err != nil {
		return UserLookupResult{}, err
	}
	var p lookupPayload
	if err := decode(op, resp, &p); err != nil {
		return UserLookupResult{}, err
	}
	return p.toResult(), nil
}

func (p lookupPayload) toResult() UserLookupResult {
	return UserLookupResult{
		Exists:         p.Exists,
		FullName:       strings.TrimSpace(p.FullName),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Course:         strings.TrimSpace(p.Course),
		ModeOfLearning: strings.TrimSpace(p.ModeOfLearning),
		PaymentOption:  strings.TrimSpace(p.PaymentOption),
		PaymentStatus:  strings.ToLower(strings.TrimSpace(p.PaymentStatus)),
		Reference:      defaultString(p.Reference, p.ReferenceNo),
	}
}

// SubmitRegistration posts the draft for action. A 2xx reply with success:false
// is returned as *apperr.ServerRejection carrying the server's message.
func (c *Client) SubmitRegistration(ctx context.Context, d form.RegistrationDraft, action form.Action) (SubmitResult, error) {
	const op = "submit_registration"
	resp, err := c.send(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   registrationsPath,
		body: registrationBody{
			FullName:       d.FullName,
			Email:          d.Email,
			Phone:          d.Phone,
			Gender:         d.Gender,
			Address:        d.Address,
			Occupation:     d.Occupation,
			Course:         d.Course,
			ModeOfLearning: d.ModeOfLearning,
			PaymentOption:  d.PaymentOption,
			Action:         string(action),
			Message:        d.Message,
		},
		headers: map[string]string{idempotencyHeader: newIdempotencyKey()},
	})
	if err != nil {
		return SubmitResult{}, err
	}
	var p resultPayload
	if err := decode(op, resp, &p); err != nil {
		return SubmitResult{}, err
	}
	if !p.succeeded() {
		return SubmitResult{}, &apperr.ServerRejection{Op: op, Message: messageText(p.Message)}
	}
	return SubmitResult{
		Message:        messageText(p.Message),
		PaymentURL:     strings.TrimSpace(p.PaymentURL),
		RegistrationID: flexString(p.RegistrationID),
	}, nil
}

// VerifyPayment asks the API to confirm a gateway payment:
// GET /api/verify-payment/?reference=<ref>[&registration_id=<id>].
// A reply with success:false becomes *apperr.ServerRejection whatever its
// status, so the visitor sees the server's reason.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	const op = "verify_payment"
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		return VerifyResult{}, ErrMissingReference
	}
	q := url.Values{"reference": {ref}}
	if id := strings.TrimSpace(req.RegistrationID); id != "" {
		q.Set("registration_id", id)
	}
	resp, err := c.send(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   verifyPaymentPath,
		query:  q,
	})
	if err != nil {
		var p resultPayload
		if resp.status > 0 && json.Unmarshal(resp.body, &p) == nil && p.Success != nil && !*p.Success {
			return VerifyResult{}, &apperr.ServerRejection{Op: op, Message: defaultString(messageText(p.Message), defaultVerifyFailure)}
		}
		return VerifyResult{}, err
	}
	var p resultPayload
	if err := decode(op, resp, &p); err != nil {
		return VerifyResult{}, err
	}
	if !p.succeeded() {
		return VerifyResult{}, &apperr.ServerRejection{Op: op, Message: defaultString(messageText(p.Message), defaultVerifyFailure)}
	}
	return VerifyResult{Message: defaultString(messageText(p.Message), defaultVerifySuccess)}, nil
}
