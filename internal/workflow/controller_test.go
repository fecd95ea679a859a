package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
	"github.com/fixlabtech/fixlab-technologies/internal/validate"
)

type fakeRegistry struct {
	lookup    remote.UserLookupResult
	lookupErr error
	submit    remote.SubmitResult
	submitErr error
	verify    remote.VerifyResult
	verifyErr error

	lookups   []string
	submitted []form.RegistrationDraft
	actions   []form.Action
	verified  []remote.VerifyRequest
}

func (f *fakeRegistry) CheckUser(_ context.Context, email string) (remote.UserLookupResult, error) {
	f.lookups = append(f.lookups, email)
	return f.lookup, f.lookupErr
}

func (f *fakeRegistry) SubmitRegistration(_ context.Context, d form.RegistrationDraft, action form.Action) (remote.SubmitResult, error) {
	f.submitted = append(f.submitted, d)
	f.actions = append(f.actions, action)
	return f.submit, f.submitErr
}

func (f *fakeRegistry) VerifyPayment(_ context.Context, req remote.VerifyRequest) (remote.VerifyResult, error) {
	f.verified = append(f.verified, req)
	return f.verify, f.verifyErr
}

func newTestController(t *testing.T, reg *fakeRegistry) *Controller {
	t.Helper()
	cat, err := catalog.Load("../../config/catalog.yaml")
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctrl, err := NewController(Deps{
		Registry:    reg,
		Gateways:    cat,
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "flow-1" },
	})
	require.NoError(t, err)
	return ctrl
}

func newRegistrationDraft() form.RegistrationDraft {
	return form.RegistrationDraft{
		FullName:       "Ada Obi",
		Email:          "ada@example.com",
		Phone:          "+2348012345678",
		Gender:         "female",
		Address:        "12 Allen Ave",
		Occupation:     "Engineer",
		Course:         "Cybersecurity Online",
		ModeOfLearning: "virtual",
		PaymentOption:  "full",
	}
}

func TestNewControllerRequiresDeps(t *testing.T) {
	t.Parallel()

	_, err := NewController(Deps{})
	require.Error(t, err)
	_, err = NewController(Deps{Registry: &fakeRegistry{}})
	require.Error(t, err)
}

func TestSubmitValidationFailureMakesNoRemoteCall(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewCourse)
	out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
		Email:         "ada@example.com",
		Course:        "Python Programming Online",
		PaymentOption: "full",
	})

	require.Equal(t, StateIdle, out.State)
	require.Equal(t, apperr.KindValidation, out.Kind)
	require.Equal(t, validate.MsgMissingNewCourse, out.Message)
	require.Empty(t, reg.lookups)
	require.Equal(t, []State{StateIdle, StateValidating, StateIdle}, flow.States())
	require.Empty(t, out.RedirectURL)
}

func TestSubmitNewCourseUnknownModeMakesNoRemoteCall(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewCourse)
	out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
		Email:          "ada@example.com",
		Course:         "Python Programming Online",
		ModeOfLearning: "hybrid",
		PaymentOption:  "full",
	})

	require.Equal(t, apperr.KindValidation, out.Kind)
	require.Equal(t, MsgInvalidMode, out.Message)
	require.Empty(t, reg.lookups)
}

func TestSubmitNewCourseSameCourseAndModeIsBlocked(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{lookup: remote.UserLookupResult{
		Exists:         true,
		Course:         "X",
		ModeOfLearning: "onsite",
		PaymentStatus:  remote.PaymentCompleted,
	}}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewCourse)
	out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
		Email:          "u@x.com",
		Course:         "X",
		ModeOfLearning: "onsite",
		PaymentOption:  "full",
	})

	require.Equal(t, StateBlocked, out.State)
	require.Equal(t, apperr.KindConflict, out.Kind)
	require.Equal(t, MsgSameCourse, out.Message)
	require.False(t, flow.Pending())
	require.Equal(t, StateIdle, flow.State)
	require.Contains(t, flow.States(), StateBlocked)
	require.NotContains(t, flow.States(), StateConfirming)
}

func TestSubmitLookupMissRedirectsToRegistration(t *testing.T) {
	t.Parallel()

	for _, action := range []form.Action{form.ActionInstallment, form.ActionNewCourse} {
		action := action
		t.Run(string(action), func(t *testing.T) {
			t.Parallel()

			reg := &fakeRegistry{lookup: remote.UserLookupResult{Exists: false}}
			ctrl := newTestController(t, reg)

			flow := ctrl.NewFlow(action)
			out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
				Email:          "u@x.com",
				Course:         "Python Programming Online",
				ModeOfLearning: "virtual",
				PaymentOption:  "full",
			})
			require.Equal(t, StateBlocked, out.State)
			require.Equal(t, apperr.KindNotFound, out.Kind)
			require.Equal(t, MsgUserNotFound, out.Message)
			require.Equal(t, PathRegister, out.RedirectURL)
			require.False(t, out.Redirects())

			confirm := ctrl.Confirm(context.Background(), flow)
			require.Equal(t, MsgNothingToConfirm, confirm.Message)
			require.Empty(t, reg.submitted)
		})
	}
}

func TestSubmitInstallmentPendingUsesLookupCourse(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{lookup: remote.UserLookupResult{
		Exists:         true,
		FullName:       "Ada Obi",
		Email:          "u@x.com",
		Course:         "Python Programming Offline",
		ModeOfLearning: "onsite",
		PaymentStatus:  remote.PaymentPending,
	}}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionInstallment)
	out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
		Email:          "u@x.com",
		Course:         "Something Else",
		ModeOfLearning: "virtual",
	})

	require.Equal(t, StateConfirming, out.State)
	require.True(t, flow.Pending())
	require.Equal(t, "Python Programming Offline", flow.Draft.Course)
	require.Equal(t, "onsite", flow.Draft.ModeOfLearning)
	require.Equal(t, catalog.PlanInstallment, flow.Draft.PaymentOption)
	require.Equal(t, []string{"u@x.com"}, reg.lookups)
	require.Equal(t, "Confirm Action", out.Title)
	require.Contains(t, out.Summary, SummaryLine{Label: "Course", Value: "Python Programming Offline"})
	require.Contains(t, out.Summary, SummaryLine{Label: "Selected Action", Value: "installment"})
	require.Equal(t,
		[]State{StateIdle, StateValidating, StateCheckingUser, StateConfirming},
		flow.States(),
	)
}

func TestSubmitInstallmentBlocks(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		lookup remote.UserLookupResult
		msg    string
		tone   string
	}{
		"completed": {
			lookup: remote.UserLookupResult{Exists: true, Course: "X", PaymentStatus: remote.PaymentCompleted},
			msg:    MsgPaymentCompleted,
			tone:   ToneInfo,
		},
		"no course": {
			lookup: remote.UserLookupResult{Exists: true, PaymentStatus: remote.PaymentPending},
			msg:    MsgNoCourseOnFile,
			tone:   ToneError,
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := newTestController(t, &fakeRegistry{lookup: tc.lookup})
			out := ctrl.Submit(context.Background(), ctrl.NewFlow(form.ActionInstallment), form.RegistrationDraft{Email: "u@x.com"})
			require.Equal(t, StateBlocked, out.State)
			require.Equal(t, tc.msg, out.Message)
			require.Equal(t, tc.tone, out.Tone)
		})
	}
}

func TestSubmitNewRegistrationExistingUserIsBlocked(t *testing.T) {
	t.Parallel()

	ctrl := newTestController(t, &fakeRegistry{lookup: remote.UserLookupResult{Exists: true}})
	out := ctrl.Submit(context.Background(), ctrl.NewFlow(form.ActionNewRegistration), newRegistrationDraft())

	require.Equal(t, StateBlocked, out.State)
	require.Equal(t, MsgAlreadyRegistered, out.Message)
	require.Equal(t, PathAlreadyRegistered, out.RedirectURL)
}

func TestSubmitNetworkFailure(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{lookupErr: &apperr.NetworkError{Op: "check_user", Err: errors.New("dial tcp: refused")}}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewRegistration)
	out := ctrl.Submit(context.Background(), flow, newRegistrationDraft())

	require.Equal(t, StateFailed, out.State)
	require.Equal(t, apperr.KindNetwork, out.Kind)
	require.Equal(t, apperr.NetworkMessage, out.Message)
	require.Equal(t, StateIdle, flow.State)
	require.Empty(t, out.RedirectURL)
}

func TestConfirmNewRegistrationCachesDraft(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		lookup: remote.UserLookupResult{Exists: false},
		submit: remote.SubmitResult{Message: "Registered", PaymentURL: "https://paystack.shop/pay/abc"},
	}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewRegistration)
	require.Equal(t, StateConfirming, ctrl.Submit(context.Background(), flow, newRegistrationDraft()).State)

	out := ctrl.Confirm(context.Background(), flow)
	require.Equal(t, StateRedirecting, out.State)
	require.True(t, out.Redirects())
	require.Equal(t, "https://paystack.shop/pay/abc", out.RedirectURL)
	require.NotNil(t, out.CacheDraft)
	require.Equal(t, newRegistrationDraft(), *out.CacheDraft)
	require.Equal(t, []form.Action{form.ActionNewRegistration}, reg.actions)
}

func TestConfirmNewRegistrationWithoutPaymentURLFails(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{submit: remote.SubmitResult{Message: "Registered"}}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewRegistration)
	ctrl.Submit(context.Background(), flow, newRegistrationDraft())
	out := ctrl.Confirm(context.Background(), flow)

	require.Equal(t, StateFailed, out.State)
	require.Equal(t, MsgMissingPayLink, out.Message)
	require.Empty(t, out.RedirectURL)
	require.Nil(t, out.CacheDraft)
}

func TestConfirmInstallmentFallsBackToPlanLink(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		lookup: remote.UserLookupResult{Exists: true, Course: "X", ModeOfLearning: "onsite", PaymentStatus: remote.PaymentPending},
		submit: remote.SubmitResult{Message: "ok"},
	}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionInstallment)
	ctrl.Submit(context.Background(), flow, form.RegistrationDraft{Email: "u@x.com"})
	out := ctrl.Confirm(context.Background(), flow)

	require.Equal(t, "https://paystack.shop/pay/fixlab-enroll", out.RedirectURL)
	require.NotNil(t, out.CacheDraft)
	require.Equal(t, "X", out.CacheDraft.Course)
}

func TestConfirmNewCourseAppendsRegistrationID(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		lookup: remote.UserLookupResult{Exists: true, FullName: "Ada", Course: "X", ModeOfLearning: "onsite"},
		submit: remote.SubmitResult{RegistrationID: "77"},
	}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewCourse)
	out := ctrl.Submit(context.Background(), flow, form.RegistrationDraft{
		Email:          "u@x.com",
		Course:         "X",
		ModeOfLearning: "virtual",
		PaymentOption:  "installment",
	})
	require.Equal(t, StateConfirming, out.State)
	require.Contains(t, out.Summary, SummaryLine{Label: "Mode", Value: "virtual"})

	out = ctrl.Confirm(context.Background(), flow)
	require.Equal(t, "https://paystack.shop/pay/fixlab_virtual_enroll?registration_id=77", out.RedirectURL)
	require.Nil(t, out.CacheDraft)
	require.Equal(t, "Ada", reg.submitted[0].FullName)
}

func TestConfirmRejectionSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{submitErr: &apperr.ServerRejection{Op: "submit_registration", Message: "Email already used."}}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewRegistration)
	ctrl.Submit(context.Background(), flow, newRegistrationDraft())
	out := ctrl.Confirm(context.Background(), flow)

	require.Equal(t, StateFailed, out.State)
	require.Equal(t, apperr.KindRejected, out.Kind)
	require.Equal(t, "Email already used.", out.Message)
	require.False(t, out.Redirects())
}

func TestCancelReturnsToIdle(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	ctrl := newTestController(t, reg)

	flow := ctrl.NewFlow(form.ActionNewRegistration)
	ctrl.Submit(context.Background(), flow, newRegistrationDraft())
	require.True(t, flow.Pending())

	out := ctrl.Cancel(flow)
	require.Equal(t, StateIdle, out.State)
	require.False(t, flow.Pending())
	require.Empty(t, reg.submitted)
}

func TestAbandonDropsPendingFlow(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	ctrl := newTestController(t, reg)
	flow := ctrl.NewFlow(form.ActionNewRegistration)
	ctrl.Submit(context.Background(), flow, newRegistrationDraft())
	require.True(t, flow.Pending())

	out := ctrl.Abandon(context.Background(), flow, errors.New("cookie too large"))
	require.Equal(t, StateIdle, out.State)
	require.Equal(t, ToneError, out.Tone)
	require.Equal(t, MsgCannotHold, out.Message)
	require.False(t, flow.Pending())
	require.Empty(t, out.Summary)

	require.Equal(t, MsgNothingToConfirm, ctrl.Confirm(context.Background(), flow).Message)
	require.Empty(t, reg.submitted)
}

func TestFlowSurvivesJSON(t *testing.T) {
	t.Parallel()

	ctrl := newTestController(t, &fakeRegistry{})
	flow := ctrl.NewFlow(form.ActionNewRegistration)
	ctrl.Submit(context.Background(), flow, newRegistrationDraft())

	raw, err := json.Marshal(flow)
	require.NoError(t, err)
	var back Flow
	require.NoError(t, json.Unmarshal(raw, &back))
	require.True(t, back.Pending())
	require.Equal(t, flow.Draft, back.Draft)
	require.NotContains(t, string(raw), "history")
	require.Empty(t, back.States())
}

func TestVerifyPayment(t *testing.T) {
	t.Parallel()

	t.Run("missing reference", func(t *testing.T) {
		t.Parallel()

		reg := &fakeRegistry{}
		out := newTestController(t, reg).VerifyPayment(context.Background(), form.PaymentReturn{}, nil)
		require.Equal(t, StateFailed, out.State)
		require.Equal(t, MsgMissingReference, out.Message)
		require.Equal(t, PathRegister, out.RedirectURL)
		require.Empty(t, reg.verified)
	})

	t.Run("success clears draft", func(t *testing.T) {
		t.Parallel()

		reg := &fakeRegistry{verify: remote.VerifyResult{Message: "Thanks"}}
		cached := newRegistrationDraft()
		out := newTestController(t, reg).VerifyPayment(context.Background(),
			form.PaymentReturn{Reference: "T123", RegistrationID: "9"}, &cached)
		require.Equal(t, StateRedirecting, out.State)
		require.True(t, out.ClearDraft)
		require.Equal(t, PathHome, out.RedirectURL)
		require.Equal(t, "Thanks", out.Message)
		require.Equal(t, "Payment Verified & Registration Complete", out.Title)
		require.Equal(t, []remote.VerifyRequest{{Reference: "T123", RegistrationID: "9"}}, reg.verified)
	})

	t.Run("rejection stays on page", func(t *testing.T) {
		t.Parallel()

		reg := &fakeRegistry{verifyErr: &apperr.ServerRejection{Op: "verify_payment", Message: "Transaction not found"}}
		out := newTestController(t, reg).VerifyPayment(context.Background(), form.PaymentReturn{Reference: "T1"}, nil)
		require.Equal(t, StateFailed, out.State)
		require.Equal(t, "Transaction not found", out.Message)
		require.False(t, out.ClearDraft)
		require.Empty(t, out.RedirectURL)
	})
}
