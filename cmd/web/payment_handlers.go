package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
)

// PaymentSuccessHandler verifies the payment the gateway redirected back with
// and shows the result. The cached draft only feeds the summary.
func (a *app) PaymentSuccessHandler(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}

	var cached *form.RegistrationDraft
	if d, ok, err := a.drafts.Load(r); err != nil {
		logger.Warn("draft cache load failed", zap.Error(err))
	} else if ok {
		cached = &d
	}

	out := a.controller.VerifyPayment(r.Context(), form.ReadPaymentReturn(pc), cached)
	if out.ClearDraft {
		if err := a.drafts.Clear(w, r); err != nil {
			logger.Warn("draft cache clear failed", zap.Error(err))
		}
	}

	vm := a.page(r, "Payment", "Payment confirmation for your Fixlab registration.")
	vm.SEO.Robots = "noindex"
	vm.Dialog = buildDialogView(out, mw.CSRFToken(r))
	vm.Payment = out
	a.renderPage(w, r, statusFor(out.Kind), "payment_success", vm)
}
