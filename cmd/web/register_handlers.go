package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/handlers"
	"github.com/fixlabtech/fixlab-technologies/internal/metrics"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/seo"
	"github.com/fixlabtech/fixlab-technologies/internal/workflow"
)

const (
	pageRegister          = "register"
	pageAlreadyRegistered = "already_registered"
)

// HomeHandler renders the landing page. The welcome chooser opens on load.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	a.renderHome(w, r, nil)
}

// ChooserHandler renders the welcome chooser dialog.
func (a *app) ChooserHandler(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, http.StatusOK, "dialog", buildChooserView())
		return
	}
	a.renderHome(w, r, buildChooserView())
}

func (a *app) renderHome(w http.ResponseWriter, r *http.Request, dialog any) {
	vm := a.page(r, seo.SiteName, "Register for hands-on cybersecurity, programming, hardware and multimedia courses.")
	vm.Home = handlers.BuildHomeData(a.catalog.Modes())
	vm.Dialog = dialog
	vm.SEO.Add(seo.Organization(seo.SiteName, siteURL(r), siteURL(r)+"/assets/img/logo.svg"))
	vm.SEO.Add(seo.WebSite(seo.SiteName, siteURL(r), siteURL(r)+"/blog?search="))
	a.renderPage(w, r, http.StatusOK, "home", vm)
}

// RegisterHandler renders the new-student form.
func (a *app) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	a.renderRegister(w, r, http.StatusOK, form.RegistrationDraft{}, nil)
}

// AlreadyRegisteredHandler renders the returning-student form.
func (a *app) AlreadyRegisteredHandler(w http.ResponseWriter, r *http.Request) {
	a.renderAlreadyRegistered(w, r, http.StatusOK, form.RegistrationDraft{}, "", nil)
}

// CourseOptionsFrag renders the course <option> list for the selected mode.
func (a *app) CourseOptionsFrag(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	mode := pc.Query("mode", "newMode")
	selected := pc.Query("course", "newCourse")
	a.renderTemplate(w, r, http.StatusOK, "course_options", handlers.CourseOptions(a.catalog.Courses(mode), selected))
}

// RegisterSubmitHandler runs Submit for a new registration.
func (a *app) RegisterSubmitHandler(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	a.submit(w, r, form.ActionNewRegistration, form.ReadRegistration(pc))
}

// AlreadyRegisteredSubmitHandler runs Submit for installment or new-course requests.
func (a *app) AlreadyRegisteredSubmitHandler(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	d, action := form.ReadAlreadyRegistered(pc)
	a.submit(w, r, action, d)
}

func (a *app) submit(w http.ResponseWriter, r *http.Request, action form.Action, d form.RegistrationDraft) {
	sess := mw.GetSession(r)
	flow := a.controller.NewFlow(action)
	out := a.controller.Submit(r.Context(), flow, d)
	switch {
	case flow.Pending():
		if err := sess.HoldFlow(flow); err != nil {
			metrics.IncStateWriteFailure("session")
			out = a.controller.Abandon(r.Context(), flow, err)
		}
	case sess.Flow != nil:
		sess.ClearFlow()
	}
	a.respondOutcome(w, r, action, d, out)
}

// ConfirmHandler submits the pending registration and follows the redirect strategy.
func (a *app) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	flow := sess.Flow
	out := a.controller.Confirm(r.Context(), flow)
	if flow != nil {
		sess.ClearFlow()
	}
	if !out.Redirects() {
		action, d := form.ActionNewRegistration, form.RegistrationDraft{}
		if flow != nil {
			action, d = flow.Action, flow.Draft
		}
		a.respondOutcome(w, r, action, d, out)
		return
	}
	// The registration is already recorded. A lost draft only drops the payment summary.
	if out.CacheDraft != nil {
		if err := a.drafts.Save(w, r, *out.CacheDraft); err != nil {
			metrics.IncStateWriteFailure("draft")
			observability.FromContext(r.Context()).Error("draft cache save failed",
				zap.String("redirect", out.RedirectURL), zap.Error(err))
		}
	}
	mw.Redirect(w, r, out.RedirectURL)
}

// CancelHandler drops the pending confirmation and closes the dialog.
func (a *app) CancelHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	flow := sess.Flow
	a.controller.Cancel(flow)
	target := workflow.PathRegister
	if flow != nil {
		target = formPath(flow.Action)
		sess.ClearFlow()
	}
	if mw.IsHTMX(r.Context()) {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// respondOutcome shows the outcome dialog: as a fragment for htmx, otherwise
// inside the form page with the submitted values kept.
func (a *app) respondOutcome(w http.ResponseWriter, r *http.Request, action form.Action, d form.RegistrationDraft, out workflow.Outcome) {
	dialog := buildDialogView(out, mw.CSRFToken(r))
	status := statusFor(out.Kind)
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, status, "dialog", dialog)
		return
	}
	if action == form.ActionNewRegistration {
		a.renderRegister(w, r, status, d, dialog)
		return
	}
	a.renderAlreadyRegistered(w, r, status, d, action, dialog)
}

func (a *app) renderRegister(w http.ResponseWriter, r *http.Request, status int, d form.RegistrationDraft, dialog any) {
	vm := a.page(r, "Register", "Enroll in a Fixlab course online or onsite and pay securely.")
	vm.Register = buildRegisterView(a.catalog, d)
	vm.Dialog = dialog
	vm.SEO.Add(seo.CourseList(seo.SiteName, courseOffers(a.catalog)))
	a.renderPage(w, r, status, pageRegister, vm)
}

func (a *app) renderAlreadyRegistered(w http.ResponseWriter, r *http.Request, status int, d form.RegistrationDraft, action form.Action, dialog any) {
	vm := a.page(r, "Already Registered", "Pay your remaining installment or enroll in another course.")
	vm.Already = buildAlreadyRegisteredView(a.catalog, d, action)
	vm.Dialog = dialog
	a.renderPage(w, r, status, pageAlreadyRegistered, vm)
}

func formPath(action form.Action) string {
	if action == form.ActionNewRegistration {
		return workflow.PathRegister
	}
	return workflow.PathAlreadyRegistered
}
