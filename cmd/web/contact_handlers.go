package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
	"github.com/fixlabtech/fixlab-technologies/internal/validate"
)

const (
	msgSubscribeFailed = "Unable to subscribe at the moment."
	msgContactSent     = "Message sent successfully!"
	msgContactOffline  = "Failed to connect to server."
	msgPageNotFound    = "The page you are looking for does not exist."
)

// NewsletterHandler subscribes the footer email address.
func (a *app) NewsletterHandler(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := form.ReadNewsletter(pc)
	if err := validate.Newsletter(email); err != nil {
		a.respondNotice(w, r, statusFor(apperr.KindOf(err)), "Newsletter", NoticeView{Tone: "warning", Message: apperr.UserMessage(err)})
		return
	}
	res, err := a.blog.SubscribeNewsletter(r.Context(), pc.Cookie(remoteCSRFCookie), email)
	if err != nil {
		observability.FromContext(r.Context()).Warn("newsletter subscribe failed", observability.Email("email", email), zap.Error(err))
		a.respondNotice(w, r, statusFor(apperr.KindOf(err)), "Newsletter", NoticeView{Tone: "error", Message: msgSubscribeFailed})
		return
	}
	a.respondNotice(w, r, http.StatusOK, "Newsletter", newsletterNotice(res))
}

// newsletterNotice maps the subscription status to a tone.
func newsletterNotice(res remote.NewsletterResult) NoticeView {
	n := NoticeView{Tone: "error", Message: res.Message}
	switch res.Status {
	case remote.NewsletterExists:
		n.Tone = "info"
	case remote.NewsletterSubscribed, remote.NewsletterResubscribed:
		n.Tone = "success"
	}
	if n.Message == "" {
		n.Message = msgSubscribeFailed
		if n.Tone != "error" {
			n.Message = "Thank you for subscribing!"
		}
	}
	return n
}

// ContactHandler relays the contact form.
func (a *app) ContactHandler(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	msg := form.ReadContact(pc)
	if err := validate.Contact(msg); err != nil {
		a.respondNotice(w, r, statusFor(apperr.KindOf(err)), "Contact", NoticeView{Tone: "warning", Message: apperr.UserMessage(err)})
		return
	}
	if err := a.blog.SubmitContact(r.Context(), msg); err != nil {
		observability.FromContext(r.Context()).Warn("contact submit failed", observability.Email("email", msg.Email), zap.Error(err))
		notice := NoticeView{Tone: "error", Message: msgContactOffline}
		if apperr.KindOf(err) == apperr.KindRejected {
			notice.Message = apperr.UserMessage(err)
		}
		a.respondNotice(w, r, statusFor(apperr.KindOf(err)), "Contact", notice)
		return
	}
	a.respondNotice(w, r, http.StatusOK, "Contact", NoticeView{Tone: "success", Message: msgContactSent})
}

// NotFoundHandler renders the 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	a.renderNotice(w, r, http.StatusNotFound, "Page not found", NoticeView{Tone: "error", Message: msgPageNotFound})
}

// respondNotice renders the notice fragment for htmx and a notice page otherwise.
func (a *app) respondNotice(w http.ResponseWriter, r *http.Request, status int, title string, n NoticeView) {
	if mw.IsHTMX(r.Context()) {
		a.renderTemplate(w, r, status, "notice", n)
		return
	}
	a.renderNotice(w, r, status, title, n)
}

func (a *app) renderNotice(w http.ResponseWriter, r *http.Request, status int, title string, n NoticeView) {
	vm := a.page(r, title, n.Message)
	vm.SEO.Robots = "noindex"
	vm.Notice = n
	a.renderPage(w, r, status, "notice", vm)
}
