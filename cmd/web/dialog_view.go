package main

import (
	"github.com/fixlabtech/fixlab-technologies/internal/workflow"
)

// DialogView is the modal shown in the #dialog slot.
type DialogView struct {
	Tone    string
	Title   string
	Message string
	Summary []workflow.SummaryLine
	// Confirm shows the Proceed/Cancel pair instead of a single OK button.
	Confirm   bool
	CSRFToken string
	// Link turns the OK button into a link.
	Link      string
	LinkLabel string
	// Choices replaces the buttons with navigation choices.
	Choices []ChooserOption
}

// NoticeView is an inline status message under a form.
type NoticeView struct {
	Tone    string
	Message string
}

// ChooserOption is one welcome-dialog button.
type ChooserOption struct {
	Label string
	Href  string
}

// buildChooserView is the welcome dialog asking who the visitor is.
func buildChooserView() DialogView {
	return DialogView{
		Tone:    workflow.ToneQuestion,
		Title:   "Welcome!",
		Message: "Are you a new student or already registered?",
		Choices: []ChooserOption{
			{Label: "New Student", Href: workflow.PathRegister},
			{Label: "Already Registered", Href: workflow.PathAlreadyRegistered},
		},
	}
}

// buildDialogView turns a workflow outcome into the dialog view model.
func buildDialogView(out workflow.Outcome, csrf string) DialogView {
	v := DialogView{
		Tone:      out.Tone,
		Title:     out.Title,
		Message:   out.Message,
		Summary:   out.Summary,
		Confirm:   out.State == workflow.StateConfirming,
		CSRFToken: csrf,
		Link:      out.RedirectURL,
		LinkLabel: linkLabel(out.RedirectURL),
	}
	if v.Confirm && v.Message == "" {
		v.Message = "Do you want to proceed to payment?"
	}
	return v
}

func linkLabel(target string) string {
	switch target {
	case "":
		return ""
	case workflow.PathAlreadyRegistered:
		return "Go to Already Registered"
	case workflow.PathRegister:
		return "Go to Registration"
	case workflow.PathHome:
		return "Return Home"
	default:
		return "Continue"
	}
}
