package main

import (
	"strings"

	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/handlers"
	"github.com/fixlabtech/fixlab-technologies/internal/seo"
)

// Option is one entry of a plain select.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// RegisterView backs the new-student form.
type RegisterView struct {
	Draft          form.RegistrationDraft
	Genders        []Option
	Modes          []Option
	Courses        []handlers.CourseOption
	PaymentOptions []Option
}

// AlreadyRegisteredView backs the returning-student form.
type AlreadyRegisteredView struct {
	Email          string
	Message        string
	Actions        []Option
	NewCourse      bool
	Modes          []Option
	Courses        []handlers.CourseOption
	PaymentOptions []Option
}

func buildRegisterView(cat *catalog.Catalog, d form.RegistrationDraft) RegisterView {
	return RegisterView{
		Draft: d,
		Genders: selectOptions(d.Gender, []Option{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
		}),
		Modes:          modeOptions(cat, d.ModeOfLearning),
		Courses:        handlers.CourseOptions(cat.Courses(d.ModeOfLearning), d.Course),
		PaymentOptions: paymentOptions(d.PaymentOption),
	}
}

func buildAlreadyRegisteredView(cat *catalog.Catalog, d form.RegistrationDraft, action form.Action) AlreadyRegisteredView {
	return AlreadyRegisteredView{
		Email:   d.Email,
		Message: d.Message,
		Actions: selectOptions(string(action), []Option{
			{Value: string(form.ActionInstallment), Label: "Pay remaining installment"},
			{Value: string(form.ActionNewCourse), Label: "Enroll in a new course"},
		}),
		NewCourse:      action == form.ActionNewCourse,
		Modes:          modeOptions(cat, d.ModeOfLearning),
		Courses:        handlers.CourseOptions(cat.Courses(d.ModeOfLearning), d.Course),
		PaymentOptions: paymentOptions(d.PaymentOption),
	}
}

func modeOptions(cat *catalog.Catalog, selected string) []Option {
	modes := cat.Modes()
	opts := make([]Option, 0, len(modes))
	for _, m := range modes {
		opts = append(opts, Option{Value: m.ID, Label: m.Label})
	}
	return selectOptions(selected, opts)
}

func paymentOptions(selected string) []Option {
	return selectOptions(selected, []Option{
		{Value: catalog.PlanFull, Label: "Full payment"},
		{Value: catalog.PlanInstallment, Label: "Installment"},
	})
}

func selectOptions(selected string, opts []Option) []Option {
	for i := range opts {
		opts[i].Selected = strings.EqualFold(opts[i].Value, selected)
	}
	return opts
}

// courseOffers lists every catalog course for structured data.
func courseOffers(cat *catalog.Catalog) []seo.CourseOffer {
	var out []seo.CourseOffer
	for _, m := range cat.Modes() {
		courseMode := "onsite"
		if m.ID == "virtual" {
			courseMode = "online"
		}
		for _, c := range m.Courses {
			out = append(out, seo.CourseOffer{Name: c.Name, Mode: courseMode, Price: c.FullPrice, Currency: "NGN"})
		}
	}
	return out
}
