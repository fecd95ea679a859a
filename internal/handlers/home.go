package handlers

import (
	"strings"

	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/format"
)

// HomeData is the view model for the home page.
type HomeData struct {
	Headline string
	Message  string
	Modes    []ModeView
}

// ModeView is a learning mode with its priced courses.
type ModeView struct {
	ID      string
	Label   string
	Courses []CourseView
}

// CourseView is one course with display prices.
type CourseView struct {
	Name        string
	Full        string
	Installment string
}

// CourseOption is one <option> of the course select.
type CourseOption struct {
	Value    string
	Label    string
	Selected bool
}

// BuildHomeData constructs the landing page view model from the catalog.
func BuildHomeData(modes []catalog.Mode) HomeData {
	return HomeData{
		Headline: "Learn practical tech skills with Fixlab",
		Message:  "Cybersecurity, programming, hardware and multimedia courses, online or onsite.",
		Modes:    ModeViews(modes),
	}
}

// ModeViews formats every mode and course of the catalog.
func ModeViews(modes []catalog.Mode) []ModeView {
	out := make([]ModeView, 0, len(modes))
	for _, m := range modes {
		mv := ModeView{ID: m.ID, Label: m.Label}
		for _, c := range m.Courses {
			mv.Courses = append(mv.Courses, CourseView{
				Name:        c.Name,
				Full:        format.Naira(c.FullPrice),
				Installment: format.Naira(c.InstallmentPrice),
			})
		}
		out = append(out, mv)
	}
	return out
}

// CourseOptions lists the courses of one mode as select options. An empty or
// unknown mode yields only the placeholder.
func CourseOptions(courses []catalog.Course, selected string) []CourseOption {
	opts := []CourseOption{{Value: "", Label: "Select a course", Selected: selected == ""}}
	for _, c := range courses {
		opts = append(opts, CourseOption{
			Value:    c.Name,
			Label:    c.Name + " (" + format.Naira(c.FullPrice) + " full / " + format.Naira(c.InstallmentPrice) + " installment)",
			Selected: strings.EqualFold(c.Name, selected),
		})
	}
	return opts
}
