package handlers

import (
	"github.com/fixlabtech/fixlab-technologies/internal/nav"
	"github.com/fixlabtech/fixlab-technologies/internal/seo"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// CSRFToken is embedded in every form and in the htmx request headers.
	CSRFToken string
	// SearchTrigger is the hx-trigger of the blog search box.
	SearchTrigger string

	// Dialog is rendered open when a non-htmx post needs to show an outcome.
	Dialog any
	// Notice is the message of a plain status page.
	Notice any

	// Optional per-page view model payloads
	Home     any
	Register any
	Already  any
	Blog     any
	Post     any
	Payment  any
}
