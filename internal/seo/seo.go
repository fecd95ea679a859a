package seo

import "html/template"

// SiteName is used in titles and structured data.
const SiteName = "Fixlab Technologies"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Image string
}

// Meta is the head metadata rendered by the base layout.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []template.JS
}

// Page fills title, description, canonical URL and the social cards from one set of values.
func Page(title, description, canonical, image string) Meta {
	full := SiteName
	if title != "" && title != SiteName {
		full = title + " | " + SiteName
	}
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    SiteName,
		},
		Twitter: Twitter{Card: "summary_large_image", Image: image},
	}
}

// Add appends a JSON-LD document.
func (m *Meta) Add(v map[string]any) {
	if js := JSON(v); js != "" {
		m.JSONLD = append(m.JSONLD, js)
	}
}
