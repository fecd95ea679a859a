package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v to compact JSON for a ld+json script block. It returns an empty value on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Organization returns an EducationalOrganization schema for the site owner.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "EducationalOrganization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a WebSite schema whose SearchAction points at the blog search.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// CourseOffer is one course as listed in the registration form.
type CourseOffer struct {
	Name     string
	Mode     string
	Price    int64
	Currency string
}

// CourseList returns an ItemList of Course entries with their full price.
func CourseList(provider string, courses []CourseOffer) map[string]any {
	el := make([]map[string]any, 0, len(courses))
	for i, c := range courses {
		course := map[string]any{
			"@type":    "Course",
			"name":     c.Name,
			"provider": map[string]any{"@type": "Organization", "name": provider},
		}
		if c.Mode != "" {
			course["hasCourseInstance"] = map[string]any{"@type": "CourseInstance", "courseMode": c.Mode}
		}
		if c.Price > 0 {
			course["offers"] = map[string]any{"@type": "Offer", "price": c.Price, "priceCurrency": c.Currency, "category": "Paid"}
		}
		el = append(el, map[string]any{"@type": "ListItem", "position": i + 1, "item": course})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": el,
	}
}

// Article returns a minimal BlogPosting schema payload.
func Article(headline, url, imageURL, authorName, datePublished string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if authorName != "" {
		m["author"] = map[string]any{"@type": "Person", "name": authorName}
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	return m
}
