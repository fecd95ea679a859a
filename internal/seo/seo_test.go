package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageTitles(t *testing.T) {
	t.Parallel()

	m := Page("Blog", "Latest posts", "https://fixlabtech.com/blog", "")
	require.Equal(t, "Blog | Fixlab Technologies", m.Title)
	require.Equal(t, m.Title, m.OG.Title)
	require.Equal(t, "https://fixlabtech.com/blog", m.OG.URL)
	require.Equal(t, "summary_large_image", m.Twitter.Card)

	require.Equal(t, SiteName, Page(SiteName, "", "", "").Title)
}

func TestAddEncodesJSONLD(t *testing.T) {
	t.Parallel()

	var m Meta
	m.Add(Article("Learning Go", "https://fixlabtech.com/blog/3", "", "Ada", "2026-01-02"))
	m.Add(CourseList(SiteName, []CourseOffer{{Name: "Python Programming Online", Mode: "online", Price: 40000, Currency: "NGN"}}))
	require.Len(t, m.JSONLD, 2)

	var article map[string]any
	require.NoError(t, json.Unmarshal([]byte(m.JSONLD[0]), &article))
	require.Equal(t, "BlogPosting", article["@type"])
	require.Equal(t, "Ada", article["author"].(map[string]any)["name"])

	var list map[string]any
	require.NoError(t, json.Unmarshal([]byte(m.JSONLD[1]), &list))
	items := list["itemListElement"].([]any)
	require.Len(t, items, 1)
	course := items[0].(map[string]any)["item"].(map[string]any)
	require.Equal(t, "Python Programming Online", course["name"])
}

func TestBreadcrumbListPositions(t *testing.T) {
	t.Parallel()

	bl := BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: "/"}, {Name: "Blog", Item: "/blog"}})
	el := bl["itemListElement"].([]map[string]any)
	require.Equal(t, 2, el[1]["position"])
}
