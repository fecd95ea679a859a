package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActiveSection(t *testing.T) {
	t.Parallel()

	items := Build("/blog/12")
	active := map[string]bool{}
	for _, it := range items {
		active[it.Href] = it.Active
	}
	require.True(t, active["/blog"])
	require.False(t, active["/"])
	require.False(t, active["/register"])

	items = Build("")
	require.True(t, items[0].Active)
}

func TestBuildDoesNotMatchSiblingPrefix(t *testing.T) {
	t.Parallel()

	for _, it := range Build("/registered") {
		require.False(t, it.Active, it.Href)
	}
}

func TestBreadcrumbs(t *testing.T) {
	t.Parallel()

	crumbs := Breadcrumbs("/blog/12", "Learning Python")
	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/blog", Label: "Blog"},
		{Href: "/blog/12", Label: "Learning Python", Active: true},
	}, crumbs)

	crumbs = Breadcrumbs("/payment-success", "")
	require.Len(t, crumbs, 2)
	require.Equal(t, "Payment success", crumbs[1].Label)
	require.True(t, crumbs[1].Active)
}
