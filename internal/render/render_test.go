package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
)

func TestBodyHTMLSanitizes(t *testing.T) {
	t.Parallel()

	out := string(BodyHTML(`<p onclick="x()">Hello <script>alert(1)</script><a href="https://fixlabtech.com">site</a></p>`))
	require.NotContains(t, out, "script")
	require.NotContains(t, out, "onclick")
	require.Contains(t, out, `rel="nofollow"`)
	require.Contains(t, out, "Hello")
}

func TestBodyHTMLRendersMarkdown(t *testing.T) {
	t.Parallel()

	out := string(BodyHTML("## Intro\n\nLearn **Python** fast."))
	require.Contains(t, out, "<h2")
	require.Contains(t, out, "<strong>Python</strong>")
	require.Empty(t, BodyHTML("   "))
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Short body...", Excerpt("<p>Short <em>body</em></p>", ExcerptLength))
	require.Empty(t, Excerpt("", ExcerptLength))

	long := strings.Repeat("é", 200)
	got := Excerpt(long, ExcerptLength)
	require.Equal(t, ExcerptLength+3, len([]rune(got)))
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestPlainTextSeparatesBlocks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "One Two", PlainText("<p>One</p><p>Two</p>"))
	require.Equal(t, "Title body", PlainText("# Title\n\nbody"))
}

func TestSplitMiddle(t *testing.T) {
	t.Parallel()

	before, after := SplitMiddle("one two three four")
	require.Contains(t, string(before), "one two")
	require.NotContains(t, string(before), "three")
	require.Contains(t, string(after), "three four")

	before, after = SplitMiddle("<p>a</p><p>b</p><p>c</p><p>d</p>")
	require.Equal(t, "<p>a</p><p>b</p>", string(before))
	require.Equal(t, "<p>c</p><p>d</p>", string(after))
}

func TestListingStateURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/blog", ListingState{Page: 1}.URL())
	require.Equal(t, "/blog?search=cyber+security", ListingState{Page: 1, Search: " cyber security "}.URL())
	require.Equal(t, "/blog?category=3&page=2", ListingState{Page: 2, Category: "3"}.URL())

	st := StateFromListing(form.Listing{Page: 0, Tag: "go"})
	require.Equal(t, 1, st.Page)
	require.Equal(t, remote.ListOptions{Page: 1, Tag: "go"}, st.Options())
}

func TestPager(t *testing.T) {
	t.Parallel()

	require.Empty(t, Pager(ListingState{Page: 1}, remote.Pagination{}).Links)

	st := ListingState{Page: 2, Search: "python"}
	pager := Pager(st, remote.Pagination{Count: 30, Next: "n", Previous: "p"})
	require.Equal(t, []PageLink{
		{Label: "Prev", URL: "/blog?search=python"},
		{Label: "2", URL: "/blog?page=2&search=python", Active: true},
		{Label: "Next", URL: "/blog?page=3&search=python"},
	}, pager.Links)
}

func TestPostCardDefaults(t *testing.T) {
	t.Parallel()

	card := PostCard(remote.Post{ID: 4, Content: "Body", CreatedAt: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), CommentsCount: 2})
	require.Equal(t, "/blog/4", card.URL)
	require.Equal(t, "No Title", card.Title)
	require.Equal(t, DefaultImage, card.Image)
	require.Equal(t, "Unknown", card.Author)
	require.Equal(t, "9", card.Day)
	require.Equal(t, "Jan", card.Month)
	require.Equal(t, "2 Comments", card.Comments)
	require.Equal(t, "Body...", card.Excerpt)
}

func TestListingEmptyStates(t *testing.T) {
	t.Parallel()

	v := Listing(ListingState{Page: 1, Search: "rust"}, remote.BlogPage{})
	require.Equal(t, `No blog posts found for "rust"`, v.Empty)
	require.Equal(t, MsgNoPosts, Listing(ListingState{Page: 1}, remote.BlogPage{}).Empty)
}

func TestRecentPostsKeepsFive(t *testing.T) {
	t.Parallel()

	posts := make([]remote.Post, 8)
	for i := range posts {
		posts[i] = remote.Post{ID: int64(i + 1), Title: "p"}
	}
	recent := RecentPosts(posts)
	require.Len(t, recent, RecentLimit)
	require.Equal(t, "/blog/1", recent[0].URL)
}

func TestCategoryAndTagLinks(t *testing.T) {
	t.Parallel()

	cat := CategoryLink(remote.Category{ID: 3, Name: "Security", BlogCount: 4}, ListingState{Category: "3"})
	require.Equal(t, "/blog?category=3", cat.URL)
	require.True(t, cat.Active)
	require.Equal(t, 4, cat.Count)

	require.Equal(t, "/blog?search=Go", TagLink(remote.Tag{Name: "Go"}).URL)
}

func TestPostDetail(t *testing.T) {
	t.Parallel()

	v := PostDetail(remote.Post{
		ID:       7,
		Title:    "Hello",
		Excerpt:  "Quote me",
		Content:  "alpha beta gamma delta",
		Category: &remote.Category{Name: "News"},
		Tags:     []remote.Tag{{Name: "go"}},
		Comments: []remote.Comment{{Name: "Ada", Content: "<b>Nice</b> post"}},
	})
	require.Equal(t, "Quote me", v.PullQuote)
	require.Equal(t, "News", v.Category)
	require.Contains(t, string(v.Before), "alpha beta")
	require.Contains(t, string(v.After), "gamma delta")
	require.Equal(t, "1 Comment", v.Comments.Count)
	require.Equal(t, "Nice post", v.Comments.Items[0].Content)
	require.Empty(t, v.Comments.Empty)

	empty := PostDetail(remote.Post{ID: 8})
	require.Equal(t, MsgNoContent, empty.Empty)
	require.Equal(t, MsgNoComments, empty.Comments.Empty)
	require.Equal(t, "0 Comments", empty.Comments.Count)
}
