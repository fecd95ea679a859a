package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/format"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
)

// DefaultImage is shown for posts without an image.
const DefaultImage = "/assets/img/blog/default.svg"

// RecentLimit is the number of posts in the recent-posts widget.
const RecentLimit = 5

// Empty states.
const (
	MsgNoPosts    = "No blog posts found"
	MsgNoComments = "No comments yet. Be the first!"
	MsgNoTags     = "No tags found."
	MsgNoRecent   = "No recent posts."
	MsgNoContent  = "No content available."
)

const (
	blogPath      = "/blog"
	defaultTitle  = "No Title"
	defaultAuthor = "Unknown"
	commentSingle = "Comment"
	commentPlural = "Comments"
)

// ListingState is the listing's page, query and filters.
type ListingState struct {
	Page     int
	Search   string
	Category string
	Tag      string
}

// StateFromListing converts a form reading into a ListingState.
func StateFromListing(l form.Listing) ListingState {
	st := ListingState{Page: l.Page, Search: l.Search, Category: l.Category, Tag: l.Tag}
	if st.Page < 1 {
		st.Page = 1
	}
	return st
}

// Query encodes the state; page 1 is omitted.
func (s ListingState) Query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if v := strings.TrimSpace(s.Search); v != "" {
		q.Set("search", v)
	}
	if v := strings.TrimSpace(s.Category); v != "" {
		q.Set("category", v)
	}
	if v := strings.TrimSpace(s.Tag); v != "" {
		q.Set("tag", v)
	}
	return q
}

// URL returns the shareable listing location.
func (s ListingState) URL() string {
	if q := s.Query().Encode(); q != "" {
		return blogPath + "?" + q
	}
	return blogPath
}

// WithPage returns a copy of s on page n.
func (s ListingState) WithPage(n int) ListingState {
	s.Page = n
	return s
}

// Options converts the state into remote listing options.
func (s ListingState) Options() remote.ListOptions {
	return remote.ListOptions{Page: s.Page, Search: s.Search, Category: s.Category, Tag: s.Tag}
}

// PostCardView is one entry of the listing.
type PostCardView struct {
	ID       int64
	URL      string
	Title    string
	Image    string
	Excerpt  string
	Author   string
	Day      string
	Month    string
	Comments string
}

// PostCard builds the listing card for p.
func PostCard(p remote.Post) PostCardView {
	return PostCardView{
		ID:       p.ID,
		URL:      PostURL(p.ID),
		Title:    orDefault(p.Title, defaultTitle),
		Image:    orDefault(p.Image, DefaultImage),
		Excerpt:  Excerpt(p.Content, ExcerptLength),
		Author:   orDefault(p.Author, defaultAuthor),
		Day:      format.Day(p.CreatedAt),
		Month:    format.MonthShort(p.CreatedAt),
		Comments: format.Plural(p.CommentsCount, commentSingle, commentPlural),
	}
}

// PostURL is the detail page of post id.
func PostURL(id int64) string {
	return fmt.Sprintf("%s/%d", blogPath, id)
}

// CommentView is one rendered comment.
type CommentView struct {
	Name    string
	Content string
	Date    string
}

// CommentItem builds the view of one comment.
func CommentItem(c remote.Comment) CommentView {
	return CommentView{
		Name:    orDefault(c.Name, "Anonymous"),
		Content: CommentText(c.Content),
		Date:    format.Date(c.CreatedAt),
	}
}

// CommentsView is the comment list with its heading.
type CommentsView struct {
	PostID int64
	Count  string
	Items  []CommentView
	Empty  string
}

// Comments builds the comment list of post id.
func Comments(id int64, comments []remote.Comment) CommentsView {
	v := CommentsView{PostID: id, Count: format.Plural(len(comments), commentSingle, commentPlural)}
	for _, c := range comments {
		v.Items = append(v.Items, CommentItem(c))
	}
	if len(v.Items) == 0 {
		v.Empty = MsgNoComments
	}
	return v
}

// CategoryView is one entry of the category sidebar.
type CategoryView struct {
	Name   string
	Count  int
	URL    string
	Active bool
}

// CategoryLink builds a category filter link. Selecting a category resets
// the page and the search.
func CategoryLink(c remote.Category, current ListingState) CategoryView {
	id := strconv.FormatInt(c.ID, 10)
	return CategoryView{
		Name:   c.Name,
		Count:  c.BlogCount,
		URL:    ListingState{Page: 1, Category: id}.URL(),
		Active: current.Category == id,
	}
}

// TagView is one entry of the tag cloud.
type TagView struct {
	Name string
	URL  string
}

// TagLink builds a tag link. A tag click searches for the tag name.
func TagLink(t remote.Tag) TagView {
	return TagView{Name: t.Name, URL: ListingState{Page: 1, Search: t.Name}.URL()}
}

// RecentPostView is one entry of the recent-posts widget.
type RecentPostView struct {
	Title string
	URL   string
	Image string
	Date  string
}

// RecentPost builds one recent-posts entry.
func RecentPost(p remote.Post) RecentPostView {
	return RecentPostView{
		Title: orDefault(p.Title, defaultTitle),
		URL:   PostURL(p.ID),
		Image: orDefault(p.Image, DefaultImage),
		Date:  format.Date(p.CreatedAt),
	}
}

// RecentPosts keeps the first RecentLimit posts.
func RecentPosts(posts []remote.Post) []RecentPostView {
	if len(posts) > RecentLimit {
		posts = posts[:RecentLimit]
	}
	out := make([]RecentPostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, RecentPost(p))
	}
	return out
}

// PageLink is one pager entry.
type PageLink struct {
	Label  string
	URL    string
	Active bool
}

// PagerView is the listing pager. Links is empty when there is nothing to page.
type PagerView struct {
	Links []PageLink
}

// Pager builds prev/current/next links that carry the query and filters.
func Pager(st ListingState, p remote.Pagination) PagerView {
	if p.Count == 0 {
		return PagerView{}
	}
	page := st.Page
	if page < 1 {
		page = 1
	}
	var links []PageLink
	if p.Previous != "" && page > 1 {
		links = append(links, PageLink{Label: "Prev", URL: st.WithPage(page - 1).URL()})
	}
	links = append(links, PageLink{Label: strconv.Itoa(page), URL: st.WithPage(page).URL(), Active: true})
	if p.Next != "" {
		links = append(links, PageLink{Label: "Next", URL: st.WithPage(page + 1).URL()})
	}
	return PagerView{Links: links}
}

// ListingView is the post list fragment.
type ListingView struct {
	State ListingState
	Cards []PostCardView
	Pager PagerView
	Empty string
}

// Listing builds the post list for one page.
func Listing(st ListingState, page remote.BlogPage) ListingView {
	v := ListingView{State: st, Pager: Pager(st, page.Pagination)}
	for _, p := range page.Posts {
		v.Cards = append(v.Cards, PostCard(p))
	}
	if len(v.Cards) == 0 {
		v.Empty = EmptyListing(st.Search)
	}
	return v
}

// EmptyListing is the message for a listing with no posts.
func EmptyListing(search string) string {
	if q := strings.TrimSpace(search); q != "" {
		return MsgNoPosts + ` for "` + q + `"`
	}
	return MsgNoPosts
}

// PostDetailView is the detail page body.
type PostDetailView struct {
	ID        int64
	Title     string
	Image     string
	Author    string
	Date      string
	Category  string
	Tags      []TagView
	Before    template.HTML
	After     template.HTML
	PullQuote string
	Empty     string
	Comments  CommentsView
}

// PostDetail builds the detail page. The body is split at its middle with
// the excerpt shown between the halves.
func PostDetail(p remote.Post) PostDetailView {
	v := PostDetailView{
		ID:        p.ID,
		Title:     orDefault(p.Title, defaultTitle),
		Image:     orDefault(p.Image, DefaultImage),
		Author:    orDefault(p.Author, defaultAuthor),
		Date:      format.Date(p.CreatedAt),
		PullQuote: strings.TrimSpace(p.Excerpt),
		Comments:  Comments(p.ID, p.Comments),
	}
	if p.Category != nil {
		v.Category = p.Category.Name
	}
	for _, t := range p.Tags {
		v.Tags = append(v.Tags, TagLink(t))
	}
	if strings.TrimSpace(p.Content) == "" {
		v.Empty = MsgNoContent
		return v
	}
	v.Before, v.After = SplitMiddle(p.Content)
	return v
}

func orDefault(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
