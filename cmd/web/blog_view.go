package main

import (
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	"github.com/fixlabtech/fixlab-technologies/internal/render"
)

// Blog copy shown when a section could not be loaded.
const (
	msgBlogsUnavailable      = "Unable to load blogs. Please try again later."
	msgCategoriesUnavailable = "Unable to load categories"
	msgTagsUnavailable       = "Unable to load tags"
	msgRecentUnavailable     = "Unable to load recent posts"
	msgPostUnavailable       = "Failed to load blog post."
	msgNoPostSelected        = "No blog post selected."
	msgCommentFailed         = "Failed to post comment."
	msgCommentPosted         = "Comment posted successfully!"
)

// BlogListView is the swappable #blog-list region.
type BlogListView struct {
	render.ListingView
	Error string
}

// SidebarView is the blog sidebar: search, categories, tags and recent posts.
type SidebarView struct {
	// ListTarget is set on the listing page, where search and the sidebar
	// links swap #blog-list instead of loading a new page.
	ListTarget      bool
	Search          string
	SearchTrigger   string
	Categories      []render.CategoryView
	CategoriesError string
	Tags            []render.TagView
	TagsEmpty       string
	TagsError       string
	Recent          []render.RecentPostView
	RecentEmpty     string
	RecentError     string
}

// BlogPageView is the listing page.
type BlogPageView struct {
	List    BlogListView
	Sidebar SidebarView
}

// CommentsSection is the swappable #comments region with its form.
type CommentsSection struct {
	render.CommentsView
	Notice    *NoticeView
	Form      form.Comment
	CSRFToken string
}

// PostPageView is the detail page.
type PostPageView struct {
	Post     render.PostDetailView
	Comments CommentsSection
	Sidebar  SidebarView
}
