package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/nav"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
	"github.com/fixlabtech/fixlab-technologies/internal/render"
	"github.com/fixlabtech/fixlab-technologies/internal/seo"
	"github.com/fixlabtech/fixlab-technologies/internal/validate"
)

// remoteCSRFCookie is the API's CSRF cookie, forwarded on comment and newsletter posts.
const remoteCSRFCookie = "csrftoken"

// searchInputID is the id of the search box. htmx sends it as HX-Trigger on
// every keystroke.
const searchInputID = "blog-search"

// blogSource is the remote API surface behind the blog, newsletter and contact pages.
type blogSource interface {
	ListBlogs(ctx context.Context, opts remote.ListOptions) (remote.BlogPage, error)
	GetBlog(ctx context.Context, id string) (remote.Post, error)
	ListComments(ctx context.Context, id string) ([]remote.Comment, error)
	ListCategories(ctx context.Context) ([]remote.Category, error)
	ListTags(ctx context.Context) ([]remote.Tag, error)
	SubmitComment(ctx context.Context, csrfToken, id string, c form.Comment) error
	SubscribeNewsletter(ctx context.Context, csrfToken, email string) (remote.NewsletterResult, error)
	SubmitContact(ctx context.Context, msg form.Contact) error
}

// BlogHandler renders the listing. Requests targeting #blog-list get the list
// fragment. Only a submitted search, the pager and the sidebar links update the
// address bar; typing in the search box does not.
func (a *app) BlogHandler(w http.ResponseWriter, r *http.Request) {
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	st := render.StateFromListing(form.ReadListing(pc))
	list, page := a.listing(r.Context(), st)

	if mw.IsHTMX(r.Context()) && r.Header.Get("HX-Target") == "blog-list" {
		if r.Header.Get("HX-Trigger") != searchInputID {
			mw.PushURL(w, st.URL())
		}
		a.renderTemplate(w, r, http.StatusOK, "blog_list", list)
		return
	}

	var recent []remote.Post
	if page != nil && st == render.StateFromListing(form.Listing{}) {
		recent = page.Posts
	}
	vm := a.page(r, "Blog", "News, tutorials and tips from the Fixlab Technologies team.")
	sidebar := a.sidebar(r.Context(), st, recent)
	sidebar.ListTarget = true
	vm.Blog = BlogPageView{List: list, Sidebar: sidebar}
	a.renderPage(w, r, http.StatusOK, "blog", vm)
}

func (a *app) listing(ctx context.Context, st render.ListingState) (BlogListView, *remote.BlogPage) {
	page, err := a.blog.ListBlogs(ctx, st.Options())
	if err != nil {
		observability.FromContext(ctx).Warn("list blogs failed", zap.Error(err))
		return BlogListView{ListingView: render.ListingView{State: st}, Error: msgBlogsUnavailable}, nil
	}
	return BlogListView{ListingView: render.Listing(st, page)}, &page
}

// sidebar loads the widgets. A failed widget shows its own message and never
// fails the page. recent, when non-nil, saves the recent-posts call.
func (a *app) sidebar(ctx context.Context, st render.ListingState, recent []remote.Post) SidebarView {
	logger := observability.FromContext(ctx)
	v := SidebarView{Search: st.Search, SearchTrigger: searchTrigger(a.cfg.UI.SearchDebounce)}

	if cats, err := a.blog.ListCategories(ctx); err != nil {
		logger.Warn("list categories failed", zap.Error(err))
		v.CategoriesError = msgCategoriesUnavailable
	} else {
		for _, c := range cats {
			v.Categories = append(v.Categories, render.CategoryLink(c, st))
		}
	}

	if tags, err := a.blog.ListTags(ctx); err != nil {
		logger.Warn("list tags failed", zap.Error(err))
		v.TagsError = msgTagsUnavailable
	} else {
		for _, t := range tags {
			v.Tags = append(v.Tags, render.TagLink(t))
		}
		if len(v.Tags) == 0 {
			v.TagsEmpty = render.MsgNoTags
		}
	}

	if recent == nil {
		page, err := a.blog.ListBlogs(ctx, remote.ListOptions{Page: 1})
		if err != nil {
			logger.Warn("list recent posts failed", zap.Error(err))
			v.RecentError = msgRecentUnavailable
			return v
		}
		recent = page.Posts
	}
	v.Recent = render.RecentPosts(recent)
	if len(v.Recent) == 0 {
		v.RecentEmpty = render.MsgNoRecent
	}
	return v
}

// BlogPostHandler renders one post with its comments.
func (a *app) BlogPostHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := a.blog.GetBlog(r.Context(), id)
	if err != nil {
		a.postError(w, r, err)
		return
	}
	a.renderPost(w, r, http.StatusOK, post, CommentsSection{})
}

func (a *app) postError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusBadGateway, msgPostUnavailable
	switch {
	case errors.Is(err, remote.ErrInvalidPostID):
		status, msg = http.StatusNotFound, msgNoPostSelected
	case apperr.KindOf(err) == apperr.KindNotFound:
		status, msg = http.StatusNotFound, apperr.UserMessage(err)
	default:
		observability.FromContext(r.Context()).Warn("get blog failed", zap.Error(err))
	}
	a.renderNotice(w, r, status, "Blog", NoticeView{Tone: "error", Message: msg})
}

func (a *app) renderPost(w http.ResponseWriter, r *http.Request, status int, post remote.Post, comments CommentsSection) {
	detail := render.PostDetail(post)
	comments.CommentsView = detail.Comments
	comments.CSRFToken = mw.CSRFToken(r)

	vm := a.page(r, detail.Title, render.Excerpt(post.Content, render.ExcerptLength))
	vm.Breadcrumbs = nav.Breadcrumbs(render.PostURL(post.ID), detail.Title)
	vm.SEO.Canonical = siteURL(r) + render.PostURL(post.ID)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.Type = "article"
	if post.Image != "" {
		vm.SEO.OG.Image = post.Image
		vm.SEO.Twitter.Image = post.Image
	}
	published := ""
	if !post.CreatedAt.IsZero() {
		published = post.CreatedAt.Format("2006-01-02")
	}
	vm.SEO.Add(seo.Article(detail.Title, vm.SEO.Canonical, post.Image, detail.Author, published))
	vm.SEO.Add(seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: "Home", Item: siteURL(r) + "/"},
		{Name: "Blog", Item: siteURL(r) + "/blog"},
		{Name: detail.Title, Item: vm.SEO.Canonical},
	}))
	vm.Post = PostPageView{
		Post:     detail,
		Comments: comments,
		Sidebar:  a.sidebar(r.Context(), render.ListingState{Page: 1}, nil),
	}
	a.renderPage(w, r, status, "blog_detail", vm)
}

// CommentSubmitHandler posts a comment and re-fetches the comment list.
func (a *app) CommentSubmitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		a.postError(w, r, remote.ErrInvalidPostID)
		return
	}
	pc, err := form.NewPageContext(r)
	if err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	c := form.ReadComment(pc)

	section := CommentsSection{Form: c}
	status := http.StatusOK
	switch err := validate.Comment(c); {
	case err != nil:
		status = statusFor(apperr.KindOf(err))
		section.Notice = &NoticeView{Tone: "warning", Message: apperr.UserMessage(err)}
	default:
		if err := a.blog.SubmitComment(ctx, pc.Cookie(remoteCSRFCookie), id, c); err != nil {
			observability.FromContext(ctx).Warn("submit comment failed", zap.Int64("postID", postID), zap.Error(err))
			status = statusFor(apperr.KindOf(err))
			msg := msgCommentFailed
			if apperr.KindOf(err) == apperr.KindRejected {
				msg = apperr.UserMessage(err)
			}
			section.Notice = &NoticeView{Tone: "error", Message: msg}
		} else {
			section.Form = form.Comment{}
			section.Notice = &NoticeView{Tone: "success", Message: msgCommentPosted}
		}
	}

	if !mw.IsHTMX(ctx) {
		if status == http.StatusOK {
			http.Redirect(w, r, render.PostURL(postID)+"#comments", http.StatusSeeOther)
			return
		}
		post, err := a.blog.GetBlog(ctx, id)
		if err != nil {
			a.postError(w, r, err)
			return
		}
		a.renderPost(w, r, status, post, section)
		return
	}

	comments, err := a.blog.ListComments(ctx, id)
	if err != nil {
		observability.FromContext(ctx).Warn("list comments failed", zap.Int64("postID", postID), zap.Error(err))
	}
	section.CommentsView = render.Comments(postID, comments)
	section.CSRFToken = mw.CSRFToken(r)
	a.renderTemplate(w, r, status, "comments", section)
}
