package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/form"
)

const (
	blogsPath      = "/api/blog/blogs/"
	categoriesPath = "/api/blog/categories/"
	tagsPath       = "/api/blog/tags/"
	newsletterPath = "/api/blog/newsletter/subscribe/"
	contactPath    = "/api/contact/"

	msgPostNotFound = "Post not found."
)

// Newsletter subscription statuses.
const (
	NewsletterExists       = "exists"
	NewsletterSubscribed   = "subscribed"
	NewsletterResubscribed = "resubscribed"
)

// ErrInvalidPostID is returned for empty or non-numeric post identifiers.
var ErrInvalidPostID = errors.New("remote: invalid post id")

// Category is a blog category with its post count.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	BlogCount int    `json:"blog_count"`
}

// Tag is a blog tag.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Comment is a published comment.
type Comment struct {
	ID        int64
	Name      string
	Content   string
	CreatedAt time.Time
}

// Post is a blog post. Listing responses leave Tags and Comments empty.
type Post struct {
	ID            int64
	Title         string
	Slug          string
	Author        string
	Excerpt       string
	Content       string
	Image         string
	CreatedAt     time.Time
	Category      *Category
	Tags          []Tag
	Comments      []Comment
	CommentsCount int
}

// ListOptions selects one listing page.
type ListOptions struct {
	Page     int
	Search   string
	Category string
	Tag      string
}

// BlogPage is one page of posts.
type BlogPage struct {
	Posts []Post
	Pagination
}

// NewsletterResult reports the subscription status and server message.
type NewsletterResult struct {
	Status  string
	Message string
}

type postPayload struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Author        string         `json:"author"`
	Excerpt       string         `json:"excerpt"`
	Content       string         `json:"content"`
	Image         string         `json:"image"`
	CreatedAt     string         `json:"created_at"`
	Category      *Category      `json:"category"`
	Tags          []Tag          `json:"tags"`
	Comments      []commentEntry `json:"comments"`
	CommentsCount int            `json:"comments_count"`
}

type commentEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type envelope struct {
	Status  string          `json:"status"`
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
}

func (p postPayload) toPost() Post {
	post := Post{
		ID:            p.ID,
		Title:         strings.TrimSpace(p.Title),
		Slug:          strings.TrimSpace(p.Slug),
		Author:        strings.TrimSpace(p.Author),
		Excerpt:       strings.TrimSpace(p.Excerpt),
		Content:       p.Content,
		Image:         strings.TrimSpace(p.Image),
		CreatedAt:     parseTime(p.CreatedAt),
		Category:      p.Category,
		Tags:          p.Tags,
		CommentsCount: p.CommentsCount,
	}
	for _, c := range p.Comments {
		post.Comments = append(post.Comments, c.toComment())
	}
	if post.CommentsCount == 0 {
		post.CommentsCount = len(post.Comments)
	}
	return post
}

func (c commentEntry) toComment() Comment {
	return Comment{
		ID:        c.ID,
		Name:      strings.TrimSpace(c.Name),
		Content:   c.Content,
		CreatedAt: parseTime(c.CreatedAt),
	}
}

// ListBlogs fetches one page of published posts.
func (c *Client) ListBlogs(ctx context.Context, opts ListOptions) (BlogPage, error) {
	const op = "list_blogs"
	page := opts.Page
	if page < 1 {
		page = 1
	}
	q := url.Values{"page": {strconv.Itoa(page)}}
	if s := strings.TrimSpace(opts.Search); s != "" {
		q.Set("search", s)
	}
	if s := strings.TrimSpace(opts.Category); s != "" {
		q.Set("category", s)
	}
	if s := strings.TrimSpace(opts.Tag); s != "" {
		q.Set("tag", s)
	}
	resp, err := c.send(ctx, request{op: op, method: http.MethodGet, path: blogsPath, query: q})
	if err != nil {
		return BlogPage{}, err
	}
	records, pagination, err := NormalizeResults(resp.body)
	if err != nil {
		return BlogPage{}, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	payloads, err := decodeRecords[postPayload](records)
	if err != nil {
		return BlogPage{}, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	out := BlogPage{Pagination: pagination, Posts: make([]Post, 0, len(payloads))}
	for _, p := range payloads {
		out.Posts = append(out.Posts, p.toPost())
	}
	return out, nil
}

// GetBlog fetches one post with tags and comments.
func (c *Client) GetBlog(ctx context.Context, id string) (Post, error) {
	const op = "get_blog"
	postID, err := cleanPostID(id)
	if err != nil {
		return Post{}, err
	}
	resp, err := c.send(ctx, request{op: op, method: http.MethodGet, path: blogsPath + postID + "/"})
	if err != nil {
		if resp.status == http.StatusNotFound {
			return Post{}, &apperr.NotFoundError{Message: msgPostNotFound}
		}
		return Post{}, err
	}
	data := bytes.TrimSpace(unwrapData(resp.body))
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Post{}, &apperr.NotFoundError{Message: msgPostNotFound}
	}
	var p postPayload
	if err := decode(op, response{status: resp.status, body: data}, &p); err != nil {
		return Post{}, err
	}
	return p.toPost(), nil
}

// ListComments fetches the published comments of a post.
func (c *Client) ListComments(ctx context.Context, id string) ([]Comment, error) {
	const op = "list_comments"
	postID, err := cleanPostID(id)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, request{op: op, method: http.MethodGet, path: blogsPath + postID + "/comments/"})
	if err != nil {
		return nil, err
	}
	records, _, err := NormalizeResults(resp.body)
	if err != nil {
		return nil, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	entries, err := decodeRecords[commentEntry](records)
	if err != nil {
		return nil, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	out := make([]Comment, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.toComment())
	}
	return out, nil
}

// ListCategories fetches all categories with post counts.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return listOf[Category](ctx, c, "list_categories", categoriesPath)
}

// ListTags fetches all tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	return listOf[Tag](ctx, c, "list_tags", tagsPath)
}

func listOf[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	resp, err := c.send(ctx, request{op: op, method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	records, _, err := NormalizeResults(resp.body)
	if err != nil {
		return nil, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	out, err := decodeRecords[T](records)
	if err != nil {
		return nil, &apperr.NetworkError{Op: op, Status: resp.status, Err: err}
	}
	return out, nil
}

// SubmitComment posts a comment on a post. The CSRF token is sent both as the
// X-CSRFToken header and the csrftoken cookie.
func (c *Client) SubmitComment(ctx context.Context, csrfToken, id string, cm form.Comment) error {
	const op = "submit_comment"
	postID, err := cleanPostID(id)
	if err != nil {
		return err
	}
	headers, cookies := csrfRequest(csrfToken)
	post, _ := strconv.ParseInt(postID, 10, 64)
	resp, err := c.send(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   blogsPath + postID + "/comments/",
		body: map[string]any{
			"post":    post,
			"name":    cm.Name,
			"email":   cm.Email,
			"content": cm.Content,
		},
		headers: headers,
		cookies: cookies,
	})
	if err != nil {
		return err
	}
	return checkEnvelope(op, resp)
}

// SubscribeNewsletter subscribes email. Status is one of the Newsletter* constants.
func (c *Client) SubscribeNewsletter(ctx context.Context, csrfToken, email string) (NewsletterResult, error) {
	const op = "subscribe_newsletter"
	headers, cookies := csrfRequest(csrfToken)
	resp, err := c.send(ctx, request{
		op:      op,
		method:  http.MethodPost,
		path:    newsletterPath,
		body:    map[string]string{"email": strings.TrimSpace(email)},
		headers: headers,
		cookies: cookies,
	})
	if err != nil {
		return NewsletterResult{}, err
	}
	var env envelope
	if err := decode(op, resp, &env); err != nil {
		return NewsletterResult{}, err
	}
	return NewsletterResult{
		Status:  strings.ToLower(strings.TrimSpace(env.Status)),
		Message: messageText(env.Message),
	}, nil
}

// SubmitContact sends a contact form message.
func (c *Client) SubmitContact(ctx context.Context, msg form.Contact) error {
	const op = "submit_contact"
	resp, err := c.send(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   contactPath,
		body: map[string]string{
			"name":    msg.Name,
			"email":   msg.Email,
			"subject": msg.Subject,
			"message": msg.Message,
		},
	})
	if err != nil {
		return err
	}
	return checkEnvelope(op, resp)
}

// checkEnvelope turns an explicit failure marker in a 2xx body into a rejection.
// Empty or non-envelope bodies pass.
func checkEnvelope(op string, resp response) error {
	var env envelope
	if len(bytes.TrimSpace(resp.body)) == 0 || json.Unmarshal(resp.body, &env) != nil {
		return nil
	}
	if (env.Success != nil && !*env.Success) || strings.EqualFold(env.Status, "error") {
		return &apperr.ServerRejection{Op: op, Message: messageText(env.Message)}
	}
	return nil
}

func cleanPostID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidPostID
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", ErrInvalidPostID
	}
	return id, nil
}
