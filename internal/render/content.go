package render

import (
	"bytes"
	"html/template"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExcerptLength is the rune length of list excerpts before "..." is appended.
const ExcerptLength = 150

var (
	bodyPolicy    = newBodyPolicy()
	commentPolicy = bluemonday.StrictPolicy()

	// Raw HTML in markdown is left to the sanitizer.
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			goldmarkHTML.WithHardWraps(),
			goldmarkHTML.WithUnsafe(),
		),
	)
)

func newBodyPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "blockquote")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// BodyHTML renders a post body. Bodies that already contain markup are only
// sanitized; anything else is treated as markdown.
func BodyHTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if looksLikeHTML(src) {
		return template.HTML(strings.TrimSpace(bodyPolicy.Sanitize(src)))
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(strings.TrimSpace(bodyPolicy.Sanitize(buf.String())))
}

// CommentText strips all markup from a visitor comment.
func CommentText(src string) string {
	return strings.TrimSpace(html.UnescapeString(commentPolicy.Sanitize(src)))
}

// PlainText returns the visible text of an HTML or markdown body with
// whitespace collapsed.
func PlainText(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	rendered := string(BodyHTML(src))
	nodes, err := html.ParseFragment(strings.NewReader(rendered), &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"})
	if err != nil {
		return collapseSpace(src)
	}
	var b strings.Builder
	for _, n := range nodes {
		collectText(&b, n)
	}
	return collapseSpace(b.String())
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		b.WriteByte(' ')
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Tr, atom.Figcaption:
		return true
	}
	return false
}

// Excerpt cuts the plain text of src at limit runes and appends "...".
func Excerpt(src string, limit int) string {
	text := PlainText(src)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return strings.TrimRightFunc(string(runes), unicode.IsSpace) + "..."
}

// SplitMiddle divides a body into two rendered halves around its middle.
// Plain and markdown bodies split at the middle word; HTML bodies split
// between top-level elements so no tag is cut.
func SplitMiddle(src string) (template.HTML, template.HTML) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", ""
	}
	if looksLikeHTML(src) {
		return splitNodes(string(BodyHTML(src)))
	}
	words := strings.Split(src, " ")
	mid := len(words) / 2
	return BodyHTML(strings.Join(words[:mid], " ")), BodyHTML(strings.Join(words[mid:], " "))
}

func splitNodes(rendered string) (template.HTML, template.HTML) {
	nodes, err := html.ParseFragment(strings.NewReader(rendered), &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"})
	if err != nil || len(nodes) < 2 {
		return template.HTML(rendered), ""
	}
	mid := len(nodes) / 2
	return renderNodes(nodes[:mid]), renderNodes(nodes[mid:])
}

func renderNodes(nodes []*html.Node) template.HTML {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return ""
		}
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

// looksLikeHTML reports whether src contains at least one element.
func looksLikeHTML(src string) bool {
	if !strings.Contains(src, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
