// Package sanitizer strips non-content markup from page HTML before it is shown to the model.
package sanitizer

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// MaxContentChars bounds what get_page_content hands back to the agent.
const MaxContentChars = 25000

// excluded tags never reach a prompt
var excluded = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"meta":     true,
	"link":     true,
	"noscript": true,
	"svg":      true,
	"path":     true,
	"img":      true,
	"video":    true,
	//children of these are raw text and render back unescaped
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"xmp":       true,
	"plaintext": true,
}

// IsExcluded reports whether elements with this tag name are removed by Clean.
func IsExcluded(tag string) bool {
	return excluded[strings.ToLower(tag)]
}

// Clean removes excluded elements and truncates to MaxContentChars.
func Clean(markup string) string {
	return CleanLimit(markup, MaxContentChars)
}

// CleanLimit removes excluded elements and truncates the rendered markup to limit characters.
// A limit <= 0 disables truncation.
func CleanLimit(markup string, limit int) string {
	doc := parse(markup)
	if doc == nil {
		return Truncate(markup, limit)
	}
	strip(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return Truncate(markup, limit)
	}
	return Truncate(buf.String(), limit)
}

func parse(markup string) *html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	return doc
}

// strip detaches excluded elements in place.
func strip(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && excluded[c.Data] {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			continue
		}
		strip(c)
	}
}

// Truncate cuts s to at most limit characters without splitting a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Link is an anchor candidate handed to the model next to the markup.
type Link struct {
	URL        string `json:"url"`
	Text       string `json:"text"`
	ParentText string `json:"parent_text"`
}

// Links lists up to max anchors with an href, in document order, after stripping excluded elements.
func Links(markup string, max int) []Link {
	links := make([]Link, 0)
	doc := parse(markup)
	if doc == nil {
		return links
	}
	strip(doc)

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok {
				link := Link{
					URL:  href,
					Text: Truncate(Text(n), 100),
				}
				if n.Parent != nil {
					link.ParentText = Truncate(Text(n.Parent), 200)
				}
				links = append(links, link)
				if max > 0 && len(links) >= max {
					return false
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return links
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the whitespace-collapsed text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
