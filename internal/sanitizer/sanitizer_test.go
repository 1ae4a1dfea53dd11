package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const careersPage = `<!DOCTYPE html>
<html>
<head><title>Careers</title><meta charset="utf-8"><link rel="stylesheet" href="/a.css"><style>body{}</style></head>
<body>
<header><nav><a href="/">Home</a></nav></header>
<script>window.track()</script>
<noscript>enable js</noscript>
<!-- tracking pixel -->
<div class="job-card"><img src="/logo.png"><svg><path d="M0"/></svg>
  <h3>Backend Engineer</h3><a href="/jobs/42">View details</a>
</div>
<video src="/intro.mp4"></video>
<meter value="2"></meter>
</body>
</html>`

func tagsIn(t *testing.T, markup string) map[string]int {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	tags := map[string]int{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tags[n.Data]++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tags
}

func TestClean_RemovesExcludedTags(t *testing.T) {
	out := Clean(careersPage)

	// re-parsing always synthesizes an empty <head>, so only check it is empty
	tags := tagsIn(t, out)
	for tag := range excluded {
		if tag == "head" {
			continue
		}
		assert.Zero(t, tags[tag], "tag %q survived", tag)
	}
	assert.NotContains(t, out, "<head>")
	assert.NotContains(t, out, "window.track")
	assert.NotContains(t, out, "tracking pixel")
	assert.NotContains(t, out, "<title>")

	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, `href="/jobs/42"`)
	assert.Contains(t, out, "<header>")
	assert.Contains(t, out, "<meter")
}

func TestClean_RawTextContainersDropped(t *testing.T) {
	inputs := []string{
		`<body><iframe><script>alert(1)</script></iframe><p>Open roles</p></body>`,
		`<body><noembed><style>p{}</style><img src=x></noembed><p>Open roles</p></body>`,
		`<body><noframes><script>alert(1)</script></noframes><p>Open roles</p></body>`,
		`<body><xmp><script>alert(1)</script></xmp><p>Open roles</p></body>`,
		`<body><p>Open roles</p><plaintext><script>alert(1)</script>`,
	}
	for _, in := range inputs {
		out := Clean(in)
		for _, tag := range []string{"<script", "<style", "<img", "<iframe", "<noembed", "<noframes", "<xmp", "<plaintext"} {
			assert.NotContains(t, out, tag, "input %q", in)
		}
		assert.NotContains(t, out, "alert(1)")
		assert.Contains(t, out, "Open roles")
	}
}

func TestClean_MalformedMarkupDegrades(t *testing.T) {
	out := Clean(`<div><p>Open roles<script>x()</div><span`)
	assert.Contains(t, out, "Open roles")
	assert.NotContains(t, out, "x()")
}

func TestCleanLimit_Truncates(t *testing.T) {
	long := "<p>" + strings.Repeat("é", 500) + "</p>"
	out := CleanLimit(long, 100)
	assert.Equal(t, 100, len([]rune(out)))

	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "żó", Truncate("żółw", 2))
}

func TestLinks(t *testing.T) {
	links := Links(careersPage, 30)
	require.Len(t, links, 2)
	assert.Equal(t, "/", links[0].URL)
	assert.Equal(t, "/jobs/42", links[1].URL)
	assert.Equal(t, "View details", links[1].Text)
	assert.Equal(t, "Backend Engineer View details", links[1].ParentText)
}

func TestLinks_Capped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(`<a href="/j">job</a>`)
	}
	assert.Len(t, Links(b.String(), 30), 30)
	assert.Empty(t, Links("<p>no anchors</p>", 30))
	assert.NotNil(t, Links("", 30))
}

func TestIsExcluded(t *testing.T) {
	assert.True(t, IsExcluded("SCRIPT"))
	assert.False(t, IsExcluded("header"))
}
