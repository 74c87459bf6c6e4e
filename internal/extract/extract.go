// Package extract pulls likely Terms of Service text out of HTML pages.
// It mirrors the heuristics the browser extension applies before posting
// a page to the analyze endpoint, so server-side callers see the same
// text a popup user would.
package extract

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxChars caps extracted text the same way the analyze endpoint caps
// its input.
const maxChars = 100000

var tosKeywords = regexp.MustCompile(`(?i)terms of service|terms of use|user agreement|privacy policy|cookie policy|terms and conditions|legal`)

var containerKeywords = []string{"terms", "policy", "legal"}

var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

// FromHTML extracts ToS text from an HTML document. Boilerplate chrome
// and hidden nodes are dropped and whitespace is collapsed. When neither
// the page text nor its title mentions a ToS keyword, extraction retries
// on containers whose class or id suggests legal content. The result is
// capped at maxChars and may be empty.
func FromHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	collectText(doc, &sb)
	text := collapseWhitespace(sb.String())

	if !tosKeywords.MatchString(text) && !tosKeywords.MatchString(pageTitle(doc)) {
		var containers strings.Builder
		collectContainers(doc, &containers)
		if containers.Len() > 0 {
			text = collapseWhitespace(containers.String())
		}
	}

	if utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
	}
	return text, nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if skippedTags[n.Data] || isHidden(n) {
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// collectContainers gathers the text of every element whose class or id
// hints at legal content. Nested matches are fine; the extension joins
// them the same way.
func collectContainers(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && isLegalContainer(n) {
		collectText(n, sb)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectContainers(c, sb)
	}
}

func isLegalContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" && attr.Key != "id" {
			continue
		}
		value := strings.ToLower(attr.Val)
		for _, keyword := range containerKeywords {
			if strings.Contains(value, keyword) {
				return true
			}
		}
	}
	return false
}

func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "hidden" {
			return true
		}
		if attr.Key == "style" && strings.Contains(strings.ToLower(attr.Val), "display: none") {
			return true
		}
	}
	return false
}

func pageTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = n.FirstChild.Data
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
