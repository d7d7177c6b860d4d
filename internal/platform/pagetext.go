package platform

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// VisibleText extracts the human-visible text of an HTML document. Script and
// style contents are dropped because the phrase families describe what an
// operator would read on the page, not what ships in bundles.
func VisibleText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return visibleTextFallback(body)
	}
	doc.Find("script, style, noscript").Remove()
	return normalizeSpace(doc.Text())
}

// visibleTextFallback walks the raw node tree when goquery cannot build a
// document. Listing pages are occasionally served truncated; a partial scan
// still beats none.
func visibleTextFallback(body []byte) string {
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return normalizeSpace(string(body))
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return normalizeSpace(sb.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
