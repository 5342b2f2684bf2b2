package ibkr

import (
	"strings"

	"golang.org/x/net/html"
)

// findElementByIDPrefix returns the first element in document order whose id
// attribute starts with the given prefix, or nil.
func findElementByIDPrefix(n *html.Node, prefix string) *html.Node {
	if n.Type == html.ElementNode && strings.HasPrefix(attrValue(n, "id"), prefix) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElementByIDPrefix(c, prefix); found != nil {
			return found
		}
	}
	return nil
}

// firstDescendant returns the first descendant element with the given tag,
// not counting the node itself.
func firstDescendant(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := firstDescendant(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// descendants collects every descendant element with the given tag in
// document order.
func descendants(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
		out = append(out, descendants(c, tag)...)
	}
	return out
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// cellWithClass returns the first descendant td of the row carrying the
// given class, or nil.
func cellWithClass(row *html.Node, class string) *html.Node {
	for _, td := range descendants(row, "td") {
		if hasClass(td, class) {
			return td
		}
	}
	return nil
}

// nodeText concatenates all text content under the node and trims it,
// mirroring a DOM textContent lookup.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
