// Package webflow adapts rendered Webflow commerce markup to the cart
// reconstructor's annotated-value source.
package webflow

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/aesthetikoase/checkout-backend/internal/cart"
)

const (
	bindingAttr   = "data-wf-bindings"
	totalSelector = "w-commerce-commercecartordervalue"
)

// Document is a parsed snapshot of a rendered cart page. It satisfies
// cart.Source.
type Document struct {
	values    []cart.AnnotatedValue
	totalText string
	hasTotal  bool
}

// Parse walks the HTML tree once and collects every element carrying a
// Webflow binding annotation, plus the order-value summary node.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if tag, ok := attrValue(n, bindingAttr); ok {
				doc.values = append(doc.values, cart.AnnotatedValue{
					Tag:  tag,
					Text: textContent(n),
				})
			}
			if !doc.hasTotal && hasClass(n, totalSelector) {
				doc.totalText = textContent(n)
				doc.hasTotal = true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return doc, nil
}

func (d *Document) AnnotatedValues() ([]cart.AnnotatedValue, error) {
	return d.values, nil
}

func (d *Document) GrandTotalText() (string, bool) {
	return d.totalText, d.hasTotal
}

func attrValue(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	raw, ok := attrValue(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(raw) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
