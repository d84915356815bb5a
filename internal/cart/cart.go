package cart

import "github.com/shopspring/decimal"

// AnnotatedValue is one rendered text node together with the opaque binding
// tag the storefront attached to it.
type AnnotatedValue struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Source enumerates the annotated values of a rendered cart. Any rendering
// technology that can list (tag, text) pairs satisfies it; the webflow
// subpackage provides the HTML-backed implementation.
type Source interface {
	AnnotatedValues() ([]AnnotatedValue, error)
	// GrandTotalText returns the raw text of the summary total node, if the
	// document renders one.
	GrandTotalText() (string, bool)
}

// Item is one normalized cart line.
type Item struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the reconstruction result. Fallback marks the synthetic
// single-item cart emitted when nothing usable survived filtering; Rescaled
// marks a cart whose unit prices were corrected against the displayed total.
type Cart struct {
	Items      []Item
	GrandTotal decimal.Decimal
	HasTotal   bool
	Rescaled   bool
	Fallback   bool
}

// Subtotal returns the computed sum of price*quantity over all items.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// NodeList is a Source over an explicit list of annotated values, used when
// the storefront ships the scraped nodes directly instead of raw markup.
type NodeList struct {
	Nodes     []AnnotatedValue `json:"nodes"`
	TotalText string           `json:"total_text"`
}

func (n NodeList) AnnotatedValues() ([]AnnotatedValue, error) {
	return n.Nodes, nil
}

func (n NodeList) GrandTotalText() (string, bool) {
	if n.TotalText == "" {
		return "", false
	}
	return n.TotalText, true
}
