package cart

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// FallbackItemName labels the synthetic item emitted when extraction
	// finds nothing usable.
	FallbackItemName = "Online-Bestellung (Details nicht verfügbar)"

	markerName  = "name"
	markerCount = "count"
	markerPrice = "price"
	markerTotal = "total"
)

var (
	// FallbackAmount prices the synthetic item when no grand total is known.
	FallbackAmount = decimal.NewFromInt(100)

	// reconcileTolerance is the currency-unit drift allowed between the
	// computed subtotal and the displayed grand total before rescaling.
	reconcileTolerance = decimal.NewFromInt(1)

	nonDigits   = regexp.MustCompile(`\D`)
	placeholder = regexp.MustCompile(`(?i)^product\s*\d+$`)

	currencyMarkers = []string{"chf", "fr.", "sfr"}
)

// Reconstruct rebuilds a normalized cart from a source of annotated text
// nodes. It never fails: any error or panic during extraction collapses to
// the synthetic fallback item, so a broken cart page still reaches checkout.
//
// Pairing is positional over the three filtered candidate lists and relies
// on the markup emitting names, quantities, and prices in matching document
// order. The markup carries no per-product correlation key, so a missing or
// reordered node silently mispairs lines; a real fix needs the storefront to
// emit product identifiers alongside each binding.
func Reconstruct(src Source) (out Cart) {
	defer func() {
		if r := recover(); r != nil {
			out = fallbackCart(decimal.Zero, false)
		}
	}()

	values, err := src.AnnotatedValues()
	if err != nil {
		return fallbackCart(decimal.Zero, false)
	}

	grandTotal, hasTotal := extractGrandTotal(src)

	var names []string
	var quantities []int
	var prices []decimal.Decimal
	for _, v := range values {
		switch classify(v) {
		case markerName:
			if name, ok := filterName(v.Text); ok {
				names = append(names, name)
			}
		case markerCount:
			if qty, ok := filterQuantity(v.Text); ok {
				quantities = append(quantities, qty)
			}
		case markerPrice:
			if price, ok := parseAmount(v.Text); ok {
				prices = append(prices, price)
			}
		}
	}

	n := min(len(names), min(len(quantities), len(prices)))
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Item{
			Name:      names[i],
			UnitPrice: prices[i],
			Quantity:  quantities[i],
		})
	}

	if len(items) == 0 {
		return fallbackCart(grandTotal, hasTotal)
	}

	cart := Cart{Items: items, GrandTotal: grandTotal, HasTotal: hasTotal}
	return reconcile(cart)
}

// classify maps a node onto one of the three candidate kinds, or "" for
// noise. Summary-total bindings are excluded up front so the displayed total
// never doubles as a line-item price.
func classify(v AnnotatedValue) string {
	tag := strings.ToLower(v.Tag)
	if strings.Contains(tag, markerTotal) {
		return ""
	}
	switch {
	case strings.Contains(tag, markerName):
		return markerName
	case strings.Contains(tag, markerCount):
		return markerCount
	case strings.Contains(tag, markerPrice), hasCurrencyMarker(v.Text):
		return markerPrice
	}
	return ""
}

func hasCurrencyMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range currencyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ValidName reports whether a product name passes the noise filter: long
// enough, not a template placeholder, not a serialized undefined/null.
func ValidName(raw string) bool {
	_, ok := filterName(raw)
	return ok
}

func filterName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if len([]rune(name)) <= 2 {
		return "", false
	}
	if placeholder.MatchString(name) {
		return "", false
	}
	switch strings.ToLower(name) {
	case "undefined", "null":
		return "", false
	}
	return name, true
}

func filterQuantity(raw string) (int, bool) {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 0, false
	}
	return qty, true
}

// parseAmount applies the digit-stripping price rule: drop every non-digit,
// require at least 3 digits, and read the last two as minor units. "CHF
// 49.90" and "49,90 Fr." both come out as 49.90.
func parseAmount(raw string) (decimal.Decimal, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < 3 {
		return decimal.Zero, false
	}
	major, minor := digits[:len(digits)-2], digits[len(digits)-2:]
	value, err := decimal.NewFromString(major + "." + minor)
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

func extractGrandTotal(src Source) (decimal.Decimal, bool) {
	raw, ok := src.GrandTotalText()
	if !ok {
		return decimal.Zero, false
	}
	total, ok := parseAmount(raw)
	if !ok {
		return decimal.Zero, false
	}
	return total, true
}

// reconcile rescales unit prices when the computed subtotal drifts from the
// displayed grand total by more than the tolerance. The displayed total is
// authoritative: it already reflects promotions and tax adjustments that are
// invisible per line.
func reconcile(c Cart) Cart {
	if !c.HasTotal {
		return c
	}
	computed := c.Subtotal()
	if !computed.IsPositive() {
		return c
	}
	if computed.Sub(c.GrandTotal).Abs().LessThanOrEqual(reconcileTolerance) {
		return c
	}

	factor := c.GrandTotal.Div(computed)
	rescaled := make([]Item, len(c.Items))
	for i, item := range c.Items {
		rescaled[i] = Item{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.Mul(factor).Round(2),
			Quantity:  item.Quantity,
		}
	}
	c.Items = rescaled
	c.Rescaled = true
	return c
}

func fallbackCart(grandTotal decimal.Decimal, hasTotal bool) Cart {
	price := FallbackAmount
	if hasTotal && grandTotal.IsPositive() {
		price = grandTotal
	}
	return Cart{
		Items: []Item{{
			Name:      FallbackItemName,
			UnitPrice: price,
			Quantity:  1,
		}},
		GrandTotal: grandTotal,
		HasTotal:   hasTotal,
		Fallback:   true,
	}
}
