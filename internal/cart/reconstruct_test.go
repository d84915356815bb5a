package cart

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

type failingSource struct{}

func (failingSource) AnnotatedValues() ([]AnnotatedValue, error) {
	return nil, errors.New("renderer gone")
}

func (failingSource) GrandTotalText() (string, bool) { return "", false }

type panickySource struct{}

func (panickySource) AnnotatedValues() ([]AnnotatedValue, error) {
	panic("detached node")
}

func (panickySource) GrandTotalText() (string, bool) { return "", false }

func nodesFor(names, quantities, prices []string, total string) NodeList {
	var nodes []AnnotatedValue
	for _, n := range names {
		nodes = append(nodes, AnnotatedValue{Tag: "innerHTML.product-name", Text: n})
	}
	for _, q := range quantities {
		nodes = append(nodes, AnnotatedValue{Tag: "innerHTML.item-count", Text: q})
	}
	for _, p := range prices {
		nodes = append(nodes, AnnotatedValue{Tag: "innerHTML.item-price", Text: p})
	}
	return NodeList{Nodes: nodes, TotalText: total}
}

func TestReconstructEndToEnd(t *testing.T) {
	t.Parallel()

	src := nodesFor(
		[]string{"Serum A", "Serum B"},
		[]string{"1", "2"},
		[]string{"CHF 50.00", "CHF 30.00"},
		"CHF 110.00",
	)

	got := Reconstruct(src)

	if got.Fallback {
		t.Fatal("expected a real cart, got fallback")
	}
	if got.Rescaled {
		t.Fatal("subtotal matches displayed total, no rescaling expected")
	}
	want := []Item{
		{Name: "Serum A", UnitPrice: decimal.RequireFromString("50.00"), Quantity: 1},
		{Name: "Serum B", UnitPrice: decimal.RequireFromString("30.00"), Quantity: 2},
	}
	if len(got.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(got.Items), len(want))
	}
	for i := range want {
		if got.Items[i].Name != want[i].Name ||
			!got.Items[i].UnitPrice.Equal(want[i].UnitPrice) ||
			got.Items[i].Quantity != want[i].Quantity {
			t.Fatalf("item %d = %+v, want %+v", i, got.Items[i], want[i])
		}
	}
	if !got.Subtotal().Equal(decimal.RequireFromString("110")) {
		t.Fatalf("subtotal = %s, want 110", got.Subtotal())
	}
}

func TestReconstructIsDeterministic(t *testing.T) {
	t.Parallel()

	src := nodesFor(
		[]string{"Serum A", "Serum B"},
		[]string{"1", "2"},
		[]string{"CHF 50.00", "CHF 30.00"},
		"CHF 110.00",
	)

	first := Reconstruct(src)
	second := Reconstruct(src)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-running extraction changed the result:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestReconstructFiltersNoise(t *testing.T) {
	t.Parallel()

	src := NodeList{
		Nodes: []AnnotatedValue{
			{Tag: "innerHTML.product-name", Text: "Hyaluron Serum"},
			{Tag: "innerHTML.product-name", Text: "Product 3"},
			{Tag: "innerHTML.product-name", Text: "undefined"},
			{Tag: "innerHTML.product-name", Text: "ab"},
			{Tag: "innerHTML.item-count", Text: "2"},
			{Tag: "innerHTML.item-count", Text: "0"},
			{Tag: "innerHTML.item-count", Text: "viele"},
			{Tag: "innerHTML.item-price", Text: "CHF 49.90"},
			{Tag: "innerHTML.item-price", Text: "CHF 0.00"},
			{Tag: "innerHTML.item-price", Text: "42"},
			{Tag: "innerHTML.cart-total", Text: "CHF 99.80"},
		},
	}

	got := Reconstruct(src)

	if got.Fallback {
		t.Fatal("one valid triple should survive")
	}
	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.Name != "Hyaluron Serum" || item.Quantity != 2 || !item.UnitPrice.Equal(decimal.RequireFromString("49.90")) {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestReconstructPairsPositionally(t *testing.T) {
	t.Parallel()

	// Three names but only two quantities and two prices: n = 2.
	src := nodesFor(
		[]string{"Serum A", "Serum B", "Serum C"},
		[]string{"1", "2"},
		[]string{"CHF 10.00", "CHF 20.00"},
		"",
	)

	got := Reconstruct(src)
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	if got.Items[0].Name != "Serum A" || got.Items[1].Name != "Serum B" {
		t.Fatalf("pairing broke document order: %+v", got.Items)
	}
}

func TestReconstructRescalesAgainstDisplayedTotal(t *testing.T) {
	t.Parallel()

	src := nodesFor(
		[]string{"Creme Deluxe", "Tagescreme"},
		[]string{"1", "1"},
		[]string{"CHF 100.00", "CHF 50.00"},
		"CHF 120.00",
	)

	got := Reconstruct(src)

	if !got.Rescaled {
		t.Fatal("drift of 30 exceeds tolerance, expected rescaling")
	}
	if !got.Items[0].UnitPrice.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("item 0 price = %s, want 80", got.Items[0].UnitPrice)
	}
	if !got.Items[1].UnitPrice.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("item 1 price = %s, want 40", got.Items[1].UnitPrice)
	}

	drift := got.Subtotal().Sub(got.GrandTotal).Abs()
	if drift.GreaterThan(decimal.NewFromInt(1)) {
		t.Fatalf("rescaled subtotal %s still drifts %s from total %s", got.Subtotal(), drift, got.GrandTotal)
	}
}

func TestReconstructToleratesSmallDrift(t *testing.T) {
	t.Parallel()

	src := nodesFor(
		[]string{"Serum A"},
		[]string{"1"},
		[]string{"CHF 50.00"},
		"CHF 50.95",
	)

	got := Reconstruct(src)
	if got.Rescaled {
		t.Fatal("drift below one currency unit must not trigger rescaling")
	}
}

func TestReconstructFallbackOnEmptyCart(t *testing.T) {
	t.Parallel()

	src := NodeList{
		Nodes:     []AnnotatedValue{{Tag: "innerHTML.product-name", Text: "x"}},
		TotalText: "CHF 75.50",
	}

	got := Reconstruct(src)

	if !got.Fallback {
		t.Fatal("expected fallback cart")
	}
	if len(got.Items) != 1 {
		t.Fatalf("fallback must contain exactly one item, got %d", len(got.Items))
	}
	item := got.Items[0]
	if item.Name != FallbackItemName || item.Quantity != 1 {
		t.Fatalf("unexpected fallback item %+v", item)
	}
	if !item.UnitPrice.Equal(decimal.RequireFromString("75.50")) {
		t.Fatalf("fallback should use the known grand total, got %s", item.UnitPrice)
	}
}

func TestReconstructFallbackOnSourceError(t *testing.T) {
	t.Parallel()

	got := Reconstruct(failingSource{})
	if !got.Fallback {
		t.Fatal("expected fallback cart on source failure")
	}
	if !got.Items[0].UnitPrice.Equal(FallbackAmount) {
		t.Fatalf("fallback without total must use the fixed amount, got %s", got.Items[0].UnitPrice)
	}
}

func TestReconstructRecoversFromPanic(t *testing.T) {
	t.Parallel()

	got := Reconstruct(panickySource{})
	if !got.Fallback || len(got.Items) != 1 {
		t.Fatalf("panic must collapse to the fallback cart, got %+v", got)
	}
}

func TestClassifySkipsSummaryTotalNodes(t *testing.T) {
	t.Parallel()

	// The displayed total carries a currency marker but must never be
	// classified as a line-item price.
	if kind := classify(AnnotatedValue{Tag: "innerHTML.grand-total", Text: "CHF 110.00"}); kind != "" {
		t.Fatalf("summary total classified as %q", kind)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"CHF 49.90", "49.90", true},
		{"49,90 Fr.", "49.90", true},
		{"CHF 1'250.00", "1250.00", true},
		{"CHF 0.00", "", false},
		{"42", "", false},
		{"", "", false},
		{"CHF -.-", "", false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.raw)
		if ok != tc.ok {
			t.Fatalf("parseAmount(%q) ok = %t, want %t", tc.raw, ok, tc.ok)
		}
		if ok && !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("parseAmount(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestValidName(t *testing.T) {
	t.Parallel()

	valid := []string{"Hyaluron Serum", "Öl-Mix", "ABC"}
	invalid := []string{"", "  ", "ab", "Product 12", "product3", "UNDEFINED", "null"}

	for _, name := range valid {
		if !ValidName(name) {
			t.Fatalf("ValidName(%q) = false, want true", name)
		}
	}
	for _, name := range invalid {
		if ValidName(name) {
			t.Fatalf("ValidName(%q) = true, want false", name)
		}
	}
}
