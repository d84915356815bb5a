package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aesthetikoase/checkout-backend/api/responses"
	"github.com/aesthetikoase/checkout-backend/api/validators"
	"github.com/aesthetikoase/checkout-backend/internal/cart"
	"github.com/aesthetikoase/checkout-backend/internal/cart/webflow"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
)

type reconstructRequest struct {
	Nodes     []cart.AnnotatedValue `json:"nodes"`
	TotalText string                `json:"total_text"`
	HTML      string                `json:"html"`
}

type reconstructItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type reconstructResponse struct {
	Items      []reconstructItem `json:"items"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	GrandTotal *decimal.Decimal  `json:"grand_total,omitempty"`
	Rescaled   bool              `json:"rescaled"`
	Fallback   bool              `json:"fallback"`
}

// ReconstructCart rebuilds a normalized cart from a page snapshot: either an
// explicit annotated-node list or raw rendered HTML. Explicit nodes win when
// both are present.
func ReconstructCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload reconstructRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var src cart.Source
		switch {
		case len(payload.Nodes) > 0:
			src = cart.NodeList{Nodes: payload.Nodes, TotalText: payload.TotalText}
		case payload.HTML != "":
			doc, err := webflow.Parse(strings.NewReader(payload.HTML))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid html snapshot"))
				return
			}
			src = doc
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nodes or html required"))
			return
		}

		result := cart.Reconstruct(src)

		items := make([]reconstructItem, 0, len(result.Items))
		for _, item := range result.Items {
			items = append(items, reconstructItem{
				Name:     item.Name,
				Price:    item.UnitPrice,
				Quantity: item.Quantity,
			})
		}

		resp := reconstructResponse{
			Items:    items,
			Subtotal: result.Subtotal(),
			Rescaled: result.Rescaled,
			Fallback: result.Fallback,
		}
		if result.HasTotal {
			total := result.GrandTotal
			resp.GrandTotal = &total
		}

		responses.WriteSuccess(w, resp)
	}
}
