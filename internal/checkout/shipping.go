package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/aesthetikoase/checkout-backend/pkg/config"
)

const (
	shippingDescription = "📦 Versand"
	giftBoxDescription  = "📦 Geschenkbox Versand"
)

// ShippingLine is the single resolved shipping charge, in minor units.
type ShippingLine struct {
	AmountMinor int64
	Description string
}

// shippingResolver applies the shipping policy: an explicit positive
// caller amount wins, otherwise the subtotal tier decides. A line that
// resolves to zero is dropped; when the provider insists on a strictly
// positive charge per line, requirePositive substitutes the nominal fee
// instead.
type shippingResolver struct {
	freeThreshold   decimal.Decimal
	standardFee     decimal.Decimal
	nominalFee      decimal.Decimal
	requirePositive bool
}

func newShippingResolver(cfg config.ShippingConfig) shippingResolver {
	return shippingResolver{
		freeThreshold: cfg.FreeThresholdAmount(),
		standardFee:   cfg.StandardFeeAmount(),
		nominalFee:    cfg.NominalFeeAmount(),
	}
}

// Resolve returns the shipping line to add, or nil when shipping is free.
// At most one line is ever returned.
func (r shippingResolver) Resolve(subtotal decimal.Decimal, explicit *ShippingInput) *ShippingLine {
	var amount int64
	description := shippingDescription

	switch {
	case explicit != nil && explicit.Amount > 0:
		amount = explicit.Amount
		if explicit.Description != "" {
			description = explicit.Description
		}
	case explicit == nil || explicit.Amount <= 0:
		if subtotal.GreaterThanOrEqual(r.freeThreshold) {
			amount = 0
		} else {
			amount = toMinorUnits(r.standardFee)
		}
	}

	if amount == 0 {
		if !r.requirePositive {
			return nil
		}
		amount = toMinorUnits(r.nominalFee)
	}

	return &ShippingLine{AmountMinor: amount, Description: description}
}
