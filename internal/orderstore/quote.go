package orderstore

import (
	"github.com/shopspring/decimal"

	"github.com/click2print/orderdesk/internal/model"
)

// VATRate is applied to the subtotal after discount.
var VATRate = decimal.RequireFromString("0.05")

// Quote is the cost breakdown shown on the quotation preview.
type Quote struct {
	Labour    decimal.Decimal `json:"labour"`
	Finishing decimal.Decimal `json:"finishing"`
	Paper     decimal.Decimal `json:"paper"`
	Machine   decimal.Decimal `json:"machine"`
	Design    decimal.Decimal `json:"design"`
	Delivery  decimal.Decimal `json:"delivery"`
	Other     decimal.Decimal `json:"other"`

	Lines    []QuoteLine     `json:"lines"`
	Products decimal.Decimal `json:"products"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	VAT       decimal.Decimal `json:"vat"`
	Total     decimal.Decimal `json:"total"`
	Advance   decimal.Decimal `json:"advance"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ComputeQuote derives the breakdown from a draft. Product lines and the
// cost components make up the subtotal. Missing or non-numeric amounts count
// as zero.
func ComputeQuote(f model.FormData) Quote {
	q := Quote{
		Labour:    orZero(f.LabourCost),
		Finishing: orZero(f.FinishingCost),
		Paper:     orZero(f.PaperMaterialCost),
		Machine:   orZero(f.MachineUsageCost),
		Design:    orZero(f.DesignComplexityCost),
		Delivery:  orZero(f.DeliveryCost),
		Other:     orZero(f.OtherCharges),
		Discount:  orZero(f.Discount),
		Advance:   orZero(f.AdvancePaid),
	}

	q.Lines = productLines(f)
	q.Products = decimal.Zero
	for _, l := range q.Lines {
		q.Products = q.Products.Add(l.LineTotal)
	}

	q.Subtotal = decimal.Sum(q.Products, q.Labour, q.Finishing, q.Paper, q.Machine, q.Design, q.Delivery, q.Other)
	taxable := q.Subtotal.Sub(q.Discount)
	q.VAT = roundHalfUp(taxable.Mul(VATRate))
	q.Total = taxable.Add(q.VAT)
	q.Remaining = q.Total.Sub(q.Advance)
	return q
}

// Quote returns the breakdown for the current draft.
func (s *Store) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeQuote(s.state)
}

func orZero(a *model.Amount) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return a.OrZero()
}

// roundHalfUp rounds to a whole number with halves going toward positive
// infinity, so -2.5 becomes -2.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(decimal.NewFromFloat(0.5)).Floor()
}
