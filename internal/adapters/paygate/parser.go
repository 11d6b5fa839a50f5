package paygate

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnits converts a major-unit amount to the gateway's integer minor units
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// rawSession covers the provider shapes a session payload may arrive in. The
// amount may be a top-level minor-unit money object, a bare number, or nested
// inside the first line item's price.
type rawSession struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Reference   string            `json:"reference"`
	OrderNumber string            `json:"orderNumber"`
	Metadata    map[string]string `json:"metadata"`
	Amount      json.RawMessage   `json:"amount"`
	LineItems   []struct {
		Price struct {
			Currency string `json:"currency"`
			Value    int64  `json:"value"`
		} `json:"price"`
		Quantity int64 `json:"quantity"`
	} `json:"lineItems"`
}

type moneyObject struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

// parseSession normalizes a raw gateway session payload
func parseSession(raw json.RawMessage) (*Session, error) {
	var rs rawSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if rs.ID == "" {
		return nil, fmt.Errorf("session payload has no id")
	}

	amount, currency, err := extractAmount(&rs)
	if err != nil {
		return nil, err
	}

	reference := rs.Reference
	if reference == "" && rs.Metadata != nil {
		reference = rs.Metadata["reference"]
	}

	return &Session{
		ID:        rs.ID,
		Status:    rs.Status,
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		Metadata:  rs.Metadata,
	}, nil
}

// ParseSessionPayload normalizes a session payload delivered out of band,
// such as the data object of a webhook event
func ParseSessionPayload(raw json.RawMessage) (*Session, error) {
	return parseSession(raw)
}

// extractAmount locates the session amount across the provider's shapes and
// converts minor units back to a major-unit decimal
func extractAmount(rs *rawSession) (decimal.Decimal, string, error) {
	if len(rs.Amount) > 0 {
		var money moneyObject
		if err := json.Unmarshal(rs.Amount, &money); err == nil && money.Currency != "" {
			return decimal.New(money.Value, -2), money.Currency, nil
		}

		var value int64
		if err := json.Unmarshal(rs.Amount, &value); err == nil {
			currency := ""
			if len(rs.LineItems) > 0 {
				currency = rs.LineItems[0].Price.Currency
			}
			return decimal.New(value, -2), currency, nil
		}
	}

	if len(rs.LineItems) > 0 {
		item := rs.LineItems[0]
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total := decimal.New(item.Price.Value, -2).Mul(decimal.NewFromInt(qty))
		return total, item.Price.Currency, nil
	}

	return decimal.Zero, "", fmt.Errorf("session %s has no recognizable amount", rs.ID)
}
