package domain

import "github.com/shopspring/decimal"

// JSONAmount is a decimal that encodes as a bare JSON number, the way the
// backend and the event consumers expect money.
type JSONAmount decimal.Decimal

func (a JSONAmount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

func (a JSONAmount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *JSONAmount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = JSONAmount(d)
	return nil
}
