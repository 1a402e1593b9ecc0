package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// MaxQuantity bounds a line quantity on both sides of the wire.
const MaxQuantity = math.MaxInt32

var maxQuantity = decimal.NewFromInt(MaxQuantity)

type wireLine struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Price                json.Number `json:"price"`
	Quantity             int         `json:"quantity"`
	ImageURL             string      `json:"image_url,omitempty"`
	RequiresPrescription bool        `json:"requires_prescription,omitempty"`
}

type wireSnapshot struct {
	Lines []wireLine  `json:"lines"`
	Total json.Number `json:"total"`
}

// EncodeSnapshot serializes s in the channel layout. The total is always written.
func EncodeSnapshot(s CartSnapshot) ([]byte, error) {
	w := wireSnapshot{
		Lines: make([]wireLine, 0, len(s.Lines)),
		Total: json.Number(s.Total.String()),
	}
	for _, l := range s.Lines {
		if l.Quantity <= 0 || l.Quantity > MaxQuantity {
			return nil, fmt.Errorf("line %q: quantity %d: %w", l.ID, l.Quantity, ErrMalformedSnapshot)
		}
		w.Lines = append(w.Lines, wireLine{
			ID:                   l.ID,
			Name:                 l.Name,
			Price:                json.Number(l.UnitPrice.String()),
			Quantity:             l.Quantity,
			ImageURL:             l.ImageURL,
			RequiresPrescription: l.RequiresPrescription,
		})
	}
	return json.Marshal(w)
}

// DecodeSnapshot parses a channel value. It fails only when the payload is not
// a JSON object carrying a lines array (older writers used "items"); every
// line-level problem is repaired with the field defaults instead.
func DecodeSnapshot(data []byte) (CartSnapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return CartSnapshot{}, ErrMalformedSnapshot
	}

	rawLines, ok := fields["lines"]
	if !ok {
		rawLines, ok = fields["items"]
	}
	if !ok || isNull(rawLines) {
		return CartSnapshot{}, ErrMalformedSnapshot
	}
	lines, err := DecodeLines(rawLines)
	if err != nil {
		return CartSnapshot{}, err
	}

	s := CartSnapshot{Lines: lines}
	if total, ok := parseAmount(fields["total"]); ok {
		s.Total = total
		s.HasTotal = true
	} else {
		s.Total = SumLines(lines)
	}
	return s, nil
}

// DecodeLines decodes a JSON array of line records. Elements that are not
// objects, or whose quantity is not in 1..MaxQuantity, are dropped.
func DecodeLines(raw json.RawMessage) ([]CartLine, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, ErrMalformedSnapshot
	}
	lines := make([]CartLine, 0, len(elems))
	for _, e := range elems {
		if l, ok := DecodeLine(e); ok {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// DecodeLine applies the per-field defaults to a single line record. Both the
// channel payload and backend cart responses go through here.
func DecodeLine(raw json.RawMessage) (CartLine, bool) {
	var f map[string]json.RawMessage
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return CartLine{}, false
	}

	l := CartLine{
		ID:        parseID(f),
		Name:      DefaultLineName,
		UnitPrice: decimal.Zero,
		Quantity:  1,
	}
	if name := parseString(f["name"]); name != "" {
		l.Name = name
	}
	if price, ok := parseAmount(f["price"]); ok {
		l.UnitPrice = price
	}
	if q, present := f["quantity"]; present && !isNull(q) {
		if n, ok := parseInteger(q); ok {
			if !n.IsPositive() || n.GreaterThan(maxQuantity) {
				return CartLine{}, false
			}
			l.Quantity = int(n.IntPart())
		}
	}
	l.ImageURL = parseString(f["image_url"])
	l.RequiresPrescription = parseBool(f["requires_prescription"])
	return l, true
}

func parseID(f map[string]json.RawMessage) string {
	for _, key := range []string{"id", "product_id"} {
		raw, ok := f[key]
		if !ok || isNull(raw) {
			continue
		}
		if s := parseString(raw); s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func parseString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// parseAmount accepts a JSON number or a numeric string and rejects negatives.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || isNull(raw) {
		return decimal.Zero, false
	}
	text := string(bytes.TrimSpace(raw))
	if s := parseString(raw); s != "" {
		text = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(text)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// parseInteger keeps the value as a decimal so callers can range-check it
// before narrowing to int.
func parseInteger(raw json.RawMessage) (decimal.Decimal, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsInteger() {
		return decimal.Zero, false
	}
	return d, true
}

// parseBool accepts a JSON boolean or its string form; anything else is false.
func parseBool(raw json.RawMessage) bool {
	if len(raw) == 0 || isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return strings.EqualFold(strings.TrimSpace(parseString(raw)), "true")
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
