package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type SummaryLine struct {
	ProductID string `json:"product_id"`
	Text      string `json:"text"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// Summary is the order as the payment page renders it.
type Summary struct {
	Lines     []SummaryLine `json:"lines"`
	ItemCount int           `json:"item_count"`
	Total     string        `json:"total"`
	Currency  string        `json:"currency"`
	Empty     bool          `json:"empty"`
}

func Summarize(order domain.CartSnapshot, currency string) Summary {
	s := Summary{
		Lines:     make([]SummaryLine, 0, len(order.Lines)),
		ItemCount: order.ItemCount(),
		Total:     FormatAmount(order.Total),
		Currency:  currency,
		Empty:     order.IsEmpty(),
	}
	for _, l := range order.Lines {
		sub := FormatAmount(l.Subtotal())
		s.Lines = append(s.Lines, SummaryLine{
			ProductID: l.ID,
			Text:      fmt.Sprintf("%s x%d - $%s", l.Name, l.Quantity, sub),
			Quantity:  l.Quantity,
			Subtotal:  sub,
		})
	}
	return s
}

// FormatAmount renders money with two decimals, the only display format
// used for both lines and totals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
