// Package confirmation renders what a submitter just ordered.
package confirmation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"grouporder/models"
)

const NoDetailsMessage = "No order details available."

type Line struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Receipt is either Empty with only Message set, or a list of lines with
// their total rounded to two decimals.
type Receipt struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Lines   []Line `json:"lines,omitempty"`
	Total   string `json:"total,omitempty"`
}

func Render(items []models.OrderedItem) Receipt {
	if len(items) == 0 {
		return Receipt{Empty: true, Message: NoDetailsMessage}
	}
	r := Receipt{Lines: make([]Line, 0, len(items))}
	total := decimal.Zero
	for _, it := range items {
		price := decimal.NewFromFloat(it.Price)
		sub := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		r.Lines = append(r.Lines, Line{Name: it.Name, Quantity: it.Quantity, Price: price, Subtotal: sub})
		total = total.Add(sub)
	}
	r.Total = total.StringFixed(2)
	return r
}

// Text lays the receipt out one line per item, prices suffixed with currency.
func (r Receipt) Text(currency string) string {
	if r.Empty {
		return r.Message + "\n"
	}
	var b strings.Builder
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%s - %d x %s%s = %s%s\n", l.Name, l.Quantity, l.Price.String(), currency, l.Subtotal.String(), currency)
	}
	fmt.Fprintf(&b, "Total: %s%s\n", r.Total, currency)
	return b.String()
}
