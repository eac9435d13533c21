package aggregator

import (
	"strings"

	"github.com/shopspring/decimal"

	"grouporder/apperr"
	"grouporder/editor"
	"grouporder/models"
)

// BuildSubmission turns the session entries into a member record. Entries
// with quantity 0 are left out; they were looked at, not ordered.
func BuildSubmission(name string, entries []editor.Entry) (models.Member, []models.OrderedItem, decimal.Decimal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Member{}, nil, decimal.Zero, apperr.Invalid("name", "is required")
	}

	member := models.Member{Name: name, Items: make(map[string]models.LineItem)}
	var items []models.OrderedItem
	total := decimal.Zero

	for i, e := range entries {
		if err := validateEntry(i, e); err != nil {
			return models.Member{}, nil, decimal.Zero, err
		}
		if e.Quantity == 0 {
			continue
		}
		if _, dup := member.Items[e.ID]; dup {
			return models.Member{}, nil, decimal.Zero, apperr.Invalidf("entries", "entry id %s appears twice", e.ID)
		}

		option := e.SelectedOption
		if option == "" {
			option = models.NoOption
		}
		member.Items[e.ID] = models.LineItem{
			Name:     e.Definition.Name,
			Quantity: e.Quantity,
			Price:    e.Definition.Price,
			Option:   option,
		}
		items = append(items, models.OrderedItem{
			Name:     e.Definition.Name,
			Quantity: e.Quantity,
			Price:    e.Definition.Price,
		})
		total = total.Add(LineTotal(e.Quantity, e.Definition.Price))
	}

	if len(items) == 0 {
		return models.Member{}, nil, decimal.Zero, apperr.Invalid("entries", "no product has a quantity above zero")
	}
	return member, items, total, nil
}

func validateEntry(i int, e editor.Entry) error {
	if e.Quantity < 0 {
		return apperr.Invalidf("quantity", "entry %d has negative quantity %d", i, e.Quantity)
	}
	if e.SelectedOption != "" && !e.Definition.HasOption(e.SelectedOption) {
		return apperr.Invalidf("option", "%q is not offered for %s", e.SelectedOption, e.Definition.Name)
	}
	if e.Definition.Price < 0 {
		return apperr.Invalidf("price", "%s has a negative price", e.Definition.Name)
	}
	return nil
}

// LineTotal is quantity × price without binary float drift.
func LineTotal(quantity int, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}
