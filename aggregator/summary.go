package aggregator

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"grouporder/models"
)

type MemberSummary struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	SubmittedAt time.Time         `json:"submittedAt"`
	Items       []models.LineItem `json:"items"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
}

// Summary is the order as the organizer sees it. Drift is the stored total
// minus the total recomputed from the members; it is non-zero only when an
// update was lost.
type Summary struct {
	OrderID       string          `json:"orderId"`
	ProducerID    string          `json:"producerId"`
	Members       []MemberSummary `json:"members"`
	ComputedTotal decimal.Decimal `json:"computedTotal"`
	StoredTotal   decimal.Decimal `json:"storedTotal"`
	Drift         decimal.Decimal `json:"drift"`
}

func Summarize(o *models.Order) Summary {
	s := Summary{
		OrderID:     o.ID,
		ProducerID:  o.ProducerID,
		Members:     make([]MemberSummary, 0, len(o.Members)),
		StoredTotal: decimal.NewFromFloat(o.TotalAmount),
	}
	computed := decimal.Zero
	for _, key := range o.MemberKeys() {
		m := o.Members[key]
		ms := MemberSummary{Key: key, Name: m.Name, SubmittedAt: submittedAt(key), Subtotal: decimal.Zero}
		for _, itemKey := range m.ItemKeys() {
			item := m.Items[itemKey]
			ms.Items = append(ms.Items, item)
			ms.Subtotal = ms.Subtotal.Add(LineTotal(item.Quantity, item.Price))
		}
		computed = computed.Add(ms.Subtotal)
		s.Members = append(s.Members, ms)
	}
	s.ComputedTotal = computed
	s.Drift = s.StoredTotal.Sub(computed)
	return s
}

func submittedAt(key string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimPrefix(key, models.MemberKeyPrefix), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
