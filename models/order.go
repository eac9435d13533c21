package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	MemberKeyPrefix  = "Member_"
	TotalAmountField = "Total_Amount"
	NoOption         = "None"
)

// MemberKey derives the member field name from the submission time.
func MemberKey(t time.Time) string {
	return fmt.Sprintf("%s%d", MemberKeyPrefix, t.UnixMilli())
}

type LineItem struct {
	Name     string  `bson:"Name" json:"name"`
	Quantity int     `bson:"Quantity" json:"quantity"`
	Price    float64 `bson:"Price" json:"price"`
	Option   string  `bson:"Option" json:"option"`
}

// Member is one submitter's contribution. Line items sit next to Name in the
// same sub-document, keyed by the entry id they came from.
type Member struct {
	Name  string              `json:"name"`
	Items map[string]LineItem `json:"items"`
}

func (m *Member) ItemKeys() []string {
	keys := make([]string, 0, len(m.Items))
	for k := range m.Items {
		keys = append(keys, k)
	}
	SortKeysBySuffix(keys, "")
	return keys
}

func (m Member) MarshalBSON() ([]byte, error) {
	doc := bson.D{{Key: "Name", Value: m.Name}}
	for _, key := range m.ItemKeys() {
		doc = append(doc, bson.E{Key: key, Value: m.Items[key]})
	}
	return bson.Marshal(doc)
}

func (m *Member) UnmarshalBSON(data []byte) error {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	*m = Member{Items: make(map[string]LineItem)}
	for _, el := range elems {
		key, val := el.Key(), el.Value()
		if key == "Name" {
			m.Name, _ = val.StringValueOK()
			continue
		}
		if _, ok := val.DocumentOK(); !ok {
			continue
		}
		var item LineItem
		if err := val.Unmarshal(&item); err != nil {
			return fmt.Errorf("decode line item %s: %w", key, err)
		}
		m.Items[key] = item
	}
	return nil
}

// Order mirrors the shared order document.
type Order struct {
	ID          string            `json:"id"`
	ProducerID  string            `json:"producerId"`
	CreatedBy   string            `json:"createdBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	TotalAmount float64           `json:"totalAmount"`
	Members     map[string]Member `json:"members"`
}

// MemberKeys returns member field names in submission order.
func (o *Order) MemberKeys() []string {
	keys := make([]string, 0, len(o.Members))
	for k := range o.Members {
		keys = append(keys, k)
	}
	SortKeysBySuffix(keys, MemberKeyPrefix)
	return keys
}

func (o Order) MarshalBSON() ([]byte, error) {
	doc := bson.D{
		{Key: "_id", Value: o.ID},
		{Key: "Producer_ID", Value: o.ProducerID},
		{Key: "Created_By", Value: o.CreatedBy},
		{Key: "Created_At", Value: o.CreatedAt},
		{Key: TotalAmountField, Value: o.TotalAmount},
	}
	for _, key := range o.MemberKeys() {
		doc = append(doc, bson.E{Key: key, Value: o.Members[key]})
	}
	return bson.Marshal(doc)
}

func (o *Order) UnmarshalBSON(data []byte) error {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	*o = Order{Members: make(map[string]Member)}
	for _, el := range elems {
		key, val := el.Key(), el.Value()
		switch {
		case key == "_id":
			o.ID = idString(val)
		case key == "Producer_ID":
			o.ProducerID = idString(val)
		case key == "Created_By":
			o.CreatedBy = idString(val)
		case key == "Created_At":
			if err := val.Unmarshal(&o.CreatedAt); err != nil {
				return fmt.Errorf("decode Created_At: %w", err)
			}
		case key == TotalAmountField:
			if err := val.Unmarshal(&o.TotalAmount); err != nil {
				return fmt.Errorf("decode %s: %w", TotalAmountField, err)
			}
		case strings.HasPrefix(key, MemberKeyPrefix):
			var m Member
			if err := val.Unmarshal(&m); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			o.Members[key] = m
		}
	}
	return nil
}

// OrderedItem is what the confirmation screen receives after a submit.
type OrderedItem struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"min=0"`
	Price    float64 `json:"price" binding:"min=0"`
}
