package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProducerDecodesProductFields(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "Name", Value: "Hill Farm"},
		{Key: "Kind", Value: "Dairy"},
		{Key: "Location", Value: "Galilee"},
		{Key: "Image", Value: "https://img/farm.png"},
		{Key: "Product_10", Value: bson.D{{Key: "Name", Value: "Butter"}, {Key: "Price", Value: int32(12)}}},
		{Key: "Product_2", Value: bson.D{
			{Key: "Name", Value: "Cheese"},
			{Key: "Price", Value: 31.5},
			{Key: "Description", Value: "aged"},
			{Key: "Images", Value: bson.A{"a.png", "b.png"}},
			{Key: "Options", Value: bson.A{"250g", "500g"}},
		}},
		{Key: "Unrelated", Value: true},
	})
	require.NoError(t, err)

	var p Producer
	require.NoError(t, bson.Unmarshal(raw, &p))

	assert.Equal(t, oid.Hex(), p.ID)
	assert.Equal(t, "Hill Farm", p.Name)
	assert.Equal(t, "Dairy", p.Kind)
	assert.Equal(t, []string{"Product_2", "Product_10"}, p.ProductKeys())
	assert.Equal(t, 12.0, p.Products["Product_10"].Price)
	assert.Equal(t, []string{"250g", "500g"}, p.Products["Product_2"].Options)
	assert.Equal(t, "250g", p.Products["Product_2"].DefaultOption())
	assert.Equal(t, "", p.Products["Product_10"].DefaultOption())
}

func TestOrderDocumentLayout(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order := Order{
		ID:          "order-1",
		ProducerID:  "producer-1",
		CreatedAt:   created,
		TotalAmount: 30,
		Members: map[string]Member{
			"Member_1714564800000": {
				Name:  "dana",
				Items: map[string]LineItem{"Product_1_1": {Name: "Bread", Quantity: 3, Price: 10, Option: NoOption}},
			},
		},
	}

	raw, err := bson.Marshal(order)
	require.NoError(t, err)

	// Member fields sit at the top level of the document, next to Total_Amount.
	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))
	assert.Equal(t, 30.0, flat[TotalAmountField])
	member, ok := flat["Member_1714564800000"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "dana", member["Name"])

	var decoded Order
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, order.Members, decoded.Members)
	assert.True(t, created.Equal(decoded.CreatedAt))
}

func TestOrderMissingTotalDefaultsToZero(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: "o"}, {Key: "Producer_ID", Value: "p"}})
	require.NoError(t, err)

	var o Order
	require.NoError(t, bson.Unmarshal(raw, &o))
	assert.Zero(t, o.TotalAmount)
	assert.Empty(t, o.Members)
}

func TestMemberKeysSortNumerically(t *testing.T) {
	o := Order{Members: map[string]Member{
		"Member_100": {}, "Member_99": {}, "Member_1000": {},
	}}
	assert.Equal(t, []string{"Member_99", "Member_100", "Member_1000"}, o.MemberKeys())
	assert.Equal(t, "Member_1714564800000", MemberKey(time.UnixMilli(1714564800000)))
}
