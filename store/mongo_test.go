package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"grouporder/database"
	"grouporder/models"
)

func mockOrders(mt *mtest.T) (*Mongo, string) {
	ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
	return NewMongo(&database.Collections{Orders: mt.Coll}), ns
}

var dana = models.Member{
	Name: "Dana",
	Items: map[string]models.LineItem{
		"Product_1-1": {Name: "Bread", Quantity: 2, Price: 10, Option: "Sliced"},
	},
}

func TestMongoAddMember(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increment", func(mt *mtest.T) {
		s, _ := mockOrders(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: "o1"}, {Key: models.TotalAmountField, Value: 35.0}},
		}))

		total, err := s.AddMember(context.Background(), "o1", "Member_1", dana, TotalUpdate{Increment: true, Value: 20})
		require.NoError(mt, err)
		assert.Equal(mt, 35.0, total)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "o1", cmd.Lookup("query", "_id").StringValue())
		assert.False(mt, cmd.Lookup("query", "Member_1", "$exists").Boolean(), "the member key must be free")
		assert.Equal(mt, 20.0, cmd.Lookup("update", "$inc", models.TotalAmountField).Double())
		assert.Equal(mt, "Dana", cmd.Lookup("update", "$set", "Member_1", "Name").StringValue())
		assert.Equal(mt, "Sliced", cmd.Lookup("update", "$set", "Member_1", "Product_1-1", "Option").StringValue())
		_, err = cmd.LookupErr("update", "$set", models.TotalAmountField)
		assert.Error(mt, err, "increment must not also overwrite the total")
	})

	mt.Run("set", func(mt *mtest.T) {
		s, _ := mockOrders(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: "o1"}, {Key: models.TotalAmountField, Value: 20.0}},
		}))

		total, err := s.AddMember(context.Background(), "o1", "Member_1", dana, TotalUpdate{Value: 20})
		require.NoError(mt, err)
		assert.Equal(mt, 20.0, total)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, 20.0, cmd.Lookup("update", "$set", models.TotalAmountField).Double())
		_, err = cmd.LookupErr("update", "$inc")
		assert.Error(mt, err)
	})

	mt.Run("missing order", func(mt *mtest.T) {
		s, ns := mockOrders(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := s.AddMember(context.Background(), "o1", "Member_1", dana, TotalUpdate{Increment: true, Value: 20})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("key clash", func(mt *mtest.T) {
		s, ns := mockOrders(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int64(1)}}),
		)

		_, err := s.AddMember(context.Background(), "o1", "Member_1", dana, TotalUpdate{Increment: true, Value: 20})
		assert.ErrorIs(mt, err, ErrMemberExists)
	})

	mt.Run("write error", func(mt *mtest.T) {
		s, _ := mockOrders(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad update",
		}))

		_, err := s.AddMember(context.Background(), "o1", "Member_1", dana, TotalUpdate{Increment: true, Value: 20})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrMemberExists)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoFindOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes members", func(mt *mtest.T) {
		s, ns := mockOrders(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "o1"},
			{Key: "Producer_ID", Value: "p1"},
			{Key: models.TotalAmountField, Value: 20.0},
			{Key: "Member_1", Value: dana},
		}))

		o, err := s.FindOrder(context.Background(), "o1")
		require.NoError(mt, err)
		assert.Equal(mt, "p1", o.ProducerID)
		assert.Equal(mt, 20.0, o.TotalAmount)
		require.Contains(mt, o.Members, "Member_1")
		assert.Equal(mt, dana, o.Members["Member_1"])
	})

	mt.Run("not found", func(mt *mtest.T) {
		s, ns := mockOrders(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindOrder(context.Background(), "o1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
