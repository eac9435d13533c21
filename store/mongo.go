package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grouporder/database"
	"grouporder/models"
)

type Mongo struct {
	producers *mongo.Collection
	orders    *mongo.Collection
	users     *mongo.Collection
	blacklist *mongo.Collection
}

func NewMongo(c *database.Collections) *Mongo {
	return &Mongo{
		producers: c.Producers,
		orders:    c.Orders,
		users:     c.Users,
		blacklist: c.Blacklist,
	}
}

// idFilter matches both string ids and ObjectIDs, since documents created
// from the console carry ObjectIDs while ours carry their hex form.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func (s *Mongo) FindProducer(ctx context.Context, id string) (*models.Producer, error) {
	var p models.Producer
	err := s.producers.FindOne(ctx, idFilter(id)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find producer %s: %w", id, err)
	}
	return &p, nil
}

func (s *Mongo) ListProducers(ctx context.Context) ([]models.ProducerInfo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "Name", Value: 1}})
	cursor, err := s.producers.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list producers: %w", err)
	}
	var producers []models.Producer
	if err := cursor.All(ctx, &producers); err != nil {
		return nil, fmt.Errorf("decode producers: %w", err)
	}
	out := make([]models.ProducerInfo, 0, len(producers))
	for i := range producers {
		out = append(out, producers[i].Info())
	}
	return out, nil
}

func (s *Mongo) UpsertProducer(ctx context.Context, p *models.Producer) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.producers.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, opts); err != nil {
		return fmt.Errorf("upsert producer %s: %w", p.ID, err)
	}
	return nil
}

func (s *Mongo) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := s.orders.FindOne(ctx, idFilter(id)).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &o, nil
}

func (s *Mongo) CreateOrder(ctx context.Context, o *models.Order) error {
	if _, err := s.orders.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *Mongo) ListOrdersByCreator(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "Created_At", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{"Created_By": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// AddMember is a single conditional update: the order must exist and the
// member key must be free. Either both fields change or neither does.
func (s *Mongo) AddMember(ctx context.Context, orderID, key string, member models.Member, total TotalUpdate) (float64, error) {
	filter := idFilter(orderID)
	filter[key] = bson.M{"$exists": false}

	set := bson.M{key: member}
	update := bson.M{"$set": set}
	if total.Increment {
		update["$inc"] = bson.M{models.TotalAmountField: total.Value}
	} else {
		set[models.TotalAmountField] = total.Value
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{models.TotalAmountField: 1})

	var after struct {
		Total float64 `bson:"Total_Amount"`
	}
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&after)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := s.orders.CountDocuments(ctx, idFilter(orderID))
		if cerr != nil {
			return 0, fmt.Errorf("count order %s: %w", orderID, cerr)
		}
		if n == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrMemberExists
	}
	if err != nil {
		return 0, fmt.Errorf("update order %s: %w", orderID, err)
	}
	return after.Total, nil
}

func (s *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Mongo) BlacklistToken(ctx context.Context, token string, exp int64) error {
	if _, err := s.blacklist.InsertOne(ctx, bson.M{"token": token, "exp": exp}); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *Mongo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := s.blacklist.FindOne(ctx, bson.M{"token": token}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return true, nil
}
