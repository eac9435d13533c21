package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collections groups the collections the service reads and writes.
type Collections struct {
	Producers *mongo.Collection
	Orders    *mongo.Collection
	Users     *mongo.Collection
	Blacklist *mongo.Collection
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func InitCollections(db *mongo.Database) *Collections {
	return &Collections{
		Producers: db.Collection("producers"),
		Orders:    db.Collection("orders"),
		Users:     db.Collection("users"),
		Blacklist: db.Collection("blacklist_tokens"),
	}
}
