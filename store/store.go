// Package store persists producers and orders. Mongo is the production
// backend; Memory backs tests and local runs without a database.
package store

import (
	"context"
	"errors"

	"grouporder/models"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrMemberExists means the member key is already taken in the order.
	ErrMemberExists = errors.New("member key already present")
)

// TotalUpdate says how Total_Amount changes alongside a member write.
// Increment adds Value server-side; otherwise Value replaces the field.
type TotalUpdate struct {
	Increment bool
	Value     float64
}

type ProducerStore interface {
	FindProducer(ctx context.Context, id string) (*models.Producer, error)
	ListProducers(ctx context.Context) ([]models.ProducerInfo, error)
	UpsertProducer(ctx context.Context, p *models.Producer) error
}

type OrderStore interface {
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrdersByCreator(ctx context.Context, userID string) ([]models.Order, error)
	// AddMember writes member under key and updates Total_Amount in one
	// document update. It returns the total stored after the write.
	AddMember(ctx context.Context, orderID, key string, member models.Member, total TotalUpdate) (float64, error)
}

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	BlacklistToken(ctx context.Context, token string, exp int64) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
