// Package catalog turns a producer document into the entries an order form
// starts from.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"grouporder/apperr"
	"grouporder/editor"
	"grouporder/models"
	"grouporder/store"
)

type Catalog struct {
	Producer models.ProducerInfo `json:"producer"`
	Entries  editor.Sequence     `json:"entries"`
}

type Loader struct {
	producers store.ProducerStore
	orders    store.OrderStore
}

func NewLoader(producers store.ProducerStore, orders store.OrderStore) *Loader {
	return &Loader{producers: producers, orders: orders}
}

// Load fetches the producer and derives one entry per product, ordered by
// the product's number, with quantity 0 and the first option selected.
func (l *Loader) Load(ctx context.Context, producerID string) (*Catalog, error) {
	if producerID == "" {
		return nil, apperr.NotFound("producer", producerID)
	}
	p, err := l.producers.FindProducer(ctx, producerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("producer", producerID)
	}
	if err != nil {
		return nil, fmt.Errorf("load producer: %w", err)
	}
	return FromProducer(p), nil
}

// LoadForOrder resolves the order's producer first, the way the order form
// is opened from a shared order link.
func (l *Loader) LoadForOrder(ctx context.Context, orderID string) (*Catalog, error) {
	if orderID == "" {
		return nil, apperr.NotFound("order", orderID)
	}
	o, err := l.orders.FindOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return l.Load(ctx, o.ProducerID)
}

func FromProducer(p *models.Producer) *Catalog {
	keys := p.ProductKeys()
	products := make([]editor.Product, 0, len(keys))
	for _, k := range keys {
		products = append(products, editor.Product{Key: k, Definition: p.Products[k]})
	}
	return &Catalog{Producer: p.Info(), Entries: editor.NewSequence(products)}
}
