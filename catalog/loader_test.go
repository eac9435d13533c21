package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grouporder/apperr"
	"grouporder/models"
	"grouporder/store"
)

func seed(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.UpsertProducer(ctx, &models.Producer{
		ID:       "p1",
		Name:     "Hill Farm",
		Kind:     "Dairy",
		Location: "Galilee",
		Products: map[string]models.ProductDefinition{
			"Product_10": {Name: "Butter", Price: 12},
			"Product_2":  {Name: "Cheese", Price: 31.5, Options: []string{"250g", "500g"}},
			"Product_1":  {Name: "Milk", Price: 6.9, Images: []string{"milk.png"}},
		},
	}))
	require.NoError(t, m.CreateOrder(ctx, &models.Order{ID: "o1", ProducerID: "p1"}))
	require.NoError(t, m.CreateOrder(ctx, &models.Order{ID: "orphan", ProducerID: "gone"}))
	return m
}

func TestLoadDerivesEntries(t *testing.T) {
	m := seed(t)
	c, err := NewLoader(m, m).Load(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, models.ProducerInfo{ID: "p1", Name: "Hill Farm", Kind: "Dairy", Location: "Galilee"}, c.Producer)

	entries := c.Entries.Entries()
	require.Len(t, entries, 3)
	var names []string
	for _, e := range entries {
		names = append(names, e.Definition.Name)
		assert.Zero(t, e.Quantity)
	}
	assert.Equal(t, []string{"Milk", "Cheese", "Butter"}, names)
	assert.Equal(t, "", entries[0].SelectedOption)
	assert.Equal(t, "250g", entries[1].SelectedOption)
	assert.Equal(t, []string{"milk.png"}, entries[0].Definition.Images)
}

func TestLoadMissingProducer(t *testing.T) {
	m := seed(t)
	_, err := NewLoader(m, m).Load(context.Background(), "nope")
	assert.True(t, apperr.IsNotFound(err, "producer"))

	_, err = NewLoader(m, m).Load(context.Background(), "")
	assert.True(t, apperr.IsNotFound(err, "producer"))
}

func TestLoadForOrder(t *testing.T) {
	m := seed(t)
	l := NewLoader(m, m)

	c, err := l.LoadForOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "p1", c.Producer.ID)

	_, err = l.LoadForOrder(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err, "order"))

	_, err = l.LoadForOrder(context.Background(), "orphan")
	assert.True(t, apperr.IsNotFound(err, "producer"))
}

type failingProducers struct{ store.ProducerStore }

func (failingProducers) FindProducer(context.Context, string) (*models.Producer, error) {
	return nil, errors.New("connection reset")
}

func TestLoadPropagatesStoreErrors(t *testing.T) {
	m := seed(t)
	_, err := NewLoader(failingProducers{}, m).Load(context.Background(), "p1")
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "connection reset")
}
