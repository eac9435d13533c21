package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"grouporder/models"
	"grouporder/store"
)

type fixtureFile struct {
	Producers []models.Producer `yaml:"producers"`
}

// ParseFixtures reads producers from a YAML document of the form
//
//	producers:
//	  - id: bakery-1
//	    name: Corner Bakery
//	    products:
//	      Product_1: {name: Bread, price: 10, options: [Sliced, Whole]}
func ParseFixtures(r io.Reader) ([]models.Producer, error) {
	var f fixtureFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	seen := make(map[string]bool, len(f.Producers))
	for i, p := range f.Producers {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("producer #%d: id is required", i+1)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("producer %q listed twice", p.ID)
		}
		seen[p.ID] = true
		for key, def := range p.Products {
			if !strings.HasPrefix(key, models.ProductKeyPrefix) {
				return nil, fmt.Errorf("producer %q: product key %q must start with %s", p.ID, key, models.ProductKeyPrefix)
			}
			if def.Price < 0 {
				return nil, fmt.Errorf("producer %q: %s has a negative price", p.ID, key)
			}
		}
	}
	return f.Producers, nil
}

// Seed upserts every producer and returns how many were written.
func Seed(ctx context.Context, producers store.ProducerStore, list []models.Producer) (int, error) {
	for i := range list {
		if err := producers.UpsertProducer(ctx, &list[i]); err != nil {
			return i, fmt.Errorf("upsert producer %s: %w", list[i].ID, err)
		}
	}
	return len(list), nil
}
