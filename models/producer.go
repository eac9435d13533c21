package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const ProductKeyPrefix = "Product_"

// ProductDefinition is one `Product_<n>` field of a producer document.
type ProductDefinition struct {
	Name        string   `bson:"Name" json:"name" yaml:"name"`
	Price       float64  `bson:"Price" json:"price" yaml:"price"`
	Description string   `bson:"Description" json:"description" yaml:"description"`
	Images      []string `bson:"Images" json:"images" yaml:"images"`
	Options     []string `bson:"Options,omitempty" json:"options" yaml:"options"`
}

// HasOption reports whether option is one of the definition's choices.
func (d ProductDefinition) HasOption(option string) bool {
	for _, o := range d.Options {
		if o == option {
			return true
		}
	}
	return false
}

// DefaultOption is the first option, or "" when the product has none.
func (d ProductDefinition) DefaultOption() string {
	if len(d.Options) == 0 {
		return ""
	}
	return d.Options[0]
}

type ProducerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Image    string `json:"image"`
}

// Producer mirrors the producer document. Products are stored as sibling
// fields named Product_<n>, so the BSON codec is written by hand.
type Producer struct {
	ID       string                       `json:"id" yaml:"id"`
	Name     string                       `json:"name" yaml:"name"`
	Kind     string                       `json:"kind" yaml:"kind"`
	Location string                       `json:"location" yaml:"location"`
	Image    string                       `json:"image" yaml:"image"`
	Products map[string]ProductDefinition `json:"products" yaml:"products"`
}

func (p *Producer) Info() ProducerInfo {
	return ProducerInfo{ID: p.ID, Name: p.Name, Kind: p.Kind, Location: p.Location, Image: p.Image}
}

// ProductKeys returns the product field names ordered by their numeric suffix.
func (p *Producer) ProductKeys() []string {
	keys := make([]string, 0, len(p.Products))
	for k := range p.Products {
		keys = append(keys, k)
	}
	SortKeysBySuffix(keys, ProductKeyPrefix)
	return keys
}

// SortKeysBySuffix orders keys like Product_2, Product_10 numerically. Keys
// without a numeric suffix sort after numbered ones, lexically.
func SortKeysBySuffix(keys []string, prefix string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iok := keySuffix(keys[i], prefix)
		nj, jok := keySuffix(keys[j], prefix)
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

func keySuffix(key, prefix string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
	return n, err == nil
}

func (p Producer) MarshalBSON() ([]byte, error) {
	doc := bson.D{
		{Key: "_id", Value: p.ID},
		{Key: "Name", Value: p.Name},
		{Key: "Kind", Value: p.Kind},
		{Key: "Location", Value: p.Location},
		{Key: "Image", Value: p.Image},
	}
	for _, key := range p.ProductKeys() {
		doc = append(doc, bson.E{Key: key, Value: p.Products[key]})
	}
	return bson.Marshal(doc)
}

func (p *Producer) UnmarshalBSON(data []byte) error {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	*p = Producer{Products: make(map[string]ProductDefinition)}
	for _, el := range elems {
		key, val := el.Key(), el.Value()
		switch {
		case key == "_id":
			p.ID = idString(val)
		case key == "Name":
			p.Name, _ = val.StringValueOK()
		case key == "Kind":
			p.Kind, _ = val.StringValueOK()
		case key == "Location":
			p.Location, _ = val.StringValueOK()
		case key == "Image":
			p.Image, _ = val.StringValueOK()
		case strings.HasPrefix(key, ProductKeyPrefix):
			var def ProductDefinition
			if err := val.Unmarshal(&def); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			p.Products[key] = def
		}
	}
	return nil
}

func idString(val bson.RawValue) string {
	if s, ok := val.StringValueOK(); ok {
		return s
	}
	if oid, ok := val.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return ""
}
