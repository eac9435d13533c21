// Package editor holds the per-session line item state: which products the
// user is looking at, in what quantity and with which option.
package editor

import (
	"fmt"

	"github.com/goccy/go-json"

	"grouporder/apperr"
	"grouporder/models"
)

// Entry is one configurable, possibly duplicated, instance of a product.
// An empty SelectedOption means no option is chosen.
type Entry struct {
	ID             string                   `json:"id"`
	ProductKey     string                   `json:"productKey"`
	Definition     models.ProductDefinition `json:"definition"`
	SelectedOption string                   `json:"selectedOption"`
	Quantity       int                      `json:"quantity"`
}

// Product is a definition paired with its Product_<n> key.
type Product struct {
	Key        string
	Definition models.ProductDefinition
}

// Sequence is an immutable list of entries. Every operation returns a new
// Sequence and leaves the receiver untouched. Entry ids come from a counter
// carried by the sequence, so replaying the same operations yields the same ids.
type Sequence struct {
	entries []Entry
	next    int
}

func NewSequence(products []Product) Sequence {
	var s Sequence
	s.entries = make([]Entry, 0, len(products))
	for _, p := range products {
		var e Entry
		e, s.next = freshEntry(p.Key, p.Definition, s.next)
		s.entries = append(s.entries, e)
	}
	return s
}

func freshEntry(key string, def models.ProductDefinition, next int) (Entry, int) {
	next++
	return Entry{
		ID:             fmt.Sprintf("%s_%d", key, next),
		ProductKey:     key,
		Definition:     def,
		SelectedOption: def.DefaultOption(),
	}, next
}

func (s Sequence) Len() int { return len(s.entries) }

// Entries returns a copy of the entries.
func (s Sequence) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s Sequence) At(i int) Entry {
	s.mustIndex(i)
	return s.entries[i]
}

func (s Sequence) mustIndex(i int) {
	if i < 0 || i >= len(s.entries) {
		panic(fmt.Sprintf("editor: entry index %d out of range [0,%d)", i, len(s.entries)))
	}
}

func (s Sequence) with(i int, e Entry) Sequence {
	entries := s.Entries()
	entries[i] = e
	return Sequence{entries: entries, next: s.next}
}

func (s Sequence) Increment(i int) Sequence {
	s.mustIndex(i)
	e := s.entries[i]
	e.Quantity++
	return s.with(i, e)
}

// Decrement floors the quantity at zero.
func (s Sequence) Decrement(i int) Sequence {
	s.mustIndex(i)
	e := s.entries[i]
	if e.Quantity > 0 {
		e.Quantity--
	}
	return s.with(i, e)
}

// SetOption rejects options the product does not offer. Clearing the option
// is only allowed for products without options.
func (s Sequence) SetOption(i int, option string) (Sequence, error) {
	s.mustIndex(i)
	e := s.entries[i]
	switch {
	case option == "" && len(e.Definition.Options) == 0:
	case !e.Definition.HasOption(option):
		return s, apperr.Invalidf("option", "%q is not offered for %s", option, e.Definition.Name)
	}
	e.SelectedOption = option
	return s.with(i, e), nil
}

// Duplicate inserts a fresh copy of entry i right after it, with quantity 0
// and the default option.
func (s Sequence) Duplicate(i int) Sequence {
	s.mustIndex(i)
	src := s.entries[i]
	dup, next := freshEntry(src.ProductKey, src.Definition, s.next)

	entries := make([]Entry, 0, len(s.entries)+1)
	entries = append(entries, s.entries[:i+1]...)
	entries = append(entries, dup)
	entries = append(entries, s.entries[i+1:]...)
	return Sequence{entries: entries, next: next}
}

func (s Sequence) Remove(i int) Sequence {
	s.mustIndex(i)
	entries := make([]Entry, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:i]...)
	entries = append(entries, s.entries[i+1:]...)
	return Sequence{entries: entries, next: s.next}
}

type sequenceJSON struct {
	Entries []Entry `json:"entries"`
	Next    int     `json:"next"`
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(sequenceJSON{Entries: entries, Next: s.next})
}

func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raw sequenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sequence{entries: raw.Entries, next: raw.Next}
	return nil
}
