// Package corpus holds the fixed movie collection that recommendations are drawn from.
package corpus

import "fmt"

// Fields are the descriptive columns of a corpus row.
type Fields struct {
	Title       string
	Plot        string
	ReleaseYear int
	Origin      string
	Director    string
	Cast        string
	Genre       string
	WikiPage    string
}

// Item is a single movie in the corpus (immutable value object).
// Its ID is the row position and doubles as the index into the embedding store.
type Item struct {
	id     int
	fields Fields
}

// ID returns the stable corpus index.
func (i *Item) ID() int { return i.id }

// Title returns the display title, used as the metadata lookup key.
func (i *Item) Title() string { return i.fields.Title }

// Plot returns the text that gets embedded.
func (i *Item) Plot() string { return i.fields.Plot }

// ReleaseYear returns the release year, 0 when unknown.
func (i *Item) ReleaseYear() int { return i.fields.ReleaseYear }

// Origin returns the origin/ethnicity column.
func (i *Item) Origin() string { return i.fields.Origin }

// Director returns the director column.
func (i *Item) Director() string { return i.fields.Director }

// Cast returns the cast column.
func (i *Item) Cast() string { return i.fields.Cast }

// Genre returns the genre column.
func (i *Item) Genre() string { return i.fields.Genre }

// WikiPage returns the source wiki page URL.
func (i *Item) WikiPage() string { return i.fields.WikiPage }

// Corpus is an ordered, immutable set of items. Item i has ID i.
type Corpus struct {
	items []Item
}

// New builds a corpus from rows, assigning IDs by position.
// Every row must carry a title and a plot.
func New(rows []Fields) (*Corpus, error) {
	items := make([]Item, len(rows))
	for i, r := range rows {
		if r.Title == "" {
			return nil, fmt.Errorf("row %d: title is required", i)
		}
		if r.Plot == "" {
			return nil, fmt.Errorf("row %d: plot is required", i)
		}
		items[i] = Item{id: i, fields: r}
	}
	return &Corpus{items: items}, nil
}

// Len returns the number of items.
func (c *Corpus) Len() int { return len(c.items) }

// Item returns the item with the given ID.
func (c *Corpus) Item(id int) (Item, bool) {
	if id < 0 || id >= len(c.items) {
		return Item{}, false
	}
	return c.items[id], true
}

// Plots returns the embedding texts in corpus order.
func (c *Corpus) Plots() []string {
	plots := make([]string, len(c.items))
	for i := range c.items {
		plots[i] = c.items[i].fields.Plot
	}
	return plots
}
