// Package bulletins loads the manifest of weekly newsletter bulletins.
//
// A bulletin is only metadata here: its id, title, sort date and the path
// of its rendered document. The sort date is what selects the active date
// of every derived view.
package bulletins

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"marketdesk/internal/dataprocessing"
)

// ErrNotFound is returned when no bulletin has the requested id
var ErrNotFound = errors.New("bulletin not found")

// Bulletin describes one weekly newsletter
type Bulletin struct {
	ID       string    `yaml:"id" json:"id" validate:"required"`
	Title    string    `yaml:"title" json:"title" validate:"required"`
	RawDate  string    `yaml:"sort_date" json:"-" validate:"required"`
	SortDate time.Time `yaml:"-" json:"sort_date"`
	Path     string    `yaml:"path" json:"path,omitempty"`
	Summary  string    `yaml:"summary" json:"summary,omitempty"`
	Tags     []string  `yaml:"tags" json:"tags,omitempty"`
}

type manifest struct {
	Bulletins []Bulletin `yaml:"bulletins" validate:"dive"`
}

// Catalog is an immutable list of bulletins, newest first
type Catalog struct {
	items []Bulletin
	byID  map[string]int
}

// Load reads a YAML manifest. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read bulletin manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML manifest
func Parse(data []byte) (*Catalog, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode bulletin manifest: %w", err)
	}
	if err := validator.New().Struct(m); err != nil {
		return nil, fmt.Errorf("invalid bulletin manifest: %w", err)
	}
	return New(m.Bulletins)
}

// New builds a catalog, parsing each sort date. Dates may be written as
// YYYY-MM-DD, M/D/YYYY or a spreadsheet day serial.
func New(items []Bulletin) (*Catalog, error) {
	c := &Catalog{
		items: make([]Bulletin, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}

	for _, b := range items {
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate bulletin id %q", b.ID)
		}
		if b.RawDate != "" {
			t, ok := dataprocessing.ParseDateToken(b.RawDate)
			if !ok {
				return nil, fmt.Errorf("bulletin %q: invalid sort_date %q", b.ID, b.RawDate)
			}
			b.SortDate = t
		}
		if b.SortDate.IsZero() {
			return nil, fmt.Errorf("bulletin %q: missing sort_date", b.ID)
		}
		c.byID[b.ID] = len(c.items)
		c.items = append(c.items, b)
	}

	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].SortDate.After(c.items[j].SortDate)
	})
	for i, b := range c.items {
		c.byID[b.ID] = i
	}
	return c, nil
}

// List returns every bulletin, newest first
func (c *Catalog) List() []Bulletin {
	out := make([]Bulletin, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of bulletins
func (c *Catalog) Len() int {
	return len(c.items)
}

// Get returns the bulletin with id
func (c *Catalog) Get(id string) (Bulletin, error) {
	i, ok := c.byID[id]
	if !ok {
		return Bulletin{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.items[i], nil
}

// Latest returns the bulletin with the most recent sort date
func (c *Catalog) Latest() (Bulletin, bool) {
	if len(c.items) == 0 {
		return Bulletin{}, false
	}
	return c.items[0], true
}
