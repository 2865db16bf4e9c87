// Package catalog holds the static questionnaire: named dimensions, each with
// an ordered list of question prompts.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog reports a malformed dimension set.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Dimension is a named category of related questions scored independently.
type Dimension struct {
	Name      string   `json:"name" koanf:"name"`
	Questions []string `json:"questions" koanf:"questions"`
}

// Catalog is an ordered, read-only set of dimensions.
type Catalog struct {
	dims  []Dimension
	index map[string]int
}

// New validates dims and builds a Catalog. Dimension names must be unique and
// non-blank, and every dimension needs at least one question.
func New(dims []Dimension) (Catalog, error) {
	if len(dims) == 0 {
		return Catalog{}, fmt.Errorf("%w: no dimensions", ErrInvalidCatalog)
	}
	c := Catalog{
		dims:  make([]Dimension, len(dims)),
		index: make(map[string]int, len(dims)),
	}
	for i, d := range dims {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("%w: dimension %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[name]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate dimension %q", ErrInvalidCatalog, name)
		}
		if len(d.Questions) == 0 {
			return Catalog{}, fmt.Errorf("%w: dimension %q has no questions", ErrInvalidCatalog, name)
		}
		qs := make([]string, len(d.Questions))
		copy(qs, d.Questions)
		c.dims[i] = Dimension{Name: name, Questions: qs}
		c.index[name] = i
	}
	return c, nil
}

// MustNew is New that panics; used for the built-in questionnaire.
func MustNew(dims []Dimension) Catalog {
	c, err := New(dims)
	if err != nil {
		panic(err)
	}
	return c
}

// Dimensions returns a copy of the dimensions in catalog order.
func (c Catalog) Dimensions() []Dimension {
	out := make([]Dimension, len(c.dims))
	for i, d := range c.dims {
		qs := make([]string, len(d.Questions))
		copy(qs, d.Questions)
		out[i] = Dimension{Name: d.Name, Questions: qs}
	}
	return out
}

// Names returns dimension names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.dims))
	for i, d := range c.dims {
		out[i] = d.Name
	}
	return out
}

// Lookup returns the dimension with the given name.
func (c Catalog) Lookup(name string) (Dimension, bool) {
	i, ok := c.index[name]
	if !ok {
		return Dimension{}, false
	}
	return c.dims[i], true
}

// Len returns the number of dimensions.
func (c Catalog) Len() int { return len(c.dims) }

// QuestionCount returns the total number of questions across dimensions.
func (c Catalog) QuestionCount() int {
	n := 0
	for _, d := range c.dims {
		n += len(d.Questions)
	}
	return n
}
