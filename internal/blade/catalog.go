package blade

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateMode is returned when two modes share a name.
	ErrDuplicateMode = errors.New("blade: duplicate mode name")

	// ErrNoFallback is returned when a catalog has no fallback mode.
	ErrNoFallback = errors.New("blade: catalog has no fallback mode")
)

// Catalog holds the registered modes in descending priority. Ties keep
// registration order.
type Catalog struct {
	modes    []Mode
	fallback Mode
}

// NewCatalog returns a catalog that falls back to fallback when no
// registered predicate holds.
func NewCatalog(fallback Mode, modes ...Mode) (*Catalog, error) {
	if fallback == nil {
		return nil, ErrNoFallback
	}
	c := &Catalog{fallback: fallback}
	for _, m := range modes {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Register(m Mode) error {
	if m.Name() == c.fallback.Name() {
		return fmt.Errorf("%w: %s", ErrDuplicateMode, m.Name())
	}
	for _, o := range c.modes {
		if o.Name() == m.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateMode, m.Name())
		}
	}
	c.modes = append(c.modes, m)
	sort.SliceStable(c.modes, func(i, j int) bool {
		return c.modes[i].Priority() > c.modes[j].Priority()
	})
	return nil
}

// Select returns the first mode whose predicate holds, or the fallback.
// Evaluation stops at the first match.
func (c *Catalog) Select(w *Weapon) Mode {
	for _, m := range c.modes {
		if m.Test(w) {
			return m
		}
	}
	return c.fallback
}

func (c *Catalog) Fallback() Mode { return c.fallback }

// Modes lists the registered modes in evaluation order, fallback last.
func (c *Catalog) Modes() []Mode {
	out := append([]Mode(nil), c.modes...)
	return append(out, c.fallback)
}

// Lookup finds a mode by name.
func (c *Catalog) Lookup(name string) (Mode, bool) {
	for _, m := range c.Modes() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}
