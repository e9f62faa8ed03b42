package shop

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var ErrCartOverflow = errors.New("shop: cart total overflows")

type Line struct {
	Item     Item
	Quantity int
}

// Cart holds items picked for checkout, in the order they were first added.
type Cart struct {
	lines []Line
}

// Add changes an item's quantity by delta. A line that drops to zero or
// below leaves the cart.
func (c *Cart) Add(it Item, delta int) {
	i := slices.IndexFunc(c.lines, func(l Line) bool { return l.Item.Name == it.Name })
	if i < 0 {
		if delta > 0 {
			c.lines = append(c.lines, Line{Item: it, Quantity: delta})
		}
		return
	}
	c.lines[i].Quantity += delta
	if c.lines[i].Quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

func (c *Cart) Lines() []Line { return slices.Clone(c.lines) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Clear() { c.lines = nil }

// Total is the sum of price times quantity over every line.
func (c *Cart) Total() (int, error) {
	total := 0
	for _, l := range c.lines {
		if l.Item.Price != 0 && l.Quantity > (math.MaxInt-total)/l.Item.Price {
			return 0, fmt.Errorf("%w at %s", ErrCartOverflow, l.Item.Name)
		}
		total += l.Item.Price * l.Quantity
	}
	return total, nil
}

// Counts maps item names to quantities.
func (c *Cart) Counts() map[string]int {
	out := make(map[string]int, len(c.lines))
	for _, l := range c.lines {
		out[l.Item.Name] = l.Quantity
	}
	return out
}
