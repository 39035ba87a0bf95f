// Package store holds the storefront's client-side state: the shopping cart
// and the authenticated session. Both are process-wide singletons injected
// into the layers above them.
package store

import (
	"sync"

	"github.com/everbite/storefront/model"
)

// Cart is the authoritative client-side record of what the user intends to
// buy. It is independent of login state; anonymous carts are allowed and
// authentication is only required at checkout.
//
// Lines keep insertion order. At most one line exists per product id, and a
// line's quantity is always >= 1: decrementing to zero removes the line.
type Cart struct {
	mu    sync.Mutex
	lines []model.CartLine
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add puts one unit of p in the cart: an existing line for p.ID gets its
// quantity incremented, otherwise a new line is appended.
func (c *Cart) Add(p model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, model.CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Quantity: 1,
	})
}

// Remove deletes the line for id entirely, regardless of quantity. An id not
// in the cart is a no-op.
func (c *Cart) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Cart) removeLocked(id int64) {
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity of the line for id in place, preserving
// its position. qty <= 0 removes the line; an id not in the cart is a no-op.
func (c *Cart) SetQuantity(id int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		c.removeLocked(id)
		return
	}
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Quantity = qty
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the current cart lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]model.CartLine, len(c.lines))
	copy(cp, c.lines)
	return cp
}

// Count is the total number of units across all lines, recomputed on every
// call.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price*quantity across all lines, recomputed on
// every call.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, l := range c.lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}
