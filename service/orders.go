package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/everbite/storefront/model"
)

// OrderLister fetches the backend's global order list.
type OrderLister interface {
	Orders(ctx context.Context) ([]model.Order, error)
}

// Orders is the order-history view. The backend has no per-user order
// endpoint: it returns every order, and the email filter below is the only
// boundary keeping other users' orders off the screen. Known trust-boundary
// weakness, preserved deliberately; see DESIGN.md.
type Orders struct {
	list    OrderLister
	session SessionInfo
}

// NewOrders wires the order-history view.
func NewOrders(list OrderLister, session SessionInfo) *Orders {
	return &Orders{list: list, session: session}
}

// Mine returns the current user's orders, newest first.
func (o *Orders) Mine(ctx context.Context) ([]model.Order, error) {
	if !o.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	email := o.session.Email()

	all, err := o.list.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	mine := make([]model.Order, 0, len(all))
	for _, ord := range all {
		if ord.CustomerEmail == email {
			mine = append(mine, ord)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

// Recent returns at most n of the user's newest orders (the strip shown next
// to the cart).
func (o *Orders) Recent(ctx context.Context, n int) ([]model.Order, error) {
	mine, err := o.Mine(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(mine) > n {
		mine = mine[:n]
	}
	return mine, nil
}
