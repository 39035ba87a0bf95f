// Package service implements the storefront flows on top of the stores and
// the backend client: checkout, coupon arithmetic, order history and catalog
// reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/everbite/storefront/api"
	"github.com/everbite/storefront/model"
)

var (
	// ErrEmptyCart means checkout was attempted with nothing in the cart; no
	// order call was made.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotAuthenticated means the caller must log in first. Handlers map
	// this to the login entry point.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCoupon means the coupon code is not recognized; the discount
	// is zero.
	ErrInvalidCoupon = errors.New("invalid coupon code")
)

// couponCode is the single recognized promotion; it takes 20% off the
// subtotal. Matching is case-insensitive.
const (
	couponCode = "EVERBITE20"
	couponRate = 0.20
)

// CartStore is the slice of the cart the checkout flow uses.
type CartStore interface {
	Lines() []model.CartLine
	Subtotal() float64
	Clear()
}

// SessionInfo is the slice of the session the flows read.
type SessionInfo interface {
	IsAuthenticated() bool
	User() *model.User
	Email() string
}

// OrderAPI submits orders to the backend.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (model.Order, error)
}

// Checkout turns a non-empty, authenticated cart into a submitted order.
type Checkout struct {
	cart    CartStore
	session SessionInfo
	orders  OrderAPI
}

// NewCheckout wires the checkout flow.
func NewCheckout(cart CartStore, session SessionInfo, orders OrderAPI) *Checkout {
	return &Checkout{cart: cart, session: session, orders: orders}
}

// CouponDiscount returns the discount a coupon code earns on subtotal.
// An empty code is simply "no coupon": zero discount, no error. Any other
// unrecognized code is ErrInvalidCoupon, also with zero discount.
func CouponDiscount(code string, subtotal float64) (float64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}
	if strings.EqualFold(code, couponCode) {
		return subtotal * couponRate, nil
	}
	return 0, ErrInvalidCoupon
}

// PlaceOrder validates, assembles and submits the order.
//
// The payload is captured before the submission starts: the item snapshot and
// total a successful order records are exactly what the cart held at this
// moment, even if the user keeps mutating the cart during the round trip.
// On success the cart is cleared; on failure it is left untouched so the
// caller can retry.
//
// When the session carries a name it wins over fallbackName; the customer
// email is always the session's, so orders are attributed to the logged-in
// identity.
func (c *Checkout) PlaceOrder(ctx context.Context, fallbackName, couponCode string) (model.Order, error) {
	// snapshot before the submission begins; the order records these lines
	// even if the cart changes during the round trip
	items := c.cart.Lines()
	subtotal := c.cart.Subtotal()

	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	user := c.session.User()
	if user == nil {
		return model.Order{}, ErrNotAuthenticated
	}

	discount, err := CouponDiscount(couponCode, subtotal)
	if err != nil {
		return model.Order{}, err
	}
	name := user.FullName()
	if strings.TrimSpace(user.FirstName) == "" && strings.TrimSpace(fallbackName) != "" {
		name = fallbackName
	}

	req := api.OrderRequest{
		CustomerName:  name,
		CustomerEmail: user.Email,
		TotalAmount:   subtotal - discount,
		Items:         items,
		Status:        model.StatusPending,
	}

	order, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		return model.Order{}, fmt.Errorf("place order: %w", err)
	}

	c.cart.Clear()
	return order, nil
}
