package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/everbite/storefront/api"
	"github.com/everbite/storefront/model"
	"github.com/everbite/storefront/store"
)

// fakeSession implements SessionInfo.
type fakeSession struct {
	user *model.User
}

func (f *fakeSession) IsAuthenticated() bool { return f.user != nil }
func (f *fakeSession) User() *model.User {
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}
func (f *fakeSession) Email() string {
	if f.user == nil {
		return ""
	}
	return f.user.Email
}

// fakeOrderAPI implements OrderAPI with function fields.
type fakeOrderAPI struct {
	CreateOrderFn func(ctx context.Context, req api.OrderRequest) (model.Order, error)
	calls         int
	lastReq       api.OrderRequest
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, req api.OrderRequest) (model.Order, error) {
	f.calls++
	f.lastReq = req
	if f.CreateOrderFn != nil {
		return f.CreateOrderFn(ctx, req)
	}
	return model.Order{ID: 1, CustomerEmail: req.CustomerEmail, TotalAmount: req.TotalAmount, Status: req.Status}, nil
}

func jane() *model.User {
	return &model.User{ID: 1, Email: "jane@everbite.dev", FirstName: "Jane", LastName: "Doe"}
}

func cartWith(t *testing.T, products ...model.Product) *store.Cart {
	t.Helper()
	c := store.NewCart()
	for _, p := range products {
		c.Add(p)
	}
	return c
}

func TestPlaceOrderEmptyCartNoCall(t *testing.T) {
	orders := &fakeOrderAPI{}
	co := NewCheckout(store.NewCart(), &fakeSession{user: jane()}, orders)

	_, err := co.PlaceOrder(context.Background(), "", "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatal("empty cart must not issue a network call")
	}
}

func TestPlaceOrderUnauthenticatedNoCall(t *testing.T) {
	orders := &fakeOrderAPI{}
	cart := cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 10})
	co := NewCheckout(cart, &fakeSession{}, orders)

	_, err := co.PlaceOrder(context.Background(), "", "")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatal("anonymous checkout must not issue a network call")
	}
	if cart.Count() != 1 {
		t.Fatal("cart must be untouched")
	}
}

func TestPlaceOrderSuccessSnapshotsAndClears(t *testing.T) {
	cart := cartWith(t,
		model.Product{ID: 1, Name: "Pho", Price: 10},
		model.Product{ID: 2, Name: "Bun Cha", Price: 8},
	)
	snapshot := cart.Lines()

	orders := &fakeOrderAPI{
		CreateOrderFn: func(ctx context.Context, req api.OrderRequest) (model.Order, error) {
			// the user keeps shopping during the round trip; the payload must
			// not see it
			cart.Add(model.Product{ID: 3, Name: "Banh Mi", Price: 4})
			return model.Order{ID: 7, Status: model.StatusPending}, nil
		},
	}
	co := NewCheckout(cart, &fakeSession{user: jane()}, orders)

	order, err := co.PlaceOrder(context.Background(), "", "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.ID != 7 {
		t.Fatalf("order id = %d", order.ID)
	}
	if !reflect.DeepEqual(orders.lastReq.Items, snapshot) {
		t.Fatalf("payload items = %+v, want pre-submission snapshot %+v", orders.lastReq.Items, snapshot)
	}
	if orders.lastReq.TotalAmount != 18 {
		t.Fatalf("total = %v, want 18", orders.lastReq.TotalAmount)
	}
	if orders.lastReq.CustomerName != "Jane Doe" || orders.lastReq.CustomerEmail != "jane@everbite.dev" {
		t.Fatalf("customer = %q <%q>", orders.lastReq.CustomerName, orders.lastReq.CustomerEmail)
	}
	if orders.lastReq.Status != model.StatusPending {
		t.Fatalf("status = %q", orders.lastReq.Status)
	}
	if cart.Count() != 0 {
		t.Fatal("cart must be cleared after success")
	}
}

func TestPlaceOrderFailureLeavesCart(t *testing.T) {
	cart := cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 10})
	orders := &fakeOrderAPI{
		CreateOrderFn: func(ctx context.Context, req api.OrderRequest) (model.Order, error) {
			return model.Order{}, &api.Error{Status: 500, Message: "backend down"}
		},
	}
	co := NewCheckout(cart, &fakeSession{user: jane()}, orders)

	_, err := co.PlaceOrder(context.Background(), "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("api error should be wrapped, got %v", err)
	}
	if cart.Count() != 1 {
		t.Fatal("cart must be untouched on failure")
	}
}

func TestPlaceOrderNamePreference(t *testing.T) {
	// session without a profile name: the locally typed name is used
	orders := &fakeOrderAPI{}
	cart := cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 10})
	co := NewCheckout(cart, &fakeSession{user: &model.User{ID: 2, Email: "anon@everbite.dev"}}, orders)

	if _, err := co.PlaceOrder(context.Background(), "Typed Name", ""); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if orders.lastReq.CustomerName != "Typed Name" {
		t.Fatalf("customer name = %q", orders.lastReq.CustomerName)
	}

	// session with a profile name: it wins over the typed override
	orders = &fakeOrderAPI{}
	cart = cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 10})
	co = NewCheckout(cart, &fakeSession{user: jane()}, orders)

	if _, err := co.PlaceOrder(context.Background(), "Typed Name", ""); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if orders.lastReq.CustomerName != "Jane Doe" {
		t.Fatalf("customer name = %q", orders.lastReq.CustomerName)
	}
}

func TestPlaceOrderAppliesCoupon(t *testing.T) {
	orders := &fakeOrderAPI{}
	cart := cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 100})
	co := NewCheckout(cart, &fakeSession{user: jane()}, orders)

	if _, err := co.PlaceOrder(context.Background(), "", "everbite20"); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if orders.lastReq.TotalAmount != 80 {
		t.Fatalf("total = %v, want 80", orders.lastReq.TotalAmount)
	}
}

func TestPlaceOrderRejectsBadCoupon(t *testing.T) {
	orders := &fakeOrderAPI{}
	cart := cartWith(t, model.Product{ID: 1, Name: "Pho", Price: 100})
	co := NewCheckout(cart, &fakeSession{user: jane()}, orders)

	_, err := co.PlaceOrder(context.Background(), "", "FREELUNCH")
	if !errors.Is(err, ErrInvalidCoupon) {
		t.Fatalf("want ErrInvalidCoupon, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatal("invalid coupon must not submit an order")
	}
	if cart.Count() != 1 {
		t.Fatal("cart must be untouched")
	}
}

func TestCouponDiscount(t *testing.T) {
	cases := []struct {
		code     string
		subtotal float64
		want     float64
		wantErr  error
	}{
		{"EVERBITE20", 100, 20, nil},
		{"everbite20", 50, 10, nil},
		{"EverBite20", 10, 2, nil},
		{"", 100, 0, nil},
		{"   ", 100, 0, nil},
		{"EVERBITE21", 100, 0, ErrInvalidCoupon},
		{"SAVE50", 100, 0, ErrInvalidCoupon},
	}
	for _, tc := range cases {
		got, err := CouponDiscount(tc.code, tc.subtotal)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("code %q: err = %v, want %v", tc.code, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("code %q: discount = %v, want %v", tc.code, got, tc.want)
		}
	}
}
