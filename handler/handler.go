// Package handler is the storefront's HTTP surface. It stands in for the
// view layer: every route reads or mutates the injected stores and flows and
// answers JSON.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/everbite/storefront/api"
	"github.com/everbite/storefront/model"
	"github.com/everbite/storefront/service"
	"github.com/everbite/storefront/store"
)

// Catalog is the read side of the menu.
type Catalog interface {
	Menu(ctx context.Context) ([]model.Product, error)
	Featured(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Banners(ctx context.Context) ([]model.Banner, error)
	Users(ctx context.Context) ([]model.User, error)
}

// SessionStore is the authentication surface of the session.
type SessionStore interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, r store.Registration) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	User() *model.User
}

// CheckoutFlow submits the cart as an order.
type CheckoutFlow interface {
	PlaceOrder(ctx context.Context, fallbackName, couponCode string) (model.Order, error)
}

// OrderHistory lists the current user's orders.
type OrderHistory interface {
	Mine(ctx context.Context) ([]model.Order, error)
	Recent(ctx context.Context, n int) ([]model.Order, error)
}

// Handler routes storefront requests to the stores and flows behind it.
type Handler struct {
	catalog  Catalog
	cart     *store.Cart
	session  SessionStore
	checkout CheckoutFlow
	orders   OrderHistory
}

// New returns a Handler instance.
func New(catalog Catalog, cart *store.Cart, session SessionStore, checkout CheckoutFlow, orders OrderHistory) *Handler {
	return &Handler{catalog: catalog, cart: cart, session: session, checkout: checkout, orders: orders}
}

// RegisterRoutes registers all routes on the provided router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Catalog
	r.HandleFunc("/api/menu", h.Menu).Methods("GET")
	r.HandleFunc("/api/menu/featured", h.Featured).Methods("GET")
	r.HandleFunc("/api/categories", h.Categories).Methods("GET")
	r.HandleFunc("/api/banners", h.Banners).Methods("GET")
	r.HandleFunc("/api/users", h.Users).Methods("GET")

	// Auth
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")
	r.HandleFunc("/api/session", h.SessionInfo).Methods("GET")

	// Cart
	r.HandleFunc("/api/cart", h.GetCart).Methods("GET")
	r.HandleFunc("/api/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/api/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/api/cart/update", h.UpdateCart).Methods("POST")
	r.HandleFunc("/api/cart/clear", h.ClearCart).Methods("POST")

	// Checkout + orders
	r.HandleFunc("/api/checkout/coupon", h.ApplyCoupon).Methods("POST")
	r.HandleFunc("/api/checkout/order", h.PlaceOrder).Methods("POST")
	r.HandleFunc("/api/orders", h.MyOrders).Methods("GET")
}

// --- request / response shapes ---

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerReq struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type cartItemReq struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity,omitempty"`
}

type couponReq struct {
	Code string `json:"code"`
}

type placeOrderReq struct {
	CustomerName string `json:"customerName,omitempty"`
	CouponCode   string `json:"couponCode,omitempty"`
}

type cartResp struct {
	Items    []model.CartLine `json:"items"`
	Count    int              `json:"count"`
	Subtotal float64          `json:"subtotal"`
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeFlowErr maps flow errors onto HTTP statuses. ErrNotAuthenticated
// additionally signals the login entry point so the client can open it.
func writeFlowErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": err.Error(),
			"login": true,
		})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCoupon),
		errors.Is(err, store.ErrMissingFields),
		errors.Is(err, store.ErrPasswordMismatch):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			log.Printf("%s %s: upstream: %v", r.Method, r.URL.Path, err)
			writeErr(w, http.StatusBadGateway, apiErr.Message)
			return
		}
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) cartSummary() cartResp {
	return cartResp{Items: h.cart.Lines(), Count: h.cart.Count(), Subtotal: h.cart.Subtotal()}
}

// --- catalog ---

// Menu handles GET /api/menu.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Menu(r.Context())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Featured handles GET /api/menu/featured.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Banners handles GET /api/banners.
func (h *Handler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalog.Banners(r.Context())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// Users handles GET /api/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.catalog.Users(r.Context())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// --- auth ---

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if err := h.session.Login(r.Context(), req.Email, req.Password); err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": h.session.User()})
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.session.Register(r.Context(), store.Registration{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		writeFlowErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionInfo handles GET /api/session.
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"authenticated": h.session.IsAuthenticated()}
	if u := h.session.User(); u != nil {
		resp["user"] = u
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- cart ---

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartSummary())
}

// AddToCart handles POST /api/cart/add. The full product is posted so the
// cart line snapshots name, price and image without another backend read.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.ID == 0 {
		writeErr(w, http.StatusBadRequest, "product id is required")
		return
	}
	h.cart.Add(p)
	writeJSON(w, http.StatusOK, h.cartSummary())
}

// RemoveFromCart handles POST /api/cart/remove. Unknown ids are a no-op.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.cart.Remove(req.ID)
	writeJSON(w, http.StatusOK, h.cartSummary())
}

// UpdateCart handles POST /api/cart/update. Quantity <= 0 removes the line.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.cart.SetQuantity(req.ID, req.Quantity)
	writeJSON(w, http.StatusOK, h.cartSummary())
}

// ClearCart handles POST /api/cart/clear.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	writeJSON(w, http.StatusOK, h.cartSummary())
}

// --- checkout + orders ---

// ApplyCoupon handles POST /api/checkout/coupon, returning the discount the
// code earns against the current subtotal.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	discount, err := service.CouponDiscount(req.Code, h.cart.Subtotal())
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"discount": discount})
}

// PlaceOrder handles POST /api/checkout/order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if r.Body != nil {
		// body is optional; an empty read means no overrides
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	order, err := h.checkout.PlaceOrder(r.Context(), req.CustomerName, req.CouponCode)
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// MyOrders handles GET /api/orders, newest first. Supports ?limit=n for the
// recent-orders strip.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []model.Order
		err    error
	)
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, convErr := strconv.Atoi(limit)
		if convErr != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		orders, err = h.orders.Recent(r.Context(), n)
	} else {
		orders, err = h.orders.Mine(r.Context())
	}
	if err != nil {
		writeFlowErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
