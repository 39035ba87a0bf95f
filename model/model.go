package model

import "strings"

// Product is a menu item as served by the backend. Products are fetched,
// never mutated client-side.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category,omitempty"`
	IsFeatured  bool    `json:"isFeatured,omitempty"`
}

// Category is a menu section label.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Banner is a promotional banner shown on the storefront home page.
type Banner struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FullName returns "First Last", or the local part of the email when the
// profile carries no name at all.
func (u User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// CartLine is one product-and-quantity pair held in the cart. The product
// fields are a snapshot of what is needed for display and pricing.
type CartLine struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Quantity int     `json:"quantity"`
}
