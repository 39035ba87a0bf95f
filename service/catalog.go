package service

import (
	"context"

	"github.com/everbite/storefront/model"
)

// CatalogAPI is the read-only slice of the backend client the catalog uses.
type CatalogAPI interface {
	Products(ctx context.Context) ([]model.Product, error)
	FeaturedProducts(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Banners(ctx context.Context) ([]model.Banner, error)
	Users(ctx context.Context) ([]model.User, error)
}

// Catalog proxies catalog reads so the handler layer depends on services
// only. Each getter degrades independently: a failure empties its own
// section and nothing else.
type Catalog struct {
	apiClient CatalogAPI
}

// NewCatalog wires the catalog reads.
func NewCatalog(apiClient CatalogAPI) *Catalog {
	return &Catalog{apiClient: apiClient}
}

func (c *Catalog) Menu(ctx context.Context) ([]model.Product, error) {
	return c.apiClient.Products(ctx)
}

func (c *Catalog) Featured(ctx context.Context) ([]model.Product, error) {
	return c.apiClient.FeaturedProducts(ctx)
}

func (c *Catalog) Categories(ctx context.Context) ([]model.Category, error) {
	return c.apiClient.Categories(ctx)
}

func (c *Catalog) Banners(ctx context.Context) ([]model.Banner, error) {
	return c.apiClient.Banners(ctx)
}

func (c *Catalog) Users(ctx context.Context) ([]model.User, error) {
	return c.apiClient.Users(ctx)
}
