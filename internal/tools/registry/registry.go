// Package registry assembles the full Upgates tool set from the category
// packages.
package registry

import (
	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/tools/catalog"
	"github.com/giantswarm/mcp-upgates/internal/tools/customers"
	"github.com/giantswarm/mcp-upgates/internal/tools/orders"
	"github.com/giantswarm/mcp-upgates/internal/tools/products"
	"github.com/giantswarm/mcp-upgates/internal/tools/shop"
)

// Groups returns the operations of every category in listing order.
func Groups() [][]tools.Operation {
	return [][]tools.Operation{
		orders.Operations(),
		products.Operations(),
		customers.Operations(),
		catalog.Operations(),
		shop.Operations(),
	}
}

// New builds the registry of all Upgates tools.
func New() (*tools.Registry, error) {
	return tools.NewRegistry(Groups()...)
}
