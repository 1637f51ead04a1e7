package middleware

import "strings"

// Surface groups gateway paths by the API surface they belong to. The
// surfaces drive cache, rate-limit and span attribution so the gateway
// policies can differ between browsing the catalog and moving stock.
type Surface string

const (
	SurfaceCatalog   Surface = "catalog"   // products and derived stock status
	SurfaceLedger    Surface = "ledger"    // stock mutations, history, summary
	SurfaceDocuments Surface = "documents" // purchase and adjustment batches
	SurfaceOrders    Surface = "orders"    // order lifecycle
)

// ClassifyPath maps a request path to the backend service that owns it and
// the surface it belongs to. Unknown paths return empty values and are left
// alone by the surface-aware middleware.
func ClassifyPath(path string) (service string, surface Surface) {
	switch {
	case strings.HasPrefix(path, "/api/products"):
		return "inventory", SurfaceCatalog
	case strings.HasPrefix(path, "/api/inventory"):
		return "inventory", SurfaceLedger
	case strings.HasPrefix(path, "/api/purchases"), strings.HasPrefix(path, "/api/adjustments"):
		return "inventory", SurfaceDocuments
	case strings.HasPrefix(path, "/api/orders"):
		return "orders", SurfaceOrders
	default:
		return "", ""
	}
}

// mutating reports whether the method can change state downstream.
func mutating(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return false
	}
	return true
}
