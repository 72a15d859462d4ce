package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Upstream paths embed order numbers, product codes and other identifiers.
// Recording them verbatim would create one time series per entity, so paths
// are reduced to their route before they become label values.

// RouteIDPlaceholder replaces identifier segments in route labels.
const RouteIDPlaceholder = ":id"

// routeSuffixes are fixed sub-resource segments that are kept verbatim.
var routeSuffixes = map[string]bool{
	"simple":  true,
	"history": true,
	"events":  true,
}

// UpstreamRoute reduces an Upgates API path to a low-cardinality route.
// The first segment names the collection and is always kept; later segments
// are kept only when they name a known sub-resource.
//
// # Examples
//
//	UpstreamRoute("/orders")                     // "/orders"
//	UpstreamRoute("/orders/2024000123")          // "/orders/:id"
//	UpstreamRoute("/orders/2024000123/history")  // "/orders/:id/history"
//	UpstreamRoute("/products/simple")            // "/products/simple"
//	UpstreamRoute("/webhooks/events")            // "/webhooks/events"
//	UpstreamRoute("")                            // "/"
func UpstreamRoute(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if !routeSuffixes[strings.ToLower(segments[i])] {
			segments[i] = RouteIDPlaceholder
		}
	}
	return "/" + strings.Join(segments, "/")
}
