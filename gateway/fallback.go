package gateway

import (
	"math/rand/v2"

	"github.com/marcelsud/n8n-gateway/endpoints"
)

// pickFallback returns one of the endpoint's demo payloads, decoded.
// ok is false when the endpoint has none.
func pickFallback(endpoint endpoints.Endpoint) (any, bool) {
	if !endpoint.HasFallback() {
		return nil, false
	}
	raw := endpoint.Fallback[rand.IntN(len(endpoint.Fallback))]
	v, ok := decodeJSON(raw)
	if !ok {
		return nil, false
	}
	if found, hit := extract(v, endpoint.ResultFields); hit {
		return found, true
	}
	return v, true
}
