package chi

import (
	"net/http"

	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/metrics"
)

// endpointResponse represents a registered webhook in the API
type endpointResponse struct {
	Key            string   `json:"key"`
	URL            string   `json:"url"`
	TestURL        string   `json:"test_url,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	ResultFields   []string `json:"result_fields,omitempty"`
	RequiredFields []string `json:"required_fields,omitempty"`
	Aliases        []string `json:"aliases,omitempty"`
	Signed         bool     `json:"signed"`
	HasFallback    bool     `json:"has_fallback"`
}

// getEndpoints handles GET /v1/endpoints
func getEndpoints(registry *endpoints.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var list []endpoints.Endpoint
		if registry != nil {
			list = registry.List()
		}

		responses := make([]endpointResponse, 0, len(list))
		for _, e := range list {
			responses = append(responses, endpointResponse{
				Key:            e.Key,
				URL:            e.URL,
				TestURL:        e.TestURL,
				TimeoutSeconds: int(e.Timeout.Seconds()),
				ResultFields:   e.ResultFields,
				RequiredFields: e.RequiredFields,
				Aliases:        e.Aliases,
				Signed:         e.SigningSecret != "",
				HasFallback:    e.HasFallback(),
			})
		}
		writeJSON(w, r, http.StatusOK, responses)
	})
}

// getStats handles GET /v1/stats
func getStats(collector metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := collector.Collect(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, stats)
	})
}
