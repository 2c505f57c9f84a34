package chi

import (
	"net/http"

	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway"
)

// getHealth handles GET and POST on /v1/health and /webhook-status.
// Only registered keys are accepted as the ?endpoint= target; arbitrary URLs
// are never probed on behalf of HTTP callers. The legacy route answers with
// the bare status object and always 200.
func getHealth(gw gateway.UseCase, registry *endpoints.Registry, legacy bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("endpoint")
		if key != "" && (registry == nil || !registry.Exists(key)) {
			writeError(w, r, &gateway.ConfigurationError{Key: key, Err: &endpoints.NotFoundError{Key: key}})
			return
		}

		env := gw.Handle(r.Context(), gateway.Request{Action: gateway.Probe, Key: key})
		if legacy {
			writeJSON(w, r, http.StatusOK, env.Data)
			return
		}

		status := http.StatusOK
		if !env.Success {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, r, status, env)
	})
}
