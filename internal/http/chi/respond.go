package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/preference"
)

/* Single mapping from domain errors to HTTP status and user facing message
 * Messages are Serbian, matching the dashboard language
 */

// errorResponse is the body of a failed request that never reached the facade
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func statusFor(err error) (int, string) {
	var (
		cfgErr      *gateway.ConfigurationError
		decodeErr   *image.DecodeError
		upstreamErr *gateway.UpstreamError
		unreachable *gateway.UpstreamUnreachableError
		storageErr  *image.StorageError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusNotFound, "Nepoznat webhook: " + cfgErr.Key
	case errors.Is(err, gateway.ErrInvalidPayload):
		return http.StatusBadRequest, "Neispravni podaci zahteva"
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, "Neispravni BASE64 podaci"
	case errors.Is(err, image.ErrNotFound):
		return http.StatusNotFound, "Slika nije pronađena"
	case errors.Is(err, preference.ErrInvalid):
		return http.StatusBadRequest, "Osnovna valuta je obavezna"
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, "N8n servis je vratio grešku"
	case errors.As(err, &unreachable):
		return http.StatusInternalServerError, "Greška pri komunikaciji sa n8n servisom"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, "Greška pri čuvanju slike"
	default:
		return http.StatusInternalServerError, "Interna greška servera"
	}
}

// writeJSON writes v with status. The header is already sent when encoding
// fails, so the error can only be logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		oplog := httplog.LogEntry(r.Context())
		oplog.Error().Err(err).Msg("encoding response")
	}
}

// writeError logs err and writes the mapped status with a localized message
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	oplog := httplog.LogEntry(r.Context())
	if status >= http.StatusInternalServerError {
		oplog.Error().Err(err).Msg(message)
	} else {
		oplog.Info().Err(err).Msg(message)
	}
	writeJSON(w, r, status, errorResponse{Success: false, Error: message})
}

// writeEnvelope writes a facade envelope. Failed envelopes carry the
// localized message in place of the internal error text.
func writeEnvelope(w http.ResponseWriter, r *http.Request, env gateway.Envelope) {
	if env.Success {
		writeJSON(w, r, http.StatusOK, env)
		return
	}
	status, message := statusFor(env.Err)
	oplog := httplog.LogEntry(r.Context())
	oplog.Warn().Err(env.Err).Int("status", status).Msg(message)

	env.Error = message
	writeJSON(w, r, status, env)
}

// badRequest writes a 400 for input rejected before reaching the facade
func badRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	oplog := httplog.LogEntry(r.Context())
	oplog.Info().Err(err).Msg(message)
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Success: false, Error: message})
}
