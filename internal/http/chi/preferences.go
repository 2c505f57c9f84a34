package chi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/marcelsud/n8n-gateway/internal/validator"
	"github.com/marcelsud/n8n-gateway/preference"
)

// currencyRequest is the body of POST /v1/preferences/currency
type currencyRequest struct {
	BaseCurrency    string   `json:"baseCurrency" validate:"required"`
	SelectedCryptos []string `json:"selectedCryptos"`
}

type currencyResponse struct {
	Success bool                          `json:"success"`
	Message string                        `json:"message,omitempty"`
	Data    preference.CurrencyPreference `json:"data"`
}

// getCurrency handles GET /v1/preferences/currency
func getCurrency(prefs preference.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := prefs.Get(r.Context(), clientID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, currencyResponse{Success: true, Data: p})
	})
}

// postCurrency handles POST /v1/preferences/currency and /api/save-currency
func postCurrency(prefs preference.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req currencyRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			badRequest(w, r, "Neispravni podaci zahteva", err)
			return
		}
		if err := validator.Validate(req); err != nil {
			badRequest(w, r, "Osnovna valuta je obavezna", err)
			return
		}

		p, err := prefs.Save(r.Context(), clientID(r), req.BaseCurrency, req.SelectedCryptos)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, currencyResponse{
			Success: true,
			Message: "Glavna valuta je uspešno sačuvana",
			Data:    p,
		})
	})
}

// clientID identifies the caller by IP. middleware.RealIP has already
// replaced RemoteAddr from the forwarding headers when present.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
