package preference

import (
	"context"
	"errors"
	"time"
)

// DefaultBaseCurrency is reported for clients that never saved a preference
const DefaultBaseCurrency = "USD"

// ErrNotFound is returned by repositories when a client has no stored record
var ErrNotFound = errors.New("preference not found")

// ErrInvalid is returned when a preference fails validation
var ErrInvalid = errors.New("invalid preference")

/* CurrencyPreference is the dashboard currency choice of one client
 * Clients are identified by their IP address; there are no user accounts
 */
type CurrencyPreference struct {
	ClientID        string    `json:"-"`
	BaseCurrency    string    `json:"baseCurrency" validate:"required,alphanum,max=10"`
	SelectedCryptos []string  `json:"selectedCryptos" validate:"max=50,dive,required,max=20"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Repository persists currency preferences
type Repository interface {
	Get(ctx context.Context, clientID string) (CurrencyPreference, error)
	Save(ctx context.Context, p CurrencyPreference) error
}
