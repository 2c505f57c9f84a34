package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/n8n-gateway/internal/validator"
)

// UseCase defines the currency preference operations
type UseCase interface {
	Get(ctx context.Context, clientID string) (CurrencyPreference, error)
	Save(ctx context.Context, clientID, baseCurrency string, selectedCryptos []string) (CurrencyPreference, error)
}

type Service struct {
	Repo Repository
	now  func() time.Time
}

// NewService creates a new preference service
func NewService(repo Repository) *Service {
	return &Service{
		Repo: repo,
		now:  time.Now,
	}
}

// Get returns the stored preference or the USD default
func (s *Service) Get(ctx context.Context, clientID string) (CurrencyPreference, error) {
	p, err := s.Repo.Get(ctx, clientID)
	if errors.Is(err, ErrNotFound) {
		return CurrencyPreference{
			ClientID:        clientID,
			BaseCurrency:    DefaultBaseCurrency,
			SelectedCryptos: []string{},
		}, nil
	}
	if err != nil {
		return CurrencyPreference{}, fmt.Errorf("getting preference: %w", err)
	}
	return p, nil
}

// Save finds or creates the client's record and updates it. A nil
// selectedCryptos keeps the previously stored list.
func (s *Service) Save(ctx context.Context, clientID, baseCurrency string, selectedCryptos []string) (CurrencyPreference, error) {
	p, err := s.Repo.Get(ctx, clientID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = CurrencyPreference{
			ClientID:        clientID,
			SelectedCryptos: []string{},
			CreatedAt:       s.now(),
		}
	case err != nil:
		return CurrencyPreference{}, fmt.Errorf("getting preference: %w", err)
	}

	p.BaseCurrency = strings.ToUpper(strings.TrimSpace(baseCurrency))
	if selectedCryptos != nil {
		p.SelectedCryptos = selectedCryptos
	}
	p.UpdatedAt = s.now()

	if err := validator.Validate(p); err != nil {
		return CurrencyPreference{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		return CurrencyPreference{}, fmt.Errorf("saving preference: %w", err)
	}
	return p, nil
}
