package preference_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcelsud/n8n-gateway/preference"
	"github.com/marcelsud/n8n-gateway/preference/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("success - stored record", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		stored := preference.CurrencyPreference{ClientID: "1.2.3.4", BaseCurrency: "EUR", SelectedCryptos: []string{"BTC"}}
		repo.On("Get", ctx, "1.2.3.4").Return(stored, nil)

		p, err := service.Get(ctx, "1.2.3.4")

		require.NoError(t, err)
		assert.Equal(t, stored, p)
	})

	t.Run("success - default when missing", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{}, preference.ErrNotFound)

		p, err := service.Get(ctx, "1.2.3.4")

		require.NoError(t, err)
		assert.Equal(t, "USD", p.BaseCurrency)
		assert.Empty(t, p.SelectedCryptos)
	})

	t.Run("error - repository failure", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{}, errors.New("connection refused"))

		_, err := service.Get(ctx, "1.2.3.4")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting preference")
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("success - creates a new record", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{}, preference.ErrNotFound)
		repo.On("Save", ctx, mock.MatchedBy(func(p preference.CurrencyPreference) bool {
			return p.ClientID == "1.2.3.4" && p.BaseCurrency == "EUR" &&
				len(p.SelectedCryptos) == 2 && !p.CreatedAt.IsZero()
		})).Return(nil)

		p, err := service.Save(ctx, "1.2.3.4", " eur ", []string{"BTC", "ETH"})

		require.NoError(t, err)
		assert.Equal(t, "EUR", p.BaseCurrency)
	})

	t.Run("success - update keeps cryptos and creation time", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{
			ClientID: "1.2.3.4", BaseCurrency: "USD", SelectedCryptos: []string{"SOL"}, CreatedAt: created,
		}, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		p, err := service.Save(ctx, "1.2.3.4", "RSD", nil)

		require.NoError(t, err)
		assert.Equal(t, "RSD", p.BaseCurrency)
		assert.Equal(t, []string{"SOL"}, p.SelectedCryptos)
		assert.Equal(t, created, p.CreatedAt)
		assert.True(t, p.UpdatedAt.After(created))
	})

	t.Run("error - missing base currency", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{}, preference.ErrNotFound)

		_, err := service.Save(ctx, "1.2.3.4", "  ", nil)

		assert.ErrorIs(t, err, preference.ErrInvalid)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("error - repository failure", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		service := preference.NewService(repo)
		repo.On("Get", ctx, "1.2.3.4").Return(preference.CurrencyPreference{}, preference.ErrNotFound)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("boom"))

		_, err := service.Save(ctx, "1.2.3.4", "EUR", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "saving preference")
	})
}
