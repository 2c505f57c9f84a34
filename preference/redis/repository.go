package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcelsud/n8n-gateway/preference"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of preference.Repository
 * One JSON string per client with a sliding TTL refreshed on every save
 */

const keyPrefix = "preference:currency" // Key naming: preference:currency:{client_id}

// DefaultTTL drops records of clients that have not saved for 30 days
const DefaultTTL = 30 * 24 * time.Hour

type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates a repository on an existing client. A ttl <= 0 uses DefaultTTL.
func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{
		client: client,
		ttl:    ttl,
	}
}

// Connect opens a Redis client and verifies the connection
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}
	return client, nil
}

// Get retrieves the preference of a client
func (r *Repository) Get(ctx context.Context, clientID string) (preference.CurrencyPreference, error) {
	data, err := r.client.Get(ctx, key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return preference.CurrencyPreference{}, preference.ErrNotFound
	}
	if err != nil {
		return preference.CurrencyPreference{}, fmt.Errorf("getting preference: %w", err)
	}

	var p preference.CurrencyPreference
	if err := json.Unmarshal(data, &p); err != nil {
		return preference.CurrencyPreference{}, fmt.Errorf("unmarshaling preference: %w", err)
	}
	p.ClientID = clientID
	return p, nil
}

// Save stores the preference and resets its TTL
func (r *Repository) Save(ctx context.Context, p preference.CurrencyPreference) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling preference: %w", err)
	}
	if err := r.client.Set(ctx, key(p.ClientID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("setting preference: %w", err)
	}
	return nil
}

func key(clientID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, clientID)
}
