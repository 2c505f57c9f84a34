package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	forwardKeyPrefix = "stats:forward" // Hash naming: stats:forward:{endpoint_key}
	probeKey         = "stats:probe"
	imagesKey        = "stats:images"

	fieldTotal   = "total"
	fieldLastRun = "last_execution"
)

var probeStates = []string{"active", "inactive", "error"}

// RedisCollector implements Recorder and Collector on Redis counters
type RedisCollector struct {
	client   *redis.Client
	registry *endpoints.Registry
	logger   zerolog.Logger
}

// NewRedisCollector creates a new Redis statistics collector
func NewRedisCollector(client *redis.Client, registry *endpoints.Registry, logger zerolog.Logger) *RedisCollector {
	return &RedisCollector{
		client:   client,
		registry: registry,
		logger:   logger,
	}
}

// RecordForward increments the total and outcome counters of an endpoint
func (c *RedisCollector) RecordForward(ctx context.Context, key string, outcome Outcome) {
	hashKey := fmt.Sprintf("%s:%s", forwardKeyPrefix, key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, hashKey, fieldTotal, 1)
		pipe.HIncrBy(ctx, hashKey, string(outcome), 1)
		pipe.HSet(ctx, hashKey, fieldLastRun, time.Now().Unix())
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", key).Msg("recording forward stats")
	}
}

// RecordProbe increments the counter of a health state
func (c *RedisCollector) RecordProbe(ctx context.Context, state string) {
	if err := c.client.HIncrBy(ctx, probeKey, state, 1).Err(); err != nil {
		c.logger.Warn().Err(err).Str("state", state).Msg("recording probe stats")
	}
}

// RecordImageStored increments the stored image counter
func (c *RedisCollector) RecordImageStored(ctx context.Context) {
	if err := c.client.Incr(ctx, imagesKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("recording image stats")
	}
}

// Collect gathers all statistics from Redis
func (c *RedisCollector) Collect(ctx context.Context) (Stats, error) {
	endpointStats, err := c.GetEndpointStats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("getting endpoint stats: %w", err)
	}

	probes, err := c.GetProbeCounts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("getting probe counts: %w", err)
	}

	images, err := c.GetImagesStored(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("getting images stored: %w", err)
	}

	return Stats{
		Endpoints:    endpointStats,
		Probes:       probes,
		ImagesStored: images,
		Timestamp:    time.Now(),
	}, nil
}

// GetEndpointStats returns counters for every registered endpoint
func (c *RedisCollector) GetEndpointStats(ctx context.Context) (map[string]EndpointStats, error) {
	list := c.registry.List()

	pipe := c.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(list))
	for _, e := range list {
		cmds[e.Key] = pipe.HGetAll(ctx, fmt.Sprintf("%s:%s", forwardKeyPrefix, e.Key))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reading forward counters: %w", err)
	}

	result := make(map[string]EndpointStats, len(list))
	for key, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			// Continue even if one endpoint fails
			continue
		}
		stats := EndpointStats{
			Total:     parseInt64(data[fieldTotal]),
			Succeeded: parseInt64(data[string(Succeeded)]),
			Failed:    parseInt64(data[string(Failed)]),
			Fallback:  parseInt64(data[string(Fallback)]),
		}
		if ts := parseInt64(data[fieldLastRun]); ts > 0 {
			last := time.Unix(ts, 0).UTC()
			stats.LastRun = &last
		}
		result[key] = stats
	}
	return result, nil
}

// GetProbeCounts returns probe counts, zero-filled for every known state
func (c *RedisCollector) GetProbeCounts(ctx context.Context) (map[string]int64, error) {
	data, err := c.client.HGetAll(ctx, probeKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reading probe counters: %w", err)
	}

	counts := make(map[string]int64, len(probeStates))
	for _, state := range probeStates {
		counts[state] = 0
	}
	for state, v := range data {
		counts[state] = parseInt64(v)
	}
	return counts, nil
}

// GetImagesStored returns the stored image counter
func (c *RedisCollector) GetImagesStored(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, imagesKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading image counter: %w", err)
	}
	return n, nil
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
