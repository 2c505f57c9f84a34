package metrics

import (
	"context"
	"time"
)

// Outcome classifies a finished forward call
type Outcome string

const (
	Succeeded Outcome = "succeeded"
	Failed    Outcome = "failed"
	Fallback  Outcome = "fallback"
)

// Stats represents the current workflow statistics of the gateway.
type Stats struct {
	// Endpoints maps endpoint key to its forward counters
	Endpoints map[string]EndpointStats `json:"endpoints"`

	// Probes maps health state ("active", "inactive", "error") to probe count
	Probes map[string]int64 `json:"probes"`

	// ImagesStored is the number of images received since the counters were created
	ImagesStored int64 `json:"images_stored"`

	// Timestamp when stats were collected
	Timestamp time.Time `json:"timestamp"`
}

// EndpointStats are the forward counters of one endpoint.
type EndpointStats struct {
	Total     int64      `json:"total_executions"`
	Succeeded int64      `json:"successful_executions"`
	Failed    int64      `json:"failed_executions"`
	Fallback  int64      `json:"fallback_executions"`
	LastRun   *time.Time `json:"last_execution,omitempty"`
}

// Recorder receives gateway events. Implementations must be safe for
// concurrent use and must not fail the caller.
type Recorder interface {
	RecordForward(ctx context.Context, key string, outcome Outcome)
	RecordProbe(ctx context.Context, state string)
	RecordImageStored(ctx context.Context)
}

// Collector defines the interface for reading workflow statistics.
type Collector interface {
	// Collect gathers all statistics
	Collect(ctx context.Context) (Stats, error)

	// GetEndpointStats returns forward counters per endpoint
	GetEndpointStats(ctx context.Context) (map[string]EndpointStats, error)

	// GetProbeCounts returns probe counts per health state
	GetProbeCounts(ctx context.Context) (map[string]int64, error)

	// GetImagesStored returns the number of stored images
	GetImagesStored(ctx context.Context) (int64, error)
}

// Nop is a Recorder that discards everything
type Nop struct{}

func (Nop) RecordForward(context.Context, string, Outcome) {}
func (Nop) RecordProbe(context.Context, string)            {}
func (Nop) RecordImageStored(context.Context)              {}
