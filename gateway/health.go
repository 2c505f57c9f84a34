package gateway

import (
	"encoding/json"
	"fmt"
)

/* HealthState is the reachability class of a probed webhook
 * Active: any reply below 500, Inactive: 5xx reply, Error: transport failure
 */
type HealthState int

const (
	Active HealthState = iota + 1
	Inactive
	Unreachable
)

// String returns the wire name of the state
func (s HealthState) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Unreachable:
		return "error"
	default:
		return "unknown"
	}
}

// NewHealthState creates a HealthState from its wire name
func NewHealthState(str string) HealthState {
	switch str {
	case "active":
		return Active
	case "inactive":
		return Inactive
	default:
		return Unreachable
	}
}

// HealthStatus is the outcome of a single probe. It is never cached.
type HealthStatus struct {
	State         HealthState
	StatusCode    int // set for Active and Inactive
	Message       string
	ProductionURL string
	TestURL       string
	Err           error // set for Unreachable
}

type healthStatusJSON struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	StatusCode    int    `json:"status_code,omitempty"`
	ProductionURL string `json:"production_url"`
	TestURL       string `json:"test_url"`
}

// MarshalJSON renders {status, message, production_url, test_url}
func (h HealthStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(healthStatusJSON{
		Status:        h.State.String(),
		Message:       h.Message,
		StatusCode:    h.StatusCode,
		ProductionURL: h.ProductionURL,
		TestURL:       h.TestURL,
	})
}

// UnmarshalJSON parses the wire form produced by MarshalJSON
func (h *HealthStatus) UnmarshalJSON(data []byte) error {
	var aux healthStatusJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling health status: %w", err)
	}
	*h = HealthStatus{
		State:         NewHealthState(aux.Status),
		StatusCode:    aux.StatusCode,
		Message:       aux.Message,
		ProductionURL: aux.ProductionURL,
		TestURL:       aux.TestURL,
	}
	return nil
}

func classify(statusCode int) HealthState {
	if statusCode >= 200 && statusCode < 500 {
		return Active
	}
	return Inactive
}
