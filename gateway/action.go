package gateway

import "fmt"

/* Action selects which component the facade dispatches a request to
 * Forward relays a payload, Probe checks webhook health, Receive stores an image
 */
type Action int

const (
	Forward Action = iota + 1
	Probe
	Receive
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Probe:
		return "probe"
	case Receive:
		return "receive"
	default:
		return "unknown"
	}
}

// Validate checks if the action is valid
func (a Action) Validate() error {
	if a < Forward || a > Receive {
		return fmt.Errorf("invalid action: %d", a)
	}
	return nil
}
