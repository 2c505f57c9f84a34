package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/metrics"
	"github.com/rs/zerolog"
)

/* Service is the gateway facade
 * Dispatches on Action and folds every outcome into an Envelope
 */

// Envelope is the normalized response of every gateway call
type Envelope struct {
	Success        bool   `json:"success"`
	Data           any    `json:"data,omitempty"`
	Error          string `json:"error,omitempty"`
	IsFallback     bool   `json:"isFallback,omitempty"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`

	// Err keeps the typed error for status code mapping; never serialized
	Err error `json:"-"`
}

// Request is one facade call
type Request struct {
	Action  Action
	Key     string          // Forward: endpoint key; Probe: key or empty for the default
	Payload json.RawMessage // Forward: body sent upstream
	Timeout time.Duration   // Forward: overrides the endpoint default when > 0

	ImageBase64   string // Receive
	ImageFileName string // Receive
}

// UseCase defines the gateway operations
type UseCase interface {
	Handle(ctx context.Context, req Request) Envelope
}

// Forwarding relays payloads to webhooks. *Forwarder implements it.
type Forwarding interface {
	Forward(ctx context.Context, key string, payload json.RawMessage, timeout time.Duration) (ForwardResult, error)
}

// Probing checks webhook health. *Prober implements it.
type Probing interface {
	Probe(ctx context.Context, target string) HealthStatus
}

// ImageReceiving stores base64 images. *image.Service implements it.
type ImageReceiving interface {
	Receive(ctx context.Context, base64Payload, suggestedFileName string) (image.StoredImage, error)
}

type Service struct {
	Registry  Resolver
	Forwarder Forwarding
	Prober    Probing
	Images    ImageReceiving
	Recorder  metrics.Recorder
	Logger    zerolog.Logger

	// EnableDemoFallback substitutes an endpoint's demo payload when the
	// upstream call fails. The envelope is then marked IsFallback.
	EnableDemoFallback bool
}

// NewService creates a new gateway service with dependency injection
func NewService(registry Resolver, forwarder Forwarding, prober Probing, images ImageReceiving, recorder metrics.Recorder, logger zerolog.Logger, enableDemoFallback bool) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		Registry:           registry,
		Forwarder:          forwarder,
		Prober:             prober,
		Images:             images,
		Recorder:           recorder,
		Logger:             logger,
		EnableDemoFallback: enableDemoFallback,
	}
}

// Handle dispatches the request and never panics on component errors
func (s *Service) Handle(ctx context.Context, req Request) Envelope {
	switch req.Action {
	case Forward:
		return s.forward(ctx, req)
	case Probe:
		return s.probe(ctx, req)
	case Receive:
		return s.receive(ctx, req)
	default:
		err := req.Action.Validate()
		if err == nil {
			err = fmt.Errorf("unsupported action: %s", req.Action)
		}
		return failure(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}
}

func (s *Service) forward(ctx context.Context, req Request) Envelope {
	log := s.Logger.With().Str("endpoint", req.Key).Logger()

	endpoint, err := s.Registry.Resolve(req.Key)
	if err != nil {
		cfgErr := &ConfigurationError{Key: req.Key, Err: err}
		log.Warn().Err(cfgErr).Msg("forward to unknown endpoint")
		return failure(cfgErr)
	}

	if err := checkPayload(req.Payload, endpoint.RequiredFields); err != nil {
		log.Info().Err(err).Msg("rejected payload")
		return failure(err)
	}

	start := time.Now()
	result, err := s.Forwarder.Forward(ctx, req.Key, req.Payload, req.Timeout)
	if err == nil && !result.OK() {
		err = &UpstreamError{Key: req.Key, StatusCode: result.StatusCode, Body: result.RawBody}
	}
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			return failure(err)
		}
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("forward failed")
		if env, ok := s.fallback(ctx, endpoint, err); ok {
			return env
		}
		s.Recorder.RecordForward(ctx, req.Key, metrics.Failed)

		env := failure(err)
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			env.UpstreamStatus = upstreamErr.StatusCode
			env.Data = result.Data()
		}
		return env
	}

	log.Info().
		Int("status", result.StatusCode).
		Int("content_length", len(result.RawBody)).
		Dur("elapsed", time.Since(start)).
		Msg("webhook response received")
	s.Recorder.RecordForward(ctx, req.Key, metrics.Succeeded)

	return Envelope{
		Success:        true,
		Data:           result.Data(),
		UpstreamStatus: result.StatusCode,
	}
}

// fallback builds a demo envelope when enabled and the endpoint has demo payloads
func (s *Service) fallback(ctx context.Context, endpoint endpoints.Endpoint, cause error) (Envelope, bool) {
	if !s.EnableDemoFallback {
		return Envelope{}, false
	}
	data, ok := pickFallback(endpoint)
	if !ok {
		return Envelope{}, false
	}

	s.Logger.Warn().
		Err(cause).
		Str("endpoint", endpoint.Key).
		Msg("upstream failed, serving demo payload")
	s.Recorder.RecordForward(ctx, endpoint.Key, metrics.Fallback)

	return Envelope{
		Success:    true,
		Data:       data,
		IsFallback: true,
		Err:        cause,
	}, true
}

func (s *Service) probe(ctx context.Context, req Request) Envelope {
	status := s.Prober.Probe(ctx, req.Key)
	s.Recorder.RecordProbe(ctx, status.State.String())

	env := Envelope{
		Success: status.State == Active,
		Data:    status,
		Err:     status.Err,
	}
	if status.State != Active {
		env.Error = status.Message
		s.Logger.Warn().
			Str("target", status.ProductionURL).
			Str("state", status.State.String()).
			Int("status", status.StatusCode).
			Msg("webhook probe not active")
	}
	return env
}

func (s *Service) receive(ctx context.Context, req Request) Envelope {
	stored, err := s.Images.Receive(ctx, req.ImageBase64, req.ImageFileName)
	if err != nil {
		var decodeErr *image.DecodeError
		if errors.As(err, &decodeErr) {
			s.Logger.Info().Err(err).Msg("rejected image payload")
		} else {
			s.Logger.Error().Err(err).Msg("storing image failed")
		}
		return failure(err)
	}

	s.Logger.Info().Str("file", stored.FileName).Int64("size", stored.Size).Msg("image saved")
	s.Recorder.RecordImageStored(ctx)
	return Envelope{Success: true, Data: stored}
}

// checkPayload validates JSON syntax and required top-level fields
func checkPayload(payload json.RawMessage, required []string) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	v, ok := decodeJSON(payload)
	if !ok {
		return fmt.Errorf("%w: body is not valid JSON", ErrInvalidPayload)
	}
	if missing := missingFields(v, required); len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields %v", ErrInvalidPayload, missing)
	}
	return nil
}

func failure(err error) Envelope {
	return Envelope{
		Success: false,
		Error:   err.Error(),
		Err:     err,
	}
}
