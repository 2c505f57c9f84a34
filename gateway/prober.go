package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultProbeTimeout bounds a single probe attempt
const DefaultProbeTimeout = 10 * time.Second

var probeBody = []byte(`{"test":"connection_check"}`)

type Prober struct {
	registry   Resolver
	client     *http.Client
	timeout    time.Duration
	defaultKey string
}

// NewProber creates a prober. defaultKey is probed when Probe gets an empty target.
func NewProber(registry Resolver, client *http.Client, timeout time.Duration, defaultKey string) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{
		registry:   registry,
		client:     client,
		timeout:    timeout,
		defaultKey: defaultKey,
	}
}

// Probe POSTs a synthetic body to the target once and classifies the reply.
// target is an endpoint key, an absolute http(s) URL, or empty for the
// default key. It never returns an error: failures become Unreachable.
func (p *Prober) Probe(ctx context.Context, target string) HealthStatus {
	if target == "" {
		target = p.defaultKey
	}

	status := HealthStatus{ProductionURL: target}
	if endpoint, err := p.registry.Resolve(target); err == nil {
		status.ProductionURL = endpoint.URL
		status.TestURL = endpoint.TestURL
	} else if !isAbsoluteURL(target) {
		cfgErr := &ConfigurationError{Key: target, Err: err}
		status.State = Unreachable
		status.Err = cfgErr
		status.Message = "Nepoznat webhook: " + target
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, status.ProductionURL, bytes.NewReader(probeBody))
	if err != nil {
		return unreachable(status, target, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return unreachable(status, target, unwrapURLError(err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	status.StatusCode = resp.StatusCode
	status.State = classify(resp.StatusCode)
	if status.State == Active {
		status.Message = "Webhook je aktivan i spreman za korišćenje"
	} else {
		status.Message = fmt.Sprintf("Webhook nije dostupan - status kod: %d", resp.StatusCode)
	}
	return status
}

func unreachable(status HealthStatus, key string, err error) HealthStatus {
	status.State = Unreachable
	status.Err = &UpstreamUnreachableError{Key: key, URL: status.ProductionURL, Err: err}
	status.Message = "Greška pri povezivanju sa n8n: " + err.Error()
	return status
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
