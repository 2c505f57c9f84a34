package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter exposes the collector's counters as OpenTelemetry instruments in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	meter         metric.Meter
	registration  metric.Registration
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter: meterProvider.Meter(
			"n8n-gateway",
			metric.WithInstrumentationVersion("1.0.0"),
		),
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}
	return oe, nil
}

// registerInstruments creates the observable counters and one callback that
// reads the collector once per scrape
func (oe *OTelExporter) registerInstruments() error {
	forwards, err := oe.meter.Int64ObservableCounter(
		"gateway.forward.count",
		metric.WithDescription("Forwarded webhook calls per endpoint and outcome"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return fmt.Errorf("creating forward counter: %w", err)
	}

	probes, err := oe.meter.Int64ObservableCounter(
		"gateway.probe.count",
		metric.WithDescription("Webhook health probes per resulting state"),
		metric.WithUnit("{probes}"),
	)
	if err != nil {
		return fmt.Errorf("creating probe counter: %w", err)
	}

	images, err := oe.meter.Int64ObservableCounter(
		"gateway.images.stored",
		metric.WithDescription("Images received and stored"),
		metric.WithUnit("{images}"),
	)
	if err != nil {
		return fmt.Errorf("creating images counter: %w", err)
	}

	oe.registration, err = oe.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		stats, err := oe.collector.Collect(ctx)
		if err != nil {
			return err
		}

		for key, s := range stats.Endpoints {
			endpoint := attribute.String("endpoint.key", key)
			o.ObserveInt64(forwards, s.Succeeded, metric.WithAttributes(endpoint, attribute.String("outcome", string(Succeeded))))
			o.ObserveInt64(forwards, s.Failed, metric.WithAttributes(endpoint, attribute.String("outcome", string(Failed))))
			o.ObserveInt64(forwards, s.Fallback, metric.WithAttributes(endpoint, attribute.String("outcome", string(Fallback))))
		}
		for state, count := range stats.Probes {
			o.ObserveInt64(probes, count, metric.WithAttributes(attribute.String("probe.state", state)))
		}
		o.ObserveInt64(images, stats.ImagesStored)
		return nil
	}, forwards, probes, images)
	if err != nil {
		return fmt.Errorf("registering callback: %w", err)
	}
	return nil
}

// ServeHTTP returns the Prometheus metrics handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown unregisters the callback and shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.registration != nil {
		if err := oe.registration.Unregister(); err != nil {
			return fmt.Errorf("unregistering callback: %w", err)
		}
	}
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
