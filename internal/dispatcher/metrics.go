package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/biocommander/engine/internal/dispatcher"

// metrics holds the dispatcher instruments. They come from the global meter
// provider and are no-ops until one is installed.
type metrics struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

func newMetrics(d *Dispatcher) (*metrics, error) {
	m := otel.Meter(instrumentationName)
	out := &metrics{}

	var err error
	out.queueSize, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"))
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		for cmd, buf := range d.buffers {
			o.ObserveInt64(out.queueSize, int64(len(buf)), metric.WithAttributes(commandAttr(cmd)))
		}
		return nil
	}, out.queueSize)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	if out.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Total events processed")); err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}
	if out.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue")); err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	if out.failed, err = m.Int64Counter("dispatcher.events.failed",
		metric.WithDescription("Total events whose handler returned an error")); err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}
	if out.duration, err = m.Float64Histogram("dispatcher.event.duration",
		metric.WithDescription("Handler run time"), metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return out, nil
}

// observe records one handler run.
func (m *metrics) observe(command string, start time.Time, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(commandAttr(command))
	m.processed.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	if err != nil {
		m.failed.Add(ctx, 1, attrs)
	}
}

func commandAttr(command string) attribute.KeyValue {
	return attribute.String("command", command)
}
