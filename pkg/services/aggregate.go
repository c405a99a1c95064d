package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wirebus/wirebus/pkg/logger"
	"github.com/wirebus/wirebus/pkg/signal"
	"github.com/wirebus/wirebus/pkg/worker"
)

// Signal names used by the aggregation demo.
const (
	SignalFinished   = "finished"
	SignalAggregated = "aggregated"
)

// Producer performs a unit of work on a pool goroutine and emits
// finished with its result.
type Producer struct {
	name string
	bus  *signal.Bus
}

// NewProducer creates a producer and declares its finished signal.
func NewProducer(bus *signal.Bus, name string) (*Producer, error) {
	p := &Producer{name: name, bus: bus}
	if err := bus.Declare(p, SignalFinished); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Producer) String() string { return p.name }

// Produce runs the work and announces the result.
func (p *Producer) Produce(ctx context.Context) error {
	result := fmt.Sprintf("result from %s", p.name)
	return p.bus.Emit(ctx, p, SignalFinished, result)
}

// Aggregator watches a set of producers and emits aggregated exactly
// once, after every watched producer has reported in. Payloads are kept
// in arrival order.
type Aggregator struct {
	bus *signal.Bus
	log logger.Logger

	mu       sync.Mutex
	expected int
	arrived  []string
	fired    bool
	done     chan struct{}
}

// NewAggregator creates an aggregator, declares its aggregated signal,
// and connects it to every producer's finished signal.
func NewAggregator(bus *signal.Bus, log logger.Logger, producers []*Producer) (*Aggregator, error) {
	a := &Aggregator{
		bus:      bus,
		log:      log,
		expected: len(producers),
		done:     make(chan struct{}),
	}
	if err := bus.Declare(a, SignalAggregated); err != nil {
		return nil, err
	}
	for _, p := range producers {
		if _, err := bus.ConnectMethod(p, SignalFinished, a, "Collect"); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Aggregator) String() string { return "Aggregator" }

// Collect records one producer result. The emit of aggregated happens
// at most once, when the last expected result arrives.
func (a *Aggregator) Collect(result string) error {
	a.mu.Lock()
	a.arrived = append(a.arrived, result)
	fire := !a.fired && len(a.arrived) >= a.expected
	if fire {
		a.fired = true
	}
	results := append([]string(nil), a.arrived...)
	a.mu.Unlock()

	if !fire {
		return nil
	}

	a.log.Info("all producers finished", "count", len(results))
	err := a.bus.Emit(context.Background(), a, SignalAggregated, results)
	close(a.done)
	return err
}

// Wait blocks until aggregated has been emitted or the context ends.
func (a *Aggregator) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the collected payloads in arrival order.
func (a *Aggregator) Results() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.arrived...)
}

// AggregateDemo runs configurable producers on a worker pool and
// aggregates their results.
type AggregateDemo struct {
	bus        *signal.Bus
	log        logger.Logger
	pool       *worker.Pool
	producers  []*Producer
	Aggregator *Aggregator
	timeout    time.Duration
}

// NewAggregateDemo wires producers, aggregator, and pool together.
func NewAggregateDemo(bus *signal.Bus, log logger.Logger, producers, workers int, timeout time.Duration) (*AggregateDemo, error) {
	if producers < 1 {
		return nil, fmt.Errorf("aggregate demo needs at least one producer, got %d", producers)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	d := &AggregateDemo{
		bus:     bus,
		log:     log,
		pool:    worker.NewPool(workers, worker.WithLogger(log)),
		timeout: timeout,
	}

	for i := 0; i < producers; i++ {
		p, err := NewProducer(bus, fmt.Sprintf("Producer%d", i+1))
		if err != nil {
			return nil, err
		}
		d.producers = append(d.producers, p)
	}

	agg, err := NewAggregator(bus, log, d.producers)
	if err != nil {
		return nil, err
	}
	d.Aggregator = agg

	return d, nil
}

// Run schedules every producer on the pool and waits for aggregation.
func (d *AggregateDemo) Run(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.pool.Start()
	defer d.pool.Stop()

	for _, p := range d.producers {
		p := p
		d.pool.Submit(func() {
			if err := p.Produce(ctx); err != nil {
				d.log.Warn("producer emit failed", "producer", p.String(), "error", err)
			}
		})
	}

	if err := d.Aggregator.Wait(ctx); err != nil {
		return nil, fmt.Errorf("aggregation did not complete: %w", err)
	}
	return d.Aggregator.Results(), nil
}
