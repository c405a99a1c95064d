package services

import (
	"context"
	"fmt"

	"github.com/wirebus/wirebus/pkg/logger"
	"github.com/wirebus/wirebus/pkg/signal"
)

// stage is one step of a sequential pipeline. Each stage owns an output
// signal; its slot transforms the value and emits it on the next stage.
type stage struct {
	index int
	name  string
	next  *stage
	bus   *signal.Bus
	log   logger.Logger
	demo  *PipelineDemo
}

func (s *stage) String() string { return s.name }

// Process applies the stage transform and forwards the value. Emits on
// the next stage's signal happen inside the current dispatch, so a run
// through the whole pipeline is a chain of reentrant emits.
func (s *stage) Process(value int) error {
	value = value*2 + s.index
	s.log.Debug("stage processed", "stage", s.index, "value", value)

	if s.next == nil {
		s.demo.finish(value)
		return nil
	}
	return s.bus.Emit(context.Background(), s.next, s.next.signalName(), value)
}

func (s *stage) signalName() string {
	return fmt.Sprintf("stage%dInput", s.index)
}

// PipelineDemo chains N stages via signals, each stage's slot feeding
// the next stage's signal.
type PipelineDemo struct {
	bus    *signal.Bus
	log    logger.Logger
	stages []*stage

	results []int
}

// NewPipelineDemo builds a pipeline with the given number of stages.
func NewPipelineDemo(bus *signal.Bus, log logger.Logger, stages int) (*PipelineDemo, error) {
	if stages < 1 {
		return nil, fmt.Errorf("pipeline needs at least one stage, got %d", stages)
	}

	d := &PipelineDemo{bus: bus, log: log}

	for i := 0; i < stages; i++ {
		st := &stage{
			index: i,
			name:  fmt.Sprintf("PipelineStage%d", i),
			bus:   bus,
			log:   log,
			demo:  d,
		}
		if err := bus.Declare(st, st.signalName()); err != nil {
			return nil, err
		}
		d.stages = append(d.stages, st)
	}

	// Wire stage k's signal to stage k's Process slot; Process forwards
	// to stage k+1's signal.
	for i, st := range d.stages {
		if i+1 < len(d.stages) {
			st.next = d.stages[i+1]
		}
		if _, err := bus.ConnectMethod(st, st.signalName(), st, "Process"); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *PipelineDemo) finish(value int) {
	d.results = append(d.results, value)
	d.log.Info("pipeline finished", "result", value)
}

// Run feeds the seed value into the first stage and returns the value
// that came out of the last one.
func (d *PipelineDemo) Run(ctx context.Context, seed int) (int, error) {
	first := d.stages[0]
	if err := d.bus.Emit(ctx, first, first.signalName(), seed); err != nil {
		return 0, err
	}
	if len(d.results) == 0 {
		return 0, fmt.Errorf("pipeline produced no result")
	}
	return d.results[len(d.results)-1], nil
}

// Stages returns the number of stages.
func (d *PipelineDemo) Stages() int { return len(d.stages) }
