// package tasks implements the inbox drain and index publish operations of the host role.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// PipelineResult contains the outcome of one drain-then-publish run.
type PipelineResult struct {
	Drain      *DrainResult
	Publish    *PublishResult
	PublishErr error
}

// ForegroundFunc runs the pipeline; [Pipeline.Run] and services.Library.Foreground satisfy it.
type ForegroundFunc func(ctx context.Context, progress chan<- ProgressUpdate) (*PipelineResult, error)

// Pipeline makes the drain-before-publish ordering explicit.
type Pipeline struct {
	drainer   *Drainer
	publisher *Publisher
	logger    *log.Logger
}

// NewPipeline wires a drainer and publisher that share one store and container.
func NewPipeline(container *handoff.Container, store models.Store, delivery string, logger *log.Logger) *Pipeline {
	return &Pipeline{
		drainer:   NewDrainer(container, store, delivery, logger),
		publisher: NewPublisher(container, store, logger),
		logger:    logger,
	}
}

func (p *Pipeline) Drainer() *Drainer     { return p.drainer }
func (p *Pipeline) Publisher() *Publisher { return p.publisher }

// Run drains the inbox and then publishes the index so the snapshot reflects the drained items.
//
// Failures of either step are logged and recorded in the result; only a cancelled context is returned.
func (p *Pipeline) Run(ctx context.Context, progress chan<- ProgressUpdate) (*PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drained, err := p.drainer.Drain(ctx, progress)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{Drain: drained}
	result.Publish, result.PublishErr = p.publisher.Publish(ctx, progress)
	if result.PublishErr != nil {
		p.logger.Error("index publish failed", "error", result.PublishErr)
	}
	return result, nil
}

// validDelivery normalises a configured delivery policy, defaulting to at-most-once.
func validDelivery(delivery string) (string, error) {
	switch delivery {
	case "", shared.DeliveryAtMostOnce:
		return shared.DeliveryAtMostOnce, nil
	case shared.DeliveryAcknowledged:
		return shared.DeliveryAcknowledged, nil
	default:
		return "", fmt.Errorf("%w: unknown delivery policy %q", shared.ErrInvalidConfig, delivery)
	}
}

func since(start time.Time) float64 {
	return time.Since(start).Seconds()
}
